package trace

// NormalizeTimestamps shifts every access's start and end time so the
// earliest start becomes zero. Idempotent; latencies and durations are
// differences and stay untouched.
func NormalizeTimestamps(accesses AccessList) AccessList {
	if len(accesses) == 0 {
		return accesses
	}

	minTime := accesses[0].StartTime
	for _, a := range accesses {
		if a.StartTime < minTime {
			minTime = a.StartTime
		}
	}

	for _, a := range accesses {
		a.StartTime -= minTime
		a.EndTime -= minTime
	}

	return accesses
}
