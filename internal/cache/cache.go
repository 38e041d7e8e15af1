// Package cache persists the decoded (pre-post-processing) access list
// beside the capture file, so repeated invocations skip the decode pass.
// A snapshot is trusted only when its schema version matches, its digest
// matches the capture's current contents, and both payload fields are
// present; anything else is a miss and the capture is redecoded.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"spitrace/internal/capture"
	"spitrace/internal/trace"
)

// SchemaVersion identifies the snapshot layout on disk. Bump it when the
// capture or access shapes change; older snapshots then read as misses.
const SchemaVersion = 1

// Snapshot is the persisted decode result for one capture file.
type Snapshot struct {
	SchemaVersion int              `json:"schema_version"`
	CaptureDigest string           `json:"capture_digest"`
	Raw           *capture.Capture `json:"raw"`
	ReadAccesses  trace.AccessList `json:"read_accesses"`
}

// Path returns the snapshot location for a capture file.
func Path(capturePath string) string {
	return capturePath + ".snapshot.json"
}

// DigestFile returns the hex SHA-256 of the file's contents, used as the
// capture's identity.
func DigestFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("digest %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("digest %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Load returns the snapshot for the capture, or ok=false when it is
// missing, malformed, stale, or incomplete.
func Load(capturePath, digest string) (*Snapshot, bool) {
	data, err := os.ReadFile(Path(capturePath))
	if err != nil {
		return nil, false
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, false
	}
	if snap.SchemaVersion != SchemaVersion || snap.CaptureDigest != digest {
		return nil, false
	}
	if snap.Raw == nil || snap.ReadAccesses == nil {
		return nil, false
	}
	return &snap, true
}

// Store writes the snapshot beside the capture file.
func Store(capturePath string, snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(Path(capturePath), data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
