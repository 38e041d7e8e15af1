package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime/pprof"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"spitrace/internal/cache"
	"spitrace/internal/capture"
	"spitrace/internal/layout"
	"spitrace/internal/logging"
	"spitrace/internal/render"
	"spitrace/internal/spitrace/log"
	"spitrace/internal/trace"
)

var rootCmd = &cobra.Command{
	Use:   "spitrace [csvfile] [layoutfile]",
	Short: "Correlate SPI flash captures with firmware regions",
	Long: `Spitrace reads an SPI capture exported by a logic analyzer and a firmware
layout describing the flash contents, and displays a chronology of flash
read accesses resolved to the firmware regions they fetched.

On first load the raw capture is decoded and stored as a snapshot next to
the CSV file; later loads of the same capture skip straight to
post-processing.`,
	Example: `
# Show all read accesses
spitrace capture.csv layout.json

# Hide duplicates from concurrent boot processors and collapse
# consecutive reads of the same firmware entry
spitrace -n -c capture.csv layout.json

# One summary row per firmware region and boot phase
spitrace -o capture.csv layout.json
  `,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Setup CPU profiling if requested
		cpuprofile, _ := cmd.Flags().GetString("cpuprofile")
		if cpuprofile != "" {
			f, err := os.Create(cpuprofile)
			if err != nil {
				return fmt.Errorf("could not create CPU profile: %v", err)
			}
			defer f.Close()
			if err := pprof.StartCPUProfile(f); err != nil {
				return fmt.Errorf("could not start CPU profile: %v", err)
			}
			defer pprof.StopCPUProfile()
		}

		memprofile, _ := cmd.Flags().GetString("memprofile")
		if memprofile != "" {
			defer func() {
				f, err := os.Create(memprofile)
				if err != nil {
					fmt.Fprintf(os.Stderr, "could not create memory profile: %v\n", err)
					return
				}
				defer f.Close()
				if err := pprof.WriteHeapProfile(f); err != nil {
					fmt.Fprintf(os.Stderr, "could not write memory profile: %v\n", err)
				}
			}()
		}

		debug, _ := cmd.Flags().GetBool("debug")
		log.Setup(debug)

		overview, _ := cmd.Flags().GetBool("overview-mode")
		noDuplicates, _ := cmd.Flags().GetBool("no-duplicates")
		collapse, _ := cmd.Flags().GetBool("collapse")
		normalize, _ := cmd.Flags().GetBool("normalize-timestamps")
		limit, _ := cmd.Flags().GetInt("limit-rows")
		verbose, _ := cmd.Flags().GetBool("verbose")

		accesses, err := loadAccesses(args[0], args[1])
		if err != nil {
			return err
		}

		if limit > 0 && limit < len(accesses) {
			accesses = accesses[:limit]
		}
		trace.AnnotateCCP(accesses)

		if overview {
			rows := trace.Overview(accesses)
			fmt.Println(render.OverviewTable(rows, verbose))
			return nil
		}

		accesses = trace.PostProcess(accesses, trace.Options{
			NoDuplicates:        noDuplicates,
			Collapse:            collapse,
			NormalizeTimestamps: normalize,
		})
		fmt.Println(render.AccessTable(accesses, verbose))
		return nil
	},
}

// loadAccesses returns the decoded access list for the capture, from the
// snapshot cache when it is fresh and complete, otherwise by parsing and
// decoding the capture and writing the snapshot through.
func loadAccesses(csvPath, layoutPath string) (trace.AccessList, error) {
	digest, err := cache.DigestFile(csvPath)
	if err != nil {
		return nil, err
	}

	if snap, ok := cache.Load(csvPath, digest); ok {
		slog.Info("Loaded snapshot", "file", cache.Path(csvPath), "rows", snap.Raw.Len())
		return snap.ReadAccesses, nil
	}

	c, err := capture.Read(csvPath)
	if err != nil {
		return nil, err
	}
	slog.Info("Parsed capture", "rows", c.Len(), "format", c.Format.String())

	l, err := layout.Load(layoutPath)
	if err != nil {
		return nil, err
	}

	lg := logging.NewLogger()
	defer lg.Close()

	decoder, err := trace.NewDecoder(c.Format, l.RangeMap(), lg.Logger)
	if err != nil {
		return nil, err
	}
	accesses := decoder.Decode(c)

	snap := &cache.Snapshot{
		SchemaVersion: cache.SchemaVersion,
		CaptureDigest: digest,
		Raw:           c,
		ReadAccesses:  accesses,
	}
	if err := cache.Store(csvPath, snap); err != nil {
		slog.Warn("Failed to store snapshot", "error", err)
	} else {
		slog.Info("Stored snapshot", "file", cache.Path(csvPath), "accesses", len(accesses))
	}

	return accesses, nil
}

func init() {
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Debug")

	rootCmd.Flags().BoolP("overview-mode", "o", false, "Aggregate accesses to the same firmware entry")
	rootCmd.Flags().BoolP("no-duplicates", "n", false, "Hide duplicate accesses (e.g. caused by concurrent boot processors)")
	rootCmd.Flags().BoolP("collapse", "c", false, "Collapse consecutive reads of the same entry type (denoted by [c], and by ~ if collapsing was fuzzy)")
	rootCmd.Flags().BoolP("normalize-timestamps", "t", false, "Normalize all timestamps")
	rootCmd.Flags().IntP("limit-rows", "l", 0, "Limit the processed accesses to a maximum of n")
	rootCmd.Flags().BoolP("verbose", "v", false, "Increase output verbosity")
	rootCmd.Flags().String("cpuprofile", "", "Write CPU profile to file")
	rootCmd.Flags().String("memprofile", "", "Write memory profile to file")
}

func Execute() {
	// Bypass fang's rendering when output is being piped
	if !term.IsTerminal(os.Stdout.Fd()) {
		if err := rootCmd.Execute(); err != nil {
			os.Exit(1)
		}
		return
	}

	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
