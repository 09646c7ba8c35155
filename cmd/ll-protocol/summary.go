package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/NazarLozynskyi/ll-protocol/internal/capture"
	"github.com/NazarLozynskyi/ll-protocol/llp"
)

func summaryCommand() *cli.Command {
	return &cli.Command{
		Name:      "summary",
		Usage:     "print decode statistics for capture files",
		ArgsUsage: "FILE [FILE ...]",
		Flags:     sharedFlags(),
		Action:    runSummary,
	}
}

func runSummary(ctx context.Context, cmd *cli.Command) error {
	cfg, _, err := setup(cmd)
	if err != nil {
		return err
	}
	info := cfg.Message.Info()

	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return fmt.Errorf("at least one capture file is required")
	}

	for i, path := range paths {
		if i > 0 {
			fmt.Println()
		}
		if err := printCaptureSummary(path, info); err != nil {
			return err
		}
	}
	return nil
}

type captureSummary struct {
	Session  string
	Segments int
	Chunks   int
	Bytes    int
	Duration time.Duration
	Scan     llp.ScanStats
	Pending  bool
}

func summarizeCapture(session string, records []capture.Record, info llp.MessageInfo) (captureSummary, error) {
	s := captureSummary{Session: session}
	sc, err := llp.NewScanner(info)
	if err != nil {
		return s, err
	}

	origin := time.Duration(0)
	hasChunks := false
	segments := 0

	for _, r := range records {
		if r.Chunk == nil {
			segments++
			origin = r.At
			continue
		}
		hasChunks = true

		s.Chunks++
		s.Bytes += len(r.Chunk)
		at := r.At - origin
		if at < 0 {
			at = 0
		}
		if at > s.Duration {
			s.Duration = at
		}

		_, _ = sc.Feed(r.Chunk, nil)
	}
	if segments == 0 && hasChunks {
		segments = 1
	}
	s.Segments = segments
	s.Scan = sc.Stats()
	s.Pending = sc.Pending()

	return s, nil
}

func printCaptureSummary(path string, info llp.MessageInfo) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("path is empty")
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := capture.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return err
	}

	s, err := summarizeCapture(r.Session, records, info)
	if err != nil {
		return err
	}

	fmt.Printf("path: %s\n", path)
	if s.Session != "" {
		fmt.Printf("session: %s\n", s.Session)
	}
	fmt.Printf("segments: %d\n", s.Segments)
	fmt.Printf("chunks: %d\n", s.Chunks)
	fmt.Printf("bytes: %d\n", s.Bytes)
	fmt.Printf("duration: %s\n", s.Duration)
	fmt.Printf("messages: %d\n", s.Scan.Messages)
	fmt.Printf("too_short: %d\n", s.Scan.TooShort)
	fmt.Printf("too_long: %d\n", s.Scan.TooLong)
	fmt.Printf("skipped_bytes: %d\n", s.Scan.SkippedBytes)
	if s.Pending {
		fmt.Printf("note: capture ends mid-frame\n")
	}
	return nil
}
