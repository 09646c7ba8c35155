package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/NazarLozynskyi/ll-protocol/internal/capture"
	"github.com/NazarLozynskyi/ll-protocol/llp"
)

func replayCommand() *cli.Command {
	return &cli.Command{
		Name:  "replay",
		Usage: "play a capture file back through the decoder",
		Description: "Replays recorded link chunks with their original timing, decodes them\n" +
			"and prints one line per message. Chunk boundaries are preserved, so the\n" +
			"decoder sees exactly what the link delivered.",
		Flags: append(sharedFlags(),
			&cli.StringFlag{
				Name:    "path",
				Aliases: []string{"p"},
				Usage:   "capture file (overrides config)",
			},
			&cli.StringFlag{
				Name:  "speed",
				Usage: "time multiplier, e.g. 2 plays twice as fast",
			},
			&cli.BoolFlag{
				Name:  "loop",
				Usage: "repeat from the start when the capture ends",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "suppress per-message output",
			},
		),
		Action: runReplay,
	}
}

func runReplay(ctx context.Context, cmd *cli.Command) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	info := cfg.Message.Info()

	path := cmd.String("path")
	if path == "" {
		path = cfg.Replay.Path
	}
	if path == "" {
		return fmt.Errorf("replay path is required ('--path' or replay.path in config)")
	}

	speed := cfg.Replay.Speed
	if s := cmd.String("speed"); s != "" {
		speed, err = strconv.ParseFloat(s, 64)
		if err != nil || speed <= 0 {
			return fmt.Errorf("speed must be a positive number, got %q", s)
		}
	}
	loop := cmd.Bool("loop") || cfg.Replay.Loop

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := capture.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return fmt.Errorf("reading capture: %w", err)
	}
	log.Info().
		Str("path", path).
		Str("session", r.Session).
		Int("chunks", len(records)).
		Msg("replaying")

	sc, err := llp.NewScanner(info)
	if err != nil {
		return err
	}

	quiet := cmd.Bool("quiet")
	err = capture.Play(records, speed, loop, nil, func(chunk []byte) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		_, err := sc.Feed(chunk, func(msg []byte) error {
			if !quiet {
				fmt.Printf("% X\n", msg)
			}
			return nil
		})
		return err
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	stats := sc.Stats()
	log.Info().
		Uint64("messages", stats.Messages).
		Uint64("too_short", stats.TooShort).
		Uint64("too_long", stats.TooLong).
		Uint64("skipped_bytes", stats.SkippedBytes).
		Msg("replay complete")
	return nil
}
