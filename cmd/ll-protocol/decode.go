package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/NazarLozynskyi/ll-protocol/llp"
)

func decodeCommand() *cli.Command {
	return &cli.Command{
		Name:  "decode",
		Usage: "extract messages from a framed byte stream",
		Description: "Scans the input for frames and writes every decoded message to the\n" +
			"output. Malformed frames are counted and skipped; decoding resumes at\n" +
			"the next frame.",
		Flags: append(sharedFlags(),
			&cli.StringFlag{
				Name:    "in",
				Aliases: []string{"i"},
				Value:   "-",
				Usage:   "input file, '-' for stdin",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Value:   "-",
				Usage:   "output file, '-' for stdout",
			},
			&cli.StringFlag{
				Name:  "format",
				Value: "hex",
				Usage: "output format: 'hex' (one line per message) or 'raw'",
			},
		),
		Action: runDecode,
	}
}

func runDecode(ctx context.Context, cmd *cli.Command) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	info := cfg.Message.Info()

	format := cmd.String("format")
	if format != "hex" && format != "raw" {
		return fmt.Errorf("format must be 'hex' or 'raw', got %q", format)
	}

	in, err := openInput(cmd.String("in"))
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := openOutput(cmd.String("out"))
	if err != nil {
		return err
	}

	dec, err := llp.NewDecoder(in, info)
	if err != nil {
		return err
	}

	truncated := false
	for {
		msg, err := dec.Next()
		if err != nil {
			if errors.Is(err, llp.ErrMessageTooShort) || errors.Is(err, llp.ErrMessageTooLong) {
				continue
			}
			if errors.Is(err, io.EOF) {
				break
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				truncated = true
				break
			}
			return err
		}

		if format == "raw" {
			if _, err := out.Write(msg); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(out, "% X\n", msg); err != nil {
			return err
		}
	}
	if err := out.Close(); err != nil {
		return err
	}

	stats := dec.Stats()
	evt := log.Info()
	if truncated || stats.TooShort > 0 || stats.TooLong > 0 {
		evt = log.Warn()
	}
	evt.Uint64("messages", stats.Messages).
		Uint64("too_short", stats.TooShort).
		Uint64("too_long", stats.TooLong).
		Uint64("skipped_bytes", stats.SkippedBytes).
		Bool("truncated", truncated).
		Msg("decode complete")
	return nil
}
