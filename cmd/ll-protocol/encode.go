package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/NazarLozynskyi/ll-protocol/llp"
)

func encodeCommand() *cli.Command {
	return &cli.Command{
		Name:  "encode",
		Usage: "read fixed-size messages and write framed bytes",
		Description: "Reads consecutive size-byte messages from the input and writes one\n" +
			"escaped frame per message to the output.",
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
		),
		Action: runEncode,
	}
}

func runEncode(ctx context.Context, cmd *cli.Command) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	info := cfg.Message.Info()

	in, err := openInput(cmd.String("in"))
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := openOutput(cmd.String("out"))
	if err != nil {
		return err
	}

	w, err := llp.NewWriter(out, info)
	if err != nil {
		return err
	}

	msg := make([]byte, info.Size)
	for {
		_, err := io.ReadFull(in, msg)
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("input ends mid-message; messages are %d bytes", info.Size)
		}
		if err != nil {
			return err
		}
		if err := w.WriteMessage(msg); err != nil {
			return err
		}
	}
	if err := out.Close(); err != nil {
		return err
	}

	stats := w.Stats()
	log.Info().
		Uint64("messages", stats.Messages).
		Uint64("frame_bytes", stats.FrameBytes).
		Msg("encode complete")
	return nil
}
