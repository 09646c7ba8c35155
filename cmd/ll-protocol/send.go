package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/NazarLozynskyi/ll-protocol/internal/link"
)

func sendCommand() *cli.Command {
	return &cli.Command{
		Name:      "send",
		Usage:     "frame messages and send them to a byte-stream target",
		ArgsUsage: "[HEX ...]",
		Description: "Messages come from hex arguments like '01AB2C...' or, when no arguments\n" +
			"are given, from the input as consecutive size-byte records. Over UDP each\n" +
			"frame becomes one datagram.",
		Flags: append(sharedFlags(),
			&cli.StringFlag{
				Name:  "to",
				Value: "stdout",
				Usage: "target kind: tcp, udp, serial or stdout",
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "target address for tcp/udp, e.g. 10.0.0.2:4000",
			},
			&cli.StringFlag{
				Name:  "device",
				Usage: "serial device path, e.g. /dev/ttyUSB0",
			},
			&cli.StringFlag{
				Name:  "baud",
				Value: "115200",
				Usage: "serial baud rate",
			},
			&cli.StringFlag{
				Name:    "in",
				Aliases: []string{"i"},
				Value:   "-",
				Usage:   "input file for raw messages, '-' for stdin",
			},
			&cli.StringFlag{
				Name:  "interval",
				Value: "0s",
				Usage: "pause between frames, e.g. 100ms",
			},
			&cli.StringFlag{
				Name:  "repeat",
				Value: "1",
				Usage: "send the message list this many times",
			},
		),
		Action: runSend,
	}
}

func runSend(ctx context.Context, cmd *cli.Command) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	info := cfg.Message.Info()

	baud, err := strconv.Atoi(cmd.String("baud"))
	if err != nil {
		return fmt.Errorf("baud must be an integer, got %q", cmd.String("baud"))
	}
	interval, err := time.ParseDuration(cmd.String("interval"))
	if err != nil {
		return fmt.Errorf("interval: %v", err)
	}
	repeat, err := strconv.Atoi(cmd.String("repeat"))
	if err != nil || repeat < 1 {
		return fmt.Errorf("repeat must be a positive integer, got %q", cmd.String("repeat"))
	}

	var msgs [][]byte
	if args := cmd.Args().Slice(); len(args) > 0 {
		for _, arg := range args {
			msg, err := parseHexMessage(arg)
			if err != nil {
				return err
			}
			if len(msg) != info.Size {
				return fmt.Errorf("message %q is %d bytes, want %d", arg, len(msg), info.Size)
			}
			msgs = append(msgs, msg)
		}
	} else {
		msgs, err = readRawMessages(cmd.String("in"), info.Size)
		if err != nil {
			return err
		}
	}
	if len(msgs) == 0 {
		return fmt.Errorf("nothing to send")
	}

	target := link.Target{
		Kind:        cmd.String("to"),
		Addr:        cmd.String("addr"),
		Device:      cmd.String("device"),
		Baud:        baud,
		DialTimeout: cfg.Link.DialTimeout,
	}
	s, err := link.NewSender(target, info)
	if err != nil {
		return err
	}
	defer s.Close()

	for r := 0; r < repeat; r++ {
		for _, msg := range msgs {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := s.Send(msg); err != nil {
				return err
			}
			if interval > 0 {
				t := time.NewTimer(interval)
				select {
				case <-ctx.Done():
					t.Stop()
					return ctx.Err()
				case <-t.C:
				}
			}
		}
	}

	stats := s.Stats()
	log.Info().
		Str("target", targetString(target)).
		Uint64("messages", stats.Messages).
		Uint64("frame_bytes", stats.FrameBytes).
		Msg("send complete")
	return nil
}

func parseHexMessage(s string) ([]byte, error) {
	t := strings.NewReplacer(" ", "", ":", "", "\t", "").Replace(s)
	t = strings.TrimPrefix(strings.TrimPrefix(t, "0x"), "0X")
	msg, err := hex.DecodeString(t)
	if err != nil {
		return nil, fmt.Errorf("invalid hex message %q", s)
	}
	return msg, nil
}

func readRawMessages(path string, size int) ([][]byte, error) {
	in, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	var msgs [][]byte
	for {
		msg := make([]byte, size)
		_, err := io.ReadFull(in, msg)
		if errors.Is(err, io.EOF) {
			return msgs, nil
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("input ends mid-message; messages are %d bytes", size)
		}
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
}

func targetString(t link.Target) string {
	switch t.Kind {
	case "serial":
		return fmt.Sprintf("%s@%d", t.Device, t.Baud)
	case "tcp", "udp":
		return fmt.Sprintf("%s://%s", t.Kind, t.Addr)
	default:
		return t.Kind
	}
}
