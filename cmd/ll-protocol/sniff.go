package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/NazarLozynskyi/ll-protocol/internal/capture"
	"github.com/NazarLozynskyi/ll-protocol/internal/link"
	"github.com/NazarLozynskyi/ll-protocol/internal/web"
)

func sniffCommand() *cli.Command {
	return &cli.Command{
		Name:  "sniff",
		Usage: "decode a live link and print every message",
		Description: "Connects to the configured link (serial, tcp or stdio), decodes frames\n" +
			"as they arrive and prints one line per message. Lost connections are\n" +
			"redialed. Optionally records raw chunks and serves the status API.",
		Flags: append(sharedFlags(),
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "suppress per-message output",
			},
			&cli.StringFlag{
				Name:  "capture",
				Usage: "record raw link chunks to this file (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "status",
				Usage: "serve the status API",
			},
			&cli.StringFlag{
				Name:  "listen",
				Usage: "status API listen address (overrides config)",
			},
		),
		Action: runSniff,
	}
}

func runSniff(ctx context.Context, cmd *cli.Command) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	info := cfg.Message.Info()

	capturePath := cmd.String("capture")
	if capturePath == "" && cfg.Capture.Enable {
		capturePath = cfg.Capture.Path
	}
	var cw *capture.Writer
	if capturePath != "" {
		cw, err = capture.CreateWriter(capturePath)
		if err != nil {
			return err
		}
		defer cw.Close()
		log.Info().Str("path", capturePath).Str("session", cw.Session()).Msg("recording capture")
	}

	status := web.NewStatus()
	status.SetFraming(info)
	recent := web.NewRecentBuffer(500)

	clientCfg := link.Config{
		Name:           "link",
		Info:           info,
		Kind:           cfg.Link.Kind,
		Device:         cfg.Link.Device,
		Baud:           cfg.Link.Baud,
		Addr:           cfg.Link.Addr,
		ReconnectDelay: cfg.Link.ReconnectDelay,
		DialTimeout:    cfg.Link.DialTimeout,
		ReadBuffer:     cfg.Link.ReadBuffer,
		Logger:         &log,
	}
	if cw != nil {
		clientCfg.OnChunk = func(now time.Time, chunk []byte) {
			if err := cw.WriteChunk(now, chunk); err != nil {
				log.Warn().Err(err).Msg("capture write failed")
			}
		}
	}

	client, err := link.New(clientCfg)
	if err != nil {
		return err
	}
	status.SetLink(client)
	if cw != nil {
		status.SetCapture(capturePath, cw.Session())
	}

	quiet := cmd.Bool("quiet")
	err = client.Start(ctx, func(msg []byte) error {
		now := time.Now().UTC()
		recent.Add(now, msg)
		if !quiet {
			fmt.Printf("%s  % X\n", now.Format(time.RFC3339Nano), msg)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if cmd.Bool("status") || cfg.Status.Enable {
		listen := cfg.Status.Listen
		if s := cmd.String("listen"); s != "" {
			listen = s
		}
		go func() {
			if err := web.Serve(ctx, listen, status, recent); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("status server stopped")
			}
		}()
		log.Info().Str("listen", listen).Msg("status API serving")
	}

	log.Info().Str("endpoint", client.Endpoint()).Int("size", info.Size).Msg("sniffing")

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
wait:
	for {
		select {
		case <-ctx.Done():
			break wait
		case <-client.Done():
			break wait
		case <-ticker.C:
			snap := client.Snapshot(time.Now().UTC())
			log.Debug().
				Str("state", snap.State).
				Uint64("messages", snap.Messages).
				Uint64("bytes", snap.BytesRead).
				Msg("link stats")
		}
	}
	client.Close()

	snap := client.Snapshot(time.Now().UTC())
	log.Info().
		Uint64("messages", snap.Messages).
		Uint64("bytes", snap.BytesRead).
		Uint64("too_short", snap.TooShort).
		Uint64("too_long", snap.TooLong).
		Uint64("skipped_bytes", snap.SkippedBytes).
		Msg("sniff complete")
	return nil
}
