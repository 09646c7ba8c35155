// Command ll-protocol frames, decodes and inspects fixed-size messages on
// byte-stream links.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/NazarLozynskyi/ll-protocol/internal/config"
	"github.com/NazarLozynskyi/ll-protocol/internal/logging"
)

var version = "0.3.0"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "ll-protocol: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "ll-protocol",
		Usage:   "frame, decode and inspect fixed-size messages on byte-stream links",
		Version: version,
		Description: "Messages are framed with a begin byte, an escaped payload and an end byte.\n" +
			"Control bytes inside the payload are prefixed with the reject byte, so any\n" +
			"payload value survives the link unchanged.",
		Commands: []*cli.Command{
			encodeCommand(),
			decodeCommand(),
			sendCommand(),
			sniffCommand(),
			replayCommand(),
			summaryCommand(),
			genCommand(),
		},
	}
}

// sharedFlags are accepted by every subcommand: config selection plus the
// framing and logging overrides.
func sharedFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "path to YAML config",
		},
		&cli.StringFlag{
			Name:  "size",
			Usage: "message size in bytes (overrides config)",
		},
		&cli.StringFlag{
			Name:  "begin",
			Usage: "begin byte in hex, e.g. AA (overrides config)",
		},
		&cli.StringFlag{
			Name:  "end",
			Usage: "end byte in hex (overrides config)",
		},
		&cli.StringFlag{
			Name:  "reject",
			Usage: "reject byte in hex (overrides config)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "trace, debug, info, warn or error",
		},
	}
}

// setup loads the configuration, applies command-line overrides and builds
// the process logger.
func setup(cmd *cli.Command) (config.Config, zerolog.Logger, error) {
	var cfg config.Config
	var err error
	if path := cmd.String("config"); path != "" {
		cfg, err = config.Load(path)
		if err != nil {
			return config.Config{}, zerolog.Nop(), err
		}
	} else {
		cfg = config.Default()
	}

	if err := applyOverrides(cmd, &cfg); err != nil {
		return config.Config{}, zerolog.Nop(), err
	}
	if err := config.DefaultAndValidate(&cfg); err != nil {
		return config.Config{}, zerolog.Nop(), err
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}
	return cfg, log, nil
}

func applyOverrides(cmd *cli.Command, cfg *config.Config) error {
	if s := cmd.String("size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return fmt.Errorf("size must be a positive integer, got %q", s)
		}
		cfg.Message.Size = n
	}

	overrides := []struct {
		name string
		dst  *config.HexByte
	}{
		{"begin", &cfg.Message.BeginByte},
		{"end", &cfg.Message.EndByte},
		{"reject", &cfg.Message.RejectByte},
	}
	for _, o := range overrides {
		s := cmd.String(o.name)
		if s == "" {
			continue
		}
		b, err := parseHexByte(s)
		if err != nil {
			return fmt.Errorf("%s: %v", o.name, err)
		}
		*o.dst = config.HexByte(b)
	}

	if s := cmd.String("log-level"); s != "" {
		cfg.Log.Level = s
	}
	return nil
}

func parseHexByte(s string) (byte, error) {
	t := strings.TrimSpace(s)
	t = strings.TrimPrefix(strings.TrimPrefix(t, "0x"), "0X")
	v, err := strconv.ParseUint(t, 16, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid hex byte %q", s)
	}
	return byte(v), nil
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloseWriter{os.Stdout}, nil
	}
	return os.Create(path)
}

// nopCloseWriter keeps Close from reaching os.Stdout.
type nopCloseWriter struct {
	io.Writer
}

func (nopCloseWriter) Close() error { return nil }
