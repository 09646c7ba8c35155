// Package link reads framed messages from a byte-stream endpoint and keeps
// the connection alive: serial devices, TCP endpoints and stdin are decoded
// with the same scanner, and lost connections are redialed until the
// context ends.
package link

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/NazarLozynskyi/ll-protocol/internal/serial"
	"github.com/NazarLozynskyi/ll-protocol/llp"
)

type Config struct {
	Name string
	Info llp.MessageInfo

	// Kind selects the byte source: 'serial', 'tcp' or 'stdio'.
	Kind   string
	Device string
	Baud   int
	Addr   string

	ReconnectDelay time.Duration
	ReadBuffer     int

	// DialTimeout is used for the initial TCP connect.
	DialTimeout time.Duration

	// OnChunk, when set, observes every raw chunk before it is decoded.
	OnChunk func(now time.Time, chunk []byte)

	// Logger may be nil; the client then stays quiet.
	Logger *zerolog.Logger
}

type Client struct {
	cfg Config
	log zerolog.Logger

	started atomic.Bool
	closed  atomic.Bool

	mu       sync.RWMutex
	state    string
	lastErr  string
	lastSeen time.Time
	scan     llp.ScanStats

	sc *llp.Scanner

	// openFn is swapped in tests to avoid real endpoints.
	openFn func(ctx context.Context) (io.ReadCloser, error)

	cancel context.CancelFunc
	done   chan struct{}
}

type Snapshot struct {
	Name         string `json:"name"`
	Endpoint     string `json:"endpoint"`
	State        string `json:"state"`
	LastError    string `json:"last_error,omitempty"`
	LastSeenUTC  string `json:"last_seen_utc,omitempty"`
	Messages     uint64 `json:"messages"`
	BytesRead    uint64 `json:"bytes_read"`
	TooShort     uint64 `json:"too_short"`
	TooLong      uint64 `json:"too_long"`
	SkippedBytes uint64 `json:"skipped_bytes"`
}

func New(cfg Config) (*Client, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("link name is required")
	}
	switch cfg.Kind {
	case "serial":
		if cfg.Device == "" {
			return nil, fmt.Errorf("link device is required for kind 'serial'")
		}
	case "tcp":
		if cfg.Addr == "" {
			return nil, fmt.Errorf("link addr is required for kind 'tcp'")
		}
	case "stdio":
	default:
		return nil, fmt.Errorf("unknown link kind %q", cfg.Kind)
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 1 * time.Second
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 2 * time.Second
	}
	if cfg.ReadBuffer <= 0 {
		cfg.ReadBuffer = 4096
	}

	sc, err := llp.NewScanner(cfg.Info)
	if err != nil {
		return nil, fmt.Errorf("link message info: %v", err)
	}

	c := &Client{cfg: cfg, log: zerolog.Nop(), sc: sc, state: "stopped", done: make(chan struct{})}
	if cfg.Logger != nil {
		c.log = *cfg.Logger
	}
	c.openFn = c.openEndpoint
	return c, nil
}

// Endpoint describes where the client reads from, for status output.
func (c *Client) Endpoint() string {
	switch c.cfg.Kind {
	case "serial":
		return fmt.Sprintf("%s@%d", c.cfg.Device, c.cfg.Baud)
	case "tcp":
		return c.cfg.Addr
	default:
		return "stdio"
	}
}

// Start begins reading and decoding in the background. For each decoded
// message, onMessage is called with its own copy of the payload.
//
// onMessage should be fast; if it can block, it should offload work.
func (c *Client) Start(ctx context.Context, onMessage func(msg []byte) error) error {
	if c == nil {
		return fmt.Errorf("link client is nil")
	}
	if c.closed.Load() {
		return fmt.Errorf("link client is closed")
	}
	if onMessage == nil {
		return fmt.Errorf("link onMessage is nil")
	}
	if c.started.Swap(true) {
		return fmt.Errorf("link client already started")
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.setState("connecting", "")

	go func() {
		defer close(c.done)
		c.runLoop(runCtx, onMessage)
	}()
	return nil
}

func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.closed.Swap(true) {
		return
	}
	if c.cancel != nil {
		c.cancel()
	}
	if c.started.Load() {
		<-c.done
	}
}

// Done is closed once the read loop has stopped for good, such as after
// Close or when stdin reaches EOF.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) Snapshot(nowUTC time.Time) Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	state := c.state
	lastErr := c.lastErr
	lastSeen := c.lastSeen
	scan := c.scan
	c.mu.RUnlock()

	out := Snapshot{
		Name:         c.cfg.Name,
		Endpoint:     c.Endpoint(),
		State:        state,
		LastError:    lastErr,
		Messages:     scan.Messages,
		BytesRead:    scan.BytesFed,
		TooShort:     scan.TooShort,
		TooLong:      scan.TooLong,
		SkippedBytes: scan.SkippedBytes,
	}
	if !lastSeen.IsZero() {
		out.LastSeenUTC = lastSeen.UTC().Format(time.RFC3339Nano)
	}
	return out
}

func (c *Client) runLoop(ctx context.Context, onMessage func(msg []byte) error) {
	buf := make([]byte, c.cfg.ReadBuffer)

	for {
		select {
		case <-ctx.Done():
			c.setState("stopped", "")
			return
		default:
		}

		c.setState("connecting", "")
		src, err := c.openFn(ctx)
		if err != nil {
			c.setState("error", err.Error())
			c.log.Warn().Str("link", c.cfg.Name).Str("endpoint", c.Endpoint()).Err(err).Msg("open failed")
			if !sleepCtx(ctx, c.cfg.ReconnectDelay) {
				c.setState("stopped", "")
				return
			}
			continue
		}

		c.setState("connected", "")
		c.log.Info().Str("link", c.cfg.Name).Str("endpoint", c.Endpoint()).Msg("connected")

		// The watcher closes the source on cancellation so a blocked Read
		// cannot outlive Close.
		connCtx, connCancel := context.WithCancel(ctx)
		go func() {
			<-connCtx.Done()
			_ = src.Close()
		}()
		eof := c.readFrom(src, buf, onMessage)
		connCancel()

		if ctx.Err() != nil {
			c.setState("stopped", "")
			return
		}
		if eof && c.cfg.Kind == "stdio" {
			// stdin does not come back after EOF
			c.setState("stopped", "")
			return
		}
		if !sleepCtx(ctx, c.cfg.ReconnectDelay) {
			c.setState("stopped", "")
			return
		}
	}
}

// readFrom drains src until it fails, reporting whether it ended in a
// clean EOF.
func (c *Client) readFrom(src io.Reader, buf []byte, onMessage func(msg []byte) error) bool {
	for {
		n, err := src.Read(buf)
		if n > 0 {
			c.consume(buf[:n], onMessage)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				c.setState("disconnected", "")
				return true
			}
			if errors.Is(err, net.ErrClosed) || errors.Is(err, os.ErrClosed) {
				c.setState("disconnected", "")
			} else {
				c.setState("disconnected", err.Error())
			}
			return false
		}
	}
}

func (c *Client) consume(chunk []byte, onMessage func(msg []byte) error) {
	if c.cfg.OnChunk != nil {
		c.cfg.OnChunk(time.Now().UTC(), chunk)
	}

	// The emit wrapper always returns nil: a handler failure is recorded
	// but must not abandon the rest of the chunk mid-frame.
	_, _ = c.sc.Feed(chunk, func(msg []byte) error {
		if err := onMessage(msg); err != nil {
			c.setState("error", "handler: "+err.Error())
			return nil
		}
		now := time.Now().UTC()
		c.mu.Lock()
		c.lastSeen = now
		c.mu.Unlock()
		return nil
	})

	stats := c.sc.Stats()
	c.mu.Lock()
	prev := c.scan
	c.scan = stats
	c.mu.Unlock()

	if stats.TooShort != prev.TooShort || stats.TooLong != prev.TooLong {
		c.log.Warn().Str("link", c.cfg.Name).
			Uint64("too_short", stats.TooShort).
			Uint64("too_long", stats.TooLong).
			Msg("malformed frames on link")
	}
}

func (c *Client) openEndpoint(ctx context.Context) (io.ReadCloser, error) {
	switch c.cfg.Kind {
	case "serial":
		return serial.Open(c.cfg.Device, c.cfg.Baud)
	case "tcp":
		dialer := &net.Dialer{Timeout: c.cfg.DialTimeout}
		conn, err := dialer.DialContext(ctx, "tcp", c.cfg.Addr)
		if err != nil {
			return nil, err
		}
		_ = conn.SetReadDeadline(time.Time{})
		return conn, nil
	default:
		return os.Stdin, nil
	}
}

func (c *Client) setState(state string, lastErr string) {
	c.mu.Lock()
	c.state = state
	if lastErr != "" {
		c.lastErr = lastErr
	} else {
		// Clear stale errors on healthy/neutral states so status output doesn't
		// look broken after a transient startup failure.
		if state == "connected" || state == "connecting" || state == "stopped" {
			c.lastErr = ""
		}
	}
	c.mu.Unlock()
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
