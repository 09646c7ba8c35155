// Package web serves the status API for a running link process.
package web

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/NazarLozynskyi/ll-protocol/internal/link"
	"github.com/NazarLozynskyi/ll-protocol/llp"
)

type Status struct {
	startUnixNano int64
	framing       atomic.Value // FramingSnapshot
	client        atomic.Value // *link.Client
	capture       atomic.Value // CaptureSnapshot
}

func NewStatus() *Status {
	s := &Status{}
	now := time.Now().UTC()
	atomic.StoreInt64(&s.startUnixNano, now.UnixNano())
	s.framing.Store(FramingSnapshot{})
	s.capture.Store(CaptureSnapshot{})
	return s
}

// FramingSnapshot is a UI-friendly view of the configured framing.
type FramingSnapshot struct {
	Size       int    `json:"size"`
	BeginByte  string `json:"begin_byte"`
	EndByte    string `json:"end_byte"`
	RejectByte string `json:"reject_byte"`
}

type CaptureSnapshot struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`
	Session string `json:"session,omitempty"`
}

func (s *Status) SetFraming(info llp.MessageInfo) {
	s.framing.Store(FramingSnapshot{
		Size:       info.Size,
		BeginByte:  fmt.Sprintf("0x%02X", info.BeginByte),
		EndByte:    fmt.Sprintf("0x%02X", info.EndByte),
		RejectByte: fmt.Sprintf("0x%02X", info.RejectByte),
	})
}

// SetLink registers the client whose snapshot the status API reports.
func (s *Status) SetLink(c *link.Client) {
	if c != nil {
		s.client.Store(c)
	}
}

func (s *Status) SetCapture(path string, session string) {
	s.capture.Store(CaptureSnapshot{Enabled: true, Path: path, Session: session})
}

type StatusSnapshot struct {
	Service   string          `json:"service"`
	NowUTC    string          `json:"now_utc"`
	UptimeSec int64           `json:"uptime_sec"`
	Framing   FramingSnapshot `json:"framing"`
	Link      link.Snapshot   `json:"link"`
	Capture   CaptureSnapshot `json:"capture"`
}

func (s *Status) Snapshot(nowUTC time.Time) StatusSnapshot {
	if nowUTC.IsZero() {
		nowUTC = time.Now().UTC()
	}
	start := time.Unix(0, atomic.LoadInt64(&s.startUnixNano)).UTC()
	uptime := nowUTC.Sub(start)

	snap := StatusSnapshot{
		Service:   "ll-protocol",
		NowUTC:    nowUTC.UTC().Format(time.RFC3339Nano),
		UptimeSec: int64(uptime.Seconds()),
		Framing:   s.framing.Load().(FramingSnapshot),
		Capture:   s.capture.Load().(CaptureSnapshot),
	}
	if v := s.client.Load(); v != nil {
		snap.Link = v.(*link.Client).Snapshot(nowUTC)
	}
	return snap
}
