package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RecentBuffer keeps the most recently decoded messages for the status API.
type RecentBuffer struct {
	mu      sync.Mutex
	max     int
	frames  []RecentFrame
	dropped uint64
}

type RecentFrame struct {
	AtUTC string `json:"at_utc"`
	Hex   string `json:"hex"`
}

func NewRecentBuffer(maxFrames int) *RecentBuffer {
	if maxFrames <= 0 {
		maxFrames = 500
	}
	return &RecentBuffer{max: maxFrames}
}

func (b *RecentBuffer) Add(nowUTC time.Time, msg []byte) {
	if b == nil || len(msg) == 0 {
		return
	}
	if nowUTC.IsZero() {
		nowUTC = time.Now().UTC()
	}
	frame := RecentFrame{
		AtUTC: nowUTC.UTC().Format(time.RFC3339Nano),
		Hex:   fmt.Sprintf("% X", msg),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.frames = append(b.frames, frame)
	if len(b.frames) > b.max {
		over := len(b.frames) - b.max
		b.frames = b.frames[over:]
		b.dropped += uint64(over)
	}
}

func (b *RecentBuffer) Snapshot(tail int) (frames []RecentFrame, dropped uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	dropped = b.dropped
	if tail <= 0 {
		tail = 50
	}
	if tail > len(b.frames) {
		tail = len(b.frames)
	}
	start := len(b.frames) - tail
	frames = append([]RecentFrame(nil), b.frames[start:]...)
	return frames, dropped
}

type RecentResponse struct {
	NowUTC  string        `json:"now_utc"`
	Dropped uint64        `json:"dropped"`
	Frames  []RecentFrame `json:"frames"`
}

func (b *RecentBuffer) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		tail := 50
		if s := strings.TrimSpace(r.URL.Query().Get("tail")); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil || v < 1 || v > 5000 {
				http.Error(w, "tail must be an integer in [1,5000]", http.StatusBadRequest)
				return
			}
			tail = v
		}

		frames, dropped := b.Snapshot(tail)
		resp := RecentResponse{
			NowUTC:  time.Now().UTC().Format(time.RFC3339Nano),
			Dropped: dropped,
			Frames:  frames,
		}

		if strings.EqualFold(r.URL.Query().Get("format"), "text") {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Header().Set("Cache-Control", "no-store")
			if dropped > 0 {
				_, _ = fmt.Fprintf(w, "[dropped=%d]\n", dropped)
			}
			for _, frame := range frames {
				_, _ = fmt.Fprintf(w, "%s  %s\n", frame.AtUTC, frame.Hex)
			}
			return
		}

		bts, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			http.Error(w, "marshal failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(bts)
		_, _ = w.Write([]byte("\n"))
	})
}
