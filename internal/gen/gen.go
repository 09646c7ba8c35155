// Package gen builds reproducible framed byte streams for exercising
// scanners against realistic link traffic: random payloads, noise between
// frames, and a controlled share of corrupted frames.
package gen

import (
	"fmt"
	"math/rand"

	"github.com/NazarLozynskyi/ll-protocol/llp"
)

type Config struct {
	Info llp.MessageInfo

	// Seed makes the stream reproducible: equal configs produce equal
	// streams.
	Seed int64

	// Messages is the number of frames to emit.
	Messages int

	// MaxNoise is the maximum number of noise bytes inserted before each
	// frame and after the last one. Noise never contains control bytes, so
	// it cannot open or escape anything.
	MaxNoise int

	// CorruptRatio is the fraction of frames whose end byte is replaced by
	// a data byte. A scanner reports each as one too-long failure without
	// disturbing the frames around it.
	CorruptRatio float64
}

// Plan is the generated stream together with what a correct scanner must
// find in it.
type Plan struct {
	Stream []byte

	// Messages holds the payloads of intact frames, in stream order.
	Messages [][]byte

	Corrupted  int
	NoiseBytes int
}

func Generate(cfg Config) (Plan, error) {
	if err := cfg.Info.Validate(); err != nil {
		return Plan{}, fmt.Errorf("info: %v", err)
	}
	if cfg.Messages <= 0 {
		return Plan{}, fmt.Errorf("messages must be > 0")
	}
	if cfg.MaxNoise < 0 {
		return Plan{}, fmt.Errorf("max noise must be >= 0")
	}
	if cfg.CorruptRatio < 0 || cfg.CorruptRatio > 1 {
		return Plan{}, fmt.Errorf("corrupt ratio must be within 0..1")
	}

	r := rand.New(rand.NewSource(cfg.Seed))
	var plan Plan

	appendNoise := func() {
		if cfg.MaxNoise == 0 {
			return
		}
		n := r.Intn(cfg.MaxNoise + 1)
		for i := 0; i < n; i++ {
			plan.Stream = append(plan.Stream, dataByte(r, cfg.Info))
		}
		plan.NoiseBytes += n
	}

	for i := 0; i < cfg.Messages; i++ {
		appendNoise()

		msg := make([]byte, cfg.Info.Size)
		for j := range msg {
			msg[j] = byte(r.Intn(256))
		}
		frame := llp.Serialize(cfg.Info, msg)

		if r.Float64() < cfg.CorruptRatio {
			frame[len(frame)-1] = dataByte(r, cfg.Info)
			plan.Corrupted++
		} else {
			plan.Messages = append(plan.Messages, msg)
		}
		plan.Stream = append(plan.Stream, frame...)
	}
	appendNoise()

	return plan, nil
}

// dataByte returns a random byte that is not a control byte.
func dataByte(r *rand.Rand, info llp.MessageInfo) byte {
	for {
		b := byte(r.Intn(256))
		if b != info.BeginByte && b != info.EndByte && b != info.RejectByte {
			return b
		}
	}
}
