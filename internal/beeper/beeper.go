// Package beeper plays short attention chimes through the system audio
// device. The controller runs unattended for long stretches; a chime is
// how it calls the user back to the vessel when a step needs a decision
// or the run finishes.
package beeper

import (
	"bytes"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/hammamikhairi/brewctl/internal/logger"
)

// Audio parameters for the synthesized chimes.
const (
	sampleRate   = 24000
	channelCount = 1
)

// Beeper synthesizes and plays PCM chimes via oto.
type Beeper struct {
	ctx    *oto.Context
	log    *logger.Logger
	mu     sync.Mutex
	active *oto.Player // currently playing, nil when idle
}

// New creates a beeper. Initializes the system audio context. Returns
// an error if the audio device is unavailable; callers should fall back
// to silent operation in that case.
func New(log *logger.Logger) (*Beeper, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channelCount,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-readyChan

	log.Debug("beeper initialized (rate=%d)", sampleRate)
	return &Beeper{ctx: ctx, log: log}, nil
}

// Attention plays the two-tone "come look at the vessel" chime.
// Blocks until playback finishes or Stop is called.
func (b *Beeper) Attention() error {
	return b.play(attentionChime())
}

// Finish plays the rising "recipe complete" chime. Blocks until
// playback finishes or Stop is called.
func (b *Beeper) Finish() error {
	return b.play(finishChime())
}

// play plays raw PCM synchronously.
func (b *Beeper) play(pcm []byte) error {
	player := b.ctx.NewPlayer(bytes.NewReader(pcm))

	b.mu.Lock()
	b.active = player
	b.mu.Unlock()

	player.Play()
	b.log.Debug("beeper: playing %d bytes of PCM", len(pcm))

	for player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}

	b.mu.Lock()
	b.active = nil
	b.mu.Unlock()

	return player.Close()
}

// Stop interrupts the currently playing chime, if any. Safe to call
// concurrently and when nothing is playing.
func (b *Beeper) Stop() {
	b.mu.Lock()
	active := b.active
	b.mu.Unlock()

	if active != nil {
		active.Pause()
		b.log.Debug("beeper: interrupted")
	}
}
