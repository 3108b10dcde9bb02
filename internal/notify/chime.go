package notify

import (
	"context"

	"github.com/hammamikhairi/brewctl/internal/beeper"
	"github.com/hammamikhairi/brewctl/internal/domain"
	"github.com/hammamikhairi/brewctl/internal/logger"
)

// Compile-time interface check.
var _ domain.Notifier = (*ChimeNotifier)(nil)

// ChimeNotifier wraps a text notifier and also chimes. Messages are
// printed immediately via the inner notifier; the chime plays on its
// own goroutine so notification never blocks on audio.
type ChimeNotifier struct {
	text domain.Notifier
	bp   *beeper.Beeper
	log  *logger.Logger
}

// NewChimeNotifier creates a notifier that both prints and chimes.
func NewChimeNotifier(text domain.Notifier, bp *beeper.Beeper, log *logger.Logger) *ChimeNotifier {
	return &ChimeNotifier{text: text, bp: bp, log: log}
}

// Notify prints the message and plays the attention chime.
func (n *ChimeNotifier) Notify(ctx context.Context, message string) error {
	if err := n.text.Notify(ctx, message); err != nil {
		return err
	}
	go func() {
		if err := n.bp.Attention(); err != nil {
			n.log.Error("chime playback failed: %v", err)
		}
	}()
	return nil
}

// NotifyUrgent prints the message and plays the finish chime.
func (n *ChimeNotifier) NotifyUrgent(ctx context.Context, message string) error {
	if err := n.text.NotifyUrgent(ctx, message); err != nil {
		return err
	}
	go func() {
		if err := n.bp.Finish(); err != nil {
			n.log.Error("chime playback failed: %v", err)
		}
	}()
	return nil
}
