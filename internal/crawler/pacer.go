package crawler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/coursehound/coursehound/pkg/logging"
)

// Pacer spaces navigations against a single site and backs off after
// failures. The crawl is single-threaded, so no locking is needed.
type Pacer struct {
	cfg     PacingConfig
	lastNav time.Time
	backoff time.Duration
	logger  zerolog.Logger
}

func NewPacer(cfg PacingConfig) *Pacer {
	return &Pacer{cfg: cfg, logger: logging.GetLogger("pacer")}
}

// Wait blocks until the next navigation is allowed: the minimum
// interval since the previous one plus any active failure backoff.
func (p *Pacer) Wait(ctx context.Context) error {
	delay := p.cfg.MinNavInterval - time.Since(p.lastNav)
	if p.backoff > delay {
		delay = p.backoff
	}
	if delay > 0 {
		if err := sleepCtx(ctx, delay); err != nil {
			return err
		}
	}
	p.lastNav = time.Now()
	return nil
}

// Settle sleeps the fixed post-navigation delay.
func (p *Pacer) Settle(ctx context.Context) error {
	return sleepCtx(ctx, p.cfg.SettleDelay)
}

// Success clears any failure backoff.
func (p *Pacer) Success() {
	p.backoff = 0
}

// Failure doubles the backoff, seeding it on the first failure and
// capping it at MaxBackoff.
func (p *Pacer) Failure() {
	if p.backoff == 0 {
		p.backoff = p.cfg.FailureBackoff
	} else {
		p.backoff *= 2
	}
	if p.cfg.MaxBackoff > 0 && p.backoff > p.cfg.MaxBackoff {
		p.backoff = p.cfg.MaxBackoff
	}
	p.logger.Debug().Dur("backoff", p.backoff).Msg("navigation backoff increased")
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
