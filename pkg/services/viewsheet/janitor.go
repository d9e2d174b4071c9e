package viewsheet

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

type JanitorConfig struct {
	// TTL is how long a session may stay unused.
	TTL           time.Duration
	SweepInterval time.Duration
}

func DefaultJanitorConfig() JanitorConfig {
	return JanitorConfig{
		TTL:           30 * time.Minute,
		SweepInterval: time.Minute,
	}
}

// Janitor closes idle sessions in the background.
type Janitor struct {
	ctrl   *DefaultController
	config JanitorConfig
	done   chan struct{}
	now    func() time.Time
}

func NewJanitor(ctrl *DefaultController, config JanitorConfig) *Janitor {
	def := DefaultJanitorConfig()
	if config.TTL <= 0 {
		config.TTL = def.TTL
	}
	if config.SweepInterval <= 0 {
		config.SweepInterval = def.SweepInterval
	}
	return &Janitor{
		ctrl:   ctrl,
		config: config,
		done:   make(chan struct{}),
		now:    time.Now,
	}
}

func (j *Janitor) Done() <-chan struct{} {
	return j.done
}

// Sweep evicts the sessions idle for longer than the TTL.
func (j *Janitor) Sweep(ctx context.Context) int {
	evicted := j.ctrl.evictIdle(j.now().Add(-j.config.TTL))
	if len(evicted) > 0 {
		zerolog.Ctx(ctx).Info().Strs("sessions", evicted).Msg("idle viewsheet sessions closed")
	}
	return len(evicted)
}

func (j *Janitor) Run(ctx context.Context) {
	defer close(j.done)
	logger := zerolog.Ctx(ctx)

	ticker := time.NewTicker(j.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("session janitor stopped")
			return
		case <-ticker.C:
			j.Sweep(ctx)
		}
	}
}
