package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/store"
)

// TerminalSweeper periodically marks terminals that have gone quiet as
// disconnected.  It runs as a background goroutine and is safe to stop via
// its context or the Stop method.
//
// An OfflineAfter of 0 disables sweeping entirely.
type TerminalSweeper struct {
	store        store.TerminalStore
	offlineAfter time.Duration
	interval     time.Duration
	logger       *zap.Logger
	now          func() time.Time
	cancel       context.CancelFunc
	done         chan struct{}
}

// SweeperConfig holds the parameters for NewTerminalSweeper.
type SweeperConfig struct {
	// OfflineAfter is how long a terminal may stay silent before it is
	// shown as disconnected. 0 disables the sweeper.
	OfflineAfter time.Duration

	// Interval is how often the sweep runs.  Defaults to one minute.
	Interval time.Duration
}

// NewTerminalSweeper creates a sweeper but does not start it.
func NewTerminalSweeper(s store.TerminalStore, cfg SweeperConfig, logger *zap.Logger) *TerminalSweeper {
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TerminalSweeper{
		store:        s,
		offlineAfter: cfg.OfflineAfter,
		interval:     interval,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
		done:         make(chan struct{}),
	}
}

// Start runs one sweep immediately, then repeats on the interval until ctx
// is cancelled or Stop is called.
func (p *TerminalSweeper) Start(ctx context.Context) {
	if p.offlineAfter <= 0 {
		p.logger.Info("terminal sweeper disabled (offline_after=0)")
		close(p.done)
		return
	}

	ctx, p.cancel = context.WithCancel(ctx)

	go p.loop(ctx)

	p.logger.Info("terminal sweeper started",
		zap.Duration("offline_after", p.offlineAfter),
		zap.Duration("interval", p.interval))
}

// Stop signals the sweeper to exit and waits for it to finish.
func (p *TerminalSweeper) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	<-p.done
}

func (p *TerminalSweeper) loop(ctx context.Context) {
	defer close(p.done)

	p.Sweep(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Sweep(ctx)
		}
	}
}

// Sweep runs a single pass and returns how many terminals changed.
func (p *TerminalSweeper) Sweep(ctx context.Context) int64 {
	cutoff := p.now().Add(-p.offlineAfter)
	n, err := p.store.MarkStaleDisconnected(ctx, cutoff)
	if err != nil {
		p.logger.Error("terminal sweep", zap.Error(err))
		return 0
	}
	if n > 0 {
		p.logger.Info("terminal sweep: marked disconnected",
			zap.Int64("count", n), zap.Time("cutoff", cutoff))
	}
	return n
}
