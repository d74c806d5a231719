package progress

import (
	"context"
	"time"

	"github.com/felixgeelhaar/centos2alma/internal/ports"
)

// DefaultInterval is how often a line is written.
const DefaultInterval = time.Second

// Option configures a Reporter.
type Option func(*Reporter)

// WithInterval sets the reporting interval.
func WithInterval(d time.Duration) Option {
	return func(r *Reporter) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithLogger sets the logger that receives writer failures.
func WithLogger(logger ports.Logger) Option {
	return func(r *Reporter) {
		r.logger = logger
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Reporter) {
		r.now = now
	}
}

// Reporter periodically writes the progress of a source to its writers.
type Reporter struct {
	source   Source
	writers  []Writer
	interval time.Duration
	logger   ports.Logger
	now      func() time.Time

	start time.Time
	total time.Duration
}

// NewReporter creates a reporter for source.
func NewReporter(source Source, writers []Writer, opts ...Option) *Reporter {
	r := &Reporter{
		source:   source,
		writers:  writers,
		interval: DefaultInterval,
		logger:   ports.NewNopLogger(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run writes a line every interval until done is closed or ctx is cancelled,
// then writes a final line. The total estimate is taken once, at start.
func (r *Reporter) Run(ctx context.Context, done <-chan struct{}) {
	r.start = r.now()
	r.total = r.source.TotalEstimate()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.report(ctx)
	for {
		select {
		case <-done:
			r.report(ctx)
			return
		case <-ctx.Done():
			r.report(ctx)
			return
		case <-ticker.C:
			r.report(ctx)
		}
	}
}

// Snapshot returns the current progress.
func (r *Reporter) Snapshot() Snapshot {
	return Snapshot{
		Elapsed: r.now().Sub(r.start),
		Total:   r.total,
		Stage:   r.source.CurrentStage(),
		Action:  r.source.CurrentAction(),
	}
}

func (r *Reporter) report(ctx context.Context) {
	line := Format(r.Snapshot())
	for _, w := range r.writers {
		if err := w.Write(line); err != nil {
			r.logger.Warn(ctx, "failed to write progress", ports.Err(err))
		}
	}
}
