package progress

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu     sync.Mutex
	total  time.Duration
	stage  string
	action string
}

func (s *fakeSource) TotalEstimate() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *fakeSource) CurrentStage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

func (s *fakeSource) CurrentAction() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.action
}

type recordingWriter struct {
	mu    sync.Mutex
	lines []string
	err   error
}

func (w *recordingWriter) Write(line string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lines = append(w.lines, line)
	return w.err
}

func (w *recordingWriter) Close() error { return nil }

func (w *recordingWriter) all() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.lines))
	copy(out, w.lines)
	return out
}

// fakeClock advances by step on every call.
type fakeClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

func TestSnapshot_Percent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		snapshot Snapshot
		expected int
		overtime bool
	}{
		{"start", Snapshot{Elapsed: 0, Total: time.Minute}, 0, false},
		{"half", Snapshot{Elapsed: 30 * time.Second, Total: time.Minute}, 50, false},
		{"exact", Snapshot{Elapsed: time.Minute, Total: time.Minute}, 100, false},
		{"over", Snapshot{Elapsed: 3 * time.Minute, Total: time.Minute}, 100, true},
		{"no estimate", Snapshot{Elapsed: time.Minute}, -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.snapshot.Percent())
			assert.Equal(t, tt.overtime, tt.snapshot.Overtime())
		})
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		snapshot Snapshot
		contains []string
		excludes []string
	}{
		{
			name:     "percentage",
			snapshot: Snapshot{Elapsed: 3 * time.Minute, Total: 10 * time.Minute, Stage: "leapp installation", Action: "install leapp"},
			contains: []string{" 30%", "03:00 / 10:00", "Leapp Installation: install leapp", "[#########....................."},
		},
		{
			name:     "overtime",
			snapshot: Snapshot{Elapsed: 11 * time.Minute, Total: 10 * time.Minute},
			contains: []string{OvertimeNotice, "11:00 / 10:00"},
			excludes: []string{"%"},
		},
		{
			name:     "no estimate",
			snapshot: Snapshot{Elapsed: 90 * time.Second, Stage: "resume"},
			contains: []string{"elapsed 01:30", "Resume"},
			excludes: []string{"%", "["},
		},
		{
			name:     "hours",
			snapshot: Snapshot{Elapsed: 2*time.Hour + 5*time.Second, Total: 3 * time.Hour},
			contains: []string{"02:00:05 / 03:00:00", " 66%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			line := Format(tt.snapshot)
			for _, s := range tt.contains {
				assert.Contains(t, line, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, line, s)
			}
			assert.NotContains(t, line, "\n")
		})
	}
}

func TestReporter_RunWritesUntilDone(t *testing.T) {
	t.Parallel()

	source := &fakeSource{total: time.Minute, stage: "conversion", action: "run leapp"}
	first := &recordingWriter{}
	second := &recordingWriter{}
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), step: 6 * time.Second}

	r := NewReporter(source, []Writer{first, second}, WithInterval(time.Millisecond), WithClock(clock.Now))

	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		r.Run(context.Background(), done)
		close(finished)
	}()

	require.Eventually(t, func() bool { return len(first.all()) >= 3 }, time.Second, time.Millisecond)
	close(done)
	<-finished

	lines := first.all()
	assert.Equal(t, lines, second.all())
	for _, line := range lines {
		assert.Contains(t, line, "Conversion: run leapp")
	}
}

func TestReporter_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	w := &recordingWriter{}
	r := NewReporter(&fakeSource{}, []Writer{w}, WithInterval(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})
	go func() {
		r.Run(ctx, make(chan struct{}))
		close(finished)
	}()

	cancel()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("reporter did not stop")
	}

	assert.Len(t, w.all(), 2, "one line at start and a final line")
}

func TestReporter_TotalTakenAtStart(t *testing.T) {
	t.Parallel()

	source := &fakeSource{total: 10 * time.Minute}
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), step: time.Minute}
	w := &recordingWriter{}
	r := NewReporter(source, []Writer{w}, WithInterval(time.Hour), WithClock(clock.Now))

	done := make(chan struct{})
	close(done)
	r.Run(context.Background(), done)

	source.mu.Lock()
	source.total = time.Minute
	source.mu.Unlock()

	snap := r.Snapshot()
	assert.Equal(t, 10*time.Minute, snap.Total)
	assert.False(t, snap.Overtime())
}

func TestReporter_WriterErrorsAreNotFatal(t *testing.T) {
	t.Parallel()

	broken := &recordingWriter{err: errors.New("disk full")}
	healthy := &recordingWriter{}
	r := NewReporter(&fakeSource{total: time.Minute}, []Writer{broken, healthy}, WithInterval(time.Hour))

	done := make(chan struct{})
	close(done)
	r.Run(context.Background(), done)

	assert.Len(t, healthy.all(), len(broken.all()))
	assert.NotEmpty(t, healthy.all())
	for _, line := range healthy.all() {
		assert.True(t, strings.HasPrefix(line, "["))
	}
}
