package sweep

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcoskids/marcos/internal/badges"
	"github.com/marcoskids/marcos/internal/engine"
	"github.com/marcoskids/marcos/internal/progress"
	"github.com/marcoskids/marcos/internal/store"
)

type fakeChildren struct {
	children []store.Child
	pages    int
}

func newFakeChildren(n int) *fakeChildren {
	f := &fakeChildren{}
	for i := 1; i <= n; i++ {
		user := "u1"
		if i%2 == 0 {
			user = "u2"
		}
		f.children = append(f.children, store.Child{ID: fmt.Sprintf("c%02d", i), UserID: user})
	}
	return f
}

func (f *fakeChildren) Get(_ context.Context, id string) (store.Child, error) {
	for _, c := range f.children {
		if c.ID == id {
			return c, nil
		}
	}
	return store.Child{}, store.ErrNotFound
}

func (f *fakeChildren) ListByUser(_ context.Context, userID string) ([]store.Child, error) {
	var out []store.Child
	for _, c := range f.children {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeChildren) ListAll(_ context.Context, after string, limit int) ([]store.Child, error) {
	f.pages++
	var out []store.Child
	for _, c := range f.children {
		if c.ID > after {
			out = append(out, c)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

type fakeRecomputer struct {
	fail map[string]bool
	// onCall runs before the result is produced.
	onCall func(childID string)

	mu      sync.Mutex
	calls   []string
	running atomic.Int32
	peak    atomic.Int32
}

func (f *fakeRecomputer) Recompute(ctx context.Context, childID string) (engine.Recomputed, error) {
	n := f.running.Add(1)
	defer f.running.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, childID)
	f.mu.Unlock()

	if f.onCall != nil {
		f.onCall(childID)
	}
	if err := ctx.Err(); err != nil {
		return engine.Recomputed{}, err
	}
	if f.fail[childID] {
		return engine.Recomputed{}, errors.New("boom")
	}
	return engine.Recomputed{
		Progress:  progress.Aggregate{ChildID: childID, Overall: 50},
		NewBadges: []badges.UnlockedBadge{{ChildID: childID, BadgeID: badges.Halfway}},
	}, nil
}

func TestTargetValidate(t *testing.T) {
	assert.NoError(t, Target{ChildID: "c1"}.Validate())
	assert.NoError(t, Target{UserID: "u1"}.Validate())
	assert.NoError(t, Target{All: true}.Validate())
	assert.ErrorIs(t, Target{}.Validate(), ErrInvalidTarget)
	assert.ErrorIs(t, Target{ChildID: "c1", All: true}.Validate(), ErrInvalidTarget)
}

func TestRun_SingleChild(t *testing.T) {
	rec := &fakeRecomputer{}
	s := New(newFakeChildren(3), rec, nil)

	rep, err := s.Run(context.Background(), Target{ChildID: "c02"}, Options{})
	require.NoError(t, err)
	require.Len(t, rep.Results, 1)
	assert.Equal(t, "c02", rep.Results[0].ChildID)
	assert.Equal(t, 50.0, rep.Results[0].Overall)
	assert.Equal(t, []string{badges.Halfway}, rep.Results[0].NewBadges)
	assert.Equal(t, 1, rep.Succeeded)
}

func TestRun_UnknownChild(t *testing.T) {
	s := New(newFakeChildren(1), &fakeRecomputer{}, nil)
	_, err := s.Run(context.Background(), Target{ChildID: "zz"}, Options{})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRun_User(t *testing.T) {
	rec := &fakeRecomputer{}
	s := New(newFakeChildren(6), rec, nil)

	rep, err := s.Run(context.Background(), Target{UserID: "u2"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Succeeded)
	sort.Strings(rec.calls)
	assert.Equal(t, []string{"c02", "c04", "c06"}, rec.calls)
}

func TestRun_AllPagesAndFailuresIsolated(t *testing.T) {
	children := newFakeChildren(7)
	rec := &fakeRecomputer{fail: map[string]bool{"c03": true}}
	s := New(children, rec, nil)

	rep, err := s.Run(context.Background(), Target{All: true}, Options{Concurrency: 2, PageSize: 3})
	require.NoError(t, err)
	assert.Len(t, rep.Results, 7)
	assert.Equal(t, 6, rep.Succeeded)
	assert.Equal(t, 1, rep.Failed)
	assert.Equal(t, "boom", rep.Results[2].Error)
	assert.Equal(t, "c07", rep.LastChildID)
	assert.False(t, rep.Canceled)
	assert.Equal(t, 3, children.pages)
	assert.LessOrEqual(t, rec.peak.Load(), int32(2))
}

func TestRun_ResumeAfter(t *testing.T) {
	rec := &fakeRecomputer{}
	s := New(newFakeChildren(5), rec, nil)

	rep, err := s.Run(context.Background(), Target{All: true}, Options{After: "c03"})
	require.NoError(t, err)
	sort.Strings(rec.calls)
	assert.Equal(t, []string{"c04", "c05"}, rec.calls)
	assert.Equal(t, "c05", rep.LastChildID)
}

func TestRun_CancelStopsScheduling(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &fakeRecomputer{onCall: func(id string) {
		if id == "c02" {
			cancel()
		}
	}}
	s := New(newFakeChildren(10), rec, nil)

	rep, err := s.Run(ctx, Target{All: true}, Options{Concurrency: 1})
	require.NoError(t, err)
	assert.True(t, rep.Canceled)
	assert.Equal(t, 1, rep.Succeeded)
	assert.Equal(t, "c01", rep.LastChildID)
	assert.Less(t, len(rep.Results), 10)

	// Resuming from the report finishes the remaining children.
	rec2 := &fakeRecomputer{}
	rep2, err := New(newFakeChildren(10), rec2, nil).Run(context.Background(), Target{All: true}, Options{After: rep.LastChildID})
	require.NoError(t, err)
	assert.Equal(t, 9, rep2.Succeeded)
}

func TestScheduler_RunOnce(t *testing.T) {
	rec := &fakeRecomputer{}
	sched := NewScheduler(New(newFakeChildren(4), rec, nil), Options{}, nil)
	defer sched.Stop()

	sched.RunOnce()
	rep := sched.LastReport()
	assert.Equal(t, 4, rep.Succeeded)
	assert.Equal(t, "c04", rep.LastChildID)
}

func TestScheduler_StopInterruptsAndResumes(t *testing.T) {
	var sched *Scheduler
	rec := &fakeRecomputer{}
	rec.onCall = func(id string) {
		if id == "c02" {
			sched.cancel()
		}
	}
	sched = NewScheduler(New(newFakeChildren(4), rec, nil), Options{Concurrency: 1}, nil)

	sched.RunOnce()
	rep := sched.LastReport()
	assert.True(t, rep.Canceled)
	assert.Equal(t, "c01", sched.after)
}

func TestScheduler_InvalidCron(t *testing.T) {
	sched := NewScheduler(New(newFakeChildren(1), &fakeRecomputer{}, nil), Options{}, nil)
	defer sched.Stop()
	assert.Error(t, sched.Start("not a cron"))
}

func TestScheduler_StartStop(t *testing.T) {
	sched := NewScheduler(New(newFakeChildren(1), &fakeRecomputer{}, nil), Options{}, nil)
	require.NoError(t, sched.Start("0 3 * * *"))
	sched.Stop()
}
