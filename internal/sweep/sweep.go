// Package sweep recomputes progress and badges for many children at once,
// used for backfills after content corrections. Each child is processed
// independently: one failure never aborts the run and there is no
// cross-child transaction.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/marcoskids/marcos/internal/engine"
	"github.com/marcoskids/marcos/internal/logging"
	"github.com/marcoskids/marcos/internal/store"
)

// ErrInvalidTarget is returned when a Target does not name exactly one scope.
var ErrInvalidTarget = errors.New("exactly one of child, user or all must be set")

// Target selects the children to recompute.
type Target struct {
	ChildID string `json:"child_id,omitempty"`
	UserID  string `json:"user_id,omitempty"`
	All     bool   `json:"recalculate_all,omitempty"`
}

// Validate checks that exactly one scope is set.
func (t Target) Validate() error {
	n := 0
	if t.ChildID != "" {
		n++
	}
	if t.UserID != "" {
		n++
	}
	if t.All {
		n++
	}
	if n != 1 {
		return ErrInvalidTarget
	}
	return nil
}

func (t Target) String() string {
	switch {
	case t.ChildID != "":
		return "child " + t.ChildID
	case t.UserID != "":
		return "user " + t.UserID
	case t.All:
		return "all children"
	default:
		return "nothing"
	}
}

// Options tunes a run.
type Options struct {
	// Concurrency bounds the children processed in parallel. Default 4.
	Concurrency int
	// After skips children with ID <= After, to resume an interrupted
	// all-children run. Ignored for other targets.
	After string
	// PageSize is how many children are listed per query. Default 200.
	PageSize int
}

// Result is the outcome for one child.
type Result struct {
	ChildID   string   `json:"child_id"`
	Overall   float64  `json:"overall"`
	NewBadges []string `json:"new_badges,omitempty"`
	Err       error    `json:"-"`
	Error     string   `json:"error,omitempty"`
}

// Report summarizes a run.
type Report struct {
	Target    Target        `json:"target"`
	Results   []Result      `json:"results"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Canceled  bool          `json:"canceled"`
	Duration  time.Duration `json:"duration"`

	// LastChildID is the last child of the completed prefix of the run;
	// pass it as Options.After to resume.
	LastChildID string `json:"last_child_id,omitempty"`
}

// ChildLister lists children. store.ChildRepo satisfies it.
type ChildLister interface {
	Get(ctx context.Context, id string) (store.Child, error)
	ListByUser(ctx context.Context, userID string) ([]store.Child, error)
	ListAll(ctx context.Context, after string, limit int) ([]store.Child, error)
}

// Recomputer recomputes one child. *engine.Engine satisfies it.
type Recomputer interface {
	Recompute(ctx context.Context, childID string) (engine.Recomputed, error)
}

// Sweeper runs recompute sweeps.
type Sweeper struct {
	children ChildLister
	rec      Recomputer
	log      *logging.Logger
}

// New creates a sweeper. log may be nil.
func New(children ChildLister, rec Recomputer, log *logging.Logger) *Sweeper {
	if log == nil {
		log = logging.Nop()
	}
	return &Sweeper{children: children, rec: rec, log: log}
}

// Run recomputes every child selected by target. The returned error is
// non-nil only when the target is invalid or children cannot be listed;
// per-child failures are reported in the Report. Canceling ctx stops
// scheduling new children and marks the report canceled.
func (s *Sweeper) Run(ctx context.Context, target Target, opts Options) (Report, error) {
	if err := target.Validate(); err != nil {
		return Report{}, err
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 200
	}

	start := time.Now()
	ids, err := s.childIDs(ctx, target, opts)
	if err != nil {
		return Report{}, err
	}

	results := make([]Result, len(ids))
	scheduled := 0

	var g errgroup.Group
	g.SetLimit(opts.Concurrency)
	for i, id := range ids {
		if ctx.Err() != nil {
			break
		}
		scheduled++
		g.Go(func() error {
			results[i] = s.one(ctx, id)
			return nil
		})
	}
	_ = g.Wait()

	rep := Report{Target: target, Results: results[:scheduled]}
	for _, r := range rep.Results {
		if r.Err != nil {
			rep.Failed++
			continue
		}
		rep.Succeeded++
	}
	rep.LastChildID = lastCompleted(rep.Results, opts.After)
	rep.Canceled = ctx.Err() != nil
	rep.Duration = time.Since(start)

	s.log.Info("recompute sweep finished",
		"target", target.String(),
		"children", len(ids),
		"succeeded", rep.Succeeded,
		"failed", rep.Failed,
		"canceled", rep.Canceled,
		"last_child_id", rep.LastChildID,
		"duration", rep.Duration,
	)
	return rep, nil
}

func (s *Sweeper) one(ctx context.Context, childID string) Result {
	res, err := s.rec.Recompute(ctx, childID)
	if err != nil {
		s.log.Warn("child recompute failed", "child_id", childID, "error", err)
		return Result{ChildID: childID, Err: err, Error: err.Error()}
	}
	out := Result{ChildID: childID, Overall: res.Progress.Overall}
	for _, b := range res.NewBadges {
		out.NewBadges = append(out.NewBadges, b.BadgeID)
	}
	return out
}

// lastCompleted returns the ID before the first child that was
// interrupted by cancellation.
func lastCompleted(results []Result, after string) string {
	last := after
	for _, r := range results {
		if errors.Is(r.Err, context.Canceled) || errors.Is(r.Err, context.DeadlineExceeded) {
			break
		}
		last = r.ChildID
	}
	return last
}

func (s *Sweeper) childIDs(ctx context.Context, target Target, opts Options) ([]string, error) {
	switch {
	case target.ChildID != "":
		c, err := s.children.Get(ctx, target.ChildID)
		if err != nil {
			return nil, fmt.Errorf("get child: %w", err)
		}
		return []string{c.ID}, nil

	case target.UserID != "":
		list, err := s.children.ListByUser(ctx, target.UserID)
		if err != nil {
			return nil, fmt.Errorf("list children of user: %w", err)
		}
		return childIDs(list), nil

	default:
		var ids []string
		after := opts.After
		for {
			page, err := s.children.ListAll(ctx, after, opts.PageSize)
			if err != nil {
				return nil, fmt.Errorf("list children: %w", err)
			}
			ids = append(ids, childIDs(page)...)
			if len(page) < opts.PageSize {
				return ids, nil
			}
			after = page[len(page)-1].ID
		}
	}
}

func childIDs(list []store.Child) []string {
	ids := make([]string, len(list))
	for i, c := range list {
		ids[i] = c.ID
	}
	return ids
}
