package collisionstats

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Record is one pair changing state: a collision beginning (Colliding) or
// ending. A and B are ordered the way the scene hands out pairs.
type Record struct {
	Id        int64  `db:"id" json:"id"`
	RunId     string `db:"run_id" json:"runId"`
	Frame     int64  `db:"frame" json:"frame"`
	A         string `db:"a" json:"a"`
	B         string `db:"b" json:"b"`
	Colliding bool   `db:"colliding" json:"colliding"`
	AtMs      int64  `db:"at_ms" json:"atMs"`
}

func (r *Record) String() string {
	state := "ended"
	if r.Colliding {
		state = "began"
	}
	return fmt.Sprintf("Contact(%s|%s) %s at frame %d", r.A, r.B, state, r.Frame)
}

type Store interface {
	Record(rec Record) error
	Transitions(runId string) ([]Record, error)
	// CountColliding is the number of pairs whose latest transition in the
	// run is a collision.
	CountColliding(runId string) (int, error)
	// EndRun stores the frame count a run stopped at. RunFrames is false for
	// runs that never got there, a crash or a kill.
	EndRun(runId string, frames int64) error
	RunFrames(runId string) (int64, bool, error)
	Run(ctx context.Context)
	Close() error
}

func NewRunId() string {
	return uuid.NewString()
}

type pair struct {
	a, b string
}

// Tracker turns per frame contact results into transitions. Pairs start out
// not colliding, so the first frame only records pairs that already touch.
type Tracker struct {
	runId string
	store Store
	now   func() time.Time

	mutex sync.Mutex
	state map[pair]bool
}

func NewTracker(runId string, store Store) *Tracker {
	return &Tracker{
		runId: runId,
		store: store,
		now:   time.Now,
		state: map[pair]bool{},
	}
}

func (t *Tracker) RunId() string {
	return t.runId
}

// Observe returns true when the pair changed state this frame. The store is
// only written on a change.
func (t *Tracker) Observe(frame int64, a, b string, colliding bool) (bool, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	key := pair{a, b}
	if t.state[key] == colliding {
		return false, nil
	}
	t.state[key] = colliding

	if t.store == nil {
		return true, nil
	}

	err := t.store.Record(Record{
		RunId:     t.runId,
		Frame:     frame,
		A:         a,
		B:         b,
		Colliding: colliding,
		AtMs:      t.now().UnixMilli(),
	})
	if err != nil {
		return true, fmt.Errorf("recording %s|%s: %w", a, b, err)
	}
	return true, nil
}

// Forget drops every pair that mentions name, used when an entity leaves
// the scene. Open collisions are closed out first.
func (t *Tracker) Forget(frame int64, name string) error {
	t.mutex.Lock()
	open := []pair{}
	for k, colliding := range t.state {
		if k.a != name && k.b != name {
			continue
		}
		if colliding {
			open = append(open, k)
		}
		delete(t.state, k)
	}
	t.mutex.Unlock()

	sort.Slice(open, func(i, j int) bool {
		if open[i].a != open[j].a {
			return open[i].a < open[j].a
		}
		return open[i].b < open[j].b
	})

	for _, k := range open {
		if t.store == nil {
			continue
		}
		err := t.store.Record(Record{
			RunId: t.runId,
			Frame: frame,
			A:     k.a,
			B:     k.b,
			AtMs:  t.now().UnixMilli(),
		})
		if err != nil {
			return fmt.Errorf("closing %s|%s: %w", k.a, k.b, err)
		}
	}
	return nil
}

func (t *Tracker) Colliding() int {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	count := 0
	for _, c := range t.state {
		if c {
			count++
		}
	}
	return count
}

// Finish marks the run as stopped after frames ticks.
func (t *Tracker) Finish(frames int64) error {
	if t.store == nil {
		return nil
	}
	if err := t.store.EndRun(t.runId, frames); err != nil {
		return fmt.Errorf("ending run %s: %w", t.runId, err)
	}
	return nil
}
