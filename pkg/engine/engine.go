package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	collisionstats "sat-collisions.theprimeagen.com/pkg/collision-stats"
	"sat-collisions.theprimeagen.com/pkg/motion"
	"sat-collisions.theprimeagen.com/pkg/sat"
	"sat-collisions.theprimeagen.com/pkg/scene"
)

type Params struct {
	FrameTime time.Duration
	// Frames stops the loop after that many ticks, 0 runs until cancelled.
	Frames    int64
	Workers   int
	GameSpeed float64
}

// Engine is the frame loop around the scene: move things, test every pair,
// report what changed. The collision test itself never sees the frame time.
type Engine struct {
	params  Params
	loaded  *scene.Loaded
	movers  []motion.Mover
	tracker *collisionstats.Tracker
	logger  *slog.Logger

	frame      int64
	frames     int
	frameTimer time.Duration
	fps        int
}

func New(params Params, loaded *scene.Loaded, tracker *collisionstats.Tracker) (*Engine, error) {
	movers, err := motion.FromScene(loaded)
	if err != nil {
		return nil, err
	}
	if params.GameSpeed == 0 {
		params.GameSpeed = 1
	}
	if params.FrameTime <= 0 {
		params.FrameTime = time.Second / 60
	}

	return &Engine{
		params:  params,
		loaded:  loaded,
		movers:  movers,
		tracker: tracker,
		logger:  slog.Default().With("area", "Engine", "run", tracker.RunId()),
	}, nil
}

func (e *Engine) Frame() int64 {
	return e.frame
}

func (e *Engine) FPS() int {
	return e.fps
}

func (e *Engine) Scene() *scene.Scene {
	return e.loaded.Scene
}

// Swap replaces the scene, for reloads. Pairs that no longer exist are closed
// out in the tracker.
func (e *Engine) Swap(loaded *scene.Loaded) error {
	movers, err := motion.FromScene(loaded)
	if err != nil {
		return err
	}

	for _, old := range e.loaded.Scene.Entities() {
		if err := e.tracker.Forget(e.frame, old.Name); err != nil {
			return err
		}
	}
	e.loaded.Scene.Close()

	e.loaded = loaded
	e.movers = movers
	e.logger.Info("scene swapped", "entities", loaded.Scene.Len(), "movers", len(movers))
	return nil
}

// Tick advances one frame.
func (e *Engine) Tick(ctx context.Context, dt time.Duration) ([]scene.Contact, error) {
	step := dt.Seconds() * e.params.GameSpeed
	for _, m := range e.movers {
		m.Update(step)
	}

	contacts, err := e.loaded.Scene.Step(ctx, e.params.Workers)
	if err != nil {
		return nil, err
	}

	for _, c := range contacts {
		changed, err := e.tracker.Observe(e.frame, c.A, c.B, c.Colliding)
		if err != nil {
			return nil, err
		}
		if changed {
			e.logContact(c)
		}
	}

	e.frames++
	e.frameTimer += dt
	if e.frameTimer >= time.Second {
		e.fps = e.frames
		e.logger.Info("fps", "fps", e.fps, "colliding", e.tracker.Colliding())
		e.frameTimer -= time.Second
		e.frames = 0
	}

	e.frame++
	return contacts, nil
}

func (e *Engine) logContact(c scene.Contact) {
	if c.Colliding {
		e.logger.Info("collision began", "a", c.A, "b", c.B, "frame", e.frame)
		return
	}

	a, b := e.loaded.Scene.Get(c.A), e.loaded.Scene.Get(c.B)
	axis, ok, err := sat.SeparatingAxis(a.Hitbox(), b.Hitbox())
	if err != nil || !ok {
		e.logger.Info("collision ended", "a", c.A, "b", c.B, "frame", e.frame)
		return
	}
	e.logger.Info("collision ended", "a", c.A, "b", c.B, "frame", e.frame, "axis", axis.Norm().String())
}

// Run ticks at the configured frame time until ctx is done or the frame
// budget is used up. Scenes sent on reloads replace the current one between
// frames.
func (e *Engine) Run(ctx context.Context, reloads <-chan *scene.Loaded) error {
	ticker := time.NewTicker(e.params.FrameTime)
	defer ticker.Stop()

	last := time.Now()
	for {
		if e.params.Frames > 0 && e.frame >= e.params.Frames {
			e.logger.Info("frame budget reached", "frames", e.frame)
			return nil
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case loaded, ok := <-reloads:
			if !ok {
				reloads = nil
				continue
			}
			if err := e.Swap(loaded); err != nil {
				e.logger.Error("unable to swap scene", "error", err)
				loaded.Scene.Close()
			}

		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			if _, err := e.Tick(ctx, dt); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			}
		}
	}
}
