package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	collisionstats "sat-collisions.theprimeagen.com/pkg/collision-stats"
	"sat-collisions.theprimeagen.com/pkg/config"
	"sat-collisions.theprimeagen.com/pkg/ctrlc"
	"sat-collisions.theprimeagen.com/pkg/engine"
	prettylog "sat-collisions.theprimeagen.com/pkg/pretty-log"
	"sat-collisions.theprimeagen.com/pkg/scene"
)

func openStore(cfg config.Config) (collisionstats.Store, error) {
	switch cfg.StoreKind {
	case config.StoreSqlite:
		return collisionstats.NewSqlite(cfg.StorePath)
	case config.StoreJSON:
		return collisionstats.NewJSONMemory(cfg.StorePath)
	}
	return nil, nil
}

// watch feeds freshly loaded scenes to the engine. Broken files are logged
// and the current scene keeps running.
func watch(ctx context.Context, path string, logger *slog.Logger) (<-chan *scene.Loaded, error) {
	w, err := scene.NewWatcher(path, 100*time.Millisecond)
	if err != nil {
		return nil, err
	}

	out := make(chan *scene.Loaded)
	go func() {
		defer close(out)
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case err := <-w.Errors:
				logger.Error("watcher error", "error", err)
			case file := <-w.Events:
				loaded, err := scene.Load(file)
				if err != nil {
					logger.Error("scene reload failed", "file", file, "error", err)
					continue
				}
				select {
				case out <- loaded:
				case <-ctx.Done():
					loaded.Scene.Close()
					return
				}
			}
		}
	}()
	return out, nil
}

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	prettylog.SetProgramLevelPrettyLogger(cfg.LogLevel, os.Stderr)
	logger := slog.Default().With("area", "CollisionsMain")

	loaded, err := scene.Load(cfg.Scene)
	if err != nil {
		logger.Error("unable to load scene", "scene", cfg.Scene, "error", err)
		os.Exit(1)
	}

	store, err := openStore(cfg)
	if err != nil {
		logger.Error("unable to open store", "kind", cfg.StoreKind, "path", cfg.StorePath, "error", err)
		os.Exit(1)
	}

	runId := collisionstats.NewRunId()
	tracker := collisionstats.NewTracker(runId, store)

	e, err := engine.New(engine.Params{
		FrameTime: cfg.FrameTime(),
		Frames:    cfg.Frames,
		Workers:   cfg.Workers,
		GameSpeed: cfg.GameSpeed,
	}, loaded, tracker)
	if err != nil {
		logger.Error("unable to build engine", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctrlc.HandleCtrlC(cancel, 2*time.Second)

	var reloads <-chan *scene.Loaded
	if cfg.Watch {
		reloads, err = watch(ctx, cfg.Scene, logger)
		if err != nil {
			logger.Error("unable to watch scene", "scene", cfg.Scene, "error", err)
			os.Exit(1)
		}
	}

	if store != nil {
		go store.Run(ctx)
	}

	logger.Info("running", "run", runId, "scene", cfg.Scene, "entities", e.Scene().Len(), "fps", cfg.FPS)
	err = e.Run(ctx, reloads)
	cancel()

	if ferr := tracker.Finish(e.Frame()); ferr != nil {
		logger.Error("unable to record run length", "error", ferr)
	}

	if store != nil {
		colliding, cerr := store.CountColliding(runId)
		if cerr != nil {
			logger.Error("unable to count collisions", "error", cerr)
		}
		logger.Info("run finished", "run", runId, "frames", e.Frame(), "colliding", colliding)
		if cerr := store.Close(); cerr != nil {
			logger.Error("unable to close store", "error", cerr)
		}
	}
	e.Scene().Close()

	if err != nil {
		logger.Error("engine stopped", "error", err)
		os.Exit(1)
	}
}
