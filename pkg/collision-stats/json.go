package collisionstats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"sync"
	"time"
)

type JSONMemoryFile struct {
	Transitions []Record         `json:"transitions"`
	Runs        map[string]int64 `json:"runs,omitempty"`
}

// JSONMemory keeps everything in memory and writes the whole file out once a
// second while Run is going, and again on Close.
type JSONMemory struct {
	file     string
	logger   *slog.Logger
	interval time.Duration

	// held across a whole flush, snapshot to finished write
	writeMutex sync.Mutex

	mutex   sync.Mutex
	records []Record
	runs    map[string]int64
	nextId  int64
	dirty   bool
}

func NewJSONMemory(path string) (*JSONMemory, error) {
	j := &JSONMemory{
		file:   path,
		logger:   slog.Default().With("area", "JSONMemory"),
		interval: time.Second,
		runs:     map[string]int64{},
		nextId:   1,
	}

	contents, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return j, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(contents) == 0 {
		return j, nil
	}

	var data JSONMemoryFile
	if err := json.Unmarshal(contents, &data); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	j.records = data.Transitions
	for id, frames := range data.Runs {
		j.runs[id] = frames
	}
	for _, r := range j.records {
		j.nextId = max(j.nextId, r.Id+1)
	}
	return j, nil
}

func NewJSONMemoryAndClear(path string) (*JSONMemory, error) {
	if err := os.WriteFile(path, []byte(`{"transitions": []}`), 0644); err != nil {
		return nil, err
	}
	return NewJSONMemory(path)
}

func (j *JSONMemory) Record(rec Record) error {
	j.mutex.Lock()
	defer j.mutex.Unlock()
	rec.Id = j.nextId
	j.nextId++
	j.records = append(j.records, rec)
	j.dirty = true
	return nil
}

func (j *JSONMemory) EndRun(runId string, frames int64) error {
	j.mutex.Lock()
	defer j.mutex.Unlock()
	j.runs[runId] = frames
	j.dirty = true
	return nil
}

func (j *JSONMemory) RunFrames(runId string) (int64, bool, error) {
	j.mutex.Lock()
	defer j.mutex.Unlock()
	frames, ok := j.runs[runId]
	return frames, ok, nil
}

func (j *JSONMemory) Iter() func(yield func(i int, r Record) bool) {
	return func(yield func(i int, r Record) bool) {
		j.mutex.Lock()
		defer j.mutex.Unlock()
		for i, r := range j.records {
			if !yield(i, r) {
				return
			}
		}
	}
}

func (j *JSONMemory) Transitions(runId string) ([]Record, error) {
	out := []Record{}
	for _, r := range j.Iter() {
		if r.RunId == runId {
			out = append(out, r)
		}
	}
	return out, nil
}

func (j *JSONMemory) CountColliding(runId string) (int, error) {
	latest := map[pair]bool{}
	for _, r := range j.Iter() {
		if r.RunId == runId {
			latest[pair{r.A, r.B}] = r.Colliding
		}
	}

	count := 0
	for _, c := range latest {
		if c {
			count++
		}
	}
	return count, nil
}

func (j *JSONMemory) Run(ctx context.Context) {
	timer := time.NewTicker(j.interval)
	defer timer.Stop()
outer:
	for {
		select {
		case <-timer.C:
			if err := j.flush(); err != nil {
				j.logger.Error("unable to write json file", "error", err)
			}

		case <-ctx.Done():
			break outer
		}
	}
}

func (j *JSONMemory) flush() error {
	j.writeMutex.Lock()
	defer j.writeMutex.Unlock()

	j.mutex.Lock()
	if !j.dirty {
		j.mutex.Unlock()
		return nil
	}
	data := JSONMemoryFile{
		Transitions: append([]Record{}, j.records...),
		Runs:        maps.Clone(j.runs),
	}
	j.dirty = false
	j.mutex.Unlock()

	bytes, err := json.Marshal(data)
	if err == nil {
		err = os.WriteFile(j.file, bytes, 0644)
	}
	if err != nil {
		j.mutex.Lock()
		j.dirty = true
		j.mutex.Unlock()
		return err
	}
	return nil
}

// Close waits for a flush already running in Run, then writes whatever is
// left.
func (j *JSONMemory) Close() error {
	return j.flush()
}
