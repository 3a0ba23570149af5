package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	collisionstats "sat-collisions.theprimeagen.com/pkg/collision-stats"
	"sat-collisions.theprimeagen.com/pkg/config"
	prettylog "sat-collisions.theprimeagen.com/pkg/pretty-log"
)

type IFilter interface {
	Filter(rec collisionstats.Record) bool
	String() string
}

// Filter matches "a:b" against a pair in either order. "*" matches any name.
type Filter struct {
	a string
	b string
}

func NewFilter(line string) (*Filter, error) {
	parts := strings.Split(line, ":")
	if len(parts) != 2 {
		return nil, fmt.Errorf("poorly formed filter %q: want a:b", line)
	}
	return &Filter{a: parts[0], b: parts[1]}, nil
}

func matches(pattern, name string) bool {
	return pattern == "*" || strings.Contains(name, pattern)
}

func (f *Filter) Filter(rec collisionstats.Record) bool {
	return (matches(f.a, rec.A) && matches(f.b, rec.B)) ||
		(matches(f.a, rec.B) && matches(f.b, rec.A))
}

func (f *Filter) String() string {
	return fmt.Sprintf("%s:%s", f.a, f.b)
}

type FrameFilter struct {
	from, to int64
}

func (f *FrameFilter) Filter(rec collisionstats.Record) bool {
	return rec.Frame >= f.from && (f.to < 0 || rec.Frame <= f.to)
}

func (f *FrameFilter) String() string {
	return fmt.Sprintf("FrameFilter(%d..%d)", f.from, f.to)
}

func toFilters(list string) ([]IFilter, error) {
	out := []IFilter{}
	for _, line := range strings.Split(list, ",") {
		if line == "" {
			continue
		}
		f, err := NewFilter(line)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// apply keeps records that pass every frame filter and at least one pair
// filter. No pair filters means every pair.
func apply(records []collisionstats.Record, pairs []IFilter, frames *FrameFilter) []collisionstats.Record {
	out := []collisionstats.Record{}
	for _, rec := range records {
		if frames != nil && !frames.Filter(rec) {
			continue
		}
		keep := len(pairs) == 0
		for _, f := range pairs {
			if f.Filter(rec) {
				keep = true
				break
			}
		}
		if keep {
			out = append(out, rec)
		}
	}
	return out
}

type Summary struct {
	A, B      string
	Contacts  int
	Frames    int64
	StillOpen bool
}

func (s Summary) String() string {
	open := ""
	if s.StillOpen {
		open = " (still colliding)"
	}
	return fmt.Sprintf("%s|%s: %d contacts over %d frames%s", s.A, s.B, s.Contacts, s.Frames, open)
}

// summarize folds transitions into one line per pair. Contacts are clipped to
// the window [firstFrame, lastFrame] when their other end was filtered out.
func summarize(records []collisionstats.Record, firstFrame, lastFrame int64) []Summary {
	type key struct{ a, b string }
	began := map[key]int64{}
	sums := map[key]*Summary{}

	for _, rec := range records {
		k := key{rec.A, rec.B}
		s, ok := sums[k]
		if !ok {
			s = &Summary{A: rec.A, B: rec.B}
			sums[k] = s
		}

		if rec.Colliding {
			began[k] = rec.Frame
			s.Contacts++
			s.StillOpen = true
			continue
		}

		start, ok := began[k]
		if !ok {
			start = firstFrame
		}
		s.Frames += rec.Frame - start
		s.StillOpen = false
		delete(began, k)
	}

	out := make([]Summary, 0, len(sums))
	for k, s := range sums {
		if start, ok := began[k]; ok && lastFrame > start {
			s.Frames += lastFrame - start
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}

// endFrame is where open contacts stop counting: -to when given, else the
// frame the run stopped at. Runs that never recorded an end fall back to their
// last transition and report ended=false.
func endFrame(s collisionstats.Store, runId string, records []collisionstats.Record, to int64) (int64, bool, error) {
	if to >= 0 {
		return to, true, nil
	}
	frames, ok, err := s.RunFrames(runId)
	if err != nil {
		return 0, false, err
	}
	if ok {
		return frames, true, nil
	}
	if len(records) == 0 {
		return 0, false, nil
	}
	return records[len(records)-1].Frame, false, nil
}

func openStore(kind, path string) (collisionstats.Store, error) {
	switch config.StoreKind(kind) {
	case config.StoreSqlite:
		return collisionstats.NewSqlite(path)
	case config.StoreJSON:
		return collisionstats.NewJSONMemory(path)
	}
	return nil, fmt.Errorf("unknown store %q", kind)
}

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	prettylog.SetProgramLevelPrettyLogger(cfg.LogLevel, os.Stderr)
	logger := slog.Default().With("area", "ContactLog")

	store := string(cfg.StoreKind) + ":" + cfg.StorePath
	flag.StringVar(&store, "store", store, "where transitions were recorded, kind:path")

	runId := ""
	flag.StringVar(&runId, "run", "", "run id to read")

	filtersList := ""
	flag.StringVar(&filtersList, "filters", "", "comma separated a:b pair filters, * matches any name")

	from := int64(0)
	flag.Int64Var(&from, "from", 0, "first frame")

	to := int64(-1)
	flag.Int64Var(&to, "to", -1, "last frame, -1 for the end of the run")

	summary := false
	flag.BoolVar(&summary, "summary", false, "print one line per pair instead of every transition")
	flag.Parse()

	if runId == "" {
		logger.Error("-run is required")
		os.Exit(2)
	}

	filters, err := toFilters(filtersList)
	if err != nil {
		logger.Error("bad filters", "error", err)
		os.Exit(2)
	}

	kind, path, _ := strings.Cut(store, ":")
	s, err := openStore(kind, path)
	if err != nil {
		logger.Error("unable to open store", "store", store, "error", err)
		os.Exit(1)
	}
	defer s.Close()

	records, err := s.Transitions(runId)
	if err != nil {
		logger.Error("unable to read transitions", "run", runId, "error", err)
		os.Exit(1)
	}

	lastFrame, ended, err := endFrame(s, runId, records, to)
	if err != nil {
		logger.Error("unable to read run length", "run", runId, "error", err)
		os.Exit(1)
	}
	if !ended {
		logger.Warn("run has no recorded end, open contacts are counted to the last transition", "run", runId)
	}

	records = apply(records, filters, &FrameFilter{from: from, to: to})
	logger.Debug("filtered", "run", runId, "records", len(records), "filters", filtersList)

	if summary {
		for _, s := range summarize(records, from, lastFrame) {
			fmt.Println(s.String())
		}
		return
	}

	for _, rec := range records {
		fmt.Println(rec.String())
	}
}
