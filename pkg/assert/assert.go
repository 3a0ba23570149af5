package assert

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"sort"
	"sync"
)

// AssertData is anything that can describe itself when an assertion fires,
// hitboxes register themselves so the dump shows the geometry involved.
type AssertData interface {
	Dump() string
}

var (
	mutex      sync.Mutex
	assertData = map[string]AssertData{}
	writer     io.Writer = os.Stderr
	exit                 = os.Exit
)

func AddAssertData(key string, value AssertData) {
	mutex.Lock()
	defer mutex.Unlock()
	assertData[key] = value
}

func RemoveAssertData(key string) {
	mutex.Lock()
	defer mutex.Unlock()
	delete(assertData, key)
}

func HasAssertData(key string) bool {
	mutex.Lock()
	defer mutex.Unlock()
	_, ok := assertData[key]
	return ok
}

func ToWriter(w io.Writer) {
	writer = w
}

func runAssert(msg string, args ...any) {
	values := []any{
		"msg", msg,
		"area", "Assert",
	}
	values = append(values, args...)

	mutex.Lock()
	keys := make([]string, 0, len(assertData))
	for k := range assertData {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		values = append(values, k, assertData[k].Dump())
	}
	mutex.Unlock()

	fmt.Fprintf(writer, "ASSERT\n")
	for i := 0; i+1 < len(values); i += 2 {
		fmt.Fprintf(writer, "   %s=%v\n", values[i], values[i+1])
	}
	fmt.Fprintln(writer, string(debug.Stack()))
	exit(1)
}

func Assert(truth bool, msg string, data ...any) {
	if !truth {
		runAssert(msg, data...)
	}
}

func NotNil(item any, msg string) {
	if item == nil {
		slog.Error("NotNil#nil encountered")
		runAssert(msg)
	}
}

func Never(msg string, data ...any) {
	Assert(false, msg, data...)
}

func NoError(err error, msg string, data ...any) {
	if err != nil {
		slog.Error("NoError#error encountered", "error", err)
		runAssert(msg, append(data, "err", err)...)
	}
}
