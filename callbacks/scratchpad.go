package callbacks

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/effective-security/sonarmcp/pkg/toolerr"
	"github.com/effective-security/sonarmcp/tools"
	"github.com/effective-security/sonarmcp/utils"
)

var TimeNowFn = time.Now

// RunStats are the totals of the tool calls seen by a Scratchpad.
type RunStats struct {
	Duration            time.Duration
	ToolsCalls          uint32
	ToolsCallsSucceeded uint32
	ToolsCallsFailed    uint32
	// FailedByCode counts the failed calls per error code
	FailedByCode     map[toolerr.Code]uint32
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
	// Models counts the successful API calls per model
	Models map[string]uint32
}

// String returns a one line summary.
func (s *RunStats) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tool calls: %d, Succeeded: %d, Failed: %d", s.ToolsCalls, s.ToolsCallsSucceeded, s.ToolsCallsFailed)
	for _, code := range slices.Sorted(maps.Keys(s.FailedByCode)) {
		fmt.Fprintf(&b, ", %s: %d", code, s.FailedByCode[code])
	}
	fmt.Fprintf(&b, ", Tokens: %d prompt, %d completion, %d total", s.PromptTokens, s.CompletionTokens, s.TotalTokens)
	return b.String()
}

// Scratchpad keeps a transcript and the totals of the tool calls
// from its creation until EndRun.
type Scratchpad struct {
	mode    Mode
	started time.Time

	// statsOnly disables the transcript
	statsOnly bool

	lock  sync.Mutex
	w     bytes.Buffer
	stats RunStats
}

func NewScratchpad(mode Mode) *Scratchpad {
	l := &Scratchpad{
		mode:    mode,
		started: TimeNowFn(),
	}
	l.reset()
	l.print("", "*** Run Started ***")
	return l
}

// NewStatsScratchpad returns a Scratchpad that keeps only the totals,
// its EndRun returns no transcript.
func NewStatsScratchpad() *Scratchpad {
	l := &Scratchpad{
		started:   TimeNowFn(),
		statsOnly: true,
	}
	l.reset()
	return l
}

func (l *Scratchpad) reset() {
	l.w.Reset()
	l.stats = RunStats{
		FailedByCode: make(map[toolerr.Code]uint32),
		Models:       make(map[string]uint32),
	}
}

// Stats returns a copy of the current totals.
func (l *Scratchpad) Stats() RunStats {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.snapshot()
}

func (l *Scratchpad) snapshot() RunStats {
	stats := l.stats
	stats.FailedByCode = maps.Clone(l.stats.FailedByCode)
	stats.Models = maps.Clone(l.stats.Models)
	stats.Duration = TimeNowFn().Sub(l.started)
	return stats
}

// EndRun returns the totals and the transcript, and starts a new run.
func (l *Scratchpad) EndRun() (*RunStats, []byte) {
	l.lock.Lock()
	defer l.lock.Unlock()

	stats := l.snapshot()
	l.print("", stats.String())
	l.print("", fmt.Sprintf("*** Run Ended. Duration: %s ***", stats.Duration))
	var transcript []byte
	if l.w.Len() > 0 {
		transcript = bytes.Clone(l.w.Bytes())
	}

	l.reset()
	l.started = TimeNowFn()
	return &stats, transcript
}

func (l *Scratchpad) OnToolStart(ctx context.Context, tool tools.ITool, call *tools.ToolCall) {
	l.lock.Lock()
	defer l.lock.Unlock()

	l.stats.ToolsCalls++
	l.print(call.ID, tool.Name(), "*** Tool Start ***")
	l.print(call.ID, tool.Name(), "Input:", utils.LogArgs(call.Arguments, maxLoggedValue))
}

func (l *Scratchpad) OnToolEnd(ctx context.Context, tool tools.ITool, call *tools.ToolCall, result *tools.Result) {
	l.lock.Lock()
	defer l.lock.Unlock()

	l.stats.ToolsCallsSucceeded++
	if result.Model != "" {
		l.stats.Models[result.Model]++
		l.stats.PromptTokens += result.PromptTokens
		l.stats.CompletionTokens += result.CompletionTokens
		l.stats.TotalTokens += result.TotalTokens
		l.print(call.ID, tool.Name(), fmt.Sprintf("%s model, %d input tokens, %d output tokens, %d total tokens",
			result.Model, result.PromptTokens, result.CompletionTokens, result.TotalTokens))
	}
	if l.mode == ModeVerbose {
		l.print(call.ID, tool.Name(), "Output:", result.Text)
	}
	l.print(call.ID, tool.Name(), "*** Tool End ***")
}

func (l *Scratchpad) OnToolError(ctx context.Context, tool tools.ITool, call *tools.ToolCall, err error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	code := toolerr.CodeOf(err)
	l.stats.ToolsCallsFailed++
	l.stats.FailedByCode[code]++
	l.print(call.ID, tool.Name(), "*** Tool Error ***", string(code), err.Error())
}

// print writes the entries to the transcript, the lock must be held.
// The entries are written in the following format:
// [timestamp callID] entry entry\n
func (l *Scratchpad) print(callID string, entries ...string) {
	if l.statsOnly {
		return
	}
	now := TimeNowFn()
	ts := now.Format("2006-01-02 15:04:05")

	_, _ = l.w.WriteString(ts)
	if callID != "" {
		_, _ = l.w.WriteString(" ")
		_, _ = l.w.WriteString(callID)
	}
	_, _ = l.w.WriteString(" ")

	for i, entry := range entries {
		if i > 0 {
			_, _ = l.w.WriteString(" ")
		}
		_, _ = l.w.WriteString(entry)
	}
	_, _ = l.w.WriteString("\n")
}
