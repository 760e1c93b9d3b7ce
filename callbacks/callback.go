package callbacks

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/effective-security/sonarmcp/pkg/toolerr"
	"github.com/effective-security/sonarmcp/tools"
	"github.com/effective-security/sonarmcp/utils"
	"github.com/effective-security/xlog"
)

// ensure that the callbacks implement the correct interfaces
var (
	_ tools.Callback = (*Noop)(nil)
	_ tools.Callback = (*Printer)(nil)
	_ tools.Callback = (*PackageLogger)(nil)
	_ tools.Callback = (*Fanout)(nil)
	_ tools.Callback = (*Scratchpad)(nil)
)

// Mode defines the mode for callback printing
type Mode int

const (
	// ModeDefault is the default mode for callback printing
	ModeDefault Mode = iota
	// ModeVerbose is the verbose mode for callback printing
	ModeVerbose
)

// maxLoggedValue limits the size of argument values and outputs in logs.
const maxLoggedValue = 256

// Fanout is a callback handler that forwards the events to multiple callbacks.
type Fanout struct {
	callbacks []tools.Callback
}

func NewFanout(callbacks ...tools.Callback) *Fanout {
	return &Fanout{callbacks: callbacks}
}

func (l *Fanout) Add(callback tools.Callback) {
	l.callbacks = append(l.callbacks, callback)
}

func (l *Fanout) OnToolStart(ctx context.Context, tool tools.ITool, call *tools.ToolCall) {
	for _, callback := range l.callbacks {
		callback.OnToolStart(ctx, tool, call)
	}
}

func (l *Fanout) OnToolEnd(ctx context.Context, tool tools.ITool, call *tools.ToolCall, result *tools.Result) {
	for _, callback := range l.callbacks {
		callback.OnToolEnd(ctx, tool, call, result)
	}
}

func (l *Fanout) OnToolError(ctx context.Context, tool tools.ITool, call *tools.ToolCall, err error) {
	for _, callback := range l.callbacks {
		callback.OnToolError(ctx, tool, call, err)
	}
}

// Noop does nothing.
type Noop struct{}

func NewNoop() *Noop {
	return &Noop{}
}

func (l *Noop) OnToolStart(ctx context.Context, tool tools.ITool, call *tools.ToolCall) {}
func (l *Noop) OnToolEnd(ctx context.Context, tool tools.ITool, call *tools.ToolCall, result *tools.Result) {
}
func (l *Noop) OnToolError(ctx context.Context, tool tools.ITool, call *tools.ToolCall, err error) {
}

// Printer is a callback handler that prints to the Writer.
type Printer struct {
	Out  io.Writer
	Mode Mode

	lock sync.Mutex
}

func NewPrinter(out io.Writer, mode Mode) *Printer {
	return &Printer{Out: out, Mode: mode}
}

func (l *Printer) OnToolStart(ctx context.Context, tool tools.ITool, call *tools.ToolCall) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Tool Start: %s (%s)\n", tool.Name(), call.ID)
	fmt.Fprintf(l.Out, "Input: %s\n", utils.LogArgs(call.Arguments, maxLoggedValue))
}

func (l *Printer) OnToolEnd(ctx context.Context, tool tools.ITool, call *tools.ToolCall, result *tools.Result) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Tool End: %s (%s)\n", tool.Name(), call.ID)
	if result.Model != "" {
		fmt.Fprintf(l.Out, "Tokens: %s model, %d prompt, %d completion, %d total\n",
			result.Model, result.PromptTokens, result.CompletionTokens, result.TotalTokens)
	}
	if l.Mode == ModeVerbose {
		fmt.Fprintf(l.Out, "Output: %s\n", result.Text)
	}
}

func (l *Printer) OnToolError(ctx context.Context, tool tools.ITool, call *tools.ToolCall, err error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Tool Error: %s (%s): %s: %s\n", tool.Name(), call.ID, toolerr.CodeOf(err), err.Error())
}

// PackageLogger is a callback handler that prints to the logger.
type PackageLogger struct {
	logger *xlog.PackageLogger
}

func NewPackageLogger(logger *xlog.PackageLogger) *PackageLogger {
	return &PackageLogger{logger: logger}
}

func (l *PackageLogger) OnToolStart(ctx context.Context, tool tools.ITool, call *tools.ToolCall) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "tool_start",
		"tool", tool.Name(),
		"call", call.ID,
		"input", utils.LogArgs(call.Arguments, maxLoggedValue),
	)
}

func (l *PackageLogger) OnToolEnd(ctx context.Context, tool tools.ITool, call *tools.ToolCall, result *tools.Result) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "tool_end",
		"tool", tool.Name(),
		"call", call.ID,
		"model", result.Model,
		"tokens", result.TotalTokens,
		"output", utils.Truncate(result.Text, maxLoggedValue),
	)
}

func (l *PackageLogger) OnToolError(ctx context.Context, tool tools.ITool, call *tools.ToolCall, err error) {
	level := xlog.ERROR
	if toolerr.Is(err, toolerr.InvalidArgument) {
		level = xlog.WARNING
	}
	l.logger.ContextKV(ctx, level,
		"event", "tool_error",
		"tool", tool.Name(),
		"call", call.ID,
		"code", toolerr.CodeOf(err),
		"err", err.Error(),
	)
}
