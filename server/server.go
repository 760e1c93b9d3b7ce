// Package server exposes the tools over the Model Context Protocol.
//
// Each call runs the same pipeline: the registry validates the arguments,
// the builder produces the API request, the search client executes it
// and the formatter renders the report returned as the tool result.
// Failures are returned to the client as tool errors carrying a code
// and a message, they never fail the protocol session.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/sonarmcp/callbacks"
	"github.com/effective-security/sonarmcp/pkg/metricskey"
	"github.com/effective-security/sonarmcp/pkg/pricing"
	"github.com/effective-security/sonarmcp/pkg/sonar"
	"github.com/effective-security/sonarmcp/pkg/toolerr"
	"github.com/effective-security/sonarmcp/report"
	"github.com/effective-security/sonarmcp/tools"
	"github.com/effective-security/xlog"
	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/sonarmcp", "server")

const (
	// DefaultName is the implementation name announced to clients.
	DefaultName = "perplexity-sonar"
	// DefaultVersion is the implementation version announced to clients.
	DefaultVersion = "dev"
)

// Option is an option for the Server.
type Option func(*options)

type options struct {
	name     string
	version  string
	defaults tools.Defaults
	prices   pricing.Table
	callback tools.Callback
}

// WithImplementation sets the name and version announced to clients.
func WithImplementation(name, version string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
		if version != "" {
			o.version = version
		}
	}
}

// WithDefaults sets the default model and context size.
func WithDefaults(defaults tools.Defaults) Option {
	return func(o *options) {
		o.defaults = defaults
	}
}

// WithPrices sets the price table, models it lists are accepted.
func WithPrices(prices pricing.Table) Option {
	return func(o *options) {
		if prices != nil {
			o.prices = prices
		}
	}
}

// WithCallback sets the callback notified about each call.
func WithCallback(cb tools.Callback) Option {
	return func(o *options) {
		if cb != nil {
			o.callback = cb
		}
	}
}

// Server dispatches tool calls. After creation it holds only
// read-only state, calls may run concurrently.
type Server struct {
	registry  *tools.Registry
	builder   *tools.Builder
	formatter *report.Formatter
	searcher  sonar.Searcher
	prices    pricing.Table
	callback  tools.Callback
	mcp       *mcp.Server
}

// New returns a server executing searches with the searcher.
func New(searcher sonar.Searcher, opts ...Option) (*Server, error) {
	if searcher == nil {
		return nil, errors.New("searcher is required")
	}
	o := &options{
		name:     DefaultName,
		version:  DefaultVersion,
		prices:   pricing.Default,
		callback: callbacks.NewNoop(),
	}
	for _, opt := range opts {
		opt(o)
	}

	registry, err := tools.NewRegistry(tools.WithModels(o.prices.Models()...))
	if err != nil {
		return nil, errors.WithMessage(err, "failed to create tool registry")
	}
	builder := tools.NewBuilder(o.defaults)
	if !registry.IsSupportedModel(builder.Defaults().Model) {
		return nil, errors.Errorf("unsupported default model: %s", builder.Defaults().Model)
	}

	s := &Server{
		registry:  registry,
		builder:   builder,
		formatter: report.New(o.prices),
		searcher:  searcher,
		prices:    o.prices,
		callback:  o.callback,
		mcp:       mcp.NewServer(&mcp.Implementation{Name: o.name, Version: o.version}, nil),
	}

	for _, t := range registry.List() {
		s.mcp.AddTool(&mcp.Tool{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.Parameters(),
		}, s.handler(t.Name()))
	}
	return s, nil
}

// Registry returns the tool registry.
func (s *Server) Registry() *tools.Registry {
	return s.registry
}

// MCP returns the protocol server.
func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

// Run serves a single session over stdin and stdout, until the client
// disconnects or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	logger.KV(xlog.INFO, "status", "serving", "transport", "stdio", "tools", len(s.registry.List()))
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// HTTPHandler returns the streamable HTTP handler serving the tools.
func (s *Server) HTTPHandler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcp
	}, nil)
}

func (s *Server) handler(name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args map[string]any
		if req.Params != nil && len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
				return errorResult(toolerr.InvalidArgf("arguments", "arguments must be a JSON object: %s", err.Error())), nil
			}
		}

		res, err := s.Call(ctx, name, args)
		if err != nil {
			return errorResult(err), nil
		}

		result := &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: res.Text}},
		}
		if res.Model != "" {
			result.Meta = mcp.Meta{
				"model":             res.Model,
				"prompt_tokens":     res.PromptTokens,
				"completion_tokens": res.CompletionTokens,
				"total_tokens":      res.TotalTokens,
			}
		}
		return result, nil
	}
}

// Call executes a tool call. The returned error is always a *toolerr.Error.
func (s *Server) Call(ctx context.Context, name string, args map[string]any) (*tools.Result, error) {
	def, ok := s.registry.Get(name)
	if !ok {
		metricskey.StatsToolCallsNotFound.IncrCounter(1, name)
		logger.ContextKV(ctx, xlog.WARNING, "reason", "tool_not_found", "tool", name)
		return nil, toolerr.InvalidArgf("name", "unknown tool %q", name)
	}

	call := &tools.ToolCall{
		ID:        uuid.NewString(),
		Name:      name,
		Arguments: args,
	}

	started := time.Now()
	defer metricskey.PerfToolCall.MeasureSince(started, name)

	s.callback.OnToolStart(ctx, def, call)
	res, err := s.call(ctx, call)
	if err != nil {
		te := toolerr.From(err)
		metricskey.StatsToolCallsFailed.IncrCounter(1, name, string(te.Code))
		s.callback.OnToolError(ctx, def, call, te)
		return nil, te
	}

	metricskey.StatsToolCallsSucceeded.IncrCounter(1, name)
	if res.Model != "" {
		metricskey.StatsPromptTokens.IncrCounter(float64(res.PromptTokens), name, res.Model)
		metricskey.StatsCompletionTokens.IncrCounter(float64(res.CompletionTokens), name, res.Model)
		metricskey.StatsTotalTokens.IncrCounter(float64(res.TotalTokens), name, res.Model)
	}
	s.callback.OnToolEnd(ctx, def, call, res)
	return res, nil
}

func (s *Server) call(ctx context.Context, call *tools.ToolCall) (res *tools.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.ContextKV(ctx, xlog.ERROR,
				"reason", "panic",
				"tool", call.Name,
				"call", call.ID,
				"err", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
			res = nil
			err = toolerr.Newf(toolerr.Internal, "internal error in %s: %v", call.Name, r)
		}
	}()

	args, err := s.registry.Validate(call)
	if err != nil {
		return nil, err
	}

	if a, ok := args.(*tools.ExplainCapabilitiesArgs); ok {
		text, err := tools.Explain(s.registry, s.builder.Defaults(), s.prices).Render(a.Format)
		if err != nil {
			return nil, err
		}
		return &tools.Result{Text: text}, nil
	}

	req, err := s.builder.Build(args)
	if err != nil {
		return nil, err
	}

	resp, err := s.searcher.Search(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, toolerr.New(toolerr.FormattingImpossible, "the API returned no response")
	}

	rep := s.formatter.Format(req, resp)
	if notes := rep.Notes(); len(notes) > 0 {
		logger.ContextKV(ctx, xlog.WARNING,
			"reason", "partial_response",
			"tool", call.Name,
			"call", call.ID,
			"missing", resp.Missing,
		)
	}

	usage := rep.Usage()
	return &tools.Result{
		Text:             rep.String(),
		Model:            req.Model,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		TotalTokens:      usage.TotalTokens,
	}, nil
}

// errorPayload is the structured content of a failed call.
type errorPayload struct {
	Code    toolerr.Code `json:"code"`
	Message string       `json:"message"`
	Field   string       `json:"field,omitempty"`
}

func errorResult(err error) *mcp.CallToolResult {
	te := toolerr.From(err)
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: te.String()}},
		StructuredContent: errorPayload{
			Code:    te.Code,
			Message: te.Message,
			Field:   te.Field,
		},
	}
}
