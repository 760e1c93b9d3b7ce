package metricskey

import "github.com/effective-security/metrics"

// Stats
var (
	// StatsToolCallsSucceeded is base for counter metric for tool calls succeeded
	StatsToolCallsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_succeeded",
		Help:         "stats_tool_calls_succeeded provides total tool calls succeeded",
		RequiredTags: []string{"tool"},
	}

	// StatsToolCallsFailed is base for counter metric for tool calls failed
	StatsToolCallsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_failed",
		Help:         "stats_tool_calls_failed provides total tool calls failed, by error code",
		RequiredTags: []string{"tool", "code"},
	}

	StatsToolCallsNotFound = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_not_found",
		Help:         "stats_tool_calls_not_found provides total calls of unknown tools",
		RequiredTags: []string{"tool"},
	}

	StatsPromptTokens = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_prompt_tokens",
		Help:         "stats_prompt_tokens provides total prompt tokens reported by the search API",
		RequiredTags: []string{"tool", "model"},
	}

	StatsCompletionTokens = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_completion_tokens",
		Help:         "stats_completion_tokens provides total completion tokens reported by the search API",
		RequiredTags: []string{"tool", "model"},
	}

	StatsTotalTokens = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_total_tokens",
		Help:         "stats_total_tokens provides total tokens reported by the search API",
		RequiredTags: []string{"tool", "model"},
	}
)

// Perf
var (
	// PerfToolCall is base for sample metric for tool call duration,
	// including the search API round trip
	PerfToolCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_tool_call",
		Help:         "perf_tool_call provides duration of tool call",
		RequiredTags: []string{"tool"},
	}
)

// Metrics returns slice of metrics from this repo
// keep sorted by name
var Metrics = []*metrics.Describe{
	&PerfToolCall,
	&StatsCompletionTokens,
	&StatsPromptTokens,
	&StatsToolCallsFailed,
	&StatsToolCallsNotFound,
	&StatsToolCallsSucceeded,
	&StatsTotalTokens,
}
