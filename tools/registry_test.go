package tools_test

import (
	"testing"

	"github.com/effective-security/sonarmcp/pkg/sonar"
	"github.com/effective-security/sonarmcp/pkg/toolerr"
	"github.com/effective-security/sonarmcp/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(t *testing.T, opts ...tools.RegistryOption) *tools.Registry {
	t.Helper()
	r, err := tools.NewRegistry(opts...)
	require.NoError(t, err)
	return r
}

func TestRegistryList(t *testing.T) {
	t.Parallel()
	r := newRegistry(t)

	assert.Equal(t, []string{
		tools.SearchWeb,
		tools.SearchWebAdvanced,
		tools.SearchAcademic,
		tools.AnalyzeImageBase64,
		tools.AnalyzeImageURL,
		tools.AnalyzePDF,
		tools.ExplainCapabilities,
	}, tools.GetNames(r.List()...))

	for _, tool := range r.List() {
		assert.NotEmpty(t, tool.Summary(), tool.Name())
		assert.NotEmpty(t, tool.Description(), tool.Name())
		params := tool.Parameters()
		require.NotNil(t, params, tool.Name())
		assert.Equal(t, "object", params.Type, tool.Name())
	}

	d, ok := r.Get(tools.SearchWeb)
	require.True(t, ok)
	assert.Equal(t, []string{"query"}, d.Parameters().Required)
	assert.True(t, d.Schema().IsRequired("query"))

	_, ok = r.Get("search_images")
	assert.False(t, ok)

	assert.Equal(t, tools.AnalyzePDF, tools.Find(r.List(), tools.AnalyzePDF).Name())
	assert.Nil(t, tools.Find(r.List(), "nope"))
	assert.Contains(t, tools.GetDescriptions(r.List()...), "- search_academic: ")
}

func TestRegistryModels(t *testing.T) {
	t.Parallel()

	r := newRegistry(t)
	assert.Equal(t, []string{"sonar", "sonar-deep-research", "sonar-pro", "sonar-reasoning", "sonar-reasoning-pro"}, r.Models())
	assert.True(t, r.IsSupportedModel(sonar.ModelSonarPro))
	assert.False(t, r.IsSupportedModel("sonar-ultra"))

	r = newRegistry(t, tools.WithModels("sonar-ultra"))
	assert.True(t, r.IsSupportedModel("sonar-ultra"))

	args, err := r.Validate(&tools.ToolCall{
		Name:      tools.SearchWeb,
		Arguments: map[string]any{"query": "q", "model": "sonar-ultra"},
	})
	require.NoError(t, err)
	assert.Equal(t, "sonar-ultra", args.(*tools.SearchWebArgs).Model)
}

func TestValidate(t *testing.T) {
	t.Parallel()
	r := newRegistry(t)

	t.Run("search_web", func(t *testing.T) {
		args, err := r.Validate(&tools.ToolCall{
			Name: tools.SearchWeb,
			Arguments: map[string]any{
				"query":               "fusion energy",
				"model":               "sonar-pro",
				"search_context_size": "high",
				"search_recency":      "week",
				"temperature":         0.7,
			},
		})
		require.NoError(t, err)
		a, ok := args.(*tools.SearchWebArgs)
		require.True(t, ok)
		assert.Equal(t, "fusion energy", a.Query)
		assert.Equal(t, "sonar-pro", a.Model)
		assert.Equal(t, "high", a.ContextSize)
		assert.Equal(t, "week", a.Recency)
		require.NotNil(t, a.Temperature)
		assert.Equal(t, 0.7, *a.Temperature)
	})

	t.Run("weak_types", func(t *testing.T) {
		args, err := r.Validate(&tools.ToolCall{
			Name: tools.SearchWebAdvanced,
			Arguments: map[string]any{
				"query":           "q",
				"temperature":     "0.5",
				"include_domains": "example.com",
			},
		})
		require.NoError(t, err)
		a := args.(*tools.SearchWebAdvancedArgs)
		require.NotNil(t, a.Temperature)
		assert.Equal(t, 0.5, *a.Temperature)
		assert.Equal(t, []string{"example.com"}, a.IncludeDomains)

		args, err = r.Validate(&tools.ToolCall{
			Name:      tools.AnalyzePDF,
			Arguments: map[string]any{"pdf_url": "https://example.com/a.pdf", "include_web_search": "true"},
		})
		require.NoError(t, err)
		assert.True(t, args.(*tools.AnalyzePDFArgs).IncludeWebSearch)
	})

	t.Run("explain_no_args", func(t *testing.T) {
		args, err := r.Validate(&tools.ToolCall{Name: tools.ExplainCapabilities})
		require.NoError(t, err)
		assert.Equal(t, tools.ExplainCapabilities, args.ToolName())
		assert.Empty(t, args.(*tools.ExplainCapabilitiesArgs).Format)
	})

	tcs := []struct {
		name  string
		tool  string
		args  map[string]any
		field string
		msg   string
	}{
		{"unknown_tool", "search_images", map[string]any{"query": "q"}, "name", `unknown tool "search_images"`},
		{"unknown_argument", tools.SearchWeb, map[string]any{"query": "q", "max_results": 3}, "max_results", `unknown argument "max_results" for tool search_web`},
		{"missing_query", tools.SearchWeb, map[string]any{}, "query", "query is required"},
		{"nil_args", tools.SearchAcademic, nil, "query", "query is required"},
		{"query_type", tools.SearchWeb, map[string]any{"query": map[string]any{"a": 1}}, "query", ""},
		{"temperature_type", tools.SearchWeb, map[string]any{"query": "q", "temperature": "warm"}, "temperature", ""},
		{"temperature_range", tools.SearchWeb, map[string]any{"query": "q", "temperature": 2.0}, "temperature", "temperature must be in the range [0, 2)"},
		{"temperature_negative", tools.SearchWeb, map[string]any{"query": "q", "temperature": -0.1}, "temperature", ""},
		{"model", tools.SearchWeb, map[string]any{"query": "q", "model": "gpt-4"}, "model", `unsupported model "gpt-4"`},
		{"context_size", tools.SearchWeb, map[string]any{"query": "q", "search_context_size": "huge"}, "search_context_size", `unsupported search_context_size "huge": must be one of low, medium, high, auto`},
		{"recency", tools.SearchWebAdvanced, map[string]any{"query": "q", "search_recency": "decade"}, "search_recency", ""},
		{"search_mode", tools.SearchWebAdvanced, map[string]any{"query": "q", "search_mode": "news"}, "search_mode", ""},
		{"date_format", tools.SearchWebAdvanced, map[string]any{"query": "q", "search_after_date": "2025-01-31"}, "search_after_date", "search_after_date must be a date in MM/DD/YYYY format"},
		{"academic_date", tools.SearchAcademic, map[string]any{"query": "q", "after_date": "13/01/2025"}, "after_date", ""},
		{"empty_domain", tools.SearchWebAdvanced, map[string]any{"query": "q", "include_domains": []any{""}}, "include_domains", ""},
		{"image_url", tools.AnalyzeImageURL, map[string]any{"image_url": "ftp://example.com/a.png"}, "image_url", "image_url must be a valid http or https URL"},
		{"image_url_missing", tools.AnalyzeImageURL, map[string]any{"question": "what?"}, "image_url", "image_url is required"},
		{"pdf_url", tools.AnalyzePDF, map[string]any{"pdf_url": "not a url"}, "pdf_url", ""},
		{"image_type", tools.AnalyzeImageBase64, map[string]any{"image_base64": "aGVsbG8=", "image_type": "image/bmp"}, "image_type", ""},
		{"format", tools.ExplainCapabilities, map[string]any{"format": "xml"}, "format", ""},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			_, err := r.Validate(&tools.ToolCall{Name: tc.tool, Arguments: tc.args})
			require.Error(t, err)
			te, ok := toolerr.As(err)
			require.True(t, ok, "%T: %v", err, err)
			assert.Equal(t, toolerr.InvalidArgument, te.Code)
			assert.Equal(t, tc.field, te.Field, te.Message)
			if tc.msg != "" {
				assert.Contains(t, te.Message, tc.msg)
			}
		})
	}
}
