package report_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/effective-security/sonarmcp/pkg/pricing"
	"github.com/effective-security/sonarmcp/pkg/sonar"
	"github.com/effective-security/sonarmcp/report"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func fusionRequest() *sonar.SearchRequest {
	return &sonar.SearchRequest{
		Tool:        "search_web",
		Query:       "fusion energy breakthroughs",
		Model:       sonar.ModelSonar,
		ContextSize: sonar.ContextMedium,
		Temperature: 0.2,
	}
}

func fusionResponse() *sonar.APIResponse {
	return &sonar.APIResponse{
		ID:      "resp-1",
		Model:   sonar.ModelSonar,
		Content: ptr("  Fusion has advanced.\n"),
		Usage: &sonar.Usage{
			PromptTokens:     50,
			CompletionTokens: 200,
			TotalTokens:      250,
		},
		Citations: []string{"https://a", "https://b"},
	}
}

func TestFormat_Example(t *testing.T) {
	t.Parallel()

	f := report.New(pricing.Default)
	r := f.Format(fusionRequest(), fusionResponse())

	exp := `**Request Details:**
- Tool: search_web
- Model: sonar
- Search Context Size: medium
- Temperature: 0.2

---

Fusion has advanced.

**Usage:** 50 prompt + 200 completion = 250 tokens | estimated cost: $0.000250

**Citations:**
1. https://a
2. https://b
`
	if diff := cmp.Diff(exp, r.String()); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}

	assert.Empty(t, r.Banner())
	assert.Equal(t, "Fusion has advanced.", r.Body())
	assert.Equal(t, "$0.000250", r.Usage().CostText())
	assert.Equal(t, []string{"https://a", "https://b"}, r.Citations())
	assert.Empty(t, r.Notes())
}

func TestFormat_Idempotent(t *testing.T) {
	t.Parallel()

	f := report.New(nil)
	req := fusionRequest()
	resp := fusionResponse()

	first := f.Format(req, resp).String()
	second := f.Format(req, resp).String()
	assert.Equal(t, first, second)

	// inputs are not modified
	assert.Equal(t, fusionRequest(), req)
	assert.Equal(t, fusionResponse(), resp)
}

func TestFormat_NoCitations(t *testing.T) {
	t.Parallel()

	resp := fusionResponse()
	resp.Citations = nil

	s := report.New(nil).Format(fusionRequest(), resp).String()
	assert.NotContains(t, s, "Citations")
	assert.True(t, strings.HasSuffix(s, "$0.000250\n"), s)
}

func TestFormat_CitationOrder(t *testing.T) {
	t.Parallel()

	f := report.New(nil)
	for range 20 {
		n := gofakeit.IntRange(1, 15)
		citations := make([]string, n)
		for i := range citations {
			citations[i] = gofakeit.URL()
		}

		resp := fusionResponse()
		resp.Citations = citations
		r := f.Format(fusionRequest(), resp)
		require.Equal(t, citations, r.Citations())

		s := r.String()
		last := strings.Index(s, "**Citations:**")
		require.Positive(t, last)
		for i, c := range citations {
			line := fmt.Sprintf("\n%d. %s", i+1, c)
			idx := strings.Index(s[last:], line)
			require.GreaterOrEqual(t, idx, 0, "missing %q", line)
			last += idx + 1
		}
	}
}

func TestFormat_Banner(t *testing.T) {
	t.Parallel()

	f := report.New(nil)

	t.Run("academic_wins", func(t *testing.T) {
		req := fusionRequest()
		req.Academic = true
		req.Model = sonar.AcademicModel
		req.RequestedModel = sonar.ModelSonar
		req.IncludeDomains = []string{"arxiv.org"}
		req.ExcludeDomains = []string{"reddit.com"}

		r := f.Format(req, fusionResponse())
		assert.Equal(t, report.AcademicBanner, r.Banner())

		s := r.String()
		assert.True(t, strings.HasPrefix(s, report.AcademicBanner+"\n\n"), s)
		assert.NotContains(t, s, "DOMAIN FILTER ACTIVE")
		assert.Equal(t, 1, strings.Count(s, "ACADEMIC SEARCH MODE ACTIVE"))
		assert.Contains(t, s, "- Model: sonar-reasoning-pro (requested: sonar)")
		assert.Contains(t, s, "- Search Mode: academic")
		assert.Contains(t, s, "- Included Domains: arxiv.org")
		assert.Contains(t, s, "- Excluded Domains: reddit.com")
	})

	t.Run("domains", func(t *testing.T) {
		req := fusionRequest()
		req.IncludeDomains = []string{"go.dev", "github.com"}
		req.ExcludeDomains = []string{"reddit.com"}

		r := f.Format(req, fusionResponse())
		assert.Equal(t, "**DOMAIN FILTER ACTIVE**: including go.dev, github.com; excluding reddit.com", r.Banner())

		req.IncludeDomains = nil
		r = f.Format(req, fusionResponse())
		assert.Equal(t, "**DOMAIN FILTER ACTIVE**: excluding reddit.com", r.Banner())
	})

	t.Run("none", func(t *testing.T) {
		s := f.Format(fusionRequest(), fusionResponse()).String()
		assert.True(t, strings.HasPrefix(s, "**Request Details:**"), s)
	})
}

func TestFormat_Usage(t *testing.T) {
	t.Parallel()

	f := report.New(pricing.Default)

	t.Run("unknown_model", func(t *testing.T) {
		req := fusionRequest()
		req.Model = "sonar-next"

		r := f.Format(req, fusionResponse())
		assert.Nil(t, r.Usage().EstimatedCost)
		assert.Equal(t, "unavailable", r.Usage().CostText())
		assert.Contains(t, r.String(), `estimated cost: unavailable (no price for model "sonar-next")`)
	})

	t.Run("custom_price", func(t *testing.T) {
		f := report.New(pricing.Default.Merge(pricing.Table{"sonar-next": {Prompt: 1, Completion: 2}}))
		req := fusionRequest()
		req.Model = "sonar-next"

		r := f.Format(req, fusionResponse())
		assert.Equal(t, "$0.450000", r.Usage().CostText())
	})

	t.Run("reported_cost", func(t *testing.T) {
		resp := fusionResponse()
		resp.Usage.ReportedCost = ptr(0.00825)

		s := f.Format(fusionRequest(), resp).String()
		assert.Contains(t, s, "estimated cost: $0.000250 | reported cost: $0.008250")
	})

	t.Run("missing", func(t *testing.T) {
		resp := fusionResponse()
		resp.Usage = nil
		resp.Missing = []string{"usage"}

		r := f.Format(fusionRequest(), resp)
		assert.False(t, r.Usage().Available)
		s := r.String()
		assert.Contains(t, s, "\n\n**Usage:** unavailable\n\n")
		assert.True(t, strings.HasSuffix(s, "_Note: some response data was unavailable: usage._\n"), s)
	})
}

func TestFormat_Degraded(t *testing.T) {
	t.Parallel()

	resp := &sonar.APIResponse{Missing: []string{"content", "usage"}}
	r := report.New(nil).Format(fusionRequest(), resp)

	exp := `**Request Details:**
- Tool: search_web
- Model: sonar
- Search Context Size: medium
- Temperature: 0.2

---

(no content returned by the API)

**Usage:** unavailable

_Note: some response data was unavailable: content, usage._
`
	if diff := cmp.Diff(exp, r.String()); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestFormat_Sources(t *testing.T) {
	t.Parallel()

	resp := fusionResponse()
	for i := range 7 {
		resp.SearchResults = append(resp.SearchResults, sonar.SearchResult{
			Title: fmt.Sprintf("Result %d", i),
			URL:   fmt.Sprintf("https://example.com/%d", i),
		})
	}
	resp.SearchResults[0].URL = "https://arxiv.org/abs/1"
	resp.SearchResults[1].Title = ""

	s := report.New(nil).Format(fusionRequest(), resp).String()

	exp := `**Sources consulted:**
- [academic] Result 0: https://arxiv.org/abs/1
- Untitled: https://example.com/1
- Result 2: https://example.com/2
- Result 3: https://example.com/3
- Result 4: https://example.com/4
`
	assert.True(t, strings.HasSuffix(s, exp), s)
	assert.NotContains(t, s, "Result 5")
	assert.Less(t, strings.Index(s, "**Citations:**"), strings.Index(s, "**Sources consulted:**"))
}

func TestFormat_Attachment(t *testing.T) {
	t.Parallel()

	req := &sonar.SearchRequest{
		Tool:        "analyze_pdf",
		Query:       "Summarize this document.",
		Model:       sonar.ModelSonarPro,
		Temperature: 0.2,
		WebSearch:   true,
		Attachment:  &sonar.Attachment{Kind: sonar.AttachmentPDFURL, Payload: "https://example.com/a.pdf"},
	}
	r := report.New(nil).Format(req, fusionResponse())

	exp := []report.EchoLine{
		{Label: "Tool", Value: "analyze_pdf"},
		{Label: "Model", Value: "sonar-pro"},
		{Label: "Attachment", Value: "pdf-url https://example.com/a.pdf"},
		{Label: "Web Search", Value: "enabled"},
		{Label: "Temperature", Value: "0.2"},
	}
	assert.Equal(t, exp, r.Echo())
	assert.Equal(t, "$0.003150", r.Usage().CostText())
}

func TestFormat_BlankContent(t *testing.T) {
	t.Parallel()

	resp := fusionResponse()
	resp.Content = ptr(" \n\t\n ")
	resp.Citations = nil
	r := report.New(pricing.Default).Format(fusionRequest(), resp)

	assert.Equal(t, report.NoContent, r.Body())
	assert.Equal(t, []string{"the API returned empty content"}, r.Notes())

	text := r.String()
	assert.NotContains(t, text, "---\n\n\n")
	assert.Contains(t, text, "---\n\n"+report.NoContent+"\n\n**Usage:**")
	assert.True(t, strings.HasSuffix(text, "_Note: the API returned empty content._\n"))
}

func TestFormat_CitationWithoutURL(t *testing.T) {
	t.Parallel()

	resp := fusionResponse()
	resp.Citations = []string{"https://a", "", "https://c"}
	resp.Missing = []string{"citations"}
	r := report.New(pricing.Default).Format(fusionRequest(), resp)

	assert.Equal(t, []string{"https://a", "", "https://c"}, r.Citations())
	text := r.String()
	assert.Contains(t, text, "**Citations:**\n1. https://a\n2. "+report.MissingCitation+"\n3. https://c")
	assert.Contains(t, text, "_Note: some response data was unavailable: citations._")
}
