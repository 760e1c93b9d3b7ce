package sonar

import (
	"github.com/effective-security/sonarmcp/pkg/toolerr"
	"github.com/tidwall/gjson"
)

// Decode parses the chat completions response.
// Absent fields do not fail the decoding, they are listed in Missing.
func Decode(body []byte) (*APIResponse, error) {
	if !gjson.ValidBytes(body) {
		return nil, toolerr.New(toolerr.UpstreamError, "API returned a response that is not valid JSON")
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return nil, toolerr.New(toolerr.UpstreamError, "API returned a response that is not a JSON object")
	}

	res := &APIResponse{
		ID:    doc.Get("id").String(),
		Model: doc.Get("model").String(),
	}

	content := doc.Get("choices.0.message.content")
	if content.Type == gjson.String {
		s := content.String()
		res.Content = &s
	} else {
		res.Missing = append(res.Missing, "content")
	}

	res.Usage = decodeUsage(doc.Get("usage"))
	if res.Usage == nil {
		res.Missing = append(res.Missing, "usage")
	}

	// entries without a URL keep their position, the numbering is the API's
	incomplete := false
	doc.Get("citations").ForEach(func(_, v gjson.Result) bool {
		// newer API versions may return objects
		if v.IsObject() {
			v = v.Get("url")
		}
		s := v.String()
		if s == "" {
			incomplete = true
		}
		res.Citations = append(res.Citations, s)
		return true
	})
	if incomplete {
		res.Missing = append(res.Missing, "citations")
	}

	doc.Get("search_results").ForEach(func(_, v gjson.Result) bool {
		url := v.Get("url").String()
		if url != "" {
			res.SearchResults = append(res.SearchResults, SearchResult{
				Title: v.Get("title").String(),
				URL:   url,
				Date:  v.Get("date").String(),
			})
		}
		return true
	})

	return res, nil
}

func decodeUsage(u gjson.Result) *Usage {
	if !u.IsObject() {
		return nil
	}
	prompt := u.Get("prompt_tokens")
	completion := u.Get("completion_tokens")
	if prompt.Type != gjson.Number || completion.Type != gjson.Number {
		return nil
	}

	usage := &Usage{
		PromptTokens:      prompt.Int(),
		CompletionTokens:  completion.Int(),
		TotalTokens:       u.Get("total_tokens").Int(),
		SearchContextSize: u.Get("search_context_size").String(),
	}
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
	}

	cost := u.Get("cost")
	if cost.IsObject() {
		cost = cost.Get("total_cost")
	}
	if cost.Type == gjson.Number {
		v := cost.Float()
		usage.ReportedCost = &v
	}
	return usage
}
