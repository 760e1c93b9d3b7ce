package tools

import (
	"fmt"
	"strings"

	"github.com/effective-security/sonarmcp/encoding"
	"github.com/effective-security/sonarmcp/pkg/pricing"
	"github.com/effective-security/sonarmcp/pkg/sonar"
	"github.com/effective-security/sonarmcp/pkg/toolerr"
)

// Capabilities is the static description of the server.
type Capabilities struct {
	Tools  []ToolInfo  `json:"tools" yaml:"tools" toml:"tools" comment:"Tools exposed by the server"`
	Models []ModelInfo `json:"models" yaml:"models" toml:"models" comment:"Supported models with prices in USD per 1000 tokens"`
	Notes  []string    `json:"notes,omitempty" yaml:"notes,omitempty" toml:"notes,omitempty"`
}

// ToolInfo describes a tool.
type ToolInfo struct {
	Name      string         `json:"name" yaml:"name" toml:"name"`
	Summary   string         `json:"summary" yaml:"summary" toml:"summary"`
	Arguments []ArgumentInfo `json:"arguments,omitempty" yaml:"arguments,omitempty" toml:"arguments,omitempty"`
}

// ArgumentInfo describes a tool argument.
type ArgumentInfo struct {
	Name        string   `json:"name" yaml:"name" toml:"name"`
	Type        string   `json:"type" yaml:"type" toml:"type"`
	Required    bool     `json:"required" yaml:"required" toml:"required"`
	Default     string   `json:"default,omitempty" yaml:"default,omitempty" toml:"default,omitempty"`
	Enum        []string `json:"enum,omitempty" yaml:"enum,omitempty" toml:"enum,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
}

// ModelInfo describes a model and its price per 1000 tokens.
type ModelInfo struct {
	Name            string  `json:"name" yaml:"name" toml:"name"`
	PromptPrice     float64 `json:"prompt_price" yaml:"prompt_price" toml:"prompt_price"`
	CompletionPrice float64 `json:"completion_price" yaml:"completion_price" toml:"completion_price"`
	// Priced is false for models accepted without a known price
	Priced bool `json:"priced" yaml:"priced" toml:"priced"`
}

// Explain returns the capabilities of the registry with the effective
// defaults and prices.
func Explain(r *Registry, defaults Defaults, prices pricing.Table) *Capabilities {
	c := &Capabilities{}
	for _, d := range r.tools {
		c.Tools = append(c.Tools, toolInfo(d, defaults))
	}
	for _, m := range r.Models() {
		info := ModelInfo{Name: m}
		if p, ok := prices[m]; ok {
			info.PromptPrice = p.Prompt
			info.CompletionPrice = p.Completion
			info.Priced = true
		}
		c.Models = append(c.Models, info)
	}
	c.Notes = []string{
		fmt.Sprintf("Academic searches always use %s with a research assistant system prompt.", sonar.AcademicModel),
		fmt.Sprintf("Domain filters accept at most %d domains and a domain cannot be both included and excluded.", MaxDomains),
		"Dates use the MM/DD/YYYY format.",
		fmt.Sprintf("Temperature defaults to %g and must be in the range [0, %g).", sonar.DefaultTemperature, sonar.MaxTemperature),
		"Costs are estimated from the price table in USD per 1000 tokens and shown as unavailable for models without a price.",
	}
	return c
}

func toolInfo(d *Definition, defaults Defaults) ToolInfo {
	info := ToolInfo{
		Name:    d.Name(),
		Summary: d.Summary(),
	}
	for _, name := range d.schema.Properties() {
		p, _ := d.schema.Property(name)
		arg := ArgumentInfo{
			Name:        name,
			Type:        p.Type,
			Required:    d.schema.IsRequired(name),
			Description: p.Description,
		}
		if p.Items != nil && p.Items.Type != "" {
			arg.Type = p.Type + " of " + p.Items.Type
		}
		if p.Default != nil {
			arg.Default = fmt.Sprint(p.Default)
		}
		for _, e := range p.Enum {
			arg.Enum = append(arg.Enum, fmt.Sprint(e))
		}

		// defaults configured for the process
		switch {
		case name == "model" && (d.Name() == SearchWeb || d.Name() == SearchWebAdvanced):
			arg.Default = defaults.Model
		case name == "search_context_size" && d.Name() == SearchWeb:
			arg.Default = string(defaults.ContextSize)
		}
		info.Arguments = append(info.Arguments, arg)
	}
	return info
}

// Render returns the capabilities in the format: text, json, yaml or toml.
func (c *Capabilities) Render(format string) (string, error) {
	out, err := encoding.Marshal(format, c)
	if err != nil {
		return "", toolerr.InvalidArgf("format", "%s", err.Error())
	}
	return out, nil
}

// String returns the capabilities as markdown text.
func (c *Capabilities) String() string {
	var b strings.Builder
	b.WriteString("# Perplexity Sonar MCP server\n\n## Tools\n")
	for _, t := range c.Tools {
		fmt.Fprintf(&b, "\n### %s\n%s\n", t.Name, t.Summary)
		if len(t.Arguments) > 0 {
			b.WriteString("\n")
		}
		for _, a := range t.Arguments {
			fmt.Fprintf(&b, "- `%s` (%s", a.Name, a.Type)
			if a.Required {
				b.WriteString(", required")
			}
			if a.Default != "" {
				fmt.Fprintf(&b, ", default: %s", a.Default)
			}
			b.WriteString(")")
			if a.Description != "" {
				b.WriteString(": ")
				b.WriteString(a.Description)
			}
			if len(a.Enum) > 0 {
				fmt.Fprintf(&b, " [%s]", strings.Join(a.Enum, ", "))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n## Models\n\n")
	for _, m := range c.Models {
		if m.Priced {
			fmt.Fprintf(&b, "- %s: $%g prompt, $%g completion per 1000 tokens\n", m.Name, m.PromptPrice, m.CompletionPrice)
		} else {
			fmt.Fprintf(&b, "- %s: price unavailable\n", m.Name)
		}
	}

	if len(c.Notes) > 0 {
		b.WriteString("\n## Notes\n\n")
		for _, n := range c.Notes {
			b.WriteString("- ")
			b.WriteString(n)
			b.WriteString("\n")
		}
	}
	return b.String()
}
