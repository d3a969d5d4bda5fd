package tools

import (
	"fmt"

	"github.com/cortexai/roster/internal/llm"
)

// Catalog is the ordered, immutable set of tools offered to the model.
type Catalog struct {
	tools  []Tool
	byName map[Name]int
}

// NewCatalog returns a catalog in the given order. Duplicate names are
// rejected.
func NewCatalog(tools ...Tool) (*Catalog, error) {
	c := &Catalog{
		tools:  make([]Tool, 0, len(tools)),
		byName: make(map[Name]int, len(tools)),
	}
	for _, t := range tools {
		if t.Name == "" {
			return nil, fmt.Errorf("tool with empty name")
		}
		if _, dup := c.byName[t.Name]; dup {
			return nil, fmt.Errorf("duplicate tool %q", t.Name)
		}
		c.byName[t.Name] = len(c.tools)
		c.tools = append(c.tools, t)
	}
	return c, nil
}

// DefaultCatalog returns the person tools.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(
		CreatePersonTool(),
		UpdatePersonTool(),
		LookupPersonTool(),
		MergePersonsTool(),
	)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup resolves a tool by the name the model used.
func (c *Catalog) Lookup(name string) (Tool, bool) {
	i, ok := c.byName[Name(name)]
	if !ok {
		return Tool{}, false
	}
	return c.tools[i], true
}

func (c *Catalog) Tools() []Tool {
	out := make([]Tool, len(c.tools))
	copy(out, c.tools)
	return out
}

func (c *Catalog) Names() []Name {
	out := make([]Name, len(c.tools))
	for i, t := range c.tools {
		out[i] = t.Name
	}
	return out
}

// Specs returns the catalog in the form sent to the model.
func (c *Catalog) Specs() []llm.ToolSpec {
	out := make([]llm.ToolSpec, len(c.tools))
	for i, t := range c.tools {
		out[i] = llm.ToolSpec{
			Name:        string(t.Name),
			Description: t.Description,
			InputSchema: t.InputSchema,
		}
	}
	return out
}
