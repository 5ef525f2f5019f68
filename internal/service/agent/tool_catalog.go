package agent

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/w-h-a/factfinder/generator"
	toolhandler "github.com/w-h-a/factfinder/tool_handler"
)

type catalogEntry struct {
	handler toolhandler.ToolHandler
	spec    toolhandler.ToolSpec
}

// ToolCatalog holds the agent's tools in registration order. Lookups ignore
// case and surrounding space; advertised names keep their original spelling.
type ToolCatalog struct {
	entries []catalogEntry
	index   map[string]int
	mtx     sync.RWMutex
}

func catalogKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (c *ToolCatalog) Register(th toolhandler.ToolHandler) error {
	if th == nil {
		return errors.New("tool is nil")
	}

	spec := th.Spec()

	key := catalogKey(spec.Name)
	if len(key) == 0 {
		return errors.New("tool name is required")
	}

	if spec.Kind == 0 {
		return fmt.Errorf("tool %s has no kind", spec.Name)
	}

	c.mtx.Lock()
	defer c.mtx.Unlock()

	if _, ok := c.index[key]; ok {
		return fmt.Errorf("tool %s already registered", spec.Name)
	}

	c.index[key] = len(c.entries)
	c.entries = append(c.entries, catalogEntry{handler: th, spec: spec})

	return nil
}

// Definitions renders every registered tool for the chat model.
func (c *ToolCatalog) Definitions() []generator.ToolDefinition {
	c.mtx.RLock()
	defer c.mtx.RUnlock()

	defs := make([]generator.ToolDefinition, 0, len(c.entries))
	for _, e := range c.entries {
		defs = append(defs, generator.ToolDefinition{
			Name:        e.spec.Name,
			Description: e.spec.Description,
			InputSchema: e.spec.InputSchema,
		})
	}

	return defs
}

func (c *ToolCatalog) Names() []string {
	c.mtx.RLock()
	defer c.mtx.RUnlock()

	names := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		names = append(names, e.spec.Name)
	}

	return names
}

func (c *ToolCatalog) Get(name string) (toolhandler.ToolHandler, toolhandler.ToolSpec, bool) {
	c.mtx.RLock()
	defer c.mtx.RUnlock()

	i, ok := c.index[catalogKey(name)]
	if !ok {
		return nil, toolhandler.ToolSpec{}, false
	}

	return c.entries[i].handler, c.entries[i].spec, true
}

func NewToolCatalog() *ToolCatalog {
	return &ToolCatalog{
		index: map[string]int{},
	}
}
