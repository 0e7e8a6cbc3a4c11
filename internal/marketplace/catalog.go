// Package marketplace holds the mock agent catalog. Agents are seeded from
// YAML files; install state lives in memory only.
package marketplace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/voyagehq/journeyd/internal/domain"
	"gopkg.in/yaml.v3"
)

// Agent describes a marketplace agent
type Agent struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description,omitempty"`
	Category    string   `yaml:"category" json:"category,omitempty"`
	Keywords    []string `yaml:"keywords" json:"keywords,omitempty"`
	Installed   bool     `yaml:"installed" json:"installed"`
}

type seedFile struct {
	Agents []Agent `yaml:"agents"`
}

// Catalog is the in-memory agent registry
type Catalog struct {
	mu     sync.RWMutex
	agents map[string]*Agent
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{agents: make(map[string]*Agent)}
}

// LoadDir reads every .yaml/.yml seed file in dir into the catalog.
// Reloading keeps install state for agents that survive the reload.
func (c *Catalog) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading seed directory: %w", err)
	}

	loaded := make(map[string]*Agent)
	for _, de := range entries {
		ext := filepath.Ext(de.Name())
		if de.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, de.Name()))
		if err != nil {
			return fmt.Errorf("reading seed file %s: %w", de.Name(), err)
		}

		var sf seedFile
		if err := yaml.Unmarshal(data, &sf); err != nil {
			return fmt.Errorf("parsing seed file %s: %w", de.Name(), err)
		}

		for i := range sf.Agents {
			a := sf.Agents[i]
			if a.ID == "" {
				return fmt.Errorf("seed file %s: agent without id", de.Name())
			}
			loaded[a.ID] = &a
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for id, a := range loaded {
		if prev, ok := c.agents[id]; ok && prev.Installed {
			a.Installed = true
		}
	}
	c.agents = loaded
	return nil
}

// List returns all agents sorted by id
func (c *Catalog) List() []Agent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Agent, 0, len(c.agents))
	for _, a := range c.agents {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Get returns the agent with the given id
func (c *Catalog) Get(id string) (Agent, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.agents[id]
	if !ok {
		return Agent{}, domain.NotFound("agent", id)
	}
	return *a, nil
}

// Install marks an agent installed
func (c *Catalog) Install(id string) error {
	return c.setInstalled(id, true)
}

// Uninstall marks an agent not installed
func (c *Catalog) Uninstall(id string) error {
	return c.setInstalled(id, false)
}

func (c *Catalog) setInstalled(id string, installed bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.agents[id]
	if !ok {
		return domain.NotFound("agent", id)
	}
	a.Installed = installed
	return nil
}

// Installed returns installed agents sorted by id
func (c *Catalog) Installed() []Agent {
	var out []Agent
	for _, a := range c.List() {
		if a.Installed {
			out = append(out, a)
		}
	}
	return out
}

// KeywordMatcher proposes an installed agent whose keywords best match a
// task's text. Deterministic: agents are scanned in id order and the
// highest hit count wins, earliest id breaking ties.
type KeywordMatcher struct {
	Catalog *Catalog
}

// Match implements the mutator's AgentMatcher contract
func (m KeywordMatcher) Match(taskText string) (string, bool) {
	text := strings.ToLower(taskText)

	bestID := ""
	bestHits := 0
	for _, a := range m.Catalog.Installed() {
		hits := 0
		for _, kw := range a.Keywords {
			if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
				hits++
			}
		}
		if hits > bestHits {
			bestHits = hits
			bestID = a.ID
		}
	}
	return bestID, bestID != ""
}
