// Package connectors defines the boundary between the valuation pipeline and
// external sources of company fundamentals. A connector resolves a ticker to
// the normalized base-year record the inputs builder consumes.
package connectors

import (
	"fmt"
	"sort"
	"sync"

	"github.com/fcff-tools/ginzu/internal/config"
)

// Connector fetches normalized company fundamentals for a ticker.
type Connector interface {
	// Name identifies the connector in logs and errors.
	Name() string
	// Fetch returns the fundamentals for the given ticker.
	Fetch(ticker string) (*config.Company, error)
}

// NotFoundError reports a ticker the connector has no data for. Callers can
// distinguish it from transport or parse failures.
type NotFoundError struct {
	Ticker    string
	Connector string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no fundamentals for ticker %q in connector %s", e.Ticker, e.Connector)
}

// Registry holds the configured connectors keyed by name.
type Registry struct {
	mu         sync.RWMutex
	connectors map[string]Connector
}

// NewRegistry returns an empty connector registry.
func NewRegistry() *Registry {
	return &Registry{connectors: make(map[string]Connector)}
}

// Register adds a connector under its name, replacing any previous one.
func (r *Registry) Register(c Connector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connectors[c.Name()] = c
}

// Get returns the named connector.
func (r *Registry) Get(name string) (Connector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.connectors[name]
	if !ok {
		return nil, fmt.Errorf("unknown connector %q (registered: %v)", name, r.names())
	}
	return c, nil
}

func (r *Registry) names() []string {
	names := make([]string, 0, len(r.connectors))
	for name := range r.connectors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
