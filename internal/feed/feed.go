package feed

import (
	"fmt"

	"NewsIngest/internal/domain"
)

// Parser turns one raw feed document into candidate records. Implementations
// must be pure with respect to the store: no network and no persistence.
type Parser interface {
	Name() string
	Parse(sourceName, raw string) ([]domain.Candidate, error)
}

// Registry keeps a mapping from parser names to their implementations so feed
// sources can pick a strategy in config.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{parsers: map[string]Parser{}}
}

// Register adds or replaces a parser implementation.
func (r *Registry) Register(parser Parser) {
	if r.parsers == nil {
		r.parsers = map[string]Parser{}
	}
	r.parsers[parser.Name()] = parser
}

// Resolve returns a parser by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Parser, error) {
	if parser, ok := r.parsers[name]; ok {
		return parser, nil
	}
	return nil, fmt.Errorf("parser %s is not registered", name)
}
