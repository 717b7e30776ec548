package source

import "context"

// Static serves dependencies from a [Definition]. Names are used as given;
// there is no index.
type Static struct {
	def *Definition
}

// NewStatic creates a source over def.
func NewStatic(def *Definition) *Static {
	if def == nil {
		def = &Definition{deps: map[string][]string{}}
	}
	return &Static{def: def}
}

// Name returns "static".
func (s *Static) Name() string { return "static" }

// Resolve returns id unchanged.
func (s *Static) Resolve(ctx context.Context, id string) (string, error) {
	return id, nil
}

// Dependencies returns the declared dependencies of id. Undeclared packages
// are leaves.
func (s *Static) Dependencies(ctx context.Context, id string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	deps, ok := s.def.Dependencies(id)
	if !ok {
		return []string{}, nil
	}
	return deps, nil
}

// Definition returns the underlying definition.
func (s *Static) Definition() *Definition { return s.def }

var _ Source = (*Static)(nil)
