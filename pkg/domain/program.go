package domain

import (
	"errors"
	"fmt"

	"github.com/aretw0/weft/pkg/schema"
)

// Program is one executable unit: a validated graph rooted at a known entry
// node, plus the schema inbound payloads must satisfy.
type Program struct {
	Name    string
	Version string
	Graph   *Graph
	Input   schema.Schema
}

// Validate checks the program and its graph.
func (p *Program) Validate() error {
	if p == nil {
		return errors.New("program is nil")
	}
	if p.Name == "" {
		return errors.New("program name is required")
	}
	if p.Graph == nil {
		return fmt.Errorf("program %s: %w: no graph", p.Name, ErrInvalidGraph)
	}
	if err := p.Graph.Validate(); err != nil {
		return fmt.Errorf("program %s: %w", p.Name, err)
	}
	return nil
}
