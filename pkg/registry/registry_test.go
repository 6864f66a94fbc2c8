package registry_test

import (
	"testing"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/dsl"
	"github.com/aretw0/weft/pkg/ports"
	"github.com/aretw0/weft/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.ProgramResolver = (*registry.Registry)(nil)

func TestRegistry(t *testing.T) {
	r := registry.NewRegistry()

	for _, name := range []string{"zeta", "alpha"} {
		prog, err := dsl.New(name).Assign("x", domain.Lit(1)).Build()
		require.NoError(t, err)
		require.NoError(t, r.Register(prog))
	}

	assert.Equal(t, []string{"alpha", "zeta"}, r.Programs())

	p, err := r.Program("alpha")
	require.NoError(t, err)
	assert.Equal(t, "alpha", p.Name)

	_, err = r.Program("missing")
	assert.ErrorIs(t, err, domain.ErrProgramNotFound)

	r.Unregister("alpha")
	assert.Equal(t, []string{"zeta"}, r.Programs())
}

func TestRegistry_RejectsInvalidProgram(t *testing.T) {
	r := registry.NewRegistry()

	broken := &domain.Program{
		Name:  "broken",
		Graph: domain.NewGraph(nil, nil, 0),
	}
	err := r.Register(broken)
	assert.ErrorIs(t, err, domain.ErrInvalidGraph)
	assert.Empty(t, r.Programs())
}
