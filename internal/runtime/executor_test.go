package runtime

import (
	"testing"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutor_Eval(t *testing.T) {
	ectx := domain.NewExecutionContext(domain.Message{
		Payload: map[string]any{"n": 3.0, "name": "ana"},
	}, nil)
	require.NoError(t, ectx.Bind("count", 3))

	tests := []struct {
		name    string
		expr    domain.Expr
		want    any
		wantErr error
	}{
		{"literal", domain.Lit("hi"), "hi", nil},
		{"var", domain.Var("count"), 3, nil},
		{"field", domain.Field("name"), "ana", nil},
		{"numeric eq across types", domain.Eq(domain.Var("count"), domain.Field("n")), true, nil},
		{"string eq", domain.Eq(domain.Field("name"), domain.Lit("bob")), false, nil},
		{"not", domain.Not(domain.Lit("")), true, nil},
		{"unbound", domain.Var("nope"), nil, domain.ErrUnboundVariable},
		{"missing field", domain.Field("a.b"), nil, domain.ErrMissingField},
		{"empty", domain.Expr{}, nil, domain.ErrInvalidExpr},
		{"bad arity", domain.Expr{Op: domain.OpEq, Args: []domain.Expr{domain.Lit(1)}}, nil, domain.ErrInvalidExpr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Executor{}.Eval(ectx, tt.expr)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTruthy(t *testing.T) {
	assert.False(t, Truthy(nil))
	assert.False(t, Truthy(false))
	assert.False(t, Truthy(0))
	assert.False(t, Truthy(""))
	assert.True(t, Truthy("x"))
	assert.True(t, Truthy(1.5))
	assert.True(t, Truthy([]any{}))
}
