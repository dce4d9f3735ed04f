package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRideScriptSchedule(t *testing.T) {
	now := 0.0
	in, err := NewScriptInput("ride.tengo", func() float64 { return now })
	require.NoError(t, err)

	tests := []struct {
		name  string
		t     float64
		right bool
		jump  bool
		salto bool
		flip  bool
	}{
		{"idle", 0.1, false, false, false, false},
		{"riding", 1, true, false, false, false},
		{"charging", 3.2, true, true, false, false},
		{"salto", 3.85, true, false, true, false},
		{"flip", 6.55, true, false, false, true},
		{"done", 8, false, false, false, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			now = tc.t
			got := in.Poll()
			require.NoError(t, in.Err())
			assert.Equal(t, tc.right, got.MoveRight)
			assert.Equal(t, tc.jump, got.Jump)
			assert.Equal(t, tc.salto, got.SaltoPressed)
			assert.Equal(t, tc.flip, got.Flip)
		})
	}
}

func TestScriptEdges(t *testing.T) {
	now := 0.0
	src := []byte(`
left := false
right := false
sit := false
flip := false
jump := t >= 1
salto := t >= 2
`)
	in, err := CompileScriptInput("edges", src, func() float64 { return now })
	require.NoError(t, err)

	now = 1
	assert.True(t, in.Poll().JumpPressed)
	assert.False(t, in.Poll().JumpPressed)

	now = 2
	assert.True(t, in.Poll().SaltoPressed)
	got := in.Poll()
	assert.False(t, got.SaltoPressed)
	assert.True(t, got.Jump)
}

func TestScriptMustDefineButtons(t *testing.T) {
	_, err := CompileScriptInput("bad", []byte(`right := true`), func() float64 { return 0 })
	assert.Error(t, err)
}

func TestScriptRuntimeErrorKeepsLastInput(t *testing.T) {
	now := 0.0
	src := []byte(`
left := false
right := true
jump := false
sit := false
flip := false
salto := false
if t > 1 {
	zero := 0
	right = 1 / zero > 0
}
`)
	in, err := CompileScriptInput("fails", src, func() float64 { return now })
	require.NoError(t, err)
	assert.True(t, in.Poll().MoveRight)

	now = 2
	got := in.Poll()
	assert.Error(t, in.Err())
	assert.True(t, got.MoveRight)
}

func TestScriptValidationRunDoesNotConsumeEdges(t *testing.T) {
	src := []byte(`
left := false
right := false
jump := true
sit := false
flip := false
salto := true
`)
	in, err := CompileScriptInput("held", src, func() float64 { return 0 })
	require.NoError(t, err)

	got := in.Poll()
	assert.True(t, got.JumpPressed)
	assert.True(t, got.SaltoPressed)
}

func TestScriptFailingAtStartIsRejected(t *testing.T) {
	src := []byte(`
zero := 0
left := 1 / zero > 0
right := false
jump := false
sit := false
flip := false
salto := false
`)
	_, err := CompileScriptInput("broken", src, func() float64 { return 0 })
	assert.Error(t, err)
}
