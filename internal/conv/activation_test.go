package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/texel-ml/texel/internal/ops"
)

func TestLoadFusedActivation_Default(t *testing.T) {
	act, err := LoadFusedActivation(ops.Attributes{})
	require.NoError(t, err)

	assert.Equal(t, ActivationNone, act.Kind)
	assert.True(t, math.IsNaN(float64(act.Param0)))
	assert.True(t, math.IsNaN(float64(act.Param1)))
}

func TestLoadFusedActivation_Relu(t *testing.T) {
	act, err := LoadFusedActivation(ops.Attributes{"activation": "Relu"})
	require.NoError(t, err)

	assert.Equal(t, ActivationReLU, act.Kind)
	// Relu takes no parameters; they stay NaN even when supplied.
	assert.True(t, math.IsNaN(float64(act.Param0)))
}

func TestLoadFusedActivation_Clip(t *testing.T) {
	act, err := LoadFusedActivation(ops.Attributes{
		"activation":        "Clip",
		"activation_params": []float32{0, 6},
	})
	require.NoError(t, err)

	assert.Equal(t, ActivationClip, act.Kind)
	assert.Equal(t, float32(0), act.Param0)
	assert.Equal(t, float32(6), act.Param1)
}

func TestLoadFusedActivation_ClipMissingParams(t *testing.T) {
	_, err := LoadFusedActivation(ops.Attributes{
		"activation":        "Clip",
		"activation_params": []float32{0},
	})
	require.ErrorIs(t, err, ErrInsufficientActivationParams)
}

func TestLoadFusedActivation_Unknown(t *testing.T) {
	_, err := LoadFusedActivation(ops.Attributes{"activation": "HardSwish"})
	require.ErrorIs(t, err, ErrUnimplementedActivation)
}

func TestFusedActivation_Apply(t *testing.T) {
	relu := FusedActivation{Kind: ActivationReLU}
	assert.Equal(t, float32(0), relu.apply(-1.5))
	assert.Equal(t, float32(2), relu.apply(2))

	clip := FusedActivation{Kind: ActivationClip, Param0: 0, Param1: 6}
	assert.Equal(t, float32(0), clip.apply(-3))
	assert.Equal(t, float32(6), clip.apply(100))
	assert.Equal(t, float32(4.5), clip.apply(4.5))

	none := FusedActivation{Kind: ActivationNone}
	assert.Equal(t, float32(-7), none.apply(-7))
}
