package ops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/texel-ml/texel/internal/gpu"
	"github.com/texel-ml/texel/internal/tensor"
)

type nopOperator struct{}

func (nopOperator) PrePack(*tensor.RawTensor, int) (bool, error)  { return false, nil }
func (nopOperator) Compute(_, _ *gpu.Tensor) (*gpu.Tensor, error) { return nil, nil }
func (nopOperator) Release()                                      {}

func TestRegistry(t *testing.T) {
	Register("TestNop", func(e *gpu.Engine, log *zap.Logger, node NodeInfo) (Operator, error) {
		return nopOperator{}, nil
	})

	op, err := NewOperator(nil, nil, NodeInfo{OpType: "TestNop"})
	require.NoError(t, err)
	assert.NotNil(t, op)

	assert.Contains(t, Registered(), "TestNop")
}

func TestNewOperator_Unknown(t *testing.T) {
	_, err := NewOperator(nil, nil, NodeInfo{OpType: "NoSuchOp"})
	require.Error(t, err)
}

func TestAttributes(t *testing.T) {
	attrs := Attributes{
		"name":    "Clip",
		"params":  []float32{0, 6},
		"strides": []int64{2, 2},
		"group":   int64(4),
	}

	assert.Equal(t, "Clip", attrs.String("name", "None"))
	assert.Equal(t, "None", attrs.String("missing", "None"))
	assert.Equal(t, []float32{0, 6}, attrs.Floats("params"))
	assert.Nil(t, attrs.Floats("missing"))
	assert.Equal(t, []int64{2, 2}, attrs.Ints("strides"))
	assert.Equal(t, int64(4), attrs.Int("group", 1))
	assert.Equal(t, int64(1), attrs.Int("missing", 1))

	// Wrong-typed values fall back to the default.
	assert.Equal(t, int64(1), attrs.Int("name", 1))
}

func TestDeclaredShape(t *testing.T) {
	s := DeclaredShape{16, DimUnknown, 3, 3}

	assert.True(t, s.Known(0))
	assert.False(t, s.Known(1))
	assert.False(t, s.Known(7))
	assert.Equal(t, int64(16), s.Dim(0))
}
