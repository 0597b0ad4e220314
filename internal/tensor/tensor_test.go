package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShape(t *testing.T) {
	s := Shape{2, 3, 4, 5}

	assert.Equal(t, 120, s.NumElements())
	assert.NoError(t, s.Validate())
	assert.True(t, s.Equal(Shape{2, 3, 4, 5}))
	assert.False(t, s.Equal(Shape{2, 3, 4}))
	assert.Equal(t, Shape{4, 5}, s.Spatial())
	assert.Equal(t, "{2, 3, 4, 5}", s.String())

	clone := s.Clone()
	clone[0] = 9
	assert.Equal(t, 2, s[0])
}

func TestShape_Scalar(t *testing.T) {
	assert.Equal(t, 1, Shape{}.NumElements())
	assert.Equal(t, Shape{}, Shape{2, 3}.Spatial())
}

func TestShape_Invalid(t *testing.T) {
	assert.Error(t, Shape{2, 0, 3}.Validate())
	assert.Error(t, Shape{-1}.Validate())
}

func TestDataType(t *testing.T) {
	assert.Equal(t, 4, Float32.Size())
	assert.Equal(t, 4, Int32.Size())
	assert.Equal(t, 8, Int64.Size())
	assert.Equal(t, "float32", Float32.String())
}

func TestNewRaw(t *testing.T) {
	r, err := NewRaw(Shape{2, 3}, Float32)
	require.NoError(t, err)

	assert.Equal(t, 6, r.NumElements())
	assert.Equal(t, 24, r.ByteSize())
	assert.Equal(t, Float32, r.DType())
	assert.Equal(t, []float32{0, 0, 0, 0, 0, 0}, r.Float32s())
}

func TestFromFloat32(t *testing.T) {
	values := []float32{1, 2, 3, 4, 5, 6}
	r, err := FromFloat32(values, Shape{2, 3})
	require.NoError(t, err)

	assert.Equal(t, values, r.Float32s())

	// The tensor owns its copy.
	values[0] = 99
	assert.Equal(t, float32(1), r.Float32s()[0])
}

func TestFromFloat32_LengthMismatch(t *testing.T) {
	_, err := FromFloat32([]float32{1, 2, 3}, Shape{2, 3})
	require.Error(t, err)
}

func TestFloat32s_WrongType(t *testing.T) {
	r, err := NewRaw(Shape{2}, Int64)
	require.NoError(t, err)
	assert.Panics(t, func() { r.Float32s() })
}
