package conv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/texel-ml/texel/internal/tensor"
)

func TestReferenceConv2D_BoxFilter(t *testing.T) {
	x, err := tensor.FromFloat32(
		[]float32{1, 2, 3, 4, 5, 6, 7, 8, 9}, tensor.Shape{1, 1, 3, 3})
	require.NoError(t, err)
	w, err := tensor.FromFloat32(
		[]float32{1, 1, 1, 1, 1, 1, 1, 1, 1}, tensor.Shape{1, 1, 3, 3})
	require.NoError(t, err)

	y, err := ReferenceConv2D(x, w, nil,
		[]int64{1, 1}, []int64{1, 1, 1, 1}, []int64{1, 1}, 1,
		FusedActivation{Kind: ActivationNone})
	require.NoError(t, err)

	assert.Equal(t, tensor.Shape{1, 1, 3, 3}, y.Shape())
	assert.Equal(t, []float32{
		12, 21, 16,
		27, 45, 33,
		24, 39, 28,
	}, y.Float32s())
}

func TestReferenceConv2D_BiasAndClip(t *testing.T) {
	x, err := tensor.FromFloat32(
		[]float32{1, 2, 3, 4, 5, 6, 7, 8, 9}, tensor.Shape{1, 1, 3, 3})
	require.NoError(t, err)
	w, err := tensor.FromFloat32([]float32{1}, tensor.Shape{1, 1, 1, 1})
	require.NoError(t, err)

	y, err := ReferenceConv2D(x, w, []float32{-2},
		[]int64{1, 1}, []int64{0, 0, 0, 0}, []int64{1, 1}, 1,
		FusedActivation{Kind: ActivationClip, Param0: 0, Param1: 5})
	require.NoError(t, err)

	assert.Equal(t, []float32{0, 0, 1, 2, 3, 4, 5, 5, 5}, y.Float32s())
}

func TestReferenceConv2D_Depthwise(t *testing.T) {
	x, err := tensor.FromFloat32(
		[]float32{1, 2, 3, 4, 10, 20, 30, 40}, tensor.Shape{1, 2, 2, 2})
	require.NoError(t, err)
	w, err := tensor.FromFloat32([]float32{2, 3}, tensor.Shape{2, 1, 1, 1})
	require.NoError(t, err)

	y, err := ReferenceConv2D(x, w, nil,
		[]int64{1, 1}, []int64{0, 0, 0, 0}, []int64{1, 1}, 2,
		FusedActivation{Kind: ActivationNone})
	require.NoError(t, err)

	assert.Equal(t, []float32{2, 4, 6, 8, 30, 60, 90, 120}, y.Float32s())
}

func TestReferenceConv2D_Strided(t *testing.T) {
	x, err := tensor.FromFloat32(
		[]float32{
			1, 2, 3, 4,
			5, 6, 7, 8,
			9, 10, 11, 12,
			13, 14, 15, 16,
		}, tensor.Shape{1, 1, 4, 4})
	require.NoError(t, err)
	w, err := tensor.FromFloat32([]float32{1, 1, 1, 1}, tensor.Shape{1, 1, 2, 2})
	require.NoError(t, err)

	y, err := ReferenceConv2D(x, w, nil,
		[]int64{2, 2}, []int64{0, 0, 0, 0}, []int64{1, 1}, 1,
		FusedActivation{Kind: ActivationNone})
	require.NoError(t, err)

	assert.Equal(t, tensor.Shape{1, 1, 2, 2}, y.Shape())
	assert.Equal(t, []float32{14, 22, 46, 54}, y.Float32s())
}

func TestReferenceConv2D_ChannelMismatch(t *testing.T) {
	x, err := tensor.FromFloat32(make([]float32, 3*4*4), tensor.Shape{1, 3, 4, 4})
	require.NoError(t, err)
	w, err := tensor.FromFloat32(make([]float32, 4*2*1), tensor.Shape{4, 2, 1, 1})
	require.NoError(t, err)

	_, err = ReferenceConv2D(x, w, nil,
		[]int64{1, 1}, []int64{0, 0, 0, 0}, []int64{1, 1}, 1,
		FusedActivation{Kind: ActivationNone})
	require.Error(t, err)
}
