package conv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/texel-ml/texel/internal/ops"
	"github.com/texel-ml/texel/internal/tensor"
)

func TestNewConvAttributes(t *testing.T) {
	attrs, err := NewConvAttributes(ops.Attributes{
		"strides":   []int64{2, 2},
		"pads":      []int64{1, 1, 1, 1},
		"dilations": []int64{1, 1},
		"group":     int64(2),
	})
	require.NoError(t, err)

	assert.Equal(t, AutoPadNotSet, attrs.AutoPad)
	assert.Equal(t, []int64{2, 2}, attrs.Strides)
	assert.Equal(t, int64(2), attrs.Group)
}

func TestNewConvAttributes_BadGroup(t *testing.T) {
	_, err := NewConvAttributes(ops.Attributes{"group": int64(0)})
	require.Error(t, err)
}

func TestNewConvAttributes_BadAutoPad(t *testing.T) {
	_, err := NewConvAttributes(ops.Attributes{"auto_pad": "SOMETIMES"})
	require.Error(t, err)
}

func TestComputeKernelShape(t *testing.T) {
	attrs := &ConvAttributes{}
	k, err := attrs.ComputeKernelShape(tensor.Shape{16, 8, 3, 5})
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 5}, k)
}

func TestComputeKernelShape_AttributeMismatch(t *testing.T) {
	attrs := &ConvAttributes{KernelShape: []int64{3, 3}}
	_, err := attrs.ComputeKernelShape(tensor.Shape{16, 8, 5, 5})
	require.Error(t, err)
}

func TestValidateInputShape(t *testing.T) {
	attrs := &ConvAttributes{Group: 1}
	require.NoError(t, attrs.ValidateInputShape(
		tensor.Shape{1, 8, 16, 16}, tensor.Shape{4, 8, 3, 3}))

	// Channel mismatch.
	require.Error(t, attrs.ValidateInputShape(
		tensor.Shape{1, 7, 16, 16}, tensor.Shape{4, 8, 3, 3}))

	// Rank mismatch.
	require.Error(t, attrs.ValidateInputShape(
		tensor.Shape{1, 8, 16}, tensor.Shape{4, 8, 3, 3}))

	grouped := &ConvAttributes{Group: 16}
	require.NoError(t, grouped.ValidateInputShape(
		tensor.Shape{1, 16, 16, 16}, tensor.Shape{16, 1, 3, 3}))
}

func TestSpatialDefaults(t *testing.T) {
	attrs := &ConvAttributes{}
	s, p, d, err := attrs.spatialDefaults(2)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 1}, s)
	assert.Equal(t, []int64{0, 0, 0, 0}, p)
	assert.Equal(t, []int64{1, 1}, d)
}

func TestSpatialDefaults_LengthMismatch(t *testing.T) {
	attrs := &ConvAttributes{Strides: []int64{1, 1, 1}}
	_, _, _, err := attrs.spatialDefaults(2)
	require.Error(t, err)

	attrs = &ConvAttributes{Pads: []int64{1, 1}}
	_, _, _, err = attrs.spatialDefaults(2)
	require.Error(t, err)
}

func TestInferOutputShape(t *testing.T) {
	tests := []struct {
		name       string
		in, k      []int64
		s, d, pads []int64
		want       []int64
	}{
		{
			name: "3x3 stride 1 pad 1 preserves extent",
			in:   []int64{8, 8}, k: []int64{3, 3},
			s: []int64{1, 1}, d: []int64{1, 1}, pads: []int64{1, 1, 1, 1},
			want: []int64{8, 8},
		},
		{
			name: "3x3 stride 2 no pad",
			in:   []int64{8, 8}, k: []int64{3, 3},
			s: []int64{2, 2}, d: []int64{1, 1}, pads: []int64{0, 0, 0, 0},
			want: []int64{3, 3},
		},
		{
			name: "1x1 pointwise",
			in:   []int64{14, 14}, k: []int64{1, 1},
			s: []int64{1, 1}, d: []int64{1, 1}, pads: []int64{0, 0, 0, 0},
			want: []int64{14, 14},
		},
		{
			name: "dilated 3x3",
			in:   []int64{16, 16}, k: []int64{3, 3},
			s: []int64{1, 1}, d: []int64{2, 2}, pads: []int64{0, 0, 0, 0},
			want: []int64{12, 12},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := &ConvAttributes{}
			out, err := attrs.InferOutputShape(tt.in, tt.k, tt.s, tt.d, tt.pads)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestInferOutputShape_SameUpper(t *testing.T) {
	attrs := &ConvAttributes{AutoPad: AutoPadSameUpper}
	pads := make([]int64, 4)
	out, err := attrs.InferOutputShape(
		[]int64{6, 6}, []int64{3, 3}, []int64{2, 2}, []int64{1, 1}, pads)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 3}, out)
	// SAME_UPPER places the extra pad at the end.
	assert.Equal(t, []int64{0, 0, 1, 1}, pads)
}

func TestInferOutputShape_SameLower(t *testing.T) {
	attrs := &ConvAttributes{AutoPad: AutoPadSameLower}
	pads := make([]int64, 4)
	out, err := attrs.InferOutputShape(
		[]int64{6, 6}, []int64{3, 3}, []int64{2, 2}, []int64{1, 1}, pads)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 3}, out)
	assert.Equal(t, []int64{1, 1, 0, 0}, pads)
}

func TestInferOutputShape_ValidZeroesPads(t *testing.T) {
	attrs := &ConvAttributes{AutoPad: AutoPadValid}
	pads := []int64{2, 2, 2, 2}
	out, err := attrs.InferOutputShape(
		[]int64{8, 8}, []int64{3, 3}, []int64{1, 1}, []int64{1, 1}, pads)
	require.NoError(t, err)
	assert.Equal(t, []int64{6, 6}, out)
	assert.Equal(t, []int64{0, 0, 0, 0}, pads)
}

func TestInferOutputShape_NonPositive(t *testing.T) {
	attrs := &ConvAttributes{}
	_, err := attrs.InferOutputShape(
		[]int64{2, 2}, []int64{5, 5}, []int64{1, 1}, []int64{1, 1}, []int64{0, 0, 0, 0})
	require.Error(t, err)
}
