package conv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/texel-ml/texel/internal/ops"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		weight ops.DeclaredShape
		group  int64
		want   ConvKind
	}{
		{"dense 1x1 group", ops.DeclaredShape{16, 8, 3, 3}, 1, Generic},
		{"depthwise", ops.DeclaredShape{16, 1, 3, 3}, 16, Depthwise},
		{"grouped but not depthwise", ops.DeclaredShape{16, 4, 3, 3}, 4, Generic},
		{"channel multiplier 2", ops.DeclaredShape{32, 1, 3, 3}, 16, Generic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, err := Classify(tt.weight, tt.group)
			require.NoError(t, err)
			assert.Equal(t, tt.want, kind)
		})
	}
}

func TestClassify_DynamicDims(t *testing.T) {
	// Unknown channel dims cannot prove depthwise; classification
	// degrades to Generic and reports why.
	kind, err := Classify(ops.DeclaredShape{ops.DimUnknown, 1, 3, 3}, 16)
	require.ErrorIs(t, err, ErrDynamicDim)
	assert.Equal(t, Generic, kind)

	kind, err = Classify(ops.DeclaredShape{16, ops.DimUnknown, 3, 3}, 16)
	require.ErrorIs(t, err, ErrDynamicDim)
	assert.Equal(t, Generic, kind)
}
