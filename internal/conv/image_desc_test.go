package conv

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/texel-ml/texel/internal/gpu"
	"github.com/texel-ml/texel/internal/tensor"
)

func TestPackFromConv2DWeight(t *testing.T) {
	desc := PackFromConv2DWeight(tensor.Shape{10, 3, 3, 3})
	assert.Equal(t, gpu.ImageDesc{Width: 27, Height: 3}, desc)

	// Exact multiple of the texel lane width.
	desc = PackFromConv2DWeight(tensor.Shape{8, 4, 1, 1})
	assert.Equal(t, gpu.ImageDesc{Width: 4, Height: 2}, desc)
}

func TestPackFromDepthwiseConv2DWeight(t *testing.T) {
	desc := PackFromDepthwiseConv2DWeight(tensor.Shape{10, 1, 3, 3})
	assert.Equal(t, gpu.ImageDesc{Width: 9, Height: 3}, desc)
}

func TestGenericWeightTexelsRoundTrip(t *testing.T) {
	shape := tensor.Shape{10, 3, 3, 3}
	w := randomWeights(shape.NumElements())

	texels := packGenericWeightTexels(w, shape)
	assert.Len(t, texels, int(PackFromConv2DWeight(shape).TexelCount())*4)
	assert.Equal(t, w, unpackGenericWeightTexels(texels, shape))
}

func TestDepthwiseWeightTexelsRoundTrip(t *testing.T) {
	shape := tensor.Shape{10, 1, 3, 3}
	w := randomWeights(shape.NumElements())

	texels := packDepthwiseWeightTexels(w, shape)
	assert.Len(t, texels, int(PackFromDepthwiseConv2DWeight(shape).TexelCount())*4)
	assert.Equal(t, w, unpackDepthwiseWeightTexels(texels, shape))
}

func TestGenericWeightTexels_LanePlacement(t *testing.T) {
	// One output channel per lane: channel co lands in lane co%4 of
	// row co/4.
	shape := tensor.Shape{5, 1, 1, 1}
	w := []float32{10, 11, 12, 13, 14}

	texels := packGenericWeightTexels(w, shape)
	assert.Equal(t, []float32{10, 11, 12, 13}, texels[0:4])
	assert.Equal(t, []float32{14, 0, 0, 0}, texels[4:8])
}

func randomWeights(n int) []float32 {
	rng := rand.New(rand.NewSource(7))
	w := make([]float32, n)
	for i := range w {
		w[i] = rng.Float32()*2 - 1
	}
	return w
}
