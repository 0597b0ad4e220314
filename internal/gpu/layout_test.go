package gpu

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/texel-ml/texel/internal/tensor"
)

func TestNCHWTexelsRoundTrip(t *testing.T) {
	shapes := []tensor.Shape{
		{1, 1, 4, 4},
		{1, 3, 5, 7},  // channels below one texel
		{2, 4, 3, 3},  // exact texel width
		{2, 6, 9, 10}, // partial second channel block
	}
	rng := rand.New(rand.NewSource(11))

	for _, shape := range shapes {
		data := make([]float32, shape.NumElements())
		for i := range data {
			data[i] = rng.Float32()*2 - 1
		}

		texels := packNCHWTexels(data, shape)
		desc, err := ImageDescFromNCHW(shape)
		require.NoError(t, err)
		assert.Len(t, texels, int(desc.TexelCount())*4, "shape %v", shape)
		assert.Equal(t, data, unpackNCHWTexels(texels, shape), "shape %v", shape)
	}
}

func TestPackNCHWTexels_Placement(t *testing.T) {
	// Two channels of a 1x2x1x2 tensor share texel lanes 0 and 1.
	data := []float32{1, 2, 10, 20}
	texels := packNCHWTexels(data, tensor.Shape{1, 2, 1, 2})

	require.Len(t, texels, 2*4)
	assert.Equal(t, []float32{1, 10, 0, 0}, texels[0:4])
	assert.Equal(t, []float32{2, 20, 0, 0}, texels[4:8])
}

func TestPackChannelTexels(t *testing.T) {
	texels := packChannelTexels([]float32{1, 2, 3, 4, 5})
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 0, 0, 0}, texels)
}

func TestFloat32BytesRoundTrip(t *testing.T) {
	values := []float32{1.5, -2.25, 0, 3e7}
	assert.Equal(t, values, bytesFloat32(float32Bytes(values)))
	assert.Nil(t, float32Bytes(nil))
	assert.Nil(t, bytesFloat32(nil))
}
