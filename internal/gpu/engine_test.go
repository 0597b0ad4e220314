package gpu

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/texel-ml/texel/internal/tensor"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	if !IsAvailable() {
		t.Skip("WebGPU not available on this system")
	}
	engine, err := New(Options{})
	if err != nil {
		t.Skipf("WebGPU engine init failed: %v", err)
	}
	t.Cleanup(engine.Release)
	return engine
}

func TestIsAvailable(t *testing.T) {
	// Reports status without failing on GPU-less hosts.
	t.Logf("WebGPU available: %v", IsAvailable())
}

func TestListAdapters(t *testing.T) {
	adapters, err := ListAdapters()
	if err != nil {
		t.Skipf("WebGPU not available: %v", err)
	}
	for i, info := range adapters {
		t.Logf("Adapter %d: %s (%s)", i, info.Device, info.Vendor)
	}
}

func TestNew(t *testing.T) {
	engine := newTestEngine(t)
	assert.NotEmpty(t, engine.Name())
	assert.NotNil(t, engine.Scratch())
	if info := engine.AdapterInfo(); info != nil {
		t.Logf("Adapter: %s (%s)", info.Device, info.Vendor)
		assert.Contains(t, engine.Name(), info.Device)
	}
}

func TestUploadReadNCHWRoundTrip(t *testing.T) {
	engine := newTestEngine(t)
	rng := rand.New(rand.NewSource(5))

	shape := tensor.Shape{2, 6, 5, 7}
	data := make([]float32, shape.NumElements())
	for i := range data {
		data[i] = rng.Float32()*2 - 1
	}
	src, err := tensor.FromFloat32(data, shape)
	require.NoError(t, err)

	dev, err := engine.UploadNCHW(src)
	require.NoError(t, err)
	defer dev.Release()
	assert.Equal(t, shape, dev.Shape())

	back, err := engine.ReadNCHW(dev)
	require.NoError(t, err)
	assert.Equal(t, shape, back.Shape())
	assert.Equal(t, data, back.Float32s())
}

func TestUploadChannels(t *testing.T) {
	engine := newTestEngine(t)

	bias := []float32{1, 2, 3, 4, 5}
	raw, err := tensor.FromFloat32(bias, tensor.Shape{5})
	require.NoError(t, err)

	dev, err := engine.UploadChannels(raw)
	require.NoError(t, err)
	defer dev.Release()

	texels, err := engine.ReadImage(dev.Image())
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 0, 0, 0}, texels)
}

func TestUploadNCHW_RankCheck(t *testing.T) {
	engine := newTestEngine(t)

	raw, err := tensor.FromFloat32(make([]float32, 6), tensor.Shape{2, 3})
	require.NoError(t, err)
	_, err = engine.UploadNCHW(raw)
	require.Error(t, err)
}

func TestScratchPoolReuse(t *testing.T) {
	engine := newTestEngine(t)
	pool := engine.Scratch()

	desc := ImageDesc{Width: 8, Height: 8}
	img := engine.CreateImage2D(desc)
	img.Release()

	// The freed buffer satisfies the next same-class acquisition.
	img2 := engine.CreateImage2D(desc)
	defer img2.Release()

	_, _, hits, _, _ := pool.Stats()
	assert.Positive(t, hits)
}

func TestScratchPoolClear(t *testing.T) {
	engine := newTestEngine(t)
	pool := engine.Scratch()

	engine.CreateImage2D(ImageDesc{Width: 4, Height: 4}).Release()
	pool.Clear()

	_, _, _, _, pooled := pool.Stats()
	assert.Zero(t, pooled)
}
