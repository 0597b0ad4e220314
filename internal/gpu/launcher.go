package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-webgpu/webgpu/wgpu"
)

// launchWorkgroupDim is the workgroup edge used by every texel kernel.
// Kernels bounds-check against the logical grid passed in their uniform
// block, so the dispatch rounds up to whole workgroups.
const launchWorkgroupDim = 8

// KernelLauncher assembles the arguments of one kernel launch: storage
// bindings in declaration order followed by a single uniform parameter
// block, packed little-endian in call order. A launcher is used for
// exactly one Launch and is not reusable.
type KernelLauncher struct {
	engine  *Engine
	name    string
	source  string
	uniform []byte
	entries []storageEntry
}

type storageEntry struct {
	buffer *wgpu.Buffer
	size   uint64
}

// Launcher starts building a launch of the named WGSL entry point.
// The program source is compiled and cached on first use.
func (e *Engine) Launcher(name, source string) *KernelLauncher {
	return &KernelLauncher{engine: e, name: name, source: source}
}

// Int32 appends a 32-bit integer argument to the uniform block.
func (l *KernelLauncher) Int32(v int64) *KernelLauncher {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(int32(v)))
	l.uniform = append(l.uniform, b[:]...)
	return l
}

// Int2 appends two 32-bit integer arguments.
func (l *KernelLauncher) Int2(x, y int64) *KernelLauncher {
	return l.Int32(x).Int32(y)
}

// Float32 appends a 32-bit float argument.
func (l *KernelLauncher) Float32(v float32) *KernelLauncher {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
	l.uniform = append(l.uniform, b[:]...)
	return l
}

// Buffer binds a staged storage buffer at the next binding slot.
func (l *KernelLauncher) Buffer(buffer *StagingBuffer) *KernelLauncher {
	l.entries = append(l.entries, storageEntry{buffer: buffer.buffer, size: buffer.size})
	return l
}

// Images binds device images, in order, at the next binding slots.
func (l *KernelLauncher) Images(images ...*Image2D) *KernelLauncher {
	for _, img := range images {
		l.entries = append(l.entries, storageEntry{buffer: img.buffer, size: img.desc.ByteSize()})
	}
	return l
}

// Launch encodes one dispatch covering the (gsx, gsy) grid and appends it
// to the engine's pending command queue. It does not block; the caller
// decides when to Flush or Wait.
func (l *KernelLauncher) Launch(gsx, gsy uint32) error {
	if gsx == 0 || gsy == 0 {
		return fmt.Errorf("gpu: %s: empty launch grid %dx%d", l.name, gsx, gsy)
	}

	e := l.engine
	shader := e.compileShader(l.name, l.source)
	pipeline := e.getOrCreatePipeline(l.name, shader)

	params := e.createUniformBuffer(l.uniform)
	defer params.Release()

	bindEntries := make([]wgpu.BindGroupEntry, 0, len(l.entries)+1)
	for i, entry := range l.entries {
		bindEntries = append(bindEntries, wgpu.BufferBindingEntry(uint32(i), entry.buffer, 0, entry.size))
	}
	bindEntries = append(bindEntries,
		wgpu.BufferBindingEntry(uint32(len(l.entries)), params, 0, alignUp(uint64(len(l.uniform)), 16)))

	bindGroupLayout := pipeline.GetBindGroupLayout(0)
	bindGroup := e.device.CreateBindGroupSimple(bindGroupLayout, bindEntries)
	defer bindGroup.Release()

	encoder := e.device.CreateCommandEncoder(nil)
	computePass := encoder.BeginComputePass(nil)
	computePass.SetPipeline(pipeline)
	computePass.SetBindGroup(0, bindGroup, nil)
	computePass.DispatchWorkgroups(
		(gsx+launchWorkgroupDim-1)/launchWorkgroupDim,
		(gsy+launchWorkgroupDim-1)/launchWorkgroupDim,
		1)
	computePass.End()

	e.queueCommand(encoder.Finish(nil))
	return nil
}
