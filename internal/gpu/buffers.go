package gpu

import (
	"fmt"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"
)

// createBuffer creates a GPU buffer and uploads initial data through a
// mapped-at-creation range. The upload is a host memcpy; the device sees
// the data once subsequent queue work references the buffer.
func (e *Engine) createBuffer(data []byte, usage wgpu.BufferUsage) *wgpu.Buffer {
	size := alignUp(uint64(len(data)), 4)

	buffer := e.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            usage,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})

	mappedPtr := buffer.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), size)
	copy(mappedSlice, data)
	buffer.Unmap()

	return buffer
}

// createUniformBuffer creates a uniform buffer with 16-byte aligned size,
// as required for uniform bindings.
func (e *Engine) createUniformBuffer(data []byte) *wgpu.Buffer {
	size := alignUp(uint64(len(data)), 16)

	buffer := e.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})

	mappedPtr := buffer.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), size)
	copy(mappedSlice, data)
	buffer.Unmap()

	return buffer
}

// readBuffer reads data back from a GPU buffer to host memory.
// Pending commands are flushed first so the read observes all prior
// launches. Uses a pooled staging buffer since storage buffers cannot be
// mapped directly.
func (e *Engine) readBuffer(srcBuffer *wgpu.Buffer, size uint64) ([]byte, error) {
	e.Flush()

	alignedSize := alignUp(size, 4)
	staging := e.scratch.Acquire(alignedSize, wgpu.BufferUsageMapRead|wgpu.BufferUsageCopyDst)
	defer e.scratch.Release(staging, alignedSize, wgpu.BufferUsageMapRead|wgpu.BufferUsageCopyDst)

	encoder := e.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(srcBuffer, 0, staging, 0, alignedSize)
	cmdBuffer := encoder.Finish(nil)
	e.queue.Submit(cmdBuffer)

	if err := staging.MapAsync(e.device, wgpu.MapModeRead, 0, alignedSize); err != nil {
		return nil, fmt.Errorf("gpu: failed to map staging buffer: %w", err)
	}

	mappedPtr := staging.GetMappedRange(0, alignedSize)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), alignedSize)
	result := make([]byte, size)
	copy(result, mappedSlice[:size])

	staging.Unmap()

	return result, nil
}

func alignUp(v, align uint64) uint64 {
	return (v + align - 1) &^ (align - 1)
}

// StagingBuffer is a transient device buffer holding host data for the
// duration of a pack or transfer. It is owned by the caller and must be
// released once the device work consuming it has completed.
type StagingBuffer struct {
	buffer *wgpu.Buffer
	size   uint64
}

// UploadBytes stages host data into a storage buffer via a non-blocking
// host write. The data is visible to kernels launched afterwards on the
// same queue.
func (e *Engine) UploadBytes(data []byte) *StagingBuffer {
	size := alignUp(uint64(len(data)), 4)
	return &StagingBuffer{
		buffer: e.createBuffer(data, wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc),
		size:   size,
	}
}

// Release frees the staging buffer.
func (b *StagingBuffer) Release() {
	if b.buffer != nil {
		b.buffer.Release()
		b.buffer = nil
	}
}
