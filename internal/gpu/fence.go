package gpu

import (
	"fmt"

	"github.com/go-webgpu/webgpu/wgpu"
)

// fenceSize is the size of the dummy copy used to fence the queue.
const fenceSize = 4

// Wait blocks the calling thread until all work submitted to the device
// queue so far has completed. Pending command buffers are flushed first.
//
// WebGPU has no direct queue-wait primitive in these bindings, so the
// fence is a trailing 4-byte buffer copy followed by a blocking map: the
// map cannot complete before every previously submitted command has
// executed on an in-order queue.
func (e *Engine) Wait() error {
	e.Flush()

	if e.fenceSrc == nil {
		e.fenceSrc = e.device.CreateBuffer(&wgpu.BufferDescriptor{
			Usage: wgpu.BufferUsageCopySrc,
			Size:  fenceSize,
		})
	}

	staging := e.scratch.Acquire(fenceSize, wgpu.BufferUsageMapRead|wgpu.BufferUsageCopyDst)
	defer e.scratch.Release(staging, fenceSize, wgpu.BufferUsageMapRead|wgpu.BufferUsageCopyDst)

	encoder := e.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(e.fenceSrc, 0, staging, 0, fenceSize)
	cmdBuffer := encoder.Finish(nil)
	e.queue.Submit(cmdBuffer)

	if err := staging.MapAsync(e.device, wgpu.MapModeRead, 0, fenceSize); err != nil {
		return fmt.Errorf("gpu: fence map failed: %w", err)
	}
	staging.Unmap()

	return nil
}
