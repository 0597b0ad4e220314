package gpu

import (
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"
)

// scratchClass categorizes scratch buffers by size for pooling.
type scratchClass int

const (
	smallScratch  scratchClass = iota // < 4KB: uniform blocks, fences
	mediumScratch                     // 4KB-1MB: typical activation images
	largeScratch                      // > 1MB: weights, batched activations
)

const (
	smallScratchThreshold  = 4 * 1024
	mediumScratchThreshold = 1024 * 1024
	maxScratchPerClass     = 64
)

// scratchBuffer wraps a pooled GPU buffer with its allocation metadata.
type scratchBuffer struct {
	buffer *wgpu.Buffer
	size   uint64
	usage  wgpu.BufferUsage
}

// ScratchPool recycles GPU buffers used for transient work: pack staging,
// readback staging, and image storage. Buffers are matched by size class
// and usage flags; a returned buffer may be larger than requested.
type ScratchPool struct {
	device *wgpu.Device

	small  []*scratchBuffer
	medium []*scratchBuffer
	large  []*scratchBuffer

	mu sync.Mutex

	// Statistics
	allocated uint64
	released  uint64
	hits      uint64
	misses    uint64
}

// NewScratchPool creates a scratch pool for the given device.
func NewScratchPool(device *wgpu.Device) *ScratchPool {
	return &ScratchPool{
		device: device,
		small:  make([]*scratchBuffer, 0, maxScratchPerClass),
		medium: make([]*scratchBuffer, 0, maxScratchPerClass),
		large:  make([]*scratchBuffer, 0, maxScratchPerClass),
	}
}

// Acquire returns a buffer of at least size bytes with the requested usage,
// reusing a pooled buffer when one fits.
func (p *ScratchPool) Acquire(size uint64, usage wgpu.BufferUsage) *wgpu.Buffer {
	p.mu.Lock()
	defer p.mu.Unlock()

	class := p.classify(size)
	pool := p.pool(class)

	for i, sb := range pool {
		if sb.size >= size && sb.usage&usage == usage {
			buffer := sb.buffer
			p.remove(class, i)
			p.hits++
			return buffer
		}
	}

	p.misses++
	p.allocated++

	return p.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: usage,
		Size:  size,
	})
}

// Release returns a buffer to the pool for reuse. If the pool class is
// full the buffer is released to the device immediately.
func (p *ScratchPool) Release(buffer *wgpu.Buffer, size uint64, usage wgpu.BufferUsage) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.released++

	class := p.classify(size)
	if len(p.pool(class)) >= maxScratchPerClass {
		buffer.Release()
		return
	}

	p.add(class, &scratchBuffer{buffer: buffer, size: size, usage: usage})
}

// Clear releases all pooled buffers. Called when the engine is released.
func (p *ScratchPool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, sb := range p.small {
		sb.buffer.Release()
	}
	p.small = p.small[:0]
	for _, sb := range p.medium {
		sb.buffer.Release()
	}
	p.medium = p.medium[:0]
	for _, sb := range p.large {
		sb.buffer.Release()
	}
	p.large = p.large[:0]
}

// Stats returns pool usage counters.
func (p *ScratchPool) Stats() (allocated, released, hits, misses uint64, pooled int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.allocated, p.released, p.hits, p.misses,
		len(p.small) + len(p.medium) + len(p.large)
}

func (p *ScratchPool) classify(size uint64) scratchClass {
	if size < smallScratchThreshold {
		return smallScratch
	}
	if size < mediumScratchThreshold {
		return mediumScratch
	}
	return largeScratch
}

func (p *ScratchPool) pool(class scratchClass) []*scratchBuffer {
	switch class {
	case smallScratch:
		return p.small
	case mediumScratch:
		return p.medium
	case largeScratch:
		return p.large
	default:
		return nil
	}
}

func (p *ScratchPool) add(class scratchClass, sb *scratchBuffer) {
	switch class {
	case smallScratch:
		p.small = append(p.small, sb)
	case mediumScratch:
		p.medium = append(p.medium, sb)
	case largeScratch:
		p.large = append(p.large, sb)
	}
}

func (p *ScratchPool) remove(class scratchClass, i int) {
	switch class {
	case smallScratch:
		p.small = append(p.small[:i], p.small[i+1:]...)
	case mediumScratch:
		p.medium = append(p.medium[:i], p.medium[i+1:]...)
	case largeScratch:
		p.large = append(p.large[:i], p.large[i+1:]...)
	}
}
