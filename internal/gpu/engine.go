// Package gpu implements the WebGPU execution engine behind the texel
// convolution kernels. Uses go-webgpu (github.com/go-webgpu/webgpu) for
// zero-CGO WebGPU bindings.
//
// The engine owns a single device command queue. Kernel launches are
// encoded into command buffers and accumulated for batched submission;
// Flush submits pending work and Wait blocks until the device has drained
// everything submitted so far.
package gpu

import (
	"fmt"
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"
	"go.uber.org/zap"
)

// PowerPreference selects which adapter class to request from the system.
type PowerPreference string

// Adapter power preferences.
const (
	PowerDefault         PowerPreference = ""
	PowerHighPerformance PowerPreference = "high-performance"
	PowerLowPower        PowerPreference = "low-power"
)

// Options configures engine creation.
type Options struct {
	// Logger receives engine diagnostics. nil means no logging.
	Logger *zap.Logger
	// Power selects the adapter power preference. Default is high-performance.
	Power PowerPreference
	// MaxBatchSize is the number of pending command buffers accumulated
	// before an automatic flush. 0 means no limit.
	MaxBatchSize int
}

// Engine owns the WebGPU device, its command queue, and the compiled
// kernel programs. It is safe for concurrent use: the shader and pipeline
// caches are lock-protected and launches only append to the pending
// command queue.
type Engine struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	// Shader and pipeline cache
	shaders   map[string]*wgpu.ShaderModule
	pipelines map[string]*wgpu.ComputePipeline
	mu        sync.RWMutex

	adapterInfo *wgpu.AdapterInfoGo
	log         *zap.Logger

	// Scratch pool for staging buffers and image storage
	scratch *ScratchPool

	// Command batching: launches are accumulated and submitted together
	// to reduce queue submission overhead.
	pendingCommands []*wgpu.CommandBuffer
	pendingMu       sync.Mutex
	maxBatchSize    int

	// fenceSrc backs Wait(); see fence.go.
	fenceSrc *wgpu.Buffer
}

// New creates a new WebGPU engine.
// Returns an error if WebGPU is not available or initialization fails.
func New(opts Options) (engine *Engine, err error) {
	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			engine = nil
			err = fmt.Errorf("gpu: native library not available: %v", r)
		}
	}()

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	instance, instErr := wgpu.CreateInstance(nil)
	if instErr != nil {
		return nil, fmt.Errorf("gpu: failed to create instance: %w", instErr)
	}
	adapter, adapterErr := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: opts.Power.wgpu(),
	})
	if adapterErr != nil {
		instance.Release()
		return nil, fmt.Errorf("gpu: failed to request adapter: %w", adapterErr)
	}

	// Adapter info is diagnostic only; an info failure does not block use
	// of the device.
	adapterInfo, infoErr := adapter.GetInfo()
	if infoErr != nil {
		log.Warn("gpu adapter info unavailable", zap.Error(infoErr))
		adapterInfo = nil
	}

	device, deviceErr := adapter.RequestDevice(nil)
	if deviceErr != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("gpu: failed to request device: %w", deviceErr)
	}

	queue := device.GetQueue()
	if queue == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("gpu: failed to get queue")
	}

	e := &Engine{
		instance:     instance,
		adapter:      adapter,
		device:       device,
		queue:        queue,
		shaders:      make(map[string]*wgpu.ShaderModule),
		pipelines:    make(map[string]*wgpu.ComputePipeline),
		adapterInfo:  adapterInfo,
		log:          log,
		maxBatchSize: opts.MaxBatchSize,
	}
	e.scratch = NewScratchPool(device)

	if adapterInfo != nil {
		log.Info("gpu engine initialized",
			zap.String("adapter", adapterInfo.Device),
			zap.String("vendor", adapterInfo.Vendor))
	} else {
		log.Info("gpu engine initialized")
	}

	return e, nil
}

func (p PowerPreference) wgpu() wgpu.PowerPreference {
	if p == PowerLowPower {
		return wgpu.PowerPreferenceLowPower
	}
	return wgpu.PowerPreferenceHighPerformance
}

// compileShader compiles WGSL kernel source into a ShaderModule.
// Results are cached in the engine's shader map.
func (e *Engine) compileShader(name, code string) *wgpu.ShaderModule {
	e.mu.RLock()
	if shader, exists := e.shaders[name]; exists {
		e.mu.RUnlock()
		return shader
	}
	e.mu.RUnlock()

	shader := e.device.CreateShaderModuleWGSL(code)

	e.mu.Lock()
	e.shaders[name] = shader
	e.mu.Unlock()

	return shader
}

// getOrCreatePipeline returns a cached ComputePipeline or creates a new one.
func (e *Engine) getOrCreatePipeline(name string, shader *wgpu.ShaderModule) *wgpu.ComputePipeline {
	e.mu.RLock()
	if pipeline, exists := e.pipelines[name]; exists {
		e.mu.RUnlock()
		return pipeline
	}
	e.mu.RUnlock()

	// Auto layout (nil) derives the bind group layout from the shader.
	pipeline := e.device.CreateComputePipelineSimple(nil, shader, name)

	e.mu.Lock()
	e.pipelines[name] = pipeline
	e.mu.Unlock()

	return pipeline
}

// LoadProgram eagerly compiles the named kernel entry points of a WGSL
// program so that the first launch does not pay compilation latency.
// Each entry point must be a @compute function in source.
func (e *Engine) LoadProgram(source string, entryPoints ...string) {
	for _, name := range entryPoints {
		shader := e.compileShader(name, source)
		e.getOrCreatePipeline(name, shader)
	}
}

// queueCommand adds a command buffer to the pending queue for batch submission.
func (e *Engine) queueCommand(cmdBuffer *wgpu.CommandBuffer) {
	e.pendingMu.Lock()
	defer e.pendingMu.Unlock()

	e.pendingCommands = append(e.pendingCommands, cmdBuffer)

	if e.maxBatchSize > 0 && len(e.pendingCommands) >= e.maxBatchSize {
		e.flushLocked()
	}
}

// Flush submits all pending command buffers to the device queue.
// It does not wait for execution to complete.
func (e *Engine) Flush() {
	e.pendingMu.Lock()
	defer e.pendingMu.Unlock()
	e.flushLocked()
}

func (e *Engine) flushLocked() {
	if len(e.pendingCommands) == 0 {
		return
	}
	e.queue.Submit(e.pendingCommands...)
	e.pendingCommands = e.pendingCommands[:0]
}

// Release releases all WebGPU resources owned by the engine.
// Must be called when the engine is no longer needed.
func (e *Engine) Release() {
	e.Flush()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.fenceSrc != nil {
		e.fenceSrc.Release()
		e.fenceSrc = nil
	}
	if e.scratch != nil {
		e.scratch.Clear()
		e.scratch = nil
	}
	for _, p := range e.pipelines {
		p.Release()
	}
	e.pipelines = nil
	for _, s := range e.shaders {
		s.Release()
	}
	e.shaders = nil

	if e.queue != nil {
		e.queue.Release()
		e.queue = nil
	}
	if e.device != nil {
		e.device.Release()
		e.device = nil
	}
	if e.adapter != nil {
		e.adapter.Release()
		e.adapter = nil
	}
	if e.instance != nil {
		e.instance.Release()
		e.instance = nil
	}
}

// Name returns a human-readable description of the underlying adapter.
func (e *Engine) Name() string {
	if e.adapterInfo != nil {
		return fmt.Sprintf("WebGPU (%s %s)", e.adapterInfo.Device, e.adapterInfo.Vendor)
	}
	return "WebGPU"
}

// AdapterInfo returns information about the GPU adapter, or nil when the
// adapter did not report any.
func (e *Engine) AdapterInfo() *wgpu.AdapterInfoGo {
	return e.adapterInfo
}

// Scratch returns the engine's scratch allocation pool.
func (e *Engine) Scratch() *ScratchPool {
	return e.scratch
}

// IsAvailable checks if WebGPU is available on this system.
func IsAvailable() (available bool) {
	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	instance, err := wgpu.CreateInstance(nil)
	if err != nil {
		return false
	}
	defer instance.Release()

	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		return false
	}
	adapter.Release()

	return true
}

// ListAdapters returns information about available GPU adapters.
// WebGPU has no enumeration API, so this reports the default adapter.
func ListAdapters() (adapters []*wgpu.AdapterInfoGo, err error) {
	defer func() {
		if r := recover(); r != nil {
			adapters = nil
			err = fmt.Errorf("gpu: native library not available: %v", r)
		}
	}()

	instance, instErr := wgpu.CreateInstance(nil)
	if instErr != nil {
		return nil, fmt.Errorf("gpu: failed to create instance: %w", instErr)
	}
	defer instance.Release()

	adapter, adapterErr := instance.RequestAdapter(nil)
	if adapterErr != nil {
		return nil, fmt.Errorf("gpu: no adapters available: %w", adapterErr)
	}
	defer adapter.Release()

	info, infoErr := adapter.GetInfo()
	if infoErr != nil {
		return nil, fmt.Errorf("gpu: adapter info unavailable: %w", infoErr)
	}
	return []*wgpu.AdapterInfoGo{info}, nil
}
