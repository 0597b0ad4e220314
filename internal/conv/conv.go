package conv

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/texel-ml/texel/internal/gpu"
	"github.com/texel-ml/texel/internal/ops"
	"github.com/texel-ml/texel/internal/tensor"
)

func init() {
	factory := func(e *gpu.Engine, log *zap.Logger, node ops.NodeInfo) (ops.Operator, error) {
		var weightDecl ops.DeclaredShape
		if len(node.InputShapes) > 1 {
			weightDecl = node.InputShapes[1]
		}
		return NewKernel(e, log, node.Attrs, weightDecl)
	}
	ops.Register("Conv", factory)
	// FusedConv is Conv plus the activation attributes; same kernel.
	ops.Register("FusedConv", factory)
}

// variant identifies one of the mutually exclusive kernel entry points.
type variant uint8

const (
	variantConv2D variant = iota
	variantConv2DK1
	variantConv2DK1S1
	variantDepthwiseConv2D
	variantDepthwiseConv2DS1
)

func (v variant) String() string {
	switch v {
	case variantConv2D:
		return kernelConv2D
	case variantConv2DK1:
		return kernelConv2DK1
	case variantConv2DK1S1:
		return kernelConv2DK1S1
	case variantDepthwiseConv2D:
		return kernelDepthwiseConv2D
	case variantDepthwiseConv2DS1:
		return kernelDepthwiseConv2DS1
	default:
		return fmt.Sprintf("variant(%d)", uint8(v))
	}
}

// selectGenericVariant picks the fastest applicable generic entry point.
// Predicates are checked most-specific-first so a shape satisfying
// several always takes the fastest path: K1S1 before K1 before general.
func selectGenericVariant(k, s, p, d []int64) variant {
	k1 := k[0] == 1 && k[1] == 1 && p[0] == 0 && p[1] == 0 && p[2] == 0 && p[3] == 0
	s1 := s[0] == 1 && s[1] == 1 && d[0] == 1 && d[1] == 1
	switch {
	case k1 && s1:
		return variantConv2DK1S1
	case k1:
		return variantConv2DK1
	default:
		return variantConv2D
	}
}

// selectDepthwiseVariant picks the depthwise entry point: S1 before general.
func selectDepthwiseVariant(s, d []int64) variant {
	if s[0] == 1 && s[1] == 1 && d[0] == 1 && d[1] == 1 {
		return variantDepthwiseConv2DS1
	}
	return variantDepthwiseConv2D
}

// launchGrid computes the 2-D work size shared by every kernel variant:
// 4 output channels x 4 output columns per work item. The tiling is baked
// into the kernel sources; both must change together.
func launchGrid(n, cOut, hOut, wOut int64) (gsx, gsy uint32) {
	return uint32(gpu.CeilDiv(cOut, 4) * gpu.CeilDiv(wOut, 4)), uint32(n * hOut)
}

// Kernel is a texture-path 2-D convolution operator instance. The kind is
// classified once at construction, the weight packed once at PrePack, and
// every Compute call enqueues exactly one kernel launch. A Kernel is safe
// for concurrent Compute calls once PrePack has run.
type Kernel struct {
	engine *gpu.Engine
	log    *zap.Logger

	attrs *ConvAttributes
	act   FusedActivation
	kind  ConvKind

	packed *PackedWeight
	wShape tensor.Shape
}

var _ ops.Operator = (*Kernel)(nil)

// NewKernel builds a conv kernel from node attributes and the filter's
// declared shape. Classification failure from dynamic dimensions
// downgrades to Generic with a warning; bad activation configuration is a
// hard construction error.
func NewKernel(e *gpu.Engine, log *zap.Logger, attrs ops.Attributes, weightDecl ops.DeclaredShape) (*Kernel, error) {
	if log == nil {
		log = zap.NewNop()
	}

	act, err := LoadFusedActivation(attrs)
	if err != nil {
		return nil, err
	}
	convAttrs, err := NewConvAttributes(attrs)
	if err != nil {
		return nil, err
	}

	kind, err := Classify(weightDecl, convAttrs.Group)
	if err != nil {
		kind = Generic
		log.Warn("conv kind classification failed, using Generic; this might harm inference performance",
			zap.Error(err))
	}

	k := &Kernel{
		engine: e,
		log:    log,
		attrs:  convAttrs,
		act:    act,
		kind:   kind,
	}
	k.loadPrograms()
	return k, nil
}

// loadPrograms eagerly compiles the kernel variants and the copy kernel
// of the classified kind.
func (k *Kernel) loadPrograms() {
	switch k.kind {
	case Depthwise:
		k.engine.LoadProgram(depthwiseConv2DShader, kernelDepthwiseConv2D)
		k.engine.LoadProgram(depthwiseConv2DS1Shader, kernelDepthwiseConv2DS1)
		k.engine.LoadProgram(copyDepthwiseWeightShader, kernelCopyDepthwiseWeight)
	default:
		k.engine.LoadProgram(conv2DShader, kernelConv2D)
		k.engine.LoadProgram(conv2DK1Shader, kernelConv2DK1)
		k.engine.LoadProgram(conv2DK1S1Shader, kernelConv2DK1S1)
		k.engine.LoadProgram(copyGenericWeightShader, kernelCopyGenericWeight)
	}
}

// Kind returns the classified execution strategy.
func (k *Kernel) Kind() ConvKind {
	return k.kind
}

// Activation returns the fused activation descriptor.
func (k *Kernel) Activation() FusedActivation {
	return k.act
}

// PrePack packs the filter tensor (input slot 1) into its device image.
// Other input slots are left untouched. Runs exactly once per instance.
func (k *Kernel) PrePack(src *tensor.RawTensor, inputIndex int) (bool, error) {
	if inputIndex != 1 {
		return false, nil
	}
	if k.packed != nil {
		return false, fmt.Errorf("conv: weight already packed")
	}

	packed, err := PackWeight(k.engine, k.kind, src)
	if err != nil {
		return false, err
	}
	k.packed = packed
	k.wShape = src.Shape().Clone()
	return true, nil
}

// Compute runs one inference step: it validates shapes, infers the output
// extent, allocates the output tensor, and enqueues exactly one kernel
// launch. It does not block; completion is deferred to the caller's
// synchronization point.
func (k *Kernel) Compute(x *gpu.Tensor, bias *gpu.Tensor) (*gpu.Tensor, error) {
	if k.packed == nil {
		return nil, fmt.Errorf("conv: Compute called before weight prepack")
	}

	xShape := x.Shape()
	if err := k.attrs.ValidateInputShape(xShape, k.wShape); err != nil {
		return nil, err
	}

	kernelShape, err := k.attrs.ComputeKernelShape(k.wShape)
	if err != nil {
		return nil, err
	}
	rank := len(kernelShape)
	if rank != 2 {
		return nil, fmt.Errorf("%w: conv of rank %d", ErrNotImplemented, rank)
	}

	s, p, d, err := k.attrs.spatialDefaults(rank)
	if err != nil {
		return nil, err
	}

	inSpatial := []int64{int64(xShape[2]), int64(xShape[3])}
	outSpatial, err := k.attrs.InferOutputShape(inSpatial, kernelShape, s, d, p)
	if err != nil {
		return nil, err
	}

	if bias != nil {
		if len(bias.Shape()) != 1 || bias.Shape()[0] != k.wShape[0] {
			return nil, fmt.Errorf("conv: bias shape %v does not match output channels %d",
				bias.Shape(), k.wShape[0])
		}
	}

	yShape := tensor.Shape{xShape[0], k.wShape[0], int(outSpatial[0]), int(outSpatial[1])}
	yDesc, err := gpu.ImageDescFromNCHW(yShape)
	if err != nil {
		return nil, err
	}
	y := gpu.NewTensor(k.engine.CreateImage2D(yDesc), yShape)

	k.log.Debug("conv dispatch",
		zap.String("kind", k.kind.String()),
		zap.Stringer("x", xShape),
		zap.Stringer("w", k.wShape),
		zap.Stringer("y", yShape))

	switch k.kind {
	case Depthwise:
		err = k.depthwiseConv2D(x, bias, y, kernelShape, s, p, d)
	default:
		err = k.conv2D(x, bias, y, kernelShape, s, p, d)
	}
	if err != nil {
		y.Release()
		return nil, err
	}
	return y, nil
}

// Release frees the packed weight. The kernel must not be used afterwards.
func (k *Kernel) Release() {
	if k.packed != nil {
		k.packed.Release()
		k.packed = nil
	}
}

// biasImage returns the image for the bias slot and the bias-present
// flag. When no bias is supplied the input image fills the slot; the
// kernels never dereference it while the flag is clear.
func biasImage(x, bias *gpu.Tensor) (*gpu.Image2D, int64) {
	if bias == nil {
		return x.Image(), 0
	}
	return bias.Image(), 1
}

func (k *Kernel) depthwiseConv2D(x, bias, y *gpu.Tensor, kernelShape, s, p, d []int64) error {
	xShape, yShape := x.Shape(), y.Shape()
	cIn := int64(xShape[1])
	inH, inW := int64(xShape[2]), int64(xShape[3])
	n, cOut := int64(yShape[0]), int64(yShape[1])
	outH, outW := int64(yShape[2]), int64(yShape[3])

	if cIn != cOut {
		return fmt.Errorf("conv: depthwise requires C_in == C_out, got %d and %d", cIn, cOut)
	}

	gsx, gsy := launchGrid(n, cOut, outH, outW)
	wBlocks := gpu.CeilDiv(outW, 4)
	biasImg, hasBias := biasImage(x, bias)

	switch selectDepthwiseVariant(s, d) {
	case variantDepthwiseConv2DS1:
		return k.engine.Launcher(kernelDepthwiseConv2DS1, depthwiseConv2DS1Shader).
			Int2(int64(gsx), int64(gsy)).
			Int2(inW, inH).
			Int2(outW, outH).
			Int2(kernelShape[0], kernelShape[1]).
			Int2(p[0], p[1]).
			Int32(wBlocks).
			Int32(hasBias).
			Int32(int64(k.act.Kind)).
			Float32(k.act.Param0).
			Float32(k.act.Param1).
			Images(x.Image(), k.packed.Image, biasImg, y.Image()).
			Launch(gsx, gsy)
	default:
		return k.engine.Launcher(kernelDepthwiseConv2D, depthwiseConv2DShader).
			Int2(int64(gsx), int64(gsy)).
			Int2(inW, inH).
			Int2(outW, outH).
			Int2(kernelShape[0], kernelShape[1]).
			Int2(s[0], s[1]).
			Int2(p[0], p[1]).
			Int2(d[0], d[1]).
			Int32(wBlocks).
			Int32(hasBias).
			Int32(int64(k.act.Kind)).
			Float32(k.act.Param0).
			Float32(k.act.Param1).
			Images(x.Image(), k.packed.Image, biasImg, y.Image()).
			Launch(gsx, gsy)
	}
}

func (k *Kernel) conv2D(x, bias, y *gpu.Tensor, kernelShape, s, p, d []int64) error {
	if k.attrs.Group != 1 {
		return fmt.Errorf("%w: got group %d", ErrUnsupportedGroup, k.attrs.Group)
	}

	xShape, yShape := x.Shape(), y.Shape()
	cIn := int64(xShape[1])
	inH, inW := int64(xShape[2]), int64(xShape[3])
	n, cOut := int64(yShape[0]), int64(yShape[1])
	outH, outW := int64(yShape[2]), int64(yShape[3])

	gsx, gsy := launchGrid(n, cOut, outH, outW)
	ciBlocks := gpu.CeilDiv(cIn, 4)
	wBlocks := gpu.CeilDiv(outW, 4)
	biasImg, hasBias := biasImage(x, bias)

	switch selectGenericVariant(kernelShape, s, p, d) {
	case variantConv2DK1S1:
		return k.engine.Launcher(kernelConv2DK1S1, conv2DK1S1Shader).
			Int2(int64(gsx), int64(gsy)).
			Int2(inW, inH).
			Int32(cIn).
			Int32(ciBlocks).
			Int32(wBlocks).
			Int32(hasBias).
			Int32(int64(k.act.Kind)).
			Float32(k.act.Param0).
			Float32(k.act.Param1).
			Images(x.Image(), k.packed.Image, biasImg, y.Image()).
			Launch(gsx, gsy)
	case variantConv2DK1:
		return k.engine.Launcher(kernelConv2DK1, conv2DK1Shader).
			Int2(int64(gsx), int64(gsy)).
			Int2(inW, inH).
			Int32(cIn).
			Int32(ciBlocks).
			Int2(outW, outH).
			Int2(s[0], s[1]).
			Int32(wBlocks).
			Int32(hasBias).
			Int32(int64(k.act.Kind)).
			Float32(k.act.Param0).
			Float32(k.act.Param1).
			Images(x.Image(), k.packed.Image, biasImg, y.Image()).
			Launch(gsx, gsy)
	default:
		return k.engine.Launcher(kernelConv2D, conv2DShader).
			Int2(int64(gsx), int64(gsy)).
			Int2(inW, inH).
			Int32(cIn).
			Int32(ciBlocks).
			Int2(outW, outH).
			Int2(kernelShape[0], kernelShape[1]).
			Int2(s[0], s[1]).
			Int2(p[0], p[1]).
			Int2(d[0], d[1]).
			Int32(wBlocks).
			Int32(hasBias).
			Int32(int64(k.act.Kind)).
			Float32(k.act.Param0).
			Float32(k.act.Param1).
			Images(x.Image(), k.packed.Image, biasImg, y.Image()).
			Launch(gsx, gsy)
	}
}
