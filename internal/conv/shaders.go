package conv

// WGSL sources for the conv kernel variants and the one-time weight copy
// kernels. All variants share the same tiling: one invocation produces 4
// output channels x 4 output columns, so the launch grid is
// gsx = ceil(C_out/4)*ceil(W_out/4), gsy = N*H_out. Changing the tiling
// requires changing the dispatcher's grid computation in lockstep.
//
// Images are storage buffers of vec4<f32> texels addressed as
// texels[y*width+x]; activation images use width = ceil(C/4)*W,
// height = N*H. The uniform blocks mirror the argument order the
// dispatcher packs via the kernel launcher.

// Kernel entry point names.
const (
	kernelConv2D              = "Conv2D"
	kernelConv2DK1            = "Conv2DK1"
	kernelConv2DK1S1          = "Conv2DK1S1"
	kernelDepthwiseConv2D     = "DepthwiseConv2D"
	kernelDepthwiseConv2DS1   = "DepthwiseConv2DS1"
	kernelCopyGenericWeight   = "CopyGenericConv2DWeightBufferToImage"
	kernelCopyDepthwiseWeight = "CopyDepthwiseConv2DWeightBufferToImage"
)

// conv2DShader is the fully general path: any kernel shape, stride,
// padding, and dilation, group == 1.
const conv2DShader = `
@group(0) @binding(0) var<storage, read> input: array<vec4<f32>>;
@group(0) @binding(1) var<storage, read> weight: array<vec4<f32>>;
@group(0) @binding(2) var<storage, read> bias: array<vec4<f32>>;
@group(0) @binding(3) var<storage, read_write> output: array<vec4<f32>>;

struct Params {
    gsx: i32,
    gsy: i32,
    in_w: i32,
    in_h: i32,
    c_in: i32,
    ci_blocks: i32,
    out_w: i32,
    out_h: i32,
    k_h: i32,
    k_w: i32,
    stride_h: i32,
    stride_w: i32,
    pad_h: i32,
    pad_w: i32,
    dilation_h: i32,
    dilation_w: i32,
    w_blocks: i32,
    has_bias: i32,
    act_kind: i32,
    act_param0: f32,
    act_param1: f32,
}
@group(0) @binding(4) var<uniform> p: Params;

fn activate(v: vec4<f32>) -> vec4<f32> {
    if (p.act_kind == 1) {
        return max(v, vec4<f32>(0.0));
    }
    if (p.act_kind == 5) {
        return clamp(v, vec4<f32>(p.act_param0), vec4<f32>(p.act_param1));
    }
    return v;
}

fn read_input(cb: i32, w: i32, n: i32, h: i32) -> vec4<f32> {
    if (w < 0 || w >= p.in_w || h < 0 || h >= p.in_h) {
        return vec4<f32>(0.0);
    }
    return input[(n * p.in_h + h) * (p.ci_blocks * p.in_w) + cb * p.in_w + w];
}

@compute @workgroup_size(8, 8, 1)
fn Conv2D(@builtin(global_invocation_id) gid: vec3<u32>) {
    let gx = i32(gid.x);
    let gy = i32(gid.y);
    if (gx >= p.gsx || gy >= p.gsy) {
        return;
    }

    let cob = gx / p.w_blocks;
    let ow0 = (gx % p.w_blocks) * 4;
    let n = gy / p.out_h;
    let oh = gy % p.out_h;

    var acc0 = vec4<f32>(0.0);
    if (p.has_bias != 0) {
        acc0 = bias[cob];
    }
    var acc1 = acc0;
    var acc2 = acc0;
    var acc3 = acc0;

    let khw = p.k_h * p.k_w;
    for (var cb: i32 = 0; cb < p.ci_blocks; cb = cb + 1) {
        for (var kh: i32 = 0; kh < p.k_h; kh = kh + 1) {
            let ih = oh * p.stride_h - p.pad_h + kh * p.dilation_h;
            for (var kw: i32 = 0; kw < p.k_w; kw = kw + 1) {
                let iw0 = ow0 * p.stride_w - p.pad_w + kw * p.dilation_w;
                let in0 = read_input(cb, iw0, n, ih);
                let in1 = read_input(cb, iw0 + p.stride_w, n, ih);
                let in2 = read_input(cb, iw0 + 2 * p.stride_w, n, ih);
                let in3 = read_input(cb, iw0 + 3 * p.stride_w, n, ih);

                let wbase = cob * p.c_in * khw + kh * p.k_w + kw;
                let ci = cb * 4;
                if (ci < p.c_in) {
                    let wt = weight[wbase + ci * khw];
                    acc0 = acc0 + in0.x * wt;
                    acc1 = acc1 + in1.x * wt;
                    acc2 = acc2 + in2.x * wt;
                    acc3 = acc3 + in3.x * wt;
                }
                if (ci + 1 < p.c_in) {
                    let wt = weight[wbase + (ci + 1) * khw];
                    acc0 = acc0 + in0.y * wt;
                    acc1 = acc1 + in1.y * wt;
                    acc2 = acc2 + in2.y * wt;
                    acc3 = acc3 + in3.y * wt;
                }
                if (ci + 2 < p.c_in) {
                    let wt = weight[wbase + (ci + 2) * khw];
                    acc0 = acc0 + in0.z * wt;
                    acc1 = acc1 + in1.z * wt;
                    acc2 = acc2 + in2.z * wt;
                    acc3 = acc3 + in3.z * wt;
                }
                if (ci + 3 < p.c_in) {
                    let wt = weight[wbase + (ci + 3) * khw];
                    acc0 = acc0 + in0.w * wt;
                    acc1 = acc1 + in1.w * wt;
                    acc2 = acc2 + in2.w * wt;
                    acc3 = acc3 + in3.w * wt;
                }
            }
        }
    }

    let out_width = (p.gsx / p.w_blocks) * p.out_w;
    let oy = n * p.out_h + oh;
    let ox = cob * p.out_w + ow0;
    output[oy * out_width + ox] = activate(acc0);
    if (ow0 + 1 < p.out_w) {
        output[oy * out_width + ox + 1] = activate(acc1);
    }
    if (ow0 + 2 < p.out_w) {
        output[oy * out_width + ox + 2] = activate(acc2);
    }
    if (ow0 + 3 < p.out_w) {
        output[oy * out_width + ox + 3] = activate(acc3);
    }
}
`

// conv2DK1Shader specializes for a 1x1 kernel with zero padding; stride
// and dilation may still vary (dilation is irrelevant at k=1).
const conv2DK1Shader = `
@group(0) @binding(0) var<storage, read> input: array<vec4<f32>>;
@group(0) @binding(1) var<storage, read> weight: array<vec4<f32>>;
@group(0) @binding(2) var<storage, read> bias: array<vec4<f32>>;
@group(0) @binding(3) var<storage, read_write> output: array<vec4<f32>>;

struct Params {
    gsx: i32,
    gsy: i32,
    in_w: i32,
    in_h: i32,
    c_in: i32,
    ci_blocks: i32,
    out_w: i32,
    out_h: i32,
    stride_h: i32,
    stride_w: i32,
    w_blocks: i32,
    has_bias: i32,
    act_kind: i32,
    act_param0: f32,
    act_param1: f32,
}
@group(0) @binding(4) var<uniform> p: Params;

fn activate(v: vec4<f32>) -> vec4<f32> {
    if (p.act_kind == 1) {
        return max(v, vec4<f32>(0.0));
    }
    if (p.act_kind == 5) {
        return clamp(v, vec4<f32>(p.act_param0), vec4<f32>(p.act_param1));
    }
    return v;
}

fn read_input(cb: i32, w: i32, n: i32, h: i32) -> vec4<f32> {
    if (w < 0 || w >= p.in_w || h < 0 || h >= p.in_h) {
        return vec4<f32>(0.0);
    }
    return input[(n * p.in_h + h) * (p.ci_blocks * p.in_w) + cb * p.in_w + w];
}

@compute @workgroup_size(8, 8, 1)
fn Conv2DK1(@builtin(global_invocation_id) gid: vec3<u32>) {
    let gx = i32(gid.x);
    let gy = i32(gid.y);
    if (gx >= p.gsx || gy >= p.gsy) {
        return;
    }

    let cob = gx / p.w_blocks;
    let ow0 = (gx % p.w_blocks) * 4;
    let n = gy / p.out_h;
    let oh = gy % p.out_h;

    var acc0 = vec4<f32>(0.0);
    if (p.has_bias != 0) {
        acc0 = bias[cob];
    }
    var acc1 = acc0;
    var acc2 = acc0;
    var acc3 = acc0;

    let ih = oh * p.stride_h;
    let iw0 = ow0 * p.stride_w;
    for (var cb: i32 = 0; cb < p.ci_blocks; cb = cb + 1) {
        let in0 = read_input(cb, iw0, n, ih);
        let in1 = read_input(cb, iw0 + p.stride_w, n, ih);
        let in2 = read_input(cb, iw0 + 2 * p.stride_w, n, ih);
        let in3 = read_input(cb, iw0 + 3 * p.stride_w, n, ih);

        let wbase = cob * p.c_in;
        let ci = cb * 4;
        if (ci < p.c_in) {
            let wt = weight[wbase + ci];
            acc0 = acc0 + in0.x * wt;
            acc1 = acc1 + in1.x * wt;
            acc2 = acc2 + in2.x * wt;
            acc3 = acc3 + in3.x * wt;
        }
        if (ci + 1 < p.c_in) {
            let wt = weight[wbase + ci + 1];
            acc0 = acc0 + in0.y * wt;
            acc1 = acc1 + in1.y * wt;
            acc2 = acc2 + in2.y * wt;
            acc3 = acc3 + in3.y * wt;
        }
        if (ci + 2 < p.c_in) {
            let wt = weight[wbase + ci + 2];
            acc0 = acc0 + in0.z * wt;
            acc1 = acc1 + in1.z * wt;
            acc2 = acc2 + in2.z * wt;
            acc3 = acc3 + in3.z * wt;
        }
        if (ci + 3 < p.c_in) {
            let wt = weight[wbase + ci + 3];
            acc0 = acc0 + in0.w * wt;
            acc1 = acc1 + in1.w * wt;
            acc2 = acc2 + in2.w * wt;
            acc3 = acc3 + in3.w * wt;
        }
    }

    let out_width = (p.gsx / p.w_blocks) * p.out_w;
    let oy = n * p.out_h + oh;
    let ox = cob * p.out_w + ow0;
    output[oy * out_width + ox] = activate(acc0);
    if (ow0 + 1 < p.out_w) {
        output[oy * out_width + ox + 1] = activate(acc1);
    }
    if (ow0 + 2 < p.out_w) {
        output[oy * out_width + ox + 2] = activate(acc2);
    }
    if (ow0 + 3 < p.out_w) {
        output[oy * out_width + ox + 3] = activate(acc3);
    }
}
`

// conv2DK1S1Shader specializes further for unit stride and dilation:
// output extent equals input extent and the four columns are contiguous,
// so stride arithmetic disappears from the launch signature entirely.
const conv2DK1S1Shader = `
@group(0) @binding(0) var<storage, read> input: array<vec4<f32>>;
@group(0) @binding(1) var<storage, read> weight: array<vec4<f32>>;
@group(0) @binding(2) var<storage, read> bias: array<vec4<f32>>;
@group(0) @binding(3) var<storage, read_write> output: array<vec4<f32>>;

struct Params {
    gsx: i32,
    gsy: i32,
    in_w: i32,
    in_h: i32,
    c_in: i32,
    ci_blocks: i32,
    w_blocks: i32,
    has_bias: i32,
    act_kind: i32,
    act_param0: f32,
    act_param1: f32,
}
@group(0) @binding(4) var<uniform> p: Params;

fn activate(v: vec4<f32>) -> vec4<f32> {
    if (p.act_kind == 1) {
        return max(v, vec4<f32>(0.0));
    }
    if (p.act_kind == 5) {
        return clamp(v, vec4<f32>(p.act_param0), vec4<f32>(p.act_param1));
    }
    return v;
}

fn read_input(cb: i32, w: i32, n: i32, h: i32) -> vec4<f32> {
    if (w >= p.in_w) {
        return vec4<f32>(0.0);
    }
    return input[(n * p.in_h + h) * (p.ci_blocks * p.in_w) + cb * p.in_w + w];
}

@compute @workgroup_size(8, 8, 1)
fn Conv2DK1S1(@builtin(global_invocation_id) gid: vec3<u32>) {
    let gx = i32(gid.x);
    let gy = i32(gid.y);
    if (gx >= p.gsx || gy >= p.gsy) {
        return;
    }

    let cob = gx / p.w_blocks;
    let ow0 = (gx % p.w_blocks) * 4;
    let n = gy / p.in_h;
    let oh = gy % p.in_h;

    var acc0 = vec4<f32>(0.0);
    if (p.has_bias != 0) {
        acc0 = bias[cob];
    }
    var acc1 = acc0;
    var acc2 = acc0;
    var acc3 = acc0;

    for (var cb: i32 = 0; cb < p.ci_blocks; cb = cb + 1) {
        let in0 = read_input(cb, ow0, n, oh);
        let in1 = read_input(cb, ow0 + 1, n, oh);
        let in2 = read_input(cb, ow0 + 2, n, oh);
        let in3 = read_input(cb, ow0 + 3, n, oh);

        let wbase = cob * p.c_in;
        let ci = cb * 4;
        if (ci < p.c_in) {
            let wt = weight[wbase + ci];
            acc0 = acc0 + in0.x * wt;
            acc1 = acc1 + in1.x * wt;
            acc2 = acc2 + in2.x * wt;
            acc3 = acc3 + in3.x * wt;
        }
        if (ci + 1 < p.c_in) {
            let wt = weight[wbase + ci + 1];
            acc0 = acc0 + in0.y * wt;
            acc1 = acc1 + in1.y * wt;
            acc2 = acc2 + in2.y * wt;
            acc3 = acc3 + in3.y * wt;
        }
        if (ci + 2 < p.c_in) {
            let wt = weight[wbase + ci + 2];
            acc0 = acc0 + in0.z * wt;
            acc1 = acc1 + in1.z * wt;
            acc2 = acc2 + in2.z * wt;
            acc3 = acc3 + in3.z * wt;
        }
        if (ci + 3 < p.c_in) {
            let wt = weight[wbase + ci + 3];
            acc0 = acc0 + in0.w * wt;
            acc1 = acc1 + in1.w * wt;
            acc2 = acc2 + in2.w * wt;
            acc3 = acc3 + in3.w * wt;
        }
    }

    let out_width = (p.gsx / p.w_blocks) * p.in_w;
    let oy = n * p.in_h + oh;
    let ox = cob * p.in_w + ow0;
    output[oy * out_width + ox] = activate(acc0);
    if (ow0 + 1 < p.in_w) {
        output[oy * out_width + ox + 1] = activate(acc1);
    }
    if (ow0 + 2 < p.in_w) {
        output[oy * out_width + ox + 2] = activate(acc2);
    }
    if (ow0 + 3 < p.in_w) {
        output[oy * out_width + ox + 3] = activate(acc3);
    }
}
`

// depthwiseConv2DShader handles channel multiplier 1 with general stride,
// padding and dilation. Output channel block cob reads input block cob.
const depthwiseConv2DShader = `
@group(0) @binding(0) var<storage, read> input: array<vec4<f32>>;
@group(0) @binding(1) var<storage, read> weight: array<vec4<f32>>;
@group(0) @binding(2) var<storage, read> bias: array<vec4<f32>>;
@group(0) @binding(3) var<storage, read_write> output: array<vec4<f32>>;

struct Params {
    gsx: i32,
    gsy: i32,
    in_w: i32,
    in_h: i32,
    out_w: i32,
    out_h: i32,
    k_h: i32,
    k_w: i32,
    stride_h: i32,
    stride_w: i32,
    pad_h: i32,
    pad_w: i32,
    dilation_h: i32,
    dilation_w: i32,
    w_blocks: i32,
    has_bias: i32,
    act_kind: i32,
    act_param0: f32,
    act_param1: f32,
}
@group(0) @binding(4) var<uniform> p: Params;

fn activate(v: vec4<f32>) -> vec4<f32> {
    if (p.act_kind == 1) {
        return max(v, vec4<f32>(0.0));
    }
    if (p.act_kind == 5) {
        return clamp(v, vec4<f32>(p.act_param0), vec4<f32>(p.act_param1));
    }
    return v;
}

fn read_input(cb: i32, w: i32, n: i32, h: i32) -> vec4<f32> {
    if (w < 0 || w >= p.in_w || h < 0 || h >= p.in_h) {
        return vec4<f32>(0.0);
    }
    let c_blocks = p.gsx / p.w_blocks;
    return input[(n * p.in_h + h) * (c_blocks * p.in_w) + cb * p.in_w + w];
}

@compute @workgroup_size(8, 8, 1)
fn DepthwiseConv2D(@builtin(global_invocation_id) gid: vec3<u32>) {
    let gx = i32(gid.x);
    let gy = i32(gid.y);
    if (gx >= p.gsx || gy >= p.gsy) {
        return;
    }

    let cob = gx / p.w_blocks;
    let ow0 = (gx % p.w_blocks) * 4;
    let n = gy / p.out_h;
    let oh = gy % p.out_h;

    var acc0 = vec4<f32>(0.0);
    if (p.has_bias != 0) {
        acc0 = bias[cob];
    }
    var acc1 = acc0;
    var acc2 = acc0;
    var acc3 = acc0;

    let khw = p.k_h * p.k_w;
    for (var kh: i32 = 0; kh < p.k_h; kh = kh + 1) {
        let ih = oh * p.stride_h - p.pad_h + kh * p.dilation_h;
        for (var kw: i32 = 0; kw < p.k_w; kw = kw + 1) {
            let iw0 = ow0 * p.stride_w - p.pad_w + kw * p.dilation_w;
            let wt = weight[cob * khw + kh * p.k_w + kw];
            acc0 = acc0 + read_input(cob, iw0, n, ih) * wt;
            acc1 = acc1 + read_input(cob, iw0 + p.stride_w, n, ih) * wt;
            acc2 = acc2 + read_input(cob, iw0 + 2 * p.stride_w, n, ih) * wt;
            acc3 = acc3 + read_input(cob, iw0 + 3 * p.stride_w, n, ih) * wt;
        }
    }

    let out_width = (p.gsx / p.w_blocks) * p.out_w;
    let oy = n * p.out_h + oh;
    let ox = cob * p.out_w + ow0;
    output[oy * out_width + ox] = activate(acc0);
    if (ow0 + 1 < p.out_w) {
        output[oy * out_width + ox + 1] = activate(acc1);
    }
    if (ow0 + 2 < p.out_w) {
        output[oy * out_width + ox + 2] = activate(acc2);
    }
    if (ow0 + 3 < p.out_w) {
        output[oy * out_width + ox + 3] = activate(acc3);
    }
}
`

// depthwiseConv2DS1Shader is the depthwise fast path for unit stride and
// dilation: stride and dilation vanish from the signature and the four
// input columns overlap by k_w-1 texels.
const depthwiseConv2DS1Shader = `
@group(0) @binding(0) var<storage, read> input: array<vec4<f32>>;
@group(0) @binding(1) var<storage, read> weight: array<vec4<f32>>;
@group(0) @binding(2) var<storage, read> bias: array<vec4<f32>>;
@group(0) @binding(3) var<storage, read_write> output: array<vec4<f32>>;

struct Params {
    gsx: i32,
    gsy: i32,
    in_w: i32,
    in_h: i32,
    out_w: i32,
    out_h: i32,
    k_h: i32,
    k_w: i32,
    pad_h: i32,
    pad_w: i32,
    w_blocks: i32,
    has_bias: i32,
    act_kind: i32,
    act_param0: f32,
    act_param1: f32,
}
@group(0) @binding(4) var<uniform> p: Params;

fn activate(v: vec4<f32>) -> vec4<f32> {
    if (p.act_kind == 1) {
        return max(v, vec4<f32>(0.0));
    }
    if (p.act_kind == 5) {
        return clamp(v, vec4<f32>(p.act_param0), vec4<f32>(p.act_param1));
    }
    return v;
}

fn read_input(cb: i32, w: i32, n: i32, h: i32) -> vec4<f32> {
    if (w < 0 || w >= p.in_w || h < 0 || h >= p.in_h) {
        return vec4<f32>(0.0);
    }
    let c_blocks = p.gsx / p.w_blocks;
    return input[(n * p.in_h + h) * (c_blocks * p.in_w) + cb * p.in_w + w];
}

@compute @workgroup_size(8, 8, 1)
fn DepthwiseConv2DS1(@builtin(global_invocation_id) gid: vec3<u32>) {
    let gx = i32(gid.x);
    let gy = i32(gid.y);
    if (gx >= p.gsx || gy >= p.gsy) {
        return;
    }

    let cob = gx / p.w_blocks;
    let ow0 = (gx % p.w_blocks) * 4;
    let n = gy / p.out_h;
    let oh = gy % p.out_h;

    var acc0 = vec4<f32>(0.0);
    if (p.has_bias != 0) {
        acc0 = bias[cob];
    }
    var acc1 = acc0;
    var acc2 = acc0;
    var acc3 = acc0;

    let khw = p.k_h * p.k_w;
    for (var kh: i32 = 0; kh < p.k_h; kh = kh + 1) {
        let ih = oh - p.pad_h + kh;
        for (var kw: i32 = 0; kw < p.k_w; kw = kw + 1) {
            let iw0 = ow0 - p.pad_w + kw;
            let wt = weight[cob * khw + kh * p.k_w + kw];
            acc0 = acc0 + read_input(cob, iw0, n, ih) * wt;
            acc1 = acc1 + read_input(cob, iw0 + 1, n, ih) * wt;
            acc2 = acc2 + read_input(cob, iw0 + 2, n, ih) * wt;
            acc3 = acc3 + read_input(cob, iw0 + 3, n, ih) * wt;
        }
    }

    let out_width = (p.gsx / p.w_blocks) * p.out_w;
    let oy = n * p.out_h + oh;
    let ox = cob * p.out_w + ow0;
    output[oy * out_width + ox] = activate(acc0);
    if (ow0 + 1 < p.out_w) {
        output[oy * out_width + ox + 1] = activate(acc1);
    }
    if (ow0 + 2 < p.out_w) {
        output[oy * out_width + ox + 2] = activate(acc2);
    }
    if (ow0 + 3 < p.out_w) {
        output[oy * out_width + ox + 3] = activate(acc3);
    }
}
`

// copyGenericWeightShader rearranges a row-major {C_out, C_in, K_h, K_w}
// weight buffer into the PackFromConv2DWeight image layout. One
// invocation per destination texel; lanes past C_out are zeroed.
const copyGenericWeightShader = `
@group(0) @binding(0) var<storage, read> src: array<f32>;
@group(0) @binding(1) var<storage, read_write> dst: array<vec4<f32>>;

struct Params {
    width: i32,
    height: i32,
    c_out: i32,
    c_in: i32,
    k_h: i32,
    k_w: i32,
    khw: i32,
}
@group(0) @binding(2) var<uniform> p: Params;

fn src_at(co: i32, x: i32) -> f32 {
    if (co >= p.c_out) {
        return 0.0;
    }
    let ci = x / p.khw;
    let r = x % p.khw;
    return src[(co * p.c_in + ci) * p.khw + r];
}

@compute @workgroup_size(8, 8, 1)
fn CopyGenericConv2DWeightBufferToImage(@builtin(global_invocation_id) gid: vec3<u32>) {
    let x = i32(gid.x);
    let y = i32(gid.y);
    if (x >= p.width || y >= p.height) {
        return;
    }
    let co = y * 4;
    dst[y * p.width + x] = vec4<f32>(
        src_at(co, x),
        src_at(co + 1, x),
        src_at(co + 2, x),
        src_at(co + 3, x));
}
`

// copyDepthwiseWeightShader rearranges a row-major {C_out, 1, K_h, K_w}
// weight buffer into the PackFromDepthwiseConv2DWeight image layout.
const copyDepthwiseWeightShader = `
@group(0) @binding(0) var<storage, read> src: array<f32>;
@group(0) @binding(1) var<storage, read_write> dst: array<vec4<f32>>;

struct Params {
    width: i32,
    height: i32,
    c_out: i32,
    c_in: i32,
    k_h: i32,
    k_w: i32,
    khw: i32,
}
@group(0) @binding(2) var<uniform> p: Params;

fn src_at(co: i32, x: i32) -> f32 {
    if (co >= p.c_out) {
        return 0.0;
    }
    return src[co * p.khw + x];
}

@compute @workgroup_size(8, 8, 1)
fn CopyDepthwiseConv2DWeightBufferToImage(@builtin(global_invocation_id) gid: vec3<u32>) {
    let x = i32(gid.x);
    let y = i32(gid.y);
    if (x >= p.width || y >= p.height) {
        return;
    }
    let co = y * 4;
    dst[y * p.width + x] = vec4<f32>(
        src_at(co, x),
        src_at(co + 1, x),
        src_at(co + 2, x),
        src_at(co + 3, x));
}
`
