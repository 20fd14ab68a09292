package compute

import (
	"sort"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pkg/errors"
)

// Sphere is one object's bounding sphere plus its collision filter, laid out as the
// shader's 32-byte struct.
type Sphere struct {
	X, Y, Z float32
	Radius  float32
	Layer   uint32
	Mask    uint32
	_       [2]uint32
}

// Pair holds the indices of two spheres that overlap and accept each other's layers.
// A is always the lower index.
type Pair struct {
	A, B uint32
}

const workgroupSize = 256

const broadPhaseShader = `
struct Sphere {
    pos: vec3<f32>,
    radius: f32,
    layer: u32,
    mask: u32,
    pad: vec2<u32>,
}

struct Pair {
    a: u32,
    b: u32,
}

@group(0) @binding(0) var<storage, read> spheres: array<Sphere>;
@group(0) @binding(1) var<storage, read_write> pairs: array<Pair>;
@group(0) @binding(2) var<storage, read_write> pairCount: atomic<u32>;
@group(0) @binding(3) var<uniform> objectCount: u32;

// One thread per sphere, tested against every higher index so each pair is found once.
@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let i = global_id.x;
    if (i >= objectCount) {
        return;
    }
    let a = spheres[i];

    for (var j = i + 1u; j < objectCount; j = j + 1u) {
        let b = spheres[j];
        if ((a.layer & b.mask) == 0u || (b.layer & a.mask) == 0u) {
            continue;
        }
        let diff = a.pos - b.pos;
        let reach = a.radius + b.radius;
        if (dot(diff, diff) <= reach * reach) {
            let idx = atomicAdd(&pairCount, 1u);
            if (idx < arrayLength(&pairs)) {
                pairs[idx] = Pair(i, j);
            }
        }
    }
}
`

// BroadPhase finds candidate pairs on the GPU from bounding spheres.
type BroadPhase struct {
	system   *System
	pipeline *Pipeline

	sphereBuffer *Buffer
	pairBuffer   *Buffer
	countBuffer  *Buffer
	objectBuffer *Buffer

	maxObjects uint32
	maxPairs   uint32
}

// NewBroadPhase allocates buffers for up to maxObjects spheres and maxPairs results.
// It returns ErrUnavailable when Initialize has not succeeded.
func NewBroadPhase(maxObjects, maxPairs uint32) (*BroadPhase, error) {
	sys := Get()
	if sys == nil {
		return nil, ErrUnavailable
	}
	if maxObjects == 0 || maxPairs == 0 {
		return nil, errors.New("broad phase needs room for at least one object and pair")
	}

	pipeline, err := sys.CreatePipeline("broadphase", broadPhaseShader, "main", BindingKinds{
		wgpu.BufferBindingTypeReadOnlyStorage,
		wgpu.BufferBindingTypeStorage,
		wgpu.BufferBindingTypeStorage,
		wgpu.BufferBindingTypeUniform,
	})
	if err != nil {
		return nil, err
	}

	bp := &BroadPhase{system: sys, pipeline: pipeline, maxObjects: maxObjects, maxPairs: maxPairs}
	buffers := []struct {
		dst   **Buffer
		label string
		size  uint64
		usage wgpu.BufferUsage
	}{
		{&bp.sphereBuffer, "spheres", uint64(maxObjects) * 32, wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst},
		{&bp.pairBuffer, "pairs", uint64(maxPairs) * 8, wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc},
		{&bp.countBuffer, "pairCount", 4, wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst},
		// Uniform buffers are sized in 16-byte steps.
		{&bp.objectBuffer, "objectCount", 16, wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst},
	}
	for _, b := range buffers {
		buf, err := sys.CreateBuffer(b.label, b.size, b.usage)
		if err != nil {
			bp.Release()
			return nil, err
		}
		*b.dst = buf
	}
	return bp, nil
}

// MaxObjects is the sphere capacity.
func (bp *BroadPhase) MaxObjects() uint32 {
	return bp.maxObjects
}

// DetectPairs uploads spheres and returns the candidate pairs sorted by (A, B). Spheres past
// the capacity are rejected rather than dropped. When more pairs exist than the result
// buffer holds, an error is returned so callers can fall back to the CPU.
func (bp *BroadPhase) DetectPairs(spheres []Sphere) ([]Pair, error) {
	if len(spheres) < 2 {
		return nil, nil
	}
	if uint64(len(spheres)) > uint64(bp.maxObjects) {
		return nil, errors.Errorf("%d objects exceed broad phase capacity %d", len(spheres), bp.maxObjects)
	}
	count := uint32(len(spheres))

	bp.system.WriteBuffer(bp.sphereBuffer, 0, ToBytes(spheres))
	bp.system.WriteBuffer(bp.countBuffer, 0, ToBytes([]uint32{0}))
	bp.system.WriteBuffer(bp.objectBuffer, 0, ToBytes([]uint32{count, 0, 0, 0}))

	buffers := []*Buffer{bp.sphereBuffer, bp.pairBuffer, bp.countBuffer, bp.objectBuffer}
	if err := bp.system.Dispatch(bp.pipeline, buffers, (count+workgroupSize-1)/workgroupSize); err != nil {
		return nil, errors.Wrap(err, "dispatch broad phase")
	}

	countData, err := bp.system.ReadBuffer(bp.countBuffer, 4)
	if err != nil {
		return nil, errors.Wrap(err, "read pair count")
	}
	pairCount := fromBytes[uint32](countData)[0]
	if pairCount == 0 {
		return nil, nil
	}
	if pairCount > bp.maxPairs {
		return nil, errors.Errorf("%d pairs overflow the result buffer of %d", pairCount, bp.maxPairs)
	}

	pairData, err := bp.system.ReadBuffer(bp.pairBuffer, uint64(pairCount)*8)
	if err != nil {
		return nil, errors.Wrap(err, "read pairs")
	}
	pairs := make([]Pair, pairCount)
	copy(pairs, fromBytes[Pair](pairData))
	SortPairs(pairs)
	return pairs, nil
}

// Release frees the buffers and pipeline. The shared System stays alive.
func (bp *BroadPhase) Release() {
	for _, buf := range []*Buffer{bp.sphereBuffer, bp.pairBuffer, bp.countBuffer, bp.objectBuffer} {
		if buf != nil {
			buf.Release()
		}
	}
	if bp.pipeline != nil {
		bp.pipeline.Release()
	}
}

// DetectPairsCPU evaluates the shader's predicate on the CPU, O(n²). It is the reference
// the GPU result is compared with and the fallback when no adapter exists.
func DetectPairsCPU(spheres []Sphere) []Pair {
	var pairs []Pair
	for i := range spheres {
		a := spheres[i]
		for j := i + 1; j < len(spheres); j++ {
			b := spheres[j]
			if a.Layer&b.Mask == 0 || b.Layer&a.Mask == 0 {
				continue
			}
			dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
			reach := a.Radius + b.Radius
			if dx*dx+dy*dy+dz*dz <= reach*reach {
				pairs = append(pairs, Pair{A: uint32(i), B: uint32(j)})
			}
		}
	}
	return pairs
}

// SortPairs orders pairs by A, then B. GPU output arrives in scheduling order.
func SortPairs(pairs []Pair) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})
}
