package compute

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const all = ^uint32(0)

func sphere(x, y, z, r float32) Sphere {
	return Sphere{X: x, Y: y, Z: z, Radius: r, Layer: 1, Mask: all}
}

func TestSphereLayoutMatchesShader(t *testing.T) {
	assert.Equal(t, uintptr(32), unsafe.Sizeof(Sphere{}))
	assert.Equal(t, uintptr(8), unsafe.Sizeof(Pair{}))
}

func TestDetectPairsCPU(t *testing.T) {
	spheres := []Sphere{
		sphere(0, 0, 0, 1),
		sphere(1.5, 0, 0, 1),
		sphere(10, 0, 0, 1),
		sphere(0, 2, 0, 1), // touching the first counts
	}

	assert.Equal(t, []Pair{{0, 1}, {0, 3}}, DetectPairsCPU(spheres))
	assert.Empty(t, DetectPairsCPU(spheres[2:3]))
}

func TestDetectPairsCPULayers(t *testing.T) {
	ground := Sphere{Radius: 5, Layer: 2, Mask: 4}
	crate := Sphere{X: 1, Radius: 1, Layer: 4, Mask: all}
	ghost := Sphere{X: 2, Radius: 1, Layer: 8, Mask: 8}

	assert.Equal(t, []Pair{{0, 1}}, DetectPairsCPU([]Sphere{ground, crate, ghost}))
}

func TestSortPairs(t *testing.T) {
	pairs := []Pair{{3, 4}, {0, 9}, {3, 1}, {0, 2}}
	SortPairs(pairs)
	assert.Equal(t, []Pair{{0, 2}, {0, 9}, {3, 1}, {3, 4}}, pairs)
}

func TestNewBroadPhaseWithoutAdapter(t *testing.T) {
	if Get() != nil {
		t.Skip("compute system already initialized")
	}
	_, err := NewBroadPhase(16, 16)
	assert.ErrorIs(t, err, ErrUnavailable)
}

// TestBroadPhaseMatchesCPU runs only where a GPU adapter is present.
func TestBroadPhaseMatchesCPU(t *testing.T) {
	if _, err := Initialize(); err != nil {
		t.Skipf("no compute adapter: %v", err)
	}
	bp, err := NewBroadPhase(1024, 1024*8)
	require.NoError(t, err)
	defer bp.Release()

	var spheres []Sphere
	for i := 0; i < 300; i++ {
		s := sphere(float32(i%20)*1.5, float32(i/20)*1.5, 0, 1)
		if i%7 == 0 {
			s.Mask = 0
		}
		spheres = append(spheres, s)
	}

	gpu, err := bp.DetectPairs(spheres)
	require.NoError(t, err)
	assert.Equal(t, DetectPairsCPU(spheres), gpu)

	_, err = bp.DetectPairs(make([]Sphere, 2048))
	assert.ErrorContains(t, err, "exceed broad phase capacity")
}
