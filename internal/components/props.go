package components

import (
	"fmt"
	"strings"

	"rigidcore/internal/collision"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/pkg/errors"
)

// Props arrive from YAML (int, float64, []any) or straight from a serializer (float32 slices).

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	}
	return 0, false
}

func floatProp(props map[string]any, key string, fallback float32) (float32, error) {
	v, ok := props[key]
	if !ok {
		return fallback, nil
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, errors.Errorf("%s: expected a number, got %T", key, v)
	}
	return float32(f), nil
}

func stringProp(props map[string]any, key, fallback string) (string, error) {
	v, ok := props[key]
	if !ok {
		return fallback, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", errors.Errorf("%s: expected a string, got %T", key, v)
	}
	return s, nil
}

func floatsProp(props map[string]any, key string) ([]float32, error) {
	v, ok := props[key]
	if !ok {
		return nil, nil
	}
	switch list := v.(type) {
	case []float32:
		return list, nil
	case []any:
		out := make([]float32, len(list))
		for i, item := range list {
			f, ok := toFloat(item)
			if !ok {
				return nil, errors.Errorf("%s[%d]: expected a number, got %T", key, i, item)
			}
			out[i] = float32(f)
		}
		return out, nil
	}
	return nil, errors.Errorf("%s: expected a list of numbers, got %T", key, v)
}

func vectorProp(props map[string]any, key string, fallback rl.Vector3) (rl.Vector3, error) {
	if _, ok := props[key]; !ok {
		return fallback, nil
	}
	f, err := floatsProp(props, key)
	if err != nil {
		return rl.Vector3{}, err
	}
	if len(f) != 3 {
		return rl.Vector3{}, errors.Errorf("%s: expected 3 components, got %d", key, len(f))
	}
	return rl.Vector3{X: f[0], Y: f[1], Z: f[2]}, nil
}

func indicesProp(props map[string]any, key string) ([]uint16, error) {
	f, err := floatsProp(props, key)
	if err != nil || f == nil {
		return nil, err
	}
	out := make([]uint16, len(f))
	for i, v := range f {
		if v < 0 || v > 65535 || v != float32(int(v)) {
			return nil, errors.Errorf("%s[%d]: %v is not a vertex index", key, i, v)
		}
		out[i] = uint16(v)
	}
	return out, nil
}

func vectorValue(v rl.Vector3) []float32 {
	return []float32{v.X, v.Y, v.Z}
}

var layerNames = map[string]collision.Layer{
	"default": collision.LayerDefault,
	"static":  collision.LayerStatic,
	"dynamic": collision.LayerDynamic,
	"trigger": collision.LayerTrigger,
	"all":     collision.LayerAll,
}

// layerProp accepts a bitmask number, a layer name, or a list of names.
func layerProp(props map[string]any, key string, fallback collision.Layer) (collision.Layer, error) {
	v, ok := props[key]
	if !ok {
		return fallback, nil
	}
	if f, ok := toFloat(v); ok {
		if f < 0 || f > float64(collision.LayerAll) {
			return 0, errors.Errorf("%s: %v is out of range", key, f)
		}
		return collision.Layer(f), nil
	}
	var names []any
	switch t := v.(type) {
	case string:
		names = []any{t}
	case []any:
		names = t
	default:
		return 0, errors.Errorf("%s: expected a layer, got %T", key, v)
	}
	var layer collision.Layer
	for _, n := range names {
		name, _ := n.(string)
		bits, ok := layerNames[strings.ToLower(name)]
		if !ok {
			return 0, errors.Errorf("%s: unknown layer %v", key, n)
		}
		layer |= bits
	}
	return layer, nil
}

// axisMask turns an axis list such as "xz" into per-axis lock flags.
func axisMask(props map[string]any, key string) (x, y, z bool, err error) {
	s, err := stringProp(props, key, "")
	if err != nil {
		return false, false, false, err
	}
	for _, r := range strings.ToLower(s) {
		switch r {
		case 'x':
			x = true
		case 'y':
			y = true
		case 'z':
			z = true
		default:
			return false, false, false, errors.Errorf("%s: unknown axis %q", key, r)
		}
	}
	return x, y, z, nil
}

func lockedAxes(unlock rl.Vector3) string {
	var sb strings.Builder
	for i, v := range []float32{unlock.X, unlock.Y, unlock.Z} {
		if v == 0 {
			fmt.Fprintf(&sb, "%c", 'x'+rune(i))
		}
	}
	return sb.String()
}
