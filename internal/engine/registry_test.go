package engine

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type speedComponent struct {
	BaseComponent
	Speed float32
}

var errNegativeSpeed = errors.New("negative speed")

func speedFactory(props map[string]any) (Component, error) {
	c := &speedComponent{}
	if v, ok := props["speed"].(float64); ok {
		if v < 0 {
			return nil, errNegativeSpeed
		}
		c.Speed = float32(v)
	}
	return c, nil
}

func speedSerializer(c Component) map[string]any {
	s, ok := c.(*speedComponent)
	if !ok {
		return nil
	}
	return map[string]any{"speed": float64(s.Speed)}
}

func withCleanRegistry(t *testing.T) {
	saved := componentRegistry
	componentRegistry = map[string]registryEntry{}
	t.Cleanup(func() { componentRegistry = saved })
}

func TestRegisterComponentDuplicatePanics(t *testing.T) {
	withCleanRegistry(t)
	RegisterComponent("Speed", speedFactory, speedSerializer)

	assert.Panics(t, func() { RegisterComponent("Speed", speedFactory, speedSerializer) })
}

func TestCreateComponent(t *testing.T) {
	withCleanRegistry(t)
	RegisterComponent("Speed", speedFactory, speedSerializer)

	c, err := CreateComponent("Speed", map[string]any{"speed": 2.5})
	require.NoError(t, err)
	assert.Equal(t, float32(2.5), c.(*speedComponent).Speed)

	_, err = CreateComponent("Missing", nil)
	assert.True(t, errors.Is(err, ErrUnknownComponent))
	assert.ErrorContains(t, err, `"Missing"`)

	_, err = CreateComponent("Speed", map[string]any{"speed": -1.0})
	assert.True(t, errors.Is(err, errNegativeSpeed))
}

func TestSerializeComponent(t *testing.T) {
	withCleanRegistry(t)
	RegisterComponent("Speed", speedFactory, speedSerializer)
	RegisterComponent("Opaque", func(map[string]any) (Component, error) { return &BaseComponent{}, nil }, nil)

	name, props, ok := SerializeComponent(&speedComponent{Speed: 4})
	require.True(t, ok)
	assert.Equal(t, "Speed", name)
	assert.Equal(t, map[string]any{"speed": 4.0}, props)

	_, _, ok = SerializeComponent(&BaseComponent{})
	assert.False(t, ok)

	assert.Equal(t, []string{"Opaque", "Speed"}, RegisteredComponents())
}

func TestEvent(t *testing.T) {
	var ev Event[int]
	var got []int

	ev.AddListener(func(v int) { got = append(got, v) })
	ev.AddListener(nil)
	ev.AddListener(func(v int) { got = append(got, v*10) })
	require.Equal(t, 2, ev.ListenerCount())

	ev.Invoke(3)
	assert.Equal(t, []int{3, 30}, got)

	ev.RemoveAllListeners()
	ev.Invoke(4)
	assert.Equal(t, []int{3, 30}, got)
}
