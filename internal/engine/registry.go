package engine

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
)

// ErrUnknownComponent is returned when a scene names a component type nobody registered.
var ErrUnknownComponent = errors.New("unknown component type")

// ComponentFactory creates a Component from scene-file props.
type ComponentFactory func(props map[string]any) (Component, error)

// ComponentSerializer converts a Component back to props, or returns nil when c is not its type.
type ComponentSerializer func(c Component) map[string]any

type registryEntry struct {
	factory    ComponentFactory
	serializer ComponentSerializer
}

var componentRegistry = map[string]registryEntry{}

// RegisterComponent registers a named component type. Registering a name twice panics;
// it is meant to be called from init.
func RegisterComponent(name string, factory ComponentFactory, serializer ComponentSerializer) {
	if _, exists := componentRegistry[name]; exists {
		panic(fmt.Sprintf("component %q already registered", name))
	}
	componentRegistry[name] = registryEntry{factory: factory, serializer: serializer}
}

// CreateComponent builds the named component with the given props.
func CreateComponent(name string, props map[string]any) (Component, error) {
	entry, ok := componentRegistry[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownComponent, "create %q", name)
	}
	c, err := entry.factory(props)
	if err != nil {
		return nil, errors.Wrapf(err, "create %q", name)
	}
	return c, nil
}

// SerializeComponent finds the registered type of c and returns its name and props.
func SerializeComponent(c Component) (string, map[string]any, bool) {
	for _, name := range RegisteredComponents() {
		entry := componentRegistry[name]
		if entry.serializer == nil {
			continue
		}
		if props := entry.serializer(c); props != nil {
			return name, props, true
		}
	}
	return "", nil, false
}

// RegisteredComponents returns the registered names, sorted.
func RegisteredComponents() []string {
	names := make([]string, 0, len(componentRegistry))
	for name := range componentRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
