package components

import (
	"rigidcore/internal/engine"
)

func init() {
	engine.RegisterComponent("ContactCounter", contactCounterFactory, contactCounterSerializer)
}

// ContactCounter tallies the contacts its object takes part in. With a Tag set only objects
// carrying that tag are counted. Put it next to a trigger collider to count visitors.
type ContactCounter struct {
	engine.BaseComponent
	Tag string

	Enters int
	Exits  int
}

// Inside is the number of counted objects currently touching.
func (c *ContactCounter) Inside() int {
	return c.Enters - c.Exits
}

func (c *ContactCounter) counts(other *engine.GameObject) bool {
	return c.Tag == "" || other.HasTag(c.Tag)
}

func (c *ContactCounter) OnCollisionEnter(other *engine.GameObject) {
	if c.counts(other) {
		c.Enters++
	}
}

func (c *ContactCounter) OnCollisionExit(other *engine.GameObject) {
	if c.counts(other) {
		c.Exits++
	}
}

func contactCounterFactory(props map[string]any) (engine.Component, error) {
	tag, err := stringProp(props, "tag", "")
	if err != nil {
		return nil, err
	}
	return &ContactCounter{Tag: tag}, nil
}

func contactCounterSerializer(c engine.Component) map[string]any {
	cc, ok := c.(*ContactCounter)
	if !ok {
		return nil
	}
	if cc.Tag == "" {
		return map[string]any{}
	}
	return map[string]any{"tag": cc.Tag}
}
