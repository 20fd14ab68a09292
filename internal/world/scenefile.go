package world

import (
	"os"

	"rigidcore/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// SceneFile is the YAML layout of a scene.
type SceneFile struct {
	Name    string      `yaml:"name"`
	Objects []ObjectDef `yaml:"objects"`
}

// ObjectDef describes one object. Collider and Rigidbody are shorthands for the registered
// components of those names; anything else registered goes in Components.
type ObjectDef struct {
	Name       string         `yaml:"name"`
	Tags       []string       `yaml:"tags,omitempty"`
	Position   [3]float32     `yaml:"position"`
	Rotation   [3]float32     `yaml:"rotation,omitempty"` // Euler degrees, X then Y then Z
	Scale      *[3]float32    `yaml:"scale,omitempty"`
	Active     *bool          `yaml:"active,omitempty"`
	Collider   map[string]any `yaml:"collider,omitempty"`
	Rigidbody  map[string]any `yaml:"rigidbody,omitempty"`
	Components []ComponentDef `yaml:"components,omitempty"`
}

type ComponentDef struct {
	Type  string         `yaml:"type"`
	Props map[string]any `yaml:"props,omitempty"`
}

// --- Loading ---

// LoadScene reads and builds a scene file.
func LoadScene(path string) (*engine.Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read scene")
	}
	scene, err := ParseScene(data)
	if err != nil {
		return nil, errors.Wrapf(err, "scene %s", path)
	}
	return scene, nil
}

// ParseScene builds a scene from YAML. Errors name the offending object.
func ParseScene(data []byte) (*engine.Scene, error) {
	var sf SceneFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, errors.Wrap(err, "parse scene")
	}

	scene := engine.NewScene(sf.Name)
	for i, def := range sf.Objects {
		g, err := buildObject(def)
		if err != nil {
			return nil, errors.Wrapf(err, "object %d (%q)", i, def.Name)
		}
		scene.AddGameObject(g)
	}
	return scene, nil
}

func buildObject(def ObjectDef) (*engine.GameObject, error) {
	g := engine.NewGameObject(def.Name)
	g.Tags = def.Tags
	g.Transform.Translation = vec(def.Position)
	g.Transform.SetEuler(vec(def.Rotation))
	if def.Scale != nil {
		g.Transform.Scale = vec(*def.Scale)
	}
	if def.Active != nil {
		g.Active = *def.Active
	}

	comps := def.Components
	if def.Collider != nil {
		comps = append([]ComponentDef{{Type: "Collider", Props: def.Collider}}, comps...)
	}
	if def.Rigidbody != nil {
		comps = append(comps, ComponentDef{Type: "Rigidbody", Props: def.Rigidbody})
	}
	for _, cd := range comps {
		c, err := engine.CreateComponent(cd.Type, cd.Props)
		if err != nil {
			return nil, err
		}
		g.AddComponent(c)
	}
	return g, nil
}

func vec(v [3]float32) rl.Vector3 {
	return rl.Vector3{X: v[0], Y: v[1], Z: v[2]}
}

// --- Saving ---

// SaveScene writes scene as YAML.
func SaveScene(scene *engine.Scene, path string) error {
	data, err := MarshalScene(scene)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "write scene")
	}
	return nil
}

// MarshalScene encodes every object and its registered components. Rotations are written
// back as Euler degrees recovered from the rotation matrix.
func MarshalScene(scene *engine.Scene) ([]byte, error) {
	sf := SceneFile{Name: scene.Name}
	for _, g := range scene.GameObjects {
		t := g.Transform
		euler := rl.Vector3Scale(rl.QuaternionToEuler(rl.QuaternionFromMatrix(t.RotationMatrix())), rl.Rad2deg)
		def := ObjectDef{
			Name:     g.Name,
			Tags:     g.Tags,
			Position: [3]float32{t.Translation.X, t.Translation.Y, t.Translation.Z},
			Rotation: [3]float32{euler.X, euler.Y, euler.Z},
		}
		if s := t.Scale; s != (rl.Vector3{X: 1, Y: 1, Z: 1}) && s != (rl.Vector3{}) {
			def.Scale = &[3]float32{s.X, s.Y, s.Z}
		}
		if !g.Active {
			inactive := false
			def.Active = &inactive
		}

		for _, c := range g.Components() {
			name, props, ok := engine.SerializeComponent(c)
			if !ok {
				continue
			}
			switch name {
			case "Collider":
				def.Collider = props
			case "Rigidbody":
				def.Rigidbody = props
			default:
				def.Components = append(def.Components, ComponentDef{Type: name, Props: props})
			}
		}
		sf.Objects = append(sf.Objects, def)
	}

	data, err := yaml.Marshal(sf)
	if err != nil {
		return nil, errors.Wrap(err, "marshal scene")
	}
	return data, nil
}
