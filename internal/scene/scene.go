// Package scene is an in-memory scene graph implementing the host
// capabilities the session orchestrator needs: lookup by name and type,
// camera creation and object deletion. A real host (a DCC bridge, a game
// engine adapter) can replace it behind the same method set.
package scene

import (
	"fmt"

	"camsphere/internal/mathutil"
	"camsphere/internal/sphere"
)

// ObjectType mirrors the host object taxonomy.
type ObjectType string

const (
	Empty  ObjectType = "EMPTY"
	Camera ObjectType = "CAMERA"
	Mesh   ObjectType = "MESH"
)

// Object is one scene entity. Handles are object names; names are unique
// within a scene.
type Object struct {
	Name        string
	Type        ObjectType
	Position    mathutil.Vec3
	Orientation mathutil.Mat3
	Radius      float64             // bounding radius, meshes only
	Intrinsics  sphere.CameraParams // cameras only
}

// Scene holds objects keyed by name. Single-threaded by contract: the
// orchestrator owns its entities exclusively.
type Scene struct {
	objects map[string]*Object
}

func New() *Scene {
	return &Scene{objects: map[string]*Object{}}
}

// AddEmpty places a renderless anchor object.
func (s *Scene) AddEmpty(name string, pos mathutil.Vec3) *Object {
	o := &Object{Name: name, Type: Empty, Position: pos, Orientation: mathutil.Mat3Identity()}
	s.objects[name] = o
	return o
}

// AddMesh places a mesh probe with a bounding radius.
func (s *Scene) AddMesh(name string, pos mathutil.Vec3, radius float64) *Object {
	o := &Object{Name: name, Type: Mesh, Position: pos, Orientation: mathutil.Mat3Identity(), Radius: radius}
	s.objects[name] = o
	return o
}

// FindObjectByNameAndType returns the handle of a matching object, or
// ok=false when it does not exist.
func (s *Scene) FindObjectByNameAndType(name string, typ string) (string, bool) {
	o, ok := s.objects[name]
	if !ok || o.Type != ObjectType(typ) {
		return "", false
	}
	return o.Name, true
}

// CreateCamera adds a camera entity, copying the intrinsic template
// verbatim. Fails if the name is already taken.
func (s *Scene) CreateCamera(name string, pos mathutil.Vec3, orient mathutil.Mat3, intr sphere.CameraParams) (string, error) {
	if _, exists := s.objects[name]; exists {
		return "", fmt.Errorf("scene: object %q already exists", name)
	}
	s.objects[name] = &Object{
		Name:        name,
		Type:        Camera,
		Position:    pos,
		Orientation: orient,
		Intrinsics:  intr,
	}
	return name, nil
}

// DeleteObject removes an entity by handle.
func (s *Scene) DeleteObject(handle string) error {
	if _, ok := s.objects[handle]; !ok {
		return fmt.Errorf("scene: no object %q", handle)
	}
	delete(s.objects, handle)
	return nil
}

// Object returns the entity behind a handle.
func (s *Scene) Object(handle string) (*Object, bool) {
	o, ok := s.objects[handle]
	return o, ok
}

// Meshes returns every mesh object, for render backends that walk the
// scene content.
func (s *Scene) Meshes() []*Object {
	var out []*Object
	for _, o := range s.objects {
		if o.Type == Mesh {
			out = append(out, o)
		}
	}
	return out
}

// Count returns the number of objects of one type.
func (s *Scene) Count(typ ObjectType) int {
	n := 0
	for _, o := range s.objects {
		if o.Type == typ {
			n++
		}
	}
	return n
}
