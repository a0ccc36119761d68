package tour

import (
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// HotspotTypeScene marks a navigation hotspot. An empty type means the same.
const HotspotTypeScene = "scene"

// UnspecifiedFloor is the label used for scenes without a floor.
const UnspecifiedFloor = "unspecified"

// Floor is an optional integer floor level. The zero value is unspecified.
type Floor struct {
	level int
	set   bool
}

// FloorOf returns a floor assigned to level.
func FloorOf(level int) Floor { return Floor{level: level, set: true} }

// Level returns the floor number and whether one is assigned.
func (f Floor) Level() (int, bool) { return f.level, f.set }

// IsSet reports whether a floor is assigned.
func (f Floor) IsSet() bool { return f.set }

// String returns the level in decimal, or "unspecified".
func (f Floor) String() string {
	if !f.set {
		return UnspecifiedFloor
	}
	return strconv.Itoa(f.level)
}

// Less orders floors numerically with unspecified last.
func (f Floor) Less(o Floor) bool {
	switch {
	case f.set && o.set:
		return f.level < o.level
	case f.set:
		return true
	default:
		return false
	}
}

// MarshalJSON encodes an assigned floor as a number and an unassigned one as
// the string "unspecified".
func (f Floor) MarshalJSON() ([]byte, error) {
	if !f.set {
		return json.Marshal(UnspecifiedFloor)
	}
	return json.Marshal(f.level)
}

// UnmarshalJSON accepts a number, null, or "unspecified".
func (f *Floor) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = Floor{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != UnspecifiedFloor {
			return fmt.Errorf("floor: unexpected string %q", s)
		}
		*f = Floor{}
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("floor: %w", err)
	}
	*f = FloorOf(n)
	return nil
}

// MarshalYAML mirrors MarshalJSON.
func (f Floor) MarshalYAML() (any, error) {
	if !f.set {
		return UnspecifiedFloor, nil
	}
	return f.level, nil
}

// UnmarshalYAML mirrors UnmarshalJSON.
func (f *Floor) UnmarshalYAML(value *yaml.Node) error {
	if value.Tag == "!!null" {
		*f = Floor{}
		return nil
	}
	if value.Tag == "!!str" {
		if value.Value != UnspecifiedFloor {
			return fmt.Errorf("floor: unexpected string %q", value.Value)
		}
		*f = Floor{}
		return nil
	}
	var n int
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("floor: %w", err)
	}
	*f = FloorOf(n)
	return nil
}

// Position is the yaw/pitch placement of a hotspot inside its panorama.
// The analysis never looks at the values.
type Position struct {
	Pitch float64 `json:"pitch" yaml:"pitch"`
	Yaw   float64 `json:"yaw" yaml:"yaw"`
}

// Hotspot is a clickable spot owned by exactly one scene.
type Hotspot struct {
	Type          string    `json:"type,omitempty" yaml:"type,omitempty"`
	Text          string    `json:"text,omitempty" yaml:"text,omitempty"`
	TargetSceneID string    `json:"targetSceneId,omitempty" yaml:"targetSceneId,omitempty"`
	Position      *Position `json:"position,omitempty" yaml:"position,omitempty"`
}

// IsLink reports whether the hotspot navigates to a scene.
func (h Hotspot) IsLink() bool {
	return h.Type == "" || h.Type == HotspotTypeScene
}

// Kind returns the hotspot type, defaulting to "scene".
func (h Hotspot) Kind() string {
	if h.Type == "" {
		return HotspotTypeScene
	}
	return h.Type
}

// Scene is one navigable panorama.
type Scene struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title,omitempty" yaml:"title,omitempty"`
	ImagePath string    `json:"imagePath" yaml:"imagePath"`
	Floor     Floor     `json:"floor" yaml:"floor"`
	Hotspots  []Hotspot `json:"hotspots,omitempty" yaml:"hotspots,omitempty"`
}

// Links returns the navigation hotspots in declaration order.
func (s *Scene) Links() []Hotspot {
	var links []Hotspot
	for _, h := range s.Hotspots {
		if h.IsLink() {
			links = append(links, h)
		}
	}
	return links
}

// Settings holds tour-wide options.
type Settings struct {
	StartSceneID       string  `json:"startSceneId,omitempty" yaml:"startSceneId,omitempty"`
	DefaultFloor       Floor   `json:"defaultFloor" yaml:"defaultFloor"`
	TransitionDuration float64 `json:"transitionDuration,omitempty" yaml:"transitionDuration,omitempty"`
}

// Tour is a loaded configuration document.
// Scenes keep declaration order; ids are unique.
type Tour struct {
	Scenes      []*Scene
	Settings    Settings
	ParseErrors []ParseError

	index map[string]*Scene
}

// New returns an empty tour with the given settings.
func New(settings Settings) *Tour {
	return &Tour{Settings: settings, index: make(map[string]*Scene)}
}

// FromScenes returns a tour holding the given scenes. Scenes with an empty
// or already taken id are dropped.
func FromScenes(settings Settings, scenes ...*Scene) *Tour {
	t := New(settings)
	for _, s := range scenes {
		t.AddScene(s)
	}
	return t
}

// AddScene appends s unless its id is empty or already taken.
// It reports whether s was added.
func (t *Tour) AddScene(s *Scene) bool {
	if s.ID == "" {
		return false
	}
	if t.index == nil {
		t.index = make(map[string]*Scene)
	}
	if _, exists := t.index[s.ID]; exists {
		return false
	}
	t.index[s.ID] = s
	t.Scenes = append(t.Scenes, s)
	return true
}

// Scene returns the scene with the given id.
func (t *Tour) Scene(id string) (*Scene, bool) {
	s, ok := t.index[id]
	return s, ok
}

// SceneCount returns the number of loaded scenes.
func (t *Tour) SceneCount() int { return len(t.Scenes) }

// SceneIDs returns scene ids in declaration order.
func (t *Tour) SceneIDs() []string {
	ids := make([]string, len(t.Scenes))
	for i, s := range t.Scenes {
		ids[i] = s.ID
	}
	return ids
}

// EffectiveFloor returns the scene's floor, or the default floor when the
// scene has none.
func (t *Tour) EffectiveFloor(s *Scene) Floor {
	if s.Floor.IsSet() {
		return s.Floor
	}
	return t.Settings.DefaultFloor
}

// AddParseError records a problem found while loading.
func (t *Tour) AddParseError(pe ParseError) {
	t.ParseErrors = append(t.ParseErrors, pe)
}
