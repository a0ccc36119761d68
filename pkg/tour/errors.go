package tour

import "fmt"

// ParseErrorKind classifies a record rejected or amended by the loader.
type ParseErrorKind string

const (
	// InvalidScene marks a scene record that was excluded from the model.
	InvalidScene ParseErrorKind = "InvalidScene"
	// InvalidHotspot marks a hotspot record excluded from its scene.
	InvalidHotspot ParseErrorKind = "InvalidHotspot"
	// DuplicateSceneID marks a later occurrence of an already loaded id.
	DuplicateSceneID ParseErrorKind = "DuplicateSceneId"
	// InvalidFloor marks a floor value that is not an integer. The scene is
	// kept with its floor unassigned.
	InvalidFloor ParseErrorKind = "InvalidFloor"
	// InvalidSettings marks a settings block that could not be decoded.
	InvalidSettings ParseErrorKind = "InvalidSettings"
)

// ParseError describes one problem found in an individual record.
// Index is the scene record position in the document; HotspotIndex is -1
// unless the problem belongs to a hotspot.
type ParseError struct {
	Kind         ParseErrorKind `json:"kind" yaml:"kind"`
	Index        int            `json:"index" yaml:"index"`
	HotspotIndex int            `json:"hotspotIndex" yaml:"hotspotIndex"`
	SceneID      string         `json:"sceneId,omitempty" yaml:"sceneId,omitempty"`
	Reason       string         `json:"reason" yaml:"reason"`
}

// Error implements the error interface.
func (e ParseError) Error() string {
	where := fmt.Sprintf("scene #%d", e.Index)
	if e.SceneID != "" {
		where = fmt.Sprintf("scene %q (#%d)", e.SceneID, e.Index)
	}
	if e.HotspotIndex >= 0 {
		where += fmt.Sprintf(" hotspot #%d", e.HotspotIndex)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, where, e.Reason)
}
