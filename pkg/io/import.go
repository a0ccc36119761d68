package io

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/panotour/pkg/errors"
	"github.com/matzehuels/panotour/pkg/tour"
)

// Format names a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat converts a user supplied format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown document format: %s (must be 'json' or 'yaml')", s)
}

// FormatFromPath guesses the document format from the file extension.
// Anything other than .yaml/.yml is treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

var validate = validator.New()

// sceneFields are the fields every scene record must carry.
type sceneFields struct {
	ID        string `validate:"required"`
	ImagePath string `validate:"required"`
}

// linkFields are the fields every navigation hotspot must carry.
type linkFields struct {
	TargetSceneID string `validate:"required"`
}

type document struct {
	Scenes   json.RawMessage `json:"scenes"`
	Settings json.RawMessage `json:"settings"`
	Default  json.RawMessage `json:"default"`
}

type sceneRecord struct {
	ID        *string           `json:"id"`
	Title     string            `json:"title"`
	Panorama  string            `json:"panorama"`
	ImagePath string            `json:"imagePath"`
	Floor     json.RawMessage   `json:"floor"`
	HotSpots  []json.RawMessage `json:"hotSpots"`
	Hotspots  []json.RawMessage `json:"hotspots"`
}

type hotspotRecord struct {
	Pitch         *float64        `json:"pitch"`
	Yaw           *float64        `json:"yaw"`
	Type          string          `json:"type"`
	Text          string          `json:"text"`
	SceneID       json.RawMessage `json:"sceneId"`
	TargetSceneID json.RawMessage `json:"targetSceneId"`
}

type settingsRecord struct {
	StartSceneID       string          `json:"startSceneId"`
	FirstScene         string          `json:"firstScene"`
	DefaultFloor       json.RawMessage `json:"defaultFloor"`
	TransitionDuration *float64        `json:"transitionDuration"`
	SceneFadeDuration  *float64        `json:"sceneFadeDuration"`
}

// keyedRecord is one entry of the scenes list. Key is set when scenes were
// given as an object keyed by id.
type keyedRecord struct {
	Key  string
	Data json.RawMessage
}

// DecodeTour decodes a tour document held in memory.
func DecodeTour(data []byte, format Format) (*tour.Tour, error) {
	if format == FormatYAML {
		converted, err := yamlToJSON(data)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode yaml")
		}
		data = converted
	}
	return decodeJSON(data)
}

// ReadTour decodes a tour document from r. ReadTour does not close r.
func ReadTour(r io.Reader, format Format) (*tour.Tour, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "read document")
	}
	return DecodeTour(data, format)
}

// ImportTour reads the tour document at path. The format follows the file
// extension, see [FormatFromPath].
func ImportTour(path string) (*tour.Tour, error) {
	data, err := ReadDocument(path)
	if err != nil {
		return nil, err
	}
	t, err := DecodeTour(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ReadDocument reads the raw bytes of the document at path, mapping a missing
// file to ErrCodeFileNotFound.
func ReadDocument(path string) ([]byte, error) {
	if err := errors.ValidateDocumentPath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if stderrors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "tour document not found: %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "read %s", path)
	}
	return data, nil
}

func decodeJSON(data []byte) (*tour.Tour, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode document")
	}
	if isAbsent(doc.Scenes) {
		return nil, errors.New(errors.ErrCodeInvalidDocument, "document has no \"scenes\" list")
	}
	records, err := sceneRecords(doc.Scenes)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode scenes")
	}

	rawSettings := doc.Settings
	if isAbsent(rawSettings) {
		rawSettings = doc.Default
	}
	settings, settingsErrs := decodeSettings(rawSettings)

	t := tour.New(settings)
	for _, pe := range settingsErrs {
		t.AddParseError(pe)
	}

	firstIndex := make(map[string]int)
	for i, rec := range records {
		s, errs := decodeScene(i, rec)
		for _, pe := range errs {
			t.AddParseError(pe)
		}
		if s == nil {
			continue
		}
		if !t.AddScene(s) {
			t.AddParseError(tour.ParseError{
				Kind:         tour.DuplicateSceneID,
				Index:        i,
				HotspotIndex: -1,
				SceneID:      s.ID,
				Reason:       fmt.Sprintf("duplicate scene id, first declared at #%d", firstIndex[s.ID]),
			})
			continue
		}
		firstIndex[s.ID] = i
	}
	return t, nil
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || string(trimmed) == "null"
}

// sceneRecords splits the scenes value into records, keeping declaration
// order for both the array and the keyed-object form.
func sceneRecords(raw json.RawMessage) ([]keyedRecord, error) {
	trimmed := bytes.TrimSpace(raw)
	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		records := make([]keyedRecord, len(items))
		for i, item := range items {
			records[i] = keyedRecord{Data: item}
		}
		return records, nil
	case '{':
		return orderedObject(trimmed)
	}
	return nil, fmt.Errorf("scenes must be a list or an object, got %.20s", trimmed)
}

func orderedObject(data []byte) ([]keyedRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	var records []keyedRecord
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("scene %q: %w", key, err)
		}
		records = append(records, keyedRecord{Key: key, Data: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return records, nil
}

func decodeSettings(raw json.RawMessage) (tour.Settings, []tour.ParseError) {
	var settings tour.Settings
	if isAbsent(raw) {
		return settings, nil
	}

	settingsErr := func(kind tour.ParseErrorKind, reason string) tour.ParseError {
		return tour.ParseError{Kind: kind, Index: -1, HotspotIndex: -1, Reason: reason}
	}

	var rec settingsRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return settings, []tour.ParseError{settingsErr(tour.InvalidSettings, err.Error())}
	}

	settings.StartSceneID = rec.StartSceneID
	if settings.StartSceneID == "" {
		settings.StartSceneID = rec.FirstScene
	}
	switch {
	case rec.TransitionDuration != nil:
		settings.TransitionDuration = *rec.TransitionDuration
	case rec.SceneFadeDuration != nil:
		settings.TransitionDuration = *rec.SceneFadeDuration
	}

	floor, err := decodeFloor(rec.DefaultFloor)
	if err != nil {
		return settings, []tour.ParseError{settingsErr(tour.InvalidFloor, "defaultFloor: "+err.Error())}
	}
	settings.DefaultFloor = floor
	return settings, nil
}

// decodeFloor accepts an integral number, null, or "unspecified".
func decodeFloor(raw json.RawMessage) (tour.Floor, error) {
	if isAbsent(raw) {
		return tour.Floor{}, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == tour.UnspecifiedFloor {
			return tour.Floor{}, nil
		}
		return tour.Floor{}, fmt.Errorf("floor must be an integer, got string %q", s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return tour.Floor{}, fmt.Errorf("floor must be an integer, got %s", bytes.TrimSpace(raw))
	}
	if i, err := n.Int64(); err == nil {
		return tour.FloorOf(int(i)), nil
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return tour.Floor{}, fmt.Errorf("floor must be an integer, got %s", n)
	}
	return tour.FloorOf(int(f)), nil
}

// decodeScene returns nil when the record is rejected. Amendments to a kept
// scene (dropped hotspots, invalid floor) are returned alongside it.
func decodeScene(index int, rec keyedRecord) (*tour.Scene, []tour.ParseError) {
	sceneErr := func(kind tour.ParseErrorKind, id, reason string) tour.ParseError {
		return tour.ParseError{Kind: kind, Index: index, HotspotIndex: -1, SceneID: id, Reason: reason}
	}

	var raw sceneRecord
	if err := json.Unmarshal(rec.Data, &raw); err != nil {
		return nil, []tour.ParseError{sceneErr(tour.InvalidScene, rec.Key, err.Error())}
	}

	id := rec.Key
	if raw.ID != nil {
		id = *raw.ID
	}
	imagePath := raw.Panorama
	if imagePath == "" {
		imagePath = raw.ImagePath
	}

	if err := validate.Struct(sceneFields{ID: id, ImagePath: imagePath}); err != nil {
		return nil, []tour.ParseError{sceneErr(tour.InvalidScene, id, formatValidationError(err))}
	}
	if err := errors.ValidateSceneID(id); err != nil {
		return nil, []tour.ParseError{sceneErr(tour.InvalidScene, id, errors.UserMessage(err))}
	}

	var errs []tour.ParseError
	scene := &tour.Scene{ID: id, Title: raw.Title, ImagePath: imagePath}

	floor, err := decodeFloor(raw.Floor)
	if err != nil {
		errs = append(errs, sceneErr(tour.InvalidFloor, id, err.Error()))
	}
	scene.Floor = floor

	hotspots := raw.HotSpots
	if hotspots == nil {
		hotspots = raw.Hotspots
	}
	for j, data := range hotspots {
		h, reason := decodeHotspot(data)
		if reason != "" {
			errs = append(errs, tour.ParseError{
				Kind:         tour.InvalidHotspot,
				Index:        index,
				HotspotIndex: j,
				SceneID:      id,
				Reason:       reason,
			})
			continue
		}
		scene.Hotspots = append(scene.Hotspots, h)
	}
	return scene, errs
}

// decodeHotspot returns a non-empty reason when the record is rejected.
func decodeHotspot(data json.RawMessage) (tour.Hotspot, string) {
	var raw hotspotRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return tour.Hotspot{}, err.Error()
	}

	h := tour.Hotspot{Type: raw.Type, Text: raw.Text}
	if raw.Pitch != nil && raw.Yaw != nil {
		h.Position = &tour.Position{Pitch: *raw.Pitch, Yaw: *raw.Yaw}
	}

	target := raw.TargetSceneID
	if isAbsent(target) {
		target = raw.SceneID
	}
	if !isAbsent(target) {
		if err := json.Unmarshal(target, &h.TargetSceneID); err != nil {
			return tour.Hotspot{}, fmt.Sprintf("targetSceneId must be a string, got %s", bytes.TrimSpace(target))
		}
	}

	if !h.IsLink() {
		return h, ""
	}
	if err := validate.Struct(linkFields{TargetSceneID: h.TargetSceneID}); err != nil {
		return tour.Hotspot{}, formatValidationError(err)
	}
	if err := errors.ValidateSceneID(h.TargetSceneID); err != nil {
		return tour.Hotspot{}, "targetSceneId: " + errors.UserMessage(err)
	}
	return h, ""
}

var fieldNames = map[string]string{
	"ID":            "id",
	"ImagePath":     "imagePath",
	"TargetSceneID": "targetSceneId",
}

func formatValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := fieldNames[fe.Field()]
		if name == "" {
			name = fe.Field()
		}
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, "missing "+name)
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", name, fe.Tag()))
		}
	}
	return strings.Join(msgs, ", ")
}
