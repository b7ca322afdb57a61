// Package scene owns the simulator metadata model: per-sequence kart names,
// track name and per-view detection lists, plus the image filename
// convention that ties a sequence to its rendered views.
//
// Coordinates in this package are always in the fixed source frame
// (SourceWidth × SourceHeight). Scaling into a target resolution happens in
// the perception package.
package scene

import (
	"fmt"
	"math"

	jsoniter "github.com/json-iterator/go"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// Source frame the simulator reports detections in.
const (
	SourceWidth  = 600
	SourceHeight = 400
)

// DefaultTrackName is reported when a sequence record carries no track.
const DefaultTrackName = "Unknown Track"

// ObjectClass identifies the category of a detection.
type ObjectClass int

const (
	ClassKart          ObjectClass = 1
	ClassTrackBoundary ObjectClass = 2
	ClassTrackElement  ObjectClass = 3
	ClassSpecial1      ObjectClass = 4
	ClassSpecial2      ObjectClass = 5
	ClassSpecial3      ObjectClass = 6
)

var classNames = map[ObjectClass]string{
	ClassKart:          "Kart",
	ClassTrackBoundary: "Track Boundary",
	ClassTrackElement:  "Track Element",
	ClassSpecial1:      "Special Element 1",
	ClassSpecial2:      "Special Element 2",
	ClassSpecial3:      "Special Element 3",
}

func (c ObjectClass) String() string {
	if name, ok := classNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

// Detection is one bounding box in source-frame pixels.
//
// On the wire a detection is a six element number array:
// [class_id, instance_id, x1, y1, x2, y2].
type Detection struct {
	Class      ObjectClass
	InstanceID int
	X1, Y1     float64
	X2, Y2     float64
}

// UnmarshalJSON decodes the positional array form. Ids are truncated to
// integers the same way the simulator's own tooling does.
func (d *Detection) UnmarshalJSON(data []byte) error {
	var row []float64
	if err := jsonAPI.Unmarshal(data, &row); err != nil {
		return fmt.Errorf("detection row: %w", err)
	}
	if len(row) != 6 {
		return fmt.Errorf("detection row has %d values, want 6", len(row))
	}
	for i, v := range row {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("detection row value %d is not finite", i)
		}
	}
	d.Class = ObjectClass(int(row[0]))
	d.InstanceID = int(row[1])
	d.X1, d.Y1, d.X2, d.Y2 = row[2], row[3], row[4], row[5]
	return nil
}

// MarshalJSON writes the positional array form back out.
func (d Detection) MarshalJSON() ([]byte, error) {
	return jsonAPI.Marshal([]float64{float64(d.Class), float64(d.InstanceID), d.X1, d.Y1, d.X2, d.Y2})
}

// SequenceInfo is the metadata record for one simulation sequence.
//
// A nil Karts or Detections slice means the key was absent from the record;
// an empty slice means it was present but empty.
type SequenceInfo struct {
	Track      string        `json:"track"`
	Karts      []string      `json:"karts"`
	Detections [][]Detection `json:"detections"`
}

// View returns the detections for one view. ok is false when the view index
// is out of range, which callers treat as an empty view.
func (s *SequenceInfo) View(view int) (dets []Detection, ok bool) {
	if view < 0 || view >= len(s.Detections) {
		return nil, false
	}
	return s.Detections[view], true
}

// KartName returns the name for an instance id.
func (s *SequenceInfo) KartName(instanceID int) (string, bool) {
	if instanceID < 0 || instanceID >= len(s.Karts) {
		return "", false
	}
	return s.Karts[instanceID], true
}

// ViewCount reports how many views carry detections.
func (s *SequenceInfo) ViewCount() int {
	return len(s.Detections)
}
