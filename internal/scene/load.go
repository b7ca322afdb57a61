package scene

import (
	"fmt"

	"github.com/banshee-data/kartqa/internal/fsutil"
)

// sequenceFile mirrors the on-disk record. Pointer and nil-slice fields
// distinguish absent keys from empty values.
type sequenceFile struct {
	Track      *string       `json:"track"`
	Karts      []string      `json:"karts"`
	Detections [][]Detection `json:"detections"`
}

// Decode parses a sequence record. path is only used in error messages.
func Decode(data []byte, path string) (*SequenceInfo, error) {
	var raw sequenceFile
	if err := jsonAPI.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse sequence %s: %w", path, err)
	}
	if raw.Detections == nil {
		return nil, &MissingFieldError{Field: "detections", Path: path}
	}
	if raw.Karts == nil {
		return nil, &MissingFieldError{Field: "karts", Path: path}
	}

	info := &SequenceInfo{
		Track:      DefaultTrackName,
		Karts:      raw.Karts,
		Detections: raw.Detections,
	}
	if raw.Track != nil {
		info.Track = *raw.Track
	}
	return info, nil
}

// Load reads and decodes one *_info.json sequence record.
func Load(fsys fsutil.FileSystem, path string) (*SequenceInfo, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sequence: %w", err)
	}
	return Decode(data, path)
}
