package scene

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/banshee-data/kartqa/internal/fsutil"
)

// InfoSuffix is the filename suffix of sequence records.
const InfoSuffix = "_info.json"

// FrameRef identifies one rendered view of a simulation frame.
type FrameRef struct {
	FrameID int64
	View    int
}

// ParseFrameRef parses an image filename of the form
// <hex_frame_id>_<view>_im.<ext>. Names with fewer than two underscore
// separated parts yield the zero FrameRef.
func ParseFrameRef(name string) (FrameRef, error) {
	parts := strings.Split(filepath.Base(name), "_")
	if len(parts) < 2 {
		return FrameRef{}, nil
	}
	frameID, err := strconv.ParseInt(parts[0], 16, 64)
	if err != nil {
		return FrameRef{}, fmt.Errorf("invalid frame id in %q: %w", name, err)
	}
	view, err := strconv.Atoi(parts[1])
	if err != nil {
		return FrameRef{}, fmt.Errorf("invalid view index in %q: %w", name, err)
	}
	return FrameRef{FrameID: frameID, View: view}, nil
}

// SequenceBase returns the sequence base name for an info file,
// e.g. "00000" for ".../00000_info.json".
func SequenceBase(infoPath string) string {
	name := filepath.Base(infoPath)
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	return strings.ReplaceAll(stem, "_info", "")
}

// ImageName returns the image filename for a sequence view.
func ImageName(base string, view int, ext string) string {
	return fmt.Sprintf("%s_%02d_im.%s", base, view, ext)
}

// ImageSize reads the pixel dimensions of a JPEG or PNG without decoding it.
func ImageSize(fsys fsutil.FileSystem, path string) (width, height int, err error) {
	f, err := fsys.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read image header %s: %w", path, err)
	}
	return cfg.Width, cfg.Height, nil
}

// LoadImage decodes a JPEG or PNG frame.
func LoadImage(fsys fsutil.FileSystem, path string) (image.Image, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return img, nil
}
