// Package testutil provides shared test utilities and fixtures.
//
// This package centralises the sequence and image fixtures used by the
// dataset, grader and visualiser tests.
package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/banshee-data/kartqa/internal/fsutil"
	"github.com/banshee-data/kartqa/internal/scene"
	jsoniter "github.com/json-iterator/go"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// Kart returns a kart-class detection in source pixels.
func Kart(id int, x1, y1, x2, y2 float64) scene.Detection {
	return scene.Detection{Class: scene.ClassKart, InstanceID: id, X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// TwoKartSequence is a one-view sequence whose karts scale to centres
// (37.5, 37.5) and (112.5, 85) at 150x100; "tux" is the ego.
func TwoKartSequence() *scene.SequenceInfo {
	return &scene.SequenceInfo{
		Track: "lighthouse",
		Karts: []string{"tux", "gnu"},
		Detections: [][]scene.Detection{{
			Kart(0, 100, 100, 200, 200),
			Kart(1, 400, 300, 500, 380),
		}},
	}
}

// WriteSequence writes info as <dir>/<base>_info.json and returns the path.
func WriteSequence(t testing.TB, fsys fsutil.FileSystem, dir, base string, info *scene.SequenceInfo) string {
	t.Helper()
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(info)
	AssertNoError(t, err)
	path := filepath.Join(dir, base+scene.InfoSuffix)
	AssertNoError(t, fsys.WriteFile(path, data, 0o644))
	return path
}

// PNG encodes a solid grey image of the given size.
func PNG(t testing.TB, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 90, G: 90, B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	AssertNoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// WriteImages writes placeholder view images for base in dir. The
// contents are only meaningful when ext is "png".
func WriteImages(t testing.TB, fsys fsutil.FileSystem, dir, base, ext string, views ...int) {
	t.Helper()
	data := PNG(t, 4, 4)
	for _, v := range views {
		AssertNoError(t, fsys.WriteFile(filepath.Join(dir, scene.ImageName(base, v, ext)), data, 0o644))
	}
}
