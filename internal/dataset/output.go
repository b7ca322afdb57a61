package dataset

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/banshee-data/kartqa/internal/config"
	"github.com/banshee-data/kartqa/internal/fsutil"
	"github.com/banshee-data/kartqa/internal/version"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

// outputAPI writes two-space indented JSON and leaves <, > and & unescaped
// so questions and captions stay readable.
var outputAPI = jsoniter.Config{
	EscapeHTML:    false,
	SortMapKeys:   true,
	IndentionStep: 2,
}.Froze()

// WriteJSON encodes v to path, creating the parent directory.
func WriteJSON(fsys fsutil.FileSystem, path string, v any) error {
	data, err := outputAPI.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	data = append(data, '\n')
	if err := fsys.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ReadJSON decodes the JSON file at path into v.
func ReadJSON(fsys fsutil.FileSystem, path string, v any) error {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// ReadQA loads a QA dataset file.
func ReadQA(fsys fsutil.FileSystem, path string) ([]QAEntry, error) {
	var entries []QAEntry
	if err := ReadJSON(fsys, path, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ReadCaptions loads a caption dataset file.
func ReadCaptions(fsys fsutil.FileSystem, path string) ([]CaptionEntry, error) {
	var entries []CaptionEntry
	if err := ReadJSON(fsys, path, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Manifest describes one builder run. It is written beside the dataset
// with a name the "*_qa_pairs.json" and "*_captions.json" globs never match.
type Manifest struct {
	RunID        string        `json:"run_id"`
	Kind         string        `json:"kind"`
	Version      string        `json:"version"`
	GitSHA       string        `json:"git_sha"`
	CreatedAt    time.Time     `json:"created_at"`
	Root         string        `json:"root"`
	Split        string        `json:"split"`
	Output       string        `json:"output"`
	Sequences    int           `json:"sequences"`
	Views        int           `json:"views"`
	SkippedViews int           `json:"skipped_views"`
	Entries      int           `json:"entries"`
	Fallbacks    int           `json:"normalizer_fallbacks"`
	ElapsedMS    int64         `json:"elapsed_ms"`
	Config       config.Params `json:"config"`
}

// ManifestPath returns "<dir>/<stem>.manifest.json" for an output path.
func ManifestPath(output string) string {
	return strings.TrimSuffix(output, filepath.Ext(output)) + ".manifest.json"
}

// ReadManifest loads a manifest written by a builder.
func ReadManifest(fsys fsutil.FileSystem, path string) (*Manifest, error) {
	var m Manifest
	if err := ReadJSON(fsys, path, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func newManifest(kind string, opts BuildOptions, res Result, now time.Time) Manifest {
	return Manifest{
		RunID:        uuid.NewString(),
		Kind:         kind,
		Version:      version.Version,
		GitSHA:       version.GitSHA,
		CreatedAt:    now.UTC(),
		Root:         opts.Root,
		Split:        opts.Split,
		Output:       filepath.Base(res.OutputPath),
		Sequences:    res.Sequences,
		Views:        res.Views,
		SkippedViews: res.SkippedViews,
		Entries:      res.Entries,
		Fallbacks:    res.Fallbacks,
		ElapsedMS:    res.Elapsed.Milliseconds(),
		Config:       opts.Params,
	}
}
