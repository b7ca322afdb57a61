// Package bundle packages a homework directory into a submission zip,
// leaving out caches, notebooks, training logs and all but the minimal
// adapter files of the model checkpoints.
package bundle

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/banshee-data/kartqa/internal/fsutil"
	"github.com/banshee-data/kartqa/internal/monitoring"
	"github.com/banshee-data/kartqa/internal/security"
)

// MaxSizeBytes is the size above which a submission is flagged.
const MaxSizeBytes = 40 * 1024 * 1024

// Blacklist holds substrings that exclude any relative path containing them.
var Blacklist = []string{"__pycache__", ".pyc", ".ipynb", "checkpoint-", "tensorboard", "events.out.tfevents"}

// whitelistRule keeps only the named files anywhere below Dir.
type whitelistRule struct {
	Dir   string
	Files map[string]bool
}

// checkpointWhitelist is consulted in order; the first rule whose directory
// appears in the path decides.
var checkpointWhitelist = []whitelistRule{
	{Dir: "clip_model", Files: map[string]bool{
		"adapter_config.json":       true,
		"adapter_model.safetensors": true,
		"additional_weights.pt":     true,
	}},
	{Dir: "vlm_model", Files: map[string]bool{
		"adapter_config.json":       true,
		"adapter_model.safetensors": true,
	}},
}

// Include reports whether the slash separated path rel, relative to the
// homework directory, belongs in the submission.
func Include(rel string, isDir bool) bool {
	for _, b := range Blacklist {
		if strings.Contains(rel, b) {
			return false
		}
	}

	parts := strings.Split(rel, "/")
	for _, rule := range checkpointWhitelist {
		if !containsPart(parts, rule.Dir) {
			continue
		}
		if isDir {
			for _, p := range parts {
				if strings.HasPrefix(p, "checkpoint-") {
					return false
				}
			}
			return true
		}
		return rule.Files[parts[len(parts)-1]]
	}
	return true
}

func containsPart(parts []string, name string) bool {
	for _, p := range parts {
		if p == name {
			return true
		}
	}
	return false
}

// Options configures Create.
type Options struct {
	HomeworkDir  string
	SubmissionID string
	OutDir       string // defaults to the current directory
}

// Entry is one archived path.
type Entry struct {
	Path  string // slash separated, relative to the homework directory
	IsDir bool
}

// Result describes a written submission.
type Result struct {
	Path      string
	Entries   []Entry
	SizeBytes int64
	Oversize  bool
}

// SizeMB is the archive size in mebibytes.
func (r Result) SizeMB() float64 {
	return float64(r.SizeBytes) / 1024 / 1024
}

// Collect lists the paths under dir that Include accepts, depth first in
// name order. Excluded directories are still descended into so that their
// accepted descendants are found, as a recursive glob would.
func Collect(fsys fsutil.FileSystem, dir string) ([]Entry, error) {
	var out []Entry
	var walk func(rel string) error
	walk = func(rel string) error {
		entries, err := fsys.ReadDir(filepath.Join(dir, filepath.FromSlash(rel)))
		if err != nil {
			return err
		}
		for _, e := range entries {
			child := path.Join(rel, e.Name())
			if Include(child, e.IsDir()) {
				out = append(out, Entry{Path: child, IsDir: e.IsDir()})
			}
			if e.IsDir() {
				if err := walk(child); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := walk(""); err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}
	return out, nil
}

// Create writes <OutDir>/<SubmissionID>.zip with every included path stored
// as <homework dir name>/<relative path>.
func Create(fsys fsutil.FileSystem, opts Options) (Result, error) {
	var res Result
	if err := security.ValidateSubmissionID(opts.SubmissionID); err != nil {
		return res, err
	}
	if !fsutil.IsDir(fsys, opts.HomeworkDir) {
		return res, fmt.Errorf("homework directory %s does not exist", opts.HomeworkDir)
	}

	entries, err := Collect(fsys, opts.HomeworkDir)
	if err != nil {
		return res, err
	}
	res.Entries = entries

	outDir := opts.OutDir
	if outDir == "" {
		outDir = "."
	}
	if err := fsys.MkdirAll(outDir, 0o755); err != nil {
		return res, fmt.Errorf("failed to create %s: %w", outDir, err)
	}
	res.Path = filepath.Join(outDir, opts.SubmissionID+".zip")

	prefix := archivePrefix(opts.HomeworkDir)
	if err := writeZip(fsys, res.Path, opts.HomeworkDir, prefix, entries); err != nil {
		return res, err
	}

	info, err := fsys.Stat(res.Path)
	if err != nil {
		return res, fmt.Errorf("failed to stat %s: %w", res.Path, err)
	}
	res.SizeBytes = info.Size()
	res.Oversize = res.SizeBytes > MaxSizeBytes
	if res.Oversize {
		monitoring.Warnf("bundle: %s is %.2f MB, larger than the %d MB limit", res.Path, res.SizeMB(), MaxSizeBytes/1024/1024)
	}
	return res, nil
}

// archivePrefix is the final element of the homework directory without
// its extension.
func archivePrefix(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	base := filepath.Base(abs)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func writeZip(fsys fsutil.FileSystem, out, dir, prefix string, entries []Entry) (err error) {
	f, err := fsys.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close %s: %w", out, cerr)
		}
	}()

	zw := zip.NewWriter(f)
	for _, e := range entries {
		name := path.Join(prefix, e.Path)
		if e.IsDir {
			if _, err := zw.CreateHeader(&zip.FileHeader{Name: name + "/", Method: zip.Store}); err != nil {
				return fmt.Errorf("failed to add %s: %w", name, err)
			}
			continue
		}
		if err := addFile(fsys, zw, filepath.Join(dir, filepath.FromSlash(e.Path)), name); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish %s: %w", out, err)
	}
	return nil
}

func addFile(fsys fsutil.FileSystem, zw *zip.Writer, src, name string) error {
	in, err := fsys.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	hdr := &zip.FileHeader{Name: name, Method: zip.Deflate}
	if info, err := in.Stat(); err == nil {
		hdr.Modified = info.ModTime()
		hdr.SetMode(info.Mode() & fs.ModePerm)
	}
	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("failed to add %s: %w", name, err)
	}
	if _, err := io.Copy(w, in); err != nil {
		return fmt.Errorf("failed to compress %s: %w", src, err)
	}
	return nil
}
