package fsutil

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestOSFileSystem_Exists(t *testing.T) {
	fs := OSFileSystem{}

	if !fs.Exists("filesystem.go") {
		t.Error("expected filesystem.go to exist")
	}

	if fs.Exists("nonexistent_file_xyz.go") {
		t.Error("expected nonexistent file to not exist")
	}
}

func TestOSFileSystem_ReadDirAndGlob(t *testing.T) {
	fs := OSFileSystem{}
	dir := t.TempDir()

	for _, name := range []string{"00001_info.json", "00000_info.json", "00000_00_im.jpg"} {
		if err := fs.WriteFile(filepath.Join(dir, name), []byte("{}"), 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}
	if err := fs.MkdirAll(filepath.Join(dir, "nested_info.json"), 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	got, err := Glob(fs, dir, "*_info.json")
	if err != nil {
		t.Fatalf("Glob failed: %v", err)
	}
	want := []string{filepath.Join(dir, "00000_info.json"), filepath.Join(dir, "00001_info.json")}
	if len(got) != len(want) {
		t.Fatalf("Glob returned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Glob[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if !IsDir(fs, dir) {
		t.Error("expected temp dir to be a directory")
	}
	if IsDir(fs, want[0]) {
		t.Error("expected info file not to be a directory")
	}
}

func TestOSFileSystem_CreateAndOpen(t *testing.T) {
	fs := OSFileSystem{}
	path := filepath.Join(t.TempDir(), "out.json")

	w, err := fs.Create(path)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := w.Write([]byte("[]")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	f, err := fs.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("expected '[]', got %q", data)
	}
}

func TestMemoryFileSystem_WriteAndRead(t *testing.T) {
	mfs := NewMemoryFileSystem()

	testData := []byte(`{"track": "lighthouse"}`)
	if err := mfs.WriteFile("/data/train/00000_info.json", testData, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := mfs.ReadFile("/data/train/00000_info.json")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != string(testData) {
		t.Errorf("expected %q, got %q", testData, data)
	}

	// Parents are implied by the write.
	for _, dir := range []string{"/data", "/data/train"} {
		if !IsDir(mfs, dir) {
			t.Errorf("expected %s to be a directory", dir)
		}
	}
}

func TestMemoryFileSystem_DataIsolation(t *testing.T) {
	mfs := NewMemoryFileSystem()

	original := []byte("original")
	if err := mfs.WriteFile("/f.txt", original, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	original[0] = 'X'

	data, _ := mfs.ReadFile("/f.txt")
	if string(data) != "original" {
		t.Errorf("stored data was mutated through caller slice: %q", data)
	}
	data[0] = 'Y'
	again, _ := mfs.ReadFile("/f.txt")
	if string(again) != "original" {
		t.Errorf("stored data was mutated through returned slice: %q", again)
	}
}

func TestMemoryFileSystem_CreateAndWrite(t *testing.T) {
	mfs := NewMemoryFileSystem()

	w, err := mfs.Create("/out/created.txt")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := w.Write([]byte("created ")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := w.Write([]byte("content")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	// Nothing is visible until Close.
	if data, _ := mfs.ReadFile("/out/created.txt"); len(data) != 0 {
		t.Errorf("expected empty file before Close, got %q", data)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := mfs.ReadFile("/out/created.txt")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "created content" {
		t.Errorf("expected 'created content', got %q", data)
	}
}

func TestMemoryFileSystem_OpenAndStat(t *testing.T) {
	mfs := NewMemoryFileSystem()
	_ = mfs.WriteFile("/a/b.json", []byte("12345"), 0600)

	f, err := mfs.Open("/a/b.json")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	info, err := f.Stat()
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Name() != "b.json" || info.Size() != 5 {
		t.Errorf("unexpected file info: name=%q size=%d", info.Name(), info.Size())
	}
	data, _ := io.ReadAll(f)
	if string(data) != "12345" {
		t.Errorf("expected '12345', got %q", data)
	}
	_ = f.Close()

	st, err := mfs.Stat("/a/b.json")
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if st.Mode() != 0600 || st.IsDir() {
		t.Errorf("unexpected mode %v / isDir %v", st.Mode(), st.IsDir())
	}

	dirInfo, err := mfs.Stat("/a")
	if err != nil {
		t.Fatalf("Stat dir failed: %v", err)
	}
	if !dirInfo.IsDir() {
		t.Error("expected /a to be a directory")
	}
}

func TestMemoryFileSystem_NotExist(t *testing.T) {
	mfs := NewMemoryFileSystem()

	if _, err := mfs.Open("/missing"); !os.IsNotExist(err) {
		t.Errorf("Open: expected not-exist error, got %v", err)
	}
	if _, err := mfs.ReadFile("/missing"); !os.IsNotExist(err) {
		t.Errorf("ReadFile: expected not-exist error, got %v", err)
	}
	if _, err := mfs.Stat("/missing"); !os.IsNotExist(err) {
		t.Errorf("Stat: expected not-exist error, got %v", err)
	}
	if _, err := mfs.ReadDir("/missing"); !os.IsNotExist(err) {
		t.Errorf("ReadDir: expected not-exist error, got %v", err)
	}
	if mfs.Exists("/missing") {
		t.Error("expected /missing not to exist")
	}
}

func TestMemoryFileSystem_ReadDir(t *testing.T) {
	mfs := NewMemoryFileSystem()
	_ = mfs.WriteFile("/split/b_info.json", []byte("{}"), 0644)
	_ = mfs.WriteFile("/split/a_info.json", []byte("{}"), 0644)
	_ = mfs.WriteFile("/split/sub/deep.json", []byte("{}"), 0644)
	_ = mfs.MkdirAll("/split/empty", 0755)

	entries, err := mfs.ReadDir("/split")
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}

	want := []struct {
		name  string
		isDir bool
	}{
		{"a_info.json", false},
		{"b_info.json", false},
		{"empty", true},
		{"sub", true},
	}
	if len(entries) != len(want) {
		t.Fatalf("got %d entries, want %d", len(entries), len(want))
	}
	for i, w := range want {
		if entries[i].Name() != w.name || entries[i].IsDir() != w.isDir {
			t.Errorf("entry %d = (%q, dir=%v), want (%q, dir=%v)", i, entries[i].Name(), entries[i].IsDir(), w.name, w.isDir)
		}
	}

	matches, err := Glob(mfs, "/split", "*_info.json")
	if err != nil {
		t.Fatalf("Glob failed: %v", err)
	}
	if len(matches) != 2 || matches[0] != "/split/a_info.json" || matches[1] != "/split/b_info.json" {
		t.Errorf("unexpected matches: %v", matches)
	}
}

func TestGlob_BadPattern(t *testing.T) {
	if _, err := Glob(NewMemoryFileSystem(), "/", "["); err == nil {
		t.Error("expected error for malformed pattern")
	}
}

func TestMemoryFileSystem_PathCleaning(t *testing.T) {
	mfs := NewMemoryFileSystem()
	_ = mfs.WriteFile("/data/./train/../train/x.json", []byte("x"), 0644)

	if !mfs.Exists("/data/train/x.json") {
		t.Error("expected cleaned path to exist")
	}
}
