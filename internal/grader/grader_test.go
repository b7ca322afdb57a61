package grader

import (
	"bytes"
	"testing"

	"github.com/banshee-data/kartqa/internal/dataset"
	"github.com/banshee-data/kartqa/internal/fsutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapValidToTrain(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"valid/00000_00_im.jpg", "train/00000_00_im.jpg"},
		{"train/00000_00_im.jpg", "train/00000_00_im.jpg"},
		{"validation/x.jpg", "validation/x.jpg"},
		{"data/valid/x.jpg", "data/valid/x.jpg"},
		{"valid", "train"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MapValidToTrain(tt.in), tt.in)
	}
}

func TestCompareQA(t *testing.T) {
	golden := []dataset.QAEntry{
		{Question: "What track is this?", Answer: "lighthouse", ImageFile: "valid/00000_00_im.jpg"},
		{Question: "What kart is the ego car?", Answer: "tux", ImageFile: "valid/00000_00_im.jpg"},
		{Question: "Is gnu to the left or right of the ego car?", Answer: "right", ImageFile: "valid/00000_00_im.jpg"},
		{Question: "What track is this?", Answer: "lighthouse", ImageFile: "valid/00000_01_im.jpg"},
	}
	generated := []dataset.QAEntry{
		{Question: "What kart is the ego car?", Answer: "tux", ImageFile: "train/00000_00_im.jpg"},
		{Question: "What track is this?", Answer: "lighthouse", ImageFile: "train/00000_00_im.jpg"},
		{Question: "Is gnu to the left or right of the ego car?", Answer: "left", ImageFile: "train/00000_00_im.jpg"},
		// a later duplicate is ignored
		{Question: "Is gnu to the left or right of the ego car?", Answer: "right", ImageFile: "train/00000_00_im.jpg"},
	}

	r := CompareQA(golden, generated, QAOptions{RemapValidToTrain: true})
	assert.Equal(t, 4, r.Golden)
	assert.Equal(t, 4, r.Generated)
	assert.Equal(t, 2, r.Correct)
	require.Len(t, r.Wrong, 1)
	assert.Equal(t, "left", r.Wrong[0].Generated.Answer)
	assert.Contains(t, r.Wrong[0].Diff, "right")
	require.Len(t, r.Missing, 1)
	assert.Equal(t, "valid/00000_01_im.jpg", r.Missing[0].ImageFile)
	assert.InDelta(t, 0.5, r.Accuracy(), 1e-9)

	// without the remap nothing lines up
	r = CompareQA(golden, generated, QAOptions{})
	assert.Zero(t, r.Correct)
	assert.Len(t, r.Missing, 4)
}

func TestCompareQA_Empty(t *testing.T) {
	r := CompareQA(nil, nil, QAOptions{})
	assert.Zero(t, r.Accuracy())
	assert.Empty(t, r.Missing)
}

func TestValidateCaptions(t *testing.T) {
	golden := []GoldenCaption{
		{"valid/00000_00_im.jpg", []string{"gnu is the ego car.", "tux is the ego car."}, 1},
		{"valid/00000_01_im.jpg", []string{"The track is lighthouse.", "The track is hacienda."}, 1},
		{"valid/00000_02_im.jpg", []string{"There are 2 karts in the scene."}, 0},
	}
	generated := []dataset.CaptionEntry{
		{ImageFile: "valid/00000_00_im.jpg", Caption: "tux is the ego car."},
		{ImageFile: "valid/00000_00_im.jpg", Caption: "There are 2 karts in the scene."},
		{ImageFile: "valid/00000_01_im.jpg", Caption: "The track is lighthouse."},
	}

	r, err := ValidateCaptions(golden, generated)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Correct)
	require.Len(t, r.Wrong, 1)
	assert.Equal(t, "The track is hacienda.", r.Wrong[0].Expected)
	assert.Equal(t, []string{"The track is lighthouse."}, r.Wrong[0].Generated)
	require.Len(t, r.Missing, 1)
	assert.Equal(t, "valid/00000_02_im.jpg", r.Missing[0].ImageFile)
}

func TestValidateCaptions_BadIndex(t *testing.T) {
	for _, idx := range []int{-1, 2} {
		golden := []GoldenCaption{{"valid/x.jpg", []string{"a", "b"}, idx}}
		_, err := ValidateCaptions(golden, nil)
		assert.Error(t, err, "index %d", idx)
	}
}

func TestLoaders(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	require.NoError(t, dataset.WriteJSON(fsys, "data/train/balanced_qa_pairs.json", []dataset.QAEntry{
		{Question: "What track is this?", Answer: "lighthouse", ImageFile: "train/00000_00_im.jpg"},
	}))
	require.NoError(t, dataset.WriteJSON(fsys, "data/train/balanced_qa_pairs.manifest.json", map[string]int{"entries": 1}))
	require.NoError(t, dataset.WriteJSON(fsys, "data/valid/a_captions.json", []dataset.CaptionEntry{{ImageFile: "valid/a.jpg", Caption: "one"}}))
	require.NoError(t, dataset.WriteJSON(fsys, "data/valid/b_captions.json", []dataset.CaptionEntry{{ImageFile: "valid/b.jpg", Caption: "two"}}))
	require.NoError(t, dataset.WriteJSON(fsys, "data/valid/b_captions.manifest.json", map[string]int{"entries": 1}))
	require.NoError(t, fsys.WriteFile("data/valid_grader/all_mc_qas.json",
		[]byte(`[{"image_file": "valid/a.jpg", "candidates": ["zero", "one"], "correct_index": 1}]`), 0o644))

	path, err := FindGeneratedQA(fsys, "data/train")
	require.NoError(t, err)
	assert.Equal(t, "data/train/balanced_qa_pairs.json", path)

	qa, err := LoadQAFile(fsys, path)
	require.NoError(t, err)
	assert.Len(t, qa, 1)

	captions, err := LoadCaptionDir(fsys, "data/valid")
	require.NoError(t, err)
	assert.Equal(t, []dataset.CaptionEntry{{ImageFile: "valid/a.jpg", Caption: "one"}, {ImageFile: "valid/b.jpg", Caption: "two"}}, captions)

	golden, err := LoadGoldenCaptions(fsys, "data/valid_grader/all_mc_qas.json")
	require.NoError(t, err)
	require.Len(t, golden, 1)
	want, err := golden[0].Correct()
	require.NoError(t, err)
	assert.Equal(t, "one", want)

	_, err = FindGeneratedQA(fsys, "data/valid")
	assert.Error(t, err)
	_, err = LoadCaptionDir(fsys, "data/missing")
	assert.Error(t, err)
}

func TestPrint(t *testing.T) {
	qa := QAReport{
		Golden: 2, Generated: 2, Correct: 1,
		Wrong: []QAMismatch{{
			Golden:    dataset.QAEntry{Question: "What track is this?", Answer: "a", ImageFile: "train/x.jpg"},
			Generated: dataset.QAEntry{Question: "What track is this?", Answer: "b", ImageFile: "train/x.jpg"},
			Diff:      "-a\n+b\n",
		}},
	}
	var buf bytes.Buffer
	qa.Print(&buf, PrintOptions{NoColor: true, Details: true})
	out := buf.String()
	assert.Contains(t, out, `Wrong answer: "b" for What track is this? (train/x.jpg)`)
	assert.Contains(t, out, "    -a\n    +b\n")
	assert.Contains(t, out, "Missing: 0  Wrong: 1  Correct: 1 of 2 (50.0%)")
	assert.NotContains(t, out, "\x1b[")

	captions := CaptionReport{Golden: 1, Missing: []GoldenCaption{{ImageFile: "valid/[a].jpg"}}}
	buf.Reset()
	captions.Print(&buf, PrintOptions{NoColor: true, Details: true})
	out = buf.String()
	assert.Contains(t, out, "Not found: valid/[a].jpg")
	assert.Contains(t, out, "Number of missing images: 1")
	assert.Contains(t, out, "Number of correct caption matches: 0 of 1 (0.0%)")
}
