package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyDatasetConfig_Defaults(t *testing.T) {
	p := EmptyDatasetConfig().Resolve()
	assert.Equal(t, 150, p.ImageWidth)
	assert.Equal(t, 100, p.ImageHeight)
	assert.Equal(t, 600, p.SourceWidth)
	assert.Equal(t, 400, p.SourceHeight)
	assert.Equal(t, 5, p.MinBoxSize)
	assert.Equal(t, 2.0, p.CaptionMinThreshold)
	assert.Equal(t, 0.02, p.CaptionThresholdFraction)
	assert.Equal(t, 10, p.ViewCount)
	assert.Equal(t, "jpg", p.ImageExt)
	assert.False(t, p.StrictNormalization)
	assert.True(t, p.WriteManifest)
}

func TestDefaultDatasetConfig_RoundTripsDefaults(t *testing.T) {
	assert.Equal(t, EmptyDatasetConfig().Resolve(), DefaultDatasetConfig().Resolve())
	require.NoError(t, DefaultDatasetConfig().Validate())
}

func TestLoadDatasetConfig(t *testing.T) {
	dir := t.TempDir()

	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
		return p
	}

	t.Run("partial file keeps defaults", func(t *testing.T) {
		p := write("partial.json", `{"image_width": 600, "image_height": 400, "strict_normalization": true}`)
		cfg, err := LoadDatasetConfig(p)
		require.NoError(t, err)
		params := cfg.Resolve()
		assert.Equal(t, 600, params.ImageWidth)
		assert.Equal(t, 400, params.ImageHeight)
		assert.Equal(t, 5, params.MinBoxSize)
		assert.True(t, params.StrictNormalization)
	})

	t.Run("wrong extension", func(t *testing.T) {
		p := write("config.yaml", `{}`)
		_, err := LoadDatasetConfig(p)
		require.Error(t, err)
		assert.Contains(t, err.Error(), ".json extension")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadDatasetConfig(filepath.Join(dir, "absent.json"))
		assert.Error(t, err)
	})

	t.Run("too large", func(t *testing.T) {
		p := write("huge.json", `{"image_ext": "`+strings.Repeat("a", 1024*1024)+`"}`)
		_, err := LoadDatasetConfig(p)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "too large")
	})

	t.Run("bad json", func(t *testing.T) {
		p := write("bad.json", `{"image_width": "wide"}`)
		_, err := LoadDatasetConfig(p)
		assert.Error(t, err)
	})

	t.Run("invalid values", func(t *testing.T) {
		p := write("invalid.json", `{"image_width": 0}`)
		_, err := LoadDatasetConfig(p)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     DatasetConfig
		wantErr bool
	}{
		{"empty", DatasetConfig{}, false},
		{"negative min box", DatasetConfig{MinBoxSize: ptrInt(-1)}, true},
		{"zero min box", DatasetConfig{MinBoxSize: ptrInt(0)}, false},
		{"fraction of one", DatasetConfig{CaptionThresholdFraction: ptrFloat64(1)}, true},
		{"zero views", DatasetConfig{ViewCount: ptrInt(0)}, true},
		{"dotted extension", DatasetConfig{ImageExt: ptrString(".jpg")}, true},
		{"png extension", DatasetConfig{ImageExt: ptrString("png")}, false},
		{"zero source height", DatasetConfig{SourceHeight: ptrInt(0)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"KARTQA_IMAGE_WIDTH":           "600",
		"KARTQA_IMAGE_HEIGHT":          " 400 ",
		"KARTQA_CAPTION_MIN_THRESHOLD": "4.5",
		"KARTQA_WRITE_MANIFEST":        "false",
		"KARTQA_IMAGE_EXT":             ".png",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := EmptyDatasetConfig()
	require.NoError(t, cfg.ApplyEnv(lookup))
	p := cfg.Resolve()
	assert.Equal(t, 600, p.ImageWidth)
	assert.Equal(t, 400, p.ImageHeight)
	assert.Equal(t, 4.5, p.CaptionMinThreshold)
	assert.False(t, p.WriteManifest)
	assert.Equal(t, "png", p.ImageExt)
	assert.Equal(t, 10, p.ViewCount)
}

func TestApplyEnv_Errors(t *testing.T) {
	tests := map[string]string{
		"KARTQA_VIEW_COUNT":                 "ten",
		"KARTQA_CAPTION_THRESHOLD_FRACTION": "2%",
		"KARTQA_STRICT_NORMALIZATION":       "maybe",
		"KARTQA_MIN_BOX_SIZE":               "-3",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			lookup := func(k string) (string, bool) {
				if k == key {
					return value, true
				}
				return "", false
			}
			assert.Error(t, EmptyDatasetConfig().ApplyEnv(lookup))
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, LoadEnvFile(filepath.Join(dir, "missing.env")))

	p := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(p, []byte("KARTQA_TEST_ONLY_VAR=17\n"), 0o644))
	t.Setenv("KARTQA_TEST_ONLY_VAR", "")
	require.NoError(t, os.Unsetenv("KARTQA_TEST_ONLY_VAR"))

	require.NoError(t, LoadEnvFile(p))
	assert.Equal(t, "17", os.Getenv("KARTQA_TEST_ONLY_VAR"))
}

func TestParamsConversions(t *testing.T) {
	cfg := EmptyDatasetConfig()
	cfg.ImageWidth = ptrInt(600)
	cfg.StrictNormalization = ptrBool(true)
	p := cfg.Resolve()

	pc := p.PerceptionConfig()
	assert.Equal(t, 600, pc.ImageWidth)
	assert.Equal(t, 100, pc.ImageHeight)
	assert.Equal(t, 5, pc.MinBoxSize)

	qc := p.QAConfig()
	assert.Equal(t, pc, qc.Perception)
	assert.True(t, qc.StrictNormalization)
	assert.Equal(t, 0.02, qc.CaptionThresholdFraction)
}
