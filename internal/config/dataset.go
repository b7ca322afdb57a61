// Package config loads the dataset derivation parameters shared by the
// kartqa commands: target resolution, box filter, caption thresholds and
// builder options.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/banshee-data/kartqa/internal/perception"
	"github.com/banshee-data/kartqa/internal/qa"
	"github.com/banshee-data/kartqa/internal/scene"
	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment override, e.g. KARTQA_IMAGE_WIDTH.
const EnvPrefix = "KARTQA_"

// DatasetConfig is the on-disk configuration. Every field is optional;
// the Get* accessors supply defaults for omitted fields so partial files are
// safe.
type DatasetConfig struct {
	// Derivation
	ImageWidth   *int `json:"image_width,omitempty"`
	ImageHeight  *int `json:"image_height,omitempty"`
	SourceWidth  *int `json:"source_width,omitempty"`
	SourceHeight *int `json:"source_height,omitempty"`
	MinBoxSize   *int `json:"min_box_size,omitempty"`

	// Captions
	CaptionMinThreshold      *float64 `json:"caption_min_threshold,omitempty"`
	CaptionThresholdFraction *float64 `json:"caption_threshold_fraction,omitempty"`

	// Builders
	ViewCount           *int    `json:"view_count,omitempty"`
	ImageExt            *string `json:"image_ext,omitempty"`
	StrictNormalization *bool   `json:"strict_normalization,omitempty"`
	WriteManifest       *bool   `json:"write_manifest,omitempty"`
}

// Params is a fully resolved configuration.
type Params struct {
	ImageWidth               int     `json:"image_width" validate:"gt=0"`
	ImageHeight              int     `json:"image_height" validate:"gt=0"`
	SourceWidth              int     `json:"source_width" validate:"gt=0"`
	SourceHeight             int     `json:"source_height" validate:"gt=0"`
	MinBoxSize               int     `json:"min_box_size" validate:"gte=0"`
	CaptionMinThreshold      float64 `json:"caption_min_threshold" validate:"gte=0"`
	CaptionThresholdFraction float64 `json:"caption_threshold_fraction" validate:"gte=0,lt=1"`
	ViewCount                int     `json:"view_count" validate:"gt=0,lte=100"`
	ImageExt                 string  `json:"image_ext" validate:"required,alphanum"`
	StrictNormalization      bool    `json:"strict_normalization"`
	WriteManifest            bool    `json:"write_manifest"`
}

var validate = validator.New()

func ptrInt(v int) *int             { return &v }
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }

// EmptyDatasetConfig returns a DatasetConfig with all fields unset.
func EmptyDatasetConfig() *DatasetConfig {
	return &DatasetConfig{}
}

// DefaultDatasetConfig returns a DatasetConfig with every field set to its
// default value.
func DefaultDatasetConfig() *DatasetConfig {
	p := EmptyDatasetConfig().Resolve()
	return &DatasetConfig{
		ImageWidth:               ptrInt(p.ImageWidth),
		ImageHeight:              ptrInt(p.ImageHeight),
		SourceWidth:              ptrInt(p.SourceWidth),
		SourceHeight:             ptrInt(p.SourceHeight),
		MinBoxSize:               ptrInt(p.MinBoxSize),
		CaptionMinThreshold:      ptrFloat64(p.CaptionMinThreshold),
		CaptionThresholdFraction: ptrFloat64(p.CaptionThresholdFraction),
		ViewCount:                ptrInt(p.ViewCount),
		ImageExt:                 ptrString(p.ImageExt),
		StrictNormalization:      ptrBool(p.StrictNormalization),
		WriteManifest:            ptrBool(p.WriteManifest),
	}
}

// LoadDatasetConfig loads a DatasetConfig from a JSON file.
// The file must have a .json extension and be under 1MB.
func LoadDatasetConfig(path string) (*DatasetConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyDatasetConfig()
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadEnvFile loads KEY=VALUE pairs from a dotenv file into the process
// environment without overriding variables that are already set. A missing
// file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from KARTQA_* variables found via lookup
// (os.LookupEnv when nil).
func (c *DatasetConfig) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	ints := map[string]**int{
		"IMAGE_WIDTH":   &c.ImageWidth,
		"IMAGE_HEIGHT":  &c.ImageHeight,
		"SOURCE_WIDTH":  &c.SourceWidth,
		"SOURCE_HEIGHT": &c.SourceHeight,
		"MIN_BOX_SIZE":  &c.MinBoxSize,
		"VIEW_COUNT":    &c.ViewCount,
	}
	for key, field := range ints {
		if v, ok := lookup(EnvPrefix + key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
			}
			*field = ptrInt(n)
		}
	}

	floats := map[string]**float64{
		"CAPTION_MIN_THRESHOLD":      &c.CaptionMinThreshold,
		"CAPTION_THRESHOLD_FRACTION": &c.CaptionThresholdFraction,
	}
	for key, field := range floats {
		if v, ok := lookup(EnvPrefix + key); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
			}
			*field = ptrFloat64(f)
		}
	}

	bools := map[string]**bool{
		"STRICT_NORMALIZATION": &c.StrictNormalization,
		"WRITE_MANIFEST":       &c.WriteManifest,
	}
	for key, field := range bools {
		if v, ok := lookup(EnvPrefix + key); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
			}
			*field = ptrBool(b)
		}
	}

	if v, ok := lookup(EnvPrefix + "IMAGE_EXT"); ok {
		c.ImageExt = ptrString(strings.TrimPrefix(strings.TrimSpace(v), "."))
	}

	return c.Validate()
}

// Validate checks the resolved values.
func (c *DatasetConfig) Validate() error {
	return validate.Struct(c.Resolve())
}

// Resolve fills defaults for unset fields.
func (c *DatasetConfig) Resolve() Params {
	return Params{
		ImageWidth:               c.GetImageWidth(),
		ImageHeight:              c.GetImageHeight(),
		SourceWidth:              c.GetSourceWidth(),
		SourceHeight:             c.GetSourceHeight(),
		MinBoxSize:               c.GetMinBoxSize(),
		CaptionMinThreshold:      c.GetCaptionMinThreshold(),
		CaptionThresholdFraction: c.GetCaptionThresholdFraction(),
		ViewCount:                c.GetViewCount(),
		ImageExt:                 c.GetImageExt(),
		StrictNormalization:      c.GetStrictNormalization(),
		WriteManifest:            c.GetWriteManifest(),
	}
}

// PerceptionConfig returns the extractor settings.
func (p Params) PerceptionConfig() perception.Config {
	return perception.Config{
		ImageWidth:   p.ImageWidth,
		ImageHeight:  p.ImageHeight,
		SourceWidth:  p.SourceWidth,
		SourceHeight: p.SourceHeight,
		MinBoxSize:   p.MinBoxSize,
	}
}

// QAConfig returns the assembler settings.
func (p Params) QAConfig() qa.Config {
	return qa.Config{
		Perception:               p.PerceptionConfig(),
		CaptionMinThreshold:      p.CaptionMinThreshold,
		CaptionThresholdFraction: p.CaptionThresholdFraction,
		StrictNormalization:      p.StrictNormalization,
	}
}

// GetImageWidth returns the image_width value or the default.
func (c *DatasetConfig) GetImageWidth() int {
	if c.ImageWidth == nil {
		return perception.DefaultImageWidth
	}
	return *c.ImageWidth
}

// GetImageHeight returns the image_height value or the default.
func (c *DatasetConfig) GetImageHeight() int {
	if c.ImageHeight == nil {
		return perception.DefaultImageHeight
	}
	return *c.ImageHeight
}

// GetSourceWidth returns the source_width value or the default.
func (c *DatasetConfig) GetSourceWidth() int {
	if c.SourceWidth == nil {
		return scene.SourceWidth
	}
	return *c.SourceWidth
}

// GetSourceHeight returns the source_height value or the default.
func (c *DatasetConfig) GetSourceHeight() int {
	if c.SourceHeight == nil {
		return scene.SourceHeight
	}
	return *c.SourceHeight
}

// GetMinBoxSize returns the min_box_size value or the default.
func (c *DatasetConfig) GetMinBoxSize() int {
	if c.MinBoxSize == nil {
		return perception.DefaultMinBoxSize
	}
	return *c.MinBoxSize
}

// GetCaptionMinThreshold returns the caption_min_threshold value or the default.
func (c *DatasetConfig) GetCaptionMinThreshold() float64 {
	if c.CaptionMinThreshold == nil {
		return 2.0
	}
	return *c.CaptionMinThreshold
}

// GetCaptionThresholdFraction returns the caption_threshold_fraction value or the default.
func (c *DatasetConfig) GetCaptionThresholdFraction() float64 {
	if c.CaptionThresholdFraction == nil {
		return 0.02
	}
	return *c.CaptionThresholdFraction
}

// GetViewCount returns the view_count value or the default.
func (c *DatasetConfig) GetViewCount() int {
	if c.ViewCount == nil {
		return 10
	}
	return *c.ViewCount
}

// GetImageExt returns the image_ext value or the default.
func (c *DatasetConfig) GetImageExt() string {
	if c.ImageExt == nil || *c.ImageExt == "" {
		return "jpg"
	}
	return *c.ImageExt
}

// GetStrictNormalization returns the strict_normalization value or the default.
func (c *DatasetConfig) GetStrictNormalization() bool {
	if c.StrictNormalization == nil {
		return false
	}
	return *c.StrictNormalization
}

// GetWriteManifest returns the write_manifest value or the default.
func (c *DatasetConfig) GetWriteManifest() bool {
	if c.WriteManifest == nil {
		return true
	}
	return *c.WriteManifest
}
