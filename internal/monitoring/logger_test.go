package monitoring

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(format string, v ...interface{}) {
		called = true
	})
	Logf("test message")
	if !called {
		t.Error("Custom logger was not called")
	}

	// nil installs a no-op
	called = false
	SetLogger(nil)
	Logf("test message")
	if called {
		t.Error("No-op logger should not have triggered callback")
	}
}

func TestLogf_Default(t *testing.T) {
	if Logf == nil {
		t.Error("Logf should not be nil by default")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(LoggerOptions{Level: "debug", NoColor: true, Console: &buf})
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	logger.WithFields(Fields{"split": "train"}).Info("built dataset")
	out := buf.String()
	assert.Contains(t, out, "built dataset")
	assert.Contains(t, out, "split:train")
}

func TestNewLogger_DefaultsAndErrors(t *testing.T) {
	logger, err := NewLogger(LoggerOptions{Console: &bytes.Buffer{}})
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())

	_, err = NewLogger(LoggerOptions{Level: "loud"})
	assert.Error(t, err)
}

func TestNewLogger_File(t *testing.T) {
	file := filepath.Join(t.TempDir(), "kartqa.log")
	logger, err := NewLogger(LoggerOptions{File: file, NoColor: true, Console: &bytes.Buffer{}})
	require.NoError(t, err)
	logger.Info("to file")
	assert.FileExists(t, file)
}

func TestInstall(t *testing.T) {
	defer Mute()()

	var buf bytes.Buffer
	logger, err := NewLogger(LoggerOptions{NoColor: true, Console: &buf})
	require.NoError(t, err)

	Install(logger)
	Logf("wrote %d entries", 14)
	assert.Contains(t, buf.String(), "[INFO]")
	assert.Contains(t, buf.String(), "wrote 14 entries")

	buf.Reset()
	Warnf("normalizer fallback for %q", "sideways")
	assert.Contains(t, buf.String(), "[WARN]")
	assert.Contains(t, buf.String(), `normalizer fallback for "sideways"`)

	buf.Reset()
	Install(nil)
	Logf("muted")
	Warnf("muted")
	assert.Empty(t, buf.String())
}

func TestSetWarnLogger(t *testing.T) {
	defer Mute()()

	var got []string
	SetWarnLogger(func(format string, v ...interface{}) {
		got = append(got, format)
	})
	Warnf("oversize %s", "x.zip")
	assert.Equal(t, []string{"oversize %s"}, got)

	SetWarnLogger(nil)
	Warnf("dropped")
	assert.Len(t, got, 1)
}

func TestMute(t *testing.T) {
	defer Mute()()

	var calls int
	SetLogger(func(string, ...interface{}) { calls++ })
	SetWarnLogger(func(string, ...interface{}) { calls++ })

	restore := Mute()
	Logf("a")
	Warnf("b")
	assert.Zero(t, calls)

	restore()
	Logf("a")
	Warnf("b")
	assert.Equal(t, 2, calls)
}
