package monitoring

import (
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"strings"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Fields is re-exported so callers do not import logrus directly.
type Fields = logrus.Fields

// LoggerOptions configures the CLI logger.
type LoggerOptions struct {
	Level   string    // logrus level name; empty means info
	File    string    // optional rotating log file
	NoColor bool      // disable ANSI colours on the console writer
	Console io.Writer // defaults to os.Stderr
}

// NewLogger builds the logrus logger used by the command line tools.
func NewLogger(opts LoggerOptions) (*logrus.Logger, error) {
	level := logrus.InfoLevel
	if opts.Level != "" {
		parsed, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetFormatter(&formatter.Formatter{
		NoColors:        opts.NoColor,
		TimestampFormat: "02 Jan 06 - 15:04:05",
		HideKeys:        false,
		CallerFirst:     true,
		CustomCallerFormatter: func(f *runtime.Frame) string {
			s := strings.Split(f.Function, ".")
			return fmt.Sprintf(" [%s:%d][%s()]", path.Base(f.File), f.Line, s[len(s)-1])
		},
	})

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	writers := []io.Writer{console}
	if opts.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   opts.File,
			LocalTime:  true,
			Compress:   true,
			MaxSize:    20,
			MaxAge:     14,
			MaxBackups: 3,
		})
	}
	logger.SetOutput(io.MultiWriter(writers...))

	return logger, nil
}

// Install routes Logf through logger at info level and Warnf at warn level.
func Install(logger *logrus.Logger) {
	if logger == nil {
		SetLogger(nil)
		SetWarnLogger(nil)
		return
	}
	SetLogger(logger.Infof)
	SetWarnLogger(logger.Warnf)
}
