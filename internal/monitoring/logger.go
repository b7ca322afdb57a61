// Package monitoring holds the diagnostic logging seams shared by the
// derivation, dataset and grading packages.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// Warnf reports conditions the user should act on: normalizer fallbacks,
// oversize submissions, missing frame images. It defaults to Logf's target
// with a "warning:" prefix until SetWarnLogger installs a levelled logger.
var Warnf func(format string, v ...interface{}) = func(format string, v ...interface{}) {
	log.Printf("warning: "+format, v...)
}

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// SetWarnLogger replaces the warning logger. Passing nil mutes warnings.
func SetWarnLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Warnf = func(string, ...interface{}) {}
		return
	}
	Warnf = f
}

// Mute silences both seams and returns a func restoring them, for tests.
func Mute() (restore func()) {
	logf, warnf := Logf, Warnf
	SetLogger(nil)
	SetWarnLogger(nil)
	return func() {
		Logf, Warnf = logf, warnf
	}
}
