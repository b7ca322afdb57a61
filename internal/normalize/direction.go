// Package normalize canonicalises directional answers into the vocabulary
// the grader compares against verbatim: single words "front", "back",
// "left", "right", and combined answers in the fixed order
// "<front|back> and <left|right>".
//
// Unrecognised text is passed through trimmed and lower-cased rather than
// rejected. Canonicalize reports when that happens so callers can flag it.
package normalize

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnrecognizedDirection is returned by Strict for text that only the
// fallback path would accept.
var ErrUnrecognizedDirection = errors.New("unrecognized direction")

var canonical = map[string]string{
	"front":       "front",
	"in front":    "front",
	"in front of": "front",

	"behind":  "back",
	"in back": "back",
	"back":    "back",

	"left":  "left",
	"right": "right",
}

// Result is a normalised answer. Fallback is set when the input was not
// recognised and Text is just the cleaned-up input.
type Result struct {
	Text     string
	Fallback bool
}

// Canonicalize normalises a directional phrase.
func Canonicalize(answer string) Result {
	answer = strings.ToLower(strings.TrimSpace(answer))

	if c, ok := canonical[answer]; ok {
		return Result{Text: c}
	}

	// Substring semantics are deliberate: previously generated datasets were
	// produced this way and are compared byte for byte.
	var vertical, horizontal string
	for _, part := range strings.Split(strings.ReplaceAll(answer, "of", ""), "and") {
		part = strings.TrimSpace(part)
		if c, ok := canonical[part]; ok {
			part = c
		}
		switch part {
		case "front", "back":
			vertical = part
		case "left", "right":
			horizontal = part
		}
	}

	if vertical != "" && horizontal != "" {
		return Result{Text: vertical + " and " + horizontal}
	}
	return Result{Text: answer, Fallback: true}
}

// Direction returns the normalised text, failing open on unrecognised input.
func Direction(answer string) string {
	return Canonicalize(answer).Text
}

// Strict is Direction without the fail-open path.
func Strict(answer string) (string, error) {
	r := Canonicalize(answer)
	if r.Fallback {
		return "", fmt.Errorf("%w: %q", ErrUnrecognizedDirection, r.Text)
	}
	return r.Text, nil
}
