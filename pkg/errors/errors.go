// Package errors holds the sentinel errors shared by the logviz engine.
// Callers wrap them with context and match them with errors.Is.
package errors

import "errors"

var (
	// Input errors 🔢
	ErrInvalidBase  = errors.New("❌ invalid base")
	ErrInvalidValue = errors.New("❌ invalid value")

	// Label selection errors 🏷️
	ErrInvalidGap        = errors.New("❌ invalid minimum log gap")
	ErrInvalidTickCount  = errors.New("❌ invalid tick count")
	ErrInvalidBoundaries = errors.New("❌ invalid boundary sequence")

	// Log math errors 📈
	ErrInvalidLogBase = errors.New("❌ invalid logarithm base")
	ErrInvalidNumeral = errors.New("❌ malformed numeral")
)
