package models

import "fmt"

// InsufficientDataError reports a series shorter than the consumer's minimum.
// Surfaced to the caller, never retried silently.
type InsufficientDataError struct {
	Symbol string
	Need   int
	Got    int
	What   string // "price history", "feature rows"
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient %s for %s: need %d, got %d", e.What, e.Symbol, e.Need, e.Got)
}

// UnknownMethodError reports an unrecognized ensemble method name.
// Configuration-class: rejected at the parse boundary, never a silent fallback.
type UnknownMethodError struct {
	Method string
}

func (e *UnknownMethodError) Error() string {
	return fmt.Sprintf("unknown ensemble method: %q", e.Method)
}

// ModelUnavailableError reports that no classifier variant exists for a symbol.
// Surfaced, never substituted with a default prediction.
type ModelUnavailableError struct {
	Symbol string
}

func (e *ModelUnavailableError) Error() string {
	return fmt.Sprintf("no trained model found for %s", e.Symbol)
}

// InvalidTimeframeError reports a timeframe outside the supported enum.
type InvalidTimeframeError struct {
	Timeframe string
}

func (e *InvalidTimeframeError) Error() string {
	return fmt.Sprintf("invalid timeframe: %q (must be one of 7d, 14d, 30d)", e.Timeframe)
}

// UnsupportedSymbolError reports a symbol outside the prediction allowlist.
type UnsupportedSymbolError struct {
	Symbol string
}

func (e *UnsupportedSymbolError) Error() string {
	return fmt.Sprintf("symbol %s not supported", e.Symbol)
}
