// Package tmlog wraps the engine's structured logger: a single
// package-level logger configured once per parse via Configure with the
// document's scope and dimensions.
package tmlog

import (
	"os"

	"github.com/rs/zerolog"
)

// Logger is the package-level structured logger. It defaults to a quiet
// (warn-level) stderr logger; Configure replaces it once the parser knows
// the shape of the document it's about to walk.
var Logger = zerolog.New(os.Stderr).Level(zerolog.WarnLevel).With().Timestamp().Logger()

// Scoped describes whatever owns a parse, for Configure's log fields —
// satisfied by parser.Parser without tmlog importing package parser.
type Scoped interface {
	LogScope() string
}

// Configure attaches the language scope and document dimensions to the
// package logger, mirroring the original's per-parse LOGGER.configure
// call.
func Configure(language Scoped, height, width int) {
	Logger = Logger.With().
		Str("scope", language.LogScope()).
		Int("height", height).
		Int("width", width).
		Logger()
}

// Degraded logs an unresolved cross-language include that was replaced by
// a no-op rule instead of failing construction.
func Degraded(scope string) {
	Logger.Debug().Str("include", scope).Msg("cross-language include unresolved, degrading to no-op")
}

// LeafFallback logs the degenerate "no match/begin/patterns" branch — a
// rule with none of the three shapes still has to produce something, so
// it emits a raw leaf, tagged with the rule's token, over the rest of its
// window.
func LeafFallback(token string) {
	Logger.Warn().Str("token", token).Msg("rule has no match, begin, or patterns; emitting a raw leaf")
}

// CannotCloseEnd logs a block rule whose begin matched but whose end
// could not be found within the scanned window.
func CannotCloseEnd(token string) {
	Logger.Debug().Str("token", token).Msg("block rule could not close its end within the window")
}

// IterationCeiling logs the top-level parse hitting its iteration safety
// net.
func IterationCeiling(scope string, limit int) {
	Logger.Error().Str("scope", scope).Int("limit", limit).Msg("parse reached its iteration ceiling")
}
