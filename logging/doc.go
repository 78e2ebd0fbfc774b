// Package logging provides the process-wide zerolog logger.
//
// Initialize once at startup:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
// then log with structured fields, or derive a component logger:
//
//	logging.Info().Int("movies", n).Msg("catalog loaded")
//	log := logging.Component("builder")
//
// Always terminate event chains with Msg or Send; an unterminated chain is
// never written.
package logging
