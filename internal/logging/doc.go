// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

// Package logging provides centralized zerolog-based logging for Tastemap.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Msg("Server starting")
//
// Components take a zerolog.Logger and derive a "component" child:
//
//	logger := logging.WithComponent("listing-client")
//
// HTTP handlers log through the request context, which carries the
// request, correlation and discovery session IDs:
//
//	logging.Ctx(r.Context()).Warn().Err(err).Msg("suggestion fetch failed")
//
// The slog adapter lets libraries that want *slog.Logger (sutureslog)
// write to the same zerolog output.
//
// # Best Practices
//
// Always terminate log chains with .Msg() or .Send():
//
//	logging.Info().Str("key", "value").Msg("message")  // Correct
//	logging.Info().Str("key", "value")                 // WRONG - log not emitted
package logging
