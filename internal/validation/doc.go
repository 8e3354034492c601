// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

// Package validation provides struct validation using go-playground/validator v10.
//
// The package wraps a thread-safe singleton validator with the custom rules
// the discovery API needs and translates failures into the VALIDATION_ERROR
// envelope used by the HTTP layer.
//
// # Custom Rules
//
//   - slug: lowercase letters, digits, '-' and '_', 1 to 64 characters.
//     Used for cuisine and palate identifiers.
//   - price_range: one to four '$' characters.
//
// Field names in errors are taken from the json tag so clients see the same
// names they sent.
//
// # Usage
//
//	var update models.FilterUpdate
//	if verr := validation.ValidateStruct(&update); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
//
// # Thread Safety
//
// GetValidator and ValidateStruct are safe for concurrent use.
package validation
