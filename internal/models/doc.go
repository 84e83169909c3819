// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package models defines the records shared across Cinematch.

  - Movie: catalog entry with list-valued metadata (genres, cast, tags)
  - Rating: explicit (user, movie, value, timestamp) rating
  - StringList: list type that decodes from JSON arrays or comma-separated strings

Validation tags (go-playground/validator) on Movie and Rating describe the
required columns. They are enforced by the recommend engine at fit time and by
the HTTP layer on ingest.
*/
package models
