// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-notevault.
//
// go-notevault is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package note

import "errors"

var (
	// ErrNoteNotFound is returned when a note does not exist or belongs
	// to a different user. The two cases are indistinguishable.
	ErrNoteNotFound = errors.New("note not found")

	// ErrCategoryNotFound is returned when a category does not exist or
	// belongs to a different user.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrNoteExists is returned when a note title collides within a
	// category.
	ErrNoteExists = errors.New("note already exists")

	// ErrCategoryExists is returned when a category name collides for a
	// user.
	ErrCategoryExists = errors.New("category already exists")

	// ErrValidation is returned when request fields fail validation.
	ErrValidation = errors.New("validation failed")
)
