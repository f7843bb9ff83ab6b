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

import "time"

// Note is a single note belonging to a category.
type Note struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	CategoryID string    `json:"categoryId"`
	UserID     string    `json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Category groups notes. Names are unique per user.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IconName  string    `json:"iconName"`
	UserID    string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// QuickNote is the per-user scratch pad. It has no title or category
// until promoted into a real note.
type QuickNote struct {
	Content   string     `json:"content"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// TreeCategory is a category with its notes nested, as served by the
// tree view. Note contents are omitted; the client fetches them when a
// note is opened.
type TreeCategory struct {
	Category
	Notes []TreeNote `json:"notes"`
}

// TreeNote is the note summary carried in the tree view.
type TreeNote struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updatedAt"`
}
