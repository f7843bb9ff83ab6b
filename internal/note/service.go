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

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxTitleLen bounds note titles and category names.
const MaxTitleLen = 200

// Service implements the note, category, and quick-note operations on
// top of a Store. All operations are scoped to the calling user.
type Service struct {
	store Store
}

// NewService creates a note service.
func NewService(store Store) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	return &Service{store: store}, nil
}

func validateTitle(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", ErrValidation, field)
	}
	if len(value) > MaxTitleLen {
		return fmt.Errorf("%w: %s exceeds %d characters", ErrValidation, field, MaxTitleLen)
	}
	return nil
}

// CreateCategory creates a category for the user.
func (s *Service) CreateCategory(ctx context.Context, userID, name, iconName string) (*Category, error) {
	if err := validateTitle("name", name); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	cat := &Category{
		ID:        uuid.NewString(),
		Name:      name,
		IconName:  iconName,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateCategory(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

// Categories lists the user's categories.
func (s *Service) Categories(ctx context.Context, userID string) ([]*Category, error) {
	return s.store.ListCategories(ctx, userID)
}

// CreateNote creates a note in one of the user's categories.
func (s *Service) CreateNote(ctx context.Context, userID, title, content, categoryID string) (*Note, error) {
	if err := validateTitle("title", title); err != nil {
		return nil, err
	}
	if categoryID == "" {
		return nil, fmt.Errorf("%w: categoryId is required", ErrValidation)
	}

	now := time.Now().UTC()
	n := &Note{
		ID:         uuid.NewString(),
		Title:      title,
		Content:    content,
		CategoryID: categoryID,
		UserID:     userID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.CreateNote(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// GetNote retrieves one of the user's notes.
func (s *Service) GetNote(ctx context.Context, userID, id string) (*Note, error) {
	return s.store.GetNote(ctx, userID, id)
}

// UpdateNote rewrites a note's title, content, and category.
func (s *Service) UpdateNote(ctx context.Context, userID, id, title, content, categoryID string) (*Note, error) {
	if err := validateTitle("title", title); err != nil {
		return nil, err
	}

	n, err := s.store.GetNote(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	n.Title = title
	n.Content = content
	if categoryID != "" {
		n.CategoryID = categoryID
	}
	n.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateNote(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// DeleteNote removes one of the user's notes.
func (s *Service) DeleteNote(ctx context.Context, userID, id string) error {
	return s.store.DeleteNote(ctx, userID, id)
}

// Tree returns the user's categories with their notes nested,
// categories and notes both ordered by name.
func (s *Service) Tree(ctx context.Context, userID string) ([]TreeCategory, error) {
	cats, err := s.store.ListCategories(ctx, userID)
	if err != nil {
		return nil, err
	}
	notes, err := s.store.ListNotes(ctx, userID)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string][]TreeNote, len(cats))
	for _, n := range notes {
		byCategory[n.CategoryID] = append(byCategory[n.CategoryID], TreeNote{
			ID:        n.ID,
			Title:     n.Title,
			UpdatedAt: n.UpdatedAt,
		})
	}

	tree := make([]TreeCategory, 0, len(cats))
	for _, cat := range cats {
		children := byCategory[cat.ID]
		sort.Slice(children, func(i, j int) bool { return children[i].Title < children[j].Title })
		if children == nil {
			children = []TreeNote{}
		}
		tree = append(tree, TreeCategory{Category: *cat, Notes: children})
	}
	return tree, nil
}

// QuickNote returns the user's quick note.
func (s *Service) QuickNote(ctx context.Context, userID string) (*QuickNote, error) {
	return s.store.GetQuickNote(ctx, userID)
}

// SetQuickNote replaces the user's quick note content.
func (s *Service) SetQuickNote(ctx context.Context, userID, content string) error {
	return s.store.SetQuickNote(ctx, userID, content)
}

// PromoteQuickNote turns the quick note into a real note under the
// given category and clears the scratch pad.
func (s *Service) PromoteQuickNote(ctx context.Context, userID, title, categoryID string) (*Note, error) {
	qn, err := s.store.GetQuickNote(ctx, userID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(qn.Content) == "" {
		return nil, fmt.Errorf("%w: quick note is empty", ErrValidation)
	}

	n, err := s.CreateNote(ctx, userID, title, qn.Content, categoryID)
	if err != nil {
		return nil, err
	}

	// The note exists by now; clearing the scratch pad is the best
	// effort half of the promotion.
	if err := s.store.SetQuickNote(ctx, userID, ""); err != nil {
		return nil, err
	}
	return n, nil
}
