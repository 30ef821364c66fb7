package domain

import "time"

// Category is a product grouping vendors can reference by name.
// Categories referenced by free text during product creation are
// created on first use (find-or-create), so Name is the lookup key.
type Category struct {
	ID          string
	Name        string
	Slug        string
	Description string
	Active      bool
	SortOrder   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewCategory creates an active category with a slug derived from its name.
func NewCategory(id, name string) Category {
	now := time.Now().UTC()
	return Category{
		ID:        id,
		Name:      name,
		Slug:      Slugify(name),
		Active:    true,
		SortOrder: 0,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
