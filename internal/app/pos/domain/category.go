package domain

import (
	"strings"
	"time"
)

// Category groups products on the till.
type Category struct {
	events

	id          string
	name        string
	description string
	createdAt   time.Time
}

func NewCategory(id, name, description string, now time.Time) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	c := &Category{id: id, name: name, description: description, createdAt: now}
	c.record(&CategoryCreatedEvent{CategoryID: id, Name: name, CreatedAt: now})
	return c, nil
}

func ReconstructCategory(id, name, description string, createdAt time.Time) *Category {
	return &Category{id: id, name: name, description: description, createdAt: createdAt}
}

func (c *Category) ID() string           { return c.id }
func (c *Category) Name() string         { return c.name }
func (c *Category) Description() string  { return c.description }
func (c *Category) CreatedAt() time.Time { return c.createdAt }
