package store

import (
	"context"
	"fmt"
)

// ListTags returns all tags ordered by name.
func (s *Store) ListTags(ctx context.Context) ([]Tag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, color, description FROM tag ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &t.Description); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// CreateTag adds a tag and returns its id. Color defaults to the UI's
// standard blue when empty.
func (s *Store) CreateTag(ctx context.Context, name, color, description string) (int64, error) {
	if color == "" {
		color = "#3B82F6"
	}
	return s.insertID(ctx,
		s.rebind(`INSERT INTO tag (name, color, description) VALUES (?, ?, ?)`),
		name, color, description)
}
