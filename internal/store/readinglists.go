package store

import (
	"context"
	"fmt"
	"strings"
)

// ReadingListPage is one page of a reading-list search.
type ReadingListPage struct {
	Items      []ReadingList `json:"items"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	Size       int           `json:"size"`
	TotalPages int           `json:"total_pages"`
}

// SearchReadingLists returns reading lists whose title contains q
// (case-insensitive), paginated. An empty q matches everything.
func (s *Store) SearchReadingLists(ctx context.Context, q string, page, size int) (ReadingListPage, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 10
	}

	where := ""
	var args []any
	if q != "" {
		where = ` WHERE LOWER(title) LIKE ?`
		args = append(args, "%"+strings.ToLower(q)+"%")
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT COUNT(*) FROM reading_list`+where), args...).Scan(&total); err != nil {
		return ReadingListPage{}, fmt.Errorf("counting reading lists: %w", err)
	}

	query := s.rebind(`SELECT id, title, content FROM reading_list` + where +
		` ORDER BY id LIMIT ? OFFSET ?`)
	rows, err := s.db.QueryContext(ctx, query, append(args, size, (page-1)*size)...)
	if err != nil {
		return ReadingListPage{}, fmt.Errorf("searching reading lists: %w", err)
	}
	defer rows.Close()

	items := []ReadingList{}
	for rows.Next() {
		var rl ReadingList
		if err := rows.Scan(&rl.ID, &rl.Title, &rl.Content); err != nil {
			return ReadingListPage{}, err
		}
		items = append(items, rl)
	}
	if err := rows.Err(); err != nil {
		return ReadingListPage{}, err
	}

	return ReadingListPage{
		Items:      items,
		Total:      total,
		Page:       page,
		Size:       size,
		TotalPages: (total + size - 1) / size,
	}, nil
}

// InsertReadingList adds one reading list and returns its id.
func (s *Store) InsertReadingList(ctx context.Context, title, content string) (int64, error) {
	return s.insertID(ctx,
		s.rebind(`INSERT INTO reading_list (title, content) VALUES (?, ?)`),
		title, content)
}

// CountReadingLists returns the total number of reading lists.
func (s *Store) CountReadingLists(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reading_list`).Scan(&n)
	return n, err
}
