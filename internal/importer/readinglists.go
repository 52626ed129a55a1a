package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jogodabiblia/biblia/core/errors"
)

// readingListEntry matches the exported reading-list JSON format.
type readingListEntry struct {
	Title   string `json:"titulo"`
	Content string `json:"conteudo"`
}

// ReadingListResult summarizes a reading-list import run.
type ReadingListResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"` // entries with an empty title
}

// ImportReadingLists loads reading lists from a JSON export. Entries
// with an empty title are skipped. Files ending in .xz are
// decompressed transparently.
func (im *Importer) ImportReadingLists(ctx context.Context, path string) (ReadingListResult, error) {
	raw, err := readMaybeXZ(path)
	if err != nil {
		return ReadingListResult{}, err
	}

	var entries []readingListEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return ReadingListResult{}, errors.NewParse("reading-lists", path, fmt.Sprintf("decoding: %v", err))
	}

	var res ReadingListResult
	for _, e := range entries {
		title := strings.TrimSpace(e.Title)
		if title == "" {
			res.Skipped++
			continue
		}
		if _, err := im.store.InsertReadingList(ctx, title, e.Content); err != nil {
			return res, fmt.Errorf("inserting reading list %q: %w", title, err)
		}
		res.Imported++
	}
	return res, nil
}
