package search

import (
	"context"
	"fmt"

	"github.com/jogodabiblia/biblia/internal/store"
)

const defaultBatchSize = 64

// ProgressFunc is called as indexing advances. done is the number of
// verses embedded and upserted so far, total the number to process.
type ProgressFunc func(done, total int)

// Indexer walks the verses of a version and feeds them into the
// vector collection.
type Indexer struct {
	client    *Client
	store     *store.Store
	batchSize int
}

// NewIndexer creates an indexer over the given store and client.
func NewIndexer(client *Client, st *store.Store) *Indexer {
	return &Indexer{
		client:    client,
		store:     st,
		batchSize: defaultBatchSize,
	}
}

// IndexVersion embeds every verse of a version and upserts it into
// the collection. Returns the number of verses indexed. progress may
// be nil.
func (ix *Indexer) IndexVersion(ctx context.Context, versionAbbrev string, progress ProgressFunc) (int, error) {
	total, err := ix.store.CountVerses(ctx, versionAbbrev)
	if err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, fmt.Errorf("version %s has no verses to index", versionAbbrev)
	}
	if err := ix.client.EnsureCollection(ctx); err != nil {
		return 0, err
	}

	done := 0
	batch := make([]Point, 0, ix.batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := ix.client.UpsertPoints(ctx, batch); err != nil {
			return err
		}
		done += len(batch)
		batch = batch[:0]
		if progress != nil {
			progress(done, total)
		}
		return nil
	}

	err = ix.store.ForEachVerse(ctx, versionAbbrev, func(doc store.VerseDoc) error {
		vector, err := ix.client.Embed(ctx, doc.Text)
		if err != nil {
			return fmt.Errorf("verse %s %d:%d: %w", doc.BookAbbrev, doc.Chapter, doc.Number, err)
		}
		batch = append(batch, Point{
			ID:     doc.ID,
			Vector: vector,
			Payload: map[string]any{
				"book":    doc.BookAbbrev,
				"chapter": doc.Chapter,
				"verse":   doc.Number,
				"text":    doc.Text,
				"version": versionAbbrev,
			},
		})
		if len(batch) >= ix.batchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return done, err
	}
	if err := flush(); err != nil {
		return done, err
	}
	return done, nil
}
