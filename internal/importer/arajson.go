// Package importer loads Bible text and reading lists from external
// files into the store. Supported inputs are the pt-BR JSON Bible
// format (optionally xz-compressed), OSIS XML, and reading-list JSON
// exports.
package importer

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"

	"github.com/jogodabiblia/biblia/core/errors"
	"github.com/jogodabiblia/biblia/core/reference"
	"github.com/jogodabiblia/biblia/internal/store"
)

// ProgressFunc reports import progress. done and total count books.
type ProgressFunc func(done, total int)

// Result summarizes one import run.
type Result struct {
	VersionID int64  `json:"version_id"`
	Version   string `json:"version"`
	Books     int    `json:"books"`
	Verses    int    `json:"verses"`
	Digest    string `json:"digest"`
	Skipped   bool   `json:"skipped"` // already imported (same digest)
}

// araBook is one book in the pt-BR JSON Bible format: the abbrev, the
// book name and one string slice per chapter.
type araBook struct {
	Abbrev   string     `json:"abbrev"`
	Name     string     `json:"name"`
	Chapters [][]string `json:"chapters"`
}

// Importer writes imported content into a store.
type Importer struct {
	store *store.Store
}

// New creates an importer over the given store.
func New(st *store.Store) *Importer {
	return &Importer{store: st}
}

// ImportBibleJSON imports a Bible translation from a pt-BR JSON file.
// Files ending in .xz are decompressed transparently. Re-importing a
// file whose content digest already backs an active version of the
// same abbrev is a no-op.
func (im *Importer) ImportBibleJSON(ctx context.Context, path, versionName, versionAbbrev string, progress ProgressFunc) (Result, error) {
	raw, err := readMaybeXZ(path)
	if err != nil {
		return Result{}, err
	}
	digest := contentDigest(raw)

	if existing, ok, err := im.store.VersionBySourceDigest(ctx, versionAbbrev, digest); err != nil {
		return Result{}, err
	} else if ok {
		return Result{VersionID: existing.ID, Version: versionAbbrev, Digest: digest, Skipped: true}, nil
	}

	var books []araBook
	if err := json.Unmarshal(raw, &books); err != nil {
		return Result{}, errors.NewParse("bible-json", path, fmt.Sprintf("decoding: %v", err))
	}
	if len(books) == 0 {
		return Result{}, errors.NewParse("bible-json", path, "no books in file")
	}

	index, err := im.bookIndex(ctx)
	if err != nil {
		return Result{}, err
	}

	versionID, err := im.store.CreateVersion(ctx, versionName, versionAbbrev, true, digest)
	if err != nil {
		return Result{}, fmt.Errorf("creating version %s: %w", versionAbbrev, err)
	}

	res := Result{VersionID: versionID, Version: versionAbbrev, Digest: digest}
	for i, b := range books {
		book, err := lookupBook(index, b.Abbrev, b.Name)
		if err != nil {
			return res, fmt.Errorf("book %d (%s): %w", i+1, b.Abbrev, err)
		}

		verses := make([]store.Verse, 0, 32*len(b.Chapters))
		for ci, chapter := range b.Chapters {
			for vi, text := range chapter {
				verses = append(verses, store.Verse{Chapter: ci + 1, Number: vi + 1, Text: text})
			}
		}
		if err := im.store.InsertVerses(ctx, versionID, book.ID, verses); err != nil {
			return res, fmt.Errorf("book %s: %w", book.Abbrev, err)
		}
		for ci, chapter := range b.Chapters {
			if err := im.store.PutChapterCount(ctx, book.ID, ci+1, len(chapter)); err != nil {
				return res, fmt.Errorf("book %s chapter %d: %w", book.Abbrev, ci+1, err)
			}
		}

		res.Books++
		res.Verses += len(verses)
		if progress != nil {
			progress(res.Books, len(books))
		}
	}
	return res, nil
}

// bookIndex maps normalized abbrevs and names to store books.
func (im *Importer) bookIndex(ctx context.Context) (map[string]store.Book, error) {
	books, err := im.store.ListBooks(ctx)
	if err != nil {
		return nil, err
	}
	index := make(map[string]store.Book, 2*len(books))
	for _, b := range books {
		index[reference.Normalize(b.Abbrev)] = b
		index[reference.Normalize(b.Name)] = b
	}
	return index, nil
}

func lookupBook(index map[string]store.Book, abbrev, name string) (store.Book, error) {
	if b, ok := index[reference.Normalize(abbrev)]; ok {
		return b, nil
	}
	if b, ok := index[reference.Normalize(name)]; ok {
		return b, nil
	}
	return store.Book{}, errors.NewNotFound("book", abbrev)
}

// readMaybeXZ reads a file, decompressing it when the name ends in .xz.
func readMaybeXZ(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".xz") {
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, errors.NewIO("decompress", path, err)
		}
		r = xr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	return data, nil
}

// contentDigest returns the hex BLAKE3 digest of raw file content.
func contentDigest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
