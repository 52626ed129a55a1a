package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jogodabiblia/biblia/core/errors"
)

// ListBooks returns the 66 canonical books in canonical order.
func (s *Store) ListBooks(ctx context.Context) ([]Book, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, position, name, abbrev, testament_id FROM book ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("listing books: %w", err)
	}
	defer rows.Close()

	var books []Book
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.Position, &b.Name, &b.Abbrev, &b.TestamentID); err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// BookByAbbrev returns the book with the given canonical abbreviation.
func (s *Store) BookByAbbrev(ctx context.Context, abbrev string) (Book, error) {
	var b Book
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT id, position, name, abbrev, testament_id FROM book WHERE abbrev = ?`),
		abbrev).Scan(&b.ID, &b.Position, &b.Name, &b.Abbrev, &b.TestamentID)
	if err == sql.ErrNoRows {
		return Book{}, errors.NewNotFound("book", abbrev)
	}
	if err != nil {
		return Book{}, fmt.Errorf("looking up book %q: %w", abbrev, err)
	}
	return b, nil
}

// ListVersions returns all versions, active first, newest first.
func (s *Store) ListVersions(ctx context.Context) ([]Version, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, abbrev, active, source_digest FROM version ORDER BY active DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing versions: %w", err)
	}
	defer rows.Close()

	var versions []Version
	for rows.Next() {
		var v Version
		if err := rows.Scan(&v.ID, &v.Name, &v.Abbrev, &v.Active, &v.SourceDigest); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// ActiveVersion returns the most recent active version with the given
// abbreviation. Imports create a fresh version row each run, so several
// rows may share one abbreviation.
func (s *Store) ActiveVersion(ctx context.Context, abbrev string) (Version, error) {
	var v Version
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT id, name, abbrev, active, source_digest FROM version
			WHERE abbrev = ? AND active ORDER BY id DESC LIMIT 1`),
		abbrev).Scan(&v.ID, &v.Name, &v.Abbrev, &v.Active, &v.SourceDigest)
	if err == sql.ErrNoRows {
		return Version{}, errors.NewNotFound("version", abbrev)
	}
	if err != nil {
		return Version{}, fmt.Errorf("looking up version %q: %w", abbrev, err)
	}
	return v, nil
}

// CreateVersion inserts a new version row and returns its id.
func (s *Store) CreateVersion(ctx context.Context, name, abbrev string, active bool, sourceDigest string) (int64, error) {
	return s.insertID(ctx,
		s.rebind(`INSERT INTO version (name, abbrev, active, source_digest) VALUES (?, ?, ?, ?)`),
		name, abbrev, active, sourceDigest)
}

// VersionBySourceDigest reports whether a version with this abbreviation
// was already imported from a source with the given content digest.
func (s *Store) VersionBySourceDigest(ctx context.Context, abbrev, digest string) (Version, bool, error) {
	var v Version
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT id, name, abbrev, active, source_digest FROM version
			WHERE abbrev = ? AND source_digest = ? ORDER BY id DESC LIMIT 1`),
		abbrev, digest).Scan(&v.ID, &v.Name, &v.Abbrev, &v.Active, &v.SourceDigest)
	if err == sql.ErrNoRows {
		return Version{}, false, nil
	}
	if err != nil {
		return Version{}, false, err
	}
	return v, true, nil
}

// GetVerseText returns the text of a single verse in a version.
// A missing version or verse yields a NotFoundError.
func (s *Store) GetVerseText(ctx context.Context, versionAbbrev, bookAbbrev string, chapter, number int) (string, error) {
	version, err := s.ActiveVersion(ctx, versionAbbrev)
	if err != nil {
		return "", err
	}

	var text string
	err = s.db.QueryRowContext(ctx,
		s.rebind(`SELECT v.text FROM verse v
			JOIN book b ON b.id = v.book_id
			WHERE v.version_id = ? AND b.abbrev = ? AND v.chapter = ? AND v.number = ?`),
		version.ID, bookAbbrev, chapter, number).Scan(&text)
	if err == sql.ErrNoRows {
		return "", errors.NewNotFound("verse",
			fmt.Sprintf("%s %d:%d %s", bookAbbrev, chapter, number, versionAbbrev))
	}
	if err != nil {
		return "", fmt.Errorf("looking up verse: %w", err)
	}
	return text, nil
}

// InsertVerses inserts a batch of verses for one (version, book) pair in
// a single transaction.
func (s *Store) InsertVerses(ctx context.Context, versionID, bookID int64, verses []Verse) error {
	if len(verses) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		s.rebind(`INSERT INTO verse (chapter, number, text, book_id, version_id) VALUES (?, ?, ?, ?, ?)`))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, v := range verses {
		if _, err := stmt.ExecContext(ctx, v.Chapter, v.Number, v.Text, bookID, versionID); err != nil {
			return fmt.Errorf("inserting verse %d:%d: %w", v.Chapter, v.Number, err)
		}
	}
	return tx.Commit()
}

// PutChapterCount records the verse count of one chapter, replacing any
// previous value.
func (s *Store) PutChapterCount(ctx context.Context, bookID int64, chapter, verseCount int) error {
	res, err := s.db.ExecContext(ctx,
		s.rebind(`UPDATE book_chapter_verse_count SET verse_count = ? WHERE book_id = ? AND chapter = ?`),
		verseCount, bookID, chapter)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}
	_, err = s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO book_chapter_verse_count (book_id, chapter, verse_count) VALUES (?, ?, ?)`),
		bookID, chapter, verseCount)
	return err
}

// ChapterCounts returns the verse counts of every chapter of a book.
func (s *Store) ChapterCounts(ctx context.Context, bookID int64) ([]ChapterCount, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT book_id, chapter, verse_count FROM book_chapter_verse_count
			WHERE book_id = ? ORDER BY chapter`), bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []ChapterCount
	for rows.Next() {
		var c ChapterCount
		if err := rows.Scan(&c.BookID, &c.Chapter, &c.VerseCount); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// VerseDoc is one verse with its addressing fields, as consumed by the
// semantic indexer.
type VerseDoc struct {
	ID         int64
	BookAbbrev string
	Chapter    int
	Number     int
	Text       string
}

// ForEachVerse streams every verse of the active version with the given
// abbreviation to fn, in canonical order. fn returning an error stops
// the iteration.
func (s *Store) ForEachVerse(ctx context.Context, versionAbbrev string, fn func(VerseDoc) error) error {
	version, err := s.ActiveVersion(ctx, versionAbbrev)
	if err != nil {
		return err
	}

	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT v.id, b.abbrev, v.chapter, v.number, v.text FROM verse v
			JOIN book b ON b.id = v.book_id
			WHERE v.version_id = ?
			ORDER BY b.position, v.chapter, v.number`), version.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var d VerseDoc
		if err := rows.Scan(&d.ID, &d.BookAbbrev, &d.Chapter, &d.Number, &d.Text); err != nil {
			return err
		}
		if err := fn(d); err != nil {
			return err
		}
	}
	return rows.Err()
}

// CountVerses returns the number of verses in the active version with
// the given abbreviation.
func (s *Store) CountVerses(ctx context.Context, versionAbbrev string) (int, error) {
	version, err := s.ActiveVersion(ctx, versionAbbrev)
	if err != nil {
		return 0, err
	}
	var n int
	err = s.db.QueryRowContext(ctx,
		s.rebind(`SELECT COUNT(*) FROM verse WHERE version_id = ?`), version.ID).Scan(&n)
	return n, err
}
