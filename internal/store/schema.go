package store

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaVersion is the current schema version. Migrate applies every
// migration above the version recorded in the database.
const schemaVersion = 1

// serialPK returns the autoincrementing primary key column definition
// for the active driver.
func (s *Store) serialPK() string {
	if s.driver == DriverPostgres {
		return "BIGSERIAL PRIMARY KEY"
	}
	return "INTEGER PRIMARY KEY AUTOINCREMENT"
}

// migrations returns the ordered DDL batches. Index i holds the
// statements that bring the schema from version i to version i+1.
func (s *Store) migrations() [][]string {
	pk := s.serialPK()
	return [][]string{
		{
			fmt.Sprintf(`CREATE TABLE testament (
				id %s,
				name TEXT NOT NULL
			)`, pk),
			fmt.Sprintf(`CREATE TABLE book (
				id %s,
				position INTEGER NOT NULL,
				name TEXT NOT NULL,
				abbrev TEXT NOT NULL UNIQUE,
				testament_id BIGINT NOT NULL REFERENCES testament(id)
			)`, pk),
			fmt.Sprintf(`CREATE TABLE version (
				id %s,
				name TEXT NOT NULL,
				abbrev TEXT NOT NULL,
				active BOOLEAN NOT NULL DEFAULT TRUE,
				source_digest TEXT NOT NULL DEFAULT ''
			)`, pk),
			fmt.Sprintf(`CREATE TABLE verse (
				id %s,
				chapter INTEGER NOT NULL,
				number INTEGER NOT NULL,
				text TEXT NOT NULL,
				book_id BIGINT NOT NULL REFERENCES book(id),
				version_id BIGINT NOT NULL REFERENCES version(id)
			)`, pk),
			`CREATE UNIQUE INDEX idx_verse_lookup
				ON verse (version_id, book_id, chapter, number)`,
			fmt.Sprintf(`CREATE TABLE book_chapter_verse_count (
				id %s,
				book_id BIGINT NOT NULL REFERENCES book(id),
				chapter INTEGER NOT NULL,
				verse_count INTEGER NOT NULL,
				UNIQUE (book_id, chapter)
			)`, pk),
			fmt.Sprintf(`CREATE TABLE reading_list (
				id %s,
				title TEXT NOT NULL,
				content TEXT NOT NULL
			)`, pk),
			`CREATE INDEX idx_reading_list_title ON reading_list (title)`,
			fmt.Sprintf(`CREATE TABLE tag (
				id %s,
				name TEXT NOT NULL,
				color TEXT NOT NULL DEFAULT '#3B82F6',
				description TEXT NOT NULL DEFAULT ''
			)`, pk),
		},
	}
}

// Migrate brings the schema up to date and seeds the canon (testaments
// and the 66 books) when the book table is empty. It is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	current, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	migrations := s.migrations()
	for v := current; v < len(migrations); v++ {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		for _, stmt := range migrations[v] {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				tx.Rollback()
				return fmt.Errorf("applying migration %d: %w", v+1, err)
			}
		}
		if current == 0 && v == 0 {
			if _, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (1)`); err != nil {
				tx.Rollback()
				return err
			}
		} else {
			if _, err := tx.ExecContext(ctx, s.rebind(`UPDATE schema_version SET version = ?`), v+1); err != nil {
				tx.Rollback()
				return err
			}
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}

	return s.seedCanon(ctx)
}

// SchemaVersion returns the version recorded in the database, 0 when the
// schema has never been created.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := s.db.QueryRowContext(ctx, `SELECT version FROM schema_version`).Scan(&v)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return v, nil
}

// seedCanon inserts the testaments and the 66-book canon when absent.
func (s *Store) seedCanon(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM book`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	testamentIDs := make(map[int]int64, 2)
	for i, name := range []string{"Antigo Testamento", "Novo Testamento"} {
		var id int64
		if s.driver == DriverPostgres {
			err = tx.QueryRowContext(ctx,
				s.rebind(`INSERT INTO testament (name) VALUES (?) RETURNING id`), name).Scan(&id)
		} else {
			var res sql.Result
			res, err = tx.ExecContext(ctx, `INSERT INTO testament (name) VALUES (?)`, name)
			if err == nil {
				id, err = res.LastInsertId()
			}
		}
		if err != nil {
			return fmt.Errorf("seeding testament %q: %w", name, err)
		}
		testamentIDs[i+1] = id
	}

	insert := s.rebind(`INSERT INTO book (position, name, abbrev, testament_id) VALUES (?, ?, ?, ?)`)
	for _, b := range canonicalBooks {
		if _, err := tx.ExecContext(ctx, insert, b.position, b.name, b.abbrev, testamentIDs[b.testament]); err != nil {
			return fmt.Errorf("seeding book %q: %w", b.abbrev, err)
		}
	}

	return tx.Commit()
}

// canonicalBooks is the seed data for the book table: the 66 canonical
// books in canonical order, with the abbreviations the ARA import and
// the reference parser use.
var canonicalBooks = []struct {
	position  int
	name      string
	abbrev    string
	testament int
}{
	{1, "Gênesis", "Gn", 1},
	{2, "Êxodo", "Ex", 1},
	{3, "Levítico", "Lv", 1},
	{4, "Números", "Nm", 1},
	{5, "Deuteronômio", "Dt", 1},
	{6, "Josué", "Js", 1},
	{7, "Juízes", "Jz", 1},
	{8, "Rute", "Rt", 1},
	{9, "1 Samuel", "1Sm", 1},
	{10, "2 Samuel", "2Sm", 1},
	{11, "1 Reis", "1Rs", 1},
	{12, "2 Reis", "2Rs", 1},
	{13, "1 Crônicas", "1Cr", 1},
	{14, "2 Crônicas", "2Cr", 1},
	{15, "Esdras", "Ed", 1},
	{16, "Neemias", "Ne", 1},
	{17, "Ester", "Et", 1},
	{18, "Jó", "Jó", 1},
	{19, "Salmos", "Sl", 1},
	{20, "Provérbios", "Pv", 1},
	{21, "Eclesiastes", "Ec", 1},
	{22, "Cântico dos Cânticos", "Ct", 1},
	{23, "Isaías", "Is", 1},
	{24, "Jeremias", "Jr", 1},
	{25, "Lamentações", "Lm", 1},
	{26, "Ezequiel", "Ez", 1},
	{27, "Daniel", "Dn", 1},
	{28, "Oseias", "Os", 1},
	{29, "Joel", "Jl", 1},
	{30, "Amós", "Am", 1},
	{31, "Obadias", "Ob", 1},
	{32, "Jonas", "Jn", 1},
	{33, "Miqueias", "Mq", 1},
	{34, "Naum", "Na", 1},
	{35, "Habacuque", "Hc", 1},
	{36, "Sofonias", "Sf", 1},
	{37, "Ageu", "Ag", 1},
	{38, "Zacarias", "Zc", 1},
	{39, "Malaquias", "Ml", 1},
	{40, "Mateus", "Mt", 2},
	{41, "Marcos", "Mc", 2},
	{42, "Lucas", "Lc", 2},
	{43, "João", "Jo", 2},
	{44, "Atos", "At", 2},
	{45, "Romanos", "Rm", 2},
	{46, "1 Coríntios", "1Co", 2},
	{47, "2 Coríntios", "2Co", 2},
	{48, "Gálatas", "Gl", 2},
	{49, "Efésios", "Ef", 2},
	{50, "Filipenses", "Fp", 2},
	{51, "Colossenses", "Cl", 2},
	{52, "1 Tessalonicenses", "1Ts", 2},
	{53, "2 Tessalonicenses", "2Ts", 2},
	{54, "1 Timóteo", "1Tm", 2},
	{55, "2 Timóteo", "2Tm", 2},
	{56, "Tito", "Tt", 2},
	{57, "Filemom", "Fm", 2},
	{58, "Hebreus", "Hb", 2},
	{59, "Tiago", "Tg", 2},
	{60, "1 Pedro", "1Pe", 2},
	{61, "2 Pedro", "2Pe", 2},
	{62, "1 João", "1Jo", 2},
	{63, "2 João", "2Jo", 2},
	{64, "3 João", "3Jo", 2},
	{65, "Judas", "Jd", 2},
	{66, "Apocalipse", "Ap", 2},
}
