package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ulikunitz/xz"

	"github.com/jogodabiblia/biblia/core/errors"
	"github.com/jogodabiblia/biblia/internal/store"
)

const bibleJSON = `[
  {"abbrev": "gn", "name": "Gênesis", "chapters": [
    ["No princípio criou Deus os céus e a terra.",
     "A terra era sem forma e vazia."],
    ["Assim foram acabados os céus e a terra."]
  ]},
  {"abbrev": "jo", "name": "João", "chapters": [
    ["No princípio era o Verbo."]
  ]}
]`

const osisXML = `<?xml version="1.0" encoding="UTF-8"?>
<osis xmlns="http://www.bibletechnologies.net/2003/OSIS/namespace">
  <osisText osisIDWork="ARA">
    <div type="book" osisID="Gen">
      <chapter osisID="Gen.1">
        <verse osisID="Gen.1.1">No princípio criou Deus os céus e a terra.</verse>
        <verse osisID="Gen.1.2">A terra era sem forma e vazia.</verse>
      </chapter>
    </div>
    <div type="book" osisID="John">
      <chapter osisID="John.1">
        <verse osisID="John.1.1">No princípio era o Verbo.</verse>
      </chapter>
    </div>
  </osisText>
</osis>`

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(store.Config{
		Driver: store.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	return st
}

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func writeXZFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating fixture: %v", err)
	}
	w, err := xz.NewWriter(f)
	if err != nil {
		t.Fatalf("creating xz writer: %v", err)
	}
	if _, err := w.Write([]byte(content)); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing xz writer: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("closing fixture: %v", err)
	}
	return path
}

func TestImportBibleJSON(t *testing.T) {
	st := newTestStore(t)
	im := New(st)
	ctx := context.Background()

	path := writeFixture(t, "ara.json", bibleJSON)
	var lastDone, lastTotal int
	res, err := im.ImportBibleJSON(ctx, path, "Almeida Revista e Atualizada", "ARA", func(done, total int) {
		lastDone, lastTotal = done, total
	})
	if err != nil {
		t.Fatalf("ImportBibleJSON: %v", err)
	}
	if res.Books != 2 || res.Verses != 4 {
		t.Errorf("imported %d books / %d verses, want 2 / 4", res.Books, res.Verses)
	}
	if res.Skipped {
		t.Error("first import marked skipped")
	}
	if lastDone != 2 || lastTotal != 2 {
		t.Errorf("final progress = %d/%d, want 2/2", lastDone, lastTotal)
	}

	text, err := st.GetVerseText(ctx, "ARA", "Jo", 1, 1)
	if err != nil {
		t.Fatalf("GetVerseText: %v", err)
	}
	if text != "No princípio era o Verbo." {
		t.Errorf("unexpected verse text %q", text)
	}

	book, err := st.BookByAbbrev(ctx, "Gn")
	if err != nil {
		t.Fatalf("BookByAbbrev: %v", err)
	}
	counts, err := st.ChapterCounts(ctx, book.ID)
	if err != nil {
		t.Fatalf("ChapterCounts: %v", err)
	}
	if len(counts) != 2 || counts[0].VerseCount != 2 || counts[1].VerseCount != 1 {
		t.Errorf("unexpected chapter counts: %+v", counts)
	}
}

func TestImportBibleJSONIdempotent(t *testing.T) {
	st := newTestStore(t)
	im := New(st)
	ctx := context.Background()

	path := writeFixture(t, "ara.json", bibleJSON)
	first, err := im.ImportBibleJSON(ctx, path, "ARA", "ARA", nil)
	if err != nil {
		t.Fatalf("first import: %v", err)
	}
	second, err := im.ImportBibleJSON(ctx, path, "ARA", "ARA", nil)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if !second.Skipped {
		t.Error("second import of identical content not skipped")
	}
	if second.VersionID != first.VersionID {
		t.Errorf("skipped import returned version %d, want %d", second.VersionID, first.VersionID)
	}
	versions, err := st.ListVersions(ctx)
	if err != nil {
		t.Fatalf("ListVersions: %v", err)
	}
	if len(versions) != 1 {
		t.Errorf("got %d versions after re-import, want 1", len(versions))
	}
}

func TestImportBibleJSONXZ(t *testing.T) {
	st := newTestStore(t)
	im := New(st)

	path := writeXZFixture(t, "ara.json.xz", bibleJSON)
	res, err := im.ImportBibleJSON(context.Background(), path, "ARA", "ARA", nil)
	if err != nil {
		t.Fatalf("ImportBibleJSON: %v", err)
	}
	if res.Verses != 4 {
		t.Errorf("imported %d verses, want 4", res.Verses)
	}
}

func TestImportBibleJSONUnknownBook(t *testing.T) {
	st := newTestStore(t)
	im := New(st)

	path := writeFixture(t, "bad.json", `[{"abbrev": "xx", "name": "Enoque", "chapters": [["v1"]]}]`)
	_, err := im.ImportBibleJSON(context.Background(), path, "ARA", "ARA", nil)
	if err == nil {
		t.Fatal("expected error for unknown book")
	}
	if !errors.IsNotFound(err) {
		t.Errorf("error %v is not a not-found error", err)
	}
}

func TestImportBibleJSONMalformed(t *testing.T) {
	st := newTestStore(t)
	im := New(st)

	path := writeFixture(t, "bad.json", `{"not": "a list"}`)
	_, err := im.ImportBibleJSON(context.Background(), path, "ARA", "ARA", nil)
	var perr *errors.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error %v is not a parse error", err)
	}
}

func TestImportOSIS(t *testing.T) {
	st := newTestStore(t)
	im := New(st)
	ctx := context.Background()

	path := writeFixture(t, "ara.osis.xml", osisXML)
	res, err := im.ImportOSIS(ctx, path, "Almeida Revista e Atualizada", "ARA", nil)
	if err != nil {
		t.Fatalf("ImportOSIS: %v", err)
	}
	if res.Books != 2 || res.Verses != 3 {
		t.Errorf("imported %d books / %d verses, want 2 / 3", res.Books, res.Verses)
	}

	text, err := st.GetVerseText(ctx, "ARA", "Gn", 1, 2)
	if err != nil {
		t.Fatalf("GetVerseText: %v", err)
	}
	if text != "A terra era sem forma e vazia." {
		t.Errorf("unexpected verse text %q", text)
	}
}

func TestImportReadingLists(t *testing.T) {
	st := newTestStore(t)
	im := New(st)
	ctx := context.Background()

	path := writeFixture(t, "lists.json", `[
	  {"titulo": "Plano de 30 dias", "conteudo": "Jo 1; Jo 2"},
	  {"titulo": "  ", "conteudo": "descartada"},
	  {"titulo": "Salmos favoritos", "conteudo": "Sl 23; Sl 91"}
	]`)
	res, err := im.ImportReadingLists(ctx, path)
	if err != nil {
		t.Fatalf("ImportReadingLists: %v", err)
	}
	if res.Imported != 2 || res.Skipped != 1 {
		t.Errorf("imported %d / skipped %d, want 2 / 1", res.Imported, res.Skipped)
	}

	page, err := st.SearchReadingLists(ctx, "salmos", 1, 10)
	if err != nil {
		t.Fatalf("SearchReadingLists: %v", err)
	}
	if page.Total != 1 || page.Items[0].Title != "Salmos favoritos" {
		t.Errorf("unexpected search page: %+v", page)
	}
}
