package importer

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/jogodabiblia/biblia/core/errors"
	"github.com/jogodabiblia/biblia/internal/store"
)

// osisBooks maps OSIS book codes to the canonical abbrevs used in the
// book table.
var osisBooks = map[string]string{
	"Gen": "Gn", "Exod": "Ex", "Lev": "Lv", "Num": "Nm", "Deut": "Dt",
	"Josh": "Js", "Judg": "Jz", "Ruth": "Rt", "1Sam": "1Sm", "2Sam": "2Sm",
	"1Kgs": "1Rs", "2Kgs": "2Rs", "1Chr": "1Cr", "2Chr": "2Cr", "Ezra": "Ed",
	"Neh": "Ne", "Esth": "Et", "Job": "Jó", "Ps": "Sl", "Prov": "Pv",
	"Eccl": "Ec", "Song": "Ct", "Isa": "Is", "Jer": "Jr", "Lam": "Lm",
	"Ezek": "Ez", "Dan": "Dn", "Hos": "Os", "Joel": "Jl", "Amos": "Am",
	"Obad": "Ob", "Jonah": "Jn", "Mic": "Mq", "Nah": "Na", "Hab": "Hc",
	"Zeph": "Sf", "Hag": "Ag", "Zech": "Zc", "Mal": "Ml",
	"Matt": "Mt", "Mark": "Mc", "Luke": "Lc", "John": "Jo", "Acts": "At",
	"Rom": "Rm", "1Cor": "1Co", "2Cor": "2Co", "Gal": "Gl", "Eph": "Ef",
	"Phil": "Fp", "Col": "Cl", "1Thess": "1Ts", "2Thess": "2Ts",
	"1Tim": "1Tm", "2Tim": "2Tm", "Titus": "Tt", "Phlm": "Fm", "Heb": "Hb",
	"Jas": "Tg", "1Pet": "1Pe", "2Pet": "2Pe", "1John": "1Jo",
	"2John": "2Jo", "3John": "3Jo", "Jude": "Jd", "Rev": "Ap",
}

// ImportOSIS imports a Bible translation from an OSIS XML file. Verse
// elements carrying an osisID like "John.3.16" are collected per book;
// milestone verse markers without text content are skipped. Files
// ending in .xz are decompressed transparently.
func (im *Importer) ImportOSIS(ctx context.Context, path, versionName, versionAbbrev string, progress ProgressFunc) (Result, error) {
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

	doc, err := xmlquery.Parse(bytes.NewReader(raw))
	if err != nil {
		return Result{}, errors.NewParse("osis", path, fmt.Sprintf("parsing XML: %v", err))
	}

	// Verses grouped by canonical abbrev, in document order.
	type chapterVerses map[int][]store.Verse
	byBook := make(map[string]chapterVerses)
	var bookOrder []string

	for _, node := range xmlquery.Find(doc, `//verse[@osisID]`) {
		osisID := node.SelectAttr("osisID")
		abbrev, chapter, number, err := splitOSISID(osisID)
		if err != nil {
			return Result{}, errors.NewParse("osis", path, err.Error())
		}
		text := strings.TrimSpace(node.InnerText())
		if text == "" {
			continue
		}
		if _, ok := byBook[abbrev]; !ok {
			byBook[abbrev] = make(chapterVerses)
			bookOrder = append(bookOrder, abbrev)
		}
		byBook[abbrev][chapter] = append(byBook[abbrev][chapter],
			store.Verse{Chapter: chapter, Number: number, Text: text})
	}
	if len(bookOrder) == 0 {
		return Result{}, errors.NewParse("osis", path, "no verse elements with osisID")
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
	for _, abbrev := range bookOrder {
		book, err := lookupBook(index, abbrev, abbrev)
		if err != nil {
			return res, err
		}
		chapters := byBook[abbrev]

		var verses []store.Verse
		for chapter := 1; len(chapters) > 0; chapter++ {
			cv, ok := chapters[chapter]
			if !ok {
				break
			}
			verses = append(verses, cv...)
			if err := im.store.PutChapterCount(ctx, book.ID, chapter, len(cv)); err != nil {
				return res, fmt.Errorf("book %s chapter %d: %w", abbrev, chapter, err)
			}
			delete(chapters, chapter)
		}
		if len(chapters) > 0 {
			return res, errors.NewParse("osis", path,
				fmt.Sprintf("book %s has non-contiguous chapters", abbrev))
		}
		if err := im.store.InsertVerses(ctx, versionID, book.ID, verses); err != nil {
			return res, fmt.Errorf("book %s: %w", abbrev, err)
		}

		res.Books++
		res.Verses += len(verses)
		if progress != nil {
			progress(res.Books, len(bookOrder))
		}
	}
	return res, nil
}

// splitOSISID parses "John.3.16" into the canonical abbrev, chapter
// and verse number.
func splitOSISID(id string) (abbrev string, chapter, number int, err error) {
	parts := strings.Split(id, ".")
	if len(parts) != 3 {
		return "", 0, 0, fmt.Errorf("malformed osisID %q", id)
	}
	abbrev, ok := osisBooks[parts[0]]
	if !ok {
		return "", 0, 0, fmt.Errorf("unknown OSIS book %q in %q", parts[0], id)
	}
	chapter, err = strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, 0, fmt.Errorf("bad chapter in osisID %q", id)
	}
	number, err = strconv.Atoi(parts[2])
	if err != nil {
		return "", 0, 0, fmt.Errorf("bad verse in osisID %q", id)
	}
	return abbrev, chapter, number, nil
}
