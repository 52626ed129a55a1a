package reference

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Reference is a single fully-resolved (book, chapter, verse) triple,
// the smallest unit the parser produces. Version is attached by callers
// after parsing, before text lookup.
type Reference struct {
	Book    string `json:"book_abbrev"`
	Chapter int    `json:"chapter"`
	Verse   int    `json:"verse"`
	Version string `json:"version_abbrev,omitempty"`
}

// String returns the display form, e.g. "Jo 3:16 ARA".
func (r Reference) String() string {
	if r.Version != "" {
		return fmt.Sprintf("%s %d:%d %s", r.Book, r.Chapter, r.Verse, r.Version)
	}
	return fmt.Sprintf("%s %d:%d", r.Book, r.Chapter, r.Verse)
}

// refSegment is one ";"-delimited chunk of a reference string: a book
// name, a chapter, and a comma-separated verse list.
type refSegment struct {
	Book    string      `@Book`
	Chapter int         `@Number ":"`
	Verses  []verseItem `@@ ( "," @@ )*`
}

// verseItem is one comma-separated token of the verse list: a single
// verse, an inclusive range ("16-18"), or a chapter-crossing shorthand
// ("4:2" inside a segment for another chapter of the same book).
//
// Bounds are captured as strings so that non-numeric tokens surface as
// InvalidVerseError/InvalidRangeError rather than a generic parse error.
type verseItem struct {
	Value string     `@(Number | Book)`
	End   *string    `( "-" @(Number | Book)`
	Sub   *verseItem `| ":" @@ )?`
}

func (it *verseItem) String() string {
	var sb strings.Builder
	sb.WriteString(it.Value)
	if it.End != nil {
		sb.WriteString("-")
		sb.WriteString(*it.End)
	}
	if it.Sub != nil {
		sb.WriteString(":")
		sb.WriteString(it.Sub.String())
	}
	return sb.String()
}

// referenceLexer tokenizes one reference segment. Book names admit
// accented letters and an optional leading ordinal, so "João", "1Pe",
// "1 Corintios" and "Cântico dos Cânticos" all lex as a single token.
var referenceLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Book", Pattern: `(?:\d\s*)?\pL+(?:\s+\pL+)*`},
	{Name: "Number", Pattern: `\d+`},
	{Name: "Colon", Pattern: `:`},
	{Name: "Dash", Pattern: `-`},
	{Name: "Comma", Pattern: `,`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// segmentParser parses one segment. Whitespace is elided, which is what
// makes "16,17" and "16, 17" equivalent.
var segmentParser = participle.MustBuild[refSegment](
	participle.Lexer(referenceLexer),
	participle.Elide("Whitespace"),
)

// Parser converts reference strings into ordered sequences of atomic
// references. It is pure and safe for concurrent use; the only shared
// state is the resolver's name index, which is read-only once built.
type Parser struct {
	resolver *Resolver
}

// NewParser creates a parser that canonicalizes book names through the
// given resolver.
func NewParser(resolver *Resolver) *Parser {
	return &Parser{resolver: resolver}
}

// Parse converts a raw reference string into atomic references, in input
// order. Duplicates are preserved. Any malformed segment or token aborts
// the whole parse; partial results are never returned.
//
// Grammar, informally:
//
//	input    = segment *( ";" segment )
//	segment  = book chapter ":" item *( "," item )
//	item     = verse | verse "-" verse | chapter ":" item
//
// Empty segments between ";" delimiters are skipped.
func (p *Parser) Parse(ctx context.Context, input string) ([]Reference, error) {
	var refs []Reference
	for _, segment := range strings.Split(input, ";") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		parsed, err := p.parseSegment(ctx, segment)
		if err != nil {
			return nil, err
		}
		refs = append(refs, parsed...)
	}
	return refs, nil
}

func (p *Parser) parseSegment(ctx context.Context, segment string) ([]Reference, error) {
	node, err := segmentParser.ParseString("", segment)
	if err != nil {
		return nil, &InvalidFormatError{Segment: segment}
	}
	// Chapters are numbered from 1.
	if node.Chapter < 1 {
		return nil, &InvalidFormatError{Segment: segment}
	}
	book, err := p.resolver.Resolve(ctx, node.Book)
	if err != nil {
		// Callers cannot distinguish an unknown book from a malformed
		// segment; both are user input errors.
		return nil, &InvalidFormatError{Segment: node.Book, Err: err}
	}
	return p.expand(ctx, book, node.Chapter, node.Verses)
}

func (p *Parser) expand(ctx context.Context, book string, chapter int, items []verseItem) ([]Reference, error) {
	var refs []Reference
	for i := range items {
		it := &items[i]
		switch {
		case it.Sub != nil:
			// Chapter-crossing shorthand: "Jo 3:16, 4:2" re-parses
			// "Jo 4:2" as a fresh segment. Canonical abbreviations map
			// to themselves in the name index, so the recursive
			// resolution cannot fail. Recursion depth is bounded by the
			// input length since each call consumes a shrinking suffix.
			sub, err := p.parseSegment(ctx, book+" "+it.String())
			if err != nil {
				return nil, err
			}
			refs = append(refs, sub...)
		case it.End != nil:
			start, err := strconv.Atoi(it.Value)
			if err != nil {
				return nil, &InvalidRangeError{Token: it.String()}
			}
			end, err := strconv.Atoi(*it.End)
			if err != nil {
				return nil, &InvalidRangeError{Token: it.String()}
			}
			if start < 1 || end < 1 {
				return nil, &InvalidRangeError{Token: it.String()}
			}
			// Inclusive ascending expansion. A descending range such as
			// "16-14" expands to nothing, mirroring integer range
			// semantics.
			for v := start; v <= end; v++ {
				refs = append(refs, Reference{Book: book, Chapter: chapter, Verse: v})
			}
		default:
			v, err := strconv.Atoi(it.Value)
			if err != nil || v < 1 {
				return nil, &InvalidVerseError{Token: it.Value}
			}
			refs = append(refs, Reference{Book: book, Chapter: chapter, Verse: v})
		}
	}
	return refs, nil
}
