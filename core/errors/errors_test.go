package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      *NotFoundError
		expected string
	}{
		{
			name:     "with ID",
			err:      &NotFoundError{Resource: "version", ID: "NVI"},
			expected: "version not found: NVI",
		},
		{
			name:     "without ID",
			err:      &NotFoundError{Resource: "book"},
			expected: "book not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
			if !stderrors.Is(tt.err, ErrNotFound) {
				t.Error("expected error to wrap ErrNotFound")
			}
		})
	}
}

func TestNotFoundErrorUnwrapsUnderlying(t *testing.T) {
	underlying := stderrors.New("row scan failed")
	err := &NotFoundError{Resource: "verse", ID: "Jo 3:16", Err: underlying}

	if !stderrors.Is(err, underlying) {
		t.Error("expected error to wrap the underlying error")
	}
	if stderrors.Is(err, ErrNotFound) {
		t.Error("underlying error should take precedence over ErrNotFound")
	}
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name     string
		err      *ValidationError
		expected string
	}{
		{
			name:     "with field",
			err:      &ValidationError{Field: "ref", Message: "empty reference"},
			expected: "validation failed for ref: empty reference",
		},
		{
			name:     "without field",
			err:      &ValidationError{Message: "empty reference"},
			expected: "validation failed: empty reference",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
			if !stderrors.Is(tt.err, ErrInvalidInput) {
				t.Error("expected error to wrap ErrInvalidInput")
			}
		})
	}
}

func TestIOError(t *testing.T) {
	underlying := stderrors.New("permission denied")
	tests := []struct {
		name     string
		err      *IOError
		expected string
	}{
		{
			name:     "with path",
			err:      &IOError{Operation: "open", Path: "data/ara.json.xz", Err: underlying},
			expected: "failed to open data/ara.json.xz: permission denied",
		},
		{
			name:     "without path",
			err:      &IOError{Operation: "read", Err: underlying},
			expected: "failed to read: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
			if !stderrors.Is(tt.err, underlying) {
				t.Error("expected error to wrap the underlying error")
			}
		})
	}
}

func TestParseError(t *testing.T) {
	tests := []struct {
		name     string
		err      *ParseError
		expected string
	}{
		{
			name:     "with path",
			err:      &ParseError{Format: "osis", Path: "nvi.xml", Message: "missing osisID"},
			expected: "failed to parse osis at nvi.xml: missing osisID",
		},
		{
			name:     "without path",
			err:      &ParseError{Format: "bible-json", Message: "unexpected EOF"},
			expected: "failed to parse bible-json: unexpected EOF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
			if !stderrors.Is(tt.err, ErrInvalidInput) {
				t.Error("expected error to wrap ErrInvalidInput")
			}
		})
	}
}

func TestConstructors(t *testing.T) {
	t.Run("NewNotFound", func(t *testing.T) {
		err := NewNotFound("version", "ACF")
		if err.Resource != "version" || err.ID != "ACF" {
			t.Errorf("unexpected fields: %+v", err)
		}
		if !IsNotFound(err) {
			t.Error("expected IsNotFound to report true")
		}
	})

	t.Run("NewValidation", func(t *testing.T) {
		err := NewValidation("page", "must be positive")
		if err.Field != "page" || err.Message != "must be positive" {
			t.Errorf("unexpected fields: %+v", err)
		}
		if !IsInvalidInput(err) {
			t.Error("expected IsInvalidInput to report true")
		}
	})

	t.Run("NewIO", func(t *testing.T) {
		underlying := stderrors.New("no such file")
		err := NewIO("open", "listas.json", underlying)
		if err.Operation != "open" || err.Path != "listas.json" {
			t.Errorf("unexpected fields: %+v", err)
		}
		if !stderrors.Is(err, underlying) {
			t.Error("expected error to wrap the underlying error")
		}
	})

	t.Run("NewParse", func(t *testing.T) {
		err := NewParse("reading-lists", "listas.json", "entry 3 has no title")
		if err.Format != "reading-lists" || err.Path != "listas.json" {
			t.Errorf("unexpected fields: %+v", err)
		}
		if !IsInvalidInput(err) {
			t.Error("expected IsInvalidInput to report true")
		}
	})
}

func TestSentinelHelpers(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		notFound     bool
		invalidInput bool
	}{
		{
			name:         "wrapped not found",
			err:          fmt.Errorf("loading canon: %w", NewNotFound("book", "Xyz")),
			notFound:     true,
			invalidInput: false,
		},
		{
			name:         "wrapped validation",
			err:          fmt.Errorf("query: %w", NewValidation("q", "missing parameter")),
			notFound:     false,
			invalidInput: true,
		},
		{
			name:         "bare sentinel",
			err:          ErrNotFound,
			notFound:     true,
			invalidInput: false,
		},
		{
			name:         "unrelated error",
			err:          stderrors.New("boom"),
			notFound:     false,
			invalidInput: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFound(tt.err); got != tt.notFound {
				t.Errorf("IsNotFound() = %v, want %v", got, tt.notFound)
			}
			if got := IsInvalidInput(tt.err); got != tt.invalidInput {
				t.Errorf("IsInvalidInput() = %v, want %v", got, tt.invalidInput)
			}
		})
	}
}

func TestIsAndAs(t *testing.T) {
	wrapped := fmt.Errorf("import failed: %w", NewNotFound("version", "NTLH"))

	if !Is(wrapped, ErrNotFound) {
		t.Error("Is() should match ErrNotFound through the chain")
	}

	var nf *NotFoundError
	if !As(wrapped, &nf) {
		t.Fatal("As() should find the NotFoundError in the chain")
	}
	if nf.Resource != "version" || nf.ID != "NTLH" {
		t.Errorf("unexpected fields after As(): %+v", nf)
	}

	var ve *ValidationError
	if As(wrapped, &ve) {
		t.Error("As() should not match a ValidationError")
	}
}
