package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestRefError(t *testing.T) {
	t.Run("with id", func(t *testing.T) {
		err := NewRef("Gen.1", "fewer than 3 segments")
		want := `bad reference "Gen.1": fewer than 3 segments`
		if err.Error() != want {
			t.Errorf("Error() = %q, want %q", err.Error(), want)
		}
		if !errors.Is(err, ErrMalformedRef) {
			t.Error("expected RefError to unwrap to ErrMalformedRef")
		}
	})

	t.Run("wrapped error preserved", func(t *testing.T) {
		inner := errors.New("inner")
		err := &RefError{ID: "x", Message: "msg", Err: inner}
		if !errors.Is(err, inner) {
			t.Error("expected wrapped error to be found in chain")
		}
	})
}

func TestParseError(t *testing.T) {
	err := NewParse("USFX", "/tmp/kjv.xml", "unexpected EOF")
	want := "failed to parse USFX at /tmp/kjv.xml: unexpected EOF"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("expected ParseError to unwrap to ErrInvalidInput")
	}
}

func TestIOError(t *testing.T) {
	inner := errors.New("permission denied")
	err := NewIO("open", "/data/web.osis.xml", inner)
	want := "failed to open /data/web.osis.xml: permission denied"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, inner) {
		t.Error("expected IOError to unwrap to its cause")
	}
}

func TestUnsupportedError(t *testing.T) {
	err := NewUnsupported("dialect", "no verse markers found")
	want := "unsupported dialect: no verse markers found"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, ErrUnsupported) {
		t.Error("expected UnsupportedError to unwrap to ErrUnsupported")
	}
}

func TestWrappingWithFmt(t *testing.T) {
	err := fmt.Errorf("ingest aborted: %w", NewRef("1Pet", "fewer than 3 segments"))
	var refErr *RefError
	if !errors.As(err, &refErr) {
		t.Fatal("expected to recover *RefError from wrapped chain")
	}
	if refErr.ID != "1Pet" {
		t.Errorf("ID = %q, want 1Pet", refErr.ID)
	}
}
