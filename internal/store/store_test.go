package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	verrors "github.com/FocuswithJustin/versetag/core/errors"
	"github.com/FocuswithJustin/versetag/core/ref"
	"github.com/FocuswithJustin/versetag/core/verse"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(BackendSQLite, filepath.Join(t.TempDir(), "versetag.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return s
}

func testRecord(text string) verse.Record {
	r := ref.Ref{Book: "1Pet", BookName: "1 Peter", Chapter: 5, Verse: 7}
	return verse.New("KJV", r, text)
}

func inTx(t *testing.T, s *Store, fn func(tx *sql.Tx) error) {
	t.Helper()
	ctx := context.Background()
	tx, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		t.Fatalf("tx: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
}

func TestOpen(t *testing.T) {
	t.Run("unknown backend rejected", func(t *testing.T) {
		_, err := Open("mssql", "dsn")
		if !errors.Is(err, verrors.ErrUnsupported) {
			t.Fatalf("err = %v, want ErrUnsupported", err)
		}
	})
}

func TestUpsertVerse(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := testRecord("Casting all your care upon him; for he careth for you.")
	inTx(t, s, func(tx *sql.Tx) error { return s.UpsertVerse(ctx, tx, rec) })

	t.Run("roundtrip", func(t *testing.T) {
		got, err := s.GetVerse(ctx, rec.StableID, rec.Translation)
		if err != nil {
			t.Fatalf("GetVerse: %v", err)
		}
		if got != rec {
			t.Errorf("got %+v, want %+v", got, rec)
		}
	})

	t.Run("reingest is idempotent", func(t *testing.T) {
		inTx(t, s, func(tx *sql.Tx) error { return s.UpsertVerse(ctx, tx, rec) })
		n, err := s.VerseCount(ctx, "KJV")
		if err != nil || n != 1 {
			t.Fatalf("count = %d, err = %v; want 1", n, err)
		}
	})

	t.Run("conflict replaces text and metrics", func(t *testing.T) {
		revised := testRecord("Cast all your anxiety on him because he cares for you.")
		inTx(t, s, func(tx *sql.Tx) error { return s.UpsertVerse(ctx, tx, revised) })
		got, err := s.GetVerse(ctx, rec.StableID, rec.Translation)
		if err != nil {
			t.Fatal(err)
		}
		if got.Text != revised.Text || got.TextHash != revised.TextHash {
			t.Errorf("row not replaced: %+v", got)
		}
	})

	t.Run("missing verse is ErrNotFound", func(t *testing.T) {
		_, err := s.GetVerse(ctx, "Gen.1.1", "KJV")
		if !errors.Is(err, verrors.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestPatchVerse(t *testing.T) {
	ctx := context.Background()
	full := testRecord("Casting all your care upon him; for he careth for you.")
	empty := testRecord("")

	t.Run("fills empty rows", func(t *testing.T) {
		s := openTestStore(t)
		inTx(t, s, func(tx *sql.Tx) error { return s.UpsertVerse(ctx, tx, empty) })
		inTx(t, s, func(tx *sql.Tx) error { return s.PatchVerse(ctx, tx, full) })
		got, err := s.GetVerse(ctx, full.StableID, full.Translation)
		if err != nil {
			t.Fatal(err)
		}
		if got != full {
			t.Errorf("empty row not patched: %+v", got)
		}
	})

	t.Run("leaves populated rows untouched", func(t *testing.T) {
		s := openTestStore(t)
		inTx(t, s, func(tx *sql.Tx) error { return s.UpsertVerse(ctx, tx, full) })
		other := testRecord("Completely different wording of the verse.")
		inTx(t, s, func(tx *sql.Tx) error { return s.PatchVerse(ctx, tx, other) })
		got, err := s.GetVerse(ctx, full.StableID, full.Translation)
		if err != nil {
			t.Fatal(err)
		}
		if got.Text != full.Text || got.TextHash != full.TextHash {
			t.Errorf("populated row was overwritten: %+v", got)
		}
	})

	t.Run("inserts missing rows", func(t *testing.T) {
		s := openTestStore(t)
		inTx(t, s, func(tx *sql.Tx) error { return s.PatchVerse(ctx, tx, full) })
		n, err := s.VerseCount(ctx, "KJV")
		if err != nil || n != 1 {
			t.Fatalf("count = %d, err = %v; want 1", n, err)
		}
	})
}

func TestUpsertAnnotation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	ann := verse.Annotation{
		StableID:     "1Pet.5.7",
		Translation:  "KJV",
		Themes:       []string{"comfort", "peace"},
		Moods:        []string{"calming", "hopeful"},
		DaypartProbs: []float64{0.3, 0.4, 0.2, 0.1},
		ToneProbs:    []float64{0.4, 0.3, 0.1, 0.1, 0.1},
		Safety:       verse.SafetyFlags{KidSafe: true},
		Familiarity:  0.715,
	}

	t.Run("roundtrip without embedding", func(t *testing.T) {
		inTx(t, s, func(tx *sql.Tx) error { return s.UpsertAnnotation(ctx, tx, ann) })
		got, err := s.GetAnnotation(ctx, ann.StableID, ann.Translation)
		if err != nil {
			t.Fatalf("GetAnnotation: %v", err)
		}
		if got.Embedding != nil {
			t.Errorf("embedding = %v, want nil", got.Embedding)
		}
		if !reflect.DeepEqual(got, ann) {
			t.Errorf("got %+v, want %+v", got, ann)
		}
	})

	t.Run("roundtrip with embedding", func(t *testing.T) {
		withEmb := ann
		withEmb.Embedding = []float32{0.25, -0.5, 0.125}
		inTx(t, s, func(tx *sql.Tx) error { return s.UpsertAnnotation(ctx, tx, withEmb) })
		got, err := s.GetAnnotation(ctx, ann.StableID, ann.Translation)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(got.Embedding, withEmb.Embedding) {
			t.Errorf("embedding = %v, want %v", got.Embedding, withEmb.Embedding)
		}
		n, err := s.AnnotationCount(ctx, "KJV")
		if err != nil || n != 1 {
			t.Fatalf("count = %d, err = %v; want 1", n, err)
		}
	})

	t.Run("missing annotation is ErrNotFound", func(t *testing.T) {
		_, err := s.GetAnnotation(ctx, "Gen.1.1", "KJV")
		if !errors.Is(err, verrors.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestRebind(t *testing.T) {
	sqlite := &Store{dialect: dialectSQLite}
	pg := &Store{dialect: dialectPostgres}

	q := `INSERT INTO t (a, b) VALUES (?, ?) ON CONFLICT DO UPDATE SET a = ?`
	if got := sqlite.rebind(q); got != q {
		t.Errorf("sqlite rebind changed query: %q", got)
	}
	want := `INSERT INTO t (a, b) VALUES ($1, $2) ON CONFLICT DO UPDATE SET a = $3`
	if got := pg.rebind(q); got != want {
		t.Errorf("pg rebind = %q, want %q", got, want)
	}
}

func TestRollback(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	tx, err := s.Begin(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertVerse(ctx, tx, testRecord("some text")); err != nil {
		t.Fatal(err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatal(err)
	}

	n, err := s.VerseCount(ctx, "KJV")
	if err != nil || n != 0 {
		t.Fatalf("count after rollback = %d, err = %v; want 0", n, err)
	}
}
