package file

import (
	"compress/gzip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"guesstimate-service/internal/domain"
)

const datasetJSON = `[
  {
    "uuid": "q1",
    "topic": "distances",
    "description": ["how far is it", null, "km"],
    "answer": 100,
    "excerpt": "it is about 100 km away",
    "scale-interval": {"lower_bound": 0, "upper_bound": null}
  },
  {
    "uuid": "q2",
    "topic": "history",
    "description": ["how many ships took part", "1588", null],
    "answer": [120, 140],
    "excerpt": "between 120 and 140 ships",
    "scale-interval": {"lower_bound": 0, "upper_bound": 100000}
  }
]`

func TestLoadPlainJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte(datasetJSON), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	questions, err := NewSource(path).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}

	q := questions[0]
	if q.UUID != "q1" || q.Description.Prompt != "how far is it" || q.Description.Units != "km" {
		t.Fatalf("unexpected first question: %+v", q)
	}
	if q.Answer.IsRange || q.Answer.Value != 100 {
		t.Fatalf("unexpected answer: %+v", q.Answer)
	}
	if q.Scale.BoundType() != domain.BoundedBelow {
		t.Fatalf("expected bounded-below scale, got %v", q.Scale.BoundType())
	}

	q = questions[1]
	if !q.Answer.IsRange || q.Answer.Min != 120 || q.Answer.Max != 140 {
		t.Fatalf("unexpected interval answer: %+v", q.Answer)
	}
	if q.Description.Date != "1588" {
		t.Fatalf("expected date qualifier, got %q", q.Description.Date)
	}
	if q.Scale.BoundType() != domain.BoundedBoth {
		t.Fatalf("expected bounded-both scale, got %v", q.Scale.BoundType())
	}
}

func TestLoadGzippedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json.gz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	gz := gzip.NewWriter(f)
	if _, err := gz.Write([]byte(datasetJSON)); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("close gzip: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close fixture: %v", err)
	}

	questions, err := NewSource(path).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(questions) != 2 || questions[1].UUID != "q2" {
		t.Fatalf("unexpected questions: %+v", questions)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := NewSource(filepath.Join(t.TempDir(), "missing.json")).Load(context.Background()); err == nil {
		t.Fatal("expected an error for a missing file")
	}

	empty := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(empty, []byte("[]"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := NewSource(empty).Load(context.Background()); !errors.Is(err, domain.ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions for an empty dataset, got %v", err)
	}
}
