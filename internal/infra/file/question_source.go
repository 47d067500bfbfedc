// Package file loads the question dataset produced by the generation
// pipeline from disk, in plain or gzipped JSON form.
package file

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"guesstimate-service/internal/domain"
)

// Source reads a JSON array of questions from path. Files ending in .gz are
// transparently decompressed (the pipeline ships data.json.gz).
type Source struct {
	path string
}

func NewSource(path string) *Source {
	return &Source{path: path}
}

func (s *Source) Load(_ context.Context) ([]domain.Question, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open questions: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(s.path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip questions: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	var questions []domain.Question
	if err := json.NewDecoder(r).Decode(&questions); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, domain.ErrNoQuestions
	}
	return questions, nil
}
