package memory

import (
	"context"

	"guesstimate-service/internal/domain"
)

// StaticSource serves a fixed in-memory question set (tests and demos).
type StaticSource struct {
	questions []domain.Question
}

func NewStaticSource(questions []domain.Question) *StaticSource {
	return &StaticSource{questions: questions}
}

func (s *StaticSource) Load(_ context.Context) ([]domain.Question, error) {
	if len(s.questions) == 0 {
		return nil, domain.ErrNoQuestions
	}
	return s.questions, nil
}
