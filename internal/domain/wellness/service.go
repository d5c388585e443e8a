package wellness

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	apperrors "github.com/yanqian/tapmon/pkg/errors"
)

const maxHabits = 100

// Service scores self-assessment questionnaires and produces suggestions.
type Service interface {
	ListQuizzes(ctx context.Context) []Quiz
	Score(ctx context.Context, quizID string, req QuizAnswers) (QuizResult, error)
	YogaQuestions(ctx context.Context) []YogaQuestion
	SuggestYoga(ctx context.Context, req YogaAnswers) (YogaResult, error)
	Lifestyle(ctx context.Context, req LifestyleRequest) (LifestyleResult, error)
}

type service struct {
	logger *slog.Logger
}

// NewService constructs the wellness service.
func NewService(logger *slog.Logger) Service {
	return &service{logger: logger.With("component", "wellness.service")}
}

func (s *service) ListQuizzes(context.Context) []Quiz {
	out := make([]Quiz, len(quizzes))
	copy(out, quizzes)
	return out
}

func (s *service) Score(_ context.Context, quizID string, req QuizAnswers) (QuizResult, error) {
	quiz, ok := findQuiz(strings.ToLower(strings.TrimSpace(quizID)))
	if !ok {
		return QuizResult{}, apperrors.Wrap(apperrors.CodeNotFound, fmt.Sprintf("unknown quiz %q", quizID), nil)
	}
	if len(req.Answers) != len(quiz.Questions) {
		return QuizResult{}, apperrors.Wrap(apperrors.CodeInvalidInput,
			fmt.Sprintf("expected %d answers, got %d", len(quiz.Questions), len(req.Answers)), nil)
	}
	answers := make([]string, len(req.Answers))
	for i, raw := range req.Answers {
		a := strings.ToLower(strings.TrimSpace(raw))
		if a != AnswerYes && a != AnswerNo {
			return QuizResult{}, apperrors.Wrap(apperrors.CodeInvalidInput,
				fmt.Sprintf("answer %d must be yes or no", i+1), nil)
		}
		answers[i] = a
	}
	result := score(quiz, answers)
	s.logger.Debug("quiz scored", "quiz", quiz.ID, "score", result.Score, "level", result.Level)
	return result, nil
}

func (s *service) YogaQuestions(context.Context) []YogaQuestion {
	out := make([]YogaQuestion, len(yogaQuestions))
	copy(out, yogaQuestions)
	return out
}

func (s *service) SuggestYoga(_ context.Context, req YogaAnswers) (YogaResult, error) {
	for _, q := range yogaQuestions {
		answer := yogaAnswer(req, q.ID)
		if !slices.Contains(q.Options, answer) {
			return YogaResult{}, apperrors.Wrap(apperrors.CodeInvalidInput,
				fmt.Sprintf("%s must be one of: %s", q.ID, strings.Join(q.Options, ", ")), nil)
		}
	}
	return suggest(req), nil
}

func (s *service) Lifestyle(_ context.Context, req LifestyleRequest) (LifestyleResult, error) {
	if len(req.Habits) > maxHabits {
		return LifestyleResult{}, apperrors.Wrap(apperrors.CodeInvalidInput,
			fmt.Sprintf("at most %d habits are supported", maxHabits), nil)
	}
	habits := make([]Habit, 0, len(req.Habits))
	for i, h := range req.Habits {
		h.Name = strings.TrimSpace(h.Name)
		if h.Name == "" {
			return LifestyleResult{}, apperrors.Wrap(apperrors.CodeInvalidInput,
				fmt.Sprintf("habit %d needs a name", i+1), nil)
		}
		if !slices.Contains(Categories, h.Category) {
			return LifestyleResult{}, apperrors.Wrap(apperrors.CodeInvalidInput,
				fmt.Sprintf("habit %q has unknown category %q", h.Name, h.Category), nil)
		}
		habits = append(habits, h)
	}
	return analyseHabits(habits), nil
}

func yogaAnswer(a YogaAnswers, id string) string {
	switch id {
	case "pain":
		return a.Pain
	case "mood":
		return a.Mood
	case "cycle":
		return a.Cycle
	case "time":
		return a.Time
	}
	return ""
}
