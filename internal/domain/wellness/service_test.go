package wellness

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/tapmon/pkg/errors"
)

func TestListQuizzes(t *testing.T) {
	svc := newTestService()
	list := svc.ListQuizzes(context.Background())
	require.Len(t, list, 3)
	for _, q := range list {
		require.Len(t, q.Questions, 8, q.ID)
	}
}

func TestScoreMood(t *testing.T) {
	svc := newTestService()

	res, err := svc.Score(context.Background(), QuizMood, QuizAnswers{Answers: repeat("yes", 8)})
	require.NoError(t, err)
	require.Equal(t, 100.0, res.Score)
	require.Equal(t, "You're doing well today!", res.Status)
	require.Equal(t, []string{
		"Try 5 minutes of deep breathing or meditation",
		"Track your symptoms and consider gentle stretching",
	}, res.Recommendations)

	res, err = svc.Score(context.Background(), "MOOD", QuizAnswers{Answers: []string{"no", "YES", "yes", "no", "yes", "yes", "yes", "yes"}})
	require.NoError(t, err)
	require.Equal(t, 75.0, res.Score)
	require.Equal(t, "good", res.Level)
	require.Equal(t, []string{"Keep up the good habits!"}, res.Recommendations)

	res, err = svc.Score(context.Background(), QuizMood, QuizAnswers{Answers: []string{"yes", "yes", "yes", "no", "no", "no", "no", "no"}})
	require.NoError(t, err)
	require.Equal(t, 37.5, res.Score)
	require.Equal(t, "You might need extra self-care today.", res.Status)
	require.Equal(t, []string{
		"Try 5 minutes of deep breathing or meditation",
		"Try a 10-minute walk or gentle yoga session",
	}, res.Recommendations)
}

func TestScoreSymptoms(t *testing.T) {
	svc := newTestService()

	res, err := svc.Score(context.Background(), QuizSymptoms, QuizAnswers{Answers: []string{"yes", "yes", "yes", "yes", "no", "no", "no", "no"}})
	require.NoError(t, err)
	require.Equal(t, "Moderate PMS symptoms predicted.", res.Status)
	require.Equal(t, []string{
		"Consider adjusting your sleep schedule to improve energy levels.",
		"Drinking warm fluids and light exercise may help with cramps.",
	}, res.Recommendations)

	res, err = svc.Score(context.Background(), QuizSymptoms, QuizAnswers{Answers: []string{"yes", "no", "no", "yes", "no", "no", "no", "no"}})
	require.NoError(t, err)
	require.Equal(t, "minimal", res.Level)
	require.Equal(t, []string{"Keep up healthy habits to maintain balance."}, res.Recommendations)
}

func TestScoreTips(t *testing.T) {
	svc := newTestService()

	res, err := svc.Score(context.Background(), QuizTips, QuizAnswers{Answers: repeat("no", 8)})
	require.NoError(t, err)
	require.Zero(t, res.Score)
	require.Equal(t, "You might need extra care.", res.Status)
	require.Len(t, res.Recommendations, 5)

	res, err = svc.Score(context.Background(), QuizTips, QuizAnswers{Answers: []string{"yes", "yes", "yes", "yes", "yes", "no", "no", "no"}})
	require.NoError(t, err)
	require.Equal(t, "There's room for improvement.", res.Status)
	require.Equal(t, []string{"Consider making small daily changes."}, res.Recommendations)
}

func TestScoreValidation(t *testing.T) {
	svc := newTestService()

	_, err := svc.Score(context.Background(), "sleep", QuizAnswers{Answers: repeat("yes", 8)})
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	_, err = svc.Score(context.Background(), QuizMood, QuizAnswers{Answers: repeat("yes", 7)})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	answers := repeat("yes", 8)
	answers[2] = "maybe"
	_, err = svc.Score(context.Background(), QuizMood, QuizAnswers{Answers: answers})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestSuggestYoga(t *testing.T) {
	svc := newTestService()

	res, err := svc.SuggestYoga(context.Background(), YogaAnswers{
		Pain: "Yes, severe", Mood: "Tired/Fatigued", Cycle: "Menstruation", Time: "Less than 10 minutes",
	})
	require.NoError(t, err)
	require.False(t, res.Fallback)
	require.Equal(t, []string{
		"Child's Pose (Balasana)",
		"Legs Up the Wall (Viparita Karani)",
		"Corpse Pose (Savasana)",
	}, poseNames(res))

	res, err = svc.SuggestYoga(context.Background(), YogaAnswers{
		Pain: "No", Mood: "Calm", Cycle: "Mid-cycle", Time: "More than 20 minutes",
	})
	require.NoError(t, err)
	require.Equal(t, []string{
		"Fish Pose (Matsyasana)",
		"Cat-Cow Pose (Marjaryasana-Bitilasana)",
		"Reclined Bound Angle Pose (Supta Baddha Konasana)",
	}, poseNames(res))
	require.Equal(t, 4, res.Suggestions[0].Matches)

	_, err = svc.SuggestYoga(context.Background(), YogaAnswers{Pain: "No", Mood: "Happy", Cycle: "Mid-cycle", Time: "10-20 minutes"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	require.Len(t, svc.YogaQuestions(context.Background()), 4)
}

func TestSuggestFallsBackWithoutMatches(t *testing.T) {
	res := suggest(YogaAnswers{})
	require.True(t, res.Fallback)
	require.Equal(t, []string{
		"Cat-Cow Pose (Marjaryasana-Bitilasana)",
		"Corpse Pose (Savasana)",
	}, poseNames(res))
}

func TestLifestyle(t *testing.T) {
	svc := newTestService()

	res, err := svc.Lifestyle(context.Background(), LifestyleRequest{})
	require.NoError(t, err)
	require.Equal(t, []string{"Please add some habits to get recommendations."}, res.Recommendations)

	res, err = svc.Lifestyle(context.Background(), LifestyleRequest{Habits: []Habit{
		{Name: "Vitamins", Category: "Health", Completed: true},
		{Name: "Run", Category: "Fitness", Completed: true},
	}})
	require.NoError(t, err)
	require.Equal(t, 100.0, res.CompletionRate)
	require.Equal(t, []string{"Nutrition", "Mindfulness", "Productivity"}, res.MissingCategories)
	require.Equal(t, []string{
		"Consider adding habits in these areas: Nutrition, Mindfulness, Productivity",
		"Great job keeping up with your habits! Consider challenging yourself with new goals.",
		"Your combined health and fitness habits will create compound benefits!",
	}, res.Recommendations)

	res, err = svc.Lifestyle(context.Background(), LifestyleRequest{Habits: []Habit{
		{Name: "Salad", Category: "Nutrition"},
		{Name: "Meditate", Category: "Mindfulness", Completed: true},
		{Name: "Plan day", Category: "Productivity"},
	}})
	require.NoError(t, err)
	require.InDelta(t, 33.33, res.CompletionRate, 0.01)
	require.Equal(t, []string{
		"Consider adding habits in these areas: Health, Fitness",
		"Try to focus on completing your existing habits before adding new ones.",
		"Maintaining nutritious eating habits is key to overall wellness.",
		"Regular mindfulness practice can reduce stress and improve focus.",
		"Building productivity habits creates a foundation for success in all areas.",
	}, res.Recommendations)

	_, err = svc.Lifestyle(context.Background(), LifestyleRequest{Habits: []Habit{{Name: "Nap", Category: "Sleep"}}})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func newTestService() Service {
	return NewService(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func repeat(v string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func poseNames(res YogaResult) []string {
	names := make([]string, 0, len(res.Suggestions))
	for _, s := range res.Suggestions {
		names = append(names, s.Name)
	}
	return names
}
