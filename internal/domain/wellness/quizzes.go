package wellness

var quizzes = []Quiz{
	{
		ID:    QuizMood,
		Title: "Mood Tracker",
		Questions: []string{
			"Are you feeling stressed today?",
			"Did you get enough sleep last night?",
			"Have you been eating well recently?",
			"Are you experiencing any physical discomfort?",
			"Have you exercised in the past 48 hours?",
			"Are you feeling motivated today?",
			"Have you taken time for self-care recently?",
			"Are you experiencing any mood swings?",
		},
		triggers: []trigger{
			{0, AnswerYes, "Try 5 minutes of deep breathing or meditation"},
			{1, AnswerNo, "Consider going to bed 30 minutes earlier tonight"},
			{2, AnswerNo, "Focus on balanced meals with protein and vegetables"},
			{3, AnswerYes, "Track your symptoms and consider gentle stretching"},
			{4, AnswerNo, "Try a 10-minute walk or gentle yoga session"},
		},
		bands: []band{
			{MinScore: 75, Level: "good", Status: "You're doing well today!", Fallback: "Keep up the good habits!"},
			{MinScore: 40, Level: "mixed", Status: "You're having a mixed day.", Fallback: "Try to incorporate some self-care today."},
			{MinScore: 0, Level: "low", Status: "You might need extra self-care today.", Fallback: "Consider reaching out to someone you trust."},
		},
	},
	{
		ID:    QuizSymptoms,
		Title: "Symptom Prediction",
		Questions: []string{
			"Have you experienced unusual fatigue recently?",
			"Are you feeling more irritable than usual?",
			"Have you had headaches in the past few days?",
			"Are you experiencing bloating or cramps?",
			"Have you noticed any sudden mood swings?",
			"Are you craving specific foods like sweets or salty snacks?",
			"Have you experienced difficulty sleeping lately?",
			"Do you feel more anxious than usual?",
		},
		triggers: []trigger{
			{0, AnswerYes, "Consider adjusting your sleep schedule to improve energy levels."},
			{3, AnswerYes, "Drinking warm fluids and light exercise may help with cramps."},
			{5, AnswerYes, "Try balancing your meals to reduce cravings."},
			{6, AnswerYes, "Establish a calming bedtime routine to improve sleep."},
		},
		bands: []band{
			{MinScore: 75, Level: "strong", Status: "You may experience strong PMS symptoms.", Fallback: "Consider tracking your symptoms for better management."},
			{MinScore: 40, Level: "moderate", Status: "Moderate PMS symptoms predicted.", Fallback: "Stay mindful of symptoms and practice self-care."},
			{MinScore: 0, Level: "minimal", Status: "Minimal PMS symptoms expected.", Fallback: "Keep up healthy habits to maintain balance.", Fixed: true},
		},
	},
	{
		ID:    QuizTips,
		Title: "Personalized Tips",
		Questions: []string{
			"Are you maintaining a balanced diet?",
			"Do you exercise regularly?",
			"Are you managing stress effectively?",
			"Do you get at least 7 hours of sleep per night?",
			"Are you staying hydrated throughout the day?",
			"Do you take breaks to relax and unwind?",
			"Have you been spending time outdoors recently?",
			"Do you engage in mindfulness or meditation?",
		},
		triggers: []trigger{
			{0, AnswerNo, "Consider adding more fruits and vegetables to your meals."},
			{1, AnswerNo, "Aim for at least 30 minutes of physical activity daily."},
			{2, AnswerNo, "Practice deep breathing exercises to reduce stress."},
			{3, AnswerNo, "Try to establish a consistent sleep routine."},
			{4, AnswerNo, "Keep a water bottle with you to stay hydrated."},
		},
		bands: []band{
			{MinScore: 75, Level: "great", Status: "You're on a great path!", Fallback: "Keep up the healthy habits!"},
			{MinScore: 40, Level: "fair", Status: "There's room for improvement.", Fallback: "Consider making small daily changes."},
			{MinScore: 0, Level: "needs_care", Status: "You might need extra care.", Fallback: "Try focusing on one small habit at a time."},
		},
	},
}

func findQuiz(id string) (Quiz, bool) {
	for _, q := range quizzes {
		if q.ID == id {
			return q, true
		}
	}
	return Quiz{}, false
}

// score assumes answers were normalised and sized to the quiz.
func score(q Quiz, answers []string) QuizResult {
	yes := 0
	for _, a := range answers {
		if a == AnswerYes {
			yes++
		}
	}
	pct := float64(yes) / float64(len(q.Questions)) * 100

	var picked band
	for _, b := range q.bands {
		if pct >= b.MinScore {
			picked = b
			break
		}
	}

	recs := make([]string, 0, len(q.triggers))
	if !picked.Fixed {
		for _, t := range q.triggers {
			if answers[t.Index] == t.When {
				recs = append(recs, t.Recommendation)
			}
		}
	}
	if len(recs) == 0 {
		recs = append(recs, picked.Fallback)
	}
	return QuizResult{
		QuizID:          q.ID,
		Score:           pct,
		Level:           picked.Level,
		Status:          picked.Status,
		Recommendations: recs,
	}
}
