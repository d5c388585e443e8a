package wellness

// Answer values accepted by the yes/no questionnaires.
const (
	AnswerYes = "yes"
	AnswerNo  = "no"
)

// Quiz identifiers.
const (
	QuizMood     = "mood"
	QuizSymptoms = "symptoms"
	QuizTips     = "tips"
)

// Quiz is a yes/no questionnaire definition.
type Quiz struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Questions []string `json:"questions"`

	triggers []trigger
	bands    []band
}

// trigger fires a recommendation when question Index is answered with When.
type trigger struct {
	Index          int
	When           string
	Recommendation string
}

// band applies when the yes-percentage is at least MinScore.
type band struct {
	MinScore float64
	Level    string
	Status   string
	Fallback string
	// Fixed replaces any triggered recommendations.
	Fixed bool
}

// QuizAnswers is the submitted answer list, one entry per question.
type QuizAnswers struct {
	Answers []string `json:"answers"`
}

// QuizResult summarises a scored questionnaire.
type QuizResult struct {
	QuizID          string   `json:"quizId"`
	Score           float64  `json:"score"`
	Level           string   `json:"level"`
	Status          string   `json:"status"`
	Recommendations []string `json:"recommendations"`
}

// YogaQuestion is a multiple choice question of the yoga suggester.
type YogaQuestion struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// YogaAnswers maps a question ID to the chosen option.
type YogaAnswers struct {
	Pain  string `json:"pain"`
	Mood  string `json:"mood"`
	Cycle string `json:"cycle"`
	Time  string `json:"time"`
}

// Pose is a yoga pose with the answers it suits.
type Pose struct {
	Name        string   `json:"pose"`
	Description string   `json:"description"`
	Video       string   `json:"video"`
	ForPain     []string `json:"-"`
	ForMood     []string `json:"-"`
	ForCycle    []string `json:"-"`
	ForTime     []string `json:"-"`
}

// YogaSuggestion is a ranked pose.
type YogaSuggestion struct {
	Pose
	Matches int `json:"matches"`
}

// YogaResult lists the suggested poses.
type YogaResult struct {
	Suggestions []YogaSuggestion `json:"suggestions"`
	Fallback    bool             `json:"fallback"`
}

// Habit is a tracked lifestyle habit.
type Habit struct {
	Name      string `json:"name"`
	Category  string `json:"category"`
	Completed bool   `json:"completed"`
}

// LifestyleRequest carries the user's habits.
type LifestyleRequest struct {
	Habits []Habit `json:"habits"`
}

// LifestyleResult carries insights about the habits.
type LifestyleResult struct {
	CompletionRate    float64        `json:"completionRate"`
	CategoryCounts    map[string]int `json:"categoryCounts"`
	MissingCategories []string       `json:"missingCategories"`
	Recommendations   []string       `json:"recommendations"`
}
