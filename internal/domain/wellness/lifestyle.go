package wellness

import (
	"fmt"
	"strings"
)

// Habit categories.
var Categories = []string{"Health", "Fitness", "Nutrition", "Mindfulness", "Productivity"}

func analyseHabits(habits []Habit) LifestyleResult {
	if len(habits) == 0 {
		return LifestyleResult{
			CategoryCounts:    map[string]int{},
			MissingCategories: append([]string(nil), Categories...),
			Recommendations:   []string{"Please add some habits to get recommendations."},
		}
	}

	counts := make(map[string]int, len(Categories))
	completed := 0
	for _, h := range habits {
		counts[h.Category]++
		if h.Completed {
			completed++
		}
	}
	rate := float64(completed) / float64(len(habits)) * 100

	missing := make([]string, 0, len(Categories))
	for _, c := range Categories {
		if counts[c] == 0 {
			missing = append(missing, c)
		}
	}

	var recs []string
	if len(missing) > 0 {
		recs = append(recs, fmt.Sprintf("Consider adding habits in these areas: %s", strings.Join(missing, ", ")))
	}
	switch {
	case rate < 50:
		recs = append(recs, "Try to focus on completing your existing habits before adding new ones.")
	case rate > 80:
		recs = append(recs, "Great job keeping up with your habits! Consider challenging yourself with new goals.")
	}
	if counts["Health"] > 0 && counts["Fitness"] > 0 {
		recs = append(recs, "Your combined health and fitness habits will create compound benefits!")
	}
	if counts["Nutrition"] > 0 {
		recs = append(recs, "Maintaining nutritious eating habits is key to overall wellness.")
	}
	if counts["Mindfulness"] > 0 {
		recs = append(recs, "Regular mindfulness practice can reduce stress and improve focus.")
	}
	if counts["Productivity"] > 0 {
		recs = append(recs, "Building productivity habits creates a foundation for success in all areas.")
	}
	if len(recs) == 0 {
		recs = append(recs, "Maintain a balanced routine with proper diet, exercise, and relaxation.")
	}

	return LifestyleResult{
		CompletionRate:    rate,
		CategoryCounts:    counts,
		MissingCategories: missing,
		Recommendations:   recs,
	}
}
