package wellness

import (
	"slices"
	"sort"
)

const (
	painSevere = "Yes, severe"
	painMild   = "Yes, mild"
	painNone   = "No"

	moodAnxious   = "Anxious/Stressed"
	moodTired     = "Tired/Fatigued"
	moodIrritable = "Irritable"
	moodCalm      = "Calm"

	phaseMenstruation = "Menstruation"
	phasePremenstrual = "Pre-menstruation"
	phaseMidCycle     = "Mid-cycle"
	phaseUnknown      = "Not sure"

	timeShort  = "Less than 10 minutes"
	timeMedium = "10-20 minutes"
	timeLong   = "More than 20 minutes"

	minPoseMatches = 2
	maxSuggestions = 3
)

var yogaQuestions = []YogaQuestion{
	{ID: "pain", Question: "Are you experiencing any pain or cramps?", Options: []string{painSevere, painMild, painNone}},
	{ID: "mood", Question: "How would you describe your current mood?", Options: []string{moodAnxious, moodTired, moodIrritable, moodCalm}},
	{ID: "cycle", Question: "Which phase of your cycle are you in?", Options: []string{phaseMenstruation, phasePremenstrual, phaseMidCycle, phaseUnknown}},
	{ID: "time", Question: "How much time do you have for yoga today?", Options: []string{timeShort, timeMedium, timeLong}},
}

var (
	allPhases = []string{phaseMenstruation, phasePremenstrual, phaseMidCycle, phaseUnknown}
	allTimes  = []string{timeShort, timeMedium, timeLong}
)

var poses = []Pose{
	{
		Name:        "Child's Pose (Balasana)",
		Description: "A gentle resting pose that stretches the back and relieves menstrual cramps.",
		Video:       "https://www.youtube.com/watch?v=4JaCcp39iVI",
		ForPain:     []string{painSevere, painMild},
		ForMood:     []string{moodAnxious, moodTired},
		ForCycle:    []string{phaseMenstruation, phasePremenstrual},
		ForTime:     allTimes,
	},
	{
		Name:        "Reclined Bound Angle Pose (Supta Baddha Konasana)",
		Description: "This pose helps in reducing anxiety and promotes relaxation.",
		Video:       "https://www.youtube.com/watch?v=MjUA_MlVUwk",
		ForPain:     []string{painMild, painNone},
		ForMood:     []string{moodAnxious, moodIrritable},
		ForCycle:    allPhases,
		ForTime:     allTimes,
	},
	{
		Name:        "Fish Pose (Matsyasana)",
		Description: "A back-bending pose that stimulates the abdominal region, aiding in regulating menstrual cycles.",
		Video:       "https://www.youtube.com/watch?v=21Yw7Dj2JbM",
		ForPain:     []string{painNone},
		ForMood:     []string{moodCalm, moodTired},
		ForCycle:    []string{phaseMidCycle},
		ForTime:     []string{timeMedium, timeLong},
	},
	{
		Name:        "Cat-Cow Pose (Marjaryasana-Bitilasana)",
		Description: "A gentle flow between two poses that warms the body and brings flexibility to the spine.",
		Video:       "https://www.youtube.com/watch?v=4JaCcp39iVI",
		ForPain:     []string{painMild, painNone},
		ForMood:     []string{moodAnxious, moodTired, moodIrritable, moodCalm},
		ForCycle:    allPhases,
		ForTime:     allTimes,
	},
	{
		Name:        "Legs Up the Wall (Viparita Karani)",
		Description: "A restorative inversion that improves circulation and reduces swelling.",
		Video:       "https://youtu.be/xmcDj4Bf--0?si=IlsOomYvb2PLBvS5",
		ForPain:     []string{painSevere, painMild},
		ForMood:     []string{moodTired, moodIrritable},
		ForCycle:    []string{phaseMenstruation, phasePremenstrual},
		ForTime:     allTimes,
	},
	{
		Name:        "Corpse Pose (Savasana)",
		Description: "A relaxation pose that calms the mind and relaxes the body.",
		Video:       "https://youtu.be/1VYlOKUdylM?si=6PDpeAMo6-y9d3bW",
		ForPain:     []string{painSevere, painMild, painNone},
		ForMood:     []string{moodAnxious, moodTired, moodIrritable},
		ForCycle:    allPhases,
		ForTime:     allTimes,
	},
}

// Cat-Cow and Corpse are safe for everyone.
var fallbackPoses = []int{3, 5}

func (p Pose) matches(a YogaAnswers) int {
	n := 0
	for _, hit := range []bool{
		slices.Contains(p.ForPain, a.Pain),
		slices.Contains(p.ForMood, a.Mood),
		slices.Contains(p.ForCycle, a.Cycle),
		slices.Contains(p.ForTime, a.Time),
	} {
		if hit {
			n++
		}
	}
	return n
}

func suggest(a YogaAnswers) YogaResult {
	ranked := make([]YogaSuggestion, 0, len(poses))
	for _, p := range poses {
		if n := p.matches(a); n >= minPoseMatches {
			ranked = append(ranked, YogaSuggestion{Pose: p, Matches: n})
		}
	}
	if len(ranked) == 0 {
		out := make([]YogaSuggestion, 0, len(fallbackPoses))
		for _, i := range fallbackPoses {
			out = append(out, YogaSuggestion{Pose: poses[i], Matches: poses[i].matches(a)})
		}
		return YogaResult{Suggestions: out, Fallback: true}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Matches > ranked[j].Matches
	})
	if len(ranked) > maxSuggestions {
		ranked = ranked[:maxSuggestions]
	}
	return YogaResult{Suggestions: ranked}
}
