package score

// Tone labels: polarity band crossed with subjectivity band.
const (
	ToneEnthusiasticPersonal = "Enthusiastic & Personal"
	TonePositiveFactual      = "Positive & Factual"
	TonePersonalCritical     = "Personal & Critical"
	ToneNeutralFactual       = "Neutral & Factual"
	ToneExpressiveEmotional  = "Expressive & Emotional"
	ToneFactualObjective     = "Factual & Objective"
)

const (
	polarityHigh     = 0.6
	polarityLow      = 0.3
	subjectivityHigh = 0.6
)

// tone runs sentiment analysis on the submission and classifies it. The
// returned score is the mean of polarity and subjectivity.
func (s *Scorer) tone(text string) (string, float64) {
	scores := s.vader.PolarityScores(text)

	polarity := scores.Compound
	// Subjectivity is the non-neutral share of the sentiment mass.
	subjectivity := scores.Positive + scores.Negative
	if subjectivity > 1 {
		subjectivity = 1
	}

	return classifyTone(polarity, subjectivity), (polarity + subjectivity) / 2
}

// classifyTone is a pure function of (polarity, subjectivity). The
// polarity bands are evaluated high first, then low; everything left in
// between falls into the mid band.
func classifyTone(polarity, subjectivity float64) string {
	switch {
	case polarity > polarityHigh:
		if subjectivity > subjectivityHigh {
			return ToneEnthusiasticPersonal
		}
		return TonePositiveFactual
	case polarity < polarityLow:
		if subjectivity > subjectivityHigh {
			return TonePersonalCritical
		}
		return ToneNeutralFactual
	default:
		if subjectivity > subjectivityHigh {
			return ToneExpressiveEmotional
		}
		return ToneFactualObjective
	}
}
