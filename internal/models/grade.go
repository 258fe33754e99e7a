package models

// GradeBand maps an inclusive lower score bound to a letter grade and its
// 4.0-scale point value.
type GradeBand struct {
	MinScore float64
	Letter   string
	Points   float64
}

// gradeBands is ordered by descending lower bound; the first band whose
// MinScore the score reaches wins, so boundary scores map to the higher band.
var gradeBands = []GradeBand{
	{90, "A+", 4.0},
	{85, "A", 4.0},
	{80, "A-", 3.7},
	{77, "B+", 3.3},
	{73, "B", 3.0},
	{70, "B-", 2.7},
	{67, "C+", 2.3},
	{63, "C", 2.0},
	{60, "C-", 1.7},
	{57, "D+", 1.3},
	{53, "D", 1.0},
	{50, "D-", 0.7},
}

// GradeFor converts a percentage score into a letter grade and grade points.
// Scores outside [0,100] are rejected rather than clamped; ok is false and
// the caller is expected to surface an invalid-grade error.
func GradeFor(score float64) (letter string, points float64, ok bool) {
	if score < 0 || score > 100 {
		return "", 0, false
	}
	for _, band := range gradeBands {
		if score >= band.MinScore {
			return band.Letter, band.Points, true
		}
	}
	return "F", 0.0, true
}
