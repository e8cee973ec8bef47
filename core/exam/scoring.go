package exam

import "math"

// Score is the outcome of grading one set of answers.
type Score struct {
	Score      int     `json:"score"`
	Correct    int     `json:"correct"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
	Grade      string  `json:"grade"`
}

// CalculateScore grades answers against questions. A question earns its
// points only when the answer set matches the correct set exactly;
// partial matches earn nothing. Missing answers count as wrong.
func CalculateScore(questions []Question, answers [][]int) Score {
	var correct, totalPoints, earnedPoints int

	for i, q := range questions {
		totalPoints += q.Points

		var ans []int
		if i < len(answers) {
			ans = answers[i]
		}
		if answerSetsEqual(ans, q.CorrectAnswer) {
			correct++
			earnedPoints += q.Points
		}
	}

	if totalPoints == 0 {
		return Score{Grade: GradeFor(0)}
	}

	percentage := float64(earnedPoints) / float64(totalPoints) * 100
	score := int(math.Round(percentage))

	return Score{
		Score:      score,
		Correct:    correct,
		Total:      len(questions),
		Percentage: percentage,
		Grade:      GradeFor(score),
	}
}

// GradeFor buckets a 0-100 score into an Uzbek mark.
func GradeFor(score int) string {
	switch {
	case score >= 90:
		return "A'lo"
	case score >= 75:
		return "Yaxshi"
	case score >= 60:
		return "Qoniqarli"
	default:
		return "Qoniqarsiz"
	}
}

func answerSetsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[int]struct{}, len(b))
	for _, v := range b {
		set[v] = struct{}{}
	}
	for _, v := range a {
		if _, ok := set[v]; !ok {
			return false
		}
	}
	return true
}
