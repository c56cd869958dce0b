package core

import "math"

// DefaultScale is the grade ceiling
const DefaultScale = 10.0

// Aggregate turns step verdicts into a report. Sums use unrounded values;
// the pass decision uses the unrounded grade and reported numbers are
// rounded to two decimals.
func Aggregate(key *AnswerKey, verdicts []StepVerdict, passMinimum, scale float64) StudentReport {
	if scale <= 0 {
		scale = DefaultScale
	}

	// weights come from the key; each step counts once however many verdicts name it
	type stepRef struct {
		question string
		index    int
	}
	counted := make(map[stepRef]bool)
	achieved := make(map[string]float64)
	for _, v := range verdicts {
		if !v.Matched {
			continue
		}
		q, ok := key.Question(v.QuestionID)
		if !ok || v.StepIndex < 0 || v.StepIndex >= len(q.Steps) {
			continue
		}
		ref := stepRef{v.QuestionID, v.StepIndex}
		if counted[ref] {
			continue
		}
		counted[ref] = true
		achieved[v.QuestionID] += q.Steps[v.StepIndex].Weight
	}

	report := StudentReport{
		Steps: append([]StepVerdict(nil), verdicts...),
	}
	total, maxScore := 0.0, 0.0
	for _, q := range key.Questions() {
		qMax := key.MaxScore(q.ID)
		qScore := achieved[q.ID]
		total += qScore
		maxScore += qMax
		report.Questions = append(report.Questions, QuestionScore{
			QuestionID: q.ID,
			Achieved:   round2(qScore),
			Maximum:    round2(qMax),
		})
	}

	grade := 0.0
	if maxScore > 0 {
		grade = total / maxScore * scale
	}
	report.TotalScore = round2(total)
	report.MaxScore = round2(maxScore)
	report.FinalGrade = round2(grade)
	report.Status = StatusFail
	if grade >= passMinimum {
		report.Status = StatusPass
	}
	return report
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
