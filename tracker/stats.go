package tracker

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary aggregates a set of plays.
type Summary struct {
	Count int

	// TotalPP applies the profile weighting (0.95^n in list order), so
	// over a user's best plays it matches their profile total.
	TotalPP  float64
	MeanPP   float64
	StdDevPP float64
	MinPP    float64
	MaxPP    float64

	MeanAccuracy float64

	// MeanStars covers only enriched plays; without beatmap metadata a
	// play has no star rating to count.
	MeanStars float64

	ModCounts map[string]int
}

// Summarize computes aggregate statistics over plays.
func Summarize(scores []ScoreInfo) Summary {
	summary := Summary{
		Count:     len(scores),
		ModCounts: make(map[string]int),
	}
	if len(scores) == 0 {
		return summary
	}

	pp := make([]float64, 0, len(scores))
	acc := make([]float64, 0, len(scores))
	stars := make([]float64, 0, len(scores))

	weight := 1.0
	for _, score := range scores {
		pp = append(pp, score.PP)
		acc = append(acc, score.Accuracy)
		if score.Stars > 0 {
			stars = append(stars, score.Stars)
		}
		summary.TotalPP += score.PP * weight
		weight *= 0.95
		summary.ModCounts[score.Mods.String()]++
	}

	summary.MeanPP = stat.Mean(pp, nil)
	summary.MinPP = floats.Min(pp)
	summary.MaxPP = floats.Max(pp)
	summary.MeanAccuracy = stat.Mean(acc, nil)
	if len(pp) > 1 {
		summary.StdDevPP = stat.StdDev(pp, nil)
	}
	if len(stars) > 0 {
		summary.MeanStars = stat.Mean(stars, nil)
	}
	return summary
}
