package osuapi

// UserScores is a user's plays in API order, newest or highest first
// depending on the endpoint that produced them.
type UserScores []UserScore

// PPValues returns the pp of every play that has one. Recent plays carry
// no pp, so the result can be shorter than the receiver.
func (s UserScores) PPValues() []float64 {
	values := make([]float64, 0, len(s))
	for i := range s {
		if s[i].PP.Valid {
			values = append(values, s[i].PP.Float64)
		}
	}
	return values
}

// WeightedPP sums pp over the plays with the 0.95^n decay applied in
// slice order, the same weighting the profile total uses.
func (s UserScores) WeightedPP() float64 {
	var total float64
	weight := 1.0
	for i := range s {
		if s[i].PP.Valid {
			total += s[i].PP.Float64 * weight
			weight *= 0.95
		}
	}
	return total
}

// Filter returns the plays keep reports true for, preserving order.
func (s UserScores) Filter(keep func(UserScore) bool) UserScores {
	out := make(UserScores, 0, len(s))
	for _, score := range s {
		if keep(score) {
			out = append(out, score)
		}
	}
	return out
}

// Top returns the first n plays, or all of them when fewer exist.
func (s UserScores) Top(n int) UserScores {
	if n < 0 {
		n = 0
	}
	if n > len(s) {
		n = len(s)
	}
	return s[:n]
}

// Scores is a beatmap leaderboard in API order.
type Scores []Score

// PPValues returns the pp of every entry that has one.
func (s Scores) PPValues() []float64 {
	values := make([]float64, 0, len(s))
	for i := range s {
		if s[i].PP.Valid {
			values = append(values, s[i].PP.Float64)
		}
	}
	return values
}

// Filter returns the entries keep reports true for, preserving order.
func (s Scores) Filter(keep func(Score) bool) Scores {
	out := make(Scores, 0, len(s))
	for _, score := range s {
		if keep(score) {
			out = append(out, score)
		}
	}
	return out
}
