package reward

// Tier is a named band of reward points. Ranges are contiguous starting at
// 0; the top tier is unbounded (MaxPoints < 0).
type Tier struct {
	Name      string `json:"name"`
	MinPoints int    `json:"min_points"`
	MaxPoints int    `json:"max_points"`
	Color     string `json:"color"`
	Icon      string `json:"icon"`
}

// Unbounded marks the top tier's upper limit.
const Unbounded = -1

var tiers = []Tier{
	{Name: "Bronze", MinPoints: 0, MaxPoints: 999, Color: "#cd7f32", Icon: "medal"},
	{Name: "Silver", MinPoints: 1000, MaxPoints: 2499, Color: "#c0c0c0", Icon: "medal"},
	{Name: "Gold", MinPoints: 2500, MaxPoints: 4999, Color: "#ffd700", Icon: "trophy"},
	{Name: "Platinum", MinPoints: 5000, MaxPoints: Unbounded, Color: "#e5e4e2", Icon: "crown"},
}

// Tiers returns the full tier table in ascending order.
func Tiers() []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	return out
}

// Lookup returns the tier whose range contains totalPoints. Total over all
// inputs: negative values clamp to the first tier, anything at or above the
// top tier's minimum lands in the top tier.
func Lookup(totalPoints int) Tier {
	if totalPoints < 0 {
		totalPoints = 0
	}
	for _, t := range tiers {
		if t.MaxPoints == Unbounded || totalPoints <= t.MaxPoints {
			return t
		}
	}
	// Unreachable while the table ends with an unbounded tier.
	return tiers[len(tiers)-1]
}

// Next returns the tier after t, or false when t is the top tier.
func Next(t Tier) (Tier, bool) {
	for i, cur := range tiers {
		if cur.Name == t.Name {
			if i+1 < len(tiers) {
				return tiers[i+1], true
			}
			return Tier{}, false
		}
	}
	return Tier{}, false
}

// Progress returns the percentage progress from the current tier toward the
// next one, clamped to [0, 100]. The second result is false at the top tier,
// where progress is undefined.
func Progress(totalPoints int) (float64, bool) {
	cur := Lookup(totalPoints)
	next, ok := Next(cur)
	if !ok {
		return 0, false
	}

	span := next.MinPoints - cur.MinPoints
	if span <= 0 {
		return 0, false
	}
	pct := float64(totalPoints-cur.MinPoints) / float64(span) * 100
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return pct, true
}
