package engine

import "github.com/riorajhon/lotteryd/pkg/draws"

// The history recorder derives the appearance-log entries a draw adds. Gaps
// are computed from the pre-update last-seen values, so recording must run
// before Apply advances the state.

// recordNumbers produces one appearance per drawn number, for each pool.
func (e *Engine) recordNumbers(st *State, d draws.Draw, idx int) []NumberAppearance {
	out := make([]NumberAppearance, 0, len(d.Primary)+len(d.Secondary))
	for _, n := range d.Primary {
		out = append(out, NumberAppearance{
			Pool:       e.cfg.Primary.Name,
			Number:     n,
			Appearance: appearanceFor(st.Primary.LastSeen[e.cfg.Primary.Offset(n)], idx, d),
		})
	}
	if e.cfg.HasSecondary() {
		for _, n := range d.Secondary {
			out = append(out, NumberAppearance{
				Pool:       e.cfg.Secondary.Name,
				Number:     n,
				Appearance: appearanceFor(st.Secondary.LastSeen[e.cfg.Secondary.Offset(n)], idx, d),
			})
		}
	}
	return out
}

// recordCombos produces one appearance per tracked combination present in
// the draw's primary numbers. Combinations are canonicalized by ascending
// sort, so {7,3} and {3,7} land in the same history.
func (e *Engine) recordCombos(st *State, d draws.Draw, idx int) []ComboAppearance {
	var out []ComboAppearance
	sorted := sortedCopy(d.Primary)
	for _, degree := range e.cfg.ComboDegrees {
		forEachCombination(sorted, degree, func(members []int) {
			combo := NewCombo(members)
			last := neverSeen
			if seen, ok := st.Combos[degree][combo]; ok {
				last = seen
			}
			out = append(out, ComboAppearance{
				Degree:     degree,
				Combo:      combo.Members(degree),
				Appearance: appearanceFor(last, idx, d),
			})
		})
	}
	return out
}

func appearanceFor(last, idx int, d draws.Draw) Appearance {
	app := Appearance{
		DrawIndex: idx,
		DrawID:    d.ID,
		Date:      d.Date,
	}
	if last != neverSeen {
		gap := idx - last
		app.Gap = &gap
	}
	return app
}
