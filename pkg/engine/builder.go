package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/riorajhon/lotteryd/pkg/draws"
	"github.com/riorajhon/lotteryd/pkg/lottery"
)

// Stage computes the full result for the next draw from the current state
// without mutating it. Every derived field reflects only draws with a lower
// index; the caller commits the result and then calls Apply.
func (e *Engine) Stage(st *State, d draws.Draw) (*Result, error) {
	if err := d.Validate(e.cfg); err != nil {
		return nil, fmt.Errorf("staging draw: %w", err)
	}

	idx := st.NextIndex
	snap := Snapshot{
		DrawID:    d.ID,
		DrawDate:  d.Date,
		Weekday:   d.Weekday(),
		DrawIndex: idx,
		Primary:   sliceCopy(d.Primary),
		Secondary: sliceCopy(d.Secondary),

		PrimaryFreq: sliceCopy(st.Primary.Freq),
		PrimaryGaps: gapArray(st.Primary.LastSeen, idx),
	}

	if prev := st.Prev; prev != nil {
		snap.PrevDrawID = strPtr(prev.ID)
		snap.PrevDrawDate = strPtr(prev.Date)
		snap.PrevWeekday = strPtr(prev.Weekday)
		snap.PrevPrimary = sliceCopy(prev.Primary)
		snap.PrevSecondary = sliceCopy(prev.Secondary)
	}

	if idx > 0 {
		snap.HotPrimary, snap.ColdPrimary = hotCold(e.cfg.Primary, st.Primary.Freq, e.cfg.HotColdCount)
	}

	if e.cfg.HasSecondary() {
		snap.SecondaryFreq = sliceCopy(st.Secondary.Freq)
		snap.SecondaryGaps = gapArray(st.Secondary.LastSeen, idx)
		if idx > 0 {
			snap.HotSecondary, snap.ColdSecondary = hotCold(*e.cfg.Secondary, st.Secondary.Freq, e.cfg.HotColdCount)
		}
	}

	res := &Result{Snapshot: snap}
	res.Numbers = e.recordNumbers(st, d, idx)
	res.Combos = e.recordCombos(st, d, idx)
	return res, nil
}

// Rebuild replays an already-sequenced draw history from index 0, committing
// one result per draw. On a commit error the state of the last committed
// draw is returned so callers can log the resume position; a re-run
// reproduces identical artifacts (commits are idempotent upserts).
func (e *Engine) Rebuild(ctx context.Context, ds []draws.Draw, sink Sink) (*State, error) {
	st := e.NewState()
	for i := range ds {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		res, err := e.Stage(st, ds[i])
		if err != nil {
			return st, err
		}
		if err := sink.Commit(ctx, res); err != nil {
			return st, fmt.Errorf("committing draw %s (index %d): %w", ds[i].ID, st.NextIndex, err)
		}
		e.Apply(st, ds[i])
	}
	return st, nil
}

// gapArray derives the pre-draw gap for every pool number: the distance from
// the last appearance to idx, nil if never seen.
func gapArray(lastSeen []int, idx int) []*int {
	out := make([]*int, len(lastSeen))
	for i, last := range lastSeen {
		if last == neverSeen {
			continue
		}
		gap := idx - last
		out[i] = &gap
	}
	return out
}

// hotCold ranks pool numbers by cumulative frequency. Ties break toward the
// smaller number in both directions: the stable sorts run over numbers
// enumerated ascending. Hot excludes numbers that have never appeared; cold
// does not, so zero-frequency numbers dominate early cold lists.
func hotCold(pool lottery.Pool, freq []int, limit int) (hot, cold []int) {
	asc := make([]int, pool.Size())
	desc := make([]int, pool.Size())
	for i := range asc {
		asc[i] = pool.Number(i)
		desc[i] = pool.Number(i)
	}

	sort.SliceStable(desc, func(i, j int) bool {
		return freq[pool.Offset(desc[i])] > freq[pool.Offset(desc[j])]
	})
	sort.SliceStable(asc, func(i, j int) bool {
		return freq[pool.Offset(asc[i])] < freq[pool.Offset(asc[j])]
	})

	hot = make([]int, 0, limit)
	for _, n := range desc {
		if freq[pool.Offset(n)] == 0 {
			continue
		}
		hot = append(hot, n)
		if len(hot) == limit {
			break
		}
	}

	if len(asc) > limit {
		asc = asc[:limit]
	}
	cold = asc
	return hot, cold
}

func strPtr(s string) *string {
	return &s
}
