package engine

import (
	"fmt"

	"github.com/riorajhon/lotteryd/pkg/lottery"
)

// Reconstruct rebuilds aggregation state equivalent to what a full rebuild
// would hold immediately after the snapshot's draw, using only the last
// persisted snapshot and the last appearance per tracked combination. The
// snapshot's arrays are pre-draw state, so they are advanced by the
// snapshot's own numbers to reach post-draw state.
//
// A shape mismatch between the persisted arrays and the configured pools is
// fatal: no partial reconstruction is attempted.
func (e *Engine) Reconstruct(snap *Snapshot, comboLastSeen map[int]map[Combo]int) (*State, error) {
	st := e.NewState()

	if err := reconstructPool(e.cfg.Primary, snap.PrimaryFreq, snap.PrimaryGaps, snap.Primary, snap.DrawIndex, &st.Primary); err != nil {
		return nil, err
	}
	if e.cfg.HasSecondary() {
		if err := reconstructPool(*e.cfg.Secondary, snap.SecondaryFreq, snap.SecondaryGaps, snap.Secondary, snap.DrawIndex, &st.Secondary); err != nil {
			return nil, err
		}
	}

	for _, degree := range e.cfg.ComboDegrees {
		for combo, last := range comboLastSeen[degree] {
			st.Combos[degree][combo] = last
		}
	}

	st.NextIndex = snap.DrawIndex + 1
	st.Prev = &PrevDraw{
		ID:        snap.DrawID,
		Date:      snap.DrawDate,
		Weekday:   snap.Weekday,
		Primary:   sliceCopy(snap.Primary),
		Secondary: sliceCopy(snap.Secondary),
	}
	return st, nil
}

func reconstructPool(pool lottery.Pool, freq []int, gaps []*int, drawn []int, drawIndex int, out *PoolState) error {
	if len(freq) != pool.Size() {
		return fmt.Errorf("%w: pool %s frequency array has %d entries, want %d",
			ErrStateShape, pool.Name, len(freq), pool.Size())
	}
	if len(gaps) != pool.Size() {
		return fmt.Errorf("%w: pool %s gap array has %d entries, want %d",
			ErrStateShape, pool.Name, len(gaps), pool.Size())
	}

	inDraw := make(map[int]bool, len(drawn))
	for _, n := range drawn {
		inDraw[n] = true
	}

	for off := 0; off < pool.Size(); off++ {
		n := pool.Number(off)
		out.Freq[off] = freq[off]
		if inDraw[n] {
			// The persisted arrays predate the snapshot's own draw
			out.Freq[off]++
			out.LastSeen[off] = drawIndex
			continue
		}
		if gap := gaps[off]; gap != nil {
			out.LastSeen[off] = drawIndex - *gap
		} else {
			out.LastSeen[off] = neverSeen
		}
	}
	return nil
}
