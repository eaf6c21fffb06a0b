package engine

import (
	"context"
	"fmt"

	"github.com/riorajhon/lotteryd/pkg/draws"
)

// Extend applies new draws to reconstructed state, one at a time, producing
// exactly the artifacts a full rebuild over the complete history would have
// produced for those indices. Draws before the state's position are never
// touched.
//
// Every new draw's date must be strictly after the reconstructed snapshot's
// date and the batch must be ordered by date; a violation is fatal for the
// run, since processing the draw would break the no-look-ahead invariant.
// The caller re-runs a full rebuild in that case.
func (e *Engine) Extend(ctx context.Context, st *State, ds []draws.Draw, sink Sink) error {
	boundary := ""
	if st.Prev != nil {
		boundary = st.Prev.Date
	}

	lastDate := boundary
	for i := range ds {
		if err := ctx.Err(); err != nil {
			return err
		}

		d := ds[i]
		if boundary != "" && d.Date <= boundary {
			return fmt.Errorf("%w: draw %s dated %s is not after the last snapshot date %s",
				ErrDrawOrder, d.ID, d.Date, boundary)
		}
		if d.Date < lastDate {
			return fmt.Errorf("%w: draw %s dated %s precedes the previous new draw dated %s",
				ErrDrawOrder, d.ID, d.Date, lastDate)
		}

		res, err := e.Stage(st, d)
		if err != nil {
			return err
		}
		if err := sink.Commit(ctx, res); err != nil {
			return fmt.Errorf("committing draw %s (index %d): %w", d.ID, st.NextIndex, err)
		}
		e.Apply(st, d)
		lastDate = d.Date
	}
	return nil
}
