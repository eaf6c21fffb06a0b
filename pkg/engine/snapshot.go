package engine

import "context"

// Snapshot is the per-draw feature document: everything derived from draws
// strictly before DrawIndex, plus the draw's own numbers and a reference to
// the previous draw. Pool naming is applied by the persistence adapter; the
// engine only distinguishes primary and secondary.
type Snapshot struct {
	DrawID    string
	DrawDate  string
	Weekday   string
	DrawIndex int

	Primary   []int
	Secondary []int

	// Previous-draw reference, nil/empty at index 0
	PrevDrawID    *string
	PrevDrawDate  *string
	PrevWeekday   *string
	PrevPrimary   []int
	PrevSecondary []int

	// Rankings over frequencies before this draw, empty at index 0
	HotPrimary    []int
	ColdPrimary   []int
	HotSecondary  []int
	ColdSecondary []int

	// Per-number arrays ordered by ascending number, values as of before
	// this draw. A nil gap means the number has never appeared.
	PrimaryFreq   []int
	SecondaryFreq []int
	PrimaryGaps   []*int
	SecondaryGaps []*int
}

// Appearance is one entry of an appearance log. Gap is the number of draws
// since the previous appearance, nil for the first.
type Appearance struct {
	DrawIndex int
	DrawID    string
	Date      string
	Gap       *int
}

// NumberAppearance is an appearance of a single number in a named pool.
type NumberAppearance struct {
	Pool   string
	Number int
	Appearance
}

// ComboAppearance is an appearance of a primary-pool combination.
type ComboAppearance struct {
	Degree int
	Combo  []int // ascending
	Appearance
}

// Result bundles everything produced for one draw. A result is committed as
// one unit: the snapshot upsert and every history append happen before state
// advances past the draw.
type Result struct {
	Snapshot Snapshot
	Numbers  []NumberAppearance
	Combos   []ComboAppearance
}

// Sink receives per-draw results. Commits must be idempotent by draw
// identity so an interrupted run can safely replay its last draw.
type Sink interface {
	Commit(ctx context.Context, res *Result) error
}
