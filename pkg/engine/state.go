// Package engine computes derived lottery statistics: per-draw feature
// snapshots, per-number appearance histories and pair/trio co-occurrence
// histories. All features for a draw are computed only from earlier draws,
// and the engine supports two equivalent modes: a full rebuild from draw
// zero and an incremental extension from reconstructed state.
package engine

import (
	"errors"
	"fmt"
	"sort"

	"github.com/riorajhon/lotteryd/pkg/draws"
	"github.com/riorajhon/lotteryd/pkg/lottery"
)

var (
	// ErrComboDegree is returned when a configured combination degree exceeds
	// what the engine can key
	ErrComboDegree = errors.New("unsupported combination degree")
	// ErrStateShape is returned when persisted arrays do not match the
	// configured pool sizes. Reconstruction must abort: proceeding would
	// silently corrupt every subsequently computed snapshot.
	ErrStateShape = errors.New("persisted state shape does not match pool configuration")
	// ErrDrawOrder is returned when an incremental draw does not extend the
	// committed sequence
	ErrDrawOrder = errors.New("draw does not extend the committed sequence")
)

// maxComboDegree bounds the combination sizes the fixed-width Combo key can
// hold.
const maxComboDegree = 4

// neverSeen marks a number or combination with no recorded appearance.
const neverSeen = -1

// Combo is a canonical combination key: the member numbers sorted ascending,
// unused trailing slots zero. Keys are only compared within one degree, so
// the zero padding cannot collide with real members.
type Combo [maxComboDegree]int

// NewCombo builds the canonical key for a set of numbers.
func NewCombo(nums []int) Combo {
	var c Combo
	copy(c[:], nums)
	sort.Ints(c[:len(nums)])
	return c
}

// Members returns the combination's numbers for the given degree.
func (c Combo) Members(degree int) []int {
	out := make([]int, degree)
	copy(out, c[:degree])
	return out
}

// PoolState holds the running per-number statistics of one pool, indexed by
// ascending number offset.
type PoolState struct {
	Freq     []int
	LastSeen []int // draw index of last appearance, neverSeen if none
}

func newPoolState(pool lottery.Pool) PoolState {
	ps := PoolState{
		Freq:     make([]int, pool.Size()),
		LastSeen: make([]int, pool.Size()),
	}
	for i := range ps.LastSeen {
		ps.LastSeen[i] = neverSeen
	}
	return ps
}

// PrevDraw is the snapshot-facing reference to the previously applied draw.
type PrevDraw struct {
	ID        string
	Date      string
	Weekday   string
	Primary   []int
	Secondary []int
}

// State is the aggregation state of one lottery between draws. It is owned
// by exactly one active run; the engine mutates it only through Apply, after
// the corresponding draw's artifacts have been committed.
type State struct {
	// NextIndex is the index the next applied draw will receive
	NextIndex int
	Primary   PoolState
	Secondary PoolState
	// Combos maps degree -> canonical combination -> last seen draw index.
	// Only combinations that have occurred exist as keys.
	Combos map[int]map[Combo]int
	// Prev references the last applied draw, nil before the first
	Prev *PrevDraw
}

// Engine computes features for one lottery configuration.
type Engine struct {
	cfg *lottery.Config
}

// New creates an engine for the given game.
func New(cfg *lottery.Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid lottery config: %w", err)
	}
	for _, degree := range cfg.ComboDegrees {
		if degree > maxComboDegree {
			return nil, fmt.Errorf("%w: %d", ErrComboDegree, degree)
		}
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns the engine's game definition.
func (e *Engine) Config() *lottery.Config {
	return e.cfg
}

// NewState returns empty aggregation state positioned before draw zero.
func (e *Engine) NewState() *State {
	st := &State{
		Primary: newPoolState(e.cfg.Primary),
		Combos:  make(map[int]map[Combo]int, len(e.cfg.ComboDegrees)),
	}
	if e.cfg.HasSecondary() {
		st.Secondary = newPoolState(*e.cfg.Secondary)
	}
	for _, degree := range e.cfg.ComboDegrees {
		st.Combos[degree] = make(map[Combo]int)
	}
	return st
}

// Apply advances state with a draw that has already been staged and
// committed: frequencies and last-seen indices move past the draw and the
// draw becomes the previous-draw reference.
func (e *Engine) Apply(st *State, d draws.Draw) {
	idx := st.NextIndex

	for _, n := range d.Primary {
		off := e.cfg.Primary.Offset(n)
		st.Primary.Freq[off]++
		st.Primary.LastSeen[off] = idx
	}
	if e.cfg.HasSecondary() {
		for _, n := range d.Secondary {
			off := e.cfg.Secondary.Offset(n)
			st.Secondary.Freq[off]++
			st.Secondary.LastSeen[off] = idx
		}
	}

	for _, degree := range e.cfg.ComboDegrees {
		forEachCombination(sortedCopy(d.Primary), degree, func(members []int) {
			st.Combos[degree][NewCombo(members)] = idx
		})
	}

	st.Prev = &PrevDraw{
		ID:        d.ID,
		Date:      d.Date,
		Weekday:   d.Weekday(),
		Primary:   sliceCopy(d.Primary),
		Secondary: sliceCopy(d.Secondary),
	}
	st.NextIndex = idx + 1
}

func sortedCopy(nums []int) []int {
	out := sliceCopy(nums)
	sort.Ints(out)
	return out
}

func sliceCopy(nums []int) []int {
	if nums == nil {
		return nil
	}
	out := make([]int, len(nums))
	copy(out, nums)
	return out
}

// forEachCombination visits every size-degree subset of nums in
// lexicographic order of positions.
func forEachCombination(nums []int, degree int, fn func([]int)) {
	if degree > len(nums) {
		return
	}
	members := make([]int, degree)
	var walk func(start, depth int)
	walk = func(start, depth int) {
		if depth == degree {
			fn(members)
			return
		}
		for i := start; i <= len(nums)-(degree-depth); i++ {
			members[depth] = nums[i]
			walk(i+1, depth+1)
		}
	}
	walk(0, 0)
}
