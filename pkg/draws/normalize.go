package draws

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/riorajhon/lotteryd/pkg/lottery"
	"github.com/riorajhon/lotteryd/pkg/observability"
)

// Normalizer converts raw upstream records into canonical draws for one game.
// Records that cannot be converted into a valid draw are dropped and counted,
// never coerced.
type Normalizer struct {
	cfg *lottery.Config
	log logrus.FieldLogger
}

// NewNormalizer creates a normalizer for the given game.
func NewNormalizer(cfg *lottery.Config, log logrus.FieldLogger) *Normalizer {
	return &Normalizer{
		cfg: cfg,
		log: log.WithField("component", "normalizer").WithField("lottery", cfg.Slug),
	}
}

// Normalize converts one raw record into a canonical draw. The returned error
// means the record is malformed and must be skipped.
func (n *Normalizer) Normalize(raw *RawDraw) (Draw, error) {
	d := Draw{
		ID:   raw.DrawID,
		Date: raw.DateOnly(),
	}

	switch n.cfg.Slug {
	case lottery.SlugEuromillones:
		d.Primary, d.Secondary = n.splitPositional(raw)
	case lottery.SlugLaPrimitiva:
		d.Primary = n.clampPrimary(n.candidateNumbers(raw))
		if r := raw.Reintegro; r != nil && n.cfg.Secondary.Contains(*r) {
			d.Secondary = []int{*r}
		}
	case lottery.SlugElGordo:
		d.Primary = n.clampPrimary(n.candidateNumbers(raw))
		d.Secondary = n.elGordoClave(raw)
	default:
		d.Primary = n.clampPrimary(n.candidateNumbers(raw))
	}

	if err := d.Validate(n.cfg); err != nil {
		return Draw{}, fmt.Errorf("draw %q: %w", raw.DrawID, err)
	}
	return d, nil
}

// NormalizeAll converts a batch, returning the accepted draws and the number
// of dropped records. Dropping is not fatal; it is logged and counted for
// operator visibility.
func (n *Normalizer) NormalizeAll(raws []RawDraw) ([]Draw, int) {
	out := make([]Draw, 0, len(raws))
	dropped := 0
	for i := range raws {
		d, err := n.Normalize(&raws[i])
		if err != nil {
			dropped++
			observability.RecordDrawSkipped(n.cfg.Slug)
			n.log.WithError(err).Debug("Skipping malformed draw record")
			continue
		}
		out = append(out, d)
		observability.RecordDrawNormalized(n.cfg.Slug)
	}
	if dropped > 0 {
		n.log.WithFields(logrus.Fields{"dropped": dropped, "accepted": len(out)}).
			Warn("Dropped malformed draw records")
	}
	return out, dropped
}

// candidateNumbers returns the primary-number candidates of a record,
// preferring the already-parsed numbers, then the combinacion string.
func (n *Normalizer) candidateNumbers(raw *RawDraw) []int {
	if len(raw.Numbers) > 0 {
		return raw.Numbers
	}
	return ParseCombinacion(raw.Combinacion).Numbers
}

// clampPrimary keeps in-range values and trims extras to the draw size, so a
// record carrying trailing annotations still yields the drawn set. Too few
// values are left as-is and fail arity validation.
func (n *Normalizer) clampPrimary(nums []int) []int {
	out := make([]int, 0, n.cfg.Primary.DrawSize)
	for _, v := range nums {
		if n.cfg.Primary.Contains(v) {
			out = append(out, v)
			if len(out) == n.cfg.Primary.DrawSize {
				break
			}
		}
	}
	return out
}

// splitPositional handles games whose acta string carries both pools in
// order: the first k1 tokens are mains, the next k2 the secondary pool.
func (n *Normalizer) splitPositional(raw *RawDraw) (primary, secondary []int) {
	tokens := NumericTokens(raw.CombinacionActa)
	if len(tokens) == 0 {
		tokens = NumericTokens(raw.Combinacion)
	}
	if len(tokens) == 0 {
		tokens = raw.Numbers
	}

	k1 := n.cfg.Primary.DrawSize
	if len(tokens) < k1 {
		return nil, nil
	}
	for _, v := range tokens[:k1] {
		if n.cfg.Primary.Contains(v) {
			primary = append(primary, v)
		}
	}
	if !n.cfg.HasSecondary() {
		return primary, nil
	}
	k2 := n.cfg.Secondary.DrawSize
	if len(tokens) < k1+k2 {
		return primary, nil
	}
	for _, v := range tokens[k1 : k1+k2] {
		if n.cfg.Secondary.Contains(v) {
			secondary = append(secondary, v)
		}
	}
	return primary, secondary
}

// elGordoClave resolves the clave: the reintegro field upstream doubles as
// the clave, with the sixth parsed number as fallback.
func (n *Normalizer) elGordoClave(raw *RawDraw) []int {
	if r := raw.Reintegro; r != nil && n.cfg.Secondary.Contains(*r) {
		return []int{*r}
	}
	nums := raw.Numbers
	if len(nums) > n.cfg.Primary.DrawSize {
		if v := nums[n.cfg.Primary.DrawSize]; n.cfg.Secondary.Contains(v) {
			return []int{v}
		}
	}
	return nil
}

// Sequence orders draws ascending by date, ties broken by input order. The
// position in the returned slice is the draw's index. Re-running over the
// same input always yields the same ordering.
func Sequence(ds []Draw) []Draw {
	out := make([]Draw, len(ds))
	copy(out, ds)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date < out[j].Date
	})
	return out
}
