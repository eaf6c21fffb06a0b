// Package draws converts raw upstream draw records into canonical, validated
// draws ordered for the feature engine.
package draws

import (
	"errors"
	"fmt"
	"time"

	"github.com/riorajhon/lotteryd/pkg/lottery"
)

var (
	// ErrMissingID is returned when a draw has no identifier
	ErrMissingID = errors.New("draw id is required")
	// ErrMissingDate is returned when a draw has no date
	ErrMissingDate = errors.New("draw date is required")
	// ErrArity is returned when a pool does not contain exactly its draw size
	ErrArity = errors.New("wrong number of drawn values")
	// ErrOutOfRange is returned when a drawn value falls outside its pool
	ErrOutOfRange = errors.New("drawn value out of pool range")
)

// DateLayout is the canonical draw date format, sortable as a plain string.
const DateLayout = "2006-01-02"

// Draw is one canonical lottery event. Immutable once accepted; Primary and
// Secondary hold the drawn values of the respective pools.
type Draw struct {
	ID        string
	Date      string // YYYY-MM-DD
	Primary   []int
	Secondary []int
}

// Weekday returns the English weekday name of the draw date, or "" if the
// date does not parse.
func (d Draw) Weekday() string {
	return WeekdayName(d.Date)
}

// WeekdayName returns the English weekday name for a YYYY-MM-DD string.
func WeekdayName(date string) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return ""
	}
	return t.Weekday().String()
}

// Validate checks the draw against the game definition: exact arity and
// in-range values for each pool.
func (d Draw) Validate(cfg *lottery.Config) error {
	if d.ID == "" {
		return ErrMissingID
	}
	if d.Date == "" {
		return ErrMissingDate
	}
	if err := validatePool(cfg.Primary, d.Primary); err != nil {
		return err
	}
	if cfg.HasSecondary() {
		return validatePool(*cfg.Secondary, d.Secondary)
	}
	if len(d.Secondary) != 0 {
		return fmt.Errorf("%w: game %s has no secondary pool", ErrArity, cfg.Slug)
	}
	return nil
}

func validatePool(pool lottery.Pool, values []int) error {
	if len(values) != pool.DrawSize {
		return fmt.Errorf("%w: pool %s expects %d, got %d", ErrArity, pool.Name, pool.DrawSize, len(values))
	}
	for _, v := range values {
		if !pool.Contains(v) {
			return fmt.Errorf("%w: %d not in %s [%d,%d]", ErrOutOfRange, v, pool.Name, pool.Min, pool.Max)
		}
	}
	return nil
}
