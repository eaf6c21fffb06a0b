// Package lottery defines the static configuration of the supported lottery games.
package lottery

import (
	"errors"
	"fmt"
)

var (
	// ErrPoolRange is returned when a pool's range is empty or inverted
	ErrPoolRange = errors.New("pool range must satisfy min <= max")
	// ErrPoolDrawSize is returned when a pool's draw size is not positive or exceeds the pool
	ErrPoolDrawSize = errors.New("pool draw size must be positive and fit the pool range")
	// ErrPoolName is returned when a pool has no name
	ErrPoolName = errors.New("pool name is required")
	// ErrComboDegree is returned when a combination degree cannot be produced from the primary draw
	ErrComboDegree = errors.New("combination degree must be between 2 and the primary draw size")
)

// Pool describes one number pool of a game: a contiguous inclusive range and
// how many numbers are drawn from it per event.
type Pool struct {
	Name     string `yaml:"name"`
	Min      int    `yaml:"min"`
	Max      int    `yaml:"max"`
	DrawSize int    `yaml:"drawSize"`
}

// Size returns the number of distinct values in the pool.
func (p Pool) Size() int {
	return p.Max - p.Min + 1
}

// Contains reports whether n is a valid value for the pool.
func (p Pool) Contains(n int) bool {
	return n >= p.Min && n <= p.Max
}

// Offset maps a pool value to its position in ascending-ordered arrays.
func (p Pool) Offset(n int) int {
	return n - p.Min
}

// Number is the inverse of Offset.
func (p Pool) Number(offset int) int {
	return p.Min + offset
}

// Validate validates the pool definition.
func (p Pool) Validate() error {
	if p.Name == "" {
		return ErrPoolName
	}
	if p.Min > p.Max {
		return fmt.Errorf("%w: pool %s has range [%d,%d]", ErrPoolRange, p.Name, p.Min, p.Max)
	}
	if p.DrawSize <= 0 || p.DrawSize > p.Size() {
		return fmt.Errorf("%w: pool %s draws %d of %d", ErrPoolDrawSize, p.Name, p.DrawSize, p.Size())
	}
	return nil
}

// Config is the static definition of one lottery game. Primary is always
// present; Secondary is nil for games without a bonus pool. ComboDegrees
// lists the combination sizes tracked for the primary pool.
type Config struct {
	// Slug identifies the game in URLs, CLI flags and task payloads
	Slug string `yaml:"slug"`
	// DisplayName is the human-readable game name
	DisplayName string `yaml:"displayName"`
	// GameID is the upstream identifier used by the draw source
	GameID string `yaml:"gameId"`
	// ResultsPath is the upstream results page path for the game
	ResultsPath string `yaml:"resultsPath"`

	Primary      Pool  `yaml:"primary"`
	Secondary    *Pool `yaml:"secondary,omitempty"`
	ComboDegrees []int `yaml:"comboDegrees"`

	// HotColdCount is the truncation length of hot/cold rankings
	HotColdCount int `yaml:"hotColdCount" default:"5"`
}

// HasSecondary reports whether the game draws from a secondary pool.
func (c *Config) HasSecondary() bool {
	return c.Secondary != nil && c.Secondary.DrawSize > 0
}

// Pools returns the game's pools, primary first.
func (c *Config) Pools() []Pool {
	if !c.HasSecondary() {
		return []Pool{c.Primary}
	}
	return []Pool{c.Primary, *c.Secondary}
}

// Validate validates the game definition.
func (c *Config) Validate() error {
	if c.Slug == "" {
		return errors.New("lottery slug is required")
	}
	if err := c.Primary.Validate(); err != nil {
		return err
	}
	if c.Secondary != nil {
		if err := c.Secondary.Validate(); err != nil {
			return err
		}
	}
	for _, degree := range c.ComboDegrees {
		if degree < 2 || degree > c.Primary.DrawSize {
			return fmt.Errorf("%w: got %d for draw size %d", ErrComboDegree, degree, c.Primary.DrawSize)
		}
	}
	if c.HotColdCount <= 0 {
		return errors.New("hotColdCount must be positive")
	}
	return nil
}
