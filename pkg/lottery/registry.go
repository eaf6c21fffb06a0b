package lottery

import (
	"errors"
	"fmt"
)

// ErrUnknownLottery is returned when a slug does not match a registered game
var ErrUnknownLottery = errors.New("unknown lottery")

// Slugs of the built-in games.
const (
	SlugLaPrimitiva  = "la-primitiva"
	SlugEuromillones = "euromillones"
	SlugElGordo      = "el-gordo"
)

// LaPrimitiva draws 6 mains of 1-49 plus one reintegro of 0-9.
// The complementario is kept on raw documents but is not a pool.
func LaPrimitiva() *Config {
	return &Config{
		Slug:         SlugLaPrimitiva,
		DisplayName:  "La Primitiva",
		GameID:       "LAPR",
		ResultsPath:  "/es/resultados/la-primitiva",
		Primary:      Pool{Name: "main", Min: 1, Max: 49, DrawSize: 6},
		Secondary:    &Pool{Name: "reintegro", Min: 0, Max: 9, DrawSize: 1},
		ComboDegrees: []int{2, 3},
		HotColdCount: 5,
	}
}

// Euromillones draws 5 mains of 1-50 plus 2 lucky stars of 1-12.
func Euromillones() *Config {
	return &Config{
		Slug:         SlugEuromillones,
		DisplayName:  "Euromillones",
		GameID:       "EMIL",
		ResultsPath:  "/es/resultados/euromillones",
		Primary:      Pool{Name: "main", Min: 1, Max: 50, DrawSize: 5},
		Secondary:    &Pool{Name: "star", Min: 1, Max: 12, DrawSize: 2},
		ComboDegrees: []int{2, 3},
		HotColdCount: 5,
	}
}

// ElGordo draws 5 mains of 1-54 plus one clave of 0-9.
func ElGordo() *Config {
	return &Config{
		Slug:         SlugElGordo,
		DisplayName:  "El Gordo",
		GameID:       "ELGR",
		ResultsPath:  "/es/resultados/gordo-primitiva",
		Primary:      Pool{Name: "main", Min: 1, Max: 54, DrawSize: 5},
		Secondary:    &Pool{Name: "clave", Min: 0, Max: 9, DrawSize: 1},
		ComboDegrees: []int{2, 3},
		HotColdCount: 5,
	}
}

// DailyOrder is the fixed processing order of the daily pipeline.
func DailyOrder() []*Config {
	return []*Config{Euromillones(), LaPrimitiva(), ElGordo()}
}

// All returns every registered game.
func All() []*Config {
	return DailyOrder()
}

// BySlug resolves a game by its slug.
func BySlug(slug string) (*Config, error) {
	for _, cfg := range All() {
		if cfg.Slug == slug {
			return cfg, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownLottery, slug)
}
