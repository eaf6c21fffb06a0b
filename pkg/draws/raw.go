package draws

import (
	"regexp"
	"strconv"
	"strings"
)

// RawDraw is one draw record as stored in the per-game source collection.
// Upstream fields are kept verbatim; Numbers, Complementario, Reintegro and
// JokerCombinacion are filled in by normalization before persisting.
type RawDraw struct {
	DrawID          string     `json:"id_sorteo" bson:"id_sorteo"`
	GameID          string     `json:"game_id" bson:"game_id"`
	Date            string     `json:"fecha_sorteo" bson:"fecha_sorteo"` // "YYYY-MM-DD HH:MM:SS"
	Combinacion     string     `json:"combinacion" bson:"combinacion"`
	CombinacionActa string     `json:"combinacion_acta,omitempty" bson:"combinacion_acta,omitempty"`
	PremioBote      string     `json:"premio_bote,omitempty" bson:"premio_bote,omitempty"`
	Apuestas        string     `json:"apuestas,omitempty" bson:"apuestas,omitempty"`
	Premios         string     `json:"premios,omitempty" bson:"premios,omitempty"`
	Recaudacion     string     `json:"recaudacion,omitempty" bson:"recaudacion,omitempty"`
	Joker           *RawAddon  `json:"joker,omitempty" bson:"joker,omitempty"`
	Millon          *RawAddon  `json:"millon,omitempty" bson:"millon,omitempty"`

	Numbers          []int   `json:"numbers,omitempty" bson:"numbers,omitempty"`
	Complementario   *int    `json:"complementario,omitempty" bson:"complementario,omitempty"`
	Reintegro        *int    `json:"reintegro,omitempty" bson:"reintegro,omitempty"`
	JokerCombinacion *string `json:"joker_combinacion,omitempty" bson:"joker_combinacion,omitempty"`
}

// RawAddon carries the add-on game block (joker for La Primitiva, millon for
// Euromillones).
type RawAddon struct {
	Combinacion string `json:"combinacion" bson:"combinacion"`
}

// DateOnly returns the YYYY-MM-DD part of the record's timestamp.
func (r *RawDraw) DateOnly() string {
	date := strings.TrimSpace(r.Date)
	if i := strings.IndexByte(date, ' '); i >= 0 {
		date = date[:i]
	}
	return date
}

var (
	complementarioRe = regexp.MustCompile(`C\((\d+)\)`)
	reintegroRe      = regexp.MustCompile(`R\((\d+)\)`)
	mainPartSplitRe  = regexp.MustCompile(`\s+C\(|\s+R\(`)
	tokenSplitRe     = regexp.MustCompile(`[\s\-]+`)
)

// Combination is the parsed form of a combinacion string such as
// "04 - 12 - 16 - 37 - 39 - 45 C(44) R(9)".
type Combination struct {
	Numbers        []int
	Complementario *int
	Reintegro      *int
}

// ParseCombinacion extracts the drawn numbers and the C/R annotations from a
// combinacion string.
func ParseCombinacion(combinacion string) Combination {
	var out Combination
	if combinacion == "" {
		return out
	}
	if m := complementarioRe.FindStringSubmatch(combinacion); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			out.Complementario = &v
		}
	}
	if m := reintegroRe.FindStringSubmatch(combinacion); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			out.Reintegro = &v
		}
	}
	mainPart := strings.TrimSpace(mainPartSplitRe.Split(combinacion, 2)[0])
	for _, part := range strings.Split(mainPart, "-") {
		part = strings.TrimSpace(part)
		if v, err := strconv.Atoi(part); err == nil && v >= 0 {
			out.Numbers = append(out.Numbers, v)
		}
	}
	return out
}

// NumericTokens extracts every integer token from a string, splitting on
// hyphens and whitespace. Used for combinacion_acta strings where the pool
// split is positional.
func NumericTokens(s string) []int {
	var out []int
	for _, part := range tokenSplitRe.Split(strings.TrimSpace(s), -1) {
		if v, err := strconv.Atoi(part); err == nil && v >= 0 {
			out = append(out, v)
		}
	}
	return out
}

// Normalize fills the parsed fields of a raw record from its combinacion and
// add-on blocks. It never rejects; rejection happens at the Draw boundary.
func (r *RawDraw) Normalize() {
	parsed := ParseCombinacion(r.Combinacion)
	r.Numbers = parsed.Numbers
	r.Complementario = parsed.Complementario
	r.Reintegro = parsed.Reintegro
	if r.Joker != nil && r.Joker.Combinacion != "" {
		c := r.Joker.Combinacion
		r.JokerCombinacion = &c
	} else if r.Millon != nil && r.Millon.Combinacion != "" {
		c := r.Millon.Combinacion
		r.JokerCombinacion = &c
	}
}
