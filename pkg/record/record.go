// Package record parses bulk upload payloads into unvalidated human candidates.
package record

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Format identifies the encoding of an upload.
type Format string

const (
	FormatCSV  Format = "CSV"
	FormatJSON Format = "JSON"
)

// FormatFromFileName derives the format from the file suffix (case-insensitive).
// Only .csv and .json are accepted.
func FormatFromFileName(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// Coordinates is the parsed location of a candidate.
type Coordinates struct {
	X *int64   `json:"x"`
	Y *float64 `json:"y"`
}

// CarRef references a car either by an existing ID or by name for a new car.
type CarRef struct {
	ID   *int64  `json:"id,omitempty"`
	Name *string `json:"name,omitempty"`
}

// Candidate is a parsed record that has not been validated yet.
// Nil fields were absent in the source.
type Candidate struct {
	Name             *string      `json:"name"`
	Coordinates      *Coordinates `json:"coordinates"`
	Car              *CarRef      `json:"car"`
	RealHero         *bool        `json:"realHero"`
	HasToothpick     *bool        `json:"hasToothpick,omitempty"`
	Mood             *Mood        `json:"mood"`
	ImpactSpeed      *float64     `json:"impactSpeed"`
	MinutesOfWaiting *float64     `json:"minutesOfWaiting"`
	WeaponType       *WeaponType  `json:"weaponType,omitempty"`
}

// Parse decodes data in the given format. On failure no candidates are
// returned and the error is a *ParseError.
func Parse(data []byte, format Format) ([]Candidate, error) {
	switch format {
	case FormatCSV:
		return ParseCSV(data)
	case FormatJSON:
		return ParseJSON(data)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// NormalizeName trims surrounding space and applies NFC so that equivalent
// spellings of a name compare equal.
func NormalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func normalizeNames(cs []Candidate) {
	for i := range cs {
		if cs[i].Name != nil {
			n := NormalizeName(*cs[i].Name)
			cs[i].Name = &n
		}
		if cs[i].Car != nil && cs[i].Car.Name != nil {
			n := strings.TrimSpace(*cs[i].Car.Name)
			cs[i].Car.Name = &n
		}
	}
}
