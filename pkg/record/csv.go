package record

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Canonical CSV column names.
const (
	colName             = "name"
	colX                = "coordinates.x"
	colY                = "coordinates.y"
	colCarID            = "car.id"
	colCarName          = "car.name"
	colRealHero         = "realHero"
	colHasToothpick     = "hasToothpick"
	colMood             = "mood"
	colImpactSpeed      = "impactSpeed"
	colMinutesOfWaiting = "minutesOfWaiting"
	colWeaponType       = "weaponType"
)

// csvAliases maps accepted header spellings (lowercased) to canonical columns.
var csvAliases = map[string]string{
	"name":             colName,
	"coordinates.x":    colX,
	"x":                colX,
	"coordinates.y":    colY,
	"y":                colY,
	"car.id":           colCarID,
	"carid":            colCarID,
	"car.name":         colCarName,
	"carname":          colCarName,
	"realhero":         colRealHero,
	"hastoothpick":     colHasToothpick,
	"mood":             colMood,
	"impactspeed":      colImpactSpeed,
	"minutesofwaiting": colMinutesOfWaiting,
	"weapontype":       colWeaponType,
}

// ParseCSV decodes a header-led CSV document. Blank lines are skipped.
// The first malformed line aborts the whole parse.
func ParseCSV(data []byte) ([]Candidate, error) {
	decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return nil, &ParseError{Format: FormatCSV, Err: fmt.Errorf("decode: %w", err)}
	}

	lines := strings.Split(string(decoded), "\n")
	cols, err := parseHeader(lines[0])
	if err != nil {
		return nil, &ParseError{Format: FormatCSV, Line: 1, Err: err}
	}

	var out []Candidate
	for i := 1; i < len(lines); i++ {
		line := strings.TrimRight(lines[i], "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		row := csvRow{cols: cols, fields: splitFields(line)}
		c, err := row.candidate()
		if err != nil {
			return nil, &ParseError{Format: FormatCSV, Line: i + 1, Err: err}
		}
		out = append(out, c)
	}
	normalizeNames(out)
	return out, nil
}

func parseHeader(line string) (map[string]int, error) {
	cols := make(map[string]int)
	for i, h := range splitFields(strings.TrimRight(line, "\r")) {
		if canon, ok := csvAliases[strings.ToLower(h)]; ok {
			if _, dup := cols[canon]; dup {
				return nil, fmt.Errorf("duplicate column %q", canon)
			}
			cols[canon] = i
		}
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("header has no recognized columns")
	}
	return cols, nil
}

// splitFields splits on commas outside double quotes. Quote characters
// toggle the quoted state and are dropped; fields are trimmed.
func splitFields(line string) []string {
	var fields []string
	var sb strings.Builder
	inQuotes := false
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(sb.String()))
			sb.Reset()
		default:
			sb.WriteRune(r)
		}
	}
	return append(fields, strings.TrimSpace(sb.String()))
}

type csvRow struct {
	cols   map[string]int
	fields []string
}

// value returns the trimmed field for col; empty fields are reported absent.
func (r csvRow) value(col string) (string, bool) {
	i, ok := r.cols[col]
	if !ok || i >= len(r.fields) || r.fields[i] == "" {
		return "", false
	}
	return r.fields[i], true
}

// optional is value with the literal "null" treated as absent.
func (r csvRow) optional(col string) (string, bool) {
	v, ok := r.value(col)
	if ok && strings.EqualFold(v, "null") {
		return "", false
	}
	return v, ok
}

func (r csvRow) candidate() (Candidate, error) {
	var c Candidate

	if v, ok := r.value(colName); ok {
		c.Name = &v
	}

	x, err := r.requiredInt(colX)
	if err != nil {
		return c, err
	}
	y, err := r.requiredFloat(colY)
	if err != nil {
		return c, err
	}
	c.Coordinates = &Coordinates{X: &x, Y: &y}

	if v, ok := r.optional(colCarID); ok {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c, &FieldError{Field: colCarID, Msg: fmt.Sprintf("invalid integer for %s: %q", colCarID, v)}
		}
		c.Car = &CarRef{ID: &id}
	}
	if v, ok := r.optional(colCarName); ok {
		if c.Car == nil {
			c.Car = &CarRef{}
		}
		c.Car.Name = &v
	}

	v, ok := r.value(colRealHero)
	if !ok {
		return c, missing(colRealHero)
	}
	hero, err := parseBool(colRealHero, v)
	if err != nil {
		return c, err
	}
	c.RealHero = &hero

	if v, ok := r.optional(colHasToothpick); ok {
		tp, err := parseBool(colHasToothpick, v)
		if err != nil {
			return c, err
		}
		c.HasToothpick = &tp
	}

	v, ok = r.value(colMood)
	if !ok {
		return c, missing(colMood)
	}
	mood, err := ParseMood(v)
	if err != nil {
		return c, err
	}
	c.Mood = &mood

	speed, err := r.requiredFloat(colImpactSpeed)
	if err != nil {
		return c, err
	}
	c.ImpactSpeed = &speed

	minutes, err := r.requiredFloat(colMinutesOfWaiting)
	if err != nil {
		return c, err
	}
	c.MinutesOfWaiting = &minutes

	if v, ok := r.optional(colWeaponType); ok {
		w, err := ParseWeaponType(v)
		if err != nil {
			return c, err
		}
		c.WeaponType = &w
	}

	return c, nil
}

func (r csvRow) requiredInt(col string) (int64, error) {
	v, ok := r.value(col)
	if !ok {
		return 0, missing(col)
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, &FieldError{Field: col, Msg: fmt.Sprintf("invalid integer for %s: %q", col, v)}
	}
	return n, nil
}

func (r csvRow) requiredFloat(col string) (float64, error) {
	v, ok := r.value(col)
	if !ok {
		return 0, missing(col)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &FieldError{Field: col, Msg: fmt.Sprintf("invalid number for %s: %q", col, v)}
	}
	return f, nil
}

func parseBool(col, v string) (bool, error) {
	switch {
	case strings.EqualFold(v, "true"):
		return true, nil
	case strings.EqualFold(v, "false"):
		return false, nil
	default:
		return false, &FieldError{Field: col, Msg: fmt.Sprintf("invalid boolean for %s: %q (expected true or false)", col, v)}
	}
}
