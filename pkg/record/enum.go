package record

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hbollon/go-edlib"
)

// Mood is the emotional state of a human.
type Mood string

const (
	MoodSadness Mood = "SADNESS"
	MoodCalm    Mood = "CALM"
	MoodRage    Mood = "RAGE"
)

// Moods lists the accepted mood values in declaration order.
var Moods = []Mood{MoodSadness, MoodCalm, MoodRage}

// WeaponType is the optional weapon carried by a human.
type WeaponType string

const (
	WeaponHammer     WeaponType = "HAMMER"
	WeaponRifle      WeaponType = "RIFLE"
	WeaponMachineGun WeaponType = "MACHINE_GUN"
	WeaponBat        WeaponType = "BAT"
)

// WeaponTypes lists the accepted weapon values in declaration order.
var WeaponTypes = []WeaponType{WeaponHammer, WeaponRifle, WeaponMachineGun, WeaponBat}

// suggestThreshold is the minimum Jaro-Winkler similarity for a "did you mean" hint.
const suggestThreshold = 0.8

// ParseMood converts s (case-insensitive) to a Mood.
func ParseMood(s string) (Mood, error) {
	return parseEnum("mood", s, Moods)
}

// ParseWeaponType converts s (case-insensitive) to a WeaponType.
func ParseWeaponType(s string) (WeaponType, error) {
	return parseEnum("weapon type", s, WeaponTypes)
}

// Valid reports whether m is one of the enumerated moods.
func (m Mood) Valid() bool {
	_, err := ParseMood(string(m))
	return err == nil
}

func (m *Mood) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("mood must be a string: %w", err)
	}
	v, err := ParseMood(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

func (w *WeaponType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("weaponType must be a string: %w", err)
	}
	v, err := ParseWeaponType(s)
	if err != nil {
		return err
	}
	*w = v
	return nil
}

func parseEnum[T ~string](kind, s string, valid []T) (T, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for _, v := range valid {
		if string(v) == upper {
			return v, nil
		}
	}

	names := make([]string, len(valid))
	for i, v := range valid {
		names[i] = string(v)
	}
	msg := fmt.Sprintf("invalid %s value: %s. Valid values: %s", kind, s, strings.Join(names, ", "))
	if hint := suggest(upper, names); hint != "" {
		msg += fmt.Sprintf(" (did you mean %s?)", hint)
	}
	return "", &FieldError{Field: kind, Msg: msg}
}

// suggest returns the closest candidate to s, or "" when nothing is close enough.
func suggest(s string, candidates []string) string {
	if s == "" {
		return ""
	}
	var best string
	var bestScore float32
	for _, c := range candidates {
		score := edlib.JaroWinklerSimilarity(s, c)
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	if bestScore < suggestThreshold {
		return ""
	}
	return best
}
