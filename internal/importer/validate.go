package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/vmunix/heroimport/internal/humans"
	"github.com/vmunix/heroimport/pkg/record"
)

// Field limits.
const (
	MaxX           = 112  // inclusive
	MinYExclusive  = -926 // y must be strictly greater
	MaxImpactSpeed = 345  // inclusive
)

// Validation rule identifiers carried in ValidationError.Rule.
const (
	RuleRequired          = "required"
	RuleRange             = "range"
	RuleEnum              = "enum"
	RuleReference         = "reference"
	RuleUniqueLocation    = "unique_name_coordinates"
	RuleUniqueHeroProfile = "unique_hero_speed_waiting"
)

// RecordLookup is the read side of the record store used for cross-record rules.
type RecordLookup interface {
	ExistsByNameAndCoordinates(ctx context.Context, name string, x int64, y float64) (bool, error)
	HeroExists(ctx context.Context, impactSpeed, minutesOfWaiting float64) (bool, error)
	CarExists(ctx context.Context, id int64) (bool, error)
}

// Validator checks candidates against field rules and stored records.
type Validator struct {
	lookup RecordLookup
}

// NewValidator creates a validator backed by lookup.
func NewValidator(lookup RecordLookup) *Validator {
	return &Validator{lookup: lookup}
}

func invalid(field, rule, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Rule: rule, Message: fmt.Sprintf(format, args...)}
}

// Validate returns the first violated rule as a *ValidationError, or a
// *PersistenceError if a lookup fails.
func (v *Validator) Validate(ctx context.Context, c record.Candidate) error {
	if err := checkFields(c); err != nil {
		return err
	}
	return v.checkStored(ctx, c)
}

func checkFields(c record.Candidate) error {
	if c.Name == nil || strings.TrimSpace(*c.Name) == "" {
		return invalid("name", RuleRequired, "name cannot be null or empty")
	}
	if c.Coordinates == nil {
		return invalid("coordinates", RuleRequired, "coordinates cannot be null")
	}
	if c.Coordinates.X == nil {
		return invalid("coordinates.x", RuleRequired, "x coordinate cannot be null")
	}
	if *c.Coordinates.X > MaxX {
		return invalid("coordinates.x", RuleRange, "x coordinate cannot exceed %d", MaxX)
	}
	if c.Coordinates.Y == nil {
		return invalid("coordinates.y", RuleRequired, "y coordinate cannot be null")
	}
	if *c.Coordinates.Y <= MinYExclusive {
		return invalid("coordinates.y", RuleRange, "y coordinate must be greater than %d", MinYExclusive)
	}
	if c.ImpactSpeed == nil {
		return invalid("impactSpeed", RuleRequired, "impact speed cannot be null")
	}
	if *c.ImpactSpeed > MaxImpactSpeed {
		return invalid("impactSpeed", RuleRange, "impact speed cannot exceed %d", MaxImpactSpeed)
	}
	if c.MinutesOfWaiting == nil {
		return invalid("minutesOfWaiting", RuleRequired, "minutes of waiting cannot be null")
	}
	if c.Mood == nil {
		return invalid("mood", RuleRequired, "mood cannot be null")
	}
	if !c.Mood.Valid() {
		return invalid("mood", RuleEnum, "invalid mood value: %s", *c.Mood)
	}
	if c.RealHero == nil {
		return invalid("realHero", RuleRequired, "real hero cannot be null")
	}
	if c.Car == nil || (c.Car.ID == nil && (c.Car.Name == nil || strings.TrimSpace(*c.Car.Name) == "")) {
		return invalid("car", RuleRequired, "car cannot be null")
	}
	return nil
}

func (v *Validator) checkStored(ctx context.Context, c record.Candidate) error {
	if c.Car.ID != nil {
		ok, err := v.lookup.CarExists(ctx, *c.Car.ID)
		if err != nil {
			return &PersistenceError{Op: "car lookup", Err: err}
		}
		if !ok {
			e := invalid("car.id", RuleReference, "car with id %d not found", *c.Car.ID)
			e.Err = humans.ErrNotFound
			return e
		}
	}

	name, x, y := *c.Name, *c.Coordinates.X, *c.Coordinates.Y
	dup, err := v.lookup.ExistsByNameAndCoordinates(ctx, name, x, y)
	if err != nil {
		return &PersistenceError{Op: "uniqueness lookup", Err: err}
	}
	if dup {
		return invalid("name", RuleUniqueLocation,
			"human with name '%s' and coordinates (%d, %g) already exists", name, x, y)
	}

	if *c.RealHero {
		speed, minutes := *c.ImpactSpeed, *c.MinutesOfWaiting
		dup, err := v.lookup.HeroExists(ctx, speed, minutes)
		if err != nil {
			return &PersistenceError{Op: "uniqueness lookup", Err: err}
		}
		if dup {
			return invalid("realHero", RuleUniqueHeroProfile,
				"hero with impact speed %g and minutes of waiting %g already exists", speed, minutes)
		}
	}
	return nil
}
