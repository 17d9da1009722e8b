// Package humans stores imported Human records in SQLite.
package humans

import "time"

// Coordinates is a stored location.
type Coordinates struct {
	ID int64   `json:"id"`
	X  int64   `json:"x"`
	Y  float64 `json:"y"`
}

// Car is a stored car. A human references exactly one.
type Car struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Human is a persisted record.
type Human struct {
	ID               int64       `json:"id"`
	Name             string      `json:"name"`
	Coordinates      Coordinates `json:"coordinates"`
	Car              Car         `json:"car"`
	RealHero         bool        `json:"realHero"`
	HasToothpick     *bool       `json:"hasToothpick,omitempty"`
	Mood             string      `json:"mood"`
	ImpactSpeed      float64     `json:"impactSpeed"`
	MinutesOfWaiting float64     `json:"minutesOfWaiting"`
	WeaponType       *string     `json:"weaponType,omitempty"`
	Owner            string      `json:"owner"`
	CreatedAt        time.Time   `json:"createdAt"`
}

// Filter specifies criteria for listing humans.
type Filter struct {
	Owner  *string
	Limit  int
	Offset int
}
