package humans

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/vmunix/heroimport/internal/migrations"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err, "open db")
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(migrations.InitialSQL)
	require.NoError(t, err, "apply schema")
	return db
}

// ptr is a helper to create pointer to value
func ptr[T any](v T) *T {
	return &v
}

func newHuman(name string, x int64, y float64) *Human {
	return &Human{
		Name:             name,
		Coordinates:      Coordinates{X: x, Y: y},
		Car:              Car{Name: "Lada"},
		RealHero:         false,
		Mood:             "CALM",
		ImpactSpeed:      10,
		MinutesOfWaiting: 1,
		Owner:            "alice",
	}
}
