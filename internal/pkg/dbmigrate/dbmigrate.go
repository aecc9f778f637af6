// Package dbmigrate applies embedded SQL migrations with golang-migrate.
package dbmigrate

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // registers postgres://
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Directions accepted by Run.
const (
	DirectionUp   = "up"
	DirectionDown = "down"
)

var (
	// ErrDSNRequired is returned when Run gets an empty DSN.
	ErrDSNRequired = errors.New("dbmigrate: database url is required")
	// ErrInvalidDirection is returned for directions other than up and down.
	ErrInvalidDirection = errors.New("dbmigrate: direction must be up or down")
)

// Source is a set of migration files: fsys holds "<version>_<name>.up.sql"
// and ".down.sql" files under dir.
type Source struct {
	FS  fs.FS
	Dir string
}

// Run migrates the database at dsn in direction. Being already at the target
// version is not an error.
func Run(dsn, direction string, src Source) error {
	if dsn == "" {
		return ErrDSNRequired
	}
	if direction != DirectionUp && direction != DirectionDown {
		return fmt.Errorf("%w, got %q", ErrInvalidDirection, direction)
	}

	sourceDriver, err := iofs.New(src.FS, src.Dir)
	if err != nil {
		return fmt.Errorf("dbmigrate: source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, dsn)
	if err != nil {
		return fmt.Errorf("dbmigrate: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			slog.Warn("dbmigrate: close", "source_error", srcErr, "database_error", dbErr)
		}
	}()

	if direction == DirectionUp {
		err = m.Up()
	} else {
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("dbmigrate: %s: %w", direction, err)
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return fmt.Errorf("dbmigrate: version: %w", verr)
	}
	slog.Info("database migrated", "direction", direction, "version", version, "dirty", dirty)

	return nil
}
