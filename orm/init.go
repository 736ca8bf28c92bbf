package orm

import (
	"fmt"
	"issue-tracker/config"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"

	"gorm.io/gorm/logger"

	"gorm.io/gorm"
)

type DB struct {
	dbGorm *gorm.DB
}

// InitDB connects to postgres using the application config and runs the
// schema migration. Any failure here is fatal.
func InitDB(cfg *config.AppConfig) DB {
	dsn := fmt.Sprintf(
		"host='%s' port='%d' user='%s' password='%s' dbname='%s' sslmode='%s'",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Database,
		cfg.Database.SSLMode,
	)

	dsnRedacted := strings.ReplaceAll(dsn, cfg.Database.Password, "*****")
	log.Debug().
		Msgf("Connecting to postgres using the following information: %s", dsnRedacted)

	db, err := Connect(postgres.Open(dsn))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize the database")
	}

	log.Debug().Msg("Successfully connected to the database")

	return db
}

// Connect opens a database with the given dialector and migrates the schema.
// Tests use this with a sqlite dialector.
func Connect(dialector gorm.Dialector) (DB, error) {
	dbGorm, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return DB{}, fmt.Errorf("connecting to database: %w", err)
	}

	err = dbGorm.AutoMigrate(
		&User{},
		&Project{},
		&Contributor{},
		&Issue{},
		&Comment{},
	)
	if err != nil {
		return DB{}, fmt.Errorf("migrating database: %w", err)
	}

	return DB{dbGorm: dbGorm}, nil
}

// Transaction runs fn inside a single database transaction. The DB passed to
// fn routes every operation through that transaction.
func (db DB) Transaction(fn func(tx DB) error) error {
	//nolint:wrapcheck // Errors from fn are already wrapped
	return db.dbGorm.Transaction(func(tx *gorm.DB) error {
		return fn(DB{dbGorm: tx})
	})
}
