package database

import (
	"context"
	"fmt"
	"log"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/catalog/internal/entities"
)

type Database struct {
	DB *gorm.DB
}

// NewDatabase opens the catalog database with query logging enabled.
func NewDatabase(dbPath string) (*Database, error) {
	return Open(dbPath, logger.Info)
}

// Open opens (creating if needed) the SQLite database at dbPath and migrates
// the schema.
func Open(dbPath string, level logger.LogLevel) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(DSN(dbPath)), &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return &Database{DB: db}, nil
}

// DSN builds the driver connection string. Write transactions start with
// BEGIN IMMEDIATE so concurrent writers wait on the busy timeout instead of
// failing on lock upgrade.
func DSN(dbPath string) string {
	params := "_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate"
	if strings.Contains(dbPath, "?") {
		return dbPath + "&" + params
	}
	return dbPath + "?" + params
}

// Migrate creates or updates every catalog table and fills case-folded
// columns left empty by older schemas.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&entities.User{},
		&entities.Book{},
		&entities.Author{},
		&entities.BookAuthor{},
	)
	if err != nil {
		return err
	}
	return backfillFolded(db)
}

func backfillFolded(db *gorm.DB) error {
	var books []entities.Book
	err := db.Select("id", "title").
		Where("title_folded = '' AND title <> ''").
		FindInBatches(&books, 200, func(_ *gorm.DB, _ int) error {
			for _, b := range books {
				if err := db.Model(&entities.Book{}).Where("id = ?", b.ID).
					UpdateColumn("title_folded", entities.Fold(b.Title)).Error; err != nil {
					return err
				}
			}
			return nil
		}).Error
	if err != nil {
		return fmt.Errorf("backfill book titles: %w", err)
	}

	var authors []entities.Author
	err = db.Select("id", "name").
		Where("name_folded = '' AND name <> ''").
		FindInBatches(&authors, 200, func(_ *gorm.DB, _ int) error {
			for _, a := range authors {
				if err := db.Model(&entities.Author{}).Where("id = ?", a.ID).
					UpdateColumn("name_folded", entities.Fold(a.Name)).Error; err != nil {
					return err
				}
			}
			return nil
		}).Error
	if err != nil {
		return fmt.Errorf("backfill author names: %w", err)
	}
	return nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks that the underlying connection is alive.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// GetStats returns the number of stored books and authors.
func (d *Database) GetStats(ctx context.Context) (totalBooks int64, totalAuthors int64, err error) {
	err = d.DB.WithContext(ctx).Model(&entities.Book{}).Count(&totalBooks).Error
	if err != nil {
		return
	}
	err = d.DB.WithContext(ctx).Model(&entities.Author{}).Count(&totalAuthors).Error
	return
}
