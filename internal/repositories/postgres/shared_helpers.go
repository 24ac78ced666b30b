package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/gizaedu/exam-service/internal/repositories"
)

// translateError maps driver errors to repository sentinels. It relies on
// gorm's TranslateError option being enabled on the connection.
func translateError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.Join(repositories.ErrDuplicateKey, err)
	}
	return err
}

// AutoMigrate creates or updates every remote table
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&profileRow{},
		&examRow{},
		&folderRow{},
		&resultRow{},
		&announcementRow{},
	)
}
