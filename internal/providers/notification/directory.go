package notification

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var ErrUnknownUser = errors.New("unknown_user")

// dbDirectory reads recipient addresses from the platform's users table.
type dbDirectory struct {
	db *gorm.DB
}

func NewDirectory(db *gorm.DB) Directory {
	return &dbDirectory{db: db}
}

func (d *dbDirectory) LookupEmail(ctx context.Context, userID snowflake.ID) (string, error) {
	var row struct {
		Email string `gorm:"column:email"`
	}
	err := d.db.WithContext(ctx).Raw(
		`SELECT email FROM users WHERE id = ?`, userID,
	).Scan(&row).Error
	if err != nil {
		return "", err
	}
	if row.Email == "" {
		return "", ErrUnknownUser
	}
	return row.Email, nil
}
