package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/kudos-points/internal/auth"
	accountDatamodel "github.com/frahmantamala/kudos-points/internal/core/datamodel/account"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetCredentials(ctx context.Context, userID string) (*auth.Credentials, error) {
	var acc accountDatamodel.Account
	err := r.db.WithContext(ctx).
		Select("id", "password_hash", "is_active").
		Where("id = ?", userID).
		First(&acc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}

	creds := &auth.Credentials{UserID: acc.ID, IsActive: acc.IsActive}
	if acc.PasswordHash != nil {
		creds.PasswordHash = *acc.PasswordHash
	}
	return creds, nil
}

func (r *Repository) GetActiveUser(ctx context.Context, userID string) (*auth.User, error) {
	var acc accountDatamodel.Account
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", userID, true).
		First(&acc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}

	user := &auth.User{ID: acc.ID, Role: acc.Role}
	if acc.Email != nil {
		user.Email = *acc.Email
	}
	return user, nil
}
