package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/muzz-dating/internal/db"
)

// ErrEmailTaken is returned when an account already uses the email.
var ErrEmailTaken = errors.New("email already registered")

// AccountRepository stores auth provider credentials.
type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(database *gorm.DB) *AccountRepository {
	return &AccountRepository{db: database}
}

// Create inserts a new account; ErrEmailTaken on a duplicate email.
func (r *AccountRepository) Create(ctx context.Context, account db.Account) error {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&db.Account{}).
		Where("email = ?", account.Email).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrEmailTaken
	}
	err := r.db.WithContext(ctx).Create(&account).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrEmailTaken
	}
	return err
}

// FindByEmail returns gorm.ErrRecordNotFound for unknown emails.
func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (db.Account, error) {
	var account db.Account
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&account).Error
	return account, err
}

// TouchLogin records a successful sign-in.
func (r *AccountRepository) TouchLogin(ctx context.Context, userID string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&db.Account{}).
		Where("user_id = ?", userID).
		Update("last_login_at", at).Error
}
