package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/muzz-dating/internal/db"
)

// UserRepository reads and writes directory records.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// CreateIfAbsent inserts the user unless a row with the same id exists.
// Returns true when the row was inserted; an existing row is left untouched.
func (r *UserRepository) CreateIfAbsent(ctx context.Context, user db.User) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).
		Create(&user)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Get returns gorm.ErrRecordNotFound when the id is unknown.
func (r *UserRepository) Get(ctx context.Context, id string) (db.User, error) {
	var user db.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	return user, err
}

// UpdateDisplayName overwrites the display name only.
func (r *UserRepository) UpdateDisplayName(ctx context.Context, id, name string) error {
	return r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ?", id).
		Update("display_name", name).Error
}

// UpdateProfileImage overwrites the base64 image text only.
func (r *UserRepository) UpdateProfileImage(ctx context.Context, id, encoded string) error {
	return r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ?", id).
		Update("profile_image_data", encoded).Error
}

// ListExcept returns every user other than id, oldest first.
func (r *UserRepository) ListExcept(ctx context.Context, id string) ([]db.User, error) {
	var users []db.User
	err := r.db.WithContext(ctx).
		Where("id <> ?", id).
		Order("created_at ASC, id ASC").
		Find(&users).Error
	return users, err
}
