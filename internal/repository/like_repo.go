package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/muzz-dating/internal/db"
	"github.com/oggyb/muzz-dating/internal/model"
)

// LikeRepository provides data access methods for the Like model.
// It encapsulates all queries against users' swipe ledgers.
type LikeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new repository bound to the given DB connection.
func NewLikeRepository(database *gorm.DB) *LikeRepository {
	return &LikeRepository{db: database}
}

// Upsert writes owner's verdict on target into owner's ledger.
//
// Behavior:
//   - If (owner_id, target_id) exists → the row is updated with the new "liked" value.
//   - If it doesn’t exist → a new row is inserted.
//   - Composite PK ensures last-write-wins with no history.
//
// Example:
//
//	repo.Upsert(ctx, "u1", "u2", true) // u1 liked u2
func (r *LikeRepository) Upsert(ctx context.Context, ownerID, targetID string, liked bool) error {
	like := db.Like{
		OwnerID:  ownerID,
		TargetID: targetID,
		Liked:    liked,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner_id"}, {Name: "target_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"liked", "updated_at"}),
		}).
		Create(&like).Error
}

// Verdict looks up owner's verdict on target.
//
// Behavior:
//   - No row → model.VerdictAbsent (never swiped).
//   - liked = false → model.VerdictPassed.
//   - liked = true → model.VerdictLiked.
//
// Example:
//
//	repo.Verdict(ctx, "u2", "u1") // did u2 already like u1?
func (r *LikeRepository) Verdict(ctx context.Context, ownerID, targetID string) (model.Verdict, error) {
	var rows []db.Like
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND target_id = ?", ownerID, targetID).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return model.VerdictAbsent, err
	}
	if len(rows) == 0 {
		return model.VerdictAbsent, nil
	}
	return model.VerdictOf(rows[0].Liked), nil
}

// Ledger returns owner's full ledger as target → liked.
func (r *LikeRepository) Ledger(ctx context.Context, ownerID string) (map[string]bool, error) {
	var rows []db.Like
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Find(&rows).Error; err != nil {
		return nil, err
	}
	ledger := make(map[string]bool, len(rows))
	for _, row := range rows {
		ledger[row.TargetID] = row.Liked
	}
	return ledger, nil
}

// CountLikesReceived returns how many users currently like the target.
//
// Behavior:
//   - Counts only rows where target_id = X and liked = true.
//   - Used in conjunction with Redis cache (DB is fallback).
func (r *LikeRepository) CountLikesReceived(ctx context.Context, targetID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Like{}).
		Where("target_id = ? AND liked = ?", targetID, true).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
