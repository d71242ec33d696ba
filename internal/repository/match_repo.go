package repository

import (
	"context"
	"time"

	"github.com/rs/xid"
	"gorm.io/gorm"

	"github.com/oggyb/muzz-dating/internal/db"
)

// MatchRepository is the durable set of matches.
type MatchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// Create appends a match with a generated id.
//
// Behavior:
//   - No uniqueness check on the pair: two calls for the same pair give two rows.
//   - participants are stored as given; callers pass them sorted.
func (r *MatchRepository) Create(ctx context.Context, participants [2]string, matchedAt time.Time) (db.Match, error) {
	m := db.Match{
		ID:           xid.New().String(),
		ParticipantA: participants[0],
		ParticipantB: participants[1],
		MatchedAt:    matchedAt,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return db.Match{}, err
	}
	return m, nil
}

// ListForUser returns matches containing userID, newest first.
func (r *MatchRepository) ListForUser(ctx context.Context, userID string) ([]db.Match, error) {
	var matches []db.Match
	err := r.db.WithContext(ctx).
		Where("participant_a = ? OR participant_b = ?", userID, userID).
		Order("matched_at DESC, id DESC").
		Find(&matches).Error
	return matches, err
}

// CountForPair returns how many match rows exist for the sorted pair.
func (r *MatchRepository) CountForPair(ctx context.Context, participants [2]string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Match{}).
		Where("participant_a = ? AND participant_b = ?", participants[0], participants[1]).
		Count(&count).Error
	return count, err
}
