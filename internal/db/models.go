package db

import (
	"time"
)

// User is a directory record. ID is the auth provider's subject id.
//
// ProfileImageData holds the base64 text of the profile picture; nil means
// the column was never written, "" means written empty on auto-creation.
type User struct {
	ID               string    `gorm:"primaryKey;size:64"`
	Email            string    `gorm:"size:128;not null"`
	DisplayName      string    `gorm:"size:128;not null"`
	ProfileImageURL  *string   `gorm:"size:512"`
	ProfileImageData *string   `gorm:"type:longtext"`
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}

// Account holds auth provider credentials for a user id.
type Account struct {
	UserID       string    `gorm:"primaryKey;size:64"`
	Email        string    `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string    `gorm:"size:255;not null"`
	LastLoginAt  time.Time
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

// Like is one entry of a user's ledger: owner's verdict on target.
//
// Composite PK: (OwnerID, TargetID)
//   - One row per pair, so a later swipe overwrites the earlier verdict.
//
// Indexes:
//   - idx_target_liked(target_id, liked)
//     Backs the likes-received counter.
type Like struct {
	OwnerID   string    `gorm:"primaryKey;size:64"`
	TargetID  string    `gorm:"primaryKey;size:64;index:idx_target_liked,priority:1"`
	Liked     bool      `gorm:"not null;index:idx_target_liked,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Match is a confirmed mutual like. ParticipantA < ParticipantB.
// No unique index on the pair: duplicates are possible by design of the detector.
type Match struct {
	ID           string    `gorm:"primaryKey;size:32"`
	ParticipantA string    `gorm:"size:64;not null;index:idx_match_a"`
	ParticipantB string    `gorm:"size:64;not null;index:idx_match_b"`
	MatchedAt    time.Time `gorm:"not null;index"`
}

// Chat is the thread summary document, keyed by thread id.
// ParticipantA/B are stored as last written: [sender, receiver].
type Chat struct {
	ID                   string    `gorm:"primaryKey;size:160"`
	ParticipantA         string    `gorm:"size:64;not null;index:idx_chat_a"`
	ParticipantB         string    `gorm:"size:64;not null;index:idx_chat_b"`
	LastMessage          string    `gorm:"type:text;not null"`
	LastMessageTimestamp time.Time `gorm:"not null;index"`
}

// Message belongs to a thread; (thread_id, timestamp) drives feed ordering.
type Message struct {
	ID         string    `gorm:"primaryKey;size:32"`
	ThreadID   string    `gorm:"size:160;not null;index:idx_thread_ts,priority:1"`
	SenderID   string    `gorm:"size:64;not null"`
	ReceiverID string    `gorm:"size:64;not null"`
	Text       string    `gorm:"type:text;not null"`
	Timestamp  time.Time `gorm:"not null;index:idx_thread_ts,priority:2"`
}

// All lists every model for AutoMigrate.
func All() []any {
	return []any{&User{}, &Account{}, &Like{}, &Match{}, &Chat{}, &Message{}}
}
