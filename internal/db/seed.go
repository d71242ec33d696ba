package db

import (
	"fmt"
	"log"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/xid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedPassword is the password of every seeded account.
const SeedPassword = "password"

// SeedTestData resets the database and populates it with demo users, likes,
// matches and one opening message per match.
//
// Behavior:
//  1. Clears existing data in every table.
//  2. Creates 20 users (directory record + account) sharing SeedPassword.
//  3. Generates ~200 verdicts with ~70% likes; every 3rd pair is made mutual and
//     gets a match plus a greeting in its thread.
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	// --- Fresh start ---
	for _, table := range []string{"messages", "chats", "matches", "likes", "accounts", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	log.Println("Cleared existing data")

	hash, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	// --- Seed Users ---
	ids := make([]string, 0, 20)
	for i := 1; i <= 20; i++ {
		id := uuid.NewString()
		email := fmt.Sprintf("user%d@example.com", i)
		empty := ""

		user := User{
			ID:               id,
			Email:            email,
			DisplayName:      fmt.Sprintf("User %d", i),
			ProfileImageURL:  &empty,
			ProfileImageData: &empty,
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
		account := Account{
			UserID:       id,
			Email:        email,
			PasswordHash: string(hash),
			LastLoginAt:  time.Now().Add(-time.Duration(r.Intn(500)) * time.Hour),
		}
		if err := db.Create(&account).Error; err != nil {
			return fmt.Errorf("failed to seed account: %w", err)
		}
		ids = append(ids, id)
	}
	log.Println("Seeded 20 users.")

	// --- Seed Likes (~200) ---
	upsert := clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}, {Name: "target_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"liked", "updated_at"}),
	}
	counter, matches := 0, 0
	for _, owner := range ids {
		for j := 0; j < 10; j++ {
			target := ids[r.Intn(len(ids))]
			if owner == target {
				continue
			}

			// like probability 70%
			liked := r.Intn(100) < 70

			// guarantee mutual likes every 3rd pair
			if counter%3 == 0 {
				liked = true
				recip := Like{OwnerID: target, TargetID: owner, Liked: true}
				if err := db.Clauses(upsert).Create(&recip).Error; err != nil {
					return fmt.Errorf("failed to seed like: %w", err)
				}
				if err := seedMatch(db, owner, target); err != nil {
					return err
				}
				matches++
			}

			like := Like{OwnerID: owner, TargetID: target, Liked: liked}
			if err := db.Clauses(upsert).Create(&like).Error; err != nil {
				return fmt.Errorf("failed to seed like: %w", err)
			}
			counter++
		}
	}
	log.Printf("Seeded %d likes and %d matches.", counter, matches)

	return nil
}

func seedMatch(db *gorm.DB, a, b string) error {
	pair := []string{a, b}
	sort.Strings(pair)
	now := time.Now().UTC()

	m := Match{ID: xid.New().String(), ParticipantA: pair[0], ParticipantB: pair[1], MatchedAt: now}
	if err := db.Create(&m).Error; err != nil {
		return fmt.Errorf("failed to seed match: %w", err)
	}

	threadID := pair[0] + "_" + pair[1]
	text := "Hey, we matched!"
	msg := Message{ID: xid.New().String(), ThreadID: threadID, SenderID: a, ReceiverID: b, Text: text, Timestamp: now}
	if err := db.Create(&msg).Error; err != nil {
		return fmt.Errorf("failed to seed message: %w", err)
	}
	chat := Chat{ID: threadID, ParticipantA: a, ParticipantB: b, LastMessage: text, LastMessageTimestamp: now}
	return db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&chat).Error
}
