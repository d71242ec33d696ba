package model

import (
	"fmt"
	"strings"

	"github.com/oggyb/muzz-dating/internal/db"
)

// ParseError explains why a stored record could not become an entity.
// Feeds report these instead of silently skipping the row.
type ParseError struct {
	Kind   string
	ID     string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("discarded %s %q: %s", e.Kind, e.ID, e.Reason)
}

func parseErr(kind, id, format string, args ...any) *ParseError {
	return &ParseError{Kind: kind, ID: id, Reason: fmt.Sprintf(format, args...)}
}

// ParseUser requires an id, an email field and a display name.
func ParseUser(row db.User) (User, error) {
	if strings.TrimSpace(row.ID) == "" {
		return User{}, parseErr("user", row.ID, "missing id")
	}
	if strings.TrimSpace(row.DisplayName) == "" {
		return User{}, parseErr("user", row.ID, "missing display name")
	}
	return User{
		ID:               row.ID,
		DisplayName:      row.DisplayName,
		Email:            row.Email,
		ProfileImageURL:  row.ProfileImageURL,
		ProfileImageData: row.ProfileImageData,
	}, nil
}

// ParseMatch requires two distinct participants and a timestamp.
func ParseMatch(row db.Match) (Match, error) {
	if row.ParticipantA == "" || row.ParticipantB == "" {
		return Match{}, parseErr("match", row.ID, "expected two participants")
	}
	if row.ParticipantA == row.ParticipantB {
		return Match{}, parseErr("match", row.ID, "participants are identical")
	}
	if row.MatchedAt.IsZero() {
		return Match{}, parseErr("match", row.ID, "missing matchedAt")
	}
	return Match{
		ID:           row.ID,
		Participants: SortedPair(row.ParticipantA, row.ParticipantB),
		MatchedAt:    row.MatchedAt,
	}, nil
}

// ParseMessage requires sender, receiver, non-blank text and a timestamp.
func ParseMessage(row db.Message) (Message, error) {
	switch {
	case row.SenderID == "" || row.ReceiverID == "":
		return Message{}, parseErr("message", row.ID, "missing sender or receiver")
	case strings.TrimSpace(row.Text) == "":
		return Message{}, parseErr("message", row.ID, "empty text")
	case row.Timestamp.IsZero():
		return Message{}, parseErr("message", row.ID, "missing timestamp")
	}
	return Message{
		ID:         row.ID,
		ThreadID:   row.ThreadID,
		SenderID:   row.SenderID,
		ReceiverID: row.ReceiverID,
		Text:       row.Text,
		Timestamp:  row.Timestamp,
	}, nil
}

// ParseThreadSummary requires both participants and a last-message timestamp.
func ParseThreadSummary(row db.Chat) (ThreadSummary, error) {
	if row.ParticipantA == "" || row.ParticipantB == "" {
		return ThreadSummary{}, parseErr("chat", row.ID, "expected two participants")
	}
	if row.LastMessageTimestamp.IsZero() {
		return ThreadSummary{}, parseErr("chat", row.ID, "missing lastMessageTimestamp")
	}
	return ThreadSummary{
		ThreadID:             row.ID,
		Participants:         [2]string{row.ParticipantA, row.ParticipantB},
		LastMessage:          row.LastMessage,
		LastMessageTimestamp: row.LastMessageTimestamp,
	}, nil
}

// ParseAll converts rows with parse, keeping good entities in order and
// collecting one ParseError per rejected row.
func ParseAll[R any, T any](rows []R, parse func(R) (T, error)) ([]T, []*ParseError) {
	out := make([]T, 0, len(rows))
	var discarded []*ParseError
	for _, row := range rows {
		v, err := parse(row)
		if err != nil {
			if pe, ok := err.(*ParseError); ok {
				discarded = append(discarded, pe)
				continue
			}
			discarded = append(discarded, &ParseError{Kind: "record", Reason: err.Error()})
			continue
		}
		out = append(out, v)
	}
	return out, discarded
}
