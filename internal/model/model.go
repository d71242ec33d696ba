// Package model holds the domain entities exchanged between services,
// transport and client, and the parse functions that build them from rows.
package model

import (
	"sort"
	"strings"
	"time"
)

// ThreadSeparator joins the two sorted participant ids of a thread.
const ThreadSeparator = "_"

// User is a directory profile.
type User struct {
	ID               string
	DisplayName      string
	Email            string
	ProfileImageURL  *string
	ProfileImageData *string // base64 text, nil when absent
}

// HasImage reports whether a non-empty profile image is stored.
func (u User) HasImage() bool {
	return u.ProfileImageData != nil && *u.ProfileImageData != ""
}

// Verdict is a ledger lookup result. Absent is distinct from Passed.
type Verdict int

const (
	VerdictAbsent Verdict = iota
	VerdictPassed
	VerdictLiked
)

func (v Verdict) String() string {
	switch v {
	case VerdictLiked:
		return "liked"
	case VerdictPassed:
		return "passed"
	default:
		return "absent"
	}
}

// VerdictOf converts a stored boolean into a Verdict.
func VerdictOf(liked bool) Verdict {
	if liked {
		return VerdictLiked
	}
	return VerdictPassed
}

// Match is a confirmed mutual like; Participants are sorted.
type Match struct {
	ID           string
	Participants [2]string
	MatchedAt    time.Time
}

// Other returns the participant that is not userID.
func (m Match) Other(userID string) string {
	if m.Participants[0] == userID {
		return m.Participants[1]
	}
	return m.Participants[0]
}

// MatchResult is what a liked verdict reports back to the swiper.
type MatchResult struct {
	Matched bool
	Match   *Match
}

// NoMatch is the result of a pass or a one-sided like.
var NoMatch = MatchResult{}

type Message struct {
	ID         string
	ThreadID   string
	SenderID   string
	ReceiverID string
	Text       string
	Timestamp  time.Time
}

// ThreadSummary is the per-thread listing record.
type ThreadSummary struct {
	ThreadID             string
	Participants         [2]string // as last written: sender, receiver
	LastMessage          string
	LastMessageTimestamp time.Time
}

// Other returns the participant that is not userID.
func (s ThreadSummary) Other(userID string) string {
	if s.Participants[0] == userID {
		return s.Participants[1]
	}
	return s.Participants[0]
}

// Identity is the auth provider's view of the signed-in user.
// The zero value means signed out.
type Identity struct {
	UserID string
	Email  string
}

func (i Identity) SignedIn() bool { return i.UserID != "" }

// SortedPair returns a and b in lexicographic order.
func SortedPair(a, b string) [2]string {
	pair := []string{a, b}
	sort.Strings(pair)
	return [2]string{pair[0], pair[1]}
}

// JoinThreadID builds the canonical thread id for an unordered pair.
// Callers validate the ids first.
func JoinThreadID(a, b string) string {
	pair := SortedPair(a, b)
	return strings.Join(pair[:], ThreadSeparator)
}
