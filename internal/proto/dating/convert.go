package dating

import (
	"github.com/oggyb/muzz-dating/internal/model"
)

// Conversions between domain entities and wire messages.

func FromUser(u model.User) *User {
	return &User{
		Id:               u.ID,
		DisplayName:      u.DisplayName,
		Email:            u.Email,
		ProfileImageData: u.ProfileImageData,
	}
}

func (u *User) Model() model.User {
	return model.User{
		ID:               u.Id,
		DisplayName:      u.DisplayName,
		Email:            u.Email,
		ProfileImageData: u.ProfileImageData,
	}
}

func FromMatch(m model.Match) *Match {
	return &Match{
		Id:           m.ID,
		Participants: []string{m.Participants[0], m.Participants[1]},
		MatchedAt:    NewTimestamp(m.MatchedAt),
	}
}

func (m *Match) Model() model.Match {
	out := model.Match{ID: m.Id, MatchedAt: m.MatchedAt.AsTime()}
	copy(out.Participants[:], m.Participants)
	return out
}

func FromMessage(m model.Message) *Message {
	return &Message{
		Id:         m.ID,
		ThreadId:   m.ThreadID,
		SenderId:   m.SenderID,
		ReceiverId: m.ReceiverID,
		Text:       m.Text,
		Timestamp:  NewTimestamp(m.Timestamp),
	}
}

func (m *Message) Model() model.Message {
	return model.Message{
		ID:         m.Id,
		ThreadID:   m.ThreadId,
		SenderID:   m.SenderId,
		ReceiverID: m.ReceiverId,
		Text:       m.Text,
		Timestamp:  m.Timestamp.AsTime(),
	}
}

func FromThreadSummary(s model.ThreadSummary) *ThreadSummary {
	return &ThreadSummary{
		ThreadId:             s.ThreadID,
		Participants:         []string{s.Participants[0], s.Participants[1]},
		LastMessage:          s.LastMessage,
		LastMessageTimestamp: NewTimestamp(s.LastMessageTimestamp),
	}
}

func (s *ThreadSummary) Model() model.ThreadSummary {
	out := model.ThreadSummary{
		ThreadID:             s.ThreadId,
		LastMessage:          s.LastMessage,
		LastMessageTimestamp: s.LastMessageTimestamp.AsTime(),
	}
	copy(out.Participants[:], s.Participants)
	return out
}

func FromParseErrors(errs []*model.ParseError) []*Discarded {
	if len(errs) == 0 {
		return nil
	}
	out := make([]*Discarded, 0, len(errs))
	for _, e := range errs {
		out = append(out, &Discarded{Kind: e.Kind, Id: e.ID, Reason: e.Reason})
	}
	return out
}

func (d *Discarded) Model() *model.ParseError {
	return &model.ParseError{Kind: d.Kind, ID: d.Id, Reason: d.Reason}
}

// Convert maps every element of in with conv, e.g. Convert(list.Matches, (*Match).Model).
func Convert[A any, B any](in []A, conv func(A) B) []B {
	out := make([]B, 0, len(in))
	for _, v := range in {
		out = append(out, conv(v))
	}
	return out
}
