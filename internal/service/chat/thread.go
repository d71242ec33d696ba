package chat

import (
	"strings"

	svcErr "github.com/oggyb/muzz-dating/internal/errors"
	"github.com/oggyb/muzz-dating/internal/model"
)

// ThreadID resolves the conversation id of two users: their sorted ids
// joined with "_". It is symmetric in its arguments. Empty ids and a user
// chatting with themselves are rejected.
func ThreadID(a, b string) (string, error) {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return "", svcErr.Validation("user_id", "user ids must not be empty")
	}
	if a == b {
		return "", svcErr.Validation("user_id", "cannot open a thread with yourself")
	}
	return model.JoinThreadID(a, b), nil
}
