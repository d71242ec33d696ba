// Package dating defines the wire messages and gRPC service descriptors of
// the dating API. Messages travel as JSON through the codec in codec.go;
// timestamps use the protobuf well-known type in its protojson form.
//
// The services are declared by hand, without generated descriptors, so
// server reflection lists the service names but cannot describe methods.
package dating

// --- Accounts ---

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	UserId      string    `json:"user_id"`
	Email       string    `json:"email"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   Timestamp `json:"expires_at,omitzero"`
}

type SignOutRequest struct{}

type SignOutResponse struct{}

// --- Directory ---

type User struct {
	Id               string  `json:"id"`
	DisplayName      string  `json:"display_name"`
	Email            string  `json:"email"`
	ProfileImageData *string `json:"profile_image_data,omitempty"`
}

type GetUserRequest struct {
	UserId string `json:"user_id"`
}

// UpdateProfileRequest edits the caller's profile. A nil DisplayName keeps the
// current name; an empty ProfileImage keeps the current image.
type UpdateProfileRequest struct {
	DisplayName  *string `json:"display_name,omitempty"`
	ProfileImage []byte  `json:"profile_image,omitempty"`
}

type ListCandidatesRequest struct{}

type ListCandidatesResponse struct {
	Users     []*User      `json:"users"`
	Discarded []*Discarded `json:"discarded,omitempty"`
}

// Discarded describes a stored record a listing could not decode.
type Discarded struct {
	Kind   string `json:"kind"`
	Id     string `json:"id"`
	Reason string `json:"reason"`
}

// --- Swipes ---

type RecordVerdictRequest struct {
	TargetUserId string `json:"target_user_id"`
	Liked        bool   `json:"liked"`
}

type RecordVerdictResponse struct {
	Matched bool   `json:"matched"`
	Match   *Match `json:"match,omitempty"`
}

type GetVerdictRequest struct {
	TargetUserId string `json:"target_user_id"`
}

type GetVerdictResponse struct {
	// Verdict is "liked", "passed" or "absent".
	Verdict string `json:"verdict"`
}

type CountLikesReceivedRequest struct{}

type CountLikesReceivedResponse struct {
	Count uint64 `json:"count"`
}

// --- Matches ---

type Match struct {
	Id           string    `json:"id"`
	Participants []string  `json:"participants"`
	MatchedAt    Timestamp `json:"matched_at"`
}

type ListMatchesRequest struct{}

type WatchMatchesRequest struct{}

type MatchList struct {
	Matches   []*Match     `json:"matches"`
	Discarded []*Discarded `json:"discarded,omitempty"`
}

// --- Chats ---

type Message struct {
	Id         string    `json:"id"`
	ThreadId   string    `json:"thread_id"`
	SenderId   string    `json:"sender_id"`
	ReceiverId string    `json:"receiver_id"`
	Text       string    `json:"text"`
	Timestamp  Timestamp `json:"timestamp"`
}

type SendMessageRequest struct {
	ReceiverUserId string `json:"receiver_user_id"`
	Text           string `json:"text"`
}

type ListMessagesRequest struct {
	PeerUserId string `json:"peer_user_id"`
}

type WatchThreadRequest struct {
	PeerUserId string `json:"peer_user_id"`
}

type MessageList struct {
	ThreadId  string       `json:"thread_id"`
	Messages  []*Message   `json:"messages"`
	Discarded []*Discarded `json:"discarded,omitempty"`
}

type ThreadSummary struct {
	ThreadId             string    `json:"thread_id"`
	Participants         []string  `json:"participants"`
	LastMessage          string    `json:"last_message"`
	LastMessageTimestamp Timestamp `json:"last_message_timestamp"`
}

type ListThreadsRequest struct{}

type WatchThreadsRequest struct{}

type ThreadList struct {
	Threads   []*ThreadSummary `json:"threads"`
	Discarded []*Discarded     `json:"discarded,omitempty"`
}
