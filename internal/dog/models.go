package dog

import "time"

type Dog struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Breed     string    `json:"breed,omitempty"`
	BirthDate time.Time `json:"birth_date,omitempty"`
	PhotoURL  string    `json:"photo_url,omitempty"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// Owner links a profile to a dog. The creator holds the "owner" role,
// accepted invitees hold "co-owner" or "caretaker".
type Owner struct {
	DogID    string    `json:"dog_id"`
	UserID   string    `json:"user_id"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// Invite statuses. An invite leaves "pending" exactly once.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusDeclined = "declined"
	StatusExpired  = "expired"
)

type Invite struct {
	ID           string    `json:"id"`
	DogID        string    `json:"dog_id"`
	InviterID    string    `json:"inviter_id"`
	InviteeEmail string    `json:"invitee_email"`
	Role         string    `json:"role"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
	RespondedAt  time.Time `json:"responded_at,omitempty"`
}
