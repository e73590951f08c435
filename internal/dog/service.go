package dog

import (
	"context"
	"errors"
	"time"

	"github.com/TonniAndreev/doteworld-sub001/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

var (
	ErrInviteNotFound = errors.New("ownership invite not found")
	ErrInviteExpired  = errors.New("ownership invite expired")
	ErrInviteClosed   = errors.New("ownership invite already resolved")
	ErrNotOwner       = errors.New("not an owner of this dog")
	ErrNotInvitee     = errors.New("ownership invite addressed to someone else")
)

// Notifier delivers a user-facing notification. Delivery failures are
// logged, never propagated into the invite flow.
type Notifier interface {
	Notify(ctx context.Context, userID, kind, title, body string) error
}

type Service struct {
	db        db.Querier
	notifier  Notifier
	inviteTTL time.Duration
}

func NewService(q db.Querier, notifier Notifier) *Service {
	return &Service{db: q, notifier: notifier, inviteTTL: 7 * 24 * time.Hour}
}

// CreateDog inserts the dog and makes the creator its owner.
func (s *Service) CreateDog(ctx context.Context, input Dog) (Dog, error) {
	input.ID = uuid.NewString()
	row := s.db.QueryRow(ctx, `
		INSERT INTO dogs (id, name, breed, birth_date, photo_url, created_by)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at
	`, input.ID, input.Name, input.Breed, timePtr(input.BirthDate), input.PhotoURL, input.CreatedBy)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Dog{}, err
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO dog_owners (dog_id, user_id, role)
		VALUES ($1,$2,'owner')
		ON CONFLICT (dog_id, user_id) DO NOTHING
	`, input.ID, input.CreatedBy)
	if err != nil {
		return Dog{}, err
	}
	return input, nil
}

func (s *Service) GetDog(ctx context.Context, id string) (Dog, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, COALESCE(breed,''), COALESCE(birth_date,'epoch'::timestamptz), COALESCE(photo_url,''), created_by, created_at
		FROM dogs WHERE id=$1
	`, id)
	var d Dog
	if err := row.Scan(&d.ID, &d.Name, &d.Breed, &d.BirthDate, &d.PhotoURL, &d.CreatedBy, &d.CreatedAt); err != nil {
		return Dog{}, err
	}
	return d, nil
}

func (s *Service) UpdateDog(ctx context.Context, id string, patch Dog) (Dog, error) {
	d, err := s.GetDog(ctx, id)
	if err != nil {
		return Dog{}, err
	}
	if patch.Name != "" {
		d.Name = patch.Name
	}
	if patch.Breed != "" {
		d.Breed = patch.Breed
	}
	if !patch.BirthDate.IsZero() {
		d.BirthDate = patch.BirthDate
	}
	if patch.PhotoURL != "" {
		d.PhotoURL = patch.PhotoURL
	}

	_, err = s.db.Exec(ctx, `
		UPDATE dogs SET name=$2, breed=$3, birth_date=$4, photo_url=$5 WHERE id=$1
	`, d.ID, d.Name, d.Breed, timePtr(d.BirthDate), d.PhotoURL)
	if err != nil {
		return Dog{}, err
	}
	return d, nil
}

func (s *Service) DeleteDog(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM dogs WHERE id=$1`, id)
	return err
}

// ListForUser returns every dog the user owns or co-owns.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]Dog, error) {
	rows, err := s.db.Query(ctx, `
		SELECT d.id, d.name, COALESCE(d.breed,''), COALESCE(d.birth_date,'epoch'::timestamptz), COALESCE(d.photo_url,''), d.created_by, d.created_at
		FROM dogs d
		JOIN dog_owners o ON o.dog_id = d.id
		WHERE o.user_id=$1
		ORDER BY d.created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dogs []Dog
	for rows.Next() {
		var d Dog
		if err := rows.Scan(&d.ID, &d.Name, &d.Breed, &d.BirthDate, &d.PhotoURL, &d.CreatedBy, &d.CreatedAt); err != nil {
			return nil, err
		}
		dogs = append(dogs, d)
	}
	return dogs, nil
}

func (s *Service) Owners(ctx context.Context, dogID string) ([]Owner, error) {
	rows, err := s.db.Query(ctx, `
		SELECT dog_id, user_id, role, joined_at
		FROM dog_owners WHERE dog_id=$1
		ORDER BY joined_at
	`, dogID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var owners []Owner
	for rows.Next() {
		var o Owner
		if err := rows.Scan(&o.DogID, &o.UserID, &o.Role, &o.JoinedAt); err != nil {
			return nil, err
		}
		owners = append(owners, o)
	}
	return owners, nil
}

// IsOwner reports whether the user holds any ownership role on the dog.
func (s *Service) IsOwner(ctx context.Context, dogID, userID string) (bool, error) {
	var role string
	row := s.db.QueryRow(ctx, `SELECT role FROM dog_owners WHERE dog_id=$1 AND user_id=$2`, dogID, userID)
	if err := row.Scan(&role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CreateInvite opens a pending invite addressed to an email. Only
// existing owners may invite; the invite expires after the TTL.
func (s *Service) CreateInvite(ctx context.Context, dogID, inviterID, inviteeEmail, role string) (Invite, error) {
	owner, err := s.IsOwner(ctx, dogID, inviterID)
	if err != nil {
		return Invite{}, err
	}
	if !owner {
		return Invite{}, ErrNotOwner
	}
	if role == "" {
		role = "co-owner"
	}

	inv := Invite{
		ID:           uuid.NewString(),
		DogID:        dogID,
		InviterID:    inviterID,
		InviteeEmail: inviteeEmail,
		Role:         role,
		Status:       StatusPending,
		ExpiresAt:    time.Now().Add(s.inviteTTL),
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO dog_ownership_invites (id, dog_id, inviter_id, invitee_email, role, status, expires_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at
	`, inv.ID, inv.DogID, inv.InviterID, inv.InviteeEmail, inv.Role, inv.Status, inv.ExpiresAt)
	if err := row.Scan(&inv.CreatedAt); err != nil {
		return Invite{}, err
	}

	s.notifyInvitee(ctx, inv)
	return inv, nil
}

// ListInvites returns the pending, unexpired invites addressed to the
// email. Expired rows are filtered out even before the sweep marks them.
func (s *Service) ListInvites(ctx context.Context, inviteeEmail string) ([]Invite, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, dog_id, inviter_id, invitee_email, role, status, created_at, expires_at
		FROM dog_ownership_invites
		WHERE invitee_email=$1 AND status='pending' AND expires_at > now()
		ORDER BY created_at DESC
	`, inviteeEmail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invites []Invite
	for rows.Next() {
		var inv Invite
		if err := rows.Scan(&inv.ID, &inv.DogID, &inv.InviterID, &inv.InviteeEmail, &inv.Role, &inv.Status, &inv.CreatedAt, &inv.ExpiresAt); err != nil {
			return nil, err
		}
		invites = append(invites, inv)
	}
	return invites, nil
}

// Accept resolves a pending invite and grants the ownership role. The
// status transition is a single conditional UPDATE, so two concurrent
// responses cannot both win, and only the addressed invitee can respond.
// Accepting an invite the same user already accepted is a no-op.
func (s *Service) Accept(ctx context.Context, inviteID, userID string) (Owner, error) {
	var dogID, role string
	row := s.db.QueryRow(ctx, `
		UPDATE dog_ownership_invites
		SET status='accepted', responded_at=now(), responded_by=$2
		WHERE id=$1 AND status='pending' AND expires_at > now()
		  AND invitee_email = (SELECT email FROM profiles WHERE id=$2)
		RETURNING dog_id, role
	`, inviteID, userID)
	if err := row.Scan(&dogID, &role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return s.resolveStaleAccept(ctx, inviteID, userID)
		}
		return Owner{}, err
	}
	return s.grantOwnership(ctx, dogID, userID, role)
}

// resolveStaleAccept explains a lost conditional accept: the invite is
// missing, expired, declined, already accepted, or addressed to
// someone else.
func (s *Service) resolveStaleAccept(ctx context.Context, inviteID, userID string) (Owner, error) {
	var status, dogID, role, respondedBy string
	var expiresAt time.Time
	row := s.db.QueryRow(ctx, `
		SELECT status, dog_id, role, COALESCE(responded_by,''), expires_at
		FROM dog_ownership_invites WHERE id=$1
	`, inviteID)
	if err := row.Scan(&status, &dogID, &role, &respondedBy, &expiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Owner{}, ErrInviteNotFound
		}
		return Owner{}, err
	}

	switch status {
	case StatusPending:
		if time.Now().Before(expiresAt) {
			// still live, so the UPDATE lost on the invitee match
			return Owner{}, ErrNotInvitee
		}
		// pending but past the deadline: settle it as expired
		_, _ = s.db.Exec(ctx, `
			UPDATE dog_ownership_invites SET status='expired', responded_at=now()
			WHERE id=$1 AND status='pending'
		`, inviteID)
		return Owner{}, ErrInviteExpired
	case StatusExpired:
		return Owner{}, ErrInviteExpired
	case StatusAccepted:
		if respondedBy == userID {
			// same user retrying: grant is idempotent
			return s.grantOwnership(ctx, dogID, userID, role)
		}
		return Owner{}, ErrInviteClosed
	default:
		return Owner{}, ErrInviteClosed
	}
}

func (s *Service) grantOwnership(ctx context.Context, dogID, userID, role string) (Owner, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO dog_owners (dog_id, user_id, role)
		VALUES ($1,$2,$3)
		ON CONFLICT (dog_id, user_id) DO UPDATE SET role=EXCLUDED.role
		RETURNING joined_at
	`, dogID, userID, role)
	owner := Owner{DogID: dogID, UserID: userID, Role: role}
	if err := row.Scan(&owner.JoinedAt); err != nil {
		return Owner{}, err
	}
	return owner, nil
}

// Decline resolves a pending invite without granting anything. Like
// Accept, only the addressed invitee can respond.
func (s *Service) Decline(ctx context.Context, inviteID, userID string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE dog_ownership_invites
		SET status='declined', responded_at=now(), responded_by=$2
		WHERE id=$1 AND status='pending' AND expires_at > now()
		  AND invitee_email = (SELECT email FROM profiles WHERE id=$2)
	`, inviteID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return s.staleResponseError(ctx, inviteID)
	}
	return nil
}

// staleResponseError explains a lost conditional decline.
func (s *Service) staleResponseError(ctx context.Context, inviteID string) error {
	var status string
	var expiresAt time.Time
	row := s.db.QueryRow(ctx, `
		SELECT status, expires_at FROM dog_ownership_invites WHERE id=$1
	`, inviteID)
	if err := row.Scan(&status, &expiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrInviteNotFound
		}
		return err
	}
	if status == StatusPending {
		if time.Now().Before(expiresAt) {
			return ErrNotInvitee
		}
		_, _ = s.db.Exec(ctx, `
			UPDATE dog_ownership_invites SET status='expired', responded_at=now()
			WHERE id=$1 AND status='pending'
		`, inviteID)
		return ErrInviteExpired
	}
	if status == StatusExpired {
		return ErrInviteExpired
	}
	return ErrInviteClosed
}

// ExpireStale sweeps pending invites past their deadline. Run
// periodically; individual accepts also settle expiry lazily.
func (s *Service) ExpireStale(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE dog_ownership_invites
		SET status='expired', responded_at=now()
		WHERE status='pending' AND expires_at <= now()
	`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Service) notifyInvitee(ctx context.Context, inv Invite) {
	if s.notifier == nil {
		return
	}
	var inviteeID string
	row := s.db.QueryRow(ctx, `SELECT id FROM profiles WHERE email=$1`, inv.InviteeEmail)
	if err := row.Scan(&inviteeID); err != nil {
		// invitee has no account yet, nothing to deliver
		return
	}
	if err := s.notifier.Notify(ctx, inviteeID, "dog_invite", "Dog ownership invite",
		"You have been invited to co-own a dog"); err != nil {
		log.Error().Err(err).Str("invite_id", inv.ID).Msg("invite notification failed")
	}
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
