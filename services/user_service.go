package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fireDragonAPI/internal/streak"
	"fireDragonAPI/internal/user"
)

type UserService struct {
	db *pgxpool.Pool
}

func NewUserService(db *pgxpool.Pool) *UserService {
	return &UserService{db: db}
}

// UpsertUser registers a user on first contact and refreshes the display
// fields on every later contact. Idempotent.
func (s *UserService) UpsertUser(ctx context.Context, id int64, username, firstName string) (*user.User, error) {
	query := `
	INSERT INTO users (id, username, first_name, created_at, updated_at)
	VALUES ($1, $2, $3, NOW(), NOW())
	ON CONFLICT (id) DO UPDATE
	SET username = EXCLUDED.username,
	    first_name = EXCLUDED.first_name,
	    updated_at = NOW()
	RETURNING id, username, first_name, created_at, updated_at
	`

	u := &user.User{}
	err := s.db.QueryRow(ctx, query, id, username, firstName).Scan(
		&u.ID,
		&u.Username,
		&u.FirstName,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	return u, nil
}

// GetUser returns a registered user by Telegram id.
func (s *UserService) GetUser(ctx context.Context, id int64) (*user.User, error) {
	query := `
	SELECT id, username, first_name, created_at, updated_at
	FROM users
	WHERE id = $1
	`

	u := &user.User{}
	err := s.db.QueryRow(ctx, query, id).Scan(
		&u.ID,
		&u.Username,
		&u.FirstName,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return u, nil
}

// LinkPair creates the shared streak for an invitee/inviter pair. The pair is
// stored canonically ordered (lower id first) so re-invites from either side
// land on the same row and change nothing. A self-invite is a no-op.
// Returns true when a new streak was born.
func (s *UserService) LinkPair(ctx context.Context, userID, inviterID int64) (bool, error) {
	if userID == inviterID {
		return false, nil
	}

	u1, u2 := streak.OrderPair(userID, inviterID)

	query := `
	INSERT INTO streaks (
		id, user1_id, user2_id, count, pet_name,
		last_activity1, last_activity2, last_check_in,
		daily_msgs1, daily_msgs2, freezes_available,
		created_at, updated_at
	)
	VALUES ($1, $2, $3, 1, $4, NOW(), NOW(), NOW(), 0, 0, 0, NOW(), NOW())
	ON CONFLICT (user1_id, user2_id) DO NOTHING
	`

	tag, err := s.db.Exec(ctx, query, uuid.New(), u1, u2, streak.DefaultPetName)
	if err != nil {
		return false, fmt.Errorf("failed to link pair %d/%d: %w", u1, u2, err)
	}

	return tag.RowsAffected() > 0, nil
}
