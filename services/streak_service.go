package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fireDragonAPI/internal/leaderboard"
	"fireDragonAPI/internal/pet"
	"fireDragonAPI/internal/streak"
	"fireDragonAPI/utils"
)

var (
	ErrStreakNotFound = errors.New("streak not found")
	ErrNoFreezes      = errors.New("no freezes available")
)

// Notifier is the outbound chat channel. Defined consumer-side so the
// service stays testable without a live Telegram transport.
type Notifier interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

type StreakService struct {
	db       *pgxpool.Pool
	notifier Notifier
}

func NewStreakService(db *pgxpool.Pool, notifier Notifier) *StreakService {
	return &StreakService{
		db:       db,
		notifier: notifier,
	}
}

const streakColumns = `
	id, user1_id, user2_id, group_id, count, pet_name,
	last_activity1, last_activity2, last_check_in,
	daily_msgs1, daily_msgs2, freezes_available, created_at, updated_at`

func scanStreak(row pgx.Row) (*streak.Streak, error) {
	s := &streak.Streak{}
	err := row.Scan(
		&s.ID,
		&s.User1ID,
		&s.User2ID,
		&s.GroupID,
		&s.Count,
		&s.PetName,
		&s.LastActivity1,
		&s.LastActivity2,
		&s.LastCheckIn,
		&s.DailyMsgs1,
		&s.DailyMsgs2,
		&s.FreezesAvailable,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	return s, err
}

// RecordMessage feeds one qualifying chat message into every streak the
// sender participates in, directly or via a bound group. Counter updates are
// single-statement increments, so concurrent messages from both members
// cannot lose updates.
func (s *StreakService) RecordMessage(ctx context.Context, userID, chatID int64, senderName string) error {
	query := `SELECT` + streakColumns + `
	FROM streaks
	WHERE user1_id = $1 OR user2_id = $1 OR group_id = $2
	`

	rows, err := s.db.Query(ctx, query, userID, chatID)
	if err != nil {
		return fmt.Errorf("failed to find streaks for user %d: %w", userID, err)
	}

	var streaks []*streak.Streak
	for rows.Next() {
		st, err := scanStreak(rows)
		if err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan streak: %w", err)
		}
		streaks = append(streaks, st)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read streaks: %w", err)
	}

	for _, st := range streaks {
		slot := st.SlotOf(userID)
		if slot == 0 {
			// group chatter from someone outside the pair
			continue
		}

		if err := s.recordSlotActivity(ctx, st, slot, chatID, senderName); err != nil {
			log.Printf("Failed to record activity on streak %s: %v", st.ID, err)
		}
	}

	return nil
}

func (s *StreakService) recordSlotActivity(ctx context.Context, st *streak.Streak, slot int, chatID int64, senderName string) error {
	var query string
	if slot == 1 {
		query = `
		UPDATE streaks
		SET last_activity1 = NOW(), daily_msgs1 = daily_msgs1 + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING daily_msgs1`
	} else {
		query = `
		UPDATE streaks
		SET last_activity2 = NOW(), daily_msgs2 = daily_msgs2 + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING daily_msgs2`
	}

	var msgCount int
	if err := s.db.QueryRow(ctx, query, st.ID).Scan(&msgCount); err != nil {
		return fmt.Errorf("failed to bump activity: %w", err)
	}

	if streak.AchievementCrossed(msgCount) {
		if err := s.grantFreeze(ctx, st.ID); err != nil {
			return err
		}
		if err := s.notifier.SendMessage(ctx, chatID,
			"🏆 Achievement! You sent 100 messages today and earned a 🧊 Freeze!"); err != nil {
			log.Printf("Failed to send achievement message for streak %s: %v", st.ID, err)
		}
	}

	// best-effort nudge: the partner has gone quiet for over 3 hours
	partnerID := st.User2ID
	partnerLast := st.LastActivity2
	if slot == 2 {
		partnerID = st.User1ID
		partnerLast = st.LastActivity1
	}
	if streak.ShouldNudge(partnerLast, time.Now()) {
		msg := fmt.Sprintf("🔥 %s is keeping the dragon warm! Join in.", senderName)
		if err := s.notifier.SendMessage(ctx, partnerID, msg); err != nil {
			log.Printf("Failed to nudge user %d on streak %s: %v", partnerID, st.ID, err)
		}
	}

	return nil
}

func (s *StreakService) grantFreeze(ctx context.Context, id uuid.UUID) error {
	query := `
	UPDATE streaks
	SET freezes_available = freezes_available + 1, updated_at = NOW()
	WHERE id = $1
	`
	if _, err := s.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to grant freeze: %w", err)
	}
	return nil
}

// StreakView is a streak plus everything the mini-app derives at read time.
type StreakView struct {
	streak.Streak
	Health   int        `json:"health"`
	Stage    pet.Stage  `json:"stage"`
	Progress float64    `json:"progress"`
	Badges1  pet.Badges `json:"badges1"`
	Badges2  pet.Badges `json:"badges2"`
	Player1  string     `json:"player1"`
	Player2  string     `json:"player2"`
}

// GetStreaksForUser lists the streaks a user participates in, with derived
// health, stage and badges. Health is always recomputed here; nothing stored
// is trusted for it.
func (s *StreakService) GetStreaksForUser(ctx context.Context, userID int64) ([]*StreakView, error) {
	query := `
	SELECT s.id, s.user1_id, s.user2_id, s.group_id, s.count, s.pet_name,
	       s.last_activity1, s.last_activity2, s.last_check_in,
	       s.daily_msgs1, s.daily_msgs2, s.freezes_available, s.created_at, s.updated_at,
	       u1.username, u1.first_name, u2.username, u2.first_name
	FROM streaks s
	JOIN users u1 ON u1.id = s.user1_id
	JOIN users u2 ON u2.id = s.user2_id
	WHERE s.user1_id = $1 OR s.user2_id = $1
	ORDER BY s.created_at
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list streaks for user %d: %w", userID, err)
	}
	defer rows.Close()

	views := []*StreakView{}
	for rows.Next() {
		v := &StreakView{}
		var uname1, fname1, uname2, fname2 string
		err := rows.Scan(
			&v.ID, &v.User1ID, &v.User2ID, &v.GroupID, &v.Count, &v.PetName,
			&v.LastActivity1, &v.LastActivity2, &v.LastCheckIn,
			&v.DailyMsgs1, &v.DailyMsgs2, &v.FreezesAvailable, &v.CreatedAt, &v.UpdatedAt,
			&uname1, &fname1, &uname2, &fname2,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan streak view: %w", err)
		}

		v.Health = streak.Health(v.LastActivity1, v.LastActivity2, time.Now())
		v.Stage = pet.StageFor(v.Count)
		v.Progress = pet.Progress(v.Count)
		v.Badges1 = pet.BadgesFor(v.Count, v.DailyMsgs1)
		v.Badges2 = pet.BadgesFor(v.Count, v.DailyMsgs2)
		v.Player1 = utils.DisplayName(uname1, fname1)
		v.Player2 = utils.DisplayName(uname2, fname2)

		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read streak views: %w", err)
	}

	return views, nil
}

// CheckIn bumps the level counter. This is the only path that grows count.
func (s *StreakService) CheckIn(ctx context.Context, id uuid.UUID) (int, error) {
	query := `
	UPDATE streaks
	SET count = count + 1, last_check_in = NOW(), updated_at = NOW()
	WHERE id = $1
	RETURNING count
	`

	var count int
	err := s.db.QueryRow(ctx, query, id).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrStreakNotFound
		}
		return 0, fmt.Errorf("failed to check in on streak %s: %w", id, err)
	}

	return count, nil
}

// RenamePet sets the pet's display name.
func (s *StreakService) RenamePet(ctx context.Context, id uuid.UUID, newName string) (string, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return "", fmt.Errorf("pet name must not be empty")
	}

	query := `
	UPDATE streaks
	SET pet_name = $2, updated_at = NOW()
	WHERE id = $1
	RETURNING pet_name
	`

	var petName string
	err := s.db.QueryRow(ctx, query, id, newName).Scan(&petName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrStreakNotFound
		}
		return "", fmt.Errorf("failed to rename pet on streak %s: %w", id, err)
	}

	return petName, nil
}

// UseFreeze consumes one freeze and resets both activity timestamps, forcing
// health back to 100. The only way to revive a stone dragon without new
// messages. The guard and decrement are one statement, so two concurrent
// uses cannot both spend the last freeze.
func (s *StreakService) UseFreeze(ctx context.Context, id uuid.UUID) (int, error) {
	query := `
	UPDATE streaks
	SET freezes_available = freezes_available - 1,
	    last_activity1 = NOW(),
	    last_activity2 = NOW(),
	    updated_at = NOW()
	WHERE id = $1 AND freezes_available > 0
	RETURNING freezes_available
	`

	var freezes int
	err := s.db.QueryRow(ctx, query, id).Scan(&freezes)
	if err == nil {
		return freezes, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("failed to use freeze on streak %s: %w", id, err)
	}

	// distinguish an unknown streak from an empty inventory
	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM streaks WHERE id = $1)`, id).Scan(&exists); err != nil {
		return 0, fmt.Errorf("failed to look up streak %s: %w", id, err)
	}
	if !exists {
		return 0, ErrStreakNotFound
	}
	return 0, ErrNoFreezes
}

// GetLeaderboard returns the top 10 streaks by count.
func (s *StreakService) GetLeaderboard(ctx context.Context) ([]*leaderboard.Entry, error) {
	query := `
	SELECT s.id, s.pet_name, s.count,
	       u1.username, u1.first_name, u2.username, u2.first_name
	FROM streaks s
	JOIN users u1 ON u1.id = s.user1_id
	JOIN users u2 ON u2.id = s.user2_id
	ORDER BY s.count DESC
	LIMIT 10
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []*leaderboard.Entry{}
	for rows.Next() {
		e := &leaderboard.Entry{}
		var uname1, fname1, uname2, fname2 string
		if err := rows.Scan(&e.ID, &e.PetName, &e.Count, &uname1, &fname1, &uname2, &fname2); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		e.Players = fmt.Sprintf("%s & %s",
			utils.DisplayName(uname1, fname1),
			utils.DisplayName(uname2, fname2))
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}

	return entries, nil
}

// BindGroup attaches a group chat to the caller's streak so group messages
// feed the dragon too.
func (s *StreakService) BindGroup(ctx context.Context, userID, groupID int64) error {
	var id uuid.UUID
	err := s.db.QueryRow(ctx,
		`SELECT id FROM streaks WHERE user1_id = $1 OR user2_id = $1 LIMIT 1`,
		userID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrStreakNotFound
		}
		return fmt.Errorf("failed to find streak for user %d: %w", userID, err)
	}

	if _, err := s.db.Exec(ctx,
		`UPDATE streaks SET group_id = $2, updated_at = NOW() WHERE id = $1`,
		id, groupID); err != nil {
		return fmt.Errorf("failed to bind group %d to streak %s: %w", groupID, id, err)
	}

	return nil
}
