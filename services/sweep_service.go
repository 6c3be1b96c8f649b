package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"fireDragonAPI/internal/streak"
)

var (
	sweepRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "decay_sweep_runs_total",
		Help: "Total number of decay sweep cycles",
	})
	sweepRecordFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "decay_sweep_record_failures_total",
		Help: "Streak records that failed during a sweep",
	})
	sweepNotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "decay_sweep_notifications_total",
		Help: "Notifications emitted by the decay sweep",
	}, []string{"kind"})
)

const warningMessage = "🔥 Your dragon is getting cold! Send a message to warm it up!"
const deathMessage = "🪨 The fire went out and your dragon turned to stone. Open the app to revive it!"

// SweepService runs the hourly decay pass over every streak: cold warnings
// in the (20, 21)h silence window and a one-time death notice once both
// members pass 24h. It also resets the daily message counters on the first
// run of each UTC day.
type SweepService struct {
	db       *pgxpool.Pool
	notifier Notifier

	lastResetDay string
}

func NewSweepService(db *pgxpool.Pool, notifier Notifier) *SweepService {
	return &SweepService{
		db:       db,
		notifier: notifier,
		// skip the boot-time reset; only a day rollover counts
		lastResetDay: time.Now().UTC().Format("2006-01-02"),
	}
}

// RunSweep executes one decay cycle. A failure on one streak is logged and
// never aborts the rest; notification delivery is best-effort and not
// retried within the cycle (the next cycle recomputes everything).
func (s *SweepService) RunSweep(ctx context.Context, now time.Time) error {
	sweepRunsTotal.Inc()
	log.Println("🔍 Decay sweep: checking dragon health...")

	if day := now.UTC().Format("2006-01-02"); day != s.lastResetDay {
		if err := s.resetDailyCounters(ctx); err != nil {
			log.Printf("Failed to reset daily counters: %v", err)
		} else {
			s.lastResetDay = day
		}
	}

	query := `
	SELECT id, user1_id, user2_id, last_activity1, last_activity2
	FROM streaks
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to load streaks for sweep: %w", err)
	}

	var streaks []streak.Streak
	for rows.Next() {
		var st streak.Streak
		if err := rows.Scan(&st.ID, &st.User1ID, &st.User2ID, &st.LastActivity1, &st.LastActivity2); err != nil {
			log.Printf("Failed to scan streak during sweep: %v", err)
			sweepRecordFailures.Inc()
			continue
		}
		streaks = append(streaks, st)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read streaks for sweep: %w", err)
	}

	for i := range streaks {
		s.sweepOne(ctx, &streaks[i], now)
	}

	return nil
}

func (s *SweepService) sweepOne(ctx context.Context, st *streak.Streak, now time.Time) {
	res := streak.Sweep(st, now)

	if res.WarnUser1 {
		s.send(ctx, st.User1ID, warningMessage, "warning")
	}
	if res.WarnUser2 {
		s.send(ctx, st.User2ID, warningMessage, "warning")
	}
	if res.Death {
		s.send(ctx, st.User1ID, deathMessage, "death")
		s.send(ctx, st.User2ID, deathMessage, "death")
	}
}

func (s *SweepService) send(ctx context.Context, userID int64, text, kind string) {
	if err := s.notifier.SendMessage(ctx, userID, text); err != nil {
		log.Printf("Failed to deliver %s notification to user %d: %v", kind, userID, err)
		sweepRecordFailures.Inc()
		return
	}
	sweepNotificationsSent.WithLabelValues(kind).Inc()
}

func (s *SweepService) resetDailyCounters(ctx context.Context) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE streaks SET daily_msgs1 = 0, daily_msgs2 = 0, updated_at = NOW()
		 WHERE daily_msgs1 > 0 OR daily_msgs2 > 0`)
	if err != nil {
		return fmt.Errorf("failed to reset daily message counters: %w", err)
	}

	log.Printf("Daily message counters reset on %d streaks", tag.RowsAffected())
	return nil
}
