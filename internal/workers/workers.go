package workers

import (
	"context"
	"log"
	"time"

	"fireDragonAPI/services"
)

// StartDecayWorker runs the decay sweep once per hour until ctx is
// cancelled. The sweep itself isolates per-streak failures; this loop only
// guards against a whole cycle erroring out.
func StartDecayWorker(ctx context.Context, sweeper *services.SweepService) {
	ticker := time.NewTicker(1 * time.Hour)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("Decay worker stopped")
				return
			case now := <-ticker.C:
				runCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
				if err := sweeper.RunSweep(runCtx, now); err != nil {
					log.Printf("Decay sweep failed: %v", err)
				}
				cancel()
			}
		}
	}()
}
