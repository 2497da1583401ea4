// services/scheduler.go
package services

import (
	"log"
	"time"

	"jam-community-portal/models"

	"github.com/go-co-op/gocron/v2"
)

// StartJamScheduler activates jams whose start date has arrived and
// deactivates jams past their end date. Activation goes through SetActiveJam
// so the one-active-jam invariant holds even when the scheduler races an
// admin toggle.
func (s *JamService) StartJamScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			now := time.Now()

			// Deactivate finished jams first so an expiring jam does not
			// block its successor from becoming active.
			var expired []models.Jam
			if err := s.DB.Where("active = ? AND end_date <> ? AND end_date <= ?",
				true, time.Time{}, now).Find(&expired).Error; err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}
			for _, j := range expired {
				if err := s.DeactivateJam(j.ID); err != nil {
					log.Printf("[Scheduler] Failed to deactivate jam %s: %v", j.ID, err)
				} else {
					log.Printf("✅ Auto-deactivated finished jam: %s", j.Name)
				}
			}

			// Activate at most one due jam — earliest start date wins.
			var due models.Jam
			err := s.DB.Where("active = ? AND start_date <> ? AND start_date <= ? AND (end_date = ? OR end_date > ?)",
				false, time.Time{}, now, time.Time{}, now).
				Order("start_date ASC").
				First(&due).Error
			if err != nil {
				return
			}

			// Skip if some jam is already active; the admin's choice stands.
			var activeCount int64
			s.DB.Model(&models.Jam{}).Where("active = ?", true).Count(&activeCount)
			if activeCount > 0 {
				return
			}

			if err := s.SetActiveJam(due.ID); err != nil {
				log.Printf("[Scheduler] Failed to activate jam %s: %v", due.ID, err)
			} else {
				log.Printf("✅ Auto-activated jam: %s", due.Name)
			}
		}),
	)
}
