package reminder

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/vibetracker/vibetracker/internal/models"
)

// Dispatcher periodically sweeps due unsent reminders and delivers them
// through a Notifier, marking each one sent after a successful delivery.
// A failed delivery leaves the reminder unsent so the next sweep retries it.
type Dispatcher struct {
	db       *gorm.DB
	notifier Notifier
	log      *zap.Logger
	schedule string

	cron *cron.Cron
}

// NewDispatcher creates a dispatcher with a 5-field cron schedule.
func NewDispatcher(db *gorm.DB, notifier Notifier, log *zap.Logger, schedule string) *Dispatcher {
	return &Dispatcher{db: db, notifier: notifier, log: log, schedule: schedule}
}

// Start begins the sweep schedule. It returns immediately; sweeps run on the
// cron goroutine until Stop is called.
func (d *Dispatcher) Start() error {
	c := cron.New()
	_, err := c.AddFunc(d.schedule, func() {
		if _, err := d.Sweep(time.Now().UTC()); err != nil {
			d.log.Error("reminder sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("reminder: schedule %q: %w", d.schedule, err)
	}
	c.Start()
	d.cron = c
	d.log.Info("reminder dispatcher started", zap.String("schedule", d.schedule))
	return nil
}

// Stop halts the schedule and waits for any running sweep to finish.
func (d *Dispatcher) Stop() {
	if d.cron != nil {
		<-d.cron.Stop().Done()
	}
}

// Sweep delivers every reminder due at or before now, ordered by remind_at,
// and returns how many deliveries succeeded.
func (d *Dispatcher) Sweep(now time.Time) (int, error) {
	var due []models.Reminder
	err := d.db.Where("sent = ? AND remind_at <= ?", false, now).
		Order("remind_at ASC").
		Find(&due).Error
	if err != nil {
		return 0, fmt.Errorf("reminder: load due: %w", err)
	}

	delivered := 0
	for _, rem := range due {
		if err := d.notifier.Notify(rem); err != nil {
			d.log.Warn("reminder delivery failed",
				zap.String("reminder_id", rem.ID),
				zap.Error(err),
			)
			continue
		}
		if err := d.markSent(rem); err != nil {
			d.log.Warn("reminder delivered but not marked sent",
				zap.String("reminder_id", rem.ID),
				zap.Error(err),
			)
			continue
		}
		delivered++
	}
	return delivered, nil
}

// markSent flips the reminder's sent flag and mirrors it into the
// denormalized summary on the step-progress row.
func (d *Dispatcher) markSent(rem models.Reminder) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Reminder{}).Where("id = ?", rem.ID).Update("sent", true).Error
		if err != nil {
			return fmt.Errorf("reminder: mark sent %s: %w", rem.ID, err)
		}

		var row models.StepProgress
		err = tx.Where("project_id = ? AND step_number = ?", rem.ProjectID, rem.StepNumber).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Step row gone after a project cascade delete; nothing to mirror.
			return nil
		}
		if err != nil {
			return fmt.Errorf("reminder: load step for %s: %w", rem.ID, err)
		}
		summaries, err := decodeSummaries(row.Reminders)
		if err != nil {
			return fmt.Errorf("reminder: decode summaries for %s: %w", rem.ID, err)
		}
		changed := false
		for i := range summaries {
			if summaries[i].ID == rem.ID {
				summaries[i].Sent = true
				changed = true
			}
		}
		if !changed {
			return nil
		}
		encoded, err := json.Marshal(summaries)
		if err != nil {
			return fmt.Errorf("reminder: encode summaries for %s: %w", rem.ID, err)
		}
		err = tx.Model(&models.StepProgress{}).
			Where("project_id = ? AND step_number = ?", rem.ProjectID, rem.StepNumber).
			Update("reminders", datatypes.JSON(encoded)).Error
		if err != nil {
			return fmt.Errorf("reminder: mirror sent flag for %s: %w", rem.ID, err)
		}
		return nil
	})
}
