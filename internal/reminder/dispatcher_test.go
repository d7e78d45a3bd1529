package reminder

import (
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/vibetracker/vibetracker/internal/models"
)

type fakeNotifier struct {
	delivered []models.Reminder
	failIDs   map[string]bool
}

func (n *fakeNotifier) Notify(rem models.Reminder) error {
	if n.failIDs[rem.ID] {
		return fmt.Errorf("delivery refused")
	}
	n.delivered = append(n.delivered, rem)
	return nil
}

func TestSweep_DeliversDueOnly(t *testing.T) {
	db := testDB(t)
	proj := createProject(t, db, "user-1")
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	due, err := Create(db, "user-1", proj.ID, 1, now.Add(-time.Hour), "due")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Create(db, "user-1", proj.ID, 2, now.Add(time.Hour), "not yet"); err != nil {
		t.Fatal(err)
	}

	notifier := &fakeNotifier{}
	d := NewDispatcher(db, notifier, zap.NewNop(), "*/5 * * * *")

	count, err := d.Sweep(now)
	if err != nil {
		t.Fatalf("Sweep() error: %v", err)
	}
	if count != 1 {
		t.Fatalf("delivered = %d, want 1", count)
	}
	if len(notifier.delivered) != 1 || notifier.delivered[0].ID != due.ID {
		t.Errorf("delivered = %+v, want only the due reminder", notifier.delivered)
	}
}

func TestSweep_MarksSentAndMirrors(t *testing.T) {
	db := testDB(t)
	proj := createProject(t, db, "user-1")
	now := time.Now().UTC()

	rem, err := Create(db, "user-1", proj.ID, 4, now.Add(-time.Minute), "due")
	if err != nil {
		t.Fatal(err)
	}

	d := NewDispatcher(db, &fakeNotifier{}, zap.NewNop(), "*/5 * * * *")
	if _, err := d.Sweep(now); err != nil {
		t.Fatal(err)
	}

	var stored models.Reminder
	if err := db.Where("id = ?", rem.ID).First(&stored).Error; err != nil {
		t.Fatal(err)
	}
	if !stored.Sent {
		t.Error("reminder not marked sent after delivery")
	}

	summaries := stepSummaries(t, db, proj.ID, 4)
	if len(summaries) != 1 || !summaries[0].Sent {
		t.Errorf("summaries = %+v, want mirrored sent flag", summaries)
	}
}

func TestSweep_FailedDeliveryStaysUnsent(t *testing.T) {
	db := testDB(t)
	proj := createProject(t, db, "user-1")
	now := time.Now().UTC()

	rem, err := Create(db, "user-1", proj.ID, 1, now.Add(-time.Minute), "due")
	if err != nil {
		t.Fatal(err)
	}

	notifier := &fakeNotifier{failIDs: map[string]bool{rem.ID: true}}
	d := NewDispatcher(db, notifier, zap.NewNop(), "*/5 * * * *")

	count, err := d.Sweep(now)
	if err != nil {
		t.Fatalf("Sweep() error: %v", err)
	}
	if count != 0 {
		t.Errorf("delivered = %d, want 0", count)
	}

	var stored models.Reminder
	if err := db.Where("id = ?", rem.ID).First(&stored).Error; err != nil {
		t.Fatal(err)
	}
	if stored.Sent {
		t.Error("failed delivery must leave the reminder unsent for retry")
	}
}

func TestSweep_AlreadySentSkipped(t *testing.T) {
	db := testDB(t)
	proj := createProject(t, db, "user-1")
	now := time.Now().UTC()

	if _, err := Create(db, "user-1", proj.ID, 1, now.Add(-time.Minute), "due"); err != nil {
		t.Fatal(err)
	}

	notifier := &fakeNotifier{}
	d := NewDispatcher(db, notifier, zap.NewNop(), "*/5 * * * *")
	if _, err := d.Sweep(now); err != nil {
		t.Fatal(err)
	}
	count, err := d.Sweep(now)
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("second sweep delivered = %d, want 0", count)
	}
	if len(notifier.delivered) != 1 {
		t.Errorf("total deliveries = %d, want 1", len(notifier.delivered))
	}
}

func TestStart_BadSchedule(t *testing.T) {
	db := testDB(t)
	d := NewDispatcher(db, &fakeNotifier{}, zap.NewNop(), "not a schedule")
	if err := d.Start(); err == nil {
		t.Fatal("expected error for invalid cron expression")
	}
}

func TestStartStop(t *testing.T) {
	db := testDB(t)
	d := NewDispatcher(db, &fakeNotifier{}, zap.NewNop(), "*/5 * * * *")
	if err := d.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	d.Stop()
}
