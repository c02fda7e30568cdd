// Package notify produces owner reminders about delivery dates and idle expense ledgers and
// runs them on a cron schedule.
package notify

import (
	"fmt"
	"time"

	"obra_tracker/pkg/core/finance"
	"obra_tracker/pkg/core/models"
)

const (
	DefaultWarningDays = 30
	DefaultStaleDays   = 30
)

// Planner decides which reminders are due. It never touches storage.
type Planner struct {
	WarningDays int // delivery within this many days triggers delivery_due
	StaleDays   int // no expense for this many days triggers stale_ledger
}

func NewPlanner(warningDays int) Planner {
	if warningDays <= 0 {
		warningDays = DefaultWarningDays
	}
	return Planner{WarningDays: warningDays, StaleDays: DefaultStaleDays}
}

// Plan returns the reminders for now. Completed projects get none.
func (p Planner) Plan(projects []finance.Project, now time.Time) []models.Notification {
	today := finance.NewDate(now).Time
	var out []models.Notification

	for _, pr := range projects {
		if pr.Progress >= finance.CompletedProgress {
			continue
		}
		note := func(kind, msg string) {
			out = append(out, models.Notification{
				ProjectID: pr.ID,
				UserID:    pr.OwnerID,
				Kind:      kind,
				Message:   msg,
				Day:       today,
			})
		}

		if pr.DeliveryDate != nil && !pr.DeliveryDate.IsZero() {
			days := int(pr.DeliveryDate.Sub(today).Hours() / 24)
			switch {
			case days < 0:
				note(models.NotifyDeliveryOverdue, fmt.Sprintf("%s is %d days past its delivery date (%s) at %d%%.",
					pr.Name, -days, pr.DeliveryDate, pr.Progress))
			case days <= p.WarningDays:
				note(models.NotifyDeliveryDue, fmt.Sprintf("%s is due for delivery in %d days (%s) and is at %d%%.",
					pr.Name, days, pr.DeliveryDate, pr.Progress))
			}
		}

		last := lastActivity(pr)
		if !last.IsZero() && p.StaleDays > 0 {
			idle := int(today.Sub(last).Hours() / 24)
			if idle >= p.StaleDays {
				note(models.NotifyStaleLedger, fmt.Sprintf("No expense recorded for %s in %d days.", pr.Name, idle))
			}
		}
	}
	return out
}

// lastActivity is the latest expense date, or the start date when the ledger is empty.
func lastActivity(p finance.Project) time.Time {
	var last time.Time
	for _, e := range p.Expenses {
		if e.Date.After(last) {
			last = e.Date.Time
		}
	}
	if last.IsZero() {
		return p.StartDate.OrZero()
	}
	return last
}
