package notify

import (
	"context"
	"fmt"
	"time"

	"obra_tracker/pkg/core/finance"
	"obra_tracker/pkg/core/models"
	"obra_tracker/pkg/core/utils"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const jobTimeout = 5 * time.Minute

type ProjectLister interface {
	ListAllProjects(ctx context.Context) ([]finance.Project, error)
}

type NotificationWriter interface {
	CreateNotification(ctx context.Context, n *models.Notification) (bool, error)
}

// Scheduler runs the planner on a cron spec and stores new reminders.
type Scheduler struct {
	cron     *cron.Cron
	planner  Planner
	projects ProjectLister
	notes    NotificationWriter
	now      func() time.Time
}

func NewScheduler(spec string, planner Planner, projects ProjectLister, notes NotificationWriter) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(cron.WithLocation(time.UTC)),
		planner:  planner,
		projects: projects,
		notes:    notes,
		now:      time.Now,
	}
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		utils.Logger.Info("Starting reminder cron job...")
		if _, err := s.RunOnce(ctx); err != nil {
			utils.Logger.WithError(err).Error("Reminder job failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts the schedule; the returned context is done when a running job finishes.
func (s *Scheduler) Stop() context.Context { return s.cron.Stop() }

// RunOnce plans reminders for every project and returns how many were newly stored.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	projects, err := s.projects.ListAllProjects(ctx)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, n := range s.planner.Plan(projects, s.now()) {
		n := n
		ok, err := s.notes.CreateNotification(ctx, &n)
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}
	utils.Logger.WithFields(logrus.Fields{
		"projects": len(projects),
		"created":  created,
	}).Info("Reminder job finished")
	return created, nil
}
