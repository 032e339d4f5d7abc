package workflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"hirepath/internal/domain/application"
	"hirepath/internal/notify"
	"hirepath/internal/pkg/apperror"
)

var (
	ErrUnknownStatus      = errors.New("workflow: unknown status")
	ErrNoOpTransition     = errors.New("workflow: application already has this status")
	ErrTransitionInFlight = errors.New("workflow: a status update for this application is already in progress")
)

var interviewLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

type Store interface {
	Record(ctx context.Context, id int64) (application.Record, error)
	UpdateStatus(ctx context.Context, id int64, upd application.StatusUpdate) (application.Record, error)
	RefreshRecord(ctx context.Context, id int64) (application.Record, error)
}

// Details carries the optional fields of a detailed update.
type Details struct {
	Notes         string
	InterviewDate string
}

// Controller drives application status transitions. Every attempt announces its intended outcome
// before the request is sent and reports a failure separately; the record itself changes only
// after the server confirms.
type Controller struct {
	store    Store
	notifier notify.Notifier
	logger   *log.Logger

	mu       sync.Mutex
	inflight map[int64]struct{}
}

func NewController(store Store, notifier notify.Notifier, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.Default()
	}
	return &Controller{
		store:    store,
		notifier: notifier,
		logger:   logger,
		inflight: make(map[int64]struct{}),
	}
}

func (c *Controller) Actions(rec application.Record) []Action {
	return ActionsFrom(rec.Status)
}

// QuickAction moves the application to the target status with no extra data.
func (c *Controller) QuickAction(ctx context.Context, id int64, to application.Status) (application.Record, error) {
	return c.transition(ctx, id, application.StatusUpdate{Status: to})
}

// DetailedUpdate moves the application with optional notes and, for SHORTLISTED or HIRED, an
// interview date.
func (c *Controller) DetailedUpdate(ctx context.Context, id int64, to application.Status, d Details) (application.Record, error) {
	upd := application.StatusUpdate{Status: to}
	if notes := strings.TrimSpace(d.Notes); notes != "" {
		upd.Notes = &notes
	}
	if date := strings.TrimSpace(d.InterviewDate); date != "" {
		if !to.AcceptsInterviewDate() {
			return application.Record{}, apperror.Validation("interview_date: An interview date can only be set when shortlisting or hiring.", nil)
		}
		if !validInterviewDate(date) {
			return application.Record{}, apperror.Validation("interview_date: Enter a valid date.", nil)
		}
		upd.InterviewDate = &date
	}
	return c.transition(ctx, id, upd)
}

func validInterviewDate(s string) bool {
	for _, layout := range interviewLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func (c *Controller) acquire(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inflight[id]; busy {
		return false
	}
	c.inflight[id] = struct{}{}
	return true
}

func (c *Controller) release(id int64) {
	c.mu.Lock()
	delete(c.inflight, id)
	c.mu.Unlock()
}

func (c *Controller) InFlight(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, busy := c.inflight[id]
	return busy
}

func (c *Controller) transition(ctx context.Context, id int64, upd application.StatusUpdate) (application.Record, error) {
	if !upd.Status.Valid() {
		return application.Record{}, fmt.Errorf("%w: %q", ErrUnknownStatus, upd.Status)
	}
	if !c.acquire(id) {
		return application.Record{}, ErrTransitionInFlight
	}
	defer c.release(id)

	current, err := c.store.Record(ctx, id)
	if err != nil {
		c.logger.Printf("workflow | application_id=%d to=%s step=lookup status=error err=%v", id, upd.Status, err)
		c.notify(notify.LevelError, "Status update failed", apperror.Message(err, "Failed to load the application."))
		return application.Record{}, err
	}
	// The server decides which moves are legal; only the redundant one is refused here.
	if current.Status == upd.Status {
		return application.Record{}, ErrNoOpTransition
	}

	action, _ := ActionFor(upd.Status)
	c.notify(action.Tone, action.Label, action.Optimistic)

	updated, err := c.store.UpdateStatus(ctx, id, upd)
	if err != nil {
		c.logger.Printf("workflow | application_id=%d from=%s to=%s status=error err=%v", id, current.Status, upd.Status, err)
		reason := apperror.Message(err, "Failed to update status.")
		c.notify(notify.LevelError, "Status update failed",
			fmt.Sprintf("%s Status reverted to %s.", strings.TrimRight(reason, ".")+".", current.Status))
		return application.Record{}, err
	}

	c.logger.Printf("workflow | application_id=%d from=%s to=%s offered=%t status=ok",
		id, current.Status, upd.Status, application.CanTransition(current.Status, upd.Status))
	refreshed, err := c.store.RefreshRecord(ctx, id)
	if err != nil {
		c.logger.Printf("workflow | application_id=%d step=refresh status=error err=%v", id, err)
		return updated, nil
	}
	return refreshed, nil
}

func (c *Controller) notify(level notify.Level, title, message string) {
	if c.notifier != nil {
		c.notifier.Notify(level, title, message)
	}
}
