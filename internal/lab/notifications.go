package lab

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// EventType names what happened in a session.
type EventType string

const (
	EventStateChanged        EventType = "state_changed"
	EventSimulationCompleted EventType = "simulation_completed"
	EventLevelCompleted      EventType = "level_completed"
	EventAchievementUnlocked EventType = "achievement_unlocked"
)

// Event is pushed to the presentation layer and reported to external
// progress services. Only the fields relevant to Type are set.
type Event struct {
	Type        EventType         `json:"type"`
	SessionID   SessionID         `json:"session_id"`
	Timestamp   int64             `json:"timestamp"`
	Phase       Phase             `json:"phase"`
	Level       int               `json:"level"`
	Score       int               `json:"score"`
	State       *GameState        `json:"state,omitempty"`
	Verdict     Verdict           `json:"verdict,omitempty"`
	Result      *SimulationResult `json:"result,omitempty"`
	LevelScore  *ScoreBreakdown   `json:"level_score,omitempty"`
	Achievement *Achievement      `json:"achievement,omitempty"`
	GlobalScore int               `json:"global_score,omitempty"`
}

func (ev Event) JSON() ([]byte, error) {
	return json.Marshal(ev)
}

// EventSink receives session events. Publish must not block.
type EventSink interface {
	Publish(ev Event)
}

// Notifier is a delivery channel for events (webhook, websocket, ...).
type Notifier interface {
	ID() string

	// Type returns the channel kind, e.g. "webhook" or "websocket"
	Type() string

	// Notify delivers one event. The context carries the delivery deadline.
	Notify(ctx context.Context, event Event) error

	Close() error
}

type notificationJob struct {
	Event       Event
	NotifierIDs []string
}

// NotificationManager fans events out to registered notifiers from a
// background worker, retrying failed deliveries with exponential backoff.
type NotificationManager struct {
	mu        sync.RWMutex
	notifiers map[string]Notifier
	jobs      chan notificationJob
	closed    bool
	wg        sync.WaitGroup
	logger    Logger
	backoff   time.Duration
}

const (
	notificationQueueSize  = 1024
	notificationMaxRetries = 3
)

func NewNotificationManager() *NotificationManager {
	return NewNotificationManagerWithLogger(nil)
}

func NewNotificationManagerWithLogger(logger Logger) *NotificationManager {
	mgr := &NotificationManager{
		notifiers: make(map[string]Notifier),
		jobs:      make(chan notificationJob, notificationQueueSize),
		logger:    orNoOp(logger),
		backoff:   100 * time.Millisecond,
	}
	mgr.startWorkers(1)
	return mgr
}

func (nm *NotificationManager) RegisterNotifier(notifier Notifier) error {
	if notifier == nil {
		return fmt.Errorf("notifier cannot be nil")
	}

	id := notifier.ID()
	if id == "" {
		return fmt.Errorf("notifier ID cannot be empty")
	}

	nm.mu.Lock()
	defer nm.mu.Unlock()

	if nm.closed {
		return fmt.Errorf("notification manager is closed")
	}
	if _, exists := nm.notifiers[id]; exists {
		return fmt.Errorf("notifier with ID %s already exists", id)
	}

	nm.notifiers[id] = notifier
	return nil
}

// UnregisterNotifier closes and removes the notifier with the given ID.
func (nm *NotificationManager) UnregisterNotifier(id string) error {
	nm.mu.Lock()
	notifier, exists := nm.notifiers[id]
	if exists {
		delete(nm.notifiers, id)
	}
	nm.mu.Unlock()

	if !exists {
		return fmt.Errorf("notifier with ID %s not found", id)
	}
	if err := notifier.Close(); err != nil {
		return fmt.Errorf("error closing notifier %s: %w", id, err)
	}
	return nil
}

// GetNotifier looks up a registered notifier by ID.
func (nm *NotificationManager) GetNotifier(id string) (Notifier, bool) {
	nm.mu.RLock()
	defer nm.mu.RUnlock()
	notifier, exists := nm.notifiers[id]
	return notifier, exists
}

// ListNotifiers returns the IDs of all registered notifiers.
func (nm *NotificationManager) ListNotifiers() []string {
	nm.mu.RLock()
	defer nm.mu.RUnlock()
	ids := make([]string, 0, len(nm.notifiers))
	for id := range nm.notifiers {
		ids = append(ids, id)
	}
	return ids
}

// Publish queues ev for every registered notifier.
func (nm *NotificationManager) Publish(ev Event) {
	nm.Enqueue(ev, nm.ListNotifiers())
}

// Enqueue queues ev for the given notifiers without blocking. The event is
// dropped when the queue is full.
func (nm *NotificationManager) Enqueue(event Event, notifierIDs []string) {
	if len(notifierIDs) == 0 {
		return
	}

	nm.mu.RLock()
	defer nm.mu.RUnlock()
	if nm.closed {
		return
	}

	select {
	case nm.jobs <- notificationJob{Event: event, NotifierIDs: notifierIDs}:
	default:
		nm.logger.Warnf("notification queue full, dropping event: type=%s session=%s", event.Type, event.SessionID)
	}
}

func (nm *NotificationManager) startWorkers(n int) {
	for range n {
		nm.wg.Add(1)
		go nm.worker()
	}
}

func (nm *NotificationManager) worker() {
	defer nm.wg.Done()
	for job := range nm.jobs {
		nm.dispatchJob(job)
	}
}

func (nm *NotificationManager) dispatchJob(job notificationJob) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, id := range job.NotifierIDs {
		nm.notifyWithRetry(ctx, id, job.Event)
	}
}

func (nm *NotificationManager) notifyWithRetry(ctx context.Context, notifierID string, event Event) {
	notifier, ok := nm.GetNotifier(notifierID)
	if !ok {
		nm.logger.Warnf("notification failed: notifier=%s error=notifier not found", notifierID)
		return
	}

	backoff := nm.backoff
	for attempt := 0; attempt <= notificationMaxRetries; attempt++ {
		err := notifier.Notify(ctx, event)
		if err == nil {
			return
		}
		nm.logger.Warnf("notification failed: notifier=%s attempt=%d error=%v", notifierID, attempt+1, err)

		if attempt == notificationMaxRetries {
			nm.logger.Errorf("notification failed after %d attempts: notifier=%s", notificationMaxRetries+1, notifierID)
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
			backoff *= 2
		}
	}
}

// Notify delivers synchronously and reports every failure.
func (nm *NotificationManager) Notify(ctx context.Context, event Event, notifierIDs []string) error {
	var errs []error
	for _, id := range notifierIDs {
		notifier, exists := nm.GetNotifier(id)
		if !exists {
			errs = append(errs, fmt.Errorf("notifier %s not found", id))
			continue
		}
		if err := notifier.Notify(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("notifier %s failed: %w", id, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("notification errors: %v", errs)
	}
	return nil
}

// Close drains the queue, stops the worker and closes every notifier.
func (nm *NotificationManager) Close() error {
	nm.mu.Lock()
	if nm.closed {
		nm.mu.Unlock()
		return nil
	}
	nm.closed = true
	close(nm.jobs)
	nm.mu.Unlock()

	nm.wg.Wait()

	nm.mu.Lock()
	var errs []error
	for id, notifier := range nm.notifiers {
		if err := notifier.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing notifier %s: %w", id, err))
		}
	}
	nm.notifiers = make(map[string]Notifier)
	nm.mu.Unlock()

	if len(errs) > 0 {
		return fmt.Errorf("errors closing notifiers: %v", errs)
	}
	return nil
}
