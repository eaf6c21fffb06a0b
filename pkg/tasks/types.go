// Package tasks provides task queue management using Asynq
package tasks

import (
	"fmt"
	"time"
)

const (
	// TypeScrape is the task type for upstream draw fetches
	TypeScrape = "lottery:scrape"
	// TypeUpdate is the task type for incremental feature updates
	TypeUpdate = "lottery:update"
	// TypeRebuild is the task type for full feature rebuilds
	TypeRebuild = "lottery:rebuild"
)

// Task triggers reported in metrics
const (
	TriggerSchedule = "schedule"
	TriggerAPI      = "api"
	TriggerManual   = "manual"
)

// TaskPayload identifies one unit of background work for one game.
type TaskPayload struct {
	Type       string    `json:"type"`
	Lottery    string    `json:"lottery"`
	Trigger    string    `json:"trigger"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// UniqueID returns a unique identifier for this task. One task of a kind per
// game can be queued at a time.
func (p TaskPayload) UniqueID() string {
	return fmt.Sprintf("%s:%s", p.Type, p.Lottery)
}

// QueueName returns the queue for this payload. Each game has its own queue
// so the worker schedules games fairly; write exclusivity comes from the
// handler's run lock, not from the queue.
func (p TaskPayload) QueueName() string {
	return p.Lottery
}
