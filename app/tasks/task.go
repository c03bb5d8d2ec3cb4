package tasks

import (
	"fmt"
	"math/rand"
	"time"
)

type TaskType string

const (
	TaskTypeCheck TaskType = "check_freebies"
)

// Task carries the identity and timing bookkeeping shared by task types.
// There is deliberately no retry plumbing: a failed cycle is simply retried
// by the next scheduled run.
type Task struct {
	ID        string
	Type      TaskType
	StartedAt *time.Time
}

func NewTask(taskType TaskType) Task {
	uniqueID := fmt.Sprintf("%d-%d", time.Now().UnixNano(), rand.Intn(10000))

	return Task{
		ID:   uniqueID,
		Type: taskType,
	}
}

func (t *Task) GetID() string {
	return t.ID
}

func (t *Task) GetType() TaskType {
	return t.Type
}

func (t *Task) Start() {
	now := time.Now()
	t.StartedAt = &now
}

func (t *Task) GetDuration() time.Duration {
	if t.StartedAt == nil {
		return 0
	}
	return time.Since(*t.StartedAt)
}
