package models

import "time"

// Priority is the urgency of a task
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"

	DefaultPriority = PriorityMedium
)

// Status is where a task is in its lifecycle
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusCancelled  Status = "cancelled"

	DefaultStatus = StatusTodo
)

// Project groups related tasks. Name is unique across the store.
type Project struct {
	ID          int64 // zero until persisted
	Name        string
	Description string
	CreatedAt   *time.Time // set by the store on insert
}

// Tag is a label that can be attached to any number of tasks
type Tag struct {
	ID   int64
	Name string
}

// Task represents a single task
type Task struct {
	ID          int64
	Title       string
	Description string
	Priority    Priority
	Status      Status
	ProjectID   *int64 // nil if not part of a project
	Deadline    *time.Time
	CreatedAt   *time.Time
	CompletedAt *time.Time

	Tags        []string // tag names, populated when loading tasks
	ProjectName string   // populated when loading tasks
}

// NewProject returns an unsaved project
func NewProject(name, description string) Project {
	return Project{Name: name, Description: description}
}

// NewTag returns an unsaved tag
func NewTag(name string) Tag {
	return Tag{Name: name}
}

// NewTask returns an unsaved task with the default priority and status
func NewTask(title string) Task {
	return Task{
		Title:    title,
		Priority: DefaultPriority,
		Status:   DefaultStatus,
		Tags:     []string{},
	}
}
