package model

import (
	"slices"
	"strings"
	"time"
)

const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// FilterAll is the query value that disables a filter.
const FilterAll = "all"

var (
	Statuses   = []string{StatusOpen, StatusInProgress, StatusDone}
	Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh}
)

type Task struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type HistoryEntry struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	TaskID    int64     `json:"task_id"`
	EventType string    `json:"event_type"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

// Filter restricts a task listing. Empty fields match everything.
type Filter struct {
	Status   string `json:"status"`
	Priority string `json:"priority"`
}

// NewFilter builds a Filter from raw query values, treating "all" and blanks as no filter.
func NewFilter(status, priority string) Filter {
	return Filter{Status: normalizeFilterValue(status), Priority: normalizeFilterValue(priority)}
}

// StatusLabel returns the value echoed back to clients for the status filter.
func (f Filter) StatusLabel() string {
	if f.Status == "" {
		return FilterAll
	}
	return f.Status
}

func (f Filter) PriorityLabel() string {
	if f.Priority == "" {
		return FilterAll
	}
	return f.Priority
}

func (f Filter) IsZero() bool {
	return f.Status == "" && f.Priority == ""
}

func ValidStatus(value string) bool {
	return slices.Contains(Statuses, value)
}

func ValidPriority(value string) bool {
	return slices.Contains(Priorities, value)
}

func normalizeFilterValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == FilterAll {
		return ""
	}
	return trimmed
}
