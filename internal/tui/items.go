package tui

import (
	"fmt"
	"strings"

	"github.com/Joseda-hg/lazytodo/internal/model"
)

var statusMarkers = map[string]string{
	model.StatusOpen:       "[ ]",
	model.StatusInProgress: "[~]",
	model.StatusDone:       "[x]",
}

var priorityMarkers = map[string]string{
	model.PriorityLow:    "low",
	model.PriorityMedium: "med",
	model.PriorityHigh:   "HIGH",
}

func formatTaskSummary(task model.Task) string {
	marker, ok := statusMarkers[task.Status]
	if !ok {
		marker = "[?]"
	}
	priority, ok := priorityMarkers[task.Priority]
	if !ok {
		priority = task.Priority
	}
	return fmt.Sprintf("%s %-4s %s", marker, priority, task.Title)
}

func formatTaskDetail(task model.Task) []string {
	lines := []string{
		task.Title,
		fmt.Sprintf("status: %s | priority: %s", task.Status, task.Priority),
		fmt.Sprintf("created: %s | updated: %s", task.CreatedAt.Local().Format("2006-01-02 15:04"), task.UpdatedAt.Local().Format("2006-01-02 15:04")),
	}
	if description := strings.TrimSpace(task.Description); description != "" {
		lines = append(lines, "", description)
	}
	return lines
}

func formatHistoryEntry(entry model.HistoryEntry) string {
	return fmt.Sprintf("%s %s", entry.CreatedAt.Local().Format("01-02 15:04"), entry.Details)
}

func filterLabel(value string) string {
	if value == "" {
		return model.FilterAll
	}
	return value
}
