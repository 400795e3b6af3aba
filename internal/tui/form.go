package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Joseda-hg/lazytodo/internal/db"
	"github.com/Joseda-hg/lazytodo/internal/form"
	"github.com/Joseda-hg/lazytodo/internal/model"
)

type formField struct {
	Label string
	Value string
}

const (
	fieldTitle = iota
	fieldDescription
	fieldStatus
	fieldPriority
)

var fieldNames = map[int]string{
	fieldTitle:       "title",
	fieldDescription: "description",
	fieldStatus:      "status",
	fieldPriority:    "priority",
}

func buildFormFields(task *model.Task) []formField {
	fields := []formField{
		{Label: "Title"},
		{Label: "Description"},
		{Label: "Status (space/←→)"},
		{Label: "Priority (space/←→)"},
	}

	if task == nil {
		fields[fieldStatus].Value = model.StatusOpen
		fields[fieldPriority].Value = model.PriorityMedium
		return fields
	}

	fields[fieldTitle].Value = task.Title
	fields[fieldDescription].Value = task.Description
	fields[fieldStatus].Value = task.Status
	fields[fieldPriority].Value = task.Priority
	return fields
}

// parseFormFields runs the same validation as the web form and reports the first failing field.
func parseFormFields(fields []formField) (db.TaskInput, error) {
	f := &form.TaskForm{
		Title:       strings.TrimSpace(fields[fieldTitle].Value),
		Description: strings.TrimSpace(fields[fieldDescription].Value),
		Status:      strings.TrimSpace(fields[fieldStatus].Value),
		Priority:    strings.TrimSpace(fields[fieldPriority].Value),
	}
	if !f.Validate() {
		return db.TaskInput{}, formError(f.Errors)
	}
	return f.Input(), nil
}

func formError(errs form.Errors) error {
	for _, index := range []int{fieldTitle, fieldDescription, fieldStatus, fieldPriority} {
		name := fieldNames[index]
		if msg := errs.Get(name); msg != "" {
			return fmt.Errorf("%s: %s", name, msg)
		}
	}

	keys := make([]string, 0, len(errs))
	for key := range errs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return fmt.Errorf("%s: %s", keys[0], errs[keys[0]])
}

func isChoiceField(index int) bool {
	return index == fieldStatus || index == fieldPriority
}

func choicesFor(index int) []string {
	if index == fieldPriority {
		return model.Priorities
	}
	return model.Statuses
}

func cycleChoice(order []string, current string, delta int) string {
	value := strings.TrimSpace(strings.ToLower(current))
	index := 0
	for i, choice := range order {
		if choice == value {
			index = i
			break
		}
	}
	index = (index + delta + len(order)) % len(order)
	return order[index]
}

// cycleFilter walks "" → each choice → "" so the header can return to "all".
func cycleFilter(order []string, current string) string {
	if current == "" {
		return order[0]
	}
	for i, choice := range order {
		if choice == current && i < len(order)-1 {
			return order[i+1]
		}
	}
	return ""
}
