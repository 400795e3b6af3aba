package tui

import (
	"context"
	"testing"

	"github.com/Joseda-hg/lazytodo/internal/db"
	"github.com/Joseda-hg/lazytodo/internal/model"
	"github.com/jesseduffield/gocui"
)

func TestLoadTasksIsScopedToUser(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	alice := newTestUser(t, store, "alice")
	bob := newTestUser(t, store, "bob")

	createTask(t, store, alice, "Alice task", model.StatusOpen, model.PriorityLow)
	createTask(t, store, bob, "Bob task", model.StatusOpen, model.PriorityLow)

	ui := newUI(store, alice)
	if err := ui.loadTasks(); err != nil {
		t.Fatalf("load tasks: %v", err)
	}
	if len(ui.tasks) != 1 || ui.tasks[0].Title != "Alice task" {
		t.Fatalf("expected only alice's task, got %+v", ui.tasks)
	}
	if len(ui.history) != 1 {
		t.Fatalf("expected history for the selected task, got %d entries", len(ui.history))
	}
}

func TestFilterKeysCycleAndClear(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	alice := newTestUser(t, store, "alice")

	createTask(t, store, alice, "open low", model.StatusOpen, model.PriorityLow)
	createTask(t, store, alice, "done high", model.StatusDone, model.PriorityHigh)

	ui := newUI(store, alice)
	if err := ui.loadTasks(); err != nil {
		t.Fatalf("load tasks: %v", err)
	}

	if err := ui.cycleStatusFilter(nil, nil); err != nil {
		t.Fatalf("cycle status: %v", err)
	}
	if ui.filter.Status != model.StatusOpen {
		t.Fatalf("expected status filter 'open', got %q", ui.filter.Status)
	}
	if len(ui.tasks) != 1 || ui.tasks[0].Title != "open low" {
		t.Fatalf("expected only the open task, got %+v", ui.tasks)
	}

	if err := ui.cyclePriorityFilter(nil, nil); err != nil {
		t.Fatalf("cycle priority: %v", err)
	}
	if ui.filter.Priority != model.PriorityLow {
		t.Fatalf("expected priority filter 'low', got %q", ui.filter.Priority)
	}
	if len(ui.tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(ui.tasks))
	}

	if err := ui.clearFilters(nil, nil); err != nil {
		t.Fatalf("clear filters: %v", err)
	}
	if !ui.filter.IsZero() {
		t.Fatalf("expected filters to be cleared, got %+v", ui.filter)
	}
	if len(ui.tasks) != 2 {
		t.Fatalf("expected 2 tasks after clearing, got %d", len(ui.tasks))
	}
}

func TestCycleFilterReturnsToAll(t *testing.T) {
	value := ""
	seen := []string{}
	for range len(model.Statuses) + 1 {
		value = cycleFilter(model.Statuses, value)
		seen = append(seen, value)
	}
	want := []string{model.StatusOpen, model.StatusInProgress, model.StatusDone, ""}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("step %d: expected %q, got %q", i, want[i], seen[i])
		}
	}
}

func TestFormCreatesAndEditsTask(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	alice := newTestUser(t, store, "alice")

	ui := newUI(store, alice)
	if err := ui.addTask(nil, nil); err != nil {
		t.Fatalf("add task: %v", err)
	}
	if ui.form == nil {
		t.Fatalf("expected form to open")
	}

	if err := ui.submitForm(nil, nil); err != nil {
		t.Fatalf("submit empty form: %v", err)
	}
	if ui.form == nil || ui.status != "title: This field is required." {
		t.Fatalf("expected validation error to keep form open, got status %q", ui.status)
	}

	for _, ch := range "Buy milk" {
		if ch == ' ' {
			ui.editField(gocui.KeySpace, 0, gocui.ModNone)
			continue
		}
		ui.editField(0, ch, gocui.ModNone)
	}
	ui.form.index = fieldPriority
	ui.editField(gocui.KeyArrowLeft, 0, gocui.ModNone)

	if err := ui.submitForm(nil, nil); err != nil {
		t.Fatalf("submit form: %v", err)
	}
	if ui.form != nil {
		t.Fatalf("expected form to close, status %q", ui.status)
	}
	if len(ui.tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(ui.tasks))
	}
	created := ui.tasks[0]
	if created.Title != "Buy milk" || created.Priority != model.PriorityLow || created.Status != model.StatusOpen {
		t.Fatalf("unexpected task %+v", created)
	}

	if err := ui.editTask(nil, nil); err != nil {
		t.Fatalf("edit task: %v", err)
	}
	if ui.form == nil || ui.form.taskID != created.ID {
		t.Fatalf("expected edit form for task %d", created.ID)
	}
	ui.form.index = fieldStatus
	ui.editField(gocui.KeySpace, 0, gocui.ModNone)
	ui.editField(gocui.KeyArrowRight, 0, gocui.ModNone)
	if err := ui.submitForm(nil, nil); err != nil {
		t.Fatalf("submit edit: %v", err)
	}

	updated, err := store.GetTask(context.Background(), alice.ID, created.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if updated.Status != model.StatusDone {
		t.Fatalf("expected status 'done', got %q", updated.Status)
	}
	if len(ui.history) != 2 {
		t.Fatalf("expected created+updated history, got %d entries", len(ui.history))
	}
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	alice := newTestUser(t, store, "alice")
	createTask(t, store, alice, "Temporary", model.StatusOpen, model.PriorityMedium)

	ui := newUI(store, alice)
	if err := ui.loadTasks(); err != nil {
		t.Fatalf("load tasks: %v", err)
	}

	if err := ui.deleteTask(nil, nil); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	if ui.confirmDelete == nil {
		t.Fatalf("expected confirmation prompt")
	}
	if err := ui.cancelDelete(nil, nil); err != nil {
		t.Fatalf("cancel delete: %v", err)
	}
	if err := ui.reload(nil, nil); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(ui.tasks) != 1 {
		t.Fatalf("expected task to survive cancel, got %d tasks", len(ui.tasks))
	}

	if err := ui.deleteTask(nil, nil); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	if err := ui.confirmDeleteTask(nil, nil); err != nil {
		t.Fatalf("confirm delete: %v", err)
	}
	if len(ui.tasks) != 0 {
		t.Fatalf("expected task to be deleted, got %d tasks", len(ui.tasks))
	}
	if ui.status != "Task deleted successfully!" {
		t.Fatalf("unexpected status %q", ui.status)
	}
}

func TestMoveSelectionLoadsHistory(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	alice := newTestUser(t, store, "alice")
	first := createTask(t, store, alice, "first", model.StatusOpen, model.PriorityLow)
	createTask(t, store, alice, "second", model.StatusOpen, model.PriorityLow)

	ui := newUI(store, alice)
	if err := ui.loadTasks(); err != nil {
		t.Fatalf("load tasks: %v", err)
	}
	if err := ui.moveUp(nil, nil); err != nil {
		t.Fatalf("move up: %v", err)
	}
	if ui.selected != 0 {
		t.Fatalf("expected selection to stay at 0, got %d", ui.selected)
	}
	if err := ui.moveDown(nil, nil); err != nil {
		t.Fatalf("move down: %v", err)
	}
	if ui.selectedTask().ID != first.ID {
		t.Fatalf("expected the older task to be selected second")
	}
	if len(ui.history) != 1 || ui.history[0].TaskID != first.ID {
		t.Fatalf("expected history for task %d, got %+v", first.ID, ui.history)
	}
}

func createTask(t *testing.T, store *db.Store, user model.User, title, status, priority string) model.Task {
	t.Helper()
	task, err := store.CreateTask(context.Background(), user.ID, db.TaskInput{Title: title, Status: status, Priority: priority})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func newTestUser(t *testing.T, store *db.Store, username string) model.User {
	t.Helper()
	user, err := store.CreateUser(context.Background(), username, "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func newTestStore(t *testing.T) (*db.Store, func()) {
	t.Helper()
	dbConn, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	return db.NewStore(dbConn), func() {
		_ = dbConn.Close()
	}
}
