package db

import (
	"context"
	"errors"
	"testing"

	"github.com/Joseda-hg/lazytodo/internal/model"
)

func TestCreateTaskAssignsOwnerAndHistory(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	owner := newTestUser(t, store, "alice")

	created, err := store.CreateTask(context.Background(), owner.ID, TaskInput{
		Title:       "  Write tests ",
		Description: "Add coverage",
		Status:      "Open",
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected task ID to be set")
	}
	if created.UserID != owner.ID {
		t.Fatalf("expected owner %d, got %d", owner.ID, created.UserID)
	}
	if created.Title != "Write tests" {
		t.Fatalf("expected trimmed title, got %q", created.Title)
	}
	if created.Status != model.StatusOpen {
		t.Fatalf("expected status 'open', got %q", created.Status)
	}
	if created.Priority != model.PriorityMedium {
		t.Fatalf("expected default priority 'medium', got %q", created.Priority)
	}

	history, err := store.ListHistory(context.Background(), owner.ID, created.ID)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(history))
	}
	if history[0].EventType != "created" {
		t.Fatalf("expected history event 'created', got %q", history[0].EventType)
	}
}

func TestListTasksFilters(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	owner := newTestUser(t, store, "alice")
	other := newTestUser(t, store, "bob")

	inputs := []TaskInput{
		{Title: "a", Status: model.StatusOpen, Priority: model.PriorityLow},
		{Title: "b", Status: model.StatusDone, Priority: model.PriorityLow},
		{Title: "c", Status: model.StatusDone, Priority: model.PriorityHigh},
	}
	for _, input := range inputs {
		if _, err := store.CreateTask(context.Background(), owner.ID, input); err != nil {
			t.Fatalf("create task: %v", err)
		}
	}
	if _, err := store.CreateTask(context.Background(), other.ID, TaskInput{Title: "foreign", Status: model.StatusDone, Priority: model.PriorityLow}); err != nil {
		t.Fatalf("create foreign task: %v", err)
	}

	cases := []struct {
		name   string
		filter model.Filter
		want   []string
	}{
		{name: "all", filter: model.NewFilter("all", "all"), want: []string{"c", "b", "a"}},
		{name: "status", filter: model.NewFilter("done", ""), want: []string{"c", "b"}},
		{name: "priority", filter: model.NewFilter("all", "low"), want: []string{"b", "a"}},
		{name: "both", filter: model.NewFilter("done", "low"), want: []string{"b"}},
		{name: "unknown", filter: model.NewFilter("archived", "all"), want: nil},
		{name: "literal", filter: model.Filter{Status: model.StatusDone, Priority: model.PriorityHigh}, want: []string{"c"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tasks, err := store.ListTasks(context.Background(), owner.ID, tc.filter)
			if err != nil {
				t.Fatalf("list tasks: %v", err)
			}
			if len(tasks) != len(tc.want) {
				t.Fatalf("expected %d tasks, got %d", len(tc.want), len(tasks))
			}
			for i, task := range tasks {
				if task.Title != tc.want[i] {
					t.Fatalf("expected task %d to be %q, got %q", i, tc.want[i], task.Title)
				}
				if task.UserID != owner.ID {
					t.Fatalf("listed a task owned by user %d", task.UserID)
				}
			}
		})
	}
}

func TestForeignTaskIsNotFound(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	owner := newTestUser(t, store, "alice")
	intruder := newTestUser(t, store, "mallory")

	task, err := store.CreateTask(context.Background(), owner.ID, TaskInput{Title: "Private"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	if _, err := store.GetTask(context.Background(), intruder.ID, task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on get, got %v", err)
	}
	if _, err := store.UpdateTask(context.Background(), intruder.ID, task.ID, TaskInput{Title: "Mine now"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
	if err := store.DeleteTask(context.Background(), intruder.ID, task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on delete, got %v", err)
	}

	reloaded, err := store.GetTask(context.Background(), owner.ID, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if reloaded.Title != "Private" {
		t.Fatalf("expected task to be untouched, got title %q", reloaded.Title)
	}
}

func TestUpdateTaskRecordsDiff(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	owner := newTestUser(t, store, "alice")

	task, err := store.CreateTask(context.Background(), owner.ID, TaskInput{Title: "Buy milk", Priority: model.PriorityLow})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	input := TaskInput{Title: "Buy milk", Status: model.StatusDone, Priority: model.PriorityLow}
	first, err := store.UpdateTask(context.Background(), owner.ID, task.ID, input)
	if err != nil {
		t.Fatalf("update task: %v", err)
	}
	second, err := store.UpdateTask(context.Background(), owner.ID, task.ID, input)
	if err != nil {
		t.Fatalf("update task again: %v", err)
	}
	if first.Status != model.StatusDone || second.Status != model.StatusDone || first.Title != second.Title {
		t.Fatalf("expected identical state after repeated update, got %+v and %+v", first, second)
	}
	if second.UserID != owner.ID {
		t.Fatalf("expected owner to stay %d, got %d", owner.ID, second.UserID)
	}

	history, err := store.ListHistory(context.Background(), owner.ID, task.ID)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 history entries, got %d", len(history))
	}
	if history[1].Details != "updated: status: 'open' -> 'done'" {
		t.Fatalf("unexpected diff %q", history[1].Details)
	}
	if history[2].Details != "updated: no changes" {
		t.Fatalf("unexpected diff %q", history[2].Details)
	}
}

func TestDeleteTaskTwiceIsNotFound(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	owner := newTestUser(t, store, "alice")

	task, err := store.CreateTask(context.Background(), owner.ID, TaskInput{Title: "Temporary"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	if err := store.DeleteTask(context.Background(), owner.ID, task.ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	if err := store.DeleteTask(context.Background(), owner.ID, task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if _, err := store.UpdateTask(context.Background(), owner.ID, task.ID, TaskInput{Title: "Back"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update after delete, got %v", err)
	}

	history, err := store.ListHistory(context.Background(), owner.ID, task.ID)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(history) != 2 || history[1].EventType != "deleted" {
		t.Fatalf("expected created+deleted history, got %+v", history)
	}
}

func TestCreateUserRejectsDuplicateUsername(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()

	newTestUser(t, store, "alice")
	if _, err := store.CreateUser(context.Background(), "alice", "hash"); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	found, err := store.GetUserByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if found.PasswordHash != "hash-alice" {
		t.Fatalf("expected original hash, got %q", found.PasswordHash)
	}
	if _, err := store.GetUserByUsername(context.Background(), "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown user, got %v", err)
	}
}

func newTestUser(t *testing.T, store *Store, username string) model.User {
	t.Helper()
	user, err := store.CreateUser(context.Background(), username, "hash-"+username)
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func newTestStore(t *testing.T) (*Store, func()) {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	return NewStore(db), func() {
		_ = db.Close()
	}
}
