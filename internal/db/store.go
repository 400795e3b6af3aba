package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sqlc "github.com/Joseda-hg/lazytodo/internal/db/sqlc"
	"github.com/Joseda-hg/lazytodo/internal/model"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound covers both missing rows and rows owned by another user.
	ErrNotFound   = errors.New("not found")
	ErrUserExists = errors.New("username already taken")
)

type Store struct {
	DB      *sql.DB
	Queries *sqlc.Queries
	now     func() time.Time
}

type TaskInput struct {
	Title       string
	Description string
	Status      string
	Priority    string
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db, Queries: sqlc.New(db), now: time.Now}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func (s *Store) CreateTask(ctx context.Context, userID int64, input TaskInput) (model.Task, error) {
	now := s.now().UTC()
	var created model.Task
	err := s.withTx(ctx, func(q *sqlc.Queries) error {
		row, err := q.CreateTask(ctx, sqlc.CreateTaskParams{
			UserID:      userID,
			Title:       strings.TrimSpace(input.Title),
			Description: strings.TrimSpace(input.Description),
			Status:      normalizeStatus(input.Status),
			Priority:    normalizePriority(input.Priority),
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return fmt.Errorf("create task: %w", err)
		}
		created = mapTask(row)

		return addHistory(ctx, q, created, "created", formatTaskDetails("created", created), now)
	})
	if err != nil {
		return model.Task{}, err
	}
	return created, nil
}

func (s *Store) GetTask(ctx context.Context, userID, taskID int64) (model.Task, error) {
	row, err := s.Queries.GetTask(ctx, sqlc.GetTaskParams{ID: taskID, UserID: userID})
	if err != nil {
		return model.Task{}, notFound(err)
	}
	return mapTask(row), nil
}

func (s *Store) UpdateTask(ctx context.Context, userID, taskID int64, input TaskInput) (model.Task, error) {
	now := s.now().UTC()
	var after model.Task
	err := s.withTx(ctx, func(q *sqlc.Queries) error {
		beforeRow, err := q.GetTask(ctx, sqlc.GetTaskParams{ID: taskID, UserID: userID})
		if err != nil {
			return notFound(err)
		}

		row, err := q.UpdateTask(ctx, sqlc.UpdateTaskParams{
			Title:       strings.TrimSpace(input.Title),
			Description: strings.TrimSpace(input.Description),
			Status:      normalizeStatus(input.Status),
			Priority:    normalizePriority(input.Priority),
			UpdatedAt:   now,
			ID:          taskID,
			UserID:      userID,
		})
		if err != nil {
			return notFound(err)
		}
		after = mapTask(row)

		return addHistory(ctx, q, after, "updated", formatTaskDiff(mapTask(beforeRow), after), now)
	})
	if err != nil {
		return model.Task{}, err
	}
	return after, nil
}

func (s *Store) DeleteTask(ctx context.Context, userID, taskID int64) error {
	now := s.now().UTC()
	return s.withTx(ctx, func(q *sqlc.Queries) error {
		row, err := q.GetTask(ctx, sqlc.GetTaskParams{ID: taskID, UserID: userID})
		if err != nil {
			return notFound(err)
		}
		before := mapTask(row)

		affected, err := q.DeleteTask(ctx, sqlc.DeleteTaskParams{ID: taskID, UserID: userID})
		if err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		if affected == 0 {
			return ErrNotFound
		}

		return addHistory(ctx, q, before, "deleted", formatTaskDetails("deleted", before), now)
	})
}

// ListTasks returns the user's tasks, newest first, restricted by the non-empty filter fields.
func (s *Store) ListTasks(ctx context.Context, userID int64, filter model.Filter) ([]model.Task, error) {
	rows, err := s.Queries.ListTasks(ctx, sqlc.ListTasksParams{
		UserID:   userID,
		Status:   filter.Status,
		Priority: filter.Priority,
	})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	result := make([]model.Task, 0, len(rows))
	for _, row := range rows {
		result = append(result, mapTask(row))
	}
	return result, nil
}

func (s *Store) ListHistory(ctx context.Context, userID, taskID int64) ([]model.HistoryEntry, error) {
	rows, err := s.Queries.ListHistoryByTask(ctx, sqlc.ListHistoryByTaskParams{UserID: userID, TaskID: taskID})
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	history := make([]model.HistoryEntry, 0, len(rows))
	for _, row := range rows {
		history = append(history, model.HistoryEntry{
			ID:        row.ID,
			UserID:    row.UserID,
			TaskID:    row.TaskID,
			EventType: row.EventType,
			Details:   row.Details,
			CreatedAt: row.CreatedAt,
		})
	}
	return history, nil
}

func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (model.User, error) {
	row, err := s.Queries.CreateUser(ctx, sqlc.CreateUserParams{
		Username:     strings.TrimSpace(username),
		PasswordHash: passwordHash,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, ErrUserExists
		}
		return model.User{}, fmt.Errorf("create user: %w", err)
	}
	return mapUser(row), nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	row, err := s.Queries.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return model.User{}, notFound(err)
	}
	return mapUser(row), nil
}

func (s *Store) withTx(ctx context.Context, fn func(q *sqlc.Queries) error) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(s.Queries.WithTx(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func addHistory(ctx context.Context, q *sqlc.Queries, task model.Task, eventType, details string, at time.Time) error {
	if _, err := q.AddHistory(ctx, sqlc.AddHistoryParams{
		UserID:    task.UserID,
		TaskID:    task.ID,
		EventType: eventType,
		Details:   details,
		CreatedAt: at,
	}); err != nil {
		return fmt.Errorf("add history: %w", err)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

func mapTask(task sqlc.Task) model.Task {
	return model.Task{
		ID:          task.ID,
		UserID:      task.UserID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

func mapUser(user sqlc.User) model.User {
	return model.User{
		ID:           user.ID,
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
	}
}

func normalizeStatus(status string) string {
	value := strings.TrimSpace(strings.ToLower(status))
	if value == "" {
		return model.StatusOpen
	}
	return value
}

func normalizePriority(priority string) string {
	value := strings.TrimSpace(strings.ToLower(priority))
	if value == "" {
		return model.PriorityMedium
	}
	return value
}

func formatTaskDetails(event string, task model.Task) string {
	return fmt.Sprintf("%s: title='%s' status=%s priority=%s", event, task.Title, task.Status, task.Priority)
}

func formatTaskDiff(before, after model.Task) string {
	changes := []string{}
	if before.Title != after.Title {
		changes = append(changes, formatChange("title", before.Title, after.Title))
	}
	if before.Description != after.Description {
		changes = append(changes, formatChange("description", before.Description, after.Description))
	}
	if before.Status != after.Status {
		changes = append(changes, formatChange("status", before.Status, after.Status))
	}
	if before.Priority != after.Priority {
		changes = append(changes, formatChange("priority", before.Priority, after.Priority))
	}

	if len(changes) == 0 {
		return "updated: no changes"
	}

	return "updated: " + strings.Join(changes, "; ")
}

func formatChange(field, before, after string) string {
	return fmt.Sprintf("%s: '%s' -> '%s'", field, valueOrNone(before), valueOrNone(after))
}

func valueOrNone(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "none"
	}
	return trimmed
}
