// Package form binds submitted form values and reports field-level validation errors.
package form

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Joseda-hg/lazytodo/internal/db"
	"github.com/Joseda-hg/lazytodo/internal/model"
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
	MinPasswordLength    = 8
	// MaxPasswordBytes is bcrypt's input limit.
	MaxPasswordBytes = 72
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,50}$`)

// Errors maps a field name to its first error message. The empty key holds form-wide errors.
type Errors map[string]string

func (e Errors) Add(field, message string) {
	if _, ok := e[field]; ok {
		return
	}
	e[field] = message
}

func (e Errors) Get(field string) string {
	return e[field]
}

func (e Errors) Any() bool {
	return len(e) > 0
}

type TaskForm struct {
	Title       string
	Description string
	Status      string
	Priority    string
	Errors      Errors
}

func NewTaskForm() *TaskForm {
	return &TaskForm{Status: model.StatusOpen, Priority: model.PriorityMedium, Errors: Errors{}}
}

func TaskFormFromTask(task model.Task) *TaskForm {
	return &TaskForm{
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		Errors:      Errors{},
	}
}

// BindTaskForm reads the task fields from values. Ownership fields are not part of the form.
func BindTaskForm(values url.Values) *TaskForm {
	return &TaskForm{
		Title:       strings.TrimSpace(values.Get("title")),
		Description: strings.TrimSpace(values.Get("description")),
		Status:      strings.TrimSpace(values.Get("status")),
		Priority:    strings.TrimSpace(values.Get("priority")),
		Errors:      Errors{},
	}
}

func (f *TaskForm) Validate() bool {
	if f.Errors == nil {
		f.Errors = Errors{}
	}

	switch {
	case f.Title == "":
		f.Errors.Add("title", "This field is required.")
	case utf8.RuneCountInString(f.Title) > MaxTitleLength:
		f.Errors.Add("title", "Ensure this value has at most 200 characters.")
	}

	if utf8.RuneCountInString(f.Description) > MaxDescriptionLength {
		f.Errors.Add("description", "Ensure this value has at most 2000 characters.")
	}

	if !model.ValidStatus(f.Status) {
		f.Errors.Add("status", "Select a valid choice.")
	}
	if !model.ValidPriority(f.Priority) {
		f.Errors.Add("priority", "Select a valid choice.")
	}

	return !f.Errors.Any()
}

func (f *TaskForm) Input() db.TaskInput {
	return db.TaskInput{
		Title:       f.Title,
		Description: f.Description,
		Status:      f.Status,
		Priority:    f.Priority,
	}
}

func (f *TaskForm) StatusOptions() []string {
	return model.Statuses
}

func (f *TaskForm) PriorityOptions() []string {
	return model.Priorities
}

type RegisterForm struct {
	Username string
	Password string
	Confirm  string
	Errors   Errors
}

func BindRegisterForm(values url.Values) *RegisterForm {
	return &RegisterForm{
		Username: strings.TrimSpace(values.Get("username")),
		Password: values.Get("password"),
		Confirm:  values.Get("password_confirm"),
		Errors:   Errors{},
	}
}

func (f *RegisterForm) Validate() bool {
	if f.Errors == nil {
		f.Errors = Errors{}
	}
	if !usernamePattern.MatchString(f.Username) {
		f.Errors.Add("username", "Use 3 to 50 letters, digits or . _ - characters.")
	}
	if utf8.RuneCountInString(f.Password) < MinPasswordLength {
		f.Errors.Add("password", "Use at least 8 characters.")
	}
	if len(f.Password) > MaxPasswordBytes {
		f.Errors.Add("password", "Use at most 72 bytes.")
	}
	if f.Password != f.Confirm {
		f.Errors.Add("password_confirm", "Passwords do not match.")
	}
	return !f.Errors.Any()
}

type LoginForm struct {
	Username string
	Password string
	Next     string
	Errors   Errors
}

func BindLoginForm(values url.Values) *LoginForm {
	return &LoginForm{
		Username: strings.TrimSpace(values.Get("username")),
		Password: values.Get("password"),
		Next:     SafeNext(values.Get("next")),
		Errors:   Errors{},
	}
}

func (f *LoginForm) Validate() bool {
	if f.Errors == nil {
		f.Errors = Errors{}
	}
	if f.Username == "" {
		f.Errors.Add("username", "This field is required.")
	}
	if f.Password == "" {
		f.Errors.Add("password", "This field is required.")
	}
	return !f.Errors.Any()
}

// DefaultNext is where a login lands when no usable next path was given.
const DefaultNext = "/tasks/"

// SafeNext only accepts local absolute paths. Browsers drop control characters
// from URLs, so any value containing one is rejected outright.
func SafeNext(next string) string {
	next = strings.TrimSpace(next)
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return DefaultNext
	}
	if strings.ContainsFunc(next, isControl) {
		return DefaultNext
	}
	parsed, err := url.Parse(next)
	if err != nil || parsed.Scheme != "" || parsed.Host != "" {
		return DefaultNext
	}
	return next
}

func isControl(r rune) bool {
	return r < 0x20 || r == 0x7f
}
