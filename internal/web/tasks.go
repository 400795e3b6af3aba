package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Joseda-hg/lazytodo/internal/auth"
	"github.com/Joseda-hg/lazytodo/internal/export"
	"github.com/Joseda-hg/lazytodo/internal/form"
	"github.com/Joseda-hg/lazytodo/internal/model"
)

type taskListPage struct {
	pageData
	Tasks          []model.Task
	StatusFilter   string
	PriorityFilter string
	Statuses       []string
	Priorities     []string
	Filtered       bool
}

type taskFormPage struct {
	pageData
	Form   *form.TaskForm
	Task   *model.Task
	Action string
}

type taskDeletePage struct {
	pageData
	Task model.Task
}

type taskDetailPage struct {
	pageData
	Task    model.Task
	History []model.HistoryEntry
}

// listTasks is the single listing path shared by every list entry point.
func (s *Server) listTasks(ctx context.Context, identity auth.Identity, filter model.Filter) ([]model.Task, error) {
	return s.store.ListTasks(ctx, identity.UserID, filter)
}

func (s *Server) renderTaskList(w http.ResponseWriter, r *http.Request, filter model.Filter) {
	tasks, err := s.listTasks(r.Context(), currentUser(r), filter)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	data := taskListPage{
		pageData:       s.page(w, r, "Tasks"),
		Tasks:          tasks,
		StatusFilter:   filter.StatusLabel(),
		PriorityFilter: filter.PriorityLabel(),
		Statuses:       model.Statuses,
		Priorities:     model.Priorities,
		Filtered:       !filter.IsZero(),
	}
	s.render(w, r, http.StatusOK, "task_list", data)
}

func (s *Server) taskListHandler(w http.ResponseWriter, r *http.Request) {
	s.renderTaskList(w, r, filterFromRequest(r))
}

// TaskListView lists the requester's tasks without filters.
type TaskListView struct {
	server *Server
}

func NewTaskListView(server *Server) *TaskListView {
	return &TaskListView{server: server}
}

func (v *TaskListView) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	v.server.renderTaskList(w, r, model.Filter{})
}

func (s *Server) taskDetailHandler(w http.ResponseWriter, r *http.Request) {
	task, ok := s.ownedTask(w, r)
	if !ok {
		return
	}

	history, err := s.store.ListHistory(r.Context(), currentUser(r).UserID, task.ID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, "task_detail", taskDetailPage{
		pageData: s.page(w, r, task.Title),
		Task:     task,
		History:  history,
	})
}

func (s *Server) taskCreateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.renderTaskForm(w, r, http.StatusOK, form.NewTaskForm(), nil)
		return
	}

	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	f := form.BindTaskForm(r.PostForm)
	if !f.Validate() {
		s.renderTaskForm(w, r, http.StatusOK, f, nil)
		return
	}

	if _, err := s.store.CreateTask(r.Context(), currentUser(r).UserID, f.Input()); err != nil {
		s.serverError(w, r, err)
		return
	}

	s.addFlash(w, r, "Task created successfully!")
	http.Redirect(w, r, "/tasks/", http.StatusSeeOther)
}

func (s *Server) taskUpdateHandler(w http.ResponseWriter, r *http.Request) {
	task, ok := s.ownedTask(w, r)
	if !ok {
		return
	}

	if r.Method != http.MethodPost {
		s.renderTaskForm(w, r, http.StatusOK, form.TaskFormFromTask(task), &task)
		return
	}

	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	f := form.BindTaskForm(r.PostForm)
	if !f.Validate() {
		s.renderTaskForm(w, r, http.StatusOK, f, &task)
		return
	}

	if _, err := s.store.UpdateTask(r.Context(), currentUser(r).UserID, task.ID, f.Input()); err != nil {
		if isNotFound(err) {
			s.notFound(w, r)
			return
		}
		s.serverError(w, r, err)
		return
	}

	s.addFlash(w, r, "Task updated successfully!")
	http.Redirect(w, r, "/tasks/", http.StatusSeeOther)
}

func (s *Server) taskDeleteHandler(w http.ResponseWriter, r *http.Request) {
	task, ok := s.ownedTask(w, r)
	if !ok {
		return
	}

	if r.Method != http.MethodPost {
		s.render(w, r, http.StatusOK, "task_confirm_delete", taskDeletePage{
			pageData: s.page(w, r, "Delete task"),
			Task:     task,
		})
		return
	}

	if err := s.store.DeleteTask(r.Context(), currentUser(r).UserID, task.ID); err != nil {
		if isNotFound(err) {
			s.notFound(w, r)
			return
		}
		s.serverError(w, r, err)
		return
	}

	s.addFlash(w, r, "Task deleted successfully!")
	http.Redirect(w, r, "/tasks/", http.StatusSeeOther)
}

func (s *Server) taskExportHandler(w http.ResponseWriter, r *http.Request) {
	file, err := s.exporter.Export(r.Context(), currentUser(r).UserID, filterFromRequest(r), r.PathValue("format"))
	if err != nil {
		if errors.Is(err, export.ErrUnknownFormat) {
			s.notFound(w, r)
			return
		}
		s.serverError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	_, _ = w.Write(file.Data)
}

// ownedTask resolves the {id} path value against the requester's tasks, answering 404 itself.
func (s *Server) ownedTask(w http.ResponseWriter, r *http.Request) (model.Task, bool) {
	id, err := parseID(r)
	if err != nil {
		s.notFound(w, r)
		return model.Task{}, false
	}

	task, err := s.store.GetTask(r.Context(), currentUser(r).UserID, id)
	if err != nil {
		if isNotFound(err) {
			s.notFound(w, r)
			return model.Task{}, false
		}
		s.serverError(w, r, err)
		return model.Task{}, false
	}
	return task, true
}

func (s *Server) renderTaskForm(w http.ResponseWriter, r *http.Request, status int, f *form.TaskForm, task *model.Task) {
	title := "New task"
	action := "/tasks/new/"
	if task != nil {
		title = "Edit task"
		action = fmt.Sprintf("/tasks/%d/edit/", task.ID)
	}

	s.render(w, r, status, "task_form", taskFormPage{
		pageData: s.page(w, r, title),
		Form:     f,
		Task:     task,
		Action:   action,
	})
}
