package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/Joseda-hg/lazytodo/internal/db"
	"github.com/Joseda-hg/lazytodo/internal/model"
	goerrors "github.com/go-errors/errors"
	"github.com/jesseduffield/gocui"
)

const (
	viewHeader  = "header"
	viewFooter  = "footer"
	viewTasks   = "tasks"
	viewDetail  = "detail"
	viewHistory = "history"
	viewForm    = "form"
	viewConfirm = "confirm"
	viewHelp    = "help"
)

type UI struct {
	store *db.Store
	user  model.User
	gui   *gocui.Gui

	filter  model.Filter
	tasks   []model.Task
	history []model.HistoryEntry

	selected int
	focus    string

	form          *formState
	formEditor    *formEditor
	confirmDelete *model.Task
	helpActive    bool
	status        string
}

type formState struct {
	taskID int64
	fields []formField
	index  int
}

type formEditor struct {
	ui *UI
}

// Run opens the terminal UI for user. Every read and write is scoped to that user.
func Run(store *db.Store, user model.User) error {
	gui, err := gocui.NewGui(gocui.NewGuiOpts{OutputMode: gocui.OutputNormal})
	if err != nil {
		return err
	}
	defer gui.Close()

	ui := newUI(store, user)
	ui.gui = gui
	gui.Mouse = true

	gui.SetManagerFunc(ui.layout)
	if err := ui.bindKeys(gui); err != nil {
		return err
	}
	if err := ui.loadTasks(); err != nil {
		return err
	}

	if err := gui.MainLoop(); err != nil && !goerrors.Is(err, gocui.ErrQuit) {
		return err
	}

	return nil
}

func newUI(store *db.Store, user model.User) *UI {
	ui := &UI{
		store: store,
		user:  user,
		focus: viewTasks,
	}
	ui.formEditor = &formEditor{ui: ui}
	return ui
}

func (u *UI) bindKeys(gui *gocui.Gui) error {
	bindings := []struct {
		view    string
		key     any
		handler func(*gocui.Gui, *gocui.View) error
	}{
		{"", gocui.KeyCtrlC, u.quit},
		{"", 'q', u.quitUnlessEditing},
		{"", 'r', u.reload},
		{"", 'g', u.clearFilters},
		{"", 's', u.cycleStatusFilter},
		{"", 'p', u.cyclePriorityFilter},
		{"", 'a', u.addTask},
		{"", 'e', u.editTask},
		{"", 'd', u.deleteTask},
		{"", '?', u.toggleHelp},
		{viewTasks, gocui.KeyArrowDown, u.moveDown},
		{viewTasks, 'j', u.moveDown},
		{viewTasks, gocui.KeyArrowUp, u.moveUp},
		{viewTasks, 'k', u.moveUp},
		{viewTasks, gocui.KeyEnter, u.editTask},
		{viewForm, gocui.KeyEnter, u.submitForm},
		{viewForm, gocui.KeyCtrlJ, u.submitForm},
		{viewForm, gocui.KeyTab, u.nextFormField},
		{viewForm, gocui.KeyBacktab, u.prevFormField},
		{viewForm, gocui.KeyArrowDown, u.nextFormField},
		{viewForm, gocui.KeyArrowUp, u.prevFormField},
		{viewForm, gocui.KeyEsc, u.cancelForm},
		{viewConfirm, 'y', u.confirmDeleteTask},
		{viewConfirm, 'n', u.cancelDelete},
		{viewConfirm, gocui.KeyEsc, u.cancelDelete},
		{viewHelp, gocui.KeyEsc, u.closeHelp},
	}

	for _, binding := range bindings {
		if err := gui.SetKeybinding(binding.view, binding.key, gocui.ModNone, binding.handler); err != nil {
			return err
		}
	}

	return gui.SetViewClickBinding(&gocui.ViewMouseBinding{
		ViewName: viewTasks,
		Key:      gocui.MouseLeft,
		Handler: func(opts gocui.ViewMouseBindingOpts) error {
			return u.onListClick(gui, opts)
		},
	})
}

func (u *UI) layout(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	if maxX <= 0 || maxY <= 0 {
		return nil
	}

	headerView, err := gui.SetView(viewHeader, 0, 0, maxX-1, 1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	headerView.Frame = false
	headerView.FgColor = gocui.ColorDefault
	u.renderHeader(headerView)

	footerY1 := max(maxY-1, 2)
	footerY0 := max(footerY1-3, 1)
	footerView, err := gui.SetView(viewFooter, 0, footerY0, maxX-1, footerY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	footerView.Frame = false
	footerView.Wrap = true
	footerView.FgColor = gocui.ColorDefault | gocui.AttrDim
	u.renderFooter(footerView)

	bodyTop := 1
	bodyBottom := footerY0 - 1
	if bodyBottom <= bodyTop {
		return nil
	}

	layout := computeLayout(maxX, bodyBottom-bodyTop+1)
	listX1 := layout.listWidth - 1
	sideX0 := listX1 + 1
	sideX1 := maxX - 1
	detailY1 := bodyTop + layout.detailHeight - 1

	tasksView, err := gui.SetView(viewTasks, 0, bodyTop, listX1, bodyBottom, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		tasksView.TitleColor = gocui.ColorGreen
	}
	tasksView.Title = fmt.Sprintf("Tasks of %s (%d)", u.user.Username, len(u.tasks))
	applyViewStyle(tasksView, u.focus == viewTasks && !u.inputActive())
	u.renderTaskList(tasksView)

	detailView, err := gui.SetView(viewDetail, sideX0, bodyTop, sideX1, detailY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		detailView.Title = "Detail"
		detailView.Wrap = true
	}
	applyViewStyle(detailView, false)
	u.renderDetail(detailView)

	historyView, err := gui.SetView(viewHistory, sideX0, detailY1+1, sideX1, bodyBottom, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		historyView.Title = "History"
		historyView.Wrap = true
	}
	applyViewStyle(historyView, false)
	u.renderHistory(historyView)

	if u.form != nil {
		if err := u.showForm(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewForm)
	}

	if u.confirmDelete != nil {
		if err := u.showConfirm(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewConfirm)
	}

	if u.helpActive {
		if err := u.showHelp(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewHelp)
	}

	if gui.CurrentView() == nil {
		_, _ = gui.SetCurrentView(u.focus)
	}

	gui.Cursor = u.form != nil
	return nil
}

type layout struct {
	listWidth    int
	detailHeight int
}

func computeLayout(width, height int) layout {
	safeWidth := max(width, 40)
	safeHeight := max(height, 8)

	listWidth := safeWidth / 2
	if listWidth < 30 {
		listWidth = min(30, safeWidth-10)
	}

	detailHeight := safeHeight / 2
	if detailHeight < 4 {
		detailHeight = 4
	}

	return layout{listWidth: listWidth, detailHeight: detailHeight}
}

func (u *UI) loadTasks() error {
	tasks, err := u.store.ListTasks(context.Background(), u.user.ID, u.filter)
	if err != nil {
		return err
	}
	u.tasks = tasks
	if u.selected >= len(u.tasks) {
		u.selected = max(len(u.tasks)-1, 0)
	}
	return u.loadHistory()
}

func (u *UI) loadHistory() error {
	selected := u.selectedTask()
	if selected == nil {
		u.history = nil
		return nil
	}

	history, err := u.store.ListHistory(context.Background(), u.user.ID, selected.ID)
	if err != nil {
		return err
	}
	u.history = history
	return nil
}

func (u *UI) renderHeader(view *gocui.View) {
	view.Clear()
	fmt.Fprintf(view, "User: %s | Status: %s | Priority: %s", u.user.Username, filterLabel(u.filter.Status), filterLabel(u.filter.Priority))
}

func (u *UI) renderFooter(view *gocui.View) {
	view.Clear()
	view.SetOrigin(0, 0)

	fmt.Fprintln(view, "a add | e/enter edit | d delete | j/k move | s status filter | p priority filter | g clear")
	fmt.Fprintln(view, "r reload | ? help | q quit")
	if u.status != "" {
		fmt.Fprint(view, u.status)
	}
}

func (u *UI) renderTaskList(view *gocui.View) {
	view.Clear()
	if len(u.tasks) == 0 {
		fmt.Fprintln(view, "  No tasks found.")
		return
	}

	focused := u.focus == viewTasks && !u.inputActive()
	for i, task := range u.tasks {
		prefix := " "
		if i == u.selected {
			if focused {
				prefix = ">"
			} else {
				prefix = "*"
			}
		}
		fmt.Fprintf(view, "%s %s\n", prefix, formatTaskSummary(task))
	}
	if focused {
		view.SetCursor(0, u.selected)
	}
}

func (u *UI) renderDetail(view *gocui.View) {
	view.Clear()
	selected := u.selectedTask()
	if selected == nil {
		return
	}
	for _, line := range formatTaskDetail(*selected) {
		fmt.Fprintln(view, line)
	}
}

func (u *UI) renderHistory(view *gocui.View) {
	view.Clear()
	for _, entry := range u.history {
		fmt.Fprintln(view, formatHistoryEntry(entry))
	}
}

func (u *UI) selectedTask() *model.Task {
	if u.selected >= 0 && u.selected < len(u.tasks) {
		return &u.tasks[u.selected]
	}
	return nil
}

func (u *UI) onListClick(gui *gocui.Gui, opts gocui.ViewMouseBindingOpts) error {
	view, err := gui.View(viewTasks)
	if err != nil {
		return nil
	}
	_, y0, _, _ := view.Dimensions()
	_, oy := view.Origin()
	return u.selectIndex(opts.Y - y0 - 1 + oy)
}

func (u *UI) selectIndex(index int) error {
	if u.inputActive() || index < 0 || index >= len(u.tasks) {
		return nil
	}
	u.selected = index
	return u.loadHistory()
}

func (u *UI) moveDown(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if u.selected < len(u.tasks)-1 {
		u.selected++
		return u.loadHistory()
	}
	return nil
}

func (u *UI) moveUp(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if u.selected > 0 {
		u.selected--
		return u.loadHistory()
	}
	return nil
}

func (u *UI) reload(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.status = ""
	return u.loadTasks()
}

func (u *UI) clearFilters(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.filter = model.Filter{}
	u.selected = 0
	return u.reload(gui, nil)
}

func (u *UI) cycleStatusFilter(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.filter.Status = cycleFilter(model.Statuses, u.filter.Status)
	u.selected = 0
	return u.reload(gui, nil)
}

func (u *UI) cyclePriorityFilter(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.filter.Priority = cycleFilter(model.Priorities, u.filter.Priority)
	u.selected = 0
	return u.reload(gui, nil)
}

func (u *UI) toggleHelp(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() && !u.helpActive {
		return nil
	}
	u.helpActive = !u.helpActive
	return nil
}

func (u *UI) closeHelp(gui *gocui.Gui, _ *gocui.View) error {
	u.helpActive = false
	u.closeOverlay(gui, viewHelp)
	return nil
}

func (u *UI) showHelp(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := min(70, maxX-2)
	height := min(16, maxY-2)
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewHelp, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	view.Title = "Help"
	view.Wrap = true
	view.Clear()
	fmt.Fprint(view, helpText())
	_, _ = gui.SetViewOnTop(viewHelp)
	_, _ = gui.SetCurrentView(viewHelp)
	return nil
}

func (u *UI) addTask(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	fields := buildFormFields(nil)
	if u.filter.Status != "" {
		fields[fieldStatus].Value = u.filter.Status
	}
	if u.filter.Priority != "" {
		fields[fieldPriority].Value = u.filter.Priority
	}
	u.form = &formState{fields: fields}
	return nil
}

func (u *UI) editTask(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	selected := u.selectedTask()
	if selected == nil {
		return nil
	}
	u.form = &formState{taskID: selected.ID, fields: buildFormFields(selected)}
	return nil
}

func (u *UI) showForm(gui *gocui.Gui) error {
	if u.form == nil {
		return nil
	}

	maxX, maxY := gui.Size()
	width := max(60, maxX/2)
	height := min(8, max(6, maxY/2))
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewForm, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Wrap = true
	}
	if u.form.taskID != 0 {
		view.Title = "Edit Task"
	} else {
		view.Title = "New Task"
	}
	view.Editable = true
	view.KeybindOnEdit = true
	view.Editor = u.formEditor
	u.renderForm(view)
	_, _ = gui.SetViewOnTop(viewForm)
	_, _ = gui.SetCurrentView(viewForm)
	return nil
}

func (u *UI) submitForm(gui *gocui.Gui, _ *gocui.View) error {
	if u.form == nil {
		return nil
	}

	input, err := parseFormFields(u.form.fields)
	if err != nil {
		u.status = err.Error()
		return nil
	}

	if u.form.taskID == 0 {
		if _, err := u.store.CreateTask(context.Background(), u.user.ID, input); err != nil {
			u.status = err.Error()
			return nil
		}
		u.status = "Task created successfully!"
	} else {
		if _, err := u.store.UpdateTask(context.Background(), u.user.ID, u.form.taskID, input); err != nil {
			u.status = notFoundMessage(err)
			return nil
		}
		u.status = "Task updated successfully!"
	}

	u.form = nil
	u.closeOverlay(gui, viewForm)
	return u.loadTasks()
}

func (u *UI) cancelForm(gui *gocui.Gui, _ *gocui.View) error {
	u.form = nil
	u.closeOverlay(gui, viewForm)
	return nil
}

func (u *UI) nextFormField(_ *gocui.Gui, view *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if u.form.index < len(u.form.fields)-1 {
		u.form.index++
	}
	u.renderForm(view)
	return nil
}

func (u *UI) prevFormField(_ *gocui.Gui, view *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if u.form.index > 0 {
		u.form.index--
	}
	u.renderForm(view)
	return nil
}

func (u *UI) renderForm(view *gocui.View) {
	if u.form == nil || view == nil {
		return
	}
	view.Clear()
	for index, field := range u.form.fields {
		prefix := "  "
		if index == u.form.index {
			prefix = "> "
		}
		fmt.Fprintf(view, "%s%s: %s\n", prefix, field.Label, field.Value)
	}
	current := u.form.fields[u.form.index]
	cursorX := len([]rune(current.Label)) + len([]rune(current.Value)) + 4
	view.SetCursor(cursorX, u.form.index)
}

func (e *formEditor) Edit(view *gocui.View, key gocui.Key, ch rune, mod gocui.Modifier) bool {
	ui := e.ui
	if ui == nil || ui.form == nil {
		return false
	}
	ui.editField(key, ch, mod)
	ui.renderForm(view)
	return true
}

// editField applies one keystroke to the focused form field.
func (u *UI) editField(key gocui.Key, ch rune, mod gocui.Modifier) {
	field := &u.form.fields[u.form.index]

	if isChoiceField(u.form.index) {
		switch key {
		case gocui.KeyArrowRight, gocui.KeySpace:
			field.Value = cycleChoice(choicesFor(u.form.index), field.Value, 1)
		case gocui.KeyArrowLeft:
			field.Value = cycleChoice(choicesFor(u.form.index), field.Value, -1)
		}
		return
	}

	switch key {
	case gocui.KeyBackspace, gocui.KeyBackspace2:
		runes := []rune(field.Value)
		if len(runes) > 0 {
			field.Value = string(runes[:len(runes)-1])
		}
		return
	case gocui.KeySpace:
		field.Value += " "
		return
	case gocui.KeyCtrlU:
		field.Value = ""
		return
	}

	if ch != 0 && ch != '\n' && ch != '\r' && mod == gocui.ModNone {
		field.Value += string(ch)
	}
}

func (u *UI) deleteTask(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	selected := u.selectedTask()
	if selected == nil {
		return nil
	}
	task := *selected
	u.confirmDelete = &task
	return nil
}

func (u *UI) showConfirm(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := min(max(50, len(u.confirmDelete.Title)+30), maxX-2)
	x0 := (maxX - width) / 2
	y0 := maxY/2 - 1

	view, err := gui.SetView(viewConfirm, x0, y0, x0+width, y0+2, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	view.Title = "Delete Task"
	view.Clear()
	fmt.Fprintf(view, "Delete %q? (y/n)", u.confirmDelete.Title)
	_, _ = gui.SetViewOnTop(viewConfirm)
	_, _ = gui.SetCurrentView(viewConfirm)
	return nil
}

func (u *UI) confirmDeleteTask(gui *gocui.Gui, _ *gocui.View) error {
	if u.confirmDelete == nil {
		return nil
	}
	taskID := u.confirmDelete.ID
	u.confirmDelete = nil
	u.closeOverlay(gui, viewConfirm)

	if err := u.store.DeleteTask(context.Background(), u.user.ID, taskID); err != nil {
		u.status = notFoundMessage(err)
		return u.loadTasks()
	}
	u.status = "Task deleted successfully!"
	return u.loadTasks()
}

func (u *UI) cancelDelete(gui *gocui.Gui, _ *gocui.View) error {
	u.confirmDelete = nil
	u.closeOverlay(gui, viewConfirm)
	return nil
}

func (u *UI) closeOverlay(gui *gocui.Gui, name string) {
	if gui == nil {
		return
	}
	_ = gui.DeleteView(name)
	_, _ = gui.SetCurrentView(u.focus)
}

func (u *UI) inputActive() bool {
	return u.form != nil || u.confirmDelete != nil || u.helpActive
}

func (u *UI) quitUnlessEditing(gui *gocui.Gui, view *gocui.View) error {
	if u.form != nil {
		return nil
	}
	if u.helpActive {
		return u.closeHelp(gui, view)
	}
	return u.quit(gui, view)
}

func (u *UI) quit(_ *gocui.Gui, _ *gocui.View) error {
	return gocui.ErrQuit
}

func notFoundMessage(err error) string {
	if goerrors.Is(err, db.ErrNotFound) {
		return "The requested task does not exist."
	}
	return err.Error()
}

func helpText() string {
	return strings.Join([]string{
		"Navigation:",
		"  j/k or arrows move selection | mouse click selects",
		"",
		"Actions:",
		"  a add task | e or enter edit task | d delete task (y/n)",
		"  enter save (form) | tab next field | esc cancel",
		"  space/left/right cycle status and priority (form)",
		"",
		"Filters:",
		"  s cycle status | p cycle priority | g clear filters",
		"",
		"Other:",
		"  r reload | ? help | esc/q close help | q quit",
	}, "\n")
}

func applyViewStyle(view *gocui.View, focused bool) {
	view.Frame = true
	view.Highlight = focused
	view.HighlightInactive = false
	view.SelBgColor = gocui.ColorBlue
	view.SelFgColor = gocui.ColorBlack
	if focused {
		view.FrameColor = gocui.ColorCyan
	} else {
		view.FrameColor = gocui.ColorDefault
	}
}
