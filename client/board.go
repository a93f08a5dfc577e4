package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrInvalidForm is returned by SubmitEdit when client-side validation
// fails; no request is sent.
var ErrInvalidForm = errors.New("form is invalid")

const (
	permissionDeniedMessage = "You do not have permission to view this task's history."
	historyNotFoundMessage  = "Task history not found."
	assignedNotice          = "Task assigned."
	savedNotice             = "Task updated."

	dateOnly = "2006-01-02"
)

// Tab is a per-task display mode. Details and edit alternate; history is
// reachable from anywhere and re-enterable.
type Tab string

const (
	TabDetails Tab = "details"
	TabEdit    Tab = "edit"
	TabHistory Tab = "history"
)

// TaskForm holds the in-progress edits for one task. Dates are date-only
// strings.
type TaskForm struct {
	Name        string
	Description string
	Status      string
	Priority    string
	DueDate     string
	EndDate     string
}

func (f *TaskForm) validate() map[string]string {
	fieldErrors := make(map[string]string)
	if strings.TrimSpace(f.Name) == "" {
		fieldErrors["name"] = "Name is required"
	}
	switch f.Status {
	case "TODO", "IN_PROGRESS", "DONE":
	default:
		fieldErrors["status"] = "Invalid status"
	}
	switch f.Priority {
	case "LOW", "MEDIUM", "HIGH":
	default:
		fieldErrors["priority"] = "Invalid priority"
	}
	if f.DueDate != "" {
		if _, err := time.Parse(dateOnly, f.DueDate); err != nil {
			fieldErrors["dueDate"] = "Invalid date"
		}
	}
	if f.EndDate != "" {
		if _, err := time.Parse(dateOnly, f.EndDate); err != nil {
			fieldErrors["endDate"] = "Invalid date"
		}
	}
	if len(fieldErrors) == 0 {
		return nil
	}
	return fieldErrors
}

// TaskState is the UI state of one task card. All of it is keyed by task id
// inside the board so one task's failure never bleeds into another card.
type TaskState struct {
	Tab              Tab
	Err              string
	Notice           string
	Assigning        bool
	Saving           bool
	SelectedMemberID string
	Form             *TaskForm
	FormErrors       map[string]string
	History          []HistoryEntry
	HistoryLoaded    bool
	HistoryErr       string
}

// Board orchestrates the project/task views: loading projects with their
// tasks and member lists, assignment, editing, and the lazy history tab.
// Sibling fetches are joined explicitly and every fetch scope carries a
// generation counter so a superseded response can never overwrite newer
// state.
type Board struct {
	client *Client

	mu          sync.Mutex
	generations map[string]uint64
	projects    []Project
	tasks       map[string][]Task
	members     map[string][]Member
	states      map[string]*TaskState
}

// NewBoard creates a board on top of the given API client.
func NewBoard(client *Client) *Board {
	return &Board{
		client:      client,
		generations: make(map[string]uint64),
		tasks:       make(map[string][]Task),
		members:     make(map[string][]Member),
		states:      make(map[string]*TaskState),
	}
}

// begin bumps the generation for a fetch scope and returns the new value.
// A response is applied only while its generation is still current.
func (b *Board) begin(scope string) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.generations[scope]++
	return b.generations[scope]
}

func (b *Board) isCurrent(scope string, gen uint64) bool {
	return b.generations[scope] == gen
}

// LoadProjects refreshes the project list.
func (b *Board) LoadProjects(ctx context.Context) error {
	if !b.client.Sessions().IsAuthenticated() {
		return ErrNotAuthenticated
	}

	gen := b.begin("projects")
	projects, err := b.client.ListProjects(ctx)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.isCurrent("projects", gen) {
		return nil
	}
	b.projects = projects
	return nil
}

// LoadProject fetches a project's tasks and member list concurrently and
// applies both only after both have settled. Task state entries whose task
// disappeared from the reload are dropped.
func (b *Board) LoadProject(ctx context.Context, projectID string) error {
	if !b.client.Sessions().IsAuthenticated() {
		return ErrNotAuthenticated
	}

	taskGen := b.begin("tasks:" + projectID)
	memberGen := b.begin("members:" + projectID)

	var (
		tasks   []Task
		members []Member
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tasks, err = b.client.TasksForProject(gctx, projectID)
		return err
	})
	g.Go(func() error {
		var err error
		members, err = b.client.ListMembers(gctx, projectID)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.isCurrent("tasks:"+projectID, taskGen) {
		b.storeTasksLocked(projectID, tasks)
	}
	if b.isCurrent("members:"+projectID, memberGen) {
		b.members[projectID] = members
	}
	return nil
}

// storeTasksLocked replaces a project's task list and prunes keyed state for
// tasks that no longer exist.
func (b *Board) storeTasksLocked(projectID string, tasks []Task) {
	kept := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		kept[t.ID] = true
	}
	for _, old := range b.tasks[projectID] {
		if !kept[old.ID] {
			delete(b.states, old.ID)
		}
	}
	b.tasks[projectID] = tasks
}

// reloadTasks refetches a project's task list once, discarding the result if
// a newer fetch for the same scope has started since.
func (b *Board) reloadTasks(ctx context.Context, projectID string) error {
	gen := b.begin("tasks:" + projectID)
	tasks, err := b.client.TasksForProject(ctx, projectID)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.isCurrent("tasks:"+projectID, gen) {
		return nil
	}
	b.storeTasksLocked(projectID, tasks)
	return nil
}

// Projects returns the loaded project list.
func (b *Board) Projects() []Project {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Project, len(b.projects))
	copy(out, b.projects)
	return out
}

// Tasks returns the loaded tasks for a project.
func (b *Board) Tasks(projectID string) []Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Task, len(b.tasks[projectID]))
	copy(out, b.tasks[projectID])
	return out
}

// Members returns the loaded member list for a project.
func (b *Board) Members(projectID string) []Member {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Member, len(b.members[projectID]))
	copy(out, b.members[projectID])
	return out
}

// Roles derives the current user's permission flags for a project from its
// loaded member list.
func (b *Board) Roles(projectID string) (isAdmin, isMember bool) {
	session, ok := b.client.Sessions().Current()
	if !ok {
		return false, false
	}
	return DeriveRoles(b.Members(projectID), session.UserID)
}

// State returns a snapshot of one task's UI state.
func (b *Board) State(taskID string) TaskState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return *b.stateLocked(taskID)
}

func (b *Board) stateLocked(taskID string) *TaskState {
	state, ok := b.states[taskID]
	if !ok {
		state = &TaskState{Tab: TabDetails}
		b.states[taskID] = state
	}
	return state
}

// SelectMember records the member chosen in a task card's assignment
// control.
func (b *Board) SelectMember(taskID, memberID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stateLocked(taskID).SelectedMemberID = memberID
}

// ClearNotice drops a task's transient success notice.
func (b *Board) ClearNotice(taskID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stateLocked(taskID).Notice = ""
}

// Assign assigns the task to the member currently selected on its card.
// With no selected member or no project id the call is a no-op and no
// request is sent. On success the per-task error is cleared, a notice is
// set, the project's task list is refetched once, and the task's history
// cache is invalidated and reloaded. On failure the error lands in this
// task's slot only and the in-flight flag is cleared; there is no retry.
func (b *Board) Assign(ctx context.Context, taskID, projectID string) error {
	if !b.client.Sessions().IsAuthenticated() {
		return ErrNotAuthenticated
	}

	b.mu.Lock()
	memberID := b.stateLocked(taskID).SelectedMemberID
	if memberID == "" || projectID == "" {
		b.mu.Unlock()
		return nil
	}
	state := b.stateLocked(taskID)
	state.Assigning = true
	b.mu.Unlock()

	_, err := b.client.AssignTask(ctx, taskID, projectID, memberID)

	b.mu.Lock()
	state = b.stateLocked(taskID)
	state.Assigning = false
	if err != nil {
		state.Err = errorMessage(err)
		b.mu.Unlock()
		return err
	}
	state.Err = ""
	state.Notice = assignedNotice
	state.History = nil
	state.HistoryLoaded = false
	b.mu.Unlock()

	return b.reconcile(ctx, taskID, projectID)
}

// reconcile refetches the project's task list exactly once and reloads the
// task's history with the cache bypassed.
func (b *Board) reconcile(ctx context.Context, taskID, projectID string) error {
	if err := b.reloadTasks(ctx, projectID); err != nil {
		return fmt.Errorf("failed to reload tasks: %w", err)
	}
	return b.LoadHistory(ctx, taskID, true)
}

// StartEdit switches a task card to the edit tab with a form seeded from
// the current snapshot. Date fields are truncated to date-only before they
// populate the form.
func (b *Board) StartEdit(taskID, projectID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var task *Task
	for i := range b.tasks[projectID] {
		if b.tasks[projectID][i].ID == taskID {
			task = &b.tasks[projectID][i]
			break
		}
	}
	if task == nil {
		return fmt.Errorf("task %s is not loaded", taskID)
	}

	state := b.stateLocked(taskID)
	state.Form = &TaskForm{
		Name:        task.Name,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		DueDate:     truncateDate(task.DueDate),
		EndDate:     truncateDate(task.EndDate),
	}
	state.FormErrors = nil
	state.Tab = TabEdit
	return nil
}

// UpdateForm replaces a task's in-progress edits.
func (b *Board) UpdateForm(taskID string, form TaskForm) {
	b.mu.Lock()
	defer b.mu.Unlock()
	state := b.stateLocked(taskID)
	if state.Form == nil {
		return
	}
	*state.Form = form
}

// CancelEdit discards a task's edits and returns the card to details.
func (b *Board) CancelEdit(taskID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	state := b.stateLocked(taskID)
	state.Form = nil
	state.FormErrors = nil
	state.Tab = TabDetails
}

// SubmitEdit validates and submits a task's edit form. An invalid form is
// rejected without a request. On success the task list and history are
// reconciled and the card returns to details; on failure the error is set
// on this task without losing the user's edits.
func (b *Board) SubmitEdit(ctx context.Context, taskID, projectID string) error {
	if !b.client.Sessions().IsAuthenticated() {
		return ErrNotAuthenticated
	}

	b.mu.Lock()
	state := b.stateLocked(taskID)
	if state.Form == nil {
		b.mu.Unlock()
		return fmt.Errorf("task %s has no edit in progress", taskID)
	}
	if fieldErrors := state.Form.validate(); fieldErrors != nil {
		state.FormErrors = fieldErrors
		b.mu.Unlock()
		return ErrInvalidForm
	}
	state.FormErrors = nil
	state.Saving = true
	input := UpdateTaskInput{
		Name:        state.Form.Name,
		Description: state.Form.Description,
		Status:      state.Form.Status,
		Priority:    state.Form.Priority,
		DueDate:     state.Form.DueDate,
		EndDate:     state.Form.EndDate,
	}
	b.mu.Unlock()

	_, err := b.client.UpdateTask(ctx, taskID, input)

	b.mu.Lock()
	state = b.stateLocked(taskID)
	state.Saving = false
	if err != nil {
		state.Err = errorMessage(err)
		b.mu.Unlock()
		return err
	}
	state.Err = ""
	state.Notice = savedNotice
	state.Form = nil
	state.Tab = TabDetails
	state.History = nil
	state.HistoryLoaded = false
	b.mu.Unlock()

	return b.reconcile(ctx, taskID, projectID)
}

// ShowDetails switches a task card back to the details tab.
func (b *Board) ShowDetails(taskID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stateLocked(taskID).Tab = TabDetails
}

// OpenHistory switches a task card to the history tab, fetching the log
// only if it is not already cached.
func (b *Board) OpenHistory(ctx context.Context, taskID string) error {
	b.mu.Lock()
	b.stateLocked(taskID).Tab = TabHistory
	b.mu.Unlock()
	return b.LoadHistory(ctx, taskID, false)
}

// LoadHistory fetches a task's change log. Without force the cached entry
// wins and no request is sent. On error the cache is set to an empty list
// so the empty state renders instead of a stuck spinner, and the message
// depends on the status: 403 reads as a permission problem, 404 as missing,
// anything else surfaces the backend message or the generic fallback.
func (b *Board) LoadHistory(ctx context.Context, taskID string, force bool) error {
	if !b.client.Sessions().IsAuthenticated() {
		return ErrNotAuthenticated
	}

	b.mu.Lock()
	if !force && b.stateLocked(taskID).HistoryLoaded {
		b.mu.Unlock()
		return nil
	}
	b.mu.Unlock()

	gen := b.begin("history:" + taskID)
	entries, err := b.client.TaskHistory(ctx, taskID)

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.isCurrent("history:"+taskID, gen) {
		return nil
	}

	state := b.stateLocked(taskID)
	if err != nil {
		state.History = []HistoryEntry{}
		state.HistoryLoaded = true
		state.HistoryErr = historyErrorMessage(err)
		return err
	}
	state.History = entries
	state.HistoryLoaded = true
	state.HistoryErr = ""
	return nil
}

func historyErrorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 403:
			return permissionDeniedMessage
		case 404:
			return historyNotFoundMessage
		}
	}
	return errorMessage(err)
}

func truncateDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateOnly)
}
