package view

import (
	"context"
	"strconv"
	"time"

	"github.com/a-h/templ"
	"github.com/msomdec/task-manager/internal/domain"
)

// TaskForm holds the values of the new-task form when it is re-rendered.
type TaskForm struct {
	Title       string
	Description string
	DueDate     string
	Errors      map[string]string
}

// TaskItemID is the DOM id of a task's list item.
func TaskItemID(taskID int64) string {
	return "task-" + strconv.FormatInt(taskID, 10)
}

// DashboardPage renders the signed-in user's task list.
func DashboardPage(name string, tasks []domain.Task) templ.Component {
	return Page("My tasks", component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<header><h1>`)
		h.text(name)
		h.raw(`'s tasks</h1><form method="post" action="/ui/logout"><button type="submit">Sign out</button></form></header>`)
		h.render(ctx, TaskFormFragment(TaskForm{}))
		h.render(ctx, TaskList(tasks))
	}))
}

// TaskFormFragment renders the new-task form. It posts through datastar so
// the list updates in place.
func TaskFormFragment(f TaskForm) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<form id="task-form" data-on:submit="@post('/ui/tasks', {contentType: 'form'})">`)
		input(h, "text", "title", "Title", f.Title, f.Errors["title"])
		h.raw(`<label>Description<br><textarea name="description" rows="2">`)
		h.text(f.Description)
		h.raw(`</textarea></label>`)
		errorLine(h, f.Errors["description"])
		input(h, "date", "due_date", "Due date", f.DueDate, f.Errors["dueDate"])
		h.raw(`<button type="submit">Add task</button></form>`)
	})
}

// TaskList renders every task, or an empty-state line.
func TaskList(tasks []domain.Task) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<ul id="task-list">`)
		if len(tasks) == 0 {
			h.raw(`<li class="empty">No tasks yet.</li>`)
		}
		for i := range tasks {
			h.render(ctx, TaskItem(tasks[i]))
		}
		h.raw(`</ul>`)
	})
}

// TaskItem renders one task with its toggle and delete controls.
func TaskItem(t domain.Task) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		id := strconv.FormatInt(t.ID, 10)
		class := ""
		checked := ""
		if t.IsCompleted {
			class = ` class="done"`
			checked = " checked"
		}

		h.raw(`<li id="` + TaskItemID(t.ID) + `"` + class + `>`)
		h.raw(`<input type="checkbox" aria-label="Completed"` + checked + ` data-on:change="@post('/ui/tasks/` + id + `/toggle')">`)
		h.raw(`<div class="task-body"><div class="title">`)
		h.text(t.Title)
		h.raw(`</div>`)
		if t.Description != "" {
			h.raw(`<div>`)
			h.text(t.Description)
			h.raw(`</div>`)
		}
		h.raw(`<div class="meta">Created `)
		h.text(t.CreatedAt.UTC().Format(time.DateOnly))
		if t.DueDate != nil {
			h.raw(` · due `)
			h.text(t.DueDate.UTC().Format(time.DateOnly))
		}
		h.raw(`</div></div>`)
		h.raw(`<button type="button" data-on:click="@get('/ui/tasks/` + id + `/edit')">Edit</button>`)
		h.raw(`<button type="button" data-on:click="confirm('Delete this task?') &amp;&amp; @delete('/ui/tasks/` + id + `')">Delete</button>`)
		h.raw(`</li>`)
	})
}

// TaskFormFromTask fills a form with a task's current values.
func TaskFormFromTask(t domain.Task) TaskForm {
	f := TaskForm{Title: t.Title, Description: t.Description}
	if t.DueDate != nil {
		f.DueDate = t.DueDate.UTC().Format(time.DateOnly)
	}
	return f
}

// TaskEditFragment renders a task's row as an inline edit form. Saving
// posts the form; cancelling fetches the plain row again.
func TaskEditFragment(taskID int64, f TaskForm) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		id := strconv.FormatInt(taskID, 10)
		h.raw(`<li id="` + TaskItemID(taskID) + `"><form class="task-body" data-on:submit="@post('/ui/tasks/` + id + `', {contentType: 'form'})">`)
		input(h, "text", "title", "Title", f.Title, f.Errors["title"])
		h.raw(`<label>Description<br><textarea name="description" rows="2">`)
		h.text(f.Description)
		h.raw(`</textarea></label>`)
		errorLine(h, f.Errors["description"])
		input(h, "date", "due_date", "Due date", f.DueDate, f.Errors["dueDate"])
		h.raw(`<div><button type="submit">Save</button> `)
		h.raw(`<button type="button" data-on:click="@get('/ui/tasks/` + id + `')">Cancel</button></div>`)
		h.raw(`</form></li>`)
	})
}
