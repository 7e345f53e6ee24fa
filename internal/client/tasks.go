package client

import (
	"context"
	"net/http"
	"net/url"

	"taskflow/internal/model"
)

const (
	tasksPath = "/api/tasks"
	tasksTag  = "tasks"
)

func (c *Client) Tasks(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	return get[[]model.Task](ctx, c, tasksPath, filter.Query(), tasksTag)
}

// Task reads one task. Its entry is also dropped whenever the task list is.
func (c *Client) Task(ctx context.Context, id uint) (*model.Task, error) {
	return get[*model.Task](ctx, c, idPath(tasksPath, id), nil, itemTag(tasksTag, id), tasksTag)
}

func (c *Client) SearchTasks(ctx context.Context, text string) ([]model.Task, error) {
	return get[[]model.Task](ctx, c, tasksPath+"/search", url.Values{"q": {text}}, tasksTag)
}

func (c *Client) TodayTasks(ctx context.Context) ([]model.Task, error) {
	return get[[]model.Task](ctx, c, tasksPath+"/today", nil, tasksTag)
}

func (c *Client) UpcomingTasks(ctx context.Context) ([]model.Task, error) {
	return get[[]model.Task](ctx, c, tasksPath+"/upcoming", nil, tasksTag)
}

func (c *Client) CompletedTasks(ctx context.Context) ([]model.Task, error) {
	return get[[]model.Task](ctx, c, tasksPath+"/completed", nil, tasksTag)
}

func (c *Client) CreateTask(ctx context.Context, task model.NewTask) (*model.Task, error) {
	return mutate[*model.Task](ctx, c, http.MethodPost, tasksPath, task, tasksTag)
}

func (c *Client) UpdateTask(ctx context.Context, id uint, update model.TaskUpdate) (*model.Task, error) {
	return mutate[*model.Task](ctx, c, http.MethodPatch, idPath(tasksPath, id), update, tasksTag, itemTag(tasksTag, id))
}

func (c *Client) DeleteTask(ctx context.Context, id uint) error {
	_, err := mutate[map[string]bool](ctx, c, http.MethodDelete, idPath(tasksPath, id), nil, tasksTag, itemTag(tasksTag, id))
	return err
}
