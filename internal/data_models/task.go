package dto

import model "todo-list.com/todo-list/internal/models"

type TaskRequestData struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type CreateTaskRequest = TaskRequestData

type UpdateTaskRequest struct {
	ID string `param:"id" json:"-"`
	TaskRequestData
}

type ListTasksQuery struct {
	Filter string `query:"filter"`
	Sort   string `query:"sort"`
}

type TaskListResponse struct {
	Count int           `json:"count"`
	Tasks []*model.Task `json:"tasks"`
}
