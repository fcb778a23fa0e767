package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CreatedAtLayout is the persisted creation timestamp format (DD.MM.YYYY HH:MM:SS, local time).
const CreatedAtLayout = "02.01.2006 15:04:05"

const (
	StatusCompletedText  = "Выполнено"
	StatusInProgressText = "В процессе"
)

// Record is the wire shape of a task inside the persisted JSON array.
type Record struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
	Completed   bool   `json:"completed"`
}

// Task is a single to-do item. The id and creation time are fixed at construction.
type Task struct {
	id          string
	title       string
	description string
	createdAt   string
	completed   bool
}

// NewTask creates an uncompleted task with a fresh id stamped with the current local time.
// It does not validate title or description.
func NewTask(title, description string) *Task {
	return NewTaskAt(title, description, time.Now())
}

func NewTaskAt(title, description string, now time.Time) *Task {
	return &Task{
		id:          uuid.NewString(),
		title:       title,
		description: description,
		createdAt:   now.In(time.Local).Format(CreatedAtLayout),
		completed:   false,
	}
}

// Deserialize rebuilds a task from its record, keeping id, createdAt and completed verbatim.
func Deserialize(r Record) *Task {
	return &Task{
		id:          r.ID,
		title:       r.Title,
		description: r.Description,
		createdAt:   r.CreatedAt,
		completed:   r.Completed,
	}
}

func (t *Task) Serialize() Record {
	return Record{
		ID:          t.id,
		Title:       t.title,
		Description: t.description,
		CreatedAt:   t.createdAt,
		Completed:   t.completed,
	}
}

func (t *Task) ID() string          { return t.id }
func (t *Task) Title() string       { return t.title }
func (t *Task) Description() string { return t.description }
func (t *Task) CreatedAt() string   { return t.createdAt }
func (t *Task) Completed() bool     { return t.completed }

// CreatedTime parses the creation timestamp back into an instant in local time.
func (t *Task) CreatedTime() (time.Time, error) {
	return time.ParseInLocation(CreatedAtLayout, t.createdAt, time.Local)
}

func (t *Task) SetTitle(title string) {
	t.title = title
}

func (t *Task) SetDescription(description string) {
	t.description = description
}

func (t *Task) SetCompleted(completed bool) {
	t.completed = completed
}

func (t *Task) ToggleCompleted() {
	t.completed = !t.completed
}

func (t *Task) StatusText() string {
	if t.completed {
		return StatusCompletedText
	}
	return StatusInProgressText
}

func (t *Task) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Serialize())
}

func (t *Task) UnmarshalJSON(data []byte) error {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*t = *Deserialize(r)
	return nil
}
