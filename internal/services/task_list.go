package services

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	apperrors "todo-list.com/todo-list/internal/errors"
	model "todo-list.com/todo-list/internal/models"
	"todo-list.com/todo-list/internal/storage"
)

const DefaultStorageKey = "tasks"

type Filter string

const (
	FilterAll         Filter = "all"
	FilterCompleted   Filter = "completed"
	FilterUncompleted Filter = "uncompleted"
)

type SortBy string

const (
	SortByDate SortBy = "date"
	SortByName SortBy = "name"
)

// TaskList owns the task collection persisted under one storage key.
//
// Every mutating call writes the whole collection back before returning. Two
// lists hydrated from the same key are not coordinated: the last save wins
// unless optimistic locking is enabled on a versioned store.
//
// A TaskList is not safe for concurrent use.
type TaskList struct {
	store    storage.Store
	key      string
	logger   *log.Logger
	collator *collate.Collator

	locking bool
	version uint

	tasks []*model.Task
}

type Option func(*TaskList)

func WithKey(key string) Option {
	return func(l *TaskList) { l.key = key }
}

func WithLogger(logger *log.Logger) Option {
	return func(l *TaskList) { l.logger = logger }
}

func WithCollator(c *collate.Collator) Option {
	return func(l *TaskList) { l.collator = c }
}

// WithOptimisticLocking makes saves compare-and-set against the revision seen
// at load time. It only has an effect when the store is a storage.VersionedStore.
func WithOptimisticLocking() Option {
	return func(l *TaskList) { l.locking = true }
}

// NewTaskList builds a list over store and hydrates it. When the stored payload
// is unreadable the returned list is empty and usable, and the error is a
// *errors.StorageReadError.
func NewTaskList(ctx context.Context, store storage.Store, opts ...Option) (*TaskList, error) {
	l := &TaskList{
		store:  store,
		key:    DefaultStorageKey,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.collator == nil {
		l.collator = collate.New(language.Russian)
	}

	if err := l.LoadFromStorage(ctx); err != nil {
		return l, err
	}
	return l, nil
}

func (l *TaskList) AddTask(ctx context.Context, task *model.Task) error {
	l.tasks = append(l.tasks, task)
	return l.SaveToStorage(ctx)
}

// RemoveTask deletes the task with id if present. It persists either way.
func (l *TaskList) RemoveTask(ctx context.Context, id string) error {
	kept := l.tasks[:0]
	for _, t := range l.tasks {
		if t.ID() != id {
			kept = append(kept, t)
		}
	}
	for i := len(kept); i < len(l.tasks); i++ {
		l.tasks[i] = nil
	}
	l.tasks = kept

	return l.SaveToStorage(ctx)
}

// GetTaskByID returns the live task, not a copy.
func (l *TaskList) GetTaskByID(id string) (*model.Task, bool) {
	for _, t := range l.tasks {
		if t.ID() == id {
			return t, true
		}
	}
	return nil, false
}

// UpdateTask overwrites title and description. Values are stored as given.
func (l *TaskList) UpdateTask(ctx context.Context, id, title, description string) error {
	task, ok := l.GetTaskByID(id)
	if !ok {
		return nil
	}

	task.SetTitle(title)
	task.SetDescription(description)
	return l.SaveToStorage(ctx)
}

// ToggleTaskCompleted flips the completion flag. A missing id still persists the
// unchanged collection.
func (l *TaskList) ToggleTaskCompleted(ctx context.Context, id string) error {
	if task, ok := l.GetTaskByID(id); ok {
		task.ToggleCompleted()
	}
	return l.SaveToStorage(ctx)
}

func (l *TaskList) GetAllTasks() []*model.Task {
	out := make([]*model.Task, len(l.tasks))
	copy(out, l.tasks)
	return out
}

func (l *TaskList) Len() int {
	return len(l.tasks)
}

// GetFilteredTasks keeps the stored order. Unknown filters select everything.
func (l *TaskList) GetFilteredTasks(filter Filter) []*model.Task {
	out := make([]*model.Task, 0, len(l.tasks))
	for _, t := range l.tasks {
		switch filter {
		case FilterCompleted:
			if !t.Completed() {
				continue
			}
		case FilterUncompleted:
			if t.Completed() {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

// GetSortedTasks returns a sorted copy of tasks; the input is left untouched.
// Date sorts newest first, name sorts by Russian collation. Any other value
// keeps the input order.
func (l *TaskList) GetSortedTasks(tasks []*model.Task, sortBy SortBy) []*model.Task {
	out := make([]*model.Task, len(tasks))
	copy(out, tasks)

	switch sortBy {
	case SortByDate:
		created := make(map[*model.Task]time.Time, len(out))
		for _, t := range out {
			ts, err := t.CreatedTime()
			if err != nil {
				l.logger.Warn("unparseable createdAt", "id", t.ID(), "createdAt", t.CreatedAt())
			}
			created[t] = ts
		}
		sort.SliceStable(out, func(i, j int) bool {
			return created[out[i]].After(created[out[j]])
		})
	case SortByName:
		sort.SliceStable(out, func(i, j int) bool {
			return l.collator.CompareString(out[i].Title(), out[j].Title()) < 0
		})
	}

	return out
}

// SaveToStorage replaces the stored payload with the full collection.
func (l *TaskList) SaveToStorage(ctx context.Context) error {
	records := make([]model.Record, 0, len(l.tasks))
	for _, t := range l.tasks {
		records = append(records, t.Serialize())
	}

	payload, err := json.Marshal(records)
	if err != nil {
		return &apperrors.StorageWriteError{Key: l.key, Err: err}
	}

	if err := l.write(ctx, string(payload)); err != nil {
		l.logger.Error("failed to save tasks", "key", l.key, "count", len(records), "err", err)
		return &apperrors.StorageWriteError{Key: l.key, Err: err}
	}

	return nil
}

func (l *TaskList) write(ctx context.Context, payload string) error {
	if vs, ok := l.versioned(); ok {
		next, err := vs.SetIfVersion(ctx, l.key, payload, l.version)
		if err != nil {
			if errors.Is(err, storage.ErrOptimisticLock) {
				return apperrors.ErrOptimisticLock
			}
			return err
		}
		l.version = next
		return nil
	}

	return l.store.Set(ctx, l.key, payload)
}

// LoadFromStorage replaces the in-memory collection with the stored one. An
// absent key yields an empty list; an unreadable payload yields an empty list
// and a *errors.StorageReadError.
func (l *TaskList) LoadFromStorage(ctx context.Context) error {
	raw, ok, err := l.read(ctx)
	if err != nil {
		l.tasks = nil
		return l.readFailed(err)
	}
	if !ok {
		l.tasks = nil
		return nil
	}

	if err := checkPayload(raw); err != nil {
		l.tasks = nil
		return l.readFailed(err)
	}

	var records []model.Record
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		l.tasks = nil
		return l.readFailed(err)
	}

	tasks := make([]*model.Task, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if _, dup := seen[r.ID]; dup {
			l.logger.Warn("duplicate task id in storage", "key", l.key, "id", r.ID)
		}
		seen[r.ID] = struct{}{}
		tasks = append(tasks, model.Deserialize(r))
	}
	l.tasks = tasks

	return nil
}

func (l *TaskList) read(ctx context.Context) (string, bool, error) {
	if vs, ok := l.versioned(); ok {
		raw, version, found, err := vs.GetVersioned(ctx, l.key)
		if err != nil {
			return "", false, err
		}
		l.version = version
		return raw, found, nil
	}

	return l.store.Get(ctx, l.key)
}

func (l *TaskList) versioned() (storage.VersionedStore, bool) {
	if !l.locking {
		return nil, false
	}
	vs, ok := l.store.(storage.VersionedStore)
	return vs, ok
}

func (l *TaskList) readFailed(err error) error {
	l.logger.Warn("stored tasks unreadable, starting empty", "key", l.key, "err", err)
	return &apperrors.StorageReadError{Key: l.key, Err: err}
}
