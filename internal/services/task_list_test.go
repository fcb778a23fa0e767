package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	apperrors "todo-list.com/todo-list/internal/errors"
	model "todo-list.com/todo-list/internal/models"
	"todo-list.com/todo-list/internal/storage"
)

// mockStore is a simple in-memory Store that counts writes and can fail on demand.
type mockStore struct {
	mu      sync.Mutex
	data    map[string]string
	sets    int
	failGet error
	failSet error
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string)}
}

func (m *mockStore) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failGet != nil {
		return "", false, m.failGet
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mockStore) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sets++
	if m.failSet != nil {
		return m.failSet
	}
	m.data[key] = value
	return nil
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func newTestList(t *testing.T, store storage.Store, opts ...Option) *TaskList {
	t.Helper()

	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	list, err := NewTaskList(context.Background(), store, opts...)
	if err != nil {
		t.Fatalf("failed to create task list: %v", err)
	}
	return list
}

func at(day, hour int) time.Time {
	return time.Date(2024, time.May, day, hour, 0, 0, 0, time.Local)
}

func ids(tasks []*model.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID()
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestTaskList_AddAndReload(t *testing.T) {
	store := newMockStore()
	ctx := context.Background()

	list := newTestList(t, store)
	task := model.NewTask("Тест задача", "Первое описание")
	task.SetCompleted(true)

	if err := list.AddTask(ctx, task); err != nil {
		t.Fatalf("failed to add task: %v", err)
	}

	reloaded := newTestList(t, store)
	got, ok := reloaded.GetTaskByID(task.ID())
	if !ok {
		t.Fatal("expected task after reload")
	}
	if got.Serialize() != task.Serialize() {
		t.Errorf("reloaded task mismatch: %+v != %+v", got.Serialize(), task.Serialize())
	}
}

func TestTaskList_EmptyWhenKeyAbsent(t *testing.T) {
	list := newTestList(t, newMockStore())
	if list.Len() != 0 {
		t.Errorf("expected empty list, got %d", list.Len())
	}
}

func TestTaskList_CustomKey(t *testing.T) {
	store := newMockStore()
	list := newTestList(t, store, WithKey("other"))

	if err := list.AddTask(context.Background(), model.NewTask("a b", "c")); err != nil {
		t.Fatalf("failed to add task: %v", err)
	}
	if _, ok := store.data["other"]; !ok {
		t.Error("expected payload under custom key")
	}
	if _, ok := store.data[DefaultStorageKey]; ok {
		t.Error("expected default key to be untouched")
	}
}

func TestTaskList_RemoveTask(t *testing.T) {
	store := newMockStore()
	ctx := context.Background()
	list := newTestList(t, store)

	a := model.NewTask("Первая задача", "раз")
	b := model.NewTask("Вторая задача", "два")
	_ = list.AddTask(ctx, a)
	_ = list.AddTask(ctx, b)

	if err := list.RemoveTask(ctx, a.ID()); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if _, ok := list.GetTaskByID(a.ID()); ok {
		t.Error("expected removed task to be gone")
	}
	if _, ok := list.GetTaskByID(b.ID()); !ok {
		t.Error("expected other task to remain")
	}

	setsBefore := store.sets
	if err := list.RemoveTask(ctx, "missing"); err != nil {
		t.Errorf("removing missing id should be a no-op, got %v", err)
	}
	if store.sets != setsBefore+1 {
		t.Error("expected remove of missing id to persist anyway")
	}
	if list.Len() != 1 {
		t.Errorf("expected 1 task, got %d", list.Len())
	}
}

func TestTaskList_UpdateTask(t *testing.T) {
	store := newMockStore()
	ctx := context.Background()
	list := newTestList(t, store)

	task := model.NewTask("Старое название", "старое")
	_ = list.AddTask(ctx, task)

	if err := list.UpdateTask(ctx, task.ID(), "Новое название", "новое"); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	reloaded := newTestList(t, store)
	got, _ := reloaded.GetTaskByID(task.ID())
	if got.Title() != "Новое название" || got.Description() != "новое" {
		t.Errorf("update not persisted: %+v", got.Serialize())
	}
	if got.CreatedAt() != task.CreatedAt() {
		t.Error("update must not change createdAt")
	}

	setsBefore := store.sets
	if err := list.UpdateTask(ctx, "missing", "x y", "z"); err != nil {
		t.Errorf("update of missing id should be a no-op, got %v", err)
	}
	if store.sets != setsBefore {
		t.Error("update of missing id should not persist")
	}
}

func TestTaskList_ToggleMissingIDStillPersists(t *testing.T) {
	store := newMockStore()
	ctx := context.Background()
	list := newTestList(t, store)

	task := model.NewTask("Тест задача", "описание")
	_ = list.AddTask(ctx, task)
	before := store.data[DefaultStorageKey]
	setsBefore := store.sets

	if err := list.ToggleTaskCompleted(ctx, "does-not-exist"); err != nil {
		t.Fatalf("toggle of missing id returned error: %v", err)
	}

	if store.sets != setsBefore+1 {
		t.Error("expected an idempotent write")
	}
	if store.data[DefaultStorageKey] != before {
		t.Error("expected collection to be unchanged")
	}
}

func TestTaskList_GetTaskByIDIsLive(t *testing.T) {
	list := newTestList(t, newMockStore())
	task := model.NewTask("a b", "c")
	_ = list.AddTask(context.Background(), task)

	ref, _ := list.GetTaskByID(task.ID())
	ref.SetTitle("changed title")

	again, _ := list.GetTaskByID(task.ID())
	if again.Title() != "changed title" {
		t.Error("expected GetTaskByID to return a live reference")
	}
}

func TestTaskList_GetAllTasksIsCopy(t *testing.T) {
	list := newTestList(t, newMockStore())
	ctx := context.Background()
	_ = list.AddTask(ctx, model.NewTask("a b", "c"))
	_ = list.AddTask(ctx, model.NewTask("d e", "f"))

	all := list.GetAllTasks()
	all[0] = nil

	if list.Len() != 2 {
		t.Errorf("expected internal state untouched, got %d tasks", list.Len())
	}
	for _, task := range list.GetAllTasks() {
		if task == nil {
			t.Fatal("internal slice was mutated through the copy")
		}
	}
}

func TestTaskList_FilterUncompletedKeepsOrder(t *testing.T) {
	list := newTestList(t, newMockStore())
	ctx := context.Background()

	a := model.NewTaskAt("Первая задача", "раз", at(1, 10))
	b := model.NewTaskAt("Вторая задача", "два", at(2, 10))
	c := model.NewTaskAt("Третья задача", "три", at(3, 10))
	for _, task := range []*model.Task{a, b, c} {
		_ = list.AddTask(ctx, task)
	}
	_ = list.ToggleTaskCompleted(ctx, b.ID())

	if got := ids(list.GetFilteredTasks(FilterUncompleted)); !equalIDs(got, []string{a.ID(), c.ID()}) {
		t.Errorf("unexpected uncompleted tasks: %v", got)
	}
	if got := ids(list.GetFilteredTasks(FilterCompleted)); !equalIDs(got, []string{b.ID()}) {
		t.Errorf("unexpected completed tasks: %v", got)
	}
	if got := ids(list.GetFilteredTasks(Filter("whatever"))); !equalIDs(got, []string{a.ID(), b.ID(), c.ID()}) {
		t.Errorf("unknown filter should return all, got %v", got)
	}
}

func TestTaskList_SortByDate(t *testing.T) {
	list := newTestList(t, newMockStore())

	old := model.NewTaskAt("Старая задача", "a", at(1, 9))
	newest := model.NewTaskAt("Новая задача", "b", at(3, 9))
	middle := model.NewTaskAt("Средняя задача", "c", at(2, 9))
	input := []*model.Task{old, newest, middle}

	sorted := list.GetSortedTasks(input, SortByDate)

	if got := ids(sorted); !equalIDs(got, []string{newest.ID(), middle.ID(), old.ID()}) {
		t.Errorf("expected newest first, got %v", got)
	}
	if got := ids(input); !equalIDs(got, []string{old.ID(), newest.ID(), middle.ID()}) {
		t.Error("sorting must not mutate its input")
	}
}

func TestTaskList_SortByNameUsesCyrillicCollation(t *testing.T) {
	list := newTestList(t, newMockStore())

	// Byte order would put "Ёж" first and uppercase before lowercase.
	titles := []string{"яблоко красное", "Ёж колючий", "арбуз спелый", "Банан жёлтый", "дыня сладкая"}
	input := make([]*model.Task, len(titles))
	for i, title := range titles {
		input[i] = model.NewTask(title, "описание")
	}

	sorted := list.GetSortedTasks(input, SortByName)

	want := []string{"арбуз спелый", "Банан жёлтый", "дыня сладкая", "Ёж колючий", "яблоко красное"}
	for i, task := range sorted {
		if task.Title() != want[i] {
			t.Fatalf("position %d: expected %q, got %q", i, want[i], task.Title())
		}
	}
	if input[0].Title() != titles[0] {
		t.Error("sorting must not mutate its input")
	}
}

func TestTaskList_SortUnknownKeepsOrder(t *testing.T) {
	list := newTestList(t, newMockStore())
	input := []*model.Task{
		model.NewTaskAt("b b", "x", at(1, 1)),
		model.NewTaskAt("a a", "x", at(2, 1)),
	}

	sorted := list.GetSortedTasks(input, SortBy("priority"))
	if !equalIDs(ids(sorted), ids(input)) {
		t.Error("unknown sort should keep order")
	}

	sorted[0] = nil
	if input[0] == nil {
		t.Error("expected a new slice")
	}
}

func TestTaskList_CorruptPayloadFallsBackToEmpty(t *testing.T) {
	cases := map[string]string{
		"not json":        `{oops`,
		"wrong shape":     `{"id":"x"}`,
		"missing field":   `[{"id":"x","title":"a b","description":"c","createdAt":"01.01.2024 10:00:00"}]`,
		"bad createdAt":   `[{"id":"x","title":"a b","description":"c","createdAt":"2024-01-01","completed":false}]`,
		"wrong type":      `[{"id":1,"title":"a b","description":"c","createdAt":"01.01.2024 10:00:00","completed":false}]`,
		"trailing tokens": `[] []`,
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			store := newMockStore()
			store.data[DefaultStorageKey] = payload

			list, err := NewTaskList(context.Background(), store, WithLogger(quietLogger()))

			var readErr *apperrors.StorageReadError
			if !errors.As(err, &readErr) {
				t.Fatalf("expected StorageReadError, got %v", err)
			}
			if list == nil || list.Len() != 0 {
				t.Fatal("expected a usable empty list")
			}
		})
	}
}

func TestTaskList_ReadFailure(t *testing.T) {
	store := newMockStore()
	store.failGet = errors.New("storage unavailable")

	list, err := NewTaskList(context.Background(), store, WithLogger(quietLogger()))

	var readErr *apperrors.StorageReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("expected StorageReadError, got %v", err)
	}
	if !errors.Is(err, store.failGet) {
		t.Error("expected cause to be wrapped")
	}
	if list.Len() != 0 {
		t.Error("expected empty list")
	}
}

func TestTaskList_LoadReplacesWholesale(t *testing.T) {
	store := newMockStore()
	ctx := context.Background()

	writer := newTestList(t, store)
	kept := model.NewTask("Сохранённая задача", "a")
	_ = writer.AddTask(ctx, kept)

	reader := newTestList(t, store)
	reader.tasks = append(reader.tasks, model.NewTask("Несохранённая задача", "b"))

	if err := reader.LoadFromStorage(ctx); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got := ids(reader.GetAllTasks()); !equalIDs(got, []string{kept.ID()}) {
		t.Errorf("expected only persisted task, got %v", got)
	}
}

func TestTaskList_DuplicateIDsAreKept(t *testing.T) {
	store := newMockStore()
	store.data[DefaultStorageKey] = `[` +
		`{"id":"dup","title":"a b","description":"c","createdAt":"01.01.2024 10:00:00","completed":false},` +
		`{"id":"dup","title":"d e","description":"f","createdAt":"02.01.2024 10:00:00","completed":true}` +
		`]`

	list := newTestList(t, store)
	if list.Len() != 2 {
		t.Errorf("expected both records to load, got %d", list.Len())
	}
	got, _ := list.GetTaskByID("dup")
	if got.Title() != "a b" {
		t.Errorf("expected first match, got %q", got.Title())
	}
}

func TestTaskList_WriteFailureIsReported(t *testing.T) {
	store := newMockStore()
	ctx := context.Background()
	list := newTestList(t, store)

	store.failSet = errors.New("quota exceeded")
	task := model.NewTask("Тест задача", "описание")

	err := list.AddTask(ctx, task)

	var writeErr *apperrors.StorageWriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("expected StorageWriteError, got %v", err)
	}
	if !errors.Is(err, store.failSet) {
		t.Error("expected cause to be wrapped")
	}
	if _, ok := list.GetTaskByID(task.ID()); !ok {
		t.Error("expected in-memory state to keep the attempted task")
	}
}

// Two lists over the same key are not coordinated: the second save discards
// the first one's task. This is the documented last-writer-wins race.
func TestTaskList_CrossInstanceLastWriterWins(t *testing.T) {
	store := newMockStore()
	ctx := context.Background()

	first := newTestList(t, store)
	second := newTestList(t, store)

	a := model.NewTask("Первая вкладка", "a")
	b := model.NewTask("Вторая вкладка", "b")
	_ = first.AddTask(ctx, a)
	_ = second.AddTask(ctx, b)

	reloaded := newTestList(t, store)
	if _, ok := reloaded.GetTaskByID(a.ID()); ok {
		t.Error("expected first instance's task to be overwritten")
	}
	if _, ok := reloaded.GetTaskByID(b.ID()); !ok {
		t.Error("expected last writer's task to survive")
	}
}

func TestTaskList_OptimisticLockingDetectsConcurrentWriter(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()

	first := newTestList(t, store, WithOptimisticLocking())
	second := newTestList(t, store, WithOptimisticLocking())

	if err := first.AddTask(ctx, model.NewTask("Первая вкладка", "a")); err != nil {
		t.Fatalf("first save failed: %v", err)
	}

	err := second.AddTask(ctx, model.NewTask("Вторая вкладка", "b"))
	if !errors.Is(err, apperrors.ErrOptimisticLock) {
		t.Fatalf("expected optimistic lock conflict, got %v", err)
	}

	if err := second.LoadFromStorage(ctx); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if err := second.AddTask(ctx, model.NewTask("Вторая вкладка", "b")); err != nil {
		t.Errorf("save after reload should succeed, got %v", err)
	}
	if second.Len() != 2 {
		t.Errorf("expected both tasks after reload, got %d", second.Len())
	}
}
