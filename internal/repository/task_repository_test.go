package repository

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"taskflow/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := NewDB(":memory:")
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func createTask(t *testing.T, repo *TaskRepository, in model.NewTask) model.Task {
	t.Helper()
	if in.Date == "" {
		in.Date = "2025-01-10"
	}
	if in.Time == "" {
		in.Time = "09:00"
	}
	task := in.Task()
	if err := repo.Create(context.Background(), &task); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return task
}

func titles(tasks []model.Task) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.Title
	}
	return out
}

func equalStrings(a, b []string) bool {
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

func TestTaskRepository_CreateAssignsDefaults(t *testing.T) {
	repo := NewTaskRepository(newTestDB(t))
	ctx := context.Background()

	created := createTask(t, repo, model.NewTask{Title: "Buy milk", Category: "Pessoal", Date: "2025-01-10", Time: "09:00"})
	if created.ID == 0 {
		t.Fatal("expected generated id")
	}

	got, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got == nil {
		t.Fatal("expected task to exist")
	}
	if got.Title != "Buy milk" || got.Category != "Pessoal" || got.Date != "2025-01-10" || got.Time != "09:00" {
		t.Errorf("unexpected task fields: %+v", got)
	}
	if got.Completed || got.ReminderEnabled || got.IsRecurring {
		t.Errorf("expected boolean flags to default to false: %+v", got)
	}
	if got.Priority != model.PriorityMedium {
		t.Errorf("priority = %q, want medium", got.Priority)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be assigned")
	}
	if got.Tags == nil || len(got.Tags) != 0 {
		t.Errorf("tags = %#v, want empty slice", got.Tags)
	}
}

func TestTaskRepository_FindByIDMissing(t *testing.T) {
	repo := NewTaskRepository(newTestDB(t))

	got, err := repo.FindByID(context.Background(), 9999)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil task, got %+v", got)
	}
}

func TestTaskRepository_UpdateChangesOnlyGivenFields(t *testing.T) {
	repo := NewTaskRepository(newTestDB(t))
	ctx := context.Background()
	created := createTask(t, repo, model.NewTask{
		Title:       "Write report",
		Description: strPtr("quarterly numbers"),
		Category:    "Trabalho",
		Priority:    model.PriorityHigh,
		Tags:        []string{"work"},
	})

	updated, err := repo.Update(ctx, created.ID, model.TaskUpdate{Completed: boolPtr(true)})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated == nil {
		t.Fatal("expected updated task")
	}
	if !updated.Completed {
		t.Error("completed should be true")
	}
	if updated.Title != created.Title || *updated.Description != *created.Description ||
		updated.Category != created.Category || updated.Priority != created.Priority ||
		updated.Date != created.Date || updated.Time != created.Time {
		t.Errorf("untouched fields changed: before %+v after %+v", created, updated)
	}
	if !equalStrings(updated.Tags, []string{"work"}) {
		t.Errorf("tags = %v, want [work]", updated.Tags)
	}
}

func TestTaskRepository_UpdateTags(t *testing.T) {
	repo := NewTaskRepository(newTestDB(t))
	created := createTask(t, repo, model.NewTask{Title: "Tagged", Tags: []string{"a"}})

	tags := []string{"b", "c"}
	updated, err := repo.Update(context.Background(), created.ID, model.TaskUpdate{Tags: &tags})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !equalStrings(updated.Tags, tags) {
		t.Errorf("tags = %v, want %v", updated.Tags, tags)
	}
}

func TestTaskRepository_UpdateMissing(t *testing.T) {
	db := newTestDB(t)
	repo := NewTaskRepository(db)

	got, err := repo.Update(context.Background(), 9999, model.TaskUpdate{Title: strPtr("ghost")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing task, got %+v", got)
	}

	var count int64
	db.Model(&model.Task{}).Count(&count)
	if count != 0 {
		t.Errorf("expected no rows, found %d", count)
	}
}

func TestTaskRepository_Delete(t *testing.T) {
	repo := NewTaskRepository(newTestDB(t))
	ctx := context.Background()
	created := createTask(t, repo, model.NewTask{Title: "Temporary"})

	deleted, err := repo.Delete(ctx, created.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !deleted {
		t.Error("expected delete to report true")
	}

	got, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got != nil {
		t.Error("task still present after delete")
	}

	deleted, err = repo.Delete(ctx, created.ID)
	if err != nil {
		t.Fatalf("Delete again: %v", err)
	}
	if deleted {
		t.Error("deleting a missing id should report false")
	}
}

func TestTaskRepository_ListFilters(t *testing.T) {
	repo := NewTaskRepository(newTestDB(t))
	ctx := context.Background()

	createTask(t, repo, model.NewTask{Title: "a", Category: "Trabalho", Priority: model.PriorityHigh, Date: "2025-01-01", Tags: []string{"work", "q1"}})
	createTask(t, repo, model.NewTask{Title: "b", Category: "Pessoal", Priority: model.PriorityLow, Date: "2025-01-05", Completed: true, Tags: []string{"home"}})
	createTask(t, repo, model.NewTask{Title: "c", Category: "Trabalho", Priority: model.PriorityLow, Date: "2025-01-10", Completed: true, Tags: []string{"work"}})
	createTask(t, repo, model.NewTask{Title: "d", Category: "Estudo", Priority: model.PriorityUrgent, Date: "2025-02-01", Tags: []string{"100%"}})

	tests := []struct {
		name   string
		filter model.TaskFilter
		want   []string
	}{
		{name: "no filter newest first", filter: model.TaskFilter{}, want: []string{"d", "c", "b", "a"}},
		{name: "completed", filter: model.TaskFilter{Completed: boolPtr(true), SortBy: model.SortByTitle, SortOrder: model.SortAsc}, want: []string{"b", "c"}},
		{name: "not completed", filter: model.TaskFilter{Completed: boolPtr(false), SortBy: model.SortByTitle, SortOrder: model.SortAsc}, want: []string{"a", "d"}},
		{name: "category", filter: model.TaskFilter{Category: "Trabalho", SortBy: model.SortByTitle, SortOrder: model.SortAsc}, want: []string{"a", "c"}},
		{name: "priority", filter: model.TaskFilter{Priority: model.PriorityLow, SortBy: model.SortByTitle, SortOrder: model.SortAsc}, want: []string{"b", "c"}},
		{name: "date range inclusive", filter: model.TaskFilter{DateFrom: "2025-01-05", DateTo: "2025-01-10", SortBy: model.SortByDate, SortOrder: model.SortAsc}, want: []string{"b", "c"}},
		{name: "date from only", filter: model.TaskFilter{DateFrom: "2025-01-06", SortBy: model.SortByDate, SortOrder: model.SortAsc}, want: []string{"c", "d"}},
		{name: "single tag", filter: model.TaskFilter{Tags: []string{"work"}, SortBy: model.SortByTitle, SortOrder: model.SortAsc}, want: []string{"a", "c"}},
		{name: "all tags required", filter: model.TaskFilter{Tags: []string{"work", "q1"}}, want: []string{"a"}},
		{name: "tag wildcard literal", filter: model.TaskFilter{Tags: []string{"100%"}}, want: []string{"d"}},
		{name: "tag prefix is not a match", filter: model.TaskFilter{Tags: []string{"wor"}}, want: []string{}},
		{name: "tag exact case", filter: model.TaskFilter{Tags: []string{"home"}}, want: []string{"b"}},
		{name: "tag other case is not a match", filter: model.TaskFilter{Tags: []string{"HOME"}}, want: []string{}},
		{name: "tag json quoting is not a match", filter: model.TaskFilter{Tags: []string{`"work"`}}, want: []string{}},
		{name: "combined", filter: model.TaskFilter{Category: "Trabalho", Completed: boolPtr(true)}, want: []string{"c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if !equalStrings(titles(got), tt.want) {
				t.Errorf("List() = %v, want %v", titles(got), tt.want)
			}
		})
	}
}

func TestTaskRepository_ListSorting(t *testing.T) {
	repo := NewTaskRepository(newTestDB(t))
	ctx := context.Background()

	createTask(t, repo, model.NewTask{Title: "Banana", Priority: model.PriorityUrgent, Date: "2025-03-01"})
	createTask(t, repo, model.NewTask{Title: "apple", Priority: model.PriorityLow, Date: "2025-01-01"})
	createTask(t, repo, model.NewTask{Title: "Cherry", Priority: model.PriorityHigh, Date: "2025-02-01"})
	createTask(t, repo, model.NewTask{Title: "Apple", Priority: model.PriorityMedium, Date: "2025-02-01"})

	tests := []struct {
		name  string
		by    model.SortField
		order model.SortOrder
		want  []string
	}{
		{name: "title asc", by: model.SortByTitle, order: model.SortAsc, want: []string{"Apple", "Banana", "Cherry", "apple"}},
		{name: "title desc", by: model.SortByTitle, order: model.SortDesc, want: []string{"apple", "Cherry", "Banana", "Apple"}},
		{name: "priority rank asc", by: model.SortByPriority, order: model.SortAsc, want: []string{"apple", "Apple", "Cherry", "Banana"}},
		{name: "priority rank desc", by: model.SortByPriority, order: model.SortDesc, want: []string{"Banana", "Cherry", "Apple", "apple"}},
		{name: "date asc with id tie-break", by: model.SortByDate, order: model.SortAsc, want: []string{"apple", "Cherry", "Apple", "Banana"}},
		{name: "created asc", by: model.SortByCreated, order: model.SortAsc, want: []string{"Banana", "apple", "Cherry", "Apple"}},
		{name: "order without field is ignored", order: model.SortAsc, want: []string{"Apple", "Cherry", "apple", "Banana"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(ctx, model.TaskFilter{SortBy: tt.by, SortOrder: tt.order})
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if !equalStrings(titles(got), tt.want) {
				t.Errorf("List() = %v, want %v", titles(got), tt.want)
			}
		})
	}
}

func TestTaskRepository_Search(t *testing.T) {
	repo := NewTaskRepository(newTestDB(t))
	ctx := context.Background()

	createTask(t, repo, model.NewTask{Title: "Lunch with Ana", Category: "Pessoal"})
	createTask(t, repo, model.NewTask{Title: "Gym", Description: strPtr("after LUNCH break"), Category: "Saúde"})
	createTask(t, repo, model.NewTask{Title: "Book table", Category: "lunches"})
	createTask(t, repo, model.NewTask{Title: "Dinner", Category: "Pessoal"})
	createTask(t, repo, model.NewTask{Title: "Discount 50%", Category: "Compras"})
	createTask(t, repo, model.NewTask{Title: "REUNIÃO com cliente", Category: "Trabalho"})
	createTask(t, repo, model.NewTask{Title: "Ir à ÓTICA", Category: "Saúde"})

	tests := []struct {
		query string
		want  []string
	}{
		{query: "lunch", want: []string{"Book table", "Gym", "Lunch with Ana"}},
		{query: "LUNCH", want: []string{"Book table", "Gym", "Lunch with Ana"}},
		{query: "dinner", want: []string{"Dinner"}},
		{query: "50%", want: []string{"Discount 50%"}},
		{query: "%", want: []string{"Discount 50%"}},
		{query: "reunião", want: []string{"REUNIÃO com cliente"}},
		{query: "Reunião", want: []string{"REUNIÃO com cliente"}},
		{query: "ótica", want: []string{"Ir à ÓTICA"}},
		{query: "SAÚDE", want: []string{"Ir à ÓTICA", "Gym"}},
		{query: "nothing here", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := repo.Search(ctx, tt.query)
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if !equalStrings(titles(got), tt.want) {
				t.Errorf("Search(%q) = %v, want %v", tt.query, titles(got), tt.want)
			}
		})
	}
}

func TestTaskRepository_Reminders(t *testing.T) {
	repo := NewTaskRepository(newTestDB(t))
	ctx := context.Background()

	on := createTask(t, repo, model.NewTask{Title: "remind me", ReminderEnabled: true})
	createTask(t, repo, model.NewTask{Title: "quiet"})
	createTask(t, repo, model.NewTask{Title: "done", ReminderEnabled: true, Completed: true})

	tasks, err := repo.ListWithReminders(ctx)
	if err != nil {
		t.Fatalf("ListWithReminders: %v", err)
	}
	if !equalStrings(titles(tasks), []string{"remind me"}) {
		t.Fatalf("ListWithReminders() = %v", titles(tasks))
	}

	if err := repo.MarkReminderSent(ctx, on.ID, "2025-01-10"); err != nil {
		t.Fatalf("MarkReminderSent: %v", err)
	}
	got, _ := repo.FindByID(ctx, on.ID)
	if got.ReminderSentFor == nil || *got.ReminderSentFor != "2025-01-10" {
		t.Errorf("ReminderSentFor = %v", got.ReminderSentFor)
	}

	// moving the date rearms the reminder
	got, err = repo.Update(ctx, on.ID, model.TaskUpdate{Date: strPtr("2025-01-11")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.ReminderSentFor != nil {
		t.Errorf("expected reminder to be rearmed, got %v", *got.ReminderSentFor)
	}
}

func TestTaskRepository_ListRecurring(t *testing.T) {
	repo := NewTaskRepository(newTestDB(t))

	createTask(t, repo, model.NewTask{Title: "gym", IsRecurring: true, RecurrencePattern: strPtr("weekly"), Date: "2025-01-06"})
	createTask(t, repo, model.NewTask{Title: "standup", IsRecurring: true, RecurrencePattern: strPtr("daily"), Date: "2025-01-02"})
	createTask(t, repo, model.NewTask{Title: "retired", IsRecurring: true, RecurrencePattern: strPtr("daily"), Completed: true})
	createTask(t, repo, model.NewTask{Title: "once"})

	got, err := repo.ListRecurring(context.Background())
	if err != nil {
		t.Fatalf("ListRecurring: %v", err)
	}
	if !equalStrings(titles(got), []string{"standup", "gym"}) {
		t.Errorf("ListRecurring() = %v", titles(got))
	}
}

func TestTaskRepository_DetachCategory(t *testing.T) {
	db := newTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	cat := model.Category{Name: "Trabalho"}
	if err := NewCategoryRepository(db).Create(ctx, &cat); err != nil {
		t.Fatalf("create category: %v", err)
	}
	task := createTask(t, repo, model.NewTask{Title: "report", Category: "Trabalho", CategoryID: &cat.ID})

	got, err := repo.Update(ctx, task.ID, model.TaskUpdate{Category: strPtr("Side project"), DetachCategory: true})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.CategoryID != nil || got.Category != "Side project" {
		t.Errorf("Update() category = %q/%v", got.Category, got.CategoryID)
	}
}
