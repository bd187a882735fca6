package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskhub/taskhub-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Task{}, &models.Document{}))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		require.NoError(t, err)
		sqlDB.Close()
	})

	return db
}

func seedTask(t *testing.T, db *gorm.DB, title string, due time.Time, priority models.TaskPriority) *models.Task {
	t.Helper()

	task := &models.Task{
		Title:        title,
		Description:  "desc",
		Status:       models.TaskStatusTodo,
		Priority:     priority,
		DueDate:      due,
		AssignedToID: 1,
		CreatedByID:  1,
	}
	require.NoError(t, db.Create(task).Error)
	return task
}

func TestTaskRepository_ListSorting(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewTaskRepository(db)

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	seedTask(t, db, "bravo", base.AddDate(0, 0, 2), models.TaskPriorityLow)
	seedTask(t, db, "alpha", base.AddDate(0, 0, 1), models.TaskPriorityHigh)
	seedTask(t, db, "charlie", base, models.TaskPriorityMedium)

	tasks, total, err := repo.List(TaskFilter{SortBy: "title", SortOrder: "asc"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, tasks, 3)
	assert.Equal(t, "alpha", tasks[0].Title)
	assert.Equal(t, "charlie", tasks[2].Title)

	tasks, _, err = repo.List(TaskFilter{SortBy: "dueDate", SortOrder: "desc"})
	require.NoError(t, err)
	assert.Equal(t, "bravo", tasks[0].Title)

	// Unknown sort keys fall back to creation time rather than reaching SQL.
	_, _, err = repo.List(TaskFilter{SortBy: "; DROP TABLE tasks"})
	assert.NoError(t, err)
}

func TestTaskRepository_ListDueBeforeAndPagination(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewTaskRepository(db)

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedTask(t, db, "task", base.AddDate(0, 0, i), models.TaskPriorityLow)
	}

	cutoff := base.AddDate(0, 0, 3)
	tasks, total, err := repo.List(TaskFilter{DueDateBefore: &cutoff})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, tasks, 3)

	tasks, total, err = repo.List(TaskFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, tasks, 2)
}

func TestTaskRepository_FindByDocumentStoredName(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewTaskRepository(db)

	task := seedTask(t, db, "with doc", time.Now(), models.TaskPriorityLow)
	doc := &models.Document{
		TaskID:     task.ID,
		Filename:   "original.pdf",
		StoredName: "1700000000-abcdef.pdf",
		Path:       "/uploads/1700000000-abcdef.pdf",
		Mimetype:   "application/pdf",
	}
	require.NoError(t, db.Create(doc).Error)

	found, foundDoc, err := repo.FindByDocumentStoredName("1700000000-abcdef.pdf")
	require.NoError(t, err)
	assert.Equal(t, task.ID, found.ID)
	assert.Equal(t, "original.pdf", foundDoc.Filename)

	_, _, err = repo.FindByDocumentStoredName("unknown.pdf")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestTaskRepository_UpdateWithDocuments(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewTaskRepository(db)

	task := seedTask(t, db, "doc churn", time.Now(), models.TaskPriorityLow)
	old := &models.Document{TaskID: task.ID, Filename: "old.pdf", StoredName: "old-1.pdf", Path: "/u/old-1.pdf", Mimetype: "application/pdf"}
	require.NoError(t, db.Create(old).Error)

	task.Title = "renamed"
	err := repo.UpdateWithDocuments(task, []uint64{old.ID}, []models.Document{
		{Filename: "new.pdf", StoredName: "new-1.pdf", Path: "/u/new-1.pdf", Mimetype: "application/pdf"},
	})
	require.NoError(t, err)

	reloaded, err := repo.FindByID(task.ID, "AttachedDocuments")
	require.NoError(t, err)
	assert.Equal(t, "renamed", reloaded.Title)
	require.Len(t, reloaded.AttachedDocuments, 1)
	assert.Equal(t, "new.pdf", reloaded.AttachedDocuments[0].Filename)

	// Removed document rows are gone for good, not soft-deleted.
	var count int64
	db.Model(&models.Document{}).Where("id = ?", old.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestTaskRepository_Update(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewTaskRepository(db)

	task := seedTask(t, db, "before", time.Now(), models.TaskPriorityLow)
	task.Status = models.TaskStatusInProgress
	require.NoError(t, repo.Update(task))

	reloaded, err := repo.FindByID(task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusInProgress, reloaded.Status)
}
