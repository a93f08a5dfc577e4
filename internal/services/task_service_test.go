package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/codesolution/pmt/internal/models"
	"github.com/codesolution/pmt/internal/repository"
)

// failingUpdateTaskRepo behaves like the real repository except that every
// Update fails, as it would on a lost connection mid-request.
type failingUpdateTaskRepo struct {
	repository.TaskRepository
}

func (r *failingUpdateTaskRepo) Update(task *models.Task) error {
	return errors.New("update failed")
}

func setupTaskServiceDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Task{},
		&models.TaskHistory{},
		&models.Notification{},
	)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	return db
}

func TestUpdateTask_FailedUpdateWritesNoHistory(t *testing.T) {
	db := setupTaskServiceDB(t)

	user := &models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "hash"}
	require.NoError(t, db.Create(user).Error)

	project := &models.Project{Name: "Test Project"}
	require.NoError(t, db.Create(project).Error)
	require.NoError(t, db.Create(&models.ProjectMember{
		ProjectID: project.ID,
		UserID:    user.ID,
		Role:      models.RoleAdmin,
	}).Error)

	task := &models.Task{
		Name:      "Original Name",
		ProjectID: project.ID,
		Status:    models.TaskStatusTodo,
		Priority:  models.TaskPriorityMedium,
	}
	require.NoError(t, db.Create(task).Error)

	svc := NewTaskService(
		&failingUpdateTaskRepo{repository.NewTaskRepository(db)},
		repository.NewProjectRepository(db),
		repository.NewUserRepository(db),
		repository.NewNotificationRepository(db),
		NewLogMailer(),
	)

	_, err := svc.UpdateTask(task.ID, UpdateTaskInput{
		Name:     "Renamed",
		Status:   models.TaskStatusInProgress,
		Priority: models.TaskPriorityHigh,
	}, user.ID)
	require.Error(t, err)

	// The failed update must not leave entries describing changes that never
	// landed.
	var count int64
	require.NoError(t, db.Model(&models.TaskHistory{}).Where("task_id = ?", task.ID).Count(&count).Error)
	require.Equal(t, int64(0), count)
}

func TestUpdateTask_SuccessfulUpdateWritesHistory(t *testing.T) {
	db := setupTaskServiceDB(t)

	user := &models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "hash"}
	require.NoError(t, db.Create(user).Error)

	project := &models.Project{Name: "Test Project"}
	require.NoError(t, db.Create(project).Error)
	require.NoError(t, db.Create(&models.ProjectMember{
		ProjectID: project.ID,
		UserID:    user.ID,
		Role:      models.RoleAdmin,
	}).Error)

	task := &models.Task{
		Name:      "Original Name",
		ProjectID: project.ID,
		Status:    models.TaskStatusTodo,
		Priority:  models.TaskPriorityMedium,
	}
	require.NoError(t, db.Create(task).Error)

	svc := NewTaskService(
		repository.NewTaskRepository(db),
		repository.NewProjectRepository(db),
		repository.NewUserRepository(db),
		repository.NewNotificationRepository(db),
		NewLogMailer(),
	)

	_, err := svc.UpdateTask(task.ID, UpdateTaskInput{
		Name:     "Renamed",
		Status:   models.TaskStatusTodo,
		Priority: models.TaskPriorityMedium,
	}, user.ID)
	require.NoError(t, err)

	var entries []models.TaskHistory
	require.NoError(t, db.Where("task_id = ?", task.ID).Find(&entries).Error)
	require.Len(t, entries, 1)
	require.Equal(t, models.HistoryFieldName, entries[0].FieldName)
	require.Equal(t, "Original Name", *entries[0].OldValue)
	require.Equal(t, "Renamed", *entries[0].NewValue)
}
