package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "github.com/yukikurage/project-tracker-api/internal/errors"
	"github.com/yukikurage/project-tracker-api/internal/models"
)

type stubSuggester struct {
	tasks []GeneratedTask
	err   error
	calls int
}

func (s *stubSuggester) GenerateTasksFromText(ctx context.Context, text string) ([]GeneratedTask, error) {
	s.calls++
	return s.tasks, s.err
}

type taskFixture struct {
	*fixture
	svc *TaskService

	owner, admin, member, outsider             *models.User
	ownerMember, adminMember, memberMembership *models.Member
	project                                    *models.Project
}

func newTaskFixture(t *testing.T, suggester TaskSuggester) *taskFixture {
	t.Helper()

	f := newFixture(t)
	tf := &taskFixture{fixture: f, svc: f.taskService(suggester)}

	tf.owner = f.createUser(t, "owner")
	tf.admin = f.createUser(t, "admin")
	tf.member = f.createUser(t, "member")
	tf.outsider = f.createUser(t, "outsider")

	tf.project = f.createProject(t, tf.owner, "Apollo")
	tf.ownerMember = f.membership(t, tf.project, tf.owner)
	tf.adminMember = f.addMember(t, tf.project, tf.admin, models.RoleAdmin)
	tf.memberMembership = f.addMember(t, tf.project, tf.member, models.RoleMember)
	return tf
}

func TestTaskService_CreateTask(t *testing.T) {
	tf := newTaskFixture(t, nil)
	ctx := context.Background()

	due := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	task, err := tf.svc.CreateTask(ctx, CreateTaskInput{
		ProjectID: tf.project.ID,
		ActorID:   tf.admin.ID,
		Name:      " Fix login ",
		Label:     models.TaskLabelBug,
		DueDate:   &due,
		MemberID:  &tf.memberMembership.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Fix login", task.Name)
	assert.Equal(t, models.TaskStatusToDo, task.Status)
	assert.Equal(t, models.TaskPriorityMedium, task.Priority)
	assert.Equal(t, models.TaskLabelBug, task.Label)
	require.NotNil(t, task.Assignee)
	assert.Equal(t, tf.member.ID, task.Assignee.User.ID)

	t.Run("member cannot create", func(t *testing.T) {
		_, err := tf.svc.CreateTask(ctx, CreateTaskInput{ProjectID: tf.project.ID, ActorID: tf.member.ID, Name: "x"})
		requireCode(t, err, apierrors.ErrCodeForbidden)
	})

	t.Run("outsider sees not found", func(t *testing.T) {
		_, err := tf.svc.CreateTask(ctx, CreateTaskInput{ProjectID: tf.project.ID, ActorID: tf.outsider.ID, Name: "x"})
		requireCode(t, err, apierrors.ErrCodeNotFound)
	})

	t.Run("invalid enums", func(t *testing.T) {
		_, err := tf.svc.CreateTask(ctx, CreateTaskInput{ProjectID: tf.project.ID, ActorID: tf.owner.ID, Name: "x", Status: "BLOCKED"})
		requireCode(t, err, apierrors.ErrCodeValidation)
		_, err = tf.svc.CreateTask(ctx, CreateTaskInput{ProjectID: tf.project.ID, ActorID: tf.owner.ID, Name: "x", Priority: "URGENT"})
		requireCode(t, err, apierrors.ErrCodeValidation)
		_, err = tf.svc.CreateTask(ctx, CreateTaskInput{ProjectID: tf.project.ID, ActorID: tf.owner.ID, Name: "x", Label: "CHORE"})
		requireCode(t, err, apierrors.ErrCodeValidation)
	})

	t.Run("assignee from another project", func(t *testing.T) {
		other := tf.createProject(t, tf.outsider, "Other")
		foreign := tf.membership(t, other, tf.outsider)
		_, err := tf.svc.CreateTask(ctx, CreateTaskInput{ProjectID: tf.project.ID, ActorID: tf.owner.ID, Name: "x", MemberID: &foreign.ID})
		requireCode(t, err, apierrors.ErrCodeValidation)
	})

	t.Run("name required", func(t *testing.T) {
		_, err := tf.svc.CreateTask(ctx, CreateTaskInput{ProjectID: tf.project.ID, ActorID: tf.owner.ID, Name: "  "})
		requireCode(t, err, apierrors.ErrCodeValidation)
	})
}

func TestTaskService_UpdateTask(t *testing.T) {
	tf := newTaskFixture(t, nil)
	ctx := context.Background()

	task, err := tf.svc.CreateTask(ctx, CreateTaskInput{ProjectID: tf.project.ID, ActorID: tf.owner.ID, Name: "Ship it"})
	require.NoError(t, err)

	t.Run("member updates workflow fields", func(t *testing.T) {
		status := models.TaskStatusInProgress
		priority := models.TaskPriorityHigh
		updated, err := tf.svc.UpdateTask(ctx, task.ID, tf.member.ID, UpdateTaskInput{Status: &status, Priority: &priority})
		require.NoError(t, err)
		assert.Equal(t, models.TaskStatusInProgress, updated.Status)
		assert.Equal(t, models.TaskPriorityHigh, updated.Priority)
	})

	t.Run("member cannot rename", func(t *testing.T) {
		name := "Renamed"
		_, err := tf.svc.UpdateTask(ctx, task.ID, tf.member.ID, UpdateTaskInput{Name: &name})
		requireCode(t, err, apierrors.ErrCodeForbidden)
	})

	t.Run("admin assigns and clears", func(t *testing.T) {
		updated, err := tf.svc.UpdateTask(ctx, task.ID, tf.admin.ID, UpdateTaskInput{MemberID: &tf.memberMembership.ID})
		require.NoError(t, err)
		require.NotNil(t, updated.MemberID)
		assert.Equal(t, tf.memberMembership.ID, *updated.MemberID)

		updated, err = tf.svc.UpdateTask(ctx, task.ID, tf.admin.ID, UpdateTaskInput{ClearAssignee: true})
		require.NoError(t, err)
		assert.Nil(t, updated.MemberID)
	})

	t.Run("invalid status", func(t *testing.T) {
		status := models.TaskStatus("PAUSED")
		_, err := tf.svc.UpdateTask(ctx, task.ID, tf.owner.ID, UpdateTaskInput{Status: &status})
		requireCode(t, err, apierrors.ErrCodeValidation)
	})

	t.Run("outsider sees not found", func(t *testing.T) {
		status := models.TaskStatusDone
		_, err := tf.svc.UpdateTask(ctx, task.ID, tf.outsider.ID, UpdateTaskInput{Status: &status})
		requireCode(t, err, apierrors.ErrCodeNotFound)
	})
}

func TestTaskService_DeleteTask(t *testing.T) {
	tf := newTaskFixture(t, nil)
	ctx := context.Background()

	task, err := tf.svc.CreateTask(ctx, CreateTaskInput{ProjectID: tf.project.ID, ActorID: tf.owner.ID, Name: "Ship it"})
	require.NoError(t, err)

	err = tf.svc.DeleteTask(ctx, task.ID, tf.member.ID)
	requireCode(t, err, apierrors.ErrCodeForbidden)

	err = tf.svc.DeleteTask(ctx, task.ID, tf.outsider.ID)
	requireCode(t, err, apierrors.ErrCodeNotFound)

	require.NoError(t, tf.svc.DeleteTask(ctx, task.ID, tf.admin.ID))

	_, err = tf.svc.GetTask(ctx, task.ID, tf.owner.ID)
	requireCode(t, err, apierrors.ErrCodeNotFound)
}

func TestTaskService_ListTasks(t *testing.T) {
	tf := newTaskFixture(t, nil)
	ctx := context.Background()

	soon := time.Now().Add(24 * time.Hour)
	later := time.Now().Add(72 * time.Hour)
	inputs := []CreateTaskInput{
		{Name: "later", DueDate: &later, Priority: models.TaskPriorityLow},
		{Name: "no due date", Priority: models.TaskPriorityHigh, MemberID: &tf.memberMembership.ID},
		{Name: "soon", DueDate: &soon, Status: models.TaskStatusDone, Label: models.TaskLabelBug},
	}
	for _, in := range inputs {
		in.ProjectID = tf.project.ID
		in.ActorID = tf.owner.ID
		_, err := tf.svc.CreateTask(ctx, in)
		require.NoError(t, err)
	}

	tasks, total, err := tf.svc.ListTasks(ctx, ListTasksInput{ProjectID: tf.project.ID, UserID: tf.member.ID, SortByDueDate: true})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, tasks, 3)
	assert.Equal(t, "soon", tasks[0].Name)
	assert.Equal(t, "later", tasks[1].Name)
	assert.Equal(t, "no due date", tasks[2].Name)

	done := models.TaskStatusDone
	tasks, total, err = tf.svc.ListTasks(ctx, ListTasksInput{ProjectID: tf.project.ID, UserID: tf.member.ID, Status: &done})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "soon", tasks[0].Name)

	tasks, _, err = tf.svc.ListTasks(ctx, ListTasksInput{ProjectID: tf.project.ID, UserID: tf.member.ID, AssignedToMe: true})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "no due date", tasks[0].Name)
	require.NotNil(t, tasks[0].Assignee)
	assert.Equal(t, tf.member.ID, tasks[0].Assignee.User.ID)

	tasks, total, err = tf.svc.ListTasks(ctx, ListTasksInput{ProjectID: tf.project.ID, UserID: tf.owner.ID, Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, tasks, 1)

	_, _, err = tf.svc.ListTasks(ctx, ListTasksInput{ProjectID: tf.project.ID, UserID: tf.outsider.ID})
	requireCode(t, err, apierrors.ErrCodeNotFound)
}

func TestTaskService_GenerateTaskSuggestions(t *testing.T) {
	ctx := context.Background()

	t.Run("not configured", func(t *testing.T) {
		tf := newTaskFixture(t, nil)
		_, err := tf.svc.GenerateTaskSuggestions(ctx, GenerateTaskSuggestionsInput{ProjectID: tf.project.ID, UserID: tf.member.ID, Text: "fix the bug"})
		requireCode(t, err, apierrors.ErrCodeServiceUnavailable)
	})

	t.Run("normalises drafts", func(t *testing.T) {
		past := time.Now().Add(-72 * time.Hour)
		stub := &stubSuggester{tasks: []GeneratedTask{
			{Name: "Fix crash", Priority: "CRITICAL", Label: models.TaskLabelBug, DueDate: &past},
			{Name: "   "},
			{Name: "Write guide", Priority: models.TaskPriorityLow, Label: "MANUAL"},
		}}
		tf := newTaskFixture(t, stub)

		drafts, err := tf.svc.GenerateTaskSuggestions(ctx, GenerateTaskSuggestionsInput{ProjectID: tf.project.ID, UserID: tf.member.ID, Text: "notes"})
		require.NoError(t, err)
		require.Len(t, drafts, 2)
		assert.Equal(t, models.TaskPriorityMedium, drafts[0].Priority)
		assert.Nil(t, drafts[0].DueDate)
		assert.Equal(t, models.TaskLabelFeature, drafts[1].Label)

		var count int64
		require.NoError(t, tf.db.Model(&models.Task{}).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("suggester failure", func(t *testing.T) {
		tf := newTaskFixture(t, &stubSuggester{err: errors.New("upstream down")})
		_, err := tf.svc.GenerateTaskSuggestions(ctx, GenerateTaskSuggestionsInput{ProjectID: tf.project.ID, UserID: tf.member.ID, Text: "notes"})
		requireCode(t, err, apierrors.ErrCodeInternalError)
	})

	t.Run("outsider", func(t *testing.T) {
		stub := &stubSuggester{}
		tf := newTaskFixture(t, stub)
		_, err := tf.svc.GenerateTaskSuggestions(ctx, GenerateTaskSuggestionsInput{ProjectID: tf.project.ID, UserID: tf.outsider.ID, Text: "notes"})
		requireCode(t, err, apierrors.ErrCodeNotFound)
		assert.Zero(t, stub.calls)
	})
}
