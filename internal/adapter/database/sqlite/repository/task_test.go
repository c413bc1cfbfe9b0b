package repository_test

import (
	"context"
	"testing"
	"time"

	. "todoapi/pkg/test"

	"todoapi/internal/adapter/database/sqlite"
	"todoapi/internal/adapter/database/sqlite/repository"
	"todoapi/internal/core/domain"
	"todoapi/internal/core/port"
	"todoapi/pkg/test/factory"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"
)

type TaskRepositoryTestSuite struct {
	suite.Suite
	db       *sqlite.DB
	TaskRepo port.TaskRepository
	UserRepo port.UserRepository
	alice    domain.User
	bob      domain.User
}

func (s *TaskRepositoryTestSuite) SetupTest() {
	s.db = InitTestDB()

	s.TaskRepo = repository.NewTaskRepository(s.db, nil)
	s.UserRepo = repository.NewUserRepository(s.db, nil)

	ctx := context.Background()
	s.alice, _ = s.UserRepo.Create(ctx, factory.NewUser(map[string]any{"Email": "alice@x.com"}))
	s.bob, _ = s.UserRepo.Create(ctx, factory.NewUser(map[string]any{"Email": "bob@x.com"}))
}

func (s *TaskRepositoryTestSuite) TearDownTest() {
	s.db.Close()
}

func TestTaskRepositoryTestSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(TaskRepositoryTestSuite))
}

func (s *TaskRepositoryTestSuite) createTask(userId int, title string) domain.Task {
	task, err := s.TaskRepo.Create(context.Background(), factory.NewTask(map[string]any{
		"UserID": userId,
		"Title":  title,
	}))

	Expect(err).To(BeNil())

	return task
}

func (s *TaskRepositoryTestSuite) TestRepository_GetAll_Empty() {
	tasks, hasNext, err := s.TaskRepo.GetAllByUser(context.Background(), s.alice.ID, 0, 0)

	Expect(err).To(BeNil())
	Expect(tasks).ToNot(BeNil())
	Expect(tasks).To(BeEmpty())
	Expect(hasNext).To(BeFalse())
}

func (s *TaskRepositoryTestSuite) TestRepository_CreateTask_Success() {
	description := "and eggs"
	now := time.Now().UTC()

	task, err := s.TaskRepo.Create(context.Background(), domain.Task{
		Title:       "Buy milk",
		Description: &description,
		UserID:      s.alice.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})

	Expect(err).To(BeNil())
	Expect(task.ID).ToNot(BeZero())
	Expect(task.Title).To(Equal("Buy milk"))
	Expect(*task.Description).To(Equal("and eggs"))
	Expect(task.UserID).To(Equal(s.alice.ID))
	Expect(task.CreatedAt).To(BeTemporally("~", now, time.Second))
}

func (s *TaskRepositoryTestSuite) TestRepository_CreateTask_NullDescription() {
	task, err := s.TaskRepo.Create(context.Background(), domain.Task{Title: "No details", UserID: s.alice.ID})

	Expect(err).To(BeNil())
	Expect(task.Description).To(BeNil())
	Expect(task.CreatedAt.IsZero()).To(BeFalse())
}

func (s *TaskRepositoryTestSuite) TestRepository_CreateTask_UnknownUser() {
	_, err := s.TaskRepo.Create(context.Background(), domain.Task{Title: "Orphan", UserID: 999})

	Expect(err).ToNot(BeNil())
}

func (s *TaskRepositoryTestSuite) TestRepository_GetAll_OnlyOwnInInsertionOrder() {
	first := s.createTask(s.alice.ID, "first")
	s.createTask(s.bob.ID, "bob's")
	second := s.createTask(s.alice.ID, "second")

	tasks, _, err := s.TaskRepo.GetAllByUser(context.Background(), s.alice.ID, 0, 0)

	Expect(err).To(BeNil())
	Expect(tasks).To(HaveLen(2))
	Expect(tasks[0].ID).To(Equal(first.ID))
	Expect(tasks[1].ID).To(Equal(second.ID))
}

func (s *TaskRepositoryTestSuite) TestRepository_GetAll_Pagination() {
	var ids []int

	for i := 0; i < 5; i++ {
		ids = append(ids, s.createTask(s.alice.ID, "task").ID)
	}

	ctx := context.Background()

	page, hasNext, err := s.TaskRepo.GetAllByUser(ctx, s.alice.ID, 0, 2)
	Expect(err).To(BeNil())
	Expect(hasNext).To(BeTrue())
	Expect(page).To(HaveLen(2))
	Expect(page[1].ID).To(Equal(ids[1]))

	page, hasNext, err = s.TaskRepo.GetAllByUser(ctx, s.alice.ID, ids[3], 2)
	Expect(err).To(BeNil())
	Expect(hasNext).To(BeFalse())
	Expect(page).To(HaveLen(1))
	Expect(page[0].ID).To(Equal(ids[4]))
}

func (s *TaskRepositoryTestSuite) TestRepository_GetByID_ScopedToOwner() {
	task := s.createTask(s.alice.ID, "private")
	ctx := context.Background()

	found, err := s.TaskRepo.GetByID(ctx, s.alice.ID, task.ID)
	Expect(err).To(BeNil())
	Expect(found.Title).To(Equal("private"))

	_, err = s.TaskRepo.GetByID(ctx, s.bob.ID, task.ID)
	Expect(err).To(MatchError(domain.ErrNotFound))

	_, err = s.TaskRepo.GetByID(ctx, s.alice.ID, 999)
	Expect(err).To(MatchError(domain.ErrNotFound))
}

func (s *TaskRepositoryTestSuite) TestRepository_UpdateByID() {
	task := s.createTask(s.alice.ID, "old")
	ctx := context.Background()

	description := "new details"
	task.Title = "new"
	task.Description = &description
	task.UpdatedAt = time.Now().UTC().Add(time.Minute)

	updated, err := s.TaskRepo.UpdateByID(ctx, s.alice.ID, task)

	Expect(err).To(BeNil())
	Expect(updated.ID).To(Equal(task.ID))
	Expect(updated.Title).To(Equal("new"))
	Expect(*updated.Description).To(Equal("new details"))
	Expect(updated.CreatedAt).To(BeTemporally("~", task.CreatedAt, time.Millisecond))
	Expect(updated.UpdatedAt.After(updated.CreatedAt)).To(BeTrue())
}

func (s *TaskRepositoryTestSuite) TestRepository_UpdateByID_OtherOwner() {
	task := s.createTask(s.alice.ID, "mine")
	ctx := context.Background()

	task.Title = "stolen"
	_, err := s.TaskRepo.UpdateByID(ctx, s.bob.ID, task)
	Expect(err).To(MatchError(domain.ErrNotFound))

	unchanged, _ := s.TaskRepo.GetByID(ctx, s.alice.ID, task.ID)
	Expect(unchanged.Title).To(Equal("mine"))
}

func (s *TaskRepositoryTestSuite) TestRepository_DeleteByID() {
	task := s.createTask(s.alice.ID, "to delete")
	ctx := context.Background()

	err := s.TaskRepo.DeleteByID(ctx, s.bob.ID, task.ID)
	Expect(err).To(MatchError(domain.ErrNotFound))

	err = s.TaskRepo.DeleteByID(ctx, s.alice.ID, task.ID)
	Expect(err).To(BeNil())

	_, err = s.TaskRepo.GetByID(ctx, s.alice.ID, task.ID)
	Expect(err).To(MatchError(domain.ErrNotFound))

	err = s.TaskRepo.DeleteByID(ctx, s.alice.ID, task.ID)
	Expect(err).To(MatchError(domain.ErrNotFound))
}
