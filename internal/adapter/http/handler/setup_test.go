package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"

	. "todoapi/pkg/test"

	"todoapi/internal/adapter/database/sqlite"
	"todoapi/internal/adapter/database/sqlite/repository"
	"todoapi/internal/adapter/http/middleware"
	"todoapi/internal/core/domain"
	"todoapi/internal/core/port"
	"todoapi/internal/core/service"
	"todoapi/internal/core/telemetry"
	"todoapi/pkg/auth"
	"todoapi/pkg/config"
	"todoapi/pkg/db/cursor"
	"todoapi/pkg/test/factory"
)

var ctx = context.Background()

// env wires the handlers with real services over an in-memory database.
// Routes are mounted here directly to keep the routes package out of the
// import graph.
type env struct {
	DB       *sqlite.DB
	UserRepo port.UserRepository
	TaskRepo port.TaskRepository
	Tokens   *auth.JWT
	Router   *gin.Engine
}

func newEnv() *env {
	gin.SetMode(gin.TestMode)

	db := InitTestDB()
	probe := telemetry.NewNoOpProbe()
	logger := config.NewNopLogger()

	e := &env{
		DB:       db,
		UserRepo: repository.NewUserRepository(db, probe),
		TaskRepo: repository.NewTaskRepository(db, probe),
		Tokens:   NewTestJWT(),
	}

	authSvc, err := service.NewAuthService(e.UserRepo, NewTestHasher(), e.Tokens, probe)
	Expect(err).ToNot(HaveOccurred())
	userSvc := service.NewUserService(e.UserRepo, probe)
	taskSvc := service.NewTaskService(e.TaskRepo, cursor.NewCodec(TestCursorSecret), probe)

	authHandler := NewAuthHandler(authSvc, logger)
	taskHandler := NewTaskHandler(taskSvc, logger)
	userHandler := NewUserHandler(userSvc, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CurrentMiddleware())

	public := router.Group("/auth")
	{
		public.POST("/signup", authHandler.SignUp)
		public.POST("/login", authHandler.Login)
	}

	protected := router.Group("/")
	protected.Use(middleware.IdentityGuard(e.Tokens, userSvc, logger))
	{
		protected.GET("/todo", taskHandler.GetTasks)
		protected.POST("/todo", taskHandler.CreateTask)
		protected.GET("/todo/:id", taskHandler.GetTaskByID)
		protected.PATCH("/todo/:id", taskHandler.UpdateTaskByID)
		protected.DELETE("/todo/:id", taskHandler.DeleteTaskByID)
		protected.GET("/user", userHandler.GetMe)
		protected.PATCH("/user", userHandler.UpdateMe)
	}

	e.Router = router

	return e
}

func (e *env) Close() {
	e.DB.Close()
}

func (e *env) createUser(email string) domain.User {
	user, err := e.UserRepo.Create(ctx, factory.NewUser(map[string]any{"Email": email}))
	Expect(err).ToNot(HaveOccurred())

	return user
}

func (e *env) createTask(userID int, title string) domain.Task {
	task, err := e.TaskRepo.Create(ctx, factory.NewTask(map[string]any{
		"UserID": userID,
		"Title":  title,
	}))
	Expect(err).ToNot(HaveOccurred())

	return task
}

func (e *env) tokenFor(user domain.User) string {
	token, err := e.Tokens.Issue(user.ID)
	Expect(err).ToNot(HaveOccurred())

	return token
}

func (e *env) do(method, path, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader

	if body != "" {
		reader = strings.NewReader(body)
	}

	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	e.Router.ServeHTTP(rr, req)

	return rr
}

func decode[T any](rr *httptest.ResponseRecorder) T {
	var out T
	Expect(json.Unmarshal(rr.Body.Bytes(), &out)).To(Succeed())

	return out
}
