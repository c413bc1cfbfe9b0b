package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"

	"todoapi/internal/core/domain"
	"todoapi/internal/core/model/request"
	"todoapi/internal/core/model/response"
	"todoapi/pkg/config"
	ct "todoapi/pkg/context"
)

type stubVerifier map[string]int

func (v stubVerifier) Verify(token string) (int, error) {
	switch token {
	case "expired":
		return 0, domain.ErrTokenExpired
	}

	if id, ok := v[token]; ok {
		return id, nil
	}

	return 0, domain.ErrInvalidToken
}

type stubUsers struct {
	users map[int]domain.User
	err   error
}

func (s *stubUsers) GetUserByID(ctx context.Context, id int) (domain.User, error) {
	if s.err != nil {
		return domain.User{}, s.err
	}

	user, ok := s.users[id]

	if !ok {
		return domain.User{}, domain.ErrNotFound
	}

	return user, nil
}

func (s *stubUsers) UpdateUser(ctx context.Context, userId int, req *request.UpdateUserRequest) (domain.User, error) {
	return domain.User{}, errors.New("not implemented")
}

type IdentityGuardSuite struct {
	suite.Suite
	users  *stubUsers
	router *gin.Engine
	seen   []int
}

func TestIdentityGuardSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(IdentityGuardSuite))
}

func (s *IdentityGuardSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	s.seen = nil
	s.users = &stubUsers{users: map[int]domain.User{
		1: {ID: 1, Email: "alice@x.io"},
		2: {ID: 2, Email: "bob@x.io"},
	}}

	verifier := stubVerifier{"alice-token": 1, "bob-token": 2, "ghost-token": 99}

	s.router = gin.New()
	s.router.Use(CurrentMiddleware())
	s.router.GET("/me", IdentityGuard(verifier, s.users, config.NewNopLogger()), func(c *gin.Context) {
		user, ok := CurrentUser(c)
		Expect(ok).To(BeTrue())

		currentID, _ := ct.GetCurrent(c.Request.Context()).GetInt("user_id")
		Expect(currentID).To(Equal(user.ID))

		s.seen = append(s.seen, user.ID)
		c.JSON(http.StatusOK, gin.H{"id": user.ID})
	})
}

func (s *IdentityGuardSuite) do(authorization string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", "/me", nil)

	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	return rr
}

func decodeError(rr *httptest.ResponseRecorder) response.ErrorResponse {
	var body response.ErrorResponse
	Expect(json.Unmarshal(rr.Body.Bytes(), &body)).To(Succeed())

	return body
}

func (s *IdentityGuardSuite) TestAcceptsValidToken() {
	rr := s.do("Bearer alice-token")

	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(s.seen).To(Equal([]int{1}))
}

func (s *IdentityGuardSuite) TestSchemeIsCaseInsensitive() {
	rr := s.do("bearer bob-token")

	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(s.seen).To(Equal([]int{2}))
}

func (s *IdentityGuardSuite) TestRejectsMissingOrMalformedHeader() {
	for _, header := range []string{"", "Bearer", "Bearer   ", "Basic alice-token", "alice-token"} {
		rr := s.do(header)

		Expect(rr.Code).To(Equal(http.StatusUnauthorized), header)
		Expect(decodeError(rr).Error.Code).To(Equal("UNAUTHENTICATED"))
	}

	Expect(s.seen).To(BeEmpty())
}

func (s *IdentityGuardSuite) TestRejectsInvalidToken() {
	rr := s.do("Bearer forged")

	Expect(rr.Code).To(Equal(http.StatusUnauthorized))
	Expect(decodeError(rr).Error.Errors[0].Message).To(Equal("invalid token"))
}

func (s *IdentityGuardSuite) TestDistinguishesExpiredToken() {
	rr := s.do("Bearer expired")

	Expect(rr.Code).To(Equal(http.StatusUnauthorized))
	Expect(decodeError(rr).Error.Errors[0].Message).To(Equal("token expired"))
}

func (s *IdentityGuardSuite) TestRejectsTokenOfDeletedUser() {
	rr := s.do("Bearer ghost-token")

	Expect(rr.Code).To(Equal(http.StatusUnauthorized))
	Expect(s.seen).To(BeEmpty())
}

func (s *IdentityGuardSuite) TestStoreFailureIsInternalError() {
	s.users.err = errors.New("connection reset")

	rr := s.do("Bearer alice-token")

	Expect(rr.Code).To(Equal(http.StatusInternalServerError))
	Expect(decodeError(rr).Error.Code).To(Equal("INTERNAL_ERROR"))
}

func (s *IdentityGuardSuite) TestEchoesRequestID() {
	req, _ := http.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer alice-token")
	req.Header.Set(RequestIDHeader, "req-123")

	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	Expect(rr.Header().Get(RequestIDHeader)).To(Equal("req-123"))
	Expect(s.do("Bearer alice-token").Header().Get(RequestIDHeader)).ToNot(BeEmpty())
}
