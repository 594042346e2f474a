package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"tienda/internal/handler"
	"tienda/internal/middleware"
	"tienda/internal/models"
	"tienda/internal/repository"
	"tienda/internal/service"
	"tienda/internal/testutil"
	"tienda/pkg/logger"
)

// UserHandlerIntegrationTestSuite defines test suite
type UserHandlerIntegrationTestSuite struct {
	suite.Suite
	testDB    *testutil.TestDatabase
	testRedis *testutil.TestRedis
	router    *gin.Engine

	alice *models.User
	bob   *models.User
}

func (s *UserHandlerIntegrationTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	logger.Init(false)

	s.testDB = testutil.SetupTestDatabase(s.T())
	s.testRedis = testutil.SetupTestRedis(s.T())

	userRepo := repository.NewUserRepository(s.testDB.DB)
	tokens := s.testRedis.TokenStore()
	authService := service.NewAuthService(userRepo, tokens, testJWTSecret, 1*time.Hour)
	userService := service.NewUserService(userRepo, tokens)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)

	s.router = gin.New()
	s.router.POST("/api/auth/login", authHandler.Login)

	protected := s.router.Group("/api")
	protected.Use(middleware.AuthMiddleware(testJWTSecret, tokens, userRepo))
	protected.GET("/users", userHandler.List)
	protected.GET("/users/:id", userHandler.Get)
	protected.PUT("/users/:id", userHandler.Update)
	protected.PATCH("/users/:id", userHandler.Patch)
	protected.PUT("/users/:id/password", userHandler.ChangePassword)
	protected.DELETE("/users/:id", userHandler.Delete)
}

func (s *UserHandlerIntegrationTestSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
	s.testRedis.Teardown(s.T())
}

func (s *UserHandlerIntegrationTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)
	s.testRedis.Server.FlushAll()

	var err error
	s.alice, err = testutil.CreateTestUser("alice", "alice@example.com", "AlicePass123", models.RoleUser)
	require.NoError(s.T(), err)
	s.bob, err = testutil.CreateTestUser("bob", "bob@example.com", "BobPass12345", models.RoleUser)
	require.NoError(s.T(), err)

	for _, u := range []*models.User{s.alice, s.bob} {
		require.NoError(s.T(), s.testDB.DB.Create(u).Error)
	}
}

func (s *UserHandlerIntegrationTestSuite) doJSON(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		err := json.NewEncoder(&buf).Encode(body)
		require.NoError(s.T(), err)
	}

	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *UserHandlerIntegrationTestSuite) login(email, password string) (string, int) {
	w := s.doJSON(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, "")

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	token, _ := response["token"].(string)
	return token, w.Code
}

func (s *UserHandlerIntegrationTestSuite) mustLogin(email, password string) string {
	token, code := s.login(email, password)
	require.Equal(s.T(), http.StatusOK, code)
	require.NotEmpty(s.T(), token)
	return token
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

// TestListUsers tests the user listing for an authenticated account
func (s *UserHandlerIntegrationTestSuite) TestListUsers() {
	token := s.mustLogin("alice@example.com", "AlicePass123")

	w := s.doJSON(http.MethodGet, "/api/users", nil, token)

	assert.Equal(s.T(), http.StatusOK, w.Code)
	response := decodeBody(s.T(), w)
	assert.Equal(s.T(), true, response["success"])
	assert.Equal(s.T(), "Users fetched successfully", response["message"])
	assert.Len(s.T(), response["data"], 2)
}

// TestGetUser tests fetching one user by id
func (s *UserHandlerIntegrationTestSuite) TestGetUser() {
	token := s.mustLogin("alice@example.com", "AlicePass123")

	w := s.doJSON(http.MethodGet, "/api/users/"+s.bob.ID.String(), nil, token)

	assert.Equal(s.T(), http.StatusOK, w.Code)
	response := decodeBody(s.T(), w)
	data := response["data"].(map[string]interface{})
	assert.Equal(s.T(), "bob", data["username"])
	assert.NotContains(s.T(), data, "password_hash")
}

// TestGetUserNotFound tests that an unknown or malformed id yields 404
func (s *UserHandlerIntegrationTestSuite) TestGetUserNotFound() {
	token := s.mustLogin("alice@example.com", "AlicePass123")

	for _, path := range []string{
		"/api/users/00000000-0000-0000-0000-000000000000",
		"/api/users/not-a-uuid",
	} {
		w := s.doJSON(http.MethodGet, path, nil, token)
		assert.Equal(s.T(), http.StatusNotFound, w.Code, "path %s", path)

		response := decodeBody(s.T(), w)
		assert.Equal(s.T(), false, response["success"])
		assert.Equal(s.T(), "User not found", response["message"])
	}
}

// TestUpdateSelf tests a full profile update of the caller's own account
func (s *UserHandlerIntegrationTestSuite) TestUpdateSelf() {
	token := s.mustLogin("alice@example.com", "AlicePass123")

	w := s.doJSON(http.MethodPut, "/api/users/"+s.alice.ID.String(), map[string]interface{}{
		"username":     "alice2",
		"email":        "alice2@example.com",
		"phone_number": "555-0100",
	}, token)

	assert.Equal(s.T(), http.StatusOK, w.Code)
	response := decodeBody(s.T(), w)
	assert.Equal(s.T(), "User updated successfully", response["message"])

	data := response["data"].(map[string]interface{})
	assert.Equal(s.T(), "alice2", data["username"])
	assert.Equal(s.T(), "alice2@example.com", data["email"])
	assert.Equal(s.T(), "555-0100", data["phone_number"])
}

// TestUpdateOtherUserForbidden tests that profile updates are self-only
func (s *UserHandlerIntegrationTestSuite) TestUpdateOtherUserForbidden() {
	token := s.mustLogin("alice@example.com", "AlicePass123")

	w := s.doJSON(http.MethodPut, "/api/users/"+s.bob.ID.String(), map[string]interface{}{
		"username": "hijacked",
		"email":    "hijacked@example.com",
	}, token)

	assert.Equal(s.T(), http.StatusForbidden, w.Code)
	response := decodeBody(s.T(), w)
	assert.Equal(s.T(), false, response["success"])
	assert.Equal(s.T(), "You are not allowed to update this user", response["message"])
}

// TestUpdateValidation tests the 422 validation response
func (s *UserHandlerIntegrationTestSuite) TestUpdateValidation() {
	token := s.mustLogin("alice@example.com", "AlicePass123")

	w := s.doJSON(http.MethodPut, "/api/users/"+s.alice.ID.String(), map[string]interface{}{
		"email": "not-an-email",
	}, token)

	assert.Equal(s.T(), http.StatusUnprocessableEntity, w.Code)
	response := decodeBody(s.T(), w)
	assert.Equal(s.T(), false, response["success"])
	assert.Equal(s.T(), "Validation error", response["message"])

	fieldErrs := response["errors"].(map[string]interface{})
	assert.Contains(s.T(), fieldErrs, "username")
	assert.Contains(s.T(), fieldErrs, "email")
}

// TestUpdateTakenUsername tests the uniqueness check on update
func (s *UserHandlerIntegrationTestSuite) TestUpdateTakenUsername() {
	token := s.mustLogin("alice@example.com", "AlicePass123")

	w := s.doJSON(http.MethodPut, "/api/users/"+s.alice.ID.String(), map[string]interface{}{
		"username": "bob",
		"email":    "alice@example.com",
	}, token)

	assert.Equal(s.T(), http.StatusUnprocessableEntity, w.Code)
	response := decodeBody(s.T(), w)
	fieldErrs := response["errors"].(map[string]interface{})
	messages := fieldErrs["username"].([]interface{})
	assert.Contains(s.T(), messages[0], "already been taken")
}

// TestPatchSelf tests a partial update leaves other fields alone
func (s *UserHandlerIntegrationTestSuite) TestPatchSelf() {
	token := s.mustLogin("alice@example.com", "AlicePass123")

	w := s.doJSON(http.MethodPatch, "/api/users/"+s.alice.ID.String(), map[string]interface{}{
		"phone_number": "555-0199",
	}, token)

	assert.Equal(s.T(), http.StatusOK, w.Code)
	response := decodeBody(s.T(), w)
	assert.Equal(s.T(), "User partially updated", response["message"])

	data := response["data"].(map[string]interface{})
	assert.Equal(s.T(), "alice", data["username"], "fields absent from the patch keep their values")
	assert.Equal(s.T(), "555-0199", data["phone_number"])
}

// TestChangePasswordFlow tests the full change-password round trip
func (s *UserHandlerIntegrationTestSuite) TestChangePasswordFlow() {
	token := s.mustLogin("alice@example.com", "AlicePass123")

	w := s.doJSON(http.MethodPut, "/api/users/"+s.alice.ID.String()+"/password", map[string]string{
		"current_password":      "AlicePass123",
		"password":              "NewPass45678",
		"password_confirmation": "NewPass45678",
	}, token)

	assert.Equal(s.T(), http.StatusOK, w.Code)
	response := decodeBody(s.T(), w)
	assert.Equal(s.T(), "Password updated successfully", response["message"])

	// The old password no longer works, the new one does.
	_, code := s.login("alice@example.com", "AlicePass123")
	assert.Equal(s.T(), http.StatusUnauthorized, code)

	_, code = s.login("alice@example.com", "NewPass45678")
	assert.Equal(s.T(), http.StatusOK, code)
}

// TestChangePasswordWrongCurrent tests the 401 on a wrong current password
func (s *UserHandlerIntegrationTestSuite) TestChangePasswordWrongCurrent() {
	token := s.mustLogin("alice@example.com", "AlicePass123")

	w := s.doJSON(http.MethodPut, "/api/users/"+s.alice.ID.String()+"/password", map[string]string{
		"current_password":      "WrongPass123",
		"password":              "NewPass45678",
		"password_confirmation": "NewPass45678",
	}, token)

	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
	response := decodeBody(s.T(), w)
	assert.Equal(s.T(), "The current password is incorrect", response["message"])
}

// TestChangePasswordConfirmationMismatch tests the eqfield validation
func (s *UserHandlerIntegrationTestSuite) TestChangePasswordConfirmationMismatch() {
	token := s.mustLogin("alice@example.com", "AlicePass123")

	w := s.doJSON(http.MethodPut, "/api/users/"+s.alice.ID.String()+"/password", map[string]string{
		"current_password":      "AlicePass123",
		"password":              "NewPass45678",
		"password_confirmation": "Different123",
	}, token)

	assert.Equal(s.T(), http.StatusUnprocessableEntity, w.Code)
	response := decodeBody(s.T(), w)
	fieldErrs := response["errors"].(map[string]interface{})
	assert.Contains(s.T(), fieldErrs, "password_confirmation")
}

// TestChangePasswordOtherUserForbidden tests that password changes are self-only
func (s *UserHandlerIntegrationTestSuite) TestChangePasswordOtherUserForbidden() {
	token := s.mustLogin("alice@example.com", "AlicePass123")

	w := s.doJSON(http.MethodPut, "/api/users/"+s.bob.ID.String()+"/password", map[string]string{
		"current_password":      "BobPass12345",
		"password":              "NewPass45678",
		"password_confirmation": "NewPass45678",
	}, token)

	assert.Equal(s.T(), http.StatusForbidden, w.Code)
}

// TestDeleteSelfRevokesTokens tests account deletion and session teardown
func (s *UserHandlerIntegrationTestSuite) TestDeleteSelfRevokesTokens() {
	token := s.mustLogin("alice@example.com", "AlicePass123")

	w := s.doJSON(http.MethodDelete, "/api/users/"+s.alice.ID.String(), nil, token)

	assert.Equal(s.T(), http.StatusOK, w.Code)
	response := decodeBody(s.T(), w)
	assert.Equal(s.T(), "User deleted successfully", response["message"])

	// The deleted account's token is gone along with the account.
	me := s.doJSON(http.MethodGet, "/api/users", nil, token)
	assert.Equal(s.T(), http.StatusUnauthorized, me.Code)

	_, code := s.login("alice@example.com", "AlicePass123")
	assert.Equal(s.T(), http.StatusUnauthorized, code)
}

// TestDeleteOtherUserForbidden tests that deletion is self-only
func (s *UserHandlerIntegrationTestSuite) TestDeleteOtherUserForbidden() {
	token := s.mustLogin("alice@example.com", "AlicePass123")

	w := s.doJSON(http.MethodDelete, "/api/users/"+s.bob.ID.String(), nil, token)

	assert.Equal(s.T(), http.StatusForbidden, w.Code)
	response := decodeBody(s.T(), w)
	assert.Equal(s.T(), "You are not allowed to delete this user", response["message"])
}

// TestSuite runs all tests in the suite
func TestUserHandlerIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(UserHandlerIntegrationTestSuite))
}
