package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/taskhub/taskhub-api/internal/constants"
	"github.com/taskhub/taskhub-api/internal/database"
	"github.com/taskhub/taskhub-api/internal/models"
	"github.com/taskhub/taskhub-api/internal/repository"
	"github.com/taskhub/taskhub-api/internal/services"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// AuthHandlerTestSuite defines the test suite for AuthHandler
type AuthHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *AuthHandler
}

// SetupTest runs before each test
func (suite *AuthHandlerTestSuite) SetupTest() {
	var err error

	// Create in-memory SQLite database
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(&models.User{})
	suite.Require().NoError(err)

	database.SetDB(suite.db)

	authService := services.NewAuthService(repository.NewUserRepository(suite.db), "test-secret", time.Hour)
	suite.handler = NewAuthHandler(authService)

	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *AuthHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *AuthHandlerTestSuite) createTestUser(email, password string) *models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	suite.Require().NoError(err)

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	}
	suite.db.Create(user)
	return user
}

func (suite *AuthHandlerTestSuite) createJSONContext(method, target string, payload interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	body, err := json.Marshal(payload)
	suite.Require().NoError(err)

	req, err := http.NewRequest(method, target, bytes.NewReader(body))
	suite.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	return c, w
}

// TestSignup_Success tests user registration
func (suite *AuthHandlerTestSuite) TestSignup_Success() {
	c, w := suite.createJSONContext(http.MethodPost, "/api/auth/signup", gin.H{
		"email":    "newuser@example.com",
		"password": "supersecret",
	})
	suite.handler.Signup(c)

	suite.Equal(http.StatusCreated, w.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Equal("newuser@example.com", response["email"])

	// The password never appears in the response
	suite.NotContains(w.Body.String(), "supersecret")
}

// TestSignup_DuplicateEmail tests the conflict path
func (suite *AuthHandlerTestSuite) TestSignup_DuplicateEmail() {
	suite.createTestUser("taken@example.com", "password123")

	c, w := suite.createJSONContext(http.MethodPost, "/api/auth/signup", gin.H{
		"email":    "taken@example.com",
		"password": "password123",
	})
	suite.handler.Signup(c)

	suite.Equal(http.StatusConflict, w.Code)
}

// TestSignup_ShortPassword tests password length validation
func (suite *AuthHandlerTestSuite) TestSignup_ShortPassword() {
	c, w := suite.createJSONContext(http.MethodPost, "/api/auth/signup", gin.H{
		"email":    "user@example.com",
		"password": "short",
	})
	suite.handler.Signup(c)

	suite.Equal(http.StatusBadRequest, w.Code)
}

// TestSignup_InvalidBody tests malformed request handling
func (suite *AuthHandlerTestSuite) TestSignup_InvalidBody() {
	c, w := suite.createJSONContext(http.MethodPost, "/api/auth/signup", gin.H{
		"email": "not-an-email",
	})
	suite.handler.Signup(c)

	suite.Equal(http.StatusBadRequest, w.Code)
}

// TestLogin_Success tests authentication and token issuance
func (suite *AuthHandlerTestSuite) TestLogin_Success() {
	suite.createTestUser("login@example.com", "password123")

	c, w := suite.createJSONContext(http.MethodPost, "/api/auth/login", gin.H{
		"email":    "login@example.com",
		"password": "password123",
	})
	suite.handler.Login(c)

	suite.Equal(http.StatusOK, w.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.NotEmpty(response["token"])

	user, ok := response["user"].(map[string]interface{})
	suite.Require().True(ok)
	suite.Equal("login@example.com", user["email"])
}

// TestLogin_WrongPassword tests credential rejection
func (suite *AuthHandlerTestSuite) TestLogin_WrongPassword() {
	suite.createTestUser("login@example.com", "password123")

	c, w := suite.createJSONContext(http.MethodPost, "/api/auth/login", gin.H{
		"email":    "login@example.com",
		"password": "wrongpassword",
	})
	suite.handler.Login(c)

	suite.Equal(http.StatusUnauthorized, w.Code)
}

// TestLogin_UnknownEmail tests that unknown accounts get the same error
func (suite *AuthHandlerTestSuite) TestLogin_UnknownEmail() {
	c, w := suite.createJSONContext(http.MethodPost, "/api/auth/login", gin.H{
		"email":    "ghost@example.com",
		"password": "password123",
	})
	suite.handler.Login(c)

	suite.Equal(http.StatusUnauthorized, w.Code)
}

// TestGetCurrentUser_Success tests the /me endpoint
func (suite *AuthHandlerTestSuite) TestGetCurrentUser_Success() {
	user := suite.createTestUser("me@example.com", "password123")

	req, err := http.NewRequest(http.MethodGet, "/api/auth/me", nil)
	suite.Require().NoError(err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(constants.ContextKeyUserID, user.ID)
	c.Set(constants.ContextKeyUserRole, user.Role)

	suite.handler.GetCurrentUser(c)

	suite.Equal(http.StatusOK, w.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Equal("me@example.com", response["email"])
	suite.Equal("user", response["role"])
}

// TestGetCurrentUser_Unauthenticated tests the path without a session context
func (suite *AuthHandlerTestSuite) TestGetCurrentUser_Unauthenticated() {
	req, err := http.NewRequest(http.MethodGet, "/api/auth/me", nil)
	suite.Require().NoError(err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	suite.handler.GetCurrentUser(c)

	suite.Equal(http.StatusUnauthorized, w.Code)
}

// TestAuthHandlerTestSuite runs the test suite
func TestAuthHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerTestSuite))
}
