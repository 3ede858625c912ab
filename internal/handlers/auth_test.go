package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"taskforge/internal/constants"
	"taskforge/internal/database"
	"taskforge/internal/jwt"
	"taskforge/internal/models"
	"taskforge/internal/repository"
	"taskforge/internal/services"
)

// AuthHandlerTestSuite defines the test suite for AuthHandler
type AuthHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	tokens  *jwt.JWT
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

	suite.tokens = jwt.New("test-secret", time.Hour)
	userService := services.NewUserService(repository.NewUserRepository(suite.db))
	suite.handler = NewAuthHandler(userService, suite.tokens)

	// Set Gin to test mode
	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *AuthHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *AuthHandlerTestSuite) createContext(method, url string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c, w
}

func (suite *AuthHandlerTestSuite) register(username string) {
	body, _ := json.Marshal(map[string]interface{}{
		"username": username,
		"email":    username + "@example.com",
		"password": "correct horse",
	})
	c, w := suite.createContext("POST", "/api/auth/register", body)
	suite.handler.Register(c)
	suite.Require().Equal(http.StatusCreated, w.Code)
}

// TestRegister_Success tests successful registration
func (suite *AuthHandlerTestSuite) TestRegister_Success() {
	body, _ := json.Marshal(map[string]interface{}{
		"username":   "alice",
		"email":      "alice@example.com",
		"password":   "correct horse",
		"first_name": "Alice",
	})

	c, w := suite.createContext("POST", "/api/auth/register", body)
	suite.handler.Register(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "alice", response["username"])
	assert.NotEmpty(suite.T(), response["id"])
	assert.NotContains(suite.T(), response, "password_hash")
}

// TestRegister_InvalidEmail tests registration with a malformed email
func (suite *AuthHandlerTestSuite) TestRegister_InvalidEmail() {
	body, _ := json.Marshal(map[string]interface{}{
		"username": "alice",
		"email":    "not-an-email",
		"password": "correct horse",
	})

	c, w := suite.createContext("POST", "/api/auth/register", body)
	suite.handler.Register(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestRegister_ShortPassword tests registration below the password minimum
func (suite *AuthHandlerTestSuite) TestRegister_ShortPassword() {
	body, _ := json.Marshal(map[string]interface{}{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "short",
	})

	c, w := suite.createContext("POST", "/api/auth/register", body)
	suite.handler.Register(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestRegister_DuplicateUsername tests the conflict response
func (suite *AuthHandlerTestSuite) TestRegister_DuplicateUsername() {
	suite.register("alice")

	body, _ := json.Marshal(map[string]interface{}{
		"username": "alice",
		"email":    "other@example.com",
		"password": "correct horse",
	})

	c, w := suite.createContext("POST", "/api/auth/register", body)
	suite.handler.Register(c)

	assert.Equal(suite.T(), http.StatusConflict, w.Code)
}

// TestLogin_Success tests logging in with valid credentials
func (suite *AuthHandlerTestSuite) TestLogin_Success() {
	suite.register("alice")

	body, _ := json.Marshal(map[string]interface{}{
		"username": "alice",
		"password": "correct horse",
	})

	c, w := suite.createContext("POST", "/api/auth/login", body)
	suite.handler.Login(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), response["token"])
	assert.Contains(suite.T(), response, "user")

	// The token must resolve back to the registered user.
	userID, err := suite.tokens.GetUserID(response["token"].(string))
	assert.NoError(suite.T(), err)
	user := response["user"].(map[string]interface{})
	assert.Equal(suite.T(), user["id"], userID)
}

// TestLogin_WrongPassword tests logging in with a bad password
func (suite *AuthHandlerTestSuite) TestLogin_WrongPassword() {
	suite.register("alice")

	body, _ := json.Marshal(map[string]interface{}{
		"username": "alice",
		"password": "wrong password",
	})

	c, w := suite.createContext("POST", "/api/auth/login", body)
	suite.handler.Login(c)

	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

// TestLogin_UnknownUser tests logging in with an unknown username
func (suite *AuthHandlerTestSuite) TestLogin_UnknownUser() {
	body, _ := json.Marshal(map[string]interface{}{
		"username": "nobody",
		"password": "correct horse",
	})

	c, w := suite.createContext("POST", "/api/auth/login", body)
	suite.handler.Login(c)

	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

// TestGetCurrentUser_Success tests the authenticated profile endpoint
func (suite *AuthHandlerTestSuite) TestGetCurrentUser_Success() {
	user := &models.User{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hashedpassword",
		IsActive:     true,
	}
	suite.Require().NoError(suite.db.Create(user).Error)

	c, w := suite.createContext("GET", "/api/auth/me", nil)
	c.Set(constants.ContextKeyUserID, user.ID)

	suite.handler.GetCurrentUser(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), user.ID, response["id"])
}

// TestGetCurrentUser_Unauthorized tests the endpoint without a user in context
func (suite *AuthHandlerTestSuite) TestGetCurrentUser_Unauthorized() {
	c, w := suite.createContext("GET", "/api/auth/me", nil)

	suite.handler.GetCurrentUser(c)

	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

// TestSuite runs the test suite
func TestAuthHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerTestSuite))
}
