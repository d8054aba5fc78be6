package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	identityhttp "github.com/spicehouse/menu-service/internal/identity/delivery/http"
	"github.com/spicehouse/menu-service/internal/identity/repository"
	"github.com/spicehouse/menu-service/internal/identity/usecase/command"
	"github.com/spicehouse/menu-service/internal/middleware"
	"github.com/spicehouse/menu-service/pkg/auth"
	"github.com/spicehouse/menu-service/pkg/logger"
)

const testSecret = "test-secret"

func newTestRouter(t *testing.T) (*mux.Router, *repository.GormUserRepository, *auth.Manager) {
	t.Helper()
	logger.Init("identity-test", "error", false)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	repo := repository.NewGormUserRepository(db)
	require.NoError(t, repo.AutoMigrate())

	tokens := auth.NewManager(testSecret, time.Hour)

	handler := identityhttp.NewIdentityHandler(
		command.NewRegisterUserHandler(repo),
		command.NewLoginUserHandler(repo, tokens),
		command.NewChangePasswordHandler(repo),
		repo,
		tokens.TTL(),
		prometheus.NewRegistry(),
	)

	router := mux.NewRouter()
	handler.RegisterRoutes(router, middleware.Auth(tokens))

	return router, repo, tokens
}

func postJSON(t *testing.T, router *mux.Router, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func registerUser(t *testing.T, router *mux.Router, username, password string) {
	t.Helper()
	rec := postJSON(t, router, "/register", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestRegister(t *testing.T) {
	router, repo, _ := newTestRouter(t)

	rec := postJSON(t, router, "/register", "", map[string]string{
		"username": "alice",
		"password": "s3cret",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "User registered successfully!", decodeBody(t, rec)["message"])

	count, err := repo.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	user, err := repo.FindByUsername("alice")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", user.Password)
	assert.True(t, auth.CheckPassword(user.Password, "s3cret"))
}

func TestRegisterDuplicateUsername(t *testing.T) {
	router, repo, _ := newTestRouter(t)
	registerUser(t, router, "alice", "s3cret")

	rec := postJSON(t, router, "/register", "", map[string]string{
		"username": "alice",
		"password": "other",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Username already exists.", body["error"])
	assert.Equal(t, "conflict", body["code"])

	count, err := repo.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestLogin(t *testing.T) {
	router, _, tokens := newTestRouter(t)
	registerUser(t, router, "alice", "s3cret")

	rec := postJSON(t, router, "/login", "", map[string]string{
		"username": "alice",
		"password": "s3cret",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Login successful. Welcome!", body["message"])
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	claims, err := tokens.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.CookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, token, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, int(time.Hour.Seconds()), cookie.MaxAge)
}

func TestLoginInvalidCredentials(t *testing.T) {
	router, _, _ := newTestRouter(t)
	registerUser(t, router, "alice", "s3cret")

	// wrong password and unknown user get the same response
	for _, creds := range []map[string]string{
		{"username": "alice", "password": "wrong"},
		{"username": "nobody", "password": "s3cret"},
	} {
		rec := postJSON(t, router, "/login", "", creds)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Invalid username or password.", body["error"])
		assert.Equal(t, "unauthenticated", body["code"])
	}
}

func TestIssueTokenFormEncoded(t *testing.T) {
	router, _, tokens := newTestRouter(t)
	registerUser(t, router, "alice", "s3cret")

	form := url.Values{"username": {"alice"}, "password": {"s3cret"}}
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "bearer", body["token_type"])

	accessToken, _ := body["access_token"].(string)
	require.NotEmpty(t, accessToken)
	claims, err := tokens.Validate(accessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
}

func TestChangePassword(t *testing.T) {
	router, _, tokens := newTestRouter(t)
	registerUser(t, router, "alice", "s3cret")

	token, err := tokens.Generate("alice")
	require.NoError(t, err)

	rec := postJSON(t, router, "/change-password", token, map[string]string{
		"current_password": "s3cret",
		"new_password":     "newpass",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Password changed successfully.", decodeBody(t, rec)["message"])

	// old password no longer works, new one does
	rec = postJSON(t, router, "/login", "", map[string]string{
		"username": "alice", "password": "s3cret",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = postJSON(t, router, "/login", "", map[string]string{
		"username": "alice", "password": "newpass",
	})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	router, _, tokens := newTestRouter(t)
	registerUser(t, router, "alice", "s3cret")

	token, err := tokens.Generate("alice")
	require.NoError(t, err)

	rec := postJSON(t, router, "/change-password", token, map[string]string{
		"current_password": "wrong",
		"new_password":     "newpass",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Incorrect current password.", decodeBody(t, rec)["error"])
}

func TestChangePasswordRequiresToken(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := postJSON(t, router, "/change-password", "", map[string]string{
		"current_password": "a", "new_password": "b",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token is missing", decodeBody(t, rec)["error"])
}

func TestChangePasswordExpiredToken(t *testing.T) {
	router, _, _ := newTestRouter(t)
	registerUser(t, router, "alice", "s3cret")

	// same secret, negative lifetime mints an already expired credential
	expired, err := auth.NewManager(testSecret, -2*time.Hour).Generate("alice")
	require.NoError(t, err)

	rec := postJSON(t, router, "/change-password", expired, map[string]string{
		"current_password": "s3cret",
		"new_password":     "newpass",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Expired token.", body["error"])
	assert.Equal(t, "unauthenticated", body["code"])
}

func TestChangePasswordCookieCredential(t *testing.T) {
	router, _, tokens := newTestRouter(t)
	registerUser(t, router, "alice", "s3cret")

	token, err := tokens.Generate("alice")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(map[string]string{
		"current_password": "s3cret",
		"new_password":     "newpass",
	}))
	req := httptest.NewRequest(http.MethodPost, "/change-password", &buf)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: middleware.CookieName, Value: token})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}
