package handlers

import (
	"net/http"
	"testing"

	"finance-tracker-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newAuthRouter() *gin.Engine {
	r := gin.New()
	r.POST("/api/register", Register)
	r.POST("/api/login", Login)
	return r
}

func TestRegisterAndLogin(t *testing.T) {
	setupTest(t)
	r := newAuthRouter()

	w := doJSON(r, http.MethodPost, "/api/register", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "correct-horse-42",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	require.NotEmpty(t, body["token"])
	require.Equal(t, string(models.RoleUser), body["role"])

	w = doJSON(r, http.MethodPost, "/api/login", map[string]string{
		"username": "alice",
		"password": "correct-horse-42",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, decodeBody(t, w)["token"])
}

func TestRegister_DuplicateUsername(t *testing.T) {
	db, _ := setupTest(t)
	seedUser(t, db, "alice", models.RoleUser)
	r := newAuthRouter()

	w := doJSON(r, http.MethodPost, "/api/register", map[string]string{
		"username": "alice",
		"email":    "other@example.com",
		"password": "correct-horse-42",
	})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	db, _ := setupTest(t)
	seedUser(t, db, "alice", models.RoleUser)
	r := newAuthRouter()

	w := doJSON(r, http.MethodPost, "/api/login", map[string]string{
		"username": "alice",
		"password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_UnknownUser(t *testing.T) {
	setupTest(t)
	r := newAuthRouter()

	w := doJSON(r, http.MethodPost, "/api/login", map[string]string{
		"username": "ghost",
		"password": "whatever-long",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
