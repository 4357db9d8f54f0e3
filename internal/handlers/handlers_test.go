package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"finance-tracker-api/internal/cache"
	"finance-tracker-api/internal/database"
	"finance-tracker-api/internal/models"
	"finance-tracker-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// setupTest wires an in-memory DB and an isolated cache store for one test.
// Router helpers build their own Invalidator over the returned store.
func setupTest(t *testing.T) (*gorm.DB, *cache.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	database.DB = db

	return db, cache.NewMemoryStore()
}

func seedUser(t *testing.T, db *gorm.DB, username string, role models.Role) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse-42"), bcrypt.MinCost)
	require.NoError(t, err)
	u := models.User{
		ID:       uuid.New().String(),
		Username: username,
		Email:    username + "@example.com",
		Password: string(hash),
		Role:     role,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func seedCategory(t *testing.T, db *gorm.DB, name string, ctype models.CategoryType) models.Category {
	t.Helper()
	c := models.Category{
		ID:   uuid.New().String(),
		Name: name,
		Type: ctype,
	}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func seedTransaction(t *testing.T, db *gorm.DB, userID, categoryID string, ttype models.TransactionType, amount float64, date string) models.Transaction {
	t.Helper()
	tx := models.Transaction{
		ID:         uuid.New().String(),
		UserID:     userID,
		CategoryID: categoryID,
		Type:       ttype,
		Amount:     amount,
		Date:       date,
	}
	require.NoError(t, db.Create(&tx).Error)
	return tx
}

// asUser injects the identity the JWT middleware would have set.
func asUser(u models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", u.ID)
		c.Set("username", u.Username)
		c.Set("role", string(u.Role))
	}
}

func doJSON(r *gin.Engine, method, path string, payload any) *httptest.ResponseRecorder {
	var body *bytes.Reader
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
