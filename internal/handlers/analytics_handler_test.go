package handlers

import (
	"net/http"
	"testing"
	"time"

	"finance-tracker-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newAnalyticsRouter(u models.User) *gin.Engine {
	r := gin.New()
	r.Use(asUser(u))
	r.GET("/api/analytics/monthly", GetMonthlyAnalytics)
	r.GET("/api/analytics/yearly", GetYearlyAnalytics)
	r.GET("/api/analytics/categories", GetCategoryAnalytics)
	r.GET("/api/analytics/trends", GetTrendAnalytics)
	r.GET("/api/analytics/dashboard", GetDashboard)
	return r
}

func TestMonthlyAnalytics(t *testing.T) {
	db, _ := setupTest(t)
	alice := seedUser(t, db, "alice", models.RoleUser)
	salary := seedCategory(t, db, "Salary", models.CategoryIncome)
	groceries := seedCategory(t, db, "Groceries", models.CategoryExpense)
	seedTransaction(t, db, alice.ID, salary.ID, models.TypeIncome, 3000, "2025-03-01")
	seedTransaction(t, db, alice.ID, groceries.ID, models.TypeExpense, 120.5, "2025-03-10")
	seedTransaction(t, db, alice.ID, groceries.ID, models.TypeExpense, 80, "2025-04-02")
	// Another user's data must not leak into the aggregates.
	bob := seedUser(t, db, "bob", models.RoleUser)
	seedTransaction(t, db, bob.ID, groceries.ID, models.TypeExpense, 999, "2025-03-15")

	r := newAnalyticsRouter(alice)
	w := doJSON(r, http.MethodGet, "/api/analytics/monthly?year=2025", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	months := body["months"].([]any)
	require.Len(t, months, 12)

	march := months[2].(map[string]any)
	require.Equal(t, "2025-03", march["month"])
	require.EqualValues(t, 3000, march["income"])
	require.EqualValues(t, 120.5, march["expense"])
	require.EqualValues(t, 2879.5, march["net"])

	january := months[0].(map[string]any)
	require.EqualValues(t, 0, january["income"])
	require.EqualValues(t, 0, january["expense"])
}

func TestMonthlyAnalytics_InvalidYear(t *testing.T) {
	db, _ := setupTest(t)
	alice := seedUser(t, db, "alice", models.RoleUser)
	r := newAnalyticsRouter(alice)

	w := doJSON(r, http.MethodGet, "/api/analytics/monthly?year=twenty", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestYearlyAnalytics(t *testing.T) {
	db, _ := setupTest(t)
	alice := seedUser(t, db, "alice", models.RoleUser)
	salary := seedCategory(t, db, "Salary", models.CategoryIncome)
	seedTransaction(t, db, alice.ID, salary.ID, models.TypeIncome, 1000, "2024-01-01")
	seedTransaction(t, db, alice.ID, salary.ID, models.TypeIncome, 2000, "2025-01-01")

	r := newAnalyticsRouter(alice)
	w := doJSON(r, http.MethodGet, "/api/analytics/yearly", nil)
	require.Equal(t, http.StatusOK, w.Code)

	years := decodeBody(t, w)["years"].([]any)
	require.Len(t, years, 2)
	first := years[0].(map[string]any)
	require.Equal(t, "2024", first["year"])
	require.EqualValues(t, 1000, first["income"])
}

func TestCategoryAnalytics_DateRange(t *testing.T) {
	db, _ := setupTest(t)
	alice := seedUser(t, db, "alice", models.RoleUser)
	groceries := seedCategory(t, db, "Groceries", models.CategoryExpense)
	rent := seedCategory(t, db, "Rent", models.CategoryExpense)
	seedTransaction(t, db, alice.ID, groceries.ID, models.TypeExpense, 100, "2025-05-01")
	seedTransaction(t, db, alice.ID, groceries.ID, models.TypeExpense, 50, "2025-06-01")
	seedTransaction(t, db, alice.ID, rent.ID, models.TypeExpense, 900, "2025-06-01")

	r := newAnalyticsRouter(alice)
	w := doJSON(r, http.MethodGet, "/api/analytics/categories?startDate=2025-06-01", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	require.EqualValues(t, 2, body["count"])
	top := body["categories"].([]any)[0].(map[string]any)
	require.Equal(t, "Rent", top["name"])
	require.EqualValues(t, 900, top["total"])
}

func TestDashboard_CurrentMonth(t *testing.T) {
	db, _ := setupTest(t)
	alice := seedUser(t, db, "alice", models.RoleUser)
	salary := seedCategory(t, db, "Salary", models.CategoryIncome)
	groceries := seedCategory(t, db, "Groceries", models.CategoryExpense)

	thisMonth := time.Now().UTC().Format("2006-01")
	seedTransaction(t, db, alice.ID, salary.ID, models.TypeIncome, 500, thisMonth+"-01")
	seedTransaction(t, db, alice.ID, groceries.ID, models.TypeExpense, 200, thisMonth+"-02")
	// Old data stays out of the current-month summary.
	seedTransaction(t, db, alice.ID, groceries.ID, models.TypeExpense, 999, "2000-01-01")

	r := newAnalyticsRouter(alice)
	w := doJSON(r, http.MethodGet, "/api/analytics/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	summary := body["summary"].(map[string]any)
	require.EqualValues(t, 500, summary["income"])
	require.EqualValues(t, 200, summary["expense"])
	require.EqualValues(t, 300, summary["net"])

	top := body["topCategories"].([]any)
	require.Len(t, top, 1)
	require.Equal(t, "Groceries", top[0].(map[string]any)["name"])

	recent := body["recentTransactions"].([]any)
	require.Len(t, recent, 3)
}

func TestTrendAnalytics_WindowLength(t *testing.T) {
	db, _ := setupTest(t)
	alice := seedUser(t, db, "alice", models.RoleUser)
	groceries := seedCategory(t, db, "Groceries", models.CategoryExpense)
	thisMonth := time.Now().UTC().Format("2006-01")
	seedTransaction(t, db, alice.ID, groceries.ID, models.TypeExpense, 75, thisMonth+"-01")

	r := newAnalyticsRouter(alice)
	w := doJSON(r, http.MethodGet, "/api/analytics/trends?months=3", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	trend := body["trend"].([]any)
	require.Len(t, trend, 3)
	last := trend[2].(map[string]any)
	require.Equal(t, thisMonth, last["month"])
	require.EqualValues(t, 75, last["expense"])
}
