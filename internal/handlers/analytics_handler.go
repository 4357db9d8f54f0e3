package handlers

import (
	"net/http"
	"strconv"
	"time"

	"finance-tracker-api/internal/database"
	"finance-tracker-api/internal/models"

	"github.com/gin-gonic/gin"
)

// typedTotal is the scan target for per-period GROUP BY queries.
type typedTotal struct {
	Period string
	Type   string
	Total  float64
}

// flowSummary is the assembled income/expense/net triple for one period.
type flowSummary struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Net     float64 `json:"net"`
}

func summarize(rows []typedTotal) map[string]*flowSummary {
	byPeriod := make(map[string]*flowSummary)
	for _, r := range rows {
		s, ok := byPeriod[r.Period]
		if !ok {
			s = &flowSummary{}
			byPeriod[r.Period] = s
		}
		switch models.TransactionType(r.Type) {
		case models.TypeIncome:
			s.Income += r.Total
		case models.TypeExpense:
			s.Expense += r.Total
		}
		s.Net = s.Income - s.Expense
	}
	return byPeriod
}

// GetMonthlyAnalytics handles GET /api/analytics/monthly?year=YYYY
// Returns income/expense/net per month for the requested year.
func GetMonthlyAnalytics(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	year := c.DefaultQuery("year", strconv.Itoa(time.Now().Year()))
	if _, err := strconv.Atoi(year); err != nil || len(year) != 4 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid year"})
		return
	}

	var rows []typedTotal
	if err := database.GetDB().Model(&models.Transaction{}).
		Select("substr(date, 1, 7) as period, type, SUM(amount) as total").
		Where("user_id = ? AND substr(date, 1, 4) = ?", userID, year).
		Group("period, type").
		Scan(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute monthly analytics"})
		return
	}

	byPeriod := summarize(rows)
	months := make([]gin.H, 0, 12)
	for m := 1; m <= 12; m++ {
		period := year + "-" + twoDigit(m)
		s := byPeriod[period]
		if s == nil {
			s = &flowSummary{}
		}
		months = append(months, gin.H{
			"month":   period,
			"income":  s.Income,
			"expense": s.Expense,
			"net":     s.Net,
		})
	}

	c.JSON(http.StatusOK, gin.H{"year": year, "months": months})
}

func twoDigit(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// GetYearlyAnalytics handles GET /api/analytics/yearly
// Returns income/expense/net per year over the user's whole history.
func GetYearlyAnalytics(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	var rows []typedTotal
	if err := database.GetDB().Model(&models.Transaction{}).
		Select("substr(date, 1, 4) as period, type, SUM(amount) as total").
		Where("user_id = ?", userID).
		Group("period, type").
		Order("period asc").
		Scan(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute yearly analytics"})
		return
	}

	byPeriod := summarize(rows)
	years := make([]gin.H, 0, len(byPeriod))
	seen := make(map[string]bool)
	for _, r := range rows {
		if seen[r.Period] {
			continue
		}
		seen[r.Period] = true
		s := byPeriod[r.Period]
		years = append(years, gin.H{
			"year":    r.Period,
			"income":  s.Income,
			"expense": s.Expense,
			"net":     s.Net,
		})
	}

	c.JSON(http.StatusOK, gin.H{"years": years})
}

// GetCategoryAnalytics handles GET /api/analytics/categories?startDate=&endDate=
// Returns totals per category, optionally bounded to a date range.
func GetCategoryAnalytics(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	type categoryTotal struct {
		CategoryID string  `json:"categoryId"`
		Name       string  `json:"name"`
		Type       string  `json:"type"`
		Total      float64 `json:"total"`
		Count      int64   `json:"count"`
	}

	query := database.GetDB().Model(&models.Transaction{}).
		Select("categories.id as category_id, categories.name, categories.type, SUM(transactions.amount) as total, COUNT(*) as count").
		Joins("JOIN categories ON categories.id = transactions.category_id").
		Where("transactions.user_id = ?", userID)
	if startDate := c.Query("startDate"); startDate != "" {
		query = query.Where("transactions.date >= ?", startDate)
	}
	if endDate := c.Query("endDate"); endDate != "" {
		query = query.Where("transactions.date <= ?", endDate)
	}

	var rows []categoryTotal
	if err := query.Group("categories.id, categories.name, categories.type").
		Order("total desc").
		Scan(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute category analytics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": rows,
		"count":      len(rows),
	})
}

// GetTrendAnalytics handles GET /api/analytics/trends?months=N
// Returns the trailing N months (default 6, max 24) of net cash flow.
func GetTrendAnalytics(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	months, err := strconv.Atoi(c.DefaultQuery("months", "6"))
	if err != nil || months < 1 {
		months = 6
	}
	if months > 24 {
		months = 24
	}

	nowMonth := time.Now().UTC()
	first := time.Date(nowMonth.Year(), nowMonth.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)
	startPeriod := first.Format("2006-01")

	var rows []typedTotal
	if err := database.GetDB().Model(&models.Transaction{}).
		Select("substr(date, 1, 7) as period, type, SUM(amount) as total").
		Where("user_id = ? AND substr(date, 1, 7) >= ?", userID, startPeriod).
		Group("period, type").
		Scan(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute trends"})
		return
	}

	byPeriod := summarize(rows)
	trend := make([]gin.H, 0, months)
	for i := 0; i < months; i++ {
		period := first.AddDate(0, i, 0).Format("2006-01")
		s := byPeriod[period]
		if s == nil {
			s = &flowSummary{}
		}
		trend = append(trend, gin.H{
			"month":   period,
			"income":  s.Income,
			"expense": s.Expense,
			"net":     s.Net,
		})
	}

	c.JSON(http.StatusOK, gin.H{"months": months, "trend": trend})
}

// GetDashboard handles GET /api/analytics/dashboard
// Returns the current month summary, the top expense categories for the
// month and the most recent transactions.
func GetDashboard(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	currentMonth := time.Now().UTC().Format("2006-01")
	db := database.GetDB()

	var rows []typedTotal
	if err := db.Model(&models.Transaction{}).
		Select("substr(date, 1, 7) as period, type, SUM(amount) as total").
		Where("user_id = ? AND substr(date, 1, 7) = ?", userID, currentMonth).
		Group("period, type").
		Scan(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute dashboard summary"})
		return
	}
	summary := summarize(rows)[currentMonth]
	if summary == nil {
		summary = &flowSummary{}
	}

	type categoryTotal struct {
		Name  string  `json:"name"`
		Total float64 `json:"total"`
	}
	var topCategories []categoryTotal
	if err := db.Model(&models.Transaction{}).
		Select("categories.name, SUM(transactions.amount) as total").
		Joins("JOIN categories ON categories.id = transactions.category_id").
		Where("transactions.user_id = ? AND transactions.type = ? AND substr(transactions.date, 1, 7) = ?",
			userID, models.TypeExpense, currentMonth).
		Group("categories.name").
		Order("total desc").
		Limit(5).
		Scan(&topCategories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute top categories"})
		return
	}

	var recent []models.Transaction
	if err := db.Where("user_id = ?", userID).
		Order("date desc, created_at desc").
		Limit(5).
		Find(&recent).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recent transactions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"month":              currentMonth,
		"summary":            gin.H{"income": summary.Income, "expense": summary.Expense, "net": summary.Net},
		"topCategories":      topCategories,
		"recentTransactions": recent,
	})
}
