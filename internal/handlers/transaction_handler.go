package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"finance-tracker-api/internal/cache"
	"finance-tracker-api/internal/database"
	"finance-tracker-api/internal/models"
	"finance-tracker-api/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateTransactionRequest represents the request payload for creating a transaction
type CreateTransactionRequest struct {
	CategoryID  string                 `json:"categoryId" binding:"required"`
	Type        models.TransactionType `json:"type" binding:"required"`
	Amount      float64                `json:"amount" binding:"required,gt=0"`
	Description string                 `json:"description"`
	Date        string                 `json:"date" binding:"required"`
}

// AdminCreateTransactionRequest adds the target user for on-behalf creation
type AdminCreateTransactionRequest struct {
	UserID string `json:"userId" binding:"required"`
	CreateTransactionRequest
}

// UpdateTransactionRequest represents the request payload for updating a transaction
type UpdateTransactionRequest struct {
	CategoryID  *string                 `json:"categoryId"`
	Type        *models.TransactionType `json:"type"`
	Amount      *float64                `json:"amount"`
	Description *string                 `json:"description"`
	Date        *string                 `json:"date"`
}

func validDate(dateStr string) bool {
	_, err := time.Parse("2006-01-02", dateStr)
	return err == nil
}

// validateCategory checks the category exists and its type matches the
// transaction type.
func validateCategory(c *gin.Context, categoryID string, txType models.TransactionType) bool {
	var category models.Category
	if err := database.GetDB().Where("id = ?", categoryID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid categoryId: category not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate categoryId"})
		}
		return false
	}
	if string(category.Type) != string(txType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category type does not match transaction type"})
		return false
	}
	return true
}

func broadcastTransactionEvent(eventType, transactionID, ownerID string) {
	evt := map[string]any{
		"type":          eventType,
		"transactionId": transactionID,
		"userId":        ownerID,
		"version":       1,
	}
	if bytes, err := json.Marshal(evt); err == nil {
		realtime.GetHub().Publish(ownerID, bytes)
	}
}

/*
*
GetTransactions handles GET /api/transactions
Returns the authenticated user's transactions. Admins may pass ?userId= to
list another user's transactions.
Query params: page (default 1), limit (default 20, max 100), sort (asc|desc
on date, default desc), type, categoryId, startDate, endDate.
*/
func GetTransactions(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User ID not found in token",
		})
		return
	}

	ownerID := userID
	if filterUserID := c.Query("userId"); filterUserID != "" {
		if models.Role(c.GetString("role")) != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only admins may list other users' transactions"})
			return
		}
		ownerID = filterUserID
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := (page - 1) * limit

	order := "date desc"
	sortParam := strings.ToLower(c.DefaultQuery("sort", "desc"))
	if sortParam == "asc" {
		order = "date asc"
	}

	db := database.GetDB()
	query := db.Model(&models.Transaction{}).Where("user_id = ?", ownerID)
	if txType := c.Query("type"); txType != "" {
		query = query.Where("type = ?", txType)
	}
	if categoryID := c.Query("categoryId"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	if startDate := c.Query("startDate"); startDate != "" {
		query = query.Where("date >= ?", startDate)
	}
	if endDate := c.Query("endDate"); endDate != "" {
		query = query.Where("date <= ?", endDate)
	}

	// Total count (without pagination)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to count transactions",
		})
		return
	}

	var transactions []models.Transaction
	result := query.Session(&gorm.Session{}).Order(order).Limit(limit).Offset(offset).Find(&transactions)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch transactions",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions": transactions,
		"count":        len(transactions),
		"total":        total,
		"page":         page,
		"limit":        limit,
		"sort":         sortParam,
	})
}

// GetTransactionByID handles GET /api/transactions/:id
// Returns a single transaction owned by the authenticated user (or any
// transaction for admins).
func GetTransactionByID(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	transactionID := c.Param("id")
	if transactionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Transaction ID is required"})
		return
	}

	query := database.GetDB().Where("id = ?", transactionID)
	if models.Role(c.GetString("role")) != models.RoleAdmin {
		query = query.Where("user_id = ?", userID)
	}

	var transaction models.Transaction
	if err := query.First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transaction"})
		}
		return
	}

	c.JSON(http.StatusOK, transaction)
}

// createTransaction persists a transaction for ownerID and, on success,
// clears the owner's cached reads and broadcasts the change.
func createTransaction(c *gin.Context, inv *cache.Invalidator, req CreateTransactionRequest, ownerID string) {
	if req.Type != models.TypeIncome && req.Type != models.TypeExpense {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid transaction type"})
		return
	}
	if !validDate(req.Date) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
		return
	}
	if !validateCategory(c, req.CategoryID, req.Type) {
		return
	}

	transaction := models.Transaction{
		ID:          uuid.New().String(),
		UserID:      ownerID,
		CategoryID:  req.CategoryID,
		Type:        req.Type,
		Amount:      req.Amount,
		Description: req.Description,
		Date:        req.Date,
	}

	if err := database.GetDB().Create(&transaction).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create transaction",
		})
		return
	}

	// Evict the owner's cached lists and analytics only after the row is in.
	inv.ClearForPrincipal(c.Request.Context(), ownerID)
	broadcastTransactionEvent("transaction_created", transaction.ID, ownerID)

	c.JSON(http.StatusCreated, transaction)
}

/*
*
CreateTransaction handles POST /api/transactions
Creates a new transaction for the authenticated user
*/
func CreateTransaction(inv *cache.Invalidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "User ID not found in token",
			})
			return
		}

		var req CreateTransactionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
			})
			return
		}

		createTransaction(c, inv, req, userID)
	}
}

// AdminCreateTransaction handles POST /api/admin/transactions
// Creates a transaction on behalf of another user. Backs the admin form.
func AdminCreateTransaction(inv *cache.Invalidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AdminCreateTransactionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var target models.User
		if err := database.GetDB().Where("id = ?", req.UserID).First(&target).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid userId: user not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate userId"})
			}
			return
		}

		createTransaction(c, inv, req.CreateTransactionRequest, target.ID)
	}
}

// updateTransaction applies a partial update to an existing row and, on
// success, clears the owner's cached reads. asAdmin lifts the ownership check.
func updateTransaction(c *gin.Context, inv *cache.Invalidator, requesterID string, asAdmin bool) {
	transactionID := c.Param("id")
	if transactionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Transaction ID is required"})
		return
	}

	query := database.GetDB().Where("id = ?", transactionID)
	if !asAdmin {
		query = query.Where("user_id = ?", requesterID)
	}

	var existing models.Transaction
	if err := query.First(&existing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transaction"})
		}
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Type != nil {
		if *req.Type != models.TypeIncome && *req.Type != models.TypeExpense {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid transaction type"})
			return
		}
		existing.Type = *req.Type
	}
	if req.CategoryID != nil {
		existing.CategoryID = *req.CategoryID
	}
	// Re-validate the category whenever category or type changed
	if req.CategoryID != nil || req.Type != nil {
		if !validateCategory(c, existing.CategoryID, existing.Type) {
			return
		}
	}
	if req.Amount != nil {
		if *req.Amount <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Amount must be positive"})
			return
		}
		existing.Amount = *req.Amount
	}
	if req.Description != nil {
		existing.Description = *req.Description
	}
	if req.Date != nil {
		if !validDate(*req.Date) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
			return
		}
		existing.Date = *req.Date
	}

	if err := database.GetDB().Save(&existing).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update transaction",
		})
		return
	}

	inv.ClearForPrincipal(c.Request.Context(), existing.UserID)
	broadcastTransactionEvent("transaction_updated", existing.ID, existing.UserID)

	c.JSON(http.StatusOK, existing)
}

// UpdateTransaction handles PUT /api/transactions/:id
// Updates a transaction owned by the authenticated user
func UpdateTransaction(inv *cache.Invalidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
			return
		}
		updateTransaction(c, inv, userID, false)
	}
}

// AdminUpdateTransaction handles PUT /api/admin/transactions/:id
// Updates any user's transaction. Backs the admin form.
func AdminUpdateTransaction(inv *cache.Invalidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
			return
		}
		updateTransaction(c, inv, userID, true)
	}
}

// DeleteTransaction handles DELETE /api/transactions/:id
// Deletes a transaction owned by the authenticated user (admins may delete
// any transaction).
func DeleteTransaction(inv *cache.Invalidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "User ID not found in token",
			})
			return
		}

		transactionID := c.Param("id")
		if transactionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Transaction ID is required",
			})
			return
		}

		query := database.GetDB().Where("id = ?", transactionID)
		if models.Role(c.GetString("role")) != models.RoleAdmin {
			query = query.Where("user_id = ?", userID)
		}

		var transaction models.Transaction
		if err := query.First(&transaction).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{
					"error": "Transaction not found",
				})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Failed to fetch transaction",
				})
			}
			return
		}

		if err := database.GetDB().Delete(&transaction).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to delete transaction",
			})
			return
		}

		inv.ClearForPrincipal(c.Request.Context(), transaction.UserID)
		broadcastTransactionEvent("transaction_deleted", transaction.ID, transaction.UserID)

		c.JSON(http.StatusOK, gin.H{
			"message": "Transaction deleted successfully",
			"id":      transactionID,
		})
	}
}
