package database

import (
	"os"

	"finance-tracker-api/internal/logger"
	"finance-tracker-api/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// defaultCategories are seeded once so a fresh install has something to
// attach transactions to.
var defaultCategories = []models.Category{
	{Name: "Salary", Type: models.CategoryIncome, Color: "#4caf50"},
	{Name: "Other Income", Type: models.CategoryIncome, Color: "#8bc34a"},
	{Name: "Groceries", Type: models.CategoryExpense, Color: "#ff9800"},
	{Name: "Rent", Type: models.CategoryExpense, Color: "#f44336"},
	{Name: "Transport", Type: models.CategoryExpense, Color: "#2196f3"},
	{Name: "Entertainment", Type: models.CategoryExpense, Color: "#9c27b0"},
	{Name: "Utilities", Type: models.CategoryExpense, Color: "#607d8b"},
}

// InitDB initializes the database connection and runs migrations
func InitDB() {
	var err error

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "finance-tracker.db"
	}

	// Using glebarez/sqlite which is a pure Go implementation (no CGO required)
	DB, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})

	if err != nil {
		logger.GetLogger().Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate the schema (it will create tables if they don't exist)
	err = DB.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Transaction{},
	)

	if err != nil {
		logger.GetLogger().Fatalf("Failed to migrate database: %v", err)
	}

	SeedDefaults(DB)

	logger.GetLogger().Info("Database connected and migrated")
}

// SeedDefaults inserts the default categories and, when ADMIN_USERNAME and
// ADMIN_PASSWORD are set, an admin account. Existing rows are left alone.
func SeedDefaults(db *gorm.DB) {
	for _, c := range defaultCategories {
		var existing models.Category
		if err := db.Where("name = ?", c.Name).First(&existing).Error; err == nil {
			continue
		}
		c.ID = uuid.New().String()
		if err := db.Create(&c).Error; err != nil {
			logger.GetLogger().Warnf("Failed to seed category %s: %v", c.Name, err)
		}
	}

	adminUsername := os.Getenv("ADMIN_USERNAME")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminUsername == "" || adminPassword == "" {
		return
	}
	var existing models.User
	if err := db.Where("username = ?", adminUsername).First(&existing).Error; err == nil {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.GetLogger().Warnf("Failed to hash admin password: %v", err)
		return
	}
	admin := models.User{
		ID:       uuid.New().String(),
		Username: adminUsername,
		Email:    adminUsername + "@local",
		Password: string(hash),
		Role:     models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		logger.GetLogger().Warnf("Failed to seed admin user: %v", err)
	}
}

// GetDB returns the database connection
func GetDB() *gorm.DB {
	return DB
}
