package models

import (
	"gorm.io/gorm"
)

// TransactionType represents the direction of a transaction
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// Transaction represents a single income or expense entry
type Transaction struct {
	ID          string          `json:"id" gorm:"primaryKey"`
	UserID      string          `json:"userId" gorm:"column:user_id;index;not null"`
	CategoryID  string          `json:"categoryId" gorm:"column:category_id;index;not null"`
	Type        TransactionType `json:"type" gorm:"not null"`
	Amount      float64         `json:"amount" gorm:"not null"`
	Description string          `json:"description"`
	Date        string          `json:"date" gorm:"not null;index"` // ISO date, e.g. 2025-01-31
	gorm.Model
}

// TableName specifies the table name for Transaction Model
func (Transaction) TableName() string {
	return "transactions"
}
