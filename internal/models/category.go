package models

import (
	"gorm.io/gorm"
)

// CategoryType distinguishes income categories from expense categories
type CategoryType string

const (
	CategoryIncome  CategoryType = "income"
	CategoryExpense CategoryType = "expense"
)

// Category represents a transaction category (global, admin-managed)
type Category struct {
	ID    string       `json:"id" gorm:"primaryKey"`
	Name  string       `json:"name" gorm:"unique;not null"`
	Type  CategoryType `json:"type" gorm:"not null"`
	Color string       `json:"color"`
	gorm.Model
}

// TableName specifies the table name for Category Model
func (Category) TableName() string {
	return "categories"
}
