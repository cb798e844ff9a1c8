package transaction

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Category classifies a transaction for analysis purposes.
type Category string

const (
	CategoryGroceries         Category = "groceries"
	CategoryFuel              Category = "fuel"
	CategoryRent              Category = "rent"
	CategoryUtilities         Category = "utilities" // electricity, internet, water, etc.
	CategoryShopping          Category = "shopping"
	CategoryClothes           Category = "clothes"
	CategoryCarService        Category = "car_service"
	CategoryCarPurchase       Category = "car_purchase"
	CategoryEntertainment     Category = "entertainment"
	CategoryDining            Category = "dining"
	CategoryHealthcare        Category = "healthcare"
	CategoryInsurance         Category = "insurance"
	CategoryLoanPayment       Category = "loan_payment"
	CategoryCreditCardPayment Category = "credit_card_payment"
	CategoryDebtPayment       Category = "debt_payment"
	CategoryIncome            Category = "income"
	CategorySavings           Category = "savings"
	CategoryOther             Category = "other"
)

// Type describes how a transaction moved money.
type Type string

const (
	TypeDebit       Type = "debit"
	TypeCredit      Type = "credit"
	TypeLoanPayment Type = "loan_payment"
	TypeDebtPayment Type = "debt_payment"
	TypeTransfer    Type = "transfer"
)

var validCategories = map[Category]bool{
	CategoryGroceries:         true,
	CategoryFuel:              true,
	CategoryRent:              true,
	CategoryUtilities:         true,
	CategoryShopping:          true,
	CategoryClothes:           true,
	CategoryCarService:        true,
	CategoryCarPurchase:       true,
	CategoryEntertainment:     true,
	CategoryDining:            true,
	CategoryHealthcare:        true,
	CategoryInsurance:         true,
	CategoryLoanPayment:       true,
	CategoryCreditCardPayment: true,
	CategoryDebtPayment:       true,
	CategoryIncome:            true,
	CategorySavings:           true,
	CategoryOther:             true,
}

var validTypes = map[Type]bool{
	TypeDebit:       true,
	TypeCredit:      true,
	TypeLoanPayment: true,
	TypeDebtPayment: true,
	TypeTransfer:    true,
}

// ParseCategory normalizes and validates a category name.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !validCategories[c] {
		return "", fmt.Errorf("unknown category: %q", s)
	}
	return c, nil
}

// ParseType normalizes and validates a transaction type name.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if !validTypes[t] {
		return "", fmt.Errorf("unknown transaction type: %q", s)
	}
	return t, nil
}

// Transaction is one entry in a user's transaction history.
// Amounts are signed: positive for income/credits, negative for expenses.
// Values are never mutated after construction.
type Transaction struct {
	Date        time.Time
	Amount      float64
	Category    Category
	Description string
	Type        Type
	AccountType string
}

// SortByDate orders transactions oldest first, in place.
func SortByDate(txns []Transaction) {
	sort.Slice(txns, func(i, j int) bool {
		return txns[i].Date.Before(txns[j].Date)
	})
}
