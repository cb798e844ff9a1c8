package ingest

import (
	"math/rand"
	"time"

	"github.com/ShaileshKumar97/Financial-Coach-Agent/internal/transaction"
)

// SampleData generates six months of realistic synthetic transactions:
// bi-weekly salary, rent, loan and credit card payments, insurance,
// weekly groceries, fuel and dining, monthly utilities and occasional
// shopping and car service.
func SampleData() []transaction.Transaction {
	base := time.Now().AddDate(0, 0, -180)
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	return generateSample(r, base)
}

func generateSample(r *rand.Rand, base time.Time) []transaction.Transaction {
	var txns []transaction.Transaction

	add := func(daysOffset int, amount float64, category transaction.Category, desc string, txnType transaction.Type) {
		txns = append(txns, transaction.Transaction{
			Date:        base.AddDate(0, 0, daysOffset),
			Amount:      amount,
			Category:    category,
			Description: desc,
			Type:        txnType,
			AccountType: "checking",
		})
	}

	uniform := func(lo, hi float64) float64 {
		return lo + r.Float64()*(hi-lo)
	}

	// Bi-weekly salary.
	for month := 0; month < 6; month++ {
		for _, week := range []int{0, 2} {
			add(month*30+week*14, 2250.0, transaction.CategoryIncome, "Salary deposit", transaction.TypeCredit)
		}
	}

	// Fixed monthly bills.
	for month := 0; month < 6; month++ {
		add(month*30+1, -1200.0, transaction.CategoryRent, "Monthly rent", transaction.TypeDebit)
		add(month*30+5, -350.0, transaction.CategoryLoanPayment, "Car loan", transaction.TypeDebit)
		add(month*30+10, -uniform(200, 500), transaction.CategoryCreditCardPayment, "Credit card payment", transaction.TypeDebit)
		add(month*30+15, -120.0, transaction.CategoryInsurance, "Car insurance", transaction.TypeDebit)
	}

	// Weekly groceries, fuel and dining.
	for week := 0; week < 26; week++ {
		add(week*7, -uniform(80, 150), transaction.CategoryGroceries, "Grocery shopping", transaction.TypeDebit)

		for i := 0; i < 2+r.Intn(2); i++ {
			add(week*7+r.Intn(7), -uniform(35, 65), transaction.CategoryFuel, "Gas", transaction.TypeDebit)
			add(week*7+r.Intn(7), -uniform(15, 60), transaction.CategoryDining, "Dining out", transaction.TypeDebit)
		}
	}

	// Monthly utilities.
	for month := 0; month < 6; month++ {
		add(month*30+5+r.Intn(11), -uniform(80, 150), transaction.CategoryUtilities, "Electricity", transaction.TypeDebit)
		add(month*30+5+r.Intn(11), -uniform(60, 80), transaction.CategoryUtilities, "Internet", transaction.TypeDebit)
		add(month*30+5+r.Intn(11), -uniform(40, 70), transaction.CategoryUtilities, "Water", transaction.TypeDebit)
	}

	// Occasional shopping and car service.
	for month := 0; month < 6; month++ {
		for i := 0; i < 2+r.Intn(3); i++ {
			add(month*30+r.Intn(30), -uniform(30, 200), transaction.CategoryShopping, "Shopping", transaction.TypeDebit)
		}
		if r.Float64() < 0.2 {
			add(month*30+r.Intn(30), -uniform(50, 300), transaction.CategoryCarService, "Car maintenance", transaction.TypeDebit)
		}
	}

	transaction.SortByDate(txns)
	return txns
}
