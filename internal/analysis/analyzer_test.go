package analysis

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/ShaileshKumar97/Financial-Coach-Agent/internal/transaction"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func txn(date time.Time, amount float64, category transaction.Category) transaction.Transaction {
	txnType := transaction.TypeDebit
	if amount > 0 {
		txnType = transaction.TypeCredit
	}
	return transaction.Transaction{
		Date:     date,
		Amount:   amount,
		Category: category,
		Type:     txnType,
	}
}

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func TestNew_Validation(t *testing.T) {
	t.Run("empty history fails", func(t *testing.T) {
		_, err := New(nil)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("short span fails with span in message", func(t *testing.T) {
		txns := []transaction.Transaction{
			txn(day(2024, 3, 1), -50, transaction.CategoryGroceries),
			txn(day(2024, 3, 15), -50, transaction.CategoryGroceries),
		}
		_, err := New(txns)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if !strings.Contains(err.Error(), "14 days") {
			t.Errorf("error should state the span in days, got: %v", err)
		}
	})

	t.Run("thirty day span succeeds", func(t *testing.T) {
		txns := []transaction.Transaction{
			txn(day(2024, 3, 1), -50, transaction.CategoryGroceries),
			txn(day(2024, 3, 31), -50, transaction.CategoryGroceries),
		}
		if _, err := New(txns); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestSpendingByCategory(t *testing.T) {
	txns := []transaction.Transaction{
		txn(day(2024, 1, 1), -100, transaction.CategoryGroceries),
		txn(day(2024, 1, 15), -40, transaction.CategoryGroceries),
		txn(day(2024, 2, 1), -1200, transaction.CategoryRent),
		txn(day(2024, 2, 10), 2000, transaction.CategoryIncome), // ignored: income
	}
	a, err := New(txns)
	if err != nil {
		t.Fatal(err)
	}

	spending := a.SpendingByCategory()
	approx(t, "groceries", spending[transaction.CategoryGroceries], 140)
	approx(t, "rent", spending[transaction.CategoryRent], 1200)
	if _, ok := spending[transaction.CategoryIncome]; ok {
		t.Error("income must not appear in spending")
	}

	// Sum over categories equals total expense.
	var sum float64
	for _, v := range spending {
		sum += v
	}
	approx(t, "total", sum, 1340)
}

func TestMonthlySpending(t *testing.T) {
	txns := []transaction.Transaction{
		txn(day(2024, 1, 5), -100, transaction.CategoryGroceries),
		txn(day(2024, 1, 20), -50, transaction.CategoryDining),
		txn(day(2024, 2, 5), -200, transaction.CategoryGroceries),
	}
	a, err := New(txns)
	if err != nil {
		t.Fatal(err)
	}

	monthly := a.MonthlySpending()
	approx(t, "2024-01", monthly["2024-01"], 150)
	approx(t, "2024-02", monthly["2024-02"], 200)
	if len(monthly) != 2 {
		t.Errorf("got %d months, want 2", len(monthly))
	}
}

func TestIncomeSummary_NoIncome(t *testing.T) {
	txns := []transaction.Transaction{
		txn(day(2024, 1, 1), -100, transaction.CategoryGroceries),
		txn(day(2024, 2, 15), -100, transaction.CategoryGroceries),
	}
	a, err := New(txns)
	if err != nil {
		t.Fatal(err)
	}

	income := a.IncomeSummary()
	if income != (IncomeSummary{}) {
		t.Errorf("expected all-zero summary, got %+v", income)
	}
}

func TestIncomeSummary_SavingsMath(t *testing.T) {
	// Two salary deposits 14 days apart: income span under 30 days, so the
	// months divisor clamps to 1 and average monthly income is the total.
	txns := []transaction.Transaction{
		txn(day(2024, 1, 10), 2250, transaction.CategoryIncome),
		txn(day(2024, 1, 24), 2250, transaction.CategoryIncome),
		txn(day(2024, 1, 5), -1200, transaction.CategoryRent),
		txn(day(2024, 2, 4), -1200, transaction.CategoryRent),
		txn(day(2024, 3, 5), -1200, transaction.CategoryRent),
		txn(day(2024, 4, 4), -1200, transaction.CategoryRent),
		txn(day(2024, 5, 4), -1200, transaction.CategoryRent),
		txn(day(2024, 6, 3), -1200, transaction.CategoryRent),
	}
	a, err := New(txns)
	if err != nil {
		t.Fatal(err)
	}

	income := a.IncomeSummary()
	approx(t, "Total", income.Total, 4500)
	approx(t, "MonthsCovered", income.MonthsCovered, 1)
	approx(t, "AverageMonthly", income.AverageMonthly, 4500)
	approx(t, "AverageMonthlySpending", income.AverageMonthlySpending, 1200)
	approx(t, "MonthlySavings", income.MonthlySavings, 3300)
	approx(t, "SavingsRate", income.SavingsRate, 3300.0/4500.0*100)
	if income.Count != 2 {
		t.Errorf("Count = %d, want 2", income.Count)
	}

	// savings = average_monthly - average_monthly_spending
	approx(t, "savings identity", income.MonthlySavings, income.AverageMonthly-income.AverageMonthlySpending)
}

func TestIncomeSummary_OverSpending(t *testing.T) {
	txns := []transaction.Transaction{
		txn(day(2024, 1, 1), 1000, transaction.CategoryIncome),
		txn(day(2024, 2, 15), -3000, transaction.CategoryShopping),
	}
	a, err := New(txns)
	if err != nil {
		t.Fatal(err)
	}

	income := a.IncomeSummary()
	if income.MonthlySavings >= 0 {
		t.Errorf("MonthlySavings = %v, want negative", income.MonthlySavings)
	}
	if income.SavingsRate >= 0 {
		t.Errorf("SavingsRate = %v, want negative", income.SavingsRate)
	}
}

func TestDebtAnalysis(t *testing.T) {
	txns := []transaction.Transaction{
		txn(day(2024, 1, 5), -350, transaction.CategoryLoanPayment),
		txn(day(2024, 1, 10), -250, transaction.CategoryCreditCardPayment),
		txn(day(2024, 2, 5), -350, transaction.CategoryLoanPayment),
		txn(day(2024, 1, 1), 5000, transaction.CategoryIncome),
		txn(day(2024, 2, 20), 5000, transaction.CategoryIncome),
	}
	a, err := New(txns)
	if err != nil {
		t.Fatal(err)
	}

	debt := a.DebtAnalysis()
	approx(t, "TotalDebtPayments", debt.TotalDebtPayments, 950)
	if debt.DebtTransactionCount != 3 {
		t.Errorf("DebtTransactionCount = %d, want 3", debt.DebtTransactionCount)
	}
	// Two months: 600 and 350.
	approx(t, "AverageMonthlyDebt", debt.AverageMonthlyDebt, 475)

	if len(debt.Strategies) != 2 {
		t.Fatalf("got %d strategies, want 2", len(debt.Strategies))
	}
	names := []string{debt.Strategies[0].Name, debt.Strategies[1].Name}
	if names[0] != "debt_snowball" || names[1] != "debt_avalanche" {
		t.Errorf("strategies = %v", names)
	}
	if debt.Strategies[0].MonthlyAllocation != debt.Strategies[1].MonthlyAllocation {
		t.Error("both strategies must share one monthly allocation")
	}

	available := a.IncomeSummary().MonthlySavings
	want := debt.AverageMonthlyDebt
	if available > 0 {
		want += available * 0.5
	}
	approx(t, "MonthlyAllocation", debt.Strategies[0].MonthlyAllocation, want)
}

func TestDebtAnalysis_NoDebt(t *testing.T) {
	txns := []transaction.Transaction{
		txn(day(2024, 1, 1), -100, transaction.CategoryGroceries),
		txn(day(2024, 2, 15), -100, transaction.CategoryGroceries),
	}
	a, err := New(txns)
	if err != nil {
		t.Fatal(err)
	}

	debt := a.DebtAnalysis()
	if debt.TotalDebtPayments != 0 {
		t.Errorf("TotalDebtPayments = %v, want 0", debt.TotalDebtPayments)
	}
	if len(debt.Strategies) != 0 {
		t.Errorf("Strategies = %v, want none", debt.Strategies)
	}
}

func TestIdentifySpendingPatterns(t *testing.T) {
	// Rent dominates spending; groceries stay under the 30% threshold.
	txns := []transaction.Transaction{
		txn(day(2024, 1, 1), -1200, transaction.CategoryRent),
		txn(day(2024, 2, 1), -1200, transaction.CategoryRent),
		txn(day(2024, 1, 10), -100, transaction.CategoryGroceries),
		txn(day(2024, 2, 10), -100, transaction.CategoryGroceries),
	}
	a, err := New(txns)
	if err != nil {
		t.Fatal(err)
	}

	patterns := a.IdentifySpendingPatterns()
	if len(patterns) == 0 {
		t.Fatal("expected at least one pattern")
	}
	if patterns[0].Type != "high_spending" || patterns[0].Category != transaction.CategoryRent {
		t.Errorf("first pattern = %+v, want high_spending rent", patterns[0])
	}
	for _, p := range patterns {
		if p.Category == transaction.CategoryGroceries {
			t.Errorf("groceries should not be flagged: %+v", p)
		}
	}
}

func TestIdentifySpendingPatterns_FrequencyFlags(t *testing.T) {
	// Span just over 30 days keeps months at ~1.06; 12 fuel and 20 dining
	// transactions clear the 4*months*1.5 and 8*months*1.5 thresholds.
	var txns []transaction.Transaction
	base := day(2024, 1, 1)
	for i := 0; i < 12; i++ {
		txns = append(txns, txn(base.AddDate(0, 0, i*2), -40, transaction.CategoryFuel))
	}
	for i := 0; i < 20; i++ {
		txns = append(txns, txn(base.AddDate(0, 0, i+1), -25, transaction.CategoryDining))
	}
	txns = append(txns, txn(base.AddDate(0, 0, 32), -10, transaction.CategoryOther))

	a, err := New(txns)
	if err != nil {
		t.Fatal(err)
	}

	patterns := a.IdentifySpendingPatterns()
	var fuel, dining bool
	var fuelIdx, diningIdx int
	for i, p := range patterns {
		switch p.Type {
		case "frequent_fuel":
			fuel = true
			fuelIdx = i
			if p.Frequency != 12 {
				t.Errorf("fuel frequency = %d, want 12", p.Frequency)
			}
		case "frequent_dining":
			dining = true
			diningIdx = i
			if p.Frequency != 20 {
				t.Errorf("dining frequency = %d, want 20", p.Frequency)
			}
		}
	}
	if !fuel || !dining {
		t.Fatalf("expected fuel and dining flags, got %+v", patterns)
	}
	if fuelIdx > diningIdx {
		t.Error("fuel flag must precede dining flag")
	}
	// Frequency flags come after the high-spending entries.
	for i := 0; i < fuelIdx; i++ {
		if patterns[i].Type != "high_spending" {
			t.Errorf("pattern %d = %s, want high_spending before frequency flags", i, patterns[i].Type)
		}
	}
}

func TestBudgetRecommendations(t *testing.T) {
	// Income span 30 days -> months 1 -> avg income 3000.
	// Targets: rent 900, groceries 300, fuel/utilities/dining/shopping 150.
	txns := []transaction.Transaction{
		txn(day(2024, 1, 1), 3000, transaction.CategoryIncome),
		txn(day(2024, 1, 31), -1500, transaction.CategoryRent),    // 1500 > 900*1.2 -> flagged
		txn(day(2024, 1, 20), -310, transaction.CategoryGroceries), // 310 < 300*1.2 -> not flagged
	}
	a, err := New(txns)
	if err != nil {
		t.Fatal(err)
	}

	budget := a.BudgetRecommendations()
	approx(t, "AverageMonthlyIncome", budget.AverageMonthlyIncome, 3000)
	// 30% + 10% + 4*5% = 60% of income.
	approx(t, "TotalRecommendedBudget", budget.TotalRecommendedBudget, 1800)

	if len(budget.Recommendations) != 1 {
		t.Fatalf("got %d recommendations, want 1: %+v", len(budget.Recommendations), budget.Recommendations)
	}
	rec := budget.Recommendations[0]
	if rec.Category != "Rent" {
		t.Errorf("Category = %q, want Rent", rec.Category)
	}
	approx(t, "RecommendedMonthly", rec.RecommendedMonthly, 900)
	approx(t, "ActualMonthly", rec.ActualMonthly, 1500)
	if !strings.Contains(rec.Suggestion, "600.00") {
		t.Errorf("suggestion should name the 600 reduction, got %q", rec.Suggestion)
	}
}

func TestBudgetRecommendations_NoIncome(t *testing.T) {
	txns := []transaction.Transaction{
		txn(day(2024, 1, 1), -100, transaction.CategoryGroceries),
		txn(day(2024, 2, 15), -100, transaction.CategoryGroceries),
	}
	a, err := New(txns)
	if err != nil {
		t.Fatal(err)
	}

	budget := a.BudgetRecommendations()
	approx(t, "TotalRecommendedBudget", budget.TotalRecommendedBudget, 0)
	// With zero recommended, any actual spending above zero is flagged.
	if len(budget.Recommendations) == 0 {
		t.Error("expected groceries flagged against a zero budget")
	}
}

func TestReportIdempotence(t *testing.T) {
	txns := []transaction.Transaction{
		txn(day(2024, 1, 1), 3000, transaction.CategoryIncome),
		txn(day(2024, 1, 5), -1200, transaction.CategoryRent),
		txn(day(2024, 2, 5), -350, transaction.CategoryLoanPayment),
		txn(day(2024, 2, 20), -80, transaction.CategoryGroceries),
	}
	a, err := New(txns)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(a.SpendingByCategory(), a.SpendingByCategory()) {
		t.Error("SpendingByCategory not idempotent")
	}
	if !reflect.DeepEqual(a.MonthlySpending(), a.MonthlySpending()) {
		t.Error("MonthlySpending not idempotent")
	}
	if !reflect.DeepEqual(a.IncomeSummary(), a.IncomeSummary()) {
		t.Error("IncomeSummary not idempotent")
	}
	if !reflect.DeepEqual(a.DebtAnalysis(), a.DebtAnalysis()) {
		t.Error("DebtAnalysis not idempotent")
	}
	if !reflect.DeepEqual(a.IdentifySpendingPatterns(), a.IdentifySpendingPatterns()) {
		t.Error("IdentifySpendingPatterns not idempotent")
	}
	if !reflect.DeepEqual(a.BudgetRecommendations(), a.BudgetRecommendations()) {
		t.Error("BudgetRecommendations not idempotent")
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{1200, "1,200.00"},
		{1234567.891, "1,234,567.89"},
		{-950.5, "-950.50"},
		{999.999, "1,000.00"},
	}
	for _, tt := range tests {
		if got := FormatAmount(tt.in); got != tt.want {
			t.Errorf("FormatAmount(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCategoryTitle(t *testing.T) {
	if got := CategoryTitle(transaction.CategoryCreditCardPayment); got != "Credit Card Payment" {
		t.Errorf("CategoryTitle = %q", got)
	}
	if got := CategoryTitle(transaction.CategoryRent); got != "Rent" {
		t.Errorf("CategoryTitle = %q", got)
	}
}
