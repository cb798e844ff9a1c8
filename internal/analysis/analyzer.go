package analysis

import (
	"fmt"
	"sort"
	"time"

	"github.com/ShaileshKumar97/Financial-Coach-Agent/internal/transaction"
)

// ValidationError reports transaction data that cannot be analyzed:
// an empty history, or one spanning fewer than 30 days.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

const monthKeyFormat = "2006-01"

// Analyzer computes spending, income, debt and budget reports over one
// immutable transaction history. All methods are pure reads and safe for
// concurrent use. "Monthly" figures use a fixed 30-day month approximation,
// not calendar months.
type Analyzer struct {
	txns []transaction.Transaction
}

// New validates the transaction history and returns an Analyzer over it.
// It fails with a *ValidationError when the history is empty or spans
// fewer than 30 days.
func New(txns []transaction.Transaction) (*Analyzer, error) {
	if len(txns) == 0 {
		return nil, &ValidationError{msg: "no transactions provided"}
	}
	span := dateSpanDays(txns)
	if span < 30 {
		return nil, &ValidationError{msg: fmt.Sprintf("not enough data: only %d days of transactions", span)}
	}
	return &Analyzer{txns: txns}, nil
}

// dateSpanDays returns the whole days between the earliest and latest
// transaction dates.
func dateSpanDays(txns []transaction.Transaction) int {
	earliest, latest := txns[0].Date, txns[0].Date
	for _, t := range txns[1:] {
		if t.Date.Before(earliest) {
			earliest = t.Date
		}
		if t.Date.After(latest) {
			latest = t.Date
		}
	}
	return int(latest.Sub(earliest) / (24 * time.Hour))
}

// months approximates the covered period in 30-day months, never below one.
func (a *Analyzer) months() float64 {
	m := float64(dateSpanDays(a.txns)) / 30.0
	if m < 1 {
		return 1
	}
	return m
}

// SpendingByCategory sums the absolute amounts of expense transactions
// (amount < 0) per category.
func (a *Analyzer) SpendingByCategory() map[transaction.Category]float64 {
	result := make(map[transaction.Category]float64)
	for _, t := range a.txns {
		if t.Amount < 0 {
			result[t.Category] += -t.Amount
		}
	}
	return result
}

// MonthlySpending sums the absolute amounts of expense transactions per
// calendar month, keyed "YYYY-MM".
func (a *Analyzer) MonthlySpending() map[string]float64 {
	result := make(map[string]float64)
	for _, t := range a.txns {
		if t.Amount < 0 {
			result[t.Date.Format(monthKeyFormat)] += -t.Amount
		}
	}
	return result
}

// IncomeSummary describes income against spending over the covered period.
type IncomeSummary struct {
	Total                  float64
	AverageMonthly         float64
	Count                  int
	MonthsCovered          float64
	MonthlySavings         float64
	SavingsRate            float64
	AverageMonthlySpending float64
}

// IncomeSummary aggregates income transactions (amount > 0) and derives
// savings figures. All fields are zero when there is no income. The months
// divisor here spans the income transactions only, which intentionally
// differs from the all-transactions span used elsewhere.
func (a *Analyzer) IncomeSummary() IncomeSummary {
	var incomeTxns []transaction.Transaction
	for _, t := range a.txns {
		if t.Amount > 0 {
			incomeTxns = append(incomeTxns, t)
		}
	}
	if len(incomeTxns) == 0 {
		return IncomeSummary{}
	}

	var total float64
	for _, t := range incomeTxns {
		total += t.Amount
	}
	months := float64(dateSpanDays(incomeTxns)) / 30.0
	if months < 1 {
		months = 1
	}
	avgIncome := total / months

	monthly := a.MonthlySpending()
	var avgSpending float64
	if len(monthly) > 0 {
		var sum float64
		for _, v := range monthly {
			sum += v
		}
		avgSpending = sum / float64(len(monthly))
	}
	savings := avgIncome - avgSpending

	var savingsRate float64
	if avgIncome > 0 {
		savingsRate = savings / avgIncome * 100
	}

	return IncomeSummary{
		Total:                  total,
		AverageMonthly:         avgIncome,
		Count:                  len(incomeTxns),
		MonthsCovered:          months,
		MonthlySavings:         savings,
		SavingsRate:            savingsRate,
		AverageMonthlySpending: avgSpending,
	}
}

// Strategy is an advisory debt payoff plan. It describes an ordering of
// payments, not a simulation of actual balances.
type Strategy struct {
	Name              string
	Description       string
	MonthlyAllocation float64
}

// DebtAnalysis summarizes debt payments and suggests payoff strategies.
type DebtAnalysis struct {
	TotalDebtPayments    float64
	AverageMonthlyDebt   float64
	DebtTransactionCount int
	MonthlyBreakdown     map[string]float64
	Strategies           []Strategy
	AvailableForDebt     float64
}

var debtCategories = map[transaction.Category]bool{
	transaction.CategoryLoanPayment:       true,
	transaction.CategoryDebtPayment:       true,
	transaction.CategoryCreditCardPayment: true,
}

// DebtAnalysis sums loan, debt and credit card payments and, when any
// exist, proposes the snowball and avalanche strategies with an identical
// monthly allocation.
func (a *Analyzer) DebtAnalysis() DebtAnalysis {
	var (
		total   float64
		count   int
		monthly = make(map[string]float64)
	)
	for _, t := range a.txns {
		if !debtCategories[t.Category] {
			continue
		}
		amt := t.Amount
		if amt < 0 {
			amt = -amt
		}
		total += amt
		count++
		monthly[t.Date.Format(monthKeyFormat)] += amt
	}

	var avgMonthly float64
	if len(monthly) > 0 {
		var sum float64
		for _, v := range monthly {
			sum += v
		}
		avgMonthly = sum / float64(len(monthly))
	}

	available := a.IncomeSummary().MonthlySavings
	potential := avgMonthly
	if available > 0 {
		potential += available * 0.5
	}

	var strategies []Strategy
	if avgMonthly > 0 {
		strategies = []Strategy{
			{
				Name:              "debt_snowball",
				Description:       "Pay minimums on all debts, then put extra toward the smallest balance.",
				MonthlyAllocation: potential,
			},
			{
				Name:              "debt_avalanche",
				Description:       "Pay minimums on all debts, then put extra toward the highest-interest balance.",
				MonthlyAllocation: potential,
			},
		}
	}

	return DebtAnalysis{
		TotalDebtPayments:    total,
		AverageMonthlyDebt:   avgMonthly,
		DebtTransactionCount: count,
		MonthlyBreakdown:     monthly,
		Strategies:           strategies,
		AvailableForDebt:     available,
	}
}

// Pattern is one flagged spending insight.
type Pattern struct {
	Type           string
	Category       transaction.Category
	MonthlyAverage float64
	Frequency      int
	Insight        string
}

// IdentifySpendingPatterns flags categories whose monthly average exceeds
// 30% of overall monthly spending, ordered by total spend descending, then
// appends fuel and dining frequency flags.
func (a *Analyzer) IdentifySpendingPatterns() []Pattern {
	var patterns []Pattern
	categorySpending := a.SpendingByCategory()
	monthlySpending := a.MonthlySpending()

	var avgMonthly float64
	if len(monthlySpending) > 0 {
		var sum float64
		for _, v := range monthlySpending {
			sum += v
		}
		avgMonthly = sum / float64(len(monthlySpending))
	}
	months := a.months()

	type catTotal struct {
		category transaction.Category
		total    float64
	}
	sorted := make([]catTotal, 0, len(categorySpending))
	for c, v := range categorySpending {
		sorted = append(sorted, catTotal{category: c, total: v})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].total != sorted[j].total {
			return sorted[i].total > sorted[j].total
		}
		return sorted[i].category < sorted[j].category
	})

	for _, ct := range sorted {
		monthlyAvg := ct.total / months
		if monthlyAvg > avgMonthly*0.3 {
			patterns = append(patterns, Pattern{
				Type:           "high_spending",
				Category:       ct.category,
				MonthlyAverage: monthlyAvg,
				Insight:        fmt.Sprintf("High spending in %s: $%s/month", ct.category, FormatAmount(monthlyAvg)),
			})
		}
	}

	if _, ok := categorySpending[transaction.CategoryFuel]; ok {
		freq := a.countByCategory(transaction.CategoryFuel)
		if float64(freq) > 4*months*1.5 {
			patterns = append(patterns, Pattern{
				Type:      "frequent_fuel",
				Category:  transaction.CategoryFuel,
				Frequency: freq,
				Insight:   fmt.Sprintf("Frequent fuel purchases: %d times over the period", freq),
			})
		}
	}

	if _, ok := categorySpending[transaction.CategoryDining]; ok {
		freq := a.countByCategory(transaction.CategoryDining)
		if float64(freq) > 8*months*1.5 {
			patterns = append(patterns, Pattern{
				Type:      "frequent_dining",
				Category:  transaction.CategoryDining,
				Frequency: freq,
				Insight:   fmt.Sprintf("Frequent dining out: %d times over the period", freq),
			})
		}
	}

	return patterns
}

func (a *Analyzer) countByCategory(c transaction.Category) int {
	n := 0
	for _, t := range a.txns {
		if t.Category == c {
			n++
		}
	}
	return n
}

// BudgetItem flags one category spending above its recommended share of
// income.
type BudgetItem struct {
	Category           string
	RecommendedMonthly float64
	ActualMonthly      float64
	Suggestion         string
}

// BudgetReport holds per-category recommendations against fixed income
// share targets.
type BudgetReport struct {
	Recommendations        []BudgetItem
	AverageMonthlyIncome   float64
	AverageMonthlySpending float64
	TotalRecommendedBudget float64
}

// budgetTargets are percentages of average monthly income, evaluated in
// this order.
var budgetTargets = []struct {
	category transaction.Category
	pct      float64
}{
	{transaction.CategoryRent, 30},
	{transaction.CategoryGroceries, 10},
	{transaction.CategoryFuel, 5},
	{transaction.CategoryUtilities, 5},
	{transaction.CategoryDining, 5},
	{transaction.CategoryShopping, 5},
}

// BudgetRecommendations compares actual category spending against fixed
// income share targets, flagging categories more than 20% over target.
// The total recommended budget sums every target regardless of flags.
func (a *Analyzer) BudgetRecommendations() BudgetReport {
	income := a.IncomeSummary()
	spending := a.SpendingByCategory()
	avgIncome := income.AverageMonthly
	months := a.months()

	var (
		recommendations  []BudgetItem
		totalRecommended float64
	)
	for _, target := range budgetTargets {
		var recommended float64
		if avgIncome > 0 {
			recommended = avgIncome * target.pct / 100
		}
		actual := spending[target.category] / months
		totalRecommended += recommended
		if actual > recommended*1.2 {
			name := CategoryTitle(target.category)
			recommendations = append(recommendations, BudgetItem{
				Category:           name,
				RecommendedMonthly: recommended,
				ActualMonthly:      actual,
				Suggestion:         fmt.Sprintf("Consider reducing %s by $%s/month", name, FormatAmount(actual-recommended)),
			})
		}
	}

	return BudgetReport{
		Recommendations:        recommendations,
		AverageMonthlyIncome:   avgIncome,
		AverageMonthlySpending: income.AverageMonthlySpending,
		TotalRecommendedBudget: totalRecommended,
	}
}
