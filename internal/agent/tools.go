package agent

import (
	"fmt"
	"sort"
	"strings"

	"google.golang.org/genai"

	"github.com/ShaileshKumar97/Financial-Coach-Agent/internal/analysis"
	"github.com/ShaileshKumar97/Financial-Coach-Agent/internal/transaction"
)

// Tool is one named capability the model may call. Tools take no
// arguments, have no side effects and return a human-readable text block.
type Tool struct {
	Name        string
	Description string
	Run         func() (string, error)
}

// Registry holds the tools for one analyzer. It is static for the
// analyzer's lifetime; repeated calls return identical results.
type Registry struct {
	tools  []Tool
	byName map[string]Tool
}

// NewRegistry exposes every analytics report as a callable tool.
func NewRegistry(analyzer *analysis.Analyzer) *Registry {
	tools := []Tool{
		{
			Name:        "get_spending_summary",
			Description: "Get a summary of spending by category over the last 6 months.",
			Run:         func() (string, error) { return spendingSummary(analyzer), nil },
		},
		{
			Name:        "get_income_analysis",
			Description: "Get income analysis including savings rate.",
			Run:         func() (string, error) { return incomeAnalysis(analyzer), nil },
		},
		{
			Name:        "get_debt_analysis",
			Description: "Get analysis of debt payments and payoff strategies.",
			Run:         func() (string, error) { return debtAnalysis(analyzer), nil },
		},
		{
			Name:        "identify_spending_issues",
			Description: "Identify problematic spending patterns.",
			Run:         func() (string, error) { return spendingIssues(analyzer), nil },
		},
		{
			Name:        "get_budget_recommendations",
			Description: "Get personalized budget recommendations based on income and actual spending.",
			Run:         func() (string, error) { return budgetRecommendations(analyzer), nil },
		},
	}

	byName := make(map[string]Tool, len(tools))
	for _, t := range tools {
		byName[t.Name] = t
	}
	return &Registry{tools: tools, byName: byName}
}

// Declarations renders the registry as genai tool declarations.
func (r *Registry) Declarations() []*genai.Tool {
	decls := make([]*genai.FunctionDeclaration, 0, len(r.tools))
	for _, t := range r.tools {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
		})
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

// Execute runs the named tool.
func (r *Registry) Execute(name string) (string, error) {
	t, ok := r.byName[name]
	if !ok {
		return "", fmt.Errorf("unknown tool: %q", name)
	}
	return t.Run()
}

func spendingSummary(a *analysis.Analyzer) string {
	spending := a.SpendingByCategory()
	if len(spending) == 0 {
		return "No spending data available."
	}

	var total float64
	for _, amt := range spending {
		total += amt
	}

	type entry struct {
		category transaction.Category
		amount   float64
	}
	entries := make([]entry, 0, len(spending))
	for c, amt := range spending {
		entries = append(entries, entry{category: c, amount: amt})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].amount != entries[j].amount {
			return entries[i].amount > entries[j].amount
		}
		return entries[i].category < entries[j].category
	})

	var b strings.Builder
	b.WriteString("Spending Summary:\n")
	for _, e := range entries {
		var pct float64
		if total > 0 {
			pct = e.amount / total * 100
		}
		fmt.Fprintf(&b, "  %s: $%s (%.1f%%)\n", e.category, analysis.FormatAmount(e.amount), pct)
	}
	fmt.Fprintf(&b, "\nTotal Spending: $%s", analysis.FormatAmount(total))
	return b.String()
}

func incomeAnalysis(a *analysis.Analyzer) string {
	income := a.IncomeSummary()
	if income.Total == 0 {
		return "No income data available."
	}

	var b strings.Builder
	b.WriteString("Income Analysis:\n")
	fmt.Fprintf(&b, "  Total Income: $%s\n", analysis.FormatAmount(income.Total))
	fmt.Fprintf(&b, "  Average Monthly Income: $%s\n", analysis.FormatAmount(income.AverageMonthly))
	fmt.Fprintf(&b, "  Average Monthly Spending: $%s\n", analysis.FormatAmount(income.AverageMonthlySpending))
	fmt.Fprintf(&b, "  Monthly Savings: $%s\n", analysis.FormatAmount(income.MonthlySavings))
	fmt.Fprintf(&b, "  Savings Rate: %.1f%%", income.SavingsRate)

	if income.SavingsRate < 0 {
		b.WriteString("\n\nWarning: You're spending more than you earn.")
	} else if income.SavingsRate < 10 {
		b.WriteString("\n\nRecommendation: Aim for at least 10-20% savings rate.")
	}
	return b.String()
}

func debtAnalysis(a *analysis.Analyzer) string {
	debt := a.DebtAnalysis()
	if debt.TotalDebtPayments == 0 {
		return "No debt payments found in transactions."
	}

	var b strings.Builder
	b.WriteString("Debt Analysis:\n")
	fmt.Fprintf(&b, "  Total Debt Payments: $%s\n", analysis.FormatAmount(debt.TotalDebtPayments))
	fmt.Fprintf(&b, "  Average Monthly Debt Payment: $%s\n", analysis.FormatAmount(debt.AverageMonthlyDebt))
	fmt.Fprintf(&b, "  Available for Additional Debt Payment: $%s", analysis.FormatAmount(debt.AvailableForDebt))

	if len(debt.Strategies) > 0 {
		b.WriteString("\n\nRecommended Strategies:")
		for _, strat := range debt.Strategies {
			fmt.Fprintf(&b, "\n  %s: %s", strategyTitle(strat.Name), strat.Description)
			fmt.Fprintf(&b, "\n    Monthly Allocation: $%s", analysis.FormatAmount(strat.MonthlyAllocation))
		}
	}
	return b.String()
}

func spendingIssues(a *analysis.Analyzer) string {
	patterns := a.IdentifySpendingPatterns()
	if len(patterns) == 0 {
		return "No significant spending issues identified."
	}

	var b strings.Builder
	b.WriteString("Spending Patterns Identified:\n")
	for _, p := range patterns {
		fmt.Fprintf(&b, "  %s\n", p.Insight)
	}
	return strings.TrimSpace(b.String())
}

func budgetRecommendations(a *analysis.Analyzer) string {
	budget := a.BudgetRecommendations()

	var b strings.Builder
	b.WriteString("Budget Recommendations:\n")
	fmt.Fprintf(&b, "  Average Monthly Income: $%s\n", analysis.FormatAmount(budget.AverageMonthlyIncome))
	fmt.Fprintf(&b, "  Average Monthly Spending: $%s\n", analysis.FormatAmount(budget.AverageMonthlySpending))
	fmt.Fprintf(&b, "  Recommended Total Budget: $%s", analysis.FormatAmount(budget.TotalRecommendedBudget))

	if len(budget.Recommendations) > 0 {
		b.WriteString("\n\nAreas for Improvement:")
		for _, rec := range budget.Recommendations {
			fmt.Fprintf(&b, "\n  %s: %s", rec.Category, rec.Suggestion)
		}
	} else {
		b.WriteString("\n\nNo major budget adjustments needed.")
	}
	return b.String()
}

// strategyTitle turns "debt_snowball" into "Debt Snowball".
func strategyTitle(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
