package agent

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ShaileshKumar97/Financial-Coach-Agent/internal/analysis"
	"github.com/ShaileshKumar97/Financial-Coach-Agent/internal/transaction"
)

const systemPromptTemplate = `You are a friendly financial coach speaking in a live voice call. You have already reviewed the user's last 6 months of transactions. Here is a quick snapshot of their finances:

%s

Voice Rules (follow strictly):
1. Respond in 1-3 short, natural spoken sentences. Never more.
2. No markdown, no bullet points, no headers, no emoji.
3. Spell out numbers conversationally — say "about twelve hundred dollars" not "$1,200.00".
4. Never repeat back all the data; just answer the user's specific question.
5. Be warm, encouraging, and to the point — like a real coach on a call.

Data & Tool Rules:
- The snapshot above only contains high-level summaries.
- You HAVE tools available for deep-dive questions (e.g., specific budget recommendations, detailed debt strategies, or spending category breakdowns).
- If the user asks for details not in the snapshot, YOU MUST CALL THE RELEVANT TOOL to get the data before answering.
- Only if the tool returns no data should you say you don't have the information. Never invent numbers.`

// buildVoiceContext produces the short finances snapshot embedded in every
// session's system instruction. Each line is guarded independently so
// missing data omits that line rather than aborting the summary.
func buildVoiceContext(a *analysis.Analyzer) string {
	var lines []string

	if spending := a.SpendingByCategory(); len(spending) > 0 {
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
		if len(entries) > 3 {
			entries = entries[:3]
		}

		parts := make([]string, 0, len(entries))
		for _, e := range entries {
			parts = append(parts, fmt.Sprintf("%s (%.0f%%)", e.category, e.amount/total*100))
		}
		lines = append(lines, fmt.Sprintf("Top spending categories: %s.", strings.Join(parts, ", ")))
		lines = append(lines, fmt.Sprintf("Total 6-month spending: $%s.", analysis.FormatWhole(total)))
	}

	if income := a.IncomeSummary(); income.Total > 0 {
		lines = append(lines, fmt.Sprintf(
			"Avg monthly income: $%s. Avg monthly spending: $%s. Savings rate: %.1f%%.",
			analysis.FormatWhole(income.AverageMonthly),
			analysis.FormatWhole(income.AverageMonthlySpending),
			income.SavingsRate,
		))
	}

	if debt := a.DebtAnalysis(); debt.TotalDebtPayments > 0 {
		lines = append(lines, fmt.Sprintf(
			"Monthly debt payments: $%s. Available for extra payoff: $%s.",
			analysis.FormatWhole(debt.AverageMonthlyDebt),
			analysis.FormatWhole(debt.AvailableForDebt),
		))
	}

	if len(lines) == 0 {
		return "No transaction data available."
	}
	return strings.Join(lines, "\n")
}

// systemPrompt renders the full system instruction around the snapshot.
func systemPrompt(voiceContext string) string {
	return fmt.Sprintf(systemPromptTemplate, voiceContext)
}
