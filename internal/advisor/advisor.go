// Package advisor answers natural-language finance questions with canned
// text derived from the current ledger. Matching is an ordered rule
// table: each rule owns a keyword group, the first rule whose keyword
// appears in the normalized query wins. The responder is stateless and
// never errors; unmatched queries get a fixed fallback.
package advisor

import (
	"fmt"
	"strings"

	"thrifty/internal/core"
)

const fallbackReply = "I'm not sure about that. Try asking about your expenses."

type rule struct {
	name     string
	keywords []string
	respond  func(txs []core.Transaction, summary core.Summary) string
}

type Responder struct {
	rules []rule
}

func New() *Responder {
	return &Responder{rules: []rule{
		{
			name:     "spending-summary",
			keywords: []string{"spending", "spent"},
			respond:  spendingSummary,
		},
		{
			name:     "budget-suggestion",
			keywords: []string{"budget", "advice"},
			respond:  budgetSuggestion,
		},
		{
			name:     "savings-tip",
			keywords: []string{"save", "saving"},
			respond:  savingsTip,
		},
		{
			name:     "subscription-detection",
			keywords: []string{"subscription", "recurring"},
			respond:  subscriptionReport,
		},
		{
			name:     "recent-transactions",
			keywords: []string{"recent", "last", "history"},
			respond:  recentTransactions,
		},
		{
			name:     "income-summary",
			keywords: []string{"income", "earn", "salary"},
			respond:  incomeSummary,
		},
		{
			name:     "greeting",
			keywords: []string{"hello", "hi", "hey"},
			respond: func([]core.Transaction, core.Summary) string {
				return "Hello! Ready to save some money today?"
			},
		},
		{
			name:     "thanks",
			keywords: []string{"thank", "thanks"},
			respond: func([]core.Transaction, core.Summary) string {
				return "You're welcome! Keep tracking those expenses."
			},
		},
	}}
}

// Respond matches the query against the rule table and renders the
// winning reply from the transaction list. Deterministic: same query and
// ledger, same answer.
func (r *Responder) Respond(query string, txs []core.Transaction) string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return fallbackReply
	}
	summary := core.Summarize(txs)
	for _, rule := range r.rules {
		for _, kw := range rule.keywords {
			if strings.Contains(q, kw) {
				return rule.respond(txs, summary)
			}
		}
	}
	return fallbackReply
}

func spendingSummary(_ []core.Transaction, s core.Summary) string {
	top, ok := s.TopExpenseCategory()
	if !ok {
		return "You haven't recorded any expenses yet. Add a few and ask me again!"
	}
	return fmt.Sprintf("You have spent a total of %s so far. Your highest spending category is %s.",
		core.FormatAmount(s.TotalExpense), top.Category)
}

func budgetSuggestion(_ []core.Transaction, s core.Summary) string {
	top, ok := s.TopExpenseCategory()
	if !ok {
		return "Start adding some expenses so I can give you personalized budget advice!"
	}
	// Suggest trimming the heaviest category by 10%.
	limit := core.Money{Cents: top.Amount.Cents * 9 / 10}
	return fmt.Sprintf("I noticed you spend a lot on %s. Consider setting a limit of %s for next month to save 10%%.",
		top.Category, core.FormatAmount(limit))
}

func savingsTip(_ []core.Transaction, s core.Summary) string {
	if s.Balance.Cents > 0 {
		target := core.Money{Cents: s.TotalIncome.Cents / 5}
		return fmt.Sprintf("Nice, you're %s in the positive. A good rule of thumb is to put 20%% of your income (%s) into savings.",
			core.FormatAmount(s.Balance), core.FormatAmount(target))
	}
	top, ok := s.TopExpenseCategory()
	if !ok {
		return "Add your income and expenses and I'll help you find room to save."
	}
	deficit := core.Money{Cents: -s.Balance.Cents}
	return fmt.Sprintf("Your expenses exceed your income by %s. Your biggest category is %s, start trimming there.",
		core.FormatAmount(deficit), top.Category)
}

func subscriptionReport(txs []core.Transaction, _ core.Summary) string {
	counts := make(map[string]int)
	var order []string
	for _, t := range txs {
		if t.Type != core.TypeExpense {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(t.Description))
		if counts[key] == 0 {
			order = append(order, key)
		}
		counts[key]++
	}
	var repeated []string
	for _, key := range order {
		if counts[key] >= 2 {
			repeated = append(repeated, key)
		}
	}
	if len(repeated) == 0 {
		return "I don't see any repeated charges that look like subscriptions."
	}
	return fmt.Sprintf("These look like recurring charges: %s. Worth checking if you still use them!",
		strings.Join(repeated, ", "))
}

func recentTransactions(txs []core.Transaction, _ core.Summary) string {
	if len(txs) == 0 {
		return "Your ledger is empty. Add a transaction to get started."
	}
	n := 3
	if len(txs) < n {
		n = len(txs)
	}
	parts := make([]string, 0, n)
	// Newest are at the end of the canonical order.
	for i := len(txs) - 1; i >= len(txs)-n; i-- {
		t := txs[i]
		parts = append(parts, fmt.Sprintf("%s (%s)", t.Description, core.FormatAmount(t.Amount)))
	}
	return "Your latest transactions: " + strings.Join(parts, ", ") + "."
}

func incomeSummary(_ []core.Transaction, s core.Summary) string {
	if s.TotalIncome.Cents == 0 {
		return "No income recorded yet. Add your salary to see the full picture."
	}
	return fmt.Sprintf("You have recorded %s of income. After %s of expenses your balance is %s.",
		core.FormatAmount(s.TotalIncome), core.FormatAmount(s.TotalExpense), core.FormatAmount(s.Balance))
}
