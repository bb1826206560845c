package core

// CategoryAmount is an expense total for one category.
type CategoryAmount struct {
	Category Category `json:"category"`
	Amount   Money    `json:"amount"`
}

// Summary is the derived view of a ledger: totals, balance and the
// per-category expense breakdown. It is recomputed from the full
// transaction list on every read and never stored.
type Summary struct {
	TotalIncome      Money            `json:"total_income"`
	TotalExpense     Money            `json:"total_expense"`
	Balance          Money            `json:"balance"`
	Categories       []CategoryAmount `json:"category_breakdown"`
	TransactionCount int              `json:"transaction_count"`
}

// Summarize computes the summary in a single pass. The category breakdown
// covers expenses only and keeps categories in order of first appearance.
func Summarize(transactions []Transaction) Summary {
	s := Summary{TransactionCount: len(transactions)}
	index := make(map[Category]int)
	for _, t := range transactions {
		switch t.Type {
		case TypeIncome:
			s.TotalIncome.Cents += t.Amount.Cents
		case TypeExpense:
			s.TotalExpense.Cents += t.Amount.Cents
			i, seen := index[t.Category]
			if !seen {
				i = len(s.Categories)
				index[t.Category] = i
				s.Categories = append(s.Categories, CategoryAmount{Category: t.Category})
			}
			s.Categories[i].Amount.Cents += t.Amount.Cents
		}
	}
	s.Balance.Cents = s.TotalIncome.Cents - s.TotalExpense.Cents
	return s
}

// TopExpenseCategory returns the category with the highest expense total.
// Ties resolve to the category that first appeared in the ledger: a later
// category only wins with a strictly greater sum.
func (s Summary) TopExpenseCategory() (CategoryAmount, bool) {
	if len(s.Categories) == 0 {
		return CategoryAmount{}, false
	}
	top := s.Categories[0]
	for _, c := range s.Categories[1:] {
		if c.Amount.Cents > top.Amount.Cents {
			top = c
		}
	}
	return top, true
}
