package http

import (
	"errors"
	"net/http"
	"strings"

	"thrifty/internal/core"
	"thrifty/internal/ledger"
	"thrifty/internal/log"
)

type transactionRequest struct {
	Description string     `json:"description"`
	Amount      flexAmount `json:"amount"`
	Type        string     `json:"type"`
	Category    string     `json:"category"`
	Date        string     `json:"date"`
}

type addTransactionResponse struct {
	Transaction core.Transaction `json:"transaction"`
	Points      int              `json:"points"`
	Unlocked    []core.Badge     `json:"unlocked_badges"`
	SyncPending bool             `json:"sync_pending"`
}

type listTransactionsResponse struct {
	Transactions []core.Transaction `json:"transactions"`
	Count        int                `json:"count"`
}

type deleteResponse struct {
	Deleted     bool `json:"deleted"`
	SyncPending bool `json:"sync_pending"`
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		txs := s.ledger.ListTransactions()
		writeJSON(w, http.StatusOK, listTransactionsResponse{Transactions: txs, Count: len(txs)})

	case http.MethodPost:
		var req transactionRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		cents, err := req.Amount.Cents()
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}

		date := core.Today()
		if strings.TrimSpace(req.Date) != "" {
			if date, err = core.ParseDate(req.Date); err != nil {
				writeError(w, http.StatusUnprocessableEntity, core.ErrInvalidDate)
				return
			}
		}

		draft := core.Draft{
			Description: sanitizeInput(req.Description),
			Amount:      core.Money{Cents: cents},
			Type:        core.TransactionType(req.Type),
			Category:    core.Category(req.Category),
			Date:        date,
		}

		res, err := s.ledger.AddTransaction(r.Context(), draft)
		if err != nil {
			var verr *core.ValidationError
			if errors.As(err, &verr) {
				writeError(w, http.StatusUnprocessableEntity, err)
				return
			}
			log.NewStructuredLogger(log.FromContext(r.Context())).
				LogError(r.Context(), "Add transaction failed", err,
					log.ComponentLedger, log.OpCreate, log.NewFields())
			writeError(w, http.StatusInternalServerError, err)
			return
		}

		writeJSON(w, http.StatusCreated, addTransactionResponse{
			Transaction: res.Transaction,
			Points:      res.Points,
			Unlocked:    res.Unlocked,
			SyncPending: res.SyncPending,
		})

	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleTransactionByID serves /api/transactions/{id} deletes and the
// /api/transactions/summary aggregate.
func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	suffix := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
	if suffix == "" || strings.Contains(suffix, "/") {
		http.NotFound(w, r)
		return
	}

	if suffix == "summary" {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", "GET")
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, s.ledger.Summary())
		return
	}

	if r.Method != http.MethodDelete {
		w.Header().Set("Allow", "DELETE")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	res := s.ledger.DeleteTransaction(r.Context(), suffix)
	writeJSON(w, http.StatusOK, deleteResponse{Deleted: res.Deleted, SyncPending: res.SyncPending})
}

func (s *Server) handleGamification(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.ledger.Gamification())
}

type advisorRequest struct {
	Query string `json:"query"`
}

type advisorResponse struct {
	Reply string `json:"reply"`
}

func (s *Server) handleAdvisor(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req advisorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	reply := s.ledger.Advise(r.Context(), sanitizeInput(req.Query))
	writeJSON(w, http.StatusOK, advisorResponse{Reply: reply})
}

type budgetRequest struct {
	Category string     `json:"category"`
	Limit    flexAmount `json:"limit"`
}

type budgetsResponse struct {
	Budgets []ledger.BudgetStatus `json:"budgets"`
}

func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, budgetsResponse{Budgets: s.ledger.Budgets()})

	case http.MethodPost:
		var req budgetRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		cents, err := req.Limit.Cents()
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		budget, err := s.ledger.SetBudget(r.Context(), core.Budget{
			Category: core.Category(req.Category),
			Limit:    core.Money{Cents: cents},
		})
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		writeJSON(w, http.StatusCreated, budget)

	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleBudgetByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/budgets/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodDelete {
		w.Header().Set("Allow", "DELETE")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	res := s.ledger.DeleteBudget(r.Context(), id)
	writeJSON(w, http.StatusOK, deleteResponse{Deleted: res.Deleted, SyncPending: res.SyncPending})
}

type goalRequest struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Target   flexAmount `json:"target"`
	Current  flexAmount `json:"current"`
	Deadline string     `json:"deadline"`
	Icon     string     `json:"icon"`
}

type goalsResponse struct {
	Goals []ledger.GoalStatus `json:"goals"`
}

func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, goalsResponse{Goals: s.ledger.Goals()})

	case http.MethodPost:
		var req goalRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		target, err := req.Target.Cents()
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		var current int64
		if req.Current.raw != "" {
			if current, err = req.Current.Cents(); err != nil {
				writeError(w, http.StatusUnprocessableEntity, err)
				return
			}
		}
		var deadline core.Date
		if strings.TrimSpace(req.Deadline) != "" {
			if deadline, err = core.ParseDate(req.Deadline); err != nil {
				writeError(w, http.StatusUnprocessableEntity, core.ErrInvalidDate)
				return
			}
		}
		goal, err := s.ledger.SetGoal(r.Context(), core.Goal{
			ID:       req.ID,
			Name:     sanitizeInput(req.Name),
			Target:   core.Money{Cents: target},
			Current:  core.Money{Cents: current},
			Deadline: deadline,
			Icon:     sanitizeInput(req.Icon),
		})
		if errors.Is(err, core.ErrNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		status := http.StatusCreated
		if req.ID != "" {
			status = http.StatusOK
		}
		writeJSON(w, status, goal)

	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleGoalByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/goals/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodDelete {
		w.Header().Set("Allow", "DELETE")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	res := s.ledger.DeleteGoal(r.Context(), id)
	writeJSON(w, http.StatusOK, deleteResponse{Deleted: res.Deleted, SyncPending: res.SyncPending})
}
