package projects

import (
	"fmt"
	"net/http"
	"strings"

	"obra_tracker/pkg/api/response"
	"obra_tracker/pkg/core/finance"
	"obra_tracker/pkg/core/models"
	"obra_tracker/pkg/core/utils"

	"github.com/gorilla/mux"
)

func (h *Handler) HandleListExpenses(w http.ResponseWriter, r *http.Request) {
	p, _, ok := h.project(w, r)
	if !ok {
		return
	}
	response.RespondWithJSON(w, http.StatusOK, p.Expenses)
}

func (h *Handler) HandleCreateExpense(w http.ResponseWriter, r *http.Request) {
	p, userID, ok := h.project(w, r)
	if !ok {
		return
	}
	var req ExpenseRequest
	if !response.DecodeAndValidate(w, r, &req) {
		return
	}
	date := h.today()
	if req.Date != nil && !req.Date.IsZero() {
		date = *req.Date
	}
	e := &finance.Expense{
		ProjectID:   p.ID,
		Description: strings.TrimSpace(req.Description),
		Value:       req.Value,
		Date:        date,
		UserID:      userID,
		Macro:       strings.TrimSpace(req.Macro),
		SubMacro:    strings.TrimSpace(req.SubMacro),
	}
	if err := h.Stores.Expenses.CreateExpense(r.Context(), e); err != nil {
		response.HandleAppError(w, err)
		return
	}
	h.audit(r.Context(), p.ID, userID, models.AuditExpenseCreated,
		fmt.Sprintf("Expense %q of %.2f on %s", e.Description, e.Value, e.Date))
	response.RespondWithJSON(w, http.StatusCreated, e)
}

func (h *Handler) HandleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	p, userID, ok := h.project(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["expenseId"]
	var found *finance.Expense
	for i := range p.Expenses {
		if p.Expenses[i].ID == id {
			found = &p.Expenses[i]
			break
		}
	}
	if found == nil {
		response.HandleAppError(w, fmt.Errorf("expense %s: %w", id, utils.ErrNotFound))
		return
	}
	if err := h.Stores.Expenses.DeleteExpense(r.Context(), p.ID, id); err != nil {
		response.HandleAppError(w, err)
		return
	}
	h.audit(r.Context(), p.ID, userID, models.AuditExpenseDeleted,
		fmt.Sprintf("Expense %q of %.2f deleted", found.Description, found.Value))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleGetBudget(w http.ResponseWriter, r *http.Request) {
	p, _, ok := h.project(w, r)
	if !ok {
		return
	}
	lines, err := h.Stores.Expenses.ListBudgetLines(r.Context(), p.ID)
	if err != nil {
		response.HandleAppError(w, err)
		return
	}
	response.RespondWithJSON(w, http.StatusOK, BudgetResponse{Lines: lines, Report: finance.RollupBudget(p.Expenses, lines)})
}

// HandleReplaceBudget swaps every planned line of the project for the request's lines.
func (h *Handler) HandleReplaceBudget(w http.ResponseWriter, r *http.Request) {
	p, userID, ok := h.project(w, r)
	if !ok {
		return
	}
	var req BudgetRequest
	if !response.DecodeAndValidate(w, r, &req) {
		return
	}
	lines := make([]finance.BudgetLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, finance.BudgetLine{
			Macro:    strings.TrimSpace(l.Macro),
			SubMacro: strings.TrimSpace(l.SubMacro),
			Planned:  l.Planned,
		})
	}
	if err := h.Stores.Expenses.ReplaceBudgetLines(r.Context(), p.ID, lines); err != nil {
		response.HandleAppError(w, err)
		return
	}
	h.audit(r.Context(), p.ID, userID, models.AuditBudgetReplaced, fmt.Sprintf("Budget replaced with %d lines", len(lines)))
	response.RespondWithJSON(w, http.StatusOK, BudgetResponse{Lines: lines, Report: finance.RollupBudget(p.Expenses, lines)})
}
