package http

import (
	"fmt"
	"net/http"
	"time"

	"compactbudget/internal/core"
)

const dateLayout = "2006-01-02"

type earningsRequest struct {
	Earnings int64 `json:"earnings"`
}

type categoryRequest struct {
	Section string `json:"section"`
	Name    string `json:"name"`
	Budget  int64  `json:"budget"`
}

type deleteCategoryRequest struct {
	Section string `json:"section"`
	Name    string `json:"name"`
}

type expenseRequest struct {
	Category string `json:"category"`
	Amount   int64  `json:"amount"`
	Date     string `json:"date,omitempty"`
	Note     string `json:"note,omitempty"`
}

type spentRequest struct {
	Category string `json:"category"`
	Total    int64  `json:"total"`
}

type statusResponse struct {
	Status string `json:"status"`
}

var okResponse = statusResponse{Status: "ok"}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	totals, err := s.budget.Summary(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

func (s *Server) handleWeekly(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	weeks, err := s.budget.WeeklyPlan(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, weeks)
}

func (s *Server) handleEarnings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req earningsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid request body", core.ErrInvalidInput))
		return
	}

	if err := s.budget.SetEarnings(r.Context(), req.Earnings); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req categoryRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid request body", core.ErrInvalidInput))
			return
		}
		if err := s.budget.AddCategory(r.Context(), req.Section, req.Name, req.Budget); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, okResponse)
	case http.MethodDelete:
		var req deleteCategoryRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid request body", core.ErrInvalidInput))
			return
		}
		if err := s.budget.DeleteCategory(r.Context(), req.Section, req.Name); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, okResponse)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleCategoryBudget(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid request body", core.ErrInvalidInput))
		return
	}

	if err := s.budget.SetBudget(r.Context(), req.Section, req.Name, req.Budget); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse)
}

func (s *Server) handleCategorySpent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req spentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid request body", core.ErrInvalidInput))
		return
	}

	if err := s.budget.SetCategorySpent(r.Context(), req.Category, req.Total); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse)
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid request body", core.ErrInvalidInput))
		return
	}

	var date time.Time
	if req.Date != "" {
		parsed, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: date must be formatted as %s", core.ErrInvalidInput, dateLayout))
			return
		}
		date = parsed
	}

	if err := s.budget.AddExpense(r.Context(), req.Category, req.Amount, date, req.Note); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, okResponse)
}
