package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/felipeejunges/currency-converter-front/internal/models"
)

// ConversionsViewModel is the data passed to the history view template.
type ConversionsViewModel struct {
	Page
	Currencies  []models.Currency
	Conversions []models.Conversion
	Error       string
	CurrentPage int
	MaxPage     int
	PrevPage    int
	NextPage    int
}

// HasPrev reports whether the previous-page control is enabled.
func (vm ConversionsViewModel) HasPrev() bool { return vm.CurrentPage > 1 }

// HasNext reports whether the next-page control is enabled.
func (vm ConversionsViewModel) HasNext() bool { return vm.CurrentPage < vm.MaxPage }

// Conversions renders one page of conversion history. Every visit
// re-fetches; no page is cached across navigations.
func (h *Handlers) Conversions(w http.ResponseWriter, r *http.Request) {
	page := 1
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 1 {
		page = p
	}

	vm := ConversionsViewModel{
		Page:        h.page("Conversion History", true, false),
		CurrentPage: page,
		MaxPage:     1,
		PrevPage:    page - 1,
		NextPage:    page + 1,
	}

	currencies, err := h.session.Client().Currencies(r.Context())
	if err != nil {
		slog.Warn("currency list fetch failed", "error", err)
		vm.Error = "Failed to load currencies"
	} else {
		vm.Currencies = currencies
	}

	history, err := h.session.Client().Conversions(r.Context(), page)
	if err != nil {
		slog.Warn("conversion history fetch failed", "page", page, "error", err)
		vm.Error = "Failed to load conversion history"
	} else {
		vm.Conversions = history.Conversions
		if history.Pagination.Pages > 0 {
			vm.MaxPage = history.Pagination.Pages
		}
	}

	h.render(w, r, "conversions.html", vm)
}
