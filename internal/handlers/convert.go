package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/felipeejunges/currency-converter-front/internal/api"
	"github.com/felipeejunges/currency-converter-front/internal/models"
)

// ConvertForm holds the conversion form fields as submitted, so a rejected
// submission re-renders with the user's values intact.
type ConvertForm struct {
	FromCurrency string
	ToCurrency   string
	Amount       string
	ForceRefresh bool
}

// ConvertViewModel is the data passed to the convert view template.
type ConvertViewModel struct {
	Page
	Currencies []models.Currency
	Form       ConvertForm
	Result     *models.Conversion
	Error      string
	Success    string
	// ActiveTab selects which pane narrow viewports show: "convert" or
	// "result". Wide viewports show both.
	ActiveTab string
}

// ConvertPage renders the conversion form with a fresh currency list.
func (h *Handlers) ConvertPage(w http.ResponseWriter, r *http.Request) {
	vm := ConvertViewModel{
		Page:      h.page("Currency Converter", false, true),
		ActiveTab: "convert",
	}

	currencies, err := h.session.Client().Currencies(r.Context())
	if err != nil {
		slog.Warn("currency list fetch failed", "error", err)
		vm.Error = "Failed to load currencies"
	} else {
		vm.Currencies = currencies
		if len(currencies) >= 2 {
			vm.Form.FromCurrency = currencies[0].Code
			vm.Form.ToCurrency = currencies[1].Code
		}
	}

	h.render(w, r, "convert.html", vm)
}

// Convert handles a conversion submission. Validation runs first and
// short-circuits on the first failure; the conversion endpoint is only
// called once all checks pass.
func (h *Handlers) Convert(w http.ResponseWriter, r *http.Request) {
	vm := ConvertViewModel{
		Page:      h.page("Currency Converter", false, true),
		ActiveTab: "convert",
	}

	if err := r.ParseForm(); err != nil {
		vm.Error = "Invalid form submission"
		h.renderConvert(w, r, vm)
		return
	}

	vm.Form = ConvertForm{
		FromCurrency: r.FormValue("from_currency"),
		ToCurrency:   r.FormValue("to_currency"),
		Amount:       strings.TrimSpace(r.FormValue("amount")),
		ForceRefresh: r.FormValue("force_refresh") != "",
	}

	if vm.Form.FromCurrency == "" || vm.Form.ToCurrency == "" || vm.Form.Amount == "" {
		vm.Error = "Please fill in all required fields"
		h.renderConvert(w, r, vm)
		return
	}
	if vm.Form.FromCurrency == vm.Form.ToCurrency {
		vm.Error = "Please select different currencies for conversion"
		h.renderConvert(w, r, vm)
		return
	}
	amount, err := strconv.ParseFloat(vm.Form.Amount, 64)
	if err != nil || amount <= 0 {
		vm.Error = "Please enter a valid amount"
		h.renderConvert(w, r, vm)
		return
	}

	result, err := h.session.Client().Convert(r.Context(), api.ConversionRequest{
		FromCurrency: vm.Form.FromCurrency,
		ToCurrency:   vm.Form.ToCurrency,
		FromValue:    amount,
		ForceRefresh: vm.Form.ForceRefresh,
	})
	if err != nil {
		vm.Error = requestErrorMessage(err, "Conversion failed. Please try again.")
		h.renderConvert(w, r, vm)
		return
	}

	vm.Result = result
	vm.Success = "Currency converted successfully!"
	vm.Form.Amount = ""
	vm.ActiveTab = "result"
	h.renderConvert(w, r, vm)
}

// renderConvert fills in the currency list before rendering. The list is
// fetched per render rather than cached; a failure here must not mask a
// validation or conversion message already set on the view model.
func (h *Handlers) renderConvert(w http.ResponseWriter, r *http.Request, vm ConvertViewModel) {
	currencies, err := h.session.Client().Currencies(r.Context())
	if err != nil {
		slog.Warn("currency list fetch failed", "error", err)
		if vm.Error == "" {
			vm.Error = "Failed to load currencies"
		}
	} else {
		vm.Currencies = currencies
	}
	h.render(w, r, "convert.html", vm)
}
