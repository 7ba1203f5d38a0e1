package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/felipeejunges/currency-converter-front/internal/api"
)

var validate = validator.New()

// RegisterForm is the registration input with its validation rules.
type RegisterForm struct {
	Email                string `validate:"required,email"`
	FirstName            string `validate:"required"`
	LastName             string `validate:"required"`
	Password             string `validate:"required,min=6"`
	PasswordConfirmation string `validate:"eqfield=Password"`
}

// registerFieldMessages maps validator field errors to the inline messages
// the form shows. Keyed by struct field, then by failed tag.
var registerFieldMessages = map[string]map[string]string{
	"Email": {
		"required": "Email is required",
		"email":    "Please enter a valid email address",
	},
	"FirstName": {"required": "First name is required"},
	"LastName":  {"required": "Last name is required"},
	"Password": {
		"required": "Password must be at least 6 characters long",
		"min":      "Password must be at least 6 characters long",
	},
	"PasswordConfirmation": {"eqfield": "Passwords do not match"},
}

// RegisterViewModel holds data for the register page.
type RegisterViewModel struct {
	Page
	Form        RegisterForm
	FieldErrors map[string]string
	Error       string
	Success     string
}

// RegisterPage renders the registration form.
func (h *Handlers) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "register.html", RegisterViewModel{
		Page: h.page("Create Account", false, false),
	})
}

// Register handles the registration form submission. A successful
// registration does not authenticate; the user is pointed at the login view.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	vm := RegisterViewModel{Page: h.page("Create Account", false, false)}

	if err := r.ParseForm(); err != nil {
		vm.Error = "Invalid form submission"
		h.render(w, r, "register.html", vm)
		return
	}

	vm.Form = RegisterForm{
		Email:                strings.TrimSpace(r.FormValue("email")),
		FirstName:            strings.TrimSpace(r.FormValue("first_name")),
		LastName:             strings.TrimSpace(r.FormValue("last_name")),
		Password:             r.FormValue("password"),
		PasswordConfirmation: r.FormValue("password_confirmation"),
	}

	if fieldErrors := validateRegisterForm(vm.Form); len(fieldErrors) > 0 {
		vm.FieldErrors = fieldErrors
		h.render(w, r, "register.html", vm)
		return
	}

	message, err := h.session.Register(r.Context(), api.RegisterRequest{
		Email:                vm.Form.Email,
		Password:             vm.Form.Password,
		PasswordConfirmation: vm.Form.PasswordConfirmation,
		FirstName:            vm.Form.FirstName,
		LastName:             vm.Form.LastName,
	})
	if err != nil {
		vm.Error = requestErrorMessage(err, "Registration failed. Please try again.")
		h.render(w, r, "register.html", vm)
		return
	}

	vm.Success = message
	vm.Form = RegisterForm{}
	h.render(w, r, "register.html", vm)
}

func validateRegisterForm(form RegisterForm) map[string]string {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	fieldErrors := make(map[string]string)
	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) {
		fieldErrors["Form"] = "Invalid form submission"
		return fieldErrors
	}
	for _, fe := range invalid {
		if _, seen := fieldErrors[fe.Field()]; seen {
			continue
		}
		if msg, ok := registerFieldMessages[fe.Field()][fe.Tag()]; ok {
			fieldErrors[fe.Field()] = msg
		} else {
			fieldErrors[fe.Field()] = "Invalid value"
		}
	}
	return fieldErrors
}
