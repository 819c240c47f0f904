package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sbilibin2017/settle-sense/internal/models"
	"github.com/shopspring/decimal"
)

// Validation messages returned to the client.
const (
	msgPersonRequired = "Person's name is required"
	msgInvalidAmount  = "Invalid amount"
	msgAmountPositive = "Amount must be positive"
	msgInvalidDir     = "Invalid direction"
	msgInvalidBody    = "Invalid request body"
)

var validate = validator.New()

// DebtRequest represents the body of create and update calls.
// Form posts use the same field names.
// swagger:model DebtRequest
type DebtRequest struct {
	// Counterparty name
	// required: true
	// default: Alex
	Person string `json:"person" validate:"required"`

	// Positive decimal amount, as a number or a string
	// required: true
	// default: 12.50
	Amount string `json:"amount"`

	// Either you_owe or they_owe
	// required: true
	// default: they_owe
	Direction string `json:"direction" validate:"oneof=you_owe they_owe"`

	// Optional free text
	Note string `json:"note"`
}

// requestError is a client mistake; its message is safe to return as is.
type requestError struct {
	msg string
}

func (e requestError) Error() string { return e.msg }

// requestValues reads a JSON object or a form body into one flat set of values.
func requestValues(r *http.Request) (url.Values, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct != "application/json" {
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		return r.Form, nil
	}

	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return nil, err
	}

	values := url.Values{}
	for k, v := range body {
		switch x := v.(type) {
		case nil:
		case string:
			values.Set(k, x)
		case json.Number:
			values.Set(k, x.String())
		case bool:
			values.Set(k, strconv.FormatBool(x))
		default:
			return nil, fmt.Errorf("field %q: unsupported value", k)
		}
	}
	return values, nil
}

// parseDebtRequest validates a create/update body. Checks run in the order the form shows
// the fields, so the first problem is the one reported.
func parseDebtRequest(r *http.Request) (models.DebtInput, error) {
	values, err := requestValues(r)
	if err != nil {
		return models.DebtInput{}, requestError{msgInvalidBody}
	}

	req := DebtRequest{
		Person:    strings.TrimSpace(values.Get("person")),
		Amount:    strings.TrimSpace(values.Get("amount")),
		Direction: strings.TrimSpace(values.Get("direction")),
		Note:      strings.TrimSpace(values.Get("note")),
	}

	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return models.DebtInput{}, err
		}
		failed := map[string]bool{}
		for _, fe := range verrs {
			failed[fe.Field()] = true
		}
		if failed["Person"] {
			return models.DebtInput{}, requestError{msgPersonRequired}
		}
		if _, err := checkAmount(req.Amount); err != nil {
			return models.DebtInput{}, err
		}
		return models.DebtInput{}, requestError{msgInvalidDir}
	}

	amount, err := checkAmount(req.Amount)
	if err != nil {
		return models.DebtInput{}, err
	}

	return models.DebtInput{
		Person:    req.Person,
		Amount:    amount,
		Direction: models.Direction(req.Direction),
		Note:      req.Note,
	}, nil
}

func checkAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, requestError{msgInvalidAmount}
	}
	if !amount.IsPositive() {
		return decimal.Zero, requestError{msgAmountPositive}
	}
	return amount, nil
}

// parseID reads the {id} route parameter.
func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	return id, err == nil && id > 0
}

// formBool reads a checkbox style value: "on", "true", "1" and friends.
func formBool(s string) bool {
	s = strings.TrimSpace(s)
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	switch strings.ToLower(s) {
	case "on", "yes":
		return true
	}
	return false
}
