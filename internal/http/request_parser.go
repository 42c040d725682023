// Request decoding and validation for the JSON API. The stores assume
// validated input; this file is where that validation happens.

package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"bilancio/internal/core"
)

const maxBodyBytes = 64 << 10 // 64KB

// decodeJSON reads the request body into dst with a size cap.
func decodeJSON(r *http.Request, dst any) *rejection {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		return badRequest("invalid JSON body")
	}
	return nil
}

// sanitizeInput trims whitespace and strips control characters.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

type transactionRequest struct {
	Amount      json.Number `json:"amount"`
	Date        string      `json:"date"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
}

// toDraft validates the request and converts it to a store draft.
func (req transactionRequest) toDraft() (core.TransactionDraft, *rejection) {
	var draft core.TransactionDraft

	amount, err := core.ParseMoney(req.Amount.String())
	if err != nil {
		return draft, unprocessable("invalid amount: expected a decimal number")
	}
	if amount.Cents == 0 {
		return draft, unprocessable("amount cannot be zero")
	}

	date, err := core.ParseDate(req.Date)
	if err != nil {
		return draft, unprocessable("invalid date: expected YYYY-MM-DD")
	}

	description := sanitizeInput(req.Description)
	if len(description) < 3 {
		return draft, unprocessable("description must be at least 3 characters")
	}

	category := core.Category(sanitizeInput(req.Category))
	if category != "" && !category.IsValid() {
		return draft, unprocessable("unknown category: " + string(category))
	}

	draft = core.TransactionDraft{
		Amount:      amount,
		Date:        date,
		Description: description,
		Category:    category,
	}
	return draft, nil
}

type transactionPatchRequest struct {
	Amount      *json.Number `json:"amount"`
	Date        *string      `json:"date"`
	Description *string      `json:"description"`
	Category    *string      `json:"category"`
}

// toPatch validates the present fields and converts them to a store
// patch; absent fields stay untouched.
func (req transactionPatchRequest) toPatch() (core.TransactionPatch, *rejection) {
	var patch core.TransactionPatch

	if req.Amount != nil {
		amount, err := core.ParseMoney(req.Amount.String())
		if err != nil || amount.Cents == 0 {
			return patch, unprocessable("invalid amount: expected a non-zero decimal number")
		}
		patch.Amount = &amount
	}
	if req.Date != nil {
		date, err := core.ParseDate(*req.Date)
		if err != nil {
			return patch, unprocessable("invalid date: expected YYYY-MM-DD")
		}
		patch.Date = &date
	}
	if req.Description != nil {
		description := sanitizeInput(*req.Description)
		if len(description) < 3 {
			return patch, unprocessable("description must be at least 3 characters")
		}
		patch.Description = &description
	}
	if req.Category != nil {
		category := core.Category(sanitizeInput(*req.Category))
		if category != "" && !category.IsValid() {
			return patch, unprocessable("unknown category: " + string(category))
		}
		patch.Category = &category
	}

	if patch.Amount == nil && patch.Date == nil && patch.Description == nil && patch.Category == nil {
		return patch, unprocessable("patch contains no fields")
	}
	return patch, nil
}

type budgetRequest struct {
	Month    string      `json:"month"`
	Category string      `json:"category"`
	Amount   json.Number `json:"amount"`
}

// toUpsert validates the request into upsert arguments.
func (req budgetRequest) toUpsert() (core.MonthKey, core.Category, core.Money, *rejection) {
	month, err := core.ParseMonthKey(req.Month)
	if err != nil {
		return "", "", core.Money{}, unprocessable("invalid month: expected YYYY-MM")
	}

	category := core.Category(sanitizeInput(req.Category))
	if !category.IsValid() {
		return "", "", core.Money{}, unprocessable("unknown category: " + string(category))
	}

	amount, perr := core.ParseMoney(req.Amount.String())
	if perr != nil {
		return "", "", core.Money{}, unprocessable("invalid amount: expected a decimal number")
	}
	if amount.Cents < 0 {
		return "", "", core.Money{}, unprocessable("budget amount cannot be negative")
	}

	return month, category, amount, nil
}
