package transaction

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/transaction/entity"
	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/web"
	"github.com/ovaphlow/pitchfork/service-ledger-go/pkg/utilities"
)

// createRequest is the POST body. Amount accepts a JSON number or string.
type createRequest struct {
	Type             string           `json:"type"`
	Amount           *decimal.Decimal `json:"amount"`
	CategoryID       string           `json:"categoryId"`
	SubcategoryID    *string          `json:"subcategoryId"`
	Vendor           *string          `json:"vendor"`
	Description      *string          `json:"description"`
	TransactionDate  string           `json:"transactionDate"`
	IsRecurring      bool             `json:"isRecurring"`
	RecurringPattern *string          `json:"recurringPattern"`
}

// updateRequest is the PUT body; absent fields are unchanged.
type updateRequest struct {
	Type             *string          `json:"type"`
	Amount           *decimal.Decimal `json:"amount"`
	CategoryID       *string          `json:"categoryId"`
	SubcategoryID    *string          `json:"subcategoryId"`
	Vendor           *string          `json:"vendor"`
	Description      *string          `json:"description"`
	TransactionDate  *string          `json:"transactionDate"`
	IsRecurring      *bool            `json:"isRecurring"`
	RecurringPattern *string          `json:"recurringPattern"`
}

const maxDescription = 500

func (req createRequest) validate() (Input, []web.FieldError) {
	var errs []web.FieldError
	in := Input{
		Type:             entity.Type(strings.ToUpper(strings.TrimSpace(req.Type))),
		CategoryID:       strings.TrimSpace(req.CategoryID),
		SubcategoryID:    blankToNil(req.SubcategoryID),
		Vendor:           blankToNil(req.Vendor),
		Description:      blankToNil(req.Description),
		IsRecurring:      req.IsRecurring,
		RecurringPattern: blankToNil(req.RecurringPattern),
	}
	if !in.Type.Valid() {
		errs = append(errs, web.FieldError{Field: "type", Message: "must be INCOME or EXPENSE"})
	}
	if req.Amount == nil {
		errs = append(errs, web.FieldError{Field: "amount", Message: "is required"})
	} else if msg := checkAmount(*req.Amount); msg != "" {
		errs = append(errs, web.FieldError{Field: "amount", Message: msg})
	} else {
		in.Amount = *req.Amount
	}
	if !utilities.IsRecordID(in.CategoryID) {
		errs = append(errs, web.FieldError{Field: "categoryId", Message: "must be a valid id"})
	}
	if in.SubcategoryID != nil && !utilities.IsRecordID(*in.SubcategoryID) {
		errs = append(errs, web.FieldError{Field: "subcategoryId", Message: "must be a valid id"})
	}
	if in.Description != nil && len(*in.Description) > maxDescription {
		errs = append(errs, web.FieldError{Field: "description", Message: "is too long"})
	}
	d, err := web.ParseDate(req.TransactionDate, false)
	if err != nil {
		errs = append(errs, web.FieldError{Field: "transactionDate", Message: web.DateFormatMessage})
	}
	in.TransactionDate = d
	return in, errs
}

func (req updateRequest) validate() (Patch, []web.FieldError) {
	var errs []web.FieldError
	p := Patch{
		SubcategoryID:    blankToNil(req.SubcategoryID),
		Vendor:           blankToNil(req.Vendor),
		Description:      blankToNil(req.Description),
		IsRecurring:      req.IsRecurring,
		RecurringPattern: blankToNil(req.RecurringPattern),
	}
	if req.Type != nil {
		t := entity.Type(strings.ToUpper(strings.TrimSpace(*req.Type)))
		if !t.Valid() {
			errs = append(errs, web.FieldError{Field: "type", Message: "must be INCOME or EXPENSE"})
		}
		p.Type = &t
	}
	if req.Amount != nil {
		if msg := checkAmount(*req.Amount); msg != "" {
			errs = append(errs, web.FieldError{Field: "amount", Message: msg})
		}
		p.Amount = req.Amount
	}
	if req.CategoryID != nil {
		c := strings.TrimSpace(*req.CategoryID)
		if !utilities.IsRecordID(c) {
			errs = append(errs, web.FieldError{Field: "categoryId", Message: "must be a valid id"})
		}
		p.CategoryID = &c
	}
	if p.SubcategoryID != nil && !utilities.IsRecordID(*p.SubcategoryID) {
		errs = append(errs, web.FieldError{Field: "subcategoryId", Message: "must be a valid id"})
	}
	if p.Description != nil && len(*p.Description) > maxDescription {
		errs = append(errs, web.FieldError{Field: "description", Message: "is too long"})
	}
	if req.TransactionDate != nil {
		d, err := web.ParseDate(*req.TransactionDate, false)
		if err != nil {
			errs = append(errs, web.FieldError{Field: "transactionDate", Message: web.DateFormatMessage})
		}
		p.TransactionDate = &d
	}
	return p, errs
}

func checkAmount(a decimal.Decimal) string {
	if !a.IsPositive() {
		return "must be greater than zero"
	}
	if a.Exponent() < -2 && !a.Equal(a.Round(2)) {
		return "must have at most two decimal places"
	}
	return ""
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
