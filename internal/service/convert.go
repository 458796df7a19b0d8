package service

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/billminder/internal/alerts"
	"github.com/mmynk/billminder/internal/bills"
	"github.com/mmynk/billminder/internal/models"
	"github.com/mmynk/billminder/pkg/billapi"
)

func toAPIBill(b models.Bill) billapi.Bill {
	out := billapi.Bill{
		ID:             b.ID,
		Name:           b.Name,
		Amount:         b.Amount.StringFixed(2),
		DueDate:        b.DueDate.String(),
		Status:         string(b.Status),
		AutoPayEnabled: b.AutoPayEnabled,
		Provider:       b.Provider,
		AccountNumber:  b.AccountNumber,
	}
	if b.LastPaidDate != nil {
		out.LastPaidDate = b.LastPaidDate.String()
	}
	return out
}

func toAPIBills(list []models.Bill) []billapi.Bill {
	out := make([]billapi.Bill, len(list))
	for i, b := range list {
		out[i] = toAPIBill(b)
	}
	return out
}

func toAPIAlerts(list []alerts.Alert) []billapi.Alert {
	out := make([]billapi.Alert, len(list))
	for i, al := range list {
		out[i] = billapi.Alert{
			Bill:        toAPIBill(al.Bill),
			Tier:        string(al.Tier),
			Message:     al.Message,
			DaysUntil:   int32(al.DaysUntil),
			DaysOverdue: int32(al.DaysOverdue),
		}
	}
	return out
}

// fromAPIBill parses the wire form. Field errors are *bills.ValidationError.
func fromAPIBill(b billapi.Bill) (models.Bill, error) {
	amount, err := parseAmount(b.Amount)
	if err != nil {
		return models.Bill{}, err
	}
	due, err := parseDate("due_date", b.DueDate)
	if err != nil {
		return models.Bill{}, err
	}

	out := models.Bill{
		ID:             b.ID,
		Name:           b.Name,
		Amount:         amount,
		DueDate:        due,
		Status:         models.Status(strings.ToLower(strings.TrimSpace(b.Status))),
		AutoPayEnabled: b.AutoPayEnabled,
		Provider:       b.Provider,
		AccountNumber:  b.AccountNumber,
	}
	if strings.TrimSpace(b.LastPaidDate) != "" {
		paid, err := parseDate("last_paid_date", b.LastPaidDate)
		if err != nil {
			return models.Bill{}, err
		}
		out.LastPaidDate = &paid
	}
	return out, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	if s == "" {
		return decimal.Decimal{}, &bills.ValidationError{Field: "amount", Reason: "amount is required"}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, &bills.ValidationError{Field: "amount", Reason: "not a number: " + s}
	}
	return d, nil
}

func parseDate(field, s string) (models.Date, error) {
	if strings.TrimSpace(s) == "" {
		return models.Date{}, &bills.ValidationError{Field: field, Reason: "date is required"}
	}
	d, err := models.ParseDate(s)
	if err != nil {
		return models.Date{}, &bills.ValidationError{Field: field, Reason: err.Error()}
	}
	return d, nil
}

func fromCreate(req *billapi.CreateBillRequest, amount decimal.Decimal, due models.Date) models.Bill {
	return models.Bill{
		Name:           req.Name,
		Amount:         amount,
		DueDate:        due,
		Status:         models.StatusPending,
		AutoPayEnabled: req.AutoPayEnabled,
		Provider:       req.Provider,
		AccountNumber:  req.AccountNumber,
	}
}
