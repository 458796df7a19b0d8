// Package billapi defines the wire messages of the billminder.v1 services.
//
// Amounts travel as decimal strings ("50.00") and dates as YYYY-MM-DD so
// that clients never round money through floats. List fields are always
// present, never null.
package billapi

// Bill is the wire form of a tracked bill.
type Bill struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Amount         string `json:"amount"`
	DueDate        string `json:"due_date"`
	Status         string `json:"status"`
	AutoPayEnabled bool   `json:"auto_pay_enabled"`
	Provider       string `json:"provider"`
	AccountNumber  string `json:"account_number,omitempty"`
	LastPaidDate   string `json:"last_paid_date,omitempty"`
}

// Alert is one bill placed in an urgency tier.
type Alert struct {
	Bill        Bill   `json:"bill"`
	Tier        string `json:"tier"`
	Message     string `json:"message"`
	DaysUntil   int32  `json:"days_until"`
	DaysOverdue int32  `json:"days_overdue"`
}

type CreateBillRequest struct {
	Name           string `json:"name"`
	Amount         string `json:"amount"`
	DueDate        string `json:"due_date"`
	Provider       string `json:"provider"`
	AccountNumber  string `json:"account_number,omitempty"`
	AutoPayEnabled bool   `json:"auto_pay_enabled"`
}

type CreateBillResponse struct {
	Bill Bill `json:"bill"`
}

type GetBillRequest struct {
	BillID string `json:"bill_id"`
}

type GetBillResponse struct {
	Bill Bill `json:"bill"`
}

// UpdateBillRequest replaces every field of the bill except its id.
type UpdateBillRequest struct {
	BillID string `json:"bill_id"`
	Bill   Bill   `json:"bill"`
}

type UpdateBillResponse struct {
	Bill Bill `json:"bill"`
}

type DeleteBillRequest struct {
	BillID string `json:"bill_id"`
}

type DeleteBillResponse struct{}

type ListBillsRequest struct{}

type ListBillsResponse struct {
	Bills []Bill `json:"bills"`
}

// ListUpcomingRequest asks for pending bills due within Days days.
// A nil Days uses the server default.
type ListUpcomingRequest struct {
	Days *int32 `json:"days,omitempty"`
}

type ListUpcomingResponse struct {
	Days  int32  `json:"days"`
	Bills []Bill `json:"bills"`
}

type ListOverdueRequest struct{}

type ListOverdueResponse struct {
	Bills []Bill `json:"bills"`
}

type GetAlertsRequest struct{}

type GetAlertsResponse struct {
	Overdue  []Alert `json:"overdue"`
	Critical []Alert `json:"critical"`
	Urgent   []Alert `json:"urgent"`
	Upcoming []Alert `json:"upcoming"`
	Summary  string  `json:"summary"`
}

type PayBillRequest struct {
	BillID string `json:"bill_id"`
}

type PayBillResponse struct {
	Bill Bill `json:"bill"`
}

// PayBillByNameRequest pays the single unpaid bill whose name matches Name.
type PayBillByNameRequest struct {
	Name string `json:"name"`
}

// PayBillByNameResponse carries either the paid bill or, when the name was
// ambiguous, the candidates to choose from.
type PayBillByNameResponse struct {
	Bill       *Bill  `json:"bill,omitempty"`
	Candidates []Bill `json:"candidates"`
}

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

// TargetBillID reports the bill a request acts on, for logging.
func (r *GetBillRequest) TargetBillID() string    { return r.BillID }
func (r *UpdateBillRequest) TargetBillID() string { return r.BillID }
func (r *DeleteBillRequest) TargetBillID() string { return r.BillID }
func (r *PayBillRequest) TargetBillID() string    { return r.BillID }
