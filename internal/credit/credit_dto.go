package credit

type CreditSummaryResponse struct {
	ResponderID     string  `json:"responderId"`
	ResponderName   string  `json:"responderName,omitempty"`
	CompletedCount  int64   `json:"completedCount"`
	LastCompletedAt *string `json:"lastCompletedAt,omitempty"`
}
