package dispatch

type CreateRequestBody struct {
	Location string  `json:"location" binding:"required"`
	TaskType string  `json:"taskType" binding:"required"`
	Priority string  `json:"priority" binding:"required"`
	Note     *string `json:"note"`
}

type RequestResponse struct {
	ID                    string  `json:"id"`
	RequesterID           string  `json:"requesterId"`
	RequesterName         string  `json:"requesterName"`
	Location              string  `json:"location"`
	TaskType              string  `json:"taskType"`
	Priority              string  `json:"priority"`
	Note                  *string `json:"note,omitempty"`
	Status                string  `json:"status"`
	AssignedResponderID   *string `json:"assignedResponderId,omitempty"`
	AssignedResponderName *string `json:"assignedResponderName,omitempty"`
	AcceptedAt            *string `json:"acceptedAt,omitempty"`
	CompletedAt           *string `json:"completedAt,omitempty"`
	CreatedAt             string  `json:"createdAt"`
}
