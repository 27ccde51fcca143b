package usecase

// Published to RabbitMQ after a confirmed submission.
type OrderSubmittedMsg struct {
	ConversationID string `json:"conversationId"`
	OrderID        string `json:"orderId"`
	ConfirmationID string `json:"confirmationId"`
	TotalCents     int64  `json:"totalCents"`
	Currency       string `json:"currency"`
}

// Sent by the fulfillment system on Kafka as an order moves through the
// kitchen (e.g. "PREPARING", "READY", "COMPLETED", "CANCELLED").
type OrderStatusChangedMsg struct {
	ConversationID string `json:"conversationId"`
	OrderID        string `json:"orderId"`
	Status         string `json:"status"`
}
