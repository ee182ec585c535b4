package models

// ReceiptValue names the kind of read marker a receipt carries.
type ReceiptValue string

const (
	ReceiptRead      ReceiptValue = "messageRead"
	ReceiptDelivered ReceiptValue = "messageDelivered"
)

// Receipt acknowledges messages up to MessageIDEnd for a reader. Range
// receipts may set MessageIDStart; MessageIDEnd is always required.
type Receipt struct {
	Value          ReceiptValue `json:"value"`
	UserID         int64        `json:"user_id"`
	MessageIDStart *int64       `json:"message_id_start,omitempty"`
	MessageIDEnd   int64        `json:"message_id_end"`
}
