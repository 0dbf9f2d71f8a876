package model

import "time"

// DocStatus is the processing state of a document.
type DocStatus string

const (
	StatusPending   DocStatus = "Pending"
	StatusProcessed DocStatus = "Processed"
	StatusError     DocStatus = "Error"
)

// LineItem is a single extracted invoice line.
type LineItem struct {
	Item  string  `json:"item"`
	Qty   int     `json:"qty"`
	Price float64 `json:"price"`
}

// Document represents an uploaded invoice and its extraction state.
// This is a pure domain model with no database-specific dependencies or tags.
// The extracted fields (vendor, invoice id, date, total, line items) are
// optional and only populated once extraction or manual review fills them in.
type Document struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"ownerId"`
	Status      DocStatus  `json:"status"`
	Vendor      string     `json:"vendor,omitempty"`
	InvoiceID   string     `json:"invoiceId,omitempty"`
	Date        string     `json:"date,omitempty"`
	Total       *float64   `json:"total,omitempty"`
	LineItems   []LineItem `json:"lineItems,omitempty"`
	ErrorReason string     `json:"errorReason,omitempty"`
	StoragePath string     `json:"storagePath,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
