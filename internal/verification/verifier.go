package verification

import (
	"context"
	"time"
)

// Request describes the document to verify
type Request struct {
	DocumentType   string `json:"document_type"`
	DocumentNumber string `json:"document_number"`
	FrontImageURL  string `json:"document_image_front"`
	BackImageURL   string `json:"document_image_back,omitempty"`
}

// ExtractedFields are the identity fields read from the document
type ExtractedFields struct {
	FullName     string     `json:"full_name"`
	FathersName  string     `json:"fathers_name"`
	DateOfBirth  *time.Time `json:"-"`
	AddressLine1 string     `json:"id_address_line1"`
	AddressLine2 string     `json:"id_address_line2,omitempty"`
	City         string     `json:"id_city"`
	State        string     `json:"id_state"`
	PostalCode   string     `json:"id_postal_code"`
	Country      string     `json:"id_country"`
	Confidence   float64    `json:"confidence_score"`
}

// Result is the outcome of one verification attempt
type Result struct {
	Success bool
	Fields  *ExtractedFields
	Error   string
	// Raw is the provider payload kept for audit
	Raw map[string]interface{}
}

// Verifier checks identity documents. A returned error means the provider
// could not be reached; a failed check is a Result with Success false.
type Verifier interface {
	Verify(ctx context.Context, req Request) (*Result, error)
}
