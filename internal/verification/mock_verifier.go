package verification

import (
	"context"
	"time"
)

const minDocumentNumberLength = 8

// MockVerifier accepts any document number of at least eight characters and
// returns a fixed identity
type MockVerifier struct{}

// NewMockVerifier creates a mock verifier
func NewMockVerifier() *MockVerifier {
	return &MockVerifier{}
}

func (v *MockVerifier) Verify(ctx context.Context, req Request) (*Result, error) {
	if len(req.DocumentNumber) < minDocumentNumberLength {
		return &Result{
			Success: false,
			Error:   "Invalid document number format",
			Raw:     map[string]interface{}{"success": false, "error": "Invalid document number format"},
		}, nil
	}

	dob := time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)
	fields := &ExtractedFields{
		FullName:     "John Doe",
		FathersName:  "Richard Doe",
		DateOfBirth:  &dob,
		AddressLine1: "123 Main St",
		City:         "Cityville",
		State:        "State",
		PostalCode:   "12345",
		Country:      "Country",
		Confidence:   95.5,
	}

	return &Result{
		Success: true,
		Fields:  fields,
		Raw: map[string]interface{}{
			"success":          true,
			"full_name":        fields.FullName,
			"fathers_name":     fields.FathersName,
			"date_of_birth":    "1990-01-01",
			"id_address_line1": fields.AddressLine1,
			"id_city":          fields.City,
			"id_state":         fields.State,
			"id_postal_code":   fields.PostalCode,
			"id_country":       fields.Country,
			"confidence_score": fields.Confidence,
		},
	}, nil
}
