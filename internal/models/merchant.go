// internal/models/merchant.go
package models

// SourceFormat identifies the submission template a record was parsed from.
type SourceFormat string

const (
	SourceSquareImport     SourceFormat = "square-import"
	SourceManualSubmission SourceFormat = "manual-submission"
	SourceUnknown          SourceFormat = "unknown"
)

// MerchantRecord is the normalized view of one merchant submission.
// Latitude and Longitude are set together or not at all; a record never
// carries only one coordinate.
type MerchantRecord struct {
	Name           string       `json:"name"`
	Address        string       `json:"address,omitempty"`
	Latitude       *float64     `json:"latitude,omitempty"`
	Longitude      *float64     `json:"longitude,omitempty"`
	Category       string       `json:"category,omitempty"`
	PaymentMethods []string     `json:"payment_methods,omitempty"`
	Website        string       `json:"website,omitempty"`
	Phone          string       `json:"phone,omitempty"`
	ContactEmail   string       `json:"contact_email,omitempty"`
	OpeningHours   string       `json:"opening_hours,omitempty"`
	Twitter        string       `json:"twitter,omitempty"`
	Instagram      string       `json:"instagram,omitempty"`
	Facebook       string       `json:"facebook,omitempty"`
	Source         SourceFormat `json:"source"`
	RawBody        string       `json:"-"`
}

// HasCoordinates reports whether both coordinates are present.
func (m *MerchantRecord) HasCoordinates() bool {
	return m.Latitude != nil && m.Longitude != nil
}

// SetCoordinates stores the pair atomically.
func (m *MerchantRecord) SetCoordinates(lat, lon float64) {
	m.Latitude = &lat
	m.Longitude = &lon
}

// HasSocialHandles reports whether any social handle was extracted.
func (m *MerchantRecord) HasSocialHandles() bool {
	return m.Twitter != "" || m.Instagram != "" || m.Facebook != ""
}
