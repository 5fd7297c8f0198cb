package models

import (
	"bytes"
	"encoding/json"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// VerificationStatus is the canonical admin-approval state of a worker or of one of
// its service categories.
type VerificationStatus string

const (
	StatusUnknown  VerificationStatus = ""
	StatusPending  VerificationStatus = "pending"
	StatusVerified VerificationStatus = "verified"
	StatusRejected VerificationStatus = "rejected"
)

// ParseVerificationStatus maps a raw value onto the closed enum. Anything that is not
// one of the three known literals becomes StatusUnknown.
func ParseVerificationStatus(raw string) VerificationStatus {
	switch VerificationStatus(raw) {
	case StatusPending, StatusVerified, StatusRejected:
		return VerificationStatus(raw)
	default:
		return StatusUnknown
	}
}

// IsKnown reports whether s is pending, verified or rejected.
func (s VerificationStatus) IsKnown() bool {
	return ParseVerificationStatus(string(s)) != StatusUnknown
}

// statusRecord is the structured shape some records carry instead of a flat string.
type statusRecord struct {
	Overall json.RawMessage `json:"overall"`
}

// UnmarshalJSON accepts either "verified" or {"overall": "verified", ...}.
// Malformed or unexpected shapes decode to StatusUnknown rather than failing.
func (s *VerificationStatus) UnmarshalJSON(data []byte) error {
	*s = StatusUnknown
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var flat string
	if err := json.Unmarshal(data, &flat); err == nil {
		*s = ParseVerificationStatus(flat)
		return nil
	}

	var rec statusRecord
	if err := json.Unmarshal(data, &rec); err != nil || len(rec.Overall) == 0 {
		return nil
	}
	var overall string
	if err := json.Unmarshal(rec.Overall, &overall); err == nil {
		*s = ParseVerificationStatus(overall)
	}
	return nil
}

// MarshalJSON always writes the flat form.
func (s VerificationStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

// UnmarshalBSONValue mirrors UnmarshalJSON for documents read from Mongo, where older
// records store the status as a sub-document with an "overall" field.
func (s *VerificationStatus) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	*s = StatusUnknown
	raw := bson.RawValue{Type: t, Value: data}

	switch t {
	case bsontype.String:
		if flat, ok := raw.StringValueOK(); ok {
			*s = ParseVerificationStatus(flat)
		}
	case bsontype.EmbeddedDocument:
		doc, ok := raw.DocumentOK()
		if !ok {
			return nil
		}
		overall, err := doc.LookupErr("overall")
		if err != nil {
			return nil
		}
		if flat, ok := overall.StringValueOK(); ok {
			*s = ParseVerificationStatus(flat)
		}
	}
	return nil
}

// MarshalBSONValue always writes the flat form.
func (s VerificationStatus) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(string(s))
}
