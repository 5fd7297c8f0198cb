package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestVerificationStatus_JSONFlatAndStructuredAgree(t *testing.T) {
	var flat, structured Worker
	require.NoError(t, json.Unmarshal([]byte(`{"id":"w1","verificationStatus":"verified"}`), &flat))
	require.NoError(t, json.Unmarshal([]byte(`{"id":"w1","verificationStatus":{"overall":"verified","documents":"ok"}}`), &structured))

	assert.Equal(t, StatusVerified, flat.VerificationStatus)
	assert.Equal(t, StatusVerified, structured.VerificationStatus)
}

func TestVerificationStatus_JSONUnrecognisedShapesAreUnknown(t *testing.T) {
	inputs := []string{
		`{"verificationStatus":null}`,
		`{}`,
		`{"verificationStatus":"approved"}`,
		`{"verificationStatus":"Verified"}`,
		`{"verificationStatus":42}`,
		`{"verificationStatus":["verified"]}`,
		`{"verificationStatus":{"state":"verified"}}`,
		`{"verificationStatus":{"overall":{"value":"verified"}}}`,
	}
	for _, in := range inputs {
		var w Worker
		require.NoError(t, json.Unmarshal([]byte(in), &w), in)
		assert.Equal(t, StatusUnknown, w.VerificationStatus, in)
	}
}

func TestVerificationStatus_JSONEncodesFlat(t *testing.T) {
	out, err := json.Marshal(struct {
		S VerificationStatus `json:"s"`
	}{S: StatusPending})
	require.NoError(t, err)
	assert.JSONEq(t, `{"s":"pending"}`, string(out))
}

func TestVerificationStatus_CategoryMapDecodesBothShapes(t *testing.T) {
	var w Worker
	in := `{"categoryVerificationStatus":{"Plumber":"verified","Electrician":{"overall":"rejected"},"Painter":"maybe"}}`
	require.NoError(t, json.Unmarshal([]byte(in), &w))

	assert.Equal(t, StatusVerified, w.CategoryVerificationStatus["Plumber"])
	assert.Equal(t, StatusRejected, w.CategoryVerificationStatus["Electrician"])
	assert.Equal(t, StatusUnknown, w.CategoryVerificationStatus["Painter"])
}

func TestVerificationStatus_BSONFlatAndStructuredAgree(t *testing.T) {
	flatDoc, err := bson.Marshal(bson.M{"id": "w1", "verificationStatus": "pending"})
	require.NoError(t, err)
	structuredDoc, err := bson.Marshal(bson.M{"id": "w1", "verificationStatus": bson.M{"overall": "pending", "note": "x"}})
	require.NoError(t, err)

	var flat, structured Worker
	require.NoError(t, bson.Unmarshal(flatDoc, &flat))
	require.NoError(t, bson.Unmarshal(structuredDoc, &structured))

	assert.Equal(t, StatusPending, flat.VerificationStatus)
	assert.Equal(t, StatusPending, structured.VerificationStatus)
}

func TestVerificationStatus_BSONUnknownValues(t *testing.T) {
	for _, v := range []any{int32(3), "archived", bson.M{"other": "verified"}, bson.A{"verified"}} {
		doc, err := bson.Marshal(bson.M{"verificationStatus": v})
		require.NoError(t, err)

		var w Worker
		require.NoError(t, bson.Unmarshal(doc, &w))
		assert.Equal(t, StatusUnknown, w.VerificationStatus)
	}
}

func TestVerificationStatus_BSONRoundTripWritesFlatString(t *testing.T) {
	doc, err := bson.Marshal(Worker{ID: "w1", VerificationStatus: StatusRejected})
	require.NoError(t, err)

	raw := bson.Raw(doc)
	val, ok := raw.Lookup("verificationStatus").StringValueOK()
	require.True(t, ok)
	assert.Equal(t, "rejected", val)
}

func TestParseVerificationStatus(t *testing.T) {
	assert.Equal(t, StatusVerified, ParseVerificationStatus("verified"))
	assert.Equal(t, StatusUnknown, ParseVerificationStatus(""))
	assert.Equal(t, StatusUnknown, ParseVerificationStatus("VERIFIED"))
	assert.True(t, StatusRejected.IsKnown())
	assert.False(t, VerificationStatus("other").IsKnown())
	assert.False(t, StatusUnknown.IsKnown())
}
