package lead

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawRecordUnmarshalKeepsPayload(t *testing.T) {
	t.Parallel()

	payload := `{"company_name":"Acme","location":"Austin, TX 78701","category":"software",` +
		`"specialties":"cloud, data ,","rating":4.5}`
	var rec RawRecord
	require.NoError(t, json.Unmarshal([]byte(payload), &rec))

	assert.Equal(t, "Acme", rec.CompanyName)
	assert.Equal(t, StringList{"cloud", "data"}, rec.Specialties)
	assert.JSONEq(t, payload, string(rec.Raw))

	c := rec.Company()
	assert.Equal(t, "Austin, TX 78701", c.Address)
	assert.Equal(t, "software", c.Industry)
	assert.JSONEq(t, payload, string(c.Raw))
}

func TestRawRecordSpecialtiesArray(t *testing.T) {
	t.Parallel()

	var rec RawRecord
	require.NoError(t, json.Unmarshal([]byte(`{"company_name":"X","specialties":["a","b"]}`), &rec))
	assert.Equal(t, StringList{"a", "b"}, rec.Specialties)
}

func TestRawRecordValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		rec     RawRecord
		wantErr bool
	}{
		{name: "named", rec: RawRecord{CompanyName: "Acme"}},
		{name: "empty", rec: RawRecord{}, wantErr: true},
		{name: "blank", rec: RawRecord{CompanyName: "   "}, wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.rec.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidRecord))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestCompanyDefaultsRawPayload(t *testing.T) {
	t.Parallel()

	c := RawRecord{CompanyName: "Acme", Address: "1 Main St", Location: "ignored"}.Company()
	assert.Equal(t, "1 Main St", c.Address)
	assert.Equal(t, json.RawMessage("{}"), c.Raw)
}
