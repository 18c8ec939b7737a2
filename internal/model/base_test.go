package model

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	var payload struct {
		DOB      *Date `json:"dob"`
		FollowUp *Date `json:"followUp"`
		Missing  *Date `json:"missing"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"dob":"1990-04-12","followUp":"2024-03-01T15:30:00Z"}`), &payload))

	require.NotNil(t, payload.DOB)
	assert.Equal(t, "1990-04-12", payload.DOB.String())
	assert.Equal(t, "2024-03-01", payload.FollowUp.String())
	assert.Nil(t, payload.Missing)

	out, err := json.Marshal(payload.DOB)
	require.NoError(t, err)
	assert.Equal(t, `"1990-04-12"`, string(out))

	var bad Date
	assert.Error(t, json.Unmarshal([]byte(`"12/04/1990"`), &bad))
}

func TestDateRange(t *testing.T) {
	d, err := ParseDate("2024-05-10")
	require.NoError(t, err)

	start, end := d.Range()
	assert.Equal(t, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 5, 11, 0, 0, 0, 0, time.UTC), end)
}

func TestJSONListScan(t *testing.T) {
	var meds JSONList[Medicine]
	require.NoError(t, meds.Scan([]byte(`[{"name":"Amoxicillin","dosage":"500mg","frequency":"3x daily","duration":"7 days"}]`)))
	require.Len(t, meds, 1)
	assert.Equal(t, "Amoxicillin", meds[0].Name)

	value, err := meds.Value()
	require.NoError(t, err)
	assert.Contains(t, string(value.([]byte)), `"dosage":"500mg"`)

	require.NoError(t, meds.Scan(nil))
	assert.Nil(t, meds)

	value, err = meds.Value()
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestDateRangeString(t *testing.T) {
	assert.Equal(t, "All time", DateRange{}.String())

	start, _ := ParseDate("2024-01-01")
	end, _ := ParseDate("2024-01-31")
	r := DateRange{Start: &start, End: &end}
	assert.True(t, r.Bounded())
	assert.Equal(t, "2024-01-01 to 2024-01-31", r.String())

	from, to := r.Bounds()
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), to)
	assert.Equal(t, start.Time, from)
}

func TestPageOffset(t *testing.T) {
	tests := []struct {
		page   Page
		offset int
	}{
		{Page{Page: 1, Limit: 20}, 0},
		{Page{Page: 3, Limit: 20}, 40},
		{Page{Page: 0, Limit: 20}, 0},
		{Page{Page: 922337203685477581, Limit: 100}, math.MaxInt32},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.offset, tt.page.Offset(), "%+v", tt.page)
	}
}

func TestDateUnmarshalParam(t *testing.T) {
	var d Date
	require.NoError(t, d.UnmarshalParam("2024-07-09"))
	assert.Equal(t, "2024-07-09", d.String())

	require.NoError(t, d.UnmarshalParam(""))
	assert.True(t, d.IsZero())

	assert.Error(t, d.UnmarshalParam("09/07/2024"))
}
