package helpers

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querylens-org/querylens/dataset"
)

// ============================================================================
// CSV HELPER TESTS
// ============================================================================

var readingsCSV = []byte(`timestamp,obs_kw,windspeed_100m,station,is_anomaly
2024-03-01,120.5,7.2,north,false
2024-03-02,,6.1,south,true
2024-03-03,132.8,8.4,"east, upper",false
`)

func TestParseCSV(t *testing.T) {
	d, err := ParseCSV(readingsCSV)
	require.NoError(t, err)

	assert.Equal(t, []string{"timestamp", "obs_kw", "windspeed_100m", "station", "is_anomaly"}, d.Columns)
	require.Equal(t, 3, d.Len())

	first := d.First()
	assert.Equal(t, "2024-03-01", first["timestamp"])
	assert.Equal(t, 120.5, first["obs_kw"])
	assert.Equal(t, false, first["is_anomaly"])

	// Empty cells become nil, not empty strings.
	assert.Nil(t, d.Rows[1]["obs_kw"])
	assert.Equal(t, true, d.Rows[1]["is_anomaly"])

	// Quoted commas survive.
	assert.Equal(t, "east, upper", d.Rows[2]["station"])
}

func TestParseCSVHeaderOnly(t *testing.T) {
	d, err := ParseCSV([]byte("a,b,c\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, d.Columns)
	assert.True(t, d.Empty())
}

func TestParseCSVNoHeader(t *testing.T) {
	_, err := ParseCSV(nil)
	assert.Error(t, err)
}

func TestParseCSVTrimsPaddedCells(t *testing.T) {
	d, err := ParseCSV([]byte("station,obs_kw\n\" west \",\" 12.5 \"\nwest,13.0\n"))
	require.NoError(t, err)

	// Padded and bare spellings land on the same value, so they group
	// together downstream.
	assert.Equal(t, "west", d.First()["station"])
	assert.Equal(t, "west", d.Rows[1]["station"])
	assert.Equal(t, 12.5, d.First()["obs_kw"])
}

func TestWriteCSVDownloadForm(t *testing.T) {
	d := dataset.New([]string{"name", "value", "ok"}, []dataset.Row{
		{"name": `say "hi"`, "value": 12.5, "ok": true},
		{"name": "plain", "value": nil, "ok": false},
	})

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, d))

	want := "name,value,ok\r\n" +
		"\"say \"\"hi\"\"\",12.5,true\r\n" +
		"\"plain\",,false\r\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSVEmptyDataset(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, dataset.New(nil, nil)))
	assert.Empty(t, buf.String())
}

func TestCSVRoundTrip(t *testing.T) {
	d, err := ParseCSV(readingsCSV)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, d))

	back, err := ParseCSV(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, d.Columns, back.Columns)
	require.Equal(t, d.Len(), back.Len())
	assert.Equal(t, d.First()["obs_kw"], back.First()["obs_kw"])
	assert.Equal(t, d.First()["station"], back.First()["station"])
}
