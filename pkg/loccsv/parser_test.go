package loccsv

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exampleCSV = `commit,datetime,file,line,type,depth,length,author,date,time,timezone
a,2024-01-01T10:15,x.js,1,js,1,10,kim,2024-01-01,10:15,
a,2024-01-01T10:15,x.js,2,js,1,5,kim,2024-01-01,10:15,
b,2024-01-02T08:00,y.css,1,css,0,20,kim,2024-01-02,08:00,
`

func TestParseFile(t *testing.T) {
	parsed, err := ParseFile("testdata/loc.csv")
	require.NoError(t, err)

	require.Len(t, parsed.Rows, 10)
	assert.Equal(t, "testdata/loc.csv", parsed.FilePath)
	assert.Positive(t, parsed.FileSize)

	first := parsed.Rows[0]
	assert.Equal(t, "9f2c1e0", first.CommitID)
	assert.Equal(t, "index.html", first.File)
	assert.Equal(t, "html", first.Type)
	assert.Equal(t, 15, first.Length)
	assert.Equal(t, 9, first.Datetime.Hour(), "hour must stay in the author's offset")

	_, offset := first.Day.Zone()
	assert.Equal(t, -8*3600, offset)
	assert.Equal(t, 0, first.Day.Hour())
}

func TestParseFile_InvalidPath(t *testing.T) {
	_, err := ParseFile("nonexistent.csv")
	assert.Error(t, err)
}

func TestParse_PreservesSourceOrder(t *testing.T) {
	rows, err := Parse(strings.NewReader(exampleCSV))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"a", "a", "b"}, []string{rows[0].CommitID, rows[1].CommitID, rows[2].CommitID})
	assert.Equal(t, time.Date(2024, 1, 1, 10, 15, 0, 0, time.UTC), rows[0].Datetime)
	assert.Equal(t, 2, rows[1].Line)
}

func TestParse_Empty(t *testing.T) {
	rows, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = Parse(strings.NewReader("commit,file,line,type,depth,length,author,date,time,timezone,datetime\n"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestParse_MissingColumn(t *testing.T) {
	_, err := Parse(strings.NewReader("commit,file,line\na,x.js,1\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumn))
}

func TestParse_MalformedRowRejectsLoad(t *testing.T) {
	_, err := ParseFile("testdata/malformed.csv")
	require.Error(t, err)

	var rowErr *RowError
	require.True(t, errors.As(err, &rowErr), "want RowError, got %v", err)
	assert.Equal(t, 3, rowErr.Line)
	assert.Equal(t, ColLine, rowErr.Column)
	assert.Equal(t, "two", rowErr.Value)
}

func TestParse_RowErrors(t *testing.T) {
	header := "commit,file,line,type,depth,length,author,date,time,timezone,datetime\n"
	tests := []struct {
		name   string
		row    string
		column string
	}{
		{"negative depth", "a,x.js,1,js,-1,10,kim,2024-01-01,10:15,,2024-01-01T10:15", ColDepth},
		{"zero line", "a,x.js,0,js,1,10,kim,2024-01-01,10:15,,2024-01-01T10:15", ColLine},
		{"bad length", "a,x.js,1,js,1,1.5,kim,2024-01-01,10:15,,2024-01-01T10:15", ColLength},
		{"bad datetime", "a,x.js,1,js,1,10,kim,2024-01-01,10:15,,yesterday", ColDatetime},
		{"bad timezone", "a,x.js,1,js,1,10,kim,2024-01-01,10:15,PST8,2024-01-01T10:15", ColTimezone},
		{"bad date", "a,x.js,1,js,1,10,kim,01/01/2024,10:15,,2024-01-01T10:15", ColDate},
		{"missing commit", ",x.js,1,js,1,10,kim,2024-01-01,10:15,,2024-01-01T10:15", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(header + tt.row + "\n"))
			var rowErr *RowError
			require.True(t, errors.As(err, &rowErr), "want RowError, got %v", err)
			assert.Equal(t, tt.column, rowErr.Column)
			assert.Equal(t, 2, rowErr.Line)
		})
	}
}

func TestParseDatetime(t *testing.T) {
	pst := time.FixedZone("-08:00", -8*3600)

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-01T10:15:00-08:00", time.Date(2024, 1, 1, 10, 15, 0, 0, pst)},
		{"2024-01-01T10:15:00Z", time.Date(2024, 1, 1, 10, 15, 0, 0, time.UTC)},
		{"2024-01-01T10:15-08:00", time.Date(2024, 1, 1, 10, 15, 0, 0, pst)},
		{"2024-01-01T10:15", time.Date(2024, 1, 1, 10, 15, 0, 0, pst)},
		{"2024-01-01 10:15:30", time.Date(2024, 1, 1, 10, 15, 30, 0, pst)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDatetime(tt.in, pst)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v want %v", got, tt.want)
		})
	}
}

func TestParseOffset(t *testing.T) {
	for _, tz := range []string{"-08:00", "+0530", "+02", "Z", ""} {
		_, err := ParseOffset(tz)
		assert.NoError(t, err, tz)
	}

	loc, err := ParseOffset("+05:30")
	require.NoError(t, err)
	_, offset := time.Date(2024, 1, 1, 0, 0, 0, 0, loc).Zone()
	assert.Equal(t, 5*3600+30*60, offset)

	_, err = ParseOffset("Europe/Paris")
	assert.Error(t, err)
}
