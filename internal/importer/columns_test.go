package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/swissgeo/internal/fetcher"
)

func TestNewHeader(t *testing.T) {
	h, err := newHeader([]string{" plz4 ", "PLZZ", "PLZNAMK", "KTKZ", "GDENR", "GDENAMK", "EXTRA"}, postalColumns)
	require.NoError(t, err)
	assert.Equal(t, 0, h[colPLZ4])
	assert.Equal(t, 6, h["EXTRA"])
}

func TestNewHeader_MissingColumns(t *testing.T) {
	_, err := newHeader([]string{"PLZ4", "PLZNAMK", "GDENR"}, postalColumns)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "header missing columns PLZZ, KTKZ, GDENAMK")
}

func TestHeaderGet_ShortRow(t *testing.T) {
	h, err := newHeader(postalColumns, postalColumns)
	require.NoError(t, err)
	assert.Equal(t, "8305", h.get([]string{" 8305 "}, colPLZ4))
	assert.Empty(t, h.get([]string{"8305"}, colGDENAMK))
	assert.Empty(t, h.get([]string{"8305"}, "UNKNOWN"))
}

func TestParsePolitical(t *testing.T) {
	h, err := newHeader(politicalColumns, politicalColumns)
	require.NoError(t, err)

	rec, err := parsePolitical(h, fetcher.Row{Num: 2, Fields: []string{
		"5136", "Onsernone", "Onsernone", "TI", "Ticino", "503", "Distretto di Locarno", "2016-04-10",
	}})
	require.NoError(t, err)
	assert.Equal(t, "5136", rec.Number)
	assert.Equal(t, "TI", rec.CantonCode)
	assert.Equal(t, "Ticino", rec.CantonName)
	assert.Equal(t, "503", rec.DistrictNumber)
	assert.Equal(t, "Distretto di Locarno", rec.DistrictName)
	assert.Equal(t, "2016-04-10", rec.LastUpdate.Format("2006-01-02"))
}

func TestParsePolitical_BadDate(t *testing.T) {
	h, err := newHeader(politicalColumns, politicalColumns)
	require.NoError(t, err)

	_, err = parsePolitical(h, fetcher.Row{Num: 7, Fields: []string{
		"1", "Aeugst am Albis", "Aeugst am Albis", "ZH", "Zürich", "101", "Bezirk Affoltern", "01.01.2009",
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `importer: row 7: parse GDEMUTDAT "01.01.2009"`)
}

func TestParsePolitical_EmptyKey(t *testing.T) {
	h, err := newHeader(politicalColumns, politicalColumns)
	require.NoError(t, err)

	_, err = parsePolitical(h, fetcher.Row{Num: 3, Fields: []string{
		"1", "Aeugst am Albis", "Aeugst am Albis", "", "Zürich", "101", "Bezirk Affoltern", "2009-01-01",
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "importer: row 3: empty GDEKT")
}

func TestParsePostal(t *testing.T) {
	h, err := newHeader(postalColumns, postalColumns)
	require.NoError(t, err)

	rec, err := parsePostal(h, fetcher.Row{Num: 2, Fields: []string{"8152", "02", "Opfikon", "ZH", "66", "Opfikon"}})
	require.NoError(t, err)
	assert.Equal(t, "8152", rec.ZipCode)
	assert.Equal(t, "02", rec.ZipCodeAddition)
	assert.Equal(t, "Opfikon", rec.Name)
	assert.Equal(t, "ZH", rec.CantonCode)
	assert.Equal(t, "66", rec.PoliticalCommunityNumber)
	assert.Equal(t, "Opfikon", rec.PoliticalCommunityShortName)

	_, err = parsePostal(h, fetcher.Row{Num: 4, Fields: []string{"8152", "02", "Opfikon", "ZH", "", "Opfikon"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "importer: row 4: empty GDENR")
}

func TestIsBlankRow(t *testing.T) {
	assert.True(t, isBlankRow(nil))
	assert.True(t, isBlankRow([]string{"", "  "}))
	assert.False(t, isBlankRow([]string{"", "x"}))
}
