package importer

import (
	"archive/zip"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/swissgeo/internal/config"
)

func testdataConfig() config.DataConfig {
	return config.DataConfig{
		Dir:       "testdata",
		Political: config.SourceConfig{Format: config.FormatCSV, Path: "GDE.csv", Delimiter: ","},
		Postal:    config.SourceConfig{Format: config.FormatCSV, Path: "PLZ6.csv", Delimiter: ","},
	}
}

func TestLoad(t *testing.T) {
	ds, err := Load(context.Background(), testdataConfig())
	require.NoError(t, err)
	require.Len(t, ds.Political, 11)
	require.Len(t, ds.Postal, 15)

	first := ds.Political[0]
	assert.Equal(t, "1", first.Number)
	assert.Equal(t, "Aeugst am Albis", first.Name)
	assert.Equal(t, "Zürich", first.CantonName)
	assert.Equal(t, "Bezirk Affoltern", first.DistrictName)

	kommunanz := ds.Political[10]
	assert.Equal(t, "5391", kommunanz.Number)
	assert.Equal(t, "Comunanza Cadenazzo/Monteceneri", kommunanz.Name)
	assert.Equal(t, "2010-04-01", kommunanz.LastUpdate.Format("2006-01-02"))

	last := ds.Postal[14]
	assert.Equal(t, "9999", last.ZipCode)
	assert.Equal(t, "XX", last.CantonCode)
}

func TestLoad_PostalErrorIsLabelled(t *testing.T) {
	cfg := testdataConfig()
	cfg.Postal.Path = "missing.csv"

	_, err := Load(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "importer: postal communities")
	assert.Contains(t, err.Error(), "missing.csv")
}

func TestLoadPolitical_SemicolonWindows1252(t *testing.T) {
	dir := t.TempDir()
	content := "GDENR;GDENAME;GDENAMK;GDEKT;GDEKTNA;GDEBZNR;GDEBZNA;GDEMUTDAT\r\n" +
		"191;D\xfcbendorf;D\xfcbendorf;ZH;Z\xfcrich;109;Bezirk Uster;2019-01-01\r\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gde.csv"), []byte(content), 0o644))

	recs, err := LoadPolitical(context.Background(), dir, config.SourceConfig{
		Format:    config.FormatCSV,
		Path:      "gde.csv",
		Delimiter: ";",
		Encoding:  "windows-1252",
	})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Dübendorf", recs[0].Name)
	assert.Equal(t, "Zürich", recs[0].CantonName)
}

func TestLoadPostal_SkipsBlankRows(t *testing.T) {
	dir := t.TempDir()
	content := "PLZ4,PLZZ,PLZNAMK,KTKZ,GDENR,GDENAMK\n8305,00,Dietlikon,ZH,54,Dietlikon\n,,,,,\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plz.csv"), []byte(content), 0o644))

	recs, err := LoadPostal(context.Background(), dir, config.SourceConfig{Path: "plz.csv"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Dietlikon", recs[0].Name)
}

func TestLoadPostal_CommentAndLazyQuotes(t *testing.T) {
	dir := t.TempDir()
	content := "# PLZ6 extract\n" +
		"PLZ4,PLZZ,PLZNAMK,KTKZ,GDENR,GDENAMK\n" +
		"# Zürich\n" +
		"8044,00,Zürich \"Kreis 7\",ZH,261,Zürich\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plz.csv"), []byte(content), 0o644))

	_, err := LoadPostal(context.Background(), dir, config.SourceConfig{Path: "plz.csv", Comment: "#"})
	require.Error(t, err, "bare quote needs lazy_quotes")

	recs, err := LoadPostal(context.Background(), dir, config.SourceConfig{
		Path:       "plz.csv",
		Comment:    "#",
		LazyQuotes: true,
	})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, `Zürich "Kreis 7"`, recs[0].Name)
	assert.Equal(t, "261", recs[0].PoliticalCommunityNumber)
}

func TestLoadPostal_HeaderOnly(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plz.csv"), []byte("PLZ4,PLZZ,PLZNAMK,KTKZ,GDENR,GDENAMK\n"), 0o644))

	recs, err := LoadPostal(context.Background(), dir, config.SourceConfig{Path: "plz.csv"})
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestLoadPostal_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plz.csv"), nil, 0o644))

	_, err := LoadPostal(context.Background(), dir, config.SourceConfig{Path: "plz.csv"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no header row")
}

func TestLoadPolitical_MissingColumn(t *testing.T) {
	_, err := LoadPolitical(context.Background(), "testdata", config.SourceConfig{Path: "PLZ6.csv"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "header missing columns")
}

func TestLoadPolitical_BadRowStopsLoad(t *testing.T) {
	dir := t.TempDir()
	var content string
	content += "GDENR,GDENAME,GDENAMK,GDEKT,GDEKTNA,GDEBZNR,GDEBZNA,GDEMUTDAT\n"
	for range 200 {
		content += "1,Aeugst am Albis,Aeugst am Albis,ZH,Zürich,101,Bezirk Affoltern,2009-01-01\n"
	}
	content += "2,Affoltern am Albis,Affoltern am Albis,ZH,Zürich,101,Bezirk Affoltern,not-a-date\n"
	for range 200 {
		content += "3,Bonstetten,Bonstetten,ZH,Zürich,101,Bezirk Affoltern,2009-01-01\n"
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gde.csv"), []byte(content), 0o644))

	_, err := LoadPolitical(context.Background(), dir, config.SourceConfig{Path: "gde.csv"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "importer: row 202")
}

func TestLoadPolitical_XLSX(t *testing.T) {
	f := xlsx.NewFile()
	_, err := f.AddSheet("Info")
	require.NoError(t, err)
	sheet, err := f.AddSheet("GDE")
	require.NoError(t, err)
	for _, cells := range [][]string{
		politicalColumns,
		{"3543", "Surses", "Surses", "GR", "Graubünden", "1842", "Region Albula", "2016-01-01"},
	} {
		row := sheet.AddRow()
		for _, c := range cells {
			row.AddCell().SetString(c)
		}
	}
	dir := t.TempDir()
	require.NoError(t, f.Save(filepath.Join(dir, "gde.xlsx")))

	recs, err := LoadPolitical(context.Background(), dir, config.SourceConfig{
		Format: config.FormatXLSX,
		Path:   "gde.xlsx",
		Sheet:  "GDE",
	})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Surses", recs[0].Name)
	assert.Equal(t, "1842", recs[0].DistrictNumber)
}

func TestLoadPolitical_XLSXDateCell(t *testing.T) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("GDE")
	require.NoError(t, err)
	header := sheet.AddRow()
	for _, c := range politicalColumns {
		header.AddCell().SetString(c)
	}
	row := sheet.AddRow()
	for _, c := range []string{"5136", "Onsernone", "Onsernone", "TI", "Ticino", "503", "Distretto di Locarno"} {
		row.AddCell().SetString(c)
	}
	row.AddCell().SetDate(time.Date(2016, time.April, 10, 0, 0, 0, 0, time.UTC))

	dir := t.TempDir()
	require.NoError(t, f.Save(filepath.Join(dir, "gde.xlsx")))

	recs, err := LoadPolitical(context.Background(), dir, config.SourceConfig{
		Format: config.FormatXLSX,
		Path:   "gde.xlsx",
	})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, time.Date(2016, time.April, 10, 0, 0, 0, 0, time.UTC), recs[0].LastUpdate)
}

func TestLoadPostal_SQLite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "geo.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	for _, stmt := range []string{
		`CREATE TABLE postal_communities (PLZ4 TEXT, PLZZ TEXT, PLZNAMK TEXT, KTKZ TEXT, GDENR INTEGER, GDENAMK TEXT)`,
		`INSERT INTO postal_communities VALUES ('6664', '00', 'Vergeletto', 'TI', 5136, 'Onsernone')`,
		`INSERT INTO postal_communities VALUES ('6661', '00', 'Loco', 'TI', 5136, NULL)`,
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())

	recs, err := LoadPostal(context.Background(), dir, config.SourceConfig{
		Format: config.FormatSQLite,
		Path:   "geo.db",
		Table:  "postal_communities",
	})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Vergeletto", recs[0].Name)
	assert.Equal(t, "5136", recs[0].PoliticalCommunityNumber)
	assert.Empty(t, recs[1].PoliticalCommunityShortName)
}

func TestLoadPostal_ZIPEntry(t *testing.T) {
	dir := t.TempDir()
	plz, err := os.ReadFile(filepath.Join("testdata", "PLZ6.csv"))
	require.NoError(t, err)

	zf, err := os.Create(filepath.Join(dir, "plz.zip"))
	require.NoError(t, err)
	w := zip.NewWriter(zf)
	fw, err := w.Create("data/PLZ6.csv")
	require.NoError(t, err)
	_, err = fw.Write(plz)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, zf.Close())

	recs, err := LoadPostal(context.Background(), dir, config.SourceConfig{
		Path:  "plz.zip",
		Entry: "PLZ6.csv",
	})
	require.NoError(t, err)
	assert.Len(t, recs, 15)
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	_, err := LoadPostal(context.Background(), "testdata", config.SourceConfig{Format: "json", Path: "PLZ6.csv"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `importer: unsupported format "json"`)
}

func TestLoad_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, testdataConfig())
	require.Error(t, err)
}
