package importer

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/swissgeo/internal/fetcher"
	"github.com/sells-group/swissgeo/internal/model"
)

// Political community (GDE) columns.
const (
	colGDENR     = "GDENR"
	colGDENAME   = "GDENAME"
	colGDENAMK   = "GDENAMK"
	colGDEKT     = "GDEKT"
	colGDEKTNA   = "GDEKTNA"
	colGDEBZNR   = "GDEBZNR"
	colGDEBZNA   = "GDEBZNA"
	colGDEMUTDAT = "GDEMUTDAT"
)

// Postal community (PLZ6) columns. GDENR and GDENAMK are shared with GDE.
const (
	colPLZ4    = "PLZ4"
	colPLZZ    = "PLZZ"
	colPLZNAMK = "PLZNAMK"
	colKTKZ    = "KTKZ"
)

var politicalColumns = []string{colGDENR, colGDENAME, colGDENAMK, colGDEKT, colGDEKTNA, colGDEBZNR, colGDEBZNA, colGDEMUTDAT}

var postalColumns = []string{colPLZ4, colPLZZ, colPLZNAMK, colKTKZ, colGDENR, colGDENAMK}

// header maps a column name to its position in a row.
type header map[string]int

func newHeader(fields []string, required []string) (header, error) {
	h := make(header, len(fields))
	for i, f := range fields {
		name := strings.ToUpper(strings.TrimSpace(f))
		if _, dup := h[name]; !dup {
			h[name] = i
		}
	}

	var missing []string
	for _, col := range required {
		if _, ok := h[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, eris.Errorf("importer: header missing columns %s", strings.Join(missing, ", "))
	}
	return h, nil
}

func (h header) get(fields []string, col string) string {
	i, ok := h[col]
	if !ok || i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[i])
}

func parsePolitical(h header, row fetcher.Row) (model.PoliticalCommunityRecord, error) {
	rec := model.PoliticalCommunityRecord{
		Number:         h.get(row.Fields, colGDENR),
		Name:           h.get(row.Fields, colGDENAME),
		ShortName:      h.get(row.Fields, colGDENAMK),
		CantonCode:     h.get(row.Fields, colGDEKT),
		CantonName:     h.get(row.Fields, colGDEKTNA),
		DistrictNumber: h.get(row.Fields, colGDEBZNR),
		DistrictName:   h.get(row.Fields, colGDEBZNA),
	}
	for _, req := range []struct{ col, val string }{
		{colGDENR, rec.Number},
		{colGDEKT, rec.CantonCode},
		{colGDEBZNR, rec.DistrictNumber},
	} {
		if req.val == "" {
			return rec, eris.Errorf("importer: row %d: empty %s", row.Num, req.col)
		}
	}

	raw := h.get(row.Fields, colGDEMUTDAT)
	lastUpdate, err := model.ParseDate(raw)
	if err != nil {
		return rec, eris.Wrapf(err, "importer: row %d: parse %s %q", row.Num, colGDEMUTDAT, raw)
	}
	rec.LastUpdate = lastUpdate

	return rec, nil
}

func parsePostal(h header, row fetcher.Row) (model.PostalCommunityRecord, error) {
	rec := model.PostalCommunityRecord{
		ZipCode:                     h.get(row.Fields, colPLZ4),
		ZipCodeAddition:             h.get(row.Fields, colPLZZ),
		Name:                        h.get(row.Fields, colPLZNAMK),
		CantonCode:                  h.get(row.Fields, colKTKZ),
		PoliticalCommunityNumber:    h.get(row.Fields, colGDENR),
		PoliticalCommunityShortName: h.get(row.Fields, colGDENAMK),
	}
	if rec.ZipCode == "" {
		return rec, eris.Errorf("importer: row %d: empty %s", row.Num, colPLZ4)
	}
	if rec.PoliticalCommunityNumber == "" {
		return rec, eris.Errorf("importer: row %d: empty %s", row.Num, colGDENR)
	}
	return rec, nil
}

func isBlankRow(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
