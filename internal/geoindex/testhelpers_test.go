package geoindex

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/swissgeo/internal/model"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}

func politicalRecord(t *testing.T, number, name, canton, cantonName, district, districtName, lastUpdate string) model.PoliticalCommunityRecord {
	t.Helper()
	return model.PoliticalCommunityRecord{
		Number:         number,
		Name:           name,
		ShortName:      name,
		CantonCode:     canton,
		CantonName:     cantonName,
		DistrictNumber: district,
		DistrictName:   districtName,
		LastUpdate:     date(t, lastUpdate),
	}
}

func postalRecord(zip, addition, name, canton, number string) model.PostalCommunityRecord {
	return model.PostalCommunityRecord{
		ZipCode:                  zip,
		ZipCodeAddition:          addition,
		Name:                     name,
		CantonCode:               canton,
		PoliticalCommunityNumber: number,
	}
}

// fixture is a small slice of the Swiss reference data. Zip 8044 spans two
// districts, 5391 is a Kommunanz and zip 9999 only references an unknown
// political community.
func fixture(t *testing.T) ([]model.PoliticalCommunityRecord, []model.PostalCommunityRecord) {
	t.Helper()
	political := []model.PoliticalCommunityRecord{
		politicalRecord(t, "1", "Aeugst am Albis", "ZH", "Zürich", "101", "Bezirk Affoltern", "2009-01-01"),
		politicalRecord(t, "2", "Affoltern am Albis", "ZH", "Zürich", "101", "Bezirk Affoltern", "2009-01-01"),
		politicalRecord(t, "3", "Bonstetten", "ZH", "Zürich", "101", "Bezirk Affoltern", "2009-01-01"),
		politicalRecord(t, "53", "Bülach", "ZH", "Zürich", "105", "Bezirk Bülach", "2009-01-01"),
		politicalRecord(t, "54", "Dietlikon", "ZH", "Zürich", "105", "Bezirk Bülach", "2009-01-01"),
		politicalRecord(t, "66", "Opfikon", "ZH", "Zürich", "105", "Bezirk Bülach", "2009-01-01"),
		politicalRecord(t, "191", "Dübendorf", "ZH", "Zürich", "109", "Bezirk Uster", "2019-01-01"),
		politicalRecord(t, "261", "Zürich", "ZH", "Zürich", "112", "Bezirk Zürich", "2009-01-01"),
		politicalRecord(t, "3543", "Surses", "GR", "Graubünden", "1842", "Region Albula", "2016-01-01"),
		politicalRecord(t, "5136", "Onsernone", "TI", "Ticino", "503", "Distretto di Locarno", "2016-04-10"),
		politicalRecord(t, "5391", "Comunanza Cadenazzo/Monteceneri", "TI", "Ticino", "501", "Distretto di Bellinzona", "2010-04-01"),
	}
	postal := []model.PostalCommunityRecord{
		postalRecord("8914", "00", "Aeugst am Albis", "ZH", "1"),
		postalRecord("8910", "00", "Affoltern am Albis", "ZH", "2"),
		postalRecord("8906", "00", "Bonstetten", "ZH", "3"),
		postalRecord("8180", "00", "Bülach", "ZH", "53"),
		postalRecord("8305", "00", "Dietlikon", "ZH", "54"),
		postalRecord("8152", "00", "Glattbrugg", "ZH", "66"),
		postalRecord("8152", "02", "Opfikon", "ZH", "66"),
		postalRecord("8600", "00", "Dübendorf", "ZH", "191"),
		postalRecord("8044", "00", "Zürich", "ZH", "261"),
		postalRecord("8044", "00", "Zürich", "ZH", "191"),
		postalRecord("7457", "00", "Bivio", "GR", "3543"),
		postalRecord("6664", "00", "Vergeletto", "TI", "5136"),
		postalRecord("6661", "00", "Loco", "TI", "5136"),
		postalRecord("9999", "00", "Nowhere", "XX", "9999"),
		postalRecord("8180", "00", "Bülach", "ZH", "53"),
	}
	return political, postal
}

func buildFixture(t *testing.T) *Index {
	t.Helper()
	political, postal := fixture(t)
	return Build(political, postal)
}
