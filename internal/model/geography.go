package model

import "time"

// DateLayout is the layout of GDEMUTDAT values in the political community source.
const DateLayout = "2006-01-02"

// PoliticalCommunityRecord is one row of the political community (GDE) source.
type PoliticalCommunityRecord struct {
	Number         string    `json:"number"`          // GDENR
	Name           string    `json:"name"`            // GDENAME
	ShortName      string    `json:"short_name"`      // GDENAMK
	CantonCode     string    `json:"canton_code"`     // GDEKT
	CantonName     string    `json:"canton_name"`     // GDEKTNA
	DistrictNumber string    `json:"district_number"` // GDEBZNR
	DistrictName   string    `json:"district_name"`   // GDEBZNA
	LastUpdate     time.Time `json:"last_update"`     // GDEMUTDAT
}

// PostalCommunityRecord is one row of the postal community (PLZ6) source.
type PostalCommunityRecord struct {
	ZipCode                     string `json:"zip_code"`                       // PLZ4
	ZipCodeAddition             string `json:"zip_code_addition"`              // PLZZ
	Name                        string `json:"name"`                           // PLZNAMK
	CantonCode                  string `json:"canton_code"`                    // KTKZ
	PoliticalCommunityNumber    string `json:"political_community_number"`     // GDENR
	PoliticalCommunityShortName string `json:"political_community_short_name"` // GDENAMK
}

// Canton is a top-level administrative division, derived from political community records.
type Canton struct {
	Code                      string   `json:"code"`
	Name                      string   `json:"name"`
	PoliticalCommunityNumbers []string `json:"political_community_numbers"`
	DistrictNumbers           []string `json:"district_numbers"`
}

// District belongs to exactly one canton.
type District struct {
	Number                    string   `json:"number"`
	Name                      string   `json:"name"`
	CantonCode                string   `json:"canton_code"`
	PoliticalCommunityNumbers []string `json:"political_community_numbers"`
}

// PoliticalCommunity is a municipality. PostalCommunities is empty for a Kommunanz.
type PoliticalCommunity struct {
	Number            string            `json:"number"`
	Name              string            `json:"name"`
	ShortName         string            `json:"short_name"`
	CantonCode        string            `json:"canton_code"`
	DistrictNumber    string            `json:"district_number"`
	LastUpdate        time.Time         `json:"last_update"`
	PostalCommunities []PostalCommunity `json:"postal_communities,omitempty"`
}

// PostalCommunity is a named zip code entity referencing one political community.
type PostalCommunity struct {
	ZipCode                  string `json:"zip_code"`
	ZipCodeAddition          string `json:"zip_code_addition"`
	Name                     string `json:"name"`
	PoliticalCommunityNumber string `json:"political_community_number"`
}

// ParseDate parses a GDEMUTDAT value into a UTC date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}
