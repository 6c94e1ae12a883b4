// Package geoindex builds an immutable in-memory index over the political and
// postal community datasets and answers canton, district and zip code queries.
package geoindex

import (
	"maps"
	"slices"

	"go.uber.org/zap"

	"github.com/sells-group/swissgeo/internal/model"
)

// Index is built once by Build and is read-only afterwards, so it is safe
// for concurrent use by any number of readers.
type Index struct {
	political   map[string]model.PoliticalCommunityRecord
	numbers     []string // sorted keys of political
	communities map[string]model.PoliticalCommunity

	cantons   map[string]model.Canton
	districts map[string]model.District

	postal            []model.PostalCommunity
	postalByZip       map[string][]int
	postalByName      map[string][]int
	postalByPolitical map[string][]int
	dangling          int
}

// Stats summarizes the size of a built index.
type Stats struct {
	Cantons                  int `json:"cantons" yaml:"cantons"`
	Districts                int `json:"districts" yaml:"districts"`
	PoliticalCommunities     int `json:"political_communities" yaml:"political_communities"`
	PostalCommunities        int `json:"postal_communities" yaml:"postal_communities"`
	Kommunanzen              int `json:"kommunanzen" yaml:"kommunanzen"`
	DanglingPostalReferences int `json:"dangling_postal_references" yaml:"dangling_postal_references"`
}

type stringSet map[string]struct{}

func (s stringSet) add(v string) { s[v] = struct{}{} }

func (s stringSet) sorted() []string { return slices.Sorted(maps.Keys(s)) }

type cantonGroup struct {
	name        string
	communities stringSet
	districts   stringSet
}

type districtGroup struct {
	name        string
	canton      string
	communities stringSet
}

// Build indexes the raw records. Political communities are keyed by number
// (last record wins on duplicates); identical postal records collapse into one.
// Postal records referencing an unknown political community are kept and only
// skipped when a query dereferences them.
func Build(political []model.PoliticalCommunityRecord, postal []model.PostalCommunityRecord) *Index {
	log := zap.L().With(zap.String("component", "geoindex"))

	idx := &Index{
		political:         make(map[string]model.PoliticalCommunityRecord, len(political)),
		communities:       make(map[string]model.PoliticalCommunity, len(political)),
		cantons:           make(map[string]model.Canton),
		districts:         make(map[string]model.District),
		postalByZip:       make(map[string][]int),
		postalByName:      make(map[string][]int),
		postalByPolitical: make(map[string][]int),
	}

	for _, rec := range political {
		if _, dup := idx.political[rec.Number]; dup {
			log.Warn("duplicate political community number, keeping last record",
				zap.String("number", rec.Number),
			)
		}
		idx.political[rec.Number] = rec
	}
	idx.numbers = slices.Sorted(maps.Keys(idx.political))

	idx.buildPostal(postal)
	idx.buildGroups()

	for _, number := range idx.numbers {
		rec := idx.political[number]
		var pcs []model.PostalCommunity
		for _, i := range idx.postalByPolitical[number] {
			pcs = append(pcs, idx.postal[i])
		}
		slices.SortFunc(pcs, comparePostal)
		idx.communities[number] = model.PoliticalCommunity{
			Number:            rec.Number,
			Name:              rec.Name,
			ShortName:         rec.ShortName,
			CantonCode:        rec.CantonCode,
			DistrictNumber:    rec.DistrictNumber,
			LastUpdate:        rec.LastUpdate,
			PostalCommunities: pcs,
		}
	}

	if idx.dangling > 0 {
		log.Warn("postal communities reference unknown political communities",
			zap.Int("count", idx.dangling),
		)
	}
	log.Debug("index built",
		zap.Int("cantons", len(idx.cantons)),
		zap.Int("districts", len(idx.districts)),
		zap.Int("political_communities", len(idx.political)),
		zap.Int("postal_communities", len(idx.postal)),
	)

	return idx
}

func (idx *Index) buildPostal(postal []model.PostalCommunityRecord) {
	seen := make(map[model.PostalCommunity]struct{}, len(postal))
	for _, rec := range postal {
		pc := model.PostalCommunity{
			ZipCode:                  rec.ZipCode,
			ZipCodeAddition:          rec.ZipCodeAddition,
			Name:                     rec.Name,
			PoliticalCommunityNumber: rec.PoliticalCommunityNumber,
		}
		if _, dup := seen[pc]; dup {
			continue
		}
		seen[pc] = struct{}{}

		i := len(idx.postal)
		idx.postal = append(idx.postal, pc)
		idx.postalByZip[pc.ZipCode] = append(idx.postalByZip[pc.ZipCode], i)
		idx.postalByName[pc.Name] = append(idx.postalByName[pc.Name], i)
		idx.postalByPolitical[pc.PoliticalCommunityNumber] = append(idx.postalByPolitical[pc.PoliticalCommunityNumber], i)

		if _, ok := idx.political[pc.PoliticalCommunityNumber]; !ok {
			idx.dangling++
		}
	}
}

// buildGroups derives cantons and districts. Names come from the first member
// in number order; members are not reconciled against each other.
func (idx *Index) buildGroups() {
	cantons := make(map[string]*cantonGroup)
	districts := make(map[string]*districtGroup)

	for _, number := range idx.numbers {
		rec := idx.political[number]

		c, ok := cantons[rec.CantonCode]
		if !ok {
			c = &cantonGroup{name: rec.CantonName, communities: stringSet{}, districts: stringSet{}}
			cantons[rec.CantonCode] = c
		}
		c.communities.add(number)
		c.districts.add(rec.DistrictNumber)

		d, ok := districts[rec.DistrictNumber]
		if !ok {
			d = &districtGroup{name: rec.DistrictName, canton: rec.CantonCode, communities: stringSet{}}
			districts[rec.DistrictNumber] = d
		}
		d.communities.add(number)
	}

	for code, c := range cantons {
		idx.cantons[code] = model.Canton{
			Code:                      code,
			Name:                      c.name,
			PoliticalCommunityNumbers: c.communities.sorted(),
			DistrictNumbers:           c.districts.sorted(),
		}
	}
	for number, d := range districts {
		idx.districts[number] = model.District{
			Number:                    number,
			Name:                      d.name,
			CantonCode:                d.canton,
			PoliticalCommunityNumbers: d.communities.sorted(),
		}
	}
}

// Stats returns entity counts.
func (idx *Index) Stats() Stats {
	return Stats{
		Cantons:                  len(idx.cantons),
		Districts:                len(idx.districts),
		PoliticalCommunities:     len(idx.political),
		PostalCommunities:        len(idx.postal),
		Kommunanzen:              len(idx.PoliticalCommunitiesWithoutPostalCommunity()),
		DanglingPostalReferences: idx.dangling,
	}
}
