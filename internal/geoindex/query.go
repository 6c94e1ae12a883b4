package geoindex

import (
	"cmp"
	"maps"
	"slices"
	"time"

	"github.com/sells-group/swissgeo/internal/model"
)

// CountPoliticalCommunitiesInCanton returns the number of political
// communities in the canton with the given code (e.g. "ZH").
func (idx *Index) CountPoliticalCommunitiesInCanton(code string) (int, error) {
	c, ok := idx.cantons[code]
	if !ok {
		return 0, notFound(KindCanton, code)
	}
	return len(c.PoliticalCommunityNumbers), nil
}

// CountDistrictsInCanton returns the number of distinct districts in the canton.
func (idx *Index) CountDistrictsInCanton(code string) (int, error) {
	c, ok := idx.cantons[code]
	if !ok {
		return 0, notFound(KindCanton, code)
	}
	return len(c.DistrictNumbers), nil
}

// CountPoliticalCommunitiesInDistrict returns the number of political
// communities in the district with the given number (e.g. "101").
func (idx *Index) CountPoliticalCommunitiesInDistrict(number string) (int, error) {
	d, ok := idx.districts[number]
	if !ok {
		return 0, notFound(KindDistrict, number)
	}
	return len(d.PoliticalCommunityNumbers), nil
}

// DistrictNameForZip returns a single district name for a zip code. A zip
// code can span several districts; the lexicographically smallest name is
// returned. Use AllDistrictNamesForZip for every match.
func (idx *Index) DistrictNameForZip(zip string) (string, error) {
	names, err := idx.AllDistrictNamesForZip(zip)
	if err != nil {
		return "", err
	}
	return names[0], nil
}

// AllDistrictNamesForZip returns the sorted, distinct district names of every
// political community served by a postal community with the given zip code.
// Names are taken from each community record as is.
func (idx *Index) AllDistrictNamesForZip(zip string) ([]string, error) {
	refs, ok := idx.postalByZip[zip]
	if !ok {
		return nil, notFound(KindZipCode, zip)
	}

	names := stringSet{}
	for _, i := range refs {
		rec, ok := idx.political[idx.postal[i].PoliticalCommunityNumber]
		if !ok {
			continue
		}
		names.add(rec.DistrictName)
	}
	if len(names) == 0 {
		return nil, notFound(KindZipCode, zip)
	}
	return names.sorted(), nil
}

// LastUpdateForPostalCommunityName returns the most recent last-update date of
// all political communities served by postal communities with the given name.
// A name such as "Zürich" can serve several municipalities.
func (idx *Index) LastUpdateForPostalCommunityName(name string) (time.Time, error) {
	refs, ok := idx.postalByName[name]
	if !ok {
		return time.Time{}, notFound(KindPostalCommunity, name)
	}

	var latest time.Time
	found := false
	for _, i := range refs {
		rec, ok := idx.political[idx.postal[i].PoliticalCommunityNumber]
		if !ok {
			continue
		}
		if !found || rec.LastUpdate.After(latest) {
			latest = rec.LastUpdate
			found = true
		}
	}
	if !found {
		return time.Time{}, notFound(KindPoliticalCommunity, name)
	}
	return latest, nil
}

// CountCantons returns the number of distinct cantons.
func (idx *Index) CountCantons() int {
	return len(idx.cantons)
}

// PoliticalCommunitiesWithoutPostalCommunity returns the political communities
// no postal community references (Kommunanzen), ordered by number.
func (idx *Index) PoliticalCommunitiesWithoutPostalCommunity() []model.PoliticalCommunity {
	out := []model.PoliticalCommunity{}
	for _, number := range idx.numbers {
		if len(idx.postalByPolitical[number]) == 0 {
			out = append(out, cloneCommunity(idx.communities[number]))
		}
	}
	return out
}

// Canton returns the canton with the given code.
func (idx *Index) Canton(code string) (model.Canton, error) {
	c, ok := idx.cantons[code]
	if !ok {
		return model.Canton{}, notFound(KindCanton, code)
	}
	return cloneCanton(c), nil
}

// District returns the district with the given number.
func (idx *Index) District(number string) (model.District, error) {
	d, ok := idx.districts[number]
	if !ok {
		return model.District{}, notFound(KindDistrict, number)
	}
	return cloneDistrict(d), nil
}

// PoliticalCommunity returns the political community with the given number.
func (idx *Index) PoliticalCommunity(number string) (model.PoliticalCommunity, error) {
	pc, ok := idx.communities[number]
	if !ok {
		return model.PoliticalCommunity{}, notFound(KindPoliticalCommunity, number)
	}
	return cloneCommunity(pc), nil
}

// Cantons returns all cantons ordered by code.
func (idx *Index) Cantons() []model.Canton {
	out := make([]model.Canton, 0, len(idx.cantons))
	for _, code := range slices.Sorted(maps.Keys(idx.cantons)) {
		out = append(out, cloneCanton(idx.cantons[code]))
	}
	return out
}

// Districts returns all districts ordered by number.
func (idx *Index) Districts() []model.District {
	out := make([]model.District, 0, len(idx.districts))
	for _, number := range slices.Sorted(maps.Keys(idx.districts)) {
		out = append(out, cloneDistrict(idx.districts[number]))
	}
	return out
}

// PoliticalCommunities returns all political communities ordered by number.
func (idx *Index) PoliticalCommunities() []model.PoliticalCommunity {
	out := make([]model.PoliticalCommunity, 0, len(idx.numbers))
	for _, number := range idx.numbers {
		out = append(out, cloneCommunity(idx.communities[number]))
	}
	return out
}

// PostalCommunities returns all postal communities ordered by zip code,
// zip code addition, name and political community number.
func (idx *Index) PostalCommunities() []model.PostalCommunity {
	out := slices.Clone(idx.postal)
	slices.SortFunc(out, comparePostal)
	return out
}

// PostalCommunitiesByZip returns the postal communities sharing a zip code.
func (idx *Index) PostalCommunitiesByZip(zip string) ([]model.PostalCommunity, error) {
	refs, ok := idx.postalByZip[zip]
	if !ok {
		return nil, notFound(KindZipCode, zip)
	}
	out := make([]model.PostalCommunity, 0, len(refs))
	for _, i := range refs {
		out = append(out, idx.postal[i])
	}
	slices.SortFunc(out, comparePostal)
	return out, nil
}

// PoliticalCommunitiesByCanton returns the political communities of a canton.
func (idx *Index) PoliticalCommunitiesByCanton(code string) ([]model.PoliticalCommunity, error) {
	c, ok := idx.cantons[code]
	if !ok {
		return nil, notFound(KindCanton, code)
	}
	return idx.communitiesFor(c.PoliticalCommunityNumbers), nil
}

// PoliticalCommunitiesByDistrict returns the political communities of a district.
func (idx *Index) PoliticalCommunitiesByDistrict(number string) ([]model.PoliticalCommunity, error) {
	d, ok := idx.districts[number]
	if !ok {
		return nil, notFound(KindDistrict, number)
	}
	return idx.communitiesFor(d.PoliticalCommunityNumbers), nil
}

// DistrictsByCanton returns the districts of a canton ordered by number.
func (idx *Index) DistrictsByCanton(code string) ([]model.District, error) {
	c, ok := idx.cantons[code]
	if !ok {
		return nil, notFound(KindCanton, code)
	}
	out := make([]model.District, 0, len(c.DistrictNumbers))
	for _, number := range c.DistrictNumbers {
		out = append(out, cloneDistrict(idx.districts[number]))
	}
	return out, nil
}

func (idx *Index) communitiesFor(numbers []string) []model.PoliticalCommunity {
	out := make([]model.PoliticalCommunity, 0, len(numbers))
	for _, number := range numbers {
		out = append(out, cloneCommunity(idx.communities[number]))
	}
	return out
}

func comparePostal(a, b model.PostalCommunity) int {
	return cmp.Or(
		cmp.Compare(a.ZipCode, b.ZipCode),
		cmp.Compare(a.ZipCodeAddition, b.ZipCodeAddition),
		cmp.Compare(a.Name, b.Name),
		cmp.Compare(a.PoliticalCommunityNumber, b.PoliticalCommunityNumber),
	)
}

func cloneCanton(c model.Canton) model.Canton {
	c.PoliticalCommunityNumbers = slices.Clone(c.PoliticalCommunityNumbers)
	c.DistrictNumbers = slices.Clone(c.DistrictNumbers)
	return c
}

func cloneDistrict(d model.District) model.District {
	d.PoliticalCommunityNumbers = slices.Clone(d.PoliticalCommunityNumbers)
	return d
}

func cloneCommunity(pc model.PoliticalCommunity) model.PoliticalCommunity {
	pc.PostalCommunities = slices.Clone(pc.PostalCommunities)
	return pc
}
