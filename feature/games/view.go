package games

import (
	"sort"
	"strings"
)

// Catalog is the games split by type, with the genres of each type.
type Catalog struct {
	Lists  map[string][]Game
	Genres map[string][]string
}

func resort(data map[int64]Game) Catalog {
	c := Catalog{Lists: map[string][]Game{}, Genres: map[string][]string{}}
	genres := map[string]map[string]bool{}
	for _, g := range data {
		if len(g.Records) > 1 {
			records := append([]Record(nil), g.Records...)
			sort.SliceStable(records, func(i, j int) bool { return records[i].rank() < records[j].rank() })
			g.Records = records
		}
		b := g.bucket()
		c.Lists[b] = append(c.Lists[b], g)
		if genres[b] == nil {
			genres[b] = map[string]bool{}
		}
		genres[b][g.Genre] = true
	}

	for b, list := range c.Lists {
		sort.Slice(list, func(i, j int) bool {
			ki, kj := sortKey(list[i]), sortKey(list[j])
			if ki != kj {
				return ki < kj
			}
			if ni, nj := strings.ToLower(list[i].Name), strings.ToLower(list[j].Name); ni != nj {
				return ni < nj
			}
			return list[i].ID < list[j].ID
		})
		names := make([]string, 0, len(genres[b]))
		for g := range genres[b] {
			names = append(names, g)
		}
		sort.Strings(names)
		c.Genres[b] = names
	}
	return c
}

func sortKey(g Game) string {
	if g.Subname != nil && *g.Subname != "" {
		return strings.ToLower(*g.Subname)
	}
	return strings.ToLower(g.Name)
}
