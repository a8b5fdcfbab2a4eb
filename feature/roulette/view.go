package roulette

import "sort"

// Entry is an award as listed, pointing at its description by index.
type Entry struct {
	Award
	DescriptionIndex *int `json:"description_index,omitempty"`
}

// Wheel is the roulette as shown: rarities from most to least likely,
// awards by name and the distinct descriptions they share.
type Wheel struct {
	Rarities     []string `json:"rarities"`
	Awards       []Entry  `json:"awards"`
	Descriptions []string `json:"descriptions"`
}

func resort(data map[int64]Award) Wheel {
	w := Wheel{Rarities: []string{}, Awards: make([]Entry, 0, len(data)), Descriptions: []string{}}

	seen := map[string]bool{}
	for _, a := range data {
		if !seen[a.Rarity] {
			seen[a.Rarity] = true
			w.Rarities = append(w.Rarities, a.Rarity)
		}
		w.Awards = append(w.Awards, Entry{Award: a})
	}
	sort.Slice(w.Rarities, func(i, j int) bool {
		pi, _ := percent(w.Rarities[i])
		pj, _ := percent(w.Rarities[j])
		if pi != pj {
			return pi > pj
		}
		return w.Rarities[i] < w.Rarities[j]
	})
	sort.Slice(w.Awards, func(i, j int) bool {
		if w.Awards[i].Name != w.Awards[j].Name {
			return w.Awards[i].Name < w.Awards[j].Name
		}
		return w.Awards[i].ID < w.Awards[j].ID
	})

	index := map[string]int{}
	for i := range w.Awards {
		d := w.Awards[i].Description
		if d == nil || *d == "" {
			continue
		}
		n, ok := index[*d]
		if !ok {
			n = len(w.Descriptions)
			index[*d] = n
			w.Descriptions = append(w.Descriptions, *d)
		}
		w.Awards[i].DescriptionIndex = &n
	}
	return w
}
