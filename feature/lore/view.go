package lore

import "sort"

// resort groups the paragraphs by block, keeping the global order inside.
func resort(data map[int64]Entry) []Entry {
	out := make([]Entry, 0, len(data))
	for _, e := range data {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BlockID != out[j].BlockID {
			return out[i].BlockID < out[j].BlockID
		}
		return out[i].Order < out[j].Order
	})
	return out
}
