package merch

import "sort"

func resort(data map[int64]Item) []Item {
	out := make([]Item, 0, len(data))
	for _, it := range data {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}
