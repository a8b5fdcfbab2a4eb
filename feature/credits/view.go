package credits

import "sort"

func resort(data map[int64]Credit) []Credit {
	out := make([]Credit, 0, len(data))
	for _, c := range data {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// raw lists the records by id, the way they sit in the table.
func raw(data map[int64]Credit) []Credit {
	out := make([]Credit, 0, len(data))
	for _, c := range data {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
