package socials

import "sort"

func resort(data map[int64]Social) []Social {
	out := make([]Social, 0, len(data))
	for _, s := range data {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}
