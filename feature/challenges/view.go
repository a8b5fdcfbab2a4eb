package challenges

import (
	"sort"
	"strings"
)

// priority puts running challenges first and dropped ones last.
func priority(status *string) int {
	if status == nil {
		return 2
	}
	switch *status {
	case StatusInProgress:
		return 1
	case "":
		return 2
	case StatusDone:
		return 3
	default:
		return 4
	}
}

func resort(data map[int64]Challenge) map[string][]Challenge {
	lists := map[string][]Challenge{}
	for _, c := range data {
		b := c.bucket()
		lists[b] = append(lists[b], c)
	}
	for _, list := range lists {
		sort.Slice(list, func(i, j int) bool {
			if pi, pj := priority(list[i].Status), priority(list[j].Status); pi != pj {
				return pi < pj
			}
			if ni, nj := strings.ToLower(list[i].Name), strings.ToLower(list[j].Name); ni != nj {
				return ni < nj
			}
			return list[i].ID < list[j].ID
		})
	}
	return lists
}
