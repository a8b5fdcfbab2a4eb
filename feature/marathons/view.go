package marathons

import "sort"

var finished = map[string]bool{
	"Пройдено":  true,
	"Заброшено": true,
}

const (
	StatusCompleted  = "Завершено"
	StatusInProgress = "В процессе"
)

// Marathon is a marathon with its games in play order.
type Marathon struct {
	Entry
	Games []Entry `json:"games"`
}

func resort(data map[int64]Entry) []Marathon {
	entries := make([]Entry, 0, len(data))
	for _, e := range data {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Order != entries[j].Order {
			return entries[i].Order < entries[j].Order
		}
		return entries[i].ID < entries[j].ID
	})

	groups := make(map[int64]*Marathon)
	group := func(id int64) *Marathon {
		m, ok := groups[id]
		if !ok {
			m = &Marathon{Entry: Entry{ID: id}, Games: []Entry{}}
			groups[id] = m
		}
		return m
	}
	for _, e := range entries {
		if e.MarathonID == nil {
			group(e.ID).Entry = e
			continue
		}
		m := group(*e.MarathonID)
		m.Games = append(m.Games, e)
	}

	out := make([]Marathon, 0, len(groups))
	for _, m := range groups {
		if n := len(m.Games); n > 0 {
			if last := m.Games[n-1].Status; last != nil && finished[*last] {
				s := StatusCompleted
				m.Status = &s
			} else if m.Games[0].Status != nil {
				s := StatusInProgress
				m.Status = &s
			}
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out
}
