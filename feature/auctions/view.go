package auctions

import "sort"

// Status values a finished lot may carry.
var finished = map[string]bool{
	"Просмотрено": true,
	"Пройдено":    true,
	"Заброшено":   true,
}

const (
	StatusCompleted  = "Завершено"
	StatusInProgress = "В процессе"
)

// Auction is an auction with its ranked lots and unranked participants.
type Auction struct {
	Entry
	List         []Entry `json:"list"`
	Participants []Entry `json:"participants"`
}

func resort(data map[int64]Entry) []Auction {
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

	groups := make(map[int64]*Auction)
	group := func(id int64) *Auction {
		a, ok := groups[id]
		if !ok {
			a = &Auction{Entry: Entry{ID: id}, List: []Entry{}, Participants: []Entry{}}
			groups[id] = a
		}
		return a
	}
	for _, e := range entries {
		if e.AuctionID == nil {
			group(e.ID).Entry = e
			continue
		}
		a := group(*e.AuctionID)
		if e.Order > 0 {
			a.List = append(a.List, e)
		} else {
			a.Participants = append(a.Participants, e)
		}
	}

	out := make([]Auction, 0, len(groups))
	for _, a := range groups {
		a.Status = derive(a.Status, a.List)
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// derive computes an auction's status from its lots: finished once the
// last lot is, in progress once the first one has any status.
func derive(own *string, list []Entry) *string {
	if len(list) == 0 {
		return own
	}
	if last := list[len(list)-1].Status; last != nil && finished[*last] {
		s := StatusCompleted
		return &s
	}
	if list[0].Status != nil {
		s := StatusInProgress
		return &s
	}
	return own
}

func raw(data map[int64]Entry) []Entry {
	out := make([]Entry, 0, len(data))
	for _, e := range data {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
