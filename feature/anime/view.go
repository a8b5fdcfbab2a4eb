package anime

import (
	"encoding/json"
	"math"
	"sort"
	"time"
)

// Series aggregates titles sharing a series name.
type Series struct {
	Name          string     `json:"name"`
	Status        *string    `json:"status"`
	AddedTime     *time.Time `json:"added_time"`
	CompletedTime *time.Time `json:"completed_time"`
	Score         *float64   `json:"score"`
	List          []Title    `json:"list"`
}

// Item is one line of the list: a standalone title or a series.
type Item struct {
	Title  *Title
	Series *Series
}

func priority(status *string) int {
	if status == nil {
		return 2
	}
	switch *status {
	case StatusWatching:
		return 1
	case "":
		return 2
	case StatusCompleted, StatusDropped:
		return 3
	}
	return 4
}

func unix(t *time.Time) int64 {
	if t == nil {
		return 0
	}
	return t.Unix()
}

func (it Item) key() (int, int64) {
	status, added, completed := it.fields()
	if c := unix(completed); c != 0 {
		return priority(status), -c
	}
	return priority(status), unix(added)
}

func (it Item) fields() (*string, *time.Time, *time.Time) {
	if it.Series != nil {
		return it.Series.Status, it.Series.AddedTime, it.Series.CompletedTime
	}
	return it.Title.Status, it.Title.AddedTime, it.Title.CompletedTime
}

func (it Item) name() string {
	if it.Series != nil {
		return it.Series.Name
	}
	return it.Title.Name
}

// MarshalJSON writes whichever side is set.
func (it Item) MarshalJSON() ([]byte, error) {
	if it.Series != nil {
		return json.Marshal(it.Series)
	}
	return json.Marshal(it.Title)
}

func resort(data map[int64]Title) []Item {
	titles := make([]Title, 0, len(data))
	for _, t := range data {
		titles = append(titles, t)
	}
	sort.Slice(titles, func(i, j int) bool { return titles[i].ID < titles[j].ID })

	var items []Item
	series := map[string]*Series{}
	var names []string
	for i := range titles {
		t := titles[i]
		if t.Series == nil || *t.Series == "" {
			items = append(items, Item{Title: &t})
			continue
		}
		s, ok := series[*t.Series]
		if !ok {
			s = &Series{Name: *t.Series}
			series[*t.Series] = s
			names = append(names, *t.Series)
		}
		s.List = append(s.List, t)
	}
	for _, name := range names {
		s := series[name]
		aggregate(s)
		items = append(items, Item{Series: s})
	}

	sort.SliceStable(items, func(i, j int) bool {
		pi, ti := items[i].key()
		pj, tj := items[j].key()
		if pi != pj {
			return pi < pj
		}
		if ti != tj {
			return ti < tj
		}
		return items[i].name() < items[j].name()
	})
	if items == nil {
		items = []Item{}
	}
	return items
}

// aggregate derives the series fields from its titles. A dropped title
// drops the whole series; mixed statuses mean it is still being watched.
func aggregate(s *Series) {
	first := s.List[0]
	status := first.Status
	mixed := false
	dropped := false
	var added, completed *time.Time
	addedSet := false
	scoreSum, scored := 0, 0

	for _, t := range s.List {
		if !sameStatus(t.Status, status) {
			mixed = true
		}
		if t.Status != nil && *t.Status == StatusDropped {
			dropped = true
		}
		if !addedSet || unix(t.AddedTime) < unix(added) {
			added = t.AddedTime
			addedSet = true
		}
		if unix(t.CompletedTime) > unix(completed) {
			completed = t.CompletedTime
		}
		if t.Score != nil && *t.Score != 0 {
			scoreSum += *t.Score
			scored++
		}
	}

	switch {
	case dropped:
		d := StatusDropped
		s.Status = &d
		s.CompletedTime = completed
	case mixed:
		w := StatusWatching
		s.Status = &w
	default:
		s.Status = status
		if finished(status) {
			s.CompletedTime = completed
		}
	}
	s.AddedTime = added
	if scored > 0 && !dropped {
		mean := math.Round(float64(scoreSum)/float64(scored)*10) / 10
		s.Score = &mean
	}

	sort.SliceStable(s.List, func(i, j int) bool {
		a, b := s.List[i], s.List[j]
		if pa, pb := priority(a.Status), priority(b.Status); pa != pb {
			return pa < pb
		}
		return moment(a) < moment(b)
	})
}

func moment(t Title) int64 {
	if t.CompletedTime != nil {
		return t.CompletedTime.Unix()
	}
	return unix(t.AddedTime)
}

func sameStatus(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func raw(data map[int64]Title) []Title {
	out := make([]Title, 0, len(data))
	for _, t := range data {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
