// Package customers counts who ordered which title.
package customers

import (
	"sort"
	"strings"
)

// Entry is one ordered title.
type Entry struct {
	// OrderBy holds the customers joined with "+"; nil or blank means the
	// streamer picked the title.
	OrderBy *string
	Title   string
}

// Person lists the titles a single customer ordered.
type Person struct {
	List  []string `json:"list"`
	Count int      `json:"count"`
}

// Report is the per-customer breakdown of a resource.
type Report struct {
	All    int                `json:"all"`
	People map[string]*Person `json:"people"`
}

// Build groups entries by customer. Every customer's list is sorted
// case-insensitively.
func Build(streamer string, entries []Entry) Report {
	r := Report{All: len(entries), People: map[string]*Person{}}
	for _, e := range entries {
		by := streamer
		if e.OrderBy != nil && strings.TrimSpace(*e.OrderBy) != "" {
			by = *e.OrderBy
		}
		for _, name := range strings.Split(by, "+") {
			p, ok := r.People[name]
			if !ok {
				p = &Person{}
				r.People[name] = p
			}
			p.List = append(p.List, e.Title)
			p.Count++
		}
	}
	for _, p := range r.People {
		sort.SliceStable(p.List, func(i, j int) bool {
			return strings.ToLower(p.List[i]) < strings.ToLower(p.List[j])
		})
	}
	return r
}

// Title joins the non-empty parts of a title with a space and appends the
// status in brackets.
func Title(status *string, parts ...*string) string {
	var words []string
	for _, p := range parts {
		if p != nil && *p != "" {
			words = append(words, *p)
		}
	}
	if status != nil && *status != "" {
		words = append(words, "("+*status+")")
	}
	return strings.Join(words, " ")
}
