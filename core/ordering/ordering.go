package ordering

import (
	"sort"
)

// Member is one ranked record inside a partition.
type Member struct {
	ID    int64
	Order int
}

// Shift describes a contiguous range of positions moved by Delta.
// Hi == 0 means the range is open-ended.
type Shift struct {
	Lo    int
	Hi    int
	Delta int
}

// Contains reports whether position p falls inside the shifted range.
func (s Shift) Contains(p int) bool {
	if p < s.Lo {
		return false
	}
	return s.Hi == 0 || p <= s.Hi
}

// Plan is the outcome of a single-member operation: the range statement to
// issue against the store and the resulting per-id orders for the cache.
type Plan struct {
	// Shift is nil when no other member moves.
	Shift *Shift
	// Changes maps member id to its new order, excluding the subject.
	Changes map[int64]int
	// Position is the final order of the subject (0 after Remove).
	Position int
}

// Empty reports whether the plan leaves every other member untouched.
func (p Plan) Empty() bool {
	return len(p.Changes) == 0
}

// Collect builds the member list of one partition out of a cache map.
// The pick callback returns false for records outside the partition.
func Collect[R any](data map[int64]R, pick func(R) (int, bool)) []Member {
	members := make([]Member, 0, len(data))
	for id, rec := range data {
		if order, ok := pick(rec); ok {
			members = append(members, Member{ID: id, Order: order})
		}
	}
	sortMembers(members)
	return members
}

// ApplyTo writes the planned orders into the staged cache.
func ApplyTo[R any](data map[int64]R, changes map[int64]int, set func(*R, int)) {
	for id, order := range changes {
		rec, ok := data[id]
		if !ok {
			continue
		}
		set(&rec, order)
		data[id] = rec
	}
}

// Position normalizes a requested insert position: anything outside
// [1, n+1] (including nil) appends at the end.
func Position(requested *int, n int) int {
	if requested == nil || *requested < 1 || *requested > n+1 {
		return n + 1
	}
	return *requested
}

// Insert plans the insertion of a new member at the requested position.
// Members at or after the position move one step back.
func Insert(members []Member, requested *int) Plan {
	p := Position(requested, len(members))
	plan := Plan{Position: p, Changes: map[int64]int{}}
	for _, m := range members {
		if m.Order >= p {
			plan.Changes[m.ID] = m.Order + 1
		}
	}
	if len(plan.Changes) > 0 {
		plan.Shift = &Shift{Lo: p, Delta: 1}
	}
	return plan
}

// Remove plans the removal of member id; members after it close the gap.
// The returned plan has Position 0 if id is not a member.
func Remove(members []Member, id int64) Plan {
	plan := Plan{Changes: map[int64]int{}}
	p := 0
	for _, m := range members {
		if m.ID == id {
			p = m.Order
			break
		}
	}
	if p == 0 {
		return plan
	}
	for _, m := range members {
		if m.ID != id && m.Order > p {
			plan.Changes[m.ID] = m.Order - 1
		}
	}
	if len(plan.Changes) > 0 {
		plan.Shift = &Shift{Lo: p + 1, Delta: -1}
	}
	return plan
}

// Move plans moving member id to the requested position. It returns false
// when nothing should happen: id is not a member, the request is outside
// [1, n] or equals the current position.
func Move(members []Member, id int64, requested int) (Plan, bool) {
	n := len(members)
	if requested < 1 || requested > n {
		return Plan{}, false
	}
	current := 0
	for _, m := range members {
		if m.ID == id {
			current = m.Order
			break
		}
	}
	if current == 0 || current == requested {
		return Plan{}, false
	}

	var shift Shift
	if requested < current {
		shift = Shift{Lo: requested, Hi: current - 1, Delta: 1}
	} else {
		shift = Shift{Lo: current + 1, Hi: requested, Delta: -1}
	}

	plan := Plan{Position: requested, Shift: &shift, Changes: map[int64]int{}}
	for _, m := range members {
		if m.ID != id && shift.Contains(m.Order) {
			plan.Changes[m.ID] = m.Order + shift.Delta
		}
	}
	return plan, true
}

// InsertBatch places k new elements in one pass. Requested positions inside
// [1, n+1] are honoured in input order; a request that is missing, out of
// range or already taken by an earlier element is deferred to the free slots
// at the back of the range, again in input order. Existing members keep
// their relative order and fill the remaining slots. Only members whose
// order actually changes are returned.
func InsertBatch(members []Member, requested []*int) ([]int, map[int64]int) {
	n, k := len(members), len(requested)
	taken := make([]bool, n+k+1)
	positions := make([]int, k)

	deferred := make([]int, 0, k)
	for i, r := range requested {
		if r == nil || *r < 1 || *r > n+1 || taken[*r] {
			deferred = append(deferred, i)
			continue
		}
		positions[i] = *r
		taken[*r] = true
	}

	free := make([]int, 0, n+len(deferred))
	for p := 1; p < len(taken); p++ {
		if !taken[p] {
			free = append(free, p)
		}
	}
	back := free[len(free)-len(deferred):]
	for j, i := range deferred {
		positions[i] = back[j]
		taken[back[j]] = true
	}

	return positions, fill(members, taken)
}

// Reorder is a single request handled by Rearrange.
type Reorder struct {
	ID    int64
	Order int
}

// Rearrange moves several members at once. Requests outside [1, n], for
// unknown ids or for a position already claimed by an earlier request are
// ignored. Members that are not moved keep their relative order and fill the
// free slots. Only members whose order actually changes are returned.
func Rearrange(members []Member, moves []Reorder) map[int64]int {
	n := len(members)
	taken := make([]bool, n+1)

	current := make(map[int64]int, n)
	for _, m := range members {
		current[m.ID] = m.Order
	}

	changes := make(map[int64]int)
	moved := make(map[int64]bool, len(moves))
	for _, mv := range moves {
		if _, ok := current[mv.ID]; !ok || moved[mv.ID] || mv.Order < 1 || mv.Order > n || taken[mv.Order] {
			continue
		}
		taken[mv.Order] = true
		moved[mv.ID] = true
		if current[mv.ID] != mv.Order {
			changes[mv.ID] = mv.Order
		}
	}

	rest := make([]Member, 0, n)
	for _, m := range members {
		if !moved[m.ID] {
			rest = append(rest, m)
		}
	}
	for id, p := range fill(rest, taken) {
		changes[id] = p
	}
	return changes
}

// Compact renumbers members to 1..n keeping their relative order.
func Compact(members []Member) map[int64]int {
	sorted := append([]Member(nil), members...)
	sortMembers(sorted)
	changes := make(map[int64]int)
	for i, m := range sorted {
		if m.Order != i+1 {
			changes[m.ID] = i + 1
		}
	}
	return changes
}

// Dense reports whether the orders form an exact permutation of 1..n.
func Dense(members []Member) bool {
	seen := make([]bool, len(members)+1)
	for _, m := range members {
		if m.Order < 1 || m.Order > len(members) || seen[m.Order] {
			return false
		}
		seen[m.Order] = true
	}
	return true
}

// fill assigns the free slots (taken[p] == false, p >= 1) to members in
// their current relative order and returns the orders that changed.
func fill(members []Member, taken []bool) map[int64]int {
	sorted := append([]Member(nil), members...)
	sortMembers(sorted)

	changes := make(map[int64]int)
	slot := 1
	for _, m := range sorted {
		for slot < len(taken) && taken[slot] {
			slot++
		}
		if m.Order != slot {
			changes[m.ID] = slot
		}
		slot++
	}
	return changes
}

func sortMembers(members []Member) {
	sort.Slice(members, func(i, j int) bool {
		if members[i].Order != members[j].Order {
			return members[i].Order < members[j].Order
		}
		return members[i].ID < members[j].ID
	})
}
