package billing

import (
	"sort"

	"metering-backend/models"
)

// Selection is the multi-select set behind bulk mark-as-paid. Only pending
// invoices are eligible for select-all, since bulk payment applies to pending
// invoices only.
type Selection struct {
	ids map[uint]struct{}
}

func NewSelection() *Selection {
	return &Selection{ids: make(map[uint]struct{})}
}

// Toggle flips membership for one invoice id.
func (s *Selection) Toggle(id uint) {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
	} else {
		s.ids[id] = struct{}{}
	}
}

// SelectAllPending replaces the selection with exactly the pending invoices
// from the given (already filtered) view.
func (s *Selection) SelectAllPending(filtered []models.Invoice) {
	s.ids = make(map[uint]struct{})
	for _, inv := range filtered {
		if inv.Status == models.InvoiceStatusPending {
			s.ids[inv.ID] = struct{}{}
		}
	}
}

func (s *Selection) Clear() {
	s.ids = make(map[uint]struct{})
}

func (s *Selection) Contains(id uint) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *Selection) Len() int { return len(s.ids) }

// IDs returns the selected ids in ascending order.
func (s *Selection) IDs() []uint {
	out := make([]uint, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
