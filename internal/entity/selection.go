package entity

import "slices"

// SelectionSet tracks the checked contact ids of the available page.
// Ids are kept in the order they were selected.
type SelectionSet struct {
	ids []string
}

func NewSelectionSet() *SelectionSet {
	return &SelectionSet{}
}

func (s *SelectionSet) Has(id string) bool {
	return slices.Contains(s.ids, id)
}

func (s *SelectionSet) Toggle(id string) {
	if i := slices.Index(s.ids, id); i >= 0 {
		s.ids = slices.Delete(s.ids, i, i+1)
		return
	}
	s.ids = append(s.ids, id)
}

// ToggleAll clears the set when every id of the page is already selected,
// otherwise replaces it with exactly the page ids.
func (s *SelectionSet) ToggleAll(pageIDs []string) {
	if s.allSelected(pageIDs) {
		s.Clear()
		return
	}
	s.ids = s.ids[:0]
	for _, id := range pageIDs {
		if !slices.Contains(s.ids, id) {
			s.ids = append(s.ids, id)
		}
	}
}

func (s *SelectionSet) allSelected(pageIDs []string) bool {
	if len(pageIDs) == 0 {
		return false
	}
	for _, id := range pageIDs {
		if !s.Has(id) {
			return false
		}
	}
	return true
}

func (s *SelectionSet) Clear() {
	s.ids = nil
}

func (s *SelectionSet) IDs() []string {
	return slices.Clone(s.ids)
}
