package review

import "sync"

// SelectionManager tracks a selected flag for every time slot id of the
// loaded list, including slots hidden by collision resolution
type SelectionManager struct {
	mu            sync.RWMutex
	ids           []string
	selected      map[string]bool
	selectedCount int
}

func NewSelectionManager() *SelectionManager {
	return &SelectionManager{selected: make(map[string]bool)}
}

// Reset replaces the known ids, all deselected
func (s *SelectionManager) Reset(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ids = make([]string, 0, len(ids))
	s.selected = make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := s.selected[id]; ok {
			continue
		}
		s.ids = append(s.ids, id)
		s.selected[id] = false
	}
	s.selectedCount = 0
}

// Toggle flips one id. Unknown ids are ignored and reported as false.
func (s *SelectionManager) Toggle(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.selected[id]
	if !ok {
		return false
	}
	s.selected[id] = !current
	s.recount()
	return true
}

// ToggleAll selects every id unless all are selected already, in which
// case it deselects every id
func (s *SelectionManager) ToggleAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := !s.allSelected()
	for id := range s.selected {
		s.selected[id] = target
	}
	s.recount()
}

// SelectedIDs returns the selected ids in load order
func (s *SelectionManager) SelectedIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, s.selectedCount)
	for _, id := range s.ids {
		if s.selected[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

func (s *SelectionManager) IsSelected(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected[id]
}

func (s *SelectionManager) SelectedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedCount
}

// AllSelected is true when at least one id is known and every id is selected
func (s *SelectionManager) AllSelected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.allSelected()
}

func (s *SelectionManager) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

func (s *SelectionManager) allSelected() bool {
	return len(s.selected) > 0 && s.selectedCount == len(s.selected)
}

func (s *SelectionManager) recount() {
	count := 0
	for _, v := range s.selected {
		if v {
			count++
		}
	}
	s.selectedCount = count
}
