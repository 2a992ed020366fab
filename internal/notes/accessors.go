package notes

// All returns every indexed note. The caller must not mutate the
// returned notes in place.
func (m *Manager) All() []*Note {
	m.mu.RLock()
	defer m.mu.RUnlock()

	notes := make([]*Note, 0, len(m.index))
	for _, n := range m.index {
		notes = append(notes, n)
	}
	return notes
}

// Get returns the note at path, if indexed.
func (m *Manager) Get(path string) (*Note, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n, ok := m.index[path]
	return n, ok
}

// ByCategory returns every indexed note in category.
func (m *Manager) ByCategory(category string) []*Note {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var notes []*Note
	for _, n := range m.index {
		if n.Category == category {
			notes = append(notes, n)
		}
	}
	return notes
}

// Categories returns the fixed set of category display names, in the
// canonical folder order.
func Categories() []string {
	names := make([]string, len(categoryFolders))
	for i, cf := range categoryFolders {
		names[i] = cf.Category
	}
	return names
}
