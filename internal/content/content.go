// ABOUTME: Content store holding sections, texts and nested subsections
// ABOUTME: In-memory aggregate mirrored to a JSON snapshot on every mutation

package content

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// ErrNotFound is returned when a referenced section or subsection does not exist.
var ErrNotFound = errors.New("not found")

// Subsection is a child item of a section with its own title and body.
type Subsection struct {
	Title string
	Text  string
}

// SubsectionEntry pairs a subsection with its numeric id for ordered listings.
type SubsectionEntry struct {
	ID int
	Subsection
}

// Store is the aggregate root over all sections. Section ids are assigned
// once at bootstrap and never removed; subsections are created and deleted
// freely under their parent section. Every mutation rewrites the whole
// snapshot file, so the on-disk state is always one complete snapshot.
//
// The mutex guards map access only. Concurrent admins are last-write-wins;
// there is no conflict detection.
type Store struct {
	mu     sync.Mutex
	titles map[int]string
	texts  map[int]string
	subs   map[int]map[int]Subsection

	path   string
	logger *slog.Logger
}

// Title returns the section title, or a numeric placeholder when absent.
func (s *Store) Title(sectionID int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.titles[sectionID]; ok {
		return t
	}
	return fmt.Sprintf("Section %d", sectionID)
}

// Text returns the section body text, empty when absent. Never fails.
func (s *Store) Text(sectionID int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.texts[sectionID]
}

// SectionIDs returns all section ids in ascending numeric order.
func (s *Store) SectionIDs() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int, 0, len(s.titles))
	for id := range s.titles {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// SetTitle overwrites a section title and persists the snapshot.
func (s *Store) SetTitle(sectionID int, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.titles[sectionID]; !ok {
		return fmt.Errorf("section %d: %w", sectionID, ErrNotFound)
	}
	s.titles[sectionID] = title
	return s.persistLocked()
}

// SetText overwrites a section body and persists the snapshot. The text is
// stored verbatim; no length or content validation is applied.
func (s *Store) SetText(sectionID int, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts[sectionID] = text
	return s.persistLocked()
}

// Subsections returns the section's subsections ordered by numeric id
// ascending. A section without subsections yields an empty slice.
func (s *Store) Subsections(sectionID int) []SubsectionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.subs[sectionID]
	entries := make([]SubsectionEntry, 0, len(m))
	for id, sub := range m {
		entries = append(entries, SubsectionEntry{ID: id, Subsection: sub})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries
}

// Subsection looks up a single subsection.
func (s *Store) Subsection(sectionID, subID int) (Subsection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subs[sectionID][subID]
	if !ok {
		return Subsection{}, fmt.Errorf("subsection %d/%d: %w", sectionID, subID, ErrNotFound)
	}
	return sub, nil
}

// NextSubID computes the id the next added subsection would receive:
// one past the highest existing id, or 1 for an empty section. Gaps left
// by deletions are never reused unless the freed id was the maximum.
func (s *Store) NextSubID(sectionID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextSubIDLocked(sectionID)
}

func (s *Store) nextSubIDLocked(sectionID int) int {
	max := 0
	for id := range s.subs[sectionID] {
		if id > max {
			max = id
		}
	}
	return max + 1
}

// AddSubsection allocates the next id, inserts the subsection and persists.
// Returns the assigned id.
func (s *Store) AddSubsection(sectionID int, title, text string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSubIDLocked(sectionID)
	if s.subs[sectionID] == nil {
		s.subs[sectionID] = make(map[int]Subsection)
	}
	s.subs[sectionID][id] = Subsection{Title: title, Text: text}
	if err := s.persistLocked(); err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateSubsectionText replaces a subsection's body and persists.
func (s *Store) UpdateSubsectionText(sectionID, subID int, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subs[sectionID][subID]
	if !ok {
		return fmt.Errorf("subsection %d/%d: %w", sectionID, subID, ErrNotFound)
	}
	sub.Text = text
	s.subs[sectionID][subID] = sub
	return s.persistLocked()
}

// DeleteSubsection removes a subsection and persists. Deleting the last
// subsection of a section removes the section's entry from the subsection
// map entirely rather than leaving an empty container. Repeating a delete
// reports ErrNotFound, it never silently succeeds twice.
func (s *Store) DeleteSubsection(sectionID, subID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.subs[sectionID]
	if !ok {
		return fmt.Errorf("subsection %d/%d: %w", sectionID, subID, ErrNotFound)
	}
	if _, ok := m[subID]; !ok {
		return fmt.Errorf("subsection %d/%d: %w", sectionID, subID, ErrNotFound)
	}
	delete(m, subID)
	if len(m) == 0 {
		delete(s.subs, sectionID)
	}
	return s.persistLocked()
}
