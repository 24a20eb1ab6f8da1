// ABOUTME: JSON snapshot codec and persistence for the content store
// ABOUTME: Loads or seeds the aggregate at startup and rewrites it wholesale

package content

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// snapshot is the on-disk representation. Ids are stringified map keys in
// the file and parsed back to ints at this boundary; nothing past the codec
// ever compares ids as text.
type snapshot struct {
	Titles      map[string]string                    `json:"titles"`
	Texts       map[string]string                    `json:"texts"`
	Subsections map[string]map[string]subsectionJSON `json:"subsections"`
}

type subsectionJSON struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Open loads the snapshot at path, or seeds a fresh store when no snapshot
// exists. Seeding creates numSections sections with the given default titles
// (1-based lookup; missing entries get a numeric placeholder) and empty
// texts, and persists immediately.
func Open(path string, numSections int, defaultTitles map[int]string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		titles: make(map[int]string),
		texts:  make(map[int]string),
		subs:   make(map[int]map[int]Subsection),
		path:   path,
		logger: logger.With("component", "content"),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		for i := 1; i <= numSections; i++ {
			title, ok := defaultTitles[i]
			if !ok {
				title = fmt.Sprintf("Section %d", i)
			}
			s.titles[i] = title
			s.texts[i] = ""
		}
		if err := s.persistLocked(); err != nil {
			return nil, fmt.Errorf("seeding snapshot: %w", err)
		}
		s.logger.Info("seeded content snapshot", "path", path, "sections", numSections)
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	if err := s.fromSnapshot(&snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	s.logger.Info("loaded content snapshot", "path", path, "sections", len(s.titles))
	return s, nil
}

// fromSnapshot populates the store maps from the decoded file form,
// parsing string ids exactly once.
func (s *Store) fromSnapshot(snap *snapshot) error {
	for key, title := range snap.Titles {
		id, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("section id %q: %w", key, err)
		}
		s.titles[id] = title
	}
	for key, text := range snap.Texts {
		id, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("section id %q: %w", key, err)
		}
		s.texts[id] = text
	}
	// Every titled section has a text entry, even when the file omits it.
	for id := range s.titles {
		if _, ok := s.texts[id]; !ok {
			s.texts[id] = ""
		}
	}
	for secKey, subs := range snap.Subsections {
		secID, err := strconv.Atoi(secKey)
		if err != nil {
			return fmt.Errorf("section id %q: %w", secKey, err)
		}
		if len(subs) == 0 {
			continue
		}
		m := make(map[int]Subsection, len(subs))
		for subKey, sub := range subs {
			subID, err := strconv.Atoi(subKey)
			if err != nil {
				return fmt.Errorf("subsection id %q: %w", subKey, err)
			}
			m[subID] = Subsection{Title: sub.Title, Text: sub.Text}
		}
		s.subs[secID] = m
	}
	return nil
}

// toSnapshot builds the file form. Caller must hold s.mu.
func (s *Store) toSnapshot() *snapshot {
	snap := &snapshot{
		Titles:      make(map[string]string, len(s.titles)),
		Texts:       make(map[string]string, len(s.texts)),
		Subsections: make(map[string]map[string]subsectionJSON, len(s.subs)),
	}
	for id, title := range s.titles {
		snap.Titles[strconv.Itoa(id)] = title
	}
	for id, text := range s.texts {
		snap.Texts[strconv.Itoa(id)] = text
	}
	for secID, subs := range s.subs {
		m := make(map[string]subsectionJSON, len(subs))
		for subID, sub := range subs {
			m[strconv.Itoa(subID)] = subsectionJSON{Title: sub.Title, Text: sub.Text}
		}
		snap.Subsections[strconv.Itoa(secID)] = m
	}
	return snap
}

// persistLocked rewrites the whole snapshot file. Caller must hold s.mu.
// The write goes through a temp file renamed into place, so a crash leaves
// the previous complete snapshot rather than a torn file.
func (s *Store) persistLocked() error {
	data, err := json.MarshalIndent(s.toSnapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing snapshot: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	return nil
}

// sortedKeys is used by tests to compare section sets deterministically.
func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
