package store

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/gcbaptista/course-search-engine/model"
)

// CourseStore holds the courses of one catalog in insertion order.
// Readers get deep copies, so a snapshot handed to the ranker never changes
// underneath it.
type CourseStore struct {
	mu        sync.RWMutex
	courses   []model.Course
	positions map[string]int // course ID to index in courses
}

// gobCourseStoreData is a helper struct for Gob encoding/decoding CourseStore data.
// It excludes the mutex and the derived position map.
type gobCourseStoreData struct {
	Courses []model.Course
}

// NewCourseStore creates an empty store.
func NewCourseStore() *CourseStore {
	return &CourseStore{positions: make(map[string]int)}
}

// Len returns the number of courses.
func (s *CourseStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.courses)
}

// Get returns a copy of the course with the given ID.
func (s *CourseStore) Get(id string) (model.Course, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pos, ok := s.positions[id]
	if !ok {
		return model.Course{}, false
	}
	return s.courses[pos].Clone(), true
}

// Snapshot returns a copy of every course in insertion order.
func (s *CourseStore) Snapshot() []model.Course {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Course, len(s.courses))
	for i, c := range s.courses {
		out[i] = c.Clone()
	}
	return out
}

// Subset returns copies of the courses whose IDs are listed, in insertion
// order. Unknown IDs are reported separately.
func (s *CourseStore) Subset(ids []string) (courses []model.Course, missing []string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make([]int, 0, len(ids))
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		pos, ok := s.positions[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		if _, dup := seen[pos]; dup {
			continue
		}
		seen[pos] = struct{}{}
		wanted = append(wanted, pos)
	}
	sort.Ints(wanted)

	courses = make([]model.Course, len(wanted))
	for i, pos := range wanted {
		courses[i] = s.courses[pos].Clone()
	}
	return courses, missing
}

// Page returns up to limit courses starting at offset, plus the total count.
func (s *CourseStore) Page(offset, limit int) ([]model.Course, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := len(s.courses)
	if offset < 0 {
		offset = 0
	}
	if offset >= total || limit <= 0 {
		return []model.Course{}, total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	out := make([]model.Course, 0, end-offset)
	for _, c := range s.courses[offset:end] {
		out = append(out, c.Clone())
	}
	return out, total
}

// Upsert adds new courses at the end and replaces existing ones in place.
func (s *CourseStore) Upsert(courses []model.Course) (added, updated int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range courses {
		if pos, ok := s.positions[c.ID]; ok {
			s.courses[pos] = c.Clone()
			updated++
			continue
		}
		s.positions[c.ID] = len(s.courses)
		s.courses = append(s.courses, c.Clone())
		added++
	}
	return added, updated
}

// Replace swaps the whole corpus. When an ID repeats, the last record wins
// but keeps the position of the first.
func (s *CourseStore) Replace(courses []model.Course) {
	fresh := NewCourseStore()
	fresh.Upsert(courses)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.courses = fresh.courses
	s.positions = fresh.positions
}

// Delete removes the course with the given ID.
func (s *CourseStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.positions[id]
	if !ok {
		return false
	}
	s.courses = append(s.courses[:pos], s.courses[pos+1:]...)
	delete(s.positions, id)
	for i := pos; i < len(s.courses); i++ {
		s.positions[s.courses[i].ID] = i
	}
	return true
}

// Clear removes every course.
func (s *CourseStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.courses = nil
	s.positions = make(map[string]int)
}

// DivisionHistogram counts courses per division, ignoring case.
// A course listed twice under the same division counts once.
func (s *CourseStore) DivisionHistogram() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	histogram := make(map[string]int)
	for _, c := range s.courses {
		seen := make(map[string]struct{}, len(c.Divisions))
		for _, division := range c.Divisions {
			name := strings.TrimSpace(division)
			key := strings.ToLower(name)
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			histogram[key]++
		}
	}
	return histogram
}

// GobEncode implements the gob.GobEncoder interface for CourseStore.
func (s *CourseStore) GobEncode() ([]byte, error) {
	s.mu.RLock()
	dataToEncode := gobCourseStoreData{Courses: s.courses}
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(dataToEncode)
	s.mu.RUnlock()

	if err != nil {
		return nil, fmt.Errorf("failed to gob encode course store data: %w", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface for CourseStore.
func (s *CourseStore) GobDecode(data []byte) error {
	decodedData := gobCourseStoreData{}
	if err := gob.NewDecoder(bytes.NewBuffer(data)).Decode(&decodedData); err != nil {
		return fmt.Errorf("failed to gob decode course store data: %w", err)
	}

	positions := make(map[string]int, len(decodedData.Courses))
	for i, c := range decodedData.Courses {
		positions[c.ID] = i
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.courses = decodedData.Courses
	s.positions = positions
	return nil
}
