// Package progress keeps per-course chapter progress in a local YAML file.
// It is never sent to the server.
package progress

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// CourseProgress is keyed by the composite course id username:courseName:skillLevel.
type CourseProgress struct {
	CourseID          string    `yaml:"courseId" json:"courseId"`
	CompletedChapters []string  `yaml:"completedChapters" json:"completedChapters"`
	CurrentChapter    *string   `yaml:"currentChapter" json:"currentChapter"`
	LastUpdated       time.Time `yaml:"lastUpdated" json:"lastUpdated"`
}

func (p CourseProgress) IsCompleted(milestoneID string) bool {
	i := sort.SearchStrings(p.CompletedChapters, milestoneID)
	return i < len(p.CompletedChapters) && p.CompletedChapters[i] == milestoneID
}

// Percent is the share of total chapters completed, 0 when total is 0.
func (p CourseProgress) Percent(total int) int {
	if total <= 0 {
		return 0
	}
	return 100 * len(p.CompletedChapters) / total
}

type file struct {
	Courses map[string]CourseProgress `yaml:"courses"`
}

type Store struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

func NewStore(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// DefaultPath is ~/.learno/progress.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".learno", "progress.yaml"), nil
}

func (s *Store) load() (*file, error) {
	f := &file{Courses: map[string]CourseProgress{}}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	if f.Courses == nil {
		f.Courses = map[string]CourseProgress{}
	}
	return f, nil
}

// save writes through a temp file so a crash never leaves a torn file.
func (s *Store) save(f *file) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".progress-*.yaml")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// Get returns the stored progress, or an empty record for an unknown course.
func (s *Store) Get(courseID string) (CourseProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return CourseProgress{}, err
	}
	p, ok := f.Courses[courseID]
	if !ok {
		return CourseProgress{CourseID: courseID, CompletedChapters: []string{}}, nil
	}
	return p, nil
}

// All returns every record ordered by course id.
func (s *Store) All() ([]CourseProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]CourseProgress, 0, len(f.Courses))
	for _, p := range f.Courses {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CourseID < out[j].CourseID })
	return out, nil
}

func (s *Store) update(courseID string, fn func(p *CourseProgress)) (CourseProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return CourseProgress{}, err
	}
	p, ok := f.Courses[courseID]
	if !ok {
		p = CourseProgress{CourseID: courseID}
	}
	fn(&p)
	if p.CompletedChapters == nil {
		p.CompletedChapters = []string{}
	}
	p.LastUpdated = s.now().UTC()
	f.Courses[courseID] = p

	if err := s.save(f); err != nil {
		return CourseProgress{}, err
	}
	return p, nil
}

// Complete marks a milestone done. Completing twice is a no-op apart from the timestamp.
func (s *Store) Complete(courseID, milestoneID string) (CourseProgress, error) {
	return s.update(courseID, func(p *CourseProgress) {
		if p.IsCompleted(milestoneID) {
			return
		}
		p.CompletedChapters = append(p.CompletedChapters, milestoneID)
		sort.Strings(p.CompletedChapters)
	})
}

func (s *Store) Uncomplete(courseID, milestoneID string) (CourseProgress, error) {
	return s.update(courseID, func(p *CourseProgress) {
		kept := p.CompletedChapters[:0]
		for _, id := range p.CompletedChapters {
			if id != milestoneID {
				kept = append(kept, id)
			}
		}
		p.CompletedChapters = kept
	})
}

// SetCurrent points at the chapter being studied; an empty id clears it.
func (s *Store) SetCurrent(courseID, milestoneID string) (CourseProgress, error) {
	return s.update(courseID, func(p *CourseProgress) {
		if milestoneID == "" {
			p.CurrentChapter = nil
			return
		}
		id := milestoneID
		p.CurrentChapter = &id
	})
}

// Forget removes the record for a course, e.g. after it was deleted.
func (s *Store) Forget(courseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := f.Courses[courseID]; !ok {
		return nil
	}
	delete(f.Courses, courseID)
	return s.save(f)
}
