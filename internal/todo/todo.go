// Package todo implements the to-do list: a small task record set persisted
// as a flat JSON file, fully loaded at start and fully rewritten on save.
package todo

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "taskninja/internal/errors"
)

// Priority orders tasks in listings.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityNormal Priority = "Normal"
	PriorityLow    Priority = "Low"
)

// ParsePriority validates a user-entered priority, defaulting empty to Normal.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return PriorityNormal, nil
	case "high", "h":
		return PriorityHigh, nil
	case "normal", "n":
		return PriorityNormal, nil
	case "low", "l":
		return PriorityLow, nil
	}
	return "", apperrors.InvalidInput(fmt.Sprintf("unknown priority %q (use high, normal, or low)", s))
}

func priorityRank(p Priority) int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityNormal:
		return 1
	default:
		return 2
	}
}

// Task is one to-do item.
type Task struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Priority  Priority  `json:"priority"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"created_at"`
}

// ShortID is the display prefix of the task ID. IDs shorter than eight
// characters (a hand-edited file) come back whole.
func (t Task) ShortID() string {
	if len(t.ID) < 8 {
		return t.ID
	}
	return t.ID[:8]
}

// Store owns the task file. All operations load the whole file, mutate in
// memory, and rewrite it.
type Store struct {
	path string
	now  func() time.Time
}

// NewStore creates a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// Load reads all tasks. A missing file is an empty list.
func (s *Store) Load() ([]Task, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.CodeIO, fmt.Sprintf("cannot read %s", s.path), err)
	}
	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, apperrors.FileFormat(s.path, err)
	}
	return tasks, nil
}

func (s *Store) save(tasks []Task) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "failed to create data directory", err)
	}
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "failed to encode tasks", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return apperrors.Wrap(apperrors.CodeIO, fmt.Sprintf("failed to write %s", s.path), err)
	}
	return nil
}

// Add appends a new task and returns it.
func (s *Store) Add(text string, priority Priority) (Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Task{}, apperrors.InvalidInput("task text must not be empty")
	}

	tasks, err := s.Load()
	if err != nil {
		return Task{}, err
	}
	task := Task{
		ID:        uuid.NewString(),
		Text:      text,
		Priority:  priority,
		CreatedAt: s.now(),
	}
	tasks = append(tasks, task)
	if err := s.save(tasks); err != nil {
		return Task{}, err
	}

	slog.Info("added task", slog.String("id", task.ID), slog.String("priority", string(priority)))
	return task, nil
}

// List returns tasks sorted by done state, then priority, then age.
// With includeDone false, completed tasks are filtered out.
func (s *Store) List(includeDone bool) ([]Task, error) {
	tasks, err := s.Load()
	if err != nil {
		return nil, err
	}
	if !includeDone {
		kept := tasks[:0]
		for _, t := range tasks {
			if !t.Done {
				kept = append(kept, t)
			}
		}
		tasks = kept
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].Done != tasks[j].Done {
			return !tasks[i].Done
		}
		if pi, pj := priorityRank(tasks[i].Priority), priorityRank(tasks[j].Priority); pi != pj {
			return pi < pj
		}
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
	return tasks, nil
}

// Complete marks the task with the given ID (or unique ID prefix) done.
func (s *Store) Complete(id string) (Task, error) {
	return s.update(id, func(t *Task) { t.Done = true })
}

// Delete removes the task with the given ID (or unique ID prefix).
func (s *Store) Delete(id string) error {
	tasks, err := s.Load()
	if err != nil {
		return err
	}
	idx, err := findTask(tasks, id)
	if err != nil {
		return err
	}
	tasks = append(tasks[:idx], tasks[idx+1:]...)
	return s.save(tasks)
}

// ClearDone removes every completed task and reports how many went away.
func (s *Store) ClearDone() (int, error) {
	tasks, err := s.Load()
	if err != nil {
		return 0, err
	}
	kept := tasks[:0]
	removed := 0
	for _, t := range tasks {
		if t.Done {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, s.save(kept)
}

// Stats summarizes the list.
type Stats struct {
	Total int `json:"total"`
	Open  int `json:"open"`
	Done  int `json:"done"`
	High  int `json:"high"`
}

// Stats computes list totals.
func (s *Store) Stats() (Stats, error) {
	tasks, err := s.Load()
	if err != nil {
		return Stats{}, err
	}
	var st Stats
	for _, t := range tasks {
		st.Total++
		if t.Done {
			st.Done++
		} else {
			st.Open++
		}
		if t.Priority == PriorityHigh && !t.Done {
			st.High++
		}
	}
	return st, nil
}

func (s *Store) update(id string, mutate func(*Task)) (Task, error) {
	tasks, err := s.Load()
	if err != nil {
		return Task{}, err
	}
	idx, err := findTask(tasks, id)
	if err != nil {
		return Task{}, err
	}
	mutate(&tasks[idx])
	if err := s.save(tasks); err != nil {
		return Task{}, err
	}
	return tasks[idx], nil
}

func findTask(tasks []Task, id string) (int, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return 0, apperrors.InvalidInput("task id must not be empty")
	}
	found := -1
	for i, t := range tasks {
		if t.ID == id {
			return i, nil
		}
		if strings.HasPrefix(t.ID, id) {
			if found >= 0 {
				return 0, apperrors.InvalidInput(fmt.Sprintf("id prefix %q is ambiguous", id))
			}
			found = i
		}
	}
	if found < 0 {
		return 0, apperrors.NotFound(fmt.Sprintf("task %q", id))
	}
	return found, nil
}
