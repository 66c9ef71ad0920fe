package notepad

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"ludo/app/config"

	"github.com/elliotchance/pie/v2"
	"github.com/google/uuid"
	"github.com/samber/do"
	"github.com/samber/oops"
)

const (
	fileName        = "notepad.json"
	timestampLayout = "2006-01-02 15:04:05"
)

type Entry struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Text      string `json:"text"`
}

// Service keeps notes newest first, capped at maxEntries.
type Service struct {
	path       string
	maxEntries int
	now        func() time.Time

	mu      sync.RWMutex
	entries []Entry
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)
	return NewService(cfg.Memory.Dir, cfg.Notepad.MaxEntries)
}

func NewService(dir string, maxEntries int) (*Service, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, oops.In("notepad").Wrapf(err, "failed to create notepad dir")
	}

	if maxEntries <= 0 {
		maxEntries = 50
	}

	s := &Service{
		path:       filepath.Join(dir, fileName),
		maxEntries: maxEntries,
		now:        time.Now,
	}

	if err := s.load(); err != nil {
		slog.Warn("Failed to load notepad, starting empty", "error", err)
	}

	return s, nil
}

func (s *Service) Add(text string) (Entry, error) {
	entry := Entry{
		ID:        uuid.NewString(),
		Timestamp: s.now().Format(timestampLayout),
		Text:      text,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append([]Entry{entry}, s.entries...)
	if len(s.entries) > s.maxEntries {
		s.entries = s.entries[:s.maxEntries]
	}

	if err := s.saveLocked(); err != nil {
		return entry, err
	}

	slog.Info("Note added", "text", text)

	return entry, nil
}

func (s *Service) List() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Entry, len(s.entries))
	copy(result, s.entries)
	return result
}

// Delete removes the note with the given id and reports whether it existed.
func (s *Service) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := pie.Filter(s.entries, func(e Entry) bool {
		return e.ID != id
	})
	if len(kept) == len(s.entries) {
		return false, nil
	}

	s.entries = kept

	return true, s.saveLocked()
}

// Clear forgets all notes and removes the notepad file.
func (s *Service) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return oops.In("notepad").Wrapf(err, "failed to delete notepad file")
	}

	return nil
}

func (s *Service) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return oops.In("notepad").Wrapf(err, "failed to read notepad file")
	}

	var entries []Entry
	if err = json.Unmarshal(data, &entries); err != nil {
		return oops.In("notepad").Wrapf(err, "failed to parse notepad file")
	}

	for i := range entries {
		if entries[i].ID == "" {
			entries[i].ID = uuid.NewString()
		}
	}

	s.entries = entries
	slog.Info("Loaded notepad entries", "count", len(entries))

	return nil
}

func (s *Service) saveLocked() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return oops.In("notepad").Wrapf(err, "failed to marshal notepad")
	}

	if err = os.WriteFile(s.path, data, 0644); err != nil {
		return oops.In("notepad").Wrapf(err, "failed to write notepad file")
	}

	return nil
}
