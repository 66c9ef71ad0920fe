package memory

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"ludo/app/config"
	"ludo/app/service/dialog"

	"github.com/samber/do"
	"github.com/samber/oops"
)

const (
	transcriptFile = "memory.json"
	summaryFile    = "summary.txt"
	stateFile      = "memory_state.json"
)

var _ dialog.Persister = (*Service)(nil)

type state struct {
	Summarized int `json:"summarized"`
}

// Service keeps the session on disk: the transcript as a JSON array of
// "User: ..." / "<Name>: ..." lines, the running summary as plain text and
// the summarization cursor in a small sidecar file.
type Service struct {
	dir string
	mu  sync.RWMutex
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)
	return NewService(cfg.Memory.Dir)
}

func NewService(dir string) (*Service, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, oops.In("memory").Wrapf(err, "failed to create memory dir")
	}

	return &Service{dir: dir}, nil
}

func (s *Service) Load() (*dialog.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	errb := oops.In("memory").With("dir", s.dir)

	lines, linesFound, err := s.readLines()
	if err != nil {
		return nil, errb.Wrapf(err, "failed to read transcript")
	}

	summary, summaryFound, err := s.readFile(summaryFile)
	if err != nil {
		return nil, errb.Wrapf(err, "failed to read summary")
	}

	if !linesFound && !summaryFound {
		slog.Info("Starting with fresh memory")
		return nil, nil
	}

	var st state
	if data, found, err := s.readFile(stateFile); err != nil {
		return nil, errb.Wrapf(err, "failed to read memory state")
	} else if found {
		if err = json.Unmarshal([]byte(data), &st); err != nil {
			slog.Warn("Ignoring corrupt memory state", "error", err)
			st = state{}
		}
	}

	slog.Info("Loaded memory",
		"messages", len(lines),
		"summary_length", len(summary),
	)

	return &dialog.Snapshot{
		Lines:      lines,
		Summary:    strings.TrimRight(summary, "\n"),
		Summarized: st.Summarized,
	}, nil
}

func (s *Service) Save(snapshot dialog.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	errb := oops.In("memory").With("dir", s.dir)

	lines := snapshot.Lines
	if lines == nil {
		lines = []string{}
	}

	transcript, err := encodeJSON(lines)
	if err != nil {
		return errb.Wrapf(err, "failed to marshal transcript")
	}

	st, err := encodeJSON(state{Summarized: snapshot.Summarized})
	if err != nil {
		return errb.Wrapf(err, "failed to marshal memory state")
	}

	if err = s.writeFile(transcriptFile, transcript); err != nil {
		return errb.Wrapf(err, "failed to write transcript")
	}

	if err = s.writeFile(summaryFile, []byte(snapshot.Summary)); err != nil {
		return errb.Wrapf(err, "failed to write summary")
	}

	if err = s.writeFile(stateFile, st); err != nil {
		return errb.Wrapf(err, "failed to write memory state")
	}

	return nil
}

func (s *Service) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, name := range []string{transcriptFile, summaryFile, stateFile} {
		err := os.Remove(filepath.Join(s.dir, name))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return oops.In("memory").With("file", name).Wrapf(err, "failed to delete memory file")
		}
	}

	return nil
}

func (s *Service) readLines() ([]string, bool, error) {
	data, found, err := s.readFile(transcriptFile)
	if err != nil || !found {
		return nil, found, err
	}

	var lines []string
	if err = json.Unmarshal([]byte(data), &lines); err != nil {
		return nil, true, err
	}

	return lines, true, nil
}

func (s *Service) readFile(name string) (string, bool, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	return string(data), true, nil
}

// writeFile replaces name atomically.
func (s *Service) writeFile(name string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	if err = tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), filepath.Join(s.dir, name))
}

func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
