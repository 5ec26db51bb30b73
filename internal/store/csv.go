package store

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/baiirun/taskline/internal/manager"
	"github.com/baiirun/taskline/internal/model"
)

// CSVStore saves snapshots as a comma-separated file with a header line.
type CSVStore struct {
	Path string
	// Location interprets timestamps, which carry no zone. Defaults to time.Local.
	Location *time.Location
}

var _ manager.Store = (*CSVStore)(nil)

// NewCSVStore returns a store for the file at path.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{Path: path, Location: time.Local}
}

func (s *CSVStore) loc() *time.Location {
	if s.Location == nil {
		return time.Local
	}
	return s.Location
}

// Load reads the file. A missing or empty file is an empty snapshot.
func (s *CSVStore) Load() (manager.Snapshot, error) {
	f, err := os.Open(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return manager.Snapshot{}, nil
	}
	if err != nil {
		return manager.Snapshot{}, fmt.Errorf("failed to open %s: %w", s.Path, err)
	}
	defer f.Close()

	snap, err := Decode(f, s.loc())
	if err != nil {
		return manager.Snapshot{}, fmt.Errorf("failed to read %s: %w", s.Path, err)
	}
	return snap, nil
}

// Save replaces the file with snap.
func (s *CSVStore) Save(snap manager.Snapshot) error {
	var buf bytes.Buffer
	if err := Encode(&buf, snap, s.loc()); err != nil {
		return err
	}
	if err := atomicWriteFile(s.Path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.Path, err)
	}
	return nil
}

// Encode writes the header, then tasks, epics and subtasks, then the history
// record if there is one.
func Encode(w io.Writer, snap manager.Snapshot, loc *time.Location) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, group := range [][]model.Item{snap.Tasks, snap.Epics, snap.SubTasks} {
		for _, item := range group {
			if err := cw.Write(EncodeRecord(item, loc)); err != nil {
				return fmt.Errorf("failed to write item %d: %w", item.ID, err)
			}
		}
	}
	if rec := EncodeHistory(snap.History); rec != nil {
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write history: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Decode reads records in file order and groups them by kind.
func Decode(r io.Reader, loc *time.Location) (manager.Snapshot, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // checked per record for a better message

	var snap manager.Snapshot
	header, err := cr.Read()
	if err == io.EOF {
		return snap, nil
	}
	if err != nil {
		return snap, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if !slices.Equal(header, Header) {
		return snap, fmt.Errorf("%w: unexpected header %q", ErrFormat, header)
	}

	for line := 2; ; line++ {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return manager.Snapshot{}, fmt.Errorf("%w: line %d: %v", ErrFormat, line, err)
		}
		if fields[0] == HistoryTag {
			if snap.History, err = DecodeHistory(fields, line); err != nil {
				return manager.Snapshot{}, err
			}
			continue
		}
		item, err := DecodeRecord(fields, line, loc)
		if err != nil {
			return manager.Snapshot{}, err
		}
		switch item.Kind {
		case model.KindTask:
			snap.Tasks = append(snap.Tasks, item)
		case model.KindEpic:
			snap.Epics = append(snap.Epics, item)
		case model.KindSubTask:
			snap.SubTasks = append(snap.SubTasks, item)
		}
	}
	return snap, nil
}
