// Package store persists manager snapshots. CSVStore writes the flat record
// format, one line per item; SQLiteStore keeps the same records in a table.
package store

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/baiirun/taskline/internal/model"
)

// ErrFormat marks a record that can't be decoded.
var ErrFormat = errors.New("malformed record")

// Header lists the record fields in order.
var Header = []string{"id", "type", "name", "status", "description", "duration", "startTime", "endTime", "epic"}

const (
	// TimeLayout is the timestamp layout used in records.
	TimeLayout = "02.01.2006 15:04:05"

	// NullValue marks an absent timestamp.
	NullValue = "null"
)

// Record kind tags.
const (
	TagTask    = "TASK"
	TagEpic    = "EPIC"
	TagSubTask = "SUBTASK"
)

// HistoryTag starts the optional trailing record that lists history ids,
// oldest first.
const HistoryTag = "history"

var kindTags = map[model.Kind]string{
	model.KindTask:    TagTask,
	model.KindEpic:    TagEpic,
	model.KindSubTask: TagSubTask,
}

func kindFromTag(tag string) (model.Kind, bool) {
	for k, t := range kindTags {
		if t == tag {
			return k, true
		}
	}
	return "", false
}

func formatTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return NullValue
	}
	return t.In(loc).Format(TimeLayout)
}

func parseTime(s string, loc *time.Location) (time.Time, error) {
	if s == NullValue {
		return time.Time{}, nil
	}
	return time.ParseInLocation(TimeLayout, s, loc)
}

// EncodeRecord renders an item as record fields. The epic field is empty
// for anything but a subtask.
func EncodeRecord(item model.Item, loc *time.Location) []string {
	epic := ""
	if item.Kind == model.KindSubTask {
		epic = strconv.Itoa(item.EpicID)
	}
	return []string{
		strconv.Itoa(item.ID),
		kindTags[item.Kind],
		item.Title,
		string(item.Status),
		item.Description,
		strconv.FormatInt(int64(item.Duration/time.Minute), 10),
		formatTime(item.Start, loc),
		formatTime(item.EndTime(), loc),
		epic,
	}
}

func formatErr(line int, format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrFormat, line, fmt.Sprintf(format, args...))
}

// DecodeRecord parses record fields into an item. line is only used in
// error messages. Derived epic fields are read but recomputed on restore.
func DecodeRecord(fields []string, line int, loc *time.Location) (model.Item, error) {
	if len(fields) != len(Header) {
		return model.Item{}, formatErr(line, "want %d fields, got %d", len(Header), len(fields))
	}

	id, err := strconv.Atoi(fields[0])
	if err != nil || id <= 0 {
		return model.Item{}, formatErr(line, "bad id %q", fields[0])
	}
	kind, ok := kindFromTag(fields[1])
	if !ok {
		return model.Item{}, formatErr(line, "unknown type %q", fields[1])
	}
	status := model.Status(fields[3])
	if !status.IsValid() {
		return model.Item{}, formatErr(line, "unknown status %q", fields[3])
	}
	minutes, err := strconv.ParseInt(fields[5], 10, 64)
	if err != nil || minutes < 0 {
		return model.Item{}, formatErr(line, "bad duration %q", fields[5])
	}
	start, err := parseTime(fields[6], loc)
	if err != nil {
		return model.Item{}, formatErr(line, "bad start time %q", fields[6])
	}
	end, err := parseTime(fields[7], loc)
	if err != nil {
		return model.Item{}, formatErr(line, "bad end time %q", fields[7])
	}

	item := model.Item{
		ID:          id,
		Kind:        kind,
		Title:       fields[2],
		Status:      status,
		Description: fields[4],
		Duration:    time.Duration(minutes) * time.Minute,
		Start:       start,
	}

	switch kind {
	case model.KindEpic:
		item.End = end
	case model.KindSubTask:
		epicID, err := strconv.Atoi(fields[8])
		if err != nil || epicID <= 0 {
			return model.Item{}, formatErr(line, "subtask %d has bad epic id %q", id, fields[8])
		}
		item.EpicID = epicID
	}
	return item, nil
}

// EncodeHistory renders the history record. It returns nil for an empty
// history, which is not written.
func EncodeHistory(ids []int) []string {
	if len(ids) == 0 {
		return nil
	}
	fields := make([]string, 0, len(ids)+1)
	fields = append(fields, HistoryTag)
	for _, id := range ids {
		fields = append(fields, strconv.Itoa(id))
	}
	return fields
}

// DecodeHistory parses the ids of a history record.
func DecodeHistory(fields []string, line int) ([]int, error) {
	if len(fields) == 0 || fields[0] != HistoryTag {
		return nil, formatErr(line, "not a history record")
	}
	ids := make([]int, 0, len(fields)-1)
	for _, f := range fields[1:] {
		id, err := strconv.Atoi(f)
		if err != nil || id <= 0 {
			return nil, formatErr(line, "bad history id %q", f)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
