package metadata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"melpack/internal/targets"
)

// Labels carries everything known about one corpus item. Absence of a label
// kind is represented by empty slices, never by sentinel values.
type Labels struct {
	Weak   []string
	Strong []targets.Event
}

// Table is the parsed label table of one split.
type Table struct {
	Split     Split
	HasWeak   bool
	HasStrong bool

	names []string
	items map[string]*Labels
}

// Load reads and parses the split's metadata CSV.
func Load(split Split, path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open metadata %s: %w", path, err)
	}
	defer file.Close()

	table, err := Parse(split, file)
	if err != nil {
		return nil, fmt.Errorf("parse metadata %s: %w", path, err)
	}
	return table, nil
}

// Parse reads a tab-separated label table. The header row names the columns;
// filename is required, the label columns decide HasWeak/HasStrong for the
// whole split.
func Parse(split Split, r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := map[string]int{}
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	fileCol, ok := cols["filename"]
	if !ok {
		return nil, errors.New("metadata header missing filename column")
	}
	weakCol, hasWeak := cols["event_labels"]
	onsetCol, hasOnset := cols["onset"]
	offsetCol, hasOffset := cols["offset"]
	eventCol, hasEvent := cols["event_label"]
	hasStrong := hasOnset && hasOffset && hasEvent

	table := &Table{
		Split:     split,
		HasWeak:   hasWeak,
		HasStrong: hasStrong,
		items:     map[string]*Labels{},
	}

	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		name := strings.TrimSpace(record[fileCol])
		if name == "" {
			return nil, fmt.Errorf("line %d: empty filename", line)
		}

		labels, seen := table.items[name]
		if !seen {
			labels = &Labels{}
			table.items[name] = labels
			table.names = append(table.names, name)
		}

		if hasWeak && weakCol < len(record) {
			for _, tag := range strings.Split(record[weakCol], ",") {
				tag = strings.TrimSpace(tag)
				// An empty field means "not annotated": the row still names a
				// corpus item, it just carries no tags.
				if tag != "" {
					labels.Weak = append(labels.Weak, tag)
				}
			}
		}

		if hasStrong {
			event, ok, err := parseEvent(record, onsetCol, offsetCol, eventCol)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			if ok {
				labels.Strong = append(labels.Strong, event)
			}
		}
	}

	return table, nil
}

func parseEvent(record []string, onsetCol, offsetCol, eventCol int) (targets.Event, bool, error) {
	if eventCol >= len(record) {
		return targets.Event{}, false, nil
	}
	label := strings.TrimSpace(record[eventCol])
	if label == "" {
		// Unannotated row: the item exists without events.
		return targets.Event{}, false, nil
	}

	onset, err := strconv.ParseFloat(strings.TrimSpace(record[onsetCol]), 64)
	if err != nil {
		return targets.Event{}, false, fmt.Errorf("parse onset: %w", err)
	}
	offset, err := strconv.ParseFloat(strings.TrimSpace(record[offsetCol]), 64)
	if err != nil {
		return targets.Event{}, false, fmt.Errorf("parse offset: %w", err)
	}
	if offset < onset {
		return targets.Event{}, false, fmt.Errorf("event %q offset %g before onset %g", label, offset, onset)
	}

	return targets.Event{Label: label, Onset: onset, Offset: offset}, true, nil
}

// Names returns the item names in file order. Callers needing deterministic
// processing order must sort.
func (t *Table) Names() []string {
	return append([]string(nil), t.names...)
}

// Lookup returns the labels recorded for an item. Items named in the CSV with
// no annotations return an empty Labels value.
func (t *Table) Lookup(name string) Labels {
	if labels, ok := t.items[name]; ok {
		return *labels
	}
	return Labels{}
}

// Len returns the number of distinct items in the table.
func (t *Table) Len() int { return len(t.names) }
