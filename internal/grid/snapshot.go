package grid

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Snapshot is the string-keyed boundary form of a State used by templates,
// caches and exporters. Selection and edit state are session-local and not captured.
type Snapshot struct {
	ColumnCount     int                    `json:"columnCount" mapstructure:"columnCount"`
	DefaultDuration int                    `json:"defaultDuration" mapstructure:"defaultDuration"`
	StartTime       int                    `json:"startTime" mapstructure:"startTime"`
	Cells           map[string]CellContent `json:"cells" mapstructure:"cells"`
	Merges          map[string]Span        `json:"merges" mapstructure:"merges"`
	Hidden          []string               `json:"hidden" mapstructure:"hidden"`
	Durations       map[string]int         `json:"durations" mapstructure:"durations"`
}

// Snapshot captures the persistent structures of s.
func (s *State) Snapshot() Snapshot {
	snap := Snapshot{
		ColumnCount:     s.columnCount,
		DefaultDuration: s.defaultDuration,
		StartTime:       s.startTime,
		Cells:           make(map[string]CellContent, len(s.contents)),
		Merges:          make(map[string]Span, len(s.merges)),
		Hidden:          s.hidden.Keys(),
		Durations:       make(map[string]int, len(s.durations)),
	}
	for c, content := range s.contents {
		snap.Cells[c.Key()] = content
	}
	for c, span := range s.merges {
		snap.Merges[c.Key()] = span
	}
	for col, d := range s.durations {
		snap.Durations[strconv.Itoa(col)] = d
	}
	return snap
}

// FromSnapshot rebuilds a State. The hidden list is advisory: hidden cells are
// re-derived from the merge regions so a stale list cannot break the invariant.
// Blank cell text and content under hidden cells are dropped.
func FromSnapshot(snap Snapshot) (*State, error) {
	s := New(Options{
		ColumnCount:     snap.ColumnCount,
		DefaultDuration: snap.DefaultDuration,
		StartTime:       snap.StartTime,
	})
	for key, content := range snap.Cells {
		c, err := ParseKey(key)
		if err != nil {
			return nil, err
		}
		content.Text = strings.TrimSpace(content.Text)
		if !s.InBounds(c) || content.Text == "" {
			continue
		}
		if !content.Alignment.Valid() {
			content.Alignment = defaultAlignment
		}
		s.contents[c] = content
	}

	masters := make([]Coord, 0, len(snap.Merges))
	spans := make(map[Coord]Span, len(snap.Merges))
	for key, span := range snap.Merges {
		c, err := ParseKey(key)
		if err != nil {
			return nil, err
		}
		if span.RowSpan < 1 || span.ColSpan < 1 {
			return nil, fmt.Errorf("merge %s has invalid span %dx%d", key, span.RowSpan, span.ColSpan)
		}
		masters = append(masters, c)
		spans[c] = span
	}
	SortCoords(masters)
	for _, master := range masters {
		span := spans[master]
		r := rect{master: master, span: span}
		if !s.InBounds(master) || r.maxRow() >= DayRows || r.maxCol() >= s.columnCount {
			return nil, fmt.Errorf("merge %s exceeds grid bounds", master)
		}
		for other, otherSpan := range s.merges {
			if r.intersects(rect{master: other, span: otherSpan}) {
				return nil, fmt.Errorf("merge %s overlaps merge %s", master, other)
			}
		}
		s.merges[master] = span
	}

	cols := make([]string, 0, len(snap.Durations))
	for col := range snap.Durations {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	for _, raw := range cols {
		col, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid duration column %q: %w", raw, err)
		}
		s.SetColumnDuration(col, snap.Durations[raw])
	}

	s.rebuildHidden()
	s.dropHiddenContent()
	return s, nil
}

// DecodeSnapshot converts a loosely typed JSON object into a Snapshot.
func DecodeSnapshot(raw map[string]any) (Snapshot, error) {
	var snap Snapshot
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &snap,
	})
	if err != nil {
		return Snapshot{}, fmt.Errorf("build snapshot decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}
