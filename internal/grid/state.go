package grid

import (
	"fmt"
	"strings"
)

// Alignment is the horizontal text alignment of a cell.
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// Valid reports whether a is a known alignment.
func (a Alignment) Valid() bool {
	switch a {
	case AlignLeft, AlignCenter, AlignRight:
		return true
	}
	return false
}

// CellContent is the optional payload of a cell. Absence from the content map means empty.
type CellContent struct {
	Text       string    `json:"text" mapstructure:"text"`
	IsVertical bool      `json:"isVertical" mapstructure:"isVertical"`
	Alignment  Alignment `json:"alignment" mapstructure:"alignment"`
	ClassTag   string    `json:"classTag,omitempty" mapstructure:"classTag"`
}

// Span is the extent of a merged region anchored at its master cell.
type Span struct {
	RowSpan int `json:"rowSpan" mapstructure:"rowSpan"`
	ColSpan int `json:"colSpan" mapstructure:"colSpan"`
}

const (
	DefaultColumnCount  = 12
	MaxColumnCount      = 48
	DefaultSlotDuration = 45
	DefaultStartTime    = 8 * 60
	minutesPerDay       = 24 * 60
	defaultAlignment    = AlignCenter
)

// Options seed a fresh State.
type Options struct {
	ColumnCount     int
	DefaultDuration int
	StartTime       int
}

// State holds the coupled grid structures of one editing session.
// It is not safe for concurrent use; callers serialize mutations.
type State struct {
	columnCount     int
	defaultDuration int
	startTime       int

	contents  map[Coord]CellContent
	merges    map[Coord]Span
	hidden    CoordSet
	durations map[int]int
	selection CoordSet

	editing    *Coord
	editBuffer string
}

// New returns an empty grid.
func New(opts Options) *State {
	if opts.ColumnCount < 1 {
		opts.ColumnCount = DefaultColumnCount
	}
	if opts.ColumnCount > MaxColumnCount {
		opts.ColumnCount = MaxColumnCount
	}
	if opts.DefaultDuration <= 0 {
		opts.DefaultDuration = DefaultSlotDuration
	}
	if opts.StartTime < 0 || opts.StartTime >= minutesPerDay {
		opts.StartTime = DefaultStartTime
	}
	return &State{
		columnCount:     opts.ColumnCount,
		defaultDuration: opts.DefaultDuration,
		startTime:       opts.StartTime,
		contents:        make(map[Coord]CellContent),
		merges:          make(map[Coord]Span),
		hidden:          make(CoordSet),
		durations:       make(map[int]int),
		selection:       make(CoordSet),
	}
}

// ColumnCount returns the number of time columns.
func (s *State) ColumnCount() int { return s.columnCount }

// DefaultDuration returns the slot duration used for columns without an override.
func (s *State) DefaultDuration() int { return s.defaultDuration }

// StartTime returns the first column's start, in minutes after midnight.
func (s *State) StartTime() int { return s.startTime }

// InBounds reports whether c lies inside the grid.
func (s *State) InBounds(c Coord) bool {
	return c.Row >= 0 && c.Row < DayRows && c.Col >= 0 && c.Col < s.columnCount
}

// IsHidden reports whether c is covered by a merge region it does not anchor.
func (s *State) IsHidden(c Coord) bool {
	return s.hidden.Has(c)
}

// Content returns the content of c, if any.
func (s *State) Content(c Coord) (CellContent, bool) {
	content, ok := s.contents[c]
	return content, ok
}

// Contents returns a copy of the content map.
func (s *State) Contents() map[Coord]CellContent {
	out := make(map[Coord]CellContent, len(s.contents))
	for c, v := range s.contents {
		out[c] = v
	}
	return out
}

// Merges returns a copy of the merge-region map.
func (s *State) Merges() map[Coord]Span {
	out := make(map[Coord]Span, len(s.merges))
	for c, v := range s.merges {
		out[c] = v
	}
	return out
}

// Hidden returns a copy of the hidden set.
func (s *State) Hidden() CoordSet {
	return s.hidden.clone()
}

// Selection returns a copy of the current selection.
func (s *State) Selection() CoordSet {
	return s.selection.clone()
}

// Durations returns a copy of the per-column duration overrides.
func (s *State) Durations() map[int]int {
	out := make(map[int]int, len(s.durations))
	for col, d := range s.durations {
		out[col] = d
	}
	return out
}

// AddressableCells lists every in-bounds cell that is not hidden, row-major.
func (s *State) AddressableCells() []Coord {
	cells := make([]Coord, 0, DayRows*s.columnCount)
	for row := 0; row < DayRows; row++ {
		for col := 0; col < s.columnCount; col++ {
			c := Coord{Row: row, Col: col}
			if s.hidden.Has(c) {
				continue
			}
			cells = append(cells, c)
		}
	}
	return cells
}

// SetCellContent stores content for an addressable cell. Empty text clears it.
func (s *State) SetCellContent(c Coord, content CellContent) bool {
	if !s.InBounds(c) || s.hidden.Has(c) {
		return false
	}
	content.Text = strings.TrimSpace(content.Text)
	if content.Text == "" {
		delete(s.contents, c)
		return true
	}
	if !content.Alignment.Valid() {
		content.Alignment = defaultAlignment
	}
	s.contents[c] = content
	return true
}

// ClearCell removes the content of c.
func (s *State) ClearCell(c Coord) bool {
	if _, ok := s.contents[c]; !ok {
		return false
	}
	delete(s.contents, c)
	return true
}

// MergeContents writes entries of src whose cells are currently empty and addressable.
// Existing content always wins. It returns the number of cells written.
func (s *State) MergeContents(src map[Coord]CellContent) int {
	written := 0
	for c, content := range src {
		if _, exists := s.contents[c]; exists {
			continue
		}
		if s.SetCellContent(c, content) {
			written++
		}
	}
	return written
}

// SetAlignment applies a to every selected cell holding content.
func (s *State) SetAlignment(a Alignment) int {
	if !a.Valid() {
		return 0
	}
	changed := 0
	for c := range s.selection {
		content, ok := s.contents[c]
		if !ok {
			continue
		}
		content.Alignment = a
		s.contents[c] = content
		changed++
	}
	return changed
}

// ToggleVertical flips the vertical flag of every selected cell holding content.
func (s *State) ToggleVertical() int {
	changed := 0
	for c := range s.selection {
		content, ok := s.contents[c]
		if !ok {
			continue
		}
		content.IsVertical = !content.IsVertical
		s.contents[c] = content
		changed++
	}
	return changed
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	out := &State{
		columnCount:     s.columnCount,
		defaultDuration: s.defaultDuration,
		startTime:       s.startTime,
		contents:        s.Contents(),
		merges:          s.Merges(),
		hidden:          s.hidden.clone(),
		durations:       s.Durations(),
		selection:       s.selection.clone(),
		editBuffer:      s.editBuffer,
	}
	if s.editing != nil {
		c := *s.editing
		out.editing = &c
	}
	return out
}

// Validate checks the coupling invariants between merges, hidden cells and bounds.
func (s *State) Validate() error {
	if s.columnCount < 1 {
		return fmt.Errorf("column count %d below 1", s.columnCount)
	}
	covered := make(CoordSet)
	for master, span := range s.merges {
		if span.RowSpan < 1 || span.ColSpan < 1 {
			return fmt.Errorf("merge %s has invalid span %dx%d", master, span.RowSpan, span.ColSpan)
		}
		for _, c := range spanCells(master, span) {
			if covered.Has(c) {
				return fmt.Errorf("merge %s overlaps another region at %s", master, c)
			}
			covered[c] = struct{}{}
			if c == master {
				continue
			}
			if !s.hidden.Has(c) && s.InBounds(c) {
				return fmt.Errorf("merge %s does not hide %s", master, c)
			}
		}
	}
	for c := range s.hidden {
		if !covered.Has(c) {
			return fmt.Errorf("hidden cell %s is not covered by any merge", c)
		}
		if _, isMaster := s.merges[c]; isMaster {
			return fmt.Errorf("hidden cell %s is a merge master", c)
		}
		if _, ok := s.contents[c]; ok {
			return fmt.Errorf("hidden cell %s holds content", c)
		}
	}
	return nil
}

func spanCells(master Coord, span Span) []Coord {
	cells := make([]Coord, 0, span.RowSpan*span.ColSpan)
	for r := master.Row; r < master.Row+span.RowSpan; r++ {
		for c := master.Col; c < master.Col+span.ColSpan; c++ {
			cells = append(cells, Coord{Row: r, Col: c})
		}
	}
	return cells
}
