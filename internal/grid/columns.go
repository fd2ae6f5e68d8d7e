package grid

import "fmt"

// AddColumnAfter inserts a column to the right of index. References to columns
// strictly greater than index shift right by one; hidden cells are re-derived
// from the shifted merge regions. A grid at MaxColumnCount is left unchanged.
func (s *State) AddColumnAfter(index int) bool {
	if index < -1 || index >= s.columnCount || s.columnCount >= MaxColumnCount {
		return false
	}
	shift := func(c Coord) Coord {
		if c.Col > index {
			c.Col++
		}
		return c
	}

	s.columnCount++
	s.contents = remapContents(s.contents, shift)
	s.merges = remapMerges(s.merges, shift)
	s.selection = remapSet(s.selection, shift)
	if s.editing != nil {
		c := shift(*s.editing)
		s.editing = &c
	}

	durations := make(map[int]int, len(s.durations))
	for col, d := range s.durations {
		if col > index {
			col++
		}
		durations[col] = d
	}
	s.durations = durations

	s.rebuildHidden()
	return true
}

// DeleteColumn removes column index. Any merge region whose columns include
// index is dropped entirely; references right of index shift left. The grid
// never shrinks below one column.
func (s *State) DeleteColumn(index int) bool {
	if s.columnCount <= 1 || index < 0 || index >= s.columnCount {
		return false
	}

	merges := make(map[Coord]Span, len(s.merges))
	for master, span := range s.merges {
		if master.Col <= index && index < master.Col+span.ColSpan {
			continue
		}
		if master.Col > index {
			master.Col--
		}
		merges[master] = span
	}
	s.merges = merges

	shift := func(c Coord) (Coord, bool) {
		switch {
		case c.Col == index:
			return c, false
		case c.Col > index:
			c.Col--
		}
		return c, true
	}

	contents := make(map[Coord]CellContent, len(s.contents))
	for c, content := range s.contents {
		if moved, ok := shift(c); ok {
			contents[moved] = content
		}
	}
	s.contents = contents

	selection := make(CoordSet, len(s.selection))
	for c := range s.selection {
		if moved, ok := shift(c); ok {
			selection[moved] = struct{}{}
		}
	}
	s.selection = selection

	if s.editing != nil {
		if moved, ok := shift(*s.editing); ok {
			s.editing = &moved
		} else {
			s.editing = nil
			s.editBuffer = ""
		}
	}

	durations := make(map[int]int, len(s.durations))
	for col, d := range s.durations {
		switch {
		case col == index:
			continue
		case col > index:
			col--
		}
		durations[col] = d
	}
	s.durations = durations

	s.columnCount--
	s.rebuildHidden()
	return true
}

// SetColumnDuration overrides the slot duration of col. A non-positive value restores the default.
func (s *State) SetColumnDuration(col, minutes int) bool {
	if col < 0 || col >= s.columnCount {
		return false
	}
	if minutes <= 0 {
		delete(s.durations, col)
		return true
	}
	s.durations[col] = minutes
	return true
}

// SetDefaultDuration changes the duration used by columns without an override.
func (s *State) SetDefaultDuration(minutes int) bool {
	if minutes <= 0 {
		return false
	}
	s.defaultDuration = minutes
	return true
}

// SetStartTime changes the start of the first column, in minutes after midnight.
func (s *State) SetStartTime(minutes int) bool {
	if minutes < 0 || minutes >= minutesPerDay {
		return false
	}
	s.startTime = minutes
	return true
}

// ColumnDuration returns the effective duration of col.
func (s *State) ColumnDuration(col int) int {
	if d, ok := s.durations[col]; ok {
		return d
	}
	return s.defaultDuration
}

// TimeLabels returns one "HH:MM - HH:MM" label per column, accumulated from the start time.
func (s *State) TimeLabels() []string {
	labels := make([]string, s.columnCount)
	start := s.startTime
	for col := 0; col < s.columnCount; col++ {
		end := start + s.ColumnDuration(col)
		labels[col] = fmt.Sprintf("%s - %s", clock(start), clock(end))
		start = end
	}
	return labels
}

func clock(minutes int) string {
	minutes %= minutesPerDay
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func remapContents(in map[Coord]CellContent, fn func(Coord) Coord) map[Coord]CellContent {
	out := make(map[Coord]CellContent, len(in))
	for c, v := range in {
		out[fn(c)] = v
	}
	return out
}

func remapMerges(in map[Coord]Span, fn func(Coord) Coord) map[Coord]Span {
	out := make(map[Coord]Span, len(in))
	for c, v := range in {
		out[fn(c)] = v
	}
	return out
}

func remapSet(in CoordSet, fn func(Coord) Coord) CoordSet {
	out := make(CoordSet, len(in))
	for c := range in {
		out[fn(c)] = struct{}{}
	}
	return out
}
