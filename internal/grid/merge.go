package grid

// bounds returns the bounding box of the given cells.
func bounds(cells []Coord) (minRow, maxRow, minCol, maxCol int) {
	minRow, minCol = cells[0].Row, cells[0].Col
	maxRow, maxCol = minRow, minCol
	for _, c := range cells[1:] {
		if c.Row < minRow {
			minRow = c.Row
		}
		if c.Row > maxRow {
			maxRow = c.Row
		}
		if c.Col < minCol {
			minCol = c.Col
		}
		if c.Col > maxCol {
			maxCol = c.Col
		}
	}
	return minRow, maxRow, minCol, maxCol
}

// CanMerge reports whether the selection is at least two cells that exactly fill their bounding box.
func CanMerge(selection []Coord) bool {
	unique := make(CoordSet, len(selection))
	for _, c := range selection {
		unique[c] = struct{}{}
	}
	if len(unique) < 2 {
		return false
	}
	cells := unique.Sorted()
	minRow, maxRow, minCol, maxCol := bounds(cells)
	if (maxRow-minRow+1)*(maxCol-minCol+1) != len(unique) {
		return false
	}
	for r := minRow; r <= maxRow; r++ {
		for c := minCol; c <= maxCol; c++ {
			if !unique.Has(Coord{Row: r, Col: c}) {
				return false
			}
		}
	}
	return true
}

// CanMergeSelection applies CanMerge to the current selection.
func (s *State) CanMergeSelection() bool {
	return CanMerge(s.selection.Sorted())
}

// MergeCells merges the rectangular selection into a region anchored at its top-left cell.
// A non-rectangular selection is a no-op. The master cell's content is left untouched;
// content on the newly hidden cells is discarded.
func (s *State) MergeCells(selection []Coord) bool {
	if !CanMerge(selection) {
		return false
	}
	for _, c := range selection {
		if !s.InBounds(c) {
			return false
		}
	}
	minRow, maxRow, minCol, maxCol := bounds(selection)
	master := Coord{Row: minRow, Col: minCol}
	span := Span{RowSpan: maxRow - minRow + 1, ColSpan: maxCol - minCol + 1}

	box := rect{master: master, span: span}
	var absorbed []Coord
	for other, otherSpan := range s.merges {
		r := rect{master: other, span: otherSpan}
		if !box.intersects(r) {
			continue
		}
		if !box.contains(r) {
			return false
		}
		absorbed = append(absorbed, other)
	}
	for _, other := range absorbed {
		delete(s.merges, other)
	}

	s.merges[master] = span
	for _, c := range spanCells(master, span) {
		if c == master {
			continue
		}
		s.hidden[c] = struct{}{}
	}
	s.dropHiddenContent()
	s.selection = make(CoordSet)
	return true
}

// MergeSelection merges the current selection.
func (s *State) MergeSelection() bool {
	return s.MergeCells(s.selection.Sorted())
}

// UnmergeCell drops the region anchored at master and reveals its hidden cells.
func (s *State) UnmergeCell(master Coord) bool {
	span, ok := s.merges[master]
	if !ok {
		return false
	}
	delete(s.merges, master)
	for _, c := range spanCells(master, span) {
		delete(s.hidden, c)
	}
	return true
}

// MergeAt returns the region anchored at c, if any.
func (s *State) MergeAt(c Coord) (Span, bool) {
	span, ok := s.merges[c]
	return span, ok
}

// rebuildHidden recomputes the hidden set from the merge regions, discarding out-of-bounds cells.
func (s *State) rebuildHidden() {
	s.hidden = make(CoordSet)
	for master, span := range s.merges {
		for _, c := range spanCells(master, span) {
			if c == master || !s.InBounds(c) {
				continue
			}
			s.hidden[c] = struct{}{}
		}
	}
}

// dropHiddenContent removes content from hidden cells and ends an edit on one.
func (s *State) dropHiddenContent() {
	for c := range s.hidden {
		delete(s.contents, c)
	}
	if s.editing != nil && s.hidden.Has(*s.editing) {
		s.editing = nil
		s.editBuffer = ""
	}
}

type rect struct {
	master Coord
	span   Span
}

func (r rect) maxRow() int { return r.master.Row + r.span.RowSpan - 1 }
func (r rect) maxCol() int { return r.master.Col + r.span.ColSpan - 1 }

func (r rect) intersects(o rect) bool {
	return r.master.Row <= o.maxRow() && o.master.Row <= r.maxRow() &&
		r.master.Col <= o.maxCol() && o.master.Col <= r.maxCol()
}

func (r rect) contains(o rect) bool {
	return o.master.Row >= r.master.Row && o.maxRow() <= r.maxRow() &&
		o.master.Col >= r.master.Col && o.maxCol() <= r.maxCol()
}
