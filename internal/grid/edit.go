package grid

import "strings"

// HandleCellClick toggles c in the selection. Hidden cells and clicks during an edit are ignored.
func (s *State) HandleCellClick(c Coord) bool {
	if s.editing != nil || !s.InBounds(c) || s.hidden.Has(c) {
		return false
	}
	if s.selection.Has(c) {
		delete(s.selection, c)
	} else {
		s.selection[c] = struct{}{}
	}
	return true
}

// ClearSelection empties the selection.
func (s *State) ClearSelection() {
	s.selection = make(CoordSet)
}

// HandleCellDoubleClick starts editing c, seeding the buffer from its current text.
// Only one cell can be edited at a time.
func (s *State) HandleCellDoubleClick(c Coord) bool {
	if s.editing != nil || !s.InBounds(c) || s.hidden.Has(c) {
		return false
	}
	s.editing = &c
	s.editBuffer = s.contents[c].Text
	return true
}

// Editing returns the cell under edit.
func (s *State) Editing() (Coord, bool) {
	if s.editing == nil {
		return Coord{}, false
	}
	return *s.editing, true
}

// EditBuffer returns the uncommitted text of the current edit.
func (s *State) EditBuffer() string {
	return s.editBuffer
}

// SetEditBuffer replaces the uncommitted text.
func (s *State) SetEditBuffer(text string) bool {
	if s.editing == nil {
		return false
	}
	s.editBuffer = text
	return true
}

// SaveCellEdit commits the buffer. Text that trims to empty removes the cell's content.
func (s *State) SaveCellEdit() bool {
	if s.editing == nil {
		return false
	}
	c := *s.editing
	text := strings.TrimSpace(s.editBuffer)
	if text == "" {
		delete(s.contents, c)
	} else {
		content, ok := s.contents[c]
		if !ok {
			content = CellContent{Alignment: defaultAlignment}
		}
		content.Text = text
		s.contents[c] = content
	}
	s.editing = nil
	s.editBuffer = ""
	return true
}

// CancelCellEdit discards the buffer without touching content.
func (s *State) CancelCellEdit() bool {
	if s.editing == nil {
		return false
	}
	s.editing = nil
	s.editBuffer = ""
	return true
}
