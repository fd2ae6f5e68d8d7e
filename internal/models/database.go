package models

// Database is the in-memory roster snapshot handed to the scheduler.
type Database struct {
	Tutors       []Tutor       `json:"tutors"`
	Courses      []Course      `json:"courses"`
	Sessions     []Session     `json:"sessions"`
	BlockedSlots []BlockedSlot `json:"blocked_slots"`
	BlockedTexts []BlockedText `json:"blocked_texts"`
	Templates    []Template    `json:"templates"`
}

// TutorByID returns the tutor with the given id.
func (d Database) TutorByID(id string) (*Tutor, bool) {
	for i := range d.Tutors {
		if d.Tutors[i].ID == id {
			return &d.Tutors[i], true
		}
	}
	return nil, false
}

// SessionByID returns the session with the given id.
func (d Database) SessionByID(id string) (*Session, bool) {
	for i := range d.Sessions {
		if d.Sessions[i].ID == id {
			return &d.Sessions[i], true
		}
	}
	return nil, false
}

// BlockedTextValues flattens the blocked text labels.
func (d Database) BlockedTextValues() []string {
	out := make([]string, 0, len(d.BlockedTexts))
	for _, b := range d.BlockedTexts {
		out = append(out, b.Text)
	}
	return out
}

// BlockedSlotKeys flattens the blocked cell keys.
func (d Database) BlockedSlotKeys() []string {
	out := make([]string, 0, len(d.BlockedSlots))
	for _, b := range d.BlockedSlots {
		out = append(out, b.CellKey)
	}
	return out
}
