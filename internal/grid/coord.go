package grid

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// DayRows is the fixed number of weekday rows in the grid.
const DayRows = 5

// Coord addresses a single cell by day row and time column.
type Coord struct {
	Row int
	Col int
}

// Key serializes the coordinate into its "{row}-{col}" boundary form.
func (c Coord) Key() string {
	return strconv.Itoa(c.Row) + "-" + strconv.Itoa(c.Col)
}

// String implements fmt.Stringer.
func (c Coord) String() string {
	return c.Key()
}

// Less orders coordinates row-major.
func (c Coord) Less(other Coord) bool {
	if c.Row == other.Row {
		return c.Col < other.Col
	}
	return c.Row < other.Row
}

// ParseKey parses a "{row}-{col}" key.
func ParseKey(raw string) (Coord, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), "-", 2)
	if len(parts) != 2 {
		return Coord{}, fmt.Errorf("invalid cell key %q", raw)
	}
	row, err := strconv.Atoi(parts[0])
	if err != nil {
		return Coord{}, fmt.Errorf("invalid cell key %q: %w", raw, err)
	}
	col, err := strconv.Atoi(parts[1])
	if err != nil {
		return Coord{}, fmt.Errorf("invalid cell key %q: %w", raw, err)
	}
	if row < 0 || col < 0 {
		return Coord{}, fmt.Errorf("invalid cell key %q: negative index", raw)
	}
	return Coord{Row: row, Col: col}, nil
}

// ParseKeys parses keys, skipping malformed entries.
func ParseKeys(raw []string) []Coord {
	result := make([]Coord, 0, len(raw))
	for _, key := range raw {
		c, err := ParseKey(key)
		if err != nil {
			continue
		}
		result = append(result, c)
	}
	return result
}

// SortCoords sorts in place, row-major.
func SortCoords(coords []Coord) {
	sort.Slice(coords, func(i, j int) bool { return coords[i].Less(coords[j]) })
}

// CoordSet is an unordered set of coordinates.
type CoordSet map[Coord]struct{}

// Has reports membership.
func (s CoordSet) Has(c Coord) bool {
	_, ok := s[c]
	return ok
}

// Sorted returns the members row-major.
func (s CoordSet) Sorted() []Coord {
	result := make([]Coord, 0, len(s))
	for c := range s {
		result = append(result, c)
	}
	SortCoords(result)
	return result
}

// Keys returns the sorted boundary keys.
func (s CoordSet) Keys() []string {
	sorted := s.Sorted()
	keys := make([]string, len(sorted))
	for i, c := range sorted {
		keys[i] = c.Key()
	}
	return keys
}

func (s CoordSet) clone() CoordSet {
	out := make(CoordSet, len(s))
	for c := range s {
		out[c] = struct{}{}
	}
	return out
}
