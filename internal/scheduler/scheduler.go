package scheduler

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/grid"
	"github.com/noah-isme/sma-timetable-api/internal/models"
)

const (
	DefaultMaxPeriodsPerDay = 3
	DefaultTrialMultiplier  = 10
)

// RandSource picks uniformly in [0, n). *rand.Rand satisfies it.
type RandSource interface {
	Intn(n int) int
}

// NewSeededSource returns a deterministic source for the given seed.
func NewSeededSource(seed int64) RandSource {
	return rand.New(rand.NewSource(seed)) //nolint:gosec
}

// Config tunes generator limits.
type Config struct {
	DefaultMaxPeriodsPerDay int
	TrialMultiplier         int
}

// Input is everything one generation run reads.
type Input struct {
	Database    models.Database
	ColumnCount int
	Existing    map[grid.Coord]grid.CellContent
	Hidden      grid.CoordSet
	SessionID   string
}

// CourseReport summarises placement for a single course.
type CourseReport struct {
	CourseID   string `json:"courseId"`
	CourseName string `json:"courseName"`
	TutorID    string `json:"tutorId"`
	Required   int    `json:"required"`
	Placed     int    `json:"placed"`
	Backfilled int    `json:"backfilled"`
}

// Missing returns the number of required periods left unplaced.
func (r CourseReport) Missing() int {
	if r.Placed >= r.Required {
		return 0
	}
	return r.Required - r.Placed
}

// Result is the merged content map plus a placement report.
type Result struct {
	Contents     map[grid.Coord]grid.CellContent
	Assigned     map[grid.Coord]string
	Courses      []CourseReport
	BlockedCells int
}

// Unplaced totals the missing periods across courses.
func (r Result) Unplaced() int {
	return lo.SumBy(r.Courses, func(c CourseReport) int { return c.Missing() })
}

// Generator assigns courses to free grid cells. It is stateless apart from
// its random source, which is not safe for concurrent use.
type Generator struct {
	rand   RandSource
	cfg    Config
	logger *zap.Logger
}

// NewGenerator constructs a Generator.
func NewGenerator(source RandSource, cfg Config, logger *zap.Logger) *Generator {
	if source == nil {
		source = NewSeededSource(1)
	}
	if cfg.DefaultMaxPeriodsPerDay <= 0 {
		cfg.DefaultMaxPeriodsPerDay = DefaultMaxPeriodsPerDay
	}
	if cfg.TrialMultiplier <= 0 {
		cfg.TrialMultiplier = DefaultTrialMultiplier
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{rand: source, cfg: cfg, logger: logger}
}

type cellState int

const (
	cellEmpty cellState = iota
	cellBlocked
	cellOccupied
	cellAssigned
)

type slot struct {
	state  cellState
	course *models.Course
}

type run struct {
	gen       *Generator
	in        Input
	cols      int
	cells     [][]slot
	tutors    map[string]*models.Tutor
	perDay    map[string]*[grid.DayRows]int
	reports   map[string]*CourseReport
	session   *models.Session
	assigned  map[grid.Coord]string
	blocked   int
	unavail   map[string]grid.CoordSet
	preferred map[string]grid.CoordSet
}

// Generate places every candidate course's periods into free cells and returns
// the existing content merged with the new assignments. Infeasible demand is
// left unplaced and reported, never returned as an error.
func (g *Generator) Generate(in Input) Result {
	r := g.newRun(in)
	courses := r.candidateCourses()

	for i := range courses {
		r.place(&courses[i])
	}
	r.backfill(courses)

	result := Result{
		Contents:     r.materialize(),
		Assigned:     r.assigned,
		Courses:      make([]CourseReport, 0, len(courses)),
		BlockedCells: r.blocked,
	}
	for _, course := range courses {
		result.Courses = append(result.Courses, *r.reports[course.ID])
	}
	g.logger.Debug("timetable generated",
		zap.String("session_id", in.SessionID),
		zap.Int("courses", len(courses)),
		zap.Int("assigned", len(r.assigned)),
		zap.Int("unplaced", result.Unplaced()),
		zap.Int("blocked", r.blocked),
	)
	return result
}

func (g *Generator) newRun(in Input) *run {
	cols := in.ColumnCount
	if cols < 0 {
		cols = 0
	}
	r := &run{
		gen:       g,
		in:        in,
		cols:      cols,
		tutors:    make(map[string]*models.Tutor, len(in.Database.Tutors)),
		perDay:    make(map[string]*[grid.DayRows]int),
		reports:   make(map[string]*CourseReport),
		assigned:  make(map[grid.Coord]string),
		unavail:   make(map[string]grid.CoordSet),
		preferred: make(map[string]grid.CoordSet),
	}
	for i := range in.Database.Tutors {
		tutor := &in.Database.Tutors[i]
		r.tutors[tutor.ID] = tutor
		r.perDay[tutor.ID] = &[grid.DayRows]int{}
		r.unavail[tutor.ID] = toSet(tutor.UnavailableSlots)
	}
	if in.SessionID != "" {
		r.session, _ = in.Database.SessionByID(in.SessionID)
	}

	blockedTexts := lo.FilterMap(in.Database.BlockedTextValues(), func(text string, _ int) (string, bool) {
		text = strings.ToLower(strings.TrimSpace(text))
		return text, text != ""
	})
	blockedSlots := toSet(in.Database.BlockedSlotKeys())

	r.cells = make([][]slot, grid.DayRows)
	for row := 0; row < grid.DayRows; row++ {
		r.cells[row] = make([]slot, cols)
		for col := 0; col < cols; col++ {
			c := grid.Coord{Row: row, Col: col}
			if in.Hidden.Has(c) {
				r.cells[row][col].state = cellOccupied
				continue
			}
			text := strings.TrimSpace(in.Existing[c].Text)
			switch {
			case blockedSlots.Has(c) || matchesAny(text, blockedTexts):
				r.cells[row][col].state = cellBlocked
				r.blocked++
			case text != "":
				r.cells[row][col].state = cellOccupied
			}
		}
	}
	return r
}

// candidateCourses scopes, drops courses without a known tutor and orders by
// priority weight times weekly periods, keeping input order on ties.
func (r *run) candidateCourses() []models.Course {
	courses := r.in.Database.Courses
	if r.in.SessionID != "" {
		if r.session == nil {
			return nil
		}
		courses = lo.Filter(courses, func(c models.Course, _ int) bool {
			return lo.Contains(r.session.Subjects, c.ID)
		})
	}
	courses = lo.Filter(courses, func(c models.Course, _ int) bool {
		if _, ok := r.tutors[c.TeacherID]; !ok {
			r.gen.logger.Debug("skipping course with unknown tutor", zap.String("course_id", c.ID), zap.String("teacher_id", c.TeacherID))
			return false
		}
		return true
	})

	ordered := make([]models.Course, len(courses))
	copy(ordered, courses)
	sort.SliceStable(ordered, func(i, j int) bool {
		return score(ordered[i]) > score(ordered[j])
	})

	for _, course := range ordered {
		r.reports[course.ID] = &CourseReport{
			CourseID:   course.ID,
			CourseName: course.Name,
			TutorID:    course.TeacherID,
			Required:   max(course.PeriodsPerWeek, 0),
		}
		r.preferred[course.ID] = toSet(course.PreferredSlots)
	}
	return ordered
}

func score(c models.Course) int {
	return c.Priority.Weight() * c.PeriodsPerWeek
}

func (r *run) maxPerDay(tutor *models.Tutor) int {
	if tutor.MaxPeriodsPerDay != nil && *tutor.MaxPeriodsPerDay > 0 {
		return *tutor.MaxPeriodsPerDay
	}
	return r.gen.cfg.DefaultMaxPeriodsPerDay
}

func (r *run) tutorFree(tutor *models.Tutor, c grid.Coord) bool {
	if r.perDay[tutor.ID][c.Row] >= r.maxPerDay(tutor) {
		return false
	}
	return !r.unavail[tutor.ID].Has(c)
}

func (r *run) holds(row, col int, courseID string) bool {
	if col < 0 || col >= r.cols {
		return false
	}
	s := r.cells[row][col]
	return s.state == cellAssigned && s.course.ID == courseID
}

func (r *run) available(course *models.Course, tutor *models.Tutor) []grid.Coord {
	var out []grid.Coord
	for row := 0; row < grid.DayRows; row++ {
		for col := 0; col < r.cols; col++ {
			if r.cells[row][col].state != cellEmpty {
				continue
			}
			c := grid.Coord{Row: row, Col: col}
			if !r.tutorFree(tutor, c) {
				continue
			}
			if course.AvoidConsecutive && (r.holds(row, col-1, course.ID) || r.holds(row, col+1, course.ID)) {
				continue
			}
			out = append(out, c)
		}
	}
	return out
}

func (r *run) assign(course *models.Course, tutor *models.Tutor, c grid.Coord) {
	r.cells[c.Row][c.Col] = slot{state: cellAssigned, course: course}
	r.perDay[tutor.ID][c.Row]++
	r.assigned[c] = course.ID
	r.reports[course.ID].Placed++
}

func (r *run) place(course *models.Course) {
	tutor := r.tutors[course.TeacherID]
	report := r.reports[course.ID]
	trials := report.Required * r.gen.cfg.TrialMultiplier
	preferred := r.preferred[course.ID]

	for trial := 0; trial < trials && report.Placed < report.Required; trial++ {
		candidates := r.available(course, tutor)
		if len(candidates) == 0 {
			r.gen.logger.Debug("no slot available", zap.String("course_id", course.ID), zap.Int("placed", report.Placed), zap.Int("required", report.Required))
			return
		}
		if len(preferred) > 0 {
			if narrowed := lo.Filter(candidates, func(c grid.Coord, _ int) bool { return preferred.Has(c) }); len(narrowed) > 0 {
				candidates = narrowed
			}
		}
		r.assign(course, tutor, candidates[r.gen.rand.Intn(len(candidates))])
	}
}

// backfill walks empty cells row-major and cycles through the ordered courses,
// advancing the cursor on every probe, at most one full cycle per cell.
func (r *run) backfill(courses []models.Course) {
	if len(courses) == 0 {
		return
	}
	cursor := 0
	for row := 0; row < grid.DayRows; row++ {
		for col := 0; col < r.cols; col++ {
			if r.cells[row][col].state != cellEmpty {
				continue
			}
			c := grid.Coord{Row: row, Col: col}
			for probe := 0; probe < len(courses); probe++ {
				course := &courses[cursor%len(courses)]
				cursor++
				report := r.reports[course.ID]
				if report.Placed >= report.Required {
					continue
				}
				tutor := r.tutors[course.TeacherID]
				if !r.tutorFree(tutor, c) {
					continue
				}
				r.assign(course, tutor, c)
				report.Backfilled++
				break
			}
		}
	}
}

func (r *run) materialize() map[grid.Coord]grid.CellContent {
	out := make(map[grid.Coord]grid.CellContent, len(r.in.Existing)+len(r.assigned))
	for c, content := range r.in.Existing {
		out[c] = content
	}
	for row := 0; row < grid.DayRows; row++ {
		for col := 0; col < r.cols; col++ {
			s := r.cells[row][col]
			if s.state != cellAssigned {
				continue
			}
			c := grid.Coord{Row: row, Col: col}
			out[c] = r.content(s.course)
		}
	}
	return out
}

func (r *run) content(course *models.Course) grid.CellContent {
	tutor := r.tutors[course.TeacherID]
	text := fmt.Sprintf("%s\n(%s)", course.Name, tutor.Name)
	content := grid.CellContent{Alignment: grid.AlignCenter}
	if r.session != nil {
		text += fmt.Sprintf("\n(%s)", r.session.Name)
		content.ClassTag = r.session.ID
	}
	content.Text = text
	return content
}

func matchesAny(text string, needles []string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	return lo.SomeBy(needles, func(n string) bool { return strings.Contains(lower, n) })
}

func toSet(keys []string) grid.CoordSet {
	set := make(grid.CoordSet, len(keys))
	for _, c := range grid.ParseKeys(keys) {
		set[c] = struct{}{}
	}
	return set
}
