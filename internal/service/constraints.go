package service

// The constraint store is the single piece of mutable state shared by every
// semester of one generation run. Faculty and room occupancy are keyed by the
// slot's wall-clock start minute so that semesters with different grids still
// exclude each other correctly. Class-cell occupancy and lab counters are
// scoped per semester-department pair.

type runScope struct {
	Semester   int
	Department string
}

type subjectCounter struct {
	assigned int
	lastDay  string
	lastPos  int
}

type constraintStore struct {
	faculty  map[string]map[string]map[int]bool // facultyID -> day -> start minute
	rooms    map[string]map[string]map[int]bool // room -> day -> start minute
	cells    map[runScope]map[string]map[int]bool
	subjects map[string]*subjectCounter
	spread   map[string]map[string]int // subjectID -> day -> count
	labs     map[runScope]map[string]int
}

func newConstraintStore() *constraintStore {
	return &constraintStore{
		faculty:  make(map[string]map[string]map[int]bool),
		rooms:    make(map[string]map[string]map[int]bool),
		cells:    make(map[runScope]map[string]map[int]bool),
		subjects: make(map[string]*subjectCounter),
		spread:   make(map[string]map[string]int),
		labs:     make(map[runScope]map[string]int),
	}
}

// CellFree reports whether the class grid cell is still open for the scope.
func (s *constraintStore) CellFree(scope runScope, day string, pos int) bool {
	return !s.cells[scope][day][pos]
}

// FacultyFree checks the run-global faculty occupancy map.
func (s *constraintStore) FacultyFree(facultyID, day string, startMin int) bool {
	if facultyID == "" {
		return false
	}
	return !s.faculty[facultyID][day][startMin]
}

// RoomFree checks the run-global room occupancy map.
func (s *constraintStore) RoomFree(room, day string, startMin int) bool {
	return !s.rooms[room][day][startMin]
}

// FacultyDayLoad counts how many periods the faculty already teaches that day,
// across all semesters of the run.
func (s *constraintStore) FacultyDayLoad(facultyID, day string) int {
	return len(s.faculty[facultyID][day])
}

// SubjectAssigned returns the number of periods placed for the subject so far.
func (s *constraintStore) SubjectAssigned(subjectID string) int {
	if c, ok := s.subjects[subjectID]; ok {
		return c.assigned
	}
	return 0
}

// SubjectDayCount returns the subject's period count on the given day.
func (s *constraintStore) SubjectDayCount(subjectID, day string) int {
	return s.spread[subjectID][day]
}

// LabsOn returns how many lab blocks the scope already has on the day.
func (s *constraintStore) LabsOn(scope runScope, day string) int {
	return s.labs[scope][day]
}

// MarkLab records a lab block on the day for the scope.
func (s *constraintStore) MarkLab(scope runScope, day string) {
	if s.labs[scope] == nil {
		s.labs[scope] = make(map[string]int)
	}
	s.labs[scope][day]++
}

type reservation struct {
	FacultyID string
	Room      string
	SubjectID string
	Day       string
	Pos       int // lecture position within the scope's grid
	StartMin  int // wall-clock key shared across semesters
}

// Reserve books the cell, faculty, room and subject counters in one step.
// Generation runs are single-threaded, so no locking is needed here; the
// store must never be shared between concurrent runs.
func (s *constraintStore) Reserve(scope runScope, r reservation) {
	if s.cells[scope] == nil {
		s.cells[scope] = make(map[string]map[int]bool)
	}
	if s.cells[scope][r.Day] == nil {
		s.cells[scope][r.Day] = make(map[int]bool)
	}
	s.cells[scope][r.Day][r.Pos] = true

	if r.FacultyID != "" {
		if s.faculty[r.FacultyID] == nil {
			s.faculty[r.FacultyID] = make(map[string]map[int]bool)
		}
		if s.faculty[r.FacultyID][r.Day] == nil {
			s.faculty[r.FacultyID][r.Day] = make(map[int]bool)
		}
		s.faculty[r.FacultyID][r.Day][r.StartMin] = true
	}

	if r.Room != "" {
		if s.rooms[r.Room] == nil {
			s.rooms[r.Room] = make(map[string]map[int]bool)
		}
		if s.rooms[r.Room][r.Day] == nil {
			s.rooms[r.Room][r.Day] = make(map[int]bool)
		}
		s.rooms[r.Room][r.Day][r.StartMin] = true
	}

	counter := s.subjects[r.SubjectID]
	if counter == nil {
		counter = &subjectCounter{}
		s.subjects[r.SubjectID] = counter
	}
	counter.assigned++
	counter.lastDay = r.Day
	counter.lastPos = r.Pos

	if s.spread[r.SubjectID] == nil {
		s.spread[r.SubjectID] = make(map[string]int)
	}
	s.spread[r.SubjectID][r.Day]++
}
