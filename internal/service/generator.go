package service

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/college-timetable-api/internal/dto"
	"github.com/noah-isme/college-timetable-api/internal/models"
	appErrors "github.com/noah-isme/college-timetable-api/pkg/errors"
)

// GeneratorOptions governs the placement engine.
type GeneratorOptions struct {
	// ExecutionBudget bounds the whole run; partial results of a timed-out
	// run are discarded.
	ExecutionBudget time.Duration
	// MaxPerDayPerSubject caps lecture periods of one subject per day when the
	// semester config does not override it.
	MaxPerDayPerSubject int
	// RoomPoolSize and RoomNumberBase describe the shared room pool.
	RoomPoolSize   int
	RoomNumberBase int
}

func (o GeneratorOptions) withDefaults() GeneratorOptions {
	if o.ExecutionBudget <= 0 {
		o.ExecutionBudget = 30 * time.Second
	}
	if o.MaxPerDayPerSubject <= 0 {
		o.MaxPerDayPerSubject = 2
	}
	if o.RoomPoolSize <= 0 {
		o.RoomPoolSize = 20
	}
	if o.RoomNumberBase <= 0 {
		o.RoomNumberBase = 101
	}
	return o
}

const (
	maxLabBlock = 3

	slotBaseScore      = 10
	facultyLoadPenalty = 2
	morningBonus       = 3
	firstOfDayBonus    = 5
)

// semesterInput is the resolved material for one semester of a cohort run.
type semesterInput struct {
	Semester   int
	Department string
	Subjects   []models.Subject
	Config     *models.ScheduleConfig
}

// generationRun owns all mutable state of a single run. Runs are
// single-threaded; the constraint store carries faculty and room occupancy
// across every semester processed by the run.
type generationRun struct {
	store    *constraintStore
	opts     GeneratorOptions
	deadline time.Time
	logger   *zap.Logger
	warnings []dto.SubjectWarning
}

func newGenerationRun(opts GeneratorOptions, logger *zap.Logger) *generationRun {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = opts.withDefaults()
	return &generationRun{
		store:  newConstraintStore(),
		opts:   opts,
		logger: logger,
	}
}

func (r *generationRun) checkDeadline() error {
	if time.Now().After(r.deadline) {
		return appErrors.Clone(appErrors.ErrGenerationTimeout, "")
	}
	return nil
}

func (r *generationRun) warn(sub models.Subject, placed int, reason string) {
	r.warnings = append(r.warnings, dto.SubjectWarning{
		SubjectID:   sub.ID,
		SubjectName: sub.Name,
		Semester:    sub.Semester,
		Requested:   sub.PeriodsPerWeek,
		Placed:      placed,
		Reason:      reason,
	})
}

// Run processes every semester input in order. A timeout aborts the whole run;
// a configuration error only voids that semester's result.
func (r *generationRun) Run(inputs []semesterInput) ([]dto.SemesterResult, []dto.SubjectWarning, error) {
	r.deadline = time.Now().Add(r.opts.ExecutionBudget)

	results := make([]dto.SemesterResult, 0, len(inputs))
	for _, in := range inputs {
		if err := r.checkDeadline(); err != nil {
			return nil, nil, err
		}
		result := dto.SemesterResult{Semester: in.Semester, Department: in.Department, Entries: []models.TimetableEntry{}}
		if len(in.Subjects) == 0 {
			results = append(results, result)
			continue
		}
		entries, err := r.generateSemester(in)
		if err != nil {
			appErr := appErrors.FromError(err)
			if appErr.Code == appErrors.ErrGenerationTimeout.Code {
				return nil, nil, err
			}
			result.Error = appErr.Message
			r.logger.Warn("semester generation skipped",
				zap.Int("semester", in.Semester),
				zap.String("department", in.Department),
				zap.Error(err))
			results = append(results, result)
			continue
		}
		result.Entries = entries
		results = append(results, result)
	}
	return results, r.warnings, nil
}

type semesterState struct {
	scope    runScope
	grid     *timeGrid
	subjects []models.Subject
	rooms    []string
	entries  []models.TimetableEntry
	occupant map[string]map[int]string // day -> lecture position -> subjectID
	byStart  map[string]map[string]bool
	cap      int
}

func (r *generationRun) generateSemester(in semesterInput) ([]models.TimetableEntry, error) {
	grid, err := buildTimeGrid(in.Config)
	if err != nil {
		return nil, err
	}
	if grid.lectureCount() == 0 {
		return nil, appErrors.Clone(appErrors.ErrConfigInvalid, "configuration leaves no lecture slots in the day")
	}

	st := &semesterState{
		scope:    runScope{Semester: in.Semester, Department: in.Department},
		grid:     grid,
		subjects: in.Subjects,
		occupant: make(map[string]map[int]string),
		byStart:  make(map[string]map[string]bool),
		cap:      grid.maxPerDay,
	}
	if st.cap <= 0 {
		st.cap = r.opts.MaxPerDayPerSubject
	}

	for i := 0; i < r.opts.RoomPoolSize; i++ {
		st.rooms = append(st.rooms, fmt.Sprintf("Room %d", r.opts.RoomNumberBase+i))
	}
	seen := make(map[string]bool)
	for _, sub := range in.Subjects {
		if room := sub.LabRoom(); room != "" && !seen[room] {
			st.rooms = append(st.rooms, room)
			seen[room] = true
		}
	}

	if err := r.placeLabs(st); err != nil {
		return nil, err
	}
	if err := r.placeLectures(st); err != nil {
		return nil, err
	}
	if err := r.fillGaps(st); err != nil {
		return nil, err
	}
	r.reportShortfalls(st)
	r.injectFixedEvents(st)
	r.sortEntries(st)
	return st.entries, nil
}

// reserve books the slot in the store and materialises the timetable entry.
func (r *generationRun) reserve(st *semesterState, sub models.Subject, day string, pos int, room string) {
	slot := st.grid.slotAt(pos)
	r.store.Reserve(st.scope, reservation{
		FacultyID: sub.FacultyID,
		Room:      room,
		SubjectID: sub.ID,
		Day:       day,
		Pos:       pos,
		StartMin:  st.grid.startMinute(pos),
	})

	entryType := models.EntryTypeLecture
	if sub.Type == models.SubjectTypeLab {
		entryType = models.EntryTypeLab
	}
	subjectID := sub.ID
	roomCopy := room
	st.entries = append(st.entries, models.TimetableEntry{
		Day:       day,
		Start:     slot.Start,
		End:       slot.End,
		SubjectID: &subjectID,
		Type:      entryType,
		Room:      &roomCopy,
	})

	if st.occupant[day] == nil {
		st.occupant[day] = make(map[int]string)
	}
	st.occupant[day][pos] = sub.ID
	if st.byStart[day] == nil {
		st.byStart[day] = make(map[string]bool)
	}
	st.byStart[day][slot.Start] = true
}

// roomFor picks the preferred room when free, otherwise the first open pooled
// room. Empty string means no room is available.
func (r *generationRun) roomFor(st *semesterState, day string, pos int, preferred string) string {
	startMin := st.grid.startMinute(pos)
	if preferred != "" && r.store.RoomFree(preferred, day, startMin) {
		return preferred
	}
	for _, room := range st.rooms {
		if r.store.RoomFree(room, day, startMin) {
			return room
		}
	}
	return ""
}

// --- Lab placement ---

func (r *generationRun) placeLabs(st *semesterState) error {
	labs := filterSubjects(st.subjects, models.SubjectTypeLab)
	sortByDemand(labs)

	for _, lab := range labs {
		if lab.FacultyID == "" {
			r.warn(lab, 0, "subject has no faculty assigned")
			continue
		}
		remaining := lab.PeriodsPerWeek
		for remaining > 0 {
			if err := r.checkDeadline(); err != nil {
				return err
			}
			length := maxLabBlock
			if remaining < length {
				length = remaining
			}
			placed := 0
			for ; length >= 1 && placed == 0; length-- {
				placed = r.placeLabBlock(st, lab, length)
			}
			if placed == 0 {
				r.warn(lab, r.store.SubjectAssigned(lab.ID), "no lab-free day with enough contiguous slots")
				break
			}
			remaining -= placed
		}
	}
	return nil
}

// placeLabBlock attempts one contiguous block of the given length and returns
// the number of periods placed (0 or length).
func (r *generationRun) placeLabBlock(st *semesterState, lab models.Subject, length int) int {
	for _, day := range r.labDayOrder(st, lab.FacultyID) {
		if r.store.LabsOn(st.scope, day) >= 1 {
			continue
		}
		block := r.findContiguous(st, day, length, lab, true)
		if block == nil {
			block = r.findContiguous(st, day, length, lab, false)
		}
		if block == nil {
			continue
		}
		for _, pos := range block {
			room := r.roomFor(st, day, pos, lab.LabRoom())
			r.reserve(st, lab, day, pos, room)
		}
		r.store.MarkLab(st.scope, day)
		return length
	}
	return 0
}

// labDayOrder prefers days without a lab yet, then lighter faculty days.
func (r *generationRun) labDayOrder(st *semesterState, facultyID string) []string {
	days := make([]string, len(st.grid.days))
	copy(days, st.grid.days)
	sort.SliceStable(days, func(i, j int) bool {
		li, lj := r.store.LabsOn(st.scope, days[i]), r.store.LabsOn(st.scope, days[j])
		if li != lj {
			return li < lj
		}
		return r.store.FacultyDayLoad(facultyID, days[i]) < r.store.FacultyDayLoad(facultyID, days[j])
	})
	return days
}

// findContiguous locates length consecutive free lecture positions on the day.
// morningOnly restricts the search to pre-lunch positions.
func (r *generationRun) findContiguous(st *semesterState, day string, length int, sub models.Subject, morningOnly bool) []int {
	limit := st.grid.lectureCount()
	if morningOnly {
		limit = st.grid.morning
	}
	for start := 0; start+length <= limit; start++ {
		ok := true
		for offset := 0; offset < length; offset++ {
			pos := start + offset
			if !r.slotAvailable(st, sub, day, pos) {
				ok = false
				break
			}
		}
		if ok {
			block := make([]int, length)
			for i := range block {
				block[i] = start + i
			}
			return block
		}
	}
	return nil
}

func (r *generationRun) slotAvailable(st *semesterState, sub models.Subject, day string, pos int) bool {
	if !r.store.CellFree(st.scope, day, pos) {
		return false
	}
	startMin := st.grid.startMinute(pos)
	if !r.store.FacultyFree(sub.FacultyID, day, startMin) {
		return false
	}
	return r.roomFor(st, day, pos, sub.LabRoom()) != ""
}

// --- Lecture placement ---

func (r *generationRun) placeLectures(st *semesterState) error {
	lectures := filterSubjects(st.subjects, models.SubjectTypeLecture)
	sortByDemand(lectures)

	for pass := 0; ; pass++ {
		if err := r.checkDeadline(); err != nil {
			return err
		}
		progress := false
		for _, sub := range rotated(lectures, pass) {
			if sub.FacultyID == "" {
				if pass == 0 {
					r.warn(sub, 0, "subject has no faculty assigned")
				}
				continue
			}
			if r.store.SubjectAssigned(sub.ID) >= sub.PeriodsPerWeek {
				continue
			}
			if r.placeLectureOnce(st, sub, pass) {
				progress = true
			}
		}
		if !progress {
			return nil
		}
	}
}

// placeLectureOnce spends one period of the subject's weekly quota on the best
// scoring slot of the least-loaded candidate day.
func (r *generationRun) placeLectureOnce(st *semesterState, sub models.Subject, pass int) bool {
	days := rotated(st.grid.days, pass)
	sort.SliceStable(days, func(i, j int) bool {
		return r.store.SubjectDayCount(sub.ID, days[i]) < r.store.SubjectDayCount(sub.ID, days[j])
	})

	for _, day := range days {
		dayCount := r.store.SubjectDayCount(sub.ID, day)
		if dayCount >= st.cap {
			continue
		}
		bestPos, bestRoom, bestScore := -1, "", 0
		for pos := 0; pos < st.grid.lectureCount(); pos++ {
			if !r.store.CellFree(st.scope, day, pos) {
				continue
			}
			startMin := st.grid.startMinute(pos)
			if !r.store.FacultyFree(sub.FacultyID, day, startMin) {
				continue
			}
			if r.makesTriple(st, day, pos, sub.ID) {
				continue
			}
			room := r.roomFor(st, day, pos, "")
			if room == "" {
				continue
			}
			score := slotBaseScore - facultyLoadPenalty*r.store.FacultyDayLoad(sub.FacultyID, day)
			if pos < st.grid.morning {
				score += morningBonus
			}
			if dayCount == 0 {
				score += firstOfDayBonus
			}
			if bestPos == -1 || score > bestScore {
				bestPos, bestRoom, bestScore = pos, room, score
			}
		}
		if bestPos >= 0 {
			r.reserve(st, sub, day, bestPos, bestRoom)
			return true
		}
	}
	return false
}

// makesTriple reports whether placing the subject at pos would create three or
// more consecutive periods of the same subject (2-slot lookback/lookahead).
func (r *generationRun) makesTriple(st *semesterState, day string, pos int, subjectID string) bool {
	before := 0
	for i := 1; i <= 2; i++ {
		if pos-i < 0 || st.occupant[day][pos-i] != subjectID {
			break
		}
		before++
	}
	after := 0
	for i := 1; i <= 2; i++ {
		if pos+i >= st.grid.lectureCount() || st.occupant[day][pos+i] != subjectID {
			break
		}
		after++
	}
	return before+after >= 2
}

// --- Gap filling ---

// fillGaps runs best-effort single-slot placements until a full pass places
// nothing. Labs keep their one-block-per-day rule and lectures keep the
// per-day cap; only the adjacency heuristic is relaxed here.
func (r *generationRun) fillGaps(st *semesterState) error {
	for {
		if err := r.checkDeadline(); err != nil {
			return err
		}
		progress := false
		for _, sub := range r.underQuota(st) {
			if r.placeSingle(st, sub) {
				progress = true
			}
		}
		if !progress {
			return nil
		}
	}
}

// underQuota lists unmet subjects: labs first, then ascending fill fraction.
func (r *generationRun) underQuota(st *semesterState) []models.Subject {
	var out []models.Subject
	for _, sub := range st.subjects {
		if sub.FacultyID == "" || sub.PeriodsPerWeek <= 0 {
			continue
		}
		if r.store.SubjectAssigned(sub.ID) < sub.PeriodsPerWeek {
			out = append(out, sub)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		li, lj := out[i].Type == models.SubjectTypeLab, out[j].Type == models.SubjectTypeLab
		if li != lj {
			return li
		}
		fi := float64(r.store.SubjectAssigned(out[i].ID)) / float64(out[i].PeriodsPerWeek)
		fj := float64(r.store.SubjectAssigned(out[j].ID)) / float64(out[j].PeriodsPerWeek)
		return fi < fj
	})
	return out
}

func (r *generationRun) placeSingle(st *semesterState, sub models.Subject) bool {
	isLab := sub.Type == models.SubjectTypeLab
	for _, day := range st.grid.days {
		if isLab && r.store.LabsOn(st.scope, day) >= 1 {
			continue
		}
		if !isLab && r.store.SubjectDayCount(sub.ID, day) >= st.cap {
			continue
		}
		for pos := 0; pos < st.grid.lectureCount(); pos++ {
			if !r.store.CellFree(st.scope, day, pos) {
				continue
			}
			startMin := st.grid.startMinute(pos)
			if !r.store.FacultyFree(sub.FacultyID, day, startMin) {
				continue
			}
			room := r.roomFor(st, day, pos, sub.LabRoom())
			if room == "" {
				continue
			}
			r.reserve(st, sub, day, pos, room)
			if isLab {
				r.store.MarkLab(st.scope, day)
			}
			return true
		}
	}
	return false
}

func (r *generationRun) reportShortfalls(st *semesterState) {
	warned := make(map[string]bool, len(r.warnings))
	for _, w := range r.warnings {
		warned[w.SubjectID] = true
	}
	for _, sub := range st.subjects {
		if sub.FacultyID == "" || warned[sub.ID] {
			continue
		}
		if placed := r.store.SubjectAssigned(sub.ID); placed < sub.PeriodsPerWeek {
			r.warn(sub, placed, "weekly quota not fully satisfied")
		}
	}
}

// --- Fixed events ---

// injectFixedEvents adds one entry per fixed interval to every working day,
// skipping (day, start) pairs that already exist.
func (r *generationRun) injectFixedEvents(st *semesterState) {
	for _, day := range st.grid.days {
		for _, slot := range st.grid.slots {
			if slot.Type == models.EntryTypeLecture {
				continue
			}
			if st.byStart[day][slot.Start] {
				continue
			}
			st.entries = append(st.entries, models.TimetableEntry{
				Day:   day,
				Start: slot.Start,
				End:   slot.End,
				Type:  slot.Type,
				Label: slot.Label,
			})
			if st.byStart[day] == nil {
				st.byStart[day] = make(map[string]bool)
			}
			st.byStart[day][slot.Start] = true
		}
	}
}

func (r *generationRun) sortEntries(st *semesterState) {
	dayRank := make(map[string]int, len(st.grid.days))
	for i, day := range st.grid.days {
		dayRank[day] = i
	}
	sort.SliceStable(st.entries, func(i, j int) bool {
		if dayRank[st.entries[i].Day] != dayRank[st.entries[j].Day] {
			return dayRank[st.entries[i].Day] < dayRank[st.entries[j].Day]
		}
		si, _ := parseClock(st.entries[i].Start)
		sj, _ := parseClock(st.entries[j].Start)
		return si < sj
	})
}

// --- helpers ---

func filterSubjects(subjects []models.Subject, typ models.SubjectType) []models.Subject {
	var out []models.Subject
	for _, sub := range subjects {
		if sub.Type == typ {
			out = append(out, sub)
		}
	}
	return out
}

// sortByDemand orders subjects by descending weekly periods, code as tiebreak
// so runs stay reproducible.
func sortByDemand(subjects []models.Subject) {
	sort.SliceStable(subjects, func(i, j int) bool {
		if subjects[i].PeriodsPerWeek != subjects[j].PeriodsPerWeek {
			return subjects[i].PeriodsPerWeek > subjects[j].PeriodsPerWeek
		}
		return subjects[i].Code < subjects[j].Code
	})
}

// rotated returns the slice rotated left by n positions.
func rotated[T any](items []T, n int) []T {
	if len(items) == 0 {
		return nil
	}
	n = n % len(items)
	out := make([]T, 0, len(items))
	out = append(out, items[n:]...)
	out = append(out, items[:n]...)
	return out
}
