package service

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/noah-isme/college-timetable-api/internal/models"
	appErrors "github.com/noah-isme/college-timetable-api/pkg/errors"
)

const gridFillRetries = 3

// parseClock converts "HH:MM" into minutes since midnight.
func parseClock(raw string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(raw, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("parse clock value %q: %w", raw, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock value %q out of range", raw)
	}
	return h*60 + m, nil
}

// formatClock renders minutes since midnight as "HH:MM".
func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

type fixedInterval struct {
	start int
	end   int
	typ   models.EntryType
	label string
}

type lectureSlot struct {
	start int
	end   int
}

// timeGrid is one working day's slot layout derived from a ScheduleConfig.
// The same grid applies to every working day of the semester.
type timeGrid struct {
	slots      []models.TimeSlot
	lectureIdx []int // indices into slots holding lecture entries, in time order
	morning    int   // lecture positions strictly before lunch start
	days       []string
	maxPerDay  int
}

// lectureCount returns the number of schedulable lecture positions per day.
func (g *timeGrid) lectureCount() int {
	return len(g.lectureIdx)
}

// slotAt resolves a lecture position to its slot.
func (g *timeGrid) slotAt(pos int) models.TimeSlot {
	return g.slots[g.lectureIdx[pos]]
}

// startMinute returns the wall-clock key for a lecture position, used for
// faculty and room occupancy across semesters.
func (g *timeGrid) startMinute(pos int) int {
	start, _ := parseClock(g.slotAt(pos).Start)
	return start
}

// buildTimeGrid expands a schedule configuration into the ordered slot list
// covering the class window: fixed intervals (assembly, breaks, lunch) merged
// where they touch, and periodsPerDay lecture slots split around lunch.
func buildTimeGrid(cfg *models.ScheduleConfig) (*timeGrid, error) {
	if cfg == nil {
		return nil, appErrors.Clone(appErrors.ErrConfigInvalid, "schedule configuration missing")
	}
	if cfg.ClassStartTime == "" || cfg.ClassEndTime == "" {
		return nil, appErrors.Clone(appErrors.ErrConfigInvalid, "class start and end times are required")
	}
	if cfg.PeriodDuration <= 0 {
		return nil, appErrors.Clone(appErrors.ErrConfigInvalid, "period duration is required")
	}
	if cfg.LunchStart == "" || cfg.LunchEnd == "" {
		return nil, appErrors.Clone(appErrors.ErrConfigInvalid, "lunch break is required")
	}

	classStart, err := parseClock(cfg.ClassStartTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrConfigInvalid.Code, appErrors.ErrConfigInvalid.Status, "invalid class start time")
	}
	classEnd, err := parseClock(cfg.ClassEndTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrConfigInvalid.Code, appErrors.ErrConfigInvalid.Status, "invalid class end time")
	}
	lunchStart, err := parseClock(cfg.LunchStart)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrConfigInvalid.Code, appErrors.ErrConfigInvalid.Status, "invalid lunch start")
	}
	lunchEnd, err := parseClock(cfg.LunchEnd)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrConfigInvalid.Code, appErrors.ErrConfigInvalid.Status, "invalid lunch end")
	}
	if classEnd <= classStart || lunchEnd <= lunchStart {
		return nil, appErrors.Clone(appErrors.ErrConfigInvalid, "class or lunch window is inverted")
	}

	fixed := []fixedInterval{{start: lunchStart, end: lunchEnd, typ: models.EntryTypeLunch, label: "Lunch Break"}}

	if cfg.AssemblyEnabled && cfg.AssemblyStart != "" && cfg.AssemblyEnd != "" {
		aStart, err := parseClock(cfg.AssemblyStart)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrConfigInvalid.Code, appErrors.ErrConfigInvalid.Status, "invalid assembly start")
		}
		aEnd, err := parseClock(cfg.AssemblyEnd)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrConfigInvalid.Code, appErrors.ErrConfigInvalid.Status, "invalid assembly end")
		}
		fixed = append(fixed, fixedInterval{start: aStart, end: aEnd, typ: models.EntryTypeAssembly, label: "Assembly"})
	}

	var breaks []models.BreakTime
	if len(cfg.BreakTimes) > 0 {
		if err := json.Unmarshal(cfg.BreakTimes, &breaks); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrConfigInvalid.Code, appErrors.ErrConfigInvalid.Status, "invalid break times payload")
		}
	}
	for _, b := range breaks {
		bStart, err := parseClock(b.Start)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrConfigInvalid.Code, appErrors.ErrConfigInvalid.Status, "invalid break start")
		}
		bEnd, err := parseClock(b.End)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrConfigInvalid.Code, appErrors.ErrConfigInvalid.Status, "invalid break end")
		}
		fixed = append(fixed, fixedInterval{start: bStart, end: bEnd, typ: models.EntryTypeBreak, label: b.Name})
	}

	fixed = mergeFixedIntervals(fixed)

	periodsPerDay := cfg.PeriodsPerDay
	if periodsPerDay <= 0 {
		periodsPerDay = 6
	}

	lectures := placeLectureWindows(classStart, classEnd, lunchStart, lunchEnd, cfg.PeriodDuration, periodsPerDay, fixed)

	days := []string(cfg.WorkingDays)
	if len(days) == 0 {
		days = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}
	}

	grid := &timeGrid{days: days, maxPerDay: cfg.MaxPerDay}
	grid.slots, grid.lectureIdx = assembleSlots(lectures, fixed)
	for pos := range grid.lectureIdx {
		if grid.startMinute(pos) < lunchStart {
			grid.morning++
		}
	}
	return grid, nil
}

// mergeFixedIntervals sorts and coalesces overlapping or touching fixed
// intervals, concatenating labels.
func mergeFixedIntervals(intervals []fixedInterval) []fixedInterval {
	if len(intervals) == 0 {
		return nil
	}
	sort.Slice(intervals, func(i, j int) bool { return intervals[i].start < intervals[j].start })
	merged := []fixedInterval{intervals[0]}
	for _, iv := range intervals[1:] {
		last := &merged[len(merged)-1]
		if iv.start <= last.end {
			if iv.end > last.end {
				last.end = iv.end
			}
			if iv.label != "" && iv.label != last.label {
				last.label = last.label + " / " + iv.label
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

func overlapsFixed(start, end int, fixed []fixedInterval) *fixedInterval {
	for i := range fixed {
		if start < fixed[i].end && end > fixed[i].start {
			return &fixed[i]
		}
	}
	return nil
}

func overlapsLecture(start, end int, placed []lectureSlot) bool {
	for _, l := range placed {
		if start < l.end && end > l.start {
			return true
		}
	}
	return false
}

// placeLectureWindows lays out periodsPerDay lecture windows: a balanced split
// around lunch first, then bounded whole-day scans for any remainder.
func placeLectureWindows(classStart, classEnd, lunchStart, lunchEnd, duration, periodsPerDay int, fixed []fixedInterval) []lectureSlot {
	var placed []lectureSlot

	before := (periodsPerDay + 1) / 2
	after := periodsPerDay - before

	scan := func(from, until, want int) {
		t := from
		count := 0
		for count < want && t+duration <= until {
			if iv := overlapsFixed(t, t+duration, fixed); iv != nil {
				t = iv.end
				continue
			}
			if overlapsLecture(t, t+duration, placed) {
				t += duration
				continue
			}
			placed = append(placed, lectureSlot{start: t, end: t + duration})
			t += duration
			count++
		}
	}

	scan(classStart, lunchStart, before)
	scan(lunchEnd, classEnd, after)

	for retry := 0; retry < gridFillRetries && len(placed) < periodsPerDay; retry++ {
		missing := periodsPerDay - len(placed)
		scan(classStart, classEnd, missing)
	}

	sort.Slice(placed, func(i, j int) bool { return placed[i].start < placed[j].start })
	return placed
}

// assembleSlots merges lecture windows and fixed intervals into one
// chronological slot list, coalescing adjacent same-type fixed entries.
func assembleSlots(lectures []lectureSlot, fixed []fixedInterval) ([]models.TimeSlot, []int) {
	type raw struct {
		start, end int
		typ        models.EntryType
		label      string
	}
	var all []raw
	for _, l := range lectures {
		all = append(all, raw{start: l.start, end: l.end, typ: models.EntryTypeLecture})
	}
	for _, f := range fixed {
		all = append(all, raw{start: f.start, end: f.end, typ: f.typ, label: f.label})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].start < all[j].start })

	var slots []models.TimeSlot
	var lectureIdx []int
	for _, r := range all {
		if n := len(slots); n > 0 && r.typ != models.EntryTypeLecture && slots[n-1].Type == r.typ && slots[n-1].End == formatClock(r.start) {
			slots[n-1].End = formatClock(r.end)
			if r.label != "" && r.label != slots[n-1].Label {
				slots[n-1].Label = slots[n-1].Label + " / " + r.label
			}
			continue
		}
		slots = append(slots, models.TimeSlot{
			Start: formatClock(r.start),
			End:   formatClock(r.end),
			Type:  r.typ,
			Label: r.label,
		})
		if r.typ == models.EntryTypeLecture {
			lectureIdx = append(lectureIdx, len(slots)-1)
		}
	}
	return slots, lectureIdx
}
