package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstraintStoreReserve(t *testing.T) {
	store := newConstraintStore()
	scope := runScope{Semester: 1, Department: "CSE"}

	assert.True(t, store.CellFree(scope, "Monday", 0))
	assert.True(t, store.FacultyFree("fac-1", "Monday", 545))
	assert.True(t, store.RoomFree("Room 101", "Monday", 545))

	store.Reserve(scope, reservation{
		FacultyID: "fac-1",
		Room:      "Room 101",
		SubjectID: "math",
		Day:       "Monday",
		Pos:       0,
		StartMin:  545,
	})

	assert.False(t, store.CellFree(scope, "Monday", 0))
	assert.False(t, store.FacultyFree("fac-1", "Monday", 545))
	assert.False(t, store.RoomFree("Room 101", "Monday", 545))
	assert.Equal(t, 1, store.SubjectAssigned("math"))
	assert.Equal(t, 1, store.SubjectDayCount("math", "Monday"))
	assert.Equal(t, 1, store.FacultyDayLoad("fac-1", "Monday"))

	// Neighbouring cells stay open.
	assert.True(t, store.CellFree(scope, "Monday", 1))
	assert.True(t, store.FacultyFree("fac-1", "Monday", 595))
	assert.True(t, store.FacultyFree("fac-1", "Tuesday", 545))
}

func TestConstraintStoreScopesCellsPerSemester(t *testing.T) {
	store := newConstraintStore()
	first := runScope{Semester: 1, Department: "CSE"}
	third := runScope{Semester: 3, Department: "CSE"}

	store.Reserve(first, reservation{FacultyID: "fac-1", SubjectID: "math", Day: "Monday", Pos: 0, StartMin: 545})

	// The class cell belongs to one semester, the faculty minute to the run.
	assert.True(t, store.CellFree(third, "Monday", 0))
	assert.False(t, store.FacultyFree("fac-1", "Monday", 545))
}

func TestConstraintStoreFacultyFreeRejectsEmptyID(t *testing.T) {
	store := newConstraintStore()
	assert.False(t, store.FacultyFree("", "Monday", 545))
}

func TestConstraintStoreLabCounters(t *testing.T) {
	store := newConstraintStore()
	scope := runScope{Semester: 1, Department: "CSE"}

	assert.Equal(t, 0, store.LabsOn(scope, "Monday"))
	store.MarkLab(scope, "Monday")
	assert.Equal(t, 1, store.LabsOn(scope, "Monday"))
	assert.Equal(t, 0, store.LabsOn(scope, "Tuesday"))
	assert.Equal(t, 0, store.LabsOn(runScope{Semester: 3, Department: "CSE"}, "Monday"))
}
