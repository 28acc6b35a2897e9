package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveSchool_StripsAssignmentsAndOrphanTeachers(t *testing.T) {
	st := NewStore()
	s1 := st.AddSchool("A")
	s2 := st.AddSchool("B")
	st.AddTeacher(Teacher{ID: "t1", Name: "T1", Assignments: []Assignment{{SchoolID: s1, Subject: "Math", Grades: []string{"Grade 7"}, PeriodsWeek: 1}}})
	st.AddTeacher(Teacher{ID: "t2", Name: "T2", Assignments: []Assignment{
		{SchoolID: s1, Subject: "Math", Grades: []string{"Grade 7"}, PeriodsWeek: 1},
		{SchoolID: s2, Subject: "Science", Grades: []string{"Grade 7"}, PeriodsWeek: 1},
	}})

	st.RemoveSchool(s1)

	require.Len(t, st.Teachers, 1)
	assert.Equal(t, "t2", st.Teachers[0].ID)
	assert.Len(t, st.Teachers[0].Assignments, 1)
	assert.Equal(t, s2, st.Teachers[0].Assignments[0].SchoolID)
}

func TestRemoveSchool_UnknownIDIsNoOp(t *testing.T) {
	st := NewStore()
	st.AddSchool("A")
	before := len(st.Schools)
	st.RemoveSchool("does-not-exist")
	assert.Equal(t, before, len(st.Schools))
}

func TestUpdateTeacher_ClearsOldAndNewSchoolBoards(t *testing.T) {
	st := NewStore()
	s1 := st.AddSchool("A")
	s2 := st.AddSchool("B")
	st.Schools[s1].Conflicts = []Conflict{{SessionID: "x"}}
	st.Schools[s2].Conflicts = []Conflict{{SessionID: "y"}}

	id := st.AddTeacher(Teacher{Name: "T", Assignments: []Assignment{{SchoolID: s1, Subject: "Math", Grades: []string{"Grade 7"}, PeriodsWeek: 1}}})
	st.Schools[s1].Conflicts = []Conflict{{SessionID: "x"}}

	st.UpdateTeacher(Teacher{ID: id, Name: "T", Assignments: []Assignment{{SchoolID: s2, Subject: "Math", Grades: []string{"Grade 7"}, PeriodsWeek: 1}}})

	assert.Empty(t, st.Schools[s1].Conflicts)
	assert.Empty(t, st.Schools[s2].Conflicts)
}

func TestAddLockedSession_WeeklyFamilyRemoval(t *testing.T) {
	st := NewStore()
	schoolID := st.AddSchool("A")
	st.Schools[schoolID].Days = []Day{"Mon", "Tue"}
	masterID := st.AddLockedSession(schoolID, LockedSession{ActivityName: "Assembly", Day: weeklyDay, Period: 1, ClassName: "all"})
	st.Schools[schoolID].materialiseLocked()
	require.Len(t, st.Schools[schoolID].Board.SessionsAt("Mon", 1), 1)
	require.Len(t, st.Schools[schoolID].Board.SessionsAt("Tue", 1), 1)

	st.RemoveLockedSession(schoolID, masterID)
	assert.Empty(t, st.Schools[schoolID].LockedSessions)
}

func TestUpdateTimeSlots_Renumbers(t *testing.T) {
	st := NewStore()
	schoolID := st.AddSchool("A")
	st.UpdateTimeSlots(schoolID, []TimeSlot{
		{TimeRange: "08:00-08:40"},
		{TimeRange: "08:40-09:00", IsBreak: true},
		{TimeRange: "09:00-09:40"},
	})
	slots := st.Schools[schoolID].TimeSlots
	require.Len(t, slots, 3)
	assert.Equal(t, 1, *slots[0].Period)
	assert.Nil(t, slots[1].Period)
	assert.Equal(t, 2, *slots[2].Period)
}

func TestClearAndResolveConflicts(t *testing.T) {
	st := NewStore()
	schoolID := st.AddSchool("A")
	st.ActiveSchoolID = schoolID
	st.Schools[schoolID].Conflicts = []Conflict{{SessionID: "x"}}
	st.Schools[schoolID].Classes = []string{"Grade 7"}

	st.ResolveConflicts()

	assert.Empty(t, st.Schools[schoolID].Conflicts)
	assert.Empty(t, st.Schools[schoolID].Classes)
}
