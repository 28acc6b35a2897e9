package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Resolves the Open Question noted in DESIGN.md: day-level per-class
// subject uniqueness (§4.5 rule 2) is suspended only within one
// OptionBlock instance's own members, but still applies between two
// different OptionBlock instances of the same option group.
func TestOracle_SubjectUniqueness_SuspendedWithinOneOptionBlock(t *testing.T) {
	school := simpleSchool("s1", "Test School", []Day{"Mon"}, []TimeSlot{
		{TimeRange: "08:00-08:40"},
		{TimeRange: "08:40-09:20"},
	})
	o := newOracle(map[string]*School{"s1": school})

	placed := TimetableSession{
		ID: "placed", Subject: "Option A", ActualSubject: "Physics",
		ClassName: "Grade 10 P", Classes: []string{"Grade 10 P"},
		OptionGroup: "A", OptionBlockID: "block-1", SchoolID: "s1",
	}
	school.Board.Place("Mon", 1, placed)

	// A second member of the SAME OptionBlock instance, placed at a
	// different period so rule 1's slot clash can't interfere: repeating
	// the subject for the same class on the same day is tolerated because
	// it belongs to the same block.
	sameBlock := TimetableSession{
		ID: "same-block", Subject: "Option A", ActualSubject: "Physics",
		ClassName: "Grade 10 P", Classes: []string{"Grade 10 P"},
		OptionGroup: "A", OptionBlockID: "block-1", SchoolID: "s1",
	}
	assert.True(t, o.sessionFits(school, sameBlock, "Mon", 2))

	// A member of a DIFFERENT OptionBlock instance of the same group,
	// same subject and class, same day: rule 2 still applies between
	// distinct block instances.
	otherBlock := TimetableSession{
		ID: "other-block", Subject: "Option A", ActualSubject: "Physics",
		ClassName: "Grade 10 P", Classes: []string{"Grade 10 P"},
		OptionGroup: "A", OptionBlockID: "block-2", SchoolID: "s1",
	}
	assert.False(t, o.sessionFits(school, otherBlock, "Mon", 2))
}

// §4.5 rule 4: a session outside its assignment's day whitelist is
// rejected, independent of slot/class/teacher checks.
func TestOracle_AllowedDaysRejectsOutsideWhitelist(t *testing.T) {
	school := simpleSchool("s1", "Test School", []Day{"Mon", "Tue"}, []TimeSlot{
		{TimeRange: "08:00-08:40"},
	})
	o := newOracle(map[string]*School{"s1": school})

	s := TimetableSession{ID: "s1-sess", Subject: "Math", ClassName: "Grade 7", Classes: []string{"Grade 7"}, SchoolID: "s1", AllowedDays: []Day{"Mon"}}

	assert.True(t, o.sessionFits(school, s, "Mon", 1))
	assert.False(t, o.sessionFits(school, s, "Tue", 1))
}

// §4.5 rule 6: every OptionBlock member must independently satisfy rule
// 4. A member restricted to "Mon" must block the whole block from
// landing on "Tue" even when a sibling member in the same block carries
// no restriction at all - this is the bug intersectDays used to hide by
// collapsing both whitelists into one unit-level list.
func TestOracle_OptionBlockMembersCheckAllowedDaysIndependently(t *testing.T) {
	school := simpleSchool("s1", "Test School", []Day{"Mon", "Tue"}, []TimeSlot{
		{TimeRange: "08:00-08:40"},
	})
	o := newOracle(map[string]*School{"s1": school})

	restricted := TimetableSession{
		ID: "restricted", Subject: "Option A", ActualSubject: "Physics",
		ClassName: "Grade 10 P", Classes: []string{"Grade 10 P"}, TeacherID: "t1",
		OptionGroup: "A", OptionBlockID: "block-1", SchoolID: "s1", AllowedDays: []Day{"Mon"},
	}
	unrestricted := TimetableSession{
		ID: "unrestricted", Subject: "Option A", ActualSubject: "Biology",
		ClassName: "Grade 10 P", Classes: []string{"Grade 10 P"}, TeacherID: "t2",
		OptionGroup: "A", OptionBlockID: "block-1", SchoolID: "s1",
	}
	unit := PlacementUnit{Kind: UnitOptionBlock, SchoolID: "s1", Sessions: []TimetableSession{restricted, unrestricted}}

	assert.True(t, o.canPlace(unit, "Mon", 1))
	assert.False(t, o.canPlace(unit, "Tue", 1))
}
