package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdjacentTeachingPeriod(t *testing.T) {
	s := &School{
		Days: []Day{"Mon"},
		TimeSlots: RenumberTimeSlots([]TimeSlot{
			{TimeRange: "08:00-08:40"},
			{TimeRange: "08:40-09:20"},
			{TimeRange: "09:20-09:40", IsBreak: true},
			{TimeRange: "09:40-10:20"},
		}),
	}
	next, ok := s.adjacentTeachingPeriod("Mon", 1)
	assert.True(t, ok)
	assert.Equal(t, 2, next)

	_, ok = s.adjacentTeachingPeriod("Mon", 2)
	assert.False(t, ok, "a break sits between period 2 and period 3")
}

func TestRenumberTimeSlots_BreaksAreNullExceptPartialDay(t *testing.T) {
	slots := RenumberTimeSlots([]TimeSlot{
		{TimeRange: "08:00-08:40"},
		{TimeRange: "08:40-09:00", IsBreak: true},
		{TimeRange: "09:00-09:40", IsBreak: true, Days: []Day{"Mon"}},
		{TimeRange: "09:40-10:20"},
	})
	assert.Equal(t, 1, *slots[0].Period)
	assert.Nil(t, slots[1].Period)
	if assert.NotNil(t, slots[2].Period) {
		assert.Equal(t, 2, *slots[2].Period)
	}
	assert.Equal(t, 3, *slots[3].Period)
}

func TestIsTeachingOn_PartialDayBreak(t *testing.T) {
	ts := TimeSlot{Period: periodPtr(2), IsBreak: true, Days: []Day{"Mon"}}
	assert.False(t, isTeachingOn(ts, "Mon"))
	assert.True(t, isTeachingOn(ts, "Tue"))
}
