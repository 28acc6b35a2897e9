package timetable

// teachingSlot pairs a TimeSlot with the period it actually carries on a
// given day, honouring the §4.7 day-exception rule for breaks: a break
// slot whose Days list excludes the current day becomes teaching on that
// day under its own period number, the one RenumberTimeSlots gave it; it
// does not share the period number of the teaching slot it sits beside.
type teachingSlot struct {
	TimeSlot
	EffectivePeriod int
}

// isTeachingOn reports whether ts is a teaching slot on day d.
func isTeachingOn(ts TimeSlot, d Day) bool {
	if ts.Period == nil {
		return false
	}
	if !ts.IsBreak {
		return true
	}
	return !containsDay(ts.Days, d)
}

func containsDay(days []Day, d Day) bool {
	for _, x := range days {
		if x == d {
			return true
		}
	}
	return false
}

// teachingPeriodsForDay walks the school's TimeSlot list in order and
// returns the teaching periods available on day d, in list order. This is
// the "per-day filtered list" of §4.7.
func (s *School) teachingPeriodsForDay(d Day) []int {
	var out []int
	for _, ts := range s.TimeSlots {
		if isTeachingOn(ts, d) {
			out = append(out, *ts.Period)
		}
	}
	return out
}

// timeSlotForPeriod returns the TimeSlot carrying the given period number,
// and whether one was found.
func (s *School) timeSlotForPeriod(period int) (TimeSlot, bool) {
	for _, ts := range s.TimeSlots {
		if ts.Period != nil && *ts.Period == period {
			return ts, true
		}
	}
	return TimeSlot{}, false
}

// resolveRange resolves the wall-clock range for a period in this school.
func (s *School) resolveRange(period int) timeRange {
	ts, ok := s.timeSlotForPeriod(period)
	if !ok {
		return timeRange{}
	}
	return parseRange(ts.TimeRange)
}

// adjacentTeachingPeriod returns the period immediately following p on day
// d, per §4.7: it must be p's successor in the per-day teaching sequence
// AND the underlying TimeSlots must be neighbours in the school's overall
// slot list, i.e. no non-teaching slot sits between them.
func (s *School) adjacentTeachingPeriod(d Day, p int) (int, bool) {
	idx := -1
	for i, ts := range s.TimeSlots {
		if ts.Period != nil && *ts.Period == p {
			idx = i
			break
		}
	}
	if idx == -1 || idx+1 >= len(s.TimeSlots) {
		return 0, false
	}
	next := s.TimeSlots[idx+1]
	if !isTeachingOn(next, d) {
		return 0, false
	}
	return *next.Period, true
}

// RenumberTimeSlots assigns period fields 1, 2, … in list order, skipping
// every-day breaks (which carry a nil period); a break restricted to some
// days takes the next number like a teaching slot. This implements update_time_slots'
// renumbering rule (§6).
func RenumberTimeSlots(slots []TimeSlot) []TimeSlot {
	out := make([]TimeSlot, len(slots))
	copy(out, slots)
	n := 1
	for i := range out {
		if out[i].IsBreak && len(out[i].Days) == 0 {
			out[i].Period = nil
			continue
		}
		if out[i].IsBreak {
			// A break restricted to a subset of days still anchors a
			// period number: on excluded days it behaves as teaching.
			p := n
			out[i].Period = &p
			n++
			continue
		}
		p := n
		out[i].Period = &p
		n++
	}
	return out
}
