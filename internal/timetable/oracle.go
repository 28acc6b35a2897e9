package timetable

// oracle answers "is this unit placeable here?" against every school's
// board at once: the teacher time-interval clash check (rule 3) must see
// every other school's placements, not just the one being solved.
type oracle struct {
	schools map[string]*School
}

func newOracle(schools map[string]*School) *oracle {
	return &oracle{schools: schools}
}

// canPlace evaluates rules 1-6 of §4.5 for unit u at (school, day,
// period). For a Double, period names where part 1 would land; the
// adjacency rule (5) locates part 2 itself.
func (o *oracle) canPlace(u PlacementUnit, day Day, period int) bool {
	school := o.schools[u.SchoolID]
	if school == nil {
		return false
	}

	switch u.Kind {
	case UnitSingle, UnitOptionBlock:
		for _, s := range u.Sessions {
			if !o.sessionFits(school, s, day, period) {
				return false
			}
		}
		return true
	case UnitDouble:
		first, second := u.Sessions[0], u.Sessions[1]
		if !o.sessionFits(school, first, day, period) {
			return false
		}
		nextPeriod, ok := school.adjacentTeachingPeriod(day, period)
		if !ok {
			return false
		}
		return o.sessionFits(school, second, day, nextPeriod)
	}
	return false
}

// sessionFits checks rules 1-4 for a single session at (day, period),
// ignoring the Double/OptionBlock-specific rules 5-6 which the caller
// applies around this. Rule 4 (the day whitelist) is evaluated per
// session rather than once per unit, since an OptionBlock's members may
// each carry a different whitelist.
func (o *oracle) sessionFits(school *School, s TimetableSession, day Day, period int) bool {
	if len(s.AllowedDays) > 0 && !containsDay(s.AllowedDays, day) {
		return false
	}

	existing := school.Board.SessionsAt(day, period)

	// Rule 1: slot-level class clash, and locked "all" sessions block
	// everyone.
	for _, other := range existing {
		if other.IsLocked {
			if containsString(other.Classes, "all") {
				return false
			}
			if classesOverlap(other.Classes, s.Classes) {
				return false
			}
			continue
		}
		if classesOverlap(other.Classes, s.Classes) {
			return false
		}
	}

	// Rule 2: day-level per-class subject uniqueness, suspended within
	// one OptionBlock's own members (same OptionGroup tag never conflicts
	// with itself; it still conflicts with a *different* OptionBlock for
	// that class, per the resolved Open Question).
	subject := s.ActualSubject
	if subject == "" {
		subject = s.Subject
	}
	for _, d := range school.Board.days[day] {
		for _, placed := range d.Sessions {
			if placed.IsLocked {
				continue
			}
			if !classesOverlap(placed.Classes, s.Classes) {
				continue
			}
			placedSubject := placed.ActualSubject
			if placedSubject == "" {
				placedSubject = placed.Subject
			}
			if placedSubject != subject {
				continue
			}
			if s.OptionBlockID != "" && placed.OptionBlockID == s.OptionBlockID {
				continue
			}
			return false
		}
	}

	// Rule 3: teacher time-interval clash across every school, same day.
	if s.TeacherID != "" {
		candidateRange := school.resolveRange(period)
		if !candidateRange.ok {
			return false
		}
		for _, other := range o.schools {
			for _, d := range other.Board.days[day] {
				for _, placed := range d.Sessions {
					if placed.IsLocked || placed.TeacherID != s.TeacherID {
						continue
					}
					if placed.ID == s.ID {
						continue
					}
					placedRange := other.resolveRange(d.Period)
					if overlaps(candidateRange, placedRange) {
						return false
					}
				}
			}
		}
	}

	return true
}

func classesOverlap(a, b []string) bool {
	for _, x := range a {
		if containsString(b, x) {
			return true
		}
	}
	return false
}

func containsString(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
