package timetable

const weeklyDay Day = "all_week"

// RematerialiseLocked re-expands s's "all_week" locked-session families and
// redraws every locked session onto the board, putting the board's
// non-locked sessions back where they were. GenerateContext runs the same
// materialisation as solve preparation; this export lets the periodic sweep
// refresh a school's locked sessions without running a full solve, so a
// board edited between Generate calls still shows its pinned sessions.
func (s *School) RematerialiseLocked() {
	kept := s.Board.AllSessions(s.Days)
	s.materialiseLocked()
	for _, rec := range kept {
		if !rec.Session.IsLocked {
			s.Board.Place(rec.Day, rec.Period, rec.Session)
		}
	}
}

// materialiseLocked expands every "all_week" LockedSession in s into one
// child per school day (sharing WeeklyID with the hidden master) and
// places a synthetic locked TimetableSession onto the board for every
// concrete (non-master) entry. It must run before the solver does.
func (s *School) materialiseLocked() {
	s.Board.Clear()

	concrete := make([]LockedSession, 0, len(s.LockedSessions))
	for _, ls := range s.LockedSessions {
		if ls.Day != weeklyDay {
			concrete = append(concrete, ls)
			continue
		}
		for _, d := range s.Days {
			concrete = append(concrete, LockedSession{
				ID:           newID(),
				SchoolID:     ls.SchoolID,
				ActivityName: ls.ActivityName,
				Day:          d,
				Period:       ls.Period,
				ClassName:    ls.ClassName,
				IsWeekly:     false,
				WeeklyID:     ls.ID,
			})
		}
	}

	for _, ls := range concrete {
		classes := []string{"all"}
		if ls.ClassName != "" && ls.ClassName != "all" {
			classes = []string{ls.ClassName}
		}
		session := TimetableSession{
			ID:        newID(),
			Subject:   ls.ActivityName,
			ClassName: ls.ClassName,
			Classes:   classes,
			Period:    ls.Period,
			IsLocked:  true,
			SchoolID:  ls.SchoolID,
		}
		s.Board.Place(ls.Day, ls.Period, session)
	}
}

// lockedFamily returns every LockedSession belonging to the same weekly
// family as id: if id names a master, that's every child plus the master;
// if id names a child, that's its siblings plus the master. Used by
// remove_locked_session (§6): removing any family member removes the
// whole family.
func lockedFamily(sessions []LockedSession, id string) map[string]bool {
	family := map[string]bool{id: true}
	var weeklyID string
	for _, ls := range sessions {
		if ls.ID == id {
			if ls.IsWeekly {
				weeklyID = ls.ID
			} else if ls.WeeklyID != "" {
				weeklyID = ls.WeeklyID
			}
			break
		}
	}
	if weeklyID == "" {
		return family
	}
	family[weeklyID] = true
	for _, ls := range sessions {
		if ls.WeeklyID == weeklyID || ls.ID == weeklyID {
			family[ls.ID] = true
		}
	}
	return family
}
