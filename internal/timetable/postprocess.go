package timetable

// InjectFridaySports optionally pins a "Sports" locked session into the
// first free teaching period on "Fri" for every school whose name
// matches isSecondary. This behaviour appeared in one version of the
// source and not another (design notes, §9); it is never invoked by
// Generate itself, only by a caller that explicitly wants it after a
// successful solve.
func (st *Store) InjectFridaySports(isSecondary func(schoolName string) bool) {
	if isSecondary == nil {
		return
	}
	const fri Day = "Fri"
	for _, s := range st.Schools {
		if !isSecondary(s.Name) || !containsDay(s.Days, fri) {
			continue
		}
		period, ok := firstFreeTeachingPeriod(s, fri)
		if !ok {
			continue
		}
		// Pinned directly onto the already-solved board, bypassing
		// AddLockedSession: that API clears the board as a normal
		// mutation, which would undo the very solve this runs after.
		ls := LockedSession{ID: newID(), SchoolID: s.ID, ActivityName: "Sports", Day: fri, Period: period, ClassName: "all"}
		s.LockedSessions = append(s.LockedSessions, ls)
		s.Board.Place(fri, period, TimetableSession{
			ID: newID(), Subject: "Sports", ClassName: "all", Classes: []string{"all"},
			Period: period, IsLocked: true, SchoolID: s.ID,
		})
		s.Classes = collectClasses(s)
		s.Conflicts = detectConflicts(s)
	}
}

func firstFreeTeachingPeriod(s *School, day Day) (int, bool) {
	for _, p := range s.teachingPeriodsForDay(day) {
		if len(s.Board.SessionsAt(day, p)) == 0 {
			return p, true
		}
	}
	return 0, false
}
