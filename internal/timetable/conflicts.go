package timetable

import "fmt"

// detectConflicts runs the pure conflict detector over one school's board
// and returns a fresh conflict list (§4.8). It never mutates the board.
func detectConflicts(school *School) []Conflict {
	var conflicts []Conflict
	for _, day := range school.Days {
		for _, sl := range school.Board.days[day] {
			conflicts = append(conflicts, detectSlot(sl.Sessions)...)
		}
	}
	return conflicts
}

func detectSlot(sessions []TimetableSession) []Conflict {
	var conflicts []Conflict

	byTeacher := make(map[string][]TimetableSession)
	for _, s := range sessions {
		if s.IsLocked || s.TeacherID == "" {
			continue
		}
		byTeacher[s.TeacherID] = append(byTeacher[s.TeacherID], s)
	}
	for _, group := range byTeacher {
		if !hasDistinctIDs(group) {
			continue
		}
		for _, s := range group {
			conflicts = append(conflicts, Conflict{
				SessionID: s.ID,
				Kind:      ConflictTeacher,
				Message:   fmt.Sprintf("teacher %s is double-booked", s.TeacherName),
			})
		}
	}

	byClass := make(map[string][]TimetableSession)
	for _, s := range sessions {
		if s.IsLocked {
			continue
		}
		for _, c := range s.Classes {
			byClass[c] = append(byClass[c], s)
		}
	}
	for class, group := range byClass {
		if !hasDistinctIDs(group) {
			continue
		}
		for _, s := range group {
			conflicts = append(conflicts, Conflict{
				SessionID: s.ID,
				Kind:      ConflictClass,
				Message:   fmt.Sprintf("class %s has overlapping sessions", class),
			})
		}
	}

	return conflicts
}

func hasDistinctIDs(sessions []TimetableSession) bool {
	ids := make(map[string]bool)
	for _, s := range sessions {
		ids[s.ID] = true
	}
	return len(ids) >= 2
}
