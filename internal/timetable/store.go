package timetable

import (
	"context"
	"fmt"
)

// Store is the owned, mutable aggregate the external interfaces of §6
// operate on: schools, the global teacher pool, the active school
// pointer and the view mode. Hosts construct one Store per workspace and
// persist it as a single document; tests construct one per case.
type Store struct {
	schoolOrder []string
	Schools     map[string]*School
	Teachers    []Teacher

	ActiveSchoolID string
	ViewMode       ViewMode

	// SeniorSecondaryPredicate overrides the default substring heuristic
	// used to decide whether an option group splits per grade. Nil
	// disables the split entirely.
	SeniorSecondaryPredicate SeniorSecondaryPredicate
}

// NewStore returns an empty Store with the default senior-secondary
// heuristic wired in.
func NewStore() *Store {
	return &Store{
		Schools:                  make(map[string]*School),
		ViewMode:                 ViewByClass,
		SeniorSecondaryPredicate: DefaultSeniorSecondaryPredicate,
	}
}

// SchoolsInOrder returns schools in creation order, the order a
// persistence round-trip keeps them in.
func (st *Store) SchoolsInOrder() []*School {
	out := make([]*School, 0, len(st.schoolOrder))
	for _, id := range st.schoolOrder {
		if s, ok := st.Schools[id]; ok {
			out = append(out, s)
		}
	}
	return out
}

// AddSchool creates a new school and returns its id.
func (st *Store) AddSchool(name string) string {
	id := newID()
	st.Schools[id] = &School{ID: id, Name: name, Board: NewBoard()}
	st.schoolOrder = append(st.schoolOrder, id)
	if st.ActiveSchoolID == "" {
		st.ActiveSchoolID = id
	}
	return id
}

// RemoveSchool deletes a school, strips every teacher assignment bound to
// it, and drops any teacher left with zero assignments (§6). A reference
// to an unknown id is a no-op (UnknownEntity, §7).
func (st *Store) RemoveSchool(schoolID string) {
	if _, ok := st.Schools[schoolID]; !ok {
		return
	}
	delete(st.Schools, schoolID)
	for i := range st.schoolOrder {
		if st.schoolOrder[i] == schoolID {
			st.schoolOrder = append(st.schoolOrder[:i], st.schoolOrder[i+1:]...)
			break
		}
	}

	kept := make([]Teacher, 0, len(st.Teachers))
	for _, t := range st.Teachers {
		filtered := t.Assignments[:0:0]
		for _, a := range t.Assignments {
			if a.SchoolID != schoolID {
				filtered = append(filtered, a)
			}
		}
		t.Assignments = filtered
		if len(t.Assignments) > 0 {
			kept = append(kept, t)
		}
	}
	st.Teachers = kept

	if st.ActiveSchoolID == schoolID {
		st.ActiveSchoolID = ""
		if len(st.schoolOrder) > 0 {
			st.ActiveSchoolID = st.schoolOrder[0]
		}
	}
}

// RenameSchool renames an existing school; unknown ids are a no-op.
func (st *Store) RenameSchool(schoolID, name string) {
	if s, ok := st.Schools[schoolID]; ok {
		s.Name = name
	}
}

// affectedSchools returns the set of school ids referenced by any
// assignment in the given teacher.
func affectedSchools(t Teacher) map[string]bool {
	out := make(map[string]bool)
	for _, a := range t.Assignments {
		out[a.SchoolID] = true
	}
	return out
}

// clearBoards wipes the board/classes/conflicts/error of every school
// whose id appears in ids.
func (st *Store) clearBoards(ids map[string]bool) {
	for id := range ids {
		if s, ok := st.Schools[id]; ok {
			s.Board.Clear()
			s.Classes = nil
			s.Conflicts = nil
			s.Error = ""
		}
	}
}

// AddTeacher adds a new teacher and invalidates the boards of every
// school any of its assignments touch.
func (st *Store) AddTeacher(t Teacher) string {
	if t.ID == "" {
		t.ID = newID()
	}
	st.Teachers = append(st.Teachers, t)
	st.clearBoards(affectedSchools(t))
	return t.ID
}

// RemoveTeacher removes a teacher by id and invalidates the boards of
// every school its (former) assignments touched. Unknown ids are a
// no-op.
func (st *Store) RemoveTeacher(id string) {
	for i, t := range st.Teachers {
		if t.ID == id {
			st.clearBoards(affectedSchools(t))
			st.Teachers = append(st.Teachers[:i], st.Teachers[i+1:]...)
			return
		}
	}
}

// UpdateTeacher replaces a teacher's record wholesale, invalidating the
// boards of every school touched by either the old or the new assignment
// set. Unknown ids are a no-op.
func (st *Store) UpdateTeacher(t Teacher) {
	for i, existing := range st.Teachers {
		if existing.ID == t.ID {
			affected := affectedSchools(existing)
			for id := range affectedSchools(t) {
				affected[id] = true
			}
			st.Teachers[i] = t
			st.clearBoards(affected)
			return
		}
	}
}

// UpdateTimeSlots replaces a school's time grid, renumbering periods in
// list order (§6), and clears its board. Unknown ids are a no-op.
func (st *Store) UpdateTimeSlots(schoolID string, slots []TimeSlot) {
	s, ok := st.Schools[schoolID]
	if !ok {
		return
	}
	s.TimeSlots = RenumberTimeSlots(slots)
	s.Board.Clear()
	s.Classes = nil
	s.Conflicts = nil
	s.Error = ""
}

// AddLockedSession adds a locked-session template (possibly an
// "all_week" weekly master) to a school and clears its board. Unknown
// school ids are a no-op.
func (st *Store) AddLockedSession(schoolID string, ls LockedSession) string {
	s, ok := st.Schools[schoolID]
	if !ok {
		return ""
	}
	if ls.ID == "" {
		ls.ID = newID()
	}
	ls.SchoolID = schoolID
	if ls.Day == weeklyDay {
		ls.IsWeekly = true
	}
	s.LockedSessions = append(s.LockedSessions, ls)
	s.Board.Clear()
	s.Classes = nil
	s.Conflicts = nil
	s.Error = ""
	return ls.ID
}

// RemoveLockedSession removes an entire weekly family (or a single
// standalone entry) by id and clears the owning board. An id with no
// match anywhere is a no-op (IllegalMutation, §7).
func (st *Store) RemoveLockedSession(schoolID, id string) {
	s, ok := st.Schools[schoolID]
	if !ok {
		return
	}
	family := lockedFamily(s.LockedSessions, id)
	kept := s.LockedSessions[:0:0]
	removed := false
	for _, ls := range s.LockedSessions {
		if family[ls.ID] {
			removed = true
			continue
		}
		kept = append(kept, ls)
	}
	if !removed {
		return
	}
	s.LockedSessions = kept
	s.Board.Clear()
	s.Classes = nil
	s.Conflicts = nil
	s.Error = ""
}

// Generate runs the solver across every school with at least one
// assignment, with no deadline. It is a thin wrapper over GenerateContext
// for callers (and tests) that don't need timeout/stats reporting.
func (st *Store) Generate(initiatingSchoolID string) error {
	_, err := st.GenerateContext(context.Background(), initiatingSchoolID)
	return err
}

// GenerateContext runs the solver across every school with at least one
// assignment (§6), aborting early if ctx is cancelled (an exceeded solve
// timeout surfaces as a failed solve, same as search exhaustion). On
// success every touched school's board is written back and its
// Classes/Conflicts are populated and SolveStats reports search effort;
// on failure the error string is pinned to initiatingSchoolID and that
// school's board is left empty, with every other touched school's board
// undefined (treated as cleared, per §6).
func (st *Store) GenerateContext(ctx context.Context, initiatingSchoolID string) (SolveStats, error) {
	schoolNames := make(map[string]string, len(st.Schools))
	for id, s := range st.Schools {
		schoolNames[id] = s.Name
	}

	active := make(map[string]*School)
	for _, t := range st.Teachers {
		for _, a := range t.Assignments {
			if s, ok := st.Schools[a.SchoolID]; ok {
				active[a.SchoolID] = s
			}
		}
	}

	for id := range active {
		active[id].materialiseLocked()
	}

	units := BuildUnits(st.Teachers, schoolNames, st.SeniorSecondaryPredicate)

	ok, stats := solve(ctx, active, units)
	if !ok {
		for _, s := range active {
			s.Board.Clear()
			s.Classes = nil
			s.Conflicts = nil
			s.Error = ""
		}
		if s, ok := st.Schools[initiatingSchoolID]; ok {
			s.Board.Clear()
			s.Classes = nil
			s.Conflicts = nil
			s.Error = fmt.Sprintf("Could not generate a valid timetable for %s", s.Name)
		}
		return stats, errSolveFailure
	}

	for _, s := range active {
		s.Error = ""
		s.Conflicts = detectConflicts(s)
		s.Classes = collectClasses(s)
	}
	return stats, nil
}

var errSolveFailure = fmt.Errorf("solve failure")

// IsSolveFailure reports whether err is the sentinel Generate returns on
// a failed solve.
func IsSolveFailure(err error) bool {
	return err == errSolveFailure
}

func collectClasses(s *School) []string {
	seen := make(map[string]bool)
	var out []string
	for _, day := range s.Days {
		for _, sl := range s.Board.days[day] {
			for _, sess := range sl.Sessions {
				for _, c := range sess.Classes {
					if c == "all" || seen[c] {
						continue
					}
					seen[c] = true
					out = append(out, c)
				}
			}
		}
	}
	return out
}

// MoveSession implements move_session (§4.9): it is permissive and never
// consults the Oracle. A `from` with no matching session is tolerated as
// a no-op (IllegalMutation).
func (st *Store) MoveSession(schoolID string, sessionID string, fromDay Day, fromPeriod int, toDay Day, toPeriod int) {
	s, ok := st.Schools[schoolID]
	if !ok {
		return
	}
	var moved *TimetableSession
	for _, sess := range s.Board.SessionsAt(fromDay, fromPeriod) {
		if sess.ID == sessionID {
			found := sess
			moved = &found
			break
		}
	}
	if moved == nil {
		return
	}
	s.Board.Remove(fromDay, fromPeriod, sessionID, moved.Part)
	moved.Period = toPeriod
	s.Board.Place(toDay, toPeriod, *moved)
	s.Conflicts = detectConflicts(s)
}

// Clear wipes the active school's board, classes, conflicts and error
// (§4.9).
func (st *Store) Clear() {
	s, ok := st.Schools[st.ActiveSchoolID]
	if !ok {
		return
	}
	s.Board.Clear()
	s.Classes = nil
	s.Conflicts = nil
	s.Error = ""
}

// ResolveConflicts is an alias for Clear: the name reflects user intent
// even though the implementation is identical (§4.9).
func (st *Store) ResolveConflicts() {
	st.Clear()
}

// IsConflict reports whether sessionID appears in any school's current
// conflict list.
func (st *Store) IsConflict(sessionID string) bool {
	for _, s := range st.Schools {
		for _, c := range s.Conflicts {
			if c.SessionID == sessionID {
				return true
			}
		}
	}
	return false
}

// Document is the persisted shape of a Store (§6 "Persisted state"): the
// single JSON document a host round-trips as one row. The unexported
// school-order slice is carried explicitly as SchoolOrder; the
// SeniorSecondaryPredicate function value cannot serialise and is
// omitted, so callers re-attach whichever predicate they configured at
// startup.
type Document struct {
	SchoolOrder    []string  `json:"school_order"`
	Schools        []*School `json:"schools"`
	Teachers       []Teacher `json:"all_teachers"`
	ActiveSchoolID string    `json:"active_school_id"`
	ViewMode       ViewMode  `json:"view_mode"`
}

// ToDocument snapshots the Store into its persisted shape.
func (st *Store) ToDocument() Document {
	return Document{
		SchoolOrder:    append([]string{}, st.schoolOrder...),
		Schools:        st.SchoolsInOrder(),
		Teachers:       st.Teachers,
		ActiveSchoolID: st.ActiveSchoolID,
		ViewMode:       st.ViewMode,
	}
}

// LoadDocument replaces the Store's state with doc, keeping whichever
// SeniorSecondaryPredicate was already configured.
func (st *Store) LoadDocument(doc Document) {
	st.Schools = make(map[string]*School, len(doc.Schools))
	for _, s := range doc.Schools {
		st.Schools[s.ID] = s
	}
	st.schoolOrder = append([]string{}, doc.SchoolOrder...)
	st.Teachers = doc.Teachers
	st.ActiveSchoolID = doc.ActiveSchoolID
	st.ViewMode = doc.ViewMode
	if st.ViewMode == "" {
		st.ViewMode = ViewByClass
	}
}
