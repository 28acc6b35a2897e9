// Package timetable implements the multi-school constraint-satisfaction
// timetable engine: time parsing, placement-unit construction, the board,
// locked-session materialisation, the constraint oracle, the backtracking
// solver, conflict detection and the mutation API. The package is
// synchronous and free of I/O; callers own persistence, transport and
// logging.
package timetable

import "github.com/google/uuid"

// Day is a short weekday label, e.g. "Mon". Days are compared by exact
// string and their relative order is whatever order they appear in a
// School's Days slice.
type Day string

// ViewMode selects how a solved board is grouped for presentation.
type ViewMode string

const (
	ViewByClass   ViewMode = "class"
	ViewByTeacher ViewMode = "teacher"
	ViewByArm     ViewMode = "arm"
)

// TimeSlot is one row of a school's daily schedule grid.
type TimeSlot struct {
	ID string
	// Period is the teaching period number, or nil for a slot that never
	// carries a period of its own (a break that applies every day).
	Period *int
	// TimeRange is the raw "HH:MM-HH:MM" string; resolve with parseRange.
	TimeRange string
	IsBreak   bool
	Label     string
	// Days, when non-empty, restricts IsBreak to only those days; on any
	// other day the slot becomes a teaching slot under its own period
	// number in the list-order sequence. It does not reuse the period
	// number of a neighbouring teaching slot.
	Days []Day
}

// School owns its own day list, time grid and locked sessions.
type School struct {
	ID        string
	Name      string
	Days      []Day
	TimeSlots []TimeSlot

	LockedSessions []LockedSession

	Board Board

	// Classes lists the class names that appear on the solved board, set
	// after a successful generate().
	Classes []string
	// Conflicts holds the result of the most recent conflict detector run.
	Conflicts []Conflict
	// Error is the human-readable SolveFailure message, set only when the
	// most recent generate() initiated from this school failed.
	Error string
}

// Assignment is a teacher's commitment to teach one subject to a
// cross-product of grades x arms, in one school, at a fixed weekly period
// count.
type Assignment struct {
	ID           string
	SchoolID     string
	Subject      string
	Grades       []string
	Arms         []string
	PeriodsWeek  int
	OptionGroup  string
	AllowedDays  []Day // empty means any day in the school's Days list
	NoAutoDouble bool  // disables the default Double-then-Single split
}

// Teacher is global: it carries assignments across every school it
// teaches in.
type Teacher struct {
	ID          string
	Name        string
	Assignments []Assignment
}

// LockedSession is a pre-pinned activity that occupies a slot before the
// solver runs. Day == "all_week" is a weekly template; materialising it
// produces one child per school day sharing WeeklyID with the master.
type LockedSession struct {
	ID           string
	SchoolID     string
	ActivityName string
	Day          Day
	Period       int
	ClassName    string // "" or "all" blocks every class
	IsWeekly     bool   // true for the hidden master record
	WeeklyID     string // non-owning reference to the master, set on children
}

// TimetableSession is one placed unit of teaching (or a locked activity)
// on a board. Double parts share ID; OptionBlock members share ID too.
type TimetableSession struct {
	ID            string
	Subject       string
	ActualSubject string // set only for OptionBlock members
	TeacherName   string
	TeacherID     string
	ClassName     string
	Classes       []string
	Period        int
	IsDouble      bool
	Part          int // 1 or 2, meaningful only when IsDouble
	OptionGroup   string
	// OptionBlockID distinguishes one OptionBlock instance from another
	// sharing the same OptionGroup tag (e.g. block 1 of 2 for the week):
	// the day-level subject-uniqueness rule suspends only within one
	// instance, never across two instances of the same group.
	OptionBlockID string
	IsLocked      bool
	SchoolID      string
	// AllowedDays, when non-empty, is the owning assignment's day
	// whitelist (§4.5 rule 4), checked independently for this session so
	// an OptionBlock's members can each carry their own restriction.
	AllowedDays []Day
}

// ConflictKind enumerates the two conflict categories the detector emits.
type ConflictKind string

const (
	ConflictTeacher ConflictKind = "teacher"
	ConflictClass   ConflictKind = "class"
)

// Conflict is a single offending-session record emitted by the detector.
type Conflict struct {
	SessionID string
	Kind      ConflictKind
	Message   string
}

// slot is one occupied (period, sessions) entry of a Board day. Only
// occupied periods appear; the list is kept sorted by Period ascending.
type slot struct {
	Period   int
	Sessions []TimetableSession
}

func newID() string {
	return uuid.NewString()
}
