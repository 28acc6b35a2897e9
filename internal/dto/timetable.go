// Package dto holds the HTTP request/response shapes for the timetable
// API. The `validate` struct tags are not checked on the request path:
// the timetable handlers bind with gin's ShouldBindJSON, which checks
// only `binding` tags, and no validator call follows.
package dto

// AddSchoolRequest creates a new school.
type AddSchoolRequest struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
}

// RenameSchoolRequest renames an existing school.
type RenameSchoolRequest struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
}

// TimeSlotRequest mirrors timetable.TimeSlot for wire transport; Period is
// never accepted from the client, it is always recomputed server-side.
type TimeSlotRequest struct {
	TimeRange string   `json:"time_range" validate:"required"`
	IsBreak   bool     `json:"is_break"`
	Label     string   `json:"label"`
	Days      []string `json:"days" validate:"dive,oneof=Mon Tue Wed Thu Fri Sat Sun"`
}

// UpdateTimeSlotsRequest replaces a school's daily grid.
type UpdateTimeSlotsRequest struct {
	Days  []string          `json:"days" validate:"required,min=1,dive,required"`
	Slots []TimeSlotRequest `json:"slots" validate:"required,min=1,dive"`
}

// AssignmentRequest creates or updates one of a teacher's assignments.
type AssignmentRequest struct {
	SchoolID     string   `json:"school_id" validate:"required,uuid"`
	Subject      string   `json:"subject" validate:"required"`
	Grades       []string `json:"grades" validate:"required,min=1,dive,required"`
	Arms         []string `json:"arms"`
	PeriodsWeek  int      `json:"periods_week" validate:"required,min=1,max=10"`
	OptionGroup  string   `json:"option_group"`
	AllowedDays  []string `json:"allowed_days" validate:"dive,oneof=Mon Tue Wed Thu Fri Sat Sun"`
	NoAutoDouble bool     `json:"no_auto_double"`
}

// AddTeacherRequest creates a new global teacher with its assignments.
type AddTeacherRequest struct {
	Name        string               `json:"name" validate:"required,min=1,max=200"`
	Assignments []AssignmentRequest  `json:"assignments" validate:"dive"`
}

// UpdateTeacherRequest replaces a teacher's record wholesale.
type UpdateTeacherRequest struct {
	Name        string               `json:"name" validate:"required,min=1,max=200"`
	Assignments []AssignmentRequest  `json:"assignments" validate:"dive"`
}

// AddLockedSessionRequest pins an activity onto a school's board before
// the next generate(). Day "all_week" expands into one child per school
// day.
type AddLockedSessionRequest struct {
	ActivityName string `json:"activity_name" validate:"required"`
	Day          string `json:"day" validate:"required"`
	Period       int    `json:"period" validate:"required,min=1"`
	ClassName    string `json:"class_name"`
}

// GenerateRequest identifies which school initiated the solve; its id is
// also the one any SolveFailure message is pinned to.
type GenerateRequest struct {
	SchoolID string `json:"school_id" validate:"required,uuid"`
}

// MoveSessionRequest relocates a placed session within one school's
// board. The mutation is permissive: it never consults the Oracle.
type MoveSessionRequest struct {
	SessionID  string `json:"session_id" validate:"required"`
	FromDay    string `json:"from_day" validate:"required"`
	FromPeriod int    `json:"from_period" validate:"required,min=1"`
	ToDay      string `json:"to_day" validate:"required"`
	ToPeriod   int    `json:"to_period" validate:"required,min=1"`
}

// SchoolResponse is the read model for a school's current state.
type SchoolResponse struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	Days      []string              `json:"days"`
	Classes   []string              `json:"classes"`
	Conflicts []ConflictView        `json:"conflicts"`
	Error     string                `json:"error,omitempty"`
	Board     map[string][]SlotView `json:"board"`
}

// SlotView is one occupied period on a day, flattened for JSON transport.
type SlotView struct {
	Period   int           `json:"period"`
	Sessions []SessionView `json:"sessions"`
}

// SessionView is the wire representation of a placed session.
type SessionView struct {
	ID            string   `json:"id"`
	Subject       string   `json:"subject"`
	ActualSubject string   `json:"actual_subject,omitempty"`
	TeacherName   string   `json:"teacher_name,omitempty"`
	TeacherID     string   `json:"teacher_id,omitempty"`
	ClassName     string   `json:"class_name"`
	Classes       []string `json:"classes"`
	Period        int      `json:"period"`
	IsDouble      bool     `json:"is_double"`
	Part          int      `json:"part,omitempty"`
	OptionGroup   string   `json:"option_group,omitempty"`
	IsLocked      bool     `json:"is_locked"`
}

// ConflictView is the wire representation of a single Conflict record.
type ConflictView struct {
	SessionID string `json:"session_id"`
	Kind      string `json:"kind"`
	Message   string `json:"message"`
}

// TeacherResponse is the read model for a global teacher.
type TeacherResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Assignments []AssignmentResponse `json:"assignments"`
}

// AssignmentResponse is the read model for one assignment.
type AssignmentResponse struct {
	ID          string   `json:"id"`
	SchoolID    string   `json:"school_id"`
	Subject     string   `json:"subject"`
	Grades      []string `json:"grades"`
	Arms        []string `json:"arms"`
	PeriodsWeek int      `json:"periods_week"`
	OptionGroup string   `json:"option_group,omitempty"`
	AllowedDays []string `json:"allowed_days,omitempty"`
}
