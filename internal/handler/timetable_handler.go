package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/noah-isme/mst-api/internal/dto"
	internalmiddleware "github.com/noah-isme/mst-api/internal/middleware"
	"github.com/noah-isme/mst-api/internal/service"
	"github.com/noah-isme/mst-api/internal/timetable"
	appErrors "github.com/noah-isme/mst-api/pkg/errors"
	"github.com/noah-isme/mst-api/pkg/response"
)

// TimetableHandler wires the HTTP surface of §6's external interfaces to
// TimetableService: schools, teachers, locked sessions, generate and the
// drag-and-drop mutation API.
type TimetableHandler struct {
	service *service.TimetableService
}

// NewTimetableHandler creates a new handler.
func NewTimetableHandler(svc *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// ListSchools godoc
// @Summary List schools
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timetable/schools [get]
func (h *TimetableHandler) ListSchools(c *gin.Context) {
	schools, err := h.service.Schools(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	out := make([]dto.SchoolResponse, len(schools))
	for i, s := range schools {
		out[i] = schoolResponse(s)
	}
	response.JSON(c, http.StatusOK, out, nil)
}

// AddSchool godoc
// @Summary Create a school
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.AddSchoolRequest true "New school"
// @Success 201 {object} response.Envelope
// @Router /timetable/schools [post]
func (h *TimetableHandler) AddSchool(c *gin.Context) {
	var req dto.AddSchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	id, err := h.service.AddSchool(c.Request.Context(), req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"id": id})
}

// GetSchool godoc
// @Summary Get a school's current board
// @Tags Timetable
// @Produce json
// @Param id path string true "School id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetable/schools/{id} [get]
func (h *TimetableHandler) GetSchool(c *gin.Context) {
	school, cacheHit, err := h.service.Board(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	internalmiddleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, schoolResponse(school), nil, internalmiddleware.ExtractMeta(c))
}

// RenameSchool godoc
// @Summary Rename a school
// @Tags Timetable
// @Accept json
// @Produce json
// @Param id path string true "School id"
// @Param payload body dto.RenameSchoolRequest true "New name"
// @Success 200 {object} response.Envelope
// @Router /timetable/schools/{id} [put]
func (h *TimetableHandler) RenameSchool(c *gin.Context) {
	var req dto.RenameSchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.service.RenameSchool(c.Request.Context(), c.Param("id"), req.Name); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// RemoveSchool godoc
// @Summary Remove a school
// @Tags Timetable
// @Produce json
// @Param id path string true "School id"
// @Success 204 {object} response.Envelope
// @Router /timetable/schools/{id} [delete]
func (h *TimetableHandler) RemoveSchool(c *gin.Context) {
	if err := h.service.RemoveSchool(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UpdateTimeSlots godoc
// @Summary Replace a school's day/period grid
// @Tags Timetable
// @Accept json
// @Produce json
// @Param id path string true "School id"
// @Param payload body dto.UpdateTimeSlotsRequest true "New grid"
// @Success 200 {object} response.Envelope
// @Router /timetable/schools/{id}/time-slots [put]
func (h *TimetableHandler) UpdateTimeSlots(c *gin.Context) {
	var req dto.UpdateTimeSlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	days := make([]timetable.Day, len(req.Days))
	for i, d := range req.Days {
		days[i] = timetable.Day(d)
	}
	slots := make([]timetable.TimeSlot, len(req.Slots))
	for i, s := range req.Slots {
		slots[i] = timeSlotFromRequest(s)
	}
	if err := h.service.UpdateTimeSlots(c.Request.Context(), c.Param("id"), days, slots); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListTeachers godoc
// @Summary List the global teacher pool
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timetable/teachers [get]
func (h *TimetableHandler) ListTeachers(c *gin.Context) {
	teachers, err := h.service.Teachers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	out := make([]dto.TeacherResponse, len(teachers))
	for i, t := range teachers {
		out[i] = teacherResponse(t)
	}
	response.JSON(c, http.StatusOK, out, nil)
}

// AddTeacher godoc
// @Summary Add a teacher with its assignments
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.AddTeacherRequest true "New teacher"
// @Success 201 {object} response.Envelope
// @Router /timetable/teachers [post]
func (h *TimetableHandler) AddTeacher(c *gin.Context) {
	var req dto.AddTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	id, err := h.service.AddTeacher(c.Request.Context(), teacherFromAddRequest(req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"id": id})
}

// UpdateTeacher godoc
// @Summary Replace a teacher's record wholesale
// @Tags Timetable
// @Accept json
// @Produce json
// @Param id path string true "Teacher id"
// @Param payload body dto.UpdateTeacherRequest true "Updated teacher"
// @Success 200 {object} response.Envelope
// @Router /timetable/teachers/{id} [put]
func (h *TimetableHandler) UpdateTeacher(c *gin.Context) {
	var req dto.UpdateTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	teacher := timetable.Teacher{ID: c.Param("id"), Name: req.Name, Assignments: assignmentsFromRequests(req.Assignments)}
	if err := h.service.UpdateTeacher(c.Request.Context(), teacher); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// RemoveTeacher godoc
// @Summary Remove a teacher
// @Tags Timetable
// @Produce json
// @Param id path string true "Teacher id"
// @Success 204 {object} response.Envelope
// @Router /timetable/teachers/{id} [delete]
func (h *TimetableHandler) RemoveTeacher(c *gin.Context) {
	if err := h.service.RemoveTeacher(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AddLockedSession godoc
// @Summary Pin a locked activity onto a school's board
// @Tags Timetable
// @Accept json
// @Produce json
// @Param id path string true "School id"
// @Param payload body dto.AddLockedSessionRequest true "Locked session template"
// @Success 201 {object} response.Envelope
// @Router /timetable/schools/{id}/locked-sessions [post]
func (h *TimetableHandler) AddLockedSession(c *gin.Context) {
	var req dto.AddLockedSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	ls := timetable.LockedSession{
		ActivityName: req.ActivityName,
		Day:          timetable.Day(req.Day),
		Period:       req.Period,
		ClassName:    req.ClassName,
	}
	id, err := h.service.AddLockedSession(c.Request.Context(), c.Param("id"), ls)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"id": id})
}

// RemoveLockedSession godoc
// @Summary Remove a locked session (and its weekly family, if any)
// @Tags Timetable
// @Produce json
// @Param id path string true "School id"
// @Param lockedId path string true "Locked session id"
// @Success 204 {object} response.Envelope
// @Router /timetable/schools/{id}/locked-sessions/{lockedId} [delete]
func (h *TimetableHandler) RemoveLockedSession(c *gin.Context) {
	if err := h.service.RemoveLockedSession(c.Request.Context(), c.Param("id"), c.Param("lockedId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Generate godoc
// @Summary Run the solver across every school with at least one assignment
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.GenerateRequest true "Initiating school"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /timetable/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.service.Generate(c.Request.Context(), req.SchoolID); err != nil {
		response.Error(c, err)
		return
	}
	school, _, err := h.service.Board(c.Request.Context(), req.SchoolID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schoolResponse(school), nil)
}

// MoveSession godoc
// @Summary Relocate a placed session within one school's board
// @Tags Timetable
// @Accept json
// @Produce json
// @Param id path string true "School id"
// @Param payload body dto.MoveSessionRequest true "Move"
// @Success 200 {object} response.Envelope
// @Router /timetable/schools/{id}/sessions/move [post]
func (h *TimetableHandler) MoveSession(c *gin.Context) {
	var req dto.MoveSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	schoolID := c.Param("id")
	if err := h.service.MoveSession(c.Request.Context(), schoolID, req.SessionID,
		timetable.Day(req.FromDay), timetable.Day(req.ToDay), req.FromPeriod, req.ToPeriod); err != nil {
		response.Error(c, err)
		return
	}
	school, _, err := h.service.Board(c.Request.Context(), schoolID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schoolResponse(school), nil)
}

// Clear godoc
// @Summary Wipe the active school's board, classes, conflicts and error
// @Tags Timetable
// @Produce json
// @Success 204 {object} response.Envelope
// @Router /timetable/clear [post]
func (h *TimetableHandler) Clear(c *gin.Context) {
	if err := h.service.Clear(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ResolveConflicts godoc
// @Summary Alias for clear, reflecting user intent
// @Tags Timetable
// @Produce json
// @Success 204 {object} response.Envelope
// @Router /timetable/resolve-conflicts [post]
func (h *TimetableHandler) ResolveConflicts(c *gin.Context) {
	if err := h.service.ResolveConflicts(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// IsConflict godoc
// @Summary Report whether a session id currently appears in any conflict list
// @Tags Timetable
// @Produce json
// @Param sessionId path string true "Session id"
// @Success 200 {object} response.Envelope
// @Router /timetable/sessions/{sessionId}/is-conflict [get]
func (h *TimetableHandler) IsConflict(c *gin.Context) {
	conflicted, err := h.service.IsConflict(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"conflict": conflicted}, nil)
}

func timeSlotFromRequest(r dto.TimeSlotRequest) timetable.TimeSlot {
	days := make([]timetable.Day, len(r.Days))
	for i, d := range r.Days {
		days[i] = timetable.Day(d)
	}
	return timetable.TimeSlot{
		ID:        uuid.NewString(),
		TimeRange: r.TimeRange,
		IsBreak:   r.IsBreak,
		Label:     r.Label,
		Days:      days,
	}
}

func assignmentsFromRequests(reqs []dto.AssignmentRequest) []timetable.Assignment {
	out := make([]timetable.Assignment, len(reqs))
	for i, a := range reqs {
		allowed := make([]timetable.Day, len(a.AllowedDays))
		for j, d := range a.AllowedDays {
			allowed[j] = timetable.Day(d)
		}
		out[i] = timetable.Assignment{
			SchoolID:     a.SchoolID,
			Subject:      a.Subject,
			Grades:       a.Grades,
			Arms:         a.Arms,
			PeriodsWeek:  a.PeriodsWeek,
			OptionGroup:  a.OptionGroup,
			AllowedDays:  allowed,
			NoAutoDouble: a.NoAutoDouble,
		}
	}
	return out
}

func teacherFromAddRequest(req dto.AddTeacherRequest) timetable.Teacher {
	return timetable.Teacher{Name: req.Name, Assignments: assignmentsFromRequests(req.Assignments)}
}

func teacherResponse(t timetable.Teacher) dto.TeacherResponse {
	assignments := make([]dto.AssignmentResponse, len(t.Assignments))
	for i, a := range t.Assignments {
		allowed := make([]string, len(a.AllowedDays))
		for j, d := range a.AllowedDays {
			allowed[j] = string(d)
		}
		assignments[i] = dto.AssignmentResponse{
			ID:          a.ID,
			SchoolID:    a.SchoolID,
			Subject:     a.Subject,
			Grades:      a.Grades,
			Arms:        a.Arms,
			PeriodsWeek: a.PeriodsWeek,
			OptionGroup: a.OptionGroup,
			AllowedDays: allowed,
		}
	}
	return dto.TeacherResponse{ID: t.ID, Name: t.Name, Assignments: assignments}
}

func sessionView(s timetable.TimetableSession) dto.SessionView {
	return dto.SessionView{
		ID:            s.ID,
		Subject:       s.Subject,
		ActualSubject: s.ActualSubject,
		TeacherName:   s.TeacherName,
		TeacherID:     s.TeacherID,
		ClassName:     s.ClassName,
		Classes:       s.Classes,
		Period:        s.Period,
		IsDouble:      s.IsDouble,
		Part:          s.Part,
		OptionGroup:   s.OptionGroup,
		IsLocked:      s.IsLocked,
	}
}

func conflictView(c timetable.Conflict) dto.ConflictView {
	return dto.ConflictView{SessionID: c.SessionID, Kind: string(c.Kind), Message: c.Message}
}

// schoolResponse flattens a board into per-day, period-ordered slots. It
// relies on Board.AllSessions' iteration order (days in school order, then
// ascending period, then slot insertion order) to group consecutive
// records sharing (day, period) into one SlotView without needing any
// unexported board internals.
func schoolResponse(s *timetable.School) dto.SchoolResponse {
	days := make([]string, len(s.Days))
	for i, d := range s.Days {
		days[i] = string(d)
	}

	board := make(map[string][]dto.SlotView, len(s.Days))
	var currentDay string
	var slots []dto.SlotView
	flush := func() {
		if currentDay != "" {
			board[currentDay] = slots
		}
	}
	for _, rec := range s.Board.AllSessions(s.Days) {
		dayStr := string(rec.Day)
		if dayStr != currentDay {
			flush()
			currentDay = dayStr
			slots = nil
		}
		if n := len(slots); n > 0 && slots[n-1].Period == rec.Period {
			slots[n-1].Sessions = append(slots[n-1].Sessions, sessionView(rec.Session))
		} else {
			slots = append(slots, dto.SlotView{Period: rec.Period, Sessions: []dto.SessionView{sessionView(rec.Session)}})
		}
	}
	flush()

	conflicts := make([]dto.ConflictView, len(s.Conflicts))
	for i, c := range s.Conflicts {
		conflicts[i] = conflictView(c)
	}

	return dto.SchoolResponse{
		ID:        s.ID,
		Name:      s.Name,
		Days:      days,
		Classes:   s.Classes,
		Conflicts: conflicts,
		Error:     s.Error,
		Board:     board,
	}
}
