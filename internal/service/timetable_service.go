package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/mst-api/pkg/config"
	appErrors "github.com/noah-isme/mst-api/pkg/errors"
	"github.com/noah-isme/mst-api/internal/timetable"
)

// storeRepository abstracts persistence of a workspace's Store document.
type storeRepository interface {
	Load(ctx context.Context, workspace string, st *timetable.Store) error
	Save(ctx context.Context, workspace string, st *timetable.Store) error
}

// boardCache abstracts the read-through cache for solved boards, mirroring
// CacheService's Get/Set/Invalidate surface so the timetable service can be
// exercised against either the real CacheService or a test double.
type boardCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

// TimetableService owns the one workspace Store every handler operates
// against: it loads it lazily on first use, persists it after every
// mutating operation, and invalidates the board cache whenever the
// underlying board changes (spec.md §3: "boards are cleared whenever any
// input ... mutates").
type TimetableService struct {
	repo      storeRepository
	cache     boardCache
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	cfg       config.TimetableConfig

	workspace string
	store     *timetable.Store
	loaded    bool
}

// NewTimetableService constructs a TimetableService bound to a single
// workspace key (one Store document).
func NewTimetableService(repo storeRepository, cache boardCache, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService, cfg config.TimetableConfig, workspace string) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	st := timetable.NewStore()
	if len(cfg.SeniorSecondaryTokens) > 0 || len(cfg.SeniorGradePrefixes) > 0 {
		st.SeniorSecondaryPredicate = seniorSecondaryPredicate(cfg.SeniorSecondaryTokens, cfg.SeniorGradePrefixes)
	}
	if !cfg.OptionBlockGradeSplit {
		st.SeniorSecondaryPredicate = nil
	}
	return &TimetableService{
		repo: repo, cache: cache, validator: validate, logger: logger, metrics: metrics,
		cfg: cfg, workspace: workspace, store: st,
	}
}

// seniorSecondaryPredicate builds a SeniorSecondaryPredicate from
// configured substrings instead of the package's hard-coded default,
// resolving the Open Question via configuration (SPEC_FULL.md §4).
func seniorSecondaryPredicate(schoolTokens, gradePrefixes []string) timetable.SeniorSecondaryPredicate {
	return func(schoolName, grade string) bool {
		lowerName := strings.ToLower(schoolName)
		nameMatches := false
		for _, tok := range schoolTokens {
			if strings.Contains(lowerName, strings.ToLower(tok)) {
				nameMatches = true
				break
			}
		}
		if !nameMatches {
			return false
		}
		for _, prefix := range gradePrefixes {
			if strings.HasPrefix(grade, prefix) {
				return true
			}
		}
		return false
	}
}

func (s *TimetableService) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	if err := s.repo.Load(ctx, s.workspace, s.store); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable document")
	}
	s.loaded = true
	return nil
}

func (s *TimetableService) persist(ctx context.Context) error {
	if err := s.repo.Save(ctx, s.workspace, s.store); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist timetable document")
	}
	return nil
}

func (s *TimetableService) invalidateBoard(ctx context.Context, schoolID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, boardCacheKey(s.workspace, schoolID, "*")); err != nil {
		s.logger.Warn("board cache invalidate failed", zap.String("school_id", schoolID), zap.Error(err))
	}
}

func boardCacheKey(workspace, schoolID, suffix string) string {
	return fmt.Sprintf("timetable:%s:board:%s:%s", workspace, schoolID, suffix)
}

// AddSchool creates a school and persists the document.
func (s *TimetableService) AddSchool(ctx context.Context, name string) (string, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return "", err
	}
	id := s.store.AddSchool(name)
	if err := s.persist(ctx); err != nil {
		return "", err
	}
	return id, nil
}

// RemoveSchool removes a school and persists the document.
func (s *TimetableService) RemoveSchool(ctx context.Context, schoolID string) error {
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	if _, ok := s.store.Schools[schoolID]; !ok {
		return appErrors.Clone(appErrors.ErrUnknownEntity, "school not found")
	}
	s.store.RemoveSchool(schoolID)
	s.invalidateBoard(ctx, schoolID)
	return s.persist(ctx)
}

// RenameSchool renames a school and persists the document.
func (s *TimetableService) RenameSchool(ctx context.Context, schoolID, name string) error {
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	if _, ok := s.store.Schools[schoolID]; !ok {
		return appErrors.Clone(appErrors.ErrUnknownEntity, "school not found")
	}
	s.store.RenameSchool(schoolID, name)
	return s.persist(ctx)
}

// UpdateTimeSlots replaces a school's time grid and persists the document.
func (s *TimetableService) UpdateTimeSlots(ctx context.Context, schoolID string, days []timetable.Day, slots []timetable.TimeSlot) error {
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	school, ok := s.store.Schools[schoolID]
	if !ok {
		return appErrors.Clone(appErrors.ErrUnknownEntity, "school not found")
	}
	school.Days = days
	s.store.UpdateTimeSlots(schoolID, slots)
	s.invalidateBoard(ctx, schoolID)
	return s.persist(ctx)
}

// AddTeacher adds a teacher and persists the document.
func (s *TimetableService) AddTeacher(ctx context.Context, t timetable.Teacher) (string, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return "", err
	}
	id := s.store.AddTeacher(t)
	s.invalidateAffected(ctx, t.Assignments)
	if err := s.persist(ctx); err != nil {
		return "", err
	}
	return id, nil
}

// UpdateTeacher replaces a teacher's record and persists the document.
func (s *TimetableService) UpdateTeacher(ctx context.Context, t timetable.Teacher) error {
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	for _, existing := range s.store.Teachers {
		if existing.ID == t.ID {
			s.invalidateAffected(ctx, existing.Assignments)
			break
		}
	}
	s.store.UpdateTeacher(t)
	s.invalidateAffected(ctx, t.Assignments)
	return s.persist(ctx)
}

// RemoveTeacher removes a teacher and persists the document.
func (s *TimetableService) RemoveTeacher(ctx context.Context, id string) error {
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	for _, t := range s.store.Teachers {
		if t.ID == id {
			s.invalidateAffected(ctx, t.Assignments)
			break
		}
	}
	s.store.RemoveTeacher(id)
	return s.persist(ctx)
}

func (s *TimetableService) invalidateAffected(ctx context.Context, assignments []timetable.Assignment) {
	seen := make(map[string]bool)
	for _, a := range assignments {
		if seen[a.SchoolID] {
			continue
		}
		seen[a.SchoolID] = true
		s.invalidateBoard(ctx, a.SchoolID)
	}
}

// AddLockedSession pins an activity template onto a school's board and
// persists the document.
func (s *TimetableService) AddLockedSession(ctx context.Context, schoolID string, ls timetable.LockedSession) (string, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return "", err
	}
	if _, ok := s.store.Schools[schoolID]; !ok {
		return "", appErrors.Clone(appErrors.ErrUnknownEntity, "school not found")
	}
	id := s.store.AddLockedSession(schoolID, ls)
	s.invalidateBoard(ctx, schoolID)
	return id, s.persist(ctx)
}

// RemoveLockedSession removes a locked-session family and persists the
// document.
func (s *TimetableService) RemoveLockedSession(ctx context.Context, schoolID, id string) error {
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	s.store.RemoveLockedSession(schoolID, id)
	s.invalidateBoard(ctx, schoolID)
	return s.persist(ctx)
}

// Generate runs the solver within the configured timeout advisory, logs
// structured search-effort fields and persists the resulting document on
// success or failure alike (the School.Error field is part of what gets
// persisted). It records no Prometheus metric.
func (s *TimetableService) Generate(ctx context.Context, schoolID string) error {
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	if _, ok := s.store.Schools[schoolID]; !ok {
		return appErrors.Clone(appErrors.ErrUnknownEntity, "school not found")
	}

	timeout := s.cfg.SolveTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	solveCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	stats, err := s.store.GenerateContext(solveCtx, schoolID)
	duration := time.Since(start)

	fields := []zap.Field{
		zap.String("school_id", schoolID),
		zap.Int("backtrack_count", stats.Backtracks),
		zap.Duration("duration", duration),
	}
	if err != nil {
		s.logger.Warn("timetable generate failed", append(fields, zap.Error(err))...)
	} else {
		s.logger.Info("timetable generate succeeded", fields...)
	}
	for id := range s.store.Schools {
		s.invalidateBoard(ctx, id)
	}
	if perr := s.persist(ctx); perr != nil {
		return perr
	}
	if err != nil {
		if timetable.IsSolveFailure(err) {
			return appErrors.ErrSolveFailure
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "generate failed")
	}
	return nil
}

// Schools returns every school in creation order.
func (s *TimetableService) Schools(ctx context.Context) ([]*timetable.School, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return s.store.SchoolsInOrder(), nil
}

// Teachers returns the global teacher pool shared across every school.
func (s *TimetableService) Teachers(ctx context.Context) ([]timetable.Teacher, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return s.store.Teachers, nil
}

// Board returns the board snapshot for a school, preferring the cache
// before falling back to the loaded document. The returned bool reports
// whether the snapshot came from the cache, so callers can surface it as
// response metadata.
func (s *TimetableService) Board(ctx context.Context, schoolID string) (*timetable.School, bool, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, false, err
	}
	school, ok := s.store.Schools[schoolID]
	if !ok {
		return nil, false, appErrors.Clone(appErrors.ErrUnknownEntity, "school not found")
	}

	if s.cache != nil {
		var cached timetable.School
		key := boardCacheKey(s.workspace, schoolID, "current")
		hit, err := s.cache.Get(ctx, key, &cached)
		if err == nil && hit {
			return &cached, true, nil
		}
		_ = s.cache.Set(ctx, key, school, 0)
	}
	return school, false, nil
}

// MoveSession implements the permissive move mutation, invalidates the
// board cache and persists the document.
func (s *TimetableService) MoveSession(ctx context.Context, schoolID, sessionID string, fromDay, toDay timetable.Day, fromPeriod, toPeriod int) error {
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	if _, ok := s.store.Schools[schoolID]; !ok {
		return appErrors.Clone(appErrors.ErrUnknownEntity, "school not found")
	}
	s.store.MoveSession(schoolID, sessionID, fromDay, fromPeriod, toDay, toPeriod)
	s.invalidateBoard(ctx, schoolID)
	return s.persist(ctx)
}

// Clear wipes the active school's board, persisting the document.
func (s *TimetableService) Clear(ctx context.Context) error {
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	s.invalidateBoard(ctx, s.store.ActiveSchoolID)
	s.store.Clear()
	return s.persist(ctx)
}

// ResolveConflicts is an alias for Clear, matching the core Store API.
func (s *TimetableService) ResolveConflicts(ctx context.Context) error {
	return s.Clear(ctx)
}

// IsConflict reports whether a session id currently appears in any
// school's conflict list.
func (s *TimetableService) IsConflict(ctx context.Context, sessionID string) (bool, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return false, err
	}
	return s.store.IsConflict(sessionID), nil
}

// SweepWeeklyLockedSessions re-materialises every school's "all_week"
// locked-session families. Invoked periodically by the weekly sweep
// service rather than after every single edit, so a burst of edits within
// the sweep interval only pays for one rematerialisation pass.
func (s *TimetableService) SweepWeeklyLockedSessions(ctx context.Context) error {
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	for id, school := range s.store.Schools {
		if len(school.LockedSessions) == 0 {
			continue
		}
		school.RematerialiseLocked()
		s.invalidateBoard(ctx, id)
	}
	return s.persist(ctx)
}
