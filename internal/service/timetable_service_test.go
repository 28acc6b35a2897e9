package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/mst-api/internal/timetable"
	"github.com/noah-isme/mst-api/pkg/config"
)

// inMemoryStoreRepo is a fake storeRepository that keeps the one document
// it was last saved in memory, mirroring mockUserRepo's in-process double
// pattern for repository-backed services.
type inMemoryStoreRepo struct {
	docs map[string]timetable.Document
}

func newInMemoryStoreRepo() *inMemoryStoreRepo {
	return &inMemoryStoreRepo{docs: make(map[string]timetable.Document)}
}

func (r *inMemoryStoreRepo) Load(ctx context.Context, workspace string, st *timetable.Store) error {
	doc, ok := r.docs[workspace]
	if !ok {
		return nil
	}
	st.LoadDocument(doc)
	return nil
}

func (r *inMemoryStoreRepo) Save(ctx context.Context, workspace string, st *timetable.Store) error {
	r.docs[workspace] = st.ToDocument()
	return nil
}

func newTestTimetableService() *TimetableService {
	return NewTimetableService(newInMemoryStoreRepo(), nil, nil, zap.NewNop(), nil, config.TimetableConfig{SolveTimeout: time.Second}, "test-workspace")
}

func TestTimetableServiceAddSchoolPersists(t *testing.T) {
	svc := newTestTimetableService()
	ctx := context.Background()

	id, err := svc.AddSchool(ctx, "Greenwood Primary")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	// A fresh service bound to the same repo+workspace should see it.
	svc2 := NewTimetableService(svc.repo, nil, nil, zap.NewNop(), nil, config.TimetableConfig{}, "test-workspace")
	school, _, err := svc2.Board(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Greenwood Primary", school.Name)
}

func TestTimetableServiceGenerateTrivialFit(t *testing.T) {
	svc := newTestTimetableService()
	ctx := context.Background()

	schoolID, err := svc.AddSchool(ctx, "Hillcrest")
	require.NoError(t, err)
	require.NoError(t, svc.UpdateTimeSlots(ctx, schoolID,
		[]timetable.Day{"Mon", "Tue"},
		[]timetable.TimeSlot{{TimeRange: "08:00-08:40"}, {TimeRange: "08:40-09:20"}}))

	_, err = svc.AddTeacher(ctx, timetable.Teacher{
		Name: "T. Okafor",
		Assignments: []timetable.Assignment{
			{SchoolID: schoolID, Subject: "Math", Grades: []string{"Grade 7"}, PeriodsWeek: 2},
		},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Generate(ctx, schoolID))

	school, _, err := svc.Board(ctx, schoolID)
	require.NoError(t, err)
	require.Empty(t, school.Error)
	require.Empty(t, school.Conflicts)
	require.Contains(t, school.Classes, "Grade 7")
}

func TestTimetableServiceUnknownSchoolIsNoOpError(t *testing.T) {
	svc := newTestTimetableService()
	ctx := context.Background()

	err := svc.RenameSchool(ctx, "does-not-exist", "New Name")
	require.Error(t, err)
}
