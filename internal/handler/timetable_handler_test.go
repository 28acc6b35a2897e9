package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/mst-api/internal/service"
	"github.com/noah-isme/mst-api/internal/timetable"
	"github.com/noah-isme/mst-api/pkg/config"
)

// fakeStoreRepo is an in-memory double satisfying the unexported
// storeRepository interface service.NewTimetableService expects: it keeps
// the last saved document in memory instead of a database, like the
// teacher's handler-test mocks.
type fakeStoreRepo struct {
	doc timetable.Document
}

func (r *fakeStoreRepo) Load(ctx context.Context, workspace string, st *timetable.Store) error {
	st.LoadDocument(r.doc)
	return nil
}

func (r *fakeStoreRepo) Save(ctx context.Context, workspace string, st *timetable.Store) error {
	r.doc = st.ToDocument()
	return nil
}

func newTestTimetableHandler() *TimetableHandler {
	svc := service.NewTimetableService(&fakeStoreRepo{}, nil, nil, zap.NewNop(), nil, config.TimetableConfig{}, "handler-test")
	return NewTimetableHandler(svc)
}

func TestAddSchoolThenGetSchool(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestTimetableHandler()

	payload := []byte(`{"name":"Riverside Secondary"}`)
	req, _ := http.NewRequest(http.MethodPost, "/timetable/schools", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.AddSchool(c)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Contains(t, w.Body.String(), "\"id\"")

	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.Data.ID)

	getReq, _ := http.NewRequest(http.MethodGet, "/timetable/schools/"+created.Data.ID, nil)
	getW := httptest.NewRecorder()
	getC, _ := gin.CreateTestContext(getW)
	getC.Request = getReq
	getC.Params = gin.Params{{Key: "id", Value: created.Data.ID}}

	h.GetSchool(getC)
	require.Equal(t, http.StatusOK, getW.Code)
	require.Contains(t, getW.Body.String(), "Riverside Secondary")
}

func TestAddSchoolValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestTimetableHandler()

	req, _ := http.NewRequest(http.MethodPost, "/timetable/schools", bytes.NewReader([]byte(`{"name":`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.AddSchool(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetSchoolUnknownIDReturnsNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestTimetableHandler()

	req, _ := http.NewRequest(http.MethodGet, "/timetable/schools/nope", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "nope"}}

	h.GetSchool(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestIsConflictUnknownSessionIsFalse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestTimetableHandler()

	req, _ := http.NewRequest(http.MethodGet, "/timetable/sessions/nope/is-conflict", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "sessionId", Value: "nope"}}

	h.IsConflict(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "\"conflict\":false")
}
