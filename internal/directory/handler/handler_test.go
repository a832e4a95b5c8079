package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"rollcall/internal/directory/handler/mocks"
	"rollcall/internal/directory/models"
	"rollcall/internal/platform/logger"
	dErrors "rollcall/pkg/domain-errors"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

func newRouter(t *testing.T) (chi.Router, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	r := chi.NewRouter()
	New(svc, logger.Discard()).Register(r)
	return r, svc
}

func get(r chi.Router, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestGetStudent(t *testing.T) {
	r, svc := newRouter(t)
	svc.EXPECT().Lookup(gomock.Any(), "Jerry").Return(models.Student{
		Name: "Whohoo Jerry", UserID: "jerry", Email: "jerry@userid.edu", Token: "0a1b2c3d",
	}, nil)

	w := get(r, "/getStudent/Jerry")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"name":"Whohoo Jerry","userId":"jerry","email":"jerry@userid.edu","token":"0a1b2c3d"}`, w.Body.String())
}

func TestGetStudentNotFound(t *testing.T) {
	r, svc := newRouter(t)
	svc.EXPECT().Lookup(gomock.Any(), "tom").Return(models.Student{}, dErrors.New(dErrors.CodeNotFound, models.MessageStudentNotFound))

	w := get(r, "/getStudent/tom")

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"Student not found"}`, w.Body.String())
}

func TestGetStudentFailure(t *testing.T) {
	r, svc := newRouter(t)
	svc.EXPECT().Lookup(gomock.Any(), "jerry").Return(models.Student{}, dErrors.Wrap(errors.New("locked"), dErrors.CodeInternal, "failed to look up student"))

	w := get(r, "/getStudent/jerry")

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, string(dErrors.CodeInternal), resp["error"])
}
