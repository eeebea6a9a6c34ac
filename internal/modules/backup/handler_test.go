package backup

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackupRouter(t *testing.T) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := newTestService(t, seededStore(t, "Intro"))
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v2"), func(c *gin.Context) { c.Next() })
	return r, svc
}

func TestHandler_CreateDownloadDelete(t *testing.T) {
	r, _ := newBackupRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v2/backups", nil))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var item Item
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &item))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v2/backups", nil))
	assert.Contains(t, w.Body.String(), item.Name)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v2/backups/"+item.Name, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"Intro"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v2/backups/"+item.Name, nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v2/backups/"+item.Name, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_RestoreUpload(t *testing.T) {
	r, svc := newBackupRouter(t)
	blob, err := svc.src.Export(t.Context())
	require.NoError(t, err)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "snapshot.json")
	require.NoError(t, err)
	_, _ = fw.Write(blob)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v2/backups/restore", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"sections":1}`, w.Body.String())
}

func TestHandler_RestoreByNameErrors(t *testing.T) {
	r, _ := newBackupRouter(t)

	send := func(payload string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v2/backups/restore", bytes.NewBufferString(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}
	assert.Equal(t, http.StatusBadRequest, send(`{}`))
	assert.Equal(t, http.StatusBadRequest, send(`{"name":"../x"}`))
	assert.Equal(t, http.StatusNotFound, send(`{"name":"sections-2020-01-01T00-00-00.json"}`))
}
