package operations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppmlab/atlas/internal/handler"
	"github.com/ppmlab/atlas/pkg/cronjob"
)

func newRouter(t *testing.T, run cronjob.JobFunc) (*gin.Engine, *cronjob.CronJobManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cm := cronjob.NewCronJobManager(logr.Discard())
	require.NoError(t, cm.AddCronJob(cronjob.AuditRetentionJob, "0 3 * * *", true, run))

	r := gin.New()
	mgr := NewOperationsMgr(&handler.RegisterConfig{CronJobManager: cm})
	mgr.RegisterAdmin(r.Group("/operations"))
	return r, cm
}

func send(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUpdateCronjobConfig(t *testing.T) {
	r, cm := newRouter(t, func(context.Context) error { return nil })

	w := send(r, http.MethodPut, "/operations/cronjob", map[string]any{
		"name": cronjob.AuditRetentionJob, "schedule": "*/10 * * * *", "suspend": false,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	jobs := cm.GetAllCronJobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "*/10 * * * *", jobs[0].Spec)
	assert.False(t, jobs[0].Suspend)

	w = send(r, http.MethodPut, "/operations/cronjob", map[string]any{
		"name": cronjob.AuditRetentionJob, "schedule": "every day",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = send(r, http.MethodPut, "/operations/cronjob", map[string]any{"name": "missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRunCronjob(t *testing.T) {
	calls := 0
	r, _ := newRouter(t, func(context.Context) error {
		calls++
		if calls > 1 {
			return errors.New("boom")
		}
		return nil
	})

	assert.Equal(t, http.StatusOK, send(r, http.MethodPost, "/operations/cronjob/"+cronjob.AuditRetentionJob+"/run", nil).Code)
	assert.Equal(t, http.StatusInternalServerError, send(r, http.MethodPost, "/operations/cronjob/"+cronjob.AuditRetentionJob+"/run", nil).Code)
	assert.Equal(t, http.StatusNotFound, send(r, http.MethodPost, "/operations/cronjob/missing/run", nil).Code)
	assert.Equal(t, 2, calls)
}

func TestGetCronjobConfigs(t *testing.T) {
	r, _ := newRouter(t, func(context.Context) error { return nil })
	w := send(r, http.MethodGet, "/operations/cronjob", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), cronjob.AuditRetentionJob)
}
