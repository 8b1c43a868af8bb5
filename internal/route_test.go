package internal

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"

	"github.com/ppmlab/atlas/internal/handler"
	"github.com/ppmlab/atlas/internal/testutil"
	"github.com/ppmlab/atlas/internal/util"
	"github.com/ppmlab/atlas/pkg/config"
	"github.com/ppmlab/atlas/pkg/cronjob"
	"github.com/ppmlab/atlas/pkg/ldapauth"
	"github.com/ppmlab/atlas/pkg/objstore"
	"github.com/ppmlab/atlas/pkg/reporting"
	"github.com/ppmlab/atlas/pkg/service"
)

func TestRegister(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testutil.NewTestDB(t)
	r := Register(&handler.RegisterConfig{
		DB: db,
		TokenMgr: util.NewTokenManager(&config.TokenConf{
			AccessTokenTTL: time.Hour, RefreshTokenTTL: time.Hour,
			AccessTokenSecret: "a", RefreshTokenSecret: "r",
		}),
		Aggregator:     reporting.NewAggregator(db),
		Users:          service.NewUsers(db),
		Risks:          service.NewRiskRegister(db),
		ChangeRequests: service.NewChangeRequests(db),
		Tasks:          service.NewTasks(db),
		AuditLog:       service.NewAuditLog(db),
		Signer:         objstore.NewSigner("https://files.test", "docs", "s", time.Minute),
		LDAP:           ldapauth.New(config.LDAP{}),
		CronJobManager: cronjob.NewCronJobManager(logr.Discard()),
	}, nil)

	cases := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/v1/healthz", http.StatusOK},
		{http.MethodGet, "/v1/metrics", http.StatusOK},
		{http.MethodGet, "/v1/projects", http.StatusUnauthorized},
		{http.MethodGet, "/v1/admin/operations/cronjob", http.StatusUnauthorized},
		{http.MethodGet, "/v1/documents/verify?token=bad", http.StatusUnauthorized},
		{http.MethodGet, "/v1/unknown", http.StatusNotFound},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, tc.want, w.Code, "%s %s", tc.method, tc.path)
	}
}
