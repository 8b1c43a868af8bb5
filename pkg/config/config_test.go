package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
serverAddr: ":9000"
postgres:
  host: db
  port: "5432"
  dbname: atlas
  replicas:
    - host: replica-1
      port: "5432"
auth:
  accessTokenSecret: a
  refreshTokenSecret: r
  ldap:
    enable: true
    address: ldap://ldap:389
cors:
  origins: ["http://localhost:3000"]
auditRetention:
  spec: "0 3 * * *"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ServerAddr)
	assert.Equal(t, "db", cfg.Postgres.Host)
	require.Len(t, cfg.Postgres.Replicas, 1)
	assert.Equal(t, "replica-1", cfg.Postgres.Replicas[0].Host)
	assert.True(t, cfg.Auth.LDAP.Enable)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.Origins)
	assert.Equal(t, "0 3 * * *", cfg.AuditRetention.Spec)

	assert.Equal(t, defaultMaxIdleConns, cfg.Postgres.MaxIdleConns)
	assert.Equal(t, defaultMaxOpenConns, cfg.Postgres.MaxOpenConns)
	assert.Equal(t, defaultAccessTTL, cfg.Auth.AccessTokenTTLMinutes)
	assert.Equal(t, defaultRetentionDays, cfg.AuditRetention.Days)
	assert.Equal(t, defaultTopRisks, cfg.Reports.TopRisks)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
