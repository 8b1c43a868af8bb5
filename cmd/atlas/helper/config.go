package helper

import (
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
	"k8s.io/klog/v2"

	"github.com/ppmlab/atlas/internal/handler"
	"github.com/ppmlab/atlas/internal/util"
	"github.com/ppmlab/atlas/pkg/config"
	"github.com/ppmlab/atlas/pkg/cronjob"
	"github.com/ppmlab/atlas/pkg/ldapauth"
	"github.com/ppmlab/atlas/pkg/notify"
	"github.com/ppmlab/atlas/pkg/objstore"
	"github.com/ppmlab/atlas/pkg/reporting"
	"github.com/ppmlab/atlas/pkg/service"
)

// Schedules used when a job is configured without one. Such jobs start
// suspended and can be enabled from the operations API.
const (
	fallbackRetentionSpec = "0 3 * * *"
	fallbackRescoreSpec   = "30 * * * *"
)

// ConfigInitializer wires configuration into the handler dependencies.
type ConfigInitializer struct {
	backendConfig *config.Config
}

func NewConfigInitializer() *ConfigInitializer {
	return &ConfigInitializer{
		backendConfig: config.GetConfig(),
	}
}

func (ci *ConfigInitializer) GetBackendConfig() *config.Config {
	return ci.backendConfig
}

// LoadDebugEnvironment reads .debug.env in debug mode and takes the listen
// port from ATLAS_BE_PORT.
func (ci *ConfigInitializer) LoadDebugEnvironment() error {
	if gin.Mode() != gin.DebugMode {
		return nil
	}

	err := godotenv.Load(".debug.env")
	if err != nil {
		return err
	}

	be := os.Getenv("ATLAS_BE_PORT")
	if be == "" {
		return fmt.Errorf("ATLAS_BE_PORT is not set")
	}
	ci.backendConfig.ServerAddr = ":" + be
	return nil
}

// InitializeRegisterConfig builds the services shared by all managers.
func (ci *ConfigInitializer) InitializeRegisterConfig(db *gorm.DB) (*handler.RegisterConfig, error) {
	cfg := ci.backendConfig
	log := klog.NewKlogr()

	audit := service.NewAuditLog(db)
	risks := service.NewRiskRegister(db)
	registerConfig := &handler.RegisterConfig{
		DB:       db,
		TokenMgr: util.GetTokenMgr(),
		Aggregator: reporting.NewAggregator(db,
			reporting.WithTopRisks(cfg.Reports.TopRisks),
			reporting.WithLogger(log.WithName("reporting")),
		),
		Users: service.NewUsers(db),
		Risks: risks,
		ChangeRequests: service.NewChangeRequests(db,
			service.WithNotifier(notify.NewMailer(cfg)),
			service.WithLogger(log.WithName("change-requests")),
		),
		Tasks:    service.NewTasks(db),
		AuditLog: audit,
		Signer: objstore.NewSigner(
			cfg.ObjectStorage.BaseURL,
			cfg.ObjectStorage.Bucket,
			cfg.ObjectStorage.SigningSecret,
			time.Duration(cfg.ObjectStorage.ExpirySeconds)*time.Second,
		),
		LDAP: ldapauth.New(cfg.Auth.LDAP),
	}

	cronJobManager, err := ci.initCronJobs(db, audit, risks)
	if err != nil {
		return nil, err
	}
	registerConfig.CronJobManager = cronJobManager
	return registerConfig, nil
}

func (ci *ConfigInitializer) initCronJobs(db *gorm.DB, audit *service.AuditLog, risks *service.RiskRegister) (*cronjob.CronJobManager, error) {
	cfg := ci.backendConfig
	log := klog.NewKlogr().WithName("cronjob")
	cm := cronjob.NewCronJobManager(log)

	spec, suspend := jobSpec(cfg.AuditRetention.Spec, fallbackRetentionSpec)
	if err := cm.AddCronJob(cronjob.AuditRetentionJob, spec, suspend,
		cronjob.NewAuditRetentionFunc(audit, cfg.AuditRetention.Days, time.Now, log)); err != nil {
		return nil, err
	}
	spec, suspend = jobSpec(cfg.RiskRescore.Spec, fallbackRescoreSpec)
	if err := cm.AddCronJob(cronjob.RiskRescoreJob, spec, suspend,
		cronjob.NewRiskRescoreFunc(db, risks, log)); err != nil {
		return nil, err
	}
	return cm, nil
}

func jobSpec(configured, fallback string) (spec string, suspend bool) {
	if configured == "" {
		return fallback, true
	}
	return configured, false
}
