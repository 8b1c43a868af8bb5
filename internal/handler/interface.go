package handler

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ppmlab/atlas/internal/util"
	"github.com/ppmlab/atlas/pkg/cronjob"
	"github.com/ppmlab/atlas/pkg/ldapauth"
	"github.com/ppmlab/atlas/pkg/objstore"
	"github.com/ppmlab/atlas/pkg/reporting"
	"github.com/ppmlab/atlas/pkg/service"
)

type Manager interface {
	GetName() string
	RegisterPublic(group *gin.RouterGroup)
	RegisterProtected(group *gin.RouterGroup)
	RegisterAdmin(group *gin.RouterGroup)
}

// RegisterConfig carries the shared dependencies handed to every manager.
type RegisterConfig struct {
	DB             *gorm.DB
	TokenMgr       *util.TokenManager
	Aggregator     *reporting.Aggregator
	Users          *service.Users
	Risks          *service.RiskRegister
	ChangeRequests *service.ChangeRequests
	Tasks          *service.Tasks
	AuditLog       *service.AuditLog
	Signer         *objstore.Signer
	LDAP           *ldapauth.Authenticator
	CronJobManager *cronjob.CronJobManager
}

type RegisterFunc func(conf *RegisterConfig) Manager

// Registers is filled by the init function of every manager file.
var Registers = []RegisterFunc{}
