package internal

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ppmlab/atlas/internal/handler"
	"github.com/ppmlab/atlas/internal/middleware"
)

const apiPrefix = "/v1"

// Register builds the engine with every registered manager mounted. Origins
// listed in corsOrigins are allowed in debug mode.
func Register(conf *handler.RegisterConfig, corsOrigins []string) *gin.Engine {
	r := gin.Default()

	// Kubernetes health check
	r.GET(apiPrefix+"/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "ok",
		})
	})

	// Enable CORS for the local frontend in debug mode
	if gin.Mode() == gin.DebugMode && len(corsOrigins) > 0 {
		corsConf := cors.DefaultConfig()
		corsConf.AllowOrigins = corsOrigins
		corsConf.AddAllowHeaders("Authorization")
		r.Use(cors.New(corsConf))
	}

	registerService(r, conf)
	return r
}

func registerService(r *gin.Engine, conf *handler.RegisterConfig) {
	managers := registerManagers(conf)

	///////////////////////////////////////
	//// Public routers, no need login ////
	///////////////////////////////////////

	publicRouter := r.Group(apiPrefix)
	for _, mgr := range managers {
		mgr.RegisterPublic(publicRouter.Group(mgr.GetName()))
	}

	///////////////////////////////////////
	//// Protected routers, need login ////
	///////////////////////////////////////

	protectedRouter := r.Group(apiPrefix)
	protectedRouter.Use(middleware.AuthProtected(conf.TokenMgr, conf.DB))
	for _, mgr := range managers {
		mgr.RegisterProtected(protectedRouter.Group(mgr.GetName()))
	}

	///////////////////////////////////////
	//// Admin routers, need admin role ///
	///////////////////////////////////////

	adminRouter := r.Group(apiPrefix + "/admin")
	adminRouter.Use(middleware.AuthProtected(conf.TokenMgr, conf.DB), middleware.AuthAdmin())
	for _, mgr := range managers {
		mgr.RegisterAdmin(adminRouter.Group(mgr.GetName()))
	}
}
