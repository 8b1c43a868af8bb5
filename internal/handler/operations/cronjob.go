package operations

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"
	"k8s.io/utils/ptr"

	"github.com/ppmlab/atlas/internal/resputil"
	"github.com/ppmlab/atlas/pkg/cronjob"
)

type CronjobConfigs struct {
	Name     string `json:"name" binding:"required"`
	Schedule string `json:"schedule"`
	Suspend  *bool  `json:"suspend"`
}

// UpdateCronjobConfig godoc
//
//	@Summary		Update cronjob config
//	@Description	Change the schedule or suspend state of one maintenance job
//	@Tags			Operations
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Param			use	body		CronjobConfigs			true	"CronjobConfigs"
//	@Success		200	{object}	resputil.Response[any]	"Success"
//	@Failure		400	{object}	resputil.Response[any]	"Request parameter error"
//	@Failure		404	{object}	resputil.Response[any]	"Unknown job"
//	@Router			/v1/admin/operations/cronjob [put]
func (mgr *OperationsMgr) UpdateCronjobConfig(c *gin.Context) {
	var req CronjobConfigs
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	var specPtr *string
	if req.Schedule != "" {
		if err := cronjob.ValidateSpec(req.Schedule); err != nil {
			resputil.BadRequestError(c, err.Error())
			return
		}
		specPtr = ptr.To(req.Schedule)
	}
	if err := mgr.cronJobManager.UpdateJobConfig(req.Name, specPtr, req.Suspend); err != nil {
		respondCronError(c, err)
		return
	}
	resputil.Success(c, "Successfully update cronjob config")
}

// GetCronjobConfigs godoc
//
//	@Summary		Get all cronjob configs
//	@Description	List registered maintenance jobs with their next and previous run
//	@Tags			Operations
//	@Produce		json
//	@Security		Bearer
//	@Success		200	{object}	resputil.Response[[]cronjob.JobStatus]	"Success"
//	@Router			/v1/admin/operations/cronjob [get]
func (mgr *OperationsMgr) GetCronjobConfigs(c *gin.Context) {
	resputil.Success(c, mgr.cronJobManager.GetAllCronJobs())
}

// RunCronjob godoc
//
//	@Summary		Run a cronjob now
//	@Description	Execute one maintenance job synchronously, outside its schedule
//	@Tags			Operations
//	@Produce		json
//	@Security		Bearer
//	@Param			name	path		string					true	"Job name"
//	@Success		200		{object}	resputil.Response[any]	"Success"
//	@Failure		404		{object}	resputil.Response[any]	"Unknown job"
//	@Failure		500		{object}	resputil.Response[any]	"Job failed"
//	@Router			/v1/admin/operations/cronjob/{name}/run [post]
func (mgr *OperationsMgr) RunCronjob(c *gin.Context) {
	name := c.Param("name")
	if err := mgr.cronJobManager.RunNow(c, name); err != nil {
		respondCronError(c, err)
		return
	}
	resputil.Success(c, "Successfully run cronjob "+name)
}

func respondCronError(c *gin.Context, err error) {
	if errors.Is(err, cronjob.ErrJobNotFound) {
		resputil.HTTPError(c, http.StatusNotFound, err.Error(), resputil.NotFound)
		return
	}
	klog.Error(err)
	resputil.Error(c, err.Error(), resputil.ServiceError)
}
