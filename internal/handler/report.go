package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/ppmlab/atlas/internal/resputil"
	"github.com/ppmlab/atlas/internal/util"
	"github.com/ppmlab/atlas/pkg/analytics"
	"github.com/ppmlab/atlas/pkg/reporting"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewReportMgr)
}

type ReportMgr struct {
	name       string
	aggregator *reporting.Aggregator
}

func NewReportMgr(conf *RegisterConfig) Manager {
	return &ReportMgr{
		name:       "reports",
		aggregator: conf.Aggregator,
	}
}

func (mgr *ReportMgr) GetName() string { return mgr.name }

func (mgr *ReportMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *ReportMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/executive-dashboard", mgr.GetExecutiveDashboard)
	g.POST("/evm", mgr.CalculateEVM)
}

func (mgr *ReportMgr) RegisterAdmin(_ *gin.RouterGroup) {}

// GetExecutiveDashboard godoc
//
//	@Summary		Executive dashboard
//	@Description	Organization-wide counts, RAG distribution, budget totals and the top open risks
//	@Tags			Report
//	@Produce		json
//	@Security		Bearer
//	@Success		200	{object}	resputil.Response[analytics.ExecutiveDashboard]	"Dashboard"
//	@Failure		500	{object}	resputil.Response[any]							"Other errors"
//	@Router			/v1/reports/executive-dashboard [get]
func (mgr *ReportMgr) GetExecutiveDashboard(c *gin.Context) {
	dashboard, err := mgr.aggregator.GetExecutiveDashboard(c, util.GetToken(c).OrganizationID)
	if err != nil {
		resputil.FromError(c, err)
		return
	}
	resputil.Success(c, dashboard)
}

// EVMReq accepts amounts as JSON numbers or decimal strings.
type EVMReq struct {
	PlannedValue decimal.Decimal `json:"pv"`
	EarnedValue  decimal.Decimal `json:"ev"`
	ActualCost   decimal.Decimal `json:"ac"`
	BAC          decimal.Decimal `json:"bac"`
}

// CalculateEVM godoc
//
//	@Summary		Ad hoc EVM calculation
//	@Description	Derive CPI, SPI, EAC, ETC, VAC, SV and CV from the given snapshot
//	@Tags			Report
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Param			body	body		EVMReq										true	"Snapshot"
//	@Success		200		{object}	resputil.Response[analytics.EVMMetrics]	"Metrics"
//	@Failure		400		{object}	resputil.Response[any]					"Invalid numeric input"
//	@Router			/v1/reports/evm [post]
func (mgr *ReportMgr) CalculateEVM(c *gin.Context) {
	var req EVMReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.HTTPError(c, http.StatusBadRequest, err.Error(), resputil.InvalidNumericInput)
		return
	}
	metrics, err := analytics.ComputeEVM(req.PlannedValue, req.EarnedValue, req.ActualCost, req.BAC)
	if err != nil {
		resputil.FromError(c, err)
		return
	}
	resputil.Success(c, metrics)
}
