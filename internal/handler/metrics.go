package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/ppmlab/atlas/dao/model"
	"github.com/ppmlab/atlas/internal/resputil"
	"github.com/ppmlab/atlas/pkg/monitor"
)

type MetricsMgr struct {
	name string
	db   *gorm.DB
}

func NewMetricsMgr(conf *RegisterConfig) Manager {
	return &MetricsMgr{
		name: "metrics",
		db:   conf.DB,
	}
}

func (mgr *MetricsMgr) GetName() string { return mgr.name }

func (mgr *MetricsMgr) RegisterPublic(metrics *gin.RouterGroup) {
	metrics.GET("", mgr.GetMetrics)
}

func (mgr *MetricsMgr) RegisterProtected(_ *gin.RouterGroup) {}

func (mgr *MetricsMgr) RegisterAdmin(_ *gin.RouterGroup) {}

var promHTTPHandler http.Handler

// Live projects per health status, refreshed on every scrape
var projectsGauge = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: "atlas",
		Name:      "projects",
		Help:      "Number of live projects by RAG status",
	},
	[]string{"rag_status"},
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewMetricsMgr)
	monitor.Registry.MustRegister(projectsGauge)
	promHTTPHandler = promhttp.HandlerFor(monitor.Registry, promhttp.HandlerOpts{Registry: monitor.Registry})
}

type ragCount struct {
	RAGStatus model.RAGStatus
	Count     int64
}

// GetMetrics godoc
//
//	@Summary		Prometheus metrics
//	@Description	Exposes process, database, report and project gauges in the Prometheus text format
//	@Tags			Metrics
//	@Produce		plain
//	@Success		200	{string}	string					"Metrics"
//	@Failure		500	{object}	resputil.Response[any]	"Other errors"
//	@Router			/v1/metrics [get]
func (mgr *MetricsMgr) GetMetrics(c *gin.Context) {
	var counts []ragCount
	// Instance wide, not tenant scoped.
	err := mgr.db.WithContext(c).Model(&model.Project{}).
		Select("rag_status, count(*) as count").
		Where("deleted_at IS NULL").
		Group("rag_status").
		Scan(&counts).Error
	if err != nil {
		resputil.Error(c, err.Error(), resputil.ServiceError)
		return
	}
	setProjectGauge(counts)
	promHTTPHandler.ServeHTTP(c.Writer, c.Request)
}

func setProjectGauge(counts []ragCount) {
	for _, s := range []model.RAGStatus{model.RAGGreen, model.RAGAmber, model.RAGRed} {
		projectsGauge.WithLabelValues(string(s)).Set(0)
	}
	for _, rc := range counts {
		projectsGauge.WithLabelValues(string(rc.RAGStatus)).Set(float64(rc.Count))
	}
}
