package resputil

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"

	"github.com/ppmlab/atlas/pkg/analytics"
	"github.com/ppmlab/atlas/pkg/service"
	"github.com/ppmlab/atlas/pkg/store"
)

type Response[T any] struct {
	Code ErrorCode `json:"code"`
	Data T         `json:"data"`
	Msg  string    `json:"msg"`
}

func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response[any]{
		Code: OK,
		Data: data,
		Msg:  "success",
	})
}

// Created answers a successful create with 201.
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Response[any]{
		Code: OK,
		Data: data,
		Msg:  "success",
	})
}

func HTTPError(c *gin.Context, httpCode int, err string, errorCode ErrorCode) {
	c.AbortWithStatusJSON(httpCode, Response[any]{
		Code: errorCode,
		Data: nil,
		Msg:  err,
	})
}

// Error answers with 500 and a custom error code.
func Error(c *gin.Context, err string, errorCode ErrorCode) {
	HTTPError(c, http.StatusInternalServerError, err, errorCode)
}

func BadRequestError(c *gin.Context, err string) {
	HTTPError(c, http.StatusBadRequest, err, InvalidRequest)
}

// FromError maps domain errors onto HTTP answers. A record of another tenant
// is reported exactly like a missing one.
func FromError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		HTTPError(c, http.StatusNotFound, "Not found", NotFound)
	case errors.Is(err, analytics.ErrInvalidNumericInput):
		HTTPError(c, http.StatusBadRequest, err.Error(), InvalidNumericInput)
	case errors.Is(err, store.ErrImmutableField), errors.Is(err, errors.ErrUnsupported):
		HTTPError(c, http.StatusBadRequest, err.Error(), InvalidRequest)
	case errors.Is(err, store.ErrTenantRequired), errors.Is(err, store.ErrTenantMismatch):
		HTTPError(c, http.StatusForbidden, "Tenant not allowed", TenantMismatch)
	case errors.Is(err, service.ErrInvalidTransition):
		HTTPError(c, http.StatusConflict, err.Error(), InvalidTransition)
	case errors.Is(err, service.ErrEmailTaken), errors.Is(err, service.ErrNumberTaken):
		HTTPError(c, http.StatusConflict, err.Error(), Conflict)
	case errors.Is(err, service.ErrInvalidCredential):
		HTTPError(c, http.StatusUnauthorized, "Invalid credentials", InvalidCredentials)
	default:
		klog.Error(err)
		Error(c, "Internal error", ServiceError)
	}
}
