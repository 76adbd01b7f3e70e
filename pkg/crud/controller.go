package crud

import (
	"github.com/example/storehub/pkg/httpx"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Controller binds a create schema C and an update schema U around
// Service[T]. FromCreate builds a fresh record and may reject the input;
// ApplyUpdate copies the set fields of a partial update onto a loaded
// record.
type Controller[T any, C any, U any] struct {
	svc         *Service[T]
	logger      *zap.Logger
	resource    string
	fromCreate  func(C) (T, error)
	applyUpdate func(*T, U)
	// afterWrite runs after any successful mutation, e.g. to flush a
	// permission cache.
	afterWrite func(c *gin.Context)
}

func NewController[T any, C any, U any](
	svc *Service[T],
	logger *zap.Logger,
	resource string,
	fromCreate func(C) (T, error),
	applyUpdate func(*T, U),
) *Controller[T, C, U] {
	return &Controller[T, C, U]{
		svc:         svc,
		logger:      logger,
		resource:    resource,
		fromCreate:  fromCreate,
		applyUpdate: applyUpdate,
	}
}

func (ct *Controller[T, C, U]) WithAfterWrite(fn func(c *gin.Context)) *Controller[T, C, U] {
	ct.afterWrite = fn
	return ct
}

func (ct *Controller[T, C, U]) Register(rg *gin.RouterGroup) {
	rg.GET("", ct.list)
	rg.GET("/:id", ct.getByID)
	rg.POST("", ct.create)
	rg.PUT("/:id", ct.update)
	rg.DELETE("/:id", ct.remove)
}

// RegisterGuarded registers the same routes with a per-action permission
// middleware (view, create, edit, delete).
func (ct *Controller[T, C, U]) RegisterGuarded(rg *gin.RouterGroup, guard func(action string) gin.HandlerFunc) {
	rg.GET("", guard("view"), ct.list)
	rg.GET("/:id", guard("view"), ct.getByID)
	rg.POST("", guard("create"), ct.create)
	rg.PUT("/:id", guard("edit"), ct.update)
	rg.DELETE("/:id", guard("delete"), ct.remove)
}

func (ct *Controller[T, C, U]) list(c *gin.Context) {
	records, err := ct.svc.List(c.Request.Context())
	if err != nil {
		httpx.Error(c, ct.logger, err)
		return
	}
	httpx.OK(c, records)
}

func (ct *Controller[T, C, U]) getByID(c *gin.Context) {
	id, ok := httpx.ParseIDParam(c, "id")
	if !ok {
		return
	}
	record, err := ct.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		httpx.Error(c, ct.logger, err)
		return
	}
	httpx.OK(c, record)
}

func (ct *Controller[T, C, U]) create(c *gin.Context) {
	var req C
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err.Error())
		return
	}
	record, err := ct.fromCreate(req)
	if err != nil {
		httpx.Error(c, ct.logger, err)
		return
	}
	if err := ct.svc.Create(c.Request.Context(), &record); err != nil {
		httpx.Error(c, ct.logger, err)
		return
	}
	ct.fireAfterWrite(c)
	httpx.Created(c, record)
}

func (ct *Controller[T, C, U]) update(c *gin.Context) {
	id, ok := httpx.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req U
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err.Error())
		return
	}
	record, err := ct.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		httpx.Error(c, ct.logger, err)
		return
	}
	ct.applyUpdate(record, req)
	if err := ct.svc.Save(c.Request.Context(), record); err != nil {
		httpx.Error(c, ct.logger, err)
		return
	}
	ct.fireAfterWrite(c)
	httpx.OKMessage(c, ct.resource+" updated", record)
}

func (ct *Controller[T, C, U]) remove(c *gin.Context) {
	id, ok := httpx.ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := ct.svc.Delete(c.Request.Context(), id); err != nil {
		httpx.Error(c, ct.logger, err)
		return
	}
	ct.fireAfterWrite(c)
	httpx.OKMessage(c, ct.resource+" deleted", gin.H{"id": id})
}

func (ct *Controller[T, C, U]) fireAfterWrite(c *gin.Context) {
	if ct.afterWrite != nil {
		ct.afterWrite(c)
	}
}
