// Package handler maps the REST surface onto the services: one gin route per
// verb and path, decoding the request, calling one service operation and
// translating its error into a status code.
package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"finreport/dto"
	"finreport/pkg/crud"

	"github.com/gin-gonic/gin"
)

// CRUD is the service surface of a resource with response shape D,
// create-input C, update-input U and where-input W.
type CRUD[D, C, U any, W dto.Filter] interface {
	Create(ctx context.Context, in C) (D, error)
	List(ctx context.Context, args dto.FindManyArgs[W]) ([]D, error)
	Meta(ctx context.Context, where W) (dto.Metadata, error)
	Get(ctx context.Context, id string) (D, error)
	Update(ctx context.Context, id string, in U) error
	Delete(ctx context.Context, id string) error
}

// Resource serves the six routes of one resource group.
type Resource[D, C, U any, W dto.Filter] struct {
	svc CRUD[D, C, U, W]
	id  func(D) string
}

func NewResource[D, C, U any, W dto.Filter](svc CRUD[D, C, U, W], id func(D) string) *Resource[D, C, U, W] {
	return &Resource[D, C, U, W]{svc: svc, id: id}
}

// Register mounts the resource under g and returns its group so relation
// routes can be added next to it. guards run before create, update and
// delete only.
func (h *Resource[D, C, U, W]) Register(g *gin.RouterGroup, name string, guards ...gin.HandlerFunc) *gin.RouterGroup {
	rg := g.Group("/" + name)
	rg.POST("", guarded(guards, h.create)...)
	rg.GET("", h.list)
	rg.POST("/meta", h.meta)
	rg.GET("/:id", h.get)
	rg.PATCH("/:id", guarded(guards, h.update)...)
	rg.DELETE("/:id", guarded(guards, h.delete)...)
	return rg
}

func guarded(guards []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	chain := make([]gin.HandlerFunc, 0, len(guards)+1)
	chain = append(chain, guards...)
	return append(chain, h)
}

func (h *Resource[D, C, U, W]) create(c *gin.Context) {
	var in C
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	out, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Location", c.FullPath()+"/"+url.PathEscape(h.id(out)))
	c.JSON(http.StatusCreated, out)
}

func (h *Resource[D, C, U, W]) list(c *gin.Context) {
	args, err := bindFindMany[W](c)
	if err != nil {
		badRequest(c, err)
		return
	}
	out, err := h.svc.List(c.Request.Context(), args)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Resource[D, C, U, W]) meta(c *gin.Context) {
	var where W
	if err := c.ShouldBindQuery(&where); err != nil {
		badRequest(c, err)
		return
	}
	out, err := h.svc.Meta(c.Request.Context(), where)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Resource[D, C, U, W]) get(c *gin.Context) {
	out, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// update accepts an empty body as an update that changes nothing.
func (h *Resource[D, C, U, W]) update(c *gin.Context) {
	var in U
	if err := c.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}
	if err := h.svc.Update(c.Request.Context(), c.Param("id"), in); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Resource[D, C, U, W]) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// bindFindMany reads the where-input, skip, take and sortBy[field]=dir from
// the query string. A bare sortBy=field is rejected rather than ignored.
func bindFindMany[W dto.Filter](c *gin.Context) (dto.FindManyArgs[W], error) {
	var args dto.FindManyArgs[W]
	if _, ok := c.GetQuery("sortBy"); ok {
		return args, fmt.Errorf("%w: sortBy must be sent as sortBy[field]=asc|desc", crud.ErrInvalidQuery)
	}
	if err := c.ShouldBindQuery(&args.Where); err != nil {
		return args, err
	}
	var page struct {
		Skip *int `form:"skip"`
		Take *int `form:"take"`
	}
	if err := c.ShouldBindQuery(&page); err != nil {
		return args, err
	}
	args.Skip, args.Take = page.Skip, page.Take
	if sortBy := c.QueryMap("sortBy"); len(sortBy) > 0 {
		args.SortBy = sortBy
	}
	return args, nil
}
