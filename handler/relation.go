package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"finreport/dto"

	"github.com/gin-gonic/gin"
)

// Relation is the service surface of a one-to-many relation whose children
// have response shape D and where-input W.
type Relation[D any, W dto.Filter] interface {
	Find(ctx context.Context, parentID string, args dto.FindManyArgs[W]) ([]D, error)
	Connect(ctx context.Context, parentID string, ids []string) error
	Disconnect(ctx context.Context, parentID string, ids []string) error
	Replace(ctx context.Context, parentID string, ids []string) error
}

// RegisterRelation mounts GET, POST, DELETE and PATCH on /:id/<name> of rg.
func RegisterRelation[D any, W dto.Filter](rg *gin.RouterGroup, name string, svc Relation[D, W]) {
	path := "/:id/" + name
	rg.GET(path, func(c *gin.Context) {
		args, err := bindFindMany[W](c)
		if err != nil {
			badRequest(c, err)
			return
		}
		out, err := svc.Find(c.Request.Context(), c.Param("id"), args)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	})
	rg.POST(path, relationWrite(svc.Connect))
	rg.DELETE(path, relationWrite(svc.Disconnect))
	rg.PATCH(path, relationWrite(svc.Replace))
}

func relationWrite(op func(ctx context.Context, parentID string, ids []string) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		ids, err := bindIDs(c)
		if err != nil {
			badRequest(c, err)
			return
		}
		if err := op(c.Request.Context(), c.Param("id"), ids); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// bindIDs reads the child id list from the JSON body, falling back to the
// repeated id query parameter when the body is empty.
func bindIDs(c *gin.Context) ([]string, error) {
	var ids dto.IDList
	err := c.ShouldBindJSON(&ids)
	if errors.Is(err, io.EOF) {
		return dto.IDList(c.QueryArray("id")).Strings(), nil
	}
	if err != nil {
		return nil, err
	}
	return ids.Strings(), nil
}

// RegisterParent mounts GET /:id/<name> answering the parent of a child.
func RegisterParent[D any](rg *gin.RouterGroup, name string, lookup func(ctx context.Context, id string) (D, error)) {
	rg.GET("/:id/"+name, func(c *gin.Context) {
		out, err := lookup(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	})
}
