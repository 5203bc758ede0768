package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/models"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/services"
)

// ResourceHandler exposes the generic CRUD surface over the four resource
// kinds. The kind arrives as a route parameter and is parsed into the closed
// enumeration before anything else happens.
type ResourceHandler struct {
	service *services.ResourceService
}

func NewResourceHandler(service *services.ResourceService) *ResourceHandler {
	return &ResourceHandler{service: service}
}

func parseKindParam(c *gin.Context) (models.Kind, bool) {
	kind, err := models.ParseKind(c.Param("kind"))
	if err != nil {
		respondError(c, err)
		return "", false
	}
	return kind, true
}

// List returns resources of a kind with optional parent/activity/name filters
func (h *ResourceHandler) List(c *gin.Context) {
	kind, ok := parseKindParam(c)
	if !ok {
		return
	}
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}

	var filter models.ListFilter

	if parentRef := c.Query("parent_id"); parentRef != "" {
		parentKind, hasParent := kind.ParentKind()
		if !hasParent {
			c.JSON(http.StatusBadRequest, gin.H{"error": "hotels have no parent"})
			return
		}
		parentID, err := h.service.ResolveRef(c.Request.Context(), parentKind, parentRef)
		if err != nil {
			respondError(c, err)
			return
		}
		filter.ParentID = &parentID
	}

	if active := c.Query("active"); active != "" {
		if value, err := strconv.ParseBool(active); err == nil {
			filter.Active = &value
		}
	}

	filter.Search = c.Query("search")

	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "100")); err == nil {
		if limit < 1 || limit > 500 {
			limit = 100
		}
		filter.Limit = limit
	}

	resources, err := h.service.List(c.Request.Context(), principal, kind, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resources, "count": len(resources)})
}

// GetByID retrieves a single resource by internal id or external code
func (h *ResourceHandler) GetByID(c *gin.Context) {
	kind, ok := parseKindParam(c)
	if !ok {
		return
	}
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}

	resource, err := h.service.Get(c.Request.Context(), principal, kind, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resource)
}

// Create creates a resource under its declared parent
func (h *ResourceHandler) Create(c *gin.Context) {
	kind, ok := parseKindParam(c)
	if !ok {
		return
	}
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}

	var req models.CreateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resource, err := h.service.Create(c.Request.Context(), principal, kind, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resource)
}

// Update applies a partial update to a resource
func (h *ResourceHandler) Update(c *gin.Context) {
	kind, ok := parseKindParam(c)
	if !ok {
		return
	}
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}

	var req models.UpdateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resource, err := h.service.Update(c.Request.Context(), principal, kind, c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resource)
}

// Move re-parents a folder within its bot
func (h *ResourceHandler) Move(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}

	var req models.MoveFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	folder, err := h.service.Move(c.Request.Context(), principal, c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, folder)
}

// Reorder reassigns sort orders for a sibling set
func (h *ResourceHandler) Reorder(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}

	var req models.ReorderFoldersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.Reorder(c.Request.Context(), principal, &req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "folders reordered successfully"})
}

// Delete soft deletes by default, or hard deletes with ?hard=true
func (h *ResourceHandler) Delete(c *gin.Context) {
	kind, ok := parseKindParam(c)
	if !ok {
		return
	}
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}

	hard, _ := strconv.ParseBool(c.DefaultQuery("hard", "false"))

	resource, err := h.service.Delete(c.Request.Context(), principal, kind, c.Param("id"), hard)
	if err != nil {
		respondError(c, err)
		return
	}

	if hard {
		c.JSON(http.StatusOK, gin.H{"message": string(kind) + " deleted successfully"})
		return
	}
	c.JSON(http.StatusOK, resource)
}

// Activate reverses a soft delete
func (h *ResourceHandler) Activate(c *gin.Context) {
	kind, ok := parseKindParam(c)
	if !ok {
		return
	}
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}

	resource, err := h.service.Activate(c.Request.Context(), principal, kind, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resource)
}
