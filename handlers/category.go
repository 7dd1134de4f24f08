package handlers

import (
	"net/http"

	"trendscope-backend/activity"
	"trendscope-backend/cache"
	"trendscope-backend/dtos"
	"trendscope-backend/models"
	"trendscope-backend/services"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	Service  *services.CategoryService
	Cache    *cache.TreeCache
	Activity *activity.Recorder
}

func (h *CategoryHandler) tree(c *gin.Context) ([]models.Category, error) {
	ctx := c.Request.Context()
	if tree, ok := h.Cache.Get(ctx); ok {
		return tree, nil
	}
	tree, err := h.Service.Tree(ctx)
	if err != nil {
		return nil, err
	}
	h.Cache.Set(ctx, tree)
	return tree, nil
}

// respondTree answers a category mutation with the refreshed tree.
func (h *CategoryHandler) respondTree(c *gin.Context, status int, body gin.H) {
	h.Cache.Invalidate(c.Request.Context())
	tree, err := h.tree(c)
	if err != nil {
		respondError(c, err, "", "Failed to fetch categories")
		return
	}
	body["categories"] = tree
	c.JSON(status, body)
}

func (h *CategoryHandler) GetCategories(c *gin.Context) {
	tree, err := h.tree(c)
	if err != nil {
		respondError(c, err, "", "Failed to fetch categories")
		return
	}
	c.JSON(http.StatusOK, tree)
}

func (h *CategoryHandler) GetCategory(c *gin.Context) {
	category, err := h.Service.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err, "Category not found", "Failed to fetch category")
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req dtos.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	category, err := h.Service.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "", "Failed to create category")
		return
	}

	h.Activity.Log(currentUserID(c), "create", "category", category.ID.String(), category.Slug)
	h.respondTree(c, http.StatusCreated, gin.H{"category": category})
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseID(c, c.Query("id"))
	if !ok {
		return
	}

	var req dtos.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	category, err := h.Service.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "Category not found", "Failed to update category")
		return
	}

	h.Activity.Log(currentUserID(c), "update", "category", category.ID.String(), category.Slug)
	h.respondTree(c, http.StatusOK, gin.H{"category": category})
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseID(c, c.Query("id"))
	if !ok {
		return
	}

	if err := h.Service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "Category not found", "Failed to delete category")
		return
	}

	h.Activity.Log(currentUserID(c), "delete", "category", id.String(), "")
	h.respondTree(c, http.StatusOK, gin.H{"message": "Category deleted successfully"})
}
