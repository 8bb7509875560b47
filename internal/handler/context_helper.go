package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dsicola/academic-core-api/internal/middleware"
	"github.com/dsicola/academic-core-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return page, size
}

func paginationMeta(page, size, total int) *models.Pagination {
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}
