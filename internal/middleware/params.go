package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// ProjectParam is the route parameter holding the project ID.
const ProjectParam = "projectId"

// ParseIDParam parses a positive numeric route parameter.
func ParseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
