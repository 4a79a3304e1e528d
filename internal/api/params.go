package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ParamID parses a positive integer path parameter and writes a 400 response
// when it is missing or malformed.
func ParamID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid " + name})
		return 0, false
	}
	return id, true
}
