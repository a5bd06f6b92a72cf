package handler

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"crm-service/internal/adapter/gin/response"
)

// parseID reads the :id path parameter. It writes a 400 and returns false when
// the value is not a UUID.
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid_id", "id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

// optionalInt reads an integer query parameter, returning nil when absent.
func optionalInt(c *gin.Context, key string) (*int, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return nil, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return &v, nil
}

// pageParams reads the optional page and size query parameters.
func pageParams(c *gin.Context) (page, size *int, ok bool) {
	var err error
	if page, err = optionalInt(c, "page"); err != nil {
		response.BadRequest(c, "validation_error", err.Error())
		return nil, nil, false
	}
	if size, err = optionalInt(c, "size"); err != nil {
		response.BadRequest(c, "validation_error", err.Error())
		return nil, nil, false
	}
	return page, size, true
}
