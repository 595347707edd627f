package apiv1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/beam-cloud/mailtriage/pkg/common"
)

type HealthGroup struct {
	redisClient *common.RedisClient
	routerGroup *echo.Group
}

// NewHealthGroup registers the health check. rdb may be nil when sessions are
// kept in memory.
func NewHealthGroup(g *echo.Group, rdb *common.RedisClient) *HealthGroup {
	group := &HealthGroup{routerGroup: g, redisClient: rdb}

	g.GET("", group.HealthCheck)

	return group
}

func (h *HealthGroup) HealthCheck(c echo.Context) error {
	if h.redisClient != nil {
		err := h.redisClient.Ping(c.Request().Context()).Err()
		if err != nil {
			log.Error().Err(err).Msg("health check failed")
			return ErrorResponse(c, http.StatusInternalServerError, "redis unreachable: "+err.Error())
		}
	}

	return SuccessResponse(c, map[string]string{
		"status": "ok",
	})
}
