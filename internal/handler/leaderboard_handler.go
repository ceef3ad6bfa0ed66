package handler

import (
	"net/http"

	"taskpoints-service/internal/service"
	"taskpoints-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// LeaderboardHandler exposes company standings, the podium and per-user rank
type LeaderboardHandler struct {
	standings *service.LeaderboardService
}

func NewLeaderboardHandler(standings *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{standings: standings}
}

// Standings returns the full company leaderboard
func (h *LeaderboardHandler) Standings(c echo.Context) error {
	log := logger.FromContext(c)

	companyID, _ := c.Get("company_id").(string)
	standings, err := h.standings.Standings(c.Request().Context(), companyID)
	if err != nil {
		log.Error("Standings lookup failed", zap.String("company_id", companyID), zap.Error(err))
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"standings": standings})
}

// Podium returns the top three
func (h *LeaderboardHandler) Podium(c echo.Context) error {
	log := logger.FromContext(c)

	companyID, _ := c.Get("company_id").(string)
	podium, err := h.standings.Podium(c.Request().Context(), companyID)
	if err != nil {
		log.Error("Podium lookup failed", zap.String("company_id", companyID), zap.Error(err))
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"podium": podium})
}

// RankOf returns the caller's own standing
func (h *LeaderboardHandler) RankOf(c echo.Context) error {
	log := logger.FromContext(c)

	companyID, _ := c.Get("company_id").(string)
	uid, _ := c.Get("uid").(string)

	standing, err := h.standings.RankOf(c.Request().Context(), companyID, uid)
	if err != nil {
		log.Error("Rank lookup failed", zap.String("uid", uid), zap.Error(err))
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, standing)
}
