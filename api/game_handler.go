package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ohtopup/models"
	"ohtopup/service"
)

// GameHandler serves the player-facing dice endpoints.
type GameHandler struct {
	gameService  service.GameService
	statsService service.StatsService
}

// NewGameHandler creates a new game handler
func NewGameHandler(gameService service.GameService, statsService service.StatsService) *GameHandler {
	return &GameHandler{
		gameService:  gameService,
		statsService: statsService,
	}
}

// PlayDice handles POST /api/games/dice/play
func (h *GameHandler) PlayDice(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req models.PlayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	result, err := h.gameService.Play(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result":  renderRecord(result.Record, isAdmin(c)),
		"balance": result.NewBalance,
	})
}

// GetHistory handles GET /api/games/dice/history
func (h *GameHandler) GetHistory(c *gin.Context) {
	userID := c.GetInt64("user_id")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	records, total, err := h.statsService.GetHistory(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	admin := isAdmin(c)
	response := make([]gin.H, 0, len(records))
	for _, record := range records {
		response = append(response, renderRecord(record, admin))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"games":   response,
		"total":   total,
	})
}

// GetStats handles GET /api/games/dice/stats
func (h *GameHandler) GetStats(c *gin.Context) {
	userID := c.GetInt64("user_id")

	stats, err := h.statsService.GetUserStats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   stats,
	})
}

// renderRecord shapes a play record for the caller. Manipulation details are
// only visible to admins.
func renderRecord(record *models.GameRecord, admin bool) gin.H {
	out := gin.H{
		"id":                 record.ID,
		"bet_amount":         record.BetAmount,
		"odds":               record.Odds,
		"difficulty":         record.Difficulty,
		"dice_count":         record.DiceCount,
		"dice":               record.Dice,
		"target_combination": record.TargetCombination,
		"is_win":             record.IsWin,
		"winnings":           record.Winnings,
		"payout":             record.Payout,
		"game_result":        record.GameResult,
		"expected_value":     record.ExpectedValue,
		"house_edge":         record.HouseEdge,
		"played_at":          record.PlayedAt,
	}

	if admin {
		out["manipulation_applied"] = record.ManipulationApplied
		out["manipulation_type"] = record.ManipulationType
	}

	return out
}

// respondError maps the service error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	var policyErr *service.PolicyError
	var notFoundErr *service.NotFoundError
	var balanceErr *service.InsufficientBalanceError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message, "field": validationErr.Field})
	case errors.As(err, &balanceErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": balanceErr.Error()})
	case errors.As(err, &policyErr):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": policyErr.Message, "policy": policyErr.Policy})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
