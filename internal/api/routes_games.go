package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/wordlebot/wordlebot/internal/db"
)

const (
	defaultListLimit = 20
	maxListLimit     = 500
)

// handleListGames returns the most recent games.
func (s *Server) handleListGames(c *gin.Context) {
	limit := defaultListLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxListLimit)
	}

	games, err := s.history.ListGames(limit)
	if err != nil {
		log.Error().Err(err).Msg("failed to list games")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list games"})
		return
	}
	if games == nil {
		games = []db.GameRecord{}
	}

	c.JSON(http.StatusOK, gin.H{
		"games": games,
		"count": len(games),
	})
}

// handleGetGame returns one game with its guesses.
func (s *Server) handleGetGame(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid game id"})
		return
	}

	game, err := s.history.GetGame(id)
	if errors.Is(err, db.ErrGameNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Int64("game_id", id).Msg("failed to load game")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load game"})
		return
	}

	c.JSON(http.StatusOK, game)
}

// handleStats returns aggregate statistics.
func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.history.Stats()
	if err != nil {
		log.Error().Err(err).Msg("failed to compute stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
