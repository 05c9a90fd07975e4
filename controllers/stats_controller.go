package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/yatube/store"
	"github.com/cppla/yatube/utils"
)

// StatsController provides site statistics such as entity counts.
type StatsController struct {
	store *store.Store
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(s *store.Store) *StatsController {
	return &StatsController{store: s}
}

// GetStats returns the number of users, groups, posts, comments, follows and likes.
func (s *StatsController) GetStats(ctx *gin.Context) {
	counts, err := s.store.Counts(ctx.Request.Context())
	if err != nil {
		respondStoreError(ctx, err, "stats")
		return
	}
	utils.Success(ctx, counts)
}
