package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/dabs-bot/internal/common"
	"serotonyl.ru/dabs-bot/internal/features/dabs"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

type handlers struct {
	economy Economy
	names   Names
}

type entryResponse struct {
	Rank   int    `json:"rank"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Value  int64  `json:"value"`
}

type leaderboardResponse struct {
	SortBy  dabs.SortKey    `json:"sortBy"`
	Type    dabs.Board      `json:"type"`
	Entries []entryResponse `json:"entries"`
}

type userResponse struct {
	UserID string       `json:"userId"`
	Name   string       `json:"name"`
	Mode   string       `json:"mode"`
	Record *dabs.Record `json:"record"`
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GET /api/leaderboard?sort-by=dabs&type=positive&limit=10
func (h *handlers) leaderboard(c *gin.Context) {
	key, err := dabs.ParseSortKey(c.Query("sort-by"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": common.RejectionReason(err)})
		return
	}
	board, err := dabs.ParseBoard(c.Query("type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": common.RejectionReason(err)})
		return
	}
	limit := defaultLimit
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit should be a number from 1 to 100"})
			return
		}
	}

	entries, err := h.economy.Leaderboard(c.Request.Context(), key, board)
	if err != nil {
		log.WithError(err).Error("Ошибка таблицы лидеров (HTTP)")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	resp := leaderboardResponse{SortBy: key, Type: board, Entries: []entryResponse{}}
	for i, e := range entries {
		if i >= limit {
			break
		}
		resp.Entries = append(resp.Entries, entryResponse{
			Rank:   i + 1,
			UserID: e.UserID,
			Name:   h.name(c, e.UserID),
			Value:  e.Value,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// GET /api/users/:id
func (h *handlers) user(c *gin.Context) {
	id := c.Param("id")
	if _, err := strconv.ParseInt(id, 10, 64); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id should be a Telegram user id"})
		return
	}

	res, err := h.economy.Check(c.Request.Context(), id, id, true)
	if err != nil {
		log.WithError(err).WithField("user_id", id).Error("Ошибка чтения записи (HTTP)")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, userResponse{
		UserID: id,
		Name:   h.name(c, id),
		Mode:   res.Record.Mode(),
		Record: res.Record,
	})
}

func (h *handlers) name(c *gin.Context, userID string) string {
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return userID
	}
	return h.names.DisplayName(c.Request.Context(), id)
}
