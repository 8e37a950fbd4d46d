package server

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"munchkin-tracker/internal/constants"
	"munchkin-tracker/internal/domain"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"
)

type passcodeRequest struct {
	Passcode string `json:"passcode"`
}

func (s *Server) login(c *gin.Context) {
	var req passcodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"admin": req.Passcode == s.cfg.AdminPasscode})
}

func (s *Server) listRoster(c *gin.Context) {
	names, err := s.rosterSvc.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"names": names})
}

func (s *Server) addRosterName(c *gin.Context) {
	var req struct {
		Name     string `json:"name"`
		Passcode string `json:"passcode"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := s.rosterSvc.Add(c.Request.Context(), req.Name, req.Passcode); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (s *Server) removeRosterName(c *gin.Context) {
	var req passcodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := s.rosterSvc.Remove(c.Request.Context(), c.Param("name"), req.Passcode); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type playerView struct {
	Name   string `json:"name"`
	Levels []int  `json:"levels"`
	Total  int    `json:"total"`
}

func (s *Server) sessionSnapshot(c *gin.Context) {
	sess, winners := s.sessionSvc.Snapshot()

	players := make([]playerView, 0, len(sess.Players))
	for _, name := range sess.PlayerNames() {
		p := sess.Players[name]
		players = append(players, playerView{Name: p.Name, Levels: p.Levels, Total: p.Total()})
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      sess.Status,
		"targetScore": sess.TargetScore,
		"rounds":      sess.RoundCount(),
		"players":     players,
		"winners":     winners,
	})
}

func (s *Server) sessionQR(c *gin.Context) {
	png, err := qrcode.Encode(s.cfg.PublicURL, qrcode.Medium, constants.QRCodeSize)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (s *Server) join(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := s.sessionSvc.Join(c.Request.Context(), req.Name); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) leave(c *gin.Context) {
	var req struct {
		Name     string `json:"name"`
		Passcode string `json:"passcode"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := s.sessionSvc.Leave(c.Request.Context(), req.Name, req.Passcode); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) start(c *gin.Context) {
	var req passcodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := s.sessionSvc.Start(c.Request.Context(), req.Passcode); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) level(c *gin.Context) {
	var req struct {
		Name     string `json:"name"`
		Round    int    `json:"round"`
		Delta    *int   `json:"delta"`
		Value    *int   `json:"value"`
		Passcode string `json:"passcode"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var err error
	switch {
	case req.Value != nil:
		err = s.sessionSvc.SetLevel(c.Request.Context(), req.Name, req.Round, *req.Value, req.Passcode)
	case req.Delta != nil:
		err = s.sessionSvc.AdjustLevel(c.Request.Context(), req.Name, req.Round, *req.Delta, req.Passcode)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "either delta or value is required"})
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) addRound(c *gin.Context) {
	var req passcodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := s.sessionSvc.AddRound(c.Request.Context(), req.Passcode); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) setTarget(c *gin.Context) {
	var req struct {
		Value    int    `json:"value"`
		Passcode string `json:"passcode"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := s.sessionSvc.SetTargetScore(c.Request.Context(), req.Value, req.Passcode); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) end(c *gin.Context) {
	var req struct {
		Winners  []string `json:"winners"`
		Passcode string   `json:"passcode"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	id, err := s.sessionSvc.End(c.Request.Context(), req.Winners, req.Passcode)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"historyId": id})
}

type historyView struct {
	ID           string           `json:"id"`
	Date         string           `json:"date"`
	PlayedAt     time.Time        `json:"playedAt"`
	Participants string           `json:"participants"`
	Winner       string           `json:"winner"`
	Details      map[string][]int `json:"details,omitempty"`
	FinalTarget  int              `json:"finalTarget,omitempty"`
	IsArchive    bool             `json:"isArchive,omitempty"`
	MatchesCount map[string]int   `json:"matchesCount,omitempty"`
}

func (s *Server) listHistory(c *gin.Context) {
	limit := constants.HistoryDefaultLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > constants.HistoryMaxLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	entries, err := s.historySvc.List(c.Request.Context(), limit)
	if err != nil {
		s.fail(c, err)
		return
	}

	views := make([]historyView, len(entries))
	for i, e := range entries {
		views[i] = historyView{
			ID:           e.ID,
			Date:         e.Date,
			PlayedAt:     e.PlayedAt,
			Participants: e.Participants,
			Winner:       e.Winner,
			Details:      e.Details,
			FinalTarget:  e.FinalTarget,
			IsArchive:    e.IsArchive,
			MatchesCount: e.MatchesCount,
		}
	}
	c.JSON(http.StatusOK, gin.H{"entries": views})
}

func (s *Server) importArchive(c *gin.Context) {
	var req struct {
		Date         string         `json:"date"`
		Participants string         `json:"participants"`
		Winner       string         `json:"winner"`
		MatchesCount map[string]int `json:"matchesCount"`
		Passcode     string         `json:"passcode"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	entry := domain.HistoryEntry{
		Date:         req.Date,
		PlayedAt:     time.Now(),
		Participants: req.Participants,
		Winner:       req.Winner,
		MatchesCount: req.MatchesCount,
	}
	id, err := s.historySvc.ImportArchive(c.Request.Context(), entry, req.Passcode)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (s *Server) deleteHistory(c *gin.Context) {
	var req passcodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := s.historySvc.Delete(c.Request.Context(), c.Param("id"), req.Passcode); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) statsOverview(c *gin.Context) {
	overview, err := s.statsSvc.Overview(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}

	table := make([]gin.H, len(overview.Table))
	for i, row := range overview.Table {
		table[i] = gin.H{"name": row.Name, "matches": row.Matches, "wins": row.Wins, "rate": row.Rate}
	}

	c.JSON(http.StatusOK, gin.H{
		"table": table,
		"podium": gin.H{
			"matches": leaderView(overview.Podium.Matches),
			"wins":    leaderView(overview.Podium.Wins),
			"rate":    leaderView(overview.Podium.Rate),
		},
	})
}

func leaderView(leader domain.Leader) gin.H {
	return gin.H{"names": leader.Names, "value": leader.Value}
}

func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrBadPasscode):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrUnknownPlayer), errors.Is(err, sql.ErrNoRows):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateName), errors.Is(err, domain.ErrSessionActive):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrEmptyName),
		errors.Is(err, domain.ErrSessionIdle),
		errors.Is(err, domain.ErrEmptyLobby),
		errors.Is(err, domain.ErrBadTargetScore),
		errors.Is(err, domain.ErrBadRound):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
