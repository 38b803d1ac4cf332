package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mimosaworkshops/testimonial-api/internal/intake"
	"github.com/mimosaworkshops/testimonial-api/internal/render"
	"github.com/mimosaworkshops/testimonial-api/internal/testimonial"
	"go.uber.org/zap"
)

var (
	errMissingStore   = errors.New("record store dependency required")
	errMissingManager = errors.New("intake manager dependency required")
)

// Dependencies lists the collaborators the HTTP surface is built on.
type Dependencies struct {
	Store  *testimonial.Store
	Intake *intake.Manager
	Logger *zap.Logger
}

// NewHTTPHandler assembles the versioned API router.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.Store == nil {
		return nil, errMissingStore
	}
	if deps.Intake == nil {
		return nil, errMissingManager
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	handler := &httpHandler{
		store:  deps.Store,
		intake: deps.Intake,
		logger: logger,
	}

	v1 := router.Group("/api/v1")
	v1.POST("/sessions", handler.handleSessionBegin)
	v1.GET("/sessions/:id", handler.handleSessionState)
	v1.POST("/sessions/:id/advance", handler.handleSessionAdvance)
	v1.POST("/sessions/:id/retreat", handler.handleSessionRetreat)
	v1.PATCH("/sessions/:id", handler.handleSessionMutate)
	v1.POST("/sessions/:id/attachments", handler.handleSessionAttach)
	v1.DELETE("/sessions/:id/screenshots/:index", handler.handleSessionRemoveScreenshot)
	v1.POST("/sessions/:id/generate", handler.handleSessionGenerate)
	v1.GET("/entries", handler.handleEntriesList)
	v1.GET("/entries/:id", handler.handleEntryGet)
	v1.DELETE("/entries/:id", handler.handleEntryDelete)
	v1.POST("/entries/:id/edit", handler.handleEntryEdit)
	v1.GET("/entries/:id/sections/:section", handler.handleEntrySection)

	return router, nil
}

func corsMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Content-Type"},
		MaxAge:       12 * time.Hour,
	})
}

type httpHandler struct {
	store  *testimonial.Store
	intake *intake.Manager
	logger *zap.Logger
}

type sessionStatePayload struct {
	SessionID  string       `json:"session_id"`
	Step       int          `json:"step"`
	Generating bool         `json:"generating"`
	Draft      intake.Draft `json:"draft"`
}

func (h *httpHandler) handleSessionBegin(c *gin.Context) {
	id, session, err := h.intake.Begin()
	if err != nil {
		h.logger.Error("failed to start intake session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session_start_failed"})
		return
	}
	c.JSON(http.StatusCreated, sessionStatePayload{
		SessionID: id,
		Step:      int(session.CurrentStep()),
		Draft:     session.Snapshot(),
	})
}

func (h *httpHandler) handleSessionState(c *gin.Context) {
	session, ok := h.lookupSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sessionStatePayload{
		SessionID:  c.Param("id"),
		Step:       int(session.CurrentStep()),
		Generating: session.Generating(),
		Draft:      session.Snapshot(),
	})
}

func (h *httpHandler) handleSessionAdvance(c *gin.Context) {
	session, ok := h.lookupSession(c)
	if !ok {
		return
	}
	step, err := session.Advance()
	if err != nil {
		h.rejectSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"step": int(step)})
}

func (h *httpHandler) handleSessionRetreat(c *gin.Context) {
	sessionID := c.Param("id")
	session, ok := h.lookupSession(c)
	if !ok {
		return
	}
	step, cancelled, err := session.Retreat()
	if err != nil {
		h.rejectSessionError(c, err)
		return
	}
	if cancelled {
		h.intake.Release(sessionID)
	}
	c.JSON(http.StatusOK, gin.H{"step": int(step), "cancelled": cancelled})
}

func (h *httpHandler) handleSessionMutate(c *gin.Context) {
	session, ok := h.lookupSession(c)
	if !ok {
		return
	}
	var patch intake.FieldPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	if err := session.Mutate(patch); err != nil {
		h.rejectSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"step": int(session.CurrentStep())})
}

type attachRequestPayload struct {
	Kind    string `json:"kind"`
	Content string `json:"content"`
}

func (h *httpHandler) handleSessionAttach(c *gin.Context) {
	session, ok := h.lookupSession(c)
	if !ok {
		return
	}
	var request attachRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil || strings.TrimSpace(request.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	accepted, err := session.AttachFile(intake.AttachmentKind(request.Kind), request.Content)
	if err != nil {
		if errors.Is(err, intake.ErrUnknownAttachmentKind) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_attachment_kind"})
			return
		}
		h.rejectSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accepted": accepted})
}

func (h *httpHandler) handleSessionRemoveScreenshot(c *gin.Context) {
	session, ok := h.lookupSession(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_index"})
		return
	}
	removed, err := session.RemoveScreenshot(index)
	if err != nil {
		h.rejectSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func (h *httpHandler) handleSessionGenerate(c *gin.Context) {
	sessionID := c.Param("id")
	session, ok := h.lookupSession(c)
	if !ok {
		return
	}
	entry, err := session.Finalize(c.Request.Context())
	if err != nil {
		if errors.Is(err, intake.ErrGenerationFailed) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "generation_failed"})
			return
		}
		h.rejectSessionError(c, err)
		return
	}
	h.intake.Release(sessionID)
	c.JSON(http.StatusOK, entry)
}

func (h *httpHandler) handleEntriesList(c *gin.Context) {
	entries, err := h.store.List()
	if err != nil {
		h.logger.Error("failed to list entries", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
		return
	}
	query := strings.ToLower(strings.TrimSpace(c.Query("q")))
	if query != "" {
		filtered := entries[:0]
		for _, entry := range entries {
			if strings.Contains(strings.ToLower(entry.ParticipantName), query) ||
				strings.Contains(strings.ToLower(entry.RoleTitle), query) {
				filtered = append(filtered, entry)
			}
		}
		entries = filtered
	}
	if entries == nil {
		entries = []testimonial.Entry{}
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (h *httpHandler) handleEntryGet(c *gin.Context) {
	entry, ok := h.lookupEntry(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *httpHandler) handleEntryDelete(c *gin.Context) {
	if err := h.store.DeleteByID(c.Param("id")); err != nil {
		h.logger.Error("failed to delete entry", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete_failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) handleEntryEdit(c *gin.Context) {
	entry, ok := h.lookupEntry(c)
	if !ok {
		return
	}
	id, session, err := h.intake.Reopen(entry)
	if err != nil {
		h.logger.Error("failed to reopen entry for editing", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session_start_failed"})
		return
	}
	c.JSON(http.StatusCreated, sessionStatePayload{
		SessionID: id,
		Step:      int(session.CurrentStep()),
		Draft:     session.Snapshot(),
	})
}

func (h *httpHandler) handleEntrySection(c *gin.Context) {
	entry, ok := h.lookupEntry(c)
	if !ok {
		return
	}
	section, err := render.ParseSection(c.Param("section"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_section"})
		return
	}
	text, err := render.SectionText(entry, section)
	if err != nil {
		if errors.Is(err, render.ErrNoOutputs) {
			c.JSON(http.StatusConflict, gin.H{"error": "entry_not_finalized"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_section"})
		return
	}
	c.String(http.StatusOK, text)
}

func (h *httpHandler) lookupSession(c *gin.Context) (*intake.Session, bool) {
	session, err := h.intake.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session_not_found"})
		return nil, false
	}
	return session, true
}

func (h *httpHandler) lookupEntry(c *gin.Context) (testimonial.Entry, bool) {
	entry, err := h.store.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, testimonial.ErrEntryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
			return testimonial.Entry{}, false
		}
		h.logger.Error("failed to load entry", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup_failed"})
		return testimonial.Entry{}, false
	}
	return entry, true
}

func (h *httpHandler) rejectSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, intake.ErrGenerationInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "generation_in_progress"})
	case errors.Is(err, intake.ErrSessionClosed):
		c.JSON(http.StatusGone, gin.H{"error": "session_closed"})
	case errors.Is(err, testimonial.ErrInvalidTone),
		errors.Is(err, testimonial.ErrInvalidLength),
		errors.Is(err, testimonial.ErrInvalidCTAStyle):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
	default:
		h.logger.Error("session operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}
