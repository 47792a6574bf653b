// Package api serves the diacritization engine over HTTP under /api/v1.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/tashkeel/arabic"
	apperrors "github.com/kbukum/tashkeel/errors"
	"github.com/kbukum/tashkeel/logger"
	"github.com/kbukum/tashkeel/server"
	"github.com/kbukum/tashkeel/tashkeel"
	"github.com/kbukum/tashkeel/validation"
)

// EngineSource yields the running engine, or nil before it has started.
// *tashkeel.Component implements it.
type EngineSource interface {
	Engine() *tashkeel.Engine
}

// Handler holds the API handlers.
type Handler struct {
	engines EngineSource
	cfg     server.Config
	log     *logger.Logger
}

// Register mounts the API routes on s.
func Register(s *server.Server, engines EngineSource, log *logger.Logger) *Handler {
	h := &Handler{engines: engines, cfg: s.Config(), log: log.WithComponent("api")}
	v1 := s.GinEngine().Group("/api/v1")
	v1.POST("/diacritize", h.diacritize)
	v1.POST("/diacritize/batch", h.diacritizeBatch)
	v1.POST("/diacritize/stream", h.diacritizeStream)
	v1.POST("/strip", h.strip)
	v1.GET("/backend", h.backend)
	return h
}

func (h *Handler) engine(c *gin.Context) (*tashkeel.Engine, bool) {
	e := h.engines.Engine()
	if e == nil {
		server.RespondWithError(c, apperrors.ServiceUnavailable("diacritization engine"))
		return nil, false
	}
	return e, true
}

// bind decodes and validates the JSON body into req.
func (h *Handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			server.RespondWithError(c, err)
			return false
		}
		server.RespondWithError(c, apperrors.InvalidInput("", "request body must be a JSON object"))
		return false
	}
	if err := validation.Validate(req); err != nil {
		server.RespondWithError(c, err)
		return false
	}
	return true
}

func (h *Handler) diacritize(c *gin.Context) {
	var req DiacritizeRequest
	if !h.bind(c, &req) {
		return
	}
	if err := validation.New().MaxRunes("text", req.Text, h.cfg.MaxTextLength).Validate(); err != nil {
		server.RespondWithError(c, err)
		return
	}
	e, ok := h.engine(c)
	if !ok {
		return
	}

	resp, err := diacritizeOne(c, e, req.Text, req.FallbackOnError)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, resp)
}

func diacritizeOne(c *gin.Context, e *tashkeel.Engine, text string, fallbackOnError bool) (*DiacritizeResponse, error) {
	res, err := e.Diacritize(c.Request.Context(), text)
	if err == nil {
		return newDiacritizeResponse(res, false), nil
	}
	if !fallbackOnError || !isFailure(err) {
		return nil, err
	}
	return newDiacritizeResponse(e.Fallback(text), true), nil
}

func (h *Handler) diacritizeBatch(c *gin.Context) {
	req, ok := h.bindBatch(c)
	if !ok {
		return
	}
	e, ok := h.engine(c)
	if !ok {
		return
	}

	outcomes := e.DiacritizeBatch(c.Request.Context(), req.Texts, h.cfg.BatchConcurrency)
	resp := BatchResponse{Items: make([]BatchItem, len(outcomes))}
	for i, o := range outcomes {
		resp.Items[i] = batchItem(e, o, req.FallbackOnError)
		if resp.Items[i].Error != nil {
			resp.Failed++
		}
	}
	server.RespondOK(c, resp)
}

func (h *Handler) bindBatch(c *gin.Context) (BatchRequest, bool) {
	var req BatchRequest
	if !h.bind(c, &req) {
		return req, false
	}
	v := validation.New().Range("texts", len(req.Texts), 1, h.cfg.MaxBatchSize)
	for i, text := range req.Texts {
		v.MaxRunes(fieldIndex("texts", i), text, h.cfg.MaxTextLength)
	}
	if err := v.Validate(); err != nil {
		server.RespondWithError(c, err)
		return req, false
	}
	return req, true
}

func batchItem(e *tashkeel.Engine, o tashkeel.Outcome, fallbackOnError bool) BatchItem {
	item := BatchItem{Input: o.Input}
	switch {
	case o.Err == nil:
		item.Result = newDiacritizeResponse(o.Result, false)
	case fallbackOnError && isFailure(o.Err):
		item.Result = newDiacritizeResponse(e.Fallback(o.Input), true)
	default:
		body := apperrors.From(o.Err).ToResponse().Error
		item.Error = &body
	}
	return item
}

func (h *Handler) strip(c *gin.Context) {
	var req StripRequest
	if !h.bind(c, &req) {
		return
	}
	server.RespondOK(c, StripResponse{Text: arabic.Strip(req.Text)})
}

func (h *Handler) backend(c *gin.Context) {
	e, ok := h.engine(c)
	if !ok {
		return
	}
	server.RespondOK(c, BackendResponse{Active: e.Active(), Candidates: e.Candidates()})
}

func isFailure(err error) bool {
	_, ok := tashkeel.AsFailure(err)
	return ok
}
