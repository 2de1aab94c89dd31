// Package http exposes the translation pipeline over a small JSON API.
// Partial results are a success: remote degradations surface inside the
// response's warnings list, and only malformed requests get a 4xx.
package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lawglot/lawglot/internal/application/translate"
	"github.com/lawglot/lawglot/internal/domain/term"
	"github.com/lawglot/lawglot/internal/infrastructure/monitoring/logging"
	"github.com/lawglot/lawglot/pkg/errors"
)

// Translator is the pipeline surface the handlers need.
type Translator interface {
	Translate(ctx context.Context, text string, opts translate.Options) (*term.ResultBundle, error)
}

// TranslateRequest is the API request body.  The counts are optional and
// default when absent; a count that is present must sit inside its range,
// so an explicit zero is rejected rather than silently defaulted.
type TranslateRequest struct {
	Text            string `json:"text" binding:"required"`
	TopK            *int   `json:"topK"`
	DailyPerKeyword *int   `json:"dailyPerKeyword"`
	LegalPerDaily   *int   `json:"legalPerDaily"`
}

func (r TranslateRequest) validate() error {
	if err := checkRange("topK", r.TopK, translate.MaxTopK); err != nil {
		return err
	}
	if err := checkRange("dailyPerKeyword", r.DailyPerKeyword, translate.MaxDailyPerKeyword); err != nil {
		return err
	}
	return checkRange("legalPerDaily", r.LegalPerDaily, translate.MaxLegalPerDaily)
}

func checkRange(name string, v *int, max int) error {
	if v == nil {
		return nil
	}
	if *v < 1 || *v > max {
		return errors.Newf(errors.CodeInvalidParam, "%s must be between 1 and %d", name, max)
	}
	return nil
}

func intOrDefault(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	c.JSON(errors.HTTPStatus(code), ErrorResponse{
		Code:    code.String(),
		Message: err.Error(),
	})
}

// Handler serves the API routes.
type Handler struct {
	translator Translator
	indexLen   func() int
	logger     logging.Logger
}

// NewHandler wires the route handlers.  indexLen reports the loaded cache
// index size for the health endpoint and may be nil.
func NewHandler(translator Translator, indexLen func() int, logger logging.Logger) *Handler {
	return &Handler{translator: translator, indexLen: indexLen, logger: logger}
}

// Translate handles POST /api/v1/translate.
func (h *Handler) Translate(c *gin.Context) {
	var req TranslateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errors.Wrap(err, errors.CodeInvalidParam, "invalid request body"))
		return
	}
	if err := req.validate(); err != nil {
		writeError(c, err)
		return
	}

	result, err := h.translator.Translate(c.Request.Context(), req.Text, translate.Options{
		TopK:            intOrDefault(req.TopK),
		DailyPerKeyword: intOrDefault(req.DailyPerKeyword),
		LegalPerDaily:   intOrDefault(req.LegalPerDaily),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Health handles GET /healthz.
func (h *Handler) Health(c *gin.Context) {
	body := gin.H{"status": "ok"}
	if h.indexLen != nil {
		body["indexTerms"] = h.indexLen()
	}
	c.JSON(http.StatusOK, body)
}
