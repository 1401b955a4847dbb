// Package api exposes the prediction, advisory and recommendation pipeline
// over gin routes and maps its errors to HTTP responses.
package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Skufu/carepath/internal/advisory"
	"github.com/Skufu/carepath/internal/apperrors"
	"github.com/Skufu/carepath/internal/doctors"
	"github.com/Skufu/carepath/internal/service"
)

// Service is the pipeline the handlers translate to HTTP.
type Service interface {
	Predict(ctx context.Context, symptoms []string) (service.Prediction, error)
	Advisories(diseases []string) []advisory.Record
	RecommendDoctors(disease, location string) ([]doctors.Recommendation, error)
	Symptoms() []string
	Diseases() []string
	Locations() []string
}

const (
	msgInvalidPayload = "Invalid request payload"
	msgTooLarge       = "Request body too large"
)

type predictRequest struct {
	Symptoms []string `json:"symptoms"`
}

// advisoryRequest accepts both the legacy "top_diseases" key and "diseases".
type advisoryRequest struct {
	Diseases    []string `json:"diseases"`
	TopDiseases []string `json:"top_diseases"`
}

type recommendRequest struct {
	Disease  string `json:"disease"`
	Location string `json:"location"`
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the pipeline routes, under both the legacy and /api paths.
func (h *Handler) Register(r gin.IRouter) {
	r.POST("/predict_disease", h.predict)
	r.POST("/get_precaution_description", h.advisories)
	r.POST("/recommend", h.recommend)

	api := r.Group("/api")
	api.POST("/predict", h.predict)
	api.POST("/advisories", h.advisories)
	api.POST("/recommend", h.recommend)
	api.GET("/symptoms", h.symptoms)
	api.GET("/diseases", h.diseases)
	api.GET("/locations", h.locations)
}

func (h *Handler) predict(c *gin.Context) {
	var req predictRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	pred, err := h.svc.Predict(c.Request.Context(), req.Symptoms)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, pred)
}

func (h *Handler) advisories(c *gin.Context) {
	var req advisoryRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	diseases := req.Diseases
	if len(diseases) == 0 {
		diseases = req.TopDiseases
	}
	c.JSON(http.StatusOK, h.svc.Advisories(diseases))
}

func (h *Handler) recommend(c *gin.Context) {
	var req recommendRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	recs, err := h.svc.RecommendDoctors(req.Disease, req.Location)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (h *Handler) symptoms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"symptoms": h.svc.Symptoms()})
}

func (h *Handler) diseases(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"diseases": h.svc.Diseases()})
}

func (h *Handler) locations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"locations": h.svc.Locations()})
}

// bindOptionalJSON decodes the body into dst. An empty body, chunked or not,
// leaves dst zeroed so field validation reports the missing input.
func bindOptionalJSON(c *gin.Context, dst any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	err := c.ShouldBindJSON(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		_ = c.Error(apperrors.TooLarge(msgTooLarge))
		return false
	}
	_ = c.Error(apperrors.InvalidInput(msgInvalidPayload))
	return false
}
