package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareCountsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware())
	router.GET("/api/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/api/items/:id", "200"))
	for _, id := range []string{"1", "2"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/items/"+id, nil)
		router.ServeHTTP(w, req)
	}
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/api/items/:id", "200"))
	assert.Equal(t, before+2, after)
}

func TestBusinessCounters(t *testing.T) {
	before := testutil.ToFloat64(doctorRecommendations.WithLabelValues(OutcomeFallback))
	RecordRecommendation(OutcomeFallback)
	assert.Equal(t, before+1, testutil.ToFloat64(doctorRecommendations.WithLabelValues(OutcomeFallback)))

	RecordReferenceRows("doctors", 12)
	assert.Equal(t, 12.0, testutil.ToFloat64(referenceRows.WithLabelValues("doctors")))

	before = testutil.ToFloat64(diseasePredictions.WithLabelValues("ok"))
	RecordPrediction("ok")
	assert.Equal(t, before+1, testutil.ToFloat64(diseasePredictions.WithLabelValues("ok")))
}
