package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/nursultanq/gymapp/internal/stats"
)

func correlationRouter(capture *string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Correlation())
	router.GET("/", func(c *gin.Context) {
		*capture = CorrelationID(c)
		c.Status(http.StatusOK)
	})
	return router
}

func TestCorrelationGeneratesID(t *testing.T) {
	var seen string
	router := correlationRouter(&seen)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, seen)
	require.Equal(t, seen, rec.Header().Get(stats.CorrelationIDHeader))
}

func TestCorrelationReusesIncomingID(t *testing.T) {
	var seen string
	router := correlationRouter(&seen)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(stats.CorrelationIDHeader, "corr-from-caller")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, "corr-from-caller", seen)
	require.Equal(t, "corr-from-caller", rec.Header().Get(stats.CorrelationIDHeader))
}
