package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nursultanq/gymapp/pkg/response"
)

// Health returns a simple status payload useful for readiness checks. The
// database ping makes it a real readiness signal rather than a constant.
func Health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "ok"
		code := http.StatusOK

		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		response.Success(c, code, gin.H{"status": status})
	}
}
