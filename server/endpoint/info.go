package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/tashkeel/version"
)

var started = time.Now()

// InfoResponse is the /info body.
type InfoResponse struct {
	Service string       `json:"service"`
	Build   version.Info `json:"build"`
	Uptime  string       `json:"uptime"`
}

// Info reports the build and how long the process has been up.
func Info(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, InfoResponse{
			Service: serviceName,
			Build:   version.Get(),
			Uptime:  time.Since(started).Round(time.Second).String(),
		})
	}
}
