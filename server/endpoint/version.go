package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/whisperbot/version"
)

var startTime = time.Now()

// Version reports build information and uptime.
func Version() gin.HandlerFunc {
	info := version.Get()
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    info.Version,
			"git_commit": info.GitCommit,
			"build_time": info.BuildTime,
			"go_version": info.GoVersion,
			"is_release": info.IsRelease,
			"uptime":     time.Since(startTime).Round(time.Second).String(),
		})
	}
}
