package api

import (
	"github.com/gin-gonic/gin"
)

// RegisterOverrideRoutes exposes the two holiday overrides the wall button
// also drives. The freezer disable is one-shot and clears once consumed;
// the security deactivation is a toggle.
func RegisterOverrideRoutes(r *gin.Engine, deps Dependencies) {
	overrides := r.Group("/overrides")
	{
		overrides.POST("/freezer/disable", func(c *gin.Context) {
			if deps.Freezer == nil {
				c.JSON(503, gin.H{"error": "freezer machine not running"})
				return
			}
			deps.Freezer.RequestDisable()
			c.JSON(200, gin.H{"disabled_requested": true})
		})

		overrides.POST("/security/deactivate", func(c *gin.Context) {
			if deps.Security == nil {
				c.JSON(503, gin.H{"error": "security machine not running"})
				return
			}
			c.JSON(200, gin.H{"deactivated": deps.Security.ToggleDeactivated()})
		})
	}
}
