package helpers

import (
	model "memorabilia-market/internal/models"

	"github.com/gin-gonic/gin"
)

const actorKey = "market.actor"

// SetCurrentUser stores the authenticated caller on the request context
func SetCurrentUser(c *gin.Context, actor model.Actor) {
	c.Set(actorKey, actor)
}

// CurrentUser returns the authenticated caller, if any
func CurrentUser(c *gin.Context) (model.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return model.Actor{}, false
	}
	actor, ok := v.(model.Actor)
	if !ok || actor.UserID <= 0 {
		return model.Actor{}, false
	}
	return actor, true
}
