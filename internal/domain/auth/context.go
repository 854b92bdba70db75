package auth

import "github.com/gin-gonic/gin"

const identityKey = "identity"

// SetIdentity stores the resolved caller on the request context.
func SetIdentity(c *gin.Context, id Identity) {
	c.Set(identityKey, id)
	c.Set("user_id", id.ID)
}

func IdentityFrom(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}
