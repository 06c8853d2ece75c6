package controllers_test

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/middleware"
)

// authAs injects an authenticated identity the way the auth middleware
// would, so routes can be exercised without minting tokens.
func authAs(userID uuid.UUID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserContextKey, userID)
		c.Set(middleware.RoleContextKey, role)
		c.Next()
	}
}
