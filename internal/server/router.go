package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ceramicflow/internal/domain/auth"
	"ceramicflow/internal/domain/booking"
	"ceramicflow/internal/domain/notification"
	"ceramicflow/internal/middleware"
	"ceramicflow/internal/pkg/response"
)

type Deps struct {
	Gate          auth.Gate
	Auth          *auth.Handler
	Booking       *booking.Handler
	Notifications *notification.Handler
	WS            *notification.WSHandler
	CORSOrigins   []string
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorLogger())
	r.Use(middleware.CORS(d.CORSOrigins))

	r.GET("/healthz", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	d.WS.RegisterRoutes(r)

	v1 := r.Group("/api/v1")
	{
		d.Auth.RegisterPublicRoutes(v1)
		d.Booking.RegisterPublicRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(d.Gate))
		{
			d.Auth.RegisterProtectedRoutes(protected)
			d.Booking.RegisterProtectedRoutes(protected)
			d.Notifications.RegisterProtectedRoutes(protected)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "route not found")
	})

	return r
}
