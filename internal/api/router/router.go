package router

import (
	"github.com/wb-go/wbf/ginext"

	"github.com/aliskhannn/push-notifier/internal/api/handlers/notification"
	"github.com/aliskhannn/push-notifier/internal/api/handlers/subscription"
	"github.com/aliskhannn/push-notifier/internal/middlewares"
)

func New(
	notifications *notification.Handler,
	subscriptions *subscription.Handler,
	allowedOrigins ...string,
) *ginext.Engine {
	e := ginext.New()
	e.Use(middlewares.CORSMiddleware(allowedOrigins...))
	e.Use(ginext.Logger())
	e.Use(ginext.Recovery())

	e.POST("/subscribe", subscriptions.Subscribe)
	e.POST("/unsubscribe", subscriptions.Unsubscribe)
	e.POST("/cleanup-subscriptions", subscriptions.Cleanup)
	e.GET("/subscription-stats", subscriptions.Stats)
	e.GET("/vapid-public-key", subscriptions.VAPIDPublicKey)

	e.POST("/schedule", notifications.Schedule)

	api := e.Group("/notifications")
	{
		api.GET("", notifications.GetPending)
		api.PUT("/:id", notifications.Update)
		api.DELETE("/:id", notifications.Delete)
	}

	return e
}
