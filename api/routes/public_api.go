package routes

import (
	"vkconnect/api/handlers"
	"vkconnect/api/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func PublicApi(router *gin.Engine) *gin.RouterGroup {
	api := router.Group("/api/")
	{
		api.POST("auth/register", handlers.Register)
		api.POST("auth/login", handlers.Login)
		api.POST("auth/logout", handlers.Logout)

		// Posts: listing is open, anything that writes needs a session
		api.GET("posts", middleware.OptionalAuth(), handlers.ListPosts)
		api.POST("posts", middleware.Auth(), handlers.CreatePost)
		api.GET("posts/:id", middleware.OptionalAuth(), handlers.GetPost)
		api.DELETE("posts/:id", middleware.Auth(), handlers.DeletePost)

		api.POST("posts/:id/answers", middleware.Auth(), handlers.CreateAnswer)
		api.POST("posts/:id/comments", middleware.Auth(), handlers.CreateComment)
		api.POST("posts/:id/answers/:answerId/adopt", middleware.Auth(), handlers.AdoptAnswer)

		api.POST("posts/:id/like", middleware.Auth(), handlers.ToggleLike)
		api.POST("posts/:id/bookmark", middleware.Auth(), handlers.ToggleBookmark)

		api.GET("follows", middleware.Auth(), handlers.ListFollowing)
		api.POST("follows/:id", middleware.Auth(), handlers.Follow)
		api.DELETE("follows/:id", middleware.Auth(), handlers.Unfollow)

		api.GET("subscriptions", middleware.Auth(), handlers.ListSubscriptions)
		api.POST("subscriptions", middleware.Auth(), handlers.Subscribe)
		api.DELETE("subscriptions/:slug", middleware.Auth(), handlers.Unsubscribe)

		api.GET("ws/notifications", middleware.Auth(), handlers.WSNotifications)
		api.GET("queue/stats", middleware.Auth(), handlers.GetQueueStats)
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return api
}
