package handlers

import (
	"github.com/gin-gonic/gin"

	"launchdeck/pkg/auth"
	"launchdeck/pkg/logging"
)

// RouterConfig carries everything the route table needs.
type RouterConfig struct {
	Store         Storage
	Generator     CopyGenerator
	Runner        DispatchRunner
	ClientFactory ClientFactory
	JWTSecret     []byte
	DispatchToken string
	Logger        logging.Logger
	Metrics       *APIMetrics
}

// RegisterRoutes mounts the dispatch trigger and the authenticated product
// API on the router.
func RegisterRoutes(router *gin.Engine, cfg RouterConfig) {
	dispatchHandler := NewDispatchHandler(cfg.Runner, cfg.Logger, cfg.Metrics)
	router.POST("/scheduled-posts/dispatch",
		auth.DispatchAuthMiddleware(cfg.DispatchToken),
		dispatchHandler.Trigger,
	)

	profile := NewProfileHandler(cfg.Store, cfg.Logger, cfg.Metrics)
	products := NewProductHandler(cfg.Store, cfg.Logger, cfg.Metrics)
	launches := NewLaunchHandler(cfg.Store, cfg.Logger, cfg.Metrics)
	strategy := NewStrategyHandler(cfg.Store, cfg.Logger, cfg.Metrics)
	posts := NewPostHandler(cfg.Store, cfg.ClientFactory, cfg.Logger, cfg.Metrics)
	credentials := NewCredentialsHandler(cfg.Store, cfg.Logger, cfg.Metrics)
	copyGen := NewCopyHandler(cfg.Store, cfg.Generator, cfg.Logger, cfg.Metrics)

	api := router.Group("/api")
	api.Use(auth.JWTAuthMiddleware(cfg.JWTSecret))
	{
		api.GET("/profile", profile.Get)
		api.PUT("/profile", profile.Update)

		api.GET("/products", products.List)
		api.POST("/products", products.Create)
		api.GET("/products/:id", products.Get)
		api.PUT("/products/:id", products.Update)
		api.DELETE("/products/:id", products.Delete)

		api.GET("/launches", launches.List)
		api.POST("/launches", launches.Create)
		api.GET("/launches/:id", launches.Get)
		api.PUT("/launches/:id", launches.Update)
		api.DELETE("/launches/:id", launches.Delete)
		api.GET("/launches/:id/strategy", strategy.GetForLaunch)
		api.PUT("/launches/:id/strategy", strategy.UpdateForLaunch)

		api.GET("/strategy", strategy.GetBaseline)
		api.PUT("/strategy", strategy.UpdateBaseline)

		api.POST("/copy/generate", copyGen.Generate)

		api.GET("/scheduled-posts", posts.List)
		api.POST("/scheduled-posts", posts.Create)
		api.GET("/scheduled-posts/:id", posts.Get)
		api.PUT("/scheduled-posts/:id", posts.Update)
		api.DELETE("/scheduled-posts/:id", posts.Delete)
		api.POST("/scheduled-posts/:id/post-now", posts.PostNow)

		api.GET("/credentials", credentials.Get)
		api.PUT("/credentials", credentials.Update)
	}
}
