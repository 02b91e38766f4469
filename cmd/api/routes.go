package main

import (
	"admin-console/internal/gateway"
	"admin-console/internal/httpapi"
	"admin-console/internal/permission"
	"admin-console/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to
// internal modules; routes only declare which capability gates which
// operation.
func registerRoutes(
	r *gin.Engine,
	h httpapi.Handlers,
	sessions *session.Manager,
	perms *permission.Evaluator,
	client *gateway.Client,
	gatherer prometheus.Gatherer,
) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	v1 := r.Group("/v1")
	// One flight per request: identical concurrent gateway calls made
	// while serving a single console request collapse to one.
	v1.Use(gateway.Middleware(client))

	v1.POST("/auth/login", h.SignIn)

	authed := v1.Group("")
	authed.Use(session.Require(sessions))
	{
		authed.POST("/auth/logout", h.SignOut)
		authed.GET("/me", h.Me)

		// Business surfaces are thin forwarders over the signed-call
		// primitive; their wire schemas belong to the gateway.
		merchants := authed.Group("/merchants")
		{
			merchants.GET("", permission.RequireCapability(perms, "merchants:view"), h.Forward("merchants.list"))
			merchants.POST("", permission.RequireCapability(perms, "merchants:add"), h.Forward("merchants.create"))
		}

		players := authed.Group("/players")
		{
			players.GET("", permission.RequireCapability(perms, "players:view"), h.Forward("players.list"))
			players.POST("/search", permission.RequireCapability(perms, "players:view"), h.Forward("players.search"))
		}

		transactions := authed.Group("/transactions")
		{
			transactions.GET("", permission.RequireCapability(perms, "transactions:view"), h.Forward("transactions.list"))
		}

		games := authed.Group("/games")
		{
			games.GET("", permission.RequireCapability(perms, "games:view"), h.Forward("games.list"))
			games.POST("", permission.RequireCapability(perms, "games:add"), h.Forward("games.create"))
		}

		roles := authed.Group("/roles")
		{
			roles.GET("", permission.RequireCapability(perms, "roles:view"), h.Forward("roles.list"))
			roles.POST("", permission.RequireCapability(perms, "roles:add"), h.Forward("roles.create"))
		}

		cfgGroup := authed.Group("/settings")
		{
			cfgGroup.GET("", permission.RequireCapability(perms, "settings:view"), h.GetSettings)
			cfgGroup.PUT("", permission.RequireCapability(perms, "settings:update"), h.UpdateSettings)
		}
	}
}
