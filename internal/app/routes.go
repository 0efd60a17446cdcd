package app

import (
	"github.com/gin-gonic/gin"

	"github.com/korozcolt/archive-master-app-sub004/internal/middleware"
	"github.com/korozcolt/archive-master-app-sub004/internal/modules/ai"
	"github.com/korozcolt/archive-master-app-sub004/internal/modules/document"
	"github.com/korozcolt/archive-master-app-sub004/internal/modules/tenant"
	pkgredis "github.com/korozcolt/archive-master-app-sub004/internal/pkg/redis"
	"github.com/korozcolt/archive-master-app-sub004/internal/pkg/response"
	"github.com/korozcolt/archive-master-app-sub004/internal/pkg/secret"
	"github.com/korozcolt/archive-master-app-sub004/internal/pkg/taskqueue"
)

func (a *App) registerRoutes(
	rc *pkgredis.Client,
	box *secret.Box,
	runStore ai.RunStore,
	outputStore ai.OutputStore,
	settings *ai.SettingsResolver,
	gateways *ai.GatewayFactory,
	queue *taskqueue.Queue,
) {
	r := a.router
	db := a.db
	authMW := middleware.Auth()
	rateMW := middleware.ActionRateLimit(rc, a.cfg.AI.ActionsPerHour)

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	aiSvc := ai.NewService(db, runStore, outputStore, settings, gateways, queue, a.cfg.AI)
	ai.NewHandler(aiSvc).RegisterRoutes(api, authMW, rateMW)

	document.NewHandler(document.NewService(db)).RegisterRoutes(api, authMW)
	tenant.NewHandler(tenant.NewService(db, box)).RegisterRoutes(api, authMW)
}
