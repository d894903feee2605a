package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/table-sync-app/controllers"
	"github.com/yeremiapane/table-sync-app/middlewares"
	"github.com/yeremiapane/table-sync-app/realtime"
	"github.com/yeremiapane/table-sync-app/store"
)

// SetupRouter wires stores, controllers and the hub. The hub instance is
// passed in from main and handed to every controller that publishes;
// there is no ambient global to look it up from.
func SetupRouter(db *gorm.DB, hub *realtime.Hub) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	tableStore := store.NewTableStore(db)
	sessionStore := store.NewSessionStore(db, tableStore)

	tableCtrl := controllers.NewTableController(tableStore)
	sessionCtrl := controllers.NewSessionController(sessionStore, hub)
	wsCtrl := controllers.NewWSController(hub)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES (customer devices)
	// ----------------------------------------------------------------
	r.GET("/tables/status", tableCtrl.GetTableStatus)

	// Session creation happens once per party; keep it behind the strict
	// limiter like login endpoints.
	create := r.Group("/")
	create.Use(middlewares.NewStrictRateLimiter())
	{
		create.POST("/tables/session", sessionCtrl.CreateSession)
	}

	r.GET("/tables/session", sessionCtrl.GetSession)
	r.PATCH("/tables/session", sessionCtrl.UpdateTray)
	r.DELETE("/tables/session", sessionCtrl.EndSession)

	// Realtime sync channel
	r.GET("/ws", wsCtrl.Handle)

	// ----------------------------------------------------------------
	//                      ADMIN CONSOLE ROUTES
	// ----------------------------------------------------------------
	admin := r.Group("/admin")
	admin.GET("/tables", tableCtrl.GetAllTables)
	admin.POST("/tables", tableCtrl.CreateTable)
	admin.DELETE("/tables/:table_id", tableCtrl.DeleteTable)

	return r
}
