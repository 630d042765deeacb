package main

import (
	"net/http/pprof"

	"github.com/gin-gonic/gin"
)

// registerDebugRoutes exposes pprof under /debug. Gated behind the
// DEBUG_ROUTES flag; never enabled in production configs.
func registerDebugRoutes(engine *gin.Engine) {
	group := engine.Group("/debug/pprof")
	group.GET("/", gin.WrapF(pprof.Index))
	group.GET("/cmdline", gin.WrapF(pprof.Cmdline))
	group.GET("/profile", gin.WrapF(pprof.Profile))
	group.GET("/symbol", gin.WrapF(pprof.Symbol))
	group.GET("/trace", gin.WrapF(pprof.Trace))
	group.GET("/heap", gin.WrapH(pprof.Handler("heap")))
	group.GET("/goroutine", gin.WrapH(pprof.Handler("goroutine")))
	group.GET("/block", gin.WrapH(pprof.Handler("block")))
	group.GET("/allocs", gin.WrapH(pprof.Handler("allocs")))
}
