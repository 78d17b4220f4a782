package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"akone/pkg/config"
	"akone/pkg/core"
	"akone/pkg/logger"
	"akone/pkg/router"
)

// server 封装两个路由器与 HTTP 接口
type server struct {
	histRouter     *router.MultiSourceRouter
	realtimeRouter *router.MultiSourceRouter
}

func main() {
	var (
		configPath = flag.String("config", "", "配置文件路径（可选）")
		addr       = flag.String("addr", ":8080", "监听地址")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	logger.Init(logger.Config{Level: cfg.Logger.Level, Format: cfg.Logger.Format})
	log := logger.WithComponent("api_server")

	s := &server{
		histRouter:     router.NewHistoricalRouter(cfg.Router.HistSources, cfg.Router.AttemptTimeout),
		realtimeRouter: router.NewRealtimeRouter(cfg.Router.RealtimeSources, cfg.Router.AttemptTimeout),
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.Default()

	v1 := engine.Group("/api/v1")
	{
		v1.GET("/hist/:symbol", s.handleHist)
		v1.GET("/realtime/:symbol", s.handleRealtime)
		v1.GET("/stats", s.handleStats)
	}

	log.Infof("API 服务器启动，监听 %s", *addr)
	if err := engine.Run(*addr); err != nil {
		log.WithError(err).Error("API 服务器退出")
		os.Exit(1)
	}
}

// handleHist 历史行情接口
func (s *server) handleHist(c *gin.Context) {
	params := core.Params{
		"symbol":     c.Param("symbol"),
		"start_date": c.DefaultQuery("start", "2024-01-01"),
		"end_date":   c.DefaultQuery("end", "2030-12-31"),
		"adjust":     c.DefaultQuery("adjust", "none"),
		"interval":   c.DefaultQuery("interval", "day"),
	}
	s.respond(c, s.histRouter, core.MethodHistData, params)
}

// handleRealtime 实时行情接口
func (s *server) handleRealtime(c *gin.Context) {
	params := core.Params{"symbol": c.Param("symbol")}
	s.respond(c, s.realtimeRouter, core.MethodRealtimeData, params)
}

// handleStats 数据源统计接口
func (s *server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"hist":     s.histRouter.GetStats(),
		"realtime": s.realtimeRouter.GetStats(),
	})
}

// respond 执行路由调用并返回统一的响应结构
// 总失败时返回 502 及逐源失败明细和失败归类，便于直接定位故障源
func (s *server) respond(c *gin.Context, r *router.MultiSourceRouter, method string, params core.Params) {
	res := r.ExecuteWithResult(c.Request.Context(), method, params)
	if !res.Success {
		c.JSON(http.StatusBadGateway, gin.H{
			"success":       false,
			"attempts":      res.Attempts,
			"error_details": res.ErrorDetails,
			"breakdown":     router.ClassifyDetails(res.ErrorDetails),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"source":   res.Source,
		"attempts": res.Attempts,
		"rows":     res.Data.Len(),
		"data":     res.Data.Records(),
	})
}
