package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"akone/pkg/config"
	"akone/pkg/core"
	"akone/pkg/logger"
	"akone/pkg/router"
)

func main() {
	var (
		configPath = flag.String("config", "", "配置文件路径（可选）")
		symbol     = flag.String("symbol", "600000", "证券代码")
		method     = flag.String("method", core.MethodHistData, "数据集方法名")
		startDate  = flag.String("start", "2024-01-01", "起始日期")
		endDate    = flag.String("end", "2024-12-31", "结束日期")
		adjust     = flag.String("adjust", "none", "复权方式 (none/qfq/hfq)")
		sources    = flag.String("sources", "", "数据源优先级，逗号分隔（可选）")
		maxRows    = flag.Int("rows", 10, "最多打印的行数")
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
	log := logger.WithComponent("fetcher")

	sourceList := cfg.Router.HistSources
	if *method == core.MethodRealtimeData {
		sourceList = cfg.Router.RealtimeSources
	}
	if *sources != "" {
		sourceList = strings.Split(*sources, ",")
	}

	var r *router.MultiSourceRouter
	if *method == core.MethodRealtimeData {
		r = router.NewRealtimeRouter(sourceList, cfg.Router.AttemptTimeout)
	} else {
		r = router.NewHistoricalRouter(sourceList, cfg.Router.AttemptTimeout)
	}

	params := core.Params{
		"symbol":     *symbol,
		"start_date": *startDate,
		"end_date":   *endDate,
		"adjust":     *adjust,
	}

	res := r.ExecuteWithResult(context.Background(), *method, params)
	if !res.Success {
		log.Errorf("获取数据失败（尝试 %d 个数据源）:\n%s", res.Attempts, res.Error)
		os.Exit(1)
	}

	log.Infof("来源 '%s'，共 %d 行（尝试 %d 次）", res.Source, res.Data.Len(), res.Attempts)
	printTable(res.Data, *maxRows)
}

// printTable 对齐打印表格前若干行
func printTable(table *core.Table, maxRows int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	columns := table.Columns()
	fmt.Fprintln(w, strings.Join(columns, "\t"))

	n := table.Len()
	if maxRows > 0 && n > maxRows {
		n = maxRows
	}
	for i := 0; i < n; i++ {
		values := make([]string, len(columns))
		for j, col := range columns {
			values[j] = table.String(i, col)
		}
		fmt.Fprintln(w, strings.Join(values, "\t"))
	}
	if n < table.Len() {
		fmt.Fprintf(w, "... 共 %d 行\n", table.Len())
	}
}
