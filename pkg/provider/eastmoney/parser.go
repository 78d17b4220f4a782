package eastmoney

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"akone/pkg/core"
)

// klineResponse push2his K 线接口响应
type klineResponse struct {
	Data *struct {
		Code   string   `json:"code"`
		Name   string   `json:"name"`
		Klines []string `json:"klines"`
	} `json:"data"`
}

// quoteResponse push2 实时行情接口响应（fltt=2，数值为浮点）
type quoteResponse struct {
	Data *quoteData `json:"data"`
}

type quoteData struct {
	Price         float64 `json:"f43"`
	High          float64 `json:"f44"`
	Low           float64 `json:"f45"`
	Open          float64 `json:"f46"`
	Volume        float64 `json:"f47"`
	Turnover      float64 `json:"f48"`
	Symbol        string  `json:"f57"`
	Name          string  `json:"f58"`
	PrevClose     float64 `json:"f60"`
	ChangePercent float64 `json:"f170"`
}

// histColumns 历史行情的标准列
var histColumns = []string{"timestamp", "open", "high", "low", "close", "volume"}

// realtimeColumns 实时行情的标准列
var realtimeColumns = []string{
	"symbol", "name", "price", "open", "high", "low",
	"prev_close", "change_percent", "volume", "turnover", "timestamp",
}

// parseKlines 解析 K 线字符串列表
// 每条形如 "2024-01-02,10.50,10.57,10.65,10.30,123456,130000000.0"，
// 字段顺序为 日期,开盘,收盘,最高,最低,成交量,成交额
func parseKlines(klines []string) (*core.Table, error) {
	table := core.NewTable(histColumns...)

	for _, line := range klines {
		fields := strings.Split(line, ",")
		if len(fields) < 6 {
			return nil, fmt.Errorf("%w: kline has %d fields", core.ErrUpstreamFormat, len(fields))
		}

		open, err := parseFloat(fields[1])
		if err != nil {
			return nil, err
		}
		close_, err := parseFloat(fields[2])
		if err != nil {
			return nil, err
		}
		high, err := parseFloat(fields[3])
		if err != nil {
			return nil, err
		}
		low, err := parseFloat(fields[4])
		if err != nil {
			return nil, err
		}
		volume, err := parseFloat(fields[5])
		if err != nil {
			return nil, err
		}

		if err := table.AppendRow(fields[0], open, high, low, close_, int64(volume)); err != nil {
			return nil, err
		}
	}

	return table, nil
}

// quoteToTable 把实时行情快照转成单行表格
func quoteToTable(q *quoteData, now time.Time) *core.Table {
	table := core.NewTable(realtimeColumns...)
	table.AppendRecord(map[string]any{
		"symbol":         q.Symbol,
		"name":           q.Name,
		"price":          q.Price,
		"open":           q.Open,
		"high":           q.High,
		"low":            q.Low,
		"prev_close":     q.PrevClose,
		"change_percent": q.ChangePercent,
		"volume":         int64(q.Volume),
		"turnover":       q.Turnover,
		"timestamp":      now.Format("2006-01-02 15:04:05"),
	})
	return table
}

// secID 把证券代码转成东方财富的 secid 形式（市场.代码）
// 接受裸代码（600000）或带市场前缀的代码（sh600000）
func secID(symbol string) (string, error) {
	if symbol == "" {
		return "", core.ErrEmptySymbol
	}

	s := strings.ToLower(symbol)
	switch {
	case strings.HasPrefix(s, "sh"):
		return "1." + s[2:], nil
	case strings.HasPrefix(s, "sz"):
		return "0." + s[2:], nil
	}

	if len(s) != 6 {
		return "", fmt.Errorf("%w: %s", core.ErrInvalidSymbol, symbol)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("%w: %s", core.ErrInvalidSymbol, symbol)
		}
	}

	// 6/9 开头为沪市，其余视为深市
	if s[0] == '6' || s[0] == '9' {
		return "1." + s, nil
	}
	return "0." + s, nil
}

// intervalToKlt 周期名转 klt 参数
func intervalToKlt(interval string) string {
	switch strings.ToLower(interval) {
	case "minute", "1m":
		return "1"
	case "5m":
		return "5"
	case "15m":
		return "15"
	case "30m":
		return "30"
	case "hour", "60m":
		return "60"
	case "week":
		return "102"
	case "month":
		return "103"
	default:
		return "101" // day
	}
}

// adjustToFqt 复权方式转 fqt 参数
func adjustToFqt(adjust string) string {
	switch strings.ToLower(adjust) {
	case "qfq":
		return "1"
	case "hfq":
		return "2"
	default:
		return "0"
	}
}

// compactDate 把 YYYY-MM-DD 归一成接口要求的 YYYYMMDD
func compactDate(date string) string {
	return strings.ReplaceAll(date, "-", "")
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad numeric field %q", core.ErrUpstreamFormat, s)
	}
	return v, nil
}
