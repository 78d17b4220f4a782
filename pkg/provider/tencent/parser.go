package tencent

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"akone/pkg/core"
)

// quoteColumns 实时行情的标准列
var quoteColumns = []string{
	"symbol", "name", "price", "open", "high", "low",
	"prev_close", "volume", "timestamp",
}

// histColumns 历史行情的标准列
var histColumns = []string{"timestamp", "open", "high", "low", "close", "volume"}

// klineResponse 腾讯 fqkline 接口响应
// data 按 "代码 → K 线键 → 行" 嵌套，复权时键名带 qfq/hfq 前缀
type klineResponse struct {
	Code int                                   `json:"code"`
	Msg  string                                `json:"msg"`
	Data map[string]map[string]json.RawMessage `json:"data"`
}

// gbkToUtf8 将 GBK 编码转换为 UTF-8
func gbkToUtf8(gbkStr string) string {
	if gbkStr == "" {
		return ""
	}
	reader := transform.NewReader(strings.NewReader(gbkStr), simplifiedchinese.GBK.NewDecoder())
	data, err := io.ReadAll(reader)
	if err != nil {
		return gbkStr
	}
	return string(data)
}

// parseQuotes 解析腾讯实时行情响应
// 每行形如 v_sh600000="1~浦发银行~600000~10.57~10.40~10.50~123456~...";
// 字段以 ~ 分隔：1 名称,2 代码,3 现价,4 昨收,5 开盘,6 成交量,30 时间,33 最高,34 最低
func parseQuotes(body string) (*core.Table, error) {
	table := core.NewTable(quoteColumns...)

	for _, line := range strings.Split(body, ";") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.Contains(line, "=") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		payload := strings.Trim(parts[1], ` "`)
		if payload == "" {
			continue
		}

		fields := strings.Split(payload, "~")
		if len(fields) < 35 {
			return nil, fmt.Errorf("%w: quote has %d fields", core.ErrUpstreamFormat, len(fields))
		}

		table.AppendRecord(map[string]any{
			"symbol":     fields[2],
			"name":       fields[1],
			"price":      parseFloat(fields[3]),
			"open":       parseFloat(fields[5]),
			"high":       parseFloat(fields[33]),
			"low":        parseFloat(fields[34]),
			"prev_close": parseFloat(fields[4]),
			"volume":     int64(parseFloat(fields[6])),
			"timestamp":  fields[30],
		})
	}

	return table, nil
}

// parseKlines 从嵌套响应中取出指定代码的 K 线并转成标准表格
// 每行形如 ["2024-01-02","10.50","10.57","10.65","10.30","123456.00"]，
// 字段顺序为 日期,开盘,收盘,最高,最低,成交量
func parseKlines(resp klineResponse, code, interval, adjust string) (*core.Table, error) {
	if resp.Code != 0 {
		return nil, fmt.Errorf("tencent kline error %d: %s", resp.Code, resp.Msg)
	}

	byCode, ok := resp.Data[code]
	if !ok {
		return nil, fmt.Errorf("%w: no data for %s", core.ErrUpstreamFormat, code)
	}

	// 复权数据的键名形如 qfqday，取不到时回退到原始键
	raw, ok := byCode[adjustParam(adjust)+interval]
	if !ok {
		if raw, ok = byCode[interval]; !ok {
			return nil, fmt.Errorf("%w: no %s klines for %s", core.ErrUpstreamFormat, interval, code)
		}
	}

	var rows [][]any
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrUpstreamFormat, err)
	}

	table := core.NewTable(histColumns...)
	for _, row := range rows {
		if len(row) < 6 {
			return nil, fmt.Errorf("%w: kline row has %d fields", core.ErrUpstreamFormat, len(row))
		}
		table.AppendRecord(map[string]any{
			"timestamp": toString(row[0]),
			"open":      toFloat(row[1]),
			"close":     toFloat(row[2]),
			"high":      toFloat(row[3]),
			"low":       toFloat(row[4]),
			"volume":    int64(toFloat(row[5])),
		})
	}

	return table, nil
}

// marketCode 把证券代码转成腾讯的带市场前缀形式
func marketCode(symbol string) (string, error) {
	if symbol == "" {
		return "", core.ErrEmptySymbol
	}

	s := strings.ToLower(symbol)
	if strings.HasPrefix(s, "sh") || strings.HasPrefix(s, "sz") {
		return s, nil
	}

	if len(s) != 6 {
		return "", fmt.Errorf("%w: %s", core.ErrInvalidSymbol, symbol)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("%w: %s", core.ErrInvalidSymbol, symbol)
		}
	}

	if s[0] == '6' || s[0] == '9' {
		return "sh" + s, nil
	}
	return "sz" + s, nil
}

// histInterval 周期名转腾讯接口的 K 线键
func histInterval(interval string) string {
	switch strings.ToLower(interval) {
	case "week":
		return "week"
	case "month":
		return "month"
	default:
		return "day"
	}
}

// adjustParam 复权方式转接口参数（空字符串表示不复权）
func adjustParam(adjust string) string {
	switch strings.ToLower(adjust) {
	case "qfq", "hfq":
		return strings.ToLower(adjust)
	default:
		return ""
	}
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func toFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		return parseFloat(t)
	default:
		return 0
	}
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
