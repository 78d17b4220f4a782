package sina

import (
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
	"prev_close", "volume", "turnover", "timestamp",
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

// parseQuotes 解析新浪行情响应
// 每行形如 var hq_str_sh600000="浦发银行,10.50,10.40,10.57,10.65,10.30,...,2024-01-02,15:00:03,00";
// 字段顺序：0 名称,1 开盘,2 昨收,3 现价,4 最高,5 最低,8 成交量,9 成交额,30 日期,31 时间
func parseQuotes(body string) (*core.Table, error) {
	table := core.NewTable(quoteColumns...)

	for _, line := range strings.Split(body, ";") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.Contains(line, "=") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		symbol := extractSymbol(parts[0])
		payload := strings.Trim(parts[1], ` "`)
		if payload == "" {
			continue
		}

		fields := strings.Split(payload, ",")
		if len(fields) < 32 {
			return nil, fmt.Errorf("%w: quote has %d fields", core.ErrUpstreamFormat, len(fields))
		}

		table.AppendRecord(map[string]any{
			"symbol":     symbol,
			"name":       fields[0],
			"price":      parseFloat(fields[3]),
			"open":       parseFloat(fields[1]),
			"high":       parseFloat(fields[4]),
			"low":        parseFloat(fields[5]),
			"prev_close": parseFloat(fields[2]),
			"volume":     int64(parseFloat(fields[8])),
			"turnover":   parseFloat(fields[9]),
			"timestamp":  fields[30] + " " + fields[31],
		})
	}

	return table, nil
}

// extractSymbol 从 var hq_str_sh600000 中取出裸代码
func extractSymbol(varName string) string {
	i := strings.LastIndex(varName, "_")
	if i < 0 || i+1 >= len(varName) {
		return varName
	}
	code := varName[i+1:]
	return strings.TrimLeft(code, "shz")
}

// marketCode 把证券代码转成新浪的带市场前缀形式
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

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
