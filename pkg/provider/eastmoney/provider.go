package eastmoney

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"akone/pkg/core"
	"akone/pkg/logger"
)

// Provider 东方财富数据源
// 通过 push2 行情接口获取历史 K 线和实时行情
type Provider struct {
	httpClient *http.Client
	histURL    string
	quoteURL   string
	userAgent  string
	log        *logrus.Entry
}

// NewProvider 创建东方财富数据源
func NewProvider() *Provider {
	return &Provider{
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     30 * time.Second,
			},
			Timeout: 15 * time.Second,
		},
		histURL:   "https://push2his.eastmoney.com/api/qt/stock/kline/get",
		quoteURL:  "https://push2.eastmoney.com/api/qt/stock/get",
		userAgent: "akone/1.0",
		log:       logger.WithSource("eastmoney"),
	}
}

// Name 返回数据源名称
func (p *Provider) Name() string {
	return "eastmoney"
}

// Fetch 获取指定数据集
func (p *Provider) Fetch(ctx context.Context, method string, params core.Params) (*core.Table, error) {
	switch method {
	case core.MethodHistData:
		return p.fetchHistData(ctx, params)
	case core.MethodRealtimeData:
		return p.fetchRealtimeData(ctx, params)
	default:
		return nil, fmt.Errorf("%w: %s", core.ErrMethodNotSupported, method)
	}
}

// Close 关闭数据源，清理连接
func (p *Provider) Close() error {
	p.httpClient.CloseIdleConnections()
	return nil
}

// fetchHistData 获取历史 K 线数据
func (p *Provider) fetchHistData(ctx context.Context, params core.Params) (*core.Table, error) {
	secID, err := secID(params.String("symbol"))
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("secid", secID)
	q.Set("klt", intervalToKlt(params.StringOr("interval", "day")))
	q.Set("fqt", adjustToFqt(params.StringOr("adjust", "none")))
	q.Set("beg", compactDate(params.StringOr("start_date", "19700101")))
	q.Set("end", compactDate(params.StringOr("end_date", "20501231")))
	q.Set("fields1", "f1,f2,f3,f4,f5,f6")
	q.Set("fields2", "f51,f52,f53,f54,f55,f56,f57")

	body, err := p.get(ctx, p.histURL+"?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var resp klineResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrUpstreamFormat, err)
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("%w: missing data section", core.ErrUpstreamFormat)
	}

	return parseKlines(resp.Data.Klines)
}

// fetchRealtimeData 获取实时行情数据
func (p *Provider) fetchRealtimeData(ctx context.Context, params core.Params) (*core.Table, error) {
	secID, err := secID(params.String("symbol"))
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("secid", secID)
	q.Set("invt", "2")
	q.Set("fltt", "2") // 返回浮点数而非放大后的整数
	q.Set("fields", "f43,f44,f45,f46,f47,f48,f57,f58,f60,f170")

	body, err := p.get(ctx, p.quoteURL+"?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var resp quoteResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrUpstreamFormat, err)
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("%w: missing data section", core.ErrUpstreamFormat)
	}

	return quoteToTable(resp.Data, time.Now()), nil
}

// get 执行一次带上下文的 GET 请求，返回响应体
func (p *Provider) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from eastmoney", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
