package tencent

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"akone/pkg/core"
	"akone/pkg/logger"
)

// Provider 腾讯数据源
// 实时行情走 qt.gtimg.cn（GBK 编码），历史 K 线走 web.ifzq.gtimg.cn（JSON）
type Provider struct {
	httpClient *http.Client
	quoteURL   string
	histURL    string
	userAgent  string
	log        *logrus.Entry
}

// NewProvider 创建腾讯数据源
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
		quoteURL:  "https://qt.gtimg.cn/q=",
		histURL:   "https://web.ifzq.gtimg.cn/appstock/app/fqkline/get",
		userAgent: "akone/1.0",
		log:       logger.WithSource("tencent"),
	}
}

// Name 返回数据源名称
func (p *Provider) Name() string {
	return "tencent"
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

// fetchRealtimeData 获取实时行情数据
func (p *Provider) fetchRealtimeData(ctx context.Context, params core.Params) (*core.Table, error) {
	code, err := marketCode(params.String("symbol"))
	if err != nil {
		return nil, err
	}

	body, err := p.get(ctx, p.quoteURL+code)
	if err != nil {
		return nil, err
	}

	return parseQuotes(gbkToUtf8(string(body)))
}

// fetchHistData 获取历史 K 线数据
func (p *Provider) fetchHistData(ctx context.Context, params core.Params) (*core.Table, error) {
	code, err := marketCode(params.String("symbol"))
	if err != nil {
		return nil, err
	}

	interval := histInterval(params.StringOr("interval", "day"))
	adjust := params.StringOr("adjust", "none")
	param := fmt.Sprintf("%s,%s,%s,%s,640,%s",
		code,
		interval,
		params.StringOr("start_date", ""),
		params.StringOr("end_date", ""),
		adjustParam(adjust),
	)

	body, err := p.get(ctx, p.histURL+"?param="+param)
	if err != nil {
		return nil, err
	}

	var resp klineResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrUpstreamFormat, err)
	}

	return parseKlines(resp, code, interval, adjust)
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
		return nil, fmt.Errorf("unexpected status %d from tencent", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
