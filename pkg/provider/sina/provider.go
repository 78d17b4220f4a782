package sina

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"akone/pkg/core"
	"akone/pkg/logger"
)

// Provider 新浪数据源
// 通过 hq.sinajs.cn 行情接口获取实时行情，响应为 GBK 编码
type Provider struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	referer    string
	log        *logrus.Entry
}

// NewProvider 创建新浪数据源
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
		baseURL:   "https://hq.sinajs.cn/list=",
		userAgent: "akone/1.0",
		referer:   "https://finance.sina.com.cn",
		log:       logger.WithSource("sina"),
	}
}

// Name 返回数据源名称
func (p *Provider) Name() string {
	return "sina"
}

// Fetch 获取指定数据集，新浪源仅支持实时行情
func (p *Provider) Fetch(ctx context.Context, method string, params core.Params) (*core.Table, error) {
	if method != core.MethodRealtimeData {
		return nil, fmt.Errorf("%w: %s", core.ErrMethodNotSupported, method)
	}
	return p.fetchRealtimeData(ctx, params)
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

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+code, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", p.userAgent)
	// 新浪接口要求携带 Referer，否则返回 456
	req.Header.Set("Referer", p.referer)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from sina", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return parseQuotes(gbkToUtf8(string(body)))
}
