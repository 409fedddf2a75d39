package mexc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"sfarb/internal/application/port"
)

// RestClient MEXC 参考数据 REST 客户端（现货目录、合约目录、24h 成交额）
type RestClient struct {
	spotBaseURL    string
	futuresBaseURL string
	client         *http.Client
}

// NewRestClient 创建参考数据客户端；传空串使用线上默认地址
func NewRestClient(spotBaseURL, futuresBaseURL string) *RestClient {
	if spotBaseURL == "" {
		spotBaseURL = "https://api.mexc.com"
	}
	if futuresBaseURL == "" {
		futuresBaseURL = "https://contract.mexc.com"
	}
	return &RestClient{
		spotBaseURL:    strings.TrimRight(spotBaseURL, "/"),
		futuresBaseURL: strings.TrimRight(futuresBaseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type spotExchangeInfo struct {
	Symbols []struct {
		Symbol               string   `json:"symbol"`
		Status               string   `json:"status"`
		BaseAsset            string   `json:"baseAsset"`
		QuoteAsset           string   `json:"quoteAsset"`
		Permissions          []string `json:"permissions"`
		IsSpotTradingAllowed bool     `json:"isSpotTradingAllowed"`
	} `json:"symbols"`
}

// SpotSymbols 拉取现货交易对目录
func (c *RestClient) SpotSymbols(ctx context.Context) ([]port.SpotSymbol, error) {
	var info spotExchangeInfo
	if err := c.getJSON(ctx, c.spotBaseURL+"/api/v3/exchangeInfo", &info); err != nil {
		return nil, err
	}

	out := make([]port.SpotSymbol, 0, len(info.Symbols))
	for _, s := range info.Symbols {
		out = append(out, port.SpotSymbol{
			Symbol:             s.Symbol,
			BaseAsset:          s.BaseAsset,
			QuoteAsset:         s.QuoteAsset,
			Status:             s.Status,
			Permissions:        s.Permissions,
			SpotTradingAllowed: s.IsSpotTradingAllowed,
		})
	}
	return out, nil
}

type contractDetail struct {
	Data []struct {
		Symbol    string `json:"symbol"`
		BaseCoin  string `json:"baseCoin"`
		QuoteCoin string `json:"quoteCoin"`
		State     int    `json:"state"`
	} `json:"data"`
}

// Contracts 拉取合约目录；state==0 表示可交易
func (c *RestClient) Contracts(ctx context.Context) ([]port.Contract, error) {
	var detail contractDetail
	if err := c.getJSON(ctx, c.futuresBaseURL+"/api/v1/contract/detail", &detail); err != nil {
		return nil, err
	}

	out := make([]port.Contract, 0, len(detail.Data))
	for _, d := range detail.Data {
		out = append(out, port.Contract{
			Symbol:    d.Symbol,
			BaseCoin:  d.BaseCoin,
			QuoteCoin: d.QuoteCoin,
			State:     d.State,
		})
	}
	return out, nil
}

type ticker24h struct {
	Symbol      string `json:"symbol"`
	QuoteVolume string `json:"quoteVolume"`
}

// QuoteVolumes 拉取全市场 24h 成交额（quote 计价），symbol 为 {BASE}{QUOTE} 形式
func (c *RestClient) QuoteVolumes(ctx context.Context) (map[string]float64, error) {
	var tickers []ticker24h
	if err := c.getJSON(ctx, c.spotBaseURL+"/api/v3/ticker/24hr", &tickers); err != nil {
		return nil, err
	}

	out := make(map[string]float64, len(tickers))
	for _, t := range tickers {
		if t.Symbol == "" {
			continue
		}
		vol, err := strconv.ParseFloat(t.QuoteVolume, 64)
		if err != nil {
			continue
		}
		out[strings.ToUpper(t.Symbol)] = vol
	}
	return out, nil
}

func (c *RestClient) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("mexc api error: %d %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

var _ port.ReferenceData = (*RestClient)(nil)
