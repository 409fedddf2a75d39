package mexc

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"sfarb/internal/application/port"
	"sfarb/internal/domain/model"
	"sfarb/internal/infrastructure/exchange"
	ws "sfarb/internal/infrastructure/websocket"
)

// 单连接订阅上限（合约）
const futuresBatchSize = 200

// FuturesFeed 合约行情源：JSON ticker 推送，JSON ping/pong 保活
type FuturesFeed struct {
	wsURL string
	conv  exchange.SymbolConverter
}

func NewFuturesFeed(wsURL string) *FuturesFeed {
	return &FuturesFeed{
		wsURL: strings.TrimSpace(wsURL),
		conv:  exchange.NewCommonSymbolConverter("_USDT"),
	}
}

func (f *FuturesFeed) Name() string { return "MEXC-FUTURES" }

func (f *FuturesFeed) Market() model.Market { return model.MarketFutures }

type futuresSubReq struct {
	Method string           `json:"method"`
	Param  futuresSubSymbol `json:"param"`
}

type futuresSubSymbol struct {
	Symbol string `json:"symbol"`
}

type futuresPing struct {
	Method string `json:"method"`
}

type futuresMsg struct {
	Channel string          `json:"channel"`
	Ts      int64           `json:"ts"`
	Data    json.RawMessage `json:"data"`
}

type futuresTicker struct {
	Symbol      string  `json:"symbol"`
	Bid1        float64 `json:"bid1"`
	Ask1        float64 `json:"ask1"`
	Amount24    float64 `json:"amount24"`
	FundingRate float64 `json:"fundingRate"`
	Timestamp   int64   `json:"timestamp"`
}

func (f *FuturesFeed) Subscribe(ctx context.Context, symbols []string) (<-chan model.Quote, error) {
	out := make(chan model.Quote, 1024)

	pool, err := ws.NewPool(ws.Config{
		Name:           f.Name(),
		URL:            f.wsURL,
		BatchSize:      futuresBatchSize,
		ConnectDelay:   250 * time.Millisecond,
		ReconnectDelay: 5 * time.Second,
		HeartbeatEvery: 30 * time.Second,
		Subscribe: func(conn *websocket.Conn, batch []string) error {
			// 合约侧按符号逐条订阅
			for _, coin := range batch {
				req := futuresSubReq{
					Method: "sub.ticker",
					Param:  futuresSubSymbol{Symbol: f.conv.Coin2Symbol(coin)},
				}
				if err := conn.WriteJSON(req); err != nil {
					return err
				}
			}
			return nil
		},
		Heartbeat: func(conn *websocket.Conn) error {
			return conn.WriteJSON(futuresPing{Method: "ping"})
		},
		OnMessage: func(msgType int, data []byte) {
			if msgType != websocket.TextMessage {
				return
			}
			f.handleText(data, out)
		},
	})
	if err != nil {
		return nil, err
	}

	go func() {
		defer close(out)
		pool.Connect(ctx, symbols)
		<-ctx.Done()
		pool.Wait()
	}()
	return out, nil
}

func (f *FuturesFeed) handleText(data []byte, out chan<- model.Quote) {
	var msg futuresMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Debug().Str("feed", f.Name()).Err(err).Msg("unparsable text frame dropped")
		return
	}

	switch msg.Channel {
	case "push.ticker":
	case "pong", "rs.sub.ticker":
		return
	case "rs.error":
		log.Warn().Str("feed", f.Name()).RawJSON("data", msg.Data).Msg("subscription rejected")
		return
	default:
		return
	}

	var tk futuresTicker
	if err := json.Unmarshal(msg.Data, &tk); err != nil {
		return
	}
	if tk.Bid1 <= 0 {
		return
	}

	coin := f.conv.Symbol2Coin(tk.Symbol)
	if coin == "" {
		return
	}

	ts := tk.Timestamp
	if ts == 0 {
		ts = msg.Ts
	}
	if ts == 0 {
		ts = time.Now().UnixMilli()
	}

	q := model.Quote{
		Market:      model.MarketFutures,
		Symbol:      coin,
		Bid:         tk.Bid1,
		Ask:         tk.Ask1,
		Volume24h:   tk.Amount24,
		FundingRate: tk.FundingRate,
		Timestamp:   ts,
	}
	select {
	case out <- q:
	default:
	}
}

var _ port.Feed = (*FuturesFeed)(nil)
