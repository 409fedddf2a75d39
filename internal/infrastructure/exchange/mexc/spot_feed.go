package mexc

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"sfarb/internal/application/port"
	"sfarb/internal/domain/model"
	"sfarb/internal/infrastructure/exchange"
	ws "sfarb/internal/infrastructure/websocket"
)

const (
	// 单连接订阅上限（现货）
	spotBatchSize = 30

	spotChannelPrefix = "spot@public.aggre.bookTicker.v3.api.pb@100ms@"
)

// SpotFeed 现货行情源：二进制 book-ticker 推送，JSON 控制帧。
// 解码器构造失败不阻止连接，只是丢弃二进制帧直至修复。
type SpotFeed struct {
	wsURL string
	dec   *Decoder
	conv  exchange.SymbolConverter
}

func NewSpotFeed(wsURL string) *SpotFeed {
	dec, err := NewDecoder()
	if err != nil {
		// proceed without decode capability; binary frames will be dropped
		log.Error().Err(err).Msg("spot wire decoder init failed")
	}
	return &SpotFeed{
		wsURL: strings.TrimSpace(wsURL),
		dec:   dec,
		conv:  exchange.NewCommonSymbolConverter("USDT"),
	}
}

func (f *SpotFeed) Name() string { return "MEXC-SPOT" }

func (f *SpotFeed) Market() model.Market { return model.MarketSpot }

type spotSubReq struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
}

type spotPing struct {
	Method string `json:"method"`
}

// spot JSON 控制帧 / JSON 行情兜底帧共用的外层结构
type spotTextMsg struct {
	ID      int             `json:"id"`
	Code    int             `json:"code"`
	Msg     string          `json:"msg"`
	Channel string          `json:"c"`
	Symbol  string          `json:"s"`
	Ts      int64           `json:"t"`
	Data    json.RawMessage `json:"d"`
}

type spotJSONTicker struct {
	Bid    string `json:"b"`
	Ask    string `json:"a"`
	BidQty string `json:"B"`
	AskQty string `json:"A"`
}

func (f *SpotFeed) Subscribe(ctx context.Context, symbols []string) (<-chan model.Quote, error) {
	out := make(chan model.Quote, 1024)

	pool, err := ws.NewPool(ws.Config{
		Name:           f.Name(),
		URL:            f.wsURL,
		BatchSize:      spotBatchSize,
		ConnectDelay:   250 * time.Millisecond,
		ReconnectDelay: 5 * time.Second,
		HeartbeatEvery: 30 * time.Second,
		Subscribe: func(conn *websocket.Conn, batch []string) error {
			params := make([]string, 0, len(batch))
			for _, coin := range batch {
				params = append(params, spotChannelPrefix+f.conv.Coin2Symbol(coin))
			}
			return conn.WriteJSON(spotSubReq{Method: "SUBSCRIPTION", Params: params})
		},
		Heartbeat: func(conn *websocket.Conn) error {
			return conn.WriteJSON(spotPing{Method: "PING"})
		},
		OnMessage: func(msgType int, data []byte) {
			f.handleFrame(msgType, data, out)
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

func (f *SpotFeed) handleFrame(msgType int, data []byte, out chan<- model.Quote) {
	switch msgType {
	case websocket.BinaryMessage:
		q := f.dec.Decode(data)
		if q == nil {
			return
		}
		f.emit(out, *q)
	case websocket.TextMessage:
		f.handleText(data, out)
	}
}

// handleText 处理 JSON 控制帧；同一契约下保留 JSON 行情兜底路径
func (f *SpotFeed) handleText(data []byte, out chan<- model.Quote) {
	var msg spotTextMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Debug().Str("feed", f.Name()).Err(err).Msg("unparsable text frame dropped")
		return
	}

	// subscription ack / PONG reply
	if msg.Channel == "" || len(msg.Data) == 0 {
		if msg.Code != 0 {
			log.Warn().Str("feed", f.Name()).Int("code", msg.Code).Str("msg", msg.Msg).
				Msg("control frame reported error")
		}
		return
	}

	if !strings.Contains(msg.Channel, "bookTicker") {
		return
	}

	var tk spotJSONTicker
	if err := json.Unmarshal(msg.Data, &tk); err != nil {
		return
	}
	bid, err := strconv.ParseFloat(tk.Bid, 64)
	if err != nil {
		return
	}
	ask, err := strconv.ParseFloat(tk.Ask, 64)
	if err != nil {
		return
	}
	bidQty, _ := strconv.ParseFloat(tk.BidQty, 64)
	askQty, _ := strconv.ParseFloat(tk.AskQty, 64)

	ts := msg.Ts
	if ts == 0 {
		ts = time.Now().UnixMilli()
	}
	sym := msg.Symbol
	if sym == "" {
		sym = channelSymbol(msg.Channel)
	}

	f.emit(out, model.Quote{
		Market:    model.MarketSpot,
		Symbol:    sym,
		Bid:       bid,
		Ask:       ask,
		BidQty:    bidQty,
		AskQty:    askQty,
		Timestamp: ts,
	})
}

// emit 归一化后投递；买一价非正的报价直接丢弃
func (f *SpotFeed) emit(out chan<- model.Quote, q model.Quote) {
	if q.Bid <= 0 {
		return
	}
	q.Market = model.MarketSpot
	q.Symbol = f.conv.Symbol2Coin(q.Symbol)
	if q.Symbol == "" {
		return
	}
	select {
	case out <- q:
	default:
		// consumer is behind; dropping the oldest state loses nothing,
		// the next frame for this symbol supersedes it anyway
	}
}

var _ port.Feed = (*SpotFeed)(nil)
