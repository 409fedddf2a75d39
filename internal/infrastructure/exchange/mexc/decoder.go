package mexc

import (
	"errors"
	"strconv"
	"time"

	"google.golang.org/protobuf/encoding/protowire"

	"sfarb/internal/domain/model"
)

// Wrapper message field numbers. The spot feed pushes a protobuf wrapper whose
// body carries the book-ticker record; channel/symbol/sendTime live on the
// wrapper itself.
const (
	wrapChannel  protowire.Number = 1
	wrapSymbol   protowire.Number = 3
	wrapSendTime protowire.Number = 6
)

// bookTickerCandidates: the upstream feed has moved the book-ticker submessage
// between field numbers across protocol versions. Ordered, first present wins;
// drift is a one-line change here.
var bookTickerCandidates = []protowire.Number{305, 315}

// Book-ticker submessage field numbers. All prices/quantities are
// numeric-as-string on the wire.
const (
	btBidPrice protowire.Number = 1
	btBidQty   protowire.Number = 2
	btAskPrice protowire.Number = 3
	btAskQty   protowire.Number = 4
)

// Decoder 现货二进制行情帧解码器。构造即一次性的 schema 装载；
// Decode 对畸形帧一律返回 nil，绝不向连接层抛错。
type Decoder struct {
	candidates []protowire.Number
}

func NewDecoder() (*Decoder, error) {
	if len(bookTickerCandidates) == 0 {
		return nil, errors.New("book ticker field table empty")
	}
	seen := make(map[protowire.Number]struct{}, len(bookTickerCandidates))
	for _, n := range bookTickerCandidates {
		if n < 1 {
			return nil, errors.New("book ticker field table contains invalid number")
		}
		if _, dup := seen[n]; dup {
			return nil, errors.New("book ticker field table contains duplicate number")
		}
		seen[n] = struct{}{}
	}
	return &Decoder{candidates: bookTickerCandidates}, nil
}

// Decode 解出一条规范化报价；解码器未初始化、缺少子消息或任何
// 字段损坏都返回 nil，由调用方静默丢帧。
func (d *Decoder) Decode(frame []byte) *model.Quote {
	if d == nil || len(frame) == 0 {
		return nil
	}

	var channel, symbol string
	var sendTime int64
	bodies := make(map[protowire.Number][]byte, 1)

	b := frame
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil
		}
		b = b[n:]

		switch {
		case num == wrapChannel && typ == protowire.BytesType:
			v, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return nil
			}
			channel = string(v)
			b = b[m:]
		case num == wrapSymbol && typ == protowire.BytesType:
			v, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return nil
			}
			symbol = string(v)
			b = b[m:]
		case num == wrapSendTime && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(b)
			if m < 0 {
				return nil
			}
			sendTime = int64(v)
			b = b[m:]
		case typ == protowire.BytesType && d.isCandidate(num):
			v, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return nil
			}
			bodies[num] = v
			b = b[m:]
		default:
			m := protowire.ConsumeFieldValue(num, typ, b)
			if m < 0 {
				return nil
			}
			b = b[m:]
		}
	}

	var body []byte
	for _, num := range d.candidates {
		if v, ok := bodies[num]; ok {
			body = v
			break
		}
	}
	if body == nil {
		return nil
	}

	bid, bidQty, ask, askQty, ok := decodeBookTicker(body)
	if !ok {
		return nil
	}

	if symbol == "" {
		symbol = channelSymbol(channel)
	}
	if sendTime == 0 {
		sendTime = time.Now().UnixMilli()
	}

	return &model.Quote{
		Market:    model.MarketSpot,
		Symbol:    symbol,
		Bid:       bid,
		Ask:       ask,
		BidQty:    bidQty,
		AskQty:    askQty,
		Timestamp: sendTime,
	}
}

func (d *Decoder) isCandidate(num protowire.Number) bool {
	for _, n := range d.candidates {
		if n == num {
			return true
		}
	}
	return false
}

func decodeBookTicker(b []byte) (bid, bidQty, ask, askQty float64, ok bool) {
	fields := make(map[protowire.Number]string, 4)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return 0, 0, 0, 0, false
		}
		b = b[n:]

		if typ == protowire.BytesType {
			v, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return 0, 0, 0, 0, false
			}
			fields[num] = string(v)
			b = b[m:]
			continue
		}
		m := protowire.ConsumeFieldValue(num, typ, b)
		if m < 0 {
			return 0, 0, 0, 0, false
		}
		b = b[m:]
	}

	var err error
	if bid, err = parseWireFloat(fields[btBidPrice]); err != nil {
		return 0, 0, 0, 0, false
	}
	if ask, err = parseWireFloat(fields[btAskPrice]); err != nil {
		return 0, 0, 0, 0, false
	}
	// quantities are informational; tolerate their absence
	bidQty, _ = parseWireFloat(fields[btBidQty])
	askQty, _ = parseWireFloat(fields[btAskQty])
	return bid, bidQty, ask, askQty, true
}

func parseWireFloat(s string) (float64, error) {
	if s == "" {
		return 0, errors.New("empty numeric field")
	}
	return strconv.ParseFloat(s, 64)
}

// channelSymbol 从频道名末段兜底提取交易对
// 例: spot@public.aggre.bookTicker.v3.api.pb@100ms@BTCUSDT -> BTCUSDT
func channelSymbol(channel string) string {
	for i := len(channel) - 1; i >= 0; i-- {
		if channel[i] == '@' {
			return channel[i+1:]
		}
	}
	return ""
}
