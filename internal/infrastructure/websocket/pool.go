package websocket

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Config 连接池配置。Subscribe/Heartbeat/OnMessage 由具体市场注入，
// 池本身不关心帧的内容。
type Config struct {
	Name           string // feed name, for logs
	URL            string
	BatchSize      int           // max symbols per connection
	ConnectDelay   time.Duration // stagger between opening slots (rate-limit avoidance)
	ReconnectDelay time.Duration // fixed delay after any drop
	DialTimeout    time.Duration
	HeartbeatEvery time.Duration
	ReadDeadline   time.Duration

	// Subscribe 在连接建立后发送该 slot 的订阅请求
	Subscribe func(conn *websocket.Conn, symbols []string) error
	// Heartbeat 发送市场特定的保活帧
	Heartbeat func(conn *websocket.Conn) error
	// OnMessage 处理每一条入站帧；单帧错误必须在内部消化
	OnMessage func(msgType int, data []byte)
}

// Pool owns one websocket connection per symbol batch. Slots keep their index
// and symbol subset for the whole process lifetime; a drop replaces only the
// underlying connection, after a fixed delay. Cancelling the ctx passed to
// Connect is the terminal disconnect.
type Pool struct {
	cfg  Config
	wg   sync.WaitGroup
	open atomic.Int32
}

func NewPool(cfg Config) (*Pool, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("ws url empty")
	}
	if cfg.BatchSize <= 0 {
		return nil, errors.New("batch size must be positive")
	}
	if cfg.Subscribe == nil || cfg.OnMessage == nil {
		return nil, errors.New("subscribe and onMessage handlers required")
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 5 * time.Second
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	if cfg.HeartbeatEvery <= 0 {
		cfg.HeartbeatEvery = 30 * time.Second
	}
	if cfg.ReadDeadline <= 0 {
		cfg.ReadDeadline = 90 * time.Second
	}
	return &Pool{cfg: cfg}, nil
}

// Partition 将符号列表切成不超过 size 的批次，保持原有顺序
func Partition(symbols []string, size int) [][]string {
	if size <= 0 || len(symbols) == 0 {
		return nil
	}
	batches := make([][]string, 0, (len(symbols)+size-1)/size)
	for start := 0; start < len(symbols); start += size {
		end := start + size
		if end > len(symbols) {
			end = len(symbols)
		}
		batches = append(batches, symbols[start:end])
	}
	return batches
}

// Connect partitions symbols into slots and starts one goroutine per slot,
// staggered by ConnectDelay. Returns the number of slots started.
func (p *Pool) Connect(ctx context.Context, symbols []string) int {
	batches := Partition(symbols, p.cfg.BatchSize)
	for i, batch := range batches {
		if i > 0 && p.cfg.ConnectDelay > 0 {
			if !sleepCtx(ctx, p.cfg.ConnectDelay) {
				return i
			}
		}
		p.wg.Add(1)
		go p.runSlot(ctx, i, batch)
	}
	return len(batches)
}

// OpenSlots 当前处于 Open 状态的连接数
func (p *Pool) OpenSlots() int {
	return int(p.open.Load())
}

// Wait blocks until every slot goroutine has exited (after ctx cancellation).
func (p *Pool) Wait() {
	p.wg.Wait()
}

func (p *Pool) runSlot(ctx context.Context, index int, symbols []string) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		log.Debug().Str("feed", p.cfg.Name).Int("slot", index).
			Int("symbols", len(symbols)).Msg("ws connecting")

		cctx, cancel := context.WithTimeout(ctx, p.cfg.DialTimeout)
		conn, _, err := websocket.DefaultDialer.DialContext(cctx, p.cfg.URL, nil)
		cancel()
		if err != nil {
			log.Error().Str("feed", p.cfg.Name).Int("slot", index).Err(err).Msg("ws dial failed")
			if !sleepCtx(ctx, p.cfg.ReconnectDelay) {
				return
			}
			continue
		}

		if err := p.cfg.Subscribe(conn, symbols); err != nil {
			_ = conn.Close()
			log.Error().Str("feed", p.cfg.Name).Int("slot", index).Err(err).Msg("subscribe failed")
			if !sleepCtx(ctx, p.cfg.ReconnectDelay) {
				return
			}
			continue
		}

		p.open.Add(1)
		log.Info().Str("feed", p.cfg.Name).Int("slot", index).
			Int("symbols", len(symbols)).Msg("ws connected & subscribed")

		err = p.readLoop(ctx, conn)
		_ = conn.Close()
		p.open.Add(-1)

		if ctx.Err() != nil {
			return
		}

		log.Warn().Str("feed", p.cfg.Name).Int("slot", index).Err(err).
			Msg("ws disconnected, reconnecting")
		if !sleepCtx(ctx, p.cfg.ReconnectDelay) {
			return
		}
	}
}

func (p *Pool) readLoop(ctx context.Context, conn *websocket.Conn) error {
	_ = conn.SetReadDeadline(time.Now().Add(p.cfg.ReadDeadline))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(p.cfg.ReadDeadline))
		return nil
	})

	hbTicker := time.NewTicker(p.cfg.HeartbeatEvery)
	defer hbTicker.Stop()

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		for {
			mt, b, err := conn.ReadMessage()
			if err != nil {
				errCh <- err
				return
			}
			_ = conn.SetReadDeadline(time.Now().Add(p.cfg.ReadDeadline))
			p.cfg.OnMessage(mt, b)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errCh:
			return err
		case <-hbTicker.C:
			if p.cfg.Heartbeat != nil {
				if err := p.cfg.Heartbeat(conn); err != nil {
					return err
				}
			}
		}
	}
}

// sleepCtx 可被 ctx 打断的 sleep；返回 false 表示 ctx 已取消
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
