package watch

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"sfarb/internal/application/port"
	"sfarb/internal/application/service"
	"sfarb/internal/domain/model"
)

type ServiceDeps struct {
	Feeds      []port.Feed
	Symbols    []string // working set from discovery
	Volumes    *service.VolumeCache
	Writer     *service.OpportunityWriter
	Sink       port.Sink
	Blacklist  []string
	MinVolume  float64
	ScanEvery  time.Duration
	FlushEvery time.Duration
	SnapEvery  time.Duration
}

// Service 主循环：行情进盘面，固定 tick 扫价差，去抖落库
type Service struct {
	deps      ServiceDeps
	board     *Board
	engine    *Engine
	fmt       *Formatter
	crossings uint64
	lastOpps  int
}

func NewService(deps ServiceDeps) *Service {
	if deps.ScanEvery <= 0 {
		deps.ScanEvery = time.Second
	}
	if deps.FlushEvery <= 0 {
		deps.FlushEvery = time.Second
	}
	if deps.SnapEvery <= 0 {
		deps.SnapEvery = 5 * time.Minute
	}
	return &Service{
		deps:   deps,
		board:  NewBoard(),
		engine: NewEngine(deps.Blacklist, deps.MinVolume),
		fmt:    NewFormatter(),
	}
}

func (s *Service) Run(ctx context.Context) error {
	if len(s.deps.Feeds) == 0 {
		return errors.New("no feeds")
	}
	if len(s.deps.Symbols) == 0 {
		log.Warn().Msg("empty working set, nothing to monitor")
	}

	merged := make(chan model.Quote, 1024)

	// start feeds
	for _, feed := range s.deps.Feeds {
		ch, err := feed.Subscribe(ctx, s.deps.Symbols)
		if err != nil {
			return err
		}
		go func(in <-chan model.Quote) {
			for {
				select {
				case <-ctx.Done():
					return
				case q, ok := <-in:
					if !ok {
						return
					}
					merged <- q
				}
			}
		}(ch)

		log.Info().Str("feed", feed.Name()).Int("symbols", len(s.deps.Symbols)).Msg("feed started")
	}

	scanTicker := time.NewTicker(s.deps.ScanEvery)
	defer scanTicker.Stop()
	flushTicker := time.NewTicker(s.deps.FlushEvery)
	defer flushTicker.Stop()
	snapTicker := time.NewTicker(s.deps.SnapEvery)
	defer snapTicker.Stop()

	_ = s.deps.Sink.WriteLive(s.fmt.Render(s.stats(), RenderLive))

	for {
		select {
		case <-ctx.Done():
			_ = s.deps.Sink.NewLine()
			return ctx.Err()

		case q := <-merged:
			s.board.Apply(q)

		case now := <-scanTicker.C:
			s.scan(ctx, now)

		case <-flushTicker.C:
			s.deps.Writer.Flush(ctx)

		case now := <-snapTicker.C:
			_ = s.deps.Sink.WriteSnapshot(now, s.fmt.Render(s.stats(), RenderSnapshot))
		}
	}
}

func (s *Service) scan(ctx context.Context, now time.Time) {
	var volumes func(string) float64
	if s.deps.Volumes != nil {
		volumes = s.deps.Volumes.Get
	}

	opps, crossings := s.engine.Scan(s.board, volumes, now.UnixMilli())
	for _, opp := range opps {
		s.deps.Writer.Enqueue(opp)
	}
	for _, c := range crossings {
		log.Info().Str("symbol", c.Symbol).Float64("exit_pct", c.ExitPct).Msg("crossing detected")
		s.deps.Writer.RecordCrossing(ctx, c)
	}

	s.lastOpps = len(opps)
	s.crossings += uint64(len(crossings))
	_ = s.deps.Sink.WriteLive(s.fmt.Render(s.stats(), RenderLive))
}

func (s *Service) stats() Stats {
	spotQ, futQ, spotSyms, futSyms := s.board.Counts()
	return Stats{
		SpotQuotes:     spotQ,
		FuturesQuotes:  futQ,
		SpotSymbols:    spotSyms,
		FuturesSymbols: futSyms,
		Opportunities:  s.lastOpps,
		Crossings:      s.crossings,
	}
}
