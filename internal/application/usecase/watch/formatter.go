package watch

import (
	"fmt"
	"strings"
)

const (
	ansiReset    = "\033[0m"
	ansiGreen    = "\033[32m"
	ansiYellow   = "\033[33m"
	ansiDim      = "\033[2m"
	ansiClearEOL = "\033[K"
)

func colorize(s, c string) string { return c + s + ansiReset }

// Stats 状态行的一帧输入
type Stats struct {
	SpotQuotes     uint64
	FuturesQuotes  uint64
	SpotSymbols    int
	FuturesSymbols int
	Opportunities  int
	Crossings      uint64
}

type Formatter struct{}

func NewFormatter() *Formatter { return &Formatter{} }

type RenderMode int

const (
	RenderLive RenderMode = iota
	RenderSnapshot
)

func (f *Formatter) Render(st Stats, mode RenderMode) string {
	var sb strings.Builder
	if mode == RenderLive {
		sb.WriteString("\r")
	}

	sb.WriteString(colorize("[SFARB] ", ansiDim))
	sb.WriteString(fmt.Sprintf("spot %d quotes/%d syms", st.SpotQuotes, st.SpotSymbols))
	sb.WriteString(colorize(" || ", ansiDim))
	sb.WriteString(fmt.Sprintf("fut %d quotes/%d syms", st.FuturesQuotes, st.FuturesSymbols))
	sb.WriteString(colorize(" || ", ansiDim))

	oppStr := fmt.Sprintf("opps %d", st.Opportunities)
	if st.Opportunities > 0 {
		sb.WriteString(colorize(oppStr, ansiGreen))
	} else {
		sb.WriteString(colorize(oppStr, ansiYellow))
	}
	sb.WriteString(colorize(" || ", ansiDim))
	sb.WriteString(fmt.Sprintf("crossings %d", st.Crossings))

	if mode == RenderLive {
		sb.WriteString(ansiClearEOL)
	}
	return sb.String()
}
