package exchange

import "strings"

// Blocklist decides whether a base asset is tradable for spread monitoring.
// Exact entries remove stablecoins, wrapped assets and platform bans; substring
// entries remove leveraged tokens and fiat-quoted bases. Keep both lists
// data-driven: protocol drift is a one-line change here, nowhere else.
type Blocklist struct {
	exact      map[string]struct{}
	substrings []string
}

var defaultExact = []string{
	// stablecoins
	"USDC", "TUSD", "DAI", "FDUSD", "BUSD", "USDE", "USDP", "PYUSD",
	// wrapped assets
	"WBTC", "WETH", "WBETH", "STETH",
	// platform-specific bans
	"MX", "USTC",
}

var defaultSubstrings = []string{
	// leveraged token markers
	"3L", "3S", "4L", "4S", "5L", "5S",
	// fiat currency codes
	"EUR", "GBP", "TRY", "BRL",
}

// NewBlocklist 使用内置名单创建过滤器
func NewBlocklist() *Blocklist {
	return NewBlocklistWith(defaultExact, defaultSubstrings)
}

// NewBlocklistWith 使用自定义名单创建过滤器（测试与配置扩展用）
func NewBlocklistWith(exact, substrings []string) *Blocklist {
	m := make(map[string]struct{}, len(exact))
	for _, e := range exact {
		e = strings.ToUpper(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		m[e] = struct{}{}
	}
	subs := make([]string, 0, len(substrings))
	for _, s := range substrings {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		subs = append(subs, s)
	}
	return &Blocklist{exact: m, substrings: subs}
}

// Blocked reports whether the symbol must be excluded from discovery.
func (b *Blocklist) Blocked(symbol string) bool {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if sym == "" {
		return true
	}
	if _, ok := b.exact[sym]; ok {
		return true
	}
	for _, sub := range b.substrings {
		if strings.Contains(sym, sub) {
			return true
		}
	}
	return false
}
