package market

// HistQuery describes a candlestick history request.
type HistQuery struct {
	Symbol     string
	Interval   string // minute, hour, day, week, month
	Multiplier int
	StartDate  string // YYYY-MM-DD, empty for no lower bound
	EndDate    string // YYYY-MM-DD, empty for no upper bound
	Adjust     string // none, qfq, hfq
}

// BoardKind selects between the two board taxonomies.
type BoardKind string

const (
	BoardIndustry BoardKind = "industry"
	BoardConcept  BoardKind = "concept"
)

// MacroIndicator names a macro-economic data series.
type MacroIndicator string

const (
	MacroMoneySupply  MacroIndicator = "money_supply"
	MacroGDP          MacroIndicator = "gdp"
	MacroCPI          MacroIndicator = "cpi"
	MacroPMI          MacroIndicator = "pmi"
	MacroStockSummary MacroIndicator = "stock_summary"
	MacroAll          MacroIndicator = "all"
)

// MacroIndicators lists the individual series aggregated by MacroAll.
func MacroIndicators() []MacroIndicator {
	return []MacroIndicator{MacroMoneySupply, MacroGDP, MacroCPI, MacroPMI, MacroStockSummary}
}

// Screen names a technical rank screen.
type Screen string

const (
	ScreenNewHigh         Screen = "new_high"
	ScreenNewLow          Screen = "new_low"
	ScreenVolumeSurge     Screen = "volume_surge"
	ScreenConsecutiveRise Screen = "consecutive_rise"
	ScreenBreakout        Screen = "breakout"
)

// Screens lists every supported rank screen.
func Screens() []string {
	return []string{
		string(ScreenNewHigh), string(ScreenNewLow), string(ScreenVolumeSurge),
		string(ScreenConsecutiveRise), string(ScreenBreakout),
	}
}

// TimeInfo is the get_time_info result.
type TimeInfo struct {
	ISOFormat      string  `json:"iso_format"`
	Timestamp      float64 `json:"timestamp"`
	LastTradingDay string  `json:"last_trading_day"`
}
