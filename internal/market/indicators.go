package market

import (
	"strings"

	talib "github.com/markcheno/go-talib"

	"github.com/hsliu/cnstock/internal/common"
)

// ohlcv holds the price series an indicator computes from. Series are
// extracted from the candlestick table once and shared across indicators.
type ohlcv struct {
	open, high, low, close, volume []float64
}

// indicatorSpec binds an indicator name to its output columns and the
// computation producing them. Periods follow the conventional defaults.
type indicatorSpec struct {
	columns []string
	minRows int
	compute func(d *ohlcv) [][]float64
}

var indicatorSpecs = map[string]indicatorSpec{
	"sma": {
		columns: []string{"sma"}, minRows: 20,
		compute: func(d *ohlcv) [][]float64 { return [][]float64{talib.Sma(d.close, 20)} },
	},
	"ema": {
		columns: []string{"ema"}, minRows: 20,
		compute: func(d *ohlcv) [][]float64 { return [][]float64{talib.Ema(d.close, 20)} },
	},
	"rsi": {
		columns: []string{"rsi"}, minRows: 15,
		compute: func(d *ohlcv) [][]float64 { return [][]float64{talib.Rsi(d.close, 14)} },
	},
	"macd": {
		columns: []string{"macd", "macd_signal", "macd_hist"}, minRows: 34,
		compute: func(d *ohlcv) [][]float64 {
			macd, signal, hist := talib.Macd(d.close, 12, 26, 9)
			return [][]float64{macd, signal, hist}
		},
	},
	"boll": {
		columns: []string{"boll_upper", "boll_middle", "boll_lower"}, minRows: 20,
		compute: func(d *ohlcv) [][]float64 {
			upper, middle, lower := talib.BBands(d.close, 20, 2, 2, talib.SMA)
			return [][]float64{upper, middle, lower}
		},
	},
	"stoch": {
		columns: []string{"stoch_k", "stoch_d"}, minRows: 17,
		compute: func(d *ohlcv) [][]float64 {
			k, dd := talib.Stoch(d.high, d.low, d.close, 14, 3, talib.SMA, 3, talib.SMA)
			return [][]float64{k, dd}
		},
	},
	"atr": {
		columns: []string{"atr"}, minRows: 15,
		compute: func(d *ohlcv) [][]float64 { return [][]float64{talib.Atr(d.high, d.low, d.close, 14)} },
	},
	"cci": {
		columns: []string{"cci"}, minRows: 14,
		compute: func(d *ohlcv) [][]float64 { return [][]float64{talib.Cci(d.high, d.low, d.close, 14)} },
	},
	"adx": {
		columns: []string{"adx"}, minRows: 28,
		compute: func(d *ohlcv) [][]float64 { return [][]float64{talib.Adx(d.high, d.low, d.close, 14)} },
	},
	"willr": {
		columns: []string{"willr"}, minRows: 14,
		compute: func(d *ohlcv) [][]float64 { return [][]float64{talib.WillR(d.high, d.low, d.close, 14)} },
	},
	"ad": {
		columns: []string{"ad"}, minRows: 1,
		compute: func(d *ohlcv) [][]float64 { return [][]float64{talib.Ad(d.high, d.low, d.close, d.volume)} },
	},
	"adosc": {
		columns: []string{"adosc"}, minRows: 10,
		compute: func(d *ohlcv) [][]float64 {
			return [][]float64{talib.AdOsc(d.high, d.low, d.close, d.volume, 3, 10)}
		},
	},
	"obv": {
		columns: []string{"obv"}, minRows: 1,
		compute: func(d *ohlcv) [][]float64 { return [][]float64{talib.Obv(d.close, d.volume)} },
	},
	"mom": {
		columns: []string{"mom"}, minRows: 11,
		compute: func(d *ohlcv) [][]float64 { return [][]float64{talib.Mom(d.close, 10)} },
	},
	"sar": {
		columns: []string{"sar"}, minRows: 2,
		compute: func(d *ohlcv) [][]float64 { return [][]float64{talib.Sar(d.high, d.low, 0.02, 0.2)} },
	},
	"tsf": {
		columns: []string{"tsf"}, minRows: 14,
		compute: func(d *ohlcv) [][]float64 { return [][]float64{talib.Tsf(d.close, 14)} },
	},
	"apo": {
		columns: []string{"apo"}, minRows: 26,
		compute: func(d *ohlcv) [][]float64 { return [][]float64{talib.Apo(d.close, 12, 26, talib.SMA)} },
	},
	"aroon": {
		columns: []string{"aroon_down", "aroon_up"}, minRows: 15,
		compute: func(d *ohlcv) [][]float64 {
			down, up := talib.Aroon(d.high, d.low, 14)
			return [][]float64{down, up}
		},
	},
	"aroonosc": {
		columns: []string{"aroonosc"}, minRows: 15,
		compute: func(d *ohlcv) [][]float64 { return [][]float64{talib.AroonOsc(d.high, d.low, 14)} },
	},
	"bop": {
		columns: []string{"bop"}, minRows: 1,
		compute: func(d *ohlcv) [][]float64 { return [][]float64{talib.Bop(d.open, d.high, d.low, d.close)} },
	},
	"cmo": {
		columns: []string{"cmo"}, minRows: 15,
		compute: func(d *ohlcv) [][]float64 { return [][]float64{talib.Cmo(d.close, 14)} },
	},
	"dx": {
		columns: []string{"dx"}, minRows: 15,
		compute: func(d *ohlcv) [][]float64 { return [][]float64{talib.Dx(d.high, d.low, d.close, 14)} },
	},
	"mfi": {
		columns: []string{"mfi"}, minRows: 15,
		compute: func(d *ohlcv) [][]float64 {
			return [][]float64{talib.Mfi(d.high, d.low, d.close, d.volume, 14)}
		},
	},
	"minus_di": {
		columns: []string{"minus_di"}, minRows: 15,
		compute: func(d *ohlcv) [][]float64 { return [][]float64{talib.MinusDI(d.high, d.low, d.close, 14)} },
	},
	"minus_dm": {
		columns: []string{"minus_dm"}, minRows: 15,
		compute: func(d *ohlcv) [][]float64 { return [][]float64{talib.MinusDM(d.high, d.low, 14)} },
	},
	"plus_di": {
		columns: []string{"plus_di"}, minRows: 15,
		compute: func(d *ohlcv) [][]float64 { return [][]float64{talib.PlusDI(d.high, d.low, d.close, 14)} },
	},
	"plus_dm": {
		columns: []string{"plus_dm"}, minRows: 15,
		compute: func(d *ohlcv) [][]float64 { return [][]float64{talib.PlusDM(d.high, d.low, 14)} },
	},
	"ppo": {
		columns: []string{"ppo"}, minRows: 26,
		compute: func(d *ohlcv) [][]float64 { return [][]float64{talib.Ppo(d.close, 12, 26, talib.SMA)} },
	},
	"roc": {
		columns: []string{"roc"}, minRows: 11,
		compute: func(d *ohlcv) [][]float64 { return [][]float64{talib.Roc(d.close, 10)} },
	},
	"rocp": {
		columns: []string{"rocp"}, minRows: 11,
		compute: func(d *ohlcv) [][]float64 { return [][]float64{talib.Rocp(d.close, 10)} },
	},
	"rocr": {
		columns: []string{"rocr"}, minRows: 11,
		compute: func(d *ohlcv) [][]float64 { return [][]float64{talib.Rocr(d.close, 10)} },
	},
	"rocr100": {
		columns: []string{"rocr100"}, minRows: 11,
		compute: func(d *ohlcv) [][]float64 { return [][]float64{talib.Rocr100(d.close, 10)} },
	},
	"trix": {
		columns: []string{"trix"}, minRows: 90,
		compute: func(d *ohlcv) [][]float64 { return [][]float64{talib.Trix(d.close, 30)} },
	},
	"ultosc": {
		columns: []string{"ultosc"}, minRows: 29,
		compute: func(d *ohlcv) [][]float64 {
			return [][]float64{talib.UltOsc(d.high, d.low, d.close, 7, 14, 28)}
		},
	},
}

// IndicatorNames lists every supported indicator.
func IndicatorNames() []string {
	names := make([]string, 0, len(indicatorSpecs))
	for name := range indicatorSpecs {
		names = append(names, name)
	}
	return names
}

// ApplyIndicators appends the requested indicator columns to a
// candlestick table in place. Unknown indicators and indicators needing
// more rows than the table holds are skipped with a warning rather than
// failing the whole request.
func ApplyIndicators(log *common.Logger, t *Table, names []string) error {
	if len(names) == 0 {
		return nil
	}

	data := &ohlcv{}
	var err error
	if data.open, err = t.Floats("open"); err != nil {
		return err
	}
	if data.high, err = t.Floats("high"); err != nil {
		return err
	}
	if data.low, err = t.Floats("low"); err != nil {
		return err
	}
	if data.close, err = t.Floats("close"); err != nil {
		return err
	}
	if data.volume, err = t.Floats("volume"); err != nil {
		return err
	}

	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		spec, ok := indicatorSpecs[key]
		if !ok {
			log.Warn().Str("indicator", name).Msg("Unknown indicator skipped")
			continue
		}
		if t.Len() < spec.minRows {
			log.Warn().Str("indicator", name).Int("rows", t.Len()).Msg("Not enough rows for indicator")
			continue
		}
		for i, values := range spec.compute(data) {
			if err := t.AddFloatColumn(spec.columns[i], values); err != nil {
				return err
			}
		}
	}
	return nil
}
