package analytics

import (
	"math"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vega-desktop/analytics-backend/pkg/types"
	"github.com/vega-desktop/analytics-backend/pkg/utils"
)

const (
	tradingDays     = 252
	sentinelCapped  = 999 // stands in for +Infinity in ratio metrics
	sentinelNeutral = 1   // neutral profit factor when no wins and no losses
)

// Engine calculates annualized risk-adjusted performance statistics.
// Every output is finite: degenerate inputs resolve to documented
// sentinel values, never NaN or Infinity. Methods are pure and safe for
// concurrent use.
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates a new risk metrics engine.
func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{logger: logger}
}

// Compute calculates the full risk metrics set for a return series.
// Trades, when supplied, take precedence for the profit factor.
func (e *Engine) Compute(returns []float64, trades []types.TradeRecord) types.RiskMetrics {
	return types.RiskMetrics{
		Sharpe:             e.Sharpe(returns),
		Sortino:            e.Sortino(returns),
		ProfitFactor:       e.ProfitFactor(returns, trades),
		Volatility:         e.Volatility(returns),
		DownsideVolatility: e.DownsideVolatility(returns),
		AverageReturn:      utils.Finite(utils.Mean(returns)*tradingDays, 0),
	}
}

// Sharpe returns the annualized Sharpe ratio assuming a zero risk-free
// rate: mean*252 / (stdev*sqrt(252)). Zero-variance series yield 0.
func (e *Engine) Sharpe(returns []float64) float64 {
	stdDev := utils.StdDev(returns)
	if stdDev == 0 {
		return 0
	}

	sharpe := utils.Mean(returns) * tradingDays / (stdDev * math.Sqrt(tradingDays))
	return utils.Finite(sharpe, 0)
}

// Sortino returns the annualized Sortino ratio, dividing by the standard
// deviation of strictly negative returns only. A series with no negative
// returns yields the capped sentinel 999 when the mean is positive,
// otherwise 0.
func (e *Engine) Sortino(returns []float64) float64 {
	negatives := negativeReturns(returns)
	mean := utils.Mean(returns)

	if len(negatives) == 0 {
		if mean > 0 {
			return sentinelCapped
		}
		return 0
	}

	downside := utils.StdDev(negatives)
	if downside == 0 {
		return 0
	}

	sortino := mean * tradingDays / (downside * math.Sqrt(tradingDays))
	return utils.Finite(sortino, 0)
}

// ProfitFactor returns gross profit over gross loss. A discrete trade
// list is preferred, considering only closed trades; daily returns are
// the fallback. Zero gross loss yields 999 with positive gross profit
// and the neutral 1 otherwise.
func (e *Engine) ProfitFactor(returns []float64, trades []types.TradeRecord) float64 {
	var grossProfit, grossLoss float64

	if len(trades) > 0 {
		for _, trade := range trades {
			if !trade.Closed {
				continue
			}
			pnl, _ := trade.PnL.Float64()
			if pnl > 0 {
				grossProfit += pnl
			} else if pnl < 0 {
				grossLoss += -pnl
			}
		}
	} else {
		for _, r := range returns {
			if r > 0 {
				grossProfit += r
			} else if r < 0 {
				grossLoss += -r
			}
		}
	}

	if grossLoss == 0 {
		if grossProfit > 0 {
			return sentinelCapped
		}
		return sentinelNeutral
	}

	return utils.Finite(grossProfit/grossLoss, 0)
}

// Volatility returns the annualized standard deviation of all returns.
func (e *Engine) Volatility(returns []float64) float64 {
	return utils.Finite(utils.StdDev(returns)*math.Sqrt(tradingDays), 0)
}

// DownsideVolatility returns the annualized standard deviation of
// negative returns only.
func (e *Engine) DownsideVolatility(returns []float64) float64 {
	return utils.Finite(utils.StdDev(negativeReturns(returns))*math.Sqrt(tradingDays), 0)
}

// TradePnLs extracts closed-trade P&L values as floats.
func TradePnLs(trades []types.TradeRecord) []float64 {
	pnls := make([]float64, 0, len(trades))
	for _, trade := range trades {
		if !trade.Closed {
			continue
		}
		pnl, _ := trade.PnL.Float64()
		pnls = append(pnls, pnl)
	}
	return pnls
}

// NewTrade builds a closed trade record from a raw P&L value.
func NewTrade(id string, pnl float64) types.TradeRecord {
	return types.TradeRecord{
		ID:     id,
		PnL:    decimal.NewFromFloat(pnl),
		Closed: true,
	}
}

func negativeReturns(returns []float64) []float64 {
	var negatives []float64
	for _, r := range returns {
		if r < 0 {
			negatives = append(negatives, r)
		}
	}
	return negatives
}
