package features

import "math"

// Rolling and exponential indicator math over daily close series.
//
// All functions return slices aligned with the input; positions without a
// full window carry NaN. NaN rows are dropped later by the engineer, never
// back-filled, so no synthetic history enters a sequence.

// RollingMean computes the simple moving average over `window` points.
func RollingMean(xs []float64, window int) []float64 {
	out := nanSlice(len(xs))
	if window <= 0 || len(xs) < window {
		return out
	}
	sum := 0.0
	for i, x := range xs {
		sum += x
		if i >= window {
			sum -= xs[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// RollingStd computes the rolling sample standard deviation (ddof=1).
func RollingStd(xs []float64, window int) []float64 {
	out := nanSlice(len(xs))
	if window <= 1 || len(xs) < window {
		return out
	}
	for i := window - 1; i < len(xs); i++ {
		sum := 0.0
		for j := i - window + 1; j <= i; j++ {
			sum += xs[j]
		}
		mean := sum / float64(window)
		var ss float64
		for j := i - window + 1; j <= i; j++ {
			d := xs[j] - mean
			ss += d * d
		}
		out[i] = math.Sqrt(ss / float64(window-1))
	}
	return out
}

// EMA computes the exponential moving average with alpha = 2/(span+1),
// seeded at the first value.
func EMA(xs []float64, span int) []float64 {
	out := nanSlice(len(xs))
	if len(xs) == 0 || span <= 0 {
		return out
	}
	alpha := 2.0 / (float64(span) + 1.0)
	out[0] = xs[0]
	for i := 1; i < len(xs); i++ {
		out[i] = alpha*xs[i] + (1-alpha)*out[i-1]
	}
	return out
}

// LogReturns computes ln(p_t / p_{t-1}); the first position is NaN.
func LogReturns(prices []float64) []float64 {
	out := nanSlice(len(prices))
	for i := 1; i < len(prices); i++ {
		out[i] = math.Log(prices[i] / prices[i-1])
	}
	return out
}

// PctChange computes the percentage change over `periods` steps, in percent.
// The first `periods` positions are NaN.
func PctChange(xs []float64, periods int) []float64 {
	out := nanSlice(len(xs))
	for i := periods; i < len(xs); i++ {
		out[i] = (xs[i] - xs[i-periods]) / xs[i-periods] * 100
	}
	return out
}

// RSI computes the 14-period (by default) relative strength index from
// rolling means of positive and negative deltas:
//
//	RS  = mean(gains, period) / mean(losses, period)
//	RSI = 100 - 100/(1+RS)
//
// A zero-loss window with gains yields 100; a flat window yields NaN.
func RSI(prices []float64, period int) []float64 {
	n := len(prices)
	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		d := prices[i] - prices[i-1]
		if d > 0 {
			gains[i] = d
		} else {
			losses[i] = -d
		}
	}
	gain := RollingMean(gains, period)
	loss := RollingMean(losses, period)
	out := nanSlice(n)
	for i := range out {
		rs := gain[i] / loss[i] // 0/0 is NaN, x/0 is +Inf: both intended
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

// MACD computes the 12/26 EMA difference and its 9-period signal line.
func MACD(prices []float64, fast, slow, signal int) (macd, macdSignal []float64) {
	emaFast := EMA(prices, fast)
	emaSlow := EMA(prices, slow)
	macd = make([]float64, len(prices))
	for i := range prices {
		macd[i] = emaFast[i] - emaSlow[i]
	}
	macdSignal = EMA(macd, signal)
	return macd, macdSignal
}

// BollingerBands computes mean(window) ± k·std(window) bands.
func BollingerBands(prices []float64, window int, k float64) (upper, lower []float64) {
	mid := RollingMean(prices, window)
	std := RollingStd(prices, window)
	upper = nanSlice(len(prices))
	lower = nanSlice(len(prices))
	for i := range prices {
		upper[i] = mid[i] + k*std[i]
		lower[i] = mid[i] - k*std[i]
	}
	return upper, lower
}

// Mean returns the arithmetic mean, or NaN for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Std returns the population standard deviation (ddof=0).
func Std(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	mean := Mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}

// SampleStd returns the sample standard deviation (ddof=1).
func SampleStd(xs []float64) float64 {
	if len(xs) < 2 {
		return math.NaN()
	}
	mean := Mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
