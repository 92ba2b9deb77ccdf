package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/argo-fills/internal/types"
	"github.com/shopspring/decimal"
)

// DataGenerator generates synthetic trade bars for tests and benchmarks.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)), //nolint:gosec // test data
	}
}

// GeneratorConfig configures how bars are generated.
type GeneratorConfig struct {
	// Symbol is the ticker of the bars (e.g., "AAPL", "SPY")
	Symbol string
	// StartTime is the start of the first bar
	StartTime time.Time
	// Interval is the period of each bar
	Interval time.Duration
	// Count is the number of bars to generate
	Count int
	// InitialPrice is the open of the first bar
	InitialPrice float64
	// Volatility controls price movement per bar (0.002 = 0.2%)
	Volatility float64
	// Trend is the drift over the whole series (-0.01 to 0.01 for bearish to bullish)
	Trend float64
	// VolumeBase is the average volume per bar
	VolumeBase float64
	// VolumeVariance is the variance in volume (0.0 to 1.0)
	VolumeVariance float64
	// PriceDecimals is the number of decimals prices are rounded to
	PriceDecimals int32
}

// DefaultConfig returns minute bars starting at the 2024-01-02 NYSE open.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Symbol:         "TEST",
		StartTime:      time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC),
		Interval:       time.Minute,
		Count:          10000,
		InitialPrice:   100.0,
		Volatility:     0.002,
		Trend:          0.0,
		VolumeBase:     10000,
		VolumeVariance: 0.3,
		PriceDecimals:  2,
	}
}

// Generate creates trade bars following a geometric Brownian motion.
func (g *DataGenerator) Generate(config GeneratorConfig) []types.TradeBar {
	bars := make([]types.TradeBar, config.Count)
	currentPrice := config.InitialPrice
	currentTime := config.StartTime

	for i := 0; i < config.Count; i++ {
		open := currentPrice

		// Box-Muller transform for a standard normal draw
		u1 := 1 - g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		drift := config.Trend / float64(config.Count)

		closePrice := open * (1 + config.Volatility*z + drift)
		if closePrice <= 0 {
			closePrice = open * 0.99
		}

		high := math.Max(open, closePrice) + math.Abs(g.rng.Float64()*config.Volatility*open*0.5)
		low := math.Min(open, closePrice) - math.Abs(g.rng.Float64()*config.Volatility*open*0.5)
		if low <= 0 {
			low = math.Min(open, closePrice) * 0.99
		}

		volume := config.VolumeBase * (1.0 + (g.rng.Float64()*2-1)*config.VolumeVariance)
		if volume < 0 {
			volume = config.VolumeBase * 0.1
		}

		bars[i] = types.TradeBar{
			Symbol: config.Symbol,
			Time:   currentTime,
			Period: config.Interval,
			Open:   toDecimal(open, config.PriceDecimals),
			High:   toDecimal(high, config.PriceDecimals),
			Low:    toDecimal(low, config.PriceDecimals),
			Close:  toDecimal(closePrice, config.PriceDecimals),
			Volume: toDecimal(volume, 0),
		}

		// keep the next open equal to the rounded close
		currentPrice = bars[i].Close.InexactFloat64()
		currentTime = currentTime.Add(config.Interval)
	}

	return bars
}

// GenerateMultiSymbol generates bars for multiple symbols.
func (g *DataGenerator) GenerateMultiSymbol(symbols []string, baseConfig GeneratorConfig) []types.TradeBar {
	var allBars []types.TradeBar

	for _, symbol := range symbols {
		config := baseConfig
		config.Symbol = symbol
		config.InitialPrice = baseConfig.InitialPrice * (0.8 + g.rng.Float64()*0.4)
		config.Volatility = baseConfig.Volatility * (0.8 + g.rng.Float64()*0.4)

		allBars = append(allBars, g.Generate(config)...)
	}

	return allBars
}

// Generate10K generates 10,000 minute bars with default settings.
func Generate10K(symbol string) []types.TradeBar {
	gen := NewDataGenerator(42)
	config := DefaultConfig()
	config.Symbol = symbol

	return gen.Generate(config)
}

// toDecimal rounds the float to the given number of decimals. Rounding is monotonic so bar ordering is kept.
func toDecimal(val float64, decimals int32) decimal.Decimal {
	return decimal.NewFromFloat(val).Round(decimals)
}
