package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rxtech-lab/argo-fills/internal/brokerage"
	"github.com/rxtech-lab/argo-fills/internal/datasource"
	"github.com/rxtech-lab/argo-fills/internal/engine"
	"github.com/rxtech-lab/argo-fills/internal/eventlog"
	"github.com/rxtech-lab/argo-fills/internal/logger"
	"github.com/rxtech-lab/argo-fills/internal/scenario"
	"github.com/rxtech-lab/argo-fills/internal/types"
	"github.com/rxtech-lab/argo-fills/internal/version"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newLogger(cmd *cli.Command) (*logger.Logger, error) {
	level, err := zapcore.ParseLevel(cmd.String("log-level"))
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	return logger.NewLoggerWithLevel(level)
}

// prepare loads the scenario and creates an engine holding its securities.
func prepare(cmd *cli.Command, log *logger.Logger) (*scenario.Scenario, *engine.TransactionHandler, error) {
	sc, err := scenario.Load(cmd.String("scenario"))
	if err != nil {
		return nil, nil, err
	}

	handler, err := engine.NewTransactionHandler(sc.Config, nil, log)
	if err != nil {
		return nil, nil, err
	}

	if _, err := sc.AddSecurities(handler); err != nil {
		handler.Close()

		return nil, nil, err
	}

	return sc, handler, nil
}

// runAction replays a scenario and prints the resulting orders and balances.
func runAction(ctx context.Context, cmd *cli.Command) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	sc, handler, err := prepare(cmd, log)
	if err != nil {
		return err
	}
	defer handler.Close()

	runner := scenario.NewRunner(handler, sc, log)
	bars := scenario.BarIterator(sc.InlineBars())
	total := len(sc.Bars)

	if len(sc.BarFiles) > 0 {
		source, err := datasource.NewBarSource(sc.BarPeriod, log)
		if err != nil {
			return err
		}
		defer source.Close()

		if err := source.Initialize(sc.BarFiles...); err != nil {
			return err
		}

		total, err = source.Count(sc.Config.StartTime, sc.Config.EndTime)
		if err != nil {
			return err
		}

		bars = source.ReadAll(sc.Config.StartTime, sc.Config.EndTime)
	}

	if !cmd.Bool("quiet") {
		bar := progressbar.Default(int64(total), "replaying")
		defer bar.Finish()

		runner.OnProgress(func(n int) {
			_ = bar.Add(n)
		})
	}

	result, err := runner.Run(ctx, bars)
	if err != nil {
		return fmt.Errorf("replay failed: %w", err)
	}

	printResult(cmd.Root().Writer, handler.Config().AccountCurrency, result)

	if name := cmd.String("results"); name != "" {
		if err := handler.WriteResults(name); err != nil {
			return fmt.Errorf("failed to write results: %w", err)
		}

		folder := filepath.Join(handler.Config().ResultsFolder, name)
		stats := scenario.NewRunStats(&result, handler.Config().AccountCurrency, cmd.String("scenario"))
		stats.OrdersFilePath = filepath.Join(folder, eventlog.OrdersFileName)
		stats.EventsFilePath = filepath.Join(folder, eventlog.EventsFileName)

		if err := scenario.WriteRunStats(filepath.Join(folder, scenario.StatsFileName), stats); err != nil {
			return fmt.Errorf("failed to write results: %w", err)
		}

		log.Info("Results written", zap.String("folder", handler.Config().ResultsFolder), zap.String("name", name))
	}

	return nil
}

// liveAction submits the scenario orders linked to Binance orders and fills them from the account trades.
func liveAction(ctx context.Context, cmd *cli.Command) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	sc, handler, err := prepare(cmd, log)
	if err != nil {
		return err
	}
	defer handler.Close()

	linked := make(map[int64]int64)

	for _, entry := range sc.SortedOrders() {
		if entry.BinanceOrderID == 0 {
			continue
		}

		order := entry.Order()
		if _, err := handler.SubmitOrder(order); err != nil {
			return fmt.Errorf("failed to submit order for binance order %d: %w", entry.BinanceOrderID, err)
		}

		linked[entry.BinanceOrderID] = order.ID
	}

	if len(linked) == 0 {
		return fmt.Errorf("scenario has no orders with a binance_order_id")
	}

	var symbols []brokerage.BinanceSymbol

	for _, entry := range sc.Securities {
		if entry.Type == types.SecurityTypeCrypto {
			symbols = append(symbols, brokerage.BinanceSymbol{Symbol: entry.Symbol, QuoteCurrency: entry.QuoteCurrency})
		}
	}

	config := brokerage.DefaultBinanceExecutionSourceConfig(symbols...)
	config.Since = time.Now().Add(-cmd.Duration("lookback"))

	executions := brokerage.NewExecutionHandler(handler, handler.HandleOrderEvent, handler.Portfolio().CashBook().ConvertToAccountCurrency, log)
	mapper := func(binanceOrderID int64) (int64, bool) {
		id, ok := linked[binanceOrderID]

		return id, ok
	}

	client := brokerage.NewBinanceClient(os.Getenv("BINANCE_API_KEY"), os.Getenv("BINANCE_SECRET_KEY"), cmd.Bool("testnet"))

	source, err := brokerage.NewBinanceExecutionSource(client, executions, mapper, config, log)
	if err != nil {
		return err
	}

	handler.OnOrderEvent(func(event types.OrderEvent) {
		log.Info("Order event", zap.String("event", event.String()))
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Polling binance trades", zap.Int("orders", len(linked)), zap.Int("symbols", len(symbols)))

	if err := source.Run(ctx, cmd.Duration("interval")); err != nil {
		return err
	}

	printResult(cmd.Root().Writer, handler.Config().AccountCurrency, scenario.Result{
		Orders:              handler.GetOrders(),
		Cash:                handler.Portfolio().Cash(),
		UnsettledCash:       handler.Portfolio().UnsettledCash(),
		TotalPortfolioValue: handler.Portfolio().TotalPortfolioValue(),
		TotalFees:           handler.Portfolio().TotalFees(),
		TotalNetProfit:      handler.Portfolio().TotalNetProfit(),
	})

	return nil
}

func printResult(out io.Writer, currency string, result scenario.Result) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "ID\tSYMBOL\tTYPE\tQUANTITY\tSTATUS\tTAG")

	for _, order := range result.Orders {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", order.ID, order.Symbol, order.Type, order.Quantity, order.Status(), order.Tag)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Bars\t%d\n", result.Bars)
	fmt.Fprintf(w, "Order events\t%d\n", result.Events)
	fmt.Fprintf(w, "Rejected orders\t%d\n", result.Rejected)
	fmt.Fprintf(w, "Rejected updates\t%d\n", result.RejectedUpdates)
	fmt.Fprintf(w, "Unresolved margin calls\t%d\n", result.UnresolvedMarginCalls)
	fmt.Fprintf(w, "Cash\t%s %s\n", result.Cash.StringFixed(2), currency)
	fmt.Fprintf(w, "Unsettled cash\t%s %s\n", result.UnsettledCash.StringFixed(2), currency)
	fmt.Fprintf(w, "Portfolio value\t%s %s\n", result.TotalPortfolioValue.StringFixed(2), currency)
	fmt.Fprintf(w, "Fees\t%s %s\n", result.TotalFees.StringFixed(2), currency)
	fmt.Fprintf(w, "Net profit\t%s %s\n", result.TotalNetProfit.StringFixed(2), currency)

	w.Flush()
}

func newCommand() *cli.Command {
	scenarioFlag := &cli.StringFlag{
		Name:     "scenario",
		Aliases:  []string{"s"},
		Usage:    "Path to the scenario `FILE`",
		Required: true,
	}
	logLevelFlag := &cli.StringFlag{
		Name:  "log-level",
		Usage: "Log level (debug, info, warn, error)",
		Value: "warn",
	}

	return &cli.Command{
		Name:    "fillsim",
		Usage:   "Simulate order fills, fees, settlement and margin for a scenario",
		Version: version.GetVersion(),
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Replay the scenario bars and orders",
				Flags: []cli.Flag{
					scenarioFlag,
					logLevelFlag,
					&cli.StringFlag{
						Name:    "results",
						Aliases: []string{"r"},
						Usage:   "Export the event log to this folder under the results folder",
					},
					&cli.BoolFlag{
						Name:    "quiet",
						Aliases: []string{"q"},
						Usage:   "Hide the progress bar",
					},
				},
				Action: runAction,
			},
			{
				Name:  "live",
				Usage: "Fill the scenario orders from Binance account trades (BINANCE_API_KEY, BINANCE_SECRET_KEY)",
				Flags: []cli.Flag{
					scenarioFlag,
					logLevelFlag,
					&cli.DurationFlag{
						Name:  "interval",
						Usage: "Polling interval",
						Value: 5 * time.Second,
					},
					&cli.DurationFlag{
						Name:  "lookback",
						Usage: "Fetch trades this far back on the first poll",
						Value: 24 * time.Hour,
					},
					&cli.BoolFlag{
						Name:  "testnet",
						Usage: "Use the Binance testnet",
					},
				},
				Action: liveAction,
			},
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
