// Command ratepublish writes one market-rate tick to the feed topic.
//
//	ratepublish --pair USD/KRW --buy 1385.20 --sell 1383.10
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fx-forward-desk/internal/config"
	"fx-forward-desk/internal/logging"
	"fx-forward-desk/internal/ratefeed"
)

func main() {
	configPath := flag.String("config", os.Getenv("FXDESK_CONFIG"), "YAML config file (optional)")
	brokers := flag.String("brokers", "", "Comma-separated Kafka brokers (default: kafka.brokers)")
	topic := flag.String("topic", "", "Topic (default: kafka.topic)")
	pair := flag.String("pair", "", "Pair symbol or ID, e.g. USD/KRW")
	buy := flag.String("buy", "", "Buy rate")
	sell := flag.String("sell", "", "Sell rate")
	source := flag.String("source", "", "Rate source (default: market.source)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Log.Level, "console")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	tick, err := buildTick(*pair, *buy, *sell, firstNonEmpty(*source, cfg.Market.Source), time.Now().UTC())
	if err != nil {
		logger.Fatal("invalid tick", zap.Error(err))
	}

	brokerList := cfg.Kafka.Brokers
	if *brokers != "" {
		brokerList = strings.Split(*brokers, ",")
	}
	if len(brokerList) == 0 {
		logger.Fatal("no brokers: set --brokers or kafka.brokers")
	}
	topicName := firstNonEmpty(*topic, cfg.Kafka.Topic)

	writer := ratefeed.NewKafkaWriter(brokerList, topicName)
	defer writer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := ratefeed.NewPublisher(writer).Publish(ctx, tick); err != nil {
		logger.Fatal("publish failed", zap.Error(err))
	}
	logger.Info("tick published",
		zap.String("topic", topicName),
		zap.String("pair", tick.Pair),
		zap.String("buy", tick.Buy.String()),
		zap.String("sell", tick.Sell.String()),
	)
}

func buildTick(pair, buy, sell, source string, ts time.Time) (ratefeed.Tick, error) {
	b, err := decimal.NewFromString(buy)
	if err != nil {
		return ratefeed.Tick{}, fmt.Errorf("buy: %w", err)
	}
	s, err := decimal.NewFromString(sell)
	if err != nil {
		return ratefeed.Tick{}, fmt.Errorf("sell: %w", err)
	}
	t := ratefeed.Tick{Pair: pair, Buy: b, Sell: s, Source: source, TS: ts}
	return t, t.Validate()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
