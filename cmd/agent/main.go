package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"freight-auction/src/agent"
	"freight-auction/src/interfaces"
	"freight-auction/src/logger"
	"freight-auction/src/models"
	"freight-auction/src/strategy"
	"freight-auction/src/transport"

	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	serverURL := flag.String("server", "http://127.0.0.1:8090", "auction server base URL")
	auctionID := flag.String("auction", "", "auction id to bid on")
	participantID := flag.String("participant", "", "participant id")
	displayName := flag.String("name", "", "display name (defaults to participant id)")
	floor := flag.String("floor", "", "minimum acceptable price, bids never go below it")
	risk := flag.String("risk", "medium", "risk tolerance: low, medium or high")
	aggressiveness := flag.Int("aggressiveness", 50, "0-100, scales the undercut at high risk")
	frequency := flag.String("frequency", "medium", "bid frequency: low, medium or high")
	logLevel := flag.String("log-level", "INFO", "log level")
	flag.Parse()

	if *auctionID == "" || *participantID == "" {
		fmt.Println("Both -auction and -participant are required")
		flag.Usage()
		os.Exit(1)
	}
	if *displayName == "" {
		*displayName = *participantID
	}

	appLogger := logger.NewLogger(*logLevel, "bid-agent")
	defer appLogger.Sync()

	prefs := models.DefaultPreferenceProfile()
	prefs.AutoBidEnabled = true
	prefs.RiskTolerance = models.RiskTolerance(*risk)
	prefs.Aggressiveness = *aggressiveness
	prefs.Frequency = models.BidFrequency(*frequency)
	if *floor != "" {
		floorValue, err := decimal.NewFromString(*floor)
		if err != nil {
			appLogger.Critical("Invalid floor %q: %v", *floor, err)
		}
		prefs.MinAcceptablePrice = floorValue
	}

	// Live transport with simulated fallback
	auctionTransport := transport.NewTransport(*serverURL, *participantID, appLogger)
	defer auctionTransport.Close()

	if auctionTransport.Mode() == interfaces.TransportModeSimulated {
		appLogger.Warning("Running against a SIMULATED market, no real auction is being bid on")
	}

	engine := strategy.NewEngine(appLogger)
	bidAgent := agent.NewBidAgent(*auctionID, *participantID, *displayName, prefs, auctionTransport, engine, appLogger)

	if err := bidAgent.Start(); err != nil {
		appLogger.Critical("Agent failed to start: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case <-bidAgent.Done():
		appLogger.Info("Auction over, agent finished")
	case <-quit:
		appLogger.Info("Stopping agent...")
		bidAgent.Stop()
	}
}
