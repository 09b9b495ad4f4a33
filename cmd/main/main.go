package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"freight-auction/src/auction"
	"freight-auction/src/config"
	"freight-auction/src/logger"
	"freight-auction/src/registry"
	"freight-auction/src/server"
	"freight-auction/src/storage"
	"freight-auction/src/utils"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	openEntry := flag.Bool("open-entry", false, "waive participation fees for every auction")
	flag.Parse()

	// Load config from YAML file
	config, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(config.LogLevel, config.Name)
	defer appLogger.Sync()

	// Setup archive
	archive, err := storage.NewArchive(config.MConfig, appLogger)
	if err != nil {
		appLogger.Critical("Failed to init archive: %v", err)
	}
	if err := archive.Initialize(); err != nil {
		appLogger.Critical("Failed to migrate archive: %v", err)
	}
	defer archive.Close()

	// Participant directory and fee ledger
	participants := registry.NewRegistry(*openEntry)

	// Business-hours gate for opening new auctions
	var businessCalendar *utils.BusinessCalendar
	if config.Calendar.Enforce {
		businessCalendar = utils.GetBusinessCalendar(config.Calendar.MIC)
	}

	// Server and session manager reference each other: the server fans
	// session broadcasts out to websocket rooms, the manager owns sessions.
	srv := server.NewAuctionServer(config, participants, participants, participants, appLogger)
	manager := auction.NewManager(config, srv, archive, businessCalendar, appLogger)
	srv.SetManager(manager)

	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Critical("Server failed: %v", err)
		}
	}()

	// Daily retention cleanup
	cleanupTicker := time.NewTicker(24 * time.Hour)
	defer cleanupTicker.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	appLogger.Info("Freight auction server running")

	for {
		select {
		case <-cleanupTicker.C:
			if err := archive.CleanupOldData(); err != nil {
				appLogger.Error("Retention cleanup failed: %v", err)
			}

		case <-quit:
			appLogger.Info("Shutting down...")
			manager.StopAll()
			srv.Stop()
			return
		}
	}
}
