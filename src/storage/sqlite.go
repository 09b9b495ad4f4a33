package storage

import (
	"database/sql"
	"fmt"
	"time"

	"freight-auction/src/logger"
	"freight-auction/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type SQLiteArchive struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteArchive(cfg *models.MConfig, log *logger.Logger) (*SQLiteArchive, error) {
	return &SQLiteArchive{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteArchive) Initialize() error {
	dsn := d.Config.Storage.DBPath

	// Open DB
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *SQLiteArchive) createTables() error {
	// The archive outlives the process, so tables are created, never dropped.
	// Monetary amounts are stored as TEXT to keep decimal exactness.
	query := `
		CREATE TABLE IF NOT EXISTS auction_results (
			auction_id TEXT PRIMARY KEY,
			title TEXT,
			starting_price TEXT,
			final_price TEXT,
			winner_id TEXT,
			winner_name TEXT,
			total_bids INTEGER,
			agent_bids INTEGER,
			ended_by_timer INTEGER,
			ended_at INTEGER
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create auction_results: %w", err)
	}

	query = `
		CREATE TABLE IF NOT EXISTS auction_bids (
			id TEXT,
			auction_id TEXT,
			participant_id TEXT,
			display_name TEXT,
			amount TEXT,
			is_agent_bid INTEGER,
			placed_at INTEGER,
			seq INTEGER,
			PRIMARY KEY (auction_id, seq)
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create auction_bids: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteArchive) SaveAuctionResult(result models.MAuctionResult) error {
	query := `
		INSERT INTO auction_results (auction_id, title, starting_price, final_price, winner_id, winner_name, total_bids, agent_bids, ended_by_timer, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (auction_id) DO UPDATE SET
			final_price = excluded.final_price,
			winner_id = excluded.winner_id,
			winner_name = excluded.winner_name,
			total_bids = excluded.total_bids,
			agent_bids = excluded.agent_bids,
			ended_by_timer = excluded.ended_by_timer,
			ended_at = excluded.ended_at
	`
	_, err := d.DB.Exec(query,
		result.AuctionID, result.Title,
		result.StartingPrice.String(), result.FinalPrice.String(),
		result.WinnerID, result.WinnerName,
		result.TotalBids, result.AgentBids,
		boolToInt(result.EndedByTimer), result.EndedAt.Unix(),
	)
	return err
}

// -----------------------------------------------------------------------------

func (d *SQLiteArchive) SaveBidsBulk(bids []models.MBid) error {
	if len(bids) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO auction_bids (id, auction_id, participant_id, display_name, amount, is_agent_bid, placed_at, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (auction_id, seq) DO NOTHING
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, b := range bids {
		_, err := stmt.Exec(b.ID, b.AuctionID, b.ParticipantID, b.DisplayName, b.Amount.String(), boolToInt(b.IsAgentBid), b.PlacedAt.Unix(), b.Seq)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *SQLiteArchive) CleanupOldData() error {
	retentionDays := d.Config.Storage.RetentionDays
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).Unix()

	d.Logger.Info("Cleaning up auctions older than %d days (ended_at < %d)...", retentionDays, cutoff)

	if _, err := d.DB.Exec(`
		DELETE FROM auction_bids WHERE auction_id IN (
			SELECT auction_id FROM auction_results WHERE ended_at < ?
		)`, cutoff); err != nil {
		d.Logger.Error("Cleanup auction_bids error: %v", err)
	}

	if _, err := d.DB.Exec("DELETE FROM auction_results WHERE ended_at < ?", cutoff); err != nil {
		d.Logger.Error("Cleanup auction_results error: %v", err)
	}

	d.Logger.Info("Cleanup completed")
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteArchive) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}

// -----------------------------------------------------------------------------

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
