package storage

import (
	"database/sql"
	"fmt"
	"time"

	"freight-auction/src/logger"
	"freight-auction/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresArchive struct {
	Config *models.MConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresArchive(cfg *models.MConfig, log *logger.Logger) (*PostgresArchive, error) {
	return &PostgresArchive{
		Config: cfg,
		Schema: "freight_auction",
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresArchive) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// Create Schema
	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", d.Schema, err)
	}

	if err := d.createTables(); err != nil {
		return err
	}

	d.Logger.Info("PostgresArchive initialized successfully (Schema: %s)", d.Schema)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresArchive) createTables() error {
	// Amounts are NUMERIC to keep decimal exactness end to end.
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."auction_results" (
			auction_id TEXT PRIMARY KEY,
			title TEXT,
			starting_price NUMERIC(18, 2),
			final_price NUMERIC(18, 2),
			winner_id TEXT,
			winner_name TEXT,
			total_bids INTEGER,
			agent_bids INTEGER,
			ended_by_timer BOOLEAN,
			ended_at BIGINT
		);
	`, d.Schema)
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create auction_results: %w", err)
	}

	query = fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."auction_bids" (
			id TEXT,
			auction_id TEXT,
			participant_id TEXT,
			display_name TEXT,
			amount NUMERIC(18, 2),
			is_agent_bid BOOLEAN,
			placed_at BIGINT,
			seq BIGINT,
			PRIMARY KEY (auction_id, seq)
		);
	`, d.Schema)
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create auction_bids: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresArchive) SaveAuctionResult(result models.MAuctionResult) error {
	query := fmt.Sprintf(`
		INSERT INTO "%s"."auction_results" (auction_id, title, starting_price, final_price, winner_id, winner_name, total_bids, agent_bids, ended_by_timer, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (auction_id) DO UPDATE SET
			final_price = EXCLUDED.final_price,
			winner_id = EXCLUDED.winner_id,
			winner_name = EXCLUDED.winner_name,
			total_bids = EXCLUDED.total_bids,
			agent_bids = EXCLUDED.agent_bids,
			ended_by_timer = EXCLUDED.ended_by_timer,
			ended_at = EXCLUDED.ended_at
	`, d.Schema)

	_, err := d.DB.Exec(query,
		result.AuctionID, result.Title,
		result.StartingPrice.String(), result.FinalPrice.String(),
		result.WinnerID, result.WinnerName,
		result.TotalBids, result.AgentBids,
		result.EndedByTimer, result.EndedAt.Unix(),
	)
	return err
}

// -----------------------------------------------------------------------------

func (d *PostgresArchive) SaveBidsBulk(bids []models.MBid) error {
	if len(bids) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		INSERT INTO "%s"."auction_bids" (id, auction_id, participant_id, display_name, amount, is_agent_bid, placed_at, seq)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (auction_id, seq) DO NOTHING
	`, d.Schema)
	stmt, err := tx.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, b := range bids {
		_, err := stmt.Exec(b.ID, b.AuctionID, b.ParticipantID, b.DisplayName, b.Amount.String(), b.IsAgentBid, b.PlacedAt.Unix(), b.Seq)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *PostgresArchive) CleanupOldData() error {
	retentionDays := d.Config.Storage.RetentionDays
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).Unix()

	d.Logger.Info("Cleaning up auctions older than %d days (ended_at < %d)...", retentionDays, cutoff)

	query := fmt.Sprintf(`
		DELETE FROM "%s"."auction_bids" WHERE auction_id IN (
			SELECT auction_id FROM "%s"."auction_results" WHERE ended_at < $1
		)`, d.Schema, d.Schema)
	if _, err := d.DB.Exec(query, cutoff); err != nil {
		d.Logger.Error("Cleanup auction_bids error: %v", err)
	}

	if _, err := d.DB.Exec(fmt.Sprintf(`DELETE FROM "%s"."auction_results" WHERE ended_at < $1`, d.Schema), cutoff); err != nil {
		d.Logger.Error("Cleanup auction_results error: %v", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresArchive) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
