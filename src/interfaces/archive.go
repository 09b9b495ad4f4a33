package interfaces

import "freight-auction/src/models"

// -----------------------------------------------------------------------------
// IArchive defines the contract for result persistence.
// The auction core functions without it; the archive merely subscribes to
// finished auctions.
// -----------------------------------------------------------------------------

type IArchive interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the database schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// SaveAuctionResult records the outcome of a finished auction.
	SaveAuctionResult(result models.MAuctionResult) error

	// -----------------------------------------------------------------------------

	// SaveBidsBulk inserts the accepted bid log of a finished auction.
	SaveBidsBulk(bids []models.MBid) error

	// -----------------------------------------------------------------------------

	// CleanupOldData removes data older than the retention policy.
	CleanupOldData() error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
