package auction

import (
	"fmt"
	"sync"
	"time"

	"freight-auction/src/config"
	"freight-auction/src/helpers"
	"freight-auction/src/interfaces"
	"freight-auction/src/logger"
	"freight-auction/src/models"
	"freight-auction/src/utils"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Session Manager
// -----------------------------------------------------------------------------

// Manager owns the set of live auction sessions. It applies configured
// defaults when creating auctions, gates creation on business hours, and
// archives every finished auction. All methods are safe for concurrent use.
type Manager struct {
	cfg      *config.Config
	logger   *logger.Logger
	archive  interfaces.IArchive
	calendar *utils.BusinessCalendar

	broadcaster interfaces.IBroadcaster

	mu       sync.RWMutex
	sessions map[string]*Session
}

// -----------------------------------------------------------------------------

// NewManager creates the session manager. archive and calendar may be nil;
// archiving and business-hour gating are then skipped.
func NewManager(cfg *config.Config, broadcaster interfaces.IBroadcaster, archive interfaces.IArchive, calendar *utils.BusinessCalendar, log *logger.Logger) *Manager {
	return &Manager{
		cfg:         cfg,
		logger:      log,
		archive:     archive,
		calendar:    calendar,
		broadcaster: broadcaster,
		sessions:    make(map[string]*Session),
	}
}

// -----------------------------------------------------------------------------

// CreateAuction validates the request, fills in configured defaults and
// launches the session actor. Returns the running session.
func (m *Manager) CreateAuction(auctionCfg models.MAuctionConfig) (*Session, error) {
	if m.cfg.Calendar.Enforce && m.calendar != nil && !m.calendar.IsOpenAt(time.Now()) {
		return nil, fmt.Errorf("auctions can only be opened during business hours (%s)", m.cfg.Calendar.MIC)
	}

	if auctionCfg.AuctionID == "" {
		auctionCfg.AuctionID = uuid.NewString()
	}
	if auctionCfg.Title == "" {
		return nil, fmt.Errorf("auction title cannot be empty")
	}
	if auctionCfg.StartingPrice.Sign() <= 0 {
		return nil, fmt.Errorf("starting price must be positive, got %s", auctionCfg.StartingPrice)
	}
	if auctionCfg.MinDecrement.Sign() <= 0 {
		auctionCfg.MinDecrement = m.cfg.MinDecrementValue()
	}
	if auctionCfg.DurationSeconds <= 0 {
		auctionCfg.DurationSeconds = m.cfg.Auction.DurationSeconds
	}
	if auctionCfg.CooldownSeconds <= 0 {
		auctionCfg.CooldownSeconds = m.cfg.Auction.CooldownSeconds
	}
	if auctionCfg.LeaderboardSize <= 0 {
		auctionCfg.LeaderboardSize = m.cfg.Auction.LeaderboardSize
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[auctionCfg.AuctionID]; exists {
		return nil, fmt.Errorf("auction %s already exists", auctionCfg.AuctionID)
	}

	session := NewSession(auctionCfg, m.broadcaster, m.logger, m.archiveResult)
	session.Start(time.Duration(m.cfg.Auction.TickIntervalSeconds) * time.Second)
	m.sessions[auctionCfg.AuctionID] = session

	m.logger.Info("Auction %s (%s) opened: start=%s, duration=%ds, cooldown=%ds",
		auctionCfg.AuctionID, auctionCfg.Title, auctionCfg.StartingPrice,
		auctionCfg.DurationSeconds, auctionCfg.CooldownSeconds)

	return session, nil
}

// -----------------------------------------------------------------------------

// Get returns the session for the auction id, live or ended.
func (m *Manager) Get(auctionID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[auctionID]
	return s, ok
}

// -----------------------------------------------------------------------------

// List returns snapshots of every known auction.
func (m *Manager) List() []*models.MAuctionState {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	states := make([]*models.MAuctionState, 0, len(sessions))
	for _, s := range sessions {
		states = append(states, s.Snapshot())
	}
	return states
}

// -----------------------------------------------------------------------------

// StopAll terminates every session actor. Used during shutdown; auctions are
// abandoned, not ended.
func (m *Manager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, s := range m.sessions {
		s.Stop()
		delete(m.sessions, id)
	}
	m.logger.Info("All auction sessions stopped")
}

// -----------------------------------------------------------------------------

// archiveResult persists a finished auction. Runs outside the session actor;
// failures are retried, then logged and dropped rather than losing the
// in-memory terminal state.
func (m *Manager) archiveResult(result models.MAuctionResult, bids []models.MBid) {
	if m.archive == nil {
		return
	}

	err := helpers.RetryWithBackoff(m.logger, "archive auction result", 3, 500*time.Millisecond, func() error {
		return m.archive.SaveAuctionResult(result)
	})
	if err != nil {
		m.logger.Error("Failed to archive result for auction %s: %v", result.AuctionID, err)
	}

	if len(bids) > 0 {
		err = helpers.RetryWithBackoff(m.logger, "archive bid log", 3, 500*time.Millisecond, func() error {
			return m.archive.SaveBidsBulk(bids)
		})
		if err != nil {
			m.logger.Error("Failed to archive bid log for auction %s: %v", result.AuctionID, err)
		}
	}
}
