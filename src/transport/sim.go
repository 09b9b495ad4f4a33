package transport

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"freight-auction/src/auction"
	"freight-auction/src/helpers"
	"freight-auction/src/interfaces"
	"freight-auction/src/logger"
	"freight-auction/src/models"

	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// Constants
// -----------------------------------------------------------------------------

const (
	simCompetitors      = 3
	simMinPause         = 2 * time.Second
	simMaxPause         = 6 * time.Second
	simUndercutChance   = 0.6
	simDefaultPrice     = "10000"
	simDefaultDecrement = "50"
	simDefaultDuration  = 300
)

// -----------------------------------------------------------------------------
// Simulated Transport
// -----------------------------------------------------------------------------

// SimTransport runs auctions entirely in-process for offline and degraded
// operation. It hosts real session actors locally and plays a handful of
// synthetic competitors against the participant, so the rest of the client
// behaves exactly as it does against the live server.
type SimTransport struct {
	logger        *logger.Logger
	participantID string
	rng           *rand.Rand
	rngMu         sync.Mutex

	updates chan *models.MEnvelope

	mu       sync.Mutex
	sessions map[string]*auction.Session

	quit     chan struct{}
	quitOnce sync.Once
	wg       sync.WaitGroup
}

// -----------------------------------------------------------------------------

// NewSimTransport creates the simulated transport with a time-seeded rng.
func NewSimTransport(participantID string, log *logger.Logger) *SimTransport {
	return NewSimTransportWithSeed(participantID, log, time.Now().UnixNano())
}

// NewSimTransportWithSeed fixes the synthetic competitors' randomness.
func NewSimTransportWithSeed(participantID string, log *logger.Logger, seed int64) *SimTransport {
	return &SimTransport{
		logger:        log,
		participantID: participantID,
		rng:           rand.New(rand.NewSource(seed)),
		updates:       make(chan *models.MEnvelope, updatesCapacity),
		sessions:      make(map[string]*auction.Session),
		quit:          make(chan struct{}),
	}
}

// -----------------------------------------------------------------------------

// AddAuction hosts a local auction with the given configuration. Called
// before Join when the caller knows the lane being simulated.
func (t *SimTransport) AddAuction(cfg models.MAuctionConfig) (*auction.Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.sessions[cfg.AuctionID]; exists {
		return nil, fmt.Errorf("auction %s already simulated", cfg.AuctionID)
	}

	session := auction.NewSession(cfg, t, t.logger, nil)
	session.Start(time.Second)
	t.sessions[cfg.AuctionID] = session

	t.wg.Add(1)
	go t.runCompetitors(session)

	return session, nil
}

// -----------------------------------------------------------------------------

// runCompetitors plays synthetic carriers against the participant until the
// auction ends. Undercuts arrive at irregular intervals so the market does
// not look mechanical.
func (t *SimTransport) runCompetitors(session *auction.Session) {
	defer t.wg.Done()

	names := make([]string, simCompetitors)
	for i := range names {
		names[i] = fmt.Sprintf("sim-carrier-%d", i+1)
	}

	for {
		pause := simMinPause + time.Duration(t.randFloat()*float64(simMaxPause-simMinPause))
		select {
		case <-time.After(pause):
		case <-session.Done():
			return
		case <-t.quit:
			return
		}

		if t.randFloat() > simUndercutChance {
			continue
		}

		state := session.Snapshot()
		if state.Status != models.StatusOpen {
			return
		}

		// Undercut by one to three decrements
		steps := decimal.NewFromInt(int64(1 + t.randIntn(3)))
		amount := state.CurrentBid.Sub(state.MinDecrement.Mul(steps))
		if amount.Sign() <= 0 {
			continue
		}

		competitor := names[t.randIntn(len(names))]
		if _, err := session.SubmitBid(competitor, competitor, amount, false); err != nil {
			continue
		}
	}
}

// -----------------------------------------------------------------------------

func (t *SimTransport) randFloat() float64 {
	t.rngMu.Lock()
	defer t.rngMu.Unlock()
	return t.rng.Float64()
}

func (t *SimTransport) randIntn(n int) int {
	t.rngMu.Lock()
	defer t.rngMu.Unlock()
	return t.rng.Intn(n)
}

// -----------------------------------------------------------------------------
// IBroadcaster Implementation (local sessions publish through the transport)
// -----------------------------------------------------------------------------

func (t *SimTransport) Broadcast(env *models.MEnvelope) {
	select {
	case t.updates <- env:
	case <-t.quit:
	default:
		t.logger.Warning("Simulated update queue full, dropping %s", env.Type)
	}
}

func (t *SimTransport) Whisper(participantID string, env *models.MEnvelope) {
	if participantID != t.participantID {
		return
	}
	t.Broadcast(env)
}

// -----------------------------------------------------------------------------
// ITransport Implementation
// -----------------------------------------------------------------------------

func (t *SimTransport) Join(auctionID string) (*models.MAuctionState, error) {
	t.mu.Lock()
	session, ok := t.sessions[auctionID]
	t.mu.Unlock()

	if !ok {
		// Unknown lane: host one with stand-in terms
		price, _ := decimal.NewFromString(simDefaultPrice)
		dec, _ := decimal.NewFromString(simDefaultDecrement)
		var err error
		session, err = t.AddAuction(models.MAuctionConfig{
			AuctionID:       auctionID,
			Title:           "Simulated lane " + auctionID,
			StartingPrice:   price,
			MinDecrement:    dec,
			DurationSeconds: simDefaultDuration,
		})
		if err != nil {
			return nil, err
		}
	}

	return session.Join(t.participantID), nil
}

// -----------------------------------------------------------------------------

func (t *SimTransport) Leave(auctionID string) error {
	t.mu.Lock()
	session, ok := t.sessions[auctionID]
	t.mu.Unlock()
	if !ok {
		return fmt.Errorf("auction %s not simulated", auctionID)
	}
	session.Leave(t.participantID)
	return nil
}

// -----------------------------------------------------------------------------

func (t *SimTransport) PlaceBid(auctionID string, bid models.MBid) error {
	t.mu.Lock()
	session, ok := t.sessions[auctionID]
	t.mu.Unlock()
	if !ok {
		return fmt.Errorf("auction %s not simulated", auctionID)
	}

	_, err := session.SubmitBid(t.participantID, bid.DisplayName, bid.Amount, bid.IsAgentBid)
	if err != nil {
		// Mirror the live server: rejection arrives as an addressed event
		t.Whisper(t.participantID, &models.MEnvelope{
			Type:      models.EventBidRejected,
			AuctionID: auctionID,
			Reason:    helpers.RejectionReason(err),
		})
	}
	return nil
}

// -----------------------------------------------------------------------------

func (t *SimTransport) Updates() <-chan *models.MEnvelope {
	return t.updates
}

// -----------------------------------------------------------------------------

func (t *SimTransport) Mode() string {
	return interfaces.TransportModeSimulated
}

// -----------------------------------------------------------------------------

func (t *SimTransport) Close() error {
	t.quitOnce.Do(func() {
		close(t.quit)
		t.mu.Lock()
		for _, session := range t.sessions {
			session.Stop()
		}
		t.mu.Unlock()
		t.wg.Wait()
		close(t.updates)
	})
	return nil
}
