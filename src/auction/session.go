package auction

import (
	"sort"
	"time"

	"freight-auction/src/helpers"
	"freight-auction/src/interfaces"
	"freight-auction/src/logger"
	"freight-auction/src/models"
	"freight-auction/src/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// Actor commands
// -----------------------------------------------------------------------------

type joinRequest struct {
	participantID string
	reply         chan *models.MAuctionState
}

type leaveRequest struct {
	participantID string
	reply         chan struct{}
}

type bidRequest struct {
	participantID string
	displayName   string
	amount        decimal.Decimal
	isAgentBid    bool
	reply         chan bidResult
}

type bidResult struct {
	bid models.MBid
	err error
}

type tickRequest struct {
	reply chan struct{}
}

type snapshotRequest struct {
	reply chan *models.MAuctionState
}

// -----------------------------------------------------------------------------
// Session
// -----------------------------------------------------------------------------

// Session is the authoritative state machine for one auction. All mutation
// flows through a single goroutine consuming one command channel per
// operation, so concurrently arriving bids from different participants are
// applied in a deterministic serial order and a tick can never interleave
// with an in-flight submission. Sessions of different auctions share nothing.
type Session struct {
	cfg    models.MAuctionConfig
	logger *logger.Logger

	// Owned exclusively by the run loop.
	state       *models.MAuctionState
	history     *utils.BidRing // accepted bids in arrival order
	activeUsers map[string]struct{}
	seq         uint64
	endedByTimer bool

	broadcaster interfaces.IBroadcaster
	onEnded     func(models.MAuctionResult, []models.MBid)

	joins     chan joinRequest
	leaves    chan leaveRequest
	bids      chan bidRequest
	ticks     chan tickRequest
	snapshots chan snapshotRequest
	quit      chan struct{}
	done      chan struct{} // closed when the auction ends
	loopDone  chan struct{}
}

// -----------------------------------------------------------------------------

// NewSession builds a session. Start must be called before use. onEnded may
// be nil; when set it receives the final result and the accepted bid log.
func NewSession(cfg models.MAuctionConfig, broadcaster interfaces.IBroadcaster, log *logger.Logger, onEnded func(models.MAuctionResult, []models.MBid)) *Session {
	if cfg.LeaderboardSize <= 0 {
		cfg.LeaderboardSize = utils.DefaultLeaderboardSize
	}
	if cfg.CooldownSeconds <= 0 {
		cfg.CooldownSeconds = utils.DefaultCooldownSeconds
	}

	return &Session{
		cfg:    cfg,
		logger: log,
		state: &models.MAuctionState{
			AuctionID:         cfg.AuctionID,
			Title:             cfg.Title,
			Status:            models.StatusOpen,
			StartingPrice:     cfg.StartingPrice,
			MinDecrement:      cfg.MinDecrement,
			CurrentBid:        cfg.StartingPrice,
			Leaderboard:       []models.MBid{},
			TimeRemaining:     cfg.DurationSeconds,
			CooldownRemaining: cfg.CooldownSeconds,
		},
		history:     utils.NewBidRing(utils.DefaultHistoryCapacity),
		activeUsers: make(map[string]struct{}),
		broadcaster: broadcaster,
		onEnded:     onEnded,
		joins:       make(chan joinRequest),
		leaves:      make(chan leaveRequest),
		bids:        make(chan bidRequest),
		ticks:       make(chan tickRequest),
		snapshots:   make(chan snapshotRequest),
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
		loopDone:    make(chan struct{}),
	}
}

// -----------------------------------------------------------------------------

// Start launches the actor loop. tickInterval <= 0 disables the internal
// clock; Tick() then drives time explicitly (tests, embedded hosts).
func (s *Session) Start(tickInterval time.Duration) {
	go s.run(tickInterval)
}

// -----------------------------------------------------------------------------

// Stop terminates the actor loop. It does not end the auction; it abandons
// it (process shutdown). Safe to call once.
func (s *Session) Stop() {
	close(s.quit)
	<-s.loopDone
}

// -----------------------------------------------------------------------------

// Done is closed when the auction reaches its terminal state.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// -----------------------------------------------------------------------------

// ID returns the auction id.
func (s *Session) ID() string {
	return s.cfg.AuctionID
}

// -----------------------------------------------------------------------------
// Public operations (each is a round-trip through the actor)
// -----------------------------------------------------------------------------

// Join adds the participant to the active set and returns a state snapshot.
func (s *Session) Join(participantID string) *models.MAuctionState {
	req := joinRequest{participantID: participantID, reply: make(chan *models.MAuctionState, 1)}
	select {
	case s.joins <- req:
		return <-req.reply
	case <-s.loopDone:
		return s.state.Clone()
	}
}

// Leave removes the participant from the active set.
func (s *Session) Leave(participantID string) {
	req := leaveRequest{participantID: participantID, reply: make(chan struct{}, 1)}
	select {
	case s.leaves <- req:
		<-req.reply
	case <-s.loopDone:
	}
}

// SubmitBid validates and applies a bid. On success the accepted bid is
// returned and the new state has been broadcast; on failure the state is
// untouched and a typed rejection comes back.
func (s *Session) SubmitBid(participantID, displayName string, amount decimal.Decimal, isAgentBid bool) (models.MBid, error) {
	req := bidRequest{
		participantID: participantID,
		displayName:   displayName,
		amount:        amount,
		isAgentBid:    isAgentBid,
		reply:         make(chan bidResult, 1),
	}
	select {
	case s.bids <- req:
		res := <-req.reply
		return res.bid, res.err
	case <-s.loopDone:
		return models.MBid{}, helpers.NewAuctionEnded(s.cfg.AuctionID)
	}
}

// Tick advances the auction clock by one second. Idempotent after ending.
func (s *Session) Tick() {
	req := tickRequest{reply: make(chan struct{}, 1)}
	select {
	case s.ticks <- req:
		<-req.reply
	case <-s.loopDone:
	}
}

// Snapshot returns a copy of the current authoritative state.
func (s *Session) Snapshot() *models.MAuctionState {
	req := snapshotRequest{reply: make(chan *models.MAuctionState, 1)}
	select {
	case s.snapshots <- req:
		return <-req.reply
	case <-s.loopDone:
		return s.state.Clone()
	}
}

// -----------------------------------------------------------------------------
// Actor loop
// -----------------------------------------------------------------------------

func (s *Session) run(tickInterval time.Duration) {
	defer close(s.loopDone)

	var tickC <-chan time.Time
	if tickInterval > 0 {
		ticker := time.NewTicker(tickInterval)
		defer ticker.Stop()
		tickC = ticker.C
	}

	for {
		select {
		case req := <-s.joins:
			req.reply <- s.handleJoin(req.participantID)

		case req := <-s.leaves:
			s.handleLeave(req.participantID)
			req.reply <- struct{}{}

		case req := <-s.bids:
			bid, err := s.handleBid(req)
			req.reply <- bidResult{bid: bid, err: err}

		case req := <-s.ticks:
			s.handleTick()
			req.reply <- struct{}{}

		case <-tickC:
			s.handleTick()

		case req := <-s.snapshots:
			req.reply <- s.state.Clone()

		case <-s.quit:
			return
		}
	}
}

// -----------------------------------------------------------------------------

func (s *Session) handleJoin(participantID string) *models.MAuctionState {
	if _, ok := s.activeUsers[participantID]; !ok {
		s.activeUsers[participantID] = struct{}{}
		s.state.ActiveUsers = len(s.activeUsers)
		s.emit(&models.MEnvelope{
			Type:        models.EventUserCountUpdate,
			ActiveUsers: s.state.ActiveUsers,
		})
	}
	return s.state.Clone()
}

// -----------------------------------------------------------------------------

func (s *Session) handleLeave(participantID string) {
	if _, ok := s.activeUsers[participantID]; !ok {
		return
	}
	delete(s.activeUsers, participantID)
	s.state.ActiveUsers = len(s.activeUsers)
	s.emit(&models.MEnvelope{
		Type:        models.EventUserCountUpdate,
		ActiveUsers: s.state.ActiveUsers,
	})
}

// -----------------------------------------------------------------------------

func (s *Session) handleBid(req bidRequest) (models.MBid, error) {
	if s.state.Status == models.StatusEnded {
		return models.MBid{}, helpers.NewAuctionEnded(s.cfg.AuctionID)
	}

	if req.amount.Sign() < 0 {
		return models.MBid{}, helpers.NewInvalidBid(helpers.ReasonNegativeAmount,
			"bid amount %s is negative", req.amount)
	}

	// Reverse auction: the bid must be strictly below the current lowest.
	if req.amount.Cmp(s.state.CurrentBid) >= 0 {
		return models.MBid{}, helpers.NewInvalidBid(helpers.ReasonNotBelowCurrent,
			"bid %s is not below current lowest %s", req.amount, s.state.CurrentBid)
	}

	if s.state.CurrentBid.Sub(req.amount).Cmp(s.cfg.MinDecrement) < 0 {
		return models.MBid{}, helpers.NewInvalidBid(helpers.ReasonBelowMinimum,
			"bid %s undercuts %s by less than the minimum decrement %s",
			req.amount, s.state.CurrentBid, s.cfg.MinDecrement)
	}

	s.seq++
	bid := models.MBid{
		ID:            uuid.NewString(),
		AuctionID:     s.cfg.AuctionID,
		ParticipantID: req.participantID,
		DisplayName:   req.displayName,
		Amount:        req.amount,
		IsAgentBid:    req.isAgentBid,
		PlacedAt:      time.Now().UTC(),
		Seq:           s.seq,
	}

	s.insertBid(bid)
	s.history.Append(bid)
	s.state.CooldownRemaining = s.cfg.CooldownSeconds

	s.emit(&models.MEnvelope{Type: models.EventNewBid, Bid: &bid})
	s.emit(&models.MEnvelope{Type: models.EventAuctionUpdate, State: s.state.Clone()})

	return bid, nil
}

// -----------------------------------------------------------------------------

// insertBid places the bid on the leaderboard, keeping it sorted ascending by
// amount with arrival order breaking ties, capped at the configured size.
func (s *Session) insertBid(bid models.MBid) {
	s.state.Leaderboard = append(s.state.Leaderboard, bid)
	sort.SliceStable(s.state.Leaderboard, func(i, j int) bool {
		return s.state.Leaderboard[i].Less(s.state.Leaderboard[j])
	})
	if len(s.state.Leaderboard) > s.cfg.LeaderboardSize {
		s.state.Leaderboard = s.state.Leaderboard[:s.cfg.LeaderboardSize]
	}
	s.state.CurrentBid = s.state.Leaderboard[0].Amount
}

// -----------------------------------------------------------------------------

func (s *Session) handleTick() {
	if s.state.Status == models.StatusEnded {
		// Repeated ticks at zero change nothing.
		return
	}

	if s.state.TimeRemaining > 0 {
		s.state.TimeRemaining--
	}

	// The inactivity cooldown only runs once bidding has started; an auction
	// nobody bid on runs its full clock.
	if s.history.Size() > 0 && s.state.CooldownRemaining > 0 {
		s.state.CooldownRemaining--
	}

	if s.state.TimeRemaining <= 0 {
		s.end(true)
		return
	}
	if s.history.Size() > 0 && s.state.CooldownRemaining <= 0 {
		s.end(false)
		return
	}

	s.emit(&models.MEnvelope{
		Type:              models.EventCooldownUpdate,
		CooldownRemaining: s.state.CooldownRemaining,
	})
	s.emit(&models.MEnvelope{Type: models.EventAuctionUpdate, State: s.state.Clone()})
}

// -----------------------------------------------------------------------------

// end transitions to the terminal state. The winner is leaderboard[0] at this
// instant, or nil when no bid was ever accepted.
func (s *Session) end(byTimer bool) {
	s.state.Status = models.StatusEnded
	s.state.EndedAt = time.Now().UTC()
	s.endedByTimer = byTimer

	if len(s.state.Leaderboard) > 0 {
		w := s.state.Leaderboard[0]
		s.state.Winner = &w
	}

	s.emit(&models.MEnvelope{
		Type:   models.EventAuctionEnded,
		Winner: s.state.Winner,
		State:  s.state.Clone(),
	})

	if byTimer {
		s.logger.Info("Auction %s ended: clock expired (winner=%s)", s.cfg.AuctionID, winnerLabel(s.state.Winner))
	} else {
		s.logger.Info("Auction %s ended: no bid for %ds (winner=%s)", s.cfg.AuctionID, s.cfg.CooldownSeconds, winnerLabel(s.state.Winner))
	}

	if s.onEnded != nil {
		result := s.buildResult()
		bids := s.history.GetAll()
		go s.onEnded(result, bids)
	}

	close(s.done)
}

// -----------------------------------------------------------------------------

func (s *Session) buildResult() models.MAuctionResult {
	result := models.MAuctionResult{
		AuctionID:     s.cfg.AuctionID,
		Title:         s.cfg.Title,
		StartingPrice: s.cfg.StartingPrice,
		FinalPrice:    s.state.CurrentBid,
		TotalBids:     s.history.Size(),
		EndedByTimer:  s.endedByTimer,
		EndedAt:       s.state.EndedAt,
	}
	if s.state.Winner != nil {
		result.WinnerID = s.state.Winner.ParticipantID
		result.WinnerName = s.state.Winner.DisplayName
	}
	for _, b := range s.history.GetAll() {
		if b.IsAgentBid {
			result.AgentBids++
		}
	}
	return result
}

// -----------------------------------------------------------------------------

// emit stamps the envelope with the auction id and the next state version and
// hands it to the broadcaster. The broadcaster must not block the actor.
func (s *Session) emit(env *models.MEnvelope) {
	s.state.Version++
	env.AuctionID = s.cfg.AuctionID
	env.Version = s.state.Version
	if env.State != nil {
		env.State.Version = s.state.Version
	}
	if s.broadcaster != nil {
		s.broadcaster.Broadcast(env)
	}
}

// -----------------------------------------------------------------------------

func winnerLabel(w *models.MBid) string {
	if w == nil {
		return "none"
	}
	return w.ParticipantID
}
