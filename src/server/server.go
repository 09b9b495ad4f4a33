package server

import (
	"fmt"
	"net/http"
	"strings"

	"freight-auction/src/auction"
	"freight-auction/src/config"
	"freight-auction/src/interfaces"
	"freight-auction/src/logger"
	"freight-auction/src/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// AuctionServer
// -----------------------------------------------------------------------------

type AuctionServer struct {
	Config *config.Config
	Logger *logger.Logger
	engine *gin.Engine

	manager   *auction.Manager
	identity  interfaces.IIdentity
	payments  interfaces.IPayments
	registrar interfaces.IRegistrar

	// WebSocket clients, owned by the hub loop
	clients    map[*Client]struct{}
	rooms      map[string]map[*Client]struct{}
	broadcast  chan *models.MEnvelope // Strongly typed and Buffered Queue
	whispers   chan whisperMessage
	register   chan *Client
	unregister chan *Client
	joinRoom   chan roomChange
	leaveRoom  chan roomChange
	quit       chan struct{}
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewAuctionServer(cfg *config.Config, identity interfaces.IIdentity, payments interfaces.IPayments, registrar interfaces.IRegistrar, logger *logger.Logger) *AuctionServer {
	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &AuctionServer{
		Config:    cfg,
		Logger:    logger,
		engine:    gin.Default(),
		identity:  identity,
		payments:  payments,
		registrar: registrar,
		clients:  make(map[*Client]struct{}),
		rooms:    make(map[string]map[*Client]struct{}),
		// Buffered channel so session actors never block on fan-out bursts
		broadcast:  make(chan *models.MEnvelope, 256),
		whispers:   make(chan whisperMessage, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		joinRoom:   make(chan roomChange),
		leaveRoom:  make(chan roomChange),
		quit:       make(chan struct{}),
	}

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// setup web routes
	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------

// SetManager wires the session manager. Must be called before Start; the
// manager itself needs the server as its broadcaster, hence the two-step.
func (s *AuctionServer) SetManager(m *auction.Manager) {
	s.manager = m
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *AuctionServer) setupRoutes() {
	// REST API endpoints
	s.engine.GET("/api/health", s.getHealth)
	s.engine.GET("/api/config", s.getConfig)
	s.engine.GET("/api/auctions", s.listAuctions)
	s.engine.POST("/api/auctions", s.createAuction)
	s.engine.GET("/api/auctions/:id", s.getAuction)
	s.engine.POST("/api/participants", s.registerParticipant)
	s.engine.POST("/api/participants/:id/fees", s.recordEntryFee)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *AuctionServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting auction server on %s", addr)

	go s.handleWebsockets()

	return s.engine.Run(addr)
}

// -----------------------------------------------------------------------------

func (s *AuctionServer) Stop() error {
	close(s.quit)
	return nil
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *AuctionServer) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"auctions": len(s.manager.List()),
	})
}

// -----------------------------------------------------------------------------

func (s *AuctionServer) getConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"default_duration_seconds": s.Config.Auction.DurationSeconds,
		"default_cooldown_seconds": s.Config.Auction.CooldownSeconds,
		"default_min_decrement":    s.Config.Auction.MinDecrement,
		"leaderboard_size":         s.Config.Auction.LeaderboardSize,
	})
}

// -----------------------------------------------------------------------------

func (s *AuctionServer) listAuctions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"auctions": s.manager.List()})
}

// -----------------------------------------------------------------------------

type createAuctionRequest struct {
	Title           string `json:"title" binding:"required"`
	StartingPrice   string `json:"starting_price" binding:"required"`
	MinDecrement    string `json:"min_decrement"`
	DurationSeconds int    `json:"duration_seconds"`
	CooldownSeconds int    `json:"cooldown_seconds"`
}

func (s *AuctionServer) createAuction(c *gin.Context) {
	var req createAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	startingPrice, err := decimal.NewFromString(req.StartingPrice)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid starting_price: %v", err)})
		return
	}

	auctionCfg := models.MAuctionConfig{
		Title:           req.Title,
		StartingPrice:   startingPrice,
		DurationSeconds: req.DurationSeconds,
		CooldownSeconds: req.CooldownSeconds,
	}
	if req.MinDecrement != "" {
		minDec, err := decimal.NewFromString(req.MinDecrement)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid min_decrement: %v", err)})
			return
		}
		auctionCfg.MinDecrement = minDec
	}

	session, err := s.manager.CreateAuction(auctionCfg)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, session.Snapshot())
}

// -----------------------------------------------------------------------------

func (s *AuctionServer) getAuction(c *gin.Context) {
	session, ok := s.manager.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "auction not found"})
		return
	}
	c.JSON(http.StatusOK, session.Snapshot())
}

// -----------------------------------------------------------------------------

type registerParticipantRequest struct {
	ParticipantID string `json:"participant_id" binding:"required"`
	DisplayName   string `json:"display_name" binding:"required"`
}

func (s *AuctionServer) registerParticipant(c *gin.Context) {
	if s.registrar == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "registration not available"})
		return
	}

	var req registerParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.registrar.Register(req.ParticipantID, req.DisplayName)
	c.JSON(http.StatusCreated, gin.H{"participant_id": req.ParticipantID})
}

// -----------------------------------------------------------------------------

type recordFeeRequest struct {
	AuctionID string `json:"auction_id" binding:"required"`
}

func (s *AuctionServer) recordEntryFee(c *gin.Context) {
	if s.registrar == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "registration not available"})
		return
	}

	var req recordFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.registrar.RecordEntryFee(c.Param("id"), req.AuctionID)
	c.JSON(http.StatusOK, gin.H{"participant_id": c.Param("id"), "auction_id": req.AuctionID})
}
