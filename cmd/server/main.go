package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"golang.org/x/time/rate"

	"github.com/pixelgrove/metaverse/internal/ai"
	"github.com/pixelgrove/metaverse/internal/api"
	"github.com/pixelgrove/metaverse/internal/config"
	"github.com/pixelgrove/metaverse/internal/database"
	"github.com/pixelgrove/metaverse/internal/registry"
	"github.com/pixelgrove/metaverse/internal/server"
	"github.com/pixelgrove/metaverse/internal/stats"
	"github.com/pixelgrove/metaverse/internal/types"
)

var npcRoster = []types.Character{
	{Name: "Pixel", Color: "#7c3aed", Emoji: "🤖", X: 12, Y: 8},
	{Name: "Willow", Color: "#059669", Emoji: "🦊", X: 4, Y: 14},
	{Name: "Orbit", Color: "#2563eb", Emoji: "🛸", X: 18, Y: 3},
	{Name: "Maple", Color: "#d97706", Emoji: "🍁", X: 9, Y: 17},
}

var (
	addr           string
	dsn            string
	allowedOrigins string
	npcCount       int
	npcReplyRate   float64
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Println("load .env:", err)
	}

	flag.StringVar(&addr, "addr", envOr("SERVER_ADDR", "localhost:8000"), "server address")
	flag.StringVar(&dsn, "dsn", os.Getenv("DATABASE_DSN"), "database connection string, empty disables event logging")
	flag.StringVar(&allowedOrigins, "allowed-origins", envOr("ALLOWED_ORIGINS", "http://localhost:3000"), "comma-separated list of allowed origins for CORS")
	flag.IntVar(&npcCount, "npc-count", 2, "number of ai characters seeded into the default room")
	flag.Float64Var(&npcReplyRate, "npc-reply-rate", 0.5, "maximum ai replies per second per npc")
	flag.Parse()

	logger := log.New(os.Stderr, "[metaverse] ", log.LstdFlags)

	cfg, err := config.NewConfig(addr, dsn, allowedOrigins, npcCount, npcReplyRate)
	if err != nil {
		logger.Fatal("config:", err)
	}

	var eventLog database.EventLogRepository = database.NopEventLogRepository{}
	if cfg.DatabaseDSN != "" {
		pg, err := database.NewPgEventLogRepository(cfg.DatabaseDSN)
		if err != nil {
			logger.Fatal("db open:", err)
		}
		eventLog = pg
	}
	defer func() {
		if err := eventLog.Close(); err != nil {
			logger.Println("db close:", err)
		}
	}()

	mux := http.NewServeMux()

	statsUpdater := stats.NewStatsUpdater(mux)

	reg := registry.New(logger)
	statsUpdater.RegisterGauge(stats.NumActiveRooms, func() any {
		return len(reg.ListActiveRooms())
	})

	// npcs share one limiter, so the burst scales with the roster size
	npc := ai.NewRateLimitedResponder(ai.NewStaticResponder(), rate.Limit(cfg.NpcReplyRate), max(1, cfg.NpcCount))

	gameServer, err := server.NewGameServer(logger, reg, eventLog, npc, statsUpdater)
	if err != nil {
		logger.Fatal("new game server:", err)
	}

	for i := 0; i < cfg.NpcCount && i < len(npcRoster); i++ {
		ch := npcRoster[i]
		ch.Id = uuid.NewString()
		ch.IsAi = true
		if _, err := reg.JoinRoom(registry.DefaultRoomId, ch); err != nil {
			logger.Println("seed npc:", err)
		}
	}

	srv := api.NewMetaverseApp(mux, logger, gameServer, reg, eventLog, statsUpdater, cfg)

	statsUpdater.Run()
	defer statsUpdater.Stop()

	go gameServer.Run()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		logger.Printf("received signal: %s\n", sig)
	case err := <-errCh:
		logger.Println("server:", err)
	}

	shutDownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutDownCtx); err != nil {
		logger.Fatalln("HTTP server shutdown:", err)
	}

	logger.Println("shutting down game server...")
	if err := gameServer.Shutdown(shutDownCtx); err != nil {
		logger.Fatalln("game server shutdown:", err)
	}

	logger.Println("shutdown complete")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
