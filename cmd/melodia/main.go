package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/melodia/melodia/internal/catalog/spotify"
	"github.com/melodia/melodia/internal/config"
	"github.com/melodia/melodia/internal/llm/openai"
	"github.com/melodia/melodia/internal/mcpserver"
	"github.com/melodia/melodia/internal/music"
	"github.com/melodia/melodia/internal/playlist"
	"github.com/melodia/melodia/internal/prompt"
	"github.com/melodia/melodia/internal/session"
	"github.com/melodia/melodia/internal/web"
)

func main() {
	config.LoadEnv()

	settingsPath := os.Getenv("MELODIA_SETTINGS")
	if settingsPath == "" {
		settingsPath = "melodia.yaml"
	}
	settings, err := config.LoadSettings(settingsPath)
	if err != nil {
		log.Fatalf("❌ Failed to load settings: %v", err)
	}

	fmt.Println(`  ███╗   ███╗███████╗██╗      ██████╗ ██████╗ ██╗ █████╗ `)
	fmt.Println(`  ████╗ ████║██╔════╝██║     ██╔═══██╗██╔══██╗██║██╔══██╗`)
	fmt.Println(`  ██╔████╔██║█████╗  ██║     ██║   ██║██║  ██║██║███████║`)
	fmt.Println(`  ██║╚██╔╝██║██╔══╝  ██║     ██║   ██║██║  ██║██║██╔══██║`)
	fmt.Println(`  ██║ ╚═╝ ██║███████╗███████╗╚██████╔╝██████╔╝██║██║  ██║`)
	fmt.Println(`  ╚═╝     ╚═╝╚══════╝╚══════╝ ╚═════╝ ╚═════╝ ╚═╝╚═╝  ╚═╝`)
	fmt.Println(`         ╔═══ 智能音乐推荐助手 ═══╗`)
	fmt.Println(`         ║   LLM 意图 · Spotify 曲库  ║`)
	fmt.Println(`         ╚═════════════════════════╝`)

	// LLM client for intent analysis, explanations and chat.
	llmClient, err := openai.NewClientFromEnv()
	if err != nil {
		log.Fatalf("❌ Failed to initialize LLM client: %v", err)
	}
	model := llmClient.GetConfig().Model
	fmt.Printf("🤖 LLM: %s (timeout=%ds)\n", model, llmClient.GetConfig().HTTPTimeout)

	// Spotify catalog adapter.
	spotifyCfg := spotify.NewConfigFromEnv()
	if err := spotifyCfg.Validate(); err != nil {
		log.Fatalf("❌ Spotify config: %v", err)
	}
	catalog, err := spotify.New(context.Background(), spotifyCfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Spotify client: %v", err)
	}
	if catalog.HasUserAuth() {
		fmt.Println("🎧 Spotify: app + user authorization")
	} else {
		fmt.Println("🎧 Spotify: app authorization only (top tracks and playlist creation disabled)")
	}

	// Prompt templates, embedded with optional disk override.
	promptLoader := prompt.NewLoader(settings.PromptsDir)
	if settings.PromptsDir != "" {
		fmt.Printf("📋 Prompts: overrides from %s\n", settings.PromptsDir)
	}

	// Recommendation workflow and smart playlist pipeline.
	agent := music.NewAgent(llmClient, catalog, promptLoader,
		music.WithRecursionLimit(settings.RecursionLimit))
	playlistService := playlist.NewService(catalog,
		playlist.WithDefaultTargetSize(settings.PlaylistTargetSize))

	// MCP mode: expose the tools over stdio instead of HTTP.
	if len(os.Args) > 1 && os.Args[1] == "mcp" {
		srv := mcpserver.NewServer(agent, catalog, playlistService)
		if err := srv.ServeStdio(); err != nil {
			log.Fatalf("❌ MCP server error: %v", err)
		}
		return
	}

	// Session store for multi-turn conversations.
	sessionStore := session.NewStore(settings.SessionTTL.Std(), settings.SessionMaxTurns)
	defer sessionStore.Close()
	fmt.Printf("💬 Session: TTL=%v MaxTurns=%d\n", settings.SessionTTL.Std(), settings.SessionMaxTurns)

	recommendHandler := web.NewRecommendHandler(agent, sessionStore, settings.HistoryBudget)
	playlistHandler := web.NewPlaylistHandler(playlistService)
	commandHandler := web.NewCommandHandler(web.CommandHandlerOptions{
		Loader:        promptLoader,
		Store:         sessionStore,
		ModelName:     model,
		CatalogName:   "spotify",
		CatalogAuthed: catalog.HasUserAuth(),
	})
	healthHandler := web.NewHealthHandler(web.HealthInfo{
		LLMModel:      model,
		CatalogName:   "spotify",
		CatalogAuthed: catalog.HasUserAuth(),
		SessionCount:  sessionStore.Count,
	})

	server := web.NewServer(recommendHandler, playlistHandler, commandHandler, healthHandler)
	if err := server.Start(settings.Addr); err != nil {
		log.Fatalf("❌ Server error: %v", err)
	}
}
