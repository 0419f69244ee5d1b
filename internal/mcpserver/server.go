// Package mcpserver exposes the recommendation engine as an MCP server,
// so external agent hosts can call the catalog and playlist tools directly.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/melodia/melodia/internal/music"
	"github.com/melodia/melodia/internal/playlist"
)

const serverVersion = "1.0.0"

// recommender runs one recommendation turn. Satisfied by *music.Agent.
type recommender interface {
	Run(ctx context.Context, req music.Request) music.Result
}

// generator produces smart playlists. Satisfied by *playlist.Service.
type generator interface {
	Generate(ctx context.Context, params playlist.Params) (*playlist.SmartPlaylist, error)
}

// Server wires the music engine into an MCP server.
type Server struct {
	agent     recommender
	catalog   music.Catalog
	playlists generator
	mcpServer *server.MCPServer
}

// NewServer creates the MCP server and registers its tools.
func NewServer(agent recommender, catalog music.Catalog, playlists generator) *Server {
	s := &Server{
		agent:     agent,
		catalog:   catalog,
		playlists: playlists,
		mcpServer: server.NewMCPServer("melodia", serverVersion),
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	log.Printf("[MCP] serving on stdio")
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	searchTool := mcp.NewTool("search_tracks",
		mcp.WithDescription("Search the music catalog for tracks by free text, optionally filtered by genre."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Free-text search query, e.g. a song or artist name")),
		mcp.WithString("genre", mcp.Description("Optional genre filter, e.g. pop, rock")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of tracks to return (default 10)")),
	)
	s.mcpServer.AddTool(searchTool, s.jsonToolHandler(s.handleSearchTracks))

	recommendTool := mcp.NewTool("get_recommendations",
		mcp.WithDescription("Run the full recommendation workflow for a natural-language request and return songs with reasons."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Natural-language music request, e.g. 我想听周杰伦风格的歌")),
	)
	s.mcpServer.AddTool(recommendTool, s.jsonToolHandler(s.handleGetRecommendations))

	playlistTool := mcp.NewTool("create_smart_playlist",
		mcp.WithDescription("Generate a balanced playlist from a natural-language request, optionally persisting it to the catalog account."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Natural-language playlist request, e.g. 来个适合运动的歌单")),
		mcp.WithNumber("target_size", mcp.Description("Desired number of tracks (default 30)")),
		mcp.WithBoolean("create_spotify_playlist", mcp.Description("Persist the playlist to the user's account (requires user authorization)")),
		mcp.WithBoolean("public", mcp.Description("Make the persisted playlist public")),
	)
	s.mcpServer.AddTool(playlistTool, s.jsonToolHandler(s.handleCreateSmartPlaylist))
}

// jsonToolHandler adapts a typed handler returning a JSON-marshalable value
// into an mcp tool handler with uniform error reporting.
func (s *Server) jsonToolHandler(fn func(ctx context.Context, args map[string]interface{}) (interface{}, error)) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := fn(ctx, request.GetArguments())
		if err != nil {
			log.Printf("[MCP] tool failed: %v", err)
			return mcp.NewToolResultError(err.Error()), nil
		}
		jsonBytes, err := json.Marshal(result)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("marshal result: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	}
}

func (s *Server) handleSearchTracks(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	query := stringArg(args, "query")
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}
	genre := stringArg(args, "genre")
	limit := intArg(args, "limit", 10)

	songs, err := s.catalog.SearchTracks(ctx, query, genre, limit)
	if err != nil {
		return nil, fmt.Errorf("search tracks: %w", err)
	}
	return map[string]interface{}{"songs": songs, "count": len(songs)}, nil
}

func (s *Server) handleGetRecommendations(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	query := stringArg(args, "query")
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}

	result := s.agent.Run(ctx, music.Request{Input: query})
	if !result.Success {
		return nil, fmt.Errorf("recommendation run failed: %s", result.Response)
	}
	return result, nil
}

func (s *Server) handleCreateSmartPlaylist(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	query := stringArg(args, "query")
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}

	result, err := s.playlists.Generate(ctx, playlist.Params{
		Query:      query,
		TargetSize: intArg(args, "target_size", 0),
		Persist:    boolArg(args, "create_spotify_playlist"),
		Public:     boolArg(args, "public"),
	})
	if err != nil {
		return nil, fmt.Errorf("generate playlist: %w", err)
	}
	return result, nil
}

func stringArg(args map[string]interface{}, key string) string {
	v, _ := args[key].(string)
	return v
}

func intArg(args map[string]interface{}, key string, def int) int {
	// JSON numbers arrive as float64.
	if v, ok := args[key].(float64); ok {
		return int(v)
	}
	return def
}

func boolArg(args map[string]interface{}, key string) bool {
	v, _ := args[key].(bool)
	return v
}
