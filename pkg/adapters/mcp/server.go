// Package mcp exposes Amidar interventions as Model Context Protocol tools.
// Every tool call runs in its own session, so a failed call writes nothing.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KDL-umass/Toybox"
	"github.com/KDL-umass/Toybox/internal/logging"
	"github.com/KDL-umass/Toybox/pkg/amidar"
	"github.com/KDL-umass/Toybox/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server wraps a session Manager and exposes it as an MCP Server.
type Server struct {
	manager   *session.Manager
	opts      []amidar.Option
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger for tool calls.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithInterventionOptions passes options to every intervention the tools open.
func WithInterventionOptions(opts ...amidar.Option) Option {
	return func(s *Server) {
		s.opts = append(s.opts, opts...)
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(m *session.Manager, opts ...Option) *Server {
	s := &Server{
		manager:   m,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("toybox-mcp", strings.TrimSpace(toybox.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	return s
}

// MCPServer returns the underlying server, for embedding in other transports.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// Tool arguments. Integers arrive as JSON numbers.
type (
	LivesArgs struct {
		Lives int `json:"lives"`
	}
	JumpsArgs struct {
		Jumps int `json:"jumps"`
	}
	ModeArgs struct {
		Mode     string `json:"mode"`
		Duration int    `json:"duration"`
	}
	EnemyArgs struct {
		Index int `json:"index"`
	}
	TileTagArgs struct {
		TX  int    `json:"tx"`
		TY  int    `json:"ty"`
		Tag string `json:"tag"`
	}
	RandomStartArgs struct {
		MinDistance int `json:"min_distance"`
	}
)

func (s *Server) registerTools() {
	// TOOL: get_game
	s.mcpServer.AddTool(mcp.NewTool("get_game",
		mcp.WithDescription("Summarize the running Amidar game: counters, mode, enemies and paint progress."),
		mcp.WithOutputSchema[amidar.Summary](),
	), mcp.NewStructuredToolHandler(s.handleGetGame))

	// TOOL: set_lives
	s.mcpServer.AddTool(mcp.NewTool("set_lives",
		mcp.WithDescription("Set the player's remaining lives."),
		mcp.WithNumber("lives", mcp.Required(), mcp.Min(0), mcp.Description("Lives left")),
		mcp.WithOutputSchema[amidar.Summary](),
	), mcp.NewStructuredToolHandler(s.handleSetLives))

	// TOOL: set_jumps
	s.mcpServer.AddTool(mcp.NewTool("set_jumps",
		mcp.WithDescription("Set the number of jumps the player has left."),
		mcp.WithNumber("jumps", mcp.Required(), mcp.Min(0), mcp.Description("Jumps left")),
		mcp.WithOutputSchema[amidar.Summary](),
	), mcp.NewStructuredToolHandler(s.handleSetJumps))

	// TOOL: set_mode
	s.mcpServer.AddTool(mcp.NewTool("set_mode",
		mcp.WithDescription("Switch to regular, jump or chase mode. Jump and chase run for duration frames."),
		mcp.WithString("mode", mcp.Required(), mcp.Enum("regular", "jump", "chase")),
		mcp.WithNumber("duration", mcp.Description("Frames; 0 uses the engine or configured default")),
		mcp.WithOutputSchema[amidar.Summary](),
	), mcp.NewStructuredToolHandler(s.handleSetMode))

	// TOOL: remove_enemy
	s.mcpServer.AddTool(mcp.NewTool("remove_enemy",
		mcp.WithDescription("Remove the enemy at index."),
		mcp.WithNumber("index", mcp.Required(), mcp.Min(0)),
		mcp.WithOutputSchema[amidar.Summary](),
	), mcp.NewStructuredToolHandler(s.handleRemoveEnemy))

	// TOOL: set_tile_tag
	s.mcpServer.AddTool(mcp.NewTool("set_tile_tag",
		mcp.WithDescription("Repaint one board tile."),
		mcp.WithNumber("tx", mcp.Required(), mcp.Description("Tile column")),
		mcp.WithNumber("ty", mcp.Required(), mcp.Description("Tile row")),
		mcp.WithString("tag", mcp.Required(), mcp.Enum("Empty", "Unpainted", "Painted", "ChaseMarker")),
		mcp.WithOutputSchema[amidar.Summary](),
	), mcp.NewStructuredToolHandler(s.handleSetTileTag))

	// TOOL: set_player_random_start
	s.mcpServer.AddTool(mcp.NewTool("set_player_random_start",
		mcp.WithDescription("Move the player to a random track tile at least min_distance tiles from every enemy."),
		mcp.WithNumber("min_distance", mcp.Description("Manhattan distance in tiles")),
		mcp.WithOutputSchema[amidar.Summary](),
	), mcp.NewStructuredToolHandler(s.handleRandomStart))
}

// intervene runs fn in a fresh session and summarizes the resulting graph.
func (s *Server) intervene(ctx context.Context, tool string, fn func(*amidar.Intervention) error) (amidar.Summary, error) {
	var out amidar.Summary
	err := amidar.Run(ctx, s.manager, func(iv *amidar.Intervention) error {
		if err := fn(iv); err != nil {
			return err
		}
		out = amidar.Summarize(iv.Game())
		return nil
	}, s.opts...)
	if err != nil {
		s.logger.Warn("MCP tool failed", "tool", tool, "err", err)
		return amidar.Summary{}, fmt.Errorf("%s: %w", tool, err)
	}
	return out, nil
}

func (s *Server) handleGetGame(ctx context.Context, _ mcp.CallToolRequest, _ struct{}) (amidar.Summary, error) {
	return s.intervene(ctx, "get_game", func(*amidar.Intervention) error { return nil })
}

func (s *Server) handleSetLives(ctx context.Context, _ mcp.CallToolRequest, args LivesArgs) (amidar.Summary, error) {
	return s.intervene(ctx, "set_lives", func(iv *amidar.Intervention) error {
		return iv.SetLives(args.Lives)
	})
}

func (s *Server) handleSetJumps(ctx context.Context, _ mcp.CallToolRequest, args JumpsArgs) (amidar.Summary, error) {
	return s.intervene(ctx, "set_jumps", func(iv *amidar.Intervention) error {
		return iv.Game().SetJumps(args.Jumps)
	})
}

func (s *Server) handleSetMode(ctx context.Context, _ mcp.CallToolRequest, args ModeArgs) (amidar.Summary, error) {
	return s.intervene(ctx, "set_mode", func(iv *amidar.Intervention) error {
		mode, err := amidar.ParseMode(args.Mode)
		if err != nil {
			return err
		}
		return iv.SetMode(ctx, mode, args.Duration)
	})
}

func (s *Server) handleRemoveEnemy(ctx context.Context, _ mcp.CallToolRequest, args EnemyArgs) (amidar.Summary, error) {
	return s.intervene(ctx, "remove_enemy", func(iv *amidar.Intervention) error {
		return iv.RemoveEnemy(args.Index)
	})
}

func (s *Server) handleSetTileTag(ctx context.Context, _ mcp.CallToolRequest, args TileTagArgs) (amidar.Summary, error) {
	return s.intervene(ctx, "set_tile_tag", func(iv *amidar.Intervention) error {
		return iv.SetTileTag(amidar.TilePoint{TX: args.TX, TY: args.TY}, amidar.TileTag(args.Tag))
	})
}

func (s *Server) handleRandomStart(ctx context.Context, _ mcp.CallToolRequest, args RandomStartArgs) (amidar.Summary, error) {
	return s.intervene(ctx, "set_player_random_start", func(iv *amidar.Intervention) error {
		return iv.SetPlayerRandomStart(ctx, args.MinDistance)
	})
}
