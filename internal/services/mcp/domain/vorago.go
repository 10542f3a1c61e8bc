package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	voragogrpc "github.com/louisbranch/vorago/internal/services/vorago/api/grpc/vorago"
)

// GameCaller is the slice of the Vorago client the tools depend on.
type GameCaller interface {
	Call(ctx context.Context, method string, request map[string]any) (*structpb.Struct, error)
}

// CreateGameInput represents the MCP tool input for starting a game.
type CreateGameInput struct {
	Player1      string `json:"player1,omitempty" jsonschema:"display name for player 1"`
	Player2      string `json:"player2,omitempty" jsonschema:"display name for player 2"`
	AIEnabled    bool   `json:"ai_enabled,omitempty" jsonschema:"let the engine play player 2"`
	AIDifficulty string `json:"ai_difficulty,omitempty" jsonschema:"easy, medium or hard; defaults to medium"`
}

// CreateGameResult represents the MCP tool output for a new game.
type CreateGameResult struct {
	GameID     string            `json:"game_id" jsonschema:"identifier of the created game"`
	SeatGrants map[string]string `json:"seat_grants" jsonschema:"seat grant per human seat, keyed by player number"`
	State      map[string]any    `json:"state" jsonschema:"full game snapshot"`
}

// GetGameInput represents the MCP tool input for reading a game.
type GetGameInput struct {
	GameID string `json:"game_id" jsonschema:"game identifier"`
}

// GameStateResult represents a game snapshot with its lifecycle status.
type GameStateResult struct {
	GameID  string           `json:"game_id" jsonschema:"game identifier"`
	Status  string           `json:"status" jsonschema:"in_progress or finished"`
	State   map[string]any   `json:"state" jsonschema:"full game snapshot"`
	Effects []map[string]any `json:"effects,omitempty" jsonschema:"what the command changed, in order"`
}

// ExecuteInput represents the MCP tool input for running a game command.
type ExecuteInput struct {
	GameID    string         `json:"game_id" jsonschema:"game identifier"`
	SeatGrant string         `json:"seat_grant" jsonschema:"seat grant returned by vorago_create_game"`
	Command   string         `json:"command" jsonschema:"command name, see vorago_commands"`
	Args      map[string]any `json:"args,omitempty" jsonschema:"command arguments such as ring, cell, ability or direction"`
	Locale    string         `json:"locale,omitempty" jsonschema:"locale for rejection messages, for example pt-BR"`
}

// ListGamesInput represents the MCP tool input for listing games.
type ListGamesInput struct {
	Filter    string `json:"filter,omitempty" jsonschema:"AIP-160 filter over status, round, active and winner"`
	PageSize  int    `json:"page_size,omitempty" jsonschema:"maximum games per page"`
	PageToken string `json:"page_token,omitempty" jsonschema:"token from a previous page"`
}

// GameSummary is one listed game.
type GameSummary struct {
	GameID       string `json:"game_id"`
	Status       string `json:"status"`
	Round        int    `json:"round"`
	Active       int    `json:"active"`
	Winner       int    `json:"winner"`
	Player1      string `json:"player1"`
	Player2      string `json:"player2"`
	AIEnabled    bool   `json:"ai_enabled"`
	AIDifficulty string `json:"ai_difficulty"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// ListGamesResult represents the MCP tool output for listing games.
type ListGamesResult struct {
	Games         []GameSummary `json:"games" jsonschema:"games on this page"`
	NextPageToken string        `json:"next_page_token,omitempty" jsonschema:"token for the next page, empty on the last"`
}

// CommandsInput takes no arguments.
type CommandsInput struct{}

// CommandsResult lists the command names vorago_execute accepts.
type CommandsResult struct {
	Commands []string `json:"commands" jsonschema:"accepted command names"`
}

// CreateGameTool defines the MCP tool schema for starting a game.
func CreateGameTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "vorago_create_game",
		Description: "Starts a Vorago game and returns seat grants for the human players",
	}
}

// GetGameTool defines the MCP tool schema for reading a game.
func GetGameTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "vorago_get_game",
		Description: "Returns the current snapshot of a Vorago game",
	}
}

// ExecuteTool defines the MCP tool schema for running a command.
func ExecuteTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "vorago_execute",
		Description: "Runs one game command for the seat that holds the grant",
	}
}

// ListGamesTool defines the MCP tool schema for listing games.
func ListGamesTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "vorago_list_games",
		Description: "Lists stored games, newest first",
	}
}

// CommandsTool defines the MCP tool schema for the command catalog.
func CommandsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "vorago_commands",
		Description: "Lists the commands vorago_execute accepts",
	}
}

// CreateGameHandler starts a game.
func CreateGameHandler(client GameCaller) mcp.ToolHandlerFor[CreateGameInput, CreateGameResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CreateGameInput) (*mcp.CallToolResult, CreateGameResult, error) {
		request := map[string]any{
			"player1":       strings.TrimSpace(input.Player1),
			"player2":       strings.TrimSpace(input.Player2),
			"ai_enabled":    input.AIEnabled,
			"ai_difficulty": strings.TrimSpace(input.AIDifficulty),
		}
		var result CreateGameResult
		if err := call(ctx, client, voragogrpc.CreateGameMethod, request, &result); err != nil {
			return nil, CreateGameResult{}, toolError("create game", err)
		}
		return nil, result, nil
	}
}

// GetGameHandler reads a game.
func GetGameHandler(client GameCaller) mcp.ToolHandlerFor[GetGameInput, GameStateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GetGameInput) (*mcp.CallToolResult, GameStateResult, error) {
		var result GameStateResult
		request := map[string]any{"game_id": strings.TrimSpace(input.GameID)}
		if err := call(ctx, client, voragogrpc.GetGameMethod, request, &result); err != nil {
			return nil, GameStateResult{}, toolError("get game", err)
		}
		return nil, result, nil
	}
}

// ExecuteHandler runs a command.
func ExecuteHandler(client GameCaller) mcp.ToolHandlerFor[ExecuteInput, GameStateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ExecuteInput) (*mcp.CallToolResult, GameStateResult, error) {
		args := input.Args
		if args == nil {
			args = map[string]any{}
		}
		request := map[string]any{
			"game_id":    strings.TrimSpace(input.GameID),
			"seat_grant": strings.TrimSpace(input.SeatGrant),
			"command":    strings.TrimSpace(input.Command),
			"args":       args,
		}
		ctx = voragogrpc.WithLocale(ctx, strings.TrimSpace(input.Locale))

		var result GameStateResult
		if err := call(ctx, client, voragogrpc.ExecuteMethod, request, &result); err != nil {
			return nil, GameStateResult{}, toolError(input.Command, err)
		}
		return nil, result, nil
	}
}

// ListGamesHandler lists games.
func ListGamesHandler(client GameCaller) mcp.ToolHandlerFor[ListGamesInput, ListGamesResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ListGamesInput) (*mcp.CallToolResult, ListGamesResult, error) {
		request := map[string]any{
			"filter":     strings.TrimSpace(input.Filter),
			"page_token": strings.TrimSpace(input.PageToken),
		}
		if input.PageSize > 0 {
			request["page_size"] = input.PageSize
		}
		var result ListGamesResult
		if err := call(ctx, client, voragogrpc.ListGamesMethod, request, &result); err != nil {
			return nil, ListGamesResult{}, toolError("list games", err)
		}
		if result.Games == nil {
			result.Games = []GameSummary{}
		}
		return nil, result, nil
	}
}

// CommandsHandler lists the accepted commands.
func CommandsHandler() mcp.ToolHandlerFor[CommandsInput, CommandsResult] {
	return func(context.Context, *mcp.CallToolRequest, CommandsInput) (*mcp.CallToolResult, CommandsResult, error) {
		return nil, CommandsResult{Commands: voragogrpc.CommandNames()}, nil
	}
}

// call invokes method and decodes the response Struct into out.
func call(ctx context.Context, client GameCaller, method string, request map[string]any, out any) error {
	if client == nil {
		return fmt.Errorf("vorago client is not configured")
	}
	runCtx, cancel := context.WithTimeout(ctx, grpcCallTimeout)
	defer cancel()

	response, err := client.Call(runCtx, method, request)
	if err != nil {
		return err
	}
	payload, err := protojson.Marshal(response)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
