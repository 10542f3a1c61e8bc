package vorago

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/protobuf/types/known/structpb"

	apperrors "github.com/louisbranch/vorago/internal/platform/errors"
	"github.com/louisbranch/vorago/internal/platform/grpc/pagination"
	"github.com/louisbranch/vorago/internal/platform/id"
	"github.com/louisbranch/vorago/internal/platform/otel"
	"github.com/louisbranch/vorago/internal/platform/random"
	"github.com/louisbranch/vorago/internal/platform/requestctx"
	"github.com/louisbranch/vorago/internal/services/vorago/domain/game"
	"github.com/louisbranch/vorago/internal/services/vorago/domain/match"
	"github.com/louisbranch/vorago/internal/services/vorago/seat"
	"github.com/louisbranch/vorago/internal/services/vorago/storage"
	"github.com/louisbranch/vorago/internal/services/vorago/storage/filter"
)

const (
	defaultListGamesPageSize = 10
	maxListGamesPageSize     = 50
)

// Service implements vorago.v1.VoragoService.
type Service struct {
	store       storage.GameStore
	seats       *seat.Authority
	matches     *registry
	clock       func() time.Time
	idGenerator func() (string, error)
	seedSource  func() (uint64, error)
	// aiLogger receives AI turn summaries; nil silences them.
	aiLogger *log.Logger
}

// NewService creates a Service with default dependencies.
func NewService(store storage.GameStore, seats *seat.Authority) *Service {
	return &Service{
		store:       store,
		seats:       seats,
		matches:     newRegistry(),
		clock:       time.Now,
		idGenerator: id.NewID,
		seedSource:  random.NewSeed,
	}
}

// WithAILogger makes matches log every AI turn to logger.
func (s *Service) WithAILogger(logger *log.Logger) *Service {
	s.aiLogger = logger
	return s
}

func (s *Service) matchOptions(seed uint64) match.Options {
	return match.Options{Seed: seed, Logger: s.aiLogger}
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer().Start(ctx, "vorago."+name, trace.WithAttributes(attrs...))
}

// finish records err on the span and converts it to a localized status.
func finish(ctx context.Context, span trace.Span, err error) error {
	if err == nil {
		return nil
	}
	span.RecordError(err)
	span.SetStatus(otelcodes.Error, string(apperrors.GetCode(err)))
	if apperrors.GetCode(err) == apperrors.CodeUnknown {
		log.Printf("vorago: %v", err)
	}
	return apperrors.HandleError(err, requestctx.LocaleFromContext(ctx))
}

// CreateGame starts a game, stores it and issues seat grants for every
// human seat.
func (s *Service) CreateGame(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	ctx, span := startSpan(ctx, "CreateGame")
	defer span.End()

	resp, err := s.createGame(ctx, fieldsOf(in), span)
	return resp, finish(ctx, span, err)
}

func (s *Service) createGame(ctx context.Context, args fields, span trace.Span) (*structpb.Struct, error) {
	player1, err := args.String("player1")
	if err != nil {
		return nil, err
	}
	player2, err := args.String("player2")
	if err != nil {
		return nil, err
	}
	aiEnabled, err := args.Bool("ai_enabled")
	if err != nil {
		return nil, err
	}
	difficulty, err := args.String("ai_difficulty")
	if err != nil {
		return nil, err
	}
	if player1 == "" {
		player1 = "Player 1"
	}
	if player2 == "" {
		player2 = "Player 2"
		if aiEnabled {
			player2 = "AI"
		}
	}
	if difficulty == "" {
		difficulty = string(game.Medium)
	}

	gameID, err := s.idGenerator()
	if err != nil {
		return nil, fmt.Errorf("generate game id: %w", err)
	}
	seed, err := s.seedSource()
	if err != nil {
		return nil, fmt.Errorf("generate seed: %w", err)
	}
	span.SetAttributes(attribute.String("vorago.game_id", gameID), attribute.Bool("vorago.ai_enabled", aiEnabled))

	m, err := match.New(s.matchOptions(seed))
	if err != nil {
		return nil, fmt.Errorf("create match: %w", err)
	}
	inv := &invocation{match: m}
	decision, err := m.SetPlayerNames(player1, player2)
	if err != nil {
		return nil, err
	}
	if rejection, rejected := decision.First(); rejected {
		return nil, rejectionError(inv, CommandSetPlayerNames, rejection)
	}
	if aiEnabled {
		decision, err := m.SetAIMode(true, game.Difficulty(difficulty))
		if err != nil {
			return nil, err
		}
		if rejection, rejected := decision.First(); rejected {
			return nil, rejectionError(inv, CommandSetAIMode, rejection)
		}
	}

	now := s.clock().UTC()
	record := storage.GameRecord{
		ID:        gameID,
		Snapshot:  m.Snapshot(),
		Seed:      seed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateGame(ctx, record); err != nil {
		return nil, storeError(err, gameID)
	}
	s.matches.put(gameID, m, record)

	grants := &structpb.Struct{Fields: map[string]*structpb.Value{}}
	for _, p := range []game.Player{game.Player1, game.Player2} {
		if aiEnabled && p == record.Snapshot.AI.Seat {
			continue
		}
		grant, err := s.seats.Issue(gameID, p)
		if err != nil {
			return nil, fmt.Errorf("issue seat grant: %w", err)
		}
		grants.Fields[strconv.Itoa(int(p))] = structpb.NewStringValue(grant)
	}

	state, err := stateValue(record.Snapshot)
	if err != nil {
		return nil, err
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"game_id":     structpb.NewStringValue(gameID),
		"seat_grants": structpb.NewStructValue(grants),
		"state":       state,
	}}, nil
}

// GetGame returns the stored state of one game.
func (s *Service) GetGame(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	ctx, span := startSpan(ctx, "GetGame")
	defer span.End()

	resp, err := s.getGame(ctx, fieldsOf(in), span)
	return resp, finish(ctx, span, err)
}

func (s *Service) getGame(ctx context.Context, args fields, span trace.Span) (*structpb.Struct, error) {
	gameID, err := args.RequiredString("game_id")
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("vorago.game_id", gameID))
	record, err := s.store.GetGame(ctx, gameID)
	if err != nil {
		return nil, storeError(err, gameID)
	}
	state, err := stateValue(record.Snapshot)
	if err != nil {
		return nil, err
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"game_id": structpb.NewStringValue(record.ID),
		"status":  structpb.NewStringValue(record.Status()),
		"state":   state,
	}}, nil
}

// Execute runs one command for the seat named by the caller's grant.
func (s *Service) Execute(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	ctx, span := startSpan(ctx, "Execute")
	defer span.End()

	resp, err := s.execute(ctx, fieldsOf(in), span)
	return resp, finish(ctx, span, err)
}

func (s *Service) execute(ctx context.Context, args fields, span trace.Span) (*structpb.Struct, error) {
	gameID, err := args.RequiredString("game_id")
	if err != nil {
		return nil, err
	}
	name, err := args.RequiredString("command")
	if err != nil {
		return nil, err
	}
	cmdArgs, err := args.Struct("args")
	if err != nil {
		return nil, err
	}
	run, ok := lookupCommand(name)
	if !ok {
		return nil, unknownCommandError(name)
	}
	span.SetAttributes(attribute.String("vorago.game_id", gameID), attribute.String("vorago.command", name))

	grant, err := args.String("seat_grant")
	if err != nil {
		return nil, err
	}
	if grant == "" {
		grant = requestctx.SeatGrantFromContext(ctx)
	}
	claims, err := s.seats.Verify(grant, gameID)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("vorago.player", int(claims.Player)))

	entry := s.matches.acquire(gameID)
	defer entry.mu.Unlock()
	if err := s.load(ctx, entry, gameID); err != nil {
		return nil, err
	}

	inv := &invocation{match: entry.match, player: claims.Player, args: cmdArgs}
	if rejection, ok := seatControl(strings.ToLower(strings.TrimSpace(name)), inv); !ok {
		return nil, rejectionError(inv, name, rejection)
	}
	decision, runErr := run(inv)
	if rejection, rejected := decision.First(); rejected && runErr == nil {
		return nil, rejectionError(inv, name, rejection)
	}
	if runErr != nil && len(decision.Effects) == 0 {
		return nil, commandError(runErr, name)
	}

	record := entry.record
	record.Snapshot = entry.match.Snapshot()
	record.UpdatedAt = s.clock().UTC()
	if err := s.store.SaveGame(ctx, record); err != nil {
		entry.reset()
		return nil, storeError(err, gameID)
	}
	entry.record = record
	if runErr != nil {
		return nil, commandError(runErr, name)
	}

	state, err := stateValue(record.Snapshot)
	if err != nil {
		return nil, err
	}
	effects, err := effectsValue(decision.Effects)
	if err != nil {
		return nil, err
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"game_id": structpb.NewStringValue(gameID),
		"status":  structpb.NewStringValue(record.Status()),
		"state":   state,
		"effects": effects,
	}}, nil
}

// load fills entry from storage unless it already holds the match.
func (s *Service) load(ctx context.Context, entry *liveMatch, gameID string) error {
	if entry.match != nil {
		return nil
	}
	record, err := s.store.GetGame(ctx, gameID)
	if err != nil {
		return storeError(err, gameID)
	}
	m, err := match.Restore(record.Snapshot, s.matchOptions(resumeSeed(record)))
	if err != nil {
		return apperrors.WrapWithMetadata(
			apperrors.CodeSnapshotInvalid,
			"stored snapshot is invalid",
			map[string]string{apperrors.MetadataGameID: gameID},
			err,
		)
	}
	entry.match = m
	entry.record = record
	return nil
}

// resumeSeed derives the AI seed of a reloaded match so it does not replay
// the random choices made before the reload.
func resumeSeed(record storage.GameRecord) uint64 {
	snap := record.Snapshot
	return record.Seed ^ uint64(snap.Round)<<32 ^ uint64(snap.Active)<<16
}

// ListGames returns one page of stored games.
func (s *Service) ListGames(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	ctx, span := startSpan(ctx, "ListGames")
	defer span.End()

	resp, err := s.listGames(ctx, fieldsOf(in))
	return resp, finish(ctx, span, err)
}

func (s *Service) listGames(ctx context.Context, args fields) (*structpb.Struct, error) {
	filterExpr, err := args.String("filter")
	if err != nil {
		return nil, err
	}
	pageSize, err := args.OptionalInt("page_size", 0)
	if err != nil {
		return nil, err
	}
	pageToken, err := args.String("page_token")
	if err != nil {
		return nil, err
	}

	page, err := s.store.ListGames(ctx, storage.ListQuery{
		Filter: filterExpr,
		PageSize: pagination.ClampPageSize(int32(pageSize), pagination.PageSizeConfig{
			Default: defaultListGamesPageSize,
			Max:     maxListGamesPageSize,
		}),
		PageToken: pageToken,
	})
	if err != nil {
		return nil, storeError(err, "")
	}

	summaries := make([]gameSummary, 0, len(page.Games))
	for _, record := range page.Games {
		summaries = append(summaries, summarize(record))
	}
	games, err := toValue(summaries)
	if err != nil {
		return nil, err
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"games":           games,
		"next_page_token": structpb.NewStringValue(page.NextPageToken),
	}}, nil
}

// storeError maps storage failures to platform errors.
func storeError(err error, gameID string) error {
	meta := map[string]string{apperrors.MetadataGameID: gameID}
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return apperrors.WrapWithMetadata(apperrors.CodeGameNotFound, "game not found", meta, err)
	case errors.Is(err, storage.ErrAlreadyExists):
		return apperrors.WrapWithMetadata(apperrors.CodeGameExists, "game already exists", meta, err)
	case errors.Is(err, filter.ErrInvalidFilter):
		return apperrors.Wrap(apperrors.CodeFilterInvalid, err.Error(), err)
	case errors.Is(err, pagination.ErrInvalidPageToken):
		return apperrors.Wrap(apperrors.CodePageTokenInvalid, "invalid page token", err)
	default:
		return fmt.Errorf("storage: %w", err)
	}
}

// commandError maps failures raised while running a command.
func commandError(err error, name string) error {
	if errors.Is(err, match.ErrAITurnFailed) {
		return apperrors.WrapWithMetadata(
			apperrors.CodeAITurnFailed,
			"ai turn failed",
			map[string]string{apperrors.MetadataCommand: name},
			err,
		)
	}
	return err
}

var _ VoragoServiceServer = (*Service)(nil)
