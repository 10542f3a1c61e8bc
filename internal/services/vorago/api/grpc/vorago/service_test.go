package vorago

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/louisbranch/vorago/internal/services/vorago/domain/game"
	"github.com/louisbranch/vorago/internal/services/vorago/seat"
	"github.com/louisbranch/vorago/internal/services/vorago/storage/sqlite"
)

type harness struct {
	client *Client
	store  *sqlite.Store
	seats  *seat.Authority
}

func newSeats(t *testing.T) *seat.Authority {
	t.Helper()
	seats, err := seat.NewAuthority(seat.Config{
		Issuer: "vorago-test",
		Key:    []byte("0123456789abcdef0123456789abcdef"),
		TTL:    time.Hour,
	})
	if err != nil {
		t.Fatalf("seat authority: %v", err)
	}
	return seats
}

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// serve starts svc on an in-memory listener and returns a client for it.
func serve(t *testing.T, svc *Service) *Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	server := grpc.NewServer(grpc.UnaryInterceptor(UnaryServerInterceptor()))
	RegisterVoragoServiceServer(server, svc)
	go func() { _ = server.Serve(lis) }()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return NewClient(conn)
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{store: openStore(t), seats: newSeats(t)}
	h.client = serve(t, NewService(h.store, h.seats))
	return h
}

type created struct {
	id     string
	grants map[game.Player]string
}

func (h *harness) create(t *testing.T, request map[string]any) created {
	t.Helper()
	resp, err := h.client.Call(context.Background(), CreateGameMethod, request)
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	out := created{
		id:     resp.GetFields()["game_id"].GetStringValue(),
		grants: map[game.Player]string{},
	}
	for key, value := range resp.GetFields()["seat_grants"].GetStructValue().GetFields() {
		switch key {
		case "1":
			out.grants[game.Player1] = value.GetStringValue()
		case "2":
			out.grants[game.Player2] = value.GetStringValue()
		}
	}
	if out.id == "" || out.grants[game.Player1] == "" {
		t.Fatalf("CreateGame response = %v", resp)
	}
	return out
}

func (h *harness) exec(ctx context.Context, g created, p game.Player, name string, args map[string]any) (*structpb.Struct, error) {
	if args == nil {
		args = map[string]any{}
	}
	return h.client.Call(ctx, ExecuteMethod, map[string]any{
		"game_id":    g.id,
		"seat_grant": g.grants[p],
		"command":    name,
		"args":       args,
	})
}

func (h *harness) mustExec(t *testing.T, g created, p game.Player, name string, args map[string]any) game.Snapshot {
	t.Helper()
	resp, err := h.exec(context.Background(), g, p, name, args)
	if err != nil {
		t.Fatalf("%s: %v", name, err)
	}
	snap, err := DecodeState(resp)
	if err != nil {
		t.Fatalf("decode state: %v", err)
	}
	return snap
}

// playTurn places a tray stone on entry and applies an ability.
func (h *harness) playTurn(t *testing.T, g created, p game.Player, entry int, ability string, target map[string]any) game.Snapshot {
	t.Helper()
	h.mustExec(t, g, p, CommandSelectUnplacedStone, map[string]any{"tray_index": 0})
	h.mustExec(t, g, p, CommandMoveStone, map[string]any{"ring": 0, "cell": entry})
	h.mustExec(t, g, p, CommandSelectAbility, map[string]any{"ability": ability})
	return h.mustExec(t, g, p, CommandApplyAbility, target)
}

func statusDetails(t *testing.T, err error) (*status.Status, *errdetails.ErrorInfo, *errdetails.LocalizedMessage) {
	t.Helper()
	st, ok := status.FromError(err)
	if !ok {
		t.Fatalf("not a status: %v", err)
	}
	var info *errdetails.ErrorInfo
	var msg *errdetails.LocalizedMessage
	for _, d := range st.Details() {
		switch v := d.(type) {
		case *errdetails.ErrorInfo:
			info = v
		case *errdetails.LocalizedMessage:
			msg = v
		}
	}
	if info == nil || msg == nil {
		t.Fatalf("missing details for %v", err)
	}
	return st, info, msg
}

func TestCreateGame_IssuesGrantPerHumanSeat(t *testing.T) {
	h := newHarness(t)

	pvp := h.create(t, map[string]any{"player1": "Ana", "player2": "Bia"})
	if pvp.grants[game.Player2] == "" {
		t.Fatal("expected grant for player 2")
	}
	resp, err := h.client.Call(context.Background(), GetGameMethod, map[string]any{"game_id": pvp.id})
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	snap, err := DecodeState(resp)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Round != 1 || snap.Active != game.Player1 {
		t.Fatalf("round/active = %d/%d", snap.Round, snap.Active)
	}
	if snap.Players[0].Name != "Ana" || snap.Players[1].Name != "Bia" {
		t.Fatalf("players = %+v", snap.Players)
	}

	vsAI := h.create(t, map[string]any{"player1": "Ana", "ai_enabled": true, "ai_difficulty": "hard"})
	if _, ok := vsAI.grants[game.Player2]; ok {
		t.Fatal("AI seat should not get a grant")
	}
}

func TestCreateGame_UnknownDifficulty(t *testing.T) {
	h := newHarness(t)
	_, err := h.client.Call(context.Background(), CreateGameMethod, map[string]any{"ai_enabled": true, "ai_difficulty": "brutal"})
	st, info, _ := statusDetails(t, err)
	if st.Code() != codes.InvalidArgument || info.Reason != game.RejectionDifficultyUnknown {
		t.Fatalf("status = %s %s", st.Code(), info.Reason)
	}
}

func TestExecute_FullTurnPassesControl(t *testing.T) {
	h := newHarness(t)
	g := h.create(t, map[string]any{})

	snap := h.playTurn(t, g, game.Player1, 0, "place_wall", map[string]any{"ring": 2, "cell": 5})
	if snap.Active != game.Player2 || snap.Round != 1 {
		t.Fatalf("active/round = %d/%d, want 2/1", snap.Active, snap.Round)
	}
	if snap.HasMovedStone || snap.HasUsedCoin {
		t.Fatal("turn flags should reset")
	}

	snap = h.playTurn(t, g, game.Player2, 4, "rotate_ring", map[string]any{"ring": 1, "direction": "cw"})
	if snap.Active != game.Player1 || snap.Round != 2 {
		t.Fatalf("active/round = %d/%d, want 1/2", snap.Active, snap.Round)
	}
}

func TestExecute_ReturnsEffects(t *testing.T) {
	h := newHarness(t)
	g := h.create(t, map[string]any{})

	resp, err := h.exec(context.Background(), g, game.Player1, CommandSelectUnplacedStone, map[string]any{"tray_index": 1})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	effects := resp.GetFields()["effects"].GetListValue().GetValues()
	if len(effects) != 1 {
		t.Fatalf("effects = %v", effects)
	}
	if got := effects[0].GetStructValue().GetFields()["type"].GetStringValue(); got != "stone.selected" {
		t.Fatalf("effect type = %q", got)
	}
}

func TestExecute_RejectionsAreLocalized(t *testing.T) {
	h := newHarness(t)
	g := h.create(t, map[string]any{})
	ctx := WithLocale(context.Background(), "pt-BR")

	_, err := h.exec(ctx, g, game.Player2, CommandSelectUnplacedStone, nil)
	st, info, msg := statusDetails(t, err)
	if st.Code() != codes.InvalidArgument {
		t.Fatalf("code = %s, want InvalidArgument", st.Code())
	}
	if info.Reason != game.RejectionNotYourTurn || info.Metadata["command"] != CommandSelectUnplacedStone {
		t.Fatalf("info = %+v", info)
	}
	if msg.Locale != "pt-BR" || msg.Message != "Não é a sua vez." {
		t.Fatalf("message = %+v", msg)
	}

	h.playTurn(t, g, game.Player1, 0, "place_wall", map[string]any{"ring": 2, "cell": 5})
	h.mustExec(t, g, game.Player2, CommandSelectUnplacedStone, nil)
	_, err = h.exec(ctx, g, game.Player2, CommandMoveStone, map[string]any{"ring": 0, "cell": 0})
	st, info, msg = statusDetails(t, err)
	if st.Code() != codes.FailedPrecondition || info.Reason != game.RejectionDestinationOccupied {
		t.Fatalf("status = %s %s", st.Code(), info.Reason)
	}
	if msg.Message != "Essa casa está ocupada." {
		t.Fatalf("message = %q", msg.Message)
	}
}

func TestExecute_CooldownCarriesAvailableRound(t *testing.T) {
	h := newHarness(t)
	g := h.create(t, map[string]any{})

	h.playTurn(t, g, game.Player1, 0, "lock_ring", map[string]any{"ring": 4})
	h.playTurn(t, g, game.Player2, 4, "place_wall", map[string]any{"ring": 2, "cell": 5})

	_, err := h.exec(context.Background(), g, game.Player1, CommandSelectAbility, map[string]any{"ability": "lock_ring"})
	_, info, msg := statusDetails(t, err)
	if info.Reason != game.RejectionAbilityOnCooldown || info.Metadata["available_round"] != "3" {
		t.Fatalf("info = %+v", info)
	}
	if msg.Message != "That ability is recharging until round 3." {
		t.Fatalf("message = %q", msg.Message)
	}
}

func TestExecute_SeatGrantChecks(t *testing.T) {
	h := newHarness(t)
	a := h.create(t, map[string]any{})
	b := h.create(t, map[string]any{})

	foreign := created{id: b.id, grants: a.grants}
	_, err := h.exec(context.Background(), foreign, game.Player1, CommandPass, nil)
	if st, _ := status.FromError(err); st.Code() != codes.PermissionDenied {
		t.Fatalf("code = %s, want PermissionDenied", st.Code())
	}

	missing := created{id: a.id, grants: map[game.Player]string{}}
	_, err = h.exec(context.Background(), missing, game.Player1, CommandPass, nil)
	if st, _ := status.FromError(err); st.Code() != codes.Unauthenticated {
		t.Fatalf("code = %s, want Unauthenticated", st.Code())
	}

	// A grant in request metadata stands in for the body field.
	ctx := WithSeatGrant(context.Background(), a.grants[game.Player1])
	if _, err := h.exec(ctx, missing, game.Player1, CommandSelectUnplacedStone, nil); err != nil {
		t.Fatalf("metadata grant: %v", err)
	}
}

func TestExecute_InvalidRequests(t *testing.T) {
	h := newHarness(t)
	g := h.create(t, map[string]any{})

	tests := []struct {
		name    string
		command string
		args    map[string]any
		reason  string
	}{
		{name: "unknown command", command: "teleport", reason: "UNKNOWN_COMMAND"},
		{name: "ring out of range", command: CommandSelectStone, args: map[string]any{"ring": 7, "cell": 0}, reason: "INVALID_REQUEST"},
		{name: "cell out of range", command: CommandMoveStone, args: map[string]any{"ring": 4, "cell": 4}, reason: "INVALID_REQUEST"},
		{name: "fractional index", command: CommandSelectUnplacedStone, args: map[string]any{"tray_index": 0.5}, reason: "INVALID_REQUEST"},
		{name: "unknown ability", command: CommandSelectAbility, args: map[string]any{"ability": "fireball"}, reason: "UNKNOWN_ABILITY"},
		{name: "bad direction", command: CommandRotateRing, args: map[string]any{"ring": 1, "direction": "up"}, reason: "INVALID_REQUEST"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.exec(context.Background(), g, game.Player1, tt.command, tt.args)
			st, info, _ := statusDetails(t, err)
			if st.Code() != codes.InvalidArgument || info.Reason != tt.reason {
				t.Fatalf("status = %s %s, want InvalidArgument %s", st.Code(), info.Reason, tt.reason)
			}
		})
	}
}

func TestExecute_AIRepliesAutomatically(t *testing.T) {
	h := newHarness(t)
	g := h.create(t, map[string]any{"ai_enabled": true, "ai_difficulty": "easy"})

	snap := h.playTurn(t, g, game.Player1, 0, "place_wall", map[string]any{"ring": 2, "cell": 5})
	if snap.Active != game.Player1 || snap.Round != 2 {
		t.Fatalf("active/round = %d/%d, want 1/2", snap.Active, snap.Round)
	}
	placed := 0
	for _, s := range snap.Stones {
		if s.Owner == game.Player2 && s.Status != game.StatusTray {
			placed++
		}
	}
	if placed != 1 {
		t.Fatalf("AI placed %d stones, want 1", placed)
	}
}

func TestExecute_ResumesFromStorage(t *testing.T) {
	h := newHarness(t)
	g := h.create(t, map[string]any{})
	h.mustExec(t, g, game.Player1, CommandSelectUnplacedStone, nil)
	h.mustExec(t, g, game.Player1, CommandMoveStone, map[string]any{"ring": 0, "cell": 8})

	restarted := &harness{store: h.store, seats: h.seats}
	restarted.client = serve(t, NewService(h.store, h.seats))
	snap := restarted.mustExec(t, g, game.Player1, CommandRotateRing, map[string]any{"ring": 0, "direction": "ccw"})
	if snap.Active != game.Player2 {
		t.Fatalf("active = %d, want 2", snap.Active)
	}
	if snap.Rings[0].Offset != 31 {
		t.Fatalf("ring 0 offset = %d, want 31", snap.Rings[0].Offset)
	}
}

func TestGetGame_NotFound(t *testing.T) {
	h := newHarness(t)
	_, err := h.client.Call(context.Background(), GetGameMethod, map[string]any{"game_id": "missing"})
	st, info, msg := statusDetails(t, err)
	if st.Code() != codes.NotFound || info.Reason != "GAME_NOT_FOUND" {
		t.Fatalf("status = %s %s", st.Code(), info.Reason)
	}
	if msg.Message != "Game missing was not found." {
		t.Fatalf("message = %q", msg.Message)
	}
}

func TestListGames(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 3; i++ {
		h.create(t, map[string]any{})
	}

	first, err := h.client.Call(context.Background(), ListGamesMethod, map[string]any{"page_size": 2, "filter": `status = "active"`})
	if err != nil {
		t.Fatalf("ListGames: %v", err)
	}
	if got := len(first.GetFields()["games"].GetListValue().GetValues()); got != 2 {
		t.Fatalf("first page = %d games, want 2", got)
	}
	token := first.GetFields()["next_page_token"].GetStringValue()
	if token == "" {
		t.Fatal("expected next page token")
	}

	second, err := h.client.Call(context.Background(), ListGamesMethod, map[string]any{"page_size": 2, "filter": `status = "active"`, "page_token": token})
	if err != nil {
		t.Fatalf("ListGames page 2: %v", err)
	}
	if got := len(second.GetFields()["games"].GetListValue().GetValues()); got != 1 {
		t.Fatalf("second page = %d games, want 1", got)
	}
	if second.GetFields()["next_page_token"].GetStringValue() != "" {
		t.Fatal("expected last page")
	}

	_, err = h.client.Call(context.Background(), ListGamesMethod, map[string]any{"filter": `colour = "red"`})
	if st, _ := status.FromError(err); st.Code() != codes.InvalidArgument {
		t.Fatalf("bad filter code = %s", st.Code())
	}
	_, err = h.client.Call(context.Background(), ListGamesMethod, map[string]any{"page_token": token})
	if st, _ := status.FromError(err); st.Code() != codes.InvalidArgument {
		t.Fatalf("mismatched token code = %s", st.Code())
	}
}

func TestCommandNames_Sorted(t *testing.T) {
	names := CommandNames()
	if len(names) != 12 {
		t.Fatalf("len = %d, want 12", len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("names not sorted: %v", names)
		}
	}
}
