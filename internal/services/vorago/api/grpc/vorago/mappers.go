package vorago

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	apperrors "github.com/louisbranch/vorago/internal/platform/errors"
	"github.com/louisbranch/vorago/internal/services/vorago/domain/board"
	"github.com/louisbranch/vorago/internal/services/vorago/domain/command"
	"github.com/louisbranch/vorago/internal/services/vorago/domain/game"
	"github.com/louisbranch/vorago/internal/services/vorago/storage"
)

// fields reads typed values out of a request Struct.
type fields map[string]*structpb.Value

func fieldsOf(s *structpb.Struct) fields {
	if s == nil {
		return fields{}
	}
	return s.GetFields()
}

func invalidField(name, format string, args ...any) error {
	return apperrors.WithMetadata(
		apperrors.CodeInvalidRequest,
		fmt.Sprintf(format, args...),
		map[string]string{apperrors.MetadataField: name},
	)
}

// String returns a trimmed string field, or "" when absent.
func (f fields) String(name string) (string, error) {
	v, ok := f[name]
	if !ok || isNull(v) {
		return "", nil
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", invalidField(name, "%s must be a string", name)
	}
	return strings.TrimSpace(s.StringValue), nil
}

// RequiredString returns a non-empty string field.
func (f fields) RequiredString(name string) (string, error) {
	s, err := f.String(name)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", invalidField(name, "%s is required", name)
	}
	return s, nil
}

// Int returns an integral number field. Absent fields are an error.
func (f fields) Int(name string) (int, error) {
	v, ok := f[name]
	if !ok || isNull(v) {
		return 0, invalidField(name, "%s is required", name)
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, invalidField(name, "%s must be a number", name)
	}
	if n.NumberValue != math.Trunc(n.NumberValue) || math.Abs(n.NumberValue) > math.MaxInt32 {
		return 0, invalidField(name, "%s must be an integer", name)
	}
	return int(n.NumberValue), nil
}

// OptionalInt returns def when the field is absent.
func (f fields) OptionalInt(name string, def int) (int, error) {
	if v, ok := f[name]; !ok || isNull(v) {
		return def, nil
	}
	return f.Int(name)
}

// Bool returns a boolean field, false when absent.
func (f fields) Bool(name string) (bool, error) {
	v, ok := f[name]
	if !ok || isNull(v) {
		return false, nil
	}
	b, ok := v.GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return false, invalidField(name, "%s must be a boolean", name)
	}
	return b.BoolValue, nil
}

// Struct returns a nested object field, empty when absent.
func (f fields) Struct(name string) (fields, error) {
	v, ok := f[name]
	if !ok || isNull(v) {
		return fields{}, nil
	}
	s, ok := v.GetKind().(*structpb.Value_StructValue)
	if !ok {
		return nil, invalidField(name, "%s must be an object", name)
	}
	return fieldsOf(s.StructValue), nil
}

func isNull(v *structpb.Value) bool {
	_, ok := v.GetKind().(*structpb.Value_NullValue)
	return v == nil || ok
}

// Ref reads ring and cell fields. Center is ring 5, cell 0.
func (f fields) Ref(b *board.Board, allowCenter bool) (board.Ref, error) {
	ring, err := f.Int("ring")
	if err != nil {
		return board.Ref{}, err
	}
	cell, err := f.OptionalInt("cell", 0)
	if err != nil {
		return board.Ref{}, err
	}
	ref := board.Ref{Ring: ring, Cell: cell}
	if ref.IsCenter() {
		if !allowCenter || cell != 0 {
			return board.Ref{}, invalidField("cell", "%s is not a valid target", ref)
		}
		return board.Center, nil
	}
	if !b.ValidRing(ring) {
		return board.Ref{}, invalidField("ring", "ring %d does not exist", ring)
	}
	if !b.ValidCell(ref) {
		return board.Ref{}, invalidField("cell", "cell %d does not exist on ring %d", cell, ring)
	}
	return ref, nil
}

// Ring reads a ring index.
func (f fields) Ring(b *board.Board) (int, error) {
	ring, err := f.Int("ring")
	if err != nil {
		return 0, err
	}
	if !b.ValidRing(ring) {
		return 0, invalidField("ring", "ring %d does not exist", ring)
	}
	return ring, nil
}

// Direction reads a rotation direction, "cw" or "ccw".
func (f fields) Direction() (board.Direction, error) {
	raw, err := f.RequiredString("direction")
	if err != nil {
		return 0, err
	}
	direction, ok := board.ParseDirection(raw)
	if !ok {
		return 0, invalidField("direction", "unknown direction %q", raw)
	}
	return direction, nil
}

// toValue converts any JSON-encodable value into a structpb.Value.
func toValue(v any) (*structpb.Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	out := &structpb.Value{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("convert value: %w", err)
	}
	return out, nil
}

func stateValue(snap game.Snapshot) (*structpb.Value, error) {
	return toValue(snap)
}

func effectsValue(effects []command.Effect) (*structpb.Value, error) {
	if effects == nil {
		effects = []command.Effect{}
	}
	return toValue(effects)
}

// gameSummary is the listing view of a stored game.
type gameSummary struct {
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

func summarize(record storage.GameRecord) gameSummary {
	snap := record.Snapshot
	summary := gameSummary{
		GameID:       record.ID,
		Status:       record.Status(),
		Round:        snap.Round,
		Active:       int(snap.Active),
		Winner:       int(snap.Winner),
		AIEnabled:    snap.AI.Enabled,
		AIDifficulty: string(snap.AI.Difficulty),
		CreatedAt:    record.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    record.UpdatedAt.UTC().Format(time.RFC3339),
	}
	for _, p := range snap.Players {
		switch p.Player {
		case game.Player1:
			summary.Player1 = p.Name
		case game.Player2:
			summary.Player2 = p.Name
		}
	}
	return summary
}

// DecodeState reads the "state" field of a response into a snapshot.
func DecodeState(resp *structpb.Struct) (game.Snapshot, error) {
	value, ok := resp.GetFields()["state"]
	if !ok {
		return game.Snapshot{}, fmt.Errorf("response has no state")
	}
	data, err := protojson.Marshal(value)
	if err != nil {
		return game.Snapshot{}, fmt.Errorf("encode state: %w", err)
	}
	var snap game.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return game.Snapshot{}, fmt.Errorf("decode state: %w", err)
	}
	return snap, nil
}
