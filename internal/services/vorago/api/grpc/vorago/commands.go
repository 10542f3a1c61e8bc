package vorago

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"

	apperrors "github.com/louisbranch/vorago/internal/platform/errors"
	"github.com/louisbranch/vorago/internal/services/vorago/domain/board"
	"github.com/louisbranch/vorago/internal/services/vorago/domain/coin"
	"github.com/louisbranch/vorago/internal/services/vorago/domain/command"
	"github.com/louisbranch/vorago/internal/services/vorago/domain/game"
	"github.com/louisbranch/vorago/internal/services/vorago/domain/match"
)

// Command names accepted by Execute.
const (
	CommandNewGame             = "new_game"
	CommandSetPlayerNames      = "set_player_names"
	CommandSetAIMode           = "set_ai_mode"
	CommandSelectStone         = "select_stone"
	CommandSelectUnplacedStone = "select_unplaced_stone"
	CommandMoveStone           = "move_stone"
	CommandSelectAbility       = "select_ability"
	CommandApplyAbility        = "apply_ability"
	CommandRotateRing          = "rotate_ring"
	CommandEndTurn             = "end_turn"
	CommandPass                = "pass"
	CommandExecuteAITurn       = "execute_ai_turn"
)

// Rejection codes for match-level commands a seat holder may not run.
const (
	RejectionGameInProgress   = "GAME_IN_PROGRESS"
	RejectionSeatControlFixed = "SEAT_CONTROL_FIXED"
	RejectionSeatNotOwned     = "SEAT_NOT_OWNED"
)

// invocation is one Execute call after the seat grant was checked.
type invocation struct {
	match  *match.Match
	player game.Player
	args   fields
	// ability is the coin the command concerns, used to explain cooldowns.
	ability coin.ID
}

func (inv *invocation) board() *board.Board {
	return inv.match.Game().Board()
}

type commandFunc func(inv *invocation) (command.Decision, error)

var commands = map[string]commandFunc{
	CommandNewGame: func(inv *invocation) (command.Decision, error) {
		return inv.match.NewGame()
	},
	CommandSetPlayerNames: func(inv *invocation) (command.Decision, error) {
		g := inv.match.Game()
		names := make(map[game.Player]string, 2)
		for _, p := range []game.Player{game.Player1, game.Player2} {
			name, err := inv.args.String(playerNameField(p))
			if err != nil {
				return command.Decision{}, err
			}
			if name == "" {
				name = g.PlayerName(p)
			}
			names[p] = name
		}
		return inv.match.SetPlayerNames(names[game.Player1], names[game.Player2])
	},
	CommandSetAIMode: func(inv *invocation) (command.Decision, error) {
		enabled, err := inv.args.Bool("enabled")
		if err != nil {
			return command.Decision{}, err
		}
		difficulty, err := inv.args.String("difficulty")
		if err != nil {
			return command.Decision{}, err
		}
		if difficulty == "" {
			difficulty = string(inv.match.Game().AI().Difficulty)
		}
		return inv.match.SetAIMode(enabled, game.Difficulty(difficulty))
	},
	CommandSelectStone: func(inv *invocation) (command.Decision, error) {
		ref, err := inv.args.Ref(inv.board(), true)
		if err != nil {
			return command.Decision{}, err
		}
		return inv.match.SelectStone(inv.player, ref)
	},
	CommandSelectUnplacedStone: func(inv *invocation) (command.Decision, error) {
		index, err := inv.args.OptionalInt("tray_index", 0)
		if err != nil {
			return command.Decision{}, err
		}
		return inv.match.SelectUnplacedStone(inv.player, index)
	},
	CommandMoveStone: func(inv *invocation) (command.Decision, error) {
		ref, err := inv.args.Ref(inv.board(), true)
		if err != nil {
			return command.Decision{}, err
		}
		return inv.match.MoveStone(inv.player, ref)
	},
	CommandSelectAbility: func(inv *invocation) (command.Decision, error) {
		id, err := abilityArg(inv)
		if err != nil {
			return command.Decision{}, err
		}
		inv.ability = id
		return inv.match.SelectAbility(inv.player, id)
	},
	CommandApplyAbility: func(inv *invocation) (command.Decision, error) {
		g := inv.match.Game()
		inv.ability = g.Selection().Ability
		var target coin.Target
		if inv.ability != "" {
			c, _ := g.Catalog().Lookup(inv.ability)
			parsed, err := targetArgs(inv.args, g.Board(), c.TargetKind())
			if err != nil {
				return command.Decision{}, err
			}
			target = parsed
		}
		return inv.match.ApplyAbility(inv.player, target)
	},
	CommandRotateRing: func(inv *invocation) (command.Decision, error) {
		target, err := targetArgs(inv.args, inv.board(), coin.TargetRingDirection)
		if err != nil {
			return command.Decision{}, err
		}
		inv.ability = coin.RotateRing
		return inv.match.RotateRing(inv.player, target.Ring, target.Direction)
	},
	CommandEndTurn: func(inv *invocation) (command.Decision, error) {
		g := inv.match.Game()
		if !g.Won() && g.Active() != inv.player {
			return command.Reject(command.Invalid(game.RejectionNotYourTurn, "it is "+g.Active().String()+"'s turn")), nil
		}
		return inv.match.EndTurn()
	},
	CommandPass: func(inv *invocation) (command.Decision, error) {
		return inv.match.Pass(inv.player)
	},
	CommandExecuteAITurn: func(inv *invocation) (command.Decision, error) {
		return inv.match.ExecuteAITurn()
	},
}

// CommandNames lists every command accepted by Execute, sorted.
func CommandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// seatControl limits a network seat holder to changes that only affect seats
// nobody else holds. Seat grants are issued once at creation, so the set of
// human seats is fixed for the life of a game.
func seatControl(name string, inv *invocation) (command.Rejection, bool) {
	g := inv.match.Game()
	switch name {
	case CommandNewGame:
		if !g.Won() {
			return command.Invalid(RejectionGameInProgress, "a new game can only start once this one is won"), false
		}
	case CommandSetAIMode:
		enabled, err := inv.args.Bool("enabled")
		if err == nil && enabled != g.AI().Enabled {
			return command.Invalid(RejectionSeatControlFixed, "the AI seat is fixed when the game is created"), false
		}
	case CommandSetPlayerNames:
		for _, p := range []game.Player{game.Player1, game.Player2} {
			requested, err := inv.args.String(playerNameField(p))
			if err != nil || requested == "" || requested == g.PlayerName(p) {
				continue
			}
			if !controlsSeat(g, inv.player, p) {
				return command.Invalid(RejectionSeatNotOwned, "only the holder of "+p.String()+" may rename it"), false
			}
		}
	}
	return command.Rejection{}, true
}

// controlsSeat reports whether the holder of caller's grant speaks for seat p:
// its own seat, or the AI seat nobody holds.
func controlsSeat(g *game.Game, caller, p game.Player) bool {
	if caller == p {
		return true
	}
	ai := g.AI()
	return ai.Enabled && ai.Seat == p
}

func playerNameField(p game.Player) string {
	return "player" + strconv.Itoa(int(p))
}

func lookupCommand(name string) (commandFunc, bool) {
	run, ok := commands[strings.ToLower(strings.TrimSpace(name))]
	return run, ok
}

func unknownCommandError(name string) error {
	return apperrors.WithMetadata(
		apperrors.CodeUnknownCommand,
		"unknown command "+name,
		map[string]string{apperrors.MetadataCommand: name},
	)
}

// Dispatch runs the named command on m for player, decoding args the same
// way Execute does. Rejections stay in the decision; unknown commands and
// malformed arguments are platform errors.
func Dispatch(m *match.Match, player game.Player, name string, args map[string]any) (command.Decision, error) {
	run, ok := lookupCommand(name)
	if !ok {
		return command.Decision{}, unknownCommandError(name)
	}
	in, err := structpb.NewStruct(args)
	if err != nil {
		return command.Decision{}, apperrors.New(apperrors.CodeInvalidRequest, fmt.Sprintf("args: %v", err))
	}
	return run(&invocation{match: m, player: player, args: fieldsOf(in)})
}

func abilityArg(inv *invocation) (coin.ID, error) {
	raw, err := inv.args.RequiredString("ability")
	if err != nil {
		return "", err
	}
	id := coin.ID(strings.ToLower(raw))
	if _, ok := inv.match.Game().Catalog().Lookup(id); !ok {
		return "", apperrors.WithMetadata(
			apperrors.CodeUnknownAbility,
			"unknown ability "+raw,
			map[string]string{apperrors.MetadataAbility: raw},
		)
	}
	return id, nil
}

func targetArgs(args fields, b *board.Board, kind coin.TargetKind) (coin.Target, error) {
	switch kind {
	case coin.TargetCell:
		ref, err := args.Ref(b, false)
		if err != nil {
			return coin.Target{}, err
		}
		return coin.Target{Cell: ref}, nil
	case coin.TargetRing:
		ring, err := args.Ring(b)
		if err != nil {
			return coin.Target{}, err
		}
		return coin.Target{Ring: ring}, nil
	default:
		ring, err := args.Ring(b)
		if err != nil {
			return coin.Target{}, err
		}
		direction, err := args.Direction()
		if err != nil {
			return coin.Target{}, err
		}
		return coin.Target{Ring: ring, Direction: direction}, nil
	}
}

// rejectionError turns the first rejection of a decision into a platform
// error whose reason selects the localized message.
func rejectionError(inv *invocation, name string, rejection command.Rejection) error {
	code := apperrors.CodeRuleViolation
	if rejection.Kind == command.KindInvalidCommand {
		code = apperrors.CodeInvalidCommand
	}
	metadata := map[string]string{
		apperrors.MetadataReason:  rejection.Code,
		apperrors.MetadataCommand: name,
		apperrors.MetadataPlayer:  strconv.Itoa(int(inv.player)),
	}
	if inv.ability != "" {
		metadata[apperrors.MetadataAbility] = string(inv.ability)
		if rejection.Code == game.RejectionAbilityOnCooldown {
			if round, ok := inv.match.Game().Disabled(inv.player)[inv.ability]; ok {
				metadata[apperrors.MetadataAvailableRound] = strconv.Itoa(round)
			}
		}
	}
	return apperrors.WithMetadata(code, rejection.Message, metadata)
}
