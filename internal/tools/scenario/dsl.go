package scenario

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/Shopify/go-lua"
)

const (
	scenarioTypeName = "scenario"
	stepTypeName     = "step"
)

// Scenario is an ordered list of steps built by a Lua script.
type Scenario struct {
	Name  string
	Steps []Step
}

// Step is one scripted action or expectation.
type Step struct {
	Kind string
	Args map[string]any
}

// stepRef lets scripts chain modifiers onto the step just added.
type stepRef struct {
	scenario  *Scenario
	stepIndex int
}

// LoadScenarioFromFile runs a Lua script that must return a Scenario.
func LoadScenarioFromFile(path string) (*Scenario, error) {
	state := newLuaState()
	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	scenario, err := runScript(state)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(scenario.Name) == "" {
		scenario.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return scenario, nil
}

// LoadScenario runs Lua source that must return a Scenario.
func LoadScenario(source string) (*Scenario, error) {
	state := newLuaState()
	if err := lua.LoadString(state, source); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	return runScript(state)
}

func newLuaState() *lua.State {
	state := lua.NewState()
	lua.OpenLibraries(state)
	registerLuaTypes(state)
	return state
}

func runScript(state *lua.State) (*Scenario, error) {
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}
	if state.TypeOf(-1) != lua.TypeUserData {
		state.Pop(1)
		return nil, fmt.Errorf("scenario script must return Scenario")
	}
	ud := state.ToUserData(-1)
	state.Pop(1)
	scenario, ok := ud.(*Scenario)
	if !ok || scenario == nil {
		return nil, fmt.Errorf("scenario script returned invalid Scenario")
	}
	return scenario, nil
}

func registerLuaTypes(state *lua.State) {
	lua.NewMetaTable(state, scenarioTypeName)
	state.NewTable()
	lua.SetFunctions(state, scenarioMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)

	lua.NewMetaTable(state, stepTypeName)
	state.NewTable()
	lua.SetFunctions(state, stepMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)

	state.NewTable()
	lua.SetFunctions(state, scenarioConstructor, 0)
	state.SetGlobal("Scenario")
}

var scenarioConstructor = []lua.RegistryFunction{
	{Name: "new", Function: scenarioNew},
}

var scenarioMethods = []lua.RegistryFunction{
	{Name: "game", Function: scenarioGame},
	{Name: "names", Function: scenarioNames},
	{Name: "ai_mode", Function: scenarioAIMode},
	{Name: "command", Function: scenarioCommand},
	{Name: "select_unplaced", Function: scenarioSelectUnplaced},
	{Name: "select", Function: scenarioSelect},
	{Name: "move", Function: scenarioMove},
	{Name: "place", Function: scenarioPlace},
	{Name: "ability", Function: scenarioAbility},
	{Name: "rotate", Function: scenarioRotate},
	{Name: "end_turn", Function: scenarioEndTurn},
	{Name: "pass", Function: scenarioPass},
	{Name: "ai_turn", Function: scenarioAITurn},
	{Name: "expect", Function: scenarioExpect},
	{Name: "expect_stone", Function: scenarioExpectStone},
	{Name: "expect_cell", Function: scenarioExpectCell},
	{Name: "expect_ring", Function: scenarioExpectRing},
	{Name: "expect_cooldown", Function: scenarioExpectCooldown},
}

var stepMethods = []lua.RegistryFunction{
	{Name: "rejected", Function: stepRejected},
}

func scenarioNew(state *lua.State) int {
	name := lua.OptString(state, 1, "")
	state.PushUserData(&Scenario{Name: name})
	lua.SetMetaTableNamed(state, scenarioTypeName)
	return 1
}

func scenarioGame(state *lua.State) int {
	scenario := checkScenario(state)
	appendStep(scenario, "game", optionalTable(state, 2))
	return 0
}

func scenarioNames(state *lua.State) int {
	scenario := checkScenario(state)
	args := map[string]any{
		"player1": lua.CheckString(state, 2),
		"player2": lua.CheckString(state, 3),
	}
	return pushCommand(state, scenario, 1, "set_player_names", args)
}

func scenarioAIMode(state *lua.State) int {
	scenario := checkScenario(state)
	args := map[string]any{
		"enabled":    state.ToBoolean(2),
		"difficulty": lua.OptString(state, 3, ""),
	}
	return pushCommand(state, scenario, 1, "set_ai_mode", args)
}

func scenarioCommand(state *lua.State) int {
	scenario := checkScenario(state)
	player := lua.CheckInteger(state, 2)
	name := lua.CheckString(state, 3)
	return pushCommand(state, scenario, player, name, optionalTable(state, 4))
}

func scenarioSelectUnplaced(state *lua.State) int {
	scenario := checkScenario(state)
	player := lua.CheckInteger(state, 2)
	index := lua.OptInteger(state, 3, 0)
	return pushCommand(state, scenario, player, "select_unplaced_stone", map[string]any{"tray_index": index})
}

func scenarioSelect(state *lua.State) int {
	scenario := checkScenario(state)
	player := lua.CheckInteger(state, 2)
	lua.CheckType(state, 3, lua.TypeTable)
	return pushCommand(state, scenario, player, "select_stone", tableToMap(state, 3))
}

func scenarioMove(state *lua.State) int {
	scenario := checkScenario(state)
	player := lua.CheckInteger(state, 2)
	lua.CheckType(state, 3, lua.TypeTable)
	return pushCommand(state, scenario, player, "move_stone", tableToMap(state, 3))
}

// scenarioPlace selects the first tray stone and moves it onto an entry cell.
func scenarioPlace(state *lua.State) int {
	scenario := checkScenario(state)
	player := lua.CheckInteger(state, 2)
	lua.CheckType(state, 3, lua.TypeTable)
	appendStep(scenario, "command", map[string]any{
		"player":  player,
		"command": "select_unplaced_stone",
		"args":    map[string]any{"tray_index": 0},
	})
	return pushCommand(state, scenario, player, "move_stone", tableToMap(state, 3))
}

func scenarioAbility(state *lua.State) int {
	scenario := checkScenario(state)
	player := lua.CheckInteger(state, 2)
	ability := lua.CheckString(state, 3)
	index := appendStep(scenario, "ability", map[string]any{
		"player":  player,
		"ability": ability,
		"target":  optionalTable(state, 4),
	})
	return pushStepRef(state, scenario, index)
}

func scenarioRotate(state *lua.State) int {
	scenario := checkScenario(state)
	player := lua.CheckInteger(state, 2)
	lua.CheckType(state, 3, lua.TypeTable)
	return pushCommand(state, scenario, player, "rotate_ring", tableToMap(state, 3))
}

func scenarioEndTurn(state *lua.State) int {
	scenario := checkScenario(state)
	player := lua.CheckInteger(state, 2)
	return pushCommand(state, scenario, player, "end_turn", nil)
}

func scenarioPass(state *lua.State) int {
	scenario := checkScenario(state)
	player := lua.CheckInteger(state, 2)
	return pushCommand(state, scenario, player, "pass", nil)
}

func scenarioAITurn(state *lua.State) int {
	scenario := checkScenario(state)
	return pushCommand(state, scenario, 2, "execute_ai_turn", nil)
}

func scenarioExpect(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	appendStep(scenario, "expect", tableToMap(state, 2))
	return 0
}

func scenarioExpectStone(state *lua.State) int {
	scenario := checkScenario(state)
	id := lua.CheckInteger(state, 2)
	lua.CheckType(state, 3, lua.TypeTable)
	data := tableToMap(state, 3)
	data["stone"] = id
	appendStep(scenario, "expect_stone", data)
	return 0
}

func scenarioExpectCell(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	appendStep(scenario, "expect_cell", tableToMap(state, 2))
	return 0
}

func scenarioExpectRing(state *lua.State) int {
	scenario := checkScenario(state)
	ring := lua.CheckInteger(state, 2)
	lua.CheckType(state, 3, lua.TypeTable)
	data := tableToMap(state, 3)
	data["ring"] = ring
	appendStep(scenario, "expect_ring", data)
	return 0
}

func scenarioExpectCooldown(state *lua.State) int {
	scenario := checkScenario(state)
	appendStep(scenario, "expect_cooldown", map[string]any{
		"player":  lua.CheckInteger(state, 2),
		"ability": lua.CheckString(state, 3),
		"round":   lua.OptInteger(state, 4, 0),
	})
	return 0
}

// stepRejected marks the step as expecting a rejection with the given code.
func stepRejected(state *lua.State) int {
	ud := lua.CheckUserData(state, 1, stepTypeName)
	ref, ok := ud.(*stepRef)
	if !ok || ref == nil || ref.scenario == nil {
		lua.ArgumentError(state, 1, "step expected")
		return 0
	}
	code := lua.CheckString(state, 2)
	if ref.stepIndex >= 0 && ref.stepIndex < len(ref.scenario.Steps) {
		ref.scenario.Steps[ref.stepIndex].Args["reject"] = strings.ToUpper(strings.TrimSpace(code))
	}
	state.PushValue(1)
	return 1
}

func pushCommand(state *lua.State, scenario *Scenario, player int, name string, args map[string]any) int {
	if args == nil {
		args = map[string]any{}
	}
	index := appendStep(scenario, "command", map[string]any{
		"player":  player,
		"command": name,
		"args":    args,
	})
	return pushStepRef(state, scenario, index)
}

func pushStepRef(state *lua.State, scenario *Scenario, index int) int {
	state.PushUserData(&stepRef{scenario: scenario, stepIndex: index})
	lua.SetMetaTableNamed(state, stepTypeName)
	return 1
}

func checkScenario(state *lua.State) *Scenario {
	ud := lua.CheckUserData(state, 1, scenarioTypeName)
	if scenario, ok := ud.(*Scenario); ok && scenario != nil {
		return scenario
	}
	lua.ArgumentError(state, 1, "scenario expected")
	return nil
}

func appendStep(scenario *Scenario, kind string, data map[string]any) int {
	if scenario == nil {
		return -1
	}
	if data == nil {
		data = map[string]any{}
	}
	scenario.Steps = append(scenario.Steps, Step{Kind: kind, Args: data})
	return len(scenario.Steps) - 1
}

func optionalTable(state *lua.State, index int) map[string]any {
	if state.IsNoneOrNil(index) || state.TypeOf(index) != lua.TypeTable {
		return map[string]any{}
	}
	return tableToMap(state, index)
}

func tableToMap(state *lua.State, index int) map[string]any {
	output := map[string]any{}
	if state.TypeOf(index) != lua.TypeTable {
		return output
	}

	index = state.AbsIndex(index)
	state.PushNil()
	for state.Next(index) {
		if state.TypeOf(-2) == lua.TypeString {
			key, _ := state.ToString(-2)
			output[key] = luaToGo(state, -1)
		}
		state.Pop(1)
	}
	return output
}

func luaToGo(state *lua.State, index int) any {
	switch state.TypeOf(index) {
	case lua.TypeString:
		value, _ := state.ToString(index)
		return value
	case lua.TypeNumber:
		value, _ := state.ToNumber(index)
		return normalizeNumber(value)
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	case lua.TypeTable:
		return tableToGo(state, index)
	default:
		return nil
	}
}

func tableToGo(state *lua.State, index int) any {
	if state.TypeOf(index) != lua.TypeTable {
		return nil
	}

	index = state.AbsIndex(index)
	isArray := true
	maxIndex := 0
	count := 0
	state.PushNil()
	for state.Next(index) {
		if isArray {
			if state.TypeOf(-2) != lua.TypeNumber {
				isArray = false
			} else if idx, ok := state.ToInteger(-2); ok && idx > 0 {
				count++
				if idx > maxIndex {
					maxIndex = idx
				}
			} else {
				isArray = false
			}
		}
		state.Pop(1)
	}

	if isArray && count > 0 && maxIndex == count {
		result := make([]any, 0, maxIndex)
		for i := 1; i <= maxIndex; i++ {
			state.RawGetInt(index, i)
			result = append(result, luaToGo(state, -1))
			state.Pop(1)
		}
		return result
	}

	return tableToMap(state, index)
}

func normalizeNumber(value float64) any {
	if math.Mod(value, 1) == 0 {
		return int(value)
	}
	return value
}
