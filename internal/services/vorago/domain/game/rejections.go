package game

// Rejection codes for InvalidCommand outcomes.
const (
	RejectionGameOver                 = "GAME_OVER"
	RejectionNotYourTurn              = "NOT_YOUR_TURN"
	RejectionPlayerUnknown            = "PLAYER_UNKNOWN"
	RejectionStoneSelectionRequired   = "STONE_SELECTION_REQUIRED"
	RejectionAbilitySelectionRequired = "ABILITY_SELECTION_REQUIRED"
	RejectionTrayIndexOutOfRange      = "TRAY_INDEX_OUT_OF_RANGE"
	RejectionDifficultyUnknown        = "DIFFICULTY_UNKNOWN"
	RejectionPlayerNameRequired       = "PLAYER_NAME_REQUIRED"
)

// Rejection codes for RuleViolation outcomes.
const (
	RejectionStoneNotOwned          = "STONE_NOT_OWNED"
	RejectionNoStoneAtCell          = "NO_STONE_AT_CELL"
	RejectionStoneResolved          = "STONE_RESOLVED"
	RejectionStoneAlreadyMoved      = "STONE_ALREADY_MOVED"
	RejectionDestinationOccupied    = "DESTINATION_OCCUPIED"
	RejectionDestinationWalled      = "DESTINATION_WALLED"
	RejectionDestinationUnreachable = "DESTINATION_UNREACHABLE"
	RejectionEntryCellRequired      = "ENTRY_CELL_REQUIRED"
	RejectionAbilityAlreadyUsed     = "ABILITY_ALREADY_USED"
	RejectionAbilityOnCooldown      = "ABILITY_ON_COOLDOWN"
	RejectionAbilityNotApplicable   = "ABILITY_NOT_APPLICABLE"
	RejectionPassNotAllowed         = "PASS_NOT_ALLOWED"
	RejectionTurnIncomplete         = "TURN_INCOMPLETE"
)
