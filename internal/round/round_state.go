package round

const (
	RoundState__BETTING     string = "betting"
	RoundState__CREATING    string = "creating"
	RoundState__PLAYING     string = "playing"
	RoundState__DEALER_TURN string = "dealer-turn"
	RoundState__FINISHED    string = "finished"

	RoundEvent__PLACE_BET string = "PLACE_BET"
	RoundEvent__DEAL      string = "DEAL"
	RoundEvent__STAND     string = "STAND"
	RoundEvent__SETTLE    string = "SETTLE"
	RoundEvent__RESET     string = "RESET"
)
