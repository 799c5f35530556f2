package engine

// Outcome tells which kind of TurnResult a turn produced.
type Outcome int

const (
	OutcomeNewTurn Outcome = iota
	OutcomeNewRound
	OutcomeEndGame
	OutcomeUnacceptable
)

var outcomeNames = map[Outcome]string{
	OutcomeNewTurn:      "new_turn",
	OutcomeNewRound:     "new_round",
	OutcomeEndGame:      "end_game",
	OutcomeUnacceptable: "unacceptable",
}

func (o Outcome) String() string {
	if s, ok := outcomeNames[o]; ok {
		return s
	}
	return "unknown"
}

// TurnResult is returned by ExecuteTurn. The set of implementations is closed.
type TurnResult interface {
	Outcome() Outcome
}

// NewTurn passes the turn to Player.
type NewTurn struct {
	Player string
}

// NewRound starts Round with Player acting first.
type NewRound struct {
	Round  int
	Player string
}

// EndGame lists every player tied for the most gold.
type EndGame struct {
	Winners []string
}

// Unacceptable rejects the action. Err names the broken rule.
type Unacceptable struct {
	Err error
}

func (NewTurn) Outcome() Outcome      { return OutcomeNewTurn }
func (NewRound) Outcome() Outcome     { return OutcomeNewRound }
func (EndGame) Outcome() Outcome      { return OutcomeEndGame }
func (Unacceptable) Outcome() Outcome { return OutcomeUnacceptable }

func (u Unacceptable) Error() string {
	if u.Err == nil {
		return "unacceptable action"
	}
	return u.Err.Error()
}

func (u Unacceptable) Unwrap() error { return u.Err }
