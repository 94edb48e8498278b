package models

import (
	"time"

	"github.com/google/uuid"

	"ohtopup/game"
)

// GameResult is the stored outcome label of a play.
type GameResult string

const (
	GameResultWin  GameResult = "win"
	GameResultLose GameResult = "lose"
)

// GameRecord is the immutable record of one dice play.
type GameRecord struct {
	ID                  uuid.UUID              `json:"id"`
	UserID              int64                  `json:"user_id"`
	BetAmount           float64                `json:"bet_amount"`
	Odds                float64                `json:"odds"`
	Difficulty          game.Difficulty        `json:"difficulty"`
	DiceCount           int                    `json:"dice_count"`
	Dice                []int                  `json:"dice"`
	TargetCombination   game.TargetCombination `json:"target_combination"`
	IsWin               bool                   `json:"is_win"`
	Winnings            float64                `json:"winnings"`
	Payout              float64                `json:"payout"`
	GameResult          GameResult             `json:"game_result"`
	ExpectedValue       float64                `json:"expected_value"`
	HouseEdge           float64                `json:"house_edge"`
	ManipulationApplied bool                   `json:"manipulation_applied,omitempty"`
	ManipulationType    game.Mode              `json:"manipulation_type,omitempty"`
	PlayedAt            time.Time              `json:"played_at"`
}

// PlayRequest is the inbound payload for a dice play.
type PlayRequest struct {
	BetAmount  float64         `json:"bet_amount" binding:"required,gt=0"`
	Odds       float64         `json:"odds" binding:"required,gt=1"`
	Difficulty game.Difficulty `json:"difficulty" binding:"required"`
	DiceCount  int             `json:"dice_count"`
}

// PlayResult is what a completed play returns to the caller. Manipulation
// details travel with it so the API layer can redact them for non-admins.
type PlayResult struct {
	Record     *GameRecord `json:"record"`
	NewBalance float64     `json:"new_balance"`
}
