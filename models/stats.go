package models

// UserGameStats summarizes one player's dice history.
type UserGameStats struct {
	TotalGames    int64   `json:"total_games"`
	TotalWins     int64   `json:"total_wins"`
	TotalLosses   int64   `json:"total_losses"`
	WinRate       float64 `json:"win_rate"`
	TotalWagered  float64 `json:"total_wagered"`
	TotalWinnings float64 `json:"total_winnings"`
	NetProfit     float64 `json:"net_profit"`
	BiggestWin    float64 `json:"biggest_win"`
	BestWinStreak int     `json:"best_win_streak"`
}

// SystemGameStats summarizes platform-wide dice activity for admins.
type SystemGameStats struct {
	TotalGames       int64   `json:"total_games"`
	TotalWins        int64   `json:"total_wins"`
	UniquePlayers    int64   `json:"unique_players"`
	TotalWagered     float64 `json:"total_wagered"`
	TotalPaidOut     float64 `json:"total_paid_out"`
	HouseProfit      float64 `json:"house_profit"`
	ObservedWinRate  float64 `json:"observed_win_rate"`
	ManipulatedGames int64   `json:"manipulated_games"`
}
