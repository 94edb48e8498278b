package game

// Difficulty identifies a win-condition tier.
type Difficulty string

const (
	DifficultyEasy      Difficulty = "easy"
	DifficultyMedium    Difficulty = "medium"
	DifficultyHard      Difficulty = "hard"
	DifficultyExpert    Difficulty = "expert"
	DifficultyLegendary Difficulty = "legendary"
)

// Difficulties lists all tiers in ascending order of difficulty.
var Difficulties = []Difficulty{
	DifficultyEasy,
	DifficultyMedium,
	DifficultyHard,
	DifficultyExpert,
	DifficultyLegendary,
}

// Valid reports whether d is a known tier.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyExpert, DifficultyLegendary:
		return true
	}
	return false
}

// TargetCombination labels the dice combination a tier requires.
type TargetCombination string

const (
	TargetAnyDouble   TargetCombination = "any_double"
	TargetDouble4Plus TargetCombination = "double_4_plus"
	TargetDouble5Plus TargetCombination = "double_5_plus"
	TargetDouble6     TargetCombination = "double_6"
	TargetThreeOfKind TargetCombination = "three_of_kind"
)

// Target returns the combination label for a tier.
func Target(d Difficulty) TargetCombination {
	switch d {
	case DifficultyEasy:
		return TargetAnyDouble
	case DifficultyMedium:
		return TargetDouble4Plus
	case DifficultyHard:
		return TargetDouble5Plus
	case DifficultyExpert:
		return TargetDouble6
	case DifficultyLegendary:
		return TargetThreeOfKind
	default:
		return TargetAnyDouble
	}
}

// Fair-play win probabilities per tier. The legendary figure follows its own
// combinatorics over three or more dice and is not derivable from the
// two-dice table.
var fairProbabilities = map[Difficulty]float64{
	DifficultyEasy:      0.1667,
	DifficultyMedium:    0.0833,
	DifficultyHard:      0.0556,
	DifficultyExpert:    0.0278,
	DifficultyLegendary: 0.0463,
}

// FairProbability returns the fair-play win probability for a tier.
func FairProbability(d Difficulty) float64 {
	if p, ok := fairProbabilities[d]; ok {
		return p
	}
	return 0
}

// MinDiceCount returns the minimum dice count at which a tier can be won.
// Legendary requires at least three dice; every other tier only examines the
// first two.
func MinDiceCount(d Difficulty) int {
	if d == DifficultyLegendary {
		return 3
	}
	return 2
}

// RollDice draws count six-sided die values from src.
func RollDice(src Source, count int) []int {
	dice := make([]int, count)
	for i := range dice {
		dice[i] = int(src.Next()*6) + 1
	}
	return dice
}

// CheckWinCondition evaluates a tier's combinatorial rule over the dice.
// This is the single authority on what constitutes a win: every declared
// outcome, manipulated or not, must agree with it.
func CheckWinCondition(d Difficulty, dice []int) bool {
	if len(dice) < 2 {
		return false
	}

	switch d {
	case DifficultyEasy:
		return dice[0] == dice[1]
	case DifficultyMedium:
		return dice[0] == dice[1] && dice[0] >= 4
	case DifficultyHard:
		return dice[0] == dice[1] && dice[0] >= 5
	case DifficultyExpert:
		return dice[0] == 6 && dice[1] == 6
	case DifficultyLegendary:
		if len(dice) < 3 {
			return false
		}
		for _, v := range dice[1:] {
			if v != dice[0] {
				return false
			}
		}
		return true
	default:
		return false
	}
}
