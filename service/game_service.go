package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"ohtopup/events"
	"ohtopup/game"
	"ohtopup/models"
)

type gameService struct {
	uowFactory UnitOfWorkFactory
	risk       RiskLimiter

	// A seeded source is shared across plays so the admin-configured stream
	// advances play by play. Rebuilt whenever the configured seed changes.
	mu        sync.Mutex
	seededSrc game.Source
	seededFor string
}

// NewGameService creates a new game service
func NewGameService(uowFactory UnitOfWorkFactory, risk RiskLimiter) GameService {
	return &gameService{
		uowFactory: uowFactory,
		risk:       risk,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// startOfDay returns midnight of the server-local calendar day, the boundary
// for the daily play quota.
func startOfDay(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

func (s *gameService) Play(ctx context.Context, userID int64, req *models.PlayRequest) (*models.PlayResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	settings, err := uow.SettingsRepository().GetOrCreate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load game settings: %w", err)
	}

	diceCount, err := validatePlay(settings, req)
	if err != nil {
		return nil, err
	}

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, &NotFoundError{Entity: "user", ID: strconv.FormatInt(userID, 10)}
	}

	// Locking the wallet row serializes concurrent plays by the same user,
	// so the balance and quota checks below hold until commit.
	wallet, err := uow.WalletRepository().GetForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet == nil {
		return nil, &NotFoundError{Entity: "wallet", ID: strconv.FormatInt(userID, 10)}
	}

	stake := req.BetAmount + settings.BetLimits.EntryFee
	if wallet.Balance < stake {
		return nil, &InsufficientBalanceError{Available: wallet.Balance, Required: stake}
	}

	playsToday, err := uow.GameRecordRepository().CountByUserSince(ctx, userID, startOfDay(time.Now()))
	if err != nil {
		return nil, fmt.Errorf("failed to count plays today: %w", err)
	}
	if settings.Risk.MaxDailyBetsPerUser > 0 && playsToday >= int64(settings.Risk.MaxDailyBetsPerUser) {
		return nil, &PolicyError{
			Policy:  "daily_quota",
			Message: fmt.Sprintf("daily limit of %d plays reached", settings.Risk.MaxDailyBetsPerUser),
		}
	}

	if err := s.checkRiskCaps(ctx, userID, settings); err != nil {
		return nil, err
	}

	tier := settings.Difficulties[req.Difficulty]
	expectedValue := round2(tier.WinProbability*req.BetAmount*req.Odds - (1-tier.WinProbability)*req.BetAmount)
	houseEdge := round2((req.BetAmount - expectedValue) / req.BetAmount * 100)

	cfg := settings.Manipulation
	if cfg.AdminOnly && !user.IsAdmin() {
		// Non-admin plays resolve fairly when the engine is admin-scoped.
		cfg.Enabled = false
	}

	outcome := game.Apply(s.playSource(cfg), cfg, req.Difficulty, diceCount)

	balanceBefore := wallet.Balance
	balance, err := uow.WalletRepository().Debit(ctx, userID, stake)
	if err != nil {
		return nil, fmt.Errorf("failed to debit stake: %w", err)
	}

	debitTxn := &models.WalletTransaction{
		UserID:          userID,
		BalanceBefore:   balanceBefore,
		BalanceAfter:    balance,
		ChangeAmount:    -stake,
		TransactionType: models.TransactionTypeBetDebit,
		Metadata: map[string]interface{}{
			"bet_amount": req.BetAmount,
			"entry_fee":  settings.BetLimits.EntryFee,
			"difficulty": req.Difficulty,
			"odds":       req.Odds,
		},
	}
	if err := uow.TransactionRepository().Record(ctx, debitTxn); err != nil {
		return nil, fmt.Errorf("failed to record debit: %w", err)
	}

	var payout float64
	if outcome.IsWin {
		payout = round2(req.BetAmount * req.Odds)

		creditBefore := balance
		balance, err = uow.WalletRepository().Credit(ctx, userID, payout)
		if err != nil {
			return nil, fmt.Errorf("failed to credit payout: %w", err)
		}

		creditTxn := &models.WalletTransaction{
			UserID:          userID,
			BalanceBefore:   creditBefore,
			BalanceAfter:    balance,
			ChangeAmount:    payout,
			TransactionType: models.TransactionTypeWinCredit,
			Metadata: map[string]interface{}{
				"bet_amount": req.BetAmount,
				"odds":       req.Odds,
				"dice":       outcome.Dice,
			},
		}
		if err := uow.TransactionRepository().Record(ctx, creditTxn); err != nil {
			return nil, fmt.Errorf("failed to record credit: %w", err)
		}
	}

	record := &models.GameRecord{
		UserID:              userID,
		BetAmount:           req.BetAmount,
		Odds:                req.Odds,
		Difficulty:          req.Difficulty,
		DiceCount:           diceCount,
		Dice:                outcome.Dice,
		TargetCombination:   game.Target(req.Difficulty),
		IsWin:               outcome.IsWin,
		Winnings:            payout,
		Payout:              payout,
		GameResult:          models.GameResultLose,
		ExpectedValue:       expectedValue,
		HouseEdge:           houseEdge,
		ManipulationApplied: outcome.ManipulationApplied,
		ManipulationType:    outcome.ManipulationType,
	}
	if outcome.IsWin {
		record.GameResult = models.GameResultWin
	}

	if err := uow.GameRecordRepository().Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create game record: %w", err)
	}

	uow.EventBus().Publish(events.GamePlayedEvent{
		UserID:     userID,
		RecordID:   record.ID.String(),
		Difficulty: req.Difficulty,
		BetAmount:  req.BetAmount,
		IsWin:      outcome.IsWin,
		Payout:     payout,
		NewBalance: balance,
	})

	if outcome.IsWin && settings.Notifications.LargeWinAlert && payout >= settings.Notifications.LargeWinThreshold {
		uow.EventBus().Publish(events.LargeWinEvent{
			UserID:    userID,
			Username:  user.Username,
			BetAmount: req.BetAmount,
			Payout:    payout,
			Threshold: settings.Notifications.LargeWinThreshold,
		})
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.recordRiskExposure(ctx, userID, req.BetAmount, payout, outcome.IsWin, settings)

	entry := log.WithFields(log.Fields{
		"userID":              userID,
		"recordID":            record.ID,
		"difficulty":          req.Difficulty,
		"betAmount":           req.BetAmount,
		"odds":                req.Odds,
		"dice":                outcome.Dice,
		"isWin":               outcome.IsWin,
		"payout":              payout,
		"newBalance":          balance,
		"manipulationApplied": outcome.ManipulationApplied,
		"manipulationType":    outcome.ManipulationType,
	})
	if playLogLevel(outcome) == log.WarnLevel {
		entry.Warn("Dice play completed")
	} else {
		entry.Info("Dice play completed")
	}

	return &models.PlayResult{
		Record:     record,
		NewBalance: balance,
	}, nil
}

// validatePlay checks the request against the stored limits and returns the
// effective dice count. Nothing is debited until validation has passed.
func validatePlay(settings *models.GameSettings, req *models.PlayRequest) (int, error) {
	if !settings.Enabled {
		return 0, &PolicyError{Policy: "game_disabled", Message: "dice game is currently disabled"}
	}
	if settings.Maintenance {
		return 0, &PolicyError{Policy: "maintenance", Message: "dice game is under maintenance"}
	}

	if !req.Difficulty.Valid() {
		return 0, &ValidationError{Field: "difficulty", Message: fmt.Sprintf("unknown difficulty %q", req.Difficulty)}
	}

	if req.BetAmount < settings.BetLimits.MinBet {
		return 0, &ValidationError{
			Field:   "bet_amount",
			Message: fmt.Sprintf("minimum bet is %.2f", settings.BetLimits.MinBet),
		}
	}
	if req.BetAmount > settings.BetLimits.MaxBet {
		return 0, &ValidationError{
			Field:   "bet_amount",
			Message: fmt.Sprintf("maximum bet is %.2f", settings.BetLimits.MaxBet),
		}
	}

	tier, ok := settings.Difficulties[req.Difficulty]
	if !ok {
		return 0, &ValidationError{Field: "difficulty", Message: fmt.Sprintf("difficulty %q is not configured", req.Difficulty)}
	}
	if req.Odds < tier.MinOdds || req.Odds > tier.MaxOdds {
		return 0, &ValidationError{
			Field:   "odds",
			Message: fmt.Sprintf("odds for %s must be between %.2f and %.2f", req.Difficulty, tier.MinOdds, tier.MaxOdds),
		}
	}

	diceCount := req.DiceCount
	if diceCount == 0 {
		diceCount = game.MinDiceCount(req.Difficulty)
	}
	if diceCount < 2 || diceCount > settings.MaxDiceCount {
		return 0, &ValidationError{
			Field:   "dice_count",
			Message: fmt.Sprintf("dice count must be between 2 and %d", settings.MaxDiceCount),
		}
	}
	if diceCount < game.MinDiceCount(req.Difficulty) {
		return 0, &ValidationError{
			Field:   "dice_count",
			Message: fmt.Sprintf("%s requires at least %d dice", req.Difficulty, game.MinDiceCount(req.Difficulty)),
		}
	}

	return diceCount, nil
}

// checkRiskCaps blocks a play once the user's hourly exposure has already
// crossed a configured cap.
func (s *gameService) checkRiskCaps(ctx context.Context, userID int64, settings *models.GameSettings) error {
	if s.risk == nil {
		return nil
	}

	if settings.Risk.MaxLossPerHour > 0 {
		loss, err := s.risk.HourlyLoss(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to check hourly loss: %w", err)
		}
		if loss >= settings.Risk.MaxLossPerHour {
			return &PolicyError{
				Policy:  "hourly_loss_cap",
				Message: fmt.Sprintf("hourly loss cap of %.2f reached", settings.Risk.MaxLossPerHour),
			}
		}
	}

	if settings.Risk.MaxWinPerHour > 0 {
		win, err := s.risk.HourlyWin(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to check hourly win: %w", err)
		}
		if win >= settings.Risk.MaxWinPerHour {
			return &PolicyError{
				Policy:  "hourly_win_cap",
				Message: fmt.Sprintf("hourly win cap of %.2f reached", settings.Risk.MaxWinPerHour),
			}
		}
	}

	return nil
}

// recordRiskExposure updates the hourly counters after a committed play and
// flips maintenance mode when a cap trips with auto-shutdown enabled. Counter
// failures are logged, not returned: the play has already settled.
func (s *gameService) recordRiskExposure(ctx context.Context, userID int64, betAmount, payout float64, isWin bool, settings *models.GameSettings) {
	if s.risk == nil {
		return
	}

	var total, limit float64
	var capName string
	var err error

	if isWin {
		capName = "hourly_win_cap"
		limit = settings.Risk.MaxWinPerHour
		total, err = s.risk.AddWin(ctx, userID, payout-betAmount)
	} else {
		capName = "hourly_loss_cap"
		limit = settings.Risk.MaxLossPerHour
		total, err = s.risk.AddLoss(ctx, userID, betAmount)
	}
	if err != nil {
		log.WithError(err).WithField("userID", userID).Error("Failed to update hourly risk counter")
		return
	}

	if limit <= 0 || total < limit {
		return
	}

	log.WithFields(log.Fields{
		"userID": userID,
		"cap":    capName,
		"total":  total,
		"limit":  limit,
	}).Warn("Hourly risk cap tripped")

	if err := s.tripRiskCap(ctx, userID, capName, total, limit, settings.Risk.AutoShutdown); err != nil {
		log.WithError(err).Error("Failed to handle risk cap trip")
	}
}

// tripRiskCap publishes the cap-trip event and, when auto-shutdown is set,
// flips the game into maintenance mode.
func (s *gameService) tripRiskCap(ctx context.Context, userID int64, capName string, total, limit float64, shutdown bool) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if shutdown {
		settings, err := uow.SettingsRepository().GetOrCreate(ctx)
		if err != nil {
			return fmt.Errorf("failed to load game settings: %w", err)
		}

		settings.Maintenance = true
		if err := uow.SettingsRepository().Update(ctx, settings); err != nil {
			return fmt.Errorf("failed to update game settings: %w", err)
		}
	}

	uow.EventBus().Publish(events.RiskCapTrippedEvent{
		UserID: userID,
		Cap:    capName,
		Amount: total,
		Limit:  limit,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	if shutdown {
		log.Warn("Dice game placed in maintenance mode by auto-shutdown")
	}
	return nil
}

// playSource returns the generator for one play: a shared deterministic
// stream only when manipulation is enabled and a seed is configured. A seed
// left behind on a disabled engine never applies; the play falls back to the
// system generator.
func (s *gameService) playSource(cfg game.ManipulationConfig) game.Source {
	if !cfg.Enabled || cfg.Seed == "" {
		return game.NewSource()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seededSrc == nil || s.seededFor != cfg.Seed {
		s.seededSrc = game.NewSeededSource(cfg.Seed)
		s.seededFor = cfg.Seed
	}
	return s.seededSrc
}

// playLogLevel picks the level for the settled-play audit log. Only a clean
// fair win logs at info.
func playLogLevel(outcome game.Outcome) log.Level {
	if outcome.ManipulationApplied || !outcome.IsWin {
		return log.WarnLevel
	}
	return log.InfoLevel
}
