package service

import (
	"context"
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"

	"ohtopup/config"
	"ohtopup/events"
	"ohtopup/models"
)

type userService struct {
	uowFactory UnitOfWorkFactory
}

// NewUserService creates a new user service
func NewUserService(uowFactory UnitOfWorkFactory) UserService {
	return &userService{
		uowFactory: uowFactory,
	}
}

// GetOrCreateUser fetches a user by username, creating them with a funded
// wallet and an opening-balance audit row on first sight.
func (s *userService) GetOrCreateUser(ctx context.Context, username, email string) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user == nil {
		startingBalance := config.Get().StartingBalance

		user, err = uow.UserRepository().Create(ctx, username, email, models.RoleUser)
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}

		if _, err := uow.WalletRepository().Create(ctx, user.ID, startingBalance); err != nil {
			return nil, fmt.Errorf("failed to create wallet: %w", err)
		}

		txn := &models.WalletTransaction{
			UserID:          user.ID,
			BalanceBefore:   0,
			BalanceAfter:    startingBalance,
			ChangeAmount:    startingBalance,
			TransactionType: models.TransactionTypeInitial,
		}
		if err := uow.TransactionRepository().Record(ctx, txn); err != nil {
			return nil, fmt.Errorf("failed to record opening balance: %w", err)
		}

		uow.EventBus().Publish(events.UserCreatedEvent{
			UserID:         user.ID,
			Username:       username,
			InitialBalance: startingBalance,
		})

		log.WithFields(log.Fields{
			"userID":          user.ID,
			"username":        username,
			"startingBalance": startingBalance,
		}).Info("Created new user with funded wallet")
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return user, nil
}

func (s *userService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, &NotFoundError{Entity: "user", ID: strconv.FormatInt(userID, 10)}
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return user, nil
}
