package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ohtopup/config"
	"ohtopup/events"
	"ohtopup/models"
)

func newUserServiceMocks(ctx context.Context) (*MockUnitOfWorkFactory, *MockUserRepository, *MockWalletRepository, *MockTransactionRepository, *MockEventPublisher) {
	factory := new(MockUnitOfWorkFactory)
	uow := new(MockUnitOfWork)
	users := new(MockUserRepository)
	wallets := new(MockWalletRepository)
	txns := new(MockTransactionRepository)
	eventBus := new(MockEventPublisher)

	uow.SetRepositories(users, wallets, txns, nil, nil, eventBus)
	factory.On("Create").Return(uow)
	uow.On("Begin", ctx).Return(nil)
	uow.On("Commit").Return(nil)
	uow.On("Rollback").Return(nil)

	return factory, users, wallets, txns, eventBus
}

func TestUserService_GetOrCreateUser_Existing(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	ctx := context.Background()
	factory, users, wallets, _, _ := newUserServiceMocks(ctx)

	existing := &models.User{ID: 42, Username: "player", Role: models.RoleUser}
	users.On("GetByUsername", ctx, "player").Return(existing, nil)

	svc := NewUserService(factory)
	user, err := svc.GetOrCreateUser(ctx, "player", "player@example.com")

	require.NoError(t, err)
	assert.Equal(t, existing, user)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	wallets.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestUserService_GetOrCreateUser_ProvisionsWallet(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	ctx := context.Background()
	factory, users, wallets, txns, eventBus := newUserServiceMocks(ctx)

	startingBalance := config.Get().StartingBalance

	users.On("GetByUsername", ctx, "fresh").Return(nil, nil)
	created := &models.User{ID: 7, Username: "fresh", Role: models.RoleUser}
	users.On("Create", ctx, "fresh", "fresh@example.com", models.RoleUser).Return(created, nil)
	wallets.On("Create", ctx, int64(7), startingBalance).
		Return(&models.Wallet{UserID: 7, Balance: startingBalance}, nil)

	txns.On("Record", ctx, mock.MatchedBy(func(txn *models.WalletTransaction) bool {
		return txn.UserID == 7 &&
			txn.TransactionType == models.TransactionTypeInitial &&
			txn.BalanceBefore == 0 &&
			txn.BalanceAfter == startingBalance
	})).Return(nil)

	eventBus.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		createdEvent, ok := e.(events.UserCreatedEvent)
		return ok && createdEvent.UserID == 7 && createdEvent.InitialBalance == startingBalance
	})).Return()

	svc := NewUserService(factory)
	user, err := svc.GetOrCreateUser(ctx, "fresh", "fresh@example.com")

	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	users.AssertExpectations(t)
	wallets.AssertExpectations(t)
	txns.AssertExpectations(t)
	eventBus.AssertExpectations(t)
}

func TestUserService_GetUser_NotFound(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	ctx := context.Background()
	factory, users, _, _, _ := newUserServiceMocks(ctx)

	users.On("GetByID", ctx, int64(99)).Return(nil, nil)

	svc := NewUserService(factory)
	_, err := svc.GetUser(ctx, 99)

	var notFoundErr *NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, "user", notFoundErr.Entity)
}
