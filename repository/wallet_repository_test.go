package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ohtopup/events"
	"ohtopup/models"
	"ohtopup/repository/testutil"
)

func TestWalletRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	user := testutil.SeedUser(t, testDB.DB, "wallet_user", models.RoleUser, 1000)
	repo := NewWalletRepository(testDB.DB)

	t.Run("GetByUserID", func(t *testing.T) {
		wallet, err := repo.GetByUserID(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, wallet)
		assert.Equal(t, 1000.0, wallet.Balance)
	})

	t.Run("GetByUserID missing returns nil", func(t *testing.T) {
		wallet, err := repo.GetByUserID(ctx, 999999)
		require.NoError(t, err)
		assert.Nil(t, wallet)
	})

	t.Run("Credit", func(t *testing.T) {
		balance, err := repo.Credit(ctx, user.ID, 500)
		require.NoError(t, err)
		assert.Equal(t, 1500.0, balance)
		assert.Equal(t, 1500.0, testutil.WalletBalance(t, testDB.DB, user.ID))
	})

	t.Run("Debit", func(t *testing.T) {
		balance, err := repo.Debit(ctx, user.ID, 300)
		require.NoError(t, err)
		assert.Equal(t, 1200.0, balance)
	})

	t.Run("Debit rejects overdraft", func(t *testing.T) {
		before := testutil.WalletBalance(t, testDB.DB, user.ID)

		_, err := repo.Debit(ctx, user.ID, before+1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "insufficient balance")

		// Balance is untouched by the failed debit.
		assert.Equal(t, before, testutil.WalletBalance(t, testDB.DB, user.ID))
	})

	t.Run("Debit rejects non-positive amount", func(t *testing.T) {
		_, err := repo.Debit(ctx, user.ID, 0)
		require.Error(t, err)

		_, err = repo.Debit(ctx, user.ID, -50)
		require.Error(t, err)
	})

	t.Run("GetForUpdate inside transaction", func(t *testing.T) {
		uow := NewUnitOfWorkFactory(testDB.DB, events.NewBus()).Create()
		require.NoError(t, uow.Begin(ctx))
		defer uow.Rollback()

		wallet, err := uow.WalletRepository().GetForUpdate(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, wallet)
		assert.Equal(t, user.ID, wallet.UserID)
	})
}
