package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"marafon/internal/database"
	"marafon/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupStore connects to POSTGRES_TEST_DSN and resets the schema.
func setupStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}

	ctx := context.Background()
	pool, err := NewPool(ctx, dsn, 4)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `DROP TABLE IF EXISTS admin_actions, payments, users`)
	require.NoError(t, err)
	require.NoError(t, Migrate(ctx, pool))

	logger := zerolog.Nop()
	return NewStore(pool, &logger)
}

func TestNewPool_RequiresDSN(t *testing.T) {
	_, err := NewPool(context.Background(), "", 1)
	assert.Error(t, err)
}

func TestWithTx_NilPool(t *testing.T) {
	err := WithTx(context.Background(), nil, nil)
	assert.Error(t, err)
}

func TestStore_PaymentLifecycle(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.Ping(ctx))
	require.NoError(t, s.UpsertUser(ctx, &models.UserProfile{
		UserID: 1, Phone: "+998901234567", FullName: "Aziz Aliyev", Age: 25,
		Region: "Toshkent shahri", Height: 175, Weight: 70, IsSubscribed: true,
	}))

	id, err := s.InsertPayment(ctx, &models.Payment{UserID: 1, CourseKey: "vip", Amount: 597000, ReceiptFileID: "f"})
	require.NoError(t, err)

	pending, err := s.ListPendingPayments(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, id, pending[0].ID)
	assert.Equal(t, "Aziz Aliyev", pending[0].FullName)

	require.NoError(t, s.DecidePayment(ctx, id, models.PaymentApproved, 9, ""))
	err = s.DecidePayment(ctx, id, models.PaymentRejected, 9, "x")
	assert.True(t, errors.Is(err, database.ErrAlreadyDecided))

	err = s.DecidePayment(ctx, id+100, models.PaymentApproved, 9, "")
	assert.True(t, errors.Is(err, database.ErrNotFound))

	p, err := s.GetPayment(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentApproved, p.Status)
	require.NotNil(t, p.AdminID)
	assert.Equal(t, int64(9), *p.AdminID)

	require.NoError(t, s.AppendAuditLog(ctx, &models.AdminAction{AdminID: 9, ActionType: models.ActionApprovePayment}))

	rows, err := s.ListUsersForExport(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].Amount)
	assert.Equal(t, int64(597000), *rows[0].Amount)
}
