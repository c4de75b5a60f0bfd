package subscription

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/dbpg"

	"github.com/aliskhannn/push-notifier/internal/model"
)

var subscriptionColumns = []string{"id", "endpoint", "expiration_time", "p256dh", "auth", "created_at"}

func setupMockDB(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open mock db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return NewRepository(&dbpg.DB{Master: db}), mock
}

// setupReplicatedMockDB returns a repository over a master and one slave.
func setupReplicatedMockDB(t *testing.T) (*Repository, sqlmock.Sqlmock, sqlmock.Sqlmock) {
	master, masterMock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open mock master: %v", err)
	}
	t.Cleanup(func() { _ = master.Close() })

	slave, slaveMock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open mock slave: %v", err)
	}
	t.Cleanup(func() { _ = slave.Close() })

	return NewRepository(&dbpg.DB{Master: master, Slaves: []*sql.DB{slave}}), masterMock, slaveMock
}

func testSubscription() model.Subscription {
	return model.Subscription{
		Endpoint: "https://push.example.com/send/abc",
		Keys:     model.Keys{P256dh: "p256dh-key", Auth: "auth-secret"},
	}
}

func TestCreateSubscription_ReplacesSameEndpoint(t *testing.T) {
	repo, mock := setupMockDB(t)

	sub := testSubscription()
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM subscriptions WHERE endpoint = $1;`)).
		WithArgs(sub.Endpoint).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO subscriptions (endpoint, expiration_time, p256dh, auth)`)).
		WithArgs(sub.Endpoint, nil, sub.Keys.P256dh, sub.Keys.Auth).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(id.String()))
	mock.ExpectCommit()

	got, err := repo.CreateSubscription(context.Background(), sub)
	assert.NoError(t, err)
	assert.Equal(t, id, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSubscription_InsertFailsRollsBack(t *testing.T) {
	repo, mock := setupMockDB(t)

	sub := testSubscription()
	expiration := time.Now().Add(24 * time.Hour)
	sub.ExpirationTime = &expiration

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM subscriptions WHERE endpoint = $1;`)).
		WithArgs(sub.Endpoint).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO subscriptions`)).
		WithArgs(sub.Endpoint, expiration, sub.Keys.P256dh, sub.Keys.Auth).
		WillReturnError(errors.New("db down"))
	mock.ExpectRollback()

	_, err := repo.CreateSubscription(context.Background(), sub)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAllSubscriptions(t *testing.T) {
	repo, mock := setupMockDB(t)

	now := time.Now()
	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM subscriptions;`)).
		WillReturnRows(sqlmock.NewRows(subscriptionColumns).
			AddRow(id.String(), "https://push.example.com/1", nil, "k", "a", now))

	subs, err := repo.GetAllSubscriptions(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, id, subs[0].ID)
	assert.Equal(t, "k", subs[0].Keys.P256dh)
	assert.Equal(t, "a", subs[0].Keys.Auth)
	assert.Nil(t, subs[0].ExpirationTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAllSubscriptions_Empty(t *testing.T) {
	repo, mock := setupMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM subscriptions;`)).
		WillReturnRows(sqlmock.NewRows(subscriptionColumns))

	subs, err := repo.GetAllSubscriptions(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, subs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteSubscription(t *testing.T) {
	repo, mock := setupMockDB(t)

	id := uuid.New()
	query := regexp.QuoteMeta(`DELETE FROM subscriptions WHERE id = $1;`)

	mock.ExpectExec(query).WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.DeleteSubscription(context.Background(), id))

	mock.ExpectExec(query).WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.DeleteSubscription(context.Background(), id), ErrSubscriptionNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteSubscriptions(t *testing.T) {
	repo, mock := setupMockDB(t)

	ids := []uuid.UUID{uuid.New(), uuid.New()}
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM subscriptions WHERE id = ANY($1::uuid[]);`)).
		WithArgs(pq.Array([]string{ids[0].String(), ids[1].String()})).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.DeleteSubscriptions(context.Background(), ids)
	assert.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteByEndpoint(t *testing.T) {
	repo, mock := setupMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM subscriptions WHERE endpoint = $1;`)).
		WithArgs("https://push.example.com/1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteByEndpoint(context.Background(), "https://push.example.com/1")
	assert.NoError(t, err)
	assert.EqualValues(t, 3, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountAndDistinct(t *testing.T) {
	repo, mock := setupMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM subscriptions;`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT DISTINCT endpoint FROM subscriptions;`)).
		WillReturnRows(sqlmock.NewRows([]string{"endpoint"}).AddRow("a").AddRow("b"))

	count, err := repo.CountSubscriptions(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 3, count)

	endpoints, err := repo.DistinctEndpoints(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, endpoints)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByEndpoint(t *testing.T) {
	repo, mock := setupMockDB(t)

	now := time.Now()
	newer, older := uuid.New(), uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY created_at DESC;`)).
		WithArgs("https://push.example.com/1").
		WillReturnRows(sqlmock.NewRows(subscriptionColumns).
			AddRow(newer.String(), "https://push.example.com/1", nil, "k", "a", now).
			AddRow(older.String(), "https://push.example.com/1", nil, "k", "a", now.Add(-time.Hour)))

	subs, err := repo.GetByEndpoint(context.Background(), "https://push.example.com/1")
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, newer, subs[0].ID)
	assert.Equal(t, older, subs[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionReads_UseMaster(t *testing.T) {
	repo, master, slave := setupReplicatedMockDB(t)

	now := time.Now()
	id := uuid.New()

	master.ExpectQuery(regexp.QuoteMeta(`FROM subscriptions;`)).
		WillReturnRows(sqlmock.NewRows(subscriptionColumns).
			AddRow(id.String(), "https://push.example.com/1", nil, "k", "a", now))
	master.ExpectQuery(regexp.QuoteMeta(`ORDER BY created_at DESC;`)).
		WithArgs("https://push.example.com/1").
		WillReturnRows(sqlmock.NewRows(subscriptionColumns).
			AddRow(id.String(), "https://push.example.com/1", nil, "k", "a", now))
	master.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM subscriptions;`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	master.ExpectQuery(regexp.QuoteMeta(`SELECT DISTINCT endpoint FROM subscriptions;`)).
		WillReturnRows(sqlmock.NewRows([]string{"endpoint"}).AddRow("https://push.example.com/1"))

	subs, err := repo.GetAllSubscriptions(context.Background())
	require.NoError(t, err)
	assert.Len(t, subs, 1)

	subs, err = repo.GetByEndpoint(context.Background(), "https://push.example.com/1")
	require.NoError(t, err)
	assert.Len(t, subs, 1)

	count, err := repo.CountSubscriptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	endpoints, err := repo.DistinctEndpoints(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"https://push.example.com/1"}, endpoints)

	assert.NoError(t, master.ExpectationsWereMet())
	assert.NoError(t, slave.ExpectationsWereMet())
}

func TestCountSubscriptions_Error(t *testing.T) {
	repo, mock := setupMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM subscriptions;`)).
		WillReturnError(errors.New("db down"))

	_, err := repo.CountSubscriptions(context.Background())
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
