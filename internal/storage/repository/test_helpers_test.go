package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/subscription-manager/internal/migrations"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя и возвращает его ID
func (f *TestDataFactory) CreateUser(t *testing.T, name, email, role string) int64 {
	t.Helper()
	var id int64
	err := f.storage.DB.QueryRow(`INSERT INTO users (name, email, password_hash, role)
		VALUES ($1, $2, 'hashedpassword', $3) RETURNING id`, name, email, role).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateSubscription создает подписку в обход блокировок, с заданным created_at
func (f *TestDataFactory) CreateSubscription(t *testing.T, userID, planID int64, status string,
	start time.Time, days int, createdAt time.Time) int64 {
	t.Helper()
	var id int64
	err := f.storage.DB.QueryRow(`INSERT INTO subscriptions
		(user_id, plan_id, start_date, end_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6) RETURNING id`,
		userID, planID, start, start.AddDate(0, 0, days), status, createdAt).Scan(&id)
	require.NoError(t, err)
	return id
}

// SubscriptionStatus возвращает текущий статус подписки
func (f *TestDataFactory) SubscriptionStatus(t *testing.T, id int64) string {
	t.Helper()
	var status string
	require.NoError(t, f.storage.DB.QueryRow(`SELECT status FROM subscriptions WHERE id = $1`, id).Scan(&status))
	return status
}

// CountActive возвращает количество активных подписок пользователя
func (f *TestDataFactory) CountActive(t *testing.T, userID int64) int {
	t.Helper()
	var n int
	require.NoError(t, f.storage.DB.QueryRow(
		`SELECT COUNT(*) FROM subscriptions WHERE user_id = $1 AND status = 'active'`, userID).Scan(&n))
	return n
}

// seedPlanID возвращает ID тарифа из сид-миграции по имени
func seedPlanID(t *testing.T, s *Storage, name string) int64 {
	t.Helper()
	var id int64
	require.NoError(t, s.DB.QueryRow(`SELECT id FROM plans WHERE name = $1`, name).Scan(&id))
	return id
}

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции
func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	root, err := filepath.Abs("../../..")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, filepath.Join(root, "migrations")))
	require.NoError(t, CheckDatabaseReady(ctx, storage))

	return storage
}

func newUser(name, email string) models.User {
	return models.User{Name: name, Email: email, PasswordHash: "hashedpassword", Role: models.RoleUser}
}
