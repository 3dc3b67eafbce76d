package subscription

import (
	"context"
	"sync"
	"time"

	"github.com/magabrotheeeer/subscription-manager/internal/models"
	"github.com/magabrotheeeer/subscription-manager/internal/storage/repository"
)

// fakeStore — хранилище в памяти. WithinUserLock сериализует транзакции
// одним мьютексом и откатывает изменения, если fn вернула ошибку.
type fakeStore struct {
	mu     sync.Mutex
	nextID int64
	subs   map[int64]models.Subscription
	users  map[int64]models.User
	plans  map[int64]models.Plan
}

func newFakeStore(plans ...models.Plan) *fakeStore {
	s := &fakeStore{
		subs:  make(map[int64]models.Subscription),
		users: make(map[int64]models.User),
		plans: make(map[int64]models.Plan),
	}
	for _, p := range plans {
		s.plans[p.ID] = p
	}
	return s
}

func (s *fakeStore) addUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *fakeStore) WithinUserLock(ctx context.Context, userID int64,
	fn func(ctx context.Context, tx repository.SubscriptionTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return models.ErrUserNotFound
	}

	snapshot := make(map[int64]models.Subscription, len(s.subs))
	for k, v := range s.subs {
		snapshot[k] = v
	}
	nextID := s.nextID

	if err := fn(ctx, &fakeTx{s: s}); err != nil {
		s.subs = snapshot
		s.nextID = nextID
		return err
	}
	return nil
}

func (s *fakeStore) GetActiveSubscriptionDetails(_ context.Context, userID int64) (*models.SubscriptionDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		if sub.UserID == userID && sub.Status == models.StatusActive {
			p := s.plans[sub.PlanID]
			return &models.SubscriptionDetails{
				Subscription: sub,
				PlanName:     p.Name,
				Price:        p.Price,
				Features:     p.Features,
				Duration:     p.Duration,
			}, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	return &u, nil
}

// activeCount вызывается вне транзакций.
func (s *fakeStore) activeCount(userID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, sub := range s.subs {
		if sub.UserID == userID && sub.Status == models.StatusActive {
			n++
		}
	}
	return n
}

// deactivatePlan снимает план с продажи так, как это сделал бы администратор базы.
func (s *fakeStore) deactivatePlan(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.plans[id]
	p.IsActive = false
	s.plans[id] = p
}

func (s *fakeStore) get(id int64) models.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subs[id]
}

// fakeTx работает под мьютексом, захваченным WithinUserLock.
type fakeTx struct {
	s *fakeStore
}

func (t *fakeTx) ActiveSubscription(_ context.Context, userID int64) (*models.Subscription, error) {
	for _, sub := range t.s.subs {
		if sub.UserID == userID && sub.Status == models.StatusActive {
			return &sub, nil
		}
	}
	return nil, nil
}

func (t *fakeTx) InsertSubscription(_ context.Context, sub models.Subscription) (*models.Subscription, error) {
	for _, existing := range t.s.subs {
		if existing.UserID == sub.UserID && existing.Status == models.StatusActive && sub.Status == models.StatusActive {
			return nil, models.ErrAlreadySubscribed
		}
	}
	t.s.nextID++
	sub.ID = t.s.nextID
	sub.CreatedAt = sub.StartDate
	sub.UpdatedAt = sub.StartDate
	t.s.subs[sub.ID] = sub
	return &sub, nil
}

func (t *fakeTx) UpdateSubscriptionPlan(_ context.Context, id, planID int64, start, end time.Time) (*models.Subscription, error) {
	sub, ok := t.s.subs[id]
	if !ok || sub.Status != models.StatusActive {
		return nil, models.ErrNoActiveSubscription
	}
	sub.PlanID, sub.StartDate, sub.EndDate, sub.UpdatedAt = planID, start, end, start
	t.s.subs[id] = sub
	return &sub, nil
}

func (t *fakeTx) CancelSubscription(_ context.Context, id int64, at time.Time) (*models.Subscription, error) {
	sub, ok := t.s.subs[id]
	if !ok || sub.Status != models.StatusActive {
		return nil, models.ErrNothingToCancel
	}
	sub.Status, sub.UpdatedAt = models.StatusCancelled, at
	t.s.subs[id] = sub
	return &sub, nil
}

func (t *fakeTx) Plan(_ context.Context, id int64) (*models.Plan, error) {
	p, ok := t.s.plans[id]
	if !ok {
		return nil, models.ErrPlanNotFound
	}
	return &p, nil
}

// expiringTx запоминает прочитанную активную подписку и сразу переводит её
// в expired, как планировщик, закоммитивший свой UPDATE между чтением и записью.
type expiringTx struct {
	*fakeTx
	expired *int64
}

func (t expiringTx) ActiveSubscription(ctx context.Context, userID int64) (*models.Subscription, error) {
	sub, err := t.fakeTx.ActiveSubscription(ctx, userID)
	if sub != nil {
		t.s.subs[sub.ID] = expire(*sub)
		*t.expired = sub.ID
	}
	return sub, err
}

func expire(sub models.Subscription) models.Subscription {
	sub.Status = models.StatusExpired
	return sub
}

// racingStore подменяет транзакцию на expiringTx. Истечение принадлежит
// чужой транзакции, поэтому переживает откат.
type racingStore struct {
	*fakeStore
}

func (s racingStore) WithinUserLock(ctx context.Context, userID int64,
	fn func(ctx context.Context, tx repository.SubscriptionTx) error) error {
	var expired int64
	err := s.fakeStore.WithinUserLock(ctx, userID, func(ctx context.Context, tx repository.SubscriptionTx) error {
		return fn(ctx, expiringTx{fakeTx: tx.(*fakeTx), expired: &expired})
	})
	if expired != 0 {
		s.mu.Lock()
		s.subs[expired] = expire(s.subs[expired])
		s.mu.Unlock()
	}
	return err
}

type fakePublisher struct {
	mu     sync.Mutex
	events []models.SubscriptionEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, e models.SubscriptionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// clock — управляемые часы для тестов.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
