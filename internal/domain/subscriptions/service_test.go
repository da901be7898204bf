package subscriptions

import (
	"context"
	"testing"

	"github.com/afisha-events/server/internal/api/pagination"
	"github.com/afisha-events/server/internal/domain/faults"
	"github.com/afisha-events/server/internal/domain/users"
	"github.com/stretchr/testify/require"
)

type stubUserRepo struct {
	users map[int64]users.User
}

func (s *stubUserRepo) Create(ctx context.Context, params users.CreateParams) (*users.User, error) {
	return nil, nil
}

func (s *stubUserRepo) GetByID(ctx context.Context, id int64) (*users.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, faults.NotFoundf("user %d was not found", id)
	}
	return &user, nil
}

func (s *stubUserRepo) List(ctx context.Context, ids []int64, page pagination.Page) ([]users.User, error) {
	return nil, nil
}

func (s *stubUserRepo) Delete(ctx context.Context, id int64) error { return nil }

func (s *stubUserRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	return false, nil
}

func (s *stubUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return false, nil
}

type pair struct {
	userID, subscriberID int64
}

type fakeRepo struct {
	pairs map[pair]bool
	users map[int64]users.User
}

func (f *fakeRepo) Create(ctx context.Context, userID, subscriberID int64) error {
	f.pairs[pair{userID, subscriberID}] = true
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, userID, subscriberID int64) error {
	delete(f.pairs, pair{userID, subscriberID})
	return nil
}

func (f *fakeRepo) Exists(ctx context.Context, userID, subscriberID int64) (bool, error) {
	return f.pairs[pair{userID, subscriberID}], nil
}

func (f *fakeRepo) ListUsers(ctx context.Context, subscriberID int64, page pagination.Page) ([]users.User, error) {
	var found []users.User
	for p := range f.pairs {
		if p.subscriberID == subscriberID {
			found = append(found, f.users[p.userID])
		}
	}
	return found, nil
}

func (f *fakeRepo) ListSubscribers(ctx context.Context, userID int64, page pagination.Page) ([]users.User, error) {
	var found []users.User
	for p := range f.pairs {
		if p.userID == userID {
			found = append(found, f.users[p.subscriberID])
		}
	}
	return found, nil
}

func newService() *Service {
	known := map[int64]users.User{
		1: {ID: 1, Name: "alex"},
		2: {ID: 2, Name: "sam"},
	}
	repo := &fakeRepo{pairs: map[pair]bool{}, users: known}
	return NewService(repo, users.NewService(&stubUserRepo{users: known}))
}

func TestSubscribeRejectsSelf(t *testing.T) {
	svc := newService()

	err := svc.Subscribe(context.Background(), 1, 1)
	require.True(t, faults.IsConflict(err))
}

func TestSubscribeRejectsDuplicate(t *testing.T) {
	svc := newService()

	require.NoError(t, svc.Subscribe(context.Background(), 1, 2))
	err := svc.Subscribe(context.Background(), 1, 2)
	require.True(t, faults.IsConflict(err))
}

func TestSubscribeUnknownUser(t *testing.T) {
	svc := newService()

	err := svc.Subscribe(context.Background(), 1, 42)
	require.True(t, faults.IsNotFound(err))
}

func TestUnsubscribeWithoutSubscription(t *testing.T) {
	svc := newService()

	err := svc.Unsubscribe(context.Background(), 1, 2)
	require.True(t, faults.IsConflict(err))
}

func TestSubscribeThenList(t *testing.T) {
	svc := newService()

	require.NoError(t, svc.Subscribe(context.Background(), 1, 2))

	followed, err := svc.Subscriptions(context.Background(), 1, pagination.Page{Size: 10})
	require.NoError(t, err)
	require.Len(t, followed, 1)
	require.Equal(t, int64(2), followed[0].ID)

	followers, err := svc.Subscribers(context.Background(), 2, pagination.Page{Size: 10})
	require.NoError(t, err)
	require.Len(t, followers, 1)
	require.Equal(t, int64(1), followers[0].ID)
}
