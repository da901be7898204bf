package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/afisha-events/server/internal/api/pagination"
	"github.com/afisha-events/server/internal/domain/faults"
	"github.com/afisha-events/server/internal/domain/users"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users  map[int64]users.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]users.User{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, params users.CreateParams) (*users.User, error) {
	f.nextID++
	user := users.User{ID: f.nextID, Name: params.Name, Email: params.Email}
	f.users[user.ID] = user
	return &user, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*users.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, faults.NotFoundf("user %d was not found", id)
	}
	return &user, nil
}

func (f *fakeUserRepo) List(ctx context.Context, ids []int64, page pagination.Page) ([]users.User, error) {
	var found []users.User
	for _, user := range f.users {
		found = append(found, user)
	}
	return found, nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id int64) error {
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	for _, user := range f.users {
		if user.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	for _, user := range f.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func newUserServer() *httptest.Server {
	mux := http.NewServeMux()
	NewUserHandler(users.NewService(newFakeUserRepo())).Register(mux)
	return httptest.NewServer(mux)
}

func TestCreateUser(t *testing.T) {
	srv := newUserServer()
	defer srv.Close()

	body := `{"name":"alex","email":"alex@example.com"}`
	resp, err := http.Post(srv.URL+"/admin/users", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var view UserView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	require.Equal(t, "alex", view.Name)
	require.NotZero(t, view.ID)
}

func TestCreateUserValidation(t *testing.T) {
	srv := newUserServer()
	defer srv.Close()

	body := `{"name":"a","email":"not-an-email"}`
	resp, err := http.Post(srv.URL+"/admin/users", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateUserDuplicate(t *testing.T) {
	srv := newUserServer()
	defer srv.Close()

	body := `{"name":"alex","email":"alex@example.com"}`
	resp, err := http.Post(srv.URL+"/admin/users", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Post(srv.URL+"/admin/users", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	var body409 struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body409))
	require.Equal(t, "CONFLICT", body409.Status)
}

func TestDeleteUser(t *testing.T) {
	srv := newUserServer()
	defer srv.Close()

	body := `{"name":"alex","email":"alex@example.com"}`
	resp, err := http.Post(srv.URL+"/admin/users", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	var view UserView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	resp.Body.Close()

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/admin/users/1", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Deleting again reports not found.
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteUserRejectsBadID(t *testing.T) {
	srv := newUserServer()
	defer srv.Close()

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/admin/users/abc", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
