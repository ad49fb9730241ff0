package users

import (
	"context"
	"time"
)

type TestApi struct {
	Users  map[int]*User
	nextID int
}

func NewTestApi() *TestApi {
	return &TestApi{
		Users:  make(map[int]*User),
		nextID: 1,
	}
}

func (api *TestApi) Add(_ context.Context, user User) (*User, error) {
	for _, u := range api.Users {
		if u.Email == user.Email {
			return nil, ErrEmailTaken
		}
	}
	user.ID = api.nextID
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	api.nextID++
	api.Users[user.ID] = &user
	return &user, nil
}

func (api *TestApi) Get(_ context.Context, id int) (*User, error) {
	user, ok := api.Users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (api *TestApi) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range api.Users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (api *TestApi) List(_ context.Context) ([]User, error) {
	usersList := make([]User, 0, len(api.Users))
	for _, u := range api.Users {
		usersList = append(usersList, *u)
	}
	return usersList, nil
}

func (api *TestApi) Update(ctx context.Context, user *User) error {
	if _, err := api.Get(ctx, user.ID); err != nil {
		return err
	}
	api.Users[user.ID] = user
	return nil
}

func (api *TestApi) Delete(_ context.Context, id int) error {
	if _, ok := api.Users[id]; !ok {
		return ErrUserNotFound
	}
	delete(api.Users, id)
	return nil
}
