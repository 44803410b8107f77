package auth

import (
	"context"
	"errors"
	"testing"
)

// stubUsers implements Repository over a fixed user set.
type stubUsers struct {
	byName map[string]*User
}

func (s *stubUsers) Create(ctx context.Context, u *User) error {
	if _, ok := s.byName[u.Username]; ok {
		return ErrAlreadyExist
	}
	cp := *u
	s.byName[u.Username] = &cp
	return nil
}

func (s *stubUsers) GetByID(ctx context.Context, id int64) (*User, error) {
	for _, u := range s.byName {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *stubUsers) GetByUsername(ctx context.Context, username string) (*User, error) {
	u, ok := s.byName[username]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct-horse")
	if err != nil {
		t.Fatal(err)
	}
	repo := &stubUsers{byName: map[string]*User{
		"asha": {ID: 7, Username: "asha", PasswordHash: hash, IsStaff: true},
	}}

	u, err := Authenticate(context.Background(), repo, "asha", "correct-horse")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if u.ID != 7 || !u.IsStaff {
		t.Fatalf("user = %+v", u)
	}

	if _, err := Authenticate(context.Background(), repo, "asha", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: err = %v, want ErrInvalidCredentials", err)
	}
	// unknown user yields the same error as a wrong password
	if _, err := Authenticate(context.Background(), repo, "nobody", "correct-horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user: err = %v, want ErrInvalidCredentials", err)
	}
}
