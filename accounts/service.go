package accounts

import (
	"context"
	"errors"
	"issue-tracker/orm"

	"github.com/rs/zerolog/log"
)

// MinimumAge is the registration age gate.
const MinimumAge = 15

const minimumPasswordLength = 8

// Service is the identity store. It owns no business logic beyond
// self-validation of user accounts.
type Service struct {
	db orm.DB
}

func NewService(db orm.DB) *Service {
	return &Service{db: db}
}

type RegisterInput struct {
	Username        string
	Email           string
	FirstName       string
	LastName        string
	Age             int
	Password        string
	PasswordConfirm string
	CanBeContacted  bool
	CanDataBeShared bool
}

// Register creates a user account. Age and password rules are checked here,
// username uniqueness at the storage layer.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*orm.User, error) {
	if in.Age < MinimumAge {
		return nil, &ValidationError{
			Field:   "age",
			Message: "User must be at least 15 years old to register.",
		}
	}

	if len(in.Password) < minimumPasswordLength {
		return nil, &ValidationError{
			Field:   "password",
			Message: "Password must be at least 8 characters long.",
		}
	}

	if in.Password != in.PasswordConfirm {
		return nil, &ValidationError{
			Field:   "password_confirm",
			Message: "Passwords do not match.",
		}
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &orm.User{
		Username:        in.Username,
		Email:           in.Email,
		FirstName:       in.FirstName,
		LastName:        in.LastName,
		Age:             in.Age,
		CanBeContacted:  in.CanBeContacted,
		CanDataBeShared: in.CanDataBeShared,
		PasswordHash:    hash,
	}

	err = s.db.CreateUser(ctx, user)
	if err != nil {
		var conflictErr *orm.ConflictError
		if errors.As(err, &conflictErr) {
			return nil, &ValidationError{
				Field:   "username",
				Message: "This username is already taken.",
			}
		}

		return nil, err
	}

	log.Info().
		Str("username", user.Username).
		Uint("user_id", user.ID).
		Msg("User registered")

	return user, nil
}

// Authenticate exchanges credentials for the user account. Unknown usernames
// and wrong passwords are indistinguishable to the caller.
func (s *Service) Authenticate(
	ctx context.Context,
	username, password string,
) (*orm.User, error) {
	user, err := s.db.GetUserByUsername(ctx, username)
	if err != nil {
		var notFoundErr *orm.NotFoundError
		if errors.As(err, &notFoundErr) {
			return nil, ErrBadCredentials
		}

		return nil, err
	}

	if !checkPassword(user.PasswordHash, password) {
		return nil, ErrBadCredentials
	}

	return user, nil
}

func (s *Service) GetUser(ctx context.Context, id uint) (*orm.User, error) {
	return s.db.GetUserByID(ctx, id)
}

func (s *Service) ListUsers(
	ctx context.Context,
	limit, offset int,
) ([]orm.User, int64, error) {
	count, err := s.db.CountUsers(ctx)
	if err != nil {
		return nil, 0, err
	}

	users, err := s.db.ListUsers(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	return users, count, nil
}

// ProfileUpdate carries the mutable profile fields. Age and username are
// immutable after registration.
type ProfileUpdate struct {
	Email           *string
	FirstName       *string
	LastName        *string
	CanBeContacted  *bool
	CanDataBeShared *bool
}

func (s *Service) UpdateUser(
	ctx context.Context,
	actor *orm.User,
	id uint,
	upd ProfileUpdate,
) (*orm.User, error) {
	user, err := s.db.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if actor.ID != user.ID {
		return nil, ErrNotProfileOwner
	}

	if upd.Email != nil {
		user.Email = *upd.Email
	}
	if upd.FirstName != nil {
		user.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		user.LastName = *upd.LastName
	}
	if upd.CanBeContacted != nil {
		user.CanBeContacted = *upd.CanBeContacted
	}
	if upd.CanDataBeShared != nil {
		user.CanDataBeShared = *upd.CanDataBeShared
	}

	err = s.db.SaveUser(ctx, user)
	if err != nil {
		return nil, err
	}

	return user, nil
}
