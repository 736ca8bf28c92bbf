package orm

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

func (db DB) CreateUser(ctx context.Context, user *User) error {
	if user.Username == "" {
		return &BadInputError{Reason: "user without a username"}
	}

	err := gorm.G[User](db.dbGorm).Create(ctx, user)
	if err != nil {
		return wrapError(
			err,
			"create user",
			fmt.Sprintf("username=%q", user.Username),
		)
	}

	return nil
}

func (db DB) GetUserByID(ctx context.Context, id uint) (*User, error) {
	user, err := gorm.G[User](db.dbGorm).Where(&User{ID: id}).First(ctx)
	if err != nil {
		return nil, wrapError(
			err,
			"get user by id",
			fmt.Sprintf("id=%d", id),
		)
	}

	return &user, nil
}

func (db DB) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	if username == "" {
		return nil, &BadInputError{Reason: "empty username"}
	}

	user, err := gorm.G[User](db.dbGorm).Where(&User{Username: username}).First(ctx)
	if err != nil {
		return nil, wrapError(
			err,
			"get user by username",
			fmt.Sprintf("username=%q", username),
		)
	}

	return &user, nil
}

func (db DB) ListUsers(ctx context.Context, limit, offset int) ([]User, error) {
	var users []User
	err := db.dbGorm.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	if err != nil {
		return nil, wrapError(err, "list users", "")
	}

	return users, nil
}

func (db DB) CountUsers(ctx context.Context) (int64, error) {
	count, err := gorm.G[User](db.dbGorm).Count(ctx, "*")
	if err != nil {
		return 0, wrapError(err, "count users", "")
	}

	return count, nil
}

func (db DB) SaveUser(ctx context.Context, user *User) error {
	return wrapError(
		db.dbGorm.WithContext(ctx).Save(user).Error,
		"save user",
		fmt.Sprintf("id=%d", user.ID),
	)
}
