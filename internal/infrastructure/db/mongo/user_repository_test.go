package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/cargolive/cargolive-api/internal/core/domain"
)

func userDoc(id, email string, ts time.Time) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "email", Value: email},
		{Key: "password_hash", Value: "$2a$10$hash"},
		{Key: "full_name", Value: "A B"},
		{Key: "is_google_account", Value: false},
		{Key: "created_at", Value: ts},
		{Key: "updated_at", Value: ts},
	}
}

func TestUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mt.Run("find by email", func(mt *mtest.T) {
		ns := mt.DB.Name() + "." + collectionUsers
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, userDoc("u-1", "a@b.com", ts)))

		got, err := NewUserRepository(mt.DB, time.Second).FindByEmail(context.Background(), "a@b.com")
		if err != nil {
			mt.Fatalf("FindByEmail error: %v", err)
		}
		if got.ID != "u-1" || got.Email != "a@b.com" || got.PasswordHash != "$2a$10$hash" || !got.CreatedAt.Equal(ts) {
			mt.Fatalf("unexpected user: %+v", got)
		}
	})

	mt.Run("find by id missing", func(mt *mtest.T) {
		ns := mt.DB.Name() + "." + collectionUsers
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := NewUserRepository(mt.DB, time.Second).FindByID(context.Background(), "ghost")
		if !errors.Is(err, domain.ErrUserNotFound) {
			mt.Fatalf("want domain.ErrUserNotFound, got %v", err)
		}
	})

	mt.Run("create", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		got, err := NewUserRepository(mt.DB, time.Second).Create(context.Background(), &domain.User{
			ID: "u-1", Email: "a@b.com", PasswordHash: "h", CreatedAt: ts, UpdatedAt: ts,
		})
		if err != nil {
			mt.Fatalf("Create error: %v", err)
		}
		if got.ID != "u-1" || !got.CreatedAt.Equal(ts) {
			mt.Fatalf("unexpected user: %+v", got)
		}
	})

	mt.Run("create duplicate email", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: users index: users_email_unique",
		}))

		_, err := NewUserRepository(mt.DB, time.Second).Create(context.Background(), &domain.User{ID: "u-2", Email: "a@b.com"})
		if !errors.Is(err, domain.ErrUserExists) {
			mt.Fatalf("want domain.ErrUserExists, got %v", err)
		}
	})

	mt.Run("update password hash", func(mt *mtest.T) {
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 1}, {Key: "nModified", Value: 1}})

		if err := NewUserRepository(mt.DB, time.Second).UpdatePasswordHash(context.Background(), "u-1", "new"); err != nil {
			mt.Fatalf("UpdatePasswordHash error: %v", err)
		}
	})

	mt.Run("update password hash missing user", func(mt *mtest.T) {
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 0}, {Key: "nModified", Value: 0}})

		err := NewUserRepository(mt.DB, time.Second).UpdatePasswordHash(context.Background(), "ghost", "new")
		if !errors.Is(err, domain.ErrUserNotFound) {
			mt.Fatalf("want domain.ErrUserNotFound, got %v", err)
		}
	})

	mt.Run("ensure indexes", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		if err := NewUserRepository(mt.DB, time.Second).EnsureIndexes(context.Background()); err != nil {
			mt.Fatalf("EnsureIndexes error: %v", err)
		}
	})
}
