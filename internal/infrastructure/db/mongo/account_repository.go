package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/inkwell/content-platform/internal/core/domain"
)

const accountCollection = "accounts"

// AccountRepository is the Mongo-backed account store.
type AccountRepository struct {
	coll *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{coll: db.Collection(accountCollection)}
}

type mongoAccount struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	Email            string             `bson:"email"`
	Name             string             `bson:"name,omitempty"`
	Bio              string             `bson:"bio,omitempty"`
	AvatarURL        string             `bson:"avatar_url,omitempty"`
	SocialLinks      map[string]string  `bson:"social_links,omitempty"`
	PasswordHash     string             `bson:"password_hash,omitempty"`
	Status           string             `bson:"status"`
	SecurityStamp    string             `bson:"security_stamp"`
	TwoFactorEnabled bool               `bson:"two_factor_enabled"`
	TwoFactorSecret  string             `bson:"two_factor_secret,omitempty"`
	RoleID           string             `bson:"role_id,omitempty"`
	LastLoginAt      int64              `bson:"last_login_at,omitempty"`
	EmailVerifiedAt  int64              `bson:"email_verified_at,omitempty"`
	CreatedAt        int64              `bson:"created_at"`
	UpdatedAt        int64              `bson:"updated_at"`
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"email": domain.NormalizeEmail(email)})
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	var ma mongoAccount
	if err := r.coll.FindOne(ctx, filter).Decode(&ma); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return ma.toDomain(), nil
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	now := time.Now().UTC()
	doc := mongoAccount{
		Email:            domain.NormalizeEmail(account.Email),
		Name:             account.Name,
		Bio:              account.Bio,
		AvatarURL:        account.AvatarURL,
		SocialLinks:      account.SocialLinks,
		PasswordHash:     account.PasswordHash,
		Status:           string(account.Status),
		SecurityStamp:    account.SecurityStamp,
		TwoFactorEnabled: account.TwoFactorEnabled,
		TwoFactorSecret:  account.TwoFactorSecret,
		RoleID:           account.RoleID,
		EmailVerifiedAt:  timeToUnix(account.EmailVerifiedAt),
		CreatedAt:        now.Unix(),
		UpdatedAt:        now.Unix(),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrAccountExists
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	// fetch back to get ID
	return r.FindByEmail(ctx, doc.Email)
}

func (r *AccountRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.updateByID(ctx, id, bson.M{"last_login_at": at.Unix()})
}

func (r *AccountRepository) MarkVerified(ctx context.Context, id string, at time.Time) error {
	return r.updateByID(ctx, id, bson.M{
		"status":            string(domain.StatusActive),
		"email_verified_at": at.Unix(),
	})
}

func (r *AccountRepository) RotateSecurityStamp(ctx context.Context, id string, stamp string) error {
	return r.updateByID(ctx, id, bson.M{"security_stamp": stamp})
}

func (r *AccountRepository) updateByID(ctx context.Context, id string, set bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrAccountNotFound
	}
	set["updated_at"] = time.Now().UTC().Unix()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (ma *mongoAccount) toDomain() *domain.Account {
	return &domain.Account{
		ID:               ma.ID.Hex(),
		Email:            ma.Email,
		Name:             ma.Name,
		Bio:              ma.Bio,
		AvatarURL:        ma.AvatarURL,
		SocialLinks:      ma.SocialLinks,
		PasswordHash:     ma.PasswordHash,
		Status:           domain.AccountStatus(ma.Status),
		SecurityStamp:    ma.SecurityStamp,
		TwoFactorEnabled: ma.TwoFactorEnabled,
		TwoFactorSecret:  ma.TwoFactorSecret,
		RoleID:           ma.RoleID,
		LastLoginAt:      unixToTimePtr(ma.LastLoginAt),
		EmailVerifiedAt:  unixToTimePtr(ma.EmailVerifiedAt),
		CreatedAt:        unixToTime(ma.CreatedAt),
		UpdatedAt:        unixToTime(ma.UpdatedAt),
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}

func unixToTimePtr(ts int64) *time.Time {
	if ts == 0 {
		return nil
	}
	t := time.Unix(ts, 0).UTC()
	return &t
}

func timeToUnix(t *time.Time) int64 {
	if t == nil {
		return 0
	}
	return t.Unix()
}
