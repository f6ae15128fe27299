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

const identityCollection = "linked_identities"

// LinkedIdentityRepository stores federated (provider, subject-id) links.
// A unique index on {provider, provider_subject_id} enforces at most one
// account per pair.
type LinkedIdentityRepository struct {
	coll *mongo.Collection
}

func NewLinkedIdentityRepository(db *mongo.Database) *LinkedIdentityRepository {
	return &LinkedIdentityRepository{coll: db.Collection(identityCollection)}
}

type mongoIdentity struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	AccountID         string             `bson:"account_id"`
	Provider          string             `bson:"provider"`
	ProviderSubjectID string             `bson:"provider_subject_id"`
	Email             string             `bson:"email,omitempty"`
	CreatedAt         int64              `bson:"created_at"`
}

func (r *LinkedIdentityRepository) Find(ctx context.Context, provider, subjectID string) (*domain.LinkedIdentity, error) {
	var mi mongoIdentity
	filter := bson.M{"provider": provider, "provider_subject_id": subjectID}
	if err := r.coll.FindOne(ctx, filter).Decode(&mi); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("find identity: %w", err)
	}

	return &domain.LinkedIdentity{
		ID:                mi.ID.Hex(),
		AccountID:         mi.AccountID,
		Provider:          mi.Provider,
		ProviderSubjectID: mi.ProviderSubjectID,
		Email:             mi.Email,
		CreatedAt:         unixToTime(mi.CreatedAt),
	}, nil
}

func (r *LinkedIdentityRepository) Create(ctx context.Context, identity *domain.LinkedIdentity) error {
	doc := mongoIdentity{
		AccountID:         identity.AccountID,
		Provider:          identity.Provider,
		ProviderSubjectID: identity.ProviderSubjectID,
		Email:             identity.Email,
		CreatedAt:         time.Now().UTC().Unix(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert identity: %w", err)
	}
	return nil
}
