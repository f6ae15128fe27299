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

const backupCodeCollection = "backup_codes"

// BackupCodeRepository stores hashed single-use backup codes.
type BackupCodeRepository struct {
	coll *mongo.Collection
}

func NewBackupCodeRepository(db *mongo.Database) *BackupCodeRepository {
	return &BackupCodeRepository{coll: db.Collection(backupCodeCollection)}
}

type mongoBackupCode struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	AccountID string             `bson:"account_id"`
	CodeHash  string             `bson:"code_hash"`
	Used      bool               `bson:"used"`
	UsedAt    int64              `bson:"used_at,omitempty"`
	CreatedAt int64              `bson:"created_at"`
}

func (r *BackupCodeRepository) ListUnused(ctx context.Context, accountID string) ([]domain.BackupCode, error) {
	cur, err := r.coll.Find(ctx, bson.M{"account_id": accountID, "used": false})
	if err != nil {
		return nil, fmt.Errorf("list backup codes: %w", err)
	}
	defer cur.Close(ctx)

	var codes []domain.BackupCode
	for cur.Next(ctx) {
		var mc mongoBackupCode
		if err := cur.Decode(&mc); err != nil {
			return nil, fmt.Errorf("decode backup code: %w", err)
		}
		codes = append(codes, domain.BackupCode{
			ID:        mc.ID.Hex(),
			AccountID: mc.AccountID,
			CodeHash:  mc.CodeHash,
			Used:      mc.Used,
			UsedAt:    unixToTimePtr(mc.UsedAt),
			CreatedAt: unixToTime(mc.CreatedAt),
		})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list backup codes: %w", err)
	}
	return codes, nil
}

// Consume flips used from false to true in a single conditional update. Two
// concurrent requests presenting the same code race on this filter; Mongo
// matches the document for exactly one of them.
func (r *BackupCodeRepository) Consume(ctx context.Context, codeID string, at time.Time) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(codeID)
	if err != nil {
		return false, nil
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "used": false},
		bson.M{"$set": bson.M{"used": true, "used_at": at.Unix()}},
	)
	if err != nil {
		return false, fmt.Errorf("consume backup code: %w", err)
	}
	return res.ModifiedCount == 1, nil
}
