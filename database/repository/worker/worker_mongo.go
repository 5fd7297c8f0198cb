package workerRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sewa/database"
	"sewa/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	readTimeout  = 5 * time.Second
	writeTimeout = 5 * time.Second
	listTimeout  = 10 * time.Second
)

// MongoWorkerRepo implements WorkerRepository using MongoDB.
type MongoWorkerRepo struct {
	coll *mongo.Collection
}

// NewMongoWorkerRepo creates a WorkerRepository on the "workers" collection.
func NewMongoWorkerRepo() WorkerRepository {
	repo := &MongoWorkerRepo{coll: database.Database().Collection("workers")}
	if err := repo.ensureIndexes(); err != nil {
		zap.L().Error("workerRepo: failed to ensure indexes", zap.Error(err))
	}
	return repo
}

func (r *MongoWorkerRepo) findOne(ctx context.Context, filter bson.M) (*models.Worker, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	var w models.Worker
	if err := r.coll.FindOne(ctx, filter).Decode(&w); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrWorkerNotFound
		}
		return nil, err
	}
	return &w, nil
}

func (r *MongoWorkerRepo) GetByID(ctx context.Context, id string) (*models.Worker, error) {
	w, err := r.findOne(ctx, bson.M{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch worker with id %s: %w", id, err)
	}
	return w, nil
}

func (r *MongoWorkerRepo) GetByEmail(ctx context.Context, email string) (*models.Worker, error) {
	w, err := r.findOne(ctx, bson.M{"email": email})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch worker with email %s: %w", email, err)
	}
	return w, nil
}

func (r *MongoWorkerRepo) Create(ctx context.Context, worker *models.Worker) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, worker); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("failed to create worker with email %s: %w", worker.Email, ErrEmailTaken)
		}
		return fmt.Errorf("failed to create worker: %w", err)
	}
	return nil
}

// List returns workers matching filter. Records that still store the status as a
// sub-document are matched through its "overall" field.
func (r *MongoWorkerRepo) List(ctx context.Context, filter models.WorkerFilter) ([]models.Worker, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	query := bson.M{}
	if filter.Status != nil {
		query["$or"] = bson.A{
			bson.M{"verificationStatus": string(*filter.Status)},
			bson.M{"verificationStatus.overall": string(*filter.Status)},
		}
	}
	if filter.IsActive != nil {
		query["isActive"] = *filter.IsActive
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}
	defer cursor.Close(ctx)

	var workers []models.Worker
	for cursor.Next(ctx) {
		var w models.Worker
		if err := cursor.Decode(&w); err != nil {
			return nil, fmt.Errorf("failed to decode worker: %w", err)
		}
		workers = append(workers, w)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return workers, nil
}

// set applies a $set to one worker and stamps updatedAt.
func (r *MongoWorkerRepo) set(ctx context.Context, id string, fields bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	fields["updatedAt"] = time.Now()
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update worker with id %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("worker with id %s: %w", id, ErrWorkerNotFound)
	}
	return nil
}

func (r *MongoWorkerRepo) SetActive(ctx context.Context, id string, active bool) error {
	return r.set(ctx, id, bson.M{"isActive": active})
}

func (r *MongoWorkerRepo) SetDocument(ctx context.Context, id string, kind models.DocumentKind, ref string) error {
	return r.set(ctx, id, bson.M{"documents." + string(kind): ref})
}

func (r *MongoWorkerRepo) SetOverallStatus(ctx context.Context, id string, status models.VerificationStatus, note string) error {
	return r.set(ctx, id, bson.M{"verificationStatus": status, "reviewNote": note})
}

func (r *MongoWorkerRepo) SetCategoryStatus(ctx context.Context, id, category string, status models.VerificationStatus) error {
	return r.set(ctx, id, bson.M{"categoryVerificationStatus." + category: status})
}

func (r *MongoWorkerRepo) SetServiceCategories(ctx context.Context, id string, categories []string) error {
	return r.set(ctx, id, bson.M{"serviceCategories": categories})
}

func (r *MongoWorkerRepo) SetFCMToken(ctx context.Context, id, token string) error {
	return r.set(ctx, id, bson.M{"fcmToken": token})
}

func (r *MongoWorkerRepo) SetTokenHash(ctx context.Context, id, tokenHash string) error {
	return r.set(ctx, id, bson.M{"tokenHash": tokenHash})
}

func (r *MongoWorkerRepo) SetAppLock(ctx context.Context, id string, lock models.AppLock) error {
	return r.set(ctx, id, bson.M{"appLock": lock})
}

// RecordFailedPIN runs as a single pipeline update so concurrent failures are all
// counted.
func (r *MongoWorkerRepo) RecordFailedPIN(ctx context.Context, id string, maxAttempts int, cooldown time.Duration, now time.Time) (*models.AppLock, error) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	locked := bson.M{"$gt": bson.A{"$appLock.lockedUntil", now}}
	reached := bson.M{"$gte": bson.A{"$appLock.failedAttempts", maxAttempts}}
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"appLock.failedAttempts": bson.M{"$cond": bson.A{
				locked,
				"$appLock.failedAttempts",
				bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$appLock.failedAttempts", 0}}, 1}},
			}},
		}}},
		{{Key: "$set", Value: bson.M{
			"appLock.lockedUntil":    bson.M{"$cond": bson.A{reached, now.Add(cooldown), "$appLock.lockedUntil"}},
			"appLock.failedAttempts": bson.M{"$cond": bson.A{reached, 0, "$appLock.failedAttempts"}},
			"appLock.updatedAt":      now,
			"updatedAt":              now,
		}}},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var w models.Worker
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"id": id}, pipeline, opts).Decode(&w); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("worker with id %s: %w", id, ErrWorkerNotFound)
		}
		return nil, fmt.Errorf("failed to record PIN failure for worker %s: %w", id, err)
	}
	return &w.AppLock, nil
}
