package scoreboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/annel0/arrow-physics/internal/logging"
	"github.com/annel0/arrow-physics/internal/projectile"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig содержит настройки подключения к MongoDB
type MongoConfig struct {
	URI        string // например mongodb://localhost:27017
	Database   string // например arrowsim
	Collection string // например scores
}

// MongoRepo хранит счёт документами {_id: shooter, actor_hits, block_hits, damage}
type MongoRepo struct {
	client     *mongo.Client
	collection *mongo.Collection
}

type scoreDoc struct {
	Shooter   int64   `bson:"_id"`
	ActorHits int64   `bson:"actor_hits"`
	BlockHits int64   `bson:"block_hits"`
	Damage    float64 `bson:"damage"`
}

func (d scoreDoc) score() Score {
	return Score{
		Shooter:   projectile.ActorID(d.Shooter),
		ActorHits: uint64(d.ActorHits),
		BlockHits: uint64(d.BlockHits),
		Damage:    d.Damage,
	}
}

// NewMongoRepo подключается к MongoDB и создаёт индекс по урону
func NewMongoRepo(ctx context.Context, cfg MongoConfig) (*MongoRepo, error) {
	if cfg.URI == "" {
		cfg.URI = "mongodb://localhost:27017"
	}
	if cfg.Database == "" {
		cfg.Database = "arrowsim"
	}
	if cfg.Collection == "" {
		cfg.Collection = "scores"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	repo := &MongoRepo{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
	}

	damageIdx := mongo.IndexModel{
		Keys:    bson.D{{Key: "damage", Value: -1}, {Key: "_id", Value: 1}},
		Options: options.Index().SetName("damage_desc"),
	}
	if _, err := repo.collection.Indexes().CreateOne(ctx, damageIdx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	logging.Info("🍃 Счёт хранится в MongoDB %s/%s", cfg.Database, cfg.Collection)
	return repo, nil
}

// Add применяет приращения одной неупорядоченной пакетной записью с upsert.
// Ошибки отдельных операций возвращаются как *PartialWriteError.
func (m *MongoRepo) Add(ctx context.Context, deltas []Score) error {
	if len(deltas) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(deltas))
	for _, d := range deltas {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": int64(d.Shooter)}).
			SetUpdate(bson.M{"$inc": bson.M{
				"actor_hits": int64(d.ActorHits),
				"block_hits": int64(d.BlockHits),
				"damage":     d.Damage,
			}}).
			SetUpsert(true))
	}

	_, err := m.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err == nil {
		return nil
	}
	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) && bwe.WriteConcernError == nil && len(bwe.WriteErrors) > 0 {
		return &PartialWriteError{Failed: failedShooters(deltas, bwe.WriteErrors), Err: err}
	}
	return fmt.Errorf("bulk write: %w", err)
}

// failedShooters сопоставляет ошибки операций пачки со стрелками по индексу модели
func failedShooters(deltas []Score, writeErrors []mongo.BulkWriteError) []projectile.ActorID {
	failed := make([]projectile.ActorID, 0, len(writeErrors))
	for _, we := range writeErrors {
		if we.Index >= 0 && we.Index < len(deltas) {
			failed = append(failed, deltas[we.Index].Shooter)
		}
	}
	return failed
}

func (m *MongoRepo) Get(ctx context.Context, shooter projectile.ActorID) (Score, bool, error) {
	var doc scoreDoc
	err := m.collection.FindOne(ctx, bson.M{"_id": int64(shooter)}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return Score{}, false, nil
	}
	if err != nil {
		return Score{}, false, err
	}
	return doc.score(), true, nil
}

func (m *MongoRepo) Top(ctx context.Context, n int) ([]Score, error) {
	opts := options.Find().SetSort(bson.D{{Key: "damage", Value: -1}, {Key: "_id", Value: 1}})
	if n >= 0 {
		if n == 0 {
			return []Score{}, nil
		}
		opts.SetLimit(int64(n))
	}

	cur, err := m.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	scores := []Score{}
	for cur.Next(ctx) {
		var doc scoreDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		scores = append(scores, doc.score())
	}
	return scores, cur.Err()
}

func (m *MongoRepo) Reset(ctx context.Context) error {
	_, err := m.collection.DeleteMany(ctx, bson.M{})
	return err
}

func (m *MongoRepo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	defer cancel()
	return m.client.Disconnect(ctx)
}
