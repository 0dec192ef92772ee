package index

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"MediaSearchBot/internal/models"
)

const (
	connectTimeout = 10 * time.Second
	opTimeout      = 5 * time.Second

	// candidateCap bounds how many candidate documents one search pulls
	// for in-process ranking.
	candidateCap = 1000
)

// Mongo is the MongoDB-backed Store. Candidate matching runs as a regex
// query in the database; the deterministic ranking runs in-process on the
// fetched candidates so both Store implementations order identically.
type Mongo struct {
	client     *mongo.Client
	collection *mongo.Collection
	captions   bool
	log        *zap.Logger
}

// NewMongo connects to MongoDB, verifies the connection and ensures the
// catalog indexes exist.
func NewMongo(ctx context.Context, uri, database, collection string, captionSearch bool, log *zap.Logger) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	m := &Mongo{
		client:     client,
		collection: client.Database(database).Collection(collection),
		captions:   captionSearch,
		log:        log,
	}
	m.ensureIndexes(ctx)
	return m, nil
}

// ensureIndexes creates the query-path indexes. The identity is the _id, so
// uniqueness needs no extra index.
func (m *Mongo) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "file_type", Value: 1}}},
		{Keys: bson.D{{Key: "indexed_at", Value: -1}}},
		{Keys: bson.D{{Key: "channel_id", Value: 1}}},
	}
	if _, err := m.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		m.log.Warn("failed to create catalog indexes", zap.Error(err))
	}
}

func (m *Mongo) Upsert(ctx context.Context, rec models.MediaRecord) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	// Whole-document replacement keyed on _id: idempotent, last-writer-wins,
	// and readers see the record old-or-new, never mixed.
	res, err := m.collection.ReplaceOne(ctx,
		bson.M{"_id": rec.Key},
		rec,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return false, models.WrapStorage(models.StorageUnavailable, err)
	}
	return res.UpsertedCount > 0, nil
}

func (m *Mongo) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := m.collection.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return models.WrapStorage(models.StorageUnavailable, err)
	}
	return nil
}

func (m *Mongo) Search(ctx context.Context, q Query) ([]models.MediaRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "indexed_at", Value: -1}}).
		SetLimit(candidateCap)

	cursor, err := m.collection.Find(ctx, candidateFilter(q, m.captions), opts)
	if err != nil {
		return nil, models.WrapStorage(models.StorageUnavailable, err)
	}
	defer cursor.Close(ctx)

	var candidates []models.MediaRecord
	if err := cursor.All(ctx, &candidates); err != nil {
		return nil, models.WrapStorage(models.StorageUnavailable, err)
	}

	ordered := filterAndRank(candidates, q, m.captions)
	return pageSlice(ordered, q.Offset, q.Limit), nil
}

// candidateFilter narrows the scan server-side: every token must appear in
// the name, or every token in the caption when caption matching is enabled.
func candidateFilter(q Query, captions bool) bson.M {
	tokens := tokenize(q.Term)
	if len(tokens) == 0 {
		if q.Kind != models.KindAny {
			return bson.M{"file_type": q.Kind}
		}
		return bson.M{}
	}

	nameConds := make(bson.A, 0, len(tokens))
	captionConds := make(bson.A, 0, len(tokens))
	for _, tok := range tokens {
		pattern := regexp.QuoteMeta(tok)
		nameConds = append(nameConds, bson.M{"file_name": bson.M{"$regex": pattern, "$options": "i"}})
		captionConds = append(captionConds, bson.M{"caption": bson.M{"$regex": pattern, "$options": "i"}})
	}

	match := bson.M{"$and": nameConds}
	if captions {
		match = bson.M{"$or": bson.A{
			bson.M{"$and": nameConds},
			bson.M{"$and": captionConds},
		}}
	}

	if q.Kind != models.KindAny {
		return bson.M{"$and": bson.A{match, bson.M{"file_type": q.Kind}}}
	}
	return match
}

func (m *Mongo) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	n, err := m.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, models.WrapStorage(models.StorageUnavailable, err)
	}
	return n, nil
}

func (m *Mongo) CountByKind(ctx context.Context) (map[models.MediaKind]int64, error) {
	groups, err := m.groupCount(ctx, "$file_type")
	if err != nil {
		return nil, err
	}
	out := make(map[models.MediaKind]int64, len(groups))
	for _, g := range groups {
		var kind models.MediaKind
		if s, ok := g.ID.(string); ok {
			kind = models.MediaKind(s)
		}
		out[kind] = g.Count
	}
	return out, nil
}

func (m *Mongo) CountByChannel(ctx context.Context) (map[int64]int64, error) {
	groups, err := m.groupCount(ctx, "$channel_id")
	if err != nil {
		return nil, err
	}
	out := make(map[int64]int64, len(groups))
	for _, g := range groups {
		switch id := g.ID.(type) {
		case int64:
			out[id] = g.Count
		case int32:
			out[int64(id)] = g.Count
		}
	}
	return out, nil
}

type groupCountRow struct {
	ID    interface{} `bson:"_id"`
	Count int64       `bson:"count"`
}

func (m *Mongo) groupCount(ctx context.Context, field string) ([]groupCountRow, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: field},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := m.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, models.WrapStorage(models.StorageUnavailable, err)
	}
	defer cursor.Close(ctx)

	var rows []groupCountRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, models.WrapStorage(models.StorageUnavailable, err)
	}
	return rows, nil
}

// Close disconnects from MongoDB.
func (m *Mongo) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	return m.client.Disconnect(ctx)
}
