package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	apperrors "github.com/urbanpilot/oddnet/pkg/errors"
	"github.com/urbanpilot/oddnet/pkg/junction"
	"github.com/urbanpilot/oddnet/pkg/odd"
	"github.com/urbanpilot/oddnet/pkg/roadnet"
)

// Collection names used by the Mongo backend.
const (
	collectionJunctions = "junctions"
	collectionFeatures  = "node_features"
	collectionEdges     = "edges"
)

// MongoConfig holds connection settings for the Mongo backend.
type MongoConfig struct {
	// URI is the MongoDB connection string (e.g. "mongodb://localhost:27017").
	URI string

	// Database is the database name. Defaults to "oddnet".
	Database string

	// ConnectTimeout bounds the initial connection attempt. Defaults to 10s.
	ConnectTimeout time.Duration
}

// Mongo is a MongoDB-backed Store for production deployments.
//
// Junctions and edges are stored one document per entity keyed by _id,
// so re-running an analysis over the same extent replaces rather than
// duplicates. Node features use $addToSet for the same reason.
type Mongo struct {
	client    *mongo.Client
	junctions *mongo.Collection
	features  *mongo.Collection
	edges     *mongo.Collection
}

// NewMongo connects to MongoDB and returns a Store backed by it.
func NewMongo(ctx context.Context, cfg MongoConfig) (*Mongo, error) {
	if cfg.URI == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "mongo URI is required")
	}
	if cfg.Database == "" {
		cfg.Database = "oddnet"
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeStorage, err, "failed to connect to mongo")
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, apperrors.Wrap(apperrors.ErrCodeStorage, err, "failed to ping mongo")
	}

	db := client.Database(cfg.Database)
	return &Mongo{
		client:    client,
		junctions: db.Collection(collectionJunctions),
		features:  db.Collection(collectionFeatures),
		edges:     db.Collection(collectionEdges),
	}, nil
}

// PutJunction implements Store.
func (m *Mongo) PutJunction(ctx context.Context, r *junction.Result) error {
	doc := toJunctionDoc(r)
	_, err := m.junctions.ReplaceOne(ctx,
		bson.M{"_id": doc.NodeID},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeStorage, err, "failed to store junction")
	}
	return nil
}

// AppendNodeFeature implements Store.
func (m *Mongo) AppendNodeFeature(ctx context.Context, id roadnet.NodeID, f odd.Feature) error {
	doc := toFeatureDoc(f)
	_, err := m.features.UpdateOne(ctx,
		bson.M{"_id": int64(id)},
		bson.M{"$addToSet": bson.M{"features": doc}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeStorage, err, "failed to store node feature")
	}
	return nil
}

// PutEdge implements Store.
func (m *Mongo) PutEdge(ctx context.Context, e *roadnet.Edge) error {
	doc := toEdgeDoc(e)
	_, err := m.edges.ReplaceOne(ctx,
		bson.M{"_id": doc.ID},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeStorage, err, "failed to store edge")
	}
	return nil
}

// featureBundle is the node_features document shape.
type featureBundle struct {
	NodeID   int64        `bson:"_id"`
	Features []featureDoc `bson:"features"`
}

// NodeFeatures implements Store.
func (m *Mongo) NodeFeatures(ctx context.Context) (map[roadnet.NodeID][]odd.Feature, error) {
	cur, err := m.features.Find(ctx, bson.M{})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeStorage, err, "failed to query node features")
	}
	defer cur.Close(ctx)

	out := make(map[roadnet.NodeID][]odd.Feature)
	for cur.Next(ctx) {
		var bundle featureBundle
		if err := cur.Decode(&bundle); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeStorage, err, "failed to decode node features")
		}
		id := roadnet.NodeID(bundle.NodeID)
		for _, doc := range bundle.Features {
			if f, ok := doc.toFeature(); ok {
				out[id] = append(out[id], f)
			}
		}
	}
	if err := cur.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeStorage, err, "failed to iterate node features")
	}
	return out, nil
}

// Edges implements Store.
func (m *Mongo) Edges(ctx context.Context) ([]*roadnet.Edge, error) {
	cur, err := m.edges.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"_id": 1}))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeStorage, err, "failed to query edges")
	}
	defer cur.Close(ctx)

	var out []*roadnet.Edge
	for cur.Next(ctx) {
		var doc edgeDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeStorage, err, "failed to decode edge")
		}
		e, err := doc.toEdge()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := cur.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeStorage, err, "failed to iterate edges")
	}
	return out, nil
}

// Junctions implements Store.
func (m *Mongo) Junctions(ctx context.Context) ([]*junction.Result, error) {
	cur, err := m.junctions.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"_id": 1}))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeStorage, err, "failed to query junctions")
	}
	defer cur.Close(ctx)

	var out []*junction.Result
	for cur.Next(ctx) {
		var doc junctionDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeStorage, err, "failed to decode junction")
		}
		out = append(out, doc.toResult())
	}
	if err := cur.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeStorage, err, "failed to iterate junctions")
	}
	return out, nil
}

// Drop implements Store.
func (m *Mongo) Drop(ctx context.Context) error {
	for _, coll := range []*mongo.Collection{m.junctions, m.features, m.edges} {
		if err := coll.Drop(ctx); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeStorage, err, "failed to drop collection")
		}
	}
	return nil
}

// Close implements Store.
func (m *Mongo) Close(ctx context.Context) error {
	if err := m.client.Disconnect(ctx); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeStorage, err, "failed to disconnect from mongo")
	}
	return nil
}
