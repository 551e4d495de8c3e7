package repository

import (
	"context"
	"fmt"
	"time"

	"atlas/internal/core"
	client "atlas/internal/database/client"
	"atlas/internal/database/mongodb/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type GeoNodeRepository struct {
	collection *mongo.Collection
}

func NewGeoNodeRepository(mongoClient *client.MongoClient) *GeoNodeRepository {
	repository := &GeoNodeRepository{
		collection: mongoClient.Client().Database(string(core.MongoDBAtlas)).Collection(string(core.MongoCollectionGeoNodes)),
	}
	_ = repository.ensureIndexes(context.Background())
	return repository
}

func (repository *GeoNodeRepository) ensureIndexes(contextValue context.Context) error {
	ctx := contextValue

	_, _ = repository.collection.Indexes().CreateMany(ctx, model.GeoNodeIndexes)
	return nil
}

func (repository *GeoNodeRepository) Create(contextValue context.Context, node *model.GeoNode) (_ *model.GeoNode, returnedError error) {
	nowUTC := time.Now().UTC()
	if node.ID.IsZero() {
		node.ID = primitive.NewObjectID()
	}
	node.CreatedAt = nowUTC
	node.UpdatedAt = nowUTC

	insertResult, insertError := repository.collection.InsertOne(contextValue, node)
	if insertError != nil {
		return nil, insertError
	}
	objectID, ok := insertResult.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected InsertedID type: %T", insertResult.InsertedID)
	}
	node.ID = objectID
	return node, nil
}

func (repository *GeoNodeRepository) GetByID(contextValue context.Context, nodeIdentifier primitive.ObjectID) (_ *model.GeoNode, returnedError error) {
	var node model.GeoNode
	if returnedError = repository.collection.FindOne(contextValue, bson.M{"_id": nodeIdentifier}).Decode(&node); returnedError != nil {
		return nil, returnedError
	}
	return &node, nil
}

// ListByTenant 列出租戶全部節點，排序交由呼叫端（orchestrator 需要依 depth 重排）
func (repository *GeoNodeRepository) ListByTenant(contextValue context.Context, tenantIdentifier primitive.ObjectID) (_ []*model.GeoNode, returnedError error) {
	return repository.list(contextValue, bson.M{"tenantId": tenantIdentifier}, options.Find().SetSort(bson.D{{Key: "depth", Value: 1}, {Key: "_id", Value: 1}}))
}

// ListByParent 列出直接子節點
func (repository *GeoNodeRepository) ListByParent(contextValue context.Context, tenantIdentifier, parentIdentifier primitive.ObjectID) (_ []*model.GeoNode, returnedError error) {
	return repository.list(contextValue, bson.M{"tenantId": tenantIdentifier, "parentId": parentIdentifier}, nil)
}

// List 一般查詢（admin 列表用）
func (repository *GeoNodeRepository) List(contextValue context.Context, filter bson.M) (_ []*model.GeoNode, returnedError error) {
	return repository.list(contextValue, filter, nil)
}

func (repository *GeoNodeRepository) list(contextValue context.Context, filter bson.M, findOptions *options.FindOptions) (_ []*model.GeoNode, returnedError error) {
	var cursor *mongo.Cursor
	var findError error
	if findOptions != nil {
		cursor, findError = repository.collection.Find(contextValue, filter, findOptions)
	} else {
		cursor, findError = repository.collection.Find(contextValue, filter)
	}
	if findError != nil {
		return nil, findError
	}
	defer cursor.Close(contextValue)

	var results []*model.GeoNode
	for cursor.Next(contextValue) {
		var node model.GeoNode
		if decodeError := cursor.Decode(&node); decodeError != nil {
			return nil, decodeError
		}
		results = append(results, &node)
	}
	if cursorError := cursor.Err(); cursorError != nil {
		return nil, cursorError
	}

	return results, nil
}

func (repository *GeoNodeRepository) UpdateByID(contextValue context.Context, nodeIdentifier primitive.ObjectID, update bson.M) (returnedCount int64, returnedError error) {
	result, updateError := repository.collection.UpdateOne(contextValue, bson.M{"_id": nodeIdentifier}, withUpdatedAt(update))
	if updateError != nil {
		return 0, updateError
	}
	if result.MatchedCount == 0 {
		return 0, mongo.ErrNoDocuments
	}
	return result.MatchedCount, nil
}

func (repository *GeoNodeRepository) DeleteByID(contextValue context.Context, nodeIdentifier primitive.ObjectID) (returnedError error) {
	_, returnedError = repository.collection.DeleteOne(contextValue, bson.M{"_id": nodeIdentifier})
	return returnedError
}
