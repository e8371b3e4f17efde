// Package mongo 以 MongoDB 實作食材、事件與通知的儲存
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"food-manager/internal/core/food"
	"food-manager/internal/core/model"
	"food-manager/internal/infrastructure/config"
	"food-manager/internal/pkg/common"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// 集合名稱
const (
	FoodItemsCollection      = "food_items"
	CalendarEventsCollection = "calendar_events"
	NotificationsCollection  = "notifications"
)

// Store MongoDB 儲存
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect 連線並建立索引
func Connect(ctx context.Context, cfg *config.StorageConfig) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := &Store{client: client, db: client.Database(cfg.MongoDatabase)}
	if err := s.ensureIndexes(ctx); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}

	common.LogInfo("Connected to MongoDB", zap.String("database", cfg.MongoDatabase))
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		FoodItemsCollection: {
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		CalendarEventsCollection: {
			{Keys: bson.D{{Key: "food_item_id", Value: 1}}},
			{Keys: bson.D{{Key: "event_date", Value: 1}}},
		},
		NotificationsCollection: {
			{Keys: bson.D{{Key: "food_item_id", Value: 1}, {Key: "notification_type", Value: 1}}},
			{Keys: bson.D{{Key: "is_read", Value: 1}}},
		},
	}
	for name, models := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", name, err)
		}
	}
	return nil
}

// Repositories 返回三個集合的儲存
func (s *Store) Repositories() food.Repositories {
	return food.Repositories{
		Items:         &itemRepo{coll: s.db.Collection(FoodItemsCollection)},
		Events:        &eventRepo{coll: s.db.Collection(CalendarEventsCollection)},
		Notifications: &notificationRepo{coll: s.db.Collection(NotificationsCollection)},
		Close: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return s.client.Disconnect(ctx)
		},
	}
}

// truncate BSON 日期只保存到毫秒
func truncate(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

func decodeAll[T any](ctx context.Context, cur *mongo.Cursor) ([]T, error) {
	defer cur.Close(ctx)
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type itemRepo struct {
	coll *mongo.Collection
}

func normalizeItem(item *model.FoodItem) model.FoodItem {
	doc := *item
	doc.PurchaseDate = truncate(item.PurchaseDate)
	doc.ExpirationDate = truncate(item.ExpirationDate)
	doc.CreatedAt = truncate(item.CreatedAt)
	return doc
}

func (r *itemRepo) Create(ctx context.Context, item *model.FoodItem) error {
	if _, err := r.coll.InsertOne(ctx, normalizeItem(item)); err != nil {
		return fmt.Errorf("insert food item: %w", err)
	}
	return nil
}

func (r *itemRepo) Get(ctx context.Context, id string) (*model.FoodItem, error) {
	var item model.FoodItem
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, common.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get food item: %w", err)
	}
	return &item, nil
}

func (r *itemRepo) List(ctx context.Context) ([]model.FoodItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "id", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list food items: %w", err)
	}
	return decodeAll[model.FoodItem](ctx, cur)
}

func (r *itemRepo) Update(ctx context.Context, item *model.FoodItem) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"id": item.ID}, normalizeItem(item))
	if err != nil {
		return fmt.Errorf("update food item: %w", err)
	}
	if res.MatchedCount == 0 {
		return common.ErrRecordNotFound
	}
	return nil
}

func (r *itemRepo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("delete food item: %w", err)
	}
	if res.DeletedCount == 0 {
		return common.ErrRecordNotFound
	}
	return nil
}

type eventRepo struct {
	coll *mongo.Collection
}

var eventSort = bson.D{{Key: "event_date", Value: 1}, {Key: "_id", Value: 1}}

func (r *eventRepo) InsertMany(ctx context.Context, events []model.CalendarEvent) error {
	if len(events) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(events))
	for _, e := range events {
		e.EventDate = truncate(e.EventDate)
		e.CreatedAt = truncate(e.CreatedAt)
		docs = append(docs, e)
	}
	// 保持插入順序
	if _, err := r.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
		return fmt.Errorf("insert events: %w", err)
	}
	return nil
}

func (r *eventRepo) List(ctx context.Context) ([]model.CalendarEvent, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(eventSort))
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return decodeAll[model.CalendarEvent](ctx, cur)
}

func (r *eventRepo) ListBetween(ctx context.Context, from, to time.Time) ([]model.CalendarEvent, error) {
	filter := bson.M{"event_date": bson.M{"$gte": truncate(from), "$lte": truncate(to)}}
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(eventSort))
	if err != nil {
		return nil, fmt.Errorf("list due events: %w", err)
	}
	return decodeAll[model.CalendarEvent](ctx, cur)
}

func (r *eventRepo) DeleteByItem(ctx context.Context, itemID string) (int, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"food_item_id": itemID})
	if err != nil {
		return 0, fmt.Errorf("delete events: %w", err)
	}
	return int(res.DeletedCount), nil
}

type notificationRepo struct {
	coll *mongo.Collection
}

func (r *notificationRepo) Insert(ctx context.Context, n *model.Notification) error {
	doc := *n
	doc.CreatedAt = truncate(n.CreatedAt)
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *notificationRepo) List(ctx context.Context) ([]model.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return decodeAll[model.Notification](ctx, cur)
}

func (r *notificationRepo) CountUnread(ctx context.Context) (int, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"is_read": false})
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return int(n), nil
}

func (r *notificationRepo) MarkRead(ctx context.Context, id string) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if res.MatchedCount == 0 {
		return common.ErrRecordNotFound
	}
	return nil
}

func (r *notificationRepo) Exists(ctx context.Context, itemID string, t model.EventType) (bool, error) {
	n, err := r.coll.CountDocuments(ctx,
		bson.M{"food_item_id": itemID, "notification_type": t},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, fmt.Errorf("check notification: %w", err)
	}
	return n > 0, nil
}

func (r *notificationRepo) DeleteByItem(ctx context.Context, itemID string) (int, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"food_item_id": itemID})
	if err != nil {
		return 0, fmt.Errorf("delete notifications: %w", err)
	}
	return int(res.DeletedCount), nil
}
