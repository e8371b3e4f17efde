// Package sqlite 以 SQLite 實作食材、事件與通知的儲存
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"food-manager/internal/core/food"
	"food-manager/internal/core/model"
	"food-manager/internal/infrastructure/database"
	"food-manager/internal/pkg/common"
)

// Store SQLite 儲存
type Store struct {
	db *sql.DB
}

// New 以已開啟的資料庫建立儲存
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open 開啟資料庫檔案並執行遷移
func Open(path string) (*Store, error) {
	db, err := database.Open(path)
	if err != nil {
		return nil, err
	}
	return New(db), nil
}

// Repositories 返回三個集合的儲存
func (s *Store) Repositories() food.Repositories {
	return food.Repositories{
		Items:         &ItemStore{db: s.db},
		Events:        &EventStore{db: s.db},
		Notifications: &NotificationStore{db: s.db},
		Close:         s.db.Close,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(database.TimeLayout)
}

// parseTime 無法解析的日期視為零值
func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := model.ParseTimestamp(raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

type scanner interface{ Scan(...any) error }

// --- Food items ---

// ItemStore 食材儲存
type ItemStore struct {
	db *sql.DB
}

const itemCols = `id, name, category, quantity, unit, storage_condition, purchase_date, expiration_date, shelf_life_days, current_state, notes, emoji, storage_tips, created_at`

func scanItem(sc scanner) (*model.FoodItem, error) {
	var item model.FoodItem
	var purchase, expiration, created string
	var notes, emoji, tips sql.NullString

	err := sc.Scan(
		&item.ID, &item.Name, &item.Category, &item.Quantity, &item.Unit,
		&item.StorageCondition, &purchase, &expiration, &item.ShelfLifeDays,
		&item.CurrentState, &notes, &emoji, &tips, &created,
	)
	if err != nil {
		return nil, err
	}

	item.PurchaseDate = parseTime(purchase)
	item.ExpirationDate = parseTime(expiration)
	item.CreatedAt = parseTime(created)
	item.Notes = stringPtr(notes)
	item.Emoji = stringPtr(emoji)
	item.StorageTips = stringPtr(tips)
	return &item, nil
}

func (s *ItemStore) Create(ctx context.Context, item *model.FoodItem) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO food_items (`+itemCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.Name, item.Category, item.Quantity, item.Unit, item.StorageCondition,
		formatTime(item.PurchaseDate), formatTime(item.ExpirationDate), item.ShelfLifeDays,
		item.CurrentState, nullString(item.Notes), nullString(item.Emoji), nullString(item.StorageTips),
		formatTime(item.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert food item: %w", err)
	}
	return nil
}

func (s *ItemStore) Get(ctx context.Context, id string) (*model.FoodItem, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemCols+` FROM food_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, common.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get food item: %w", err)
	}
	return item, nil
}

func (s *ItemStore) List(ctx context.Context) ([]model.FoodItem, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+itemCols+` FROM food_items ORDER BY created_at DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list food items: %w", err)
	}
	defer rows.Close()

	items := []model.FoodItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan food item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (s *ItemStore) Update(ctx context.Context, item *model.FoodItem) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE food_items SET name = ?, category = ?, quantity = ?, unit = ?, storage_condition = ?,
			purchase_date = ?, expiration_date = ?, shelf_life_days = ?, current_state = ?,
			notes = ?, emoji = ?, storage_tips = ?
		WHERE id = ?`,
		item.Name, item.Category, item.Quantity, item.Unit, item.StorageCondition,
		formatTime(item.PurchaseDate), formatTime(item.ExpirationDate), item.ShelfLifeDays,
		item.CurrentState, nullString(item.Notes), nullString(item.Emoji), nullString(item.StorageTips),
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("update food item: %w", err)
	}
	return requireAffected(res)
}

func (s *ItemStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM food_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete food item: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return common.ErrRecordNotFound
	}
	return nil
}

// --- Calendar events ---

// EventStore 行事曆事件儲存
type EventStore struct {
	db *sql.DB
}

const eventCols = `id, food_item_id, food_name, event_type, event_date, title, description, color, created_at`

func scanEvent(sc scanner) (*model.CalendarEvent, error) {
	var e model.CalendarEvent
	var eventDate, created string
	err := sc.Scan(&e.ID, &e.FoodItemID, &e.FoodName, &e.EventType, &eventDate, &e.Title, &e.Description, &e.Color, &created)
	if err != nil {
		return nil, err
	}
	e.EventDate = parseTime(eventDate)
	e.CreatedAt = parseTime(created)
	return &e, nil
}

func (s *EventStore) InsertMany(ctx context.Context, events []model.CalendarEvent) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO calendar_events (`+eventCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert event: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		if _, err := stmt.ExecContext(ctx,
			e.ID, e.FoodItemID, e.FoodName, e.EventType, formatTime(e.EventDate),
			e.Title, e.Description, e.Color, formatTime(e.CreatedAt),
		); err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	}
	return tx.Commit()
}

func (s *EventStore) List(ctx context.Context) ([]model.CalendarEvent, error) {
	return s.query(ctx, `SELECT `+eventCols+` FROM calendar_events ORDER BY event_date ASC, rowid ASC`)
}

func (s *EventStore) ListBetween(ctx context.Context, from, to time.Time) ([]model.CalendarEvent, error) {
	return s.query(ctx,
		`SELECT `+eventCols+` FROM calendar_events WHERE event_date >= ? AND event_date <= ? ORDER BY event_date ASC, rowid ASC`,
		formatTime(from), formatTime(to),
	)
}

func (s *EventStore) query(ctx context.Context, q string, args ...any) ([]model.CalendarEvent, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := []model.CalendarEvent{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (s *EventStore) DeleteByItem(ctx context.Context, itemID string) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM calendar_events WHERE food_item_id = ?`, itemID)
	if err != nil {
		return 0, fmt.Errorf("delete events: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// --- Notifications ---

// NotificationStore 通知儲存
type NotificationStore struct {
	db *sql.DB
}

const notificationCols = `id, food_item_id, food_name, notification_type, message, priority, is_read, created_at`

func scanNotification(sc scanner) (*model.Notification, error) {
	var n model.Notification
	var isRead int
	var created string
	err := sc.Scan(&n.ID, &n.FoodItemID, &n.FoodName, &n.NotificationType, &n.Message, &n.Priority, &isRead, &created)
	if err != nil {
		return nil, err
	}
	n.IsRead = isRead != 0
	n.CreatedAt = parseTime(created)
	return &n, nil
}

func (s *NotificationStore) Insert(ctx context.Context, n *model.Notification) error {
	isRead := 0
	if n.IsRead {
		isRead = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (`+notificationCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.FoodItemID, n.FoodName, n.NotificationType, n.Message, n.Priority, isRead, formatTime(n.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *NotificationStore) List(ctx context.Context) ([]model.Notification, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+notificationCols+` FROM notifications ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	list := []model.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		list = append(list, *n)
	}
	return list, rows.Err()
}

func (s *NotificationStore) CountUnread(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications WHERE is_read = 0`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}

func (s *NotificationStore) MarkRead(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE notifications SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return requireAffected(res)
}

func (s *NotificationStore) Exists(ctx context.Context, itemID string, t model.EventType) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM notifications WHERE food_item_id = ? AND notification_type = ?)`,
		itemID, t,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check notification: %w", err)
	}
	return exists != 0, nil
}

func (s *NotificationStore) DeleteByItem(ctx context.Context, itemID string) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM notifications WHERE food_item_id = ?`, itemID)
	if err != nil {
		return 0, fmt.Errorf("delete notifications: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}
