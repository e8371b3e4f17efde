package food

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"food-manager/internal/core/advisory"
	"food-manager/internal/core/lifecycle"
	"food-manager/internal/core/model"
	"food-manager/internal/pkg/common"

	"go.uber.org/zap"
)

// 推播用的動作名稱
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Advisor 食材建議來源
type Advisor interface {
	Advise(ctx context.Context, name string, hint model.Category, storage model.StorageCondition) model.Advice
	Interpret(ctx context.Context, item *model.FoodItem, instruction string, now time.Time) (*advisory.UpdateProposal, error)
}

// CreateRequest 新增食材請求
type CreateRequest struct {
	Name             string                  `json:"name" binding:"required"`
	Category         model.Category          `json:"category"`
	Quantity         *float64                `json:"quantity"`
	Unit             string                  `json:"unit"`
	StorageCondition *model.StorageCondition `json:"storage_condition"`
	PurchaseDate     string                  `json:"purchase_date"`
	Notes            *string                 `json:"notes"`
	Emoji            *string                 `json:"emoji"`
}

// InterpretResult 自然語言更新結果
type InterpretResult struct {
	Success       bool                   `json:"success"`
	UpdatedFields map[string]interface{} `json:"updated_fields"`
	Message       string                 `json:"message"`
	Item          *model.FoodItem        `json:"item,omitempty"`
}

// DashboardStats 儀表板統計
type DashboardStats struct {
	TotalItems        int            `json:"total_items"`
	ExpiringSoon      int            `json:"expiring_soon"`
	Expired           int            `json:"expired"`
	CategoryBreakdown map[string]int `json:"category_breakdown"`
}

// Service 食材生命週期服務
type Service struct {
	items         ItemRepository
	events        EventRepository
	notifications NotificationRepository
	advisor       Advisor
	policy        lifecycle.MergePolicy
	clock         common.Clock
	newID         common.IDGenerator
	notifier      Notifier
}

// Option 服務選項
type Option func(*Service)

// WithClock 注入時間來源
func WithClock(c common.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithIDGenerator 注入 ID 產生器
func WithIDGenerator(g common.IDGenerator) Option {
	return func(s *Service) { s.newID = g }
}

// WithNotifier 注入推播
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// NewService 創建食材服務
func NewService(repos Repositories, advisor Advisor, policy lifecycle.MergePolicy, opts ...Option) *Service {
	s := &Service{
		items:         repos.Items,
		events:        repos.Events,
		notifications: repos.Notifications,
		advisor:       advisor,
		policy:        policy,
		clock:         common.SystemClock{},
		newID:         common.GenerateUUID,
		notifier:      nopNotifier{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create 新增食材：取得建議、合併欄位、計算到期時間並排程提醒
func (s *Service) Create(ctx context.Context, req CreateRequest) (*model.FoodItem, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, common.NewValidationError("name is required")
	}
	if req.Category != "" && !req.Category.Valid() {
		return nil, common.NewValidationError(fmt.Sprintf("invalid category %q", req.Category))
	}
	if req.StorageCondition != nil && !req.StorageCondition.Valid() {
		return nil, common.NewValidationError(fmt.Sprintf("invalid storage_condition %q", *req.StorageCondition))
	}
	quantity := 1.0
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if quantity < 0 {
		return nil, common.NewValidationError("quantity must not be negative")
	}

	now := s.clock.Now()
	purchase, err := lifecycle.ResolvePurchaseDate(req.PurchaseDate, now)
	if err != nil {
		return nil, err
	}

	storage := model.DefaultStorage
	if req.StorageCondition != nil {
		storage = *req.StorageCondition
	}
	advice := s.advisor.Advise(ctx, name, req.Category, storage)
	if advice.Fallback {
		common.LogWarn("Using fallback advisory", zap.String("name", name))
	}

	merged := s.policy.Merge(lifecycle.UserFields{
		Name:     name,
		Category: req.Category,
		Storage:  req.StorageCondition,
		Emoji:    derefString(req.Emoji),
	}, advice)

	item := &model.FoodItem{
		ID:               s.newID(),
		Name:             merged.Name,
		Category:         merged.Category,
		Quantity:         quantity,
		Unit:             common.OrDefault(strings.TrimSpace(req.Unit), model.DefaultUnit),
		StorageCondition: merged.StorageCondition,
		PurchaseDate:     purchase,
		ExpirationDate:   lifecycle.CalculateExpiration(purchase, merged.ShelfLifeDays),
		ShelfLifeDays:    merged.ShelfLifeDays,
		CurrentState:     model.DefaultState,
		Notes:            req.Notes,
		Emoji:            stringPtr(merged.Emoji),
		StorageTips:      stringPtr(merged.StorageTips),
		CreatedAt:        now,
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}

	if err := s.items.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to save food item: %w", err)
	}

	// 事件寫入失敗不回滾已儲存的食材
	if err := s.schedule(ctx, item, now); err != nil {
		return nil, err
	}

	common.LogInfo("Food item created",
		zap.String("id", item.ID),
		zap.String("name", item.Name),
		zap.Int("shelf_life_days", item.ShelfLifeDays),
		zap.Bool("fallback_advice", advice.Fallback),
	)
	s.notifier.FoodItemChanged(ActionCreated, item)
	return item, nil
}

// Get 取得單一食材
func (s *Service) Get(ctx context.Context, id string) (*model.FoodItem, error) {
	item, err := s.items.Get(ctx, id)
	if err != nil {
		return nil, mapItemError(err)
	}
	return item, nil
}

// List 依新鮮度篩選食材
func (s *Service) List(ctx context.Context, filter string) ([]model.FoodItem, error) {
	f, err := lifecycle.ParseFilter(filter)
	if err != nil {
		return nil, err
	}
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list food items: %w", err)
	}
	if f == lifecycle.FilterAll {
		return items, nil
	}

	now := s.clock.Now()
	out := make([]model.FoodItem, 0, len(items))
	for _, item := range items {
		if f.Matches(item.ExpirationDate, now) {
			out = append(out, item)
		}
	}
	return out, nil
}

// Update 部分更新食材，到期時間改變時重新排程
func (s *Service) Update(ctx context.Context, id string, patch model.FoodPatch) (*model.FoodItem, error) {
	if patch.IsEmpty() {
		return nil, common.NewValidationError("no fields to update")
	}

	item, err := s.items.Get(ctx, id)
	if err != nil {
		return nil, mapItemError(err)
	}
	previous := item.ExpirationDate

	if err := applyPatch(item, patch); err != nil {
		return nil, err
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}

	if err := s.items.Update(ctx, item); err != nil {
		return nil, mapItemError(err)
	}

	if patch.TouchesExpiration() && !item.ExpirationDate.Equal(previous) {
		if err := s.reschedule(ctx, item); err != nil {
			return nil, err
		}
	}

	s.notifier.FoodItemChanged(ActionUpdated, item)
	return item, nil
}

// InterpretUpdate 以自然語言指令產生更新建議，apply 為 true 時直接套用
// 模型失敗時返回 success=false，而非錯誤
func (s *Service) InterpretUpdate(ctx context.Context, id, instruction string, apply bool) (*InterpretResult, error) {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return nil, common.NewValidationError("Instruction is required")
	}

	item, err := s.items.Get(ctx, id)
	if err != nil {
		return nil, mapItemError(err)
	}

	proposal, err := s.advisor.Interpret(ctx, item, instruction, s.clock.Now())
	if err != nil {
		common.LogWarn("AI update failed", zap.String("id", id), zap.Error(err))
		return &InterpretResult{
			Success:       false,
			UpdatedFields: map[string]interface{}{},
			Message:       "AI update failed, please edit the item manually",
		}, nil
	}

	result := &InterpretResult{
		Success:       true,
		UpdatedFields: proposal.Fields,
		Message:       "AI analysis complete",
	}
	if apply {
		updated, err := s.Update(ctx, id, proposal.Patch)
		if err != nil {
			return nil, err
		}
		result.Item = updated
		result.Message = "AI update applied"
	}
	return result, nil
}

// Delete 刪除食材及其事件、通知
func (s *Service) Delete(ctx context.Context, id string) error {
	item, err := s.items.Get(ctx, id)
	if err != nil {
		return mapItemError(err)
	}
	if err := s.items.Delete(ctx, id); err != nil {
		return mapItemError(err)
	}
	if err := s.retract(ctx, id); err != nil {
		return err
	}
	s.notifier.FoodItemChanged(ActionDeleted, item)
	return nil
}

// DashboardStats 儀表板統計
func (s *Service) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list food items: %w", err)
	}

	now := s.clock.Now()
	stats := &DashboardStats{
		TotalItems:        len(items),
		CategoryBreakdown: map[string]int{},
	}
	for _, item := range items {
		if lifecycle.IsDashboardExpiringSoon(item.ExpirationDate, now) {
			stats.ExpiringSoon++
		}
		if lifecycle.IsExpired(item.ExpirationDate, now) {
			stats.Expired++
		}
		stats.CategoryBreakdown[string(item.Category)]++
	}
	return stats, nil
}

// Inventory 全部食材，供食譜推薦使用
func (s *Service) Inventory(ctx context.Context) ([]model.FoodItem, error) {
	return s.items.List(ctx)
}

// Now 服務使用的目前時間
func (s *Service) Now() time.Time {
	return s.clock.Now()
}

// schedule 產生並寫入提醒事件與通知
func (s *Service) schedule(ctx context.Context, item *model.FoodItem, now time.Time) error {
	plan := lifecycle.Schedule(item.ID, item.Name, item.ExpirationDate, now, s.newID)
	if plan.Skipped {
		common.LogWarn("Invalid expiration date, skipping calendar events", zap.String("id", item.ID))
		return nil
	}

	if len(plan.Events) > 0 {
		if err := s.events.InsertMany(ctx, plan.Events); err != nil {
			return fmt.Errorf("failed to save calendar events: %w", err)
		}
	}
	for i := range plan.Notifications {
		n := plan.Notifications[i]
		if err := s.notifications.Insert(ctx, &n); err != nil {
			return fmt.Errorf("failed to save notification: %w", err)
		}
		s.notifier.NotificationCreated(n)
	}

	common.LogDebug("Scheduled reminders",
		zap.String("id", item.ID),
		zap.Int("events", len(plan.Events)),
		zap.Int("notifications", len(plan.Notifications)),
	)
	return nil
}

// reschedule 刪除舊的事件與通知後重新排程
func (s *Service) reschedule(ctx context.Context, item *model.FoodItem) error {
	if err := s.retract(ctx, item.ID); err != nil {
		return err
	}
	return s.schedule(ctx, item, s.clock.Now())
}

func (s *Service) retract(ctx context.Context, itemID string) error {
	if _, err := s.events.DeleteByItem(ctx, itemID); err != nil {
		return fmt.Errorf("failed to delete calendar events: %w", err)
	}
	if _, err := s.notifications.DeleteByItem(ctx, itemID); err != nil {
		return fmt.Errorf("failed to delete notifications: %w", err)
	}
	return nil
}

// applyPatch 套用更新欄位並檢查格式
func applyPatch(item *model.FoodItem, p model.FoodPatch) error {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return common.NewValidationError("name must not be empty")
		}
		item.Name = name
	}
	if p.Category != nil {
		if !p.Category.Valid() {
			return common.NewValidationError(fmt.Sprintf("invalid category %q", *p.Category))
		}
		item.Category = *p.Category
	}
	if p.Quantity != nil {
		if *p.Quantity < 0 {
			return common.NewValidationError("quantity must not be negative")
		}
		item.Quantity = *p.Quantity
	}
	if p.Unit != nil {
		item.Unit = common.OrDefault(strings.TrimSpace(*p.Unit), model.DefaultUnit)
	}
	if p.StorageCondition != nil {
		if !p.StorageCondition.Valid() {
			return common.NewValidationError(fmt.Sprintf("invalid storage_condition %q", *p.StorageCondition))
		}
		item.StorageCondition = *p.StorageCondition
	}
	if p.CurrentState != nil {
		item.CurrentState = common.OrDefault(strings.TrimSpace(*p.CurrentState), model.DefaultState)
	}
	if p.Notes != nil {
		item.Notes = p.Notes
	}
	if p.Emoji != nil {
		item.Emoji = p.Emoji
	}
	if p.StorageTips != nil {
		item.StorageTips = p.StorageTips
	}

	if p.PurchaseDate != nil {
		purchase, err := model.ParseTimestamp(*p.PurchaseDate)
		if err != nil {
			return err
		}
		item.PurchaseDate = purchase
		if p.ExpirationDate == nil {
			item.ExpirationDate = lifecycle.CalculateExpiration(purchase, item.ShelfLifeDays)
		}
	}
	if p.ExpirationDate != nil {
		expiration, err := model.ParseTimestamp(*p.ExpirationDate)
		if err != nil {
			return err
		}
		item.ExpirationDate = expiration
		if days := lifecycle.DaysLeft(expiration, item.PurchaseDate); days > 0 {
			item.ShelfLifeDays = days
		}
	}
	return nil
}

func mapItemError(err error) error {
	if errors.Is(err, common.ErrRecordNotFound) {
		return common.ErrFoodItemNotFound
	}
	return err
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func stringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
