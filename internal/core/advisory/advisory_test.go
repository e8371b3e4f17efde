package advisory

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"food-manager/internal/core/ai/cache"
	"food-manager/internal/core/ai/provider"
	"food-manager/internal/core/ai/queue"
	"food-manager/internal/core/ai/service"
	"food-manager/internal/infrastructure/config"
	"food-manager/internal/core/model"
	"food-manager/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOracle struct {
	content string
	err     error
	reqs    []*service.Request
}

func (f *fakeOracle) ProcessRequest(ctx context.Context, req *service.Request) (*service.Response, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return nil, f.err
	}
	return &service.Response{Content: f.content}, nil
}

func assertWellFormed(t *testing.T, a model.Advice) {
	t.Helper()
	assert.True(t, a.Category.Valid(), "category %q", a.Category)
	assert.Greater(t, a.ShelfLifeDays, 0)
	assert.True(t, a.StorageRecommendation.Valid(), "storage %q", a.StorageRecommendation)
	assert.NotEmpty(t, a.Emoji)
}

func TestNormalizeValidContent(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"plain", `{"category":"dairy","shelf_life_days":10,"storage_recommendation":"refrigerated","emoji":"🥛","tips":"Keep cold"}`},
		{"fenced", "```json\n{\"category\":\"dairy\",\"shelf_life_days\":10,\"storage_recommendation\":\"refrigerated\",\"emoji\":\"🥛\",\"tips\":\"Keep cold\"}\n```"},
		{"prose wrapped", `Sure! Here you go: {"category":"Dairy","shelf_life_days":"10","storage_recommendation":"refrigerated","emoji":"🥛","tips":"Keep cold"} Enjoy.`},
		{"unquoted keys", `{category:"dairy", shelf_life_days: 10, storage_recommendation:"refrigerated", emoji:"🥛", tips:"Keep cold"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Normalize(tt.raw, nil, "", model.StoragePantry)
			assert.False(t, a.Fallback)
			assert.Equal(t, model.CategoryDairy, a.Category)
			assert.Equal(t, 10, a.ShelfLifeDays)
			assert.Equal(t, model.StorageRefrigerated, a.StorageRecommendation)
			assert.Equal(t, "🥛", a.Emoji)
			assert.Equal(t, "Keep cold", a.StorageTips)
		})
	}
}

func TestNormalizeFallback(t *testing.T) {
	inputs := []string{
		"",
		"I cannot help with that.",
		"{",
		"[1,2,3]",
		"null",
		`{"category":"dairy"}`,
		`{"shelf_life_days":5,"storage_recommendation":"frozen"}`,
		strings.Repeat("}{", 50),
	}
	for _, raw := range inputs {
		a := Normalize(raw, nil, model.CategoryMeat, model.StorageFrozen)
		assertWellFormed(t, a)
		assert.True(t, a.Fallback, raw)
		assert.Equal(t, model.CategoryMeat, a.Category)
		assert.Equal(t, model.DefaultShelfLifeDays, a.ShelfLifeDays)
		assert.Equal(t, model.StorageFrozen, a.StorageRecommendation)
		assert.Equal(t, model.FallbackEmoji, a.Emoji)
		assert.Equal(t, model.FallbackStorageTip, a.StorageTips)
	}
}

func TestNormalizeFallbackWithoutHints(t *testing.T) {
	a := Normalize("", errors.New("timeout"), "", "")
	assert.Equal(t, model.FallbackAdvice(model.CategoryOther, model.StoragePantry), a)
}

func TestNormalizeRepairsInvalidFields(t *testing.T) {
	raw := `{"category":"fish","shelf_life_days":-3,"storage_recommendation":"cellar","emoji":"","tips":""}`
	a := Normalize(raw, nil, model.CategoryProduce, model.StorageRefrigerated)
	assertWellFormed(t, a)
	assert.Equal(t, model.CategoryProduce, a.Category)
	assert.Equal(t, model.DefaultShelfLifeDays, a.ShelfLifeDays)
	assert.Equal(t, model.StorageRefrigerated, a.StorageRecommendation)
	assert.Equal(t, model.FallbackEmoji, a.Emoji)
	assert.Equal(t, model.FallbackStorageTip, a.StorageTips)
}

func TestNormalizeFractionalShelfLife(t *testing.T) {
	raw := `{"category":"meat","shelf_life_days":2.7,"storage_recommendation":"refrigerated"}`
	a := Normalize(raw, nil, "", model.StoragePantry)
	assert.Equal(t, 2, a.ShelfLifeDays)
	assert.Equal(t, model.FallbackEmoji, a.Emoji)
}

func TestAdviseUsesOracle(t *testing.T) {
	oracle := &fakeOracle{content: `{"category":"produce","shelf_life_days":5,"storage_recommendation":"refrigerated","emoji":"🥬","tips":"Dry before storing"}`}
	c := NewClient(oracle, DefaultOptions())

	a := c.Advise(context.Background(), "Lettuce", "", model.StorageRefrigerated)
	assert.Equal(t, 5, a.ShelfLifeDays)

	require.Len(t, oracle.reqs, 1)
	req := oracle.reqs[0]
	assert.Equal(t, "advisory", req.Purpose)
	assert.Contains(t, req.Prompt, "Food: Lettuce")
	assert.Contains(t, req.Prompt, "Intended Storage: refrigerated")
	assert.NotContains(t, req.Prompt, "Suggested Category")
	assert.False(t, req.NoCache)
}

// sequenceProvider 依序回傳內容，最後一筆重複使用
type sequenceProvider struct {
	contents []string
	calls    int
}

func (p *sequenceProvider) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	i := p.calls
	if i >= len(p.contents) {
		i = len(p.contents) - 1
	}
	p.calls++
	return &provider.Response{Content: p.contents[i]}, nil
}

func (p *sequenceProvider) GetModel() string          { return "sequence" }
func (p *sequenceProvider) GetTimeout() time.Duration { return time.Second }
func (p *sequenceProvider) Close() error              { return nil }

func TestAdviseDoesNotCacheUnparseableAdvice(t *testing.T) {
	p := &sequenceProvider{contents: []string{
		"Milk usually lasts about a week in the fridge.",
		`{"category":"dairy","shelf_life_days":10,"storage_recommendation":"refrigerated"}`,
	}}
	cfg := &config.Config{
		AI:    config.AIConfig{EnableCache: true},
		Queue: config.QueueConfig{Workers: 1, MaxSize: 5},
	}
	store := cache.NewManager(&config.CacheConfig{Enabled: true, MaxSize: 10, TTL: time.Hour})
	c := NewClient(service.NewService(cfg, p, store, queue.NewManager(&cfg.Queue)), DefaultOptions())

	first := c.Advise(context.Background(), "Milk", "", model.StorageRefrigerated)
	assert.True(t, first.Fallback)

	second := c.Advise(context.Background(), "Milk", "", model.StorageRefrigerated)
	assert.False(t, second.Fallback)
	assert.Equal(t, 10, second.ShelfLifeDays)

	third := c.Advise(context.Background(), "Milk", "", model.StorageRefrigerated)
	assert.Equal(t, 10, third.ShelfLifeDays)
	assert.Equal(t, 2, p.calls)
}

func TestValidAdvice(t *testing.T) {
	assert.True(t, ValidAdvice("```json\n{\"category\":\"dairy\",\"shelf_life_days\":5,\"storage_recommendation\":\"refrigerated\"}\n```"))
	assert.False(t, ValidAdvice(`{"category":"dairy"}`))
	assert.False(t, ValidAdvice("no idea"))
}

func TestAdviseFallsBackOnOracleError(t *testing.T) {
	c := NewClient(&fakeOracle{err: common.ErrQueueFull}, DefaultOptions())
	a := c.Advise(context.Background(), "Steak", model.CategoryMeat, model.StorageFrozen)
	assert.True(t, a.Fallback)
	assert.Equal(t, model.CategoryMeat, a.Category)
	assert.Equal(t, model.StorageFrozen, a.StorageRecommendation)

	nilClient := NewClient(nil, DefaultOptions())
	assert.True(t, nilClient.Advise(context.Background(), "Steak", "", "").Fallback)
}

func TestParseRecipesReconcilesInventoryIDs(t *testing.T) {
	available := []common.RankedIngredient{
		{InventoryItemID: "chicken-1", Name: "Chicken Breast", Quantity: 2, Unit: "lbs", DaysLeft: 1},
	}
	content := "```json\n" + `{"recipes":[{"name":"Garlic Chicken","servings":2,"prep_time":"10 minutes","cook_time":20,
"description":"Quick dinner","ingredients_used":["Chicken Breast"],
"ingredients":[{"name":"Chicken Breast","quantity_required":200,"unit":"g","inventory_item_id":"chicken-1"},
{"name":"Garlic","quantity_required":2,"unit":"cloves","inventory_item_id":"made-up"},
{"name":"Olive Oil","quantity_required":1,"unit":"tbsp","inventory_item_id":null}],
"instructions":["Season chicken.","Cook chicken."]},{"name":"","ingredients":[]}]}` + "\n```"

	recipes, err := ParseRecipes(content, available)
	require.NoError(t, err)
	require.Len(t, recipes, 1)

	r := recipes[0]
	assert.Equal(t, "Garlic Chicken", r.Name)
	assert.Equal(t, 10, r.PrepTime)
	assert.Equal(t, 30, r.TotalTime)
	require.Len(t, r.Ingredients, 3)
	require.NotNil(t, r.Ingredients[0].InventoryItemID)
	assert.Equal(t, "chicken-1", *r.Ingredients[0].InventoryItemID)
	assert.Nil(t, r.Ingredients[1].InventoryItemID)
	assert.Nil(t, r.Ingredients[2].InventoryItemID)
	assert.Equal(t, []string{"Season chicken.", "Cook chicken."}, r.Instructions)
}

func TestParseRecipesRejectsGarbage(t *testing.T) {
	_, err := ParseRecipes("no recipes today", nil)
	assert.Error(t, err)

	_, err = ParseRecipes(`{"recipes":[]}`, nil)
	assert.Error(t, err)
}

func TestSuggestBypassesCache(t *testing.T) {
	oracle := &fakeOracle{content: `{"recipes":[{"name":"Omelette","ingredients":[],"instructions":"Beat eggs\nCook"}]}`}
	c := NewClient(oracle, DefaultOptions())

	items := []common.RankedIngredient{{InventoryItemID: "e1", Name: "Eggs", Quantity: 6, Unit: "each", DaysLeft: 2}}
	recipes, err := c.Suggest(context.Background(), items, common.MealPreferences{Type: "breakfast"})
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, []string{"Beat eggs", "Cook"}, recipes[0].Instructions)

	req := oracle.reqs[0]
	assert.True(t, req.NoCache)
	assert.Contains(t, req.Prompt, "- [id: e1] Eggs (6 each) - expires in 2 days")
	assert.Contains(t, req.Prompt, "Meal Type: breakfast")
	assert.Contains(t, req.Prompt, "Max Cooking Time: 60 minutes")
	assert.Contains(t, req.Prompt, "Servings: 2 people")
}

func TestParseUpdate(t *testing.T) {
	p, err := ParseUpdate("```json\n{\"quantity\": 0.5, \"storage_condition\": \"Frozen\", \"expiration_date\": \"2026-03-15\", \"color\": \"blue\"}\n```")
	require.NoError(t, err)

	require.NotNil(t, p.Patch.Quantity)
	assert.Equal(t, 0.5, *p.Patch.Quantity)
	require.NotNil(t, p.Patch.StorageCondition)
	assert.Equal(t, model.StorageFrozen, *p.Patch.StorageCondition)
	require.NotNil(t, p.Patch.ExpirationDate)
	assert.Equal(t, "2026-03-15", *p.Patch.ExpirationDate)
	assert.True(t, p.Patch.TouchesExpiration())

	assert.Len(t, p.Fields, 3)
	assert.NotContains(t, p.Fields, "color")
}

func TestParseUpdateRejectsEmpty(t *testing.T) {
	_, err := ParseUpdate(`{"color":"blue"}`)
	assert.Error(t, err)
	_, err = ParseUpdate("sorry")
	assert.Error(t, err)
}

func TestInterpretPrompt(t *testing.T) {
	oracle := &fakeOracle{content: `{"name":"leftover chicken"}`}
	c := NewClient(oracle, DefaultOptions())

	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	item := &model.FoodItem{
		Name:             "Chicken",
		Category:         model.CategoryMeat,
		Quantity:         2,
		Unit:             "lbs",
		StorageCondition: model.StorageRefrigerated,
		ExpirationDate:   time.Date(2026, 3, 12, 8, 0, 0, 0, time.UTC),
	}
	p, err := c.Interpret(context.Background(), item, "Change name to leftover chicken", now)
	require.NoError(t, err)
	require.NotNil(t, p.Patch.Name)
	assert.Equal(t, "leftover chicken", *p.Patch.Name)

	prompt := oracle.reqs[0].Prompt
	assert.Contains(t, prompt, "Current Date: 2026-03-10")
	assert.Contains(t, prompt, "- Expiration Date: 2026-03-12")
	assert.Contains(t, prompt, `{"quantity": 1}`)
	assert.Contains(t, prompt, `"This expires tomorrow" -> {"expiration_date": "2026-03-11"}`)
	assert.Contains(t, prompt, `{"expiration_date": "2026-03-14"}`)
	assert.Contains(t, prompt, "- Notes: None")
	assert.Contains(t, prompt, "Available categories: produce, dairy, meat, packaged, frozen, other")
	assert.Contains(t, prompt, "Available storage conditions: pantry, refrigerated, frozen, room_temp")
	assert.Contains(t, prompt, "Available units: each, lbs, oz, kg, g, gallon, liter")
}

func TestInterpretPropagatesOracleError(t *testing.T) {
	c := NewClient(&fakeOracle{err: errors.New("down")}, DefaultOptions())
	_, err := c.Interpret(context.Background(), &model.FoodItem{Name: "x"}, "eat it", time.Now())
	assert.Error(t, err)
}
