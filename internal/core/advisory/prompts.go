package advisory

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"food-manager/internal/core/model"
	"food-manager/internal/pkg/common"
)

const (
	advisorySystemPrompt = "You are a food safety and storage expert. Provide accurate, concise information in JSON format only."
	recipeSystemPrompt   = "You are a creative chef that suggests recipes based on available ingredients. Always respond with valid JSON only."
	updateSystemPrompt   = "You are a helpful assistant that interprets food-related instructions and returns JSON updates. Always respond with valid JSON only."
)

func buildAdvisoryPrompt(name string, hint model.Category, storage model.StorageCondition) string {
	categoryLine := ""
	if hint != "" {
		categoryLine = fmt.Sprintf("Suggested Category: %s\n", hint)
	}
	return fmt.Sprintf(`Analyze this food item based on its intended storage condition and provide structured information:
Food: %s
Intended Storage: %s
%s
Return a JSON object with:
{
    "category": "produce|dairy|meat|packaged|frozen|other",
    "shelf_life_days": <number of days, specifically for the given 'Intended Storage'>,
    "storage_recommendation": "pantry|refrigerated|frozen|room_temp",
    "emoji": "<single most appropriate emoji for this food>",
    "tips": "brief storage tip"
}

Example: If Food is "Chicken Breast" and Intended Storage is "frozen", shelf_life_days should be 90-365. If Intended Storage is "refrigerated", it should be 1-2.

Be concise and accurate. The 'shelf_life_days' MUST match the 'Intended Storage' provided.`, name, storage, categoryLine)
}

func buildRecipePrompt(items []common.RankedIngredient, prefs common.MealPreferences) string {
	return fmt.Sprintf(`You are a creative chef assistant. Based on the available ingredients, suggest 3 delicious recipes.

Available Ingredients (prioritized by expiration date):
%s

User Preferences:
- Meal Type: %s
- Style/Cuisine: %s
- Max Cooking Time: %d minutes
- Servings: %d people
- Additional Preferences: %s

Requirements:
1. Prioritize using ingredients that expire soonest from the "Available Ingredients" list.
2. Each recipe should use at least 2-3 ingredients from the available list.
3. Recipes must match the user's preferences and not exceed the "Max Cooking Time".
4. Provide a full list of all ingredients required (both from inventory and new ones like oil, spices).
5. Provide step-by-step cooking instructions.

Return EXACTLY 3 recipe suggestions in this JSON format:
{
  "recipes": [
    {
      "name": "Recipe Name",
      "servings": %d,
      "prep_time": <number in minutes>,
      "cook_time": <number in minutes>,
      "total_time": <prep_time + cook_time>,
      "description": "Brief 1-sentence description",
      "ingredients_used": ["name of ingredient1 from inventory", "name of ingredient2 from inventory"],
      "ingredients": [
        {
          "name": "Full ingredient name",
          "quantity_required": <numeric amount>,
          "unit": "e.g., g, ml, tbsp, each",
          "inventory_item_id": "<the id from the Available Ingredients list if this item is from the inventory, otherwise null>"
        }
      ],
      "instructions": ["Step 1 as a string.", "Step 2 as a string."]
    }
  ]
}

Important: Total time must not exceed %d minutes. Return ONLY valid JSON.`,
		common.FormatRankedIngredients(items),
		common.OrDefault(prefs.Type, "Any"),
		common.OrDefault(prefs.Style, "Any"),
		prefs.MaxTime,
		prefs.Servings,
		common.OrDefault(prefs.AdditionalPreferences, "None"),
		prefs.Servings,
		prefs.MaxTime,
	)
}

func buildUpdatePrompt(item *model.FoodItem, instruction string, now time.Time) string {
	day := func(t time.Time) string { return t.UTC().Format("2006-01-02") }
	today := day(now)

	base := item.ExpirationDate
	expiration := "unknown"
	if base.IsZero() {
		base = now
	} else {
		expiration = day(base)
	}

	return fmt.Sprintf(`You are helping update a food item based on a user's instruction.

Current Date: %s

Current food item data:
- Name: %s
- Category: %s
- Quantity: %s
- Unit: %s
- Storage Condition: %s
- Expiration Date: %s
- Notes: %s
- Emoji: %s

User instruction: "%s"

Based on this instruction, calculate and return ONLY the updated values that should change. Return a JSON object with the fields that need updating.
Important: For expiration_date, always return the new, absolute date in YYYY-MM-DD format. Calculate it based on the Current Date (%s).

Examples:
- "I only ate half of this" -> {"quantity": %s}
- "Move this to the freezer" -> {"storage_condition": "frozen"}
- "Change name to leftover chicken" -> {"name": "leftover chicken"}
- "This expires in 3 days" -> {"expiration_date": "%s"}
- "This expires tomorrow" -> {"expiration_date": "%s"}
- "This is rotten" or "It expired yesterday" -> {"expiration_date": "%s"}
- "Add 2 days to the expiration date" -> {"expiration_date": "%s"}

Available categories: %s
Available storage conditions: %s
Available units: %s

Return ONLY a JSON object with the fields to update. Do not include fields that don't need to change.`,
		today,
		item.Name,
		item.Category,
		strconv.FormatFloat(item.Quantity, 'f', -1, 64),
		item.Unit,
		item.StorageCondition,
		expiration,
		derefOr(item.Notes, "None"),
		derefOr(item.Emoji, "None"),
		instruction,
		today,
		strconv.FormatFloat(item.Quantity/2, 'f', -1, 64),
		day(now.AddDate(0, 0, 3)),
		day(now.AddDate(0, 0, 1)),
		day(now.AddDate(0, 0, -1)),
		day(base.AddDate(0, 0, 2)),
		joinValues(model.Categories),
		joinValues(model.StorageConditions),
		joinValues(model.RecommendedUnits),
	)
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

func derefOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}
