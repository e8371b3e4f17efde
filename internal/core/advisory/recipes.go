package advisory

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"food-manager/internal/pkg/common"
)

// ---------------- 寬鬆版中繼結構：數字欄位可能是字串 ----------------

type looseRecipeSet struct {
	Recipes []looseRecipe `json:"recipes"`
}

type looseRecipe struct {
	Name            string            `json:"name"`
	Servings        interface{}       `json:"servings"`
	PrepTime        interface{}       `json:"prep_time"`
	CookTime        interface{}       `json:"cook_time"`
	TotalTime       interface{}       `json:"total_time"`
	Description     string            `json:"description"`
	IngredientsUsed []string          `json:"ingredients_used"`
	Ingredients     []looseIngredient `json:"ingredients"`
	Instructions    interface{}       `json:"instructions"`
}

type looseIngredient struct {
	Name             string      `json:"name"`
	QuantityRequired interface{} `json:"quantity_required"`
	Unit             string      `json:"unit"`
	InventoryItemID  interface{} `json:"inventory_item_id"`
}

// ---------------------------------------------------------------

// ParseRecipes 解析模型回傳的食譜，並將不在可用食材中的 inventory_item_id 清除
func ParseRecipes(content string, available []common.RankedIngredient) ([]common.Recipe, error) {
	var set looseRecipeSet
	if err := common.ParseModelJSON(content, &set); err != nil {
		return nil, fmt.Errorf("invalid recipe JSON: %w", err)
	}

	known := make(map[string]struct{}, len(available))
	for _, item := range available {
		known[item.InventoryItemID] = struct{}{}
	}

	recipes := make([]common.Recipe, 0, len(set.Recipes))
	for _, lr := range set.Recipes {
		name := strings.TrimSpace(lr.Name)
		if name == "" {
			continue
		}
		r := common.Recipe{
			Name:            name,
			Servings:        toInt(lr.Servings),
			PrepTime:        toInt(lr.PrepTime),
			CookTime:        toInt(lr.CookTime),
			TotalTime:       toInt(lr.TotalTime),
			Description:     strings.TrimSpace(lr.Description),
			IngredientsUsed: nonEmpty(lr.IngredientsUsed),
			Ingredients:     make([]common.RecipeIngredient, 0, len(lr.Ingredients)),
			Instructions:    toSteps(lr.Instructions),
		}
		if r.TotalTime == 0 {
			r.TotalTime = r.PrepTime + r.CookTime
		}

		for _, li := range lr.Ingredients {
			if strings.TrimSpace(li.Name) == "" {
				continue
			}
			ing := common.RecipeIngredient{
				Name:             strings.TrimSpace(li.Name),
				QuantityRequired: toFloat(li.QuantityRequired),
				Unit:             strings.TrimSpace(li.Unit),
			}
			if id, ok := li.InventoryItemID.(string); ok {
				id = strings.TrimSpace(id)
				if _, exists := known[id]; exists {
					ing.InventoryItemID = &id
				}
			}
			r.Ingredients = append(r.Ingredients, ing)
		}
		recipes = append(recipes, r)
	}

	if len(recipes) == 0 {
		return nil, fmt.Errorf("no recipes in AI response")
	}
	return recipes, nil
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case json.Number:
		f, _ := n.Float64()
		return f
	case float64:
		return n
	case string:
		// "20 minutes" 取開頭的數字
		fields := strings.Fields(n)
		if len(fields) == 0 {
			return 0
		}
		f, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func toInt(v interface{}) int {
	f := toFloat(v)
	if f < 0 {
		return 0
	}
	return int(f + 0.5)
}

func toSteps(v interface{}) []string {
	switch s := v.(type) {
	case []interface{}:
		steps := make([]string, 0, len(s))
		for _, step := range s {
			if str, ok := step.(string); ok && strings.TrimSpace(str) != "" {
				steps = append(steps, strings.TrimSpace(str))
			}
		}
		return steps
	case string:
		return nonEmpty(strings.Split(s, "\n"))
	default:
		return []string{}
	}
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
