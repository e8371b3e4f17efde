package advisory

import (
	"fmt"
	"strings"

	"food-manager/internal/core/model"
	"food-manager/internal/pkg/common"
)

// UpdateProposal 模型根據指令建議的更新
type UpdateProposal struct {
	Patch model.FoodPatch
	// Fields 可辨識的欄位原始值，直接回傳給前端
	Fields map[string]interface{}
}

// ParseUpdate 解析模型回傳的更新欄位，忽略無法辨識的欄位
func ParseUpdate(content string) (*UpdateProposal, error) {
	raw := map[string]interface{}{}
	if err := common.ParseModelJSON(content, &raw); err != nil {
		return nil, err
	}

	p := &UpdateProposal{Fields: map[string]interface{}{}}
	for key, value := range raw {
		switch key {
		case "name", "unit", "notes", "emoji", "expiration_date", "purchase_date", "current_state", "storage_tips":
			s, ok := value.(string)
			if !ok {
				continue
			}
			s = strings.TrimSpace(s)
			setString(&p.Patch, key, s)
			p.Fields[key] = s
		case "category":
			s, ok := value.(string)
			if !ok {
				continue
			}
			c := model.Category(strings.ToLower(strings.TrimSpace(s)))
			p.Patch.Category = &c
			p.Fields[key] = string(c)
		case "storage_condition":
			s, ok := value.(string)
			if !ok {
				continue
			}
			sc := model.StorageCondition(strings.ToLower(strings.TrimSpace(s)))
			p.Patch.StorageCondition = &sc
			p.Fields[key] = string(sc)
		case "quantity":
			if value == nil {
				continue
			}
			q := toFloat(value)
			p.Patch.Quantity = &q
			p.Fields[key] = q
		}
	}

	if p.Patch.IsEmpty() {
		return nil, fmt.Errorf("no updatable fields in AI response")
	}
	return p, nil
}

func setString(p *model.FoodPatch, key, value string) {
	v := value
	switch key {
	case "name":
		p.Name = &v
	case "unit":
		p.Unit = &v
	case "notes":
		p.Notes = &v
	case "emoji":
		p.Emoji = &v
	case "expiration_date":
		p.ExpirationDate = &v
	case "purchase_date":
		p.PurchaseDate = &v
	case "current_state":
		p.CurrentState = &v
	case "storage_tips":
		p.StorageTips = &v
	}
}
