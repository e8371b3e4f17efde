package common

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// ParseJSON 解析 JSON 字符串到結構體
func ParseJSON(data string, v interface{}) error {
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}

	// 確保沒有多餘資料
	for {
		t, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if t != nil {
			return fmt.Errorf("unexpected extra JSON data")
		}
	}
}

var unquotedKeyPattern = regexp.MustCompile(`([{\[,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)

// QuoteJSONKeys 將未加雙引號的鍵補上雙引號
func QuoteJSONKeys(raw string) string {
	return unquotedKeyPattern.ReplaceAllString(raw, `$1"$2":`)
}

var fencePattern = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)\\s*```")

// ExtractJSONBlock 從模型輸出中取出 JSON 區塊
// 優先取 ``` 圍欄內的內容，否則取第一個 { 到最後一個 }
func ExtractJSONBlock(content string) string {
	content = strings.TrimSpace(content)
	if m := fencePattern.FindStringSubmatch(content); m != nil {
		content = strings.TrimSpace(m[1])
	}
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start != -1 && end != -1 && end > start {
		return content[start : end+1]
	}
	return content
}

// ParseModelJSON 解析模型輸出的 JSON，解析失敗時補上鍵的雙引號再試一次
func ParseModelJSON(content string, v interface{}) error {
	block := ExtractJSONBlock(content)
	if block == "" {
		return fmt.Errorf("empty JSON content")
	}
	err := ParseJSON(block, v)
	if err == nil {
		return nil
	}
	if repaired := QuoteJSONKeys(block); repaired != block {
		if retryErr := ParseJSON(repaired, v); retryErr == nil {
			return nil
		}
	}
	return err
}

// ToJSON 將結構體轉換為 JSON 字符串
func ToJSON(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
