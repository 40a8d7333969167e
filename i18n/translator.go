package i18n

import (
	"sort"
	"strings"
	"sync/atomic"
)

// Translator retrieves localized messages for report and issue codes.
// data provides optional metadata to embed in the message (for example,
// "constraint" or "element").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg := t.lookup(code)
	if len(data) == 0 {
		return msg
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+data[k])
	}
	return msg + " (" + strings.Join(parts, ", ") + ")"
}

func (t dictTranslator) lookup(code string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "unknown_element":
			return "要素が存在しません"
		case "no_schema":
			return "スキーマが見つかりません"
		case "unsupported_constraint":
			return "変換先で表現できない制約を削除しました"
		case "relation_unresolved":
			return "参照先スキーマを解決できません"
		case "duplicate_element":
			return "要素名が重複しています"
		case "name_collision":
			return "変換先で要素名が衝突します"
		case "invalid_type":
			return "型が不正です"
		case "required":
			return "必須プロパティが不足しています"
		case "too_small":
			return "小さすぎます"
		case "too_big":
			return "大きすぎます"
		case "too_short":
			return "短すぎます"
		case "too_long":
			return "長すぎます"
		case "pattern":
			return "パターンに一致しません"
		case "invalid_format":
			return "形式が不正です"
		case "uniqueness":
			return "値が重複しています"
		case "invalid_enum":
			return "許可されていない値です"
		case "predicate":
			return "検証関数が失敗しました"
		}
	default: // "en"
		switch code {
		case "unknown_element":
			return "unknown element"
		case "no_schema":
			return "no schema for subject"
		case "unsupported_constraint":
			return "constraint not representable in target, dropped"
		case "relation_unresolved":
			return "referenced schema not found"
		case "duplicate_element":
			return "duplicate element name"
		case "name_collision":
			return "element name collides in target, dropped"
		case "invalid_type":
			return "invalid type"
		case "required":
			return "required property missing"
		case "too_small":
			return "too small"
		case "too_big":
			return "too big"
		case "too_short":
			return "too short"
		case "too_long":
			return "too long"
		case "pattern":
			return "does not match pattern"
		case "invalid_format":
			return "invalid format"
		case "uniqueness":
			return "duplicate value"
		case "invalid_enum":
			return "value not allowed"
		case "predicate":
			return "custom check failed"
		}
	}
	return code
}

var currentTranslator atomic.Pointer[Translator]

func init() { SetTranslator(nil) }

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	SetTranslator(dictTranslator{lang: lang})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version). nil restores the English dictionary.
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	currentTranslator.Store(&tr)
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	return (*currentTranslator.Load()).Message(code, data)
}
