package handler

import (
	"fmt"
	"raid-bot/internal/recruit"
	"sort"
	"strconv"
	"strings"
)

// customID共通キー
const customIDKey = "customID"

type controlAction string

// ボタンの種類。募集IDは含めない
const (
	controlApply  controlAction = "apply"
	controlCancel controlAction = "cancel"
)

// controlID はカテゴリ単位で固定のボタン識別子
func controlID(category recruit.Category, act controlAction) string {
	return string(category) + "/" + string(act)
}

func controlCustomID(category recruit.Category, act controlAction) string {
	customID, _ := encodeCustomID(map[string]string{
		customIDKey: controlID(category, act),
	})
	return customID
}

type customIDInteractionCommand struct {
	customID string
}

func (command *customIDInteractionCommand) InteractionID() string {
	return command.customID
}

func (command *customIDInteractionCommand) MatchInteractionID(interactionID string) bool {
	items, err := decodeCustomID(interactionID)
	if err != nil {
		return false
	}
	return items[customIDKey] == command.customID
}

func encodeCustomID(items map[string]string) (string, error) {
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sb := strings.Builder{}
	for _, key := range keys {
		value := items[key]
		fmt.Fprintf(&sb, "%d:%s%d:%s", len(key), key, len(value), value)
	}

	result := sb.String()
	if len(result) > 100 {
		return "", fmt.Errorf("custom ID is size over: %s", result)
	}
	return result, nil
}

// readLengthPrefixed は"長さ:文字列"を1つ読み、読み終えた位置を返す
func readLengthPrefixed(s string, i int, what string) (string, int, error) {
	colon := strings.Index(s[i:], ":")
	if colon == -1 {
		return "", 0, fmt.Errorf("invalid format: missing colon for %s length", what)
	}
	n, err := strconv.Atoi(s[i : i+colon])
	if err != nil || n < 0 {
		return "", 0, fmt.Errorf("invalid %s length: %q", what, s[i:i+colon])
	}
	i += colon + 1

	if i+n > len(s) {
		return "", 0, fmt.Errorf("invalid format: %s length exceeds string", what)
	}
	return s[i : i+n], i + n, nil
}

func decodeCustomID(encodedStr string) (map[string]string, error) {
	data := make(map[string]string)

	for i := 0; i < len(encodedStr); {
		key, next, err := readLengthPrefixed(encodedStr, i, "key")
		if err != nil {
			return nil, err
		}
		value, next, err := readLengthPrefixed(encodedStr, next, "value")
		if err != nil {
			return nil, err
		}
		data[key] = value
		i = next
	}

	return data, nil
}
