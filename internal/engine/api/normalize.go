package api

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/rendis/restfinder/internal/model"
)

// fieldNames lists, per concept, the accepted keys in preference order.
// The search-and-save path historically answered with the sheet column
// names, so both shapes can show up in either endpoint.
var fieldNames = struct {
	name, address, rating, reviewCount, phone, mapURL []string
}{
	name:        []string{"name", "İsim"},
	address:     []string{"address", "Adres"},
	rating:      []string{"rating", "Puan"},
	reviewCount: []string{"reviewCount", "Yorum Sayısı"},
	phone:       []string{"phone", "Telefon"},
	mapURL:      []string{"mapUrl", "url", "Google Maps URL"},
}

// NormalizeItem maps one raw result object onto the canonical ResultItem.
func NormalizeItem(raw map[string]json.RawMessage) model.ResultItem {
	item := model.ResultItem{
		Name:    safeString(pick(raw, fieldNames.name...)),
		Address: safeString(pick(raw, fieldNames.address...)),
		Phone:   safeString(pick(raw, fieldNames.phone...)),
		MapURL:  safeString(pick(raw, fieldNames.mapURL...)),
	}
	if f, ok := safeFloat(pick(raw, fieldNames.rating...)); ok {
		item.Rating = &f
	}
	if f, ok := safeFloat(pick(raw, fieldNames.reviewCount...)); ok && f >= 0 {
		n := int(math.Round(f))
		item.ReviewCount = &n
	}
	return item
}

// NormalizeItems normalizes a whole page, keeping service order.
func NormalizeItems(raw []map[string]json.RawMessage) []model.ResultItem {
	items := make([]model.ResultItem, 0, len(raw))
	for _, r := range raw {
		items = append(items, NormalizeItem(r))
	}
	return items
}

// pick returns the decoded value of the first key that is present, not
// null and not a blank string.
func pick(raw map[string]json.RawMessage, keys ...string) any {
	for _, k := range keys {
		msg, ok := raw[k]
		if !ok {
			continue
		}
		trimmed := bytes.TrimSpace(msg)
		if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
			continue
		}
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			continue
		}
		// A blank canonical value must not hide a populated alternate.
		if str, ok := v.(string); ok && strings.TrimSpace(str) == "" {
			continue
		}
		return v
	}
	return nil
}

// safeString extracts a string from any. Handles string and json.Number.
func safeString(data any) string {
	switch v := data.(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	}
	return ""
}

// safeFloat extracts a number from any. Handles json.Number and numeric strings.
func safeFloat(data any) (float64, bool) {
	switch v := data.(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}
