package app

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"trip_hotel/internal/domain"
)

/********** alias registry (single source of truth) **********/

var hotelAliases = map[string][]string{
	"name_cn":     {"name_cn", "nameCn", "name", "hotel_name", "name.zh"},
	"name_en":     {"name_en", "nameEn", "english_name", "name.en"},
	"city":        {"city", "address.city", "location.city"},
	"address":     {"address", "address.line", "full_address", "location.address"},
	"description": {"description", "intro", "summary"},
	"status":      {"status", "state"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns the trimmed string at path or "".
func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// firstNonEmptyAlias: first non-empty string for a named alias set.
func firstNonEmptyAlias(m map[string]any, key string) *string {
	for _, p := range hotelAliases[key] {
		if s := lookupStr(m, p); s != "" {
			return &s
		}
	}
	return nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// getFloatFlexible: number from several paths (float64/int/string like "688,00").
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

// firstInt64Flexible: int64 from several paths (float64/int/string).
func firstInt64Flexible(m map[string]any, paths ...string) *int64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			x := int64(v)
			return &x
		case int:
			x := int64(v)
			return &x
		case int64:
			x := v
			return &x
		case string:
			s := strings.TrimSpace(v)
			if s == "" {
				continue
			}
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return &n
			}
		}
	}
	return nil
}

// firstSliceStrings accepts []any with strings or {url/src/name} objects, or a
// JSON-encoded array string as stored by the merchant console.
func firstSliceStrings(m map[string]any, paths ...string) []string {
	for _, k := range paths {
		raw, ok := lookupAny(m, k).([]any)
		if !ok {
			if s, isStr := lookupAny(m, k).(string); isStr && strings.HasPrefix(strings.TrimSpace(s), "[") {
				_ = json.Unmarshal([]byte(s), &raw)
			}
		}
		out := make([]string, 0, len(raw))
		for _, it := range raw {
			switch t := it.(type) {
			case string:
				if t != "" {
					out = append(out, t)
				}
			case map[string]any:
				for _, f := range []string{"url", "src", "name"} {
					if u, ok := t[f].(string); ok && u != "" {
						out = append(out, u)
						break
					}
				}
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

/********** hotel mapper **********/

func mapHotel(p map[string]any) domain.Hotel {
	id := int64(0)
	if v := firstInt64Flexible(p, "id", "hotel_id", "hotelId"); v != nil {
		id = *v
	}

	raw, err := json.Marshal(p)
	if err != nil {
		log.Error().Err(err).
			Str("context", "mapHotel").
			Msg("failed to marshal hotel payload to JSON")
	}

	stars := 0
	if f := getFloatFlexible(p, "star", "stars", "rating.stars"); f != nil {
		stars = int(*f)
	}

	status := strings.ToLower(deref(firstNonEmptyAlias(p, "status")))
	if status == "" {
		status = "pending"
	}

	return domain.Hotel{
		ID:          id,
		NameCN:      deref(firstNonEmptyAlias(p, "name_cn")),
		NameEN:      firstNonEmptyAlias(p, "name_en"),
		City:        deref(firstNonEmptyAlias(p, "city")),
		Address:     firstNonEmptyAlias(p, "address"),
		Stars:       stars,
		Tags:        firstSliceStrings(p, "tags", "facilities"),
		Images:      firstSliceStrings(p, "images", "photos"),
		Description: firstNonEmptyAlias(p, "description"),
		LowestPrice: getFloatFlexible(p, "lowestPrice", "lowest_price", "price"),
		Status:      status,
		MerchantID:  firstInt64Flexible(p, "merchant_id", "merchantId"),
		RawJSON:     raw,
	}
}
