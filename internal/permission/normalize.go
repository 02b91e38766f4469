package permission

import "encoding/json"

// NormalizeCapabilities turns the capability field of a sign-in response
// into a typed list. The gateway sometimes serializes the list twice,
// delivering a JSON string containing an encoded array instead of the
// array itself; this is the single place that disambiguation happens.
// Anything that cannot be normalized yields an empty set (fail closed).
func NormalizeCapabilities(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return []string{}
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return compact(list)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if err := json.Unmarshal([]byte(s), &list); err == nil {
			return compact(list)
		}
	}

	return []string{}
}

func compact(list []string) []string {
	out := make([]string, 0, len(list))
	for _, c := range list {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}
