package fetch

import "encoding/json"

// ParseLVRDetails extracts the LVR dollar value for targetPoolName out of
// one indexed-feed row's details blob. The blob is a JSON array of
// [poolName, valueBlob] pairs; valueBlob is itself JSON, preferring a
// "dollarValue" field and falling back to a bare numeric literal.
func ParseLVRDetails(detailsJSON string, targetPoolName string) (float64, bool) {
	var entries [][]string
	if err := json.Unmarshal([]byte(detailsJSON), &entries); err != nil {
		return 0, false
	}

	for _, entry := range entries {
		if len(entry) != 2 {
			continue
		}
		poolName, valueStr := entry[0], entry[1]
		if poolName != targetPoolName {
			continue
		}

		var detail map[string]interface{}
		if err := json.Unmarshal([]byte(valueStr), &detail); err == nil {
			if dv, ok := detail["dollarValue"]; ok {
				if f, ok := dv.(float64); ok {
					return f, true
				}
			}
		}

		var f float64
		if err := json.Unmarshal([]byte(valueStr), &f); err == nil {
			return f, true
		}
	}

	return 0, false
}
