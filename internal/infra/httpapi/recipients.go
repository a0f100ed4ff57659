package httpapi

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RecipientList accepts either a JSON array of addresses or a single
// comma-joined string; older clients send the latter. Normalization
// (trim, dedupe) happens in the core, not here.
type RecipientList []string

func (r *RecipientList) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*r = arr
		return nil
	}
	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return fmt.Errorf("recipients must be an array of strings or a comma-joined string")
	}
	*r = strings.Split(joined, ",")
	return nil
}
