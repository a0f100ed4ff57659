package httpapi

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestRecipientList_AcceptsArrayAndCommaString(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want RecipientList
	}{
		{"json array", `["a@b.com","c@d.com"]`, RecipientList{"a@b.com", "c@d.com"}},
		{"comma-joined string", `"a@b.com,c@d.com"`, RecipientList{"a@b.com", "c@d.com"}},
		{"single address string", `"a@b.com"`, RecipientList{"a@b.com"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got RecipientList
			if err := json.Unmarshal([]byte(tc.in), &got); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, got)
			}
		})
	}
}

func TestRecipientList_RejectsOtherShapes(t *testing.T) {
	var got RecipientList
	if err := json.Unmarshal([]byte(`42`), &got); err == nil {
		t.Fatal("want error for non-string, non-array payload")
	}
}
