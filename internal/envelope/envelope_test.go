package envelope_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/p-n-ai/pai-admin/internal/envelope"
)

var courses = envelope.MustDecoder(envelope.Keys{Plural: "courses", Singular: "course"})

type course struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

func TestDecoder_Variants(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantVariant string
		wantPayload string
	}{
		{"bare array", `[{"id":1}]`, "bare", `[{"id":1}]`},
		{"data array", `{"data":[{"id":1}]}`, "data", `[{"id":1}]`},
		{"data data array", `{"data":{"data":[{"id":1}],"total":1}}`, "data", `[{"id":1}]`},
		{"data plural", `{"data":{"courses":[{"id":1}]}}`, "data", `[{"id":1}]`},
		{"data singular", `{"data":{"course":{"id":1}}}`, "data", `{"id":1}`},
		{"data entity", `{"data":{"id":1}}`, "data", `{"id":1}`},
		{"plural", `{"courses":[{"id":1}]}`, "plural", `[{"id":1}]`},
		{"singular", `{"course":{"id":1}}`, "singular", `{"id":1}`},
		{"plain entity", `{"id":1,"title":"Go"}`, "plain", `{"id":1,"title":"Go"}`},
		{"null", `null`, "empty", `[]`},
		{"empty body", ``, "empty", `[]`},
		{"data null", `{"data":null}`, "data", `[]`},
		{"plural wins over singular", `{"courses":[],"course":{"id":2}}`, "plural", `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := courses.Decode([]byte(tt.raw))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if got := envelope.Name(env); got != tt.wantVariant {
				t.Errorf("variant = %q, want %q", got, tt.wantVariant)
			}
			assertJSONEqual(t, env.Payload(), tt.wantPayload)
		})
	}
}

func TestDecoder_NormalizeIsIdempotent(t *testing.T) {
	shapes := []string{
		`[{"id":1},{"id":2}]`,
		`{"data":[{"id":1}]}`,
		`{"data":{"data":[{"id":1}]}}`,
		`{"data":{"courses":[{"id":1}]}}`,
		`{"data":{"course":{"id":1}}}`,
		`{"courses":[{"id":1}]}`,
		`{"course":{"id":1}}`,
		`{"id":1,"title":"Go"}`,
		`null`,
		`{"data":null}`,
	}

	for _, raw := range shapes {
		t.Run(raw, func(t *testing.T) {
			once, err := courses.Normalize([]byte(raw))
			if err != nil {
				t.Fatalf("Normalize() error = %v", err)
			}
			twice, err := courses.Normalize(once)
			if err != nil {
				t.Fatalf("Normalize(Normalize()) error = %v", err)
			}
			assertJSONEqual(t, twice, string(once))
		})
	}
}

func TestDecoder_InvalidJSON(t *testing.T) {
	if _, err := courses.Decode([]byte(`{"data":`)); err == nil {
		t.Fatal("Decode() should fail on invalid JSON")
	}
}

func TestNewDecoder_RequiresKeys(t *testing.T) {
	if _, err := envelope.NewDecoder(envelope.Keys{Plural: "courses"}); err == nil {
		t.Fatal("NewDecoder() should require a singular key")
	}
}

func TestDecodeList(t *testing.T) {
	got, err := envelope.DecodeList[course](courses, []byte(`{"courses":[{"id":1,"title":"Go"},{"id":2,"title":"Rust"}]}`))
	if err != nil {
		t.Fatalf("DecodeList() error = %v", err)
	}
	if len(got) != 2 || got[1].Title != "Rust" {
		t.Errorf("DecodeList() = %+v", got)
	}

	empty, err := envelope.DecodeList[course](courses, nil)
	if err != nil {
		t.Fatalf("DecodeList(nil) error = %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("DecodeList(nil) = %#v, want empty non-nil slice", empty)
	}

	_, err = envelope.DecodeList[course](courses, []byte(`{"id":1}`))
	if !errors.Is(err, envelope.ErrShape) {
		t.Errorf("DecodeList(object) error = %v, want ErrShape", err)
	}
}

func TestDecodeOne(t *testing.T) {
	got, err := envelope.DecodeOne[course](courses, []byte(`{"data":{"course":{"id":9,"title":"Go"}}}`))
	if err != nil {
		t.Fatalf("DecodeOne() error = %v", err)
	}
	if got.ID != 9 {
		t.Errorf("DecodeOne().ID = %d, want 9", got.ID)
	}

	for _, raw := range []string{``, `null`, `{}`, `{"data":{}}`} {
		if _, err := envelope.DecodeOne[course](courses, []byte(raw)); !errors.Is(err, envelope.ErrEmpty) {
			t.Errorf("DecodeOne(%q) error = %v, want ErrEmpty", raw, err)
		}
	}
}

func TestDecodePage(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantLen   int
		wantTotal int
		wantPage  int
		wantPages int
	}{
		{"paginated", `{"data":[{"id":1},{"id":2}],"total":12,"page":2,"limit":2,"totalPages":6}`, 2, 12, 2, 6},
		{"nested paginated", `{"data":{"data":[{"id":1}],"total":3,"page":3,"limit":1,"totalPages":3}}`, 1, 3, 3, 3},
		{"bare array is one full page", `[{"id":1},{"id":2},{"id":3}]`, 3, 3, 1, 1},
		{"empty", `null`, 0, 0, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := envelope.DecodePage[course](courses, []byte(tt.raw))
			if err != nil {
				t.Fatalf("DecodePage() error = %v", err)
			}
			if len(page.Data) != tt.wantLen {
				t.Errorf("len(Data) = %d, want %d", len(page.Data), tt.wantLen)
			}
			if page.Total != tt.wantTotal {
				t.Errorf("Total = %d, want %d", page.Total, tt.wantTotal)
			}
			if page.Page != tt.wantPage {
				t.Errorf("Page = %d, want %d", page.Page, tt.wantPage)
			}
			if page.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", page.TotalPages, tt.wantPages)
			}
		})
	}
}

func assertJSONEqual(t *testing.T, got json.RawMessage, want string) {
	t.Helper()
	var g, w any
	if err := json.Unmarshal(got, &g); err != nil {
		t.Fatalf("payload %s is not JSON: %v", got, err)
	}
	if err := json.Unmarshal([]byte(want), &w); err != nil {
		t.Fatalf("want %s is not JSON: %v", want, err)
	}
	gb, _ := json.Marshal(g)
	wb, _ := json.Marshal(w)
	if string(gb) != string(wb) {
		t.Errorf("payload = %s, want %s", gb, wb)
	}
}
