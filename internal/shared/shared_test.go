package shared

import "testing"

func TestNormalizeQuery(t *testing.T) {
	tc := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "already normalized",
			query: "harvest moon",
			want:  "harvest moon",
		},
		{
			name:  "extra whitespace",
			query: "  harvest   moon  ",
			want:  "harvest moon",
		},
		{
			name:  "only whitespace",
			query: "   ",
			want:  "",
		},
		{
			name:  "tabs and newlines",
			query: "harvest\tmoon\n",
			want:  "harvest moon",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeQuery(tt.query)
			if got != tt.want {
				t.Errorf("NormalizeQuery() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGenerateID(t *testing.T) {
	a := GenerateID()
	b := GenerateID()

	if a == "" || b == "" {
		t.Fatal("expected non-empty ids")
	}
	if a == b {
		t.Error("expected distinct ids")
	}
}
