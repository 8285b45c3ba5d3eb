package scoring

import (
	"math"
	"reflect"
	"testing"
)

func TestExtractKeywords(t *testing.T) {
	got := ExtractKeywords("I love Hiking, good food & HIKING trails!")
	want := []string{"love", "hiking", "food", "trails"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExtractKeywords = %v, want %v", got, want)
	}
}

func TestExtractKeywordsDropsShortAndStopWords(t *testing.T) {
	got := ExtractKeywords("that will have been much time but art is fun")
	if len(got) != 0 {
		t.Fatalf("expected no keywords, got %v", got)
	}
}

func TestExtractKeywordsEmpty(t *testing.T) {
	if got := ExtractKeywords(""); len(got) != 0 {
		t.Fatalf("expected no keywords for empty input, got %v", got)
	}
}

func TestJaccardOverlap(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want float64
	}{
		{"identical", []string{"hiking", "food"}, []string{"hiking", "food"}, 1.0},
		{"disjoint", []string{"hiking"}, []string{"food"}, 0.0},
		{"half", []string{"hiking", "food", "travel"}, []string{"hiking", "music"}, 0.25},
		{"empty side", []string{"hiking"}, nil, 0.0},
		{"duplicates collapse", []string{"hiking", "hiking"}, []string{"hiking"}, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := JaccardOverlap(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("JaccardOverlap(%v, %v) = %f, want %f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
