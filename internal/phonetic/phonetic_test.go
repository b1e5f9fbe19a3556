package phonetic

import "testing"

func TestMatchExact(t *testing.T) {
	t.Parallel()

	m := New()
	kw, conf, ok := m.Match("remind", []string{"shopping", "remind", "weather"})
	if !ok {
		t.Fatal("expected match")
	}
	if kw != "remind" {
		t.Errorf("got keyword %q, want %q", kw, "remind")
	}
	if conf < 0.99 {
		t.Errorf("got confidence %v, want ~1.0", conf)
	}
}

func TestMatchMisheard(t *testing.T) {
	t.Parallel()

	m := New()
	tests := []struct {
		name     string
		word     string
		keywords []string
		want     string
	}{
		{"remined for remind", "remined", []string{"shopping", "remind", "weather"}, "remind"},
		{"groshery for grocery", "groshery", []string{"grocery", "remind", "news"}, "grocery"},
		{"wether for weather", "wether", []string{"shopping", "remind", "weather"}, "weather"},
		{"shoping list phrase", "shoping list", []string{"shopping list", "remind"}, "shopping list"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			kw, conf, ok := m.Match(tt.word, tt.keywords)
			if !ok {
				t.Fatalf("Match(%q) = no match, want %q", tt.word, tt.want)
			}
			if kw != tt.want {
				t.Errorf("Match(%q) = %q (conf %v), want %q", tt.word, kw, conf, tt.want)
			}
		})
	}
}

func TestMatchRejectsUnrelated(t *testing.T) {
	t.Parallel()

	m := New()
	kw, conf, ok := m.Match("banana", []string{"remind", "weather", "news"})
	if ok {
		t.Fatalf("Match(banana) matched %q (conf %v), want no match", kw, conf)
	}
	if kw != "banana" {
		t.Errorf("unmatched word should be returned unchanged, got %q", kw)
	}
	if conf != 0 {
		t.Errorf("unmatched confidence = %v, want 0", conf)
	}
}

func TestMatchEmptyInputs(t *testing.T) {
	t.Parallel()

	m := New()
	if _, _, ok := m.Match("", []string{"remind"}); ok {
		t.Error("empty word should not match")
	}
	if _, _, ok := m.Match("remind", nil); ok {
		t.Error("empty keyword list should not match")
	}
	if _, _, ok := m.Match("remind", []string{"", "  "}); ok {
		t.Error("blank keywords should not match")
	}
}

func TestMatchThresholdOptions(t *testing.T) {
	t.Parallel()

	// Impossible thresholds suppress all matches.
	strict := New(WithPhoneticThreshold(1.01), WithFuzzyThreshold(1.01))
	if _, _, ok := strict.Match("remined", []string{"remind"}); ok {
		t.Error("thresholds above 1.0 should reject every candidate")
	}
}

func TestMatchText(t *testing.T) {
	t.Parallel()

	m := New()
	if !m.MatchText("please remined me to call mom", []string{"remind"}) {
		t.Error("expected utterance-level phonetic trigger hit")
	}
	if !m.MatchText("add milk to my shoping list", []string{"shopping list"}) {
		t.Error("expected bigram trigger hit")
	}
	if m.MatchText("tell me a joke", []string{"weather", "news"}) {
		t.Error("unrelated utterance should not trigger")
	}
}
