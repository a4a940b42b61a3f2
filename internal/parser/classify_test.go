package parser

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		line string
		want Line
	}{
		{"### Pests", Line{Kind: LineHeading, Level: 3, Content: "Pests"}},
		{"## Soil", Line{Kind: LineHeading, Level: 2, Content: "Soil"}},
		{"# Overview", Line{Kind: LineHeading, Level: 2, Content: "Overview"}},
		{"#### Deep", Line{Kind: LineText, Content: "#### Deep"}},
		{"# **x**", Line{Kind: LineHeading, Level: 2, Content: "**x**"}},
		{"**Harvest**", Line{Kind: LineBoldHeading, Level: 3, Content: "Harvest"}},
		{"  **Harvest**\t", Line{Kind: LineBoldHeading, Level: 3, Content: "Harvest"}},
		{"**a** b **c**", Line{Kind: LineText, Content: "**a** b **c**"}},
		{"****", Line{Kind: LineText, Content: "****"}},
		{"** **", Line{Kind: LineText, Content: "** **"}},
		{"1. Prepare soil", Line{Kind: LineOrderedItem, Content: "Prepare soil"}},
		{"42. Answer", Line{Kind: LineOrderedItem, Content: "Answer"}},
		{"3.\tTabbed", Line{Kind: LineOrderedItem, Content: "Tabbed"}},
		{"1.\tstep one", Line{Kind: LineOrderedItem, Content: "step one"}},
		{"1.5 kg of seed", Line{Kind: LineText, Content: "1.5 kg of seed"}},
		{" 1. indented", Line{Kind: LineText, Content: " 1. indented"}},
		{"* Water daily", Line{Kind: LineUnorderedItem, Content: "Water daily"}},
		{"* ", Line{Kind: LineUnorderedItem, Content: ""}},
		{"- dash", Line{Kind: LineText, Content: "- dash"}},
		{"", Line{Kind: LineBlank}},
		{"   \t ", Line{Kind: LineBlank}},
		{"Plain words.", Line{Kind: LineText, Content: "Plain words."}},
	}
	for _, tt := range tests {
		got := Classify(tt.line, Full)
		if got != tt.want {
			t.Errorf("Classify(%q): expected %+v, got %+v", tt.line, tt.want, got)
		}
	}
}

func TestClassify_DisabledRulesFallThrough(t *testing.T) {
	opts := Options{UnorderedLists: true}
	if got := Classify("## x", opts); got.Kind != LineText {
		t.Errorf("expected heading marker to fall through to text, got %v", got.Kind)
	}
	if got := Classify("**x**", opts); got.Kind != LineText {
		t.Errorf("expected bold line to fall through to text, got %v", got.Kind)
	}
	if got := Classify("1. x", opts); got.Kind != LineText {
		t.Errorf("expected ordered marker to fall through to text, got %v", got.Kind)
	}
	if got := Classify("* x", opts); got.Kind != LineUnorderedItem {
		t.Errorf("expected unordered item, got %v", got.Kind)
	}
}

func TestLineKind_String(t *testing.T) {
	kinds := map[LineKind]string{
		LineBlank:         "blank",
		LineText:          "text",
		LineHeading:       "heading",
		LineBoldHeading:   "bold_heading",
		LineOrderedItem:   "ordered_item",
		LineUnorderedItem: "unordered_item",
		LineKind(99):      "unknown",
	}
	for k, want := range kinds {
		if k.String() != want {
			t.Errorf("expected %q, got %q", want, k.String())
		}
	}
}
