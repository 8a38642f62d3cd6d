package location

import "testing"

func TestStripTags(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Building A > Room 2", "Building A > Room 2"},
		{"bold trail", "<b>Building A</b> > Room 2", "Building A > Room 2"},
		{"nested markup", "<div><span>Shop</span> Floor</div>", "Shop Floor"},
		{"entity", "Lab &amp; Annex", "Lab & Annex"},
		{"self closing", "North<br/>Wing", "NorthWing"},
		{"empty", "", ""},
		{"only tags", "<p></p>", ""},
		{"surrounding space", "  <i>Basement</i>  ", "Basement"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripTags(tt.input); got != tt.want {
				t.Errorf("StripTags(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
