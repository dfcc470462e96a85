package teams

import "testing"

func TestResolveAliases(t *testing.T) {
	dir := NewDirectory()

	tests := []struct {
		name     string
		input    string
		wantAbbr string
	}{
		{"Full name", "Los Angeles Lakers", "LAL"},
		{"Nickname", "Lakers", "LAL"},
		{"City nickname", "Boston Celtics", "BOS"},
		{"Lower case", "lakers", "LAL"},
		{"Upper case", "LOS ANGELES LAKERS", "LAL"},
		{"Leading the", "the lakers", "LAL"},
		{"Whitespace", "  Miami Heat  ", "MIA"},
		{"Sixers by number", "76ers", "PHI"},
		{"Two word nickname", "Trail Blazers", "POR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, ok := dir.Resolve(tt.input)
			if !ok {
				t.Fatalf("Resolve(%q) missed, want %s", tt.input, tt.wantAbbr)
			}
			if ref.Abbr != tt.wantAbbr {
				t.Errorf("Resolve(%q) = %s, want %s", tt.input, ref.Abbr, tt.wantAbbr)
			}
			if ref.ID == 0 {
				t.Errorf("Resolve(%q) returned zero team ID", tt.input)
			}
		})
	}
}

func TestResolveEquivalentForms(t *testing.T) {
	dir := NewDirectory()

	a, _ := dir.Resolve("Lakers")
	b, _ := dir.Resolve("the lakers")
	c, _ := dir.Resolve("LOS ANGELES LAKERS")

	if a != b || b != c {
		t.Errorf("Equivalent names resolved differently: %v, %v, %v", a, b, c)
	}
}

func TestResolveMisses(t *testing.T) {
	dir := NewDirectory()

	tests := []struct {
		name  string
		input string
	}{
		{"Empty", ""},
		{"Unknown team", "Zzz Nonexistent"},
		{"Partial name", "Lake"},
		{"Abbreviation only", "LAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if ref, ok := dir.Resolve(tt.input); ok {
				t.Errorf("Resolve(%q) = %v, want miss", tt.input, ref)
			}
		})
	}
}

func TestDirectoryCoversAllTeams(t *testing.T) {
	dir := NewDirectory()

	for _, team := range nbaTeams {
		ref, ok := dir.Resolve(team.fullName)
		if !ok {
			t.Errorf("Full name %q does not resolve", team.fullName)
			continue
		}
		if ref.ID != team.id || ref.Abbr != team.abbr {
			t.Errorf("Resolve(%q) = %v, want {%d %s}", team.fullName, ref, team.id, team.abbr)
		}
	}
}
