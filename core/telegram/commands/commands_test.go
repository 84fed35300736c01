package commands

import "testing"

func TestVisible(t *testing.T) {
	cases := []struct {
		name string
		cmd  Command
		want bool
	}{
		{"plain", Command{Description: "Take the test"}, true},
		{"hidden", Command{Hidden: true}, false},
		{"admin only", Command{AdminOnly: true}, false},
	}
	for _, tc := range cases {
		if got := tc.cmd.Visible(); got != tc.want {
			t.Errorf("%s: Visible() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestMatchesAlias(t *testing.T) {
	cmd := Command{Aliases: []string{"mystats", "/me"}}

	for _, name := range []string{"mystats", "/mystats", "me", "/me"} {
		if !cmd.MatchesAlias(name) {
			t.Errorf("MatchesAlias(%q) = false, want true", name)
		}
	}
	if cmd.MatchesAlias("/stats") {
		t.Error("MatchesAlias(/stats) = true, want false")
	}
	if (Command{}).MatchesAlias("anything") {
		t.Error("no aliases should never match")
	}
}
