package rcon

import "testing"

func TestHashPassword(t *testing.T) {
	tests := []struct {
		plain, want string
	}{
		{"", "d41d8cd98f00b204e9800998ecf8427e"},
		{"password", "5f4dcc3b5aa765d61d8327deb882cf99"},
		{"secret", "5ebe2294ecd0e0f08eab7690d2a6ee69"},
	}
	for _, tt := range tests {
		if got := HashPassword(tt.plain); got != tt.want {
			t.Errorf("HashPassword(%q) = %s, want %s", tt.plain, got, tt.want)
		}
	}
}

func TestTagOf(t *testing.T) {
	tests := []struct {
		line, want string
	}{
		{"Kick 76561198000000000", "Kick"},
		{"ServerInfo", "ServerInfo"},
		{"SwitchMap datacenter SND", "SwitchMap"},
		{"  Pause 10", "Pause"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := TagOf(tt.line); got != tt.want {
			t.Errorf("TagOf(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestAuthLine(t *testing.T) {
	tests := []struct {
		name         string
		in           string
		want         string
		wantFound    bool
		wantComplete bool
	}{
		{"bare", "Authenticated", "Authenticated", true, false},
		{"with status", "Authenticated=1\r\n", "Authenticated=1", true, true},
		{"status still arriving", "Authenticated=", "Authenticated=", true, false},
		{"after prompt", "Password: Authenticated 0\n", "Authenticated 0", true, true},
		{"json follows", `Authenticated{"Command":"X","Successful":true}`, "Authenticated", true, true},
		{"marker only inside json", `{"Command":"Authenticated"}`, "", false, false},
		{"nothing yet", "Passw", "", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found, complete := authLine([]byte(tt.in))
			if found != tt.wantFound || complete != tt.wantComplete || got != tt.want {
				t.Errorf("authLine(%q) = (%q, %v, %v), want (%q, %v, %v)",
					tt.in, got, found, complete, tt.want, tt.wantFound, tt.wantComplete)
			}
		})
	}
}
