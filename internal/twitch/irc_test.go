package twitch

import (
	"reflect"
	"testing"
)

func TestParseLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want Message
		ok   bool
	}{
		{
			name: "privmsg",
			raw:  ":alice!alice@alice.tmi.twitch.tv PRIVMSG #somestreamer :!vol 50\r\n",
			want: Message{
				Nick:     "alice",
				Command:  "PRIVMSG",
				Params:   []string{"#somestreamer"},
				Trailing: "!vol 50",
			},
			ok: true,
		},
		{
			name: "ping",
			raw:  "PING :tmi.twitch.tv",
			want: Message{Command: "PING", Trailing: "tmi.twitch.tv"},
			ok:   true,
		},
		{
			name: "tagged privmsg",
			raw:  "@badge-info=;display-name=Alice;mod=0 :alice!alice@alice.tmi.twitch.tv PRIVMSG #c :hi",
			want: Message{
				Tags:     map[string]string{"badge-info": "", "display-name": "Alice", "mod": "0"},
				Nick:     "alice",
				Command:  "PRIVMSG",
				Params:   []string{"#c"},
				Trailing: "hi",
			},
			ok: true,
		},
		{
			name: "numeric welcome",
			raw:  ":tmi.twitch.tv 001 chatvoxbot :Welcome, GLHF!",
			want: Message{
				Command:  "001",
				Params:   []string{"chatvoxbot"},
				Trailing: "Welcome, GLHF!",
			},
			ok: true,
		},
		{
			name: "empty line",
			raw:  "\r\n",
			ok:   false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := parseLine(tc.raw)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if !ok {
				return
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("parseLine(%q) = %+v, want %+v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestMessage_Channel(t *testing.T) {
	t.Parallel()

	m, _ := parseLine(":a!a@a PRIVMSG #chan :hello")
	if got := m.Channel(); got != "#chan" {
		t.Errorf("Channel() = %q, want #chan", got)
	}
	ping, _ := parseLine("PING :tmi.twitch.tv")
	if got := ping.Channel(); got != "" {
		t.Errorf("Channel() on PING = %q, want empty", got)
	}
}

func TestUnescapeTag(t *testing.T) {
	t.Parallel()

	if got := unescapeTag(`hi\sthere\:ok`); got != "hi there;ok" {
		t.Errorf("unescapeTag = %q", got)
	}
	if got := unescapeTag("plain"); got != "plain" {
		t.Errorf("unescapeTag = %q", got)
	}
}
