package safety_test

import (
	"bytes"
	"strings"
	"testing"

	"keyring-export/src/safety"
)

func TestConfirm_AutoYes(t *testing.T) {
	in := strings.NewReader("")
	var out bytes.Buffer
	ok, err := safety.Confirm(safety.Options{Yes: true}, in, &out, "proceed?")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatalf("expected auto-yes to confirm")
	}
	if out.Len() != 0 {
		t.Fatalf("auto-yes should not prompt; got %q", out.String())
	}
}

func TestConfirm_UserInput(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"y\n", true},
		{"yes\n", true},
		{"Y\n", true},
		{"No\n", false},
		{"\n", false},
		{"", false},
	}
	for _, c := range cases {
		in := strings.NewReader(c.in)
		var out bytes.Buffer
		got, err := safety.Confirm(safety.Options{}, in, &out, "update database in place?")
		if err != nil {
			t.Fatal(err)
		}
		if got != c.want {
			t.Fatalf("input %q: got %v want %v", c.in, got, c.want)
		}
		if !strings.Contains(out.String(), "update database in place?") {
			t.Fatalf("prompt missing question; got %q", out.String())
		}
	}
}
