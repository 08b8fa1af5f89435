package main

import "testing"

func TestRootCommandFlags(t *testing.T) {
	cmd := newRootCommand()
	for _, name := range []string{"config", "api-url", "log-level", "theme"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Fatalf("flag --%s not registered", name)
		}
	}
}

func TestRootCommandRejectsArgs(t *testing.T) {
	cmd := newRootCommand()
	if err := cmd.Args(cmd, []string{"AAPL"}); err == nil {
		t.Fatalf("positional args accepted, want error")
	}
}
