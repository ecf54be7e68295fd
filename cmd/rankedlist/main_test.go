package main

import (
	"reflect"
	"testing"
)

func TestRewriteConfigShortcutArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"rankedlist"},
			want: []string{"rankedlist"},
		},
		{
			name: "config file first token",
			in:   []string{"rankedlist", "trial.yaml"},
			want: []string{"rankedlist", "run", "--config", "trial.yaml"},
		},
		{
			name: "yml extension",
			in:   []string{"rankedlist", "./exp/Trial.YML"},
			want: []string{"rankedlist", "run", "--config", "./exp/Trial.YML"},
		},
		{
			name: "config file after value flag",
			in:   []string{"rankedlist", "--results", "out.jsonl", "trial.yaml"},
			want: []string{"rankedlist", "--results", "out.jsonl", "run", "--config", "trial.yaml"},
		},
		{
			name: "config file after equals flag",
			in:   []string{"rankedlist", "--format=yaml", "trial.yaml"},
			want: []string{"rankedlist", "--format=yaml", "run", "--config", "trial.yaml"},
		},
		{
			name: "config file after bool flag",
			in:   []string{"rankedlist", "--pretty", "trial.yaml"},
			want: []string{"rankedlist", "--pretty", "run", "--config", "trial.yaml"},
		},
		{
			name: "value of --config is not a shortcut",
			in:   []string{"rankedlist", "--config", "trial.yaml", "web"},
			want: []string{"rankedlist", "--config", "trial.yaml", "web"},
		},
		{
			name: "subcommand not rewritten",
			in:   []string{"rankedlist", "config", "init", "trial.yaml"},
			want: []string{"rankedlist", "config", "init", "trial.yaml"},
		},
		{
			name: "after double dash not rewritten",
			in:   []string{"rankedlist", "--", "trial.yaml"},
			want: []string{"rankedlist", "--", "trial.yaml"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := rewriteConfigShortcutArgs(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("rewriteConfigShortcutArgs:\n got: %#v\nwant: %#v", got, tt.want)
			}
		})
	}
}
