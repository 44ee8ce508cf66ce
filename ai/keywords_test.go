package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseKeywordList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "json list literal",
			raw:  `["staff", "training", "period"]`,
			want: []string{"staff", "training", "period"},
		},
		{
			name: "single-quoted list literal",
			raw:  `['staff', 'training']`,
			want: []string{"staff", "training"},
		},
		{
			name: "list literal with trailing comma",
			raw:  `["staff", "training",]`,
			want: []string{"staff", "training"},
		},
		{
			name: "bracketed without quotes",
			raw:  `[staff, training]`,
			want: []string{"staff", "training"},
		},
		{
			name: "quoted tokens in prose",
			raw:  `The keywords are "staff" and "training".`,
			want: []string{"staff", "training"},
		},
		{
			name: "comma separated",
			raw:  `staff, training, period`,
			want: []string{"staff", "training", "period"},
		},
		{
			name: "quoted tokens win over comma splitting",
			raw:  `"staff", training`,
			want: []string{"staff"},
		},
		{
			name: "single token fallback",
			raw:  `training`,
			want: []string{"training"},
		},
		{
			name: "single quoted token fallback",
			raw:  `"training period"`,
			want: []string{"training period"},
		},
		{
			name: "markdown fenced list",
			raw:  "```json\n[\"staff\", \"training\"]\n```",
			want: []string{"staff", "training"},
		},
		{
			name: "empty input",
			raw:  "",
			want: []string{},
		},
		{
			name: "whitespace only",
			raw:  "   \n\t ",
			want: []string{},
		},
		{
			name: "blank tokens dropped",
			raw:  `["staff", "", "  ", "training"]`,
			want: []string{"staff", "training"},
		},
		{
			name: "blank comma fields dropped",
			raw:  `staff,, ,training`,
			want: []string{"staff", "training"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseKeywordList(tt.raw))
		})
	}
}
