package normalize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepairJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "single quoted strings",
			in:   `['A', 'B']`,
			want: `["A", "B"]`,
		},
		{
			name: "apostrophe inside double quotes untouched",
			in:   `[{"text": "What's Go?", 'x': 'y'}]`,
			want: `[{"text": "What's Go?", "x": "y"}]`,
		},
		{
			name: "double quote inside single quoted string is escaped",
			in:   `['say "hi"']`,
			want: `["say \"hi\""]`,
		},
		{
			name: "trailing commas",
			in:   "[{\"a\": 1,}, {\"b\": [1, 2, ]},\n]",
			want: "[{\"a\": 1}, {\"b\": [1, 2 ]}\n]",
		},
		{
			name: "bare keys",
			in:   `[{id: 1, text: "Q", is_ok: true}]`,
			want: `[{"id": 1, "text": "Q", "is_ok": true}]`,
		},
		{
			name: "literals in arrays are not keys",
			in:   `[true, false, null]`,
			want: `[true, false, null]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, repairJSON(tt.in))
		})
	}
}

func TestRepairJSON_ProducesValidJSON(t *testing.T) {
	in := `[{id: '1', text: 'Don\'t panic', options: ['A','B',], correctAnswer: 'A',},]`
	var out []map[string]any
	require.NoError(t, json.Unmarshal([]byte(repairJSON(in)), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "Don't panic", out[0]["text"])
	assert.Equal(t, []any{"A", "B"}, out[0]["options"])
}
