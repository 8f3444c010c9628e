package core_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/todoroll/pkg/core"
)

const header = "| Task | Prio | Due | Done | Notes |"
const separator = "|------|------|-----|------|-------|"

func table(rows ...string) string {
	return strings.Join(append([]string{header, separator}, rows...), "\n")
}

func TestFilterTable(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "Drops Done Rows",
			input: table("| a | high | mon |  | |", "| b | low | tue | X | |", "| c | mid | wed |  | |"),
			want:  []string{header, separator, "| a | high | mon |  | |", "| c | mid | wed |  | |"},
		},
		{
			name:  "Header Only",
			input: table(),
			want:  []string{header, separator},
		},
		{
			name:  "Empty Input",
			input: "",
			want:  nil,
		},
		{
			name:  "Marker Must Be Uppercase",
			input: table("| a | high | mon | x | |"),
			want:  []string{header, separator, "| a | high | mon | x | |"},
		},
		{
			name:  "Marker Anywhere In Cell",
			input: table("| a | high | mon | done X | |"),
			want:  []string{header, separator},
		},
		{
			name:  "X In Other Cells Ignored",
			input: table("| X | X | X |  | X |"),
			want:  []string{header, separator, "| X | X | X |  | X |"},
		},
		{
			name:  "Short Rows Are Kept",
			input: table("| a | b |", "| c | d | e | X |"),
			want:  []string{header, separator, "| a | b |", "| c | d | e | X |"},
		},
		{
			name:  "Surrounding Whitespace Trimmed",
			input: "\n\n" + table("| a | b | c | X | |") + "\n\n",
			want:  []string{header, separator},
		},
		{
			name:  "CRLF Line Endings",
			input: header + "\r\n" + separator + "\r\n| a | b | c |  | |\r\n| d | e | f | X | |",
			want:  []string{header, separator, "| a | b | c |  | |"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := core.FilterTable(tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("FilterTable() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFilterTable_Idempotent(t *testing.T) {
	input := table(
		"| a | high | mon |  | |",
		"| b | low | tue | X | |",
		"| short |",
		"| c | mid | wed | X | |",
		"| d | mid | thu |  | |",
	)

	once := core.FilterTable(input)
	twice := core.FilterTable(strings.Join(once, "\n"))

	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("filtering twice changed the result (-once +twice):\n%s", diff)
	}
}

func TestRowDone(t *testing.T) {
	done, err := core.RowDone("| a | b | c | X | |")
	require.NoError(t, err)
	assert.True(t, done)

	done, err = core.RowDone("| a | b | c |   | |")
	require.NoError(t, err)
	assert.False(t, done)

	_, err = core.RowDone("| a | b |")
	assert.ErrorIs(t, err, core.ErrMalformedRow)
}

func TestMergeRows(t *testing.T) {
	carried := []string{header, separator, "| a | b | c |  | |"}

	t.Run("Appends Data Rows", func(t *testing.T) {
		existing := table("| z | y | x |  | |") + "\n"
		got := core.MergeRows(existing, carried)
		assert.Equal(t, table("| z | y | x |  | |", "| a | b | c |  | |"), got)
	})

	t.Run("Empty Existing Takes Carried", func(t *testing.T) {
		assert.Equal(t, strings.Join(carried, "\n"), core.MergeRows("", carried))
	})

	t.Run("Nothing To Carry", func(t *testing.T) {
		existing := table("| z | y | x |  | |")
		assert.Equal(t, existing, core.MergeRows(existing, []string{header, separator}))
	})
}
