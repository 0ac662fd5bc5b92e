package syntax

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.microglot.org/rjson.go/internal/exc"
	"gopkg.microglot.org/rjson.go/internal/lang"
)

func TestCheckList(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		ok       bool
		messages []string
	}{
		{`[1, 2, 3.5]`, true, []string{}},
		{`["a"]`, true, []string{}},
		{`[true, null, false]`, true, []string{}},
		{`[{"a": 1}, {"b": "x"}]`, true, []string{}},
		{
			`[1, "a", true]`,
			false,
			[]string{"Level A Semantic Error: Type 6 at <STRING: a> (Expected Type: NUMBER): Inconsistent Types for List Elements"},
		},
		{
			`[{"a": 1}, [1]]`,
			false,
			[]string{"Level A Semantic Error: Type 6 at <list> (Expected Type: dict): Inconsistent Types for List Elements"},
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.input, func(t *testing.T) {
			t.Parallel()
			result := parseText(t, testCase.input)
			require.NoError(t, result.err)
			var b strings.Builder
			log := NewSemanticLog(&b, nil)
			require.Equal(t, testCase.ok, CheckList(result.root, log))
			got := []string{}
			for _, e := range log.Errors() {
				got = append(got, e.Message())
				require.Equal(t, exc.CodeInconsistentList, e.Code())
				require.Equal(t, LevelA, e.Level())
			}
			require.Equal(t, testCase.messages, got)
		})
	}
}

func TestCheckListNotAList(t *testing.T) {
	t.Parallel()

	log := NewSemanticLog(&strings.Builder{}, nil)
	require.True(t, CheckList(nil, log))
	require.True(t, CheckList(lang.NewNode(LabelDict), log))
	require.Empty(t, log.Errors())
}

func TestCheckLists(t *testing.T) {
	t.Parallel()

	result := parseText(t, `{"a": [[1, "x"], [2]], "b": [true, 1], "c": [1, 2]}`)
	require.NoError(t, result.err)
	log := NewSemanticLog(&strings.Builder{}, nil)
	require.False(t, CheckLists(result.root, log))
	require.Len(t, log.Errors(), 2)
	require.Equal(t, "STRING: x", log.Errors()[0].Label)
	require.Equal(t, "NUMBER", log.Errors()[0].Expected)
	require.Equal(t, "NUMBER: 1", log.Errors()[1].Label)
	require.Equal(t, "BOOLEAN", log.Errors()[1].Expected)

	result = parseText(t, `[[1, 2], [3]]`)
	require.True(t, CheckLists(result.root, NewSemanticLog(&strings.Builder{}, nil)))
}
