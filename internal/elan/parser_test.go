package elan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSingleCommand(t *testing.T) {
	cmds, err := Parse(`puts "Hello, World"`, "t")
	require.NoError(t, err)
	require.Len(t, cmds, 1)
	assert.Equal(t, []string{"puts", "Hello, World"}, cmds[0].Strings())
	assert.Equal(t, EnvBare, cmds[0].Words[0].Env)
	assert.Equal(t, EnvQuote, cmds[0].Words[1].Env)
}

func TestParseBlankLines(t *testing.T) {
	cmds, err := Parse("\nputs hi\n\n", "t")
	require.NoError(t, err)
	require.Len(t, cmds, 3)
	assert.Empty(t, cmds[0].Words)
	assert.Equal(t, []string{"puts", "hi"}, cmds[1].Strings())
	assert.Empty(t, cmds[2].Words)
}

func TestParseSemicolonSeparates(t *testing.T) {
	cmds, err := Parse(`puts "line 1"; puts "line 2"`, "t")
	require.NoError(t, err)
	require.Len(t, cmds, 2)
	assert.Equal(t, []string{"puts", "line 1"}, cmds[0].Strings())
	assert.Equal(t, []string{"puts", "line 2"}, cmds[1].Strings())
}

func TestParseSemicolonInsideQuotesIsLiteral(t *testing.T) {
	cmds, err := Parse(`puts "a; b"`, "t")
	require.NoError(t, err)
	require.Len(t, cmds, 1)
	assert.Equal(t, "a; b", cmds[0].Words[1].Text)
}

func TestParseVariableReferences(t *testing.T) {
	cmds, err := Parse("gotoblock ${SCAN_PAT} $EXPSTART $EXPNAME $HEIGHT", "t")
	require.NoError(t, err)
	require.Len(t, cmds, 1)
	assert.Equal(t,
		[]string{"gotoblock", "${SCAN_PAT}", "$EXPSTART", "$EXPNAME", "$HEIGHT"},
		cmds[0].Strings())
}

func TestParseBraceWordKeepsNesting(t *testing.T) {
	cmds, err := Parse(`set z {[set x "a b"]}`, "t")
	require.NoError(t, err)
	require.Len(t, cmds, 1)
	w := cmds[0].Words[2]
	assert.Equal(t, EnvBrace, w.Env)
	assert.Equal(t, `[set x "a b"]`, w.Text)
}

func TestParseBracketWordMidCommand(t *testing.T) {
	cmds, err := Parse("set Z [expr {$Y + $X}]", "t")
	require.NoError(t, err)
	require.Len(t, cmds, 1)
	w := cmds[0].Words[2]
	assert.Equal(t, EnvBracket, w.Env)
	assert.Equal(t, "expr {$Y + $X}", w.Text)
}

func TestParseCommentLine(t *testing.T) {
	cmds, err := Parse("# a comment\nputs hi\n", "t")
	require.NoError(t, err)
	var nonEmpty []Command
	for _, c := range cmds {
		if len(c.Words) > 0 {
			nonEmpty = append(nonEmpty, c)
		}
	}
	require.Len(t, nonEmpty, 1)
	assert.Equal(t, []string{"puts", "hi"}, nonEmpty[0].Strings())
}

func TestParseTrailingCommentWithSemicolon(t *testing.T) {
	cmds, err := Parse(`puts hi   ;# trailing comment`, "t")
	require.NoError(t, err)
	require.Len(t, cmds, 2)
	assert.Equal(t, []string{"puts", "hi"}, cmds[0].Strings())
	assert.Empty(t, cmds[1].Words)
}

func TestParseCommentMidCommandFails(t *testing.T) {
	_, err := Parse("puts {x}   # no semicolon", "t")
	require.Error(t, err)
	var se *ScriptError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Msg, "comment")
}

func TestParseLineContinuation(t *testing.T) {
	cmds, err := Parse("puts \"comes out\\\non a single line\"", "t")
	require.NoError(t, err)
	require.Len(t, cmds, 1)
	assert.Equal(t, "comes out on a single line", cmds[0].Words[1].Text)
}

func TestParseMultilineBraceWord(t *testing.T) {
	cmds, err := Parse("iftest {$x != 1} {\n    puts a\n}", "t")
	require.NoError(t, err)
	require.Len(t, cmds, 1)
	assert.Equal(t, "\n    puts a\n", cmds[0].Words[2].Text)
}

func TestParseUnterminatedBraceFails(t *testing.T) {
	_, err := Parse("puts {never closed", "t")
	require.Error(t, err)
	var se *ScriptError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Msg, "unterminated")
}

func TestParseLineNumbers(t *testing.T) {
	cmds, err := Parse("puts one\n\nputs three\n", "t")
	require.NoError(t, err)
	require.Len(t, cmds, 3)
	assert.Equal(t, 1, cmds[0].Line)
	assert.Equal(t, 3, cmds[2].Line)
}

func TestSplitBrackets(t *testing.T) {
	segs := splitBrackets(`["a"]&&["b"]`)
	require.Len(t, segs, 3)
	assert.True(t, segs[0].bracket)
	assert.Equal(t, `"a"`, segs[0].text)
	assert.False(t, segs[1].bracket)
	assert.Equal(t, "&&", segs[1].text)
	assert.True(t, segs[2].bracket)
}

func TestSplitBracketsEscapedAndBraced(t *testing.T) {
	segs := splitBrackets(`\[not a command] {[nor this]} [but this]`)
	var cmds []string
	for _, s := range segs {
		if s.bracket {
			cmds = append(cmds, s.text)
		}
	}
	assert.Equal(t, []string{"but this"}, cmds)
}
