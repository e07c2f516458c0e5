package elan

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Env says how a word was delimited in the source. The environment decides
// whether the word is substituted before execution.
type Env int

const (
	// EnvBare words and EnvQuote words are substituted.
	EnvBare Env = iota
	EnvQuote
	// EnvBrace words are taken literally.
	EnvBrace
	// EnvBracket words are nested commands evaluated in place.
	EnvBracket
)

// Word is a single word of a command together with its source position.
// Start is the 1-based column of the word's first character on Line.
type Word struct {
	Text  string
	Line  int
	Start int
	Env   Env
}

// Command is a parsed command: its words and the span it occupies in the
// source. A blank line parses to a Command with no words.
type Command struct {
	Words []Word
	File  string
	Line  int
	Char1 int
	Char2 int
}

// Strings returns the word texts.
func (c Command) Strings() []string {
	out := make([]string, len(c.Words))
	for i, w := range c.Words {
		out[i] = w.Text
	}
	return out
}

// Parse splits a script into commands. Comments start with # at the
// beginning of a command and run to the end of the line; # anywhere else in
// a command is an error. Commands are separated by newlines or semicolons,
// but a semicolon inside quotes, braces or brackets stays literal. A line
// ending in backslash-newline continues on the next line. The source is
// normalized to NFC before tokenizing.
func Parse(script, file string) ([]Command, error) {
	p := &parser{file: file, line: 1, col: 0}
	return p.run(norm.NFC.String(script))
}

// ParseWords parses a script expected to hold a single command and returns
// its words. Used for procedure parameter lists.
func ParseWords(script, file string) ([]Word, error) {
	cmds, err := Parse(script, file)
	if err != nil {
		return nil, err
	}
	var words []Word
	for _, c := range cmds {
		words = append(words, c.Words...)
	}
	return words, nil
}

type parser struct {
	file string
	line int
	col  int

	cmds  []Command
	words []Word

	cur       strings.Builder
	inWord    bool
	wordLine  int
	wordStart int
	env       Env
	envLevel  int
	inComment bool
}

func (p *parser) run(script string) ([]Command, error) {
	if !strings.HasSuffix(script, "\n") {
		script += "\n"
	}
	for _, r := range script {
		if r == '\n' {
			p.col = 0
		} else {
			p.col++
		}
		if err := p.feed(r); err != nil {
			return nil, err
		}
		if r == '\n' {
			p.line++
		}
	}
	if p.inWord && p.env != EnvBare {
		return nil, scriptErrf(p.file, p.wordLine, p.wordStart, 0,
			"unterminated %s", envName(p.env))
	}
	return p.cmds, nil
}

func envName(env Env) string {
	switch env {
	case EnvQuote:
		return "quoted word"
	case EnvBrace:
		return "braced word"
	case EnvBracket:
		return "bracketed command"
	}
	return "word"
}

func (p *parser) feed(r rune) error {
	// Backslash-newline joins lines in any context.
	if r == '\n' && p.inWord && strings.HasSuffix(p.cur.String(), "\\") {
		s := p.cur.String()
		p.cur.Reset()
		p.cur.WriteString(s[:len(s)-1])
		p.cur.WriteByte(' ')
		return nil
	}
	if p.inWord && p.env != EnvBare {
		p.feedDelimited(r)
		return nil
	}
	if p.inComment {
		if r == '\n' {
			p.inComment = false
			p.endCommand()
		}
		return nil
	}
	if p.inWord {
		return p.feedBare(r)
	}
	switch r {
	case ' ', '\t':
		return nil
	case '\n', ';':
		p.endCommand()
		return nil
	case '#':
		if len(p.words) > 0 {
			return scriptErrf(p.file, p.line, p.col, 0, "cannot start a comment here")
		}
		p.inComment = true
		return nil
	default:
		p.startWord(r)
		return nil
	}
}

// startWord opens a new word, choosing the environment from its first rune.
func (p *parser) startWord(r rune) {
	p.inWord = true
	p.wordLine = p.line
	p.wordStart = p.col
	p.envLevel = 1
	switch r {
	case '"':
		p.env = EnvQuote
	case '{':
		p.env = EnvBrace
	case '[':
		p.env = EnvBracket
	default:
		p.env = EnvBare
		p.cur.WriteRune(r)
	}
}

// feedDelimited consumes runes inside a quoted, braced or bracketed word.
// A closing delimiter preceded by a backslash stays literal.
func (p *parser) feedDelimited(r rune) {
	escaped := strings.HasSuffix(p.cur.String(), "\\")
	switch p.env {
	case EnvQuote:
		if r == '"' && !escaped {
			p.endWord()
			return
		}
	case EnvBrace:
		if !escaped {
			switch r {
			case '{':
				p.envLevel++
			case '}':
				p.envLevel--
				if p.envLevel == 0 {
					p.endWord()
					return
				}
			}
		}
	case EnvBracket:
		if !escaped {
			switch r {
			case '[':
				p.envLevel++
			case ']':
				p.envLevel--
				if p.envLevel == 0 {
					p.endWord()
					return
				}
			}
		}
	}
	p.cur.WriteRune(r)
}

func (p *parser) feedBare(r rune) error {
	switch r {
	case ' ', '\t':
		p.endWord()
	case '\n', ';':
		p.endWord()
		p.endCommand()
	case '#':
		return scriptErrf(p.file, p.line, p.col, 0, "cannot start a comment here")
	case '[':
		// A bracket opening mid-word starts a nested command word.
		p.endWord()
		p.inWord = true
		p.wordLine = p.line
		p.wordStart = p.col
		p.envLevel = 1
		p.env = EnvBracket
	default:
		p.cur.WriteRune(r)
	}
	return nil
}

func (p *parser) endWord() {
	p.words = append(p.words, Word{
		Text:  p.cur.String(),
		Line:  p.wordLine,
		Start: p.wordStart,
		Env:   p.env,
	})
	p.cur.Reset()
	p.inWord = false
	p.env = EnvBare
	p.envLevel = 0
}

func (p *parser) endCommand() {
	cmd := Command{Words: p.words, File: p.file, Line: p.line}
	if len(p.words) > 0 {
		first, last := p.words[0], p.words[len(p.words)-1]
		cmd.Line = first.Line
		cmd.Char1 = first.Start
		cmd.Char2 = last.Start + len(last.Text) + envWidth(last.Env)
	}
	p.cmds = append(p.cmds, cmd)
	p.words = nil
}

// envWidth is the width of the delimiters around a word of the given
// environment, used to compute command end columns.
func envWidth(env Env) int {
	if env == EnvBare {
		return 0
	}
	return 2
}
