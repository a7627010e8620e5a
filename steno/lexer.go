package steno

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// lexer splits a command string into tokens by trying an ordered list of
// matchers against the remaining suffix. The first matcher that hits at the
// current offset wins and consumes its match. Order is significant: several
// patterns overlap (a bare `~` is a precision marker, but also the first
// rune of `~deep` and `~explore`), so the list must stay exactly as built
// in newLexer.
type lexer struct {
	input    string
	pos      int
	vocab    *ResolvedVocabulary
	matchers []func() (Token, bool)
}

func newLexer(input string, vocab *ResolvedVocabulary) *lexer {
	l := &lexer{input: input, vocab: vocab}
	l.matchers = []func() (Token, bool){
		l.matchVerbTarget,
		l.matchMode,
		l.matchDeepThinking,
		l.matchPrecision,
		l.matchFlag,
		l.matchPreviousRef,
		l.matchFileRef,
		l.matchNodeRef,
		l.matchSymbolRef,
		l.matchAddition,
		l.matchExclusion,
		l.matchQuoted,
	}
	return l
}

// Tokenize never fails: anything the ordered patterns reject degrades into
// an Addition (unknown dot-modifiers) or a Freeform chunk, and every
// iteration consumes at least one byte.
func Tokenize(input string, vocab *ResolvedVocabulary) []Token {
	l := newLexer(input, vocab)
	var tokens []Token
	for {
		l.skipWhitespace()
		if l.pos >= len(l.input) {
			return tokens
		}
		tokens = append(tokens, l.next())
	}
}

func (l *lexer) next() Token {
	for _, match := range l.matchers {
		if tok, ok := match(); ok {
			l.pos += len(tok.Raw)
			return tok
		}
	}
	return l.fallback()
}

func (l *lexer) rest() string {
	return l.input[l.pos:]
}

func (l *lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		r, w := utf8.DecodeRuneInString(l.input[l.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		l.pos += w
	}
}

func (l *lexer) token(kind TokenKind, value, qualifier, raw string) Token {
	return Token{Kind: kind, Value: value, Qualifier: qualifier, Raw: raw, Pos: l.pos}
}

// matchVerbTarget recognises verb:target where verb is a known verb or
// verb alias and target is the longest run of non-whitespace characters.
// An unknown word:rest is left for the freeform fallback.
func (l *lexer) matchVerbTarget() (Token, bool) {
	rest := l.rest()
	w := wordLen(rest)
	if w == 0 || w >= len(rest) || rest[w] != ':' {
		return Token{}, false
	}
	verb := rest[:w]
	if !l.vocab.knowsVerb(verb) {
		return Token{}, false
	}
	t := nonSpaceLen(rest[w+1:])
	if t == 0 {
		return Token{}, false
	}
	return l.token(TokenVerbTarget, verb, rest[w+1:w+1+t], rest[:w+1+t]), true
}

// matchMode recognises ?mode and ~mode for known mode words.
func (l *lexer) matchMode() (Token, bool) {
	rest := l.rest()
	if len(rest) < 2 || (rest[0] != '?' && rest[0] != '~') {
		return Token{}, false
	}
	w := wordLen(rest[1:])
	if w == 0 {
		return Token{}, false
	}
	mode := rest[1 : 1+w]
	if !l.vocab.knowsMode(mode) {
		return Token{}, false
	}
	return l.token(TokenMode, mode, "", rest[:1+w]), true
}

// matchDeepThinking recognises exactly ~deep at a word boundary.
func (l *lexer) matchDeepThinking() (Token, bool) {
	rest := l.rest()
	if !strings.HasPrefix(rest, "~deep") {
		return Token{}, false
	}
	if wordLen(rest[1:]) != len("deep") {
		return Token{}, false
	}
	return l.token(TokenDeepThinking, "deep", "", "~deep"), true
}

// matchPrecision recognises a standalone ~, ! or ? followed by whitespace
// or end of input. The boundary check keeps it from eating the start of
// ~deep or ?plan, which earlier matchers own.
func (l *lexer) matchPrecision() (Token, bool) {
	rest := l.rest()
	if rest[0] != '~' && rest[0] != '!' && rest[0] != '?' {
		return Token{}, false
	}
	if len(rest) > 1 {
		r, _ := utf8.DecodeRuneInString(rest[1:])
		if !unicode.IsSpace(r) {
			return Token{}, false
		}
	}
	return l.token(TokenPrecision, rest[:1], "", rest[:1]), true
}

// matchFlag recognises .flag and .flag:qualifier for known flags. Unknown
// dot-words fall through to the fallback, which reclassifies them as
// additions.
func (l *lexer) matchFlag() (Token, bool) {
	rest := l.rest()
	if rest[0] != '.' {
		return Token{}, false
	}
	w := wordLen(rest[1:])
	if w == 0 {
		return Token{}, false
	}
	name := rest[1 : 1+w]
	if !l.vocab.knowsFlag(name) {
		return Token{}, false
	}
	consumed := 1 + w
	qualifier := ""
	if consumed < len(rest) && rest[consumed] == ':' {
		q := wordLen(rest[consumed+1:])
		if q > 0 {
			qualifier = rest[consumed+1 : consumed+1+q]
			consumed += 1 + q
		}
	}
	return l.token(TokenFlag, name, qualifier, rest[:consumed]), true
}

// matchPreviousRef recognises ^, ^^, ... with an optional word or numeric
// qualifier. Value carries the caret count.
func (l *lexer) matchPreviousRef() (Token, bool) {
	rest := l.rest()
	if rest[0] != '^' {
		return Token{}, false
	}
	count := 0
	for count < len(rest) && rest[count] == '^' {
		count++
	}
	w := wordLen(rest[count:])
	qualifier := rest[count : count+w]
	return l.token(TokenPreviousRef, strconv.Itoa(count), qualifier, rest[:count+w]), true
}

// matchFileRef recognises @name.ext with an optional .selector suffix.
// Any @-reference containing a dot lands here; dot-free ones are node
// references, which is why this matcher runs first.
func (l *lexer) matchFileRef() (Token, bool) {
	rest := l.rest()
	body, n := refBody(rest)
	if n == 0 || !strings.Contains(body, ".") {
		return Token{}, false
	}
	value, selector := splitFileRef(body)
	return l.token(TokenFileRef, value, selector, rest[:1+n]), true
}

// matchNodeRef recognises @name (no dot in the body).
func (l *lexer) matchNodeRef() (Token, bool) {
	rest := l.rest()
	body, n := refBody(rest)
	if n == 0 {
		return Token{}, false
	}
	return l.token(TokenNodeRef, body, "", rest[:1+n]), true
}

func (l *lexer) matchSymbolRef() (Token, bool) {
	rest := l.rest()
	if rest[0] != '#' {
		return Token{}, false
	}
	w := wordLen(rest[1:])
	if w == 0 {
		return Token{}, false
	}
	return l.token(TokenSymbolRef, rest[1:1+w], "", rest[:1+w]), true
}

func (l *lexer) matchAddition() (Token, bool) {
	rest := l.rest()
	if rest[0] != '+' {
		return Token{}, false
	}
	w := wordLen(rest[1:])
	if w == 0 {
		return Token{}, false
	}
	return l.token(TokenAddition, rest[1:1+w], "", rest[:1+w]), true
}

func (l *lexer) matchExclusion() (Token, bool) {
	rest := l.rest()
	if rest[0] != '-' {
		return Token{}, false
	}
	w := wordLen(rest[1:])
	if w == 0 {
		return Token{}, false
	}
	return l.token(TokenExclusion, rest[1:1+w], "", rest[:1+w]), true
}

// matchQuoted recognises "..." without embedded-quote escaping. An
// unterminated quote is left for the freeform fallback.
func (l *lexer) matchQuoted() (Token, bool) {
	rest := l.rest()
	if rest[0] != '"' {
		return Token{}, false
	}
	end := strings.IndexByte(rest[1:], '"')
	if end < 0 {
		return Token{}, false
	}
	return l.token(TokenQuoted, rest[1:1+end], "", rest[:end+2]), true
}

// fallback consumes the run until the next whitespace. Dot-prefixed chunks
// are unrecognised flags and degrade into additions; everything else is
// freeform text.
func (l *lexer) fallback() Token {
	rest := l.rest()
	n := nonSpaceLen(rest)
	chunk := rest[:n]
	l.pos += n
	if len(chunk) > 1 && chunk[0] == '.' {
		return Token{Kind: TokenAddition, Value: chunk[1:], Raw: chunk, Pos: l.pos - n}
	}
	return Token{Kind: TokenFreeform, Value: chunk, Raw: chunk, Pos: l.pos - n}
}

// refBody reads the @-reference body: word characters plus dots and
// slashes, with trailing dots excluded so "@data." does not classify as a
// file. Returns the body and its byte length.
func refBody(rest string) (string, int) {
	if rest[0] != '@' {
		return "", 0
	}
	n := 0
	for n < len(rest)-1 {
		c := rest[1+n]
		if !isWordByte(c) && c != '.' && c != '/' {
			break
		}
		n++
	}
	for n > 0 && rest[n] == '.' {
		n--
	}
	return rest[1 : 1+n], n
}

// splitFileRef splits name.ext[.selector...] into the file part and the
// selector remainder.
func splitFileRef(body string) (string, string) {
	parts := strings.SplitN(body, ".", 3)
	if len(parts) < 3 {
		return body, ""
	}
	return parts[0] + "." + parts[1], parts[2]
}

func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-'
}

// wordLen returns the byte length of the leading run of word characters
// (letters, digits, underscore, hyphen).
func wordLen(s string) int {
	n := 0
	for n < len(s) && isWordByte(s[n]) {
		n++
	}
	return n
}

func nonSpaceLen(s string) int {
	n := 0
	for n < len(s) {
		r, w := utf8.DecodeRuneInString(s[n:])
		if unicode.IsSpace(r) {
			break
		}
		n += w
	}
	return n
}
