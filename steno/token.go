package steno

// TokenKind identifies the lexical category of a token.
type TokenKind string

const (
	TokenVerbTarget   TokenKind = "VERB_TARGET"
	TokenMode         TokenKind = "MODE"
	TokenDeepThinking TokenKind = "DEEP_THINKING"
	TokenPrecision    TokenKind = "PRECISION"
	TokenFlag         TokenKind = "FLAG"
	TokenPreviousRef  TokenKind = "PREVIOUS_REF"
	TokenFileRef      TokenKind = "FILE_REF"
	TokenNodeRef      TokenKind = "NODE_REF"
	TokenSymbolRef    TokenKind = "SYMBOL_REF"
	TokenAddition     TokenKind = "ADDITION"
	TokenExclusion    TokenKind = "EXCLUSION"
	TokenQuoted       TokenKind = "QUOTED"
	TokenFreeform     TokenKind = "FREEFORM"
)

// Token is one classified unit of a command string. Value carries the
// primary payload (the verb of a verb:target pair, a flag name, a
// reference body), Qualifier the secondary payload (the target of a
// verb:target pair, a flag's :value suffix, a reference selector), and
// Raw the exact matched substring for diagnostics.
type Token struct {
	Kind      TokenKind
	Value     string
	Qualifier string
	Raw       string
	Pos       int
}
