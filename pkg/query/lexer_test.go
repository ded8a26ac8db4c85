package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize_KeywordMapping(t *testing.T) {
	toks, err := Tokenize("PartitionKey eq 'p' and RowKey ne 'r'")
	require.NoError(t, err)

	require.Len(t, toks, 7)
	assert.Equal(t, Token{Kind: TokIdent, Text: "PartitionKey"}, toks[0])
	assert.Equal(t, Token{Kind: TokOp, Text: "==="}, toks[1])
	assert.Equal(t, Token{Kind: TokString, Text: "p"}, toks[2])
	assert.Equal(t, Token{Kind: TokLogical, Text: "&&"}, toks[3])
	assert.Equal(t, Token{Kind: TokOp, Text: "!=="}, toks[5])
}

func TestTokenize_TableNameRewrite(t *testing.T) {
	toks, err := Tokenize("TableName eq 'foo'")
	require.NoError(t, err)
	assert.Equal(t, Token{Kind: TokIdent, Text: "name"}, toks[0])
}

func TestTokenize_DoubledQuoteEscape(t *testing.T) {
	toks, err := Tokenize("RowKey eq 'it''s'")
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, "it's", toks[2].Text)
}

func TestTokenize_TypePrefixes(t *testing.T) {
	toks, err := Tokenize("When gt datetime'2024-01-01T00:00:00Z'")
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, "datetime", toks[2].TypePrefix)
	assert.Equal(t, "2024-01-01T00:00:00Z", toks[2].Text)

	toks, err = Tokenize("RowKey eq guid'abc-123'")
	require.NoError(t, err)
	assert.Equal(t, "", toks[2].TypePrefix)
	assert.Equal(t, "abc-123", toks[2].Text)
}

func TestTokenize_ParensWithoutWhitespace(t *testing.T) {
	toks, err := Tokenize("(RowKey eq 'a')")
	require.NoError(t, err)
	require.Len(t, toks, 5)
	assert.Equal(t, TokLParen, toks[0].Kind)
	assert.Equal(t, TokRParen, toks[4].Kind)
}

func TestTokenize_LongLiteral(t *testing.T) {
	toks, err := Tokenize("Count eq 42L")
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, TokLongLiteral, toks[2].Kind)
	assert.Equal(t, "42L", toks[2].Text)
}

func TestTokenize_UnterminatedString(t *testing.T) {
	_, err := Tokenize("RowKey eq 'abc")
	require.Error(t, err)
}
