package query

import "errors"

// ErrInvalidCondition is returned for filter expressions that are
// syntactically well-formed OData but reference something the compiler
// refuses to evaluate: a property reference in a table-name query, a
// binary literal used in a comparison, or an unparsable datetime body.
// Callers map this to their own "query condition invalid" error kind.
var ErrInvalidCondition = errors.New("query: invalid filter condition")

// ErrSyntax is returned for filter text the tokenizer or parser cannot
// make sense of at all (unterminated string, unbalanced parens,
// unexpected token).
var ErrSyntax = errors.New("query: filter syntax error")
