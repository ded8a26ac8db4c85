/*
Package query compiles OData $filter expressions into predicate
closures, without ever re-serializing them to source text or calling
into a general-purpose expression evaluator.

Compilation is two stages:

  - Tokenize (lexer.go) scans the filter character by character,
    producing a Token stream. Operator and logical keywords (eq, and,
    not, ...) and the TableName system property are rewritten to their
    canonical spellings at this stage. Quoted literals are unescaped
    ('' -> ') and their EDM type prefix (datetime, guid, binary, X) is
    captured or, for guid, discarded outright since a guid literal
    compares exactly like a plain string from here on.

  - compile (parser.go) is a small recursive-descent parser over that
    token stream implementing the standard not > and > or precedence,
    producing a tree of boolExpr/operand nodes (ast.go). Long-int
    literals are unwrapped to plain strings (longs are stored as
    strings), and a datetime literal on either side of a comparison
    marks its counterpart identifier for millisecond-epoch comparison
    instead of a string comparison.

CompileTableFilter and CompileEntityFilter adapt the same compiled tree
to the two query shapes the store supports: a table-name listing filter
(one system field, no user properties) and an entity filter
(PartitionKey/RowKey system fields plus arbitrary user properties).
Referencing a property outside of an entity filter, or using a binary
literal in any comparison, fails compilation with ErrInvalidCondition.
*/
package query
