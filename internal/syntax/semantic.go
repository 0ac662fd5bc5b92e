package syntax

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"gopkg.microglot.org/rjson.go/internal/exc"
	"gopkg.microglot.org/rjson.go/internal/lang"
)

// Level is the severity tier of a semantic error. C is a value shape defect,
// B a lexical or structural convention violation and A a keyword reuse or
// typing violation.
type Level byte

const (
	LevelA Level = 'A'
	LevelB Level = 'B'
	LevelC Level = 'C'
)

func (l Level) String() string {
	return string(l)
}

// SemanticKind identifies the check that failed. The numeric values are the
// "Type" numbers printed in the log.
type SemanticKind uint8

const (
	SemanticInvalidDecimal   SemanticKind = 1
	SemanticEmptyKey         SemanticKind = 2
	SemanticInvalidInteger   SemanticKind = 3
	SemanticReservedKey      SemanticKind = 4
	SemanticInconsistentList SemanticKind = 6
	SemanticReservedString   SemanticKind = 7
)

func (k SemanticKind) Level() Level {
	switch k {
	case SemanticInvalidDecimal, SemanticEmptyKey:
		return LevelC
	case SemanticInvalidInteger, SemanticReservedKey:
		return LevelB
	default:
		return LevelA
	}
}

func (k SemanticKind) Description() string {
	switch k {
	case SemanticInvalidDecimal:
		return "Invalid Decimal Numbers"
	case SemanticEmptyKey:
		return "Empty Key"
	case SemanticInvalidInteger:
		return "Invalid Numbers"
	case SemanticReservedKey:
		return "Reserved Words as Dictionary Key"
	case SemanticInconsistentList:
		return "Inconsistent Types for List Elements"
	case SemanticReservedString:
		return "Reserved Words as Strings"
	default:
		return fmt.Sprintf("SemanticKind(%d)", uint8(k))
	}
}

func (k SemanticKind) code() string {
	switch k {
	case SemanticInvalidDecimal:
		return exc.CodeInvalidDecimal
	case SemanticEmptyKey:
		return exc.CodeEmptyKey
	case SemanticInvalidInteger:
		return exc.CodeInvalidInteger
	case SemanticReservedKey:
		return exc.CodeReservedKey
	case SemanticInconsistentList:
		return exc.CodeInconsistentList
	default:
		return exc.CodeReservedString
	}
}

// SemanticError is a non-fatal well-formedness violation. Token based checks
// fill Token. The list check fills Label with the offending element and
// Expected with the kind of the first element instead.
type SemanticError struct {
	Kind     SemanticKind
	Token    lang.Token
	Label    string
	Expected string
	URI      string
}

var _ exc.Exception = (*SemanticError)(nil)

func (e *SemanticError) Level() Level {
	return e.Kind.Level()
}

func (e *SemanticError) Code() string {
	return e.Kind.code()
}

func (e *SemanticError) Message() string {
	at := e.Token.String()
	if e.Kind == SemanticInconsistentList {
		at = fmt.Sprintf("<%s> (Expected Type: %s)", e.Label, e.Expected)
	}
	return fmt.Sprintf("Level %s Semantic Error: Type %d at %s: %s", e.Level(), e.Kind, at, e.Kind.Description())
}

func (e *SemanticError) Location() exc.Location {
	return exc.At(e.URI, e.Token.Start())
}

func (e *SemanticError) Error() string {
	return errorString(e)
}

// SemanticLog persists semantic errors for one input, one message per line,
// and forwards each of them to a reporter. A log belongs to a single parse run
// and must be closed when the run ends, including after a fatal abort.
type SemanticLog struct {
	lock     sync.Mutex
	w        io.Writer
	reporter exc.Reporter
	errors   []*SemanticError
	err      error
	closed   bool
}

// NewSemanticLog writes to w. If w is also an io.Closer it is closed by
// Close. The reporter may be nil.
func NewSemanticLog(w io.Writer, reporter exc.Reporter) *SemanticLog {
	return &SemanticLog{
		w:        w,
		reporter: reporter,
	}
}

func (l *SemanticLog) Log(e *SemanticError) {
	l.lock.Lock()
	l.errors = append(l.errors, e)
	if !l.closed && l.err == nil {
		_, l.err = io.WriteString(l.w, e.Message()+"\n")
	}
	l.lock.Unlock()
	if l.reporter != nil {
		_ = l.reporter.Report(e)
	}
}

// Errors returns the logged errors in the order they were found.
func (l *SemanticLog) Errors() []*SemanticError {
	l.lock.Lock()
	defer l.lock.Unlock()
	out := make([]*SemanticError, len(l.errors))
	copy(out, l.errors)
	return out
}

// Count returns the number of logged errors at the given level.
func (l *SemanticLog) Count(level Level) int {
	l.lock.Lock()
	defer l.lock.Unlock()
	n := 0
	for _, e := range l.errors {
		if e.Level() == level {
			n = n + 1
		}
	}
	return n
}

// Close releases the underlying writer. It returns the first write error, if
// any, otherwise the result of closing. Calling Close more than once is safe.
func (l *SemanticLog) Close() error {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.closed {
		return l.err
	}
	l.closed = true
	if c, ok := l.w.(io.Closer); ok {
		if err := c.Close(); err != nil && l.err == nil {
			l.err = err
		}
	}
	return l.err
}

var reservedWords = map[string]bool{
	"true":    true,
	"false":   true,
	"null":    true,
	`"true"`:  true,
	`"false"`: true,
	`"null"`:  true,
}

func isReserved(v string) bool {
	return reservedWords[v]
}

func isEmptyKey(v string) bool {
	return strings.TrimSpace(v) == "" || v == `""`
}

// isInvalidDecimal reports an empty integer or fractional part around the
// first dot.
func isInvalidDecimal(v string) bool {
	parts := strings.Split(v, ".")
	return len(parts[0]) == 0 || len(parts[1]) == 0
}

// isInvalidInteger reports a leading plus sign or a leading zero that is not
// the whole literal.
func isInvalidInteger(v string) bool {
	if len(v) == 0 {
		return false
	}
	return v[0] == '+' || (v[0] == '0' && len(v) > 1)
}
