package bigcalc

import (
	"io"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"nickandperla.net/bigcalc/internal/eval"
	"nickandperla.net/bigcalc/internal/scanner"
	"nickandperla.net/bigcalc/internal/store"
	"nickandperla.net/bigcalc/internal/token"
	"nickandperla.net/bigcalc/internal/tokenizer"
)

// Errors reported by Eval. Use errors.Is to test for them; the returned
// error usually carries the source position as well.
var (
	ErrInvalidNumber     = tokenizer.ErrInvalidNumber
	ErrUnknownOperation  = tokenizer.ErrUnknownOperation
	ErrNumberExpected    = eval.ErrNumberExpected
	ErrOperationExpected = eval.ErrOperationExpected
	ErrUnmatchedParen    = eval.ErrUnmatchedParen
	ErrDivisionByZero    = eval.ErrDivisionByZero
	ErrNegativeExponent  = eval.ErrNegativeExponent
	ErrExponentTooLarge  = eval.ErrExponentTooLarge
)

// Runtime evaluates expressions and keeps their history.
//
// A Runtime evaluates one expression at a time; concurrent calls to Eval
// must be serialized by the caller.
type Runtime struct {
	evaluator *eval.Evaluator
	store     store.Store
	storeErr  error
	noHistory bool
	session   string
	logger    zerolog.Logger
}

// New creates a new runtime with the given options.
func New(opts ...Option) *Runtime {
	r := &Runtime{
		logger: zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.session == "" {
		r.session = uuid.NewString()
	}
	if r.storeErr != nil {
		r.logger.Warn().Err(r.storeErr).Msg("history database unavailable, keeping history in memory")
	}
	if r.store == nil && !r.noHistory {
		r.store = store.NewMemory()
	}

	r.evaluator = eval.New(eval.WithStackHint(16))
	r.logger.Debug().Str("session", r.session).Bool("history", !r.noHistory).Msg("runtime ready")
	return r
}

// Session returns the id recorded with this runtime's history entries.
func (r *Runtime) Session() string {
	return r.session
}

// Eval evaluates one expression.
func (r *Runtime) Eval(input string) (*big.Int, error) {
	v, err := r.run(scanner.NewFromString(input))
	r.record(input, v, err)
	return v, err
}

// EvalReader evaluates one expression read from reader until EOF.
func (r *Runtime) EvalReader(reader io.Reader) (*big.Int, error) {
	var src strings.Builder
	v, err := r.run(scanner.New(io.TeeReader(reader, &src)))
	r.record(src.String(), v, err)
	return v, err
}

// Tokens returns the token stream of input without evaluating it.
func (r *Runtime) Tokens(input string) ([]token.Token, error) {
	return scanner.NewFromString(input).All()
}

func (r *Runtime) run(s *scanner.Scanner) (*big.Int, error) {
	start := time.Now()
	for {
		item, err := s.Next()
		if err != nil {
			r.evaluator.Reset()
			return nil, err
		}
		if item.EOF {
			break
		}
		r.logger.Trace().
			Stringer("token", item.Token).
			Int("line", item.Line).
			Int("col", item.Col).
			Msg("token")
		if err := r.evaluator.HandleToken(item.Token); err != nil {
			r.evaluator.Reset()
			return nil, errors.Wrapf(err, "line %d, column %d", item.Line, item.Col)
		}
	}

	v, err := r.evaluator.Finalize()
	if err != nil {
		return nil, errors.Wrap(err, "end of input")
	}
	r.logger.Debug().Dur("elapsed", time.Since(start)).Int("bits", v.BitLen()).Msg("evaluated")
	return v, nil
}

func (r *Runtime) record(input string, v *big.Int, evalErr error) {
	if r.noHistory || r.store == nil {
		return
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return
	}
	e := store.Entry{Session: r.session, Expr: input, Time: time.Now()}
	if evalErr != nil {
		e.Err = evalErr.Error()
	} else {
		e.Result = v.String()
	}
	if err := r.store.Append(e); err != nil {
		r.logger.Warn().Err(err).Msg("failed to record history")
	}
}

// History returns up to limit recorded evaluations, newest first, across
// all sessions. limit <= 0 returns everything.
func (r *Runtime) History(limit int) ([]Entry, error) {
	if r.store == nil {
		return nil, nil
	}
	return r.store.History(limit)
}

// SessionHistory is like History but only returns this runtime's session
// when the store supports it.
func (r *Runtime) SessionHistory(limit int) ([]Entry, error) {
	if ss, ok := r.store.(store.SessionStore); ok {
		return ss.SessionHistory(r.session, limit)
	}
	return r.History(limit)
}

// Close releases resources.
func (r *Runtime) Close() error {
	if r.store != nil {
		return r.store.Close()
	}
	return nil
}
