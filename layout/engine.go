package layout

import (
	stderrors "errors"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/clayout/abi"
	"github.com/wippyai/clayout/ctype"
	"github.com/wippyai/clayout/errors"
	"github.com/wippyai/clayout/layout/internal/calc"
)

// Engine computes and memoizes layouts. The zero value is not usable; call
// NewEngine.
type Engine struct {
	calcs   sync.Map // abi.Profile -> *calc.Calculator
	results sync.Map // resultKey -> *Result
}

type resultKey struct {
	root    ctype.Type
	profile abi.Profile
}

func NewEngine() *Engine {
	return &Engine{}
}

var defaultEngine = NewEngine()

// Compute lays out root for profile using the package's shared engine.
func Compute(root ctype.Type, profile abi.Profile) (*Result, error) {
	return defaultEngine.Compute(root, profile)
}

// Compute lays out root for profile. Repeated calls with the same root node
// and profile are served from the cache and return equal copies.
func (e *Engine) Compute(root ctype.Type, profile abi.Profile) (*Result, error) {
	if ctype.IsNil(root) {
		return nil, errors.InvalidInput(errors.PhaseResolve, "nil root type")
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	key := resultKey{root: root, profile: profile}
	if cached, ok := e.results.Load(key); ok {
		return cached.(*Result).clone(), nil
	}

	l, err := e.calculator(profile).Layout(root)
	if err != nil {
		return nil, withRoot(err, root)
	}

	res, err := newResult(root, profile.Name, l)
	if err != nil {
		return nil, withRoot(err, root)
	}

	e.results.Store(key, res)
	Logger().Debug("layout computed",
		zap.String("type", root.String()),
		zap.String("profile", profile.Name),
		zap.Int64("size", res.Size),
		zap.Int64("align", res.Align),
		zap.Int("members", len(res.Members)))
	return res.clone(), nil
}

// ComputeAll lays out every declaration in order, stopping at the first error.
func (e *Engine) ComputeAll(decls []ctype.Decl, profile abi.Profile) ([]*Result, error) {
	out := make([]*Result, 0, len(decls))
	for _, d := range decls {
		res, err := e.Compute(d.Type, profile)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

// Reset drops every cached calculator and result.
func (e *Engine) Reset() {
	e.calcs.Clear()
	e.results.Clear()
}

func (e *Engine) calculator(profile abi.Profile) *calc.Calculator {
	if c, ok := e.calcs.Load(profile); ok {
		return c.(*calc.Calculator)
	}
	c, loaded := e.calcs.LoadOrStore(profile, calc.New(profile))
	if !loaded {
		Logger().Debug("calculator created", zap.String("profile", profile.Name))
	}
	return c.(*calc.Calculator)
}

func withRoot(err error, root ctype.Type) error {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return e.Prefix(rootName(root))
	}
	return err
}
