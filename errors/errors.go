package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseResolve  Phase = "resolve"  // size/alignment resolution
	PhaseSequence Phase = "sequence" // member placement
	PhasePromote  Phase = "promote"  // anonymous member promotion
	PhaseConfig   Phase = "config"   // ABI profile validation
	PhaseLoad     Phase = "load"     // reading input files
	PhaseParse    Phase = "parse"    // decoding type-tree and profile documents
	PhaseVerify   Phase = "verify"   // checking a computed layout
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidAttribute Kind = "invalid_attribute"
	KindBitfieldTooWide  Kind = "bitfield_too_wide"
	KindTrailingMember   Kind = "trailing_member_after_flexible_array"
	KindFlexibleInUnion  Kind = "flexible_array_in_union"
	KindUnsupported      Kind = "unsupported_construct"
	KindDuplicateMember  Kind = "duplicate_member"
	KindInvalidProfile   Kind = "invalid_profile"
	KindInvalidInput     Kind = "invalid_input"
	KindNotFound         Kind = "not_found"
	KindInvariant        Kind = "invariant_violated"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	CType  string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.CType != "" {
		b.WriteString(": C type ")
		b.WriteString(e.CType)
	}

	if e.Detail != "" {
		if e.CType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// PathString returns the member path joined with dots.
func (e *Error) PathString() string {
	return strings.Join(e.Path, ".")
}

// Prefix returns a copy of e whose path starts with segs.
// Empty segments are dropped.
func (e *Error) Prefix(segs ...string) *Error {
	out := *e
	path := make([]string, 0, len(segs)+len(e.Path))
	for _, s := range segs {
		if s != "" {
			path = append(path, s)
		}
	}
	out.Path = append(path, e.Path...)
	return &out
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the member path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// CType sets the C type name
func (b *Builder) CType(t string) *Builder {
	b.err.CType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// InvalidAttribute creates an invalid attribute error
func InvalidAttribute(path []string, detail string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindInvalidAttribute,
		Path:   path,
		Detail: detail,
	}
}

// NotPowerOfTwo creates an invalid attribute error for an alignment or pack value
func NotPowerOfTwo(path []string, attr string, n int64) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindInvalidAttribute,
		Path:   path,
		Detail: fmt.Sprintf("%s(%d) is not a power of two", attr, n),
		Value:  n,
	}
}

// BitfieldTooWide creates a bitfield width error
func BitfieldTooWide(path []string, base string, width, capacity int64) *Error {
	return &Error{
		Phase:  PhaseSequence,
		Kind:   KindBitfieldTooWide,
		Path:   path,
		CType:  base,
		Detail: fmt.Sprintf("width %d exceeds storage unit of %d bits", width, capacity),
		Value:  width,
	}
}

// TrailingMember creates an error for a member declared after a flexible array member
func TrailingMember(path []string, flexible string) *Error {
	return &Error{
		Phase:  PhaseSequence,
		Kind:   KindTrailingMember,
		Path:   path,
		Detail: fmt.Sprintf("member follows flexible array member %q", flexible),
	}
}

// FlexibleInUnion creates an error for a flexible array member inside a union
func FlexibleInUnion(path []string) *Error {
	return &Error{
		Phase:  PhaseSequence,
		Kind:   KindFlexibleInUnion,
		Path:   path,
		Detail: "flexible array member not allowed in union",
	}
}

// Unsupported creates an unsupported construct error
func Unsupported(phase Phase, path []string, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Path:   path,
		Detail: what,
	}
}

// DuplicateMember creates a duplicate member error
func DuplicateMember(path []string, name string) *Error {
	return &Error{
		Phase:  PhasePromote,
		Kind:   KindDuplicateMember,
		Path:   path,
		Detail: fmt.Sprintf("duplicate member %q", name),
	}
}

// InvalidProfile creates an ABI profile validation error
func InvalidProfile(profile string, cause error) *Error {
	return &Error{
		Phase:  PhaseConfig,
		Kind:   KindInvalidProfile,
		Detail: fmt.Sprintf("profile %q", profile),
		Cause:  cause,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Load creates a file loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidInput,
		Detail: detail,
		Cause:  cause,
	}
}

// ParseFailed creates a parsing error
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidInput,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}

// Invariant creates an error for a computed layout that breaks a layout rule
func Invariant(path []string, format string, args ...any) *Error {
	return &Error{
		Phase:  PhaseVerify,
		Kind:   KindInvariant,
		Path:   path,
		Detail: fmt.Sprintf(format, args...),
	}
}

// IsLayoutKind reports whether k describes a construct the engine rejected,
// as opposed to malformed input or configuration.
func IsLayoutKind(k Kind) bool {
	switch k {
	case KindInvalidAttribute, KindBitfieldTooWide, KindTrailingMember,
		KindFlexibleInUnion, KindUnsupported, KindDuplicateMember, KindInvariant:
		return true
	}
	return false
}
