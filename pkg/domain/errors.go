package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownDomain is returned when an identifier or a group names a domain
	// that is not registered or was not instantiated.
	ErrUnknownDomain = errors.New("unknown domain")

	// ErrConfiguration is returned for missing backing files and for malformed
	// or unrecognized domain options.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrInvalidProportion is returned when a group proportion is outside (0, 1].
	ErrInvalidProportion = errors.New("invalid proportion")

	// ErrIndexOutOfRange is returned by Get on sources and samplers.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrLengthMismatch is returned when tables sharing a row index disagree in length.
	ErrLengthMismatch = errors.New("length mismatch")

	// ErrAssignmentNotFound is returned by assignment stores for unknown keys.
	ErrAssignmentNotFound = errors.New("assignment not found")
)

// IndexError reports an out-of-range access.
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index %d out of range [0, %d)", e.Index, e.Len)
}

func (e *IndexError) Is(target error) bool { return target == ErrIndexOutOfRange }

// CheckIndex returns an *IndexError unless 0 <= index < n.
func CheckIndex(index, n int) error {
	if index < 0 || index >= n {
		return &IndexError{Index: index, Len: n}
	}
	return nil
}

// UnknownDomainError names the identifier that could not be resolved.
type UnknownDomainError struct {
	ID string
}

func (e *UnknownDomainError) Error() string {
	return fmt.Sprintf("unknown domain %q", e.ID)
}

func (e *UnknownDomainError) Is(target error) bool { return target == ErrUnknownDomain }

// ConfigError describes a configuration failure for one domain.
type ConfigError struct {
	Domain string // Domain identifier, may be empty
	Key    string // Option key or file name involved
	Reason string // Human-readable reason
	Err    error  // Underlying cause, may be nil
}

func (e *ConfigError) Error() string {
	msg := "configuration"
	if e.Domain != "" {
		msg += fmt.Sprintf(" of domain %q", e.Domain)
	}
	if e.Key != "" {
		msg += fmt.Sprintf(" (%s)", e.Key)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Is(target error) bool { return target == ErrConfiguration }

func (e *ConfigError) Unwrap() error { return e.Err }

// LengthMismatchError reports two jointly indexed tables of different lengths.
type LengthMismatchError struct {
	Left, Right       string
	LeftLen, RightLen int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("%s has %d rows but %s has %d", e.Left, e.LeftLen, e.Right, e.RightLen)
}

func (e *LengthMismatchError) Is(target error) bool { return target == ErrLengthMismatch }

// CheckLengths returns a *LengthMismatchError when the two lengths differ.
func CheckLengths(left string, leftLen int, right string, rightLen int) error {
	if leftLen != rightLen {
		return &LengthMismatchError{Left: left, Right: right, LeftLen: leftLen, RightLen: rightLen}
	}
	return nil
}

// ProportionError reports the group carrying an invalid proportion.
type ProportionError struct {
	Group GroupKey
	Value float64
}

func (e *ProportionError) Error() string {
	return fmt.Sprintf("proportion %v of group %s is outside (0, 1]", e.Value, e.Group)
}

func (e *ProportionError) Is(target error) bool { return target == ErrInvalidProportion }
