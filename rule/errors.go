package rule

import "errors"

// Construction errors. They are returned eagerly by the New* constructors and
// by Decode, never at evaluation time.
var (
	ErrInvalidMarker        = errors.New("invalid marker")
	ErrDuplicateMarker      = errors.New("duplicate marker")
	ErrDuplicateRuleKey     = errors.New("duplicate converter rule key")
	ErrEmptyCommands        = errors.New("commands must not be empty")
	ErrEmptyTargets         = errors.New("target parameters must not be empty")
	ErrEmptyTargetString    = errors.New("target string must not be empty")
	ErrUnknownConditionType = errors.New("unknown condition type")
	ErrUnknownAction        = errors.New("unknown action")
	ErrUnknownMatchMode     = errors.New("unknown match mode")
	ErrUnknownValidatorType = errors.New("unknown validator type")
	ErrInvalidPattern       = errors.New("invalid pattern")
	ErrInvalidExpression    = errors.New("invalid expression")
	ErrInvalidRange         = errors.New("invalid number range")
	ErrInvalidOptions       = errors.New("invalid options")
	ErrEmptyFilling         = errors.New("filling must not be empty")
	ErrMalformedTemplate    = errors.New("malformed command template")
	ErrSchema               = errors.New("rule document does not match schema")
)

// Evaluation errors. They abort the current device.
var (
	ErrUnresolvedPlaceholder = errors.New("unresolved placeholder")
	ErrEvaluation            = errors.New("condition evaluation failed")
)
