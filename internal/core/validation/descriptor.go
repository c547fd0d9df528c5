package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/artpar/deployguard/internal/core/descriptor"
	"github.com/artpar/deployguard/internal/core/policy"
	"github.com/distribution/reference"
)

// =============================================================================
// Verdict
// =============================================================================

// Verdict is the single outcome of validating one descriptor.
type Verdict struct {
	Valid  bool
	Reason string
	Err    *Error // nil when Valid
}

func valid() Verdict {
	return Verdict{Valid: true, Reason: "Valid configuration"}
}

func invalid(err *Error) Verdict {
	return Verdict{Valid: false, Reason: err.Reason, Err: err}
}

// =============================================================================
// Descriptor Validation Functions
// =============================================================================

// namePattern is the allowed workload name alphabet.
var namePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateDescriptor applies the trust policy to a decoded descriptor.
//
// Rules run in order and the first failure wins:
//  1. image is a non-empty string (MissingField "image")
//  2. name is a non-empty string (MissingField "name")
//  3. image starts with the policy registry prefix (UntrustedSource)
//  4. name matches ^[A-Za-z0-9_-]+$ (InvalidName)
//  5. in allowlist mode, every args token is allowlisted (DisallowedArgument)
//
// environment, volumes and ports are not inspected here.
//
// Example:
//
//	v := ValidateDescriptor(descriptor.Document{"image": "docker.io/app", "name": "x"}, policy.Default())
//	// v.Valid == false, v.Err.Kind == KindUntrustedSource
func ValidateDescriptor(doc descriptor.Document, p policy.TrustPolicy) Verdict {
	image, ok := doc.String(descriptor.FieldImage)
	if !ok || image == "" {
		return invalid(MissingField(descriptor.FieldImage))
	}
	name, ok := doc.String(descriptor.FieldName)
	if !ok || name == "" {
		return invalid(MissingField(descriptor.FieldName))
	}

	if err := ValidateImageSource(image, p); err != nil {
		return invalid(err)
	}

	if err := ValidateName(name); err != nil {
		return invalid(err)
	}

	if err := validateArgs(doc, p); err != nil {
		return invalid(err)
	}

	return valid()
}

// ValidateImageSource checks image against the trusted registry.
// Returns nil when the image is acceptable.
func ValidateImageSource(image string, p policy.TrustPolicy) *Error {
	if !strings.HasPrefix(image, p.RegistryPrefix()) {
		return UntrustedSource()
	}
	if !p.StrictRegistry() {
		return nil
	}

	named, err := reference.ParseNormalizedNamed(image)
	if err != nil {
		return UntrustedSource()
	}
	if reference.Domain(named) != p.RegistryHost() {
		return UntrustedSource()
	}
	return nil
}

// ValidateName checks a workload name against ^[A-Za-z0-9_-]+$.
// Returns nil when the name is acceptable.
func ValidateName(name string) *Error {
	if !namePattern.MatchString(name) {
		return InvalidName()
	}
	return nil
}

// validateArgs enforces the args allowlist. Passthrough mode accepts anything.
func validateArgs(doc descriptor.Document, p policy.TrustPolicy) *Error {
	if p.ArgsMode() == policy.ArgsModePassthrough {
		return nil
	}

	args, err := descriptor.Args(doc)
	if err != nil {
		field := descriptor.FieldArgs
		var fieldErr *descriptor.FieldError
		if errors.As(err, &fieldErr) {
			field = fieldErr.Field
		}
		return DisallowedArgument(field, "args must be a sequence of strings")
	}

	for i, arg := range args {
		if !p.AllowsArg(arg) {
			return DisallowedArgument(
				fmt.Sprintf("%s[%d]", descriptor.FieldArgs, i),
				fmt.Sprintf("Argument %q is not allowed", arg),
			)
		}
	}
	return nil
}
