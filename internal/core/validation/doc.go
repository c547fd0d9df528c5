// Package validation provides pure trust-policy checks for deployment descriptors.
//
// This package contains the functional core logic that decides whether a
// decoded descriptor is safe to act on. All functions are pure (no I/O, no
// side effects): a failed check never spawns a process.
//
// # Functions
//
//   - ValidateDescriptor: Apply the trust policy rules in order, stopping at the first failure
//   - ValidateName: Check a workload name against the allowed character set
//
// # Usage
//
// The orchestrator validates before anything else:
//
//	verdict := validation.ValidateDescriptor(doc, trustPolicy)
//	if !verdict.Valid {
//	    // Return 400 Bad Request with verdict.Reason
//	}
//
// # Guarantees
//
// The registry rule is a literal prefix match on the image string. It is
// weaker than registry validation: with prefix "registry.example.com" the
// image "registry.example.com.attacker.io/app" also passes. Enable
// StrictRegistry on the policy to additionally require the parsed registry
// domain to equal the prefix host.
package validation
