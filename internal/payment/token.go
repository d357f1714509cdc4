package payment

import (
	"paycallback/internal/pkg/utils"
)

// Callback token policies for gateways that authenticate with a shared
// x-callback-token header.
const (
	TokenStrict   = "strict"
	TokenAdvisory = "advisory"
)

// checkCallbackToken compares the received token with the configured one.
// Token values are logged by fingerprint only.
func checkCallbackToken(configured, policy, received string) VerificationResult {
	matched := configured != "" && utils.SecureEqual(configured, received)
	if matched {
		return verified()
	}

	reason := "invalid callback token"
	if configured == "" {
		reason = "callback token not configured"
	}
	if policy == TokenAdvisory {
		return VerificationResult{
			Verified:       true,
			InlineMismatch: true,
			Reason:         reason + " (advisory policy)",
			Expected:       utils.Fingerprint(configured),
			Received:       utils.Fingerprint(received),
		}
	}
	return rejected(reason, utils.Fingerprint(configured), utils.Fingerprint(received))
}
