package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Adapter is one gateway's view of the callback pipeline.
type Adapter interface {
	// Name returns the route key of the gateway.
	Name() string

	// Parse extracts the canonical fields; a missing required field is
	// ErrMalformedPayload.
	Parse(env *Envelope) (*ParsedCallback, error)

	// Authenticate checks the callback. It never mutates state; gateways that
	// need an out-of-band confirmation perform the lookup here.
	Authenticate(ctx context.Context, env *Envelope, parsed *ParsedCallback) VerificationResult

	// MapStatus maps a gateway status to an Outcome. Unknown is Ignored.
	MapStatus(raw string) Outcome

	// AckBody builds the acknowledgment body the gateway's protocol expects.
	AckBody(ok bool, message string) map[string]interface{}
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func payloadValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// decodePayload unmarshals the raw body into dst and enforces its validate tags.
func decodePayload(provider string, env *Envelope, dst interface{}) error {
	if err := json.Unmarshal(env.RawBody, dst); err != nil {
		return &RejectionError{Kind: ErrMalformedPayload, Provider: provider, Reason: "invalid JSON body", Err: err}
	}
	if err := payloadValidator().Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, strings.TrimPrefix(fe.Namespace(), reflect.TypeOf(dst).Elem().Name()+"."))
			}
			return &RejectionError{
				Kind:     ErrMalformedPayload,
				Provider: provider,
				Reason:   fmt.Sprintf("missing or invalid fields: %s", strings.Join(fields, ", ")),
				Err:      err,
			}
		}
		return &RejectionError{Kind: ErrMalformedPayload, Provider: provider, Reason: err.Error(), Err: err}
	}
	return nil
}

// statusBody is the {"status": ...} acknowledgment used by most gateways.
func statusBody(ok bool, message string) map[string]interface{} {
	if ok {
		return map[string]interface{}{"status": "success"}
	}
	return map[string]interface{}{"status": "error", "message": message}
}

// successBody is the {"success": ...} acknowledgment used by Tripay and Qrispw.
func successBody(ok bool, message string) map[string]interface{} {
	if ok {
		return map[string]interface{}{"success": true}
	}
	return map[string]interface{}{"success": false, "message": message}
}

func statusIn(raw string, set ...string) bool {
	for _, s := range set {
		if raw == s {
			return true
		}
	}
	return false
}
