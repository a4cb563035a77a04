package paramstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ssmAPI is the minimal AWS SSM interface required by SSM.
// *ssm.Client from aws-sdk-go-v2 satisfies this interface.
type ssmAPI interface {
	GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// Getter resolves a named secret. Consumers depend on this interface rather
// than a concrete client so they remain testable without real lookups.
type Getter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// Env resolves secrets straight from environment variables. It is the default
// when no SSM parameter prefix is configured.
type Env struct{}

func (Env) GetParameter(_ context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("paramstore: name is required")
	}
	v := os.Getenv(name)
	if v == "" {
		return "", fmt.Errorf("paramstore: environment variable %s is not set", name)
	}
	return v, nil
}

// SSM resolves secrets from AWS SSM Parameter Store. Logical names like
// DISCORD_TOKEN map to <prefix>/discord-token.
type SSM struct {
	api    ssmAPI
	prefix string
}

// NewSSM creates an SSM getter with the given API implementation and
// parameter prefix.
func NewSSM(api ssmAPI, prefix string) (*SSM, error) {
	if api == nil {
		return nil, errors.New("paramstore: api must not be nil")
	}
	prefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return nil, errors.New("paramstore: parameter prefix must not be empty")
	}
	return &SSM{api: api, prefix: prefix}, nil
}

func (s *SSM) GetParameter(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("paramstore: name is required")
	}
	param := s.parameterName(name)

	withDecryption := true
	out, err := s.api.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           &param,
		WithDecryption: &withDecryption,
	})
	if err != nil {
		return "", fmt.Errorf("paramstore: get parameter %q: %w", param, err)
	}
	if out == nil || out.Parameter == nil || out.Parameter.Value == nil {
		return "", errors.New("paramstore: parameter missing value")
	}
	return *out.Parameter.Value, nil
}

// parameterName turns a logical env-style name into the stored parameter
// path: DISCORD_TOKEN -> <prefix>/discord-token.
func (s *SSM) parameterName(name string) string {
	return s.prefix + "/" + strings.ToLower(strings.ReplaceAll(name, "_", "-"))
}
