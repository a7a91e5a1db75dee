package policyrego

import (
	"context"
	"errors"

	"yundao/internal/domain"

	"github.com/open-policy-agent/opa/rego"
)

const authzQuery = "data.yundao.authz.allow"

// The capability policy: admins pass outright, everyone else needs the
// required permission in their resolved permission set.
const authzModule = `package yundao.authz

default allow = false

allow {
	input.roles[_] == "admin"
}

allow {
	input.permissions[_] == input.required
}
`

type authzInput struct {
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
	Required    string   `json:"required"`
}

// Authorizer evaluates the capability check the routing layer runs after
// the gateway has admitted a request.
type Authorizer struct {
	query rego.PreparedEvalQuery
}

func NewAuthorizer(ctx context.Context) (*Authorizer, error) {
	r := rego.New(
		rego.Query(authzQuery),
		rego.Module("authz.rego", authzModule),
	)
	prepared, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, err
	}
	return &Authorizer{query: prepared}, nil
}

func (a *Authorizer) Require(ctx context.Context, principal domain.Principal, required string) error {
	if required == "" {
		return nil
	}
	if principal.Account == "" {
		return domain.ErrForbidden
	}
	results, err := a.query.Eval(ctx, rego.EvalInput(authzInput{
		Roles:       principal.Roles,
		Permissions: principal.Permissions,
		Required:    required,
	}))
	if err != nil {
		return err
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return errors.New("empty policy result")
	}
	allowed, ok := results[0].Expressions[0].Value.(bool)
	if !ok || !allowed {
		return domain.ErrForbidden
	}
	return nil
}
