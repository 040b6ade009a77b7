// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package provision

import (
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/authorization/armauthorization/v2"
	"github.com/azure-samples/appservice-ai-planner/pkg/azure"
	"github.com/google/uuid"
)

// ScopeKind classifies where a binding lands relative to the deployment's own
// resource group.
type ScopeKind string

const (
	ScopeSameGroup         ScopeKind = "same-group"
	ScopeCrossGroup        ScopeKind = "cross-group"
	ScopeCrossSubscription ScopeKind = "cross-subscription"
)

// BindingScope is an explicit scope descriptor. The binder never assumes "current
// scope": existing accounts owned by another subscription or resource group bind at
// that foreign scope.
type BindingScope struct {
	SubscriptionId string
	ResourceGroup  string
	ResourceId     string
	Kind           ScopeKind
}

func scopeFor(dctx DeploymentContext, subscriptionId, resourceGroup, resourceId string) BindingScope {
	scope := BindingScope{
		SubscriptionId: subscriptionId,
		ResourceGroup:  resourceGroup,
		ResourceId:     resourceId,
	}

	switch {
	case !strings.EqualFold(subscriptionId, dctx.SubscriptionId):
		scope.Kind = ScopeCrossSubscription
	case !strings.EqualFold(resourceGroup, dctx.ResourceGroupName):
		scope.Kind = ScopeCrossGroup
	default:
		scope.Kind = ScopeSameGroup
	}

	return scope
}

// PrincipalRefKind distinguishes principals known at evaluation time from principals
// only produced by the deployment engine.
type PrincipalRefKind string

const (
	// PrincipalLiteral is an object id supplied as input, e.g. the invoking user.
	PrincipalLiteral PrincipalRefKind = "literal"
	// PrincipalSiteIdentity is the system assigned identity of the planned app
	// service. Its object id does not exist until the engine creates the site, so the
	// plan carries a stable reference the engine resolves.
	PrincipalSiteIdentity PrincipalRefKind = "site-identity"
)

// PrincipalRef identifies the principal of a binding.
type PrincipalRef struct {
	Kind  PrincipalRefKind
	Value string
}

// refKey returns the stable string hashed into the binding name. It must not change
// between evaluations of identical inputs.
func (r PrincipalRef) refKey() string {
	return string(r.Kind) + ":" + r.Value
}

// IdentityBinding grants one role to one principal at one scope. Its Name is a
// deterministic function of the (scope, principal, role) triple, so re-running the
// same deployment converges on the same assignment instead of creating a duplicate.
type IdentityBinding struct {
	Name             string
	Principal        PrincipalRef
	RoleDefinitionId string
	Scope            BindingScope
	Id               string

	Parameters armauthorization.RoleAssignmentCreateParameters
}

// Namespace for deterministic role assignment names. Fixed forever; changing it would
// orphan every assignment created by earlier deployments.
var roleAssignmentNamespace = uuid.MustParse("6ba7b811-9dad-11d1-80b4-00c04fd430c8")

func bindingName(scope BindingScope, principal PrincipalRef, roleDefinitionId string) string {
	seed := scope.ResourceId + "|" + principal.refKey() + "|" + roleDefinitionId
	return uuid.NewSHA1(roleAssignmentNamespace, []byte(seed)).String()
}

// bindingSet accumulates bindings while deduplicating on the deterministic name.
type bindingSet struct {
	trace    *Trace
	bindings []*IdentityBinding
	seen     map[string]bool
}

func newBindingSet(trace *Trace) *bindingSet {
	return &bindingSet{trace: trace, seen: map[string]bool{}}
}

// add appends a binding unless the principal or the target scope is empty. An empty
// principal would be rejected by the provider, so it is skipped proactively; an empty
// scope means the target subsystem is disabled or its reference is broken.
func (s *bindingSet) add(principal PrincipalRef, principalType armauthorization.PrincipalType, roleDefinitionId string, scope BindingScope) {
	if principal.Value == "" {
		s.trace.skipBinding(fmt.Sprintf(
			"role %s: empty principal (%s)", roleDefinitionId, principal.Kind))
		return
	}
	if scope.ResourceId == "" {
		s.trace.skipBinding(fmt.Sprintf(
			"role %s for %s: empty target scope", roleDefinitionId, principal.refKey()))
		return
	}

	name := bindingName(scope, principal, roleDefinitionId)
	if s.seen[name] {
		return
	}
	s.seen[name] = true

	s.bindings = append(s.bindings, &IdentityBinding{
		Name:             name,
		Principal:        principal,
		RoleDefinitionId: roleDefinitionId,
		Scope:            scope,
		Id:               azure.RoleAssignmentRID(scope.ResourceId, name),
		Parameters: armauthorization.RoleAssignmentCreateParameters{
			Properties: &armauthorization.RoleAssignmentProperties{
				PrincipalID:      to.Ptr(principal.Value),
				PrincipalType:    to.Ptr(principalType),
				RoleDefinitionID: to.Ptr(azure.RoleDefinitionRID(scope.SubscriptionId, roleDefinitionId)),
			},
		},
	})
}
