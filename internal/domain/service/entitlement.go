package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/veonhoon/bible-reader-sub000/internal/domain"
	"github.com/veonhoon/bible-reader-sub000/internal/domain/contract"
)

// storeEntitlement trusts the subscription status written to the local store
// by the subscription collaborator
type storeEntitlement struct {
	kv contract.KeyValueRepo
}

func (e *storeEntitlement) IsEntitled(ctx context.Context) (bool, error) {
	status, ok, err := e.kv.GetItem(ctx, domain.KeySubscriptionStatus)
	if err != nil {
		return false, fmt.Errorf("failed to read subscription status: %w", err)
	}
	if !ok {
		return false, nil
	}

	switch strings.ToLower(strings.TrimSpace(status)) {
	case "active", "trialing":
		return true, nil
	}
	return false, nil
}

type alwaysEntitled struct{}

func (alwaysEntitled) IsEntitled(context.Context) (bool, error) {
	return true, nil
}

// NewEntitlement returns the entitlement oracle for mode
func NewEntitlement(mode string, kv contract.KeyValueRepo) contract.Entitlement {
	if mode == domain.EntitlementModeAlways {
		return alwaysEntitled{}
	}
	return &storeEntitlement{kv: kv}
}
