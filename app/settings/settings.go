package settings

import (
	"github.com/vibast-solutions/ms-go-order-sync/app/gateway"
	"github.com/vibast-solutions/ms-go-order-sync/config"
)

// Snapshot is the read-only configuration handed to each reconciliation call.
type Snapshot struct {
	Credentials            gateway.Credentials
	RefundsByAmountEnabled bool
}

// Service resolves per-space credentials and feature toggles. The core never
// reads configuration globals; it asks the settings collaborator for a
// snapshot and passes that snapshot down explicitly.
type Service interface {
	ForSpace(spaceID uint64) (*Snapshot, bool)
}

// EnvService serves the single space configured through the environment.
type EnvService struct {
	snapshot Snapshot
}

func NewEnvService(gatewayCfg config.GatewayConfig, syncCfg config.SyncConfig) *EnvService {
	return &EnvService{
		snapshot: Snapshot{
			Credentials: gateway.Credentials{
				SpaceID:   gatewayCfg.SpaceID,
				APIUserID: gatewayCfg.APIUserID,
				APIKey:    gatewayCfg.APIKey,
			},
			RefundsByAmountEnabled: syncCfg.RefundsByAmountEnabled,
		},
	}
}

func (s *EnvService) ForSpace(spaceID uint64) (*Snapshot, bool) {
	if spaceID == 0 || spaceID != s.snapshot.Credentials.SpaceID {
		return nil, false
	}
	snapshot := s.snapshot
	return &snapshot, true
}
