package service

import (
	"context"
	"errors"
	"time"
)

// RunReconcileBatch sweeps transactions that are neither terminal nor
// recently updated and re-reads each one from the gateway. It is the safety
// net for webhook deliveries that never arrived.
func (s *SyncService) RunReconcileBatch(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-s.syncCfg.ReconcileStaleAfter)

	stale, err := s.transactionRepo.ListStaleNonTerminal(ctx, cutoff, s.batchSize())
	if err != nil {
		return err
	}
	if len(stale) == 0 {
		return nil
	}

	s.logger.WithField("count", len(stale)).Info("Reconciling stale transactions")

	var firstErr error
	for _, tx := range stale {
		snap, ok := s.settings.ForSpace(tx.SpaceID)
		if !ok {
			s.logger.WithFields(map[string]interface{}{
				"transaction_id": tx.ID,
				"space_id":       tx.SpaceID,
			}).Warn("Skipping transaction for unconfigured space")
			continue
		}

		// Same per-entity lock as the webhook path; an entity a webhook
		// worker is busy with is picked up again on the next sweep.
		release, err := s.acquireTransactionLock(ctx, tx.ID)
		if errors.Is(err, ErrLockContended) {
			s.logger.WithField("transaction_id", tx.ID).Debug("Skipping transaction locked by another worker")
			continue
		}
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		err = s.reconcileTransactionEvent(ctx, snap, tx.ID)
		release()
		if err != nil {
			s.logger.WithError(err).WithField("transaction_id", tx.ID).Error("Reconciling transaction failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}
