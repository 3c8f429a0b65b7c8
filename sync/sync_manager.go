package sync

import (
	"Risker/services/game"
	"Risker/services/postgres"
	"context"
	"fmt"
	"log"
)

/*
 * 'SyncManager' keeps the in-memory registry and the PostgreSQL mirror in
 * agreement across process restarts. Reconcile runs once during bootstrap,
 * before any connection is accepted; a store failure there is fatal because
 * serving from a half-loaded registry cannot be trusted.
 */
type SyncManager struct {
	store    *postgres.Store
	registry *game.State
}

// NewSyncManager creates a new instance of the synchronization manager
func NewSyncManager(store *postgres.Store, registry *game.State) *SyncManager {
	return &SyncManager{
		store:    store,
		registry: registry,
	}
}

// Reconcile loads every lobby, player, and membership edge from PostgreSQL
// into the registry. Membership is replayed through JoinSession so the
// capacity invariants are re-checked on the way in; a row that no longer
// fits is logged and dropped rather than trusted.
func (sm *SyncManager) Reconcile(ctx context.Context) error {
	lobbies, err := sm.store.ListLobbies(ctx)
	if err != nil {
		return fmt.Errorf("error loading lobbies from PostgreSQL: %v", err)
	}

	restored := 0
	for _, lobby := range lobbies {
		sm.registry.CreateSession(lobby.ID, lobby.Name, lobby.MaxCommanders, lobby.MaxPawns, lobby.CreatedAt)

		players, err := sm.store.GetLobbyPlayers(ctx, lobby.ID)
		if err != nil {
			return fmt.Errorf("error loading players of lobby %s: %v", lobby.ID, err)
		}
		for _, player := range players {
			sm.registry.CreatePlayer(player.ID, player.Name, game.Role(player.Role))
			if err := sm.registry.JoinSession(player.ID, lobby.ID); err != nil {
				log.Printf("[SYNC] dropping stale membership %s->%s: %v", player.ID, lobby.ID, err)
				sm.registry.RemovePlayer(player.ID)
				continue
			}
			restored++
		}
	}

	log.Printf("[SYNC] restored %d lobbies and %d memberships from PostgreSQL", len(lobbies), restored)
	return nil
}
