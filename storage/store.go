// Package storage persists normalized asset snapshots and acceptance
// outcomes in bbolt, with an in-memory btree index for lookups.
// Snapshots are revisioned: each refresh records a new revision, and
// readers always see the latest complete one.
package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/btree"
	"go.etcd.io/bbolt"

	"github.com/karsidev/karsi/normalize"
	"github.com/karsidev/karsi/types"
)

var (
	bucketSnapshots   = []byte("snapshots")
	bucketAcceptances = []byte("acceptances")
	bucketMeta        = []byte("meta")
)

var keyCurrentRev = []byte("current_rev")

// AssetRecord tracks one asset in the index.
type AssetRecord struct {
	AssetID          string
	ApplicationName  string
	Category         types.Category
	ProjectedSavings float64
	LastSeenRev      int64
}

// Store is the on-disk snapshot and acceptance store.
type Store struct {
	mu         sync.RWMutex
	index      *btree.BTreeG[*AssetRecord]
	db         *bbolt.DB
	currentRev int64
	dir        string
}

// snapshotEnvelope is the stored form of one refresh.
type snapshotEnvelope struct {
	Revision int64                       `json:"revision"`
	TakenAt  time.Time                   `json:"taken_at"`
	Assets   []normalize.NormalizedAsset `json:"assets"`
}

// acceptanceRecord is the stored form of one acceptance outcome.
type acceptanceRecord struct {
	State    types.AcceptanceState `json:"state"`
	Revision int64                 `json:"revision"`
	At       time.Time             `json:"at"`
}

// Open creates or opens a store in the given directory.
func Open(dir string) (*Store, error) {
	dbPath := filepath.Join(dir, "karsi.db")

	db, err := bbolt.Open(dbPath, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range [][]byte{bucketSnapshots, bucketAcceptances, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{
		index: btree.NewG[*AssetRecord](32, func(a, b *AssetRecord) bool {
			return a.AssetID < b.AssetID
		}),
		db:  db,
		dir: dir,
	}

	s.loadRevision()
	if err := s.rebuildIndex(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// CurrentRevision returns the latest recorded revision.
func (s *Store) CurrentRevision() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentRev
}

// RecordSnapshot stores one refresh of normalized assets under a new
// revision and updates the index.
func (s *Store) RecordSnapshot(assets []normalize.NormalizedAsset) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rev := s.currentRev + 1
	env := snapshotEnvelope{Revision: rev, TakenAt: time.Now(), Assets: assets}

	value, err := json.Marshal(env)
	if err != nil {
		return 0, fmt.Errorf("marshal snapshot: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketSnapshots).Put(revKey(rev), value); err != nil {
			return err
		}
		return tx.Bucket(bucketMeta).Put(keyCurrentRev, revKey(rev))
	})
	if err != nil {
		return 0, fmt.Errorf("store snapshot: %w", err)
	}

	s.currentRev = rev
	for _, a := range assets {
		s.index.ReplaceOrInsert(&AssetRecord{
			AssetID:          a.AssetID,
			ApplicationName:  a.ApplicationName,
			Category:         a.Category,
			ProjectedSavings: a.TotalProjectedSavings,
			LastSeenRev:      rev,
		})
	}
	return rev, nil
}

// LatestSnapshot returns the most recent snapshot, or nil assets and
// revision zero when nothing has been recorded.
func (s *Store) LatestSnapshot() ([]normalize.NormalizedAsset, int64, error) {
	s.mu.RLock()
	rev := s.currentRev
	s.mu.RUnlock()

	if rev == 0 {
		return nil, 0, nil
	}

	var env snapshotEnvelope
	err := s.db.View(func(tx *bbolt.Tx) error {
		value := tx.Bucket(bucketSnapshots).Get(revKey(rev))
		if value == nil {
			return fmt.Errorf("snapshot for revision %d missing", rev)
		}
		return json.Unmarshal(value, &env)
	})
	if err != nil {
		return nil, 0, err
	}
	return env.Assets, env.Revision, nil
}

// Get implements the acceptance store read side.
func (s *Store) Get(assetID string) (types.AcceptanceState, error) {
	var rec acceptanceRecord
	found := false

	err := s.db.View(func(tx *bbolt.Tx) error {
		value := tx.Bucket(bucketAcceptances).Get([]byte(assetID))
		if value == nil {
			return nil
		}
		found = true
		return json.Unmarshal(value, &rec)
	})
	if err != nil {
		return types.AcceptanceNone, err
	}
	if !found {
		return types.AcceptanceNone, nil
	}
	return rec.State, nil
}

// Set implements the acceptance store write side, stamping the record
// with the current revision for audit.
func (s *Store) Set(assetID string, state types.AcceptanceState) error {
	s.mu.RLock()
	rev := s.currentRev
	s.mu.RUnlock()

	value, err := json.Marshal(acceptanceRecord{State: state, Revision: rev, At: time.Now()})
	if err != nil {
		return fmt.Errorf("marshal acceptance record: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketAcceptances).Put([]byte(assetID), value)
	})
}

// AssetsByApplication returns indexed records for one application.
func (s *Store) AssetsByApplication(name string) []*AssetRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*AssetRecord
	s.index.Ascend(func(r *AssetRecord) bool {
		if r.ApplicationName == name {
			out = append(out, r)
		}
		return true
	})
	return out
}

// GetAssetRecord looks up one asset in the index.
func (s *Store) GetAssetRecord(assetID string) (*AssetRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Get(&AssetRecord{AssetID: assetID})
}

func (s *Store) loadRevision() {
	_ = s.db.View(func(tx *bbolt.Tx) error {
		value := tx.Bucket(bucketMeta).Get(keyCurrentRev)
		if len(value) == 8 {
			s.currentRev = int64(binary.BigEndian.Uint64(value)) //nolint:gosec // revision is always positive
		}
		return nil
	})
}

// rebuildIndex restores the in-memory index from the latest snapshot.
func (s *Store) rebuildIndex() error {
	assets, rev, err := s.LatestSnapshot()
	if err != nil {
		return err
	}
	for _, a := range assets {
		s.index.ReplaceOrInsert(&AssetRecord{
			AssetID:          a.AssetID,
			ApplicationName:  a.ApplicationName,
			Category:         a.Category,
			ProjectedSavings: a.TotalProjectedSavings,
			LastSeenRev:      rev,
		})
	}
	return nil
}

func revKey(rev int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(rev)) //nolint:gosec // revision is always positive
	return key
}
