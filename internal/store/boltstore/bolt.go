// Package boltstore persists the Repository contract (C4) to an
// embedded go.etcd.io/bbolt file: one bucket per ObjectFqdn.ObjType,
// keyed by the canonical ArtifactId string.
package boltstore

import (
	"encoding/json"
	"time"

	bolt "go.etcd.io/bbolt"

	metaerrors "github.com/meta-secret/meta-secret/internal/errors"
	"github.com/meta-secret/meta-secret/internal/model"
)

var allBuckets = [][]byte{
	[]byte(model.ObjDeviceCreds),
	[]byte(model.ObjUserCreds),
	[]byte(model.ObjDbTail),
	[]byte(model.ObjVaultLog),
	[]byte(model.ObjVault),
	[]byte(model.ObjVaultStatus),
	[]byte(model.ObjDeviceLog),
	[]byte(model.ObjSsDeviceLog),
	[]byte(model.ObjSsLog),
	[]byte(model.ObjSsDistribution),
	[]byte(model.ObjSsClaim),
	[]byte(model.ObjSsDistributionStatus),
}

// Store is a bbolt-backed Repository implementation.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if absent) a bbolt file at path and ensures one
// bucket per object kind exists.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, metaerrors.Wrap(metaerrors.KindTransport, "failed to open bolt store", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, metaerrors.Wrap(metaerrors.KindTransport, "failed to initialize bolt buckets", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying bbolt file handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Save(event model.KvLogEvent) (model.ArtifactId, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return model.ArtifactId{}, metaerrors.Wrap(metaerrors.KindInvalidCast, "failed to encode event", err)
	}

	id := event.Key.ObjId
	err = s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(id.Fqdn.ObjType))
		if bucket == nil {
			return metaerrors.New(metaerrors.KindInvalidCast, "unknown object kind: "+id.Fqdn.ObjType)
		}
		if bucket.Get([]byte(id.String())) != nil {
			return metaerrors.ErrConflict
		}
		return bucket.Put([]byte(id.String()), payload)
	})
	if err != nil {
		return model.ArtifactId{}, err
	}
	return id, nil
}

func (s *Store) FindOne(id model.ArtifactId) (model.KvLogEvent, bool, error) {
	var event model.KvLogEvent
	found := false

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(id.Fqdn.ObjType))
		if bucket == nil {
			return nil
		}
		raw := bucket.Get([]byte(id.String()))
		if raw == nil {
			return nil
		}
		found = true
		return json.Unmarshal(raw, &event)
	})
	if err != nil {
		return model.KvLogEvent{}, false, metaerrors.Wrap(metaerrors.KindInvalidCast, "failed to decode event", err)
	}
	return event, found, nil
}

func (s *Store) GetKey(id model.ArtifactId) (model.ArtifactId, bool, error) {
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(id.Fqdn.ObjType))
		if bucket == nil {
			return nil
		}
		found = bucket.Get([]byte(id.String())) != nil
		return nil
	})
	if err != nil {
		return model.ArtifactId{}, false, err
	}
	if !found {
		return model.ArtifactId{}, false, nil
	}
	return id, true, nil
}

func (s *Store) Delete(id model.ArtifactId) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(id.Fqdn.ObjType))
		if bucket == nil {
			return nil
		}
		return bucket.Delete([]byte(id.String()))
	})
}
