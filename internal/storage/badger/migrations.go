package badger

import (
	"errors"
	"fmt"
	"strconv"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/creatorlogic/internal/models"
)

// CurrentSchemaVersion is the local cache layout written by this build.
//
//	v1: history records keyed by id only
//	v2: history records carry the normalized SeedKey index
const CurrentSchemaVersion = 2

// schemaKey lives outside badgerhold's type-prefixed keyspace
var schemaKey = []byte("_meta:schema_version")

type migration struct {
	version int
	name    string
	apply   func(b *BadgerDB) error
}

var migrations = []migration{
	{version: 2, name: "backfill history seed keys", apply: backfillSeedKeys},
}

// migrate brings an existing cache up to CurrentSchemaVersion. A cache with
// no meta record but existing history is treated as v1; an empty one starts at
// the current version.
func (b *BadgerDB) migrate() error {
	version, err := b.schemaVersion()
	if err != nil {
		return err
	}

	if version == 0 {
		count, err := b.store.Count(&models.HistoryRecord{}, nil)
		if err != nil {
			return fmt.Errorf("failed to inspect history: %w", err)
		}
		if count == 0 {
			return b.setSchemaVersion(CurrentSchemaVersion)
		}
		version = 1
	}

	for _, m := range migrations {
		if m.version <= version {
			continue
		}
		b.logger.Info().Int("version", m.version).Str("migration", m.name).Msg("Applying local schema migration")
		if err := m.apply(b); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.name, err)
		}
		if err := b.setSchemaVersion(m.version); err != nil {
			return err
		}
		version = m.version
	}

	return nil
}

func (b *BadgerDB) schemaVersion() (int, error) {
	version := 0
	err := b.store.Badger().View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(schemaKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			v, err := strconv.Atoi(string(val))
			if err != nil {
				return fmt.Errorf("corrupt schema version %q: %w", val, err)
			}
			version = v
			return nil
		})
	})
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

func (b *BadgerDB) setSchemaVersion(version int) error {
	err := b.store.Badger().Update(func(txn *badgerdb.Txn) error {
		return txn.Set(schemaKey, []byte(strconv.Itoa(version)))
	})
	if err != nil {
		return fmt.Errorf("failed to write schema version: %w", err)
	}
	return nil
}

func backfillSeedKeys(b *BadgerDB) error {
	var records []models.HistoryRecord
	if err := b.store.Find(&records, nil); err != nil {
		return err
	}
	for i := range records {
		rec := &records[i]
		key := models.SeedKey(rec.Seed)
		if rec.SeedKey == key {
			continue
		}
		rec.SeedKey = key
		if err := b.store.Upsert(rec.ID, rec); err != nil {
			return err
		}
	}
	return nil
}
