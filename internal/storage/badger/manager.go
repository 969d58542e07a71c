package badger

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/creatorlogic/internal/common"
	"github.com/ternarybob/creatorlogic/internal/interfaces"
)

// Manager implements the LocalStorage interface for Badger
type Manager struct {
	*HistoryStorage
	*PartnershipStorage
	*SettingsStorage

	db     *BadgerDB
	logger arbor.ILogger
}

var _ interfaces.LocalStorage = (*Manager)(nil)

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (*Manager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := newManager(db, logger)
	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

func newManager(db *BadgerDB, logger arbor.ILogger) *Manager {
	return &Manager{
		HistoryStorage:     NewHistoryStorage(db, logger),
		PartnershipStorage: NewPartnershipStorage(db, logger),
		SettingsStorage:    NewSettingsStorage(db, logger),
		db:                 db,
		logger:             logger,
	}
}

// DB returns the underlying database connection
func (m *Manager) DB() *BadgerDB {
	return m.db
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
