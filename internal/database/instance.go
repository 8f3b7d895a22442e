package database

import (
	"github.com/diegoclair/checkin-scheduler/internal/domain/contract"
)

// instance implements DataManager interface
type instance struct {
	db          *DB
	messageRepo contract.MessageRepo
}

// NewInstance creates a new database instance with all repositories
func NewInstance(db *DB) contract.DataManager {
	instance := &instance{
		db: db,
	}
	instance.repoInstances()
	return instance
}

// repoInstances initializes all repositories
func (i *instance) repoInstances() {
	i.messageRepo = newMessageRepo(i.db.conn)
}

// Message returns the message repository
func (i *instance) Message() contract.MessageRepo {
	return i.messageRepo
}
