package database

import (
	"testing"

	"musicd/internal/logger"

	"github.com/stretchr/testify/assert"
)

func TestDB_StructCreation(t *testing.T) {
	log := logger.New("test")

	db := &DB{
		log:  log,
		path: "/tmp/cache.sqlite3",
	}

	assert.NotNil(t, db)
	assert.Equal(t, log, db.log)
	assert.Equal(t, "/tmp/cache.sqlite3", db.path)
	assert.Nil(t, db.SQL)
}

func TestInitializeDB_RejectsEmptyPath(t *testing.T) {
	db := &DB{log: logger.New("test")}

	err := db.initializeDB()
	assert.Error(t, err)
}

func TestClose_NilSQLIsNoOp(t *testing.T) {
	db := &DB{log: logger.New("test")}

	assert.NoError(t, db.Close())
}
