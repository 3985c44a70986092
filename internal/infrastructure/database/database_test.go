package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	gormlogger "gorm.io/gorm/logger"
)

func TestGormLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Info, gormLevel("debug"))
	assert.Equal(t, gormlogger.Info, gormLevel(" TRACE "))
	assert.Equal(t, gormlogger.Warn, gormLevel("info"))
	assert.Equal(t, gormlogger.Warn, gormLevel(""))
}
