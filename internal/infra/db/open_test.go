package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConnectionConfig(t *testing.T) {
	cfg := DefaultConnectionConfig()

	assert.Equal(t, 10, cfg.MaxOpenConns)
	assert.Equal(t, 5, cfg.MaxIdleConns)
	assert.Equal(t, 1*time.Hour, cfg.ConnMaxLifetime)
	assert.Equal(t, 30*time.Minute, cfg.ConnMaxIdleTime)
}

func TestConnectionConfig_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   ConnectionConfig
		want ConnectionConfig
	}{
		{
			name: "zero value takes defaults",
			in:   ConnectionConfig{},
			want: DefaultConnectionConfig(),
		},
		{
			name: "custom values kept",
			in: ConnectionConfig{
				MaxOpenConns:    50,
				MaxIdleConns:    20,
				ConnMaxLifetime: 2 * time.Hour,
				ConnMaxIdleTime: time.Minute,
			},
			want: ConnectionConfig{
				MaxOpenConns:    50,
				MaxIdleConns:    20,
				ConnMaxLifetime: 2 * time.Hour,
				ConnMaxIdleTime: time.Minute,
			},
		},
		{
			name: "negative values replaced",
			in:   ConnectionConfig{MaxOpenConns: -1, MaxIdleConns: 3},
			want: ConnectionConfig{
				MaxOpenConns:    10,
				MaxIdleConns:    3,
				ConnMaxLifetime: time.Hour,
				ConnMaxIdleTime: 30 * time.Minute,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.normalize())
		})
	}
}

func TestOpen_MissingDSN(t *testing.T) {
	db, err := Open(context.Background(), "", DefaultConnectionConfig())

	assert.Nil(t, db)
	assert.ErrorIs(t, err, ErrMissingDSN)
}
