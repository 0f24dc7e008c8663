package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	require.Equal(t,
		"app:s3cret@tcp(db.internal:3306)/workshops?charset=utf8mb4&parseTime=true&loc=UTC",
		dsn("app", "s3cret", "db.internal", "3306", "workshops"))

	// Passwordless local setups omit the colon entirely.
	require.Equal(t,
		"root@tcp(localhost:3306)/workshops?charset=utf8mb4&parseTime=true&loc=UTC",
		dsn("root", "", "localhost", "3306", "workshops"))
}

func TestPoolDefaults(t *testing.T) {
	p := Pool{}.withDefaults()
	require.Equal(t, 25, p.MaxOpen)
	require.Equal(t, 25, p.MaxIdle)
	require.Equal(t, 30*time.Minute, p.MaxLifetime)

	// MaxIdle follows MaxOpen when only the latter is set.
	p = Pool{MaxOpen: 10}.withDefaults()
	require.Equal(t, 10, p.MaxIdle)

	p = Pool{MaxOpen: 5, MaxIdle: 2, MaxLifetime: time.Minute}.withDefaults()
	require.Equal(t, Pool{MaxOpen: 5, MaxIdle: 2, MaxLifetime: time.Minute}, p)
}
