package secret

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapStore map[string][]byte

func (m mapStore) Set(key string, value []byte) error { m[key] = value; return nil }
func (m mapStore) Get(key string) ([]byte, error)     { return m[key], nil }
func (m mapStore) Delete(key string) error            { delete(m, key); return nil }

func TestEnvName(t *testing.T) {
	assert.Equal(t, "TRAINSET_SETTINGS_POSTGRES_SECRET", envName("trainset:settings:postgres"))
}

func TestEnvStore(t *testing.T) {
	t.Setenv("TRAINSET_SETTINGS_MYSQL_SECRET", "pw")

	v, err := EnvStore{}.Get("trainset:settings:mysql")
	require.NoError(t, err)
	assert.Equal(t, []byte("pw"), v)

	v, err = EnvStore{}.Get("trainset:settings:none")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestChain(t *testing.T) {
	first, second := mapStore{}, mapStore{"k": []byte("from-second")}
	c := Chain{first, second}

	v, err := c.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "from-second", string(v))

	require.NoError(t, c.Set("k", []byte("from-first")))
	v, _ = c.Get("k")
	assert.Equal(t, "from-first", string(v))

	require.NoError(t, c.Delete("k"))
	v, _ = c.Get("k")
	assert.Nil(t, v)
}
