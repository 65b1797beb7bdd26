package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"beacon.dev/app/config"
)

func TestPolicyAllowedEmptyListAllowsAnyone(t *testing.T) {
	p := &config.Policy{}
	require.True(t, p.Allowed("anyone"))
}

func TestPolicyAllowedRespectsAllowList(t *testing.T) {
	p := &config.Policy{
		AllowedPubkeys: map[string]struct{}{"alice": {}},
	}
	require.True(t, p.Allowed("alice"))
	require.False(t, p.Allowed("bob"))
}

func TestFromConfigSkipsEmptyPubkeys(t *testing.T) {
	cfg := &config.C{
		AuthRequired:   true,
		AllowedPubkeys: []string{"alice", "", "bob"},
	}
	p := config.FromConfig(cfg)
	require.True(t, p.AuthRequired)
	require.Len(t, p.AllowedPubkeys, 2)
	require.True(t, p.Allowed("alice"))
	require.False(t, p.Allowed("carol"))
}

func TestStoreGetSetIsAtomic(t *testing.T) {
	s := config.NewStore(&config.Policy{AuthRequired: false})
	require.False(t, s.Get().AuthRequired)

	s.Set(&config.Policy{AuthRequired: true})
	require.True(t, s.Get().AuthRequired)
}
