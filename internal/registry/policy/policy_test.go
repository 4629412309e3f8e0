package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"registrar/internal/registry/models"
	id "registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
)

type PolicySuite struct {
	suite.Suite
}

func TestPolicySuite(t *testing.T) {
	suite.Run(t, new(PolicySuite))
}

func (s *PolicySuite) TestAdminSet() {
	p := New("root")
	s.True(p.IsAdmin("root"))
	s.False(p.IsAdmin("other"))

	p.AddAdmin("other")
	s.True(p.IsAdmin("other"))
	s.Equal([]id.Principal{"other", "root"}, p.Admins())

	s.Require().NoError(p.RemoveAdmin("other"))
	s.False(p.IsAdmin("other"))
}

func (s *PolicySuite) TestRemoveLastAdminRefused() {
	p := New("root")
	err := p.RemoveAdmin("root")
	s.Require().ErrorIs(err, sentinel.ErrInvalidState)
	s.True(p.IsAdmin("root"))
}

func (s *PolicySuite) TestReservedNames() {
	p := New("root")
	for _, name := range models.ReservedNameSeed {
		s.True(p.IsReserved(name), "seed name %q should be reserved", name)
	}
	s.False(p.IsReserved("alpha"))

	p.AddReservedName("alpha")
	s.True(p.IsReserved("alpha"))
}

func (s *PolicySuite) TestShortNameGovernance() {
	p := New("root")

	// Default mode is whitelist-only: long names pass, short names need
	// approval; admins always pass.
	s.Equal(models.ShortNameModeWhitelistOnly, p.ShortNameMode())
	s.True(p.ShortNameAllowed("abcde", "user"))
	s.False(p.ShortNameAllowed("abcd", "user"))
	s.True(p.ShortNameAllowed("abcd", "root"))

	p.ApproveShortUser("user")
	s.True(p.ShortNameAllowed("abcd", "user"))
	s.Equal([]id.Principal{"user"}, p.ApprovedShortUsers())

	p.RevokeShortUser("user")
	s.False(p.ShortNameAllowed("abcd", "user"))

	p.SetShortNameMode(models.ShortNameModeOpen)
	s.True(p.ShortNameAllowed("abcd", "user"))

	p.SetShortNameMode(models.ShortNameModeClosed)
	s.False(p.ShortNameAllowed("abcd", "user"))
	s.True(p.ShortNameAllowed("abcd", "root"))
}

func TestPolicySnapshotRoundTrip(t *testing.T) {
	p := New("root")
	p.AddAdmin("second")
	p.ApproveShortUser("user")
	p.AddReservedName("alpha")
	p.SetShortNameMode(models.ShortNameModeOpen)

	restored := New("other")
	restored.Import(p.Export())

	assert.True(t, restored.IsAdmin("root"))
	assert.True(t, restored.IsAdmin("second"))
	assert.False(t, restored.IsAdmin("other"))
	assert.True(t, restored.IsReserved("alpha"))
	assert.Equal(t, models.ShortNameModeOpen, restored.ShortNameMode())
	assert.Equal(t, []id.Principal{"user"}, restored.ApprovedShortUsers())
}

func TestPolicyImportIgnoresEmptyAdmins(t *testing.T) {
	p := New("root")
	p.Import(Snapshot{Mode: models.ShortNameModeClosed})
	require.True(t, p.IsAdmin("root"))
	assert.Equal(t, models.ShortNameModeWhitelistOnly, p.ShortNameMode())
}
