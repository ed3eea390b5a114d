package auth

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/gophdiary/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextSession(t *testing.T) {
	var s ContextSession

	_, err := s.CurrentUserID(context.Background())
	require.ErrorIs(t, err, common.ErrUnauthenticated)

	_, err = s.CurrentUserID(WithUserID(context.Background(), ""))
	require.ErrorIs(t, err, common.ErrUnauthenticated)

	id, err := s.CurrentUserID(WithUserID(context.Background(), "u1"))
	require.NoError(t, err)
	assert.Equal(t, "u1", id)
}

func TestStaticSession(t *testing.T) {
	id, err := StaticSession("u9").CurrentUserID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u9", id)

	_, err = StaticSession("").CurrentUserID(context.Background())
	require.ErrorIs(t, err, common.ErrUnauthenticated)
}
