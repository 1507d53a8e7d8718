package authflowrepo_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/carhire-site/server/authflowrepo"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRepo(t *testing.T) {
	t.Run("Take returns the state once", func(t *testing.T) {
		repo := authflowrepo.NewInMemoryRepo()
		created := time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC)
		require.NoError(t, repo.Upsert("abc", &authflowrepo.AuthFlowState{
			CodeVerifier: "verifier",
			Nonce:        "nonce",
			ReturnURL:    "/admin/theming",
			CreatedAt:    created,
		}))

		got, err := repo.Take("abc")
		require.NoError(t, err)
		require.Equal(t, "verifier", got.CodeVerifier)
		require.Equal(t, "nonce", got.Nonce)
		require.Equal(t, "/admin/theming", got.ReturnURL)

		_, err = repo.Take("abc")
		require.ErrorIs(t, err, authflowrepo.ErrStateNotFound)
	})

	t.Run("invalid input", func(t *testing.T) {
		repo := authflowrepo.NewInMemoryRepo()
		require.Error(t, repo.Upsert("", &authflowrepo.AuthFlowState{}))
		require.Error(t, repo.Upsert("abc", nil))
		require.Error(t, repo.Delete(""))
		_, err := repo.Take("")
		require.ErrorIs(t, err, authflowrepo.ErrStateNotFound)
	})

	t.Run("stored state is a copy", func(t *testing.T) {
		repo := authflowrepo.NewInMemoryRepo()
		state := &authflowrepo.AuthFlowState{Nonce: "before"}
		require.NoError(t, repo.Upsert("abc", state))
		state.Nonce = "after"

		got, err := repo.Take("abc")
		require.NoError(t, err)
		require.Equal(t, "before", got.Nonce)
	})

	t.Run("Delete and Prune", func(t *testing.T) {
		repo := authflowrepo.NewInMemoryRepo()
		now := time.Now()
		require.NoError(t, repo.Upsert("old", &authflowrepo.AuthFlowState{CreatedAt: now.Add(-time.Hour)}))
		require.NoError(t, repo.Upsert("new", &authflowrepo.AuthFlowState{CreatedAt: now}))
		require.NoError(t, repo.Upsert("gone", &authflowrepo.AuthFlowState{CreatedAt: now}))
		require.NoError(t, repo.Delete("gone"))

		require.Equal(t, 1, repo.Prune(now.Add(-10*time.Minute)))
		_, err := repo.Take("old")
		require.ErrorIs(t, err, authflowrepo.ErrStateNotFound)
		_, err = repo.Take("new")
		require.NoError(t, err)
	})
}

func TestAuthFlowStateExpired(t *testing.T) {
	created := time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC)
	state := authflowrepo.AuthFlowState{CreatedAt: created}
	require.False(t, state.Expired(created.Add(5*time.Minute), 10*time.Minute))
	require.True(t, state.Expired(created.Add(11*time.Minute), 10*time.Minute))
}
