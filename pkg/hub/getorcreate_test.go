package hub_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aussiebroadwan/atriahub/pkg/hub"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreate(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")

	tests := []struct {
		name        string
		policy      string
		getErr      error
		want        string
		wantErr     error
		wantCreates int
	}{
		{name: "hit", policy: hub.PolicyNotFound, want: "existing"},
		{name: "miss", policy: hub.PolicyNotFound, getErr: &hub.NotFoundError{Kind: "dataset"}, want: "created", wantCreates: 1},
		{name: "other error", policy: hub.PolicyNotFound, getErr: errBoom, wantErr: errBoom},
		{name: "any error creates", policy: hub.PolicyAnyError, getErr: errBoom, want: "created", wantCreates: 1},
		{name: "empty policy is not-found", getErr: errBoom, wantErr: errBoom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			creates := 0
			get := func(context.Context) (string, error) {
				if tt.getErr != nil {
					return "", tt.getErr
				}
				return "existing", nil
			}
			create := func(context.Context) (string, error) {
				creates++
				return "created", nil
			}

			got, err := hub.GetOrCreateWithPolicy(t.Context(), tt.policy, get, create)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				require.Equal(t, tt.want, got)
			}
			require.Equal(t, tt.wantCreates, creates)
		})
	}
}

func TestGetOrCreate_DefaultPolicy(t *testing.T) {
	t.Parallel()

	got, err := hub.GetOrCreate(t.Context(),
		func(context.Context) (int, error) { return 0, &hub.NotFoundError{Kind: "model"} },
		func(context.Context) (int, error) { return 42, nil },
	)
	require.NoError(t, err)
	require.Equal(t, 42, got)
}
