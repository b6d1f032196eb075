package roster

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"overwatch-telegram-bot/internal/types"
)

type loaderFunc func(ctx context.Context) (types.BaseData, error)

func (f loaderFunc) FetchBaseData(ctx context.Context) (types.BaseData, error) {
	return f(ctx)
}

func TestRoster_NotReadyBeforeLoad(t *testing.T) {
	r := New()

	assert.False(t, r.Ready())
	_, err := r.Snapshot()
	assert.True(t, errors.Is(err, ErrNotReady))
}

func TestRoster_Load(t *testing.T) {
	r := New()
	err := r.Load(context.Background(), loaderFunc(func(context.Context) (types.BaseData, error) {
		return types.BaseData{
			Seasons: []types.Season{{ID: "24", Name: "S24"}, {ID: "23", Name: "S23"}},
			Heroes:  []types.Hero{{ID: "ana", Name: "安娜"}, {ID: "dva", Name: "D.Va"}},
		}, nil
	}))
	require.NoError(t, err)

	require.True(t, r.Ready())
	s, err := r.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "24", s.Latest.ID)
	assert.Len(t, s.Heroes, 2)
	assert.Equal(t, "D.Va", s.Heroes["dva"].Name)
	assert.Equal(t, "S23", s.Seasons["23"].Name)
	assert.False(t, s.LoadedAt.IsZero())
}

func TestRoster_FailedLoadKeepsState(t *testing.T) {
	r := New()

	err := r.Load(context.Background(), loaderFunc(func(context.Context) (types.BaseData, error) {
		return types.BaseData{}, errors.New("down")
	}))
	require.Error(t, err)
	assert.False(t, r.Ready())

	err = r.Load(context.Background(), loaderFunc(func(context.Context) (types.BaseData, error) {
		return types.BaseData{Heroes: []types.Hero{{ID: "ana"}}}, nil
	}))
	require.Error(t, err)
	assert.False(t, r.Ready())
}
