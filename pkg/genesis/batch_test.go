package genesis

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streaming-dev/IMA/pkg/addresses"
	"github.com/streaming-dev/IMA/pkg/contracts"
	"github.com/streaming-dev/IMA/pkg/storage"
)

func TestGenerateBatch(t *testing.T) {
	gen := contracts.NewCommunityLocker(nil, addresses.Default())

	jobs := make([]Job, 20)
	for i := range jobs {
		jobs[i] = Job{
			Generator: gen,
			Params: contracts.CommunityLockerParams{
				DeployerAddress:      testDeployer,
				ChainName:            fmt.Sprintf("schain-%d", i),
				CommunityPoolAddress: testPool,
			}.Params(),
		}
	}

	results, err := GenerateBatch(context.Background(), jobs)
	require.NoError(t, err)
	require.Len(t, results, len(jobs))

	for i, s := range results {
		name, err := storage.DecodeString(s, contracts.CommunityLockerSchainHashSlot)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("schain-%d", i), name)
	}
}

func TestGenerateBatch_Error(t *testing.T) {
	gen := contracts.NewCommunityLocker(nil, addresses.Default())

	jobs := []Job{
		{Generator: gen, Params: contracts.CommunityLockerParams{
			DeployerAddress:      testDeployer,
			ChainName:            "ok",
			CommunityPoolAddress: testPool,
		}.Params()},
		{Generator: gen, Params: contracts.Params{}},
	}

	results, err := GenerateBatch(context.Background(), jobs)
	assert.Nil(t, results)
	assert.ErrorIs(t, err, contracts.ErrMissingParameter)
	assert.Contains(t, err.Error(), "job 1")
}

func TestGenerateBatch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	jobs := []Job{{Generator: contracts.NewCommunityLocker(nil, addresses.Default()), Params: contracts.Params{}}}
	_, err := GenerateBatch(ctx, jobs)
	assert.Error(t, err)
}

func TestGenerateBatch_Empty(t *testing.T) {
	results, err := GenerateBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}
