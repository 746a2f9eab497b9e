package semcache

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	dbRedis "github.com/kailas-cloud/reachout/internal/db/redis"
	"github.com/kailas-cloud/reachout/internal/domain"
)

func TestEmbed_RedisStoreWithTTL(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	var setArgs []string
	gomock.InOrder(
		c.EXPECT().
			Do(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, cmd rueidis.Completed) rueidis.RedisResult {
				if cmd.Commands()[0] != "GET" {
					t.Errorf("expected GET first, got %v", cmd.Commands())
				}
				return mock.Result(mock.RedisNil())
			}),
		c.EXPECT().
			Do(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, cmd rueidis.Completed) rueidis.RedisResult {
				setArgs = cmd.Commands()
				return mock.Result(mock.RedisString("OK"))
			}),
	)

	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.25, 0.5}, TotalTokens: 4}}
	ce := New(inner, dbRedis.NewStoreForTest(c), nil, zap.NewNop()).
		WithModel("text-embedding-3-small").
		WithTTL(time.Hour)

	res, err := ce.Embed(context.Background(), "Headline: Staff Engineer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embedding) != 2 || res.TotalTokens != 4 {
		t.Errorf("unexpected result: %+v", res)
	}
	if len(setArgs) == 0 || setArgs[0] != "SET" {
		t.Fatalf("expected SET, got %v", setArgs)
	}
	if i := slices.Index(setArgs, "EX"); i < 0 || i+1 >= len(setArgs) || setArgs[i+1] != "3600" {
		t.Errorf("expected EX 3600 in %v", setArgs)
	}
}
