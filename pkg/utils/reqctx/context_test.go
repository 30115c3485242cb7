package reqctx_test

import (
	"context"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ghauth/pkg/domain/model/principal"
	"github.com/secmon-lab/ghauth/pkg/utils/reqctx"
)

func TestRequestContextWriteOnce(t *testing.T) {
	rc := reqctx.New("req-1")
	first := principal.New("github", []principal.Claim{{Type: "login", Value: "octocat"}}, "tok")
	second := principal.New("aad", nil, "")

	gt.True(t, rc.SetIdentity(first))
	gt.False(t, rc.SetIdentity(second))
	gt.False(t, rc.SetIdentity(nil))

	got, ok := rc.Identity()
	gt.True(t, ok)
	gt.Equal(t, got.AuthenticationType(), "github")
	gt.Equal(t, rc.ID(), "req-1")
}

func TestRequestContextConcurrentSet(t *testing.T) {
	rc := reqctx.New("req-race")

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rc.SetIdentity(principal.New("github", nil, "")) {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	gt.Equal(t, wins, 1)
}

func TestAttachAndCurrent(t *testing.T) {
	t.Run("no context attached", func(t *testing.T) {
		gt.Nil(t, reqctx.Current(context.Background()))
		_, ok := reqctx.CurrentIdentity(context.Background())
		gt.False(t, ok)
	})

	t.Run("visible through derived contexts and goroutines", func(t *testing.T) {
		rc := reqctx.New("req-2")
		ctx := reqctx.Attach(context.Background(), rc)
		derived, cancel := context.WithCancel(ctx)
		defer cancel()

		done := make(chan *reqctx.RequestContext)
		go func() { done <- reqctx.Current(derived) }()

		gt.Equal(t, <-done, rc)
	})

	t.Run("detach clears continuations", func(t *testing.T) {
		rc := reqctx.New("req-3")
		ctx := reqctx.Attach(context.Background(), rc)
		continuation := context.WithoutCancel(ctx)

		reqctx.Detach(ctx)

		gt.Nil(t, reqctx.Current(ctx))
		gt.Nil(t, reqctx.Current(continuation))
	})

	t.Run("attaching a new context invalidates the previous one", func(t *testing.T) {
		first := reqctx.New("first")
		second := reqctx.New("second")

		ctx1 := reqctx.Attach(context.Background(), first)
		ctx2 := reqctx.Attach(ctx1, second)

		gt.Nil(t, reqctx.Current(ctx1))
		gt.Equal(t, reqctx.Current(ctx2).ID(), "second")
	})
}

func TestRequestIsolation(t *testing.T) {
	base := context.Background()

	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rc := reqctx.New("req")
			ctx := reqctx.Attach(base, rc)
			defer reqctx.Detach(ctx)

			login := string(rune('a' + i))
			rc.SetIdentity(principal.New("github", []principal.Claim{{Type: "login", Value: login}}, ""))

			id, ok := reqctx.CurrentIdentity(ctx)
			if ok {
				results[i], _ = id.First("login")
			}
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		gt.Equal(t, got, string(rune('a'+i)))
	}
}
