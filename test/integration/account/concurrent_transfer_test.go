package account

import (
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ledgerbank/transfer-engine/test/integration/testenv"
)

func TestConcurrentTransfersSettleExactly(t *testing.T) {
	container := testenv.NewTestContainer(t)
	router := container.GetRouter()
	_, token := testenv.NewUserToken(t)

	from := testenv.CreateAccount(t, router, token, 10000)
	to := testenv.CreateAccount(t, router, token, 0)

	const n = 100
	const amount = int64(100)

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			resp := testenv.Transfer(router, token, fmt.Sprintf("concurrent-%d", i), from, to, amount)
			if resp.Code != http.StatusOK {
				t.Errorf("transfer %d failed with status %d: %s", i, resp.Code, resp.Body.String())
			}
		}(i)
	}
	wg.Wait()

	require.Equal(t, float64(10000-n*amount), testenv.GetAccount(t, router, token, from)["balance"])
	require.Equal(t, float64(n*amount), testenv.GetAccount(t, router, token, to)["balance"])
}

func TestConcurrentTransfersWithSameIdempotencyKeySettleOnce(t *testing.T) {
	container := testenv.NewTestContainer(t)
	router := container.GetRouter()
	_, token := testenv.NewUserToken(t)

	from := testenv.CreateAccount(t, router, token, 5000)
	to := testenv.CreateAccount(t, router, token, 0)

	const n = 20
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			resp := testenv.Transfer(router, token, "concurrent-dup-key", from, to, 500)
			if resp.Code != http.StatusOK {
				t.Errorf("replayed transfer failed with status %d: %s", resp.Code, resp.Body.String())
			}
		}()
	}
	wg.Wait()

	require.Equal(t, float64(4500), testenv.GetAccount(t, router, token, from)["balance"])
	require.Equal(t, float64(500), testenv.GetAccount(t, router, token, to)["balance"])
}
