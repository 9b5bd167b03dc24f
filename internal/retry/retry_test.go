package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errTest = errors.New("test error")

type mockRetrier struct {
	retryFunc func(ctx context.Context, op func() error) error
}

func (m *mockRetrier) RetryWithBackoff(ctx context.Context, op func() error) error {
	return m.retryFunc(ctx, op)
}

func TestTypedRetrier(t *testing.T) {
	t.Run("successful operation", func(t *testing.T) {
		retrier := &mockRetrier{
			retryFunc: func(_ context.Context, op func() error) error {
				return op()
			},
		}

		typedRetrier := NewTypedRetrier[string](retrier)
		result, err := typedRetrier.RetryWithBackoff(
			context.Background(),
			func() (string, error) {
				return "success", nil
			},
		)

		require.NoError(t, err)
		require.Equal(t, "success", result)
	})

	t.Run("failed operation", func(t *testing.T) {
		retrier := &mockRetrier{
			retryFunc: func(_ context.Context, op func() error) error {
				return errTest
			},
		}

		typedRetrier := NewTypedRetrier[string](retrier)
		result, err := typedRetrier.RetryWithBackoff(
			context.Background(),
			func() (string, error) {
				return "", errTest
			},
		)

		require.Equal(t, "", result)
		require.Equal(t, errTest, err)
	})
}

func TestNewExponentialRetrierCarriesOperationIdentity(t *testing.T) {
	retrier := NewExponentialRetrier("gateway-sync", 5*time.Second)
	require.Equal(t, "gateway-sync", retrier.name)
	require.Equal(t, 5*time.Second, retrier.maxElapsed)
}

func TestExponentialRetrier(t *testing.T) {
	t.Run("succeeds immediately", func(t *testing.T) {
		retrier := NewExponentialRetrier("test-op", time.Second)
		err := retrier.RetryWithBackoff(
			context.Background(),
			func() error {
				return nil
			},
		)

		require.NoError(t, err)
	})

	t.Run("succeeds after retries, notifying on each failed attempt", func(t *testing.T) {
		retrier := NewExponentialRetrier("test-op", 5*time.Second)
		attempts := 0

		err := retrier.RetryWithBackoff(
			context.Background(),
			func() error {
				attempts++
				if attempts < 3 {
					return errTest
				}
				return nil
			},
		)

		require.NoError(t, err)
		require.Equal(t, 3, attempts)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		retrier := NewExponentialRetrier("test-op", 0)
		ctx, cancel := context.WithCancel(context.Background())
		attempts := 0

		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()

		err := retrier.RetryWithBackoff(
			ctx,
			func() error {
				attempts++
				return errTest
			},
		)

		require.ErrorIs(t, err, context.Canceled)
	})
}

// ExampleTypedRetrier demonstrates wrapping a device-side sync attempt so
// that transient relay failures are retried under exponential backoff
// without the caller seeing individual attempt failures.
func ExampleTypedRetrier() {
	baseRetrier := NewExponentialRetrier("gateway-sync", 30*time.Second)
	syncRetrier := NewTypedRetrier[struct{}](baseRetrier)

	_, err := syncRetrier.RetryWithBackoff(
		context.Background(),
		func() (struct{}, error) {
			return struct{}{}, nil
		},
	)

	_ = err
}
