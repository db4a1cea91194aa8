package client

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()

	if cfg.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", cfg.MaxAttempts)
	}
	if cfg.InitialBackoff != 1*time.Second {
		t.Errorf("InitialBackoff = %v, want 1s", cfg.InitialBackoff)
	}
	if cfg.BackoffMultiplier != 2.0 {
		t.Errorf("BackoffMultiplier = %v, want 2.0", cfg.BackoffMultiplier)
	}
}

func TestRetryConfigForErrorClass(t *testing.T) {
	tests := []struct {
		name            string
		errorClass      ErrorClass
		expectedInitial time.Duration
		expectedMax     time.Duration
	}{
		{
			name:            "server errors use short backoff",
			errorClass:      ErrorClassServer,
			expectedInitial: 1 * time.Second,
			expectedMax:     10 * time.Second,
		},
		{
			name:            "rate limit uses long backoff",
			errorClass:      ErrorClassRateLimit,
			expectedInitial: 5 * time.Second,
			expectedMax:     60 * time.Second,
		},
		{
			name:            "network errors use medium backoff",
			errorClass:      ErrorClassNetwork,
			expectedInitial: 2 * time.Second,
			expectedMax:     30 * time.Second,
		},
		{
			name:            "unknown class gets defaults",
			errorClass:      "",
			expectedInitial: 1 * time.Second,
			expectedMax:     30 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := RetryConfigForErrorClass(tt.errorClass)
			if cfg.InitialBackoff != tt.expectedInitial {
				t.Errorf("InitialBackoff = %v, want %v", cfg.InitialBackoff, tt.expectedInitial)
			}
			if cfg.MaxBackoff != tt.expectedMax {
				t.Errorf("MaxBackoff = %v, want %v", cfg.MaxBackoff, tt.expectedMax)
			}
		})
	}
}

func TestRetryWithBackoff_Success(t *testing.T) {
	calls := 0
	err := retryWithBackoff(context.Background(), func() error {
		calls++
		return nil
	}, func(error) ErrorClass { return ErrorClassServer })

	if err != nil {
		t.Errorf("retryWithBackoff() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}
}

func TestRetryWithBackoff_SuccessAfterRetry(t *testing.T) {
	calls := 0
	err := retryWithBackoff(context.Background(), func() error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	}, func(error) ErrorClass { return ErrorClassServer })

	if err != nil {
		t.Errorf("retryWithBackoff() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("fn called %d times, want 2", calls)
	}
}

func TestRetryWithBackoff_ClientErrorNoRetry(t *testing.T) {
	calls := 0
	wantErr := errors.New("not found")

	err := retryWithBackoff(context.Background(), func() error {
		calls++
		return wantErr
	}, func(error) ErrorClass { return ErrorClassClient })

	if !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want the original error", err)
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1 (client errors are not retried)", calls)
	}
}

func TestRetryWithBackoff_MaxAttemptsExhausted(t *testing.T) {
	calls := 0
	err := retryWithBackoff(context.Background(), func() error {
		calls++
		return errors.New("still broken")
	}, func(error) ErrorClass { return ErrorClassServer })

	if !errors.Is(err, ErrRetryExhausted) {
		t.Errorf("error = %v, want ErrRetryExhausted", err)
	}
	if calls != 3 {
		t.Errorf("fn called %d times, want 3", calls)
	}
}

func TestRetryWithBackoff_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := retryWithBackoff(ctx, func() error {
		calls++
		cancel() // cancel during the first backoff wait
		return errors.New("transient")
	}, func(error) ErrorClass { return ErrorClassServer })

	if !errors.Is(err, ErrContextCancelled) {
		t.Errorf("error = %v, want ErrContextCancelled", err)
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}
}
