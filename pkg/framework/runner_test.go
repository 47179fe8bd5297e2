package framework

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestRunnerStopsAllOnFirstExit(t *testing.T) {
	errBoom := errors.New("boom")
	r := NewRunner()
	r.Go(NamedRun("blocking", RunFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})), NamedRun("failing", RunFunc(func(context.Context) error {
		return errBoom
	})))
	err := r.Wait()
	require.ErrorIs(t, err, errBoom)
}

func TestRunnerAggregatesErrors(t *testing.T) {
	err1, err2 := errors.New("one"), errors.New("two")
	r := NewRunner()
	r.Go(RunFunc(func(context.Context) error { return err1 }),
		RunFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return err2
		}))
	err := r.Wait()
	require.Error(t, err)
	require.ErrorIs(t, err, err1)
	require.ErrorIs(t, err, err2)
	require.Contains(t, err.Error(), "multiple errors")
}

func TestRunnerStop(t *testing.T) {
	r := NewRunner()
	r.Go(RunFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))
	r.Stop()
	require.NoError(t, r.Wait())
}

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Add(nil, nil).Aggregate())
	single := errors.New("single")
	require.Equal(t, single, errs.Add(single).Aggregate())
}

func TestRunWithContextCloser(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	unblock := make(chan struct{})
	closes := 0
	closer := closerFunc(func() error {
		closes++
		close(unblock)
		return nil
	})
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := RunWithContextCloser(ctx, closer, func() error {
		<-unblock
		return errors.New("closed")
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, closes)

	closes = 0
	unblock = make(chan struct{})
	err = RunWithContextCloser(context.Background(), closerFunc(func() error {
		closes++
		return nil
	}), func() error { return nil })
	require.NoError(t, err)
	require.Equal(t, 1, closes)
}
