package watch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIsBuildInputRecognizesSourceAndHeaderExtensions(t *testing.T) {
	for _, name := range []string{"a.c", "a.cc", "a.cpp", "a.cxx", "a.h", "a.hh", "a.hpp", "a.hxx", "a.rc"} {
		require.True(t, isBuildInput(name), "%s should be treated as a build input", name)
	}
}

func TestIsBuildInputRecognizesModuleDeclarationFiles(t *testing.T) {
	require.True(t, isBuildInput("module.ebuild.cs"))
	require.True(t, isBuildInput("widget.cs"))
}

func TestIsBuildInputRejectsUnrelatedFiles(t *testing.T) {
	require.False(t, isBuildInput("README.md"))
	require.False(t, isBuildInput("notes.txt"))
}

func TestNewDefaultsDebounceAndCronSchedule(t *testing.T) {
	dir := t.TempDir()
	w, err := New(Options{Roots: []string{dir}}, func(ctx context.Context) error { return nil })
	require.NoError(t, err)
	defer w.fsw.Close()

	require.Equal(t, 300*time.Millisecond, w.opts.Debounce)
	require.Equal(t, "*/2 * * * *", w.opts.CronSchedule)
}

func TestNewHonorsExplicitOptions(t *testing.T) {
	dir := t.TempDir()
	w, err := New(Options{
		Roots:        []string{dir},
		Debounce:     50 * time.Millisecond,
		CronSchedule: "*/5 * * * *",
	}, func(ctx context.Context) error { return nil })
	require.NoError(t, err)
	defer w.fsw.Close()

	require.Equal(t, 50*time.Millisecond, w.opts.Debounce)
	require.Equal(t, "*/5 * * * *", w.opts.CronSchedule)
}

func TestRunInvokesBuildOnTriggerAndRespectsCancellation(t *testing.T) {
	dir := t.TempDir()
	calls := make(chan struct{}, 1)
	w, err := New(Options{Roots: []string{dir}, Debounce: 10 * time.Millisecond}, func(ctx context.Context) error {
		calls <- struct{}{}
		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	w.trigger <- struct{}{}

	select {
	case <-calls:
	case <-time.After(2 * time.Second):
		t.Fatal("build function was not invoked after a manual trigger")
	}

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}
