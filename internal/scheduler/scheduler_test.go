package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestNewRejectsZeroInterval(t *testing.T) {
	if _, err := New(Options{}, zerolog.Nop()); !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("interval 为 0 应报错, 实际 %v", err)
	}
}

func TestRunTicksUntilCancelled(t *testing.T) {
	s, err := New(Options{Interval: 10 * time.Millisecond, Immediate: true}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	var ticks atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, func(context.Context, time.Time) error {
			if ticks.Add(1) == 3 {
				cancel()
			}
			return errors.New("tick errors do not stop the loop")
		})
	}()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("应返回 context.Canceled, 实际 %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler 未在预期时间内停止")
	}
	if ticks.Load() < 3 {
		t.Fatalf("至少应执行 3 次, 实际 %d", ticks.Load())
	}
}

func TestNextTickAligned(t *testing.T) {
	s, _ := New(Options{Interval: 5 * time.Minute, AlignToStart: true}, zerolog.Nop())
	now := time.Date(2026, 3, 1, 10, 7, 30, 0, time.UTC)
	want := time.Date(2026, 3, 1, 10, 10, 0, 0, time.UTC)
	if got := s.nextTick(now); !got.Equal(want) {
		t.Fatalf("对齐后的下一个 slot 应为 %s, 实际 %s", want, got)
	}
	if got := s.slotStart(want.Add(time.Second)); !got.Equal(want) {
		t.Fatalf("slotStart 不正确: %s", got)
	}
}

func TestStartupDelayHonoursCancel(t *testing.T) {
	s, _ := New(Options{Interval: time.Hour, StartupDelay: time.Hour}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Run(ctx, func(context.Context, time.Time) error { return nil }); !errors.Is(err, context.Canceled) {
		t.Fatalf("取消后应立即返回, 实际 %v", err)
	}
}
