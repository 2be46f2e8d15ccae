package vm

import (
	"context"
	"testing"

	"github.com/benlang/ben/object"
)

func benchmarkCountdown(b *testing.B, n int, tail bool) {
	ctx := context.Background()
	initial := NewState("", countdown(n, tail), testGlobals())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		final, err := Complete(ctx, initial)
		if err != nil {
			b.Fatal(err)
		}
		result, ok := final.Result()
		if !ok || !result.Equals(object.NewNumber(0)) {
			b.Fatalf("unexpected result: %v", result)
		}
	}
}

func BenchmarkCountdownTail1000(b *testing.B) {
	benchmarkCountdown(b, 1000, true)
}

func BenchmarkCountdown1000(b *testing.B) {
	benchmarkCountdown(b, 1000, false)
}

func BenchmarkStep(b *testing.B) {
	s := NewState("", countdown(1_000_000, true), testGlobals())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s = Step(s)
	}
	if s.IsCrashed() {
		b.Fatal(s.Exception())
	}
}
