package cache

import (
	"testing"
)

func BenchmarkElasticGet(b *testing.B) {
	c := NewElastic[uint64, int](1000, 100, nil)
	for i := 0; i < 100; i++ {
		c.Add(uint64(i), i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get(50)
	}
}

func BenchmarkElasticAdd(b *testing.B) {
	c := NewElastic[uint64, int](1000, 100, nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Add(uint64(i), i)
	}
}

func BenchmarkElasticAddNoElasticity(b *testing.B) {
	c := NewElastic[uint64, int](1000, 0, nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Add(uint64(i), i)
	}
}

func BenchmarkElasticParallel(b *testing.B) {
	c := NewElastic[uint64, int](1000, 100, nil)
	for i := 0; i < 1000; i++ {
		c.Add(uint64(i), i)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			c.Get(uint64(i % 1000))
			i++
		}
	})
}
