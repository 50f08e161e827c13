package datastream

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// KeySource 產生 [0, Len()) 範圍內的 key，GenerateOps 以它決定每筆操作碰到哪個 key
type KeySource interface {
	Next() int
	Len() int
	// Entropy 為 key 分布的 Shannon entropy (bits)，越低表示熱點越集中
	Entropy() float64
}

// Keys 從 src 連續取出 count 個 key
func Keys(src KeySource, count int) []int {
	keys := make([]int, count)
	for i := range keys {
		keys[i] = src.Next()
	}
	return keys
}

// UniformKeys 每個 key 被選中的機率相同
type UniformKeys struct {
	n   int
	rng *rand.Rand
}

func NewUniformKeys(n int, seed int64) (*UniformKeys, error) {
	if n <= 0 {
		return nil, fmt.Errorf("uniform keys: n must be positive, got %d", n)
	}
	return &UniformKeys{n: n, rng: rand.New(rand.NewSource(seed))}, nil
}

func (u *UniformKeys) Next() int        { return u.rng.Intn(u.n) }
func (u *UniformKeys) Len() int         { return u.n }
func (u *UniformKeys) Entropy() float64 { return math.Log2(float64(u.n)) }

// ZipfKeys 第 r 名的 key 機率正比於 1/(r+b)^a。
// 名次在建立時以 seed 打亂，熱門 key 不會集中在跳表的最前端。
type ZipfKeys struct {
	probs []float64
	cdf   []float64
	rng   *rand.Rand
}

func NewZipfKeys(n int, a, b float64, seed int64) (*ZipfKeys, error) {
	if n <= 0 {
		return nil, fmt.Errorf("zipf keys: n must be positive, got %d", n)
	}
	if a < 0 || b < 0 {
		return nil, fmt.Errorf("zipf keys: a and b must be non-negative, got a=%v b=%v", a, b)
	}
	rng := rand.New(rand.NewSource(seed))

	probs := make([]float64, n)
	var total float64
	for r := range probs {
		probs[r] = math.Pow(float64(r+1)+b, -a)
		total += probs[r]
	}
	for i := range probs {
		probs[i] /= total
	}
	rng.Shuffle(n, func(i, j int) { probs[i], probs[j] = probs[j], probs[i] })

	cdf := make([]float64, n)
	var acc float64
	for i, p := range probs {
		acc += p
		cdf[i] = acc
	}
	return &ZipfKeys{probs: probs, cdf: cdf, rng: rng}, nil
}

func (z *ZipfKeys) Next() int {
	i := sort.SearchFloat64s(z.cdf, z.rng.Float64())
	// 浮點累加誤差可能讓 cdf 最後一格略小於 1
	return min(i, len(z.cdf)-1)
}

func (z *ZipfKeys) Len() int { return len(z.probs) }

// Prob 回傳 key 被選中的機率；超出範圍為 0
func (z *ZipfKeys) Prob(key int) float64 {
	if key < 0 || key >= len(z.probs) {
		return 0
	}
	return z.probs[key]
}

func (z *ZipfKeys) Entropy() float64 {
	var h float64
	for _, p := range z.probs {
		if p > 0 {
			h -= p * math.Log2(p)
		}
	}
	return h
}
